// Package storage keeps avatar images and returns a reference clients can resolve.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotImage is returned when the sniffed content type is not image/*.
var ErrNotImage = errors.New("content is not an image")

// Image is an uploaded avatar, already read into memory.
type Image struct {
	Data []byte
	// ContentType is the sniffed MIME type, e.g. "image/png".
	ContentType string
	// Ext is the canonical extension including the dot, e.g. ".png".
	Ext string
}

// DetectImage sniffs data and fails with ErrNotImage for anything but a
// raster image/*. SVG is refused since it can carry script. The client
// supplied content type is never trusted.
func DetectImage(data []byte) (Image, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") || mt.Is("image/svg+xml") {
		return Image{}, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}
	ct, _, _ := strings.Cut(mt.String(), ";")
	return Image{Data: data, ContentType: ct, Ext: mt.Extension()}, nil
}

// AvatarStore persists an avatar for ownerID and returns its public reference.
type AvatarStore interface {
	Save(ctx context.Context, ownerID string, img Image) (string, error)
}

// objectName builds "<owner>-<random><ext>" so a new upload never overwrites
// a reference that clients may still cache.
func objectName(ownerID, ext string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate object name: %w", err)
	}
	return sanitize(ownerID) + "-" + hex.EncodeToString(b) + ext, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
