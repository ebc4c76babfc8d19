package di

import (
	"context"
	"fmt"

	"passvault/internal/app/config"
	"passvault/internal/platform/storage"
)

// UploadsPrefix is the URL prefix disk-stored avatars are served under.
const UploadsPrefix = "/uploads"

// NewAvatarStore returns the store selected by cfg.Storage.
func NewAvatarStore(ctx context.Context, cfg config.AvatarConfig) (storage.AvatarStore, error) {
	switch cfg.Storage {
	case config.AvatarInline:
		return storage.InlineStore{}, nil
	case config.AvatarDisk:
		disk, err := storage.NewDiskStore(cfg.UploadDir, UploadsPrefix)
		if err != nil {
			return nil, err
		}
		return disk, nil
	case config.AvatarS3:
		s3, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unknown avatar storage %q", cfg.Storage)
	}
}
