// Package http holds HTTP plumbing shared across features.
package http

import (
	"net"
	"net/http"
	"time"
)

// TuneTransport bounds dial and TLS handshake times on an outbound
// transport such as the one the S3 client builds. TLS settings are left
// alone so SDK options like a custom CA bundle still apply.
func TuneTransport(t *http.Transport) {
	t.DialContext = (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.MaxIdleConns = 100
	t.IdleConnTimeout = 90 * time.Second
	t.TLSHandshakeTimeout = 5 * time.Second
}
