// Package share builds shareable links and their QR codes.
package share

import (
	"errors"
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the PNG edge length in pixels.
const QRSize = 320

// URL joins base and token into a link. base may carry a path prefix.
func URL(base, token string) string {
	return strings.TrimSuffix(base, "/") + "/" + token
}

// BaseURL derives scheme://host from a request, honouring
// X-Forwarded-Proto.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// QR renders url as a PNG QR code at medium error correction.
func QR(url string, size int) ([]byte, error) {
	if url == "" {
		return nil, errors.New("share: empty url")
	}
	if size <= 0 {
		size = QRSize
	}
	return qrcode.Encode(url, qrcode.Medium, size)
}

// WriteQR renders url into a PNG file.
func WriteQR(url string, size int, path string) error {
	if size <= 0 {
		size = QRSize
	}
	return qrcode.WriteFile(url, qrcode.Medium, size, path)
}
