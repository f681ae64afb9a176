package extract

import (
	"context"
	"errors"
	"mime"
	"strings"
)

const (
	MimePDF   = "application/pdf"
	MimePlain = "text/plain"
)

// ErrUnsupported is returned when an extractor cannot handle the media type.
var ErrUnsupported = errors.New("extract: unsupported media type")

// Extractor turns document bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

// NormalizeMimeType lowercases mimeType and strips parameters.
func NormalizeMimeType(mimeType string) string {
	raw := strings.TrimSpace(mimeType)
	if raw == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(raw); err == nil {
		return mediaType
	}
	return strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
}

// NeedsOCR reports whether mimeType is routed to an Extractor.
func NeedsOCR(mimeType string) bool {
	normalized := NormalizeMimeType(mimeType)
	return strings.HasPrefix(normalized, "image/") || normalized == MimePDF
}

// IsPlainText reports whether mimeType is read directly as text.
func IsPlainText(mimeType string) bool {
	return NormalizeMimeType(mimeType) == MimePlain
}

// Disabled is used when no extraction provider is configured.
type Disabled struct{}

func (Disabled) Extract(ctx context.Context, _ []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", ErrUnsupported
}
