// Package imagestore archives the image bytes behind each history entry.
package imagestore

import (
	"context"
	"io"
)

type ImageStore interface {
	Save(ctx context.Context, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}
