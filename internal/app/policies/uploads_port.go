package policies

import (
	"context"
	"io"
)

// Uploader stores binary content and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}
