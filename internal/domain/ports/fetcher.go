// Package ports defines interfaces for external service communication.
package ports

import (
	"context"
	"errors"
)

// ErrRestricted is returned by a Fetcher when the signed-in account may not
// read a privileged document. It disables the feature that asked for it,
// not the whole run.
var ErrRestricted = errors.New("access to the requested data is restricted")

// Fetcher loads documents from the remote family tree source.
type Fetcher interface {
	// Fetch decodes the document at path into v.
	// It returns false with a nil error when the document is absent.
	Fetch(ctx context.Context, path string, v any) (bool, error)
}

// RequestCounter is implemented by fetchers that count remote requests.
type RequestCounter interface {
	Requests() int64
}
