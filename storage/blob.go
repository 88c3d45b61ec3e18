// Package storage persists encrypted artifact blobs. Blobs are addressed
// only by normalized artifact identifiers and are opaque bytes here; all
// encryption happens before Save and after Load.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports a missing blob. A record whose blob is gone is an
	// invariant breach; callers log it and answer generically.
	ErrNotFound = errors.New("blob not found")
	// ErrBadIdentifier reports an identifier that failed normalization. The
	// request path validates identifiers first, so hitting this means a bug.
	ErrBadIdentifier = errors.New("malformed blob identifier")
)

// BlobStore persists encrypted payloads keyed by artifact identifier.
type BlobStore interface {
	Save(ctx context.Context, identifier string, blob []byte) error
	Load(ctx context.Context, identifier string) ([]byte, error)
	Delete(ctx context.Context, identifier string) error
}
