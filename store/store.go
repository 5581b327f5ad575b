// Package store is the gateway to the remote document store and blob storage.
package store

import (
	"context"
	"errors"
)

var ErrBlobNotFound = errors.New("blob not found")

// Documents holds JSON values addressed by path.
type Documents interface {
	// Subscribe delivers the current value of path synchronously, then every
	// later change until cancel is called. A missing path delivers nil.
	Subscribe(ctx context.Context, path string, onChange func(value []byte)) (cancel func(), err error)
	Write(ctx context.Context, path string, value []byte) error
	// ReadOnce returns nil, nil when path holds no value.
	ReadOnce(ctx context.Context, path string) ([]byte, error)
}

// Blobs holds opaque binary objects such as product images.
type Blobs interface {
	PutBlob(ctx context.Context, id string, data []byte) error
	// GetBlob returns ErrBlobNotFound for unknown ids.
	GetBlob(ctx context.Context, id string) ([]byte, error)
}

// Presigner is implemented by blob backends that can hand out direct links.
type Presigner interface {
	PresignBlob(ctx context.Context, id string) (string, error)
}

// DocumentStore is everything the console needs from the remote side.
type DocumentStore interface {
	Documents
	Blobs
}

// Gateway composes a documents backend with a blobs backend.
type Gateway struct {
	Documents
	Blobs
}

// Presign returns a direct link for id when the blob backend supports it.
func (g Gateway) Presign(ctx context.Context, id string) (string, bool, error) {
	p, ok := g.Blobs.(Presigner)
	if !ok {
		return "", false, nil
	}
	u, err := p.PresignBlob(ctx, id)
	return u, true, err
}
