package storage

import (
	"context"
	"errors"
	"io"
)

// ErrStorageDisabled is returned when no bucket is configured.
var ErrStorageDisabled = errors.New("document storage is not configured")

type UploadResult struct {
	Key  string
	ETag string
}

// DocumentStore keeps private registration documents. Objects are never public;
// readers get short-lived presigned links.
type DocumentStore interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	PresignedURL(ctx context.Context, key string) (string, error)
}

type disabledStore struct{}

// NewDisabledStore returns a store that rejects uploads. Registrations without a
// document still succeed against it.
func NewDisabledStore() DocumentStore {
	return disabledStore{}
}

func (disabledStore) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, ErrStorageDisabled
}

func (disabledStore) Delete(context.Context, string) error {
	return nil
}

func (disabledStore) PresignedURL(context.Context, string) (string, error) {
	return "", ErrStorageDisabled
}
