// Package storage keeps listing images in a blob store (Aliyun OSS, S3 or
// memory), re-encodes uploads to WebP and reaps the trash prefix.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"
)

var ErrNotFound = errors.New("storage: object not found")

type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the blob backend the upload pipeline writes to.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	PublicURL(key string) string
}

// KeyFromPublicURL strips scheme, host and base path, leaving the object key.
func KeyFromPublicURL(base, publicURL string) (string, error) {
	publicURL = strings.TrimSpace(publicURL)
	if base != "" && strings.HasPrefix(publicURL, base) {
		key := strings.TrimPrefix(strings.TrimPrefix(publicURL, base), "/")
		if key == "" {
			return "", errors.New("storage: empty key")
		}
		return key, nil
	}
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", err
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", errors.New("storage: empty key")
	}
	return key, nil
}

func normalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	if ep == "" || strings.HasPrefix(ep, "http://") || strings.HasPrefix(ep, "https://") {
		return ep
	}
	return "https://" + ep
}
