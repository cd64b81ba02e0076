package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type OSSStore struct {
	Bucket     *oss.Bucket
	BucketName string
	Endpoint   string
}

func NewOSSStore(endpoint, accessKeyID, accessKeySecret, bucketName string) (*OSSStore, error) {
	endpoint = normalizeEndpoint(endpoint)
	if endpoint == "" || accessKeyID == "" || accessKeySecret == "" || bucketName == "" {
		return nil, fmt.Errorf("oss: endpoint, access key and bucket are required")
	}
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("oss bucket: %w", err)
	}
	return &OSSStore{Bucket: bucket, BucketName: bucketName, Endpoint: endpoint}, nil
}

func (s *OSSStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	return s.Bucket.PutObject(key, r,
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
}

func (s *OSSStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := s.Bucket.CopyObject(srcKey, dstKey, oss.WithContext(ctx))
	return err
}

func (s *OSSStore) Delete(ctx context.Context, keys ...string) error {
	for i := 0; i < len(keys); i += 1000 {
		end := i + 1000
		if end > len(keys) {
			end = len(keys)
		}
		if _, err := s.Bucket.DeleteObjects(keys[i:end], oss.DeleteObjectsQuiet(true), oss.WithContext(ctx)); err != nil {
			return err
		}
	}
	return nil
}

func (s *OSSStore) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	marker := oss.Marker("")
	for {
		lor, err := s.Bucket.ListObjects(oss.Prefix(prefix), marker, oss.MaxKeys(1000), oss.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		for _, o := range lor.Objects {
			out = append(out, Object{Key: o.Key, Size: o.Size, LastModified: o.LastModified})
		}
		if !lor.IsTruncated {
			return out, nil
		}
		marker = oss.Marker(lor.NextMarker)
	}
}

func (s *OSSStore) PublicURL(key string) string {
	host := s.Endpoint
	if u, err := url.Parse(s.Endpoint); err == nil && u.Host != "" {
		host = u.Host
	}
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, host, key)
}
