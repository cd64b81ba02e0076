package storage

import (
	"fmt"
	"strings"

	"edudirectory_backend/internals/configs"
)

// NewStoreFromConfig picks the blob backend named by cfg.Backend.
func NewStoreFromConfig(cfg configs.StorageConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "oss":
		s, err := NewOSSStore(cfg.OSSEndpoint, cfg.OSSAccessKeyID, cfg.OSSAccessKeySecret, cfg.OSSBucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3Store(cfg.S3Region, cfg.S3Key, cfg.S3Secret, cfg.S3Bucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "", "memory":
		return NewMemoryStore(cfg.MemoryBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
