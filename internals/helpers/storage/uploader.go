package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	webpContentType = "image/webp"
	trashDir        = "trash"
)

// Uploader owns the key layout: <prefix>/<folder>/<uuid>.webp for live
// images and <prefix>/trash/YYYY/MM/DD/HHMMSS__<name> for replaced ones.
type Uploader struct {
	Store    Store
	Prefix   string
	Options  WebPOptions
	MaxBytes int64
	Now      func() time.Time
}

func NewUploader(store Store, prefix string) *Uploader {
	return &Uploader{
		Store:    store,
		Prefix:   strings.Trim(prefix, "/"),
		Options:  DefaultWebPOptions(),
		MaxBytes: 5 * 1024 * 1024,
		Now:      time.Now,
	}
}

func (u *Uploader) key(parts ...string) string {
	if u.Prefix == "" {
		return path.Join(parts...)
	}
	return path.Join(append([]string{u.Prefix}, parts...)...)
}

func (u *Uploader) TrashPrefix() string {
	return u.key(trashDir) + "/"
}

// UploadImage enforces the size cap, converts to WebP and stores the result.
func (u *Uploader) UploadImage(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrEmptyFile
	}
	if u.MaxBytes > 0 && fh.Size > u.MaxBytes {
		return "", ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, u.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return u.UploadBytes(ctx, folder, fh.Filename, data)
}

func (u *Uploader) UploadBytes(ctx context.Context, folder, filename string, data []byte) (string, error) {
	if u.MaxBytes > 0 && int64(len(data)) > u.MaxBytes {
		return "", ErrTooLarge
	}
	out, err := ConvertToWebP(data, filename, u.Options)
	if err != nil {
		return "", err
	}
	key := u.key(folder, uuid.NewString()+".webp")
	if err := u.Store.Put(ctx, key, bytes.NewReader(out), int64(len(out)), webpContentType); err != nil {
		return "", fmt.Errorf("store put: %w", err)
	}
	return u.Store.PublicURL(key), nil
}

// MoveToTrash copies an image we own under the trash prefix and deletes the
// original. URLs that are not ours are left alone and "" is returned.
func (u *Uploader) MoveToTrash(ctx context.Context, publicURL string) (string, error) {
	publicURL = strings.TrimSpace(publicURL)
	base := u.Store.PublicURL("")
	if publicURL == "" || !strings.HasPrefix(publicURL, base) {
		return "", nil
	}
	srcKey, err := KeyFromPublicURL(base, publicURL)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(srcKey, u.TrashPrefix()) {
		return publicURL, nil
	}

	now := u.Now()
	dstKey := u.key(trashDir,
		now.Format("2006"), now.Format("01"), now.Format("02"),
		fmt.Sprintf("%s__%s", now.Format("150405"), path.Base(srcKey)),
	)
	if err := u.Store.Copy(ctx, srcKey, dstKey); err != nil {
		return "", fmt.Errorf("copy %q -> %q: %w", srcKey, dstKey, err)
	}
	if err := u.Store.Delete(ctx, srcKey); err != nil {
		zap.L().Warn("trash: delete original", zap.String("key", srcKey), zap.Error(err))
	}
	return u.Store.PublicURL(dstKey), nil
}

// TrashAll moves every URL, logging failures instead of aborting.
func (u *Uploader) TrashAll(ctx context.Context, urls ...string) {
	for _, raw := range urls {
		if _, err := u.MoveToTrash(ctx, raw); err != nil {
			zap.L().Warn("trash: move", zap.String("url", raw), zap.Error(err))
		}
	}
}
