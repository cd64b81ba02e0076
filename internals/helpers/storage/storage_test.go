package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"edudirectory_backend/internals/configs"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "png", DetectFormat(pngBytes(t, 2, 2), "x.bin"))
	assert.Equal(t, "jpeg", DetectFormat([]byte("??"), "photo.JPG"))
	assert.Equal(t, "", DetectFormat([]byte("GIF89a......"), "anim.gif"))
}

func TestUploadImageConvertsToWebP(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("https://cdn.test")
	up := NewUploader(store, "edu")
	up.Options.MaxW, up.Options.MaxH = 64, 64

	url, err := up.UploadBytes(ctx, "colleges/cover", "cover.png", pngBytes(t, 200, 100))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.test/edu/colleges/cover/"))
	assert.True(t, strings.HasSuffix(url, ".webp"))

	key := strings.TrimPrefix(url, "https://cdn.test/")
	data, ct, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, "image/webp", ct)
	assert.Equal(t, "webp", DetectFormat(data, ""))
}

func TestUploadRejects(t *testing.T) {
	ctx := context.Background()
	up := NewUploader(NewMemoryStore("https://cdn.test"), "edu")

	_, err := up.UploadBytes(ctx, "x", "doc.gif", []byte("GIF89a not really"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = up.UploadBytes(ctx, "x", "empty.png", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	up.MaxBytes = 10
	_, err = up.UploadBytes(ctx, "x", "big.png", pngBytes(t, 10, 10))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestMoveToTrash(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("https://cdn.test")
	up := NewUploader(store, "edu")
	up.Now = func() time.Time { return time.Date(2026, 3, 9, 14, 5, 6, 0, time.UTC) }

	url, err := up.UploadBytes(ctx, "schools/gallery", "a.png", pngBytes(t, 8, 8))
	require.NoError(t, err)

	trashed, err := up.MoveToTrash(ctx, url)
	require.NoError(t, err)
	assert.Contains(t, trashed, "/edu/trash/2026/03/09/140506__")

	_, _, ok := store.Get(strings.TrimPrefix(url, "https://cdn.test/"))
	assert.False(t, ok, "original removed")

	foreign, err := up.MoveToTrash(ctx, "https://elsewhere.test/img.png")
	require.NoError(t, err)
	assert.Empty(t, foreign)
}

func TestReapStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("https://cdn.test")
	now := time.Now()
	for _, k := range []string{"edu/trash/old.webp", "edu/trash/new.webp", "edu/live.webp"} {
		require.NoError(t, store.Put(ctx, k, strings.NewReader("x"), 1, "image/webp"))
	}
	store.Touch("edu/trash/old.webp", now.Add(-40*24*time.Hour))
	store.Touch("edu/live.webp", now.Add(-400*24*time.Hour))

	n, err := ReapStore(ctx, store, "edu/trash/", 30*24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	objs, _ := store.List(ctx, "edu/")
	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"edu/live.webp", "edu/trash/new.webp"}, keys)
}

func TestReapSoftDeleted(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	type row struct {
		ID        uint
		DeletedAt *time.Time
	}
	require.NoError(t, db.Table("things").AutoMigrate(&row{}))

	now := time.Now()
	old := now.Add(-60 * 24 * time.Hour)
	recent := now.Add(-time.Hour)
	require.NoError(t, db.Table("things").Create(&[]row{{ID: 1, DeletedAt: &old}, {ID: 2, DeletedAt: &recent}, {ID: 3}}).Error)

	err = ReapSoftDeleted(context.Background(), db,
		[]SoftDeleteTarget{{Table: "things", Column: "deleted_at"}}, 30*24*time.Hour, now)
	require.NoError(t, err)

	var ids []uint
	require.NoError(t, db.Table("things").Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []uint{2, 3}, ids)
}

func TestNewStoreFromConfig(t *testing.T) {
	s, err := NewStoreFromConfig(configs.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStoreFromConfig(configs.StorageConfig{Backend: "S3", S3Region: "ap-south-1", S3Bucket: "edu", S3Key: "k", S3Secret: "s"})
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, s)

	_, err = NewStoreFromConfig(configs.StorageConfig{Backend: "oss"})
	assert.Error(t, err)

	_, err = NewStoreFromConfig(configs.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)
}

func TestMemoryHandlerServesObjects(t *testing.T) {
	store := NewMemoryStore("http://localhost:3000/storage")
	require.NoError(t, store.Put(context.Background(), "edu/a.webp", strings.NewReader("img"), 3, "image/webp"))

	app := fiber.New()
	app.Get("/storage/*", store.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/storage/edu/a.webp", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/webp", resp.Header.Get("Content-Type"))

	resp, err = app.Test(httptest.NewRequest("GET", "/storage/edu/missing.webp", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
