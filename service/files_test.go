package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bitwise74/drive-api/model"
	"bitwise74/drive-api/security"
	"bitwise74/drive-api/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	svc      *Files
	root     string
	owner    string
	username string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.Folder{}, model.File{}, model.Thumbnail{}))

	key := make([]byte, security.KeySize)
	_, err = rand.Read(key)
	require.NoError(t, err)

	engine, err := security.NewEngine(hex.EncodeToString(key))
	require.NoError(t, err)

	root := t.TempDir()
	store, err := storage.NewLocal(root)
	require.NoError(t, err)

	// A bogus ffmpeg path makes every video thumbnail attempt fail,
	// which is exactly what the non-fatality tests need
	thumbs := &Thumbnailer{
		FFmpegPath: filepath.Join(t.TempDir(), "no-such-ffmpeg"),
		Timeout:    time.Second,
	}

	env := &testEnv{
		svc:      NewFiles(db, engine, store, thumbs, 1<<30),
		root:     root,
		owner:    uuid.NewString(),
		username: "alice",
	}

	require.NoError(t, env.svc.ProvisionOwner(context.Background(), env.owner, env.username))

	return env
}

func (e *testEnv) addOwner(t *testing.T, username string) string {
	t.Helper()

	id := uuid.NewString()
	require.NoError(t, e.svc.ProvisionOwner(context.Background(), id, username))

	return id
}

// makePNG renders a small deterministic image and returns its encoded
// bytes. Big enough for the thumbnailer to have something to crop.
func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8(x ^ y), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestIngestImageWithThumbnail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	data := makePNG(t, 640, 480)

	res, err := env.svc.Ingest(ctx, env.owner, "vacation.png", "image/png", data)
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "vacation.png", res.OriginalName)
	assert.Equal(t, "image/png", res.MimeType)
	assert.Equal(t, model.TypeImage, res.FileType)
	assert.Equal(t, int64(len(data)), res.SizeBytes)
	assert.True(t, res.HasThumbnail)
	require.NotNil(t, res.ThumbnailID)

	var file model.File
	require.NoError(t, env.svc.DB.First(&file, "id = ?", res.ID).Error)
	require.NotNil(t, file.ThumbnailID)
	assert.Equal(t, *res.ThumbnailID, *file.ThumbnailID)

	var thumb model.Thumbnail
	require.NoError(t, env.svc.DB.First(&thumb, "id = ?", *res.ThumbnailID).Error)
	assert.Equal(t, file.ID, thumb.FileID)
	assert.Equal(t, env.owner, thumb.OwnerID)
	assert.Equal(t, ThumbMimeType, thumb.MimeType)
	assert.Positive(t, thumb.SizeBytes)

	// Ciphertext on disk must be exactly plaintext-sized and must not
	// be the plaintext
	onDisk, err := os.ReadFile(filepath.Join(env.root, env.username, model.FolderPhotos, file.StorageName))
	require.NoError(t, err)
	assert.Len(t, onDisk, len(data))
	assert.NotEqual(t, data, onDisk)

	got, mime, err := env.svc.Retrieve(ctx, res.ID, env.owner)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", mime)

	// The same contract serves the thumbnail
	preview, mime, err := env.svc.Retrieve(ctx, *res.ThumbnailID, env.owner)
	require.NoError(t, err)
	assert.Equal(t, ThumbMimeType, mime)
	assert.Equal(t, thumb.SizeBytes, int64(len(preview)))

	viaFile, _, err := env.svc.RetrieveThumbnail(ctx, res.ID, env.owner)
	require.NoError(t, err)
	assert.Equal(t, preview, viaFile)
}

func TestIngestInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Ingest(ctx, env.owner, "empty.bin", "application/octet-stream", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.svc.Ingest(ctx, env.owner, "", "text/plain", []byte("data"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIngestUnknownOwner(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Ingest(context.Background(), uuid.NewString(), "a.txt", "text/plain", []byte("data"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIngestUnprovisionedFolders(t *testing.T) {
	env := newTestEnv(t)

	// A user row without folder rows means provisioning never finished
	broken := uuid.NewString()
	require.NoError(t, env.svc.DB.Create(&model.User{ID: broken, Username: "broken"}).Error)

	_, err := env.svc.Ingest(context.Background(), broken, "a.txt", "text/plain", []byte("data"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestIngestQuotaExceeded(t *testing.T) {
	env := newTestEnv(t)
	env.svc.LimitBytes = 10

	_, err := env.svc.Ingest(context.Background(), env.owner, "big.bin", "application/octet-stream", make([]byte, 11))
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	res, err := env.svc.Ingest(context.Background(), env.owner, "small.bin", "application/octet-stream", make([]byte, 10))
	require.NoError(t, err)
	assert.False(t, res.HasThumbnail)
}

func TestThumbnailFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Declared as video, but the ffmpeg binary doesn't exist, so the
	// preview can't be generated. The upload must still succeed
	data := []byte("not really an mp4 but that's the point")

	res, err := env.svc.Ingest(ctx, env.owner, "clip.mp4", "video/mp4", data)
	require.NoError(t, err)
	assert.False(t, res.HasThumbnail)
	assert.Nil(t, res.ThumbnailID)

	var file model.File
	require.NoError(t, env.svc.DB.First(&file, "id = ?", res.ID).Error)
	assert.Nil(t, file.ThumbnailID)

	got, _, err := env.svc.Retrieve(ctx, res.ID, env.owner)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, _, err = env.svc.RetrieveThumbnail(ctx, res.ID, env.owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRetrieveOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other := env.addOwner(t, "mallory")

	res, err := env.svc.Ingest(ctx, env.owner, "private.txt", "text/plain", []byte("alice's data"))
	require.NoError(t, err)

	// The id exists, but it's not mallory's
	_, _, err = env.svc.Retrieve(ctx, res.ID, other)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, env.svc.SoftDelete(ctx, res.ID, other), ErrNotFound)
	assert.ErrorIs(t, env.svc.PermanentDelete(ctx, res.ID, other), ErrNotFound)
}

func TestRetrieveIntegrityFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Ingest(ctx, env.owner, "notes.txt", "text/plain", []byte("important notes"))
	require.NoError(t, err)

	var file model.File
	require.NoError(t, env.svc.DB.First(&file, "id = ?", res.ID).Error)

	// Flip one ciphertext bit on disk, simulating bit-rot
	p := filepath.Join(env.root, env.username, model.FolderFiles, file.StorageName)
	onDisk, err := os.ReadFile(p)
	require.NoError(t, err)
	onDisk[0] ^= 0x01
	require.NoError(t, os.WriteFile(p, onDisk, 0o600))

	_, _, err = env.svc.Retrieve(ctx, res.ID, env.owner)
	assert.ErrorIs(t, err, security.ErrIntegrityCheckFailed)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRetrieveMissingDiskObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Ingest(ctx, env.owner, "gone.txt", "text/plain", []byte("soon gone"))
	require.NoError(t, err)

	var file model.File
	require.NoError(t, env.svc.DB.First(&file, "id = ?", res.ID).Error)
	require.NoError(t, os.Remove(filepath.Join(env.root, env.username, model.FolderFiles, file.StorageName)))

	_, _, err = env.svc.Retrieve(ctx, res.ID, env.owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProvisionOwnerIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.ProvisionOwner(ctx, env.owner, env.username))

	var count int64
	require.NoError(t, env.svc.DB.Model(model.Folder{}).Where("owner_user_id = ?", env.owner).Count(&count).Error)
	assert.EqualValues(t, 4, count)
}

func TestListAndFavorites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Ingest(ctx, env.owner, "a.txt", "text/plain", []byte("aaa"))
	require.NoError(t, err)
	b, err := env.svc.Ingest(ctx, env.owner, "b.txt", "text/plain", []byte("bbb"))
	require.NoError(t, err)

	files, err := env.svc.List(env.owner, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	require.NoError(t, env.svc.SetFavorite(a.ID, env.owner, true))

	favs, err := env.svc.List(env.owner, ListOptions{FavoritesOnly: true})
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, a.ID, favs[0].ID)

	require.NoError(t, env.svc.SoftDelete(ctx, b.ID, env.owner))

	active, err := env.svc.List(env.owner, ListOptions{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	trash, err := env.svc.List(env.owner, ListOptions{Deleted: true})
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, b.ID, trash[0].ID)

	deleted, err := env.svc.IsDeleted(b.ID, env.owner)
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.ErrorIs(t, env.svc.SetFavorite(b.ID, env.owner, true), ErrNotFound)
}
