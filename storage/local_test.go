package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectName(t *testing.T) {
	seen := make(map[string]bool)

	for range 1000 {
		name := NewObjectName()

		assert.True(t, strings.HasSuffix(name, ".dat"))
		assert.False(t, seen[name], "object names must not collide")
		seen[name] = true
	}
}

func TestLocalResolve(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	dir, err := l.Resolve("alice", "photos")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Resolving again must be a no-op
	again, err := l.Resolve("alice", "photos")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestLocalProvision(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root)
	require.NoError(t, err)

	require.NoError(t, l.Provision(context.Background(), "alice"))

	for _, ft := range FolderTypes {
		info, err := os.Stat(filepath.Join(root, "alice", ft))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	require.NoError(t, l.Provision(context.Background(), "alice"))
}

func TestLocalWriteRead(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("ciphertext bytes")
	name := NewObjectName()

	require.NoError(t, l.Write(ctx, "alice", "photos", name, data))

	got, err := l.Read(ctx, "alice", "photos", name)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = l.Read(ctx, "alice", "photos", "missing.dat")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLocalRemoveBestEffort(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	name := NewObjectName()

	require.NoError(t, l.Write(ctx, "alice", "photos", name, []byte("x")))
	require.NoError(t, l.Remove(ctx, "alice", "photos", name))

	// Removing an object that's already gone is not an error, the
	// database is the source of truth for existence
	require.NoError(t, l.Remove(ctx, "alice", "photos", name))
	require.NoError(t, l.Remove(ctx, "nobody", "photos", "ghost.dat"))
}
