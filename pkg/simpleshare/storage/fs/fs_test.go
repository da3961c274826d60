package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/storage/fs"
)

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := fs.New(fs.Config{})
	assert.Error(t, err)
}

func TestBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()

	backend, err := fs.New(fs.Config{BaseDir: baseDir})
	require.NoError(t, err)

	err = backend.Upload(ctx, "files/sub/a.txt", strings.NewReader("file payload"))
	require.NoError(t, err)

	body, err := backend.Download(ctx, "files/sub/a.txt")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "file payload", string(data))

	meta, err := backend.GetObjectMeta(ctx, "files/sub/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(12), meta.Size)
	assert.False(t, meta.UpdatedAt.IsZero())
}

func TestBackendMissingObject(t *testing.T) {
	ctx := context.Background()
	backend, err := fs.New(fs.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	_, err = backend.Download(ctx, "nope")
	assert.ErrorIs(t, err, simpleshare.ErrObjectNotFound)

	err = backend.Delete(ctx, "nope")
	assert.ErrorIs(t, err, simpleshare.ErrObjectNotFound)

	_, err = backend.GetObjectMeta(ctx, "nope")
	assert.ErrorIs(t, err, simpleshare.ErrObjectNotFound)
}

func TestDeleteCleansEmptyDirectories(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()

	backend, err := fs.New(fs.Config{BaseDir: baseDir})
	require.NoError(t, err)

	require.NoError(t, backend.Upload(ctx, "text/deep/nested.txt", strings.NewReader("x")))
	require.NoError(t, backend.Delete(ctx, "text/deep/nested.txt"))

	_, err = os.Stat(filepath.Join(baseDir, "text"))
	assert.True(t, os.IsNotExist(err), "empty directories should be removed")

	// The base directory itself survives.
	_, err = os.Stat(baseDir)
	assert.NoError(t, err)
}
