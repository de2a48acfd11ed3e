package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()

	store, err := NewLocalStore(t.TempDir(), zerolog.New(io.Discard))
	require.NoError(t, err)
	return store
}

func TestNewLocalStoreRejectsEmptyRoot(t *testing.T) {
	_, err := NewLocalStore("", zerolog.New(io.Discard))
	require.Error(t, err)
}

func TestLocalStoreUploadWritesFile(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	path, err := store.Upload(context.Background(), "submissions/report.PDF", strings.NewReader("file body"))
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(path, "/submissions/1700000000000-"), "path %q", path)
	require.True(t, strings.HasSuffix(path, ".pdf"), "extension must be lowercased: %q", path)

	data, err := os.ReadFile(filepath.Join(store.root, strings.TrimPrefix(path, "/")))
	require.NoError(t, err)
	require.Equal(t, "file body", string(data))
}

func TestLocalStoreUploadWithoutSubdirectory(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Upload(context.Background(), "notes.docx", strings.NewReader("x"))
	require.NoError(t, err)
	require.NotContains(t, strings.TrimPrefix(path, "/"), "/")
}

func TestLocalStoreUploadNamesNeverCollide(t *testing.T) {
	store := newTestStore(t)
	frozen := time.UnixMilli(1700000000000)
	store.now = func() time.Time { return frozen }

	first, err := store.Upload(context.Background(), "submissions/same.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.Upload(context.Background(), "submissions/same.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestLocalStoreUploadHonoursCancelledContext(t *testing.T) {
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Upload(ctx, "submissions/late.pdf", strings.NewReader("x"))
	require.ErrorIs(t, err, context.Canceled)
}
