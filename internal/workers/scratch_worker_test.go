package workers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"imgrelay/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestScratchWorker_Sweep(t *testing.T) {
	dir := t.TempDir()
	scratch, err := storage.NewLocalStorage(storage.Config{BasePath: dir})
	require.NoError(t, err)

	touch(t, dir, "upload_1_old.png", 2*time.Hour)
	touch(t, dir, "upload_2_fresh.png", time.Minute)
	touch(t, dir, "keep.me", 48*time.Hour)

	w := NewScratchWorker(scratch, time.Minute, time.Hour)
	assert.Equal(t, 1, w.Sweep(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"upload_2_fresh.png", "keep.me"}, names)
}

func TestScratchWorker_StartStops(t *testing.T) {
	dir := t.TempDir()
	scratch, err := storage.NewLocalStorage(storage.Config{BasePath: dir})
	require.NoError(t, err)
	touch(t, dir, "upload_1_old.png", 2*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewScratchWorker(scratch, time.Hour, time.Hour).Start(ctx)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "upload_1_old.png"))
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
}
