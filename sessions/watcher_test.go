package sessions_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
)

func TestWatcherFiresOnExternalChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	repo, err := sessions.NewFileRepo(path)
	require.NoError(t, err)
	require.NoError(t, repo.Put("k", "v"))

	var fired atomic.Int32
	watcher, err := sessions.NewWatcher(repo, func() { fired.Add(1) },
		sessions.WithGuardWindow(time.Hour),
	)
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"k":"external"}`), 0o600))

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 3*time.Second, 10*time.Millisecond)

	// The hook ran after the reload, so the repo already holds the new value.
	v, ok, err := repo.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "external", v)

	// A second external change inside the guard window is absorbed.
	require.NoError(t, os.WriteFile(path, []byte(`{"k":"again"}`), 0o600))
	time.Sleep(300 * time.Millisecond)
	require.EqualValues(t, 1, fired.Load())
}

func TestWatcherIgnoresOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	repo, err := sessions.NewFileRepo(path)
	require.NoError(t, err)

	var fired atomic.Int32
	watcher, err := sessions.NewWatcher(repo, func() { fired.Add(1) })
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, repo.Put("a", "1"))
	require.NoError(t, repo.Put("b", "2"))
	require.NoError(t, repo.Delete("a"))

	time.Sleep(300 * time.Millisecond)
	require.Zero(t, fired.Load(), "this process's own writes must not trigger a reload")
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	repo, err := sessions.NewFileRepo(path)
	require.NoError(t, err)

	watcher, err := sessions.NewWatcher(repo, func() {})
	require.NoError(t, err)
	require.NoError(t, watcher.Close())
	require.NoError(t, watcher.Close())
}
