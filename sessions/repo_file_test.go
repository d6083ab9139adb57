package sessions_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
)

func TestFileRepoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	repo, err := sessions.NewFileRepo(path)
	require.NoError(t, err)

	require.NoError(t, repo.Put(sessions.KeyAccessToken, "tok"))
	require.NoError(t, repo.Put(sessions.KeyRefreshToken, "ref"))

	// A second repo on the same file sees the flushed document.
	reopened, err := sessions.NewFileRepo(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(sessions.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok", v)
}

func TestFileRepoDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	repo, err := sessions.NewFileRepo(path)
	require.NoError(t, err)

	require.NoError(t, repo.Put("k", "v"))
	require.NoError(t, repo.Delete("k"))
	require.NoError(t, repo.Delete("missing"), "deleting an absent key is a no-op")

	_, ok, err := repo.Get("k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileRepoMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	repo, err := sessions.NewFileRepo(path)
	require.NoError(t, err)

	_, ok, err := repo.Get(sessions.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileRepoRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := sessions.NewFileRepo(path)
	require.Error(t, err)
}

func TestFileRepoFingerprintTracksWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	repo, err := sessions.NewFileRepo(path)
	require.NoError(t, err)

	initial := repo.Fingerprint()
	require.NoError(t, repo.Put("k", "v"))
	afterWrite := repo.Fingerprint()
	require.NotEqual(t, initial, afterWrite)

	// The repo's fingerprint matches the on-disk document after its own write.
	onDisk, err := sessions.FingerprintFile(path)
	require.NoError(t, err)
	require.Equal(t, afterWrite, onDisk)

	// An external writer diverges the on-disk fingerprint.
	require.NoError(t, os.WriteFile(path, []byte(`{"k":"other"}`), 0o600))
	onDisk, err = sessions.FingerprintFile(path)
	require.NoError(t, err)
	require.NotEqual(t, repo.Fingerprint(), onDisk)

	// Reload converges again.
	require.NoError(t, repo.Reload())
	require.Equal(t, repo.Fingerprint(), onDisk)
	v, ok, err := repo.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "other", v)
}
