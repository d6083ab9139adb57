package sessions_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
)

type testFixture struct {
	repo  *sessions.InMemoryRepo
	store *sessions.Store
	now   time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		repo: sessions.NewInMemoryRepo(),
		now:  time.UnixMilli(1700000000000),
	}
	store, err := sessions.NewStore(f.repo,
		sessions.WithNowTime(func() time.Time { return f.now }),
	)
	require.NoError(t, err)
	f.store = store
	return f
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestTokenRoundTrip(t *testing.T) {
	f := setupTestFixture(t)

	require.Empty(t, f.store.AccessToken())
	require.False(t, f.store.LoggedIn())

	require.NoError(t, f.store.SetAccessToken("tok"))
	require.NoError(t, f.store.SetRefreshToken("ref"))
	require.Equal(t, "tok", f.store.AccessToken())
	require.Equal(t, "ref", f.store.RefreshToken())
	require.True(t, f.store.LoggedIn())
}

func TestSentinelValuesAreAbsent(t *testing.T) {
	f := setupTestFixture(t)

	for _, sentinel := range []string{"null", "undefined"} {
		require.NoError(t, f.store.SetAccessToken(sentinel))
		require.Empty(t, f.store.AccessToken())
		require.False(t, f.store.LoggedIn())
	}
}

func TestUserRecord(t *testing.T) {
	f := setupTestFixture(t)

	require.Nil(t, f.store.User())
	require.NoError(t, f.store.SetUser(json.RawMessage(`{"phone":"+919876543210"}`)))

	var user struct {
		Phone string `json:"phone"`
	}
	require.NoError(t, json.Unmarshal(f.store.User(), &user))
	require.Equal(t, "+919876543210", user.Phone)
}

func TestClearAuth(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.SetAccessToken("tok"))
	require.NoError(t, f.store.SetRefreshToken("ref"))
	require.NoError(t, f.store.SetUser(json.RawMessage(`{}`)))
	require.NoError(t, f.repo.Put(sessions.KeyServiceContext, `{"lat":12.97}`))

	require.NoError(t, f.store.ClearAuth())

	require.Empty(t, f.store.AccessToken())
	require.Empty(t, f.store.RefreshToken())
	require.Nil(t, f.store.User())

	// Location context is not auth state and survives.
	_, ok, err := f.repo.Get(sessions.KeyServiceContext)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTokenExpired(t *testing.T) {
	f := setupTestFixture(t)

	// No token at all counts as expired.
	require.True(t, f.store.TokenExpired())

	require.NoError(t, f.store.SetAccessToken(signedToken(t, f.now.Add(time.Hour))))
	require.False(t, f.store.TokenExpired())

	require.NoError(t, f.store.SetAccessToken(signedToken(t, f.now.Add(-time.Minute))))
	require.True(t, f.store.TokenExpired())

	// An opaque token cannot be judged locally; the backend decides.
	require.NoError(t, f.store.SetAccessToken("not-a-jwt"))
	require.False(t, f.store.TokenExpired())
}

func TestReloadLockWindow(t *testing.T) {
	f := setupTestFixture(t)
	window := 10 * time.Second

	require.True(t, f.store.TryAcquireReloadLock(window))
	require.False(t, f.store.TryAcquireReloadLock(window), "a fresh lock suppresses re-acquisition")

	f.now = f.now.Add(11 * time.Second)
	require.True(t, f.store.TryAcquireReloadLock(window), "a stale lock is replaced")

	f.store.ReleaseReloadLock()
	require.True(t, f.store.TryAcquireReloadLock(window))
}

func TestRepoRejectsEmptyKeys(t *testing.T) {
	f := setupTestFixture(t)

	require.ErrorIs(t, f.repo.Put("", "v"), sessions.ErrEmptyKey)
	_, _, err := f.repo.Get("")
	require.ErrorIs(t, err, sessions.ErrEmptyKey)
	require.ErrorIs(t, f.repo.Delete(""), sessions.ErrEmptyKey)
}
