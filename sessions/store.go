package sessions

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store provides typed access to the session slice of the client state: auth
// tokens, the cached user record, and the auth-failure reload lock.
type Store struct {
	repo    Repo
	log     zerolog.Logger
	nowTime func() time.Time
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// NewStore creates a session store backed by repo.
func NewStore(repo Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[NewStore] repo is required")
	}
	s := &Store{
		repo:    repo,
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Repo exposes the underlying repository for components that persist their own
// keys (location contexts, support ticket cache).
func (s *Store) Repo() Repo {
	return s.repo
}

// AccessToken returns the stored access token, or "" when absent. Sentinel
// "null"/"undefined" strings left behind by broken writers are treated as absent.
func (s *Store) AccessToken() string {
	return s.token(KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	return s.token(KeyRefreshToken)
}

func (s *Store) token(key string) string {
	v, ok, err := s.repo.Get(key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("session read failed")
		return ""
	}
	if !ok || v == "null" || v == "undefined" {
		return ""
	}
	return v
}

// SetAccessToken stores a new access token.
func (s *Store) SetAccessToken(token string) error {
	return s.repo.Put(KeyAccessToken, token)
}

// SetRefreshToken stores a new refresh token.
func (s *Store) SetRefreshToken(token string) error {
	return s.repo.Put(KeyRefreshToken, token)
}

// SetUser stores the raw user record.
func (s *Store) SetUser(raw json.RawMessage) error {
	return s.repo.Put(KeyUser, string(raw))
}

// User returns the raw stored user record, or nil when absent.
func (s *Store) User() json.RawMessage {
	v, ok, err := s.repo.Get(KeyUser)
	if err != nil || !ok {
		return nil
	}
	return json.RawMessage(v)
}

// LoggedIn reports whether an access token is present.
func (s *Store) LoggedIn() bool {
	return s.AccessToken() != ""
}

// TokenExpired reports whether the stored access token carries an exp claim in
// the past. The token is decoded without signature verification; the backend
// remains the authority and a wrong answer here only costs one extra 401.
func (s *Store) TokenExpired() bool {
	raw := s.AccessToken()
	if raw == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.nowTime())
}

// ClearAuth removes tokens and the cached user record.
func (s *Store) ClearAuth() error {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUser} {
		if err := s.repo.Delete(key); err != nil {
			return errors.Wrapf(err, "[Store.ClearAuth] delete %s", key)
		}
	}
	return nil
}

// TryAcquireReloadLock acquires the short-lived reload guard. It returns false
// while a lock younger than window exists, suppressing reload storms; a stale
// lock is replaced.
func (s *Store) TryAcquireReloadLock(window time.Duration) bool {
	now := s.nowTime()
	if v, ok, _ := s.repo.Get(KeyReloadLock); ok {
		if at, err := strconv.ParseInt(v, 10, 64); err == nil {
			if now.Sub(time.UnixMilli(at)) < window {
				return false
			}
		}
	}
	if err := s.repo.Put(KeyReloadLock, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		s.log.Error().Err(err).Msg("reload lock write failed")
		return false
	}
	return true
}

// ReleaseReloadLock drops the reload guard.
func (s *Store) ReleaseReloadLock() {
	_ = s.repo.Delete(KeyReloadLock)
}
