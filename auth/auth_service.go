package auth

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Mdhelaluddin3391/quickdash-go/api"
	"github.com/Mdhelaluddin3391/quickdash-go/location"
	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
)

const (
	sendOTPEndpoint  = "/notifications/send-otp/"
	registerEndpoint = "/auth/register/customer/"
	profileEndpoint  = "/auth/me/"
	logoutEndpoint   = "/auth/logout/"
)

var (
	ErrInvalidPhone   = errors.New("invalid 10-digit mobile number")
	ErrNoAccessToken  = errors.New("no access token received")
	indianMobileRegex = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// OTPResponse is the result of requesting a login code. DebugOTP is only
// populated by non-production backends.
type OTPResponse struct {
	DebugOTP string `json:"debug_otp"`
}

// Service drives the phone-OTP login flow and session teardown.
type Service struct {
	api       *api.Client
	store     *sessions.Store
	locations *location.Manager
	log       zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

// NewService creates the auth service.
func NewService(apiClient *api.Client, store *sessions.Store, locations *location.Manager, options ...ServiceOption) (*Service, error) {
	if apiClient == nil {
		return nil, errors.New("[NewService] api client is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] store is required")
	}
	if locations == nil {
		return nil, errors.New("[NewService] locations is required")
	}
	s := &Service{
		api:       apiClient,
		store:     store,
		locations: locations,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// SendOTP requests a login code for an Indian mobile number. The number is
// validated locally before the call and sent E.164-prefixed.
func (s *Service) SendOTP(ctx context.Context, phone string) (*OTPResponse, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	var result OTPResponse
	if err := s.api.Post(ctx, sendOTPEndpoint, map[string]string{"phone": normalized}, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.SendOTP]")
	}
	return &result, nil
}

// VerifyOTP exchanges the code for tokens. Registration and login are the same
// backend operation. The profile fetch afterwards is best-effort: a failure
// there never fails the login.
func (s *Service) VerifyOTP(ctx context.Context, phone, otp string) error {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return err
	}

	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	err = s.api.Post(ctx, registerEndpoint, map[string]string{
		"phone": normalized,
		"otp":   otp,
	}, &tokens)
	if err != nil {
		return errors.Wrap(err, "[Service.VerifyOTP]")
	}
	if tokens.Access == "" {
		return ErrNoAccessToken
	}

	if err := s.store.SetAccessToken(tokens.Access); err != nil {
		return errors.Wrap(err, "[Service.VerifyOTP] store access token")
	}
	if tokens.Refresh != "" {
		if err := s.store.SetRefreshToken(tokens.Refresh); err != nil {
			return errors.Wrap(err, "[Service.VerifyOTP] store refresh token")
		}
	}

	if user, err := s.fetchProfile(ctx); err != nil {
		s.log.Warn().Err(err).Msg("profile fetch after login failed")
	} else if err := s.store.SetUser(user); err != nil {
		s.log.Warn().Err(err).Msg("profile store failed")
	}
	return nil
}

// Profile fetches the authenticated user record and refreshes the cached copy.
func (s *Service) Profile(ctx context.Context) (json.RawMessage, error) {
	user, err := s.fetchProfile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Profile]")
	}
	if err := s.store.SetUser(user); err != nil {
		s.log.Warn().Err(err).Msg("profile store failed")
	}
	return user, nil
}

// Logout invalidates the refresh token server-side (best-effort), then clears
// the session and both location contexts.
func (s *Service) Logout(ctx context.Context) error {
	if refresh := s.store.RefreshToken(); refresh != "" {
		if err := s.api.Post(ctx, logoutEndpoint, map[string]string{"refresh": refresh}, nil); err != nil {
			s.log.Warn().Err(err).Msg("server-side logout failed")
		}
	}
	if err := s.store.ClearAuth(); err != nil {
		return errors.Wrap(err, "[Service.Logout] clear session")
	}
	if err := s.locations.Clear(); err != nil {
		return errors.Wrap(err, "[Service.Logout] clear location contexts")
	}
	return nil
}

func (s *Service) fetchProfile(ctx context.Context) (json.RawMessage, error) {
	var user json.RawMessage
	if err := s.api.Get(ctx, profileEndpoint, nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// NormalizePhone validates a 10-digit Indian mobile number and returns it with
// the +91 prefix. Already-prefixed input is accepted.
func NormalizePhone(phone string) (string, error) {
	digits := phone
	if len(digits) == 13 && digits[:3] == "+91" {
		digits = digits[3:]
	}
	if !indianMobileRegex.MatchString(digits) {
		return "", ErrInvalidPhone
	}
	return "+91" + digits, nil
}
