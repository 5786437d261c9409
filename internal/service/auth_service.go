package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/qprep-client/internal/apiclient"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/store"
	"github.com/stemsi/qprep-client/internal/validator"
)

// AuthService handles OTP login and the cached profile.
type AuthService struct {
	api  *apiclient.Client
	auth *store.AuthStore
	log  zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(api *apiclient.Client, auth *store.AuthStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		api:  api,
		auth: auth,
		log:  log.With().Str("component", "auth_service").Logger(),
	}
}

// SendOTP requests a login code for a 10-digit mobile number.
func (s *AuthService) SendOTP(ctx context.Context, mobile string) error {
	req := model.SendOTPRequest{MobileNo: strings.TrimSpace(mobile)}
	if err := validator.Check(&req); err != nil {
		return err
	}
	if err := s.api.SendOTP(ctx, req); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// VerifyOTP exchanges the code for a token and persists the session.
func (s *AuthService) VerifyOTP(ctx context.Context, mobile, otp string) (*model.User, error) {
	req := model.VerifyOTPRequest{MobileNo: strings.TrimSpace(mobile), OTP: strings.TrimSpace(otp)}
	if err := validator.Check(&req); err != nil {
		return nil, err
	}

	resp, err := s.api.VerifyOTP(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("verify otp: backend returned no token")
	}
	if err := s.auth.Save(ctx, resp.AccessToken, &resp.User); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.log.Info().Str("user_id", resp.User.ID).Msg("Logged in")
	return &resp.User, nil
}

// Logout forgets the stored credentials.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.auth.Clear(ctx)
}

// CurrentUser returns the cached profile without a network call.
func (s *AuthService) CurrentUser() *model.User {
	return s.auth.User()
}

// Profile refreshes the cached profile. A 401 drops the stored credentials.
func (s *AuthService) Profile(ctx context.Context) (*model.User, error) {
	if !s.auth.IsAuthenticated() {
		return nil, ErrNotLoggedIn
	}

	user, err := s.api.GetMyProfile(ctx)
	if err != nil {
		return nil, s.handleAuthError(ctx, "get profile", err)
	}
	if err := s.auth.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile edits the profile and persists the merged result.
func (s *AuthService) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (*model.User, error) {
	cached := s.auth.User()
	if cached == nil || !s.auth.IsAuthenticated() {
		return nil, ErrNotLoggedIn
	}
	if req.UserID == "" {
		req.UserID = cached.ID
	}
	if err := validator.Check(&req); err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateProfile(ctx, req)
	if err != nil {
		return nil, s.handleAuthError(ctx, "update profile", err)
	}

	merged := *cached
	req.Apply(&merged)
	if updated != nil && updated.ID != "" {
		merged = *updated
	}
	if err := s.auth.SaveUser(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (s *AuthService) handleAuthError(ctx context.Context, op string, err error) error {
	if apiclient.IsUnauthorized(err) {
		s.log.Warn().Msg("Token rejected; clearing stored credentials")
		if clearErr := s.auth.Clear(ctx); clearErr != nil {
			s.log.Error().Err(clearErr).Msg("Failed to clear credentials")
		}
	}
	return classify(op, err)
}
