package services

import (
	"context"
	"errors"
	"log"

	"capex-approval/internal/adapters/graph"
	"capex-approval/internal/config"
	"capex-approval/internal/core/domain"
	"capex-approval/internal/pkg/jwt"
)

// Auth errors
var (
	ErrMissingCode     = errors.New("authorization code and redirect URI are required")
	ErrMissingRefresh  = errors.New("refresh token is required")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrTempLoginClosed = errors.New("temporary login is disabled")
)

// AuthService handles the login flows and session token lifecycle
type AuthService struct {
	azure *graph.AzureADClient
	cfg   *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(azure *graph.AzureADClient, cfg *config.Config) *AuthService {
	return &AuthService{
		azure: azure,
		cfg:   cfg,
	}
}

// LoginInput represents the authorization-code login input
type LoginInput struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

// AuthResponse represents a successful login
type AuthResponse struct {
	User         *domain.UserIdentity `json:"user"`
	Token        string               `json:"token"`
	AccessToken  string               `json:"accessToken,omitempty"`
	RefreshToken string               `json:"refreshToken,omitempty"`
	ExpiresIn    int                  `json:"expiresIn,omitempty"`
	IsTempLogin  bool                 `json:"isTempLogin,omitempty"`
}

// RefreshResponse represents a refreshed identity-provider token
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// Login exchanges an authorization code for tokens, resolves the user
// profile and admin flag, and mints a session token.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	if input.Code == "" || input.RedirectURI == "" {
		return nil, ErrMissingCode
	}

	tokens, err := s.azure.ExchangeCode(ctx, input.Code, input.RedirectURI)
	if err != nil {
		return nil, err
	}

	profile, err := s.azure.GetProfile(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	isAdmin := s.azure.CheckAdminRole(ctx, tokens.AccessToken)

	user := &domain.UserIdentity{
		ID:      profile.ID,
		Email:   profile.Email(),
		Name:    profile.DisplayName,
		IsAdmin: isAdmin,
	}

	sessionToken, err := jwt.GenerateSessionToken(
		user.ID, user.Email, user.Name, user.IsAdmin, false,
		s.cfg.Session.Secret, s.cfg.Session.LifetimeHrs,
	)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s (admin: %v)", user.Email, user.IsAdmin)

	return &AuthResponse{
		User:         user,
		Token:        sessionToken,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}, nil
}

// Refresh exchanges a refresh token for a new identity-provider access
// token. The session token is not renewed here; it must be reissued
// through a full login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefresh
	}

	tokens, err := s.azure.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{
		AccessToken: tokens.AccessToken,
		ExpiresIn:   tokens.ExpiresIn,
	}, nil
}

// LoginURL builds the identity provider's authorize URL
func (s *AuthService) LoginURL(redirectURI string) string {
	return s.azure.GetLoginURL(redirectURI)
}

// tempUsers are the two fixed development identities. No credential
// check applies; temp login must never be reachable in prod mode.
var tempUsers = map[string]domain.UserIdentity{
	"admin@company.com": {
		ID:         "temp-admin-001",
		Email:      "admin@company.com",
		Name:       "IT Manager",
		IsAdmin:    true,
		IsTempUser: true,
	},
	"user@company.com": {
		ID:         "temp-user-001",
		Email:      "user@company.com",
		Name:       "General User",
		IsAdmin:    false,
		IsTempUser: true,
	},
}

// TempLogin issues a session token for one of the fixed development
// identities, selected by email or role ("admin" selects the admin).
func (s *AuthService) TempLogin(email, role string) (*AuthResponse, error) {
	if !s.cfg.IsDev() {
		return nil, ErrTempLoginClosed
	}

	var user domain.UserIdentity
	if u, ok := tempUsers[email]; ok {
		user = u
	} else if role == "admin" {
		user = tempUsers["admin@company.com"]
	} else {
		user = tempUsers["user@company.com"]
	}

	sessionToken, err := jwt.GenerateSessionToken(
		user.ID, user.Email, user.Name, user.IsAdmin, true,
		s.cfg.Session.Secret, s.cfg.Session.LifetimeHrs,
	)
	if err != nil {
		return nil, err
	}

	log.Printf("⚠️ Temp login issued for %s (dev mode only)", user.Email)

	return &AuthResponse{
		User:        &user,
		Token:       sessionToken,
		IsTempLogin: true,
	}, nil
}

// Verify resolves a session token into a user identity. Claims are
// trusted verbatim for the token's lifetime.
func (s *AuthService) Verify(token string) (*domain.UserIdentity, error) {
	claims, err := jwt.ValidateSessionToken(token, s.cfg.Session.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	return &domain.UserIdentity{
		ID:         claims.UserID,
		Email:      claims.Email,
		Name:       claims.Name,
		IsAdmin:    claims.IsAdmin,
		IsTempUser: claims.IsTempUser,
	}, nil
}
