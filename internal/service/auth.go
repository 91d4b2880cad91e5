package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/logger"
)

// SessionStore is a realm's credential pair plus the cached profile.
type SessionStore interface {
	gateway.CredentialStore
	IsAuthenticated(ctx context.Context) bool
	SaveUser(ctx context.Context, user domain.User) error
	LoadUser(ctx context.Context) (*domain.User, error)
}

type AuthService struct {
	api          API
	adminAPI     API
	session      SessionStore
	adminSession SessionStore
	logger       *zap.Logger
}

func NewAuthService(api, adminAPI API, session, adminSession SessionStore, l *zap.Logger) *AuthService {
	return &AuthService{
		api:          api,
		adminAPI:     adminAPI,
		session:      session,
		adminSession: adminSession,
		logger:       logger.OrNop(l),
	}
}

func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := s.api.Post(ctx, "/auth/register/", req, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := s.store(ctx, s.session, resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login stores the returned token pair and profile in the user realm.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	req, err := loginRequest(email, password)
	if err != nil {
		return nil, err
	}

	var resp domain.AuthResponse
	if err := s.api.Post(ctx, "/auth/login/", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.store(ctx, s.session, resp); err != nil {
		return nil, err
	}
	logger.WithTrace(ctx, s.logger).Info("user logged in", zap.Bool("has_refresh", resp.Refresh != ""))
	return &resp, nil
}

// Logout is local only; the backend keeps no session to end.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	return s.session.IsAuthenticated(ctx)
}

// CurrentUser fetches the profile and refreshes the cached copy.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := s.api.Get(ctx, "/auth/user/", nil, &user); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	if err := s.session.SaveUser(ctx, user); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("failed to cache user profile", zap.Error(err))
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	var user domain.User
	if err := s.api.Patch(ctx, "/auth/user/", update, &user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := s.session.SaveUser(ctx, user); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("failed to cache user profile", zap.Error(err))
	}
	return &user, nil
}

// AdminLogin stores the returned pair in the admin realm only.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	req, err := loginRequest(email, password)
	if err != nil {
		return nil, err
	}

	var resp domain.AuthResponse
	if err := s.adminAPI.Post(ctx, "/auth/admin-login/", req, &resp); err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	if err := s.store(ctx, s.adminSession, resp); err != nil {
		return nil, err
	}
	logger.WithTrace(ctx, s.logger).Info("admin logged in")
	return &resp, nil
}

func (s *AuthService) AdminLogout(ctx context.Context) error {
	if err := s.adminSession.Clear(ctx); err != nil {
		return fmt.Errorf("admin logout: %w", err)
	}
	return nil
}

func (s *AuthService) IsAdminAuthenticated(ctx context.Context) bool {
	return s.adminSession.IsAuthenticated(ctx)
}

func (s *AuthService) store(ctx context.Context, session SessionStore, resp domain.AuthResponse) error {
	if err := session.Save(ctx, resp.Tokens()); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	if resp.User != nil {
		if err := session.SaveUser(ctx, *resp.User); err != nil {
			logger.WithTrace(ctx, s.logger).Warn("failed to cache user profile", zap.Error(err))
		}
	}
	return nil
}

func loginRequest(email, password string) (domain.LoginRequest, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.LoginRequest{}, ErrInvalidCredentials
	}
	return domain.LoginRequest{Email: email, Password: password}, nil
}
