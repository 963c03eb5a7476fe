package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/apperr"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/config"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/repository"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/security"
)

const (
	MsgEmailExists        = "E-mail address already exists!"
	MsgUserNotFound       = "A user with this email could not be found."
	MsgInvalidCredentials = "Email or password is incorrect."
	MsgAccountNotVerified = "Please verify your email to enable your account."

	minNameLength     = 2
	minPasswordLength = 8
)

var (
	ErrUserNotFound       = apperr.Unauthorized(MsgUserNotFound)
	ErrInvalidCredentials = apperr.Unauthorized(MsgInvalidCredentials)
	ErrAccountNotVerified = apperr.Unauthorized(MsgAccountNotVerified)
	ErrInvalidToken       = apperr.InvalidToken()
	ErrNotAuthenticated   = apperr.NotAuthenticated()
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordInput struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type AuthService struct {
	users    repository.UserRepository
	jwt      *security.JWTManager
	hasher   *security.PasswordHasher
	notifier AccountNotifier
	logger   *slog.Logger
	appURL   string
	resetTTL time.Duration
	now      func() time.Time
}

func NewAuthService(
	cfg *config.Config,
	users repository.UserRepository,
	jwt *security.JWTManager,
	hasher *security.PasswordHasher,
	notifier AccountNotifier,
	logger *slog.Logger,
) *AuthService {
	resetTTL := cfg.PasswordResetTTL
	if resetTTL <= 0 {
		resetTTL = 360 * time.Second
	}
	return &AuthService{
		users:    users,
		jwt:      jwt,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger,
		appURL:   strings.TrimRight(cfg.AppURL, "/"),
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for reset windows.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	var fe fieldErrors
	fe.minLen("name", in.Name, minNameLength)
	if fe.email("email", in.Email) {
		exists, err := s.users.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("check email: %w", err))
		}
		if exists {
			fe.add("email", MsgEmailExists, in.Email)
		}
	}
	fe.minLen("password", in.Password, minPasswordLength)
	if err := fe.err(); err != nil {
		observability.RecordAuthFlowEvent(ctx, "register", "validation_failed")
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Internal(fmt.Errorf("create user: %w", err))
	}

	// The verification token is the user id itself.
	if err := s.notifier.SendEmailVerification(ctx, VerificationNotification{
		UserID:          user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Token:           user.ID,
		VerificationURL: s.appURL + "/auth/account-verify/" + user.ID,
	}); err != nil {
		s.logger.ErrorContext(ctx, "verification email failed", "user_id", user.ID, "error", err)
	}
	observability.RecordAuthFlowEvent(ctx, "register", "success")
	return user, nil
}

func (s *AuthService) VerifyAccount(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		observability.RecordAuthFlowEvent(ctx, "verify", "invalid_token")
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindInactiveByID(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthFlowEvent(ctx, "verify", "invalid_token")
			return nil, ErrInvalidToken
		}
		return nil, apperr.Internal(err)
	}
	user.IsActive = true
	if err := s.users.Save(ctx, user); err != nil {
		return nil, apperr.Internal(fmt.Errorf("activate user: %w", err))
	}
	observability.RecordAuthFlowEvent(ctx, "verify", "success")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = normalizeEmail(in.Email)
	var fe fieldErrors
	fe.email("email", in.Email)
	fe.minLen("password", in.Password, minPasswordLength)
	if err := fe.err(); err != nil {
		observability.RecordAuthFlowEvent(ctx, "login", "validation_failed")
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthFlowEvent(ctx, "login", "user_not_found")
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	ok, err := s.hasher.Verify(user.PasswordHash, in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		observability.RecordAuthFlowEvent(ctx, "login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		observability.RecordAuthFlowEvent(ctx, "login", "not_verified")
		return nil, ErrAccountNotVerified
	}

	access, err := s.jwt.SignAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refresh, err := s.jwt.SignRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	observability.RecordAuthFlowEvent(ctx, "login", "success")
	return &LoginResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.jwt.AccessTTL()),
	}, nil
}

// ForgotPassword opens a reset window and mails the link. Delivery is not
// confirmed to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	var fe fieldErrors
	fe.email("email", email)
	if err := fe.err(); err != nil {
		observability.RecordAuthFlowEvent(ctx, "forgot_password", "validation_failed")
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthFlowEvent(ctx, "forgot_password", "user_not_found")
			return ErrUserNotFound
		}
		return apperr.Internal(err)
	}

	token := uuid.NewString()
	expiresAt := s.now().Add(s.resetTTL)
	user.SetResetToken(token, expiresAt)
	if err := s.users.Save(ctx, user); err != nil {
		return apperr.Internal(fmt.Errorf("store reset token: %w", err))
	}

	if err := s.notifier.SendPasswordReset(ctx, PasswordResetNotification{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
		ResetURL:  s.appURL + "/auth/update-password/" + token,
	}); err != nil {
		s.logger.ErrorContext(ctx, "password reset email failed", "user_id", user.ID, "error", err)
	}
	observability.RecordAuthFlowEvent(ctx, "forgot_password", "success")
	return nil
}

// LookupResetToken confirms token belongs to an open reset window.
func (s *AuthService) LookupResetToken(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.users.FindByResetToken(ctx, strings.TrimSpace(token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthFlowEvent(ctx, "reset_lookup", "invalid_token")
			return nil, ErrInvalidToken
		}
		return nil, apperr.Internal(err)
	}
	observability.RecordAuthFlowEvent(ctx, "reset_lookup", "success")
	return user, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	var fe fieldErrors
	fe.email("email", in.Email)
	if strings.TrimSpace(in.Token) == "" {
		fe.add("token", "Invalid value", in.Token)
	}
	fe.minLen("password", in.Password, minPasswordLength)
	if err := fe.err(); err != nil {
		observability.RecordAuthFlowEvent(ctx, "reset_password", "validation_failed")
		return err
	}

	now := s.now()
	user, err := s.users.FindByEmailAndResetToken(ctx, in.Email, in.Token, now)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthFlowEvent(ctx, "reset_password", "invalid_token")
			return ErrInvalidToken
		}
		return apperr.Internal(err)
	}
	if !user.HasValidResetToken(in.Token, now) {
		observability.RecordAuthFlowEvent(ctx, "reset_password", "invalid_token")
		return ErrInvalidToken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return apperr.Internal(err)
	}
	user.PasswordHash = hash
	user.ClearResetToken()
	if err := s.users.Save(ctx, user); err != nil {
		return apperr.Internal(fmt.Errorf("rotate password: %w", err))
	}
	observability.RecordAuthFlowEvent(ctx, "reset_password", "success")
	return nil
}

// Refresh exchanges the bearer refresh token in authHeader for a new access
// token. Activation is not re-checked and no refresh token is reissued.
func (s *AuthService) Refresh(ctx context.Context, authHeader string) (string, error) {
	raw, ok := bearerToken(authHeader)
	if !ok {
		observability.RecordAuthFlowEvent(ctx, "refresh", "missing_token")
		return "", ErrNotAuthenticated
	}
	claims, err := s.jwt.ParseRefreshToken(raw)
	if err != nil {
		observability.RecordAuthFlowEvent(ctx, "refresh", "invalid_token")
		return "", ErrNotAuthenticated.Wrap(err)
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthFlowEvent(ctx, "refresh", "user_not_found")
			return "", ErrNotAuthenticated
		}
		return "", apperr.Internal(err)
	}
	access, err := s.jwt.SignAccessToken(user.ID, user.Email)
	if err != nil {
		return "", apperr.Internal(err)
	}
	observability.RecordAuthFlowEvent(ctx, "refresh", "success")
	return access, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
