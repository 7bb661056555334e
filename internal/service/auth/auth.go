// Package auth authenticates users by nickname and password and issues the
// HS256 bearer tokens the API accepts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"lakehouse/internal/domain"
)

// CodeInvalidCredentials is the error code of a failed login.
const CodeInvalidCredentials = "INVALID_CREDENTIALS"

// DefaultTokenTTL is used when no TTL is configured.
const DefaultTokenTTL = 24 * time.Hour

// Service logs users in and issues tokens.
type Service struct {
	users  domain.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a Service signing tokens with secret.
func NewService(users domain.UserRepository, secret string, ttl time.Duration, logger *slog.Logger) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With("component", "auth"),
	}, nil
}

// Login checks a nickname and password. Unknown users and wrong passwords
// fail the same way.
func (s *Service) Login(ctx context.Context, nickname, password string) (*domain.AuthToken, error) {
	if nickname == "" || password == "" {
		return nil, domain.ErrUnauthenticated(CodeInvalidCredentials, "Invalid nickname or password")
	}
	u, err := s.users.GetByNickname(ctx, nickname)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, domain.ErrUnauthenticated(CodeInvalidCredentials, "Invalid nickname or password")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login rejected", "nickname", nickname)
		return nil, domain.ErrUnauthenticated(CodeInvalidCredentials, "Invalid nickname or password")
	}
	return s.IssueToken(u.ID, u.Nickname, u.TenantID)
}

// IssueToken signs a token for a subject. tenantID may be empty for
// operators that are not bound to one tenant.
func (s *Service) IssueToken(subject, nickname, tenantID string) (*domain.AuthToken, error) {
	if subject == "" {
		return nil, domain.ErrValidation("subject is required")
	}
	expires := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": s.now().Unix(),
		"exp": expires.Unix(),
	}
	if nickname != "" {
		claims["nickname"] = nickname
	}
	if tenantID != "" {
		claims["tenant_id"] = tenantID
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.AuthToken{Token: signed, ExpiresAt: expires}, nil
}

// CreateUser stores a user with a bcrypt hash of password.
func (s *Service) CreateUser(ctx context.Context, nickname, password, tenantID string) (*domain.User, error) {
	nickname = strings.TrimSpace(nickname)
	switch {
	case nickname == "":
		return nil, domain.ErrValidation("Nickname cannot be empty")
	case len(password) < 8:
		return nil, domain.ErrValidation("Password must be at least 8 characters")
	case tenantID == "":
		return nil, domain.ErrValidation("Tenant ID is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, &domain.User{Nickname: nickname, PasswordHash: string(hash), TenantID: tenantID})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user created", "id", u.ID, "tenant_id", u.TenantID)
	return u, nil
}
