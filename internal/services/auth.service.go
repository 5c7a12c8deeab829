package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/internal/repository"
	"github.com/bargir/dispatch-gateway/pkg/prom"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("access restricted to another role")
	ErrForbidden          = errors.New("forbidden")
)

// dummyHash is a valid bcrypt digest compared against when the email lookup
// misses, so a miss costs the same as a wrong password and the two failures
// stay indistinguishable.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	TouchLogin(ctx context.Context, id int64, at time.Time) error
}

// AuthProvider is the opaque token capability: it issues session-backed
// tokens and resolves presented tokens to principals.
type AuthProvider interface {
	Issue(ctx context.Context, user *model.User) (string, error)
	Resolve(ctx context.Context, token string) (*model.Principal, error)
	Revoke(ctx context.Context, token string) error
}

type AuthService struct {
	users    UserRepository
	provider AuthProvider
}

func NewAuthService(users UserRepository, provider AuthProvider) *AuthService {
	return &AuthService{
		users:    users,
		provider: provider,
	}
}

// Authenticate verifies the credential, enforces the role the calling
// surface requires, refreshes the last-login marker and returns the
// principal with a fresh token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string, required model.Role) (*model.Principal, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// burn the same work as a real comparison
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			prom.IncCounterVec(prom.SystemDispatch, prom.MetricLogins, "denied")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		prom.IncCounterVec(prom.SystemDispatch, prom.MetricLogins, "denied")
		return nil, "", ErrInvalidCredentials
	}

	if user.Role != required {
		prom.IncCounterVec(prom.SystemDispatch, prom.MetricLogins, "role_mismatch")
		return nil, "", ErrRoleMismatch
	}

	// last-login marker, persisted before the principal is handed out
	if err := s.users.TouchLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		return nil, "", fmt.Errorf("touch login: %w", err)
	}

	token, err := s.provider.Issue(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	prom.IncCounterVec(prom.SystemDispatch, prom.MetricLogins, "ok")
	principal := user.Principal()
	return &principal, token, nil
}

// Authorize resolves a session token and re-checks role membership. A token
// that does not resolve yields ErrInvalidCredentials; a valid token with
// the wrong role yields ErrForbidden.
func (s *AuthService) Authorize(ctx context.Context, token string, required model.Role) (*model.Principal, error) {
	principal, err := s.provider.Resolve(ctx, token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if principal.Role != required {
		return nil, ErrForbidden
	}
	return principal, nil
}

// Logout revokes the session behind the token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.provider.Revoke(ctx, token)
}
