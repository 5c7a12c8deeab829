package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bargir/dispatch-gateway/internal/model"
)

// UserSource resolves a user id to its identity record. Satisfied by
// repository.UserRepository.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Provider implements the token side of authentication: it issues signed
// access tokens backed by revocable sessions and resolves presented tokens
// back to principals. Credential verification stays in the service layer.
type Provider struct {
	tokens   *TokenManager
	sessions *SessionStore
	users    UserSource
}

func NewProvider(tokens *TokenManager, sessions *SessionStore, users UserSource) *Provider {
	return &Provider{
		tokens:   tokens,
		sessions: sessions,
		users:    users,
	}
}

// Issue creates a session record and returns a signed token bound to it.
func (p *Provider) Issue(ctx context.Context, user *model.User) (string, error) {
	jti := uuid.NewString()
	if err := p.sessions.Put(jti, user.ID); err != nil {
		return "", err
	}
	token, _, err := p.tokens.Sign(user, jti, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return token, nil
}

// Resolve verifies the token signature, requires a live session for its
// jti, and loads the current identity record. Every failure collapses to
// ErrInvalidToken so callers cannot distinguish revoked from malformed.
func (p *Provider) Resolve(ctx context.Context, token string) (*model.Principal, error) {
	userID, _, jti, err := p.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	sessionUserID, err := p.sessions.Get(jti)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if sessionUserID != userID {
		return nil, ErrInvalidToken
	}

	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	principal := user.Principal()
	return &principal, nil
}

// Revoke deletes the session behind the token. The token itself remains
// well formed but will no longer resolve.
func (p *Provider) Revoke(ctx context.Context, token string) error {
	_, _, jti, err := p.tokens.Verify(token)
	if err != nil {
		return ErrInvalidToken
	}
	return p.sessions.Delete(jti)
}
