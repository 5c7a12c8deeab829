package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bargir/dispatch-gateway/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens. The subject is the
// user id, the jti links the token to a revocable session record.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

func (m *TokenManager) Sign(user *model.User, jti string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(m.ttl)
	c := Claims{
		Role: user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    m.issuer,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses the token and returns the user id, role and jti carried in
// its claims. Any parse, signature or expiry failure maps to
// ErrInvalidToken.
func (m *TokenManager) Verify(token string) (userID int64, role model.Role, jti string, err error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, "", "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return 0, "", "", ErrInvalidToken
	}
	userID, err = strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, "", "", ErrInvalidToken
	}
	r, err := model.ParseRole(claims.Role)
	if err != nil {
		return 0, "", "", ErrInvalidToken
	}
	if claims.ID == "" {
		return 0, "", "", ErrInvalidToken
	}
	return userID, r, claims.ID, nil
}
