package handlers

import (
	"context"

	"github.com/bargir/dispatch-gateway/internal/model"
	xhttp "github.com/bargir/dispatch-gateway/pkg/http"
)

type AuthService interface {
	Authenticate(ctx context.Context, email, password string, required model.Role) (*model.Principal, string, error)
	Authorize(ctx context.Context, token string, required model.Role) (*model.Principal, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler guards one surface. The required role is fixed at wiring
// time so a handler set can only ever admit the role its surface serves.
type AuthHandler struct {
	svc  AuthService
	role model.Role
}

func NewAuthHandler(authService AuthService, required model.Role) *AuthHandler {
	return &AuthHandler{
		svc:  authService,
		role: required,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	User        *model.Principal `json:"user"`
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req loginRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(ctx, xhttp.StatusBadRequest, "email and password are required")
		return
	}

	principal, token, err := h.svc.Authenticate(ctx, req.Email, req.Password, h.role)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}

	writeJSON(ctx, xhttp.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        principal,
	})
}

func (h *AuthHandler) Logout(ctx *xhttp.RequestCtx) {
	token := bearerToken(ctx)
	if token == "" {
		writeError(ctx, xhttp.StatusUnauthorized, "missing bearer token")
		return
	}
	if err := h.svc.Logout(ctx, token); err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Me(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, xhttp.StatusOK, mustPrincipal(ctx))
}

// Require wraps a handler so it only runs for a valid token of the
// surface's role. The resolved principal is stored on the request ctx.
func (h *AuthHandler) Require(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		token := bearerToken(ctx)
		if token == "" {
			writeError(ctx, xhttp.StatusUnauthorized, "missing bearer token")
			return
		}
		principal, err := h.svc.Authorize(ctx, token, h.role)
		if err != nil {
			writeDomainError(ctx, err)
			return
		}
		ctx.SetUserValue(principalKey, principal)
		next(ctx)
	}
}

func mustPrincipal(ctx *xhttp.RequestCtx) *model.Principal {
	p, _ := ctx.UserValue(principalKey).(*model.Principal)
	return p
}
