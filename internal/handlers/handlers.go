// Package handlers is the HTTP edge. Handlers parse and validate input,
// call one service method and translate the outcome to a status code.
// No business rule lives here.
package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/bargir/dispatch-gateway/internal/repository"
	"github.com/bargir/dispatch-gateway/internal/services"
	xhttp "github.com/bargir/dispatch-gateway/pkg/http"
	"github.com/bargir/dispatch-gateway/pkg/logger"
)

const principalKey = "principal"

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	return json.Unmarshal(ctx.PostBody(), dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeDomainError maps service and repository outcomes to status codes:
// bad credential 401, wrong role 403, missing entity 404, rejected input
// 400, everything else a logged 500 with a generic body.
func writeDomainError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(ctx, xhttp.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, services.ErrRoleMismatch),
		errors.Is(err, services.ErrForbidden):
		writeError(ctx, xhttp.StatusForbidden, "access denied")
	case errors.Is(err, repository.ErrShipmentNotFound),
		errors.Is(err, repository.ErrDriverNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrMessageNotFound),
		errors.Is(err, services.ErrRecipientNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrValidation):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	default:
		logger.Error("[handlers] unexpected error", "error", err, "path", string(ctx.Path()))
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, ok := ctx.UserValue(name).(string)
	if !ok {
		return 0, errors.New("missing path parameter " + name)
	}
	return strconv.ParseInt(v, 10, 64)
}

// bearerToken pulls the token out of "Authorization: Bearer <token>".
func bearerToken(ctx *xhttp.RequestCtx) string {
	h := string(ctx.Request.Header.Peek("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
