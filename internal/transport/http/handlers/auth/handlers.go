package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hrdocs/internal/platform/auth"
	"hrdocs/internal/requestctx"
	"hrdocs/internal/transport/http/api"
	"hrdocs/internal/transport/http/middleware"
)

type Handler struct {
	Auth auth.Authenticator
}

func NewHandler(authenticator auth.Authenticator) *Handler {
	return &Handler{Auth: authenticator}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}
	if !h.Auth.Enabled() {
		api.Fail(w, http.StatusNotFound, "auth_disabled", "authentication is not configured", requestctx.GetRequestID(r.Context()))
		return
	}

	token, expires, err := h.Auth.Login(payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.Warn().Str("email", strings.ToLower(strings.TrimSpace(payload.Email))).Str("requestId", requestctx.GetRequestID(r.Context())).Msg("login rejected")
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Success(w, loginResponse{Token: token, ExpiresAt: expires.UTC()}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		if h.Auth.Enabled() {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
			return
		}
		api.Success(w, map[string]string{"email": "", "role": auth.RoleHR}, requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"email": claims.Email, "role": claims.Role}, requestctx.GetRequestID(r.Context()))
}
