package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/campusworks-org/backend/internal/middleware"
	"github.com/campusworks-org/backend/internal/services"
)

type AuthorizationHandler struct {
	auth services.AuthorizationService
	log  *zap.Logger
}

func NewAuthorizationHandler(auth services.AuthorizationService, log *zap.Logger) *AuthorizationHandler {
	return &AuthorizationHandler{
		auth: auth,
		log:  log,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	Profile profileResponse     `json:"profile"`
	Tokens  services.AuthTokens `json:"tokens"`
}

func (h *AuthorizationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request registerRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, h.log, err)
		return
	}

	profile, tokens, err := h.auth.Register(r.Context(), request.Email, request.Password, request.FullName, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Profile: toProfileResponse(profile, true),
		Tokens:  *tokens,
	})
}

func (h *AuthorizationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, h.log, err)
		return
	}

	profile, tokens, err := h.auth.Login(r.Context(), request.Email, request.Password, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Profile: toProfileResponse(profile, true),
		Tokens:  *tokens,
	})
}

func (h *AuthorizationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.auth.Logout(r.Context(), sessionID); err != nil {
		writeError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthorizationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var request refreshRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, h.log, err)
		return
	}

	tokens, err := h.auth.RefreshTokens(r.Context(), request.RefreshToken)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}
