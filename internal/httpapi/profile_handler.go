package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/middleware"
	"github.com/campusworks-org/backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
	log      *zap.Logger
}

func NewProfileHandler(profiles services.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		log:      log,
	}
}

func (h *ProfileHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUserUUID(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID.String())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile, true))
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile, false))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUserUUID(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var input services.UpdateProfileInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, h.log, err)
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), userID.String(), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile, true))
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUserUUID(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		writeError(w, h.log, lib.ValidationError("malformed multipart body"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, h.log, lib.ValidationError("an image file is required"))
		return
	}
	defer file.Close()

	url, err := h.profiles.UploadAvatar(r.Context(), userID.String(), header.Filename, file)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
