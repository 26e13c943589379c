package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/middleware"
	"github.com/campusworks-org/backend/internal/services"
)

type EngagementHandler struct {
	engagement services.EngagementService
	log        *zap.Logger
}

func NewEngagementHandler(engagement services.EngagementService, log *zap.Logger) *EngagementHandler {
	return &EngagementHandler{
		engagement: engagement,
		log:        log,
	}
}

// GetPostDetail serves the post page projection: post, counters, the
// viewer's like state and the first page of comments.
func (h *EngagementHandler) GetPostDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.engagement.GetPostDetail(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostDetailResponse(detail))
}

// RecordView counts a view-triggering navigation. Anonymous viewers may
// identify their browsing session with X-Client-ID so the dedup policy can
// apply to them too.
func (h *EngagementHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		sessionID = r.Header.Get("X-Client-ID")
	}

	views, err := h.engagement.RecordView(r.Context(), r.PathValue("id"), sessionID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, counterResponse{Count: views})
}

func (h *EngagementHandler) RecordApplication(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireUserUUID(r.Context()); err != nil {
		writeError(w, h.log, err)
		return
	}

	applications, err := h.engagement.RecordApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, counterResponse{Count: applications})
}

func (h *EngagementHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUserUUID(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	result, err := h.engagement.Like(r.Context(), r.PathValue("id"), userID.String())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, likeResponse{Liked: result.Liked, Count: result.Count})
}

func (h *EngagementHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUserUUID(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	result, err := h.engagement.Unlike(r.Context(), r.PathValue("id"), userID.String())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, likeResponse{Liked: result.Liked, Count: result.Count})
}

type addCommentRequest struct {
	Content string `json:"content"`
}

func (h *EngagementHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUserUUID(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var request addCommentRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, h.log, err)
		return
	}

	comment, err := h.engagement.AddComment(r.Context(), r.PathValue("id"), userID.String(), request.Content)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (h *EngagementHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	order := lib.SortNewestFirst
	if r.URL.Query().Get("order") == "asc" {
		order = lib.SortOldestFirst
	}
	limit := parseIntParam(r, "limit", 0)
	cursor := r.URL.Query().Get("cursor")

	comments, err := h.engagement.ListComments(r.Context(), r.PathValue("id"), order, limit, cursor)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"comments": toCommentResponses(comments),
	})
}

func (h *EngagementHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUserUUID(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if err := h.engagement.DeletePost(r.Context(), r.PathValue("id"), userID.String()); err != nil {
		writeError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
