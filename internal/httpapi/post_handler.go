package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/middleware"
	"github.com/campusworks-org/backend/internal/orm"
	"github.com/campusworks-org/backend/internal/services"
)

const maxImageUploadBytes = 10 << 20

type PostHandler struct {
	posts services.PostService
	log   *zap.Logger
}

func NewPostHandler(posts services.PostService, log *zap.Logger) *PostHandler {
	return &PostHandler{
		posts: posts,
		log:   log,
	}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUserUUID(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, h.log, lib.ValidationError("malformed request body"))
		return
	}

	// Schema validation catches shape errors with field-level messages
	// before the body is decoded into the input struct.
	validationErrors, err := lib.ValidateJSON(body, lib.CreatePostSchema())
	if err != nil {
		writeError(w, h.log, lib.ValidationError("malformed request body"))
		return
	}
	if len(validationErrors) > 0 {
		writeError(w, h.log, lib.ValidationError(validationErrors[0].Message))
		return
	}

	var input services.CreatePostInput
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, h.log, lib.ValidationError("malformed request body"))
		return
	}

	post, err := h.posts.CreatePost(r.Context(), userID.String(), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPostResponse(post))
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUserUUID(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var input services.UpdatePostInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, h.log, err)
		return
	}

	post, err := h.posts.UpdatePost(r.Context(), r.PathValue("id"), userID.String(), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(post))
}

// List serves the feed. sort is one of recent, popular, applied; author
// narrows the feed to one user's postings.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	sort := orm.PostSort(r.URL.Query().Get("sort"))
	authorID := r.URL.Query().Get("author")
	limit := parseIntParam(r, "limit", 0)
	cursor := r.URL.Query().Get("cursor")

	posts, err := h.posts.ListPosts(r.Context(), authorID, sort, limit, cursor)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	responses := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, toPostResponse(post))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts": responses,
	})
}

func (h *PostHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
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

	url, err := h.posts.UploadPostImage(r.Context(), userID.String(), header.Filename, file)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
