package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/middleware"
	"github.com/campusworks-org/backend/internal/orm"
	"github.com/campusworks-org/backend/internal/services"
)

// stubEngagement returns canned results and records the arguments it was
// called with.
type stubEngagement struct {
	likeResult *services.LikeResult
	detail     *services.PostDetail
	comment    *orm.Comment
	err        error

	gotPostID  string
	gotUserID  string
	gotContent string
	gotSession string
}

func (s *stubEngagement) RecordView(ctx context.Context, postID string, sessionID string) (int64, error) {
	s.gotPostID, s.gotSession = postID, sessionID
	return 7, s.err
}

func (s *stubEngagement) RecordApplication(ctx context.Context, postID string) (int64, error) {
	s.gotPostID = postID
	return 3, s.err
}

func (s *stubEngagement) Like(ctx context.Context, postID string, userID string) (*services.LikeResult, error) {
	s.gotPostID, s.gotUserID = postID, userID
	return s.likeResult, s.err
}

func (s *stubEngagement) Unlike(ctx context.Context, postID string, userID string) (*services.LikeResult, error) {
	s.gotPostID, s.gotUserID = postID, userID
	return s.likeResult, s.err
}

func (s *stubEngagement) AddComment(ctx context.Context, postID string, userID string, text string) (*orm.Comment, error) {
	s.gotPostID, s.gotUserID, s.gotContent = postID, userID, text
	return s.comment, s.err
}

func (s *stubEngagement) ListComments(ctx context.Context, postID string, order lib.SortOrder, limit int, cursor string) ([]*orm.Comment, error) {
	s.gotPostID = postID
	return nil, s.err
}

func (s *stubEngagement) DeletePost(ctx context.Context, postID string, requesterID string) error {
	s.gotPostID, s.gotUserID = postID, requesterID
	return s.err
}

func (s *stubEngagement) GetPostDetail(ctx context.Context, postID string, viewerID string) (*services.PostDetail, error) {
	s.gotPostID, s.gotUserID = postID, viewerID
	return s.detail, s.err
}

func newEngagementRequest(method string, path string, body string, userID string) *http.Request {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, path, nil)
	} else {
		request = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if userID != "" {
		request = request.WithContext(middleware.SetUserID(request.Context(), userID))
	}
	return request
}

// routePostRequest dispatches through a mux so PathValue is populated the
// same way the server populates it.
func routePostRequest(handler http.HandlerFunc, pattern string, request *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, request)
	return recorder
}

func TestLikeRequiresAuthentication(t *testing.T) {
	stub := &stubEngagement{}
	handler := NewEngagementHandler(stub, zap.NewNop())

	request := newEngagementRequest(http.MethodPost, "/v1/posts/abc/likes", "", "")
	recorder := routePostRequest(handler.Like, "POST /v1/posts/{id}/likes", request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, stub.gotPostID, "the service must not be reached")
}

func TestLikeReturnsStateAndCount(t *testing.T) {
	userID := uuid.NewString()
	stub := &stubEngagement{likeResult: &services.LikeResult{Liked: true, Count: 12}}
	handler := NewEngagementHandler(stub, zap.NewNop())

	request := newEngagementRequest(http.MethodPost, "/v1/posts/abc/likes", "", userID)
	recorder := routePostRequest(handler.Like, "POST /v1/posts/{id}/likes", request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "abc", stub.gotPostID)
	assert.Equal(t, userID, stub.gotUserID)

	var response likeResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Liked)
	assert.Equal(t, int64(12), response.Count)
}

func TestAddCommentMapsValidationError(t *testing.T) {
	stub := &stubEngagement{err: lib.ValidationError("comment text must not be empty")}
	handler := NewEngagementHandler(stub, zap.NewNop())

	request := newEngagementRequest(http.MethodPost, "/v1/posts/abc/comments", `{"content": "  "}`, uuid.NewString())
	recorder := routePostRequest(handler.AddComment, "POST /v1/posts/{id}/comments", request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAddCommentRejectsMalformedBody(t *testing.T) {
	stub := &stubEngagement{}
	handler := NewEngagementHandler(stub, zap.NewNop())

	request := newEngagementRequest(http.MethodPost, "/v1/posts/abc/comments", `{"content"`, uuid.NewString())
	recorder := routePostRequest(handler.AddComment, "POST /v1/posts/{id}/comments", request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, stub.gotContent)
}

func TestDeletePostMapsForbidden(t *testing.T) {
	stub := &stubEngagement{err: lib.ForbiddenError("only the author can delete a post")}
	handler := NewEngagementHandler(stub, zap.NewNop())

	request := newEngagementRequest(http.MethodDelete, "/v1/posts/abc", "", uuid.NewString())
	recorder := routePostRequest(handler.DeletePost, "DELETE /v1/posts/{id}", request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestGetPostDetailMapsNotFound(t *testing.T) {
	stub := &stubEngagement{err: lib.NotFoundError("post")}
	handler := NewEngagementHandler(stub, zap.NewNop())

	request := newEngagementRequest(http.MethodGet, "/v1/posts/abc", "", "")
	recorder := routePostRequest(handler.GetPostDetail, "GET /v1/posts/{id}", request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetPostDetailMasksStorageFailure(t *testing.T) {
	stub := &stubEngagement{err: lib.StorageError(assert.AnError)}
	handler := NewEngagementHandler(stub, zap.NewNop())

	request := newEngagementRequest(http.MethodGet, "/v1/posts/abc", "", "")
	recorder := routePostRequest(handler.GetPostDetail, "GET /v1/posts/{id}", request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), assert.AnError.Error())
}

func TestRecordViewUsesClientIDHeader(t *testing.T) {
	stub := &stubEngagement{}
	handler := NewEngagementHandler(stub, zap.NewNop())

	request := newEngagementRequest(http.MethodPost, "/v1/posts/abc/views", "", "")
	request.Header.Set("X-Client-ID", "browser-session-1")
	recorder := routePostRequest(handler.RecordView, "POST /v1/posts/{id}/views", request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "browser-session-1", stub.gotSession)

	var response counterResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, int64(7), response.Count)
}
