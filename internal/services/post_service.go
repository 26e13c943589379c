package services

import (
	"context"
	"io"

	"github.com/campusworks-org/backend/internal/orm"
)

// CreatePostInput carries the fields of a new posting. Images are uploaded
// separately and referenced by URL, matching the two-step create flow.
type CreatePostInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Rate        string   `json:"rate"`
	Location    string   `json:"location"`
	Skills      []string `json:"skills"`
	ImageURLs   []string `json:"image_urls"`
}

// UpdatePostInput updates only the fields that are set.
type UpdatePostInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Rate        *string  `json:"rate"`
	Location    *string  `json:"location"`
	Status      *string  `json:"status"`
	Skills      []string `json:"skills"`
}

// PostService covers the posting lifecycle except engagement mutations,
// which belong to EngagementService.
type PostService interface {
	CreatePost(ctx context.Context, authorID string, input CreatePostInput) (*orm.Post, error)
	GetPost(ctx context.Context, postID string) (*orm.Post, error)
	UpdatePost(ctx context.Context, postID string, requesterID string, input UpdatePostInput) (*orm.Post, error)
	ListPosts(ctx context.Context, authorID string, sort orm.PostSort, limit int, cursor string) ([]*orm.Post, error)
	UploadPostImage(ctx context.Context, userID string, filename string, data io.Reader) (string, error)
}
