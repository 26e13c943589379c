package httpapi

import (
	"time"

	"github.com/campusworks-org/backend/internal/orm"
	"github.com/campusworks-org/backend/internal/services"
)

type authorCard struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type postResponse struct {
	ID           string     `json:"id"`
	Author       authorCard `json:"author"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Rate         string     `json:"rate"`
	Location     string     `json:"location"`
	Status       string     `json:"status"`
	ImageURLs    []string   `json:"image_urls"`
	Skills       []string   `json:"skills"`
	Views        int64      `json:"views"`
	Applications int64      `json:"applications"`
	LikeCount    int64      `json:"like_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

type commentResponse struct {
	ID        string     `json:"id"`
	PostID    string     `json:"post_id"`
	Author    authorCard `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}

type postDetailResponse struct {
	Post          postResponse      `json:"post"`
	LikedByViewer bool              `json:"liked_by_viewer"`
	CommentCount  int64             `json:"comment_count"`
	Comments      []commentResponse `json:"comments"`
}

type likeResponse struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

type counterResponse struct {
	Count int64 `json:"count"`
}

type profileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	FullName    string    `json:"full_name"`
	Pronouns    string    `json:"pronouns,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAuthorCard(profile orm.Profile) authorCard {
	return authorCard{
		ID:        profile.ID.String(),
		FullName:  profile.FullName,
		AvatarURL: profile.AvatarURL,
	}
}

func toPostResponse(post *orm.Post) postResponse {
	return postResponse{
		ID:           post.ID.String(),
		Author:       toAuthorCard(post.Author),
		Title:        post.Title,
		Description:  post.Description,
		Rate:         post.Rate,
		Location:     post.Location,
		Status:       post.Status,
		ImageURLs:    post.ImageURLs,
		Skills:       post.Skills,
		Views:        post.Views,
		Applications: post.Applications,
		LikeCount:    post.LikeCount,
		CreatedAt:    post.CreatedAt,
	}
}

func toCommentResponse(comment *orm.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID.String(),
		PostID:    comment.PostID.String(),
		Author:    toAuthorCard(comment.Author),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

func toCommentResponses(comments []*orm.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, toCommentResponse(comment))
	}
	return out
}

func toPostDetailResponse(detail *services.PostDetail) postDetailResponse {
	post := toPostResponse(detail.Post)
	// Counters come from the counter read, not the (possibly staler) post row.
	post.Views = detail.Counters.Views
	post.Applications = detail.Counters.Applications
	post.LikeCount = detail.Counters.LikeCount

	return postDetailResponse{
		Post:          post,
		LikedByViewer: detail.LikedByViewer,
		CommentCount:  detail.CommentCount,
		Comments:      toCommentResponses(detail.Comments),
	}
}

func toProfileResponse(profile *orm.Profile, includePrivate bool) profileResponse {
	response := profileResponse{
		ID:        profile.ID.String(),
		FullName:  profile.FullName,
		Pronouns:  profile.Pronouns,
		Bio:       profile.Bio,
		AvatarURL: profile.AvatarURL,
		Skills:    profile.Skills,
		CreatedAt: profile.CreatedAt,
	}
	if includePrivate {
		response.Email = profile.Email
		response.PhoneNumber = profile.PhoneNumber
	}
	return response
}
