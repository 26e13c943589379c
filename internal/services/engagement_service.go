package services

import (
	"context"

	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/orm"
)

// LikeResult reports the like membership state and the aggregate count after
// a like or unlike action.
type LikeResult struct {
	Liked bool
	Count int64
}

// PostDetail is the read projection shown on the post page. It is assembled
// from independent reads with no cross-read snapshot: the aggregate count
// may momentarily lead the like row's visibility, never the reverse, because
// counters are only adjusted after the row mutation commits.
type PostDetail struct {
	Post          *orm.Post
	Counters      orm.PostCounters
	LikedByViewer bool
	Comments      []*orm.Comment
	CommentCount  int64
}

// EngagementService mediates every mutation of a post's view/like/comment
// state. Identity is always an explicit argument; nothing here reads an
// ambient current user.
type EngagementService interface {
	// RecordView counts one view-triggering navigation. sessionID selects
	// the dedup scope and may be empty for anonymous viewers.
	RecordView(ctx context.Context, postID string, sessionID string) (int64, error)
	RecordApplication(ctx context.Context, postID string) (int64, error)
	Like(ctx context.Context, postID string, userID string) (*LikeResult, error)
	Unlike(ctx context.Context, postID string, userID string) (*LikeResult, error)
	AddComment(ctx context.Context, postID string, userID string, text string) (*orm.Comment, error)
	ListComments(ctx context.Context, postID string, order lib.SortOrder, limit int, cursor string) ([]*orm.Comment, error)
	DeletePost(ctx context.Context, postID string, requesterID string) error
	GetPostDetail(ctx context.Context, postID string, viewerID string) (*PostDetail, error)
}

// EngagementStore is the persistence surface the engagement service mutates.
// Counter mutations are atomic increments at the storage layer; the like row
// operations are conditional, reporting whether a row actually changed.
// *orm.PostgresClient implements it.
type EngagementStore interface {
	SelectPostByID(id string) (*orm.Post, error)
	SelectPostCounters(id string) (*orm.PostCounters, error)
	IncrementPostViews(id string) (int64, error)
	IncrementPostApplications(id string) (int64, error)
	AdjustPostLikeCount(id string, delta int64) (int64, error)
	InsertPostLike(like *orm.PostLike) (bool, error)
	DeletePostLike(postID string, userID string) (bool, error)
	HasPostLike(postID string, userID string) (bool, error)
	InsertComment(comment *orm.Comment) error
	SelectCommentsWithPagination(postID string, order lib.SortOrder, limit int, cursor string) ([]*orm.Comment, error)
	CountCommentsByPostID(postID string) (int64, error)
	DeletePostCascade(post *orm.Post) error
}
