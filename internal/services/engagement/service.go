package engagement

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campusworks-org/backend/internal/event"
	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/orm"
	"github.com/campusworks-org/backend/internal/services"
)

// ViewDedupPolicy selects how repeated views from one session are counted.
type ViewDedupPolicy string

const (
	// ViewDedupNone counts every view-triggering navigation.
	ViewDedupNone ViewDedupPolicy = "none"
	// ViewDedupSession counts at most one view per (post, session) pair
	// within the configured window. This is the default: the counter is
	// meant to approximate distinct readers, not navigations.
	ViewDedupSession ViewDedupPolicy = "session"
)

const (
	counterRetryBackoff    = 250 * time.Millisecond
	defaultCommentPageSize = 50
)

// ViewDeduper answers whether a (post, session) view is the first within a
// window. *client.RedisClient implements it.
type ViewDeduper interface {
	FirstView(ctx context.Context, postID string, sessionID string, window time.Duration) (bool, error)
}

// EventWriter publishes engagement events. *event.KafkaClient implements it.
type EventWriter interface {
	WriteEvent(ctx context.Context, event string, payload interface{}) error
}

// ImageStore deletes stored post images during post cleanup.
// *client.S3Client implements it.
type ImageStore interface {
	DeleteFile(ctx context.Context, bucket string, key string) error
	ObjectKeyFromURL(bucket string, url string) string
}

type Config struct {
	ViewDedupPolicy ViewDedupPolicy
	ViewDedupWindow time.Duration
	ImageBucket     string
}

type EngagementServiceImpl struct {
	db      services.EngagementStore
	deduper ViewDeduper
	broker  EventWriter
	images  ImageStore
	config  Config
	log     *zap.Logger
}

// NewEngagementService wires the engagement core. deduper, broker and images
// may be nil; the matching features degrade to no-ops with a log line.
func NewEngagementService(
	db services.EngagementStore,
	deduper ViewDeduper,
	broker EventWriter,
	images ImageStore,
	config Config,
	log *zap.Logger,
) services.EngagementService {
	if config.ViewDedupPolicy == "" {
		config.ViewDedupPolicy = ViewDedupSession
	}
	if config.ViewDedupWindow <= 0 {
		config.ViewDedupWindow = 30 * time.Minute
	}
	return &EngagementServiceImpl{
		db:      db,
		deduper: deduper,
		broker:  broker,
		images:  images,
		config:  config,
		log:     log,
	}
}

func (s *EngagementServiceImpl) RecordView(ctx context.Context, postID string, sessionID string) (int64, error) {
	if s.config.ViewDedupPolicy == ViewDedupSession && sessionID != "" && s.deduper != nil {
		first, err := s.deduper.FirstView(ctx, postID, sessionID, s.config.ViewDedupWindow)
		if err != nil {
			// Dedup is an accuracy refinement; losing it must not lose
			// the view itself.
			s.log.Warn("view dedup unavailable, counting view", zap.Error(err))
		} else if !first {
			counters, err := s.db.SelectPostCounters(postID)
			if err != nil {
				return 0, s.mapStoreError(err)
			}
			return counters.Views, nil
		}
	}

	return s.incrementWithRetry(ctx, postID, s.db.IncrementPostViews)
}

func (s *EngagementServiceImpl) RecordApplication(ctx context.Context, postID string) (int64, error) {
	return s.incrementWithRetry(ctx, postID, s.db.IncrementPostApplications)
}

func (s *EngagementServiceImpl) Like(ctx context.Context, postID string, userID string) (*services.LikeResult, error) {
	post, err := s.db.SelectPostByID(postID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, lib.ValidationError("invalid user id")
	}

	created, err := s.db.InsertPostLike(&orm.PostLike{
		PostID: post.ID,
		UserID: userUUID,
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	if !created {
		// Idempotency: already liked, report current state without
		// touching the counter.
		counters, err := s.db.SelectPostCounters(postID)
		if err != nil {
			return nil, s.mapStoreError(err)
		}
		return &services.LikeResult{Liked: true, Count: counters.LikeCount}, nil
	}

	count, err := s.adjustLikeCountWithRetry(ctx, postID, 1)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.ENGAGEMENT_POST_LIKED, event.PostEvent{PostID: postID, UserID: userID})

	return &services.LikeResult{Liked: true, Count: count}, nil
}

func (s *EngagementServiceImpl) Unlike(ctx context.Context, postID string, userID string) (*services.LikeResult, error) {
	_, err := s.db.SelectPostByID(postID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	deleted, err := s.db.DeletePostLike(postID, userID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	if !deleted {
		// Idempotency: not liked, report current state.
		counters, err := s.db.SelectPostCounters(postID)
		if err != nil {
			return nil, s.mapStoreError(err)
		}
		return &services.LikeResult{Liked: false, Count: counters.LikeCount}, nil
	}

	count, err := s.adjustLikeCountWithRetry(ctx, postID, -1)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.ENGAGEMENT_POST_UNLIKED, event.PostEvent{PostID: postID, UserID: userID})

	return &services.LikeResult{Liked: false, Count: count}, nil
}

func (s *EngagementServiceImpl) AddComment(ctx context.Context, postID string, userID string, text string) (*orm.Comment, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, lib.ValidationError("comment text must not be empty")
	}

	post, err := s.db.SelectPostByID(postID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, lib.ValidationError("invalid user id")
	}

	comment := &orm.Comment{
		PostID:   post.ID,
		AuthorID: userUUID,
		Content:  content,
	}
	if err := s.db.InsertComment(comment); err != nil {
		return nil, s.mapStoreError(err)
	}

	s.publish(ctx, event.ENGAGEMENT_COMMENT_CREATED, event.PostEvent{PostID: postID, UserID: userID})

	return comment, nil
}

func (s *EngagementServiceImpl) ListComments(ctx context.Context, postID string, order lib.SortOrder, limit int, cursor string) ([]*orm.Comment, error) {
	if limit <= 0 || limit > defaultCommentPageSize {
		limit = defaultCommentPageSize
	}

	comments, err := s.db.SelectCommentsWithPagination(postID, order, limit, cursor)
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return comments, nil
}

func (s *EngagementServiceImpl) DeletePost(ctx context.Context, postID string, requesterID string) error {
	post, err := s.db.SelectPostByID(postID)
	if err != nil {
		return s.mapStoreError(err)
	}

	if post.AuthorID.String() != requesterID {
		return lib.ForbiddenError("only the author can delete a post")
	}

	if err := s.db.DeletePostCascade(post); err != nil {
		return s.mapStoreError(err)
	}

	// Image cleanup is best effort: the post row is the source of truth for
	// existence, an orphaned object is logged and left behind.
	if s.images != nil {
		for _, url := range post.ImageURLs {
			key := s.images.ObjectKeyFromURL(s.config.ImageBucket, url)
			if key == "" {
				continue
			}
			if err := s.images.DeleteFile(ctx, s.config.ImageBucket, key); err != nil {
				s.log.Warn("failed to delete post image",
					zap.String("post_id", postID),
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}

	s.publish(ctx, event.ENGAGEMENT_POST_DELETED, event.PostEvent{PostID: postID, UserID: requesterID})

	return nil
}

func (s *EngagementServiceImpl) GetPostDetail(ctx context.Context, postID string, viewerID string) (*services.PostDetail, error) {
	post, err := s.db.SelectPostByID(postID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	counters, err := s.db.SelectPostCounters(postID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	likedByViewer := false
	if viewerID != "" {
		likedByViewer, err = s.db.HasPostLike(postID, viewerID)
		if err != nil {
			return nil, s.mapStoreError(err)
		}
	}

	comments, err := s.db.SelectCommentsWithPagination(postID, lib.SortNewestFirst, defaultCommentPageSize, "")
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	commentCount, err := s.db.CountCommentsByPostID(postID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	return &services.PostDetail{
		Post:          post,
		Counters:      *counters,
		LikedByViewer: likedByViewer,
		Comments:      comments,
		CommentCount:  commentCount,
	}, nil
}

// incrementWithRetry runs an atomic counter increment, retrying once after a
// short backoff on a transient storage failure. A lost increment is a
// correctness defect, not a display glitch.
func (s *EngagementServiceImpl) incrementWithRetry(ctx context.Context, postID string, increment func(string) (int64, error)) (int64, error) {
	count, err := increment(postID)
	if err == nil {
		return count, nil
	}
	if err == gorm.ErrRecordNotFound {
		return 0, lib.NotFoundError("post")
	}

	s.log.Warn("counter increment failed, retrying", zap.String("post_id", postID), zap.Error(err))
	select {
	case <-ctx.Done():
		return 0, lib.StorageError(err)
	case <-time.After(counterRetryBackoff):
	}

	count, err = increment(postID)
	if err != nil {
		return 0, s.mapStoreError(err)
	}
	return count, nil
}

func (s *EngagementServiceImpl) adjustLikeCountWithRetry(ctx context.Context, postID string, delta int64) (int64, error) {
	return s.incrementWithRetry(ctx, postID, func(id string) (int64, error) {
		return s.db.AdjustPostLikeCount(id, delta)
	})
}

func (s *EngagementServiceImpl) publish(ctx context.Context, name string, payload event.PostEvent) {
	if s.broker == nil {
		return
	}
	if err := s.broker.WriteEvent(ctx, name, payload); err != nil {
		s.log.Warn("failed to publish engagement event", zap.String("event", name), zap.Error(err))
	}
}

func (s *EngagementServiceImpl) mapStoreError(err error) error {
	if err == gorm.ErrRecordNotFound {
		return lib.NotFoundError("post")
	}
	return lib.StorageError(err)
}
