package post

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campusworks-org/backend/internal/client"
	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/orm"
	"github.com/campusworks-org/backend/internal/services"
)

const defaultFeedPageSize = 20

type Config struct {
	ImageBucket string
}

type PostServiceImpl struct {
	db     *orm.PostgresClient
	images *client.S3Client
	config Config
	log    *zap.Logger
}

func NewPostService(db *orm.PostgresClient, images *client.S3Client, config Config, log *zap.Logger) services.PostService {
	return &PostServiceImpl{
		db:     db,
		images: images,
		config: config,
		log:    log,
	}
}

func (s *PostServiceImpl) CreatePost(ctx context.Context, authorID string, input services.CreatePostInput) (*orm.Post, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return nil, lib.ValidationError("invalid author id")
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, lib.ValidationError("title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, lib.ValidationError("description is required")
	}
	if strings.TrimSpace(input.Rate) == "" {
		return nil, lib.ValidationError("rate is required")
	}
	if strings.TrimSpace(input.Location) == "" {
		return nil, lib.ValidationError("location is required")
	}

	post := &orm.Post{
		AuthorID:    authorUUID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Rate:        input.Rate,
		Location:    input.Location,
		Status:      string(orm.PostStatusOpenToWork),
		ImageURLs:   input.ImageURLs,
		Skills:      input.Skills,
	}

	if err := s.db.InsertPost(post); err != nil {
		s.log.Error("error inserting post", zap.Error(err))
		return nil, lib.StorageError(err)
	}
	return post, nil
}

func (s *PostServiceImpl) GetPost(ctx context.Context, postID string) (*orm.Post, error) {
	post, err := s.db.SelectPostByID(postID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, lib.NotFoundError("post")
		}
		s.log.Error("error selecting post by id", zap.Error(err))
		return nil, lib.StorageError(err)
	}
	return post, nil
}

func (s *PostServiceImpl) UpdatePost(ctx context.Context, postID string, requesterID string, input services.UpdatePostInput) (*orm.Post, error) {
	post, err := s.db.SelectPostByID(postID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, lib.NotFoundError("post")
		}
		s.log.Error("error selecting post by id", zap.Error(err))
		return nil, lib.StorageError(err)
	}

	if post.AuthorID.String() != requesterID {
		return nil, lib.ForbiddenError("only the author can edit a post")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, lib.ValidationError("title must not be empty")
		}
		post.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		post.Description = *input.Description
	}
	if input.Rate != nil {
		post.Rate = *input.Rate
	}
	if input.Location != nil {
		post.Location = *input.Location
	}
	if input.Status != nil {
		switch orm.PostStatus(*input.Status) {
		case orm.PostStatusOpenToWork, orm.PostStatusClosed:
			post.Status = *input.Status
		default:
			return nil, lib.ValidationError("unknown post status")
		}
	}
	if input.Skills != nil {
		post.Skills = input.Skills
	}

	if err := s.db.UpdatePost(post); err != nil {
		s.log.Error("error updating post", zap.Error(err))
		return nil, lib.StorageError(err)
	}
	return post, nil
}

func (s *PostServiceImpl) ListPosts(ctx context.Context, authorID string, sort orm.PostSort, limit int, cursor string) ([]*orm.Post, error) {
	if limit <= 0 || limit > defaultFeedPageSize {
		limit = defaultFeedPageSize
	}

	posts, err := s.db.SelectPostsWithPagination(authorID, sort, limit, cursor)
	if err != nil {
		s.log.Error("error listing posts", zap.Error(err))
		return nil, lib.StorageError(err)
	}
	return posts, nil
}

// UploadPostImage stores an image under the uploading user's prefix and
// returns its public URL.
func (s *PostServiceImpl) UploadPostImage(ctx context.Context, userID string, filename string, data io.Reader) (string, error) {
	if s.images == nil {
		return "", lib.StorageError(fmt.Errorf("object storage is not configured"))
	}

	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", lib.ValidationError("unsupported image type")
	}

	key := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), ext)
	if err := s.images.UploadFile(ctx, s.config.ImageBucket, key, data); err != nil {
		s.log.Error("error uploading post image", zap.Error(err))
		return "", lib.StorageError(err)
	}

	return s.images.ObjectURL(s.config.ImageBucket, key), nil
}
