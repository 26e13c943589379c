package orm

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/campusworks-org/backend/internal/lib"
)

type PostStatus string

const (
	PostStatusOpenToWork PostStatus = "OPEN_TO_WORK"
	PostStatusClosed     PostStatus = "CLOSED"
)

type Post struct {
	ID           uuid.UUID `gorm:"primaryKey"`
	AuthorID     uuid.UUID
	Author       Profile `gorm:"foreignKey:AuthorID"`
	Title        string
	Description  string
	Rate         string
	Location     string
	Status       string
	ImageURLs    pq.StringArray `gorm:"type:text[]"`
	Skills       pq.StringArray `gorm:"type:text[]"`
	Views        int64
	Applications int64
	LikeCount    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Post) TableName() string {
	return "post"
}

func (p *Post) BeforeCreate(transaction *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = string(PostStatusOpenToWork)
	}
	return nil
}

func (p Post) GetID() uuid.UUID {
	return p.ID
}

func (p Post) GetCreatedAt() time.Time {
	return p.CreatedAt
}

// PostCounters holds the aggregate counters displayed with a post.
type PostCounters struct {
	Views        int64
	LikeCount    int64
	Applications int64
}

// PostSort selects the feed ordering.
type PostSort string

const (
	PostSortRecent  PostSort = "recent"
	PostSortPopular PostSort = "popular"
	PostSortApplied PostSort = "applied"
)

func (c *PostgresClient) SelectPostByID(id string) (*Post, error) {
	var post Post
	tx := c.database.
		Where("id = ?", id).
		Preload("Author").
		First(&post)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &post, nil
}

func (c *PostgresClient) SelectPostsWithPagination(authorID string, sort PostSort, limit int, cursor string) ([]*Post, error) {
	var posts []*Post
	query := c.database.
		Preload("Author")

	switch sort {
	case PostSortPopular:
		query = query.Order("views DESC, created_at DESC, id DESC")
	case PostSortApplied:
		query = query.Order("applications DESC, created_at DESC, id DESC")
	default:
		query = query.Order("created_at DESC, id DESC")
	}

	if authorID != "" {
		query = query.Where("author_id = ?", authorID)
	}

	// Keyset pagination only composes with the created_at ordering; the
	// popularity sorts fall back to offset-free first pages.
	if sort == PostSortRecent || sort == "" {
		paginatedQuery, err := lib.Paginate[Post](c.database, query, lib.SortNewestFirst, cursor, limit)
		if err != nil {
			return nil, err
		}
		query = paginatedQuery
	} else {
		query = query.Limit(limit)
	}

	tx := query.Find(&posts)
	if tx.Error != nil {
		return nil, tx.Error
	}

	return posts, nil
}

func (c *PostgresClient) InsertPost(post *Post) error {
	transaction := c.database.Create(post)
	return transaction.Error
}

func (c *PostgresClient) UpdatePost(post *Post) error {
	tx := c.database.Model(post).Omit("Author").Updates(post)
	return tx.Error
}

// SelectPostCounters reads the aggregate counters for a post.
func (c *PostgresClient) SelectPostCounters(id string) (*PostCounters, error) {
	var counters PostCounters
	tx := c.database.
		Model(&Post{}).
		Select("views", "like_count", "applications").
		Where("id = ?", id).
		Take(&counters)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &counters, nil
}

// IncrementPostViews bumps the view counter by one with a single atomic
// UPDATE at the storage layer and returns the new value. Never read the
// counter into memory and write a computed value back.
func (c *PostgresClient) IncrementPostViews(id string) (int64, error) {
	var views int64
	tx := c.database.
		Raw("UPDATE post SET views = views + 1, updated_at = NOW() WHERE id = ? RETURNING views", id).
		Scan(&views)

	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	return views, nil
}

// IncrementPostApplications bumps the application counter atomically.
func (c *PostgresClient) IncrementPostApplications(id string) (int64, error) {
	var applications int64
	tx := c.database.
		Raw("UPDATE post SET applications = applications + 1, updated_at = NOW() WHERE id = ? RETURNING applications", id).
		Scan(&applications)

	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	return applications, nil
}

// AdjustPostLikeCount applies an atomic delta to the cached like count,
// clamped at zero, and returns the new value.
func (c *PostgresClient) AdjustPostLikeCount(id string, delta int64) (int64, error) {
	var likeCount int64
	tx := c.database.
		Raw("UPDATE post SET like_count = GREATEST(like_count + ?, 0), updated_at = NOW() WHERE id = ? RETURNING like_count", delta, id).
		Scan(&likeCount)

	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	return likeCount, nil
}

// ReconcilePostLikeCount rewrites the cached like count from the like rows,
// which are the source of truth for the aggregate.
func (c *PostgresClient) ReconcilePostLikeCount(id string) (int64, error) {
	var likeCount int64
	tx := c.database.
		Raw("UPDATE post SET like_count = (SELECT COUNT(*) FROM post_like WHERE post_id = post.id) WHERE id = ? RETURNING like_count", id).
		Scan(&likeCount)

	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	return likeCount, nil
}

// DeletePostCascade removes a post together with its likes and comments in
// one transaction. Stored images are cleaned up by the caller afterwards;
// the post row is the source of truth for existence.
func (c *PostgresClient) DeletePostCascade(post *Post) error {
	return c.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}
