package orm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusworks-org/backend/internal/lib"
)

// Comment is an append-only record. Rows are never updated; deletion is
// reserved for the comment author or the post author.
type Comment struct {
	ID        uuid.UUID `gorm:"primaryKey"`
	PostID    uuid.UUID `gorm:"index"`
	Post      Post
	AuthorID  uuid.UUID
	Author    Profile   `gorm:"foreignKey:AuthorID"`
	Content   string
	CreatedAt time.Time
}

func (c *Comment) TableName() string {
	return "comment"
}

func (c *Comment) BeforeCreate(transaction *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c Comment) GetID() uuid.UUID {
	return c.ID
}

func (c Comment) GetCreatedAt() time.Time {
	return c.CreatedAt
}

func (c *PostgresClient) SelectCommentByID(id string) (*Comment, error) {
	var comment Comment
	tx := c.database.
		Where("id = ?", id).
		Preload("Author").
		First(&comment)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &comment, nil
}

// SelectCommentsWithPagination lists a post's comments ordered by creation
// time with the (created_at, id) key breaking timestamp ties, so readers see
// a stable insertion order. The cursor restarts the sequence after the last
// comment of the previous page.
func (c *PostgresClient) SelectCommentsWithPagination(postID string, order lib.SortOrder, limit int, cursor string) ([]*Comment, error) {
	var comments []*Comment
	query := c.database.
		Preload("Author").
		Where("post_id = ?", postID)

	if order == lib.SortOldestFirst {
		query = query.Order("created_at ASC, id ASC")
	} else {
		query = query.Order("created_at DESC, id DESC")
	}

	paginatedQuery, err := lib.Paginate[Comment](c.database, query, order, cursor, limit)
	if err != nil {
		return nil, err
	}

	tx := paginatedQuery.Find(&comments)
	if tx.Error != nil {
		return nil, tx.Error
	}

	return comments, nil
}

func (c *PostgresClient) InsertComment(comment *Comment) error {
	transaction := c.database.Create(comment)
	return transaction.Error
}

func (c *PostgresClient) CountCommentsByPostID(postID string) (int64, error) {
	var count int64
	tx := c.database.
		Model(&Comment{}).
		Where("post_id = ?", postID).
		Count(&count)

	if tx.Error != nil {
		return 0, tx.Error
	}

	return count, nil
}
