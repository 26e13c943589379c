package lib

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Paginatable defines the interface for models that can be paginated.
// The model must have an ID and a CreatedAt field.
type Paginatable interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
}

// SortOrder selects the traversal direction of a paginated listing.
type SortOrder string

const (
	SortNewestFirst SortOrder = "desc"
	SortOldestFirst SortOrder = "asc"
)

// Paginate applies cursor-based keyset pagination to a GORM query.
// Rows are keyed by (created_at, id) so timestamp ties keep insertion order.
// The cursor is the ID of the last item from the previous page; an empty
// cursor starts from the beginning of the sequence.
func Paginate[T Paginatable](db *gorm.DB, query *gorm.DB, order SortOrder, cursor string, limit int) (*gorm.DB, error) {
	if cursor == "" {
		return query.Limit(limit), nil
	}

	var cursorModel T
	err := db.Model(&cursorModel).Where("id = ?", cursor).First(&cursorModel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Stale cursor: return an empty page rather than restarting.
			return query.Where("1 = 0"), nil
		}
		return nil, err
	}

	condition := "(created_at < ?) OR (created_at = ? AND id < ?)"
	if order == SortOldestFirst {
		condition = "(created_at > ?) OR (created_at = ? AND id > ?)"
	}

	paginatedQuery := query.Where(
		condition,
		cursorModel.GetCreatedAt(),
		cursorModel.GetCreatedAt(),
		cursorModel.GetID(),
	).Limit(limit)

	return paginatedQuery, nil
}
