package fixtures

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/campusworks-org/backend/internal/orm"
)

// NewProfile builds an unsaved profile with a unique email.
func NewProfile() *orm.Profile {
	id := uuid.New()
	return &orm.Profile{
		ID:       id,
		Email:    fmt.Sprintf("%s@campus.test", id),
		Password: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		FullName: "Test Student",
		Skills:   []string{"nails", "photography"},
	}
}

// NewPost builds an unsaved post for the given author.
func NewPost(authorID uuid.UUID) *orm.Post {
	return &orm.Post{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Title:       "Nail tech needed for a formal",
		Description: "Two hour booking, supplies provided.",
		Rate:        "$40/hr",
		Location:    "North campus",
		Status:      string(orm.PostStatusOpenToWork),
		Skills:      []string{"nails"},
	}
}

// CreateProfile inserts a fresh profile and returns it.
func CreateProfile(db *orm.PostgresClient) (*orm.Profile, error) {
	profile := NewProfile()
	if err := db.InsertProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// CreatePost inserts a post owned by a fresh profile and returns both.
func CreatePost(db *orm.PostgresClient) (*orm.Post, *orm.Profile, error) {
	author, err := CreateProfile(db)
	if err != nil {
		return nil, nil, err
	}

	post := NewPost(author.ID)
	if err := db.InsertPost(post); err != nil {
		return nil, nil, err
	}
	return post, author, nil
}
