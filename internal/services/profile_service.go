package services

import (
	"context"
	"io"

	"github.com/campusworks-org/backend/internal/orm"
)

// UpdateProfileInput upserts the public profile card. Unset pointer fields
// are left unchanged; a nil Skills slice is left unchanged too.
type UpdateProfileInput struct {
	FullName    *string  `json:"full_name"`
	Pronouns    *string  `json:"pronouns"`
	Bio         *string  `json:"bio"`
	PhoneNumber *string  `json:"phone_number"`
	AvatarURL   *string  `json:"avatar_url"`
	Skills      []string `json:"skills"`
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*orm.Profile, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*orm.Profile, error)
	UploadAvatar(ctx context.Context, userID string, filename string, data io.Reader) (string, error)
}
