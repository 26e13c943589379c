package profile

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campusworks-org/backend/internal/client"
	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/orm"
	"github.com/campusworks-org/backend/internal/services"
)

type Config struct {
	AvatarBucket string
}

type ProfileServiceImpl struct {
	db     *orm.PostgresClient
	images *client.S3Client
	config Config
	log    *zap.Logger
}

func NewProfileService(db *orm.PostgresClient, images *client.S3Client, config Config, log *zap.Logger) services.ProfileService {
	return &ProfileServiceImpl{
		db:     db,
		images: images,
		config: config,
		log:    log,
	}
}

func (s *ProfileServiceImpl) GetProfile(ctx context.Context, userID string) (*orm.Profile, error) {
	profile, err := s.db.SelectProfileByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, lib.NotFoundError("profile")
		}
		s.log.Error("error selecting profile", zap.Error(err))
		return nil, lib.StorageError(err)
	}
	return profile, nil
}

func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, userID string, input services.UpdateProfileInput) (*orm.Profile, error) {
	profile, err := s.db.SelectProfileByID(userID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			s.log.Error("error selecting profile", zap.Error(err))
			return nil, lib.StorageError(err)
		}
		return nil, lib.NotFoundError("profile")
	}

	if input.FullName != nil {
		if strings.TrimSpace(*input.FullName) == "" {
			return nil, lib.ValidationError("full name must not be empty")
		}
		profile.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Pronouns != nil {
		profile.Pronouns = *input.Pronouns
	}
	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.PhoneNumber != nil {
		profile.PhoneNumber = *input.PhoneNumber
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = *input.AvatarURL
	}
	if input.Skills != nil {
		profile.Skills = input.Skills
	}

	if err := s.db.UpsertProfile(profile); err != nil {
		s.log.Error("error upserting profile", zap.Error(err))
		return nil, lib.StorageError(err)
	}
	return profile, nil
}

// UploadAvatar stores the avatar image and points the profile at it.
func (s *ProfileServiceImpl) UploadAvatar(ctx context.Context, userID string, filename string, data io.Reader) (string, error) {
	if s.images == nil {
		return "", lib.StorageError(fmt.Errorf("object storage is not configured"))
	}

	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", lib.ValidationError("unsupported image type")
	}

	key := fmt.Sprintf("%s/avatar%s", userID, ext)
	if err := s.images.UploadFile(ctx, s.config.AvatarBucket, key, data); err != nil {
		s.log.Error("error uploading avatar", zap.Error(err))
		return "", lib.StorageError(err)
	}

	url := s.images.ObjectURL(s.config.AvatarBucket, key)
	if err := s.db.UpdateProfileAvatar(userID, url); err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", lib.NotFoundError("profile")
		}
		s.log.Error("error updating avatar url", zap.Error(err))
		return "", lib.StorageError(err)
	}

	return url, nil
}
