package authorization

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	jwtpkg "github.com/campusworks-org/backend/internal/jwt"
	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/orm"
	"github.com/campusworks-org/backend/internal/services"
)

const minPasswordLength = 8

type AuthorizationServiceImpl struct {
	db  *orm.PostgresClient
	jwt *jwtpkg.JWT
	log *zap.Logger
}

func NewAuthorizationService(db *orm.PostgresClient, jwt *jwtpkg.JWT, log *zap.Logger) services.AuthorizationService {
	return &AuthorizationServiceImpl{
		db:  db,
		jwt: jwt,
		log: log,
	}
}

func (s *AuthorizationServiceImpl) Register(ctx context.Context, email string, password string, fullName string, userAgent string, ipAddress string) (*orm.Profile, *services.AuthTokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, lib.ValidationError("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, nil, lib.ValidationError("password must be at least 8 characters")
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, nil, lib.ValidationError("full name is required")
	}

	_, err := s.db.SelectProfileByEmail(email)
	if err == nil {
		return nil, nil, lib.ValidationError("an account with this email already exists")
	}
	if err != gorm.ErrRecordNotFound {
		s.log.Error("error checking existing profile", zap.Error(err))
		return nil, nil, lib.StorageError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, lib.StorageError(err)
	}

	profile := &orm.Profile{
		Email:    email,
		Password: string(hash),
		FullName: strings.TrimSpace(fullName),
	}
	if err := s.db.InsertProfile(profile); err != nil {
		s.log.Error("error inserting profile", zap.Error(err))
		return nil, nil, lib.StorageError(err)
	}

	tokens, err := s.openSession(profile, userAgent, ipAddress)
	if err != nil {
		return nil, nil, err
	}

	return profile, tokens, nil
}

func (s *AuthorizationServiceImpl) Login(ctx context.Context, email string, password string, userAgent string, ipAddress string) (*orm.Profile, *services.AuthTokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	profile, err := s.db.SelectProfileByEmail(email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, lib.UnauthenticatedError("invalid email or password")
		}
		s.log.Error("error selecting profile by email", zap.Error(err))
		return nil, nil, lib.StorageError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password)); err != nil {
		return nil, nil, lib.UnauthenticatedError("invalid email or password")
	}

	tokens, err := s.openSession(profile, userAgent, ipAddress)
	if err != nil {
		return nil, nil, err
	}

	return profile, tokens, nil
}

func (s *AuthorizationServiceImpl) Logout(ctx context.Context, sessionID string) error {
	session, err := s.db.SelectSessionByID(sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Already logged out.
			return nil
		}
		s.log.Error("error selecting session", zap.Error(err))
		return lib.StorageError(err)
	}

	if err := s.db.DeleteSession(session); err != nil {
		s.log.Error("error deleting session", zap.Error(err))
		return lib.StorageError(err)
	}
	return nil
}

func (s *AuthorizationServiceImpl) RefreshTokens(ctx context.Context, refreshToken string) (*services.AuthTokens, error) {
	sessionID, err := s.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, lib.UnauthenticatedError("invalid refresh token")
	}

	session, err := s.db.SelectSessionByID(sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, lib.UnauthenticatedError("session revoked")
		}
		s.log.Error("error selecting session", zap.Error(err))
		return nil, lib.StorageError(err)
	}

	return s.issueTokens(session.ID.String())
}

func (s *AuthorizationServiceImpl) openSession(profile *orm.Profile, userAgent string, ipAddress string) (*services.AuthTokens, error) {
	session := &orm.Session{
		UserID:    profile.ID,
		UserAgent: userAgent,
		IpAddress: ipAddress,
	}
	if err := s.db.InsertSession(session); err != nil {
		s.log.Error("error inserting session", zap.Error(err))
		return nil, lib.StorageError(err)
	}

	return s.issueTokens(session.ID.String())
}

func (s *AuthorizationServiceImpl) issueTokens(sessionID string) (*services.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(sessionID)
	if err != nil {
		return nil, lib.StorageError(err)
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(sessionID)
	if err != nil {
		return nil, lib.StorageError(err)
	}

	return &services.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
