package core

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/gateway/storage"
	"github.com/burrowhq/burrow/internal/models"
	"github.com/burrowhq/burrow/pkg/logging"
	"github.com/burrowhq/burrow/pkg/telemetry"
)

type mediaStore interface {
	Enabled() bool
	Upload(ctx context.Context, file io.Reader, filename, category string, ownerID int64) (*storage.Object, error)
	Delete(ctx context.Context, publicID string) error
}

// RegisterInput is the payload for account creation
type RegisterInput struct {
	Username string
	Email    string
	Phone    string
	Password string
}

// ProfileInput carries the editable profile fields. Nil pointers leave the
// field unchanged.
type ProfileInput struct {
	Bio     *string
	Gender  *string
	Website *string
}

// UserService manages accounts and profiles
type UserService struct {
	gdb    *gorm.DB
	users  *db.UserRepository
	media  mediaStore
	logger *zap.Logger
}

// NewUserService creates a user service
func NewUserService(repo *db.Repository, media mediaStore) *UserService {
	return &UserService{
		gdb:    repo.DB(),
		users:  db.NewUserRepository(repo),
		media:  media,
		logger: logging.WithService("users"),
	}
}

// newAccount builds the row for a fresh registration. An absent phone is
// stored as NULL, never as the empty string, so phoneless accounts do not
// collide on the unique phone index.
func newAccount(username, email, phone, passwordHash string) *models.User {
	return &models.User{
		Username:     username,
		Email:        email,
		Phone:        nullString(strings.TrimSpace(phone)),
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	}
}

// Register creates an account. Username, email and phone must each be
// unused; the password is stored as a bcrypt hash.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "users.register")
	defer span.End()

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" {
		return nil, Validationf("username and email are required")
	}
	if len(input.Password) < 8 {
		return nil, Validationf("password must be at least 8 characters")
	}

	taken, err := s.users.IdentityTaken(ctx, username, email, strings.TrimSpace(input.Phone))
	if err != nil {
		return nil, Internalf(err, "failed to check identity")
	}
	if taken {
		return nil, Conflictf("username, email or phone already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Internalf(err, "failed to hash password")
	}

	user := newAccount(username, email, input.Phone, string(hash))
	if err := s.users.Create(ctx, user); err != nil {
		return nil, Internalf(err, "failed to create user")
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", username))
	return user, nil
}

// Authenticate verifies a username/password pair. Token minting stays with
// the external identity service; this only validates credentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, Internalf(err, "failed to load user")
	}
	if user == nil {
		return nil, Authenticationf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, Authenticationf("invalid credentials")
	}
	return user, nil
}

// Profile returns a user with its denormalized counters
func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, Internalf(err, "failed to load user")
	}
	if user == nil {
		return nil, NotFoundf("user %d not found", userID)
	}
	return user, nil
}

// ProfileByUsername returns a user by name
func (s *UserService) ProfileByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, Internalf(err, "failed to load user")
	}
	if user == nil {
		return nil, NotFoundf("user %q not found", username)
	}
	return user, nil
}

// UpdateProfile applies the provided profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Bio != nil {
		user.Bio = nullString(*input.Bio)
	}
	if input.Gender != nil {
		user.Gender = nullString(*input.Gender)
	}
	if input.Website != nil {
		user.Website = nullString(*input.Website)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, Internalf(err, "failed to update profile")
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new hash
func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return Authenticationf("current password is incorrect")
	}
	if len(next) < 8 {
		return Validationf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return Internalf(err, "failed to hash password")
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return Internalf(err, "failed to store password")
	}

	s.logger.Info("Password changed", zap.Int64("user_id", userID))
	return nil
}

// UpdateAvatar uploads a new avatar and removes the superseded one.
// Deleting the old object is best-effort.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, file io.Reader, filename string) (*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "users.update_avatar")
	defer span.End()

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.media == nil || !s.media.Enabled() {
		return nil, Upstreamf(nil, "media storage is not configured")
	}

	obj, err := s.media.Upload(ctx, file, filename, "avatars", userID)
	if err != nil {
		return nil, Upstreamf(err, "avatar upload failed")
	}

	previous := user.AvatarID
	user.AvatarID = obj.PublicID
	user.AvatarURL = obj.SecureURL
	if err := s.users.Update(ctx, user); err != nil {
		return nil, Internalf(err, "failed to store avatar")
	}

	if previous != "" {
		if err := s.media.Delete(ctx, previous); err != nil {
			s.logger.Warn("failed to delete superseded avatar",
				zap.String("public_id", previous), zap.Error(err))
		}
	}
	return user, nil
}

// List returns users for the admin surface
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, Internalf(err, "failed to list users")
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, Internalf(err, "failed to count users")
	}
	return users, total, nil
}
