package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/burrowhq/burrow/internal/models"
)

// FollowRepository provides follow-relationship database operations
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// Get retrieves a follow edge, if any
func (r *FollowRepository) Get(ctx context.Context, followerID, followedID int64) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &follow, nil
}

// ListFollowers retrieves the users following the given user
func (r *FollowRepository) ListFollowers(ctx context.Context, userID int64, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN burrow_follows f ON f.follower_id = burrow_users.id").
		Where("f.followed_id = ?", userID).
		Order("f.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListFollowing retrieves the users the given user follows
func (r *FollowRepository) ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN burrow_follows f ON f.followed_id = burrow_users.id").
		Where("f.follower_id = ?", userID).
		Order("f.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FollowerIDs retrieves the IDs of users following the given user
func (r *FollowRepository) FollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followed_id = ?", userID).
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
