package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/burrowhq/burrow/internal/models"
)

// CommunityRepository provides community-related database operations
type CommunityRepository struct {
	*Repository
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(repo *Repository) *CommunityRepository {
	return &CommunityRepository{Repository: repo}
}

// GetByID retrieves a community by ID
func (r *CommunityRepository) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).First(&community, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &community, nil
}

// GetByName retrieves a community by name
func (r *CommunityRepository) GetByName(ctx context.Context, name string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &community, nil
}

// IsMember reports whether the user belongs to the community's member set
func (r *CommunityRepository) IsMember(ctx context.Context, communityID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

// IsModerator reports whether the user belongs to the community's moderator set
func (r *CommunityRepository) IsModerator(ctx context.Context, communityID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommunityModerator{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListModerators retrieves the community's moderator rows
func (r *CommunityRepository) ListModerators(ctx context.Context, communityID int64) ([]*models.CommunityModerator, error) {
	var moderators []*models.CommunityModerator
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Find(&moderators).Error; err != nil {
		return nil, err
	}
	return moderators, nil
}

// ListMembers retrieves the community's membership rows, oldest first
func (r *CommunityRepository) ListMembers(ctx context.Context, communityID int64, limit, offset int) ([]*models.CommunityMember, error) {
	var members []*models.CommunityMember
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// MemberCommunityIDs retrieves the IDs of communities the user has joined
func (r *CommunityRepository) MemberCommunityIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Where("user_id = ?", userID).
		Pluck("community_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// List retrieves communities ordered by member count, largest first
func (r *CommunityRepository) List(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	var communities []*models.Community
	if err := r.db.WithContext(ctx).
		Order("members_count DESC, id ASC").
		Limit(limit).Offset(offset).
		Find(&communities).Error; err != nil {
		return nil, err
	}
	return communities, nil
}

// Count returns the total number of communities
func (r *CommunityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Community{}).Count(&count).Error
	return count, err
}
