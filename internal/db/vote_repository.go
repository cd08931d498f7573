package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/burrowhq/burrow/internal/models"
)

// VoteRepository provides vote-related database operations
type VoteRepository struct {
	*Repository
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(repo *Repository) *VoteRepository {
	return &VoteRepository{Repository: repo}
}

// Get retrieves a user's vote on a target, if any
func (r *VoteRepository) Get(ctx context.Context, userID int64, target models.TargetRef) (*models.Vote, error) {
	var vote models.Vote
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.Kind, target.ID).
		First(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

// VoterIDs retrieves the user IDs voting on a target in the given direction
func (r *VoteRepository) VoterIDs(ctx context.Context, target models.TargetRef, direction models.VoteDirection) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("target_type = ? AND target_id = ? AND direction = ?", target.Kind, target.ID, direction).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Counts returns the sizes of a target's upvote and downvote sets
func (r *VoteRepository) Counts(ctx context.Context, target models.TargetRef) (upvotes, downvotes int64, err error) {
	if err = r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("target_type = ? AND target_id = ? AND direction = ?", target.Kind, target.ID, models.VoteUp).
		Count(&upvotes).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("target_type = ? AND target_id = ? AND direction = ?", target.Kind, target.ID, models.VoteDown).
		Count(&downvotes).Error; err != nil {
		return 0, 0, err
	}
	return upvotes, downvotes, nil
}
