package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/models"
	"github.com/burrowhq/burrow/pkg/logging"
	"github.com/burrowhq/burrow/pkg/telemetry"
)

// RelationshipService manages follows, community membership and the
// moderator set
type RelationshipService struct {
	gdb         *gorm.DB
	users       *db.UserRepository
	follows     *db.FollowRepository
	communities *db.CommunityRepository
	logger      *zap.Logger
}

// NewRelationshipService creates a relationship service
func NewRelationshipService(repo *db.Repository) *RelationshipService {
	return &RelationshipService{
		gdb:         repo.DB(),
		users:       db.NewUserRepository(repo),
		follows:     db.NewFollowRepository(repo),
		communities: db.NewCommunityRepository(repo),
		logger:      logging.WithService("relationships"),
	}
}

// Follow adds a follow edge. Following yourself is rejected and following
// the same user twice is a conflict. The edge and both users' counters
// change in one transaction.
func (s *RelationshipService) Follow(ctx context.Context, followerID, targetID int64) ([]Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "relationships.follow")
	defer span.End()

	if followerID == targetID {
		return nil, Validationf("you cannot follow yourself")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, Internalf(err, "failed to load user")
	}
	if target == nil {
		return nil, NotFoundf("user %d not found", targetID)
	}

	existing, err := s.follows.Get(ctx, followerID, targetID)
	if err != nil {
		return nil, Internalf(err, "failed to check follow")
	}
	if existing != nil {
		return nil, Conflictf("already following this user")
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Follow{FollowerID: followerID, FollowedID: targetID}).Error; err != nil {
			return fmt.Errorf("failed to create follow: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			Update("num_following", gorm.Expr("num_following + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump num_following: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", targetID).
			Update("num_followers", gorm.Expr("num_followers + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump num_followers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, Internalf(err, "follow failed")
	}

	follower, err := s.users.GetByID(ctx, followerID)
	actor := "someone"
	if err == nil && follower != nil {
		actor = follower.Username
	}

	return []Event{NotifyEvent{
		Recipient: targetID,
		Type:      models.NotifyTypeFollow,
		Message:   fmt.Sprintf("%s started following you", actor),
		ActorID:   followerID,
	}}, nil
}

// Unfollow removes a follow edge. Removing an absent edge is a conflict and
// unfollowing never notifies.
func (s *RelationshipService) Unfollow(ctx context.Context, followerID, targetID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "relationships.unfollow")
	defer span.End()

	existing, err := s.follows.Get(ctx, followerID, targetID)
	if err != nil {
		return Internalf(err, "failed to check follow")
	}
	if existing == nil {
		return Conflictf("not following this user")
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? AND followed_id = ?", followerID, targetID).
			Delete(&models.Follow{}).Error; err != nil {
			return fmt.Errorf("failed to delete follow: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ? AND num_following > 0", followerID).
			Update("num_following", gorm.Expr("num_following - 1")).Error; err != nil {
			return fmt.Errorf("failed to drop num_following: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ? AND num_followers > 0", targetID).
			Update("num_followers", gorm.Expr("num_followers - 1")).Error; err != nil {
			return fmt.Errorf("failed to drop num_followers: %w", err)
		}
		return nil
	})
	if err != nil {
		return Internalf(err, "unfollow failed")
	}
	return nil
}

// Followers lists the users following userID
func (s *RelationshipService) Followers(ctx context.Context, userID int64, limit, offset int) ([]*models.User, error) {
	users, err := s.follows.ListFollowers(ctx, userID, limit, offset)
	if err != nil {
		return nil, Internalf(err, "failed to list followers")
	}
	return users, nil
}

// Following lists the users userID follows
func (s *RelationshipService) Following(ctx context.Context, userID int64, limit, offset int) ([]*models.User, error) {
	users, err := s.follows.ListFollowing(ctx, userID, limit, offset)
	if err != nil {
		return nil, Internalf(err, "failed to list following")
	}
	return users, nil
}

// JoinCommunity adds a membership. Joining twice is a conflict.
func (s *RelationshipService) JoinCommunity(ctx context.Context, userID, communityID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "relationships.join_community")
	defer span.End()

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return Internalf(err, "failed to load community")
	}
	if community == nil {
		return NotFoundf("community %d not found", communityID)
	}

	member, err := s.communities.IsMember(ctx, communityID, userID)
	if err != nil {
		return Internalf(err, "failed to check membership")
	}
	if member {
		return Conflictf("already a member of this community")
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.CommunityMember{CommunityID: communityID, UserID: userID}).Error; err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}
		if err := tx.Model(&models.Community{}).Where("id = ?", communityID).
			Update("members_count", gorm.Expr("members_count + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump members_count: %w", err)
		}
		return nil
	})
	if err != nil {
		return Internalf(err, "join failed")
	}
	return nil
}

// LeaveCommunity removes a membership. Leaving without being a member is a
// conflict.
func (s *RelationshipService) LeaveCommunity(ctx context.Context, userID, communityID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "relationships.leave_community")
	defer span.End()

	member, err := s.communities.IsMember(ctx, communityID, userID)
	if err != nil {
		return Internalf(err, "failed to check membership")
	}
	if !member {
		return Conflictf("not a member of this community")
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&models.CommunityMember{}).Error; err != nil {
			return fmt.Errorf("failed to delete membership: %w", err)
		}
		if err := tx.Model(&models.Community{}).Where("id = ? AND members_count > 0", communityID).
			Update("members_count", gorm.Expr("members_count - 1")).Error; err != nil {
			return fmt.Errorf("failed to drop members_count: %w", err)
		}
		return nil
	})
	if err != nil {
		return Internalf(err, "leave failed")
	}
	return nil
}

// AddModerator appoints a moderator. Only the creator may appoint, and
// appointing an existing moderator is a no-op.
func (s *RelationshipService) AddModerator(ctx context.Context, actorID, communityID, userID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "relationships.add_moderator")
	defer span.End()

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return Internalf(err, "failed to load community")
	}
	if community == nil {
		return NotFoundf("community %d not found", communityID)
	}
	if community.CreatorID != actorID {
		return Forbiddenf("only the community creator can appoint moderators")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Internalf(err, "failed to load user")
	}
	if user == nil {
		return NotFoundf("user %d not found", userID)
	}

	already, err := s.communities.IsModerator(ctx, communityID, userID)
	if err != nil {
		return Internalf(err, "failed to check moderator")
	}
	if already {
		return nil
	}

	if err := s.gdb.WithContext(ctx).
		Create(&models.CommunityModerator{CommunityID: communityID, UserID: userID}).Error; err != nil {
		return Internalf(err, "failed to add moderator")
	}

	s.logger.Info("Moderator appointed",
		zap.Int64("community_id", communityID), zap.Int64("user_id", userID))
	return nil
}

// RemoveModerator strips a moderator. The creator cannot be removed.
func (s *RelationshipService) RemoveModerator(ctx context.Context, actorID, communityID, userID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "relationships.remove_moderator")
	defer span.End()

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return Internalf(err, "failed to load community")
	}
	if community == nil {
		return NotFoundf("community %d not found", communityID)
	}
	if community.CreatorID != actorID {
		return Forbiddenf("only the community creator can remove moderators")
	}
	if userID == community.CreatorID {
		return Validationf("the community creator cannot be removed from the moderator set")
	}

	moderator, err := s.communities.IsModerator(ctx, communityID, userID)
	if err != nil {
		return Internalf(err, "failed to check moderator")
	}
	if !moderator {
		return Conflictf("user is not a moderator")
	}

	if err := s.gdb.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.CommunityModerator{}).Error; err != nil {
		return Internalf(err, "failed to remove moderator")
	}
	return nil
}
