package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/models"
	"github.com/burrowhq/burrow/pkg/logging"
	"github.com/burrowhq/burrow/pkg/telemetry"
)

// CommunityInput is the payload for community creation and update
type CommunityInput struct {
	Name        string
	Title       string
	Description string
	Rules       string
	IsPrivate   bool
}

// CommunityService manages communities
type CommunityService struct {
	gdb         *gorm.DB
	communities *db.CommunityRepository
	users       *db.UserRepository
	posts       *db.PostRepository
	logger      *zap.Logger
}

// NewCommunityService creates a community service
func NewCommunityService(repo *db.Repository) *CommunityService {
	return &CommunityService{
		gdb:         repo.DB(),
		communities: db.NewCommunityRepository(repo),
		users:       db.NewUserRepository(repo),
		posts:       db.NewPostRepository(repo),
		logger:      logging.WithService("communities"),
	}
}

// Create creates a community. The creator becomes a moderator and a member
// in the same transaction, so the moderator set is never empty.
func (s *CommunityService) Create(ctx context.Context, creatorID int64, input CommunityInput) (*models.Community, error) {
	ctx, span := telemetry.StartSpan(ctx, "communities.create")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, Validationf("community name is required")
	}

	existing, err := s.communities.GetByName(ctx, name)
	if err != nil {
		return nil, Internalf(err, "failed to check community name")
	}
	if existing != nil {
		return nil, Conflictf("community name %q is taken", name)
	}

	community := &models.Community{
		Name:         name,
		Title:        input.Title,
		Description:  input.Description,
		Rules:        nullString(input.Rules),
		CreatorID:    creatorID,
		IsPrivate:    input.IsPrivate,
		MembersCount: 1,
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return fmt.Errorf("failed to create community: %w", err)
		}
		if err := tx.Create(&models.CommunityModerator{CommunityID: community.ID, UserID: creatorID}).Error; err != nil {
			return fmt.Errorf("failed to seat creator as moderator: %w", err)
		}
		if err := tx.Create(&models.CommunityMember{CommunityID: community.ID, UserID: creatorID}).Error; err != nil {
			return fmt.Errorf("failed to add creator as member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, Internalf(err, "community creation failed")
	}

	s.logger.Info("Community created",
		zap.Int64("community_id", community.ID), zap.String("name", name))
	return community, nil
}

// Get returns a community by id
func (s *CommunityService) Get(ctx context.Context, communityID int64) (*models.Community, error) {
	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return nil, Internalf(err, "failed to load community")
	}
	if community == nil {
		return nil, NotFoundf("community %d not found", communityID)
	}
	return community, nil
}

// List returns communities ordered by membership size
func (s *CommunityService) List(ctx context.Context, limit, offset int) ([]*models.Community, int64, error) {
	communities, err := s.communities.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, Internalf(err, "failed to list communities")
	}
	total, err := s.communities.Count(ctx)
	if err != nil {
		return nil, 0, Internalf(err, "failed to count communities")
	}
	return communities, total, nil
}

// Update edits a community's presentation fields. Moderators only; the name
// and creator are immutable.
func (s *CommunityService) Update(ctx context.Context, actorID, communityID int64, input CommunityInput) (*models.Community, error) {
	ctx, span := telemetry.StartSpan(ctx, "communities.update")
	defer span.End()

	community, err := s.Get(ctx, communityID)
	if err != nil {
		return nil, err
	}

	moderator, err := s.communities.IsModerator(ctx, communityID, actorID)
	if err != nil {
		return nil, Internalf(err, "failed to check moderator")
	}
	if !moderator {
		return nil, Forbiddenf("only moderators can edit the community")
	}

	community.Title = input.Title
	community.Description = input.Description
	community.Rules = nullString(input.Rules)
	community.IsPrivate = input.IsPrivate

	if err := s.gdb.WithContext(ctx).Save(community).Error; err != nil {
		return nil, Internalf(err, "failed to update community")
	}
	return community, nil
}

// Invite adds a user to the community on a moderator's behalf and notifies
// them. Inviting an existing member is a conflict.
func (s *CommunityService) Invite(ctx context.Context, actorID, communityID, userID int64) ([]Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "communities.invite")
	defer span.End()

	community, err := s.Get(ctx, communityID)
	if err != nil {
		return nil, err
	}

	moderator, err := s.communities.IsModerator(ctx, communityID, actorID)
	if err != nil {
		return nil, Internalf(err, "failed to check moderator")
	}
	if !moderator {
		return nil, Forbiddenf("only moderators can invite users")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, Internalf(err, "failed to load user")
	}
	if user == nil {
		return nil, NotFoundf("user %d not found", userID)
	}

	member, err := s.communities.IsMember(ctx, communityID, userID)
	if err != nil {
		return nil, Internalf(err, "failed to check membership")
	}
	if member {
		return nil, Conflictf("user is already a member")
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
		return nil, Internalf(err, "invite failed")
	}

	return []Event{NotifyEvent{
		Recipient:   userID,
		Type:        models.NotifyTypeCommunityInvite,
		Message:     fmt.Sprintf("you were added to %s", community.Name),
		ActorID:     actorID,
		CommunityID: communityID,
	}}, nil
}

// Moderators lists a community's moderator set
func (s *CommunityService) Moderators(ctx context.Context, communityID int64) ([]*models.CommunityModerator, error) {
	if _, err := s.Get(ctx, communityID); err != nil {
		return nil, err
	}
	moderators, err := s.communities.ListModerators(ctx, communityID)
	if err != nil {
		return nil, Internalf(err, "failed to list moderators")
	}
	return moderators, nil
}

// AdminDelete removes a community and everything hanging off it: posts are
// hard-deleted with per-author counter decrements, then memberships,
// moderators and the community row, all in one transaction.
func (s *CommunityService) AdminDelete(ctx context.Context, adminID, communityID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "communities.admin_delete")
	defer span.End()

	admin, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		return Internalf(err, "failed to load user")
	}
	if admin == nil || admin.Role != models.RoleAdmin {
		return Forbiddenf("admin role required")
	}

	if _, err := s.Get(ctx, communityID); err != nil {
		return err
	}

	posts, err := s.posts.AllByCommunity(ctx, communityID)
	if err != nil {
		return Internalf(err, "failed to load community posts")
	}

	// One decrement per author per deleted post.
	perAuthor := make(map[int64]int64)
	for _, post := range posts {
		perAuthor[post.AuthorID]++
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postIDs := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Post{}).Select("id").Where("community_id = ?", communityID)
		if err := tx.Where("post_id IN (?)", postIDs).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete community comments: %w", err)
		}
		if err := tx.Where("community_id = ?", communityID).Delete(&models.Post{}).Error; err != nil {
			return fmt.Errorf("failed to delete community posts: %w", err)
		}
		for authorID, n := range perAuthor {
			if err := tx.Model(&models.User{}).Where("id = ?", authorID).
				Update("num_posts", gorm.Expr("GREATEST(num_posts - ?, 0)", n)).Error; err != nil {
				return fmt.Errorf("failed to drop author num_posts: %w", err)
			}
		}
		if err := tx.Where("community_id = ?", communityID).Delete(&models.CommunityMember{}).Error; err != nil {
			return fmt.Errorf("failed to delete memberships: %w", err)
		}
		if err := tx.Where("community_id = ?", communityID).Delete(&models.CommunityModerator{}).Error; err != nil {
			return fmt.Errorf("failed to delete moderators: %w", err)
		}
		if err := tx.Delete(&models.Community{}, communityID).Error; err != nil {
			return fmt.Errorf("failed to delete community: %w", err)
		}
		return nil
	})
	if err != nil {
		return Internalf(err, "community deletion failed")
	}

	s.logger.Info("Community deleted by admin",
		zap.Int64("community_id", communityID),
		zap.Int64("admin_id", adminID),
		zap.Int("posts_removed", len(posts)))
	return nil
}
