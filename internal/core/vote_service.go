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

// voteTransition is what casting a vote does to the caller's existing vote
// on the target
type voteTransition int

const (
	voteAdd voteTransition = iota
	voteRetract
	voteMove
)

// String returns the wire name of the transition
func (t voteTransition) String() string {
	switch t {
	case voteAdd:
		return "added"
	case voteRetract:
		return "retracted"
	case voteMove:
		return "moved"
	}
	return "unknown"
}

// transition resolves the toggle semantics: no existing vote adds, the same
// direction retracts, the opposite direction moves
func transition(existing *models.Vote, direction models.VoteDirection) voteTransition {
	if existing == nil {
		return voteAdd
	}
	if existing.Direction == direction {
		return voteRetract
	}
	return voteMove
}

// voteDeltas returns the change each transition applies to the target's
// upvote and downvote counters
func voteDeltas(t voteTransition, direction models.VoteDirection) (up, down int64) {
	switch t {
	case voteAdd:
		if direction == models.VoteUp {
			return 1, 0
		}
		return 0, 1
	case voteRetract:
		if direction == models.VoteUp {
			return -1, 0
		}
		return 0, -1
	case voteMove:
		if direction == models.VoteUp {
			return 1, -1
		}
		return -1, 1
	}
	return 0, 0
}

// VoteResult is the post-cast state of the target's vote counters
type VoteResult struct {
	Action        string `json:"action"`
	UpvoteCount   int64  `json:"upvoteCount"`
	DownvoteCount int64  `json:"downvoteCount"`
	Score         int64  `json:"score"`
}

// VoteService casts votes on posts and comments
type VoteService struct {
	gdb      *gorm.DB
	votes    *db.VoteRepository
	posts    *db.PostRepository
	comments *db.CommentRepository
	users    *db.UserRepository
	logger   *zap.Logger
}

// NewVoteService creates a vote service
func NewVoteService(repo *db.Repository) *VoteService {
	return &VoteService{
		gdb:      repo.DB(),
		votes:    db.NewVoteRepository(repo),
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		users:    db.NewUserRepository(repo),
		logger:   logging.WithService("votes"),
	}
}

// Cast applies a vote with toggle semantics: casting the direction already
// held retracts it, casting the opposite direction moves it. The vote row
// and the target's counters change in one transaction.
func (s *VoteService) Cast(ctx context.Context, userID int64, target models.TargetRef, direction models.VoteDirection) (*VoteResult, []Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "votes.cast")
	defer span.End()

	if direction != models.VoteUp && direction != models.VoteDown {
		return nil, nil, Validationf("invalid vote direction")
	}
	if target.Kind != models.TargetPost && target.Kind != models.TargetComment {
		return nil, nil, Validationf("votes apply to posts and comments only")
	}

	ownerID, postID, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.votes.Get(ctx, userID, target)
	if err != nil {
		return nil, nil, Internalf(err, "failed to load existing vote")
	}

	tr := transition(existing, direction)
	up, down := voteDeltas(tr, direction)

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch tr {
		case voteAdd:
			vote := &models.Vote{UserID: userID, Target: target, Direction: direction}
			if err := tx.Create(vote).Error; err != nil {
				return fmt.Errorf("failed to create vote: %w", err)
			}
		case voteRetract:
			if err := tx.Delete(&models.Vote{}, existing.ID).Error; err != nil {
				return fmt.Errorf("failed to delete vote: %w", err)
			}
		case voteMove:
			if err := tx.Model(&models.Vote{}).Where("id = ?", existing.ID).
				Update("direction", direction).Error; err != nil {
				return fmt.Errorf("failed to move vote: %w", err)
			}
		}
		return s.applyDeltas(tx, target, up, down)
	})
	if err != nil {
		return nil, nil, Internalf(err, "vote failed")
	}

	s.logger.Debug("Vote cast",
		zap.Int64("user_id", userID),
		zap.String("target_type", target.Kind.String()),
		zap.Int64("target_id", target.ID),
		zap.String("action", tr.String()))

	result, err := s.counters(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	result.Action = tr.String()

	var events []Event
	// Only an added vote notifies, and never the voter's own content.
	if tr == voteAdd && ownerID != userID {
		events = append(events, s.notifyEvent(ctx, userID, ownerID, target, postID, direction))
	}
	return result, events, nil
}

// resolveTarget checks existence and returns the content owner and, for
// comments, the enclosing post
func (s *VoteService) resolveTarget(ctx context.Context, target models.TargetRef) (ownerID, postID int64, err error) {
	switch target.Kind {
	case models.TargetPost:
		post, err := s.posts.GetByID(ctx, target.ID)
		if err != nil {
			return 0, 0, Internalf(err, "failed to load post")
		}
		if post == nil || post.Status == models.StatusRemoved {
			return 0, 0, NotFoundf("post %d not found", target.ID)
		}
		return post.AuthorID, post.ID, nil
	case models.TargetComment:
		comment, err := s.comments.GetByID(ctx, target.ID)
		if err != nil {
			return 0, 0, Internalf(err, "failed to load comment")
		}
		if comment == nil || comment.Status == models.StatusRemoved {
			return 0, 0, NotFoundf("comment %d not found", target.ID)
		}
		return comment.AuthorID, comment.PostID, nil
	}
	return 0, 0, Validationf("unsupported vote target %q", target.Kind.String())
}

func (s *VoteService) applyDeltas(tx *gorm.DB, target models.TargetRef, up, down int64) error {
	updates := map[string]interface{}{
		"upvote_count":   gorm.Expr("upvote_count + ?", up),
		"downvote_count": gorm.Expr("downvote_count + ?", down),
		"score":          gorm.Expr("score + ?", up-down),
	}
	var model interface{} = &models.Post{}
	if target.Kind == models.TargetComment {
		model = &models.Comment{}
	}
	if err := tx.Model(model).Where("id = ?", target.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update vote counters: %w", err)
	}
	return nil
}

func (s *VoteService) counters(ctx context.Context, target models.TargetRef) (*VoteResult, error) {
	if target.Kind == models.TargetPost {
		post, err := s.posts.GetByID(ctx, target.ID)
		if err != nil || post == nil {
			return nil, Internalf(err, "failed to reload post counters")
		}
		return &VoteResult{UpvoteCount: post.UpvoteCount, DownvoteCount: post.DownvoteCount, Score: post.Score}, nil
	}
	comment, err := s.comments.GetByID(ctx, target.ID)
	if err != nil || comment == nil {
		return nil, Internalf(err, "failed to reload comment counters")
	}
	return &VoteResult{UpvoteCount: comment.UpvoteCount, DownvoteCount: comment.DownvoteCount, Score: comment.Score}, nil
}

func (s *VoteService) notifyEvent(ctx context.Context, voterID, ownerID int64, target models.TargetRef, postID int64, direction models.VoteDirection) Event {
	typ := models.NotifyTypeUpvote
	if direction == models.VoteDown {
		typ = models.NotifyTypeDownvote
	}

	actor := "someone"
	if voter, err := s.users.GetByID(ctx, voterID); err == nil && voter != nil {
		actor = voter.Username
	}

	ev := NotifyEvent{
		Recipient: ownerID,
		Type:      typ,
		Message:   fmt.Sprintf("%s %svoted your %s", actor, directionPrefix(direction), target.Kind.String()),
		ActorID:   voterID,
		PostID:    postID,
	}
	if target.Kind == models.TargetComment {
		ev.CommentID = target.ID
	}
	return ev
}

func directionPrefix(d models.VoteDirection) string {
	if d == models.VoteDown {
		return "down"
	}
	return "up"
}
