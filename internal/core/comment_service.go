package core

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/models"
	"github.com/burrowhq/burrow/pkg/logging"
	"github.com/burrowhq/burrow/pkg/telemetry"
)

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// extractMentions returns the distinct usernames @-mentioned in a body,
// in order of first appearance
func extractMentions(body string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range mentionPattern.FindAllStringSubmatch(body, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// materializePath builds a comment's path, postID/commentID. Threads nest
// through parent_id; the path stays two components at any reply depth.
func materializePath(postID, commentID int64) string {
	return fmt.Sprintf("%d/%d", postID, commentID)
}

// CommentNode is a comment with its direct replies, for thread rendering
type CommentNode struct {
	*models.Comment
	Replies []*CommentNode `json:"replies"`
}

// buildThread assembles a flat, creation-ordered comment list into a tree.
// Comments whose parent is missing from the list surface as roots so a
// hard-deleted parent never hides its children.
func buildThread(comments []*models.Comment) []*CommentNode {
	nodes := make(map[int64]*CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &CommentNode{Comment: c, Replies: []*CommentNode{}}
	}

	var roots []*CommentNode
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID.Valid {
			if parent, ok := nodes[c.ParentID.Int64]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// CommentService manages threaded comments
type CommentService struct {
	gdb         *gorm.DB
	comments    *db.CommentRepository
	posts       *db.PostRepository
	users       *db.UserRepository
	communities *db.CommunityRepository
	moderation  *ModerationPolicy
	logger      *zap.Logger
}

// NewCommentService creates a comment service
func NewCommentService(repo *db.Repository, moderation *ModerationPolicy) *CommentService {
	return &CommentService{
		gdb:         repo.DB(),
		comments:    db.NewCommentRepository(repo),
		posts:       db.NewPostRepository(repo),
		users:       db.NewUserRepository(repo),
		communities: db.NewCommunityRepository(repo),
		moderation:  moderation,
		logger:      logging.WithService("comments"),
	}
}

// Create adds a comment to a post, optionally under a parent comment. The
// insert, the path write and the three counter increments share one
// transaction; the id needed for the path only exists after the insert.
func (s *CommentService) Create(ctx context.Context, authorID, postID, parentID int64, body string) (*models.Comment, []Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "comments.create")
	defer span.End()

	if strings.TrimSpace(body) == "" {
		return nil, nil, Validationf("comment body is required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, Internalf(err, "failed to load post")
	}
	if post == nil || post.Status == models.StatusRemoved {
		return nil, nil, NotFoundf("post %d not found", postID)
	}

	var parent *models.Comment
	if parentID != 0 {
		parent, err = s.comments.GetByID(ctx, parentID)
		if err != nil {
			return nil, nil, Internalf(err, "failed to load parent comment")
		}
		if parent == nil || parent.PostID != postID {
			return nil, nil, NotFoundf("parent comment %d not found on post %d", parentID, postID)
		}
	}

	screening, err := s.moderation.Screen(ctx, body)
	if err != nil {
		return nil, nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		ParentID: nullInt64(parentID),
		AuthorID: authorID,
		Body:     body,
		Status:   models.StatusActive,
	}
	applyScreening(screening, &comment.Status, &comment.SpamScore, &comment.ToxicityScore)

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		comment.Path = materializePath(postID, comment.ID)
		if err := tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
			Update("path", comment.Path).Error; err != nil {
			return fmt.Errorf("failed to set comment path: %w", err)
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("num_comments", gorm.Expr("num_comments + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump post num_comments: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", authorID).
			Update("num_comments", gorm.Expr("num_comments + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump author num_comments: %w", err)
		}
		if parent != nil {
			if err := tx.Model(&models.Comment{}).Where("id = ?", parent.ID).
				Update("replies_count", gorm.Expr("replies_count + 1")).Error; err != nil {
				return fmt.Errorf("failed to bump replies_count: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, Internalf(err, "comment creation failed")
	}

	s.logger.Debug("Comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("post_id", postID),
		zap.String("path", comment.Path))

	events := s.commentEvents(ctx, comment, post, parent)
	if screening.Flagged {
		events = append(events, flagReport(models.CommentRef(comment.ID), screening))
	}
	return comment, events, nil
}

// commentEvents builds the reply-or-comment notification, mention
// notifications and the realtime fanout for a new comment
func (s *CommentService) commentEvents(ctx context.Context, comment *models.Comment, post *models.Post, parent *models.Comment) []Event {
	actor := "someone"
	if author, err := s.users.GetByID(ctx, comment.AuthorID); err == nil && author != nil {
		actor = author.Username
	}

	events := []Event{ContentEvent{
		Name:        "comment.created",
		PostID:      post.ID,
		CommunityID: post.CommunityID.Int64,
		Payload:     map[string]interface{}{"id": comment.ID, "postId": post.ID},
	}}

	// Replies notify the parent author, top-level comments the post author.
	// Commenting on your own content stays silent.
	if parent != nil {
		if parent.AuthorID != comment.AuthorID {
			events = append(events, NotifyEvent{
				Recipient: parent.AuthorID,
				Type:      models.NotifyTypeReply,
				Message:   fmt.Sprintf("%s replied to your comment", actor),
				ActorID:   comment.AuthorID,
				PostID:    post.ID,
				CommentID: comment.ID,
			})
		}
	} else if post.AuthorID != comment.AuthorID {
		events = append(events, NotifyEvent{
			Recipient: post.AuthorID,
			Type:      models.NotifyTypeComment,
			Message:   fmt.Sprintf("%s commented on your post", actor),
			ActorID:   comment.AuthorID,
			PostID:    post.ID,
			CommentID: comment.ID,
		})
	}

	for _, name := range extractMentions(comment.Body) {
		mentioned, err := s.users.GetByUsername(ctx, name)
		if err != nil || mentioned == nil || mentioned.ID == comment.AuthorID {
			continue
		}
		events = append(events, NotifyEvent{
			Recipient: mentioned.ID,
			Type:      models.NotifyTypeMention,
			Message:   fmt.Sprintf("%s mentioned you in a comment", actor),
			ActorID:   comment.AuthorID,
			PostID:    post.ID,
			CommentID: comment.ID,
		})
	}
	return events
}

// Update edits a comment's body. Author only; the new body is screened
// like a new comment.
func (s *CommentService) Update(ctx context.Context, actorID, commentID int64, body string) (*models.Comment, []Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "comments.update")
	defer span.End()

	comment, err := s.Get(ctx, commentID)
	if err != nil {
		return nil, nil, err
	}
	if comment.AuthorID != actorID {
		return nil, nil, Forbiddenf("only the author can edit a comment")
	}
	if strings.TrimSpace(body) == "" {
		return nil, nil, Validationf("comment body is required")
	}

	screening, err := s.moderation.Screen(ctx, body)
	if err != nil {
		return nil, nil, err
	}

	comment.Body = body
	applyScreening(screening, &comment.Status, &comment.SpamScore, &comment.ToxicityScore)

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, nil, Internalf(err, "failed to update comment")
	}

	var events []Event
	if screening.Flagged {
		events = append(events, flagReport(models.CommentRef(comment.ID), screening))
	}
	return comment, events, nil
}

// Delete removes a comment. The author gets a tombstone, a moderator of the
// post's community a hard delete. Counters on the post, the author and the
// parent drop, never below zero. Children keep their rows and paths.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "comments.delete")
	defer span.End()

	comment, err := s.Get(ctx, commentID)
	if err != nil {
		return err
	}

	hard := false
	if comment.AuthorID != actorID {
		post, err := s.posts.GetByID(ctx, comment.PostID)
		if err != nil {
			return Internalf(err, "failed to load post")
		}
		if post == nil || !post.CommunityID.Valid {
			return Forbiddenf("only the author can delete this comment")
		}
		moderator, err := s.communities.IsModerator(ctx, post.CommunityID.Int64, actorID)
		if err != nil {
			return Internalf(err, "failed to check moderator")
		}
		if !moderator {
			return Forbiddenf("only the author or a community moderator can delete a comment")
		}
		hard = true
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if hard {
			if err := tx.Delete(&models.Comment{}, commentID).Error; err != nil {
				return fmt.Errorf("failed to delete comment: %w", err)
			}
		} else {
			if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
				Updates(map[string]interface{}{"status": models.StatusRemoved, "body": ""}).Error; err != nil {
				return fmt.Errorf("failed to tombstone comment: %w", err)
			}
		}
		if err := tx.Model(&models.Post{}).Where("id = ? AND num_comments > 0", comment.PostID).
			Update("num_comments", gorm.Expr("num_comments - 1")).Error; err != nil {
			return fmt.Errorf("failed to drop post num_comments: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ? AND num_comments > 0", comment.AuthorID).
			Update("num_comments", gorm.Expr("num_comments - 1")).Error; err != nil {
			return fmt.Errorf("failed to drop author num_comments: %w", err)
		}
		if comment.ParentID.Valid {
			if err := tx.Model(&models.Comment{}).Where("id = ? AND replies_count > 0", comment.ParentID.Int64).
				Update("replies_count", gorm.Expr("replies_count - 1")).Error; err != nil {
				return fmt.Errorf("failed to drop replies_count: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Internalf(err, "comment deletion failed")
	}
	return nil
}

// Get returns a comment by id. Removed comments read as not found.
func (s *CommentService) Get(ctx context.Context, commentID int64) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, Internalf(err, "failed to load comment")
	}
	if comment == nil || comment.Status == models.StatusRemoved {
		return nil, NotFoundf("comment %d not found", commentID)
	}
	return comment, nil
}

// Thread returns a post's full comment tree. Tombstoned comments appear
// with an empty body so their replies keep their place.
func (s *CommentService) Thread(ctx context.Context, postID int64) ([]*CommentNode, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, Internalf(err, "failed to load post")
	}
	if post == nil || post.Status == models.StatusRemoved {
		return nil, NotFoundf("post %d not found", postID)
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, Internalf(err, "failed to list comments")
	}
	return buildThread(comments), nil
}

// ListByAuthor lists a user's comments
func (s *CommentService) ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]*models.Comment, error) {
	comments, err := s.comments.ListByAuthor(ctx, authorID, limit, offset)
	if err != nil {
		return nil, Internalf(err, "failed to list comments")
	}
	return comments, nil
}
