package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/burrowhq/burrow/internal/cache"
	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/models"
	"github.com/burrowhq/burrow/pkg/logging"
	"github.com/burrowhq/burrow/pkg/telemetry"
)

const feedCacheTTL = time.Minute

// PostInput is the payload for post creation
type PostInput struct {
	Title         string
	Body          string
	Type          string
	URL           string
	CommunityID   int64
	Tags          []string
	Media         io.Reader
	MediaFilename string
}

// maxPostTags caps the number of tags per post
const maxPostTags = 5

var tagPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,31}$`)

// normalizeTags lowercases, trims and dedupes tags, preserving order
func normalizeTags(tags []string) ([]string, error) {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		if !tagPattern.MatchString(tag) {
			return nil, Validationf("invalid tag %q", tag)
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) > maxPostTags {
		return nil, Validationf("at most %d tags per post", maxPostTags)
	}
	return out, nil
}

// PostService manages posts
type PostService struct {
	gdb         *gorm.DB
	posts       *db.PostRepository
	communities *db.CommunityRepository
	users       *db.UserRepository
	moderation  *ModerationPolicy
	media       mediaStore
	cache       *cache.Cache
	logger      *zap.Logger
}

// NewPostService creates a post service
func NewPostService(repo *db.Repository, moderation *ModerationPolicy, media mediaStore, c *cache.Cache) *PostService {
	return &PostService{
		gdb:         repo.DB(),
		posts:       db.NewPostRepository(repo),
		communities: db.NewCommunityRepository(repo),
		users:       db.NewUserRepository(repo),
		moderation:  moderation,
		media:       media,
		cache:       c,
		logger:      logging.WithService("posts"),
	}
}

func validatePostInput(input *PostInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Validationf("title is required")
	}
	if len(input.Title) > models.MaxTitleLength {
		return Validationf("title exceeds %d characters", models.MaxTitleLength)
	}
	if !models.ValidPostType(input.Type) {
		return Validationf("unknown post type %q", input.Type)
	}
	if models.RequiresBody(input.Type) && strings.TrimSpace(input.Body) == "" {
		return Validationf("%s posts require a body", input.Type)
	}
	if input.Type == models.PostTypeLink && strings.TrimSpace(input.URL) == "" {
		return Validationf("link posts require a url")
	}
	tags, err := normalizeTags(input.Tags)
	if err != nil {
		return err
	}
	input.Tags = tags
	return nil
}

// Create validates, screens and persists a post. Posting into a community
// requires membership, image and video posts upload their media before the
// write, and a flag verdict persists the post with status "flagged" plus a
// classifier report.
func (s *PostService) Create(ctx context.Context, authorID int64, input PostInput) (*models.Post, []Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.create")
	defer span.End()

	if err := validatePostInput(&input); err != nil {
		return nil, nil, err
	}

	if input.CommunityID != 0 {
		community, err := s.communities.GetByID(ctx, input.CommunityID)
		if err != nil {
			return nil, nil, Internalf(err, "failed to load community")
		}
		if community == nil {
			return nil, nil, NotFoundf("community %d not found", input.CommunityID)
		}
		member, err := s.communities.IsMember(ctx, input.CommunityID, authorID)
		if err != nil {
			return nil, nil, Internalf(err, "failed to check membership")
		}
		if !member {
			return nil, nil, Forbiddenf("you must join the community before posting")
		}
	}

	screening, err := s.moderation.Screen(ctx, input.Title+"\n"+input.Body)
	if err != nil {
		return nil, nil, err
	}

	post := &models.Post{
		Title:       input.Title,
		Body:        input.Body,
		AuthorID:    authorID,
		CommunityID: nullInt64(input.CommunityID),
		Type:        input.Type,
		URL:         nullString(strings.TrimSpace(input.URL)),
		Status:      models.StatusActive,
	}
	applyScreening(screening, &post.Status, &post.SpamScore, &post.ToxicityScore)

	if input.Type == models.PostTypeImage || input.Type == models.PostTypeVideo {
		if input.Media == nil {
			return nil, nil, Validationf("%s posts require a media file", input.Type)
		}
		if s.media == nil || !s.media.Enabled() {
			return nil, nil, Upstreamf(nil, "media storage is not configured")
		}
		obj, err := s.media.Upload(ctx, input.Media, input.MediaFilename, input.Type+"s", authorID)
		if err != nil {
			return nil, nil, Upstreamf(err, "media upload failed")
		}
		post.MediaPublicID = obj.PublicID
		post.MediaURL = obj.SecureURL
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", authorID).
			Update("num_posts", gorm.Expr("num_posts + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump num_posts: %w", err)
		}
		for _, tag := range input.Tags {
			if err := tx.Create(&models.PostTag{PostID: post.ID, Tag: tag}).Error; err != nil {
				return fmt.Errorf("failed to tag post: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, Internalf(err, "post creation failed")
	}
	post.Tags = input.Tags
	s.invalidateFeed()

	s.logger.Info("Post created",
		zap.Int64("post_id", post.ID),
		zap.Int64("author_id", authorID),
		zap.String("type", post.Type),
		zap.String("status", post.Status))

	events := []Event{ContentEvent{
		Name:        "post.created",
		PostID:      post.ID,
		CommunityID: input.CommunityID,
		Payload:     map[string]interface{}{"id": post.ID, "title": post.Title},
	}}
	if screening.Flagged {
		events = append(events, flagReport(models.PostRef(post.ID), screening))
	}
	return post, events, nil
}

// Update edits a post's title and body. Author only; the content is screened
// again and can be flagged or rejected like a new post.
func (s *PostService) Update(ctx context.Context, actorID, postID int64, title, body string) (*models.Post, []Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.update")
	defer span.End()

	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if post.AuthorID != actorID {
		return nil, nil, Forbiddenf("only the author can edit a post")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil, Validationf("title is required")
	}
	if len(title) > models.MaxTitleLength {
		return nil, nil, Validationf("title exceeds %d characters", models.MaxTitleLength)
	}
	if models.RequiresBody(post.Type) && strings.TrimSpace(body) == "" {
		return nil, nil, Validationf("%s posts require a body", post.Type)
	}

	screening, err := s.moderation.Screen(ctx, title+"\n"+body)
	if err != nil {
		return nil, nil, err
	}

	post.Title = title
	post.Body = body
	applyScreening(screening, &post.Status, &post.SpamScore, &post.ToxicityScore)

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, nil, Internalf(err, "failed to update post")
	}
	s.invalidateFeed()

	events := []Event{ContentEvent{
		Name:        "post.updated",
		PostID:      post.ID,
		CommunityID: post.CommunityID.Int64,
		Payload:     map[string]interface{}{"id": post.ID, "title": post.Title},
	}}
	if screening.Flagged {
		events = append(events, flagReport(models.PostRef(post.ID), screening))
	}
	return post, events, nil
}

// Delete removes a post. The author gets a tombstone (status "removed",
// body cleared); a moderator of the post's community hard-deletes the row.
// Both paths decrement the author's post counter and drop attached media
// best-effort.
func (s *PostService) Delete(ctx context.Context, actorID, postID int64) ([]Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.delete")
	defer span.End()

	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	hard := false
	switch {
	case post.AuthorID == actorID:
	case post.CommunityID.Valid:
		moderator, err := s.communities.IsModerator(ctx, post.CommunityID.Int64, actorID)
		if err != nil {
			return nil, Internalf(err, "failed to check moderator")
		}
		if !moderator {
			return nil, Forbiddenf("only the author or a community moderator can delete a post")
		}
		hard = true
	default:
		return nil, Forbiddenf("only the author can delete this post")
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if hard {
			if err := tx.Delete(&models.Post{}, postID).Error; err != nil {
				return fmt.Errorf("failed to delete post: %w", err)
			}
		} else {
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				Updates(map[string]interface{}{"status": models.StatusRemoved, "body": ""}).Error; err != nil {
				return fmt.Errorf("failed to tombstone post: %w", err)
			}
		}
		if err := tx.Model(&models.User{}).Where("id = ? AND num_posts > 0", post.AuthorID).
			Update("num_posts", gorm.Expr("num_posts - 1")).Error; err != nil {
			return fmt.Errorf("failed to drop num_posts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, Internalf(err, "post deletion failed")
	}
	s.invalidateFeed()

	if post.MediaPublicID != "" && s.media != nil && s.media.Enabled() {
		if err := s.media.Delete(ctx, post.MediaPublicID); err != nil {
			s.logger.Warn("failed to delete post media",
				zap.String("public_id", post.MediaPublicID), zap.Error(err))
		}
	}

	return []Event{ContentEvent{
		Name:        "post.deleted",
		PostID:      postID,
		CommunityID: post.CommunityID.Int64,
		Payload:     map[string]interface{}{"id": postID},
	}}, nil
}

// Get returns a post by id. Removed posts read as not found.
func (s *PostService) Get(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, Internalf(err, "failed to load post")
	}
	if post == nil || post.Status == models.StatusRemoved {
		return nil, NotFoundf("post %d not found", postID)
	}
	tags, err := s.posts.TagsForPost(ctx, postID)
	if err != nil {
		return nil, Internalf(err, "failed to load post tags")
	}
	post.Tags = tags
	return post, nil
}

// Save adds a post to the caller's saved set. Saving twice is a conflict.
func (s *PostService) Save(ctx context.Context, userID, postID int64) error {
	if _, err := s.Get(ctx, postID); err != nil {
		return err
	}
	saved, err := s.isSaved(ctx, userID, postID)
	if err != nil {
		return err
	}
	if saved {
		return Conflictf("post already saved")
	}
	if err := s.gdb.WithContext(ctx).Create(&models.SavedPost{UserID: userID, PostID: postID}).Error; err != nil {
		return Internalf(err, "failed to save post")
	}
	return nil
}

// Unsave removes a post from the caller's saved set. Removing an unsaved
// post is a conflict.
func (s *PostService) Unsave(ctx context.Context, userID, postID int64) error {
	saved, err := s.isSaved(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !saved {
		return Conflictf("post is not saved")
	}
	if err := s.gdb.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.SavedPost{}).Error; err != nil {
		return Internalf(err, "failed to unsave post")
	}
	return nil
}

func (s *PostService) isSaved(ctx context.Context, userID, postID int64) (bool, error) {
	var count int64
	err := s.gdb.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	if err != nil {
		return false, Internalf(err, "failed to check saved post")
	}
	return count > 0, nil
}

// ListByCommunity lists a community's visible posts
func (s *PostService) ListByCommunity(ctx context.Context, communityID int64, limit, offset int) ([]*models.Post, int64, error) {
	posts, err := s.posts.ListByCommunity(ctx, communityID, limit, offset)
	if err != nil {
		return nil, 0, Internalf(err, "failed to list posts")
	}
	total, err := s.posts.CountByCommunity(ctx, communityID)
	if err != nil {
		return nil, 0, Internalf(err, "failed to count posts")
	}
	return posts, total, nil
}

// ListByAuthor lists a user's posts
func (s *PostService) ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]*models.Post, int64, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID, limit, offset)
	if err != nil {
		return nil, 0, Internalf(err, "failed to list posts")
	}
	total, err := s.posts.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, 0, Internalf(err, "failed to count posts")
	}
	return posts, total, nil
}

// ListByTag lists visible posts carrying a tag
func (s *PostService) ListByTag(ctx context.Context, tag string, limit, offset int) ([]*models.Post, int64, error) {
	tags, err := normalizeTags([]string{tag})
	if err != nil {
		return nil, 0, err
	}
	if len(tags) == 0 {
		return nil, 0, Validationf("tag is required")
	}
	posts, err := s.posts.ListByTag(ctx, tags[0], limit, offset)
	if err != nil {
		return nil, 0, Internalf(err, "failed to list posts")
	}
	total, err := s.posts.CountByTag(ctx, tags[0])
	if err != nil {
		return nil, 0, Internalf(err, "failed to count posts")
	}
	return posts, total, nil
}

// ListSaved lists the caller's saved posts
func (s *PostService) ListSaved(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, int64, error) {
	posts, err := s.posts.ListSaved(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, Internalf(err, "failed to list saved posts")
	}
	total, err := s.posts.CountSaved(ctx, userID)
	if err != nil {
		return nil, 0, Internalf(err, "failed to count saved posts")
	}
	return posts, total, nil
}

type cachedFeed struct {
	Posts []*models.Post `json:"posts"`
	Total int64          `json:"total"`
}

// Feed lists active posts by score. Pages are cached in redis for a minute;
// a cache failure falls through to the database.
func (s *PostService) Feed(ctx context.Context, limit, offset int) ([]*models.Post, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.feed")
	defer span.End()

	key := feedCacheKey(limit, offset)
	if raw, err := s.cache.Get(key); err == nil {
		var cached cachedFeed
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached.Posts, cached.Total, nil
		}
	}

	posts, err := s.posts.ListFeed(ctx, limit, offset)
	if err != nil {
		return nil, 0, Internalf(err, "failed to list feed")
	}
	total, err := s.posts.CountFeed(ctx)
	if err != nil {
		return nil, 0, Internalf(err, "failed to count feed")
	}

	if payload, err := json.Marshal(cachedFeed{Posts: posts, Total: total}); err == nil {
		if err := s.cache.Set(key, payload, feedCacheTTL); err != nil && err != cache.ErrCacheDisabled {
			s.logger.Debug("failed to cache feed page", zap.Error(err))
		}
	}
	return posts, total, nil
}

func feedCacheKey(limit, offset int) string {
	return cache.HashKey("feed", strconv.Itoa(limit), strconv.Itoa(offset))
}

// invalidateFeed drops the first feed page, the one most reads hit.
// Deeper pages age out on their own TTL.
func (s *PostService) invalidateFeed() {
	if err := s.cache.Delete(feedCacheKey(defaultPageSize, 0)); err != nil && err != cache.ErrCacheDisabled {
		s.logger.Debug("failed to invalidate feed cache", zap.Error(err))
	}
}

// defaultPageSize matches the API layer's default page size
const defaultPageSize = 20

// applyScreening writes a screening outcome onto a content row
func applyScreening(s *Screening, status *string, spam, toxicity *sql.NullFloat64) {
	if !s.Screened {
		return
	}
	*spam = sql.NullFloat64{Float64: s.SpamScore, Valid: true}
	*toxicity = sql.NullFloat64{Float64: s.ToxicityScore, Valid: true}
	if s.Flagged {
		*status = models.StatusFlagged
	}
}

// flagReport builds the classifier report event for flagged content
func flagReport(target models.TargetRef, s *Screening) Event {
	severity := s.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	return ReportEvent{
		Target:        target,
		Reason:        "content flagged by moderation classifier",
		Severity:      severity,
		SpamScore:     s.SpamScore,
		ToxicityScore: s.ToxicityScore,
	}
}
