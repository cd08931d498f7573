package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/burrowhq/burrow/internal/models"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Update updates a post
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// ListByCommunity retrieves a community's visible posts, newest first
func (r *PostRepository) ListByCommunity(ctx context.Context, communityID int64, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND status <> ?", communityID, models.StatusRemoved).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CountByCommunity returns the number of visible posts in a community
func (r *PostRepository) CountByCommunity(ctx context.Context, communityID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("community_id = ? AND status <> ?", communityID, models.StatusRemoved).
		Count(&count).Error
	return count, err
}

// ListByAuthor retrieves an author's visible posts, newest first
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("author_id = ? AND status <> ?", authorID, models.StatusRemoved).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CountByAuthor returns the number of visible posts by an author
func (r *PostRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ? AND status <> ?", authorID, models.StatusRemoved).
		Count(&count).Error
	return count, err
}

// ListFeed retrieves active posts across all communities, highest score first
func (r *PostRepository) ListFeed(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusActive).
		Order("score DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CountFeed returns the number of active posts
func (r *PostRepository) CountFeed(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("status = ?", models.StatusActive).
		Count(&count).Error
	return count, err
}

// AllByCommunity retrieves every post in a community regardless of status,
// used by the community deletion cascade
func (r *PostRepository) AllByCommunity(ctx context.Context, communityID int64) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListSaved retrieves the visible posts a user has saved, most recently
// saved first. Tombstoned posts stay out, matching the other listings.
func (r *PostRepository) ListSaved(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Joins("JOIN burrow_saved_posts sp ON sp.post_id = burrow_posts.id").
		Where("sp.user_id = ? AND status <> ?", userID, models.StatusRemoved).
		Order("sp.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByTag retrieves visible posts carrying a tag, newest first
func (r *PostRepository) ListByTag(ctx context.Context, tag string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Joins("JOIN burrow_post_tags pt ON pt.post_id = burrow_posts.id").
		Where("pt.tag = ? AND status <> ?", tag, models.StatusRemoved).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CountByTag returns the number of visible posts carrying a tag
func (r *PostRepository) CountByTag(ctx context.Context, tag string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Joins("JOIN burrow_post_tags pt ON pt.post_id = burrow_posts.id").
		Where("pt.tag = ? AND status <> ?", tag, models.StatusRemoved).
		Count(&count).Error
	return count, err
}

// TagsForPost returns a post's tags
func (r *PostRepository) TagsForPost(ctx context.Context, postID int64) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).Model(&models.PostTag{}).
		Where("post_id = ?", postID).
		Order("tag").
		Pluck("tag", &tags).Error
	return tags, err
}

// CountSaved returns the number of visible posts in a user's saved set
func (r *PostRepository) CountSaved(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Joins("JOIN burrow_saved_posts sp ON sp.post_id = burrow_posts.id").
		Where("sp.user_id = ? AND status <> ?", userID, models.StatusRemoved).
		Count(&count).Error
	return count, err
}
