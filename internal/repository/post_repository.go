package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "blogapp/internal/errors"
	"blogapp/internal/model"
)

// PostRepository defines post persistence operations. It never checks
// ownership; callers consult the authorization guard first.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	// List returns posts newest first along with the total count.
	// A nil ownerID lists every post.
	List(ctx context.Context, ownerID *uint, offset, limit int) ([]model.Post, int64, error)
	// Count returns the number of posts, optionally for one owner.
	Count(ctx context.Context, ownerID *uint) (int64, error)
	Update(ctx context.Context, id uint, title, body string) (*model.Post, error)
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create creates a new post.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// FindByID finds a post by ID with its author loaded.
func (r *postRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) scope(ctx context.Context, ownerID *uint) *gorm.DB {
	scope := r.db.WithContext(ctx).Model(&model.Post{})
	if ownerID != nil {
		scope = scope.Where("owner_id = ?", *ownerID)
	}
	return scope
}

func (r *postRepository) Count(ctx context.Context, ownerID *uint) (int64, error) {
	var total int64
	if err := r.scope(ctx, ownerID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

// List returns one window of posts ordered by creation time, newest first.
// Ties on created_at are broken by id so paging never repeats or skips a row.
// A negative offset or a non-positive limit selects nothing.
func (r *postRepository) List(ctx context.Context, ownerID *uint, offset, limit int) ([]model.Post, int64, error) {
	total, err := r.Count(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 || offset < 0 || limit <= 0 || int64(offset) >= total {
		return []model.Post{}, total, nil
	}

	var posts []model.Post
	err = r.scope(ctx, ownerID).
		Preload("Author").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// Update rewrites title and body inside a transaction, locking the row first.
func (r *postRepository) Update(ctx context.Context, id uint, title, body string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPostNotFound
			}
			return err
		}
		return tx.Model(&post).Updates(map[string]interface{}{
			"title": title,
			"body":  body,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	post.Title = title
	post.Body = body
	return &post, nil
}

// Delete removes a post.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}
