package service

import (
	"context"
	"math"

	"blogapp/internal/auth"
	apperrors "blogapp/internal/errors"
	"blogapp/internal/model"
	"blogapp/internal/repository"
)

// MaxPerPage caps the page size a client may request.
const MaxPerPage = 100

// PostService handles post operations, applying the ownership guard before mutations.
type PostService interface {
	Create(ctx context.Context, owner *model.User, title, body string) (*model.Post, error)
	Get(ctx context.Context, id uint) (*model.Post, error)
	ListPage(ctx context.Context, page, perPage int, ownerID *uint) (*model.Page, error)
	ListByUsername(ctx context.Context, username string, page, perPage int) (*model.Page, error)
	Update(ctx context.Context, actor *model.User, id uint, title, body string) (*model.Post, error)
	Delete(ctx context.Context, actor *model.User, id uint) error
}

type postService struct {
	posts          repository.PostRepository
	users          repository.UserRepository
	defaultPerPage int
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, defaultPerPage int) PostService {
	if defaultPerPage <= 0 {
		defaultPerPage = 5
	}
	return &postService{
		posts:          posts,
		users:          users,
		defaultPerPage: defaultPerPage,
	}
}

// Create stores a new post owned by owner.
func (s *postService) Create(ctx context.Context, owner *model.User, title, body string) (*model.Post, error) {
	if owner == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	post := &model.Post{
		Title:   title,
		Body:    body,
		OwnerID: owner.ID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	post.Author = owner
	return post, nil
}

func (s *postService) Get(ctx context.Context, id uint) (*model.Post, error) {
	return s.posts.FindByID(ctx, id)
}

// ListPage returns a 1-indexed page, newest first. Pages past the end are
// empty rather than an error.
func (s *postService) ListPage(ctx context.Context, page, perPage int, ownerID *uint) (*model.Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = s.defaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	var items []model.Post
	var total int64
	var err error
	if page-1 > math.MaxInt/perPage {
		// No row sits at an offset past MaxInt; only the count is needed.
		total, err = s.posts.Count(ctx, ownerID)
	} else {
		items, total, err = s.posts.List(ctx, ownerID, (page-1)*perPage, perPage)
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Post{}
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &model.Page{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// ListByUsername lists the posts of one author.
func (s *postService) ListByUsername(ctx context.Context, username string, page, perPage int) (*model.Page, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return s.ListPage(ctx, page, perPage, &user.ID)
}

// Update rewrites a post after checking that actor owns it.
func (s *postService) Update(ctx context.Context, actor *model.User, id uint, title, body string) (*model.Post, error) {
	post, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.posts.Update(ctx, id, title, body)
	if err != nil {
		return nil, err
	}
	updated.Author = post.Author
	return updated, nil
}

// Delete removes a post after checking that actor owns it.
func (s *postService) Delete(ctx context.Context, actor *model.User, id uint) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	return s.posts.Delete(ctx, id)
}

func (s *postService) authorize(ctx context.Context, actor *model.User, id uint) (*model.Post, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModify(actor, post) {
		return nil, apperrors.ErrForbidden
	}
	return post, nil
}
