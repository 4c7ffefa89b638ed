package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"blogapp/internal/errors"
	"blogapp/internal/service"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// PostRequest represents a post create or update request.
type PostRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
	Body  string `json:"body" validate:"required"`
}

// ListPosts godoc
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Page number (1-indexed)"
// @Param per_page query int false "Posts per page"
// @Success 200 {object} model.Page
// @Router /posts [get]
func (h *PostHandler) ListPosts(c echo.Context) error {
	page, perPage := pageParams(c)
	result, err := h.postService.ListPage(c.Request().Context(), page, perPage, nil)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListUserPosts godoc
// @Summary List one author's posts, newest first
// @Tags posts
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number (1-indexed)"
// @Param per_page query int false "Posts per page"
// @Success 200 {object} model.Page
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{username}/posts [get]
func (h *PostHandler) ListUserPosts(c echo.Context) error {
	page, perPage := pageParams(c)
	result, err := h.postService.ListByUsername(c.Request().Context(), c.Param("username"), page, perPage)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} model.Post
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	post, err := h.postService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PostRequest true "Post"
// @Success 201 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req PostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.postService.Create(c.Request().Context(), CurrentUser(c), req.Title, req.Body)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary Update a post you own
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body PostRequest true "Post"
// @Success 200 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	var req PostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.postService.Update(c.Request().Context(), CurrentUser(c), id, req.Title, req.Body)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary Delete a post you own
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	if err := h.postService.Delete(c.Request().Context(), CurrentUser(c), id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "your post has been deleted",
	})
}

func postID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid post ID",
			Code:  "INVALID_ID",
		})
	}
	return uint(id), nil
}

// pageParams reads page and per_page; bad values fall back to the service defaults.
func pageParams(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	return page, perPage
}
