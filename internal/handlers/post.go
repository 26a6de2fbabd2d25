package handlers

import (
	"net/http"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// PostHandler handles social feed HTTP requests
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CommentRequest represents the request body for commenting
type CommentRequest struct {
	Body string `json:"body"`
}

// ToggleResponse reports the state after a toggle
type ToggleResponse struct {
	Active bool `json:"active"`
}

// CreatePost handles POST /api/v1/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req services.PostInput
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create post")
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// GetPost handles GET /api/v1/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get post")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/v1/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.postService.Delete(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"), middleware.IsAdmin(ctx)); err != nil {
		respondServiceError(w, r, err, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Feed handles GET /api/v1/feed
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	items, err := h.postService.Feed(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load feed")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Bookmarks handles GET /api/v1/bookmarks
func (h *PostHandler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	items, err := h.postService.Bookmarks(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load bookmarks")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// PresignImage handles POST /api/v1/posts/{id}/images
func (h *PostHandler) PresignImage(w http.ResponseWriter, r *http.Request) {
	var req services.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.postService.PresignImage(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate image upload URL")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// ToggleLike handles POST /api/v1/posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	liked, err := h.postService.ToggleLike(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to toggle like")
		return
	}
	respondJSON(w, http.StatusOK, ToggleResponse{Active: liked})
}

// ToggleBookmark handles POST /api/v1/posts/{id}/bookmark
func (h *PostHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	saved, err := h.postService.ToggleBookmark(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to toggle bookmark")
		return
	}
	respondJSON(w, http.StatusOK, ToggleResponse{Active: saved})
}

// AddComment handles POST /api/v1/posts/{id}/comments
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.postService.AddComment(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Body)
	if err != nil {
		respondServiceError(w, r, err, "Failed to add comment")
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// ListComments handles GET /api/v1/posts/{id}/comments
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.postService.ListComments(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list comments")
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// DeleteComment handles DELETE /api/v1/comments/{id}
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.postService.DeleteComment(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"), middleware.IsAdmin(ctx)); err != nil {
		respondServiceError(w, r, err, "Failed to delete comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
