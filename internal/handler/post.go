package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/oyishomapeter-tech/blog-app/internal/httputil"
	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/service"
	"github.com/oyishomapeter-tech/blog-app/internal/view"
)

type PostHandler struct {
	postService *service.PostService
	feedService *service.FeedService
	views       *view.Renderer
}

func NewPostHandler(postService *service.PostService, feedService *service.FeedService, views *view.Renderer) *PostHandler {
	return &PostHandler{
		postService: postService,
		feedService: feedService,
		views:       views,
	}
}

// NewPostPage handles GET /new-post
func (h *PostHandler) NewPostPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, view.PageNewPost, view.Data{Title: "New Post", User: currentUser(r)})
}

// Create handles POST /blogs. Exactly one response is written on every path.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		httputil.Redirect(w, r, "/landing")
		return
	}

	values, err := formValues(w, r)
	if err != nil {
		httputil.WriteBadRequest(w, "Error creating blog")
		return
	}

	_, err = h.postService.Create(r.Context(), user.ID, model.CreatePostRequest{
		Title:   values["title"],
		Snippet: values["snippet"],
		Body:    values["body"],
		Tags:    values["tags"],
	})
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			httputil.WriteFieldErrors(w, verr.Fields)
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Str("user_id", user.ID.String()).Msg("create post")
		httputil.WriteInternalError(w, "Error creating blog")
		return
	}

	httputil.Redirect(w, r, "/blogs")
}

// Details handles GET /blogs/{id}. Missing posts render the page without a
// blog rather than an error.
func (h *PostHandler) Details(w http.ResponseWriter, r *http.Request) {
	data := view.Data{Title: "Blog Details", User: currentUser(r)}

	id, ok := postID(r)
	if !ok {
		h.views.Render(w, http.StatusOK, view.PageDetails, data)
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, model.ErrPostNotFound) {
			log.Ctx(r.Context()).Error().Err(err).Str("post_id", id.String()).Msg("load post")
		}
		h.views.Render(w, http.StatusOK, view.PageDetails, data)
		return
	}

	data.Blog = post
	data.Similar = h.feedService.Similar(r.Context(), post.Tags, post.ID)
	data.ArticleURL = articleURL(r, post.ID)
	h.views.Render(w, http.StatusOK, view.PageDetails, data)
}

// Like handles POST /blogs/{id}/like
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	id, ok := postID(r)
	if !ok {
		httputil.WriteNotFound(w, "Blog not found")
		return
	}

	result, err := h.postService.ToggleLike(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Blog not found")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Str("post_id", id.String()).Msg("toggle like")
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Share handles POST /blogs/{id}/share. No session is required.
func (h *PostHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		httputil.WriteNotFound(w, "Blog not found")
		return
	}

	shares, err := h.postService.Share(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Blog not found")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Str("post_id", id.String()).Msg("increment shares")
		httputil.WriteInternalError(w, "Failed to increment share count")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ShareResult{Shares: shares})
}

// Delete handles DELETE /blogs/{id}. Only the author may delete.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	id, ok := postID(r)
	if !ok {
		httputil.WriteNotFound(w, "Blog not found")
		return
	}

	err := h.postService.Delete(r.Context(), id, user.ID)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, httputil.RedirectResponse{Redirect: "/blogs"})
	case errors.Is(err, model.ErrNotPostOwner):
		httputil.WriteForbidden(w, "You can only delete your own posts")
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Blog not found")
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("post_id", id.String()).Msg("delete post")
		httputil.WriteInternalError(w, "Failed to delete blog")
	}
}
