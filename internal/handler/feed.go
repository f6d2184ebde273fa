package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/oyishomapeter-tech/blog-app/internal/httputil"
	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/service"
	"github.com/oyishomapeter-tech/blog-app/internal/view"
)

// FeedHandler serves the read-only listing and similarity pages.
type FeedHandler struct {
	feedService *service.FeedService
	postService *service.PostService
	views       *view.Renderer
}

func NewFeedHandler(feedService *service.FeedService, postService *service.PostService, views *view.Renderer) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
		postService: postService,
		views:       views,
	}
}

// parsePage treats anything that is not a positive integer as page 1.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// List handles GET /blogs?page=&q=
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	listing := h.feedService.List(r.Context(), model.ListQuery{
		Page:  parsePage(query.Get("page")),
		Query: query.Get("q"),
	})

	status := http.StatusOK
	if listing.Degraded {
		status = http.StatusInternalServerError
	}
	h.views.Render(w, status, view.PageIndex, view.Data{
		Title:   "All Blogs",
		User:    currentUser(r),
		Listing: listing,
	})
}

// Similar handles GET /blogs/{id}/similar
func (h *FeedHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		httputil.WriteNotFound(w, "Blog not found")
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Blog not found")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Str("post_id", id.String()).Msg("load post for similar page")
		httputil.WriteInternalError(w, "Failed to load similar posts")
		return
	}

	h.views.Render(w, http.StatusOK, view.PageSimilar, view.Data{
		Title: "Similar Posts",
		User:  currentUser(r),
		Blogs: h.feedService.Similar(r.Context(), post.Tags, post.ID),
	})
}
