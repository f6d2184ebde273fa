package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/oyishomapeter-tech/blog-app/internal/httputil"
	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/service"
	"github.com/oyishomapeter-tech/blog-app/internal/view"
)

// PageHandler serves the mostly static pages and the profile.
type PageHandler struct {
	postService *service.PostService
	views       *view.Renderer
}

func NewPageHandler(postService *service.PostService, views *view.Renderer) *PageHandler {
	return &PageHandler{
		postService: postService,
		views:       views,
	}
}

func (h *PageHandler) Root(w http.ResponseWriter, r *http.Request) {
	httputil.Redirect(w, r, "/landing")
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	httputil.Redirect(w, r, "/blogs")
}

func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, view.PageLanding, view.Data{Title: "Welcome", User: currentUser(r)})
}

func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, view.PageAbout, view.Data{Title: "About", User: currentUser(r)})
}

func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, view.PageContact, view.Data{Title: "Contact", User: currentUser(r)})
}

// Profile handles GET /profile: the signed-in user and their posts.
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		httputil.Redirect(w, r, "/landing")
		return
	}

	data := view.Data{Title: "My Profile", User: user}
	posts, err := h.postService.ListByAuthor(r.Context(), user.ID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("user_id", user.ID.String()).Msg("list profile posts")
		data.Blogs = []model.Post{}
		h.views.Render(w, http.StatusInternalServerError, view.PageProfile, data)
		return
	}

	data.Blogs = posts
	h.views.Render(w, http.StatusOK, view.PageProfile, data)
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusNotFound, view.PageNotFound, view.Data{Title: "404", User: currentUser(r)})
}

// Health handles GET /health
func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
