package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/oyishomapeter-tech/blog-app/internal/handler"
	"github.com/oyishomapeter-tech/blog-app/internal/logging"
	authmw "github.com/oyishomapeter-tech/blog-app/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler *handler.AuthHandler
	FeedHandler *handler.FeedHandler
	PostHandler *handler.PostHandler
	PageHandler *handler.PageHandler

	Tokens authmw.TokenVerifier
	Users  authmw.UserLookup
	Logger zerolog.Logger
}

// NewRouter wires the route table. SessionContext runs on every request
// before any RequireAuth group so guarded handlers always see the user.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(authmw.SessionContext(cfg.Tokens, cfg.Users))

	r.NotFound(cfg.PageHandler.NotFound)

	r.Get("/health", cfg.PageHandler.Health)

	// Public pages and auth
	r.Get("/", cfg.PageHandler.Root)
	r.Get("/landing", cfg.PageHandler.Landing)
	r.Get("/signup", cfg.AuthHandler.SignupPage)
	r.Post("/signup", cfg.AuthHandler.Signup)
	r.Get("/login", cfg.AuthHandler.LoginPage)
	r.Post("/login", cfg.AuthHandler.Login)
	r.Get("/logout", cfg.AuthHandler.Logout)

	// Sharing does not need an account
	r.Post("/blogs/{id}/share", cfg.PostHandler.Share)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.Tokens))

		r.Get("/index", cfg.PageHandler.Index)
		r.Get("/about", cfg.PageHandler.About)
		r.Get("/contact", cfg.PageHandler.Contact)
		r.Get("/profile", cfg.PageHandler.Profile)
		r.Get("/new-post", cfg.PostHandler.NewPostPage)

		r.Get("/blogs", cfg.FeedHandler.List)
		r.Post("/blogs", cfg.PostHandler.Create)
		r.Get("/blogs/{id}", cfg.PostHandler.Details)
		r.Delete("/blogs/{id}", cfg.PostHandler.Delete)
		r.Get("/blogs/{id}/similar", cfg.FeedHandler.Similar)
		r.Post("/blogs/{id}/like", cfg.PostHandler.Like)
		r.Post("/blogs/{id}/comments", cfg.PostHandler.AddComment)
	})

	return r
}
