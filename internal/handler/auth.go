package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oyishomapeter-tech/blog-app/internal/config"
	"github.com/oyishomapeter-tech/blog-app/internal/httputil"
	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/service"
	"github.com/oyishomapeter-tech/blog-app/internal/view"
)

// AuthHandler serves signup, login and logout.
type AuthHandler struct {
	userService  *service.UserService
	tokenService *service.TokenService
	views        *view.Renderer
	config       *config.Config
}

func NewAuthHandler(userService *service.UserService, tokenService *service.TokenService, views *view.Renderer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
		views:        views,
		config:       cfg,
	}
}

// authErrors always carries the email and password keys the forms read.
func authErrors(fields map[string]string) map[string]string {
	out := map[string]string{"email": "", "password": ""}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, view.PageSignup, view.Data{Title: "Sign up", User: currentUser(r)})
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, view.PageLogin, view.Data{Title: "Log in", User: currentUser(r)})
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Create(r.Context(), model.SignupRequest{
		FirstName: values["firstname"],
		LastName:  values["lastname"],
		Email:     values["email"],
		Password:  values["password"],
	})
	if err != nil {
		var verr *model.ValidationError
		switch {
		case errors.As(err, &verr):
			httputil.WriteFieldErrors(w, authErrors(verr.Fields))
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteFieldErrors(w, authErrors(map[string]string{"email": model.MsgEmailInUse}))
		default:
			log.Ctx(r.Context()).Error().Err(err).Msg("signup failed")
			httputil.WriteInternalError(w, "Failed to create account")
		}
		return
	}

	h.startSession(w, r, user, h.config.SignupTokenTTL, http.StatusCreated)
}

// Login handles POST /login. Unknown email and wrong password produce the
// same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Login(r.Context(), model.LoginRequest{
		Email:    values["email"],
		Password: values["password"],
	})
	if err != nil {
		if errors.Is(err, model.ErrIncorrectEmail) || errors.Is(err, model.ErrIncorrectPassword) {
			log.Ctx(r.Context()).Debug().Err(err).Msg("login rejected")
			httputil.WriteFieldErrors(w, authErrors(map[string]string{"password": model.MsgLoginFailed}))
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("login failed")
		httputil.WriteInternalError(w, "Failed to log in")
		return
	}

	h.startSession(w, r, user, h.config.LoginTokenTTL, http.StatusOK)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User, ttl time.Duration, status int) {
	token, err := h.tokenService.Issue(user.ID, ttl)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("user_id", user.ID.String()).Msg("issue session token")
		httputil.WriteInternalError(w, "Failed to start session")
		return
	}

	httputil.SetSessionCookie(w, token, ttl, h.config.CookieSecure)
	httputil.WriteJSON(w, status, model.AuthResponse{User: user.ID})
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.ClearSessionCookie(w, h.config.CookieSecure)
	httputil.Redirect(w, r, "/landing")
}
