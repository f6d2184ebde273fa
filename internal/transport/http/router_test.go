package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oyishomapeter-tech/blog-app/internal/cache"
	"github.com/oyishomapeter-tech/blog-app/internal/config"
	"github.com/oyishomapeter-tech/blog-app/internal/httputil"
	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/repository"
	"github.com/oyishomapeter-tech/blog-app/internal/repository/memory"
)

type testApp struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:      "test-secret",
		JWTIssuer:      "blog-app",
		SignupTokenTTL: 24 * time.Hour,
		LoginTokenTTL:  72 * time.Hour,
	}
	store := memory.NewStore()
	h, err := NewHandler(cfg, Stores{
		Users:    store.Users(),
		Posts:    store.Posts(),
		Comments: store.Comments(),
	}, cache.NopUserCache{}, zerolog.Nop())
	require.NoError(t, err)
	return &testApp{t: t, handler: h, store: store}
}

func (a *testApp) do(method, path, contentType, body string, session *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) postJSON(path string, payload interface{}, session *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(a.t, err)
	return a.do(http.MethodPost, path, "application/json", string(raw), session)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == httputil.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", httputil.SessionCookieName)
	return nil
}

func (a *testApp) signup(email string) *http.Cookie {
	a.t.Helper()
	rec := a.postJSON("/signup", map[string]string{
		"firstname": "Ada", "lastname": "Lovelace", "email": email, "password": "analytical",
	}, nil)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return sessionCookie(a.t, rec)
}

func (a *testApp) onlyPost() model.Post {
	a.t.Helper()
	posts, err := a.store.Posts().List(context.Background(), repository.PostFilter{}, 0, 10)
	require.NoError(a.t, err)
	require.Len(a.t, posts, 1)
	return posts[0]
}

func TestRouter_PublicRoutes(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/", "", "", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/landing", rec.Header().Get("Location"))

	rec = app.do(http.MethodGet, "/landing", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Get started")

	rec = app.do(http.MethodGet, "/health", "", "", nil)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = app.do(http.MethodGet, "/no/such/page", "", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "page not found")
}

func TestRouter_GuardRedirects(t *testing.T) {
	app := newTestApp(t)
	forged := &http.Cookie{Name: httputil.SessionCookieName, Value: "forged.token.value"}

	for _, path := range []string{"/blogs", "/index", "/about", "/contact", "/new-post", "/profile"} {
		for _, cookie := range []*http.Cookie{nil, forged} {
			rec := app.do(http.MethodGet, path, "", "", cookie)
			assert.Equal(t, http.StatusSeeOther, rec.Code, path)
			assert.Equal(t, "/landing", rec.Header().Get("Location"), path)
		}
	}
}

func TestRouter_SignupAndLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.postJSON("/signup", map[string]string{
		"firstname": "Ada", "lastname": "Lovelace", "email": "Ada@Example.com", "password": "analytical",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	cookie := sessionCookie(t, rec)
	assert.Equal(t, 24*60*60, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)

	t.Run("duplicate email", func(t *testing.T) {
		rec := app.postJSON("/signup", map[string]string{
			"firstname": "Ada", "lastname": "L", "email": "ada@example.com", "password": "analytical",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"errors":{"email":"This email is already in use","password":""}}`, rec.Body.String())
	})

	t.Run("invalid fields", func(t *testing.T) {
		rec := app.postJSON("/signup", map[string]string{"email": "nope", "password": "short"}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body model.AuthErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, model.MsgEmailInvalid, body.Errors["email"])
		assert.Equal(t, model.MsgPasswordTooShort, body.Errors["password"])
		assert.Equal(t, model.MsgFirstNameRequired, body.Errors["firstname"])
	})

	t.Run("login failures look the same", func(t *testing.T) {
		wrongPassword := app.postJSON("/login", map[string]string{"email": "ada@example.com", "password": "wrong-one"}, nil)
		unknownEmail := app.postJSON("/login", map[string]string{"email": "who@example.com", "password": "analytical"}, nil)

		assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
		assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
		assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
		assert.JSONEq(t, `{"errors":{"email":"","password":"Incorrect email or password"}}`, wrongPassword.Body.String())
	})

	t.Run("login with form body", func(t *testing.T) {
		form := url.Values{"email": {"ADA@example.com"}, "password": {"analytical"}}
		rec := app.do(http.MethodPost, "/login", "application/x-www-form-urlencoded", form.Encode(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body model.AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, created.User, body.User)
		assert.Equal(t, 72*60*60, sessionCookie(t, rec).MaxAge)
	})

	t.Run("session opens guarded pages", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/profile", "", "", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ada lovelace")
	})

	t.Run("logout", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/logout", "", "", cookie)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/landing", rec.Header().Get("Location"))
		cleared := sessionCookie(t, rec)
		assert.Empty(t, cleared.Value)
		assert.Equal(t, -1, cleared.MaxAge)
	})
}

func TestRouter_PostLifecycle(t *testing.T) {
	app := newTestApp(t)
	author := app.signup("ada@example.com")
	reader := app.signup("charles@example.com")

	form := url.Values{"title": {"Learning C++"}, "snippet": {"pointers"}, "body": {"all about it"}, "tags": {"CPP, Systems"}}
	rec := app.do(http.MethodPost, "/blogs", "application/x-www-form-urlencoded", form.Encode(), author)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blogs", rec.Header().Get("Location"))

	post := app.onlyPost()
	assert.Equal(t, []string{"cpp", "systems"}, post.Tags)
	base := "/blogs/" + post.ID.String()

	t.Run("invalid post", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/blogs", "application/x-www-form-urlencoded", "title=x", author)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("listing and search", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/blogs?q=c%2B%2B&page=abc", "", "", reader)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Learning C&#43;&#43;")
		assert.Contains(t, rec.Body.String(), `href="`+base+`"`)

		rec = app.do(http.MethodGet, "/blogs?q=rust", "", "", reader)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "There are no blogs to display.")
	})

	t.Run("details", func(t *testing.T) {
		rec := app.do(http.MethodGet, base, "", "", reader)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "http://example.com"+base)

		rec = app.do(http.MethodGet, "/blogs/not-a-uuid", "", "", reader)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Blog not found.")
	})

	t.Run("similar", func(t *testing.T) {
		rec := app.do(http.MethodGet, base+"/similar", "", "", reader)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No similar posts yet.")

		rec = app.do(http.MethodGet, "/blogs/00000000-0000-0000-0000-000000000000/similar", "", "", reader)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("like toggles", func(t *testing.T) {
		rec := app.do(http.MethodPost, base+"/like", "", "", reader)
		assert.JSONEq(t, `{"liked":true,"likesCount":1}`, rec.Body.String())

		rec = app.do(http.MethodPost, base+"/like", "", "", reader)
		assert.JSONEq(t, `{"liked":false,"likesCount":0}`, rec.Body.String())

		rec = app.do(http.MethodPost, "/blogs/nope/like", "", "", reader)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("comment", func(t *testing.T) {
		rec := app.postJSON(base+"/comments", map[string]string{"body": "  great read "}, reader)
		require.Equal(t, http.StatusOK, rec.Code)

		var res struct {
			Comment struct {
				Body   string `json:"body"`
				Author struct {
					FirstName string `json:"firstname"`
				} `json:"author"`
			} `json:"comment"`
			CommentsCount int `json:"commentsCount"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "great read", res.Comment.Body)
		assert.Equal(t, "ada", res.Comment.Author.FirstName)
		assert.Equal(t, 1, res.CommentsCount)

		rec = app.postJSON(base+"/comments", map[string]string{"body": " "}, reader)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("share without session", func(t *testing.T) {
		rec := app.do(http.MethodPost, base+"/share", "", "", nil)
		assert.JSONEq(t, `{"shares":1}`, rec.Body.String())
	})

	t.Run("delete requires ownership", func(t *testing.T) {
		rec := app.do(http.MethodDelete, base, "", "", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)

		rec = app.do(http.MethodDelete, base, "", "", reader)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(http.MethodDelete, base, "", "", author)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"redirect":"/blogs"}`, rec.Body.String())

		rec = app.do(http.MethodDelete, base, "", "", author)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// brokenPosts fails listing queries while leaving everything else intact.
type brokenPosts struct {
	repository.PostRepository
}

func (brokenPosts) Count(context.Context, repository.PostFilter) (int, error) {
	return 0, errors.New("connection reset")
}

func TestRouter_DegradedListing(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s", SignupTokenTTL: time.Hour, LoginTokenTTL: time.Hour}
	store := memory.NewStore()
	h, err := NewHandler(cfg, Stores{
		Users:    store.Users(),
		Posts:    brokenPosts{store.Posts()},
		Comments: store.Comments(),
	}, cache.NopUserCache{}, zerolog.Nop())
	require.NoError(t, err)
	app := &testApp{t: t, handler: h, store: store}

	session := app.signup("ada@example.com")
	rec := app.do(http.MethodGet, "/blogs?q=go&page=3", "", "", session)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Posts could not be loaded right now.")
	assert.Contains(t, rec.Body.String(), "There are no blogs to display.")
}
