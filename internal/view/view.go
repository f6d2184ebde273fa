// Package view renders the server-side HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageLanding  = "landing"
	PageSignup   = "signup"
	PageLogin    = "login"
	PageAbout    = "about"
	PageContact  = "contact"
	PageIndex    = "index"
	PageDetails  = "details"
	PageSimilar  = "similar"
	PageNewPost  = "new-post"
	PageProfile  = "profile"
	PageNotFound = "404"
)

var pages = []string{
	PageLanding, PageSignup, PageLogin, PageAbout, PageContact, PageIndex,
	PageDetails, PageSimilar, PageNewPost, PageProfile, PageNotFound,
}

// pageRadius is how many page links are shown on each side of the current page.
const pageRadius = 2

// pageWindow returns the page numbers linked from the pagination bar: at most
// 2*pageRadius+1 pages centred on current and clamped to [1, total].
func pageWindow(current, total int) []int {
	if total < 1 {
		return nil
	}
	if current > total {
		current = total
	}
	lo, hi := current-pageRadius, current+pageRadius
	if lo < 1 {
		hi += 1 - lo
		lo = 1
	}
	if hi > total {
		lo -= hi - total
		hi = total
	}
	if lo < 1 {
		lo = 1
	}
	out := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		out = append(out, p)
	}
	return out
}

// Data is the payload every page receives. Pages read only the fields they
// need; User is the signed-in user or nil.
type Data struct {
	Title string
	User  *model.User

	Listing    *model.Listing
	Blog       *model.Post
	Blogs      []model.Post
	Similar    []model.Post
	ArticleURL string
}

var funcs = template.FuncMap{
	"add":  func(a, b int) int { return a + b },
	"sub":  func(a, b int) int { return a - b },
	"join": strings.Join,
	"date": func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"pages": pageWindow,
	"likedBy": func(p *model.Post, u *model.User) bool {
		return p != nil && u != nil && p.LikedBy(u.ID)
	},
	"ownedBy": func(p *model.Post, u *model.User) bool {
		return p != nil && u != nil && p.AuthorID == u.ID
	},
}

// Renderer holds one parsed template set per page, each sharing the layout.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into a buffer first so a template error never leaves
// a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Data) {
	t, ok := r.pages[page]
	if !ok {
		log.Error().Str("page", page).Msg("unknown page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
