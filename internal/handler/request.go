package handler

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/transport/http/middleware"
)

const maxBodyBytes = 1 << 20

// formValues reads the request body as either a flat JSON object of strings
// or a urlencoded form. Pages post forms; the bundled scripts post JSON.
func formValues(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		values := map[string]string{}
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	values := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		values[k] = r.PostForm.Get(k)
	}
	return values, nil
}

// postID parses the {id} route parameter.
func postID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func currentUser(r *http.Request) *model.User {
	return middleware.UserFromContext(r.Context())
}

// articleURL is the absolute link shown for sharing a post.
func articleURL(r *http.Request, id uuid.UUID) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/blogs/%s", scheme, r.Host, id)
}
