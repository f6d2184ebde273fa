package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/oyishomapeter-tech/blog-app/internal/httputil"
	"github.com/oyishomapeter-tech/blog-app/internal/model"
)

// AddComment handles POST /blogs/{id}/comments
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
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

	values, err := formValues(w, r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.postService.AddComment(r.Context(), id, user, values["body"])
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCommentBodyRequired):
			httputil.WriteBadRequest(w, "Comment body required")
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Blog not found")
		default:
			log.Ctx(r.Context()).Error().Err(err).Str("post_id", id.String()).Msg("add comment")
			httputil.WriteInternalError(w, "Failed to add comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
