package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/response"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/service"
)

type ImageHandler struct {
	svc service.RecipeServiceInterface
}

func NewImageHandler(svc service.RecipeServiceInterface) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// Serve streams /images/<name> from object storage. Recipe imageUrl values
// are the storage keys, so they resolve here unchanged.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	obj, err := h.svc.OpenImage(r.Context(), "images/"+chi.URLParam(r, "*"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	if !obj.ModTime.IsZero() {
		w.Header().Set("Last-Modified", obj.ModTime.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		observability.Logger().WarnContext(r.Context(), "image stream interrupted", "path", r.URL.Path, "error", err)
	}
}
