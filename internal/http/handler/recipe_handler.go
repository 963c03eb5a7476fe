package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/apperr"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/middleware"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/http/response"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/service"
)

const (
	MsgRecipesFetched = "Recipes fetched"
	MsgRecipeFetched  = "Recipe fetched"
	MsgRecipeCreated  = "Recipe add success"
	MsgRecipeUpdated  = "Recipe updated successfully!"
	MsgRecipeDeleted  = "recipe deleted successfully"

	defaultMultipartMemory = 8 << 20
)

type RecipeHandler struct {
	svc             service.RecipeServiceInterface
	multipartMemory int64
}

// NewRecipeHandler builds the recipe endpoints. multipartMemory bounds the
// part of an upload kept in memory before spilling to temp files.
func NewRecipeHandler(svc service.RecipeServiceInterface, multipartMemory int64) *RecipeHandler {
	if multipartMemory <= 0 {
		multipartMemory = defaultMultipartMemory
	}
	return &RecipeHandler{svc: svc, multipartMemory: multipartMemory}
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), pageParam(r))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, http.StatusOK, MsgRecipesFetched, response.Fields{
		"recipes":     page.Recipes,
		"totalRecipe": page.Total,
	})
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, r, http.StatusOK, MsgRecipeFetched, response.Fields{"recipe": recipe})
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := h.readRecipeInput(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	defer cleanup()

	recipe, err := h.svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	auditCatalog(r, "recipe.create", "recipe", recipe.ID)
	response.Message(w, r, http.StatusOK, MsgRecipeCreated, response.Fields{
		"recipe": recipe,
		"author": recipe.Author,
	})
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := h.readRecipeInput(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	defer cleanup()

	id := chi.URLParam(r, "id")
	recipe, err := h.svc.Update(r.Context(), id, middleware.UserIDFromContext(r.Context()), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	auditCatalog(r, "recipe.update", "recipe", id)
	response.Message(w, r, http.StatusOK, MsgRecipeUpdated, response.Fields{"recipe": recipe})
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id, middleware.UserIDFromContext(r.Context())); err != nil {
		response.Error(w, r, err)
		return
	}
	auditCatalog(r, "recipe.delete", "recipe", id)
	response.Message(w, r, http.StatusOK, MsgRecipeDeleted, nil)
}

// recipeJSON is the body accepted when a client updates a recipe without a
// new image.
type recipeJSON struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CategoryID  string          `json:"categoryId"`
	Ingredients json.RawMessage `json:"ingredients"`
	Steps       json.RawMessage `json:"steps"`
	Image       string          `json:"image"`
}

// readRecipeInput accepts multipart/form-data (with an optional "image" file),
// urlencoded forms and JSON. ingredients and steps are JSON arrays in every
// encoding. The returned cleanup releases multipart temp files.
func (h *RecipeHandler) readRecipeInput(r *http.Request) (service.RecipeInput, func(), error) {
	noop := func() {}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var raw recipeJSON
	var in service.RecipeInput
	cleanup := noop
	switch mediaType {
	case "application/json":
		if err := decodeJSON(r, &raw); err != nil {
			return in, noop, err
		}
	case "multipart/form-data", "application/x-www-form-urlencoded":
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(h.multipartMemory); err != nil {
				return in, noop, formError(err)
			}
			form := r.MultipartForm
			cleanup = func() { _ = form.RemoveAll() }
		} else if err := r.ParseForm(); err != nil {
			return in, noop, formError(err)
		}
		raw = recipeJSON{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			CategoryID:  r.FormValue("categoryId"),
			Ingredients: json.RawMessage(r.FormValue("ingredients")),
			Steps:       json.RawMessage(r.FormValue("steps")),
			Image:       r.FormValue("image"),
		}
		img, err := imageFromForm(r)
		if err != nil {
			cleanup()
			return in, noop, err
		}
		if img != nil {
			if c, ok := img.Body.(io.Closer); ok {
				removeTemp := cleanup
				cleanup = func() {
					_ = c.Close()
					removeTemp()
				}
			}
		}
		in.Image = img
	default:
		return in, noop, apperr.ValidationMessage(MsgInvalidBody)
	}

	ingredients, err := parseIngredients(raw.Ingredients)
	if err != nil {
		cleanup()
		return in, noop, err
	}
	steps, err := parseSteps(raw.Steps)
	if err != nil {
		cleanup()
		return in, noop, err
	}
	in.Title = raw.Title
	in.Description = raw.Description
	in.CategoryID = raw.CategoryID
	in.Ingredients = ingredients
	in.Steps = steps
	in.ImageURL = raw.Image
	return in, cleanup, nil
}

func imageFromForm(r *http.Request) (*service.ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.ValidationMessage(service.MsgInvalidImage).Wrap(err)
	}
	return &service.ImageUpload{Filename: header.Filename, Size: header.Size, Body: file}, nil
}

func formError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return apperr.New(apperr.KindValidationFailed, http.StatusRequestEntityTooLarge, "Request body too large.").Wrap(err)
	}
	return apperr.ValidationMessage(MsgInvalidBody).Wrap(err)
}

// parseIngredients accepts ["flour", ...] or [{"name":"flour","quantity":"1 cup"}, ...].
func parseIngredients(raw json.RawMessage) ([]domain.Ingredient, error) {
	items, err := rawArray(raw, "ingredients")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Ingredient, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			out = append(out, domain.Ingredient{Name: name})
			continue
		}
		var ing domain.Ingredient
		if err := json.Unmarshal(item, &ing); err != nil {
			return nil, invalidListField("ingredients", raw)
		}
		out = append(out, ing)
	}
	return out, nil
}

// parseSteps accepts [{"num":1,"name":"mix"}, ...] or ["mix", ...], numbering
// plain strings by position.
func parseSteps(raw json.RawMessage) ([]domain.Step, error) {
	items, err := rawArray(raw, "steps")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Step, 0, len(items))
	for i, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			out = append(out, domain.Step{Num: i + 1, Name: name})
			continue
		}
		var step domain.Step
		if err := json.Unmarshal(item, &step); err != nil {
			return nil, invalidListField("steps", raw)
		}
		out = append(out, step)
	}
	return out, nil
}

func rawArray(raw json.RawMessage, field string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, invalidListField(field, raw)
	}
	return items, nil
}

func invalidListField(field string, raw json.RawMessage) error {
	return apperr.Validation([]apperr.FieldError{{
		Field:   field,
		Message: "Invalid value",
		Value:   strings.TrimSpace(string(raw)),
	}})
}
