package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/apperr"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/service"
)

func newCategoryRouter(svc service.CategoryServiceInterface) http.Handler {
	h := NewCategoryHandler(svc)
	r := chi.NewRouter()
	r.Get("/category", h.List)
	r.Post("/category", h.Create)
	r.Get("/category/{id}", h.Get)
	r.Put("/category/{id}", h.Update)
	r.Delete("/category/{id}", h.Delete)
	return r
}

func TestCategoryListPassesPageAndTotals(t *testing.T) {
	var gotPage int
	svc := &stubCategoryService{listFn: func(_ context.Context, page int) (service.CategoryPage, error) {
		gotPage = page
		return service.CategoryPage{Categories: []domain.Category{{ID: "c-1", Name: "Desserts"}}, Total: 101}, nil
	}}
	router := newCategoryRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/category?page=2", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, MsgCategoryFetched, body["message"])
	assert.EqualValues(t, 101, body["totalCategory"])
	assert.Len(t, body["category"], 1)
	assert.Equal(t, 2, gotPage)

	for _, q := range []string{"", "?page=0", "?page=abc"} {
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/category"+q, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, gotPage, "query %q", q)
	}
}

func TestCategoryCreateReturnsCreated(t *testing.T) {
	svc := &stubCategoryService{createFn: func(_ context.Context, in service.CategoryInput) (*domain.Category, error) {
		return &domain.Category{ID: "c-1", Name: in.Name, Description: in.Description}, nil
	}}
	rr := httptest.NewRecorder()
	newCategoryRouter(svc).ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/category", map[string]string{
		"name": "Desserts", "description": "Sweet things",
	}))

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, MsgCategoryCreated, body["message"])
	category, ok := body["category"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Desserts", category["name"])
}

func TestCategoryGetNotFound(t *testing.T) {
	svc := &stubCategoryService{getFn: func(_ context.Context, id string) (*domain.Category, error) {
		return nil, apperr.NotFound("Category with id " + id + " Not found")
	}}
	rr := httptest.NewRecorder()
	newCategoryRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/category/missing", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Category with id missing Not found", decodeBody(t, rr)["message"])
}

func TestCategoryUpdateAndDelete(t *testing.T) {
	deleted := ""
	svc := &stubCategoryService{
		updateFn: func(_ context.Context, id string, in service.CategoryInput) (*domain.Category, error) {
			return &domain.Category{ID: id, Name: in.Name, Description: in.Description}, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	router := newCategoryRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, jsonRequest(t, http.MethodPut, "/category/c-1", map[string]string{
		"name": "Mains!", "description": "Savory things",
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, MsgCategoryUpdated, decodeBody(t, rr)["message"])

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/category/c-1", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, "c-1", deleted)
}
