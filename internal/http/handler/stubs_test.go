package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/service"
)

var errNotImplemented = errors.New("not implemented")

type stubAuthService struct {
	registerFn    func(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	verifyFn      func(ctx context.Context, token string) (*domain.User, error)
	loginFn       func(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	forgotFn      func(ctx context.Context, email string) error
	lookupResetFn func(ctx context.Context, token string) (*domain.User, error)
	resetFn       func(ctx context.Context, in service.ResetPasswordInput) error
	refreshFn     func(ctx context.Context, authHeader string) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, in)
	}
	return nil, errNotImplemented
}

func (s *stubAuthService) VerifyAccount(ctx context.Context, token string) (*domain.User, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, token)
	}
	return nil, errNotImplemented
}

func (s *stubAuthService) Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, in)
	}
	return nil, errNotImplemented
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) error {
	if s.forgotFn != nil {
		return s.forgotFn(ctx, email)
	}
	return errNotImplemented
}

func (s *stubAuthService) LookupResetToken(ctx context.Context, token string) (*domain.User, error) {
	if s.lookupResetFn != nil {
		return s.lookupResetFn(ctx, token)
	}
	return nil, errNotImplemented
}

func (s *stubAuthService) ResetPassword(ctx context.Context, in service.ResetPasswordInput) error {
	if s.resetFn != nil {
		return s.resetFn(ctx, in)
	}
	return errNotImplemented
}

func (s *stubAuthService) Refresh(ctx context.Context, authHeader string) (string, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, authHeader)
	}
	return "", errNotImplemented
}

type stubCategoryService struct {
	listFn   func(ctx context.Context, page int) (service.CategoryPage, error)
	createFn func(ctx context.Context, in service.CategoryInput) (*domain.Category, error)
	getFn    func(ctx context.Context, id string) (*domain.Category, error)
	updateFn func(ctx context.Context, id string, in service.CategoryInput) (*domain.Category, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubCategoryService) List(ctx context.Context, page int) (service.CategoryPage, error) {
	if s.listFn != nil {
		return s.listFn(ctx, page)
	}
	return service.CategoryPage{}, errNotImplemented
}

func (s *stubCategoryService) Create(ctx context.Context, in service.CategoryInput) (*domain.Category, error) {
	if s.createFn != nil {
		return s.createFn(ctx, in)
	}
	return nil, errNotImplemented
}

func (s *stubCategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, errNotImplemented
}

func (s *stubCategoryService) Update(ctx context.Context, id string, in service.CategoryInput) (*domain.Category, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, in)
	}
	return nil, errNotImplemented
}

func (s *stubCategoryService) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return errNotImplemented
}

type stubRecipeService struct {
	listFn      func(ctx context.Context, page int) (service.RecipePage, error)
	getFn       func(ctx context.Context, id string) (service.RecipeView, error)
	createFn    func(ctx context.Context, authorID string, in service.RecipeInput) (service.RecipeView, error)
	updateFn    func(ctx context.Context, id, userID string, in service.RecipeInput) (service.RecipeView, error)
	deleteFn    func(ctx context.Context, id, userID string) error
	openImageFn func(ctx context.Context, key string) (*service.ImageObject, error)
}

func (s *stubRecipeService) List(ctx context.Context, page int) (service.RecipePage, error) {
	if s.listFn != nil {
		return s.listFn(ctx, page)
	}
	return service.RecipePage{}, errNotImplemented
}

func (s *stubRecipeService) Get(ctx context.Context, id string) (service.RecipeView, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return service.RecipeView{}, errNotImplemented
}

func (s *stubRecipeService) Create(ctx context.Context, authorID string, in service.RecipeInput) (service.RecipeView, error) {
	if s.createFn != nil {
		return s.createFn(ctx, authorID, in)
	}
	return service.RecipeView{}, errNotImplemented
}

func (s *stubRecipeService) Update(ctx context.Context, id, userID string, in service.RecipeInput) (service.RecipeView, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, userID, in)
	}
	return service.RecipeView{}, errNotImplemented
}

func (s *stubRecipeService) Delete(ctx context.Context, id, userID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id, userID)
	}
	return errNotImplemented
}

func (s *stubRecipeService) OpenImage(ctx context.Context, key string) (*service.ImageObject, error) {
	if s.openImageFn != nil {
		return s.openImageFn(ctx, key)
	}
	return nil, errNotImplemented
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return body
}
