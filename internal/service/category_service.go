package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/apperr"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/repository"
)

const minCategoryFieldLength = 5

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryPage struct {
	Categories []domain.Category `json:"categories"`
	Total      int64             `json:"total"`
}

type CategoryService struct {
	repo  repository.CategoryRepository
	cache *ListCache
}

func NewCategoryService(repo repository.CategoryRepository, cache *ListCache) *CategoryService {
	return &CategoryService{repo: repo, cache: cache}
}

func categoryNotFound(id string) error {
	return apperr.NotFound(fmt.Sprintf("Category with id %s Not found", id))
}

func (in CategoryInput) validate() error {
	var fe fieldErrors
	fe.minLen("name", in.Name, minCategoryFieldLength)
	fe.minLen("description", in.Description, minCategoryFieldLength)
	return fe.err()
}

func (s *CategoryService) List(ctx context.Context, page int) (CategoryPage, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "category", "list", outcome, time.Since(start)) }()

	key := fmt.Sprintf("page=%d", max(page, 1))
	out, err := cachedList(ctx, s.cache, categoryListNamespace, key, func(ctx context.Context) (CategoryPage, error) {
		res, err := s.repo.ListPaged(ctx, repository.PageRequest{Page: page, PageSize: repository.DefaultPageSize})
		if err != nil {
			return CategoryPage{}, err
		}
		return CategoryPage{Categories: res.Items, Total: res.Total}, nil
	})
	if err != nil {
		outcome = "error"
		return CategoryPage{}, apperr.Internal(err)
	}
	if out.Categories == nil {
		out.Categories = []domain.Category{}
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "category", "create", outcome, time.Since(start)) }()

	if err := in.validate(); err != nil {
		outcome = "validation_failed"
		return nil, err
	}
	category := &domain.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.repo.Create(ctx, category); err != nil {
		outcome = "error"
		return nil, apperr.Internal(err)
	}
	s.cache.Invalidate(ctx, categoryListNamespace)
	return category, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, categoryNotFound(id)
		}
		return nil, apperr.Internal(err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "category", "update", outcome, time.Since(start)) }()

	if err := in.validate(); err != nil {
		outcome = "validation_failed"
		return nil, err
	}
	err := s.repo.Update(ctx, id, map[string]any{
		"name":        strings.TrimSpace(in.Name),
		"description": strings.TrimSpace(in.Description),
	})
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			outcome = "not_found"
			return nil, categoryNotFound(id)
		}
		outcome = "error"
		return nil, apperr.Internal(err)
	}
	s.cache.Invalidate(ctx, categoryListNamespace)
	s.cache.Invalidate(ctx, recipeListNamespace)
	return s.Get(ctx, id)
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "category", "delete", outcome, time.Since(start)) }()

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			outcome = "not_found"
			return categoryNotFound(id)
		}
		outcome = "error"
		return apperr.Internal(err)
	}
	s.cache.Invalidate(ctx, categoryListNamespace)
	s.cache.Invalidate(ctx, recipeListNamespace)
	return nil
}
