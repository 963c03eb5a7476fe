package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/apperr"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/repository"
)

const (
	MsgInvalidImage       = "Invalid or missing image."
	MsgImageTooLarge      = "Image exceeds the upload size limit."
	MsgNoFilePicked       = "No file picked"
	MsgCategoryNotFound   = "Category not found!"
	MsgRecipeUnauthorized = "Unauthorized."

	minRecipeFieldLength = 3
)

// ImageUpload is an image file received with a recipe form.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type RecipeInput struct {
	Title       string
	Description string
	CategoryID  string
	Ingredients []domain.Ingredient
	Steps       []domain.Step
	Image       *ImageUpload
	// ImageURL keeps the current image on update when no file is sent.
	ImageURL string
}

// RecipeView is a recipe with its author reduced to id and name.
type RecipeView struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ImageURL    string              `json:"imageUrl"`
	Ingredients []domain.Ingredient `json:"ingredients"`
	Steps       []domain.Step       `json:"steps"`
	CategoryID  string              `json:"categoryId"`
	Category    *domain.Category    `json:"category,omitempty"`
	Author      *domain.Author      `json:"author,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func NewRecipeView(r *domain.Recipe) RecipeView {
	v := RecipeView{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Ingredients: []domain.Ingredient(r.Ingredients),
		Steps:       []domain.Step(r.Steps),
		CategoryID:  r.CategoryID,
		Category:    r.Category,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if v.Ingredients == nil {
		v.Ingredients = []domain.Ingredient{}
	}
	if v.Steps == nil {
		v.Steps = []domain.Step{}
	}
	if r.Author != nil {
		a := r.Author.Author()
		v.Author = &a
	} else if r.AuthorID != "" {
		v.Author = &domain.Author{ID: r.AuthorID}
	}
	return v
}

type RecipePage struct {
	Recipes []RecipeView `json:"recipes"`
	Total   int64        `json:"total"`
}

type RecipeService struct {
	recipes    repository.RecipeRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	images     ImageStorage
	cache      *ListCache
	logger     *slog.Logger
}

func NewRecipeService(
	recipes repository.RecipeRepository,
	categories repository.CategoryRepository,
	users repository.UserRepository,
	images ImageStorage,
	cache *ListCache,
	logger *slog.Logger,
) *RecipeService {
	return &RecipeService{
		recipes:    recipes,
		categories: categories,
		users:      users,
		images:     images,
		cache:      cache,
		logger:     logger,
	}
}

func recipeNotFound(id string) error {
	return apperr.NotFound(fmt.Sprintf("Recipe with id %s Not found", id))
}

func (s *RecipeService) List(ctx context.Context, page int) (RecipePage, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "recipe", "list", outcome, time.Since(start)) }()

	key := fmt.Sprintf("page=%d", max(page, 1))
	out, err := cachedList(ctx, s.cache, recipeListNamespace, key, func(ctx context.Context) (RecipePage, error) {
		res, err := s.recipes.ListPaged(ctx, repository.PageRequest{Page: page, PageSize: repository.DefaultPageSize})
		if err != nil {
			return RecipePage{}, err
		}
		views := make([]RecipeView, 0, len(res.Items))
		for i := range res.Items {
			views = append(views, NewRecipeView(&res.Items[i]))
		}
		return RecipePage{Recipes: views, Total: res.Total}, nil
	})
	if err != nil {
		outcome = "error"
		return RecipePage{}, apperr.Internal(err)
	}
	if out.Recipes == nil {
		out.Recipes = []RecipeView{}
	}
	return out, nil
}

func (s *RecipeService) Get(ctx context.Context, id string) (RecipeView, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return RecipeView{}, recipeNotFound(id)
		}
		return RecipeView{}, apperr.Internal(err)
	}
	return NewRecipeView(recipe), nil
}

func (s *RecipeService) validate(ctx context.Context, in RecipeInput, requireCategory bool) error {
	var fe fieldErrors
	fe.minLen("title", in.Title, minRecipeFieldLength)
	fe.minLen("description", in.Description, minRecipeFieldLength)
	categoryID := strings.TrimSpace(in.CategoryID)
	switch {
	case categoryID == "" && requireCategory:
		fe.add("categoryId", "Invalid value", in.CategoryID)
	case categoryID != "":
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			if !errors.Is(err, repository.ErrCategoryNotFound) {
				return apperr.Internal(err)
			}
			fe.add("categoryId", MsgCategoryNotFound, in.CategoryID)
		}
	}
	return fe.err()
}

func (s *RecipeService) Create(ctx context.Context, authorID string, in RecipeInput) (RecipeView, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "recipe", "create", outcome, time.Since(start)) }()

	if err := s.validate(ctx, in, true); err != nil {
		outcome = "validation_failed"
		return RecipeView{}, err
	}
	if in.Image == nil {
		outcome = "validation_failed"
		return RecipeView{}, apperr.ValidationMessage(MsgInvalidImage)
	}
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			outcome = "unauthorized"
			return RecipeView{}, apperr.Unauthorized(MsgRecipeUnauthorized)
		}
		outcome = "error"
		return RecipeView{}, apperr.Internal(err)
	}

	key, err := s.upload(ctx, in.Image)
	if err != nil {
		outcome = "validation_failed"
		return RecipeView{}, err
	}
	recipe := &domain.Recipe{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    key,
		Ingredients: in.Ingredients,
		Steps:       in.Steps,
		AuthorID:    author.ID,
		CategoryID:  strings.TrimSpace(in.CategoryID),
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		outcome = "error"
		s.deleteImage(ctx, key)
		return RecipeView{}, apperr.Internal(err)
	}
	s.cache.Invalidate(ctx, recipeListNamespace)

	recipe.Author = author
	return NewRecipeView(recipe), nil
}

func (s *RecipeService) Update(ctx context.Context, id, userID string, in RecipeInput) (RecipeView, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "recipe", "update", outcome, time.Since(start)) }()

	if err := s.validate(ctx, in, false); err != nil {
		outcome = "validation_failed"
		return RecipeView{}, err
	}
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			outcome = "not_found"
			return RecipeView{}, recipeNotFound(id)
		}
		outcome = "error"
		return RecipeView{}, apperr.Internal(err)
	}
	if !recipe.IsAuthoredBy(userID) {
		outcome = "unauthorized"
		return RecipeView{}, apperr.Unauthorized(MsgRecipeUnauthorized)
	}

	imageURL := strings.TrimSpace(in.ImageURL)
	uploaded := ""
	if in.Image != nil {
		uploaded, err = s.upload(ctx, in.Image)
		if err != nil {
			outcome = "validation_failed"
			return RecipeView{}, err
		}
		imageURL = uploaded
	}
	// Without an upload only the recipe's current key is accepted.
	if imageURL == "" || (uploaded == "" && imageURL != recipe.ImageURL) {
		outcome = "validation_failed"
		return RecipeView{}, apperr.ValidationMessage(MsgNoFilePicked)
	}

	previousImage := recipe.ImageURL
	recipe.Title = strings.TrimSpace(in.Title)
	recipe.Description = strings.TrimSpace(in.Description)
	recipe.Ingredients = in.Ingredients
	recipe.Steps = in.Steps
	recipe.ImageURL = imageURL
	if categoryID := strings.TrimSpace(in.CategoryID); categoryID != "" && categoryID != recipe.CategoryID {
		recipe.CategoryID = categoryID
		recipe.Category = nil
	}
	if err := s.recipes.Save(ctx, recipe); err != nil {
		outcome = "error"
		if uploaded != "" {
			s.deleteImage(ctx, uploaded)
		}
		return RecipeView{}, apperr.Internal(err)
	}
	if previousImage != "" && previousImage != imageURL {
		s.deleteImage(ctx, previousImage)
	}
	s.cache.Invalidate(ctx, recipeListNamespace)
	return s.Get(ctx, id)
}

func (s *RecipeService) Delete(ctx context.Context, id, userID string) error {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordCatalogOperation(ctx, "recipe", "delete", outcome, time.Since(start)) }()

	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			outcome = "not_found"
			return recipeNotFound(id)
		}
		outcome = "error"
		return apperr.Internal(err)
	}
	if !recipe.IsAuthoredBy(userID) {
		outcome = "unauthorized"
		return apperr.Unauthorized(MsgRecipeUnauthorized)
	}
	if err := s.recipes.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			outcome = "not_found"
			return recipeNotFound(id)
		}
		outcome = "error"
		return apperr.Internal(err)
	}
	s.deleteImage(ctx, recipe.ImageURL)
	s.cache.Invalidate(ctx, recipeListNamespace)
	return nil
}

// OpenImage streams a stored recipe image.
func (s *RecipeService) OpenImage(ctx context.Context, key string) (*ImageObject, error) {
	obj, err := s.images.Open(ctx, key)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) || errors.Is(err, ErrInvalidImageKey) {
			return nil, apperr.NotFound("Image not found")
		}
		return nil, apperr.Internal(err)
	}
	return obj, nil
}

func (s *RecipeService) upload(ctx context.Context, img *ImageUpload) (string, error) {
	key, err := s.images.Upload(ctx, img.Filename, img.Body, img.Size)
	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, ErrInvalidImageType):
		return "", apperr.ValidationMessage(MsgInvalidImage)
	case errors.Is(err, ErrImageTooBig):
		return "", apperr.ValidationMessage(MsgImageTooLarge)
	default:
		return "", apperr.Internal(err)
	}
}

// deleteImage is best effort. A leftover object is logged, not returned.
func (s *RecipeService) deleteImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "recipe image cleanup failed", "key", key, "error", err)
	}
}
