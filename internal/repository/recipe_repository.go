package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

var ErrRecipeNotFound = errors.New("recipe not found")

type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe) error
	FindByID(ctx context.Context, id string) (*domain.Recipe, error)
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Recipe], error)
	Save(ctx context.Context, recipe *domain.Recipe) error
	DeleteByID(ctx context.Context, id string) error
}

type GormRecipeRepository struct{ db *gorm.DB }

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &GormRecipeRepository{db: db}
}

// withRefs joins the author (id and name only) and the category.
func withRefs(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name") }).
		Preload("Category")
}

func (r *GormRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Category").Create(recipe).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "recipe", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "recipe", "create", "success")
	return nil
}

func (r *GormRecipeRepository) FindByID(ctx context.Context, id string) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := withRefs(r.db.WithContext(ctx)).Where("id = ?", id).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "recipe", "find_by_id", "not_found")
			return nil, ErrRecipeNotFound
		}
		observability.RecordRepositoryOperation(ctx, "recipe", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "recipe", "find_by_id", "success")
	return &recipe, nil
}

func (r *GormRecipeRepository) ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Recipe], error) {
	normalized := normalizePageRequest(req)
	result := PageResult[domain.Recipe]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	if err := r.db.WithContext(ctx).Model(&domain.Recipe{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "recipe", "list_paged", "error")
		return PageResult[domain.Recipe]{}, err
	}
	err := withRefs(r.db.WithContext(ctx)).
		Order("created_at desc").
		Offset(normalized.offset()).
		Limit(normalized.PageSize).
		Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "recipe", "list_paged", "error")
		return PageResult[domain.Recipe]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	observability.RecordRepositoryOperation(ctx, "recipe", "list_paged", "success")
	return result, nil
}

func (r *GormRecipeRepository) Save(ctx context.Context, recipe *domain.Recipe) error {
	res := r.db.WithContext(ctx).Omit("Author", "Category").Save(recipe)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "recipe", "save", "error")
		return res.Error
	}
	observability.RecordRepositoryOperation(ctx, "recipe", "save", "success")
	return nil
}

func (r *GormRecipeRepository) DeleteByID(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Recipe{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "recipe", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "recipe", "delete_by_id", "not_found")
		return ErrRecipeNotFound
	}
	observability.RecordRepositoryOperation(ctx, "recipe", "delete_by_id", "success")
	return nil
}
