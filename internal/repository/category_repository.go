package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Category], error)
	Update(ctx context.Context, id string, updates map[string]any) error
	DeleteByID(ctx context.Context, id string) error
}

type GormCategoryRepository struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "category", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "category", "create", "success")
	return nil
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "category", "find_by_id", "not_found")
			return nil, ErrCategoryNotFound
		}
		observability.RecordRepositoryOperation(ctx, "category", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "category", "find_by_id", "success")
	return &category, nil
}

func (r *GormCategoryRepository) ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.Category], error) {
	normalized := normalizePageRequest(req)
	result := PageResult[domain.Category]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	base := r.db.WithContext(ctx).Model(&domain.Category{})
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "category", "list_paged", "error")
		return PageResult[domain.Category]{}, err
	}
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Offset(normalized.offset()).
		Limit(normalized.PageSize).
		Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "category", "list_paged", "error")
		return PageResult[domain.Category]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	observability.RecordRepositoryOperation(ctx, "category", "list_paged", "success")
	return result, nil
}

func (r *GormCategoryRepository) Update(ctx context.Context, id string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "category", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "category", "update", "not_found")
		return ErrCategoryNotFound
	}
	observability.RecordRepositoryOperation(ctx, "category", "update", "success")
	return nil
}

func (r *GormCategoryRepository) DeleteByID(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Category{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "category", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "category", "delete_by_id", "not_found")
		return ErrCategoryNotFound
	}
	observability.RecordRepositoryOperation(ctx, "category", "delete_by_id", "success")
	return nil
}
