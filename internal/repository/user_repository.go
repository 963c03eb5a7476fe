package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the credential store. It exclusively owns user rows.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindInactiveByID(ctx context.Context, id string) (*domain.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	FindByEmailAndResetToken(ctx context.Context, email, token string, now time.Time) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *domain.User) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = normalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "user", "create", "success")
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "find_by_id", r.db.Where("id = ?", id))
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "find_by_email", r.db.Where("email = ?", normalizeEmail(email)))
}

func (r *GormUserRepository) FindInactiveByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "find_inactive_by_id", r.db.Where("id = ? AND is_active = ?", id, false))
}

func (r *GormUserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	q := r.db.Where("reset_token = ? AND reset_token_expiration > ?", token, now.UTC())
	return r.first(ctx, "find_by_reset_token", q)
}

func (r *GormUserRepository) FindByEmailAndResetToken(ctx context.Context, email, token string, now time.Time) (*domain.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	q := r.db.Where(
		"email = ? AND reset_token = ? AND reset_token_expiration > ?",
		normalizeEmail(email), token, now.UTC(),
	)
	return r.first(ctx, "find_by_email_and_reset_token", q)
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", normalizeEmail(email)).Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "exists_by_email", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "exists_by_email", "success")
	return count > 0, nil
}

// Save writes every column, so cleared reset fields are persisted as NULL.
func (r *GormUserRepository) Save(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "save", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "user", "save", "success")
	return nil
}

func (r *GormUserRepository) first(ctx context.Context, op string, q *gorm.DB) (*domain.User, error) {
	var u domain.User
	if err := q.WithContext(ctx).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", op, "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", op, "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", op, "success")
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
