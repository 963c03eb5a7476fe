package service

import (
	"context"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	VerifyAccount(ctx context.Context, token string) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	LookupResetToken(ctx context.Context, token string) (*domain.User, error)
	ResetPassword(ctx context.Context, in ResetPasswordInput) error
	Refresh(ctx context.Context, authHeader string) (string, error)
}

type CategoryServiceInterface interface {
	List(ctx context.Context, page int) (CategoryPage, error)
	Create(ctx context.Context, in CategoryInput) (*domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	Update(ctx context.Context, id string, in CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type RecipeServiceInterface interface {
	List(ctx context.Context, page int) (RecipePage, error)
	Get(ctx context.Context, id string) (RecipeView, error)
	Create(ctx context.Context, authorID string, in RecipeInput) (RecipeView, error)
	Update(ctx context.Context, id, userID string, in RecipeInput) (RecipeView, error)
	Delete(ctx context.Context, id, userID string) error
	OpenImage(ctx context.Context, key string) (*ImageObject, error)
}

var (
	_ AuthServiceInterface     = (*AuthService)(nil)
	_ CategoryServiceInterface = (*CategoryService)(nil)
	_ RecipeServiceInterface   = (*RecipeService)(nil)
	_ AccountNotifier          = (*AsyncNotifier)(nil)
	_ AccountNotifier          = (*DevEmailVerificationNotifier)(nil)
	_ ImageStorage             = (*MinIOImageStorage)(nil)
	_ ImageStorage             = (*InMemoryImageStorage)(nil)
	_ ListCacheStore           = (*RedisListCacheStore)(nil)
)
