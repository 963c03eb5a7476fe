package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
)

func TestUserRepositoryCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newRepositoryDBForTest(t))

	u := &domain.User{Email: " Ann@X.com ", Name: "Ann", PasswordHash: "hash"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if u.IsActive {
		t.Fatal("expected new user to be inactive")
	}

	byEmail, err := repo.FindByEmail(ctx, "ann@x.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("id mismatch: got %s want %s", byEmail.ID, u.ID)
	}

	exists, err := repo.ExistsByEmail(ctx, "ANN@x.com")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected email to exist")
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryFindInactiveByID(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newRepositoryDBForTest(t))

	u := &domain.User{Email: "ann@x.com", Name: "Ann", PasswordHash: "hash"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.FindInactiveByID(ctx, u.ID); err != nil {
		t.Fatalf("expected inactive lookup to match: %v", err)
	}

	u.IsActive = true
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := repo.FindInactiveByID(ctx, u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected active user to be excluded, got %v", err)
	}
}

func TestUserRepositoryResetTokenWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newRepositoryDBForTest(t))
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	u := &domain.User{Email: "ann@x.com", Name: "Ann", PasswordHash: "hash"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	u.SetResetToken("tok-1", now.Add(360*time.Second))
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := repo.FindByResetToken(ctx, "tok-1", now.Add(time.Minute)); err != nil {
		t.Fatalf("expected token inside window: %v", err)
	}
	if _, err := repo.FindByEmailAndResetToken(ctx, "ann@x.com", "tok-1", now.Add(time.Minute)); err != nil {
		t.Fatalf("expected email+token inside window: %v", err)
	}
	if _, err := repo.FindByEmailAndResetToken(ctx, "other@x.com", "tok-1", now); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected email mismatch to miss, got %v", err)
	}
	if _, err := repo.FindByResetToken(ctx, "tok-1", now.Add(361*time.Second)); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected expired token to miss, got %v", err)
	}
	if _, err := repo.FindByResetToken(ctx, "", now); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected empty token to miss, got %v", err)
	}

	u.ClearResetToken()
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("save cleared: %v", err)
	}
	reloaded, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ResetToken != nil || reloaded.ResetTokenExpiration != nil {
		t.Fatalf("expected reset pair cleared, got %+v", reloaded)
	}
}

func TestUserRepositoryResetTokenWindowOutsideUTC(t *testing.T) {
	ctx := context.Background()

	for _, offset := range []int{-5, 5} {
		repo := NewUserRepository(newRepositoryDBForTest(t))
		zone := time.FixedZone("test", offset*3600)
		issued := time.Date(2026, 3, 1, 10, 0, 0, 0, zone)

		u := &domain.User{Email: "ann@x.com", Name: "Ann", PasswordHash: "hash"}
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("create: %v", err)
		}
		u.SetResetToken("tok-1", issued.Add(360*time.Second))
		if err := repo.Save(ctx, u); err != nil {
			t.Fatalf("save: %v", err)
		}

		if _, err := repo.FindByResetToken(ctx, "tok-1", issued.Add(time.Second)); err != nil {
			t.Fatalf("offset %d: expected token valid one second after issue: %v", offset, err)
		}
		if _, err := repo.FindByEmailAndResetToken(ctx, "ann@x.com", "tok-1", issued.Add(time.Second)); err != nil {
			t.Fatalf("offset %d: expected email+token valid one second after issue: %v", offset, err)
		}
		if _, err := repo.FindByResetToken(ctx, "tok-1", issued.Add(2*time.Hour)); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("offset %d: expected token expired after two hours, got %v", offset, err)
		}
	}
}
