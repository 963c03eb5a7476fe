package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

var DefaultCategories = []domain.Category{
	{Name: "Breakfast", Description: "Morning dishes, pancakes, eggs and bowls"},
	{Name: "Main courses", Description: "Hearty lunch and dinner plates"},
	{Name: "Desserts", Description: "Cakes, pies, cookies and other sweets"},
	{Name: "Drinks", Description: "Smoothies, cocktails and hot drinks"},
}

type SeedOptions struct {
	DemoName  string
	DemoEmail string
	// DemoPasswordHash is stored as is; callers hash with the configured cost.
	DemoPasswordHash string
}

type SeedReport struct {
	CreatedUser       bool `json:"created_user"`
	CreatedCategories int  `json:"created_categories"`
	Noop              bool `json:"noop"`
}

// Seed inserts an active demo user and the default categories. Existing rows
// are matched by email and category name, so running it twice is a no-op.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "seed", time.Since(start))
	}()

	report := &SeedReport{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if email := strings.ToLower(strings.TrimSpace(opts.DemoEmail)); email != "" {
			if opts.DemoPasswordHash == "" {
				return errors.New("demo password hash is required")
			}
			user := domain.User{
				Email:        email,
				Name:         opts.DemoName,
				PasswordHash: opts.DemoPasswordHash,
				IsActive:     true,
			}
			res := tx.Where("email = ?", email).FirstOrCreate(&user)
			if res.Error != nil {
				return fmt.Errorf("seed demo user: %w", res.Error)
			}
			report.CreatedUser = res.RowsAffected > 0
		}
		for _, c := range DefaultCategories {
			category := c
			res := tx.Where("name = ?", category.Name).FirstOrCreate(&category)
			if res.Error != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, res.Error)
			}
			if res.RowsAffected > 0 {
				report.CreatedCategories++
			}
		}
		return nil
	})
	if err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "seed", "error")
		return nil, err
	}
	report.Noop = !report.CreatedUser && report.CreatedCategories == 0
	observability.RecordDatabaseStartupEvent(ctx, "seed", "success")
	return report, nil
}

// SeedPreview describes what Seed would insert without writing anything.
func SeedPreview(ctx context.Context, db *gorm.DB, opts SeedOptions) ([]string, error) {
	var out []string
	tx := db.WithContext(ctx)
	if email := strings.ToLower(strings.TrimSpace(opts.DemoEmail)); email != "" {
		var n int64
		if err := tx.Model(&domain.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count demo user: %w", err)
		}
		if n == 0 {
			out = append(out, "would create demo user "+email)
		} else {
			out = append(out, "demo user "+email+" exists")
		}
	}
	for _, c := range DefaultCategories {
		var n int64
		if err := tx.Model(&domain.Category{}).Where("name = ?", c.Name).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count category %q: %w", c.Name, err)
		}
		if n == 0 {
			out = append(out, "would create category "+c.Name)
		}
	}
	return out, nil
}
