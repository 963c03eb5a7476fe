package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/domain"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{&domain.User{}, &domain.Category{}, &domain.Recipe{}}
}

func Migrate(db *gorm.DB) error {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "migrate", time.Since(start))
	}()
	if err := db.AutoMigrate(Models()...); err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "error")
		return fmt.Errorf("auto migrate: %w", err)
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "success")
	return nil
}

// TablePlan is what Migrate would change for one model.
type TablePlan struct {
	Table          string   `json:"table"`
	Exists         bool     `json:"exists"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

func (p TablePlan) Pending() bool {
	return !p.Exists || len(p.MissingColumns) > 0
}

func (p TablePlan) String() string {
	switch {
	case !p.Exists:
		return p.Table + ": create table"
	case len(p.MissingColumns) > 0:
		return fmt.Sprintf("%s: add columns %v", p.Table, p.MissingColumns)
	default:
		return p.Table + ": up to date"
	}
}

// Plan inspects the schema without changing it.
func Plan(db *gorm.DB) ([]TablePlan, error) {
	migrator := db.Migrator()
	plans := make([]TablePlan, 0, len(Models()))
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		plan := TablePlan{Table: stmt.Schema.Table, Exists: migrator.HasTable(model)}
		if plan.Exists {
			for _, column := range stmt.Schema.DBNames {
				if !migrator.HasColumn(model, column) {
					plan.MissingColumns = append(plan.MissingColumns, column)
				}
			}
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
