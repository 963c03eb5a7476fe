package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type Step struct {
	Num  int    `json:"num"`
	Name string `json:"name"`
}

type Recipe struct {
	ID          string                          `gorm:"primaryKey;size:36" json:"id"`
	Title       string                          `gorm:"size:255;not null" json:"title"`
	Description string                          `gorm:"size:4000;not null" json:"description"`
	ImageURL    string                          `gorm:"size:1024;not null" json:"imageUrl"`
	Ingredients datatypes.JSONSlice[Ingredient] `json:"ingredients"`
	Steps       datatypes.JSONSlice[Step]       `json:"steps"`
	AuthorID    string                          `gorm:"size:36;not null;index" json:"authorId"`
	Author      *User                           `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CategoryID  string                          `gorm:"size:36;not null;index" json:"categoryId"`
	Category    *Category                       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time                       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time                       `json:"updatedAt"`
}

func (r *Recipe) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsAuthoredBy reports whether userID owns the recipe.
func (r *Recipe) IsAuthoredBy(userID string) bool {
	return userID != "" && r.AuthorID == userID
}
