package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a piece of jewelry in the catalogue.
type Product struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Slug      string           `json:"slug" db:"slug"`
	Price     decimal.Decimal  `json:"price" db:"price"`
	OldPrice  *decimal.Decimal `json:"oldPrice,omitempty" db:"old_price"`
	Image     string           `json:"image" db:"image"`
	Category  string           `json:"category" db:"category"`
	IsNew     bool             `json:"isNew" db:"is_new"`
	Stock     int              `json:"stock" db:"stock"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

// Category groups products for browsing.
type Category struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Slug  string `json:"slug" db:"slug"`
	Image string `json:"image" db:"image"`
}
