package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching what clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductType classifies a catalog item as hardware or software.
type ProductType string

const (
	ProductTypeHW ProductType = "HW"
	ProductTypeSW ProductType = "SW"
)

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeHW, ProductTypeSW:
		return true
	}
	return false
}

// Prices are stored as NUMERIC(12, 2).
const PriceScale = 2

// MaxPrice is the exclusive upper bound of a storable price.
var MaxPrice = decimal.New(1, 10)

// PriceStorable reports whether p fits the price column without rounding.
func PriceStorable(p decimal.Decimal) bool {
	return p.LessThan(MaxPrice) && p.Equal(p.Truncate(PriceScale))
}

// Product represents a product in the catalog
type Product struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Description  *string         `db:"description" json:"description,omitempty"`
	Category     string          `db:"category" json:"category"`
	Unit         string          `db:"unit" json:"unit"`
	BusinessUnit string          `db:"business_unit" json:"business_unit"`
	Location     string          `db:"location" json:"location"`
	Price        decimal.Decimal `db:"price" json:"price"`
	ProductType  ProductType     `db:"product_type" json:"product_type"`
	IsAvailable  bool            `db:"is_available" json:"is_available"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Resource returns the audit resource path of the product.
func (p *Product) Resource() string {
	return fmt.Sprintf("products/%d", p.ID)
}

// Category is an entry of the category lookup table
type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Unit is an entry of the unit lookup table
type Unit struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProductFilter narrows a product listing. Empty fields do not filter.
type ProductFilter struct {
	ProductType  string
	BusinessUnit string
	Location     string
	Category     string
}

// ProductPage is a page of a filtered, sorted product listing.
type ProductPage struct {
	Items      []Product `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// Sortable product columns. Anything else is rejected before reaching SQL.
var SortableColumns = map[string]bool{
	"id":            true,
	"name":          true,
	"price":         true,
	"category":      true,
	"business_unit": true,
	"location":      true,
	"created_at":    true,
	"updated_at":    true,
}
