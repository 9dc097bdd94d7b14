package dto

import "github.com/shopspring/decimal"

// ─── Catalog ─────────────────────────────────────────────────────────────────

type CreateItemRequest struct {
	Code        string          `json:"code"        validate:"required,max=50"`
	Name        string          `json:"name"        validate:"required,max=200"`
	Description *string         `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"  validate:"gte=0"`
	Unit        string          `json:"unit"        validate:"omitempty,max=20"`
}

type UpdateItemRequest struct {
	Code        *string          `json:"code"        validate:"omitempty,min=1,max=50"`
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"  validate:"omitempty,gte=0"`
	Unit        *string          `json:"unit"        validate:"omitempty,max=20"`
	IsActive    *bool            `json:"is_active"`
}

// ItemFilter lists active items unless IncludeInactive is set.
type ItemFilter struct {
	Name            string `form:"name"`
	IncludeInactive bool   `form:"include_inactive"`
	Pagination
}

type ItemResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// ─── Inventory ───────────────────────────────────────────────────────────────

type CreateInventoryRequest struct {
	ItemID        string  `json:"item_id"         validate:"required,uuid"`
	Quantity      int     `json:"quantity"        validate:"min=0"`
	MinStockLevel int     `json:"min_stock_level" validate:"min=0"`
	Location      *string `json:"location"        validate:"omitempty,max=100"`
	Notes         *string `json:"notes"           validate:"omitempty,max=500"`
}

type UpdateInventoryRequest struct {
	Quantity      *int    `json:"quantity"        validate:"omitempty,min=0"`
	MinStockLevel *int    `json:"min_stock_level" validate:"omitempty,min=0"`
	Location      *string `json:"location"        validate:"omitempty,max=100"`
	Notes         *string `json:"notes"           validate:"omitempty,max=500"`
}

// AdjustInventoryRequest applies a signed delta to the stock quantity.
type AdjustInventoryRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type InventoryResponse struct {
	ID            string  `json:"id"`
	ItemID        string  `json:"item_id"`
	ItemCode      string  `json:"item_code"`
	ItemName      string  `json:"item_name"`
	Quantity      int     `json:"quantity"`
	MinStockLevel int     `json:"min_stock_level"`
	LowStock      bool    `json:"low_stock"`
	Location      *string `json:"location"`
	Notes         *string `json:"notes"`
	UpdatedAt     string  `json:"updated_at"`
}
