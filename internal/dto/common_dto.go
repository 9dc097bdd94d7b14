package dto

import "github.com/shopspring/decimal"

// DateLayout is the wire format of calendar dates (valid_until, contract_date,
// scheduled_date). Timestamps use RFC 3339.
const DateLayout = "2006-01-02"

// ─── Pagination ──────────────────────────────────────────────────────────────

// Pagination is embedded by every list filter.
type Pagination struct {
	Skip  int `form:"skip,default=0"    validate:"min=0"`
	Limit int `form:"limit,default=100" validate:"min=1,max=1000"`
}

// Normalize applies defaults for callers that bypass query binding.
func (p *Pagination) Normalize() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = 100
	}
}

// ListResponse is the envelope of every list endpoint.
type ListResponse[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
}

// ─── Line items ──────────────────────────────────────────────────────────────

// LineItemRequest is one priced line of a quotation or contract. The unit
// price sent by the caller is stored as-is; the catalog price is not consulted.
type LineItemRequest struct {
	ItemID    string          `json:"item_id"    validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Notes     *string         `json:"notes"`
}

type LineItemResponse struct {
	ID         string          `json:"id"`
	ItemID     string          `json:"item_id"`
	ItemCode   string          `json:"item_code,omitempty"`
	ItemName   string          `json:"item_name,omitempty"`
	Unit       string          `json:"unit,omitempty"`
	Position   int             `json:"position"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Notes      *string         `json:"notes"`
}
