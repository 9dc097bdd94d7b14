package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateQuotationRequest struct {
	QuotationNumber string            `json:"quotation_number" validate:"required,max=50"`
	ClientID        string            `json:"client_id"        validate:"required,uuid"`
	ConsultationID  *string           `json:"consultation_id"  validate:"omitempty,uuid"`
	Status          string            `json:"status"           validate:"omitempty,oneof=draft submitted approved rejected expired"`
	ValidUntil      *string           `json:"valid_until"      validate:"omitempty,datetime=2006-01-02"`
	Notes           *string           `json:"notes"`
	Items           []LineItemRequest `json:"items"            validate:"dive"`
}

// UpdateQuotationRequest is a partial update. Items == nil keeps the current
// lines; a non-nil slice (even empty) replaces all of them.
type UpdateQuotationRequest struct {
	QuotationNumber *string            `json:"quotation_number" validate:"omitempty,max=50"`
	ClientID        *string            `json:"client_id"        validate:"omitempty,uuid"`
	ConsultationID  *string            `json:"consultation_id"  validate:"omitempty,uuid"`
	Status          *string            `json:"status"           validate:"omitempty,oneof=draft submitted approved rejected expired"`
	ValidUntil      *string            `json:"valid_until"      validate:"omitempty,datetime=2006-01-02"`
	Notes           *string            `json:"notes"`
	Items           *[]LineItemRequest `json:"items"            validate:"omitempty,dive"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// DocumentFilter is bound from the query string of quotation and contract lists.
type DocumentFilter struct {
	ClientName string `form:"client_name"`
	Status     string `form:"status"`
	Pagination
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type QuotationResponse struct {
	ID              string             `json:"id"`
	QuotationNumber string             `json:"quotation_number"`
	ClientID        string             `json:"client_id"`
	ClientName      string             `json:"client_name,omitempty"`
	SalespersonID   string             `json:"salesperson_id"`
	ConsultationID  *string            `json:"consultation_id"`
	Status          string             `json:"status"`
	ValidUntil      *string            `json:"valid_until"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Notes           *string            `json:"notes"`
	Items           []LineItemResponse `json:"items"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}
