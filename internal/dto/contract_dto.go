package dto

import "github.com/shopspring/decimal"

type CreateContractRequest struct {
	ContractNumber string            `json:"contract_number" validate:"required,max=50"`
	ClientID       string            `json:"client_id"       validate:"required,uuid"`
	QuotationID    *string           `json:"quotation_id"    validate:"omitempty,uuid"`
	Status         string            `json:"status"          validate:"omitempty,oneof=draft signed in_progress completed cancelled"`
	ContractDate   *string           `json:"contract_date"   validate:"omitempty,datetime=2006-01-02"`
	Notes          *string           `json:"notes"`
	Items          []LineItemRequest `json:"items"           validate:"dive"`
}

// UpdateContractRequest follows the same replace-all rule as quotations.
type UpdateContractRequest struct {
	ContractNumber *string            `json:"contract_number" validate:"omitempty,max=50"`
	ClientID       *string            `json:"client_id"       validate:"omitempty,uuid"`
	QuotationID    *string            `json:"quotation_id"    validate:"omitempty,uuid"`
	Status         *string            `json:"status"          validate:"omitempty,oneof=draft signed in_progress completed cancelled"`
	ContractDate   *string            `json:"contract_date"   validate:"omitempty,datetime=2006-01-02"`
	Notes          *string            `json:"notes"`
	Items          *[]LineItemRequest `json:"items"           validate:"omitempty,dive"`
}

type ContractResponse struct {
	ID             string             `json:"id"`
	ContractNumber string             `json:"contract_number"`
	ClientID       string             `json:"client_id"`
	ClientName     string             `json:"client_name,omitempty"`
	SalespersonID  string             `json:"salesperson_id"`
	QuotationID    *string            `json:"quotation_id"`
	Status         string             `json:"status"`
	ContractDate   *string            `json:"contract_date"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	Notes          *string            `json:"notes"`
	Items          []LineItemResponse `json:"items"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}
