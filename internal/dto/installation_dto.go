package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateInstallationRequest struct {
	ContractID       string  `json:"contract_id"       validate:"required,uuid"`
	ClientID         string  `json:"client_id"         validate:"required,uuid"`
	TechnicianID     string  `json:"technician_id"     validate:"required,uuid"`
	InstallationType string  `json:"installation_type" validate:"required,oneof=installation service_visit"`
	Status           string  `json:"status"            validate:"omitempty,oneof=pending in_progress cancelled"`
	ScheduledDate    *string `json:"scheduled_date"    validate:"omitempty,datetime=2006-01-02"`
	Notes            *string `json:"notes"`
}

// UpdateInstallationRequest cannot complete an installation; completion goes
// through PUT /v1/installations/:id/complete.
type UpdateInstallationRequest struct {
	ContractID       *string `json:"contract_id"       validate:"omitempty,uuid"`
	ClientID         *string `json:"client_id"         validate:"omitempty,uuid"`
	TechnicianID     *string `json:"technician_id"     validate:"omitempty,uuid"`
	InstallationType *string `json:"installation_type" validate:"omitempty,oneof=installation service_visit"`
	Status           *string `json:"status"            validate:"omitempty,oneof=pending in_progress completed cancelled"`
	ScheduledDate    *string `json:"scheduled_date"    validate:"omitempty,datetime=2006-01-02"`
	Notes            *string `json:"notes"`
}

// InstallationFilter is bound from the query string of GET /v1/installations.
type InstallationFilter struct {
	Status   string `form:"status"    validate:"omitempty,oneof=pending in_progress completed cancelled"`
	ClientID string `form:"client_id" validate:"omitempty,uuid"`
	Pagination
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InstallationResponse struct {
	ID               string  `json:"id"`
	ContractID       string  `json:"contract_id"`
	ClientID         string  `json:"client_id"`
	ClientName       string  `json:"client_name,omitempty"`
	TechnicianID     string  `json:"technician_id"`
	InstallationType string  `json:"installation_type"`
	Status           string  `json:"status"`
	ScheduledDate    *string `json:"scheduled_date"`
	CompletedAt      *string `json:"completed_at"`
	ResultText       *string `json:"result_text"`
	Attachment1URL   *string `json:"attachment1_url"`
	Attachment2URL   *string `json:"attachment2_url"`
	Notes            *string `json:"notes"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}
