package dto

type CreateConsultationRequest struct {
	ClientID         string  `json:"client_id"         validate:"required,uuid"`
	ConsultationDate *string `json:"consultation_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Content          string  `json:"content"           validate:"required"`
	Notes            *string `json:"notes"`
}

type UpdateConsultationRequest struct {
	ClientID         *string `json:"client_id"         validate:"omitempty,uuid"`
	ConsultationDate *string `json:"consultation_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Content          *string `json:"content"           validate:"omitempty,min=1"`
	Notes            *string `json:"notes"`
}

type ConsultationFilter struct {
	ClientID string `form:"client_id" validate:"omitempty,uuid"`
	Pagination
}

type ConsultationResponse struct {
	ID               string  `json:"id"`
	ClientID         string  `json:"client_id"`
	ClientName       string  `json:"client_name,omitempty"`
	SalespersonID    string  `json:"salesperson_id"`
	ConsultationDate string  `json:"consultation_date"`
	Content          string  `json:"content"`
	Notes            *string `json:"notes"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}
