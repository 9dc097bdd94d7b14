package dto

// ClientContact groups the kind-conditioned contact fields. Personal fields
// belong to individuals; company fields to companies and institutions.
type ClientContact struct {
	PersonalName       *string `json:"personal_name"       validate:"omitempty,max=50"`
	PersonalPhone      *string `json:"personal_phone"      validate:"omitempty,max=20"`
	PersonalEmail      *string `json:"personal_email"      validate:"omitempty,email"`
	CompanyName        *string `json:"company_name"        validate:"omitempty,max=100"`
	BusinessNumber     *string `json:"business_number"     validate:"omitempty,max=20"`
	RepresentativeName *string `json:"representative_name" validate:"omitempty,max=50"`
	CompanyPhone       *string `json:"company_phone"       validate:"omitempty,max=20"`
	CompanyEmail       *string `json:"company_email"       validate:"omitempty,email"`
}

type CreateClientRequest struct {
	Name       string  `json:"name"        validate:"required,max=100"`
	ClientType string  `json:"client_type" validate:"required,oneof=individual company institution"`
	Address    *string `json:"address"`
	Notes      *string `json:"notes"`
	ClientContact
}

type UpdateClientRequest struct {
	Name       *string `json:"name"        validate:"omitempty,min=1,max=100"`
	ClientType *string `json:"client_type" validate:"omitempty,oneof=individual company institution"`
	Address    *string `json:"address"`
	Notes      *string `json:"notes"`
	ClientContact
}

type ClientFilter struct {
	Name       string `form:"name"`
	ClientType string `form:"client_type" validate:"omitempty,oneof=individual company institution"`
	Pagination
}

type ClientResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ClientType string  `json:"client_type"`
	Address    *string `json:"address"`
	Notes      *string `json:"notes"`
	ClientContact
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
