package model

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Client{},
		&Item{},
		&Inventory{},
		&Consultation{},
		&Quotation{},
		&QuotationItem{},
		&Contract{},
		&ContractItem{},
		&Installation{},
	}
}
