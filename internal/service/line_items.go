package service

import (
	"fmt"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/infra"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/pricing"
	"github.com/HanjuJo/nexo-v1/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// priceLines validates incoming lines, computes their totals and checks that
// every referenced catalog item exists. It runs inside the caller's
// transaction so that nothing is written when a reference is missing.
func priceLines(tx *gorm.DB, items repository.ItemRepository, reqs []dto.LineItemRequest) (pricing.Priced, error) {
	lines := make([]pricing.Line, len(reqs))
	fields := make(map[string]string)
	for i, r := range reqs {
		id, err := uuid.Parse(r.ItemID)
		if err != nil {
			fields[fmt.Sprintf("items[%d].item_id", i)] = "uuid"
		}
		lines[i] = pricing.Line{ItemID: id, Quantity: r.Quantity, UnitPrice: r.UnitPrice, Notes: r.Notes}
	}
	if len(fields) > 0 {
		return pricing.Priced{}, apierror.Validation("invalid line items", fields)
	}

	priced, err := pricing.Price(lines)
	if err != nil {
		return pricing.Priced{}, err
	}

	missing, err := items.MissingTx(tx, priced.ItemIDs())
	if err != nil {
		return pricing.Priced{}, fmt.Errorf("check catalog items: %w", err)
	}
	if len(missing) > 0 {
		absent := make(map[uuid.UUID]bool, len(missing))
		for _, id := range missing {
			absent[id] = true
		}
		for i, l := range priced.Lines {
			if absent[l.ItemID] {
				fields[fmt.Sprintf("items[%d].item_id", i)] = "exists"
			}
		}
		return pricing.Priced{}, apierror.Validation("unknown catalog item", fields)
	}
	return priced, nil
}

func quotationLines(p pricing.Priced) []model.QuotationItem {
	out := make([]model.QuotationItem, len(p.Lines))
	for i, l := range p.Lines {
		out[i] = model.QuotationItem{
			ItemID:     l.ItemID,
			Position:   l.Position,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.TotalPrice,
			Notes:      l.Notes,
		}
	}
	return out
}

func contractLines(p pricing.Priced) []model.ContractItem {
	out := make([]model.ContractItem, len(p.Lines))
	for i, l := range p.Lines {
		out[i] = model.ContractItem{
			ItemID:     l.ItemID,
			Position:   l.Position,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.TotalPrice,
			Notes:      l.Notes,
		}
	}
	return out
}

type storedLine struct {
	ID, ItemID uuid.UUID
	Item       *model.Item
	Position   int
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Notes      *string
}

func (l storedLine) response() dto.LineItemResponse {
	r := dto.LineItemResponse{
		ID:         l.ID.String(),
		ItemID:     l.ItemID.String(),
		Position:   l.Position,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice,
		TotalPrice: l.TotalPrice,
		Notes:      l.Notes,
	}
	if l.Item != nil {
		r.ItemCode = l.Item.Code
		r.ItemName = l.Item.Name
		r.Unit = l.Item.Unit
	}
	return r
}

func quotationStoredLines(items []model.QuotationItem) []storedLine {
	out := make([]storedLine, len(items))
	for i, it := range items {
		out[i] = storedLine{it.ID, it.ItemID, it.Item, it.Position, it.Quantity, it.UnitPrice, it.TotalPrice, it.Notes}
	}
	return out
}

func contractStoredLines(items []model.ContractItem) []storedLine {
	out := make([]storedLine, len(items))
	for i, it := range items {
		out[i] = storedLine{it.ID, it.ItemID, it.Item, it.Position, it.Quantity, it.UnitPrice, it.TotalPrice, it.Notes}
	}
	return out
}

func lineResponses(lines []storedLine) []dto.LineItemResponse {
	out := make([]dto.LineItemResponse, len(lines))
	for i, l := range lines {
		out[i] = l.response()
	}
	return out
}

func pdfLines(lines []storedLine) []infra.PDFLine {
	out := make([]infra.PDFLine, len(lines))
	for i, l := range lines {
		pl := infra.PDFLine{Quantity: l.Quantity, UnitPrice: l.UnitPrice, Total: l.TotalPrice}
		if l.Item != nil {
			pl.Code, pl.Name, pl.Unit = l.Item.Code, l.Item.Name, l.Item.Unit
		}
		out[i] = pl
	}
	return out
}
