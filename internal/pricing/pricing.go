// Package pricing computes line-item and document totals with exact decimal
// arithmetic. It never looks up catalog prices: the unit price on each line
// is the price captured when the line was written.
package pricing

import (
	"fmt"

	"github.com/HanjuJo/nexo-v1/internal/apierror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one incoming line item.
type Line struct {
	ItemID    uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Notes     *string
}

// PricedLine is a validated line with its derived total.
type PricedLine struct {
	Line
	Position   int
	TotalPrice decimal.Decimal
}

// Priced is the result of pricing a whole document.
type Priced struct {
	Lines []PricedLine
	Total decimal.Decimal
}

// Money columns are decimal(15,2): two fractional digits, thirteen integral.
const Scale = 2

var moneyLimit = decimal.New(1, 13)

// HasMoneyScale reports whether v has no significant digit past the cent.
// "1.500" qualifies, "0.005" does not.
func HasMoneyScale(v decimal.Decimal) bool { return v.Equal(v.Round(Scale)) }

// FitsMoney reports whether v can be stored without rounding or overflow.
func FitsMoney(v decimal.Decimal) bool {
	return HasMoneyScale(v) && v.Abs().LessThan(moneyLimit)
}

// LineTotal is quantity × unit price.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Price validates every line and returns the per-line and document totals.
// An empty list is valid and totals zero. Input order is kept as Position.
func Price(lines []Line) (Priced, error) {
	fields := make(map[string]string)
	for i, l := range lines {
		if l.ItemID == uuid.Nil {
			fields[fmt.Sprintf("items[%d].item_id", i)] = "required"
		}
		if l.Quantity <= 0 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "gt=0"
		}
		switch {
		case l.UnitPrice.IsNegative():
			fields[fmt.Sprintf("items[%d].unit_price", i)] = "gte=0"
		case !HasMoneyScale(l.UnitPrice):
			fields[fmt.Sprintf("items[%d].unit_price", i)] = "scale=2"
		case !FitsMoney(l.UnitPrice):
			fields[fmt.Sprintf("items[%d].unit_price", i)] = "max"
		}
	}
	if len(fields) > 0 {
		return Priced{}, apierror.Validation("invalid line items", fields)
	}

	out := Priced{Lines: make([]PricedLine, 0, len(lines)), Total: decimal.Zero}
	for i, l := range lines {
		total := LineTotal(l.Quantity, l.UnitPrice)
		if !FitsMoney(total) {
			fields[fmt.Sprintf("items[%d].total_price", i)] = "max"
		}
		out.Lines = append(out.Lines, PricedLine{Line: l, Position: i, TotalPrice: total})
		out.Total = out.Total.Add(total)
	}
	if len(fields) == 0 && !FitsMoney(out.Total) {
		fields["total_amount"] = "max"
	}
	if len(fields) > 0 {
		return Priced{}, apierror.Validation("line item totals out of range", fields)
	}
	return out, nil
}

// ItemIDs returns the distinct catalog item ids referenced by p, in first-seen order.
func (p Priced) ItemIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(p.Lines))
	ids := make([]uuid.UUID, 0, len(p.Lines))
	for _, l := range p.Lines {
		if !seen[l.ItemID] {
			seen[l.ItemID] = true
			ids = append(ids, l.ItemID)
		}
	}
	return ids
}
