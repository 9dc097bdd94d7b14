package pricing_test

import (
	"testing"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPrice_SumsExactly(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	p, err := pricing.Price([]pricing.Line{
		{ItemID: a, Quantity: 3, UnitPrice: d("100.00")},
		{ItemID: b, Quantity: 1, UnitPrice: d("50.00")},
	})
	require.NoError(t, err)
	require.Len(t, p.Lines, 2)
	assert.True(t, p.Lines[0].TotalPrice.Equal(d("300")))
	assert.True(t, p.Lines[1].TotalPrice.Equal(d("50")))
	assert.True(t, p.Total.Equal(d("350.00")), p.Total.String())
	assert.Equal(t, 0, p.Lines[0].Position)
	assert.Equal(t, 1, p.Lines[1].Position)
}

func TestPrice_NoFloatDrift(t *testing.T) {
	lines := make([]pricing.Line, 0, 1000)
	for i := 0; i < 1000; i++ {
		lines = append(lines, pricing.Line{ItemID: uuid.New(), Quantity: 1, UnitPrice: d("0.10")})
	}
	p, err := pricing.Price(lines)
	require.NoError(t, err)
	assert.Equal(t, "100", p.Total.String())
}

func TestPrice_EmptyIsZero(t *testing.T) {
	p, err := pricing.Price(nil)
	require.NoError(t, err)
	assert.True(t, p.Total.IsZero())
	assert.Empty(t, p.Lines)
}

func TestPrice_RejectsNonPositiveQuantity(t *testing.T) {
	_, err := pricing.Price([]pricing.Line{
		{ItemID: uuid.New(), Quantity: 2, UnitPrice: d("10")},
		{ItemID: uuid.New(), Quantity: 0, UnitPrice: d("10")},
		{ItemID: uuid.New(), Quantity: -1, UnitPrice: d("10")},
	})
	require.Error(t, err)
	e := apierror.From(err)
	assert.Equal(t, apierror.KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "items[1].quantity")
	assert.Contains(t, e.Fields, "items[2].quantity")
	assert.NotContains(t, e.Fields, "items[0].quantity")
}

func TestPrice_RejectsNegativePriceAndMissingItem(t *testing.T) {
	_, err := pricing.Price([]pricing.Line{{Quantity: 1, UnitPrice: d("-5")}})
	e := apierror.From(err)
	assert.Equal(t, apierror.KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "items[0].unit_price")
	assert.Contains(t, e.Fields, "items[0].item_id")
}

func TestItemIDs_Distinct(t *testing.T) {
	a := uuid.New()
	p, err := pricing.Price([]pricing.Line{
		{ItemID: a, Quantity: 1, UnitPrice: d("1")},
		{ItemID: a, Quantity: 2, UnitPrice: d("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a}, p.ItemIDs())
}

func TestPrice_RejectsSubCentPrices(t *testing.T) {
	// two lines at half a cent would round apart from their sum once stored
	_, err := pricing.Price([]pricing.Line{
		{ItemID: uuid.New(), Quantity: 1, UnitPrice: d("0.005")},
		{ItemID: uuid.New(), Quantity: 1, UnitPrice: d("0.005")},
	})
	e := apierror.From(err)
	require.Equal(t, apierror.KindValidation, e.Kind)
	assert.Equal(t, "scale=2", e.Fields["items[0].unit_price"])
	assert.Equal(t, "scale=2", e.Fields["items[1].unit_price"])

	// trailing zeros past the cent are not extra precision
	p, err := pricing.Price([]pricing.Line{{ItemID: uuid.New(), Quantity: 2, UnitPrice: d("1.500")}})
	require.NoError(t, err)
	assert.True(t, p.Total.Equal(d("3")))
}

func TestPrice_RejectsTotalsBeyondColumnRange(t *testing.T) {
	_, err := pricing.Price([]pricing.Line{{ItemID: uuid.New(), Quantity: 2, UnitPrice: d("9000000000000.00")}})
	e := apierror.From(err)
	require.Equal(t, apierror.KindValidation, e.Kind)
	assert.Equal(t, "max", e.Fields["items[0].total_price"])

	_, err = pricing.Price([]pricing.Line{
		{ItemID: uuid.New(), Quantity: 1, UnitPrice: d("6000000000000.00")},
		{ItemID: uuid.New(), Quantity: 1, UnitPrice: d("6000000000000.00")},
	})
	e = apierror.From(err)
	require.Equal(t, apierror.KindValidation, e.Kind)
	assert.Equal(t, "max", e.Fields["total_amount"])

	p, err := pricing.Price([]pricing.Line{{ItemID: uuid.New(), Quantity: 1, UnitPrice: d("9999999999999.99")}})
	require.NoError(t, err)
	assert.True(t, p.Total.Equal(d("9999999999999.99")))
}

func TestFitsMoney(t *testing.T) {
	assert.True(t, pricing.FitsMoney(d("0.01")))
	assert.True(t, pricing.FitsMoney(d("-9999999999999.99")))
	assert.False(t, pricing.FitsMoney(d("0.001")))
	assert.False(t, pricing.FitsMoney(d("10000000000000")))
}
