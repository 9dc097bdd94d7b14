package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotation_CreateAndReplaceLines(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sales := testutil.SeedUser(t, e.db, identity.RoleSales)
	client := testutil.SeedClient(t, e.db, "Han River Apartments")
	a := testutil.SeedItem(t, e.db, "100.00")
	b := testutil.SeedItem(t, e.db, "50.00")

	q, err := e.quotations.Create(ctx, testutil.As(sales), dto.CreateQuotationRequest{
		QuotationNumber: "Q-001",
		ClientID:        client.ID.String(),
		Items: []dto.LineItemRequest{
			line(a.ID.String(), 3, "100.00"),
			line(b.ID.String(), 1, "50.00"),
		},
	})
	require.NoError(t, err)
	assert.True(t, q.TotalAmount.Equal(d("350.00")), q.TotalAmount.String())
	assert.Equal(t, sales.ID.String(), q.SalespersonID)
	assert.Equal(t, "draft", q.Status)
	assert.Equal(t, "Han River Apartments", q.ClientName)
	require.Len(t, q.Items, 2)
	assert.Equal(t, a.ID.String(), q.Items[0].ItemID)
	assert.True(t, q.Items[0].TotalPrice.Equal(d("300")))
	assert.Equal(t, a.Code, q.Items[0].ItemCode)

	id := uuid.MustParse(q.ID)

	// items omitted: lines and total stay
	q, err = e.quotations.Update(ctx, testutil.As(sales), id, dto.UpdateQuotationRequest{Notes: ptr("call first")})
	require.NoError(t, err)
	assert.Len(t, q.Items, 2)
	assert.True(t, q.TotalAmount.Equal(d("350")))

	// items given: the whole list is replaced
	q, err = e.quotations.Update(ctx, testutil.As(sales), id, dto.UpdateQuotationRequest{
		Items: &[]dto.LineItemRequest{line(a.ID.String(), 1, "100.00")},
	})
	require.NoError(t, err)
	require.Len(t, q.Items, 1)
	assert.True(t, q.TotalAmount.Equal(d("100.00")), q.TotalAmount.String())

	var stored int64
	require.NoError(t, e.db.Model(&model.QuotationItem{}).Where("quotation_id = ?", id).Count(&stored).Error)
	assert.EqualValues(t, 1, stored)

	// empty list clears the lines
	q, err = e.quotations.Update(ctx, testutil.As(sales), id, dto.UpdateQuotationRequest{Items: &[]dto.LineItemRequest{}})
	require.NoError(t, err)
	assert.Empty(t, q.Items)
	assert.True(t, q.TotalAmount.IsZero())
}

func TestQuotation_UnitPriceIsNotLookedUp(t *testing.T) {
	e := newEnv(t)
	sales := testutil.SeedUser(t, e.db, identity.RoleSales)
	client := testutil.SeedClient(t, e.db, "Kim")
	item := testutil.SeedItem(t, e.db, "999.00")

	q, err := e.quotations.Create(context.Background(), testutil.As(sales), dto.CreateQuotationRequest{
		QuotationNumber: "Q-LIST",
		ClientID:        client.ID.String(),
		Items:           []dto.LineItemRequest{line(item.ID.String(), 2, "10.50")},
	})
	require.NoError(t, err)
	assert.True(t, q.TotalAmount.Equal(d("21.00")))
}

func TestQuotation_UnknownItemWritesNothing(t *testing.T) {
	e := newEnv(t)
	sales := testutil.SeedUser(t, e.db, identity.RoleSales)
	client := testutil.SeedClient(t, e.db, "Park")
	item := testutil.SeedItem(t, e.db, "10")

	_, err := e.quotations.Create(context.Background(), testutil.As(sales), dto.CreateQuotationRequest{
		QuotationNumber: "Q-BAD",
		ClientID:        client.ID.String(),
		Items: []dto.LineItemRequest{
			line(item.ID.String(), 1, "10"),
			line(uuid.NewString(), 1, "10"),
		},
	})
	ae := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "exists", ae.Fields["items[1].item_id"])

	var n int64
	require.NoError(t, e.db.Model(&model.Quotation{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestQuotation_RejectsBadLinesAndMissingClient(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	who := testutil.As(testutil.SeedUser(t, e.db, identity.RoleSales))
	client := testutil.SeedClient(t, e.db, "Lee")
	item := testutil.SeedItem(t, e.db, "10")

	_, err := e.quotations.Create(ctx, who, dto.CreateQuotationRequest{
		QuotationNumber: "Q-QTY",
		ClientID:        client.ID.String(),
		Items:           []dto.LineItemRequest{line(item.ID.String(), 0, "10")},
	})
	ae := requireKind(t, err, apierror.KindValidation)
	assert.Contains(t, ae.Fields, "items[0].quantity")

	_, err = e.quotations.Create(ctx, who, dto.CreateQuotationRequest{
		QuotationNumber: "Q-CLIENT",
		ClientID:        uuid.NewString(),
	})
	ae = requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "exists", ae.Fields["client_id"])
}

func TestQuotation_NumberIsUnique(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	who := testutil.As(testutil.SeedUser(t, e.db, identity.RoleSales))
	client := testutil.SeedClient(t, e.db, "Choi")

	req := dto.CreateQuotationRequest{QuotationNumber: "Q-DUP", ClientID: client.ID.String()}
	first, err := e.quotations.Create(ctx, who, req)
	require.NoError(t, err)
	_, err = e.quotations.Create(ctx, who, req)
	requireKind(t, err, apierror.KindConflict)

	second, err := e.quotations.Create(ctx, who, dto.CreateQuotationRequest{QuotationNumber: "Q-OTHER", ClientID: client.ID.String()})
	require.NoError(t, err)
	_, err = e.quotations.Update(ctx, who, uuid.MustParse(second.ID), dto.UpdateQuotationRequest{QuotationNumber: ptr(first.QuotationNumber)})
	requireKind(t, err, apierror.KindConflict)

	// keeping its own number is not a conflict
	_, err = e.quotations.Update(ctx, who, uuid.MustParse(first.ID), dto.UpdateQuotationRequest{QuotationNumber: ptr("Q-DUP")})
	assert.NoError(t, err)
}

func TestQuotation_OwnershipScope(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, e.db, identity.RoleSales)
	other := testutil.SeedUser(t, e.db, identity.RoleSales)
	tech := testutil.SeedUser(t, e.db, identity.RoleTechnician)
	admin := testutil.SeedUser(t, e.db, identity.RoleAdmin)
	client := testutil.SeedClient(t, e.db, "Jung")

	q, err := e.quotations.Create(ctx, testutil.As(owner), dto.CreateQuotationRequest{QuotationNumber: "Q-OWN", ClientID: client.ID.String()})
	require.NoError(t, err)
	_, err = e.quotations.Create(ctx, testutil.As(other), dto.CreateQuotationRequest{QuotationNumber: "Q-OTHER", ClientID: client.ID.String()})
	require.NoError(t, err)
	id := uuid.MustParse(q.ID)

	_, err = e.quotations.Get(ctx, testutil.As(other), id)
	requireKind(t, err, apierror.KindForbidden)
	_, err = e.quotations.Update(ctx, testutil.As(other), id, dto.UpdateQuotationRequest{Notes: ptr("x")})
	requireKind(t, err, apierror.KindForbidden)
	requireKind(t, e.quotations.Delete(ctx, testutil.As(other), id), apierror.KindForbidden)

	_, err = e.quotations.Get(ctx, testutil.As(tech), id)
	requireKind(t, err, apierror.KindNotFound)

	mine, err := e.quotations.List(ctx, testutil.As(owner), dto.DocumentFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, mine.Total)
	assert.Equal(t, "Q-OWN", mine.Data[0].QuotationNumber)

	none, err := e.quotations.List(ctx, testutil.As(tech), dto.DocumentFilter{})
	require.NoError(t, err)
	assert.Zero(t, none.Total)
	assert.Empty(t, none.Data)

	all, err := e.quotations.List(ctx, testutil.As(admin), dto.DocumentFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	_, err = e.quotations.Get(ctx, testutil.As(admin), uuid.New())
	requireKind(t, err, apierror.KindNotFound)
}

func TestQuotation_ListFilters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	who := testutil.As(testutil.SeedUser(t, e.db, identity.RoleSales))
	hanriver := testutil.SeedClient(t, e.db, "Han River Apartments")
	other := testutil.SeedClient(t, e.db, "Busan 50% Mart")

	_, err := e.quotations.Create(ctx, who, dto.CreateQuotationRequest{QuotationNumber: "Q-1", ClientID: hanriver.ID.String(), Status: "submitted"})
	require.NoError(t, err)
	_, err = e.quotations.Create(ctx, who, dto.CreateQuotationRequest{QuotationNumber: "Q-2", ClientID: other.ID.String()})
	require.NoError(t, err)

	got, err := e.quotations.List(ctx, who, dto.DocumentFilter{ClientName: "river"})
	require.NoError(t, err)
	require.EqualValues(t, 1, got.Total)
	assert.Equal(t, "Q-1", got.Data[0].QuotationNumber)

	// wildcards in the needle match literally
	got, err = e.quotations.List(ctx, who, dto.DocumentFilter{ClientName: "50%"})
	require.NoError(t, err)
	require.EqualValues(t, 1, got.Total)
	assert.Equal(t, "Q-2", got.Data[0].QuotationNumber)

	got, err = e.quotations.List(ctx, who, dto.DocumentFilter{Status: "submitted"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Total)

	got, err = e.quotations.List(ctx, who, dto.DocumentFilter{Pagination: dto.Pagination{Skip: 1, Limit: 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Total)
	assert.Len(t, got.Data, 1)
}

func TestQuotation_StatusAndLineage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sales := testutil.SeedUser(t, e.db, identity.RoleSales)
	who := testutil.As(sales)
	client := testutil.SeedClient(t, e.db, "Yoon")

	c1, err := e.consultations.Create(ctx, who, dto.CreateConsultationRequest{ClientID: client.ID.String(), Content: "wants a quote"})
	require.NoError(t, err)
	c2, err := e.consultations.Create(ctx, who, dto.CreateConsultationRequest{ClientID: client.ID.String(), Content: "follow-up"})
	require.NoError(t, err)

	_, err = e.quotations.Create(ctx, who, dto.CreateQuotationRequest{
		QuotationNumber: "Q-BADSTATUS", ClientID: client.ID.String(), Status: "signed",
	})
	requireKind(t, err, apierror.KindValidation)

	_, err = e.quotations.Create(ctx, who, dto.CreateQuotationRequest{
		QuotationNumber: "Q-NOCONS", ClientID: client.ID.String(), ConsultationID: ptr(uuid.NewString()),
	})
	requireKind(t, err, apierror.KindValidation)

	q, err := e.quotations.Create(ctx, who, dto.CreateQuotationRequest{
		QuotationNumber: "Q-LIN", ClientID: client.ID.String(), ConsultationID: &c1.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, q.ConsultationID)
	id := uuid.MustParse(q.ID)

	_, err = e.quotations.Update(ctx, who, id, dto.UpdateQuotationRequest{ConsultationID: &c2.ID})
	ae := requireKind(t, err, apierror.KindValidation)
	assert.Contains(t, ae.Fields, "consultation_id")

	// restating the same origin is allowed
	q, err = e.quotations.Update(ctx, who, id, dto.UpdateQuotationRequest{ConsultationID: &c1.ID, Status: ptr("approved")})
	require.NoError(t, err)
	assert.Equal(t, "approved", q.Status)

	// transitions are not ordered
	q, err = e.quotations.Update(ctx, who, id, dto.UpdateQuotationRequest{Status: ptr("draft")})
	require.NoError(t, err)
	assert.Equal(t, "draft", q.Status)
}

func TestQuotation_DeleteDetachesContracts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	who := testutil.As(testutil.SeedUser(t, e.db, identity.RoleSales))
	client := testutil.SeedClient(t, e.db, "Shin")
	item := testutil.SeedItem(t, e.db, "5")

	q, err := e.quotations.Create(ctx, who, dto.CreateQuotationRequest{
		QuotationNumber: "Q-DEL", ClientID: client.ID.String(),
		Items: []dto.LineItemRequest{line(item.ID.String(), 2, "5")},
	})
	require.NoError(t, err)
	c, err := e.contracts.Create(ctx, who, dto.CreateContractRequest{
		ContractNumber: "C-DEL", ClientID: client.ID.String(), QuotationID: &q.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, c.QuotationID)

	require.NoError(t, e.quotations.Delete(ctx, who, uuid.MustParse(q.ID)))

	var lines int64
	require.NoError(t, e.db.Model(&model.QuotationItem{}).Count(&lines).Error)
	assert.Zero(t, lines)

	c, err = e.contracts.Get(ctx, who, uuid.MustParse(c.ID))
	require.NoError(t, err)
	assert.Nil(t, c.QuotationID)

	requireKind(t, e.quotations.Delete(ctx, who, uuid.MustParse(q.ID)), apierror.KindNotFound)
}

func TestQuotation_RenderPDF(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	who := testutil.As(testutil.SeedUser(t, e.db, identity.RoleSales))
	client := testutil.SeedClient(t, e.db, "Oh")
	item := testutil.SeedItem(t, e.db, "12.50")

	q, err := e.quotations.Create(ctx, who, dto.CreateQuotationRequest{
		QuotationNumber: "Q-PDF", ClientID: client.ID.String(), ValidUntil: ptr("2026-12-31"),
		Items: []dto.LineItemRequest{line(item.ID.String(), 4, "12.50")},
	})
	require.NoError(t, err)

	b, name, err := e.quotations.RenderPDF(ctx, who, uuid.MustParse(q.ID))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
	assert.Equal(t, "quotation_Q-PDF.pdf", name)
}

func TestQuotation_SubCentPricesWriteNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	who := testutil.As(testutil.SeedUser(t, e.db, identity.RoleSales))
	client := testutil.SeedClient(t, e.db, "Half Cent")
	item := testutil.SeedItem(t, e.db, "1")

	_, err := e.quotations.Create(ctx, who, dto.CreateQuotationRequest{
		QuotationNumber: "Q-HALF", ClientID: client.ID.String(),
		Items: []dto.LineItemRequest{line(item.ID.String(), 1, "0.005"), line(item.ID.String(), 1, "0.005")},
	})
	ae := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "scale=2", ae.Fields["items[0].unit_price"])

	_, err = e.quotations.Create(ctx, who, dto.CreateQuotationRequest{
		QuotationNumber: "Q-HUGE", ClientID: client.ID.String(),
		Items: []dto.LineItemRequest{line(item.ID.String(), 1000, "9999999999999.99")},
	})
	ae = requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "max", ae.Fields["items[0].total_price"])

	var n int64
	require.NoError(t, e.db.Model(&model.Quotation{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestQuotation_CannotLinkAnotherSalespersonsConsultation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.As(testutil.SeedUser(t, e.db, identity.RoleSales))
	other := testutil.As(testutil.SeedUser(t, e.db, identity.RoleSales))
	admin := testutil.As(testutil.SeedUser(t, e.db, identity.RoleAdmin))
	client := testutil.SeedClient(t, e.db, "Moon")

	c, err := e.consultations.Create(ctx, owner, dto.CreateConsultationRequest{ClientID: client.ID.String(), Content: "roof survey"})
	require.NoError(t, err)

	_, err = e.quotations.Create(ctx, other, dto.CreateQuotationRequest{
		QuotationNumber: "Q-STEAL", ClientID: client.ID.String(), ConsultationID: &c.ID,
	})
	requireKind(t, err, apierror.KindForbidden)

	// administrators see every consultation and may link any of them
	q, err := e.quotations.Create(ctx, admin, dto.CreateQuotationRequest{
		QuotationNumber: "Q-ADMIN", ClientID: client.ID.String(), ConsultationID: &c.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, q.ConsultationID)
}
