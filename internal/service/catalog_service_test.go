package service_test

import (
	"context"
	"testing"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_AdminWritesAndUniqueCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.As(testutil.SeedUser(t, e.db, identity.RoleAdmin))
	sales := testutil.As(testutil.SeedUser(t, e.db, identity.RoleSales))

	req := dto.CreateItemRequest{Code: "CAM-01", Name: "Dome camera", UnitPrice: d("120000")}
	_, err := e.itemSvc.Create(ctx, sales, req)
	requireKind(t, err, apierror.KindForbidden)

	item, err := e.itemSvc.Create(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, "개", item.Unit)
	assert.True(t, item.IsActive)

	_, err = e.itemSvc.Create(ctx, admin, req)
	requireKind(t, err, apierror.KindConflict)

	got, err := e.itemSvc.Get(ctx, sales, uuid.MustParse(item.ID))
	require.NoError(t, err)
	assert.True(t, got.UnitPrice.Equal(d("120000")))

	got, err = e.itemSvc.Update(ctx, admin, uuid.MustParse(item.ID), dto.UpdateItemRequest{UnitPrice: ptr(d("99000"))})
	require.NoError(t, err)
	assert.True(t, got.UnitPrice.Equal(d("99000")))
}

func TestItem_DeactivateKeepsHistoricalLines(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.As(testutil.SeedUser(t, e.db, identity.RoleAdmin))
	sales := testutil.As(testutil.SeedUser(t, e.db, identity.RoleSales))
	client := testutil.SeedClient(t, e.db, "Song")
	item := testutil.SeedItem(t, e.db, "30")

	q, err := e.quotations.Create(ctx, sales, dto.CreateQuotationRequest{
		QuotationNumber: "Q-HIST", ClientID: client.ID.String(),
		Items: []dto.LineItemRequest{line(item.ID.String(), 2, "30")},
	})
	require.NoError(t, err)

	require.NoError(t, e.itemSvc.Deactivate(ctx, admin, item.ID))
	requireKind(t, e.itemSvc.Deactivate(ctx, admin, uuid.New()), apierror.KindNotFound)

	active, err := e.itemSvc.List(ctx, sales, dto.ItemFilter{})
	require.NoError(t, err)
	assert.Zero(t, active.Total)
	withInactive, err := e.itemSvc.List(ctx, sales, dto.ItemFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, withInactive.Total)

	// catalog price changes never alter stored documents
	_, err = e.itemSvc.Update(ctx, admin, item.ID, dto.UpdateItemRequest{UnitPrice: ptr(d("1000"))})
	require.NoError(t, err)
	q, err = e.quotations.Get(ctx, sales, uuid.MustParse(q.ID))
	require.NoError(t, err)
	require.Len(t, q.Items, 1)
	assert.Equal(t, item.Code, q.Items[0].ItemCode)
	assert.True(t, q.TotalAmount.Equal(d("60")))
}

func TestInventory_OneRowPerItemAndAdjust(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.As(testutil.SeedUser(t, e.db, identity.RoleAdmin))
	tech := testutil.As(testutil.SeedUser(t, e.db, identity.RoleTechnician))
	item := testutil.SeedItem(t, e.db, "10")

	req := dto.CreateInventoryRequest{ItemID: item.ID.String(), Quantity: 5, MinStockLevel: 2}
	_, err := e.inventory.Create(ctx, tech, req)
	requireKind(t, err, apierror.KindForbidden)

	inv, err := e.inventory.Create(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, item.Code, inv.ItemCode)
	assert.False(t, inv.LowStock)

	_, err = e.inventory.Create(ctx, admin, req)
	requireKind(t, err, apierror.KindConflict)

	_, err = e.inventory.Create(ctx, admin, dto.CreateInventoryRequest{ItemID: uuid.NewString()})
	requireKind(t, err, apierror.KindValidation)

	id := uuid.MustParse(inv.ID)
	inv, err = e.inventory.Adjust(ctx, admin, id, -3)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.Quantity)
	assert.True(t, inv.LowStock)

	_, err = e.inventory.Adjust(ctx, admin, id, -3)
	requireKind(t, err, apierror.KindValidation)
	inv, err = e.inventory.Get(ctx, tech, id)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.Quantity)

	alerts, err := e.inventory.Alerts(ctx, tech)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, inv.ID, alerts[0].ID)

	inv, err = e.inventory.Update(ctx, admin, id, dto.UpdateInventoryRequest{Quantity: ptr(40)})
	require.NoError(t, err)
	assert.False(t, inv.LowStock)

	require.NoError(t, e.inventory.Delete(ctx, admin, id))
	_, err = e.inventory.Get(ctx, admin, id)
	requireKind(t, err, apierror.KindNotFound)
}

func TestItem_PriceMustFitMoneyColumn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.As(testutil.SeedUser(t, e.db, identity.RoleAdmin))

	_, err := e.itemSvc.Create(ctx, admin, dto.CreateItemRequest{Code: "SUB-CENT", Name: "Cable per cm", UnitPrice: d("0.125")})
	ae := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "scale=2", ae.Fields["unit_price"])

	item, err := e.itemSvc.Create(ctx, admin, dto.CreateItemRequest{Code: "CABLE", Name: "Cable", UnitPrice: d("0.12")})
	require.NoError(t, err)

	_, err = e.itemSvc.Update(ctx, admin, uuid.MustParse(item.ID), dto.UpdateItemRequest{UnitPrice: ptr(d("10000000000000"))})
	ae = requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "max", ae.Fields["unit_price"])
}
