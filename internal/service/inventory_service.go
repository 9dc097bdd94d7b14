package service

import (
	"context"
	"fmt"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/policy"
	"github.com/HanjuJo/nexo-v1/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService tracks stock per catalog item.
type InventoryService interface {
	Create(ctx context.Context, who identity.Identity, req dto.CreateInventoryRequest) (*dto.InventoryResponse, error)
	Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.InventoryResponse, error)
	List(ctx context.Context, who identity.Identity, p dto.Pagination) (*dto.ListResponse[dto.InventoryResponse], error)
	// Alerts lists every row at or below its minimum stock level.
	Alerts(ctx context.Context, who identity.Identity) ([]dto.InventoryResponse, error)
	Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateInventoryRequest) (*dto.InventoryResponse, error)
	Adjust(ctx context.Context, who identity.Identity, id uuid.UUID, delta int) (*dto.InventoryResponse, error)
	Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error
}

type inventoryService struct {
	repo  repository.InventoryRepository
	items repository.ItemRepository
}

func NewInventoryService(repo repository.InventoryRepository, items repository.ItemRepository) InventoryService {
	return &inventoryService{repo: repo, items: items}
}

func inventoryVisible(who identity.Identity) bool {
	return policy.Resolve(who, policy.ResourceInventory).Visibility != policy.None
}

func (s *inventoryService) Create(ctx context.Context, who identity.Identity, req dto.CreateInventoryRequest) (*dto.InventoryResponse, error) {
	if err := requireAdmin(who, "manage inventory"); err != nil {
		return nil, err
	}
	itemID, err := parseID("item_id", req.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		if apierror.Is(err, apierror.KindNotFound) {
			return nil, apierror.Validation("item does not exist", map[string]string{"item_id": "exists"})
		}
		return nil, apierror.From(err)
	}
	exists, err := s.repo.ExistsForItem(ctx, itemID)
	if err != nil {
		return nil, apierror.From(err)
	}
	if exists {
		return nil, apierror.Conflict("inventory for this item already exists")
	}
	inv := &model.Inventory{
		ItemID:        itemID,
		Quantity:      req.Quantity,
		MinStockLevel: req.MinStockLevel,
		Location:      req.Location,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, apierror.From(err)
	}
	return s.load(ctx, inv.ID)
}

func (s *inventoryService) Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.InventoryResponse, error) {
	if !inventoryVisible(who) {
		return nil, apierror.NotFound("inventory not found")
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "inventory")
	}
	return toInventoryResponse(inv), nil
}

func (s *inventoryService) List(ctx context.Context, who identity.Identity, p dto.Pagination) (*dto.ListResponse[dto.InventoryResponse], error) {
	p.Normalize()
	if !inventoryVisible(who) {
		return &dto.ListResponse[dto.InventoryResponse]{Data: []dto.InventoryResponse{}, Skip: p.Skip, Limit: p.Limit}, nil
	}
	rows, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, apierror.From(err)
	}
	data := make([]dto.InventoryResponse, len(rows))
	for i := range rows {
		data[i] = *toInventoryResponse(&rows[i])
	}
	return &dto.ListResponse[dto.InventoryResponse]{Data: data, Total: total, Skip: p.Skip, Limit: p.Limit}, nil
}

func (s *inventoryService) Alerts(ctx context.Context, who identity.Identity) ([]dto.InventoryResponse, error) {
	if !inventoryVisible(who) {
		return []dto.InventoryResponse{}, nil
	}
	rows, err := s.repo.ListLow(ctx)
	if err != nil {
		return nil, apierror.From(err)
	}
	out := make([]dto.InventoryResponse, len(rows))
	for i := range rows {
		out[i] = *toInventoryResponse(&rows[i])
	}
	return out, nil
}

func (s *inventoryService) Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateInventoryRequest) (*dto.InventoryResponse, error) {
	if err := requireAdmin(who, "manage inventory"); err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "inventory")
	}
	if req.Quantity != nil {
		inv.Quantity = *req.Quantity
	}
	if req.MinStockLevel != nil {
		inv.MinStockLevel = *req.MinStockLevel
	}
	if req.Location != nil {
		inv.Location = req.Location
	}
	if req.Notes != nil {
		inv.Notes = req.Notes
	}
	if inv.Quantity < 0 || inv.MinStockLevel < 0 {
		return nil, apierror.Validation("stock levels cannot be negative", nil)
	}
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, apierror.From(err)
	}
	return s.load(ctx, id)
}

// Adjust applies a signed delta under a row lock. Stock never goes negative.
func (s *inventoryService) Adjust(ctx context.Context, who identity.Identity, id uuid.UUID, delta int) (*dto.InventoryResponse, error) {
	if err := requireAdmin(who, "manage inventory"); err != nil {
		return nil, err
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		inv, err := s.repo.AdjustTx(tx, id, delta)
		if err != nil {
			return notFoundAs(apierror.From(err), "inventory")
		}
		if inv.Quantity < 0 {
			return apierror.Validation(
				fmt.Sprintf("insufficient stock: %d available", inv.Quantity-delta),
				map[string]string{"delta": "insufficient_stock"},
			)
		}
		return nil
	})
	if err != nil {
		return nil, apierror.From(err)
	}
	return s.load(ctx, id)
}

func (s *inventoryService) Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error {
	if err := requireAdmin(who, "manage inventory"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundAs(apierror.From(err), "inventory")
	}
	return nil
}

func (s *inventoryService) load(ctx context.Context, id uuid.UUID) (*dto.InventoryResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.From(err)
	}
	return toInventoryResponse(inv), nil
}

func toInventoryResponse(inv *model.Inventory) *dto.InventoryResponse {
	r := &dto.InventoryResponse{
		ID:            inv.ID.String(),
		ItemID:        inv.ItemID.String(),
		Quantity:      inv.Quantity,
		MinStockLevel: inv.MinStockLevel,
		LowStock:      inv.Low(),
		Location:      inv.Location,
		Notes:         inv.Notes,
		UpdatedAt:     formatTime(inv.UpdatedAt),
	}
	if inv.Item != nil {
		r.ItemCode = inv.Item.Code
		r.ItemName = inv.Item.Name
	}
	return r
}
