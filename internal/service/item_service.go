package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/policy"
	"github.com/HanjuJo/nexo-v1/internal/pricing"
	"github.com/HanjuJo/nexo-v1/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ItemService defines the business logic contract for the catalog.
type ItemService interface {
	Create(ctx context.Context, who identity.Identity, req dto.CreateItemRequest) (*dto.ItemResponse, error)
	Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.ItemResponse, error)
	List(ctx context.Context, who identity.Identity, filter dto.ItemFilter) (*dto.ListResponse[dto.ItemResponse], error)
	Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error)
	// Deactivate hides the item from the catalog. Items are never deleted so
	// that historical line items keep their reference.
	Deactivate(ctx context.Context, who identity.Identity, id uuid.UUID) error
}

type itemService struct {
	repo repository.ItemRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewItemService wires the catalog. rdb may be nil, which disables caching.
func NewItemService(repo repository.ItemRepository, rdb *redis.Client, ttl time.Duration) ItemService {
	return &itemService{repo: repo, rdb: rdb, ttl: ttl}
}

func itemCacheKey(id uuid.UUID) string { return "catalog:item:" + id.String() }

func (s *itemService) Create(ctx context.Context, who identity.Identity, req dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if err := requireAdmin(who, "manage the catalog"); err != nil {
		return nil, err
	}
	if err := s.checkCode(ctx, req.Code, uuid.Nil); err != nil {
		return nil, err
	}
	if err := checkUnitPrice(req.UnitPrice); err != nil {
		return nil, err
	}
	item := &model.Item{
		Code:        req.Code,
		Name:        repository.NormalizeName(req.Name),
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Unit:        req.Unit,
		IsActive:    true,
	}
	if item.Unit == "" {
		item.Unit = "개"
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apierror.From(err)
	}
	return toItemResponse(item), nil
}

// Get serves from the Redis read-through cache when available.
func (s *itemService) Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.ItemResponse, error) {
	if policy.Resolve(who, policy.ResourceItem).Visibility == policy.None {
		return nil, apierror.NotFound("item not found")
	}
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, itemCacheKey(id)).Bytes(); err == nil {
			var resp dto.ItemResponse
			if json.Unmarshal(cached, &resp) == nil {
				return &resp, nil
			}
		}
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "item")
	}
	resp := toItemResponse(item)

	if s.rdb != nil {
		if b, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, itemCacheKey(id), b, s.ttl).Err(); err != nil {
				log.Warn().Err(err).Str("item_id", id.String()).Msg("catalog cache: set")
			}
		}
	}
	return resp, nil
}

func (s *itemService) List(ctx context.Context, who identity.Identity, filter dto.ItemFilter) (*dto.ListResponse[dto.ItemResponse], error) {
	filter.Normalize()
	if policy.Resolve(who, policy.ResourceItem).Visibility == policy.None {
		return &dto.ListResponse[dto.ItemResponse]{Data: []dto.ItemResponse{}, Skip: filter.Skip, Limit: filter.Limit}, nil
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.From(err)
	}
	data := make([]dto.ItemResponse, len(rows))
	for i := range rows {
		data[i] = *toItemResponse(&rows[i])
	}
	return &dto.ListResponse[dto.ItemResponse]{Data: data, Total: total, Skip: filter.Skip, Limit: filter.Limit}, nil
}

func (s *itemService) Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if err := requireAdmin(who, "manage the catalog"); err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "item")
	}
	if req.Code != nil && *req.Code != item.Code {
		if err := s.checkCode(ctx, *req.Code, id); err != nil {
			return nil, err
		}
		item.Code = *req.Code
	}
	if req.Name != nil {
		item.Name = repository.NormalizeName(*req.Name)
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.UnitPrice != nil {
		if err := checkUnitPrice(*req.UnitPrice); err != nil {
			return nil, err
		}
		item.UnitPrice = *req.UnitPrice
	}
	if req.Unit != nil && *req.Unit != "" {
		item.Unit = *req.Unit
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, apierror.From(err)
	}
	s.invalidate(ctx, id)
	return toItemResponse(item), nil
}

func (s *itemService) Deactivate(ctx context.Context, who identity.Identity, id uuid.UUID) error {
	if err := requireAdmin(who, "manage the catalog"); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return notFoundAs(apierror.From(err), "item")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *itemService) checkCode(ctx context.Context, code string, exclude uuid.UUID) error {
	taken, err := s.repo.CodeTaken(ctx, code, exclude)
	if err != nil {
		return apierror.From(err)
	}
	if taken {
		return apierror.Conflict("item code " + code + " already exists")
	}
	return nil
}

func (s *itemService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, itemCacheKey(id)).Err(); err != nil {
		log.Warn().Err(err).Str("item_id", id.String()).Msg("catalog cache: invalidate")
	}
}

func toItemResponse(i *model.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:          i.ID.String(),
		Code:        i.Code,
		Name:        i.Name,
		Description: i.Description,
		UnitPrice:   i.UnitPrice,
		Unit:        i.Unit,
		IsActive:    i.IsActive,
		CreatedAt:   formatTime(i.CreatedAt),
		UpdatedAt:   formatTime(i.UpdatedAt),
	}
}

func checkUnitPrice(p decimal.Decimal) error {
	switch {
	case p.IsNegative():
		return apierror.Validation("unit price cannot be negative", map[string]string{"unit_price": "gte=0"})
	case !pricing.HasMoneyScale(p):
		return apierror.Validation("unit price has more than two decimal places", map[string]string{"unit_price": "scale=2"})
	case !pricing.FitsMoney(p):
		return apierror.Validation("unit price is too large", map[string]string{"unit_price": "max"})
	}
	return nil
}
