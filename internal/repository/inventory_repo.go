package repository

import (
	"context"

	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	Create(ctx context.Context, inv *model.Inventory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Inventory, error)
	ExistsForItem(ctx context.Context, itemID uuid.UUID) (bool, error)
	List(ctx context.Context, p dto.Pagination) ([]model.Inventory, int64, error)
	// ListLow returns rows whose quantity is at or below the minimum level.
	ListLow(ctx context.Context) ([]model.Inventory, error)
	Update(ctx context.Context, inv *model.Inventory) error
	// AdjustTx locks the row and applies delta to its quantity.
	AdjustTx(tx *gorm.DB, id uuid.UUID, delta int) (*model.Inventory, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) Create(ctx context.Context, inv *model.Inventory) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(inv).Error
}

func (r *inventoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).Preload("Item").Where("id = ?", id).First(&inv).Error
	return &inv, err
}

func (r *inventoryRepo) ExistsForItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Inventory{}).Where("item_id = ?", itemID).Count(&n).Error
	return n > 0, err
}

func (r *inventoryRepo) List(ctx context.Context, p dto.Pagination) ([]model.Inventory, int64, error) {
	var rows []model.Inventory
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Inventory{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page(q.Preload("Item").Order("updated_at DESC"), p).Find(&rows).Error
	return rows, total, err
}

func (r *inventoryRepo) ListLow(ctx context.Context) ([]model.Inventory, error) {
	var rows []model.Inventory
	err := r.db.WithContext(ctx).Preload("Item").
		Where("quantity <= min_stock_level").
		Order("quantity ASC").
		Find(&rows).Error
	return rows, err
}

func (r *inventoryRepo) Update(ctx context.Context, inv *model.Inventory) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(inv).Error
}

func (r *inventoryRepo) AdjustTx(tx *gorm.DB, id uuid.UUID, delta int) (*model.Inventory, error) {
	var inv model.Inventory
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, err
	}
	inv.Quantity += delta
	if err := tx.Model(&inv).Update("quantity", inv.Quantity).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Inventory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
