package repository

import (
	"context"

	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractRepository interface {
	CreateTx(tx *gorm.DB, c *model.Contract) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Contract, error)
	List(ctx context.Context, scope policy.Scope, filter dto.DocumentFilter) ([]model.Contract, int64, error)
	NumberTakenTx(tx *gorm.DB, number string, exclude uuid.UUID) (bool, error)
	UpdateTx(tx *gorm.DB, c *model.Contract) error
	ReplaceItemsTx(tx *gorm.DB, id uuid.UUID, items []model.ContractItem) error
	// InstallationsTx counts installations performed under the contract.
	InstallationsTx(tx *gorm.DB, id uuid.UUID) (int64, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type contractRepo struct{ db *gorm.DB }

func NewContractRepository(db *gorm.DB) ContractRepository { return &contractRepo{db: db} }

func (r *contractRepo) DB() *gorm.DB { return r.db }

func (r *contractRepo) CreateTx(tx *gorm.DB, c *model.Contract) error {
	if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
		return err
	}
	return r.insertItems(tx, c.ID, c.Items)
}

func (r *contractRepo) insertItems(tx *gorm.DB, id uuid.UUID, items []model.ContractItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ContractID = id
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

func (r *contractRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *contractRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	err := tx.Preload("Client").
		Preload("Items", orderedLines).
		Preload("Items.Item").
		Where("id = ?", id).
		First(&c).Error
	return &c, err
}

func (r *contractRepo) List(ctx context.Context, scope policy.Scope, filter dto.DocumentFilter) ([]model.Contract, int64, error) {
	var rows []model.Contract
	var total int64

	q := scope.Apply(r.db.WithContext(ctx).Model(&model.Contract{}))
	if filter.ClientName != "" {
		q = nameContains(q.Joins("JOIN clients ON clients.id = contracts.client_id"), "clients.name", filter.ClientName)
	}
	if filter.Status != "" {
		q = q.Where("contracts.status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page(q.Preload("Client").Preload("Items", orderedLines).Order("contracts.created_at DESC"), filter.Pagination).
		Find(&rows).Error
	return rows, total, err
}

func (r *contractRepo) NumberTakenTx(tx *gorm.DB, number string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.Contract{}).
		Where("contract_number = ? AND id <> ?", number, exclude).
		Count(&n).Error
	return n > 0, err
}

func (r *contractRepo) UpdateTx(tx *gorm.DB, c *model.Contract) error {
	return tx.Omit(clause.Associations).Save(c).Error
}

func (r *contractRepo) ReplaceItemsTx(tx *gorm.DB, id uuid.UUID, items []model.ContractItem) error {
	if err := tx.Where("contract_id = ?", id).Delete(&model.ContractItem{}).Error; err != nil {
		return err
	}
	return r.insertItems(tx, id, items)
}

func (r *contractRepo) InstallationsTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.Installation{}).Where("contract_id = ?", id).Count(&n).Error
	return n, err
}

func (r *contractRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("contract_id = ?", id).Delete(&model.ContractItem{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&model.Contract{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
