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

// QuotationRepository persists quotations and their line items. Writes that
// touch both the header and the lines take the caller's transaction.
type QuotationRepository interface {
	CreateTx(tx *gorm.DB, q *model.Quotation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quotation, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Quotation, error)
	List(ctx context.Context, scope policy.Scope, filter dto.DocumentFilter) ([]model.Quotation, int64, error)
	NumberTakenTx(tx *gorm.DB, number string, exclude uuid.UUID) (bool, error)
	// UpdateTx saves the header only; lines are written by ReplaceItemsTx.
	UpdateTx(tx *gorm.DB, q *model.Quotation) error
	// ReplaceItemsTx deletes every line of the quotation and inserts items.
	ReplaceItemsTx(tx *gorm.DB, id uuid.UUID, items []model.QuotationItem) error
	// DeleteTx removes the lines, detaches derived contracts and deletes the header.
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type quotationRepo struct{ db *gorm.DB }

func NewQuotationRepository(db *gorm.DB) QuotationRepository { return &quotationRepo{db: db} }

func (r *quotationRepo) DB() *gorm.DB { return r.db }

func (r *quotationRepo) CreateTx(tx *gorm.DB, q *model.Quotation) error {
	if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
		return err
	}
	return r.insertItems(tx, q.ID, q.Items)
}

func (r *quotationRepo) insertItems(tx *gorm.DB, id uuid.UUID, items []model.QuotationItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].QuotationID = id
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

func (r *quotationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *quotationRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Quotation, error) {
	var q model.Quotation
	err := tx.Preload("Client").
		Preload("Items", orderedLines).
		Preload("Items.Item").
		Where("id = ?", id).
		First(&q).Error
	return &q, err
}

func (r *quotationRepo) List(ctx context.Context, scope policy.Scope, filter dto.DocumentFilter) ([]model.Quotation, int64, error) {
	var rows []model.Quotation
	var total int64

	q := scope.Apply(r.db.WithContext(ctx).Model(&model.Quotation{}))
	if filter.ClientName != "" {
		q = nameContains(q.Joins("JOIN clients ON clients.id = quotations.client_id"), "clients.name", filter.ClientName)
	}
	if filter.Status != "" {
		q = q.Where("quotations.status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page(q.Preload("Client").Preload("Items", orderedLines).Order("quotations.created_at DESC"), filter.Pagination).
		Find(&rows).Error
	return rows, total, err
}

func (r *quotationRepo) NumberTakenTx(tx *gorm.DB, number string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.Quotation{}).
		Where("quotation_number = ? AND id <> ?", number, exclude).
		Count(&n).Error
	return n > 0, err
}

func (r *quotationRepo) UpdateTx(tx *gorm.DB, q *model.Quotation) error {
	return tx.Omit(clause.Associations).Save(q).Error
}

func (r *quotationRepo) ReplaceItemsTx(tx *gorm.DB, id uuid.UUID, items []model.QuotationItem) error {
	if err := tx.Where("quotation_id = ?", id).Delete(&model.QuotationItem{}).Error; err != nil {
		return err
	}
	return r.insertItems(tx, id, items)
}

func (r *quotationRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("quotation_id = ?", id).Delete(&model.QuotationItem{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.Contract{}).Where("quotation_id = ?", id).Update("quotation_id", nil).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&model.Quotation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
