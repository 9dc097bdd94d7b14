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

type ConsultationRepository interface {
	Create(ctx context.Context, c *model.Consultation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Consultation, error)
	List(ctx context.Context, scope policy.Scope, filter dto.ConsultationFilter) ([]model.Consultation, int64, error)
	Update(ctx context.Context, c *model.Consultation) error
	// DetachQuotationsTx clears consultation_id on quotations derived from id.
	DetachQuotationsTx(tx *gorm.DB, id uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type consultationRepo struct{ db *gorm.DB }

func NewConsultationRepository(db *gorm.DB) ConsultationRepository {
	return &consultationRepo{db: db}
}

func (r *consultationRepo) DB() *gorm.DB { return r.db }

func (r *consultationRepo) Create(ctx context.Context, c *model.Consultation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *consultationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *consultationRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Consultation, error) {
	var c model.Consultation
	err := tx.Preload("Client").Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *consultationRepo) List(ctx context.Context, scope policy.Scope, filter dto.ConsultationFilter) ([]model.Consultation, int64, error) {
	var rows []model.Consultation
	var total int64

	q := scope.Apply(r.db.WithContext(ctx).Model(&model.Consultation{}))
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page(q.Preload("Client").Order("consultation_date DESC"), filter.Pagination).Find(&rows).Error
	return rows, total, err
}

func (r *consultationRepo) Update(ctx context.Context, c *model.Consultation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *consultationRepo) DetachQuotationsTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.Quotation{}).Where("consultation_id = ?", id).Update("consultation_id", nil).Error
}

func (r *consultationRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Where("id = ?", id).Delete(&model.Consultation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
