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

type InstallationRepository interface {
	CreateTx(tx *gorm.DB, i *model.Installation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Installation, error)
	// FindByIDTx locks the row for the rest of the transaction.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Installation, error)
	List(ctx context.Context, scope policy.Scope, filter dto.InstallationFilter) ([]model.Installation, int64, error)
	UpdateTx(tx *gorm.DB, i *model.Installation) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type installationRepo struct{ db *gorm.DB }

func NewInstallationRepository(db *gorm.DB) InstallationRepository {
	return &installationRepo{db: db}
}

func (r *installationRepo) DB() *gorm.DB { return r.db }

func (r *installationRepo) CreateTx(tx *gorm.DB, i *model.Installation) error {
	return tx.Omit(clause.Associations).Create(i).Error
}

func (r *installationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Installation, error) {
	var i model.Installation
	err := r.db.WithContext(ctx).Preload("Client").Where("id = ?", id).First(&i).Error
	return &i, err
}

func (r *installationRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Installation, error) {
	var i model.Installation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&i).Error
	return &i, err
}

func (r *installationRepo) List(ctx context.Context, scope policy.Scope, filter dto.InstallationFilter) ([]model.Installation, int64, error) {
	var rows []model.Installation
	var total int64

	q := scope.Apply(r.db.WithContext(ctx).Model(&model.Installation{}))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page(q.Preload("Client").Order("scheduled_date DESC, created_at DESC"), filter.Pagination).Find(&rows).Error
	return rows, total, err
}

func (r *installationRepo) UpdateTx(tx *gorm.DB, i *model.Installation) error {
	return tx.Omit(clause.Associations).Save(i).Error
}

func (r *installationRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Where("id = ?", id).Delete(&model.Installation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
