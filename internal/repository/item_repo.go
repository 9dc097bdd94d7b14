package repository

import (
	"context"

	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemRepository defines the data access contract for catalog items.
type ItemRepository interface {
	Create(ctx context.Context, i *model.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	CodeTaken(ctx context.Context, code string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, filter dto.ItemFilter) ([]model.Item, int64, error)
	Update(ctx context.Context, i *model.Item) error
	Deactivate(ctx context.Context, id uuid.UUID) error

	// MissingTx returns the ids in ids that have no catalog row. Inactive
	// items count as present.
	MissingTx(tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error)
	DB() *gorm.DB
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) DB() *gorm.DB { return r.db }

func (r *itemRepo) Create(ctx context.Context, i *model.Item) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var i model.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&i).Error
	return &i, err
}

func (r *itemRepo) CodeTaken(ctx context.Context, code string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("code = ? AND id <> ?", code, exclude).
		Count(&n).Error
	return n > 0, err
}

func (r *itemRepo) List(ctx context.Context, filter dto.ItemFilter) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Item{})
	if !filter.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	q = nameContains(q, "name", filter.Name)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page(q.Order("code ASC"), filter.Pagination).Find(&items).Error
	return items, total, err
}

func (r *itemRepo) Update(ctx context.Context, i *model.Item) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *itemRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepo) MissingTx(tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uuid.UUID
	if err := tx.Model(&model.Item{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	present := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
