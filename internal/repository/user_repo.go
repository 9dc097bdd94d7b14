package repository

import (
	"context"

	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the data access contract for employee accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, filter dto.AccountFilter) ([]model.User, int64, error)
	Update(ctx context.Context, u *model.User) error
	// OwnedDocuments counts the documents that reference the account as owner
	// or assignee.
	OwnedDocuments(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) DB() *gorm.DB { return r.db }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	return &u, err
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return &u, err
}

func (r *userRepo) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? AND id <> ?", username, exclude).
		Count(&n).Error
	return n > 0, err
}

func (r *userRepo) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, exclude).
		Count(&n).Error
	return n > 0, err
}

func (r *userRepo) List(ctx context.Context, filter dto.AccountFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	q := r.db.WithContext(ctx).Model(&model.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.EmployeesOnly {
		q = q.Where("is_admin = ? AND is_super_admin = ? AND role NOT IN ?", false, false, []string{"admin", "super_admin"})
	}
	q = nameContains(q, "full_name", filter.Search)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page(q.Order("username ASC"), filter.Pagination).Find(&users).Error
	return users, total, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) OwnedDocuments(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	for _, c := range []struct {
		model  any
		column string
	}{
		{&model.Consultation{}, "salesperson_id"},
		{&model.Quotation{}, "salesperson_id"},
		{&model.Contract{}, "salesperson_id"},
		{&model.Installation{}, "technician_id"},
	} {
		var n int64
		if err := r.db.WithContext(ctx).Model(c.model).Where(c.column+" = ?", id).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *userRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
