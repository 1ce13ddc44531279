package repository

import (
	"backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// AccountRepository defines data access for one account kind. The three
// kinds share the interface; each instance is scoped to its own table.
type AccountRepository interface {
	Create(ctx context.Context, acct *model.Account) error
	GetByID(ctx context.Context, id uint64) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
	Update(ctx context.Context, acct *model.Account) error
	Delete(ctx context.Context, id uint64) error
}

type accountRepository struct {
	db    *gorm.DB
	table string
}

// NewUserRepository returns the repository backing the plain User kind.
func NewUserRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db, table: model.TableUsers}
}

// NewCalculatorRepository returns the repository backing the Calculator kind.
func NewCalculatorRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db, table: model.TableCalculators}
}

// NewAdminRepository returns the repository backing the Admin kind.
func NewAdminRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db, table: model.TableAdmins}
}

func (r *accountRepository) scope(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

func (r *accountRepository) Create(ctx context.Context, acct *model.Account) error {
	return r.scope(ctx).Create(acct).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	var acct model.Account
	if err := r.scope(ctx).Where("id = ?", id).Take(&acct).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var acct model.Account
	if err := r.scope(ctx).Where("email = ?", email).Take(&acct).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var acct model.Account
	if err := r.scope(ctx).Where("username = ?", username).Take(&acct).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *accountRepository) List(ctx context.Context) ([]model.Account, error) {
	var accts []model.Account
	if err := r.scope(ctx).Order("id").Find(&accts).Error; err != nil {
		return nil, err
	}
	return accts, nil
}

func (r *accountRepository) Update(ctx context.Context, acct *model.Account) error {
	return r.scope(ctx).Save(acct).Error
}

func (r *accountRepository) Delete(ctx context.Context, id uint64) error {
	return r.scope(ctx).Where("id = ?", id).Delete(&model.Account{}).Error
}
