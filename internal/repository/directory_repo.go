package repository

import (
	"backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// kindTables is the lookup order of the unified directory: users first,
// then calculators, then admins.
var kindTables = []struct {
	table string
	kind  string
}{
	{model.TableUsers, "user"},
	{model.TableCalculators, "calculator"},
	{model.TableAdmins, "admin"},
}

// DirectoryRepository looks accounts up across all three kinds. The
// registration endpoints that check "the unified username index" and the
// second-authority credential check both go through it.
type DirectoryRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	ListAll(ctx context.Context, offset, limit int) ([]model.AccountSummary, int64, error)
}

type directoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) findFirst(ctx context.Context, column, value string) (*model.Account, error) {
	var lastErr error = gorm.ErrRecordNotFound
	for _, kt := range kindTables {
		var acct model.Account
		err := r.db.WithContext(ctx).Table(kt.table).Where(column+" = ?", value).Take(&acct).Error
		if err == nil {
			return &acct, nil
		}
		if err != gorm.ErrRecordNotFound {
			lastErr = err
		}
	}
	return nil, lastErr
}

func (r *directoryRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findFirst(ctx, "email", email)
}

func (r *directoryRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.findFirst(ctx, "username", username)
}

// ListAll pages through the union of the three kind tables, ordered by
// kind then id.
func (r *directoryRepository) ListAll(ctx context.Context, offset, limit int) ([]model.AccountSummary, int64, error) {
	var total int64
	for _, kt := range kindTables {
		var count int64
		if err := r.db.WithContext(ctx).Table(kt.table).Count(&count).Error; err != nil {
			return nil, 0, err
		}
		total += count
	}

	var rows []model.AccountSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, username, email, telephone, role, verified, 'user' AS kind FROM users
		UNION ALL
		SELECT id, username, email, telephone, role, verified, 'calculator' AS kind FROM calculators
		UNION ALL
		SELECT id, username, email, telephone, role, verified, 'admin' AS kind FROM admins
		ORDER BY kind, id
		LIMIT ? OFFSET ?
	`, limit, offset).Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
