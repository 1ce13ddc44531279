package repository

import (
	"backend/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// PolynomialRepository defines data access for stored polynomial results.
type PolynomialRepository interface {
	// SaveIfAbsent persists the polynomial unless a row with the same
	// structural key (simplified, factored, roots, user id) already
	// exists. It reports whether a row was inserted. The check and the
	// insert run inside one transaction so the idempotence guard holds
	// under concurrent saves.
	SaveIfAbsent(ctx context.Context, p *model.Polynomial) (bool, error)
	FindDuplicate(ctx context.Context, simplified, factored string, roots model.RootList, userID uint64) (*model.Polynomial, error)
	GetByID(ctx context.Context, id uint64) (*model.Polynomial, error)
	List(ctx context.Context) ([]model.Polynomial, error)
	ListByUserID(ctx context.Context, userID uint64) ([]model.Polynomial, error)
}

type polynomialRepository struct {
	db *gorm.DB
}

func NewPolynomialRepository(db *gorm.DB) PolynomialRepository {
	return &polynomialRepository{db: db}
}

func (r *polynomialRepository) SaveIfAbsent(ctx context.Context, p *model.Polynomial) (bool, error) {
	inserted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Polynomial
		err := duplicateQuery(tx, p.SimplifiedExpression, p.FactoredExpression, p.Roots, p.UserID).
			Take(&existing).Error
		if err == nil {
			return nil // duplicate, suppress silently
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *polynomialRepository) FindDuplicate(ctx context.Context, simplified, factored string, roots model.RootList, userID uint64) (*model.Polynomial, error) {
	var p model.Polynomial
	err := duplicateQuery(r.db.WithContext(ctx), simplified, factored, roots, userID).Take(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// duplicateQuery matches the full structural key; roots compare through
// their serialized column value.
func duplicateQuery(db *gorm.DB, simplified, factored string, roots model.RootList, userID uint64) *gorm.DB {
	return db.Model(&model.Polynomial{}).
		Where("simplified_expression = ?", simplified).
		Where("factored_expression = ?", factored).
		Where("roots = ?", roots).
		Where("user_id = ?", userID)
}

func (r *polynomialRepository) GetByID(ctx context.Context, id uint64) (*model.Polynomial, error) {
	var p model.Polynomial
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *polynomialRepository) List(ctx context.Context) ([]model.Polynomial, error) {
	var polys []model.Polynomial
	if err := r.db.WithContext(ctx).Order("id").Find(&polys).Error; err != nil {
		return nil, err
	}
	return polys, nil
}

func (r *polynomialRepository) ListByUserID(ctx context.Context, userID uint64) ([]model.Polynomial, error) {
	var polys []model.Polynomial
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&polys).Error; err != nil {
		return nil, err
	}
	return polys, nil
}
