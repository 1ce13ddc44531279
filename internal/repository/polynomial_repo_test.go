package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func polynomialColumns() []string {
	return []string{
		"id", "simplified_expression", "factored_expression",
		"roots", "user_id", "created_at",
	}
}

func polynomialRow(id uint64, simplified, factored, roots string, userID uint64) []driver.Value {
	return []driver.Value{id, simplified, factored, roots, userID, time.Now()}
}

func TestPolynomialRepository_SaveIfAbsent_Inserts(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPolynomialRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "polynomials" WHERE simplified_expression = \$1 AND factored_expression = \$2 AND roots = \$3 AND user_id = \$4`).
		WillReturnRows(sqlmock.NewRows(polynomialColumns()))
	mock.ExpectQuery(`INSERT INTO "polynomials"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	p := &model.Polynomial{
		SimplifiedExpression: "x^2 - 1",
		FactoredExpression:   "(x-1)(x+1)",
		Roots:                model.RootList{"1", "-1"},
		UserID:               1,
	}
	inserted, err := repo.SaveIfAbsent(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, uint64(11), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolynomialRepository_SaveIfAbsent_SuppressesDuplicate(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPolynomialRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "polynomials" WHERE`).
		WillReturnRows(sqlmock.NewRows(polynomialColumns()).
			AddRow(polynomialRow(5, "x^2 - 1", "(x-1)(x+1)", `["1","-1"]`, 1)...))
	mock.ExpectCommit()

	p := &model.Polynomial{
		SimplifiedExpression: "x^2 - 1",
		FactoredExpression:   "(x-1)(x+1)",
		Roots:                model.RootList{"1", "-1"},
		UserID:               1,
	}
	inserted, err := repo.SaveIfAbsent(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, inserted, "existing row must suppress the insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolynomialRepository_SaveIfAbsent_RollsBackOnError(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPolynomialRepository(gdb)

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "polynomials" WHERE`).
		WillReturnError(boom)
	mock.ExpectRollback()

	_, err := repo.SaveIfAbsent(context.Background(), &model.Polynomial{UserID: 1})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolynomialRepository_ListByUserID(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPolynomialRepository(gdb)

	mock.ExpectQuery(`SELECT .+ FROM "polynomials" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(polynomialColumns()).
			AddRow(polynomialRow(1, "x^2 - 4", "(x-2)(x+2)", `["2","-2"]`, 3)...).
			AddRow(polynomialRow(2, "x", "x", `["0"]`, 3)...))

	polys, err := repo.ListByUserID(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, polys, 2)
	assert.Equal(t, model.RootList{"2", "-2"}, polys[0].Roots)
	assert.Equal(t, uint64(3), polys[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolynomialRepository_GetByID_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewPolynomialRepository(gdb)

	mock.ExpectQuery(`SELECT .+ FROM "polynomials" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(polynomialColumns()))

	_, err := repo.GetByID(context.Background(), 99)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
