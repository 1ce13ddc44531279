package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// RootList stores the string-encoded roots of a polynomial as a JSON array
// in a single text column. Serialization is stable, so the column value
// doubles as part of the duplicate-detection key.
type RootList []string

func (r RootList) Value() (driver.Value, error) {
	if r == nil {
		r = RootList{}
	}
	b, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *RootList) Scan(value interface{}) error {
	if value == nil {
		*r = RootList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, (*[]string)(r))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(r))
	default:
		return errors.New("model: unsupported type for RootList")
	}
}

// Polynomial is a computed result stored for an owning user. The tuple
// (simplified expression, factored expression, roots, user id) is the
// natural key used for duplicate suppression; rows are never mutated.
type Polynomial struct {
	ID                   uint64    `gorm:"primaryKey" json:"id"`
	SimplifiedExpression string    `gorm:"type:text" json:"simplifiedExpression"`
	FactoredExpression   string    `gorm:"type:text" json:"factoredExpression"`
	Roots                RootList  `gorm:"type:text" json:"roots"`
	UserID               uint64    `gorm:"not null;index" json:"userId"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PolynomialDTO is the per-user listing shape: roots are flattened into a
// single display string.
type PolynomialDTO struct {
	ID                   uint64 `json:"id"`
	SimplifiedExpression string `json:"simplifiedExpression"`
	FactoredExpression   string `json:"factoredExpression"`
	Roots                string `json:"roots"`
}

// NewPolynomialDTO flattens a polynomial for listing responses.
func NewPolynomialDTO(p *Polynomial) PolynomialDTO {
	return PolynomialDTO{
		ID:                   p.ID,
		SimplifiedExpression: p.SimplifiedExpression,
		FactoredExpression:   p.FactoredExpression,
		Roots:                "[" + strings.Join(p.Roots, ", ") + "]",
	}
}
