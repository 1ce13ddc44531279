package model

import (
	"time"
)

// Table names for the three account kinds. The kinds share one schema and
// differ only in role tag and optional fields, so a single struct is mapped
// onto a table per kind.
const (
	TableUsers       = "users"
	TableCalculators = "calculators"
	TableAdmins      = "admins"
)

// Account is the stored identity record for a User, Calculator or Admin.
// Username and email are unique within the account's own kind (per-table
// unique indexes); nothing enforces uniqueness across kinds.
type Account struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Telephone  string    `gorm:"type:varchar(20)" json:"telephone"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash, never the plaintext
	Role       string    `gorm:"type:varchar(100)" json:"role"`       // comma-joined role labels, e.g. "ADMIN" or "CALCULATOR"
	Department string    `gorm:"type:varchar(255)" json:"department,omitempty"`
	Verified   bool      `gorm:"default:false" json:"verified"` // gates login
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AccountSummary is one row of the unified account overview across all
// three kind tables.
type AccountSummary struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Role      string `json:"role"`
	Verified  bool   `json:"verified"`
	Kind      string `json:"kind"`
}
