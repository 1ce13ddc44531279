package database

import (
	"backend/internal/auth"
	"backend/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM.
// TranslateError lets callers match unique-constraint violations against
// gorm.ErrDuplicatedKey instead of driver-specific errors; registration
// relies on that to stay conflict-safe under concurrent requests.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// The three account kinds share one schema mapped onto one table each.
	for _, table := range []string{model.TableUsers, model.TableCalculators, model.TableAdmins} {
		if err := db.Table(table).AutoMigrate(&model.Account{}); err != nil {
			return nil, err
		}
	}
	if err := db.AutoMigrate(&model.Polynomial{}); err != nil {
		return nil, err
	}

	return db, nil
}

// Seed creates the built-in verified CALCULATOR and ADMIN accounts when
// they are absent.
func Seed(db *gorm.DB, hasher *auth.PasswordHasher, log *logrus.Logger) error {
	seeds := []struct {
		table string
		acct  model.Account
		plain string
	}{
		{
			table: model.TableCalculators,
			acct: model.Account{
				Username:  "calculatorUser",
				Email:     "calculator@example.com",
				Telephone: "123456789",
				Role:      "CALCULATOR",
				Verified:  true,
			},
			plain: "password123",
		},
		{
			table: model.TableAdmins,
			acct: model.Account{
				Username:  "root",
				Email:     "root@example.com",
				Telephone: "987654321",
				Role:      "ADMIN",
				Verified:  true,
			},
			plain: "root",
		},
	}

	for _, s := range seeds {
		var count int64
		if err := db.Table(s.table).Where("username = ?", s.acct.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		hashed, err := hasher.Hash(s.plain)
		if err != nil {
			return err
		}
		s.acct.Password = hashed

		if err := db.Table(s.table).Create(&s.acct).Error; err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"username": s.acct.Username,
			"role":     s.acct.Role,
		}).Info("seed account created")
	}

	return nil
}
