package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"account-hub/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore is the sqlite-backed credential store. Email matching uses
// LOWER(email) so lookups stay case-insensitive regardless of how the row
// was written. A store-level mutex serializes mutations; sqlite already
// serializes writers, but the check-then-insert cycle spans two statements
// and must be one critical section.
type GormStore struct {
	mu sync.Mutex
	db *gorm.DB
}

// OpenGormStore opens (and migrates) the sqlite database at path.
func OpenGormStore(path string, logMode bool) (*GormStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	gormLogger := logger.Default
	if !logMode {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	// connection pool
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// SQLite performance and reliability tuning
	_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	_, _ = sqlDB.Exec("PRAGMA synchronous = NORMAL;")
	_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")

	if err := db.AutoMigrate(&models.Account{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &GormStore{db: db}, nil
}

func (gs *GormStore) FindByEmail(email string) (*models.Account, error) {
	var acc models.Account
	err := gs.db.Where("LOWER(email) = ?", models.Normalize(email)).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query by email: %w", err)
	}
	return &acc, nil
}

func (gs *GormStore) FindByID(id string) (*models.Account, error) {
	var acc models.Account
	err := gs.db.Where("id = ?", id).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query by id: %w", err)
	}
	return &acc, nil
}

func (gs *GormStore) FindByIdentity(identifier string) (*models.Account, error) {
	norm := models.Normalize(identifier)

	var acc models.Account
	err := gs.db.Where("LOWER(email) = ?", norm).First(&acc).Error
	if err == nil {
		return &acc, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("query by identity: %w", err)
	}

	// fall back to full name; first row in insertion order wins
	err = gs.db.Where("LOWER(full_name) = ?", norm).Order("created_at ASC").First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query by identity: %w", err)
	}
	return &acc, nil
}

func (gs *GormStore) Insert(acc *models.Account) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	return gs.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).
			Where("LOWER(email) = ?", models.Normalize(acc.Email)).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		if err := tx.Create(acc).Error; err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		return nil
	})
}

func (gs *GormStore) Update(acc *models.Account) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	return gs.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Account
		if err := tx.Where("id = ?", acc.ID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load account: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Account{}).
			Where("LOWER(email) = ? AND id <> ?", models.Normalize(acc.Email), acc.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return ErrDuplicateEmail
		}

		if err := tx.Save(acc).Error; err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		return nil
	})
}

func (gs *GormStore) List() ([]models.Account, error) {
	var accs []models.Account
	if err := gs.db.Order("created_at ASC, id ASC").Find(&accs).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accs, nil
}

func (gs *GormStore) ReplaceAll(accs []models.Account) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	return gs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Account{}).Error; err != nil {
			return fmt.Errorf("clear accounts: %w", err)
		}
		for i := range accs {
			a := accs[i]
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("restore account: %w", err)
			}
		}
		return nil
	})
}

func (gs *GormStore) Close() error {
	sqlDB, err := gs.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
