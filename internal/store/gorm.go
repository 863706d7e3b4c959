package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"mercado/internal/db"
	"mercado/internal/models"
)

// GormStore keeps products in the products table of a SQL database. The
// server opens postgres; any gorm dialector works.
type GormStore struct {
	mu sync.Mutex
	db *gorm.DB
}

var (
	_ Store  = (*GormStore)(nil)
	_ Pinger = (*GormStore)(nil)
)

// NewGormStore connects to postgres with dsn and migrates the schema.
func NewGormStore(dsn string) (*GormStore, error) {
	gdb, err := db.Open(dsn)
	if err != nil {
		return nil, err
	}
	return NewGormStoreFromDB(gdb)
}

// NewGormStoreFromDB migrates the products table on an already opened handle.
func NewGormStoreFromDB(gdb *gorm.DB) (*GormStore, error) {
	if err := gdb.AutoMigrate(&models.Product{}); err != nil {
		return nil, errors.Wrap(err, "migrate products")
	}
	return &GormStore{db: gdb}, nil
}

func (s *GormStore) Load(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := s.db.WithContext(ctx).Order("id asc").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	return nonNil(items), nil
}

func (s *GormStore) Save(ctx context.Context, products []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProducts(tx); err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.CreateInBatches(products, 100).Error
	})
	return errors.Wrap(err, "save products")
}

// Create holds the process mutex and an exclusive table lock so the count
// and the insert see the same table.
func (s *GormStore) Create(ctx context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProducts(tx); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Product{}).Count(&n).Error; err != nil {
			return err
		}
		p.ID = int(n) + 1
		var taken int64
		if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errors.Wrapf(ErrDuplicateID, "id %d", p.ID)
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return models.Product{}, errors.Wrap(err, "create product")
	}
	return p, nil
}

func (s *GormStore) Seed(ctx context.Context, products []models.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProducts(tx); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Product{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 || len(products) == 0 {
			return nil
		}
		seeded = true
		return tx.Create(&products).Error
	})
	if err != nil {
		return false, errors.Wrap(err, "seed products")
	}
	return seeded, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func lockProducts(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("LOCK TABLE products IN EXCLUSIVE MODE").Error
}
