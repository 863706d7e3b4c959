// Package store persists the product sequence.
//
// Every backend funnels writes through a single-writer boundary so that
// Create can assign id = len+1 without racing other writers.
package store

import (
	"context"

	"github.com/pkg/errors"

	"mercado/internal/models"
)

// Store is the persistence contract shared by all backends.
type Store interface {
	// Load returns every stored product in insertion order. Absent, empty
	// or unreadable documents yield an empty slice, not an error.
	Load(ctx context.Context) ([]models.Product, error)
	// Save replaces the stored sequence with products.
	Save(ctx context.Context, products []models.Product) error
	// Create assigns p the next id, appends it and returns the stored record.
	// Existing records are never overwritten.
	Create(ctx context.Context, p models.Product) (models.Product, error)
	// Seed stores products only when the store holds nothing. It reports
	// whether anything was written.
	Seed(ctx context.Context, products []models.Product) (bool, error)
	Close() error
}

// Pinger is implemented by backends that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Driver names accepted by Open.
const (
	DriverFile     = "file"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

var (
	// ErrUnknownDriver is returned by Open for unsupported driver names.
	ErrUnknownDriver = errors.New("unknown store driver")
	// ErrDuplicateID is returned by Create when the next id already belongs
	// to a stored product, which only happens after Save wrote sparse ids.
	ErrDuplicateID = errors.New("product id already in use")
)

// Options selects and configures a backend.
type Options struct {
	Driver   string
	DataFile string
	BoltPath string
	DSN      string
}

// Open builds the backend named by opts.Driver.
func Open(opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileStore(opts.DataFile), nil
	case DriverBolt:
		return NewBoltStore(opts.BoltPath)
	case DriverPostgres:
		return NewGormStore(opts.DSN)
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "%q", opts.Driver)
	}
}

func nonNil(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}

func hasID(products []models.Product, id int) bool {
	for _, p := range products {
		if p.ID == id {
			return true
		}
	}
	return false
}
