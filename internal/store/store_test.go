package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercado/internal/models"
)

func sample(name string) models.Product {
	return models.Product{Name: name, Description: "d", Category: "c", Price: 1.5}
}

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("empty load", func(t *testing.T) {
		s := open(t)
		products, err := s.Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	t.Run("create assigns sequential ids", func(t *testing.T) {
		s := open(t)
		for i := 1; i <= 3; i++ {
			p, err := s.Create(ctx, sample(fmt.Sprintf("p%d", i)))
			require.NoError(t, err)
			assert.Equal(t, i, p.ID)
		}
		products, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "p3", products[2].Name)
		assert.Equal(t, 3, products[2].ID)
	})

	t.Run("save then load round trip", func(t *testing.T) {
		s := open(t)
		seed := models.SeedProducts()
		require.NoError(t, s.Save(ctx, seed))

		first, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, seed, first)

		require.NoError(t, s.Save(ctx, first))
		second, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("seed only when empty", func(t *testing.T) {
		s := open(t)
		seeded, err := s.Seed(ctx, models.SeedProducts())
		require.NoError(t, err)
		assert.True(t, seeded)

		seeded, err = s.Seed(ctx, []models.Product{{ID: 1, Name: "other"}})
		require.NoError(t, err)
		assert.False(t, seeded)

		products, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, products, len(models.SeedProducts()))

		p, err := s.Create(ctx, sample("after seed"))
		require.NoError(t, err)
		assert.Equal(t, len(models.SeedProducts())+1, p.ID)
	})

	t.Run("create never overwrites sparse ids", func(t *testing.T) {
		s := open(t)
		stored := []models.Product{
			{ID: 2, Name: "dos", Description: "d", Category: "c", Price: 2},
			{ID: 3, Name: "tres", Description: "d", Category: "c", Price: 3},
		}
		require.NoError(t, s.Save(ctx, stored))

		_, err := s.Create(ctx, sample("clash"))
		assert.ErrorIs(t, err, ErrDuplicateID)

		products, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, stored, products)
	})

	t.Run("concurrent creates never collide", func(t *testing.T) {
		s := open(t)
		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Create(ctx, sample(fmt.Sprintf("c%d", i)))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		products, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, products, n)
		seen := make(map[int]bool, n)
		for _, p := range products {
			assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
			seen[p.ID] = true
		}
		for id := 1; id <= n; id++ {
			assert.True(t, seen[id], "missing id %d", id)
		}
	})
}

func TestFileStore_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Store {
		return NewFileStore(filepath.Join(t.TempDir(), "data", "products.json"))
	})
}

func TestBoltStore_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Store {
		s, err := NewBoltStore(filepath.Join(t.TempDir(), "data", "products.db"))
		require.NoError(t, err)
		t.Cleanup(func() { assert.NoError(t, s.Close()) })
		return s
	})
}

func TestDocumentStores_SaveKeepsOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	bs, err := NewBoltStore(filepath.Join(dir, "p.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, bs.Close()) })

	unordered := []models.Product{
		{ID: 3, Name: "tres"},
		{ID: 1, Name: "uno"},
		{ID: 2, Name: "dos"},
	}
	for _, s := range []Store{NewFileStore(filepath.Join(dir, "p.json")), bs} {
		require.NoError(t, s.Save(ctx, unordered))
		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, unordered, got)
	}
}

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{DataFile: filepath.Join(dir, "p.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(Options{Driver: DriverBolt, BoltPath: filepath.Join(dir, "p.db")})
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(Options{Driver: "mongo"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(Options{Driver: DriverPostgres})
	assert.Error(t, err)
}
