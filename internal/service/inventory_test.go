package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/repository"
)

func TestInventory_GreedyFillAscendingVariantOrder(t *testing.T) {
	store := newMemStore()
	inv := NewInventoryService(testLogger(), "fr")

	product := store.seedProduct(domain.Product{
		Name: domain.Translated{"fr": "Tisane"},
		Variants: []domain.ProductVariant{
			{SKU: "A", Price: 100, Stock: 1, IsActive: true},
			{SKU: "B", Price: 100, Stock: 0, IsActive: true},
			{SKU: "C", Price: 100, Stock: 4, IsActive: true},
		},
	})

	var debits []domain.VariantDebit
	err := store.ExecTx(context.Background(), func(q repository.Querier) error {
		p, err := q.GetProduct(context.Background(), product.ID)
		if err != nil {
			return err
		}
		debits, err = inv.DecrementTx(context.Background(), q, p, nil, 3)
		return err
	})
	require.NoError(t, err)

	// Variant A drained first, empty B skipped, remainder from C.
	require.Len(t, debits, 2)
	assert.Equal(t, product.Variants[0].ID, debits[0].VariantID)
	assert.Equal(t, int32(1), debits[0].Quantity)
	assert.Equal(t, product.Variants[2].ID, debits[1].VariantID)
	assert.Equal(t, int32(2), debits[1].Quantity)
}

func TestInventory_PreflightRejectsShortPool(t *testing.T) {
	store := newMemStore()
	inv := NewInventoryService(testLogger(), "fr")

	product := store.seedProduct(domain.Product{
		Name: domain.Translated{"fr": "Tisane"},
		Variants: []domain.ProductVariant{
			{SKU: "A", Price: 100, Stock: 2, IsActive: true},
			{SKU: "B", Price: 100, Stock: 5, IsActive: false}, // inactive stock never counts
		},
	})

	err := store.ExecTx(context.Background(), func(q repository.Querier) error {
		p, err := q.GetProduct(context.Background(), product.ID)
		if err != nil {
			return err
		}
		_, err = inv.DecrementTx(context.Background(), q, p, nil, 3)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))

	// Nothing was taken.
	got, _ := store.GetProduct(context.Background(), product.ID)
	assert.Equal(t, int32(2), got.Variants[0].Stock)
}

func TestInventory_RestoreReplaysDebits(t *testing.T) {
	store := newMemStore()
	inv := NewInventoryService(testLogger(), "fr")

	product := store.seedProduct(domain.Product{
		Name: domain.Translated{"fr": "Tisane"},
		Variants: []domain.ProductVariant{
			{SKU: "A", Price: 100, Stock: 0, IsActive: true},
			{SKU: "B", Price: 100, Stock: 1, IsActive: true},
		},
	})

	item := domain.OrderItem{
		ProductID: product.ID,
		Quantity:  3,
		Snapshot: domain.ItemSnapshot{
			SchemaVersion: domain.SnapshotSchemaVersion,
			VariantDebits: []domain.VariantDebit{
				{VariantID: product.Variants[0].ID, Quantity: 2},
				{VariantID: product.Variants[1].ID, Quantity: 1},
			},
		},
	}

	err := store.ExecTx(context.Background(), func(q repository.Querier) error {
		return inv.RestoreTx(context.Background(), q, item)
	})
	require.NoError(t, err)

	got, _ := store.GetProduct(context.Background(), product.ID)
	assert.Equal(t, int32(2), got.Variants[0].Stock)
	assert.Equal(t, int32(2), got.Variants[1].Stock)
}

func TestInventory_SimpleProductGuard(t *testing.T) {
	store := newMemStore()
	inv := NewInventoryService(testLogger(), "fr")

	product := store.seedProduct(domain.Product{Name: domain.Translated{"fr": "Savon"}, Price: 200, Stock: 2})

	err := store.ExecTx(context.Background(), func(q repository.Querier) error {
		p, err := q.GetProduct(context.Background(), product.ID)
		if err != nil {
			return err
		}
		debits, err := inv.DecrementTx(context.Background(), q, p, nil, 2)
		require.NoError(t, err)
		assert.Nil(t, debits)
		return nil
	})
	require.NoError(t, err)

	err = store.ExecTx(context.Background(), func(q repository.Querier) error {
		p, err := q.GetProduct(context.Background(), product.ID)
		if err != nil {
			return err
		}
		_, err = inv.DecrementTx(context.Background(), q, p, nil, 1)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}
