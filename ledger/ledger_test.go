package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sales-ledger/ledger"
	"github.com/warp/sales-ledger/store/memory"
	"go.uber.org/zap/zaptest"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger(t *testing.T) (*ledger.Ledger, *memory.Memory) {
	t.Helper()
	kv := memory.New()
	l, err := ledger.New(context.Background(), kv,
		ledger.WithLogger(zaptest.NewLogger(t)),
		ledger.WithIDSource(&ledger.SequenceIDs{}),
	)
	require.NoError(t, err)
	return l, kv
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var jan1 = ledger.NewDate(2024, time.January, 1)

// seed adds one product and one staff member.
func seed(t *testing.T, l *ledger.Ledger, unitPrice string, stock int) (ledger.Product, ledger.SalesStaff) {
	t.Helper()
	ctx := context.Background()
	p, err := l.AddProduct(ctx, "Widget", "Tools", price(unitPrice), stock)
	require.NoError(t, err)
	m, err := l.AddSalesStaff(ctx, "Ama Mensah", "ama@example.com", "024000000", "Accra")
	require.NoError(t, err)
	return p, m
}

// =============================================================================
// RECORD SALE
// =============================================================================

func TestRecordSale_DecrementsStockAndFreezesTotal(t *testing.T) {
	// GIVEN: Widget at 10.00 with 5 in stock
	// WHEN: Selling 3
	// THEN: Stock is 2 and the sale total is 30.00

	l, _ := newTestLedger(t)
	ctx := context.Background()
	p, m := seed(t, l, "10.00", 5)

	sale, err := l.RecordSale(ctx, p.ID, m.ID, "Alice", 3, jan1)
	require.NoError(t, err)

	assert.Equal(t, "30.00", sale.Total.StringFixed(2))
	assert.Equal(t, 3, sale.Quantity)
	assert.Equal(t, "Alice", sale.CustomerName)
	assert.True(t, sale.Date.Equal(jan1))

	got, ok := l.Product(p.ID)
	require.True(t, ok)
	assert.Equal(t, 2, got.Stock)
	assert.Len(t, l.Sales(), 1)
}

func TestRecordSale_InsufficientStock_Rejected(t *testing.T) {
	// GIVEN: Widget with 2 left after a sale of 3
	// WHEN: Selling 3 more
	// THEN: Rejected with InsufficientStock, nothing changes

	l, _ := newTestLedger(t)
	ctx := context.Background()
	p, m := seed(t, l, "10.00", 5)

	_, err := l.RecordSale(ctx, p.ID, m.ID, "Alice", 3, jan1)
	require.NoError(t, err)

	_, err = l.RecordSale(ctx, p.ID, m.ID, "Bob", 3, jan1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	var stockErr *ledger.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	got, _ := l.Product(p.ID)
	assert.Equal(t, 2, got.Stock, "stock must be unchanged")
	assert.Len(t, l.Sales(), 1, "no sale must be appended")
}

func TestRecordSale_ExactStock_Allowed(t *testing.T) {
	l, _ := newTestLedger(t)
	p, m := seed(t, l, "2.50", 4)

	_, err := l.RecordSale(context.Background(), p.ID, m.ID, "Alice", 4, jan1)
	require.NoError(t, err)

	got, _ := l.Product(p.ID)
	assert.Equal(t, 0, got.Stock)
}

func TestRecordSale_UnknownProduct_InvalidReference(t *testing.T) {
	l, _ := newTestLedger(t)
	_, m := seed(t, l, "1", 1)

	_, err := l.RecordSale(context.Background(), 999, m.ID, "Alice", 1, jan1)
	assert.ErrorIs(t, err, ledger.ErrInvalidReference)

	var refErr *ledger.InvalidReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "product", refErr.Kind)
	assert.Empty(t, l.Sales())
}

func TestRecordSale_UnknownStaff_InvalidReference(t *testing.T) {
	l, _ := newTestLedger(t)
	p, _ := seed(t, l, "1", 1)

	_, err := l.RecordSale(context.Background(), p.ID, 999, "Alice", 1, jan1)
	assert.ErrorIs(t, err, ledger.ErrInvalidReference)

	got, _ := l.Product(p.ID)
	assert.Equal(t, 1, got.Stock)
}

func TestRecordSale_NonPositiveQuantity_Rejected(t *testing.T) {
	l, _ := newTestLedger(t)
	p, m := seed(t, l, "1", 5)

	_, err := l.RecordSale(context.Background(), p.ID, m.ID, "Alice", 0, jan1)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
	assert.True(t, ledger.IsClientError(err))
}

func TestSaleTotal_NotRecomputedAfterPriceChange(t *testing.T) {
	// GIVEN: A sale of 2 at 10.00
	// WHEN: The product price changes to 99.00
	// THEN: The sale total stays 20.00

	l, _ := newTestLedger(t)
	ctx := context.Background()
	p, m := seed(t, l, "10.00", 5)

	sale, err := l.RecordSale(ctx, p.ID, m.ID, "Alice", 2, jan1)
	require.NoError(t, err)

	p.Price = price("99.00")
	_, err = l.UpdateProduct(ctx, p)
	require.NoError(t, err)

	stored, ok := l.Sale(sale.ID)
	require.True(t, ok)
	assert.Equal(t, "20.00", stored.Total.StringFixed(2))
}

// =============================================================================
// DELETE SALE
// =============================================================================

func TestDeleteSale_RestoresStock(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	p, m := seed(t, l, "10", 5)

	sale, err := l.RecordSale(ctx, p.ID, m.ID, "Alice", 3, jan1)
	require.NoError(t, err)

	require.NoError(t, l.DeleteSale(ctx, sale.ID))

	got, _ := l.Product(p.ID)
	assert.Equal(t, 5, got.Stock)
	_, ok := l.Sale(sale.ID)
	assert.False(t, ok)
}

func TestDeleteSale_ProductAlreadyDeleted_NoFault(t *testing.T) {
	// GIVEN: A sale whose product was deleted
	// WHEN: Deleting the sale
	// THEN: Sale is removed, no error, product is not resurrected

	l, _ := newTestLedger(t)
	ctx := context.Background()
	p, m := seed(t, l, "10", 5)

	sale, err := l.RecordSale(ctx, p.ID, m.ID, "Alice", 3, jan1)
	require.NoError(t, err)
	require.NoError(t, l.DeleteProduct(ctx, p.ID))

	require.NoError(t, l.DeleteSale(ctx, sale.ID))

	assert.Empty(t, l.Sales())
	assert.Empty(t, l.Products())
}

func TestDeleteSale_Unknown_NotFound(t *testing.T) {
	l, _ := newTestLedger(t)
	err := l.DeleteSale(context.Background(), 42)
	assert.True(t, ledger.IsNotFound(err))
}

// =============================================================================
// WEAK REFERENCES
// =============================================================================

func TestDeleteProductAndStaff_KeepsSales_ResolvesUnknown(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	p, m := seed(t, l, "10", 5)

	sale, err := l.RecordSale(ctx, p.ID, m.ID, "Alice", 1, jan1)
	require.NoError(t, err)

	require.NoError(t, l.DeleteProduct(ctx, p.ID))
	require.NoError(t, l.DeleteSalesStaff(ctx, m.ID))

	snap := l.Snapshot()
	require.Len(t, snap.Sales, 1)
	assert.Equal(t, sale.ID, snap.Sales[0].ID)
	assert.Equal(t, ledger.UnknownName, snap.ProductName(p.ID))
	assert.Equal(t, ledger.UnknownName, snap.StaffName(m.ID))
}

// =============================================================================
// PRODUCTS / STAFF
// =============================================================================

func TestAddProduct_NegativeValues_Rejected(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.AddProduct(ctx, "Bad", "X", price("-1"), 1)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = l.AddProduct(ctx, "Bad", "X", price("1"), -1)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	assert.Empty(t, l.Products())
}

func TestQueries_InsertionOrder(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	for _, name := range []string{"c", "a", "b"} {
		_, err := l.AddProduct(ctx, name, "", decimal.Zero, 0)
		require.NoError(t, err)
	}

	var names []string
	for _, p := range l.Products() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestQueries_ReturnCopies(t *testing.T) {
	l, _ := newTestLedger(t)
	p, _ := seed(t, l, "1", 5)

	products := l.Products()
	products[0].Stock = 1000

	got, _ := l.Product(p.ID)
	assert.Equal(t, 5, got.Stock)
}

func TestAddSalesStaff_NoUniqueness(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	a, err := l.AddSalesStaff(ctx, "Kofi", "kofi@example.com", "", "")
	require.NoError(t, err)
	b, err := l.AddSalesStaff(ctx, "Kofi", "kofi@example.com", "", "")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, l.SalesStaff(), 2)
}

func TestUpdateSalesStaff(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	_, m := seed(t, l, "1", 1)

	m.Phone = "055111111"
	_, err := l.UpdateSalesStaff(ctx, m)
	require.NoError(t, err)

	got, ok := l.Staff(m.ID)
	require.True(t, ok)
	assert.Equal(t, "055111111", got.Phone)

	_, err = l.UpdateSalesStaff(ctx, ledger.SalesStaff{ID: 999})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestPersistence_RoundTrip(t *testing.T) {
	// GIVEN: A ledger after a mix of mutations
	// WHEN: A new ledger loads from the same KV store
	// THEN: It sees the same collections, byte for byte once re-encoded

	l, kv := newTestLedger(t)
	ctx := context.Background()
	p, m := seed(t, l, "12.75", 10)
	p2, err := l.AddProduct(ctx, "Gadget", "Tools", price("0.10"), 3)
	require.NoError(t, err)
	s1, err := l.RecordSale(ctx, p.ID, m.ID, "Alice", 4, jan1)
	require.NoError(t, err)
	_, err = l.RecordSale(ctx, p2.ID, m.ID, "Bob", 1, jan1.AddDays(3))
	require.NoError(t, err)
	require.NoError(t, l.DeleteSale(ctx, s1.ID))

	reloaded, err := ledger.New(ctx, kv)
	require.NoError(t, err)

	assert.Equal(t, mustEncode(t, l.Snapshot()), mustEncode(t, reloaded.Snapshot()))

	stored, ok, err := kv.Load(ctx, ledger.KeySales)
	require.NoError(t, err)
	require.True(t, ok)
	again, err := ledger.EncodeSales(reloaded.Sales())
	require.NoError(t, err)
	assert.Equal(t, string(stored), string(again))
}

func TestPersistence_ReloadedIDsNeverReused(t *testing.T) {
	l, kv := newTestLedger(t)
	ctx := context.Background()
	p, _ := seed(t, l, "1", 1)

	reloaded, err := ledger.New(ctx, kv, ledger.WithIDSource(&ledger.SequenceIDs{}))
	require.NoError(t, err)

	p2, err := reloaded.AddProduct(ctx, "New", "", decimal.Zero, 0)
	require.NoError(t, err)
	assert.Greater(t, p2.ID, p.ID)
}

func TestPersistence_WriteFailure_MemoryStaysAuthoritative(t *testing.T) {
	l, kv := newTestLedger(t)
	ctx := context.Background()
	p, m := seed(t, l, "10", 5)

	kv.FailWrites = errors.New("disk full")

	sale, err := l.RecordSale(ctx, p.ID, m.ID, "Alice", 2, jan1)
	assert.ErrorIs(t, err, ledger.ErrNotPersisted)
	assert.NotZero(t, sale.ID)

	got, _ := l.Product(p.ID)
	assert.Equal(t, 3, got.Stock)
	assert.Len(t, l.Sales(), 1)
}

func TestClearAll_EmptiesAndRemovesKeys(t *testing.T) {
	l, kv := newTestLedger(t)
	ctx := context.Background()
	seed(t, l, "1", 1)
	require.NoError(t, kv.Save(ctx, ledger.KeyPIN, []byte("9999")))

	require.NoError(t, l.ClearAll(ctx))

	assert.Empty(t, l.Products())
	assert.Empty(t, l.SalesStaff())
	assert.Empty(t, l.Sales())
	assert.Equal(t, []string{ledger.KeyPIN}, kv.Keys())
}

func mustEncode(t *testing.T, s ledger.Snapshot) []string {
	t.Helper()
	p, err := ledger.EncodeProducts(s.Products)
	require.NoError(t, err)
	sa, err := ledger.EncodeSales(s.Sales)
	require.NoError(t, err)
	st, err := ledger.EncodeStaff(s.Staff)
	require.NoError(t, err)
	return []string{string(p), string(sa), string(st)}
}
