package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sales-ledger/ledger"
	"github.com/warp/sales-ledger/report"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var today = ledger.NewDate(2024, time.March, 31)

func sale(id, productID, staffID int64, qty int, total string, daysAgo int) ledger.Sale {
	return ledger.Sale{
		ID:           id,
		ProductID:    productID,
		StaffID:      staffID,
		CustomerName: "customer",
		Quantity:     qty,
		Date:         today.AddDays(-daysAgo),
		Total:        decimal.RequireFromString(total),
	}
}

func snapshot(sales ...ledger.Sale) ledger.Snapshot {
	return ledger.Snapshot{
		Products: []ledger.Product{
			{ID: 1, Name: "Widget", Price: decimal.NewFromInt(10), Stock: 50},
			{ID: 2, Name: "Gadget", Price: decimal.NewFromInt(5), Stock: 7},
			{ID: 3, Name: "Gizmo", Price: decimal.NewFromInt(1), Stock: 0},
		},
		Staff: []ledger.SalesStaff{
			{ID: 10, Name: "Ama"},
			{ID: 20, Name: "Kofi"},
		},
		Sales: sales,
	}
}

func ids(sales []ledger.Sale) []int64 {
	out := make([]int64, len(sales))
	for i, s := range sales {
		out[i] = s.ID
	}
	return out
}

// =============================================================================
// FILTER
// =============================================================================

func TestFilter_NoCriteria_KeepsAll(t *testing.T) {
	sales := []ledger.Sale{sale(1, 1, 10, 1, "10", 400), sale(2, 2, 20, 1, "5", 0)}
	got := report.Filter(sales, report.Criteria{Today: today})
	assert.Equal(t, []int64{1, 2}, ids(got))
}

func TestFilter_SinceDays_Inclusive(t *testing.T) {
	sales := []ledger.Sale{
		sale(1, 1, 10, 1, "10", 8),
		sale(2, 1, 10, 1, "10", 7), // exactly on the cutoff
		sale(3, 1, 10, 1, "10", 0),
	}
	got := report.Filter(sales, report.Criteria{Today: today, SinceDays: 7})
	assert.Equal(t, []int64{2, 3}, ids(got))
}

func TestFilter_ComposesWithAnd(t *testing.T) {
	sales := []ledger.Sale{
		sale(1, 1, 10, 1, "10", 1),
		sale(2, 1, 20, 1, "10", 1),
		sale(3, 2, 10, 1, "5", 1),
		sale(4, 1, 10, 1, "10", 90),
	}
	got := report.Filter(sales, report.Criteria{Today: today, SinceDays: 30, ProductID: 1, StaffID: 10})
	assert.Equal(t, []int64{1}, ids(got))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	sales := []ledger.Sale{sale(1, 1, 10, 1, "10", 1), sale(2, 2, 10, 1, "5", 1)}
	_ = report.Filter(sales, report.Criteria{Today: today, ProductID: 2})
	assert.Equal(t, []int64{1, 2}, ids(sales))
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestSummarize_Empty(t *testing.T) {
	s := report.Summarize(nil)
	assert.True(t, s.TotalRevenue.IsZero())
	assert.Equal(t, 0, s.TotalOrders)
	assert.True(t, s.AverageOrderValue.IsZero())
}

func TestSummarize(t *testing.T) {
	s := report.Summarize([]ledger.Sale{
		sale(1, 1, 10, 3, "30.00", 0),
		sale(2, 2, 10, 1, "5.00", 0),
		sale(3, 2, 20, 2, "10.00", 0),
	})
	assert.Equal(t, "45.00", s.TotalRevenue.StringFixed(2))
	assert.Equal(t, 3, s.TotalOrders)
	assert.Equal(t, "15.00", s.AverageOrderValue.StringFixed(2))
}

// =============================================================================
// RANKINGS
// =============================================================================

func TestTopProducts_SumsQuantityPerProduct(t *testing.T) {
	// GIVEN: Two sales of product 1 with quantities 2 and 5
	// THEN: Product 1 ranks first with 7 units
	sales := []ledger.Sale{
		sale(1, 1, 10, 2, "20", 0),
		sale(2, 2, 10, 4, "20", 0),
		sale(3, 1, 20, 5, "50", 0),
	}
	got := report.TopProducts(sales, snapshot(), 3)

	require.Len(t, got, 2)
	assert.Equal(t, report.ProductRank{ProductID: 1, Name: "Widget", Quantity: 7}, got[0])
	assert.Equal(t, report.ProductRank{ProductID: 2, Name: "Gadget", Quantity: 4}, got[1])
}

func TestTopProducts_TiesKeepFirstSeenOrder(t *testing.T) {
	sales := []ledger.Sale{
		sale(1, 3, 10, 2, "2", 0),
		sale(2, 1, 10, 2, "20", 0),
		sale(3, 2, 10, 2, "10", 0),
	}
	got := report.TopProducts(sales, snapshot(), 3)

	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{got[0].ProductID, got[1].ProductID, got[2].ProductID})
}

func TestTopProducts_TruncatesAndDefaultsLimit(t *testing.T) {
	sales := []ledger.Sale{
		sale(1, 1, 10, 1, "1", 0),
		sale(2, 2, 10, 2, "1", 0),
		sale(3, 3, 10, 3, "1", 0),
		sale(4, 4, 10, 4, "1", 0),
	}
	assert.Len(t, report.TopProducts(sales, snapshot(), 2), 2)
	assert.Len(t, report.TopProducts(sales, snapshot(), 0), report.DefaultLimit)
}

func TestTopProducts_DeletedProductIsUnknown(t *testing.T) {
	got := report.TopProducts([]ledger.Sale{sale(1, 99, 10, 1, "1", 0)}, snapshot(), 3)
	require.Len(t, got, 1)
	assert.Equal(t, ledger.UnknownName, got[0].Name)
}

func TestTopStaff_SumsRevenue(t *testing.T) {
	sales := []ledger.Sale{
		sale(1, 1, 10, 1, "10.00", 0),
		sale(2, 1, 20, 1, "25.50", 0),
		sale(3, 1, 10, 1, "20.00", 0),
		sale(4, 1, 77, 1, "1.00", 0),
	}
	got := report.TopStaff(sales, snapshot(), 3)

	require.Len(t, got, 3)
	assert.Equal(t, int64(10), got[0].StaffID)
	assert.Equal(t, "Ama", got[0].Name)
	assert.Equal(t, "30.00", got[0].Revenue.StringFixed(2))
	assert.Equal(t, int64(20), got[1].StaffID)
	assert.Equal(t, ledger.UnknownName, got[2].Name)
}

// =============================================================================
// DASHBOARD AND PAGE
// =============================================================================

func TestStockStatusOf(t *testing.T) {
	assert.Equal(t, report.InStock, report.StockStatusOf(ledger.Product{Stock: 11}))
	assert.Equal(t, report.LowStock, report.StockStatusOf(ledger.Product{Stock: 10}))
	assert.Equal(t, report.LowStock, report.StockStatusOf(ledger.Product{Stock: 1}))
	assert.Equal(t, report.OutOfStock, report.StockStatusOf(ledger.Product{Stock: 0}))
}

func TestDashboard(t *testing.T) {
	var sales []ledger.Sale
	for i := int64(1); i <= 7; i++ {
		sales = append(sales, sale(i, 1, 10, 1, "10", 0))
	}
	d := report.Dashboard(snapshot(sales...))

	assert.Equal(t, "70.00", d.TotalRevenue.StringFixed(2))
	assert.Equal(t, 7, d.TotalOrders)
	assert.Equal(t, 3, d.ProductCount)
	assert.Equal(t, 2, d.StaffCount)

	require.Len(t, d.RecentSales, report.RecentSalesLimit)
	assert.Equal(t, int64(7), d.RecentSales[0].Sale.ID, "newest first")
	assert.Equal(t, int64(3), d.RecentSales[4].Sale.ID)
	assert.Equal(t, "Widget", d.RecentSales[0].ProductName)

	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "Gadget", d.LowStock[0].Name)
}

func TestDashboard_Empty(t *testing.T) {
	d := report.Dashboard(ledger.Snapshot{})
	assert.Empty(t, d.RecentSales)
	assert.Empty(t, d.LowStock)
	assert.True(t, d.TotalRevenue.IsZero())
}

func TestStaffPerformance(t *testing.T) {
	stats := report.StaffPerformance(snapshot(
		sale(1, 1, 10, 1, "10", 0),
		sale(2, 1, 10, 1, "15", 0),
		sale(3, 1, 99, 1, "100", 0),
	))

	require.Len(t, stats, 2)
	assert.Equal(t, "Ama", stats[0].Staff.Name)
	assert.Equal(t, 2, stats[0].SalesCount)
	assert.Equal(t, "25.00", stats[0].Revenue.StringFixed(2))
	assert.Equal(t, 0, stats[1].SalesCount)
	assert.True(t, stats[1].Revenue.IsZero())
}

func TestBuild(t *testing.T) {
	snap := snapshot(
		sale(1, 1, 10, 2, "20", 1),
		sale(2, 2, 20, 1, "5", 2),
		sale(3, 1, 20, 5, "50", 60),
	)
	r := report.Build(snap, report.Criteria{Today: today, SinceDays: 30}, 3)

	assert.Equal(t, 2, r.Summary.TotalOrders)
	assert.Equal(t, "25.00", r.Summary.TotalRevenue.StringFixed(2))
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "Gadget", r.Lines[1].ProductName)
	assert.Equal(t, "Kofi", r.Lines[1].StaffName)
	require.Len(t, r.TopProducts, 2)
	assert.Equal(t, 2, r.TopProducts[0].Quantity)
}
