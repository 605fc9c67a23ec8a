package report

import (
	"github.com/shopspring/decimal"
	"github.com/warp/sales-ledger/ledger"
)

const (
	// LowStockThreshold is the highest stock level still counted as low.
	LowStockThreshold = 10

	// RecentSalesLimit is how many sales the dashboard lists.
	RecentSalesLimit = 5
)

// =============================================================================
// STOCK STATUS
// =============================================================================

type StockStatus string

const (
	InStock    StockStatus = "in_stock"
	LowStock   StockStatus = "low_stock"
	OutOfStock StockStatus = "out_of_stock"
)

func StockStatusOf(p ledger.Product) StockStatus {
	switch {
	case p.Stock > LowStockThreshold:
		return InStock
	case p.Stock > 0:
		return LowStock
	default:
		return OutOfStock
	}
}

// =============================================================================
// SALE LINES - Sales with resolved names
// =============================================================================

type SaleLine struct {
	Sale        ledger.Sale
	ProductName string
	StaffName   string
}

// Detail pairs each sale with its product and staff names.
func Detail(sales []ledger.Sale, names Names) []SaleLine {
	lines := make([]SaleLine, len(sales))
	for i, s := range sales {
		lines[i] = SaleLine{
			Sale:        s,
			ProductName: names.ProductName(s.ProductID),
			StaffName:   names.StaffName(s.StaffID),
		}
	}
	return lines
}

// =============================================================================
// DASHBOARD
// =============================================================================

type DashboardStats struct {
	TotalRevenue decimal.Decimal
	TotalOrders  int
	ProductCount int
	StaffCount   int
	RecentSales  []SaleLine       // newest first
	LowStock     []ledger.Product // 0 < stock <= LowStockThreshold
}

func Dashboard(snap ledger.Snapshot) DashboardStats {
	sum := Summarize(snap.Sales)

	start := max(len(snap.Sales)-RecentSalesLimit, 0)
	recent := make([]ledger.Sale, 0, len(snap.Sales)-start)
	for i := len(snap.Sales) - 1; i >= start; i-- {
		recent = append(recent, snap.Sales[i])
	}

	low := make([]ledger.Product, 0)
	for _, p := range snap.Products {
		if StockStatusOf(p) == LowStock {
			low = append(low, p)
		}
	}

	return DashboardStats{
		TotalRevenue: sum.TotalRevenue,
		TotalOrders:  sum.TotalOrders,
		ProductCount: len(snap.Products),
		StaffCount:   len(snap.Staff),
		RecentSales:  Detail(recent, snap),
		LowStock:     low,
	}
}

// =============================================================================
// STAFF PERFORMANCE
// =============================================================================

type StaffStats struct {
	Staff      ledger.SalesStaff
	SalesCount int
	Revenue    decimal.Decimal
}

// StaffPerformance totals every sale per staff member, in staff order.
// Sales credited to deleted staff are not listed.
func StaffPerformance(snap ledger.Snapshot) []StaffStats {
	index := make(map[int64]int, len(snap.Staff))
	out := make([]StaffStats, len(snap.Staff))
	for i, m := range snap.Staff {
		index[m.ID] = i
		out[i] = StaffStats{Staff: m, Revenue: decimal.Zero}
	}
	for _, s := range snap.Sales {
		if i, ok := index[s.StaffID]; ok {
			out[i].SalesCount++
			out[i].Revenue = out[i].Revenue.Add(s.Total)
		}
	}
	return out
}

// =============================================================================
// REPORT PAGE
// =============================================================================

type Report struct {
	Criteria    Criteria
	Summary     Summary
	TopProducts []ProductRank
	TopStaff    []StaffRank
	Lines       []SaleLine
}

// Build filters the snapshot's sales and computes everything the reports
// page shows.
func Build(snap ledger.Snapshot, c Criteria, limit int) Report {
	filtered := Filter(snap.Sales, c)
	return Report{
		Criteria:    c,
		Summary:     Summarize(filtered),
		TopProducts: TopProducts(filtered, snap, limit),
		TopStaff:    TopStaff(filtered, snap, limit),
		Lines:       Detail(filtered, snap),
	}
}
