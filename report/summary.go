package report

import (
	"github.com/shopspring/decimal"
	"github.com/warp/sales-ledger/ledger"
)

// Summary holds the headline numbers for a set of sales.
type Summary struct {
	TotalRevenue      decimal.Decimal
	TotalOrders       int
	AverageOrderValue decimal.Decimal
}

// Summarize totals sales. The average is zero for an empty set.
func Summarize(sales []ledger.Sale) Summary {
	revenue := decimal.Zero
	for _, s := range sales {
		revenue = revenue.Add(s.Total)
	}

	avg := decimal.Zero
	if len(sales) > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(len(sales))))
	}

	return Summary{
		TotalRevenue:      revenue,
		TotalOrders:       len(sales),
		AverageOrderValue: avg,
	}
}
