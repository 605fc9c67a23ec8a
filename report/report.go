/*
Package report computes filtered sale sets, summaries and leaderboards.

PURPOSE:
  Stateless aggregation over a ledger.Snapshot. Nothing in this package
  mutates its inputs or reads the system clock; callers pass "today".

PIPELINE:
  Filter     -> sales matching date range, product and staff criteria
  Summarize  -> revenue, order count, average order value
  TopProducts / TopStaff -> ranked groups, names resolved at output time
  Build      -> all of the above for the reports page
  Dashboard  -> headline numbers, recent sales, low-stock list

DANGLING REFERENCES:
  Sales whose product or staff member was deleted still count. Their name
  resolves to ledger.UnknownName.

SEE ALSO:
  - ledger/types.go: Snapshot and name resolution
*/
package report

import (
	"github.com/warp/sales-ledger/ledger"
)

// Names resolves ids to display names. ledger.Snapshot implements it.
type Names interface {
	ProductName(id int64) string
	StaffName(id int64) string
}

// =============================================================================
// FILTER
// =============================================================================

// Criteria selects sales. Zero fields mean no restriction.
type Criteria struct {
	Today     ledger.Date
	SinceDays int   // keep sales dated on or after Today - SinceDays
	ProductID int64 // exact match
	StaffID   int64 // exact match
}

// Filter returns the sales matching every set criterion, in input order.
func Filter(sales []ledger.Sale, c Criteria) []ledger.Sale {
	var cutoff ledger.Date
	if c.SinceDays > 0 {
		cutoff = c.Today.AddDays(-c.SinceDays)
	}

	out := make([]ledger.Sale, 0, len(sales))
	for _, s := range sales {
		if c.SinceDays > 0 && s.Date.Before(cutoff) {
			continue
		}
		if c.ProductID != 0 && s.ProductID != c.ProductID {
			continue
		}
		if c.StaffID != 0 && s.StaffID != c.StaffID {
			continue
		}
		out = append(out, s)
	}
	return out
}
