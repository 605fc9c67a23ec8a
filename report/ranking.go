package report

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/warp/sales-ledger/ledger"
)

// DefaultLimit is the leaderboard length when none is given.
const DefaultLimit = 3

type ProductRank struct {
	ProductID int64
	Name      string
	Quantity  int
}

type StaffRank struct {
	StaffID int64
	Name    string
	Revenue decimal.Decimal
}

// TopProducts ranks products by units sold. Ties keep the order in which
// each product first appears in sales.
func TopProducts(sales []ledger.Sale, names Names, limit int) []ProductRank {
	groups := groupBy(sales,
		func(s ledger.Sale) int64 { return s.ProductID },
		func(sum int, s ledger.Sale) int { return sum + s.Quantity },
	)
	slices.SortStableFunc(groups, func(a, b group[int]) int {
		return cmp.Compare(b.sum, a.sum)
	})

	groups = truncate(groups, limit)
	out := make([]ProductRank, len(groups))
	for i, g := range groups {
		out[i] = ProductRank{ProductID: g.id, Name: names.ProductName(g.id), Quantity: g.sum}
	}
	return out
}

// TopStaff ranks staff members by revenue. Ties keep first-seen order.
func TopStaff(sales []ledger.Sale, names Names, limit int) []StaffRank {
	groups := groupBy(sales,
		func(s ledger.Sale) int64 { return s.StaffID },
		func(sum decimal.Decimal, s ledger.Sale) decimal.Decimal { return sum.Add(s.Total) },
	)
	slices.SortStableFunc(groups, func(a, b group[decimal.Decimal]) int {
		return b.sum.Cmp(a.sum)
	})

	groups = truncate(groups, limit)
	out := make([]StaffRank, len(groups))
	for i, g := range groups {
		out[i] = StaffRank{StaffID: g.id, Name: names.StaffName(g.id), Revenue: g.sum}
	}
	return out
}

type group[V any] struct {
	id  int64
	sum V
}

// groupBy folds sales per key, keeping groups in first-encountered order.
func groupBy[V any](sales []ledger.Sale, key func(ledger.Sale) int64, add func(V, ledger.Sale) V) []group[V] {
	index := make(map[int64]int)
	var groups []group[V]
	for _, s := range sales {
		k := key(s)
		i, ok := index[k]
		if !ok {
			var zero V
			i = len(groups)
			index[k] = i
			groups = append(groups, group[V]{id: k, sum: zero})
		}
		groups[i].sum = add(groups[i].sum, s)
	}
	return groups
}

func truncate[T any](xs []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(xs) > limit {
		return xs[:limit]
	}
	return xs
}
