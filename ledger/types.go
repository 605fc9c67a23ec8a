/*
Package ledger is the in-memory authority for products, sales and sales staff.

PURPOSE:
  Holds the three record collections, keeps them consistent across
  create/update/delete and writes them through a KV adapter after every
  successful mutation. Reports are computed elsewhere (package report)
  from a Snapshot.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product:    an item with a unit price and a stock level
  - SalesStaff: a person credited with sales
  - Sale:       a transaction with a frozen total
  - Snapshot:   a deep copy of all collections, with name resolution

REFERENCES:
  A Sale stores ProductID and StaffID as weak references. Deleting a
  product or staff member leaves its sales in place; name lookups for a
  missing record resolve to UnknownName.

MONEY:
  Prices and totals are decimal.Decimal. A sale's Total is price x quantity
  at the moment the sale is recorded and is never recomputed.

SEE ALSO:
  - ledger.go: Ledger operations
  - store.go:  KV persistence contract
  - codec.go:  Persisted record format
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// UnknownName is what a dangling product or staff reference resolves to.
const UnknownName = "Unknown"

// =============================================================================
// RECORDS
// =============================================================================

type Product struct {
	ID       int64
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int
}

type SalesStaff struct {
	ID      int64
	Name    string
	Email   string
	Phone   string
	Address string
}

// Sale is a recorded sales transaction. Total is frozen at creation.
type Sale struct {
	ID           int64
	ProductID    int64
	StaffID      int64
	CustomerName string
	Quantity     int
	Date         Date
	Total        decimal.Decimal
}

// =============================================================================
// SNAPSHOT - Read-only copy handed to reporting
// =============================================================================

// Snapshot is a point-in-time copy of every collection, in insertion order.
type Snapshot struct {
	Products []Product
	Sales    []Sale
	Staff    []SalesStaff
}

// Product looks up a product by id.
func (s Snapshot) Product(id int64) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// StaffMember looks up a staff member by id.
func (s Snapshot) StaffMember(id int64) (SalesStaff, bool) {
	for _, m := range s.Staff {
		if m.ID == id {
			return m, true
		}
	}
	return SalesStaff{}, false
}

// ProductName resolves a product id, returning UnknownName when it dangles.
func (s Snapshot) ProductName(id int64) string {
	if p, ok := s.Product(id); ok {
		return p.Name
	}
	return UnknownName
}

// StaffName resolves a staff id, returning UnknownName when it dangles.
func (s Snapshot) StaffName(id int64) string {
	if m, ok := s.StaffMember(id); ok {
		return m.Name
	}
	return UnknownName
}
