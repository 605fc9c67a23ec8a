/*
ledger.go - The Ledger store

PURPOSE:
  Owns the Products, Sales and SalesStaff collections for one session.
  Every mutation validates first, then changes memory, then writes all
  three collections through the KV adapter in one batch.

CRITICAL INVARIANTS:
  1. FROZEN TOTAL: Sale.Total = price x quantity at RecordSale time.
  2. STOCK: RecordSale rejects quantity > stock; it never clamps.
  3. RESTOCK: DeleteSale adds back the sale's own quantity, only when the
     product still exists.
  4. WEAK REFERENCES: deleting a product or staff member never touches
     sales. Dangling ids resolve to UnknownName at read time.
  5. ALL-OR-NOTHING: a rejected call leaves every collection unchanged.

PERSISTENCE FAILURES:
  If the KV write fails after a successful in-memory change, the change
  stays and the method returns its result with an error wrapping
  ErrNotPersisted. Memory is the source of truth for the rest of the
  session.

EXAMPLE:
  l, err := ledger.New(ctx, memory.New())
  p, _ := l.AddProduct(ctx, "Widget", "Tools", decimal.NewFromInt(10), 5)
  s, _ := l.AddSalesStaff(ctx, "Ama", "ama@example.com", "", "")
  sale, err := l.RecordSale(ctx, p.ID, s.ID, "Alice", 3, ledger.NewDate(2024, time.January, 1))

SEE ALSO:
  - store.go: KV contract
  - report/:  aggregation over Snapshot()
*/
package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	mu     sync.RWMutex
	kv     KV
	ids    IDSource
	logger *zap.Logger

	products []Product
	sales    []Sale
	staff    []SalesStaff
}

type Option func(*Ledger)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithIDSource(ids IDSource) Option {
	return func(l *Ledger) {
		if ids != nil {
			l.ids = ids
		}
	}
}

// New creates a Ledger and loads any persisted collections from kv.
// Absent keys load as empty collections.
func New(ctx context.Context, kv KV, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		kv:     kv,
		ids:    NewClockIDs(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.load(ctx); err != nil {
		return nil, err
	}

	l.logger.Info("ledger loaded",
		zap.Int("products", len(l.products)),
		zap.Int("sales", len(l.sales)),
		zap.Int("staff", len(l.staff)),
	)
	return l, nil
}

func (l *Ledger) load(ctx context.Context) error {
	if data, ok, err := l.kv.Load(ctx, KeyProducts); err != nil {
		return fmt.Errorf("load products: %w", err)
	} else if ok {
		if l.products, err = DecodeProducts(data); err != nil {
			return err
		}
	}
	if data, ok, err := l.kv.Load(ctx, KeySales); err != nil {
		return fmt.Errorf("load sales: %w", err)
	} else if ok {
		if l.sales, err = DecodeSales(data); err != nil {
			return err
		}
	}
	if data, ok, err := l.kv.Load(ctx, KeyStaff); err != nil {
		return fmt.Errorf("load staff: %w", err)
	} else if ok {
		if l.staff, err = DecodeStaff(data); err != nil {
			return err
		}
	}

	// Ids are never reused within a session, including ids loaded from storage.
	for _, p := range l.products {
		l.ids.Observe(p.ID)
	}
	for _, s := range l.sales {
		l.ids.Observe(s.ID)
	}
	for _, m := range l.staff {
		l.ids.Observe(m.ID)
	}
	return nil
}

// persistLocked writes all three collections. Caller holds l.mu.
func (l *Ledger) persistLocked(ctx context.Context) error {
	products, err := EncodeProducts(l.products)
	if err != nil {
		return l.persistFailed(err)
	}
	sales, err := EncodeSales(l.sales)
	if err != nil {
		return l.persistFailed(err)
	}
	staff, err := EncodeStaff(l.staff)
	if err != nil {
		return l.persistFailed(err)
	}

	err = l.kv.SaveBatch(ctx, []Entry{
		{Key: KeyProducts, Value: products},
		{Key: KeySales, Value: sales},
		{Key: KeyStaff, Value: staff},
	})
	if err != nil {
		return l.persistFailed(err)
	}
	return nil
}

func (l *Ledger) persistFailed(err error) error {
	l.logger.Error("failed to persist ledger", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrNotPersisted, err)
}

// =============================================================================
// PRODUCTS
// =============================================================================

// AddProduct creates a product with a fresh id.
func (l *Ledger) AddProduct(ctx context.Context, name, category string, price decimal.Decimal, stock int) (Product, error) {
	if err := validateProduct(price, stock); err != nil {
		return Product{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := Product{
		ID:       l.ids.Next(),
		Name:     name,
		Category: category,
		Price:    price,
		Stock:    stock,
	}
	l.products = append(l.products, p)
	l.logger.Info("product added", zap.Int64("product_id", p.ID), zap.String("name", name), zap.Int("stock", stock))

	return p, l.persistLocked(ctx)
}

// UpdateProduct replaces the editable fields of an existing product.
// Existing sale totals are not recomputed.
func (l *Ledger) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p.Price, p.Stock); err != nil {
		return Product{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.productIndex(p.ID)
	if i < 0 {
		return Product{}, fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
	}
	l.products[i] = p
	l.logger.Info("product updated", zap.Int64("product_id", p.ID))

	return p, l.persistLocked(ctx)
}

// DeleteProduct removes a product. Sales referencing it are kept.
func (l *Ledger) DeleteProduct(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.productIndex(id)
	if i < 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	l.products = slices.Delete(l.products, i, i+1)
	l.logger.Info("product deleted", zap.Int64("product_id", id))

	return l.persistLocked(ctx)
}

func (l *Ledger) Products() []Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.products)
}

func (l *Ledger) Product(id int64) (Product, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.productIndex(id); i >= 0 {
		return l.products[i], true
	}
	return Product{}, false
}

func (l *Ledger) productIndex(id int64) int {
	return slices.IndexFunc(l.products, func(p Product) bool { return p.ID == id })
}

func validateProduct(price decimal.Decimal, stock int) error {
	if price.IsNegative() {
		return invalidInput("price must not be negative, got %s", price)
	}
	if stock < 0 {
		return invalidInput("stock must not be negative, got %d", stock)
	}
	return nil
}

// =============================================================================
// SALES STAFF
// =============================================================================

// AddSalesStaff creates a staff member. Names and emails need not be unique.
func (l *Ledger) AddSalesStaff(ctx context.Context, name, email, phone, address string) (SalesStaff, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := SalesStaff{
		ID:      l.ids.Next(),
		Name:    name,
		Email:   email,
		Phone:   phone,
		Address: address,
	}
	l.staff = append(l.staff, m)
	l.logger.Info("sales staff added", zap.Int64("staff_id", m.ID), zap.String("name", name))

	return m, l.persistLocked(ctx)
}

// UpdateSalesStaff replaces the contact fields of an existing staff member.
func (l *Ledger) UpdateSalesStaff(ctx context.Context, m SalesStaff) (SalesStaff, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.staffIndex(m.ID)
	if i < 0 {
		return SalesStaff{}, fmt.Errorf("staff %d: %w", m.ID, ErrNotFound)
	}
	l.staff[i] = m
	l.logger.Info("sales staff updated", zap.Int64("staff_id", m.ID))

	return m, l.persistLocked(ctx)
}

// DeleteSalesStaff removes a staff member. Sales credited to them are kept.
func (l *Ledger) DeleteSalesStaff(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.staffIndex(id)
	if i < 0 {
		return fmt.Errorf("staff %d: %w", id, ErrNotFound)
	}
	l.staff = slices.Delete(l.staff, i, i+1)
	l.logger.Info("sales staff deleted", zap.Int64("staff_id", id))

	return l.persistLocked(ctx)
}

func (l *Ledger) SalesStaff() []SalesStaff {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.staff)
}

func (l *Ledger) Staff(id int64) (SalesStaff, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.staffIndex(id); i >= 0 {
		return l.staff[i], true
	}
	return SalesStaff{}, false
}

func (l *Ledger) staffIndex(id int64) int {
	return slices.IndexFunc(l.staff, func(m SalesStaff) bool { return m.ID == id })
}

// =============================================================================
// SALES
// =============================================================================

// RecordSale sells quantity units of a product, credited to a staff member.
//
// Fails with ErrInvalidReference if either id is unknown and with
// ErrInsufficientStock if quantity exceeds stock. On failure nothing changes.
func (l *Ledger) RecordSale(ctx context.Context, productID, staffID int64, customer string, quantity int, date Date) (Sale, error) {
	if quantity <= 0 {
		return Sale{}, invalidInput("quantity must be positive, got %d", quantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pi := l.productIndex(productID)
	if pi < 0 {
		l.logger.Warn("sale rejected: unknown product", zap.Int64("product_id", productID))
		return Sale{}, &InvalidReferenceError{Kind: "product", ID: productID}
	}
	if l.staffIndex(staffID) < 0 {
		l.logger.Warn("sale rejected: unknown staff", zap.Int64("staff_id", staffID))
		return Sale{}, &InvalidReferenceError{Kind: "staff", ID: staffID}
	}

	product := &l.products[pi]
	if quantity > product.Stock {
		l.logger.Warn("sale rejected: insufficient stock",
			zap.Int64("product_id", productID),
			zap.Int("available", product.Stock),
			zap.Int("requested", quantity),
		)
		return Sale{}, &InsufficientStockError{ProductID: productID, Available: product.Stock, Requested: quantity}
	}

	sale := Sale{
		ID:           l.ids.Next(),
		ProductID:    productID,
		StaffID:      staffID,
		CustomerName: customer,
		Quantity:     quantity,
		Date:         date,
		Total:        product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
	product.Stock -= quantity
	l.sales = append(l.sales, sale)

	l.logger.Info("sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("product_id", productID),
		zap.Int64("staff_id", staffID),
		zap.Int("quantity", quantity),
		zap.String("total", sale.Total.StringFixed(2)),
	)

	return sale, l.persistLocked(ctx)
}

// DeleteSale removes a sale and restocks its product if the product still
// exists. A missing product is skipped silently.
func (l *Ledger) DeleteSale(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.sales, func(s Sale) bool { return s.ID == id })
	if i < 0 {
		return fmt.Errorf("sale %d: %w", id, ErrNotFound)
	}
	sale := l.sales[i]

	restocked := false
	if pi := l.productIndex(sale.ProductID); pi >= 0 {
		l.products[pi].Stock += sale.Quantity
		restocked = true
	}
	l.sales = slices.Delete(l.sales, i, i+1)

	l.logger.Info("sale deleted",
		zap.Int64("sale_id", id),
		zap.Int64("product_id", sale.ProductID),
		zap.Bool("restocked", restocked),
	)

	return l.persistLocked(ctx)
}

func (l *Ledger) Sales() []Sale {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.sales)
}

func (l *Ledger) Sale(id int64) (Sale, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.sales {
		if s.ID == id {
			return s, true
		}
	}
	return Sale{}, false
}

// =============================================================================
// WHOLE-LEDGER OPERATIONS
// =============================================================================

// Snapshot returns a copy of all collections for reporting.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{
		Products: slices.Clone(l.products),
		Sales:    slices.Clone(l.sales),
		Staff:    slices.Clone(l.staff),
	}
}

// ClearAll empties every collection and removes their persisted entries.
// Callers gate this behind access.Guard.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.products = nil
	l.sales = nil
	l.staff = nil
	l.logger.Warn("ledger cleared")

	if err := l.kv.Delete(ctx, KeyProducts, KeySales, KeyStaff); err != nil {
		return l.persistFailed(err)
	}
	return nil
}
