/*
handlers.go - HTTP API handlers for the sales ledger

PURPOSE:
  The presentation contract. Handlers parse and type-check input, call the
  ledger, report engine or access guard, and serialize the result. No
  business rule lives here.

ENDPOINTS:
  Products:
    GET    /api/products          List products with stock status
    POST   /api/products          Add product
    GET    /api/products/{id}     Get product
    PUT    /api/products/{id}     Edit product
    DELETE /api/products/{id}     Delete product (sales are kept)

  Staff:
    GET    /api/staff             List staff with sales count and revenue
    POST   /api/staff             Add staff member
    GET    /api/staff/{id}        Get staff member
    PUT    /api/staff/{id}        Edit staff member
    DELETE /api/staff/{id}        Delete staff member (sales are kept)

  Sales:
    GET    /api/sales             List sales with resolved names
    POST   /api/sales             Record sale (decrements stock)
    GET    /api/sales/{id}        Get sale
    DELETE /api/sales/{id}        Delete sale (restocks if product exists)

  Reports:
    GET    /api/dashboard         Headline numbers, recent sales, low stock
    GET    /api/reports           ?days=&product_id=&staff_id=&limit=

  Access:
    POST   /api/access/verify     Check a PIN
    PUT    /api/access/pin        Change PIN
    POST   /api/admin/clear       Wipe all data (PIN required)

ERROR HANDLING:
  - 400: malformed body, ids, dates, numbers, or invalid values
  - 403: wrong PIN
  - 404: record not found
  - 409: insufficient stock
  - 422: unknown product/staff on a sale, PIN too short or unconfirmed
  - 500: change applied in memory but not persisted, or internal errors

TODAY:
  Handler.Now supplies the date for report filters, so tests can pin it.

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/sales-ledger/access"
	"github.com/warp/sales-ledger/ledger"
	"github.com/warp/sales-ledger/report"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger *ledger.Ledger
	Guard  *access.Guard
	Logger *zap.Logger

	// Now returns the current time; report date ranges count back from it.
	Now func() time.Time
}

// NewHandler creates a new handler.
func NewHandler(l *ledger.Ledger, g *access.Guard, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Ledger: l,
		Guard:  g,
		Logger: logger,
		Now:    time.Now,
	}
}

func (h *Handler) today() ledger.Date {
	return ledger.DateOf(h.Now())
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns all products in insertion order.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toProductDTOs(h.Ledger.Products()))
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	p, found := h.Ledger.Product(id)
	if !found {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// CreateProduct adds a product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	name, category, price, stock, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	p, err := h.Ledger.AddProduct(r.Context(), name, category, price, stock)
	if err != nil {
		h.writeLedgerError(w, "Failed to add product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

// UpdateProduct edits a product. Recorded sale totals do not change.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	name, category, price, stock, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	p, err := h.Ledger.UpdateProduct(r.Context(), ledger.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    price,
		Stock:    stock,
	})
	if err != nil {
		h.writeLedgerError(w, "Failed to update product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.DeleteProduct(r.Context(), id); err != nil {
		h.writeLedgerError(w, "Failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (name, category string, price decimal.Decimal, stock int, ok bool) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.Price == "" || req.Stock == nil {
		writeError(w, http.StatusBadRequest, "price and stock are required", nil)
		return
	}
	price, err := decimal.NewFromString(req.Price.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid price", err)
		return
	}
	return req.Name, req.Category, price, *req.Stock, true
}

// =============================================================================
// STAFF HANDLERS
// =============================================================================

// ListStaff returns all staff members with their lifetime sales figures.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	stats := report.StaffPerformance(h.Ledger.Snapshot())
	dtos := make([]StaffStatsDTO, len(stats))
	for i, s := range stats {
		dtos[i] = StaffStatsDTO{
			StaffDTO:   toStaffDTO(s.Staff),
			SalesCount: s.SalesCount,
			Revenue:    money(s.Revenue),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStaff returns a single staff member.
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	m, found := h.Ledger.Staff(id)
	if !found {
		writeError(w, http.StatusNotFound, "Staff member not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toStaffDTO(m))
}

// CreateStaff adds a staff member.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStaff(w, r)
	if !ok {
		return
	}
	m, err := h.Ledger.AddSalesStaff(r.Context(), req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		h.writeLedgerError(w, "Failed to add staff member", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStaffDTO(m))
}

// UpdateStaff edits a staff member.
func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	req, ok := decodeStaff(w, r)
	if !ok {
		return
	}
	m, err := h.Ledger.UpdateSalesStaff(r.Context(), ledger.SalesStaff{
		ID:      id,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.writeLedgerError(w, "Failed to update staff member", err)
		return
	}
	writeJSON(w, http.StatusOK, toStaffDTO(m))
}

// DeleteStaff removes a staff member.
func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.DeleteSalesStaff(r.Context(), id); err != nil {
		h.writeLedgerError(w, "Failed to delete staff member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeStaff(w http.ResponseWriter, r *http.Request) (StaffRequest, bool) {
	var req StaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return req, false
	}
	return req, true
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// ListSales returns all sales with product and staff names resolved.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	snap := h.Ledger.Snapshot()
	writeJSON(w, http.StatusOK, toSaleDTOs(report.Detail(snap.Sales, snap)))
}

// GetSale returns a single sale.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	snap := h.Ledger.Snapshot()
	for _, line := range report.Detail(snap.Sales, snap) {
		if line.Sale.ID == id {
			writeJSON(w, http.StatusOK, toSaleDTO(line))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Sale not found", nil)
}

// RecordSale records a sale and decrements stock.
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date := h.today()
	if req.Date != "" {
		d, err := ledger.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		date = d
	}

	sale, err := h.Ledger.RecordSale(r.Context(), req.ProductID, req.StaffID, req.CustomerName, req.Quantity, date)
	if err != nil {
		h.writeLedgerError(w, "Failed to record sale", err)
		return
	}

	snap := h.Ledger.Snapshot()
	writeJSON(w, http.StatusCreated, toSaleDTO(report.SaleLine{
		Sale:        sale,
		ProductName: snap.ProductName(sale.ProductID),
		StaffName:   snap.StaffName(sale.StaffID),
	}))
}

// DeleteSale removes a sale and restocks its product.
func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.DeleteSale(r.Context(), id); err != nil {
		h.writeLedgerError(w, "Failed to delete sale", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetDashboard returns headline numbers for the dashboard.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats := report.Dashboard(h.Ledger.Snapshot())
	writeJSON(w, http.StatusOK, DashboardDTO{
		TotalRevenue: money(stats.TotalRevenue),
		TotalOrders:  stats.TotalOrders,
		ProductCount: stats.ProductCount,
		StaffCount:   stats.StaffCount,
		RecentSales:  toSaleDTOs(stats.RecentSales),
		LowStock:     toProductDTOs(stats.LowStock),
	})
}

// GetReport returns a filtered sales report.
// GET /api/reports?days=30&product_id=1&staff_id=2&limit=3
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days, err := queryInt(q.Get("days"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid days", err)
		return
	}
	productID, err := queryInt(q.Get("product_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product_id", err)
		return
	}
	staffID, err := queryInt(q.Get("staff_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid staff_id", err)
		return
	}
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	rep := report.Build(h.Ledger.Snapshot(), report.Criteria{
		Today:     h.today(),
		SinceDays: int(days),
		ProductID: productID,
		StaffID:   staffID,
	}, int(limit))

	writeJSON(w, http.StatusOK, toReportDTO(rep))
}

// =============================================================================
// ACCESS HANDLERS
// =============================================================================

// VerifyPIN checks a PIN without side effects.
func (h *Handler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req VerifyPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyPINResponse{Valid: h.Guard.Verify(req.PIN)})
}

// ChangePIN replaces the PIN.
func (h *Handler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	var req ChangePINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Guard.ChangeConfirmed(r.Context(), req.CurrentPIN, req.NewPIN, req.ConfirmPIN); err != nil {
		h.writeLedgerError(w, "Failed to change PIN", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "PIN changed"})
}

// ClearData wipes every product, sale and staff record.
func (h *Handler) ClearData(w http.ResponseWriter, r *http.Request) {
	var req ClearDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Guard.ClearAll(r.Context(), req.PIN, h.Ledger); err != nil {
		h.writeLedgerError(w, "Data not cleared", err)
		return
	}
	h.Logger.Warn("all data cleared", zap.String("remote_addr", r.RemoteAddr))
	writeJSON(w, http.StatusOK, map[string]string{"status": "All data cleared"})
}

// =============================================================================
// HELPERS
// =============================================================================

// writeLedgerError maps domain errors to HTTP status codes.
func (h *Handler) writeLedgerError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, access.ErrWrongSecret):
		status = http.StatusForbidden
	case ledger.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidReference),
		errors.Is(err, access.ErrTooShort),
		errors.Is(err, access.ErrConfirmationMismatch):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrNotPersisted):
		message = message + ": saved for this session but not persisted"
	}

	if status >= http.StatusInternalServerError {
		h.Logger.Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}

func urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid id %q", raw), err)
		return 0, false
	}
	return id, true
}

func queryInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
