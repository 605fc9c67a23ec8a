/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Prices, totals and revenue are sent as JSON numbers (json.Number built
  from the decimal string), never as quoted strings. Requests accept
  numbers for the same fields.

VALIDATION:
  Field presence and parsing happen in handlers; the ledger receives
  already-typed values.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/warp/sales-ledger/ledger"
	"github.com/warp/sales-ledger/report"
)

// =============================================================================
// PRODUCTS
// =============================================================================

type ProductDTO struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       json.Number `json:"price"`
	Stock       int         `json:"stock"`
	StockStatus string      `json:"stock_status"`
}

type ProductRequest struct {
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Price    json.Number `json:"price"`
	Stock    *int        `json:"stock"`
}

// =============================================================================
// STAFF
// =============================================================================

type StaffDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// StaffStatsDTO is a staff row with lifetime sales figures.
type StaffStatsDTO struct {
	StaffDTO
	SalesCount int         `json:"sales_count"`
	Revenue    json.Number `json:"revenue"`
}

type StaffRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// =============================================================================
// SALES
// =============================================================================

type SaleDTO struct {
	ID           int64       `json:"id"`
	ProductID    int64       `json:"product_id"`
	ProductName  string      `json:"product_name"`
	StaffID      int64       `json:"staff_id"`
	StaffName    string      `json:"staff_name"`
	CustomerName string      `json:"customer_name"`
	Quantity     int         `json:"quantity"`
	Date         string      `json:"date"`
	Total        json.Number `json:"total"`
}

type RecordSaleRequest struct {
	ProductID    int64  `json:"product_id"`
	StaffID      int64  `json:"staff_id"`
	CustomerName string `json:"customer_name"`
	Quantity     int    `json:"quantity"`
	Date         string `json:"date"` // YYYY-MM-DD
}

// =============================================================================
// REPORTS
// =============================================================================

type SummaryDTO struct {
	TotalRevenue      json.Number `json:"total_revenue"`
	TotalOrders       int         `json:"total_orders"`
	AverageOrderValue json.Number `json:"average_order_value"`
}

type ProductRankDTO struct {
	Rank      int    `json:"rank"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type StaffRankDTO struct {
	Rank    int         `json:"rank"`
	StaffID int64       `json:"staff_id"`
	Name    string      `json:"name"`
	Revenue json.Number `json:"revenue"`
}

type ReportDTO struct {
	Summary     SummaryDTO       `json:"summary"`
	TopProducts []ProductRankDTO `json:"top_products"`
	TopStaff    []StaffRankDTO   `json:"top_staff"`
	Sales       []SaleDTO        `json:"sales"`
}

type DashboardDTO struct {
	TotalRevenue json.Number  `json:"total_revenue"`
	TotalOrders  int          `json:"total_orders"`
	ProductCount int          `json:"product_count"`
	StaffCount   int          `json:"staff_count"`
	RecentSales  []SaleDTO    `json:"recent_sales"`
	LowStock     []ProductDTO `json:"low_stock"`
}

// =============================================================================
// ACCESS
// =============================================================================

type VerifyPINRequest struct {
	PIN string `json:"pin"`
}

type VerifyPINResponse struct {
	Valid bool `json:"valid"`
}

type ChangePINRequest struct {
	CurrentPIN string `json:"current_pin"`
	NewPIN     string `json:"new_pin"`
	ConfirmPIN string `json:"confirm_pin"`
}

type ClearDataRequest struct {
	PIN string `json:"pin"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// money renders an amount with two decimal places as a JSON number.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toProductDTO(p ledger.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       money(p.Price),
		Stock:       p.Stock,
		StockStatus: string(report.StockStatusOf(p)),
	}
}

func toProductDTOs(products []ledger.Product) []ProductDTO {
	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	return dtos
}

func toStaffDTO(m ledger.SalesStaff) StaffDTO {
	return StaffDTO{
		ID:      m.ID,
		Name:    m.Name,
		Email:   m.Email,
		Phone:   m.Phone,
		Address: m.Address,
	}
}

func toSaleDTO(line report.SaleLine) SaleDTO {
	s := line.Sale
	return SaleDTO{
		ID:           s.ID,
		ProductID:    s.ProductID,
		ProductName:  line.ProductName,
		StaffID:      s.StaffID,
		StaffName:    line.StaffName,
		CustomerName: s.CustomerName,
		Quantity:     s.Quantity,
		Date:         s.Date.String(),
		Total:        money(s.Total),
	}
}

func toSaleDTOs(lines []report.SaleLine) []SaleDTO {
	dtos := make([]SaleDTO, len(lines))
	for i, l := range lines {
		dtos[i] = toSaleDTO(l)
	}
	return dtos
}

func toReportDTO(r report.Report) ReportDTO {
	dto := ReportDTO{
		Summary: SummaryDTO{
			TotalRevenue:      money(r.Summary.TotalRevenue),
			TotalOrders:       r.Summary.TotalOrders,
			AverageOrderValue: money(r.Summary.AverageOrderValue),
		},
		TopProducts: make([]ProductRankDTO, len(r.TopProducts)),
		TopStaff:    make([]StaffRankDTO, len(r.TopStaff)),
		Sales:       toSaleDTOs(r.Lines),
	}
	for i, p := range r.TopProducts {
		dto.TopProducts[i] = ProductRankDTO{Rank: i + 1, ProductID: p.ProductID, Name: p.Name, Quantity: p.Quantity}
	}
	for i, s := range r.TopStaff {
		dto.TopStaff[i] = StaffRankDTO{Rank: i + 1, StaffID: s.StaffID, Name: s.Name, Revenue: money(s.Revenue)}
	}
	return dto
}
