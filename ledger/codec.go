package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Persisted record shapes. Field names match the browser front end's storage,
// money is a JSON number and dates are YYYY-MM-DD.

type productRecord struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Price    json.Number `json:"price"`
	Stock    int         `json:"stock"`
}

type saleRecord struct {
	ID           int64       `json:"id"`
	ProductID    int64       `json:"productId"`
	StaffID      int64       `json:"salesManagerId"`
	CustomerName string      `json:"customerName"`
	Quantity     int         `json:"quantity"`
	Date         Date        `json:"date"`
	Total        json.Number `json:"total"`
}

type staffRecord struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func moneyNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func parseMoney(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(n))
}

// EncodeProducts serializes products as a JSON array.
func EncodeProducts(products []Product) ([]byte, error) {
	recs := make([]productRecord, len(products))
	for i, p := range products {
		recs[i] = productRecord{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    moneyNumber(p.Price),
			Stock:    p.Stock,
		}
	}
	return json.Marshal(recs)
}

// DecodeProducts is the inverse of EncodeProducts.
func DecodeProducts(data []byte) ([]Product, error) {
	var recs []productRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	products := make([]Product, len(recs))
	for i, r := range recs {
		price, err := parseMoney(r.Price)
		if err != nil {
			return nil, fmt.Errorf("decode product %d price: %w", r.ID, err)
		}
		products[i] = Product{
			ID:       r.ID,
			Name:     r.Name,
			Category: r.Category,
			Price:    price,
			Stock:    r.Stock,
		}
	}
	return products, nil
}

// EncodeSales serializes sales as a JSON array.
func EncodeSales(sales []Sale) ([]byte, error) {
	recs := make([]saleRecord, len(sales))
	for i, s := range sales {
		recs[i] = saleRecord{
			ID:           s.ID,
			ProductID:    s.ProductID,
			StaffID:      s.StaffID,
			CustomerName: s.CustomerName,
			Quantity:     s.Quantity,
			Date:         s.Date,
			Total:        moneyNumber(s.Total),
		}
	}
	return json.Marshal(recs)
}

// DecodeSales is the inverse of EncodeSales.
func DecodeSales(data []byte) ([]Sale, error) {
	var recs []saleRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode sales: %w", err)
	}
	sales := make([]Sale, len(recs))
	for i, r := range recs {
		total, err := parseMoney(r.Total)
		if err != nil {
			return nil, fmt.Errorf("decode sale %d total: %w", r.ID, err)
		}
		sales[i] = Sale{
			ID:           r.ID,
			ProductID:    r.ProductID,
			StaffID:      r.StaffID,
			CustomerName: r.CustomerName,
			Quantity:     r.Quantity,
			Date:         r.Date,
			Total:        total,
		}
	}
	return sales, nil
}

// EncodeStaff serializes staff records as a JSON array.
func EncodeStaff(staff []SalesStaff) ([]byte, error) {
	recs := make([]staffRecord, len(staff))
	for i, m := range staff {
		recs[i] = staffRecord(m)
	}
	return json.Marshal(recs)
}

// DecodeStaff is the inverse of EncodeStaff.
func DecodeStaff(data []byte) ([]SalesStaff, error) {
	var recs []staffRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode staff: %w", err)
	}
	staff := make([]SalesStaff, len(recs))
	for i, r := range recs {
		staff[i] = SalesStaff(r)
	}
	return staff, nil
}
