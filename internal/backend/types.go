package backend

import (
	"encoding/json"
	"math"
)

// Product is one catalog entry. Prices travel as rupee numbers ("mrp") and
// are held in paise.
type Product struct {
	ID         string
	Name       string
	PriceCents int64
	Stock      int
	Category   string
}

type productWire struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	MRP      float64 `json:"mrp"`
	Stock    int     `json:"stock"`
	Category string  `json:"category,omitempty"`
}

func (p *Product) UnmarshalJSON(b []byte) error {
	var w productWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Product{
		ID:         w.ID,
		Name:       w.Name,
		PriceCents: ToCents(w.MRP),
		Stock:      w.Stock,
		Category:   w.Category,
	}
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(productWire{
		ID:       p.ID,
		Name:     p.Name,
		MRP:      FromCents(p.PriceCents),
		Stock:    p.Stock,
		Category: p.Category,
	})
}

// SaleItem is one line of a sale request.
type SaleItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// SaleRequest is built at checkout and lives for one submission.
type SaleRequest struct {
	Items       []SaleItem `json:"items"`
	BillToEmail *string    `json:"billToEmail"`
}

type SaleReceipt struct {
	TotalCents int64
}

// SummaryRow is one day of the sales summary.
type SummaryRow struct {
	Date             string
	TotalAmountCents int64
	Count            int
}

type summaryWire struct {
	Date        string  `json:"date"`
	TotalAmount float64 `json:"totalAmount"`
	Count       int     `json:"count"`
}

func (r *SummaryRow) UnmarshalJSON(b []byte) error {
	var w summaryWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = SummaryRow{Date: w.Date, TotalAmountCents: ToCents(w.TotalAmount), Count: w.Count}
	return nil
}

func (r SummaryRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryWire{Date: r.Date, TotalAmount: FromCents(r.TotalAmountCents), Count: r.Count})
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name       string
	PriceCents int64
	Stock      int
	Category   string
}

func (in ProductInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string  `json:"name"`
		MRP      float64 `json:"mrp"`
		Stock    int     `json:"stock"`
		Category string  `json:"category,omitempty"`
	}{in.Name, FromCents(in.PriceCents), in.Stock, in.Category})
}

type User struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	Status string `json:"status,omitempty"`
}

type SignInRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	CompanyCode     string `json:"companyCode"`
	IsAdminEmployee bool   `json:"isAdminEmployee"`
}

type SignInResponse struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Message string `json:"message"`
}

type AdminSignUp struct {
	Name          string `json:"name"`
	OrgName       string `json:"orgName"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
}

type EmployeeSignUp struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyCode string `json:"companyCode"`
}

type messageResp struct {
	Message string `json:"message"`
}

func ToCents(v float64) int64 { return int64(math.Round(v * 100)) }

func FromCents(c int64) float64 { return float64(c) / 100 }
