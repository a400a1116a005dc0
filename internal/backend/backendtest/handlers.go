package backendtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/pkg/kit"
)

type acctKey struct{}

func contextWith(r *http.Request, a *Account) context.Context {
	return context.WithValue(r.Context(), acctKey{}, a)
}

func accountFrom(r *http.Request) *Account {
	a, _ := r.Context().Value(acctKey{}).(*Account)
	return a
}

type sellReq struct {
	Items       []backend.SaleItem `json:"items"`
	BillToEmail *string            `json:"billToEmail"`
}

// sell re-validates stock the way the real backend does: the whole sale is
// rejected if any line exceeds current stock.
func (s *Server) sell(w http.ResponseWriter, r *http.Request) {
	var req sellReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}
	if len(req.Items) == 0 {
		writeMessage(w, http.StatusBadRequest, "No items to sell")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, it := range req.Items {
		p, ok := s.products[it.ProductID]
		if !ok {
			writeMessage(w, http.StatusNotFound, "Product not found: "+it.ProductID)
			return
		}
		if it.Quantity <= 0 || it.Quantity > p.Stock {
			writeMessage(w, http.StatusBadRequest, "Insufficient stock for "+p.Name)
			return
		}
		total += p.PriceCents * int64(it.Quantity)
	}

	for _, it := range req.Items {
		p := s.products[it.ProductID]
		p.Stock -= it.Quantity
		s.products[it.ProductID] = p
	}

	sale := Sale{
		ID:         uuid.NewString(),
		Email:      accountFrom(r).Email,
		Date:       s.now().Format("2006-01-02"),
		TotalCents: total,
		Items:      req.Items,
	}
	if req.BillToEmail != nil {
		sale.BillToEmail = *req.BillToEmail
	}
	s.sales = append(s.sales, sale)

	kit.WriteJSON(w, http.StatusOK, map[string]any{"total": backend.FromCents(total)})
}

func (s *Server) salesSummary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	email := strings.ToLower(r.URL.Query().Get("email"))

	acct := accountFrom(r)
	if email == "" || acct.Role != "admin" {
		email = acct.Email
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := []backend.SummaryRow{}
	idx := map[string]int{}
	for _, sale := range s.sales {
		if sale.Email != email || (date != "" && sale.Date != date) {
			continue
		}
		i, ok := idx[sale.Date]
		if !ok {
			i = len(rows)
			idx[sale.Date] = i
			rows = append(rows, backend.SummaryRow{Date: sale.Date})
		}
		rows[i].TotalAmountCents += sale.TotalCents
		rows[i].Count++
	}

	kit.WriteJSON(w, http.StatusOK, rows)
}

type productReq struct {
	Name     string  `json:"name"`
	MRP      float64 `json:"mrp"`
	Stock    int     `json:"stock"`
	Category string  `json:"category"`
}

func decodeProduct(r *http.Request) (productReq, error) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return productReq{}, err
	}
	if strings.TrimSpace(req.Name) == "" || req.MRP < 0 || req.Stock < 0 {
		return productReq{}, fmt.Errorf("invalid product")
	}
	return req, nil
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProduct(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid product")
		return
	}

	p := backend.Product{
		ID:         uuid.NewString(),
		Name:       req.Name,
		PriceCents: backend.ToCents(req.MRP),
		Stock:      req.Stock,
		Category:   req.Category,
	}
	s.SeedProduct(p)
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, err := decodeProduct(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid product")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	p.Name = req.Name
	p.PriceCents = backend.ToCents(req.MRP)
	p.Stock = req.Stock
	p.Category = req.Category
	s.products[id] = p

	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	delete(s.products, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	writeMessage(w, http.StatusOK, "Product deleted")
}

func (s *Server) allUsers(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{"users": s.users(accountFrom(r).CompanyCode, "")})
}

func (s *Server) pendingUsers(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{"users": s.users(accountFrom(r).CompanyCode, StatusPending)})
}

func (s *Server) users(company, status string) []backend.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []backend.User{}
	for _, a := range s.accounts {
		if a.Role == "admin" || a.CompanyCode != company || (status != "" && a.Status != status) {
			continue
		}
		out = append(out, backend.User{Name: a.Name, Email: a.Email, Role: a.Role, Status: a.Status})
	}
	return out
}

func (s *Server) decide(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			writeMessage(w, http.StatusBadRequest, "email required")
			return
		}

		s.mu.Lock()
		a, ok := s.accounts[strings.ToLower(req.Email)]
		if ok && a.Status == StatusPending {
			a.Status = status
		}
		s.mu.Unlock()

		if !ok {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusOK, "User "+status)
	}
}
