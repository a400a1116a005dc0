// Package backendtest is an in-memory retail backend speaking the same REST
// dialect as the production one. Tests run it behind httptest.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/config"
	"MiniStoreConsole/pkg/kit"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Account struct {
	Name        string
	Email       string
	Password    string
	Role        string
	CompanyCode string
	Status      string
}

type Sale struct {
	ID          string
	Email       string
	Date        string
	TotalCents  int64
	Items       []backend.SaleItem
	BillToEmail string
}

type failure struct {
	status  int
	message string
}

type Server struct {
	mu       sync.Mutex
	order    []string
	products map[string]backend.Product
	accounts map[string]*Account
	tokens   map[string]string
	sales    []Sale
	calls    map[string]int
	fail     map[string]failure
	holds    map[string]chan struct{}
	now      func() time.Time
}

func New() *Server {
	return &Server{
		products: map[string]backend.Product{},
		accounts: map[string]*Account{},
		tokens:   map[string]string{},
		calls:    map[string]int{},
		fail:     map[string]failure{},
		holds:    map[string]chan struct{}{},
		now:      time.Now,
	}
}

// Start runs s behind an httptest server that the test cleans up.
func Start(t interface {
	Helper()
	Cleanup(func())
}) (*Server, *httptest.Server) {
	t.Helper()
	s := New()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

// Endpoints returns the client endpoint set for a server listening on baseURL.
func Endpoints(baseURL string) backend.Endpoints {
	return config.Backend{URL: baseURL}.Endpoints()
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.count)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api/auth", func(rr chi.Router) {
		rr.Post("/signin", s.signIn)
		rr.Post("/signup/admin", s.signUpAdmin)
		rr.Post("/signup/employee", s.signUpEmployee)
	})

	r.Route("/api/employee", func(rr chi.Router) {
		rr.Use(s.authenticate(false))
		rr.Get("/allproducts", s.listProducts)
		rr.Post("/sell", s.sell)
		rr.Get("/salessummary", s.salesSummary)
	})

	r.Route("/api/admin", func(rr chi.Router) {
		rr.Use(s.authenticate(true))
		rr.Get("/products/all_products", s.adminProducts)
		rr.Post("/products", s.createProduct)
		rr.Put("/products/{id}", s.updateProduct)
		rr.Delete("/products/{id}", s.deleteProduct)
		rr.Get("/allusers", s.allUsers)
		rr.Get("/pendingusers", s.pendingUsers)
		rr.Patch("/approve", s.decide(StatusApproved))
		rr.Patch("/reject", s.decide(StatusRejected))
	})

	return r
}

// SeedProduct inserts or replaces p, keeping first-insert order.
func (s *Server) SeedProduct(p backend.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.products[p.ID] = p
}

func (s *Server) SetStock(id string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.Stock = stock
	s.products[id] = p
}

func (s *Server) SetPrice(id string, cents int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.PriceCents = cents
	s.products[id] = p
}

func (s *Server) Product(id string) (backend.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

// SeedAccount registers a ready-to-use account.
func (s *Server) SeedAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Status == "" {
		a.Status = StatusApproved
	}
	a.Email = strings.ToLower(a.Email)
	s.accounts[a.Email] = &a
}

func (s *Server) Account(email string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// IssueToken signs email in without going through the sign-in route.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := uuid.NewString()
	s.tokens[tok] = strings.ToLower(email)
	return tok
}

// RevokeAll invalidates every issued token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]string{}
}

func (s *Server) Sales() []Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sale(nil), s.sales...)
}

func (s *Server) RecordSale(sale Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, sale)
}

// Calls reports how many requests reached path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// FailNext makes the next request to path answer status with message.
func (s *Server) FailNext(path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[path] = failure{status: status, message: message}
}

// Hold parks requests to path until the returned release func is called.
func (s *Server) Hold(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		f, failing := s.fail[r.URL.Path]
		delete(s.fail, r.URL.Path)
		hold := s.holds[r.URL.Path]
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			writeMessage(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func (s *Server) authenticate(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie("token")
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "not signed in")
				return
			}
			tok, _ := url.QueryUnescape(c.Value)

			s.mu.Lock()
			email, ok := s.tokens[tok]
			acct := s.accounts[email]
			s.mu.Unlock()

			if !ok || acct == nil {
				writeMessage(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if adminOnly && acct.Role != "admin" {
				writeMessage(w, http.StatusForbidden, "admins only")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWith(r, acct)))
		})
	}
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req backend.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(req.Email)]
	s.mu.Unlock()

	switch {
	case !ok || acct.Password != req.Password || acct.CompanyCode != req.CompanyCode:
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	case acct.Status != StatusApproved:
		writeMessage(w, http.StatusForbidden, "Account awaiting approval")
		return
	case req.IsAdminEmployee != (acct.Role == "admin"):
		writeMessage(w, http.StatusForbidden, "Role mismatch")
		return
	}

	tok := s.IssueToken(acct.Email)
	http.SetCookie(w, &http.Cookie{Name: "token", Value: tok, Path: "/", HttpOnly: true})
	kit.WriteJSON(w, http.StatusOK, backend.SignInResponse{Token: tok, Role: acct.Role, Message: "Login successful"})
}

func (s *Server) signUpAdmin(w http.ResponseWriter, r *http.Request) {
	var req backend.AdminSignUp
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	code := strings.ToUpper(uuid.NewString()[:8])
	if !s.register(Account{
		Name: req.Name, Email: req.AdminEmail, Password: req.AdminPassword,
		Role: "admin", CompanyCode: code, Status: StatusApproved,
	}) {
		writeMessage(w, http.StatusConflict, "Email already registered")
		return
	}
	writeMessage(w, http.StatusCreated, fmt.Sprintf("Organization %s created. Company code: %s", req.OrgName, code))
}

func (s *Server) signUpEmployee(w http.ResponseWriter, r *http.Request) {
	var req backend.EmployeeSignUp
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	if !s.register(Account{
		Name: req.Name, Email: req.Email, Password: req.Password,
		Role: "employee", CompanyCode: req.CompanyCode, Status: StatusPending,
	}) {
		writeMessage(w, http.StatusConflict, "Email already registered")
		return
	}
	writeMessage(w, http.StatusCreated, "Signup successful, awaiting admin approval")
}

func (s *Server) register(a Account) bool {
	a.Email = strings.ToLower(a.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[a.Email]; exists {
		return false
	}
	s.accounts[a.Email] = &a
	return true
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) adminProducts(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{"products": s.snapshot()})
}

func (s *Server) snapshot() []backend.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backend.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	return out
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	kit.WriteJSON(w, status, map[string]string{"message": msg})
}
