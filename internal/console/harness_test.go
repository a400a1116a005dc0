package console_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"time"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/backend/backendtest"
	"MiniStoreConsole/internal/console"
	"MiniStoreConsole/internal/session"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testDebounce = 30 * time.Millisecond
	orgCode      = "ORG1"
	password     = "secret1"
)

// harness is a console host in front of the in-memory backend, plus a
// browser-like client that keeps the session cookie.
type harness struct {
	backend *backendtest.Server
	spaces  *console.Registry

	backendSrv *httptest.Server
	consoleSrv *httptest.Server
	client     *http.Client
}

func newHarness() *harness {
	be := backendtest.New()
	bts := httptest.NewServer(be.Handler())

	anon := backend.New(backendtest.Endpoints(bts.URL))
	spaces := console.NewRegistry(anon, console.DeskOptions{Debounce: testDebounce})

	h := console.NewHandler(console.Deps{
		Backend:      anon,
		Spaces:       spaces,
		Tokens:       session.NewTokenMaker(testSecret),
		SignInLimit:  100,
		SignInWindow: time.Minute,
	}, console.HTTPDeps{Service: "console"})
	cts := httptest.NewServer(h)

	jar, _ := cookiejar.New(nil)

	return &harness{
		backend:    be,
		spaces:     spaces,
		backendSrv: bts,
		consoleSrv: cts,
		client:     &http.Client{Jar: jar, Timeout: 5 * time.Second},
	}
}

func (h *harness) close() {
	h.consoleSrv.Close()
	h.backendSrv.Close()
}

type response struct {
	status int
	body   []byte
}

func (r response) decode(dst any) error {
	if err := json.Unmarshal(r.body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", r.body, err)
	}
	return nil
}

// errorText returns the "error" field of an error body.
func (r response) errorText() string {
	var e struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(r.body, &e)
	return e.Error
}

func (h *harness) do(method, path string, body any) (response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return response{}, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, h.consoleSrv.URL+path, rd)
	if err != nil {
		return response{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	return response{status: resp.StatusCode, body: b}, err
}

func (h *harness) seedEmployee(email string) {
	h.backend.SeedAccount(backendtest.Account{
		Name: "Clerk", Email: email, Password: password, Role: "employee", CompanyCode: orgCode,
	})
}

func (h *harness) seedAdmin(email string) {
	h.backend.SeedAccount(backendtest.Account{
		Name: "Boss", Email: email, Password: password, Role: "admin", CompanyCode: orgCode,
	})
}

func (h *harness) signIn(email string, admin bool) (response, error) {
	return h.do(http.MethodPost, "/signin", console.SignInForm{
		Email: email, Password: password, CompanyCode: orgCode, Admin: admin,
	})
}

func (h *harness) view() (console.DeskView, error) {
	resp, err := h.do(http.MethodGet, "/sells/", nil)
	if err != nil {
		return console.DeskView{}, err
	}
	if resp.status != http.StatusOK {
		return console.DeskView{}, fmt.Errorf("view: status %d: %s", resp.status, resp.body)
	}
	var v console.DeskView
	return v, resp.decode(&v)
}
