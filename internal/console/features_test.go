package console_test

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/checkout"
	"MiniStoreConsole/internal/console"
)

const catalogPath = "/api/employee/allproducts"

type saleWorld struct {
	h    *harness
	last response
}

func (w *saleWorld) theBackendCatalog(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		price, err := strconv.ParseFloat(row.Cells[2].Value, 64)
		if err != nil {
			return err
		}
		stock, err := strconv.Atoi(row.Cells[3].Value)
		if err != nil {
			return err
		}
		w.h.backend.SeedProduct(backend.Product{
			ID:         row.Cells[0].Value,
			Name:       row.Cells[1].Value,
			PriceCents: backend.ToCents(price),
			Stock:      stock,
			Category:   row.Cells[4].Value,
		})
	}
	return nil
}

func (w *saleWorld) signedInAsEmployee(email string) error {
	w.h.seedEmployee(email)
	resp, err := w.h.signIn(email, false)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		return fmt.Errorf("sign in: status %d: %s", resp.status, resp.body)
	}
	return nil
}

func (w *saleWorld) saleScreenOpen() error {
	return w.send(http.MethodPost, "/sells/initialize", nil, http.StatusOK)
}

func (w *saleWorld) send(method, path string, body any, want int) error {
	resp, err := w.h.do(method, path, body)
	if err != nil {
		return err
	}
	w.last = resp
	if want != 0 && resp.status != want {
		return fmt.Errorf("%s %s: status %d, want %d: %s", method, path, resp.status, want, resp.body)
	}
	return nil
}

func (w *saleWorld) addProduct(id string) error {
	return w.send(http.MethodPost, "/sells/cart/"+id, nil, 0)
}

func (w *saleWorld) addProductTimes(id string, n int) error {
	for i := 0; i < n; i++ {
		if err := w.send(http.MethodPost, "/sells/cart/"+id, nil, http.StatusOK); err != nil {
			return err
		}
	}
	return nil
}

func (w *saleWorld) setQuantity(id string, qty int) error {
	return w.send(http.MethodPut, "/sells/cart/"+id, map[string]int{"quantity": qty}, http.StatusOK)
}

func (w *saleWorld) removeProduct(id string) error {
	return w.send(http.MethodDelete, "/sells/cart/"+id, nil, http.StatusOK)
}

func (w *saleWorld) billTo(email string) error {
	return w.send(http.MethodPut, "/sells/billto", map[string]string{"email": email}, http.StatusOK)
}

func (w *saleWorld) checkOut() error {
	return w.send(http.MethodPost, "/sells/checkout", nil, 0)
}

func (w *saleWorld) reloadCatalog() error {
	return w.send(http.MethodPost, "/sells/reload", nil, 0)
}

func (w *saleWorld) backendChangesPrice(id string, price float64) error {
	w.h.backend.SetPrice(id, backend.ToCents(price))
	return nil
}

func (w *saleWorld) backendStockDrops(id string, stock int) error {
	w.h.backend.SetStock(id, stock)
	return nil
}

func (w *saleWorld) backendRevokes() error {
	w.h.backend.RevokeAll()
	return nil
}

func (w *saleWorld) typeQueries(a, b, c string) error {
	for _, q := range []string{a, b, c} {
		if err := w.send(http.MethodPost, "/sells/search", map[string]string{"query": q}, http.StatusAccepted); err != nil {
			return err
		}
	}
	return nil
}

func (w *saleWorld) requestFails(status int, msg string) error {
	if w.last.status != status {
		return fmt.Errorf("status %d, want %d: %s", w.last.status, status, w.last.body)
	}
	if got := w.last.errorText(); got != msg {
		return fmt.Errorf("message %q, want %q", got, msg)
	}
	return nil
}

func (w *saleWorld) responseWarns(msg string) error {
	var v console.DeskView
	if err := w.last.decode(&v); err != nil {
		return err
	}
	if v.Warning != msg {
		return fmt.Errorf("warning %q, want %q", v.Warning, msg)
	}
	return nil
}

func (w *saleWorld) line(id string) (console.LineView, bool, error) {
	v, err := w.h.view()
	if err != nil {
		return console.LineView{}, false, err
	}
	for _, l := range v.Cart {
		if l.ProductID == id {
			return l, true, nil
		}
	}
	return console.LineView{}, false, nil
}

func (w *saleWorld) cartHolds(qty int, id string) error {
	l, ok, err := w.line(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("product %s not in cart", id)
	}
	if l.Quantity != qty {
		return fmt.Errorf("product %s quantity %d, want %d", id, l.Quantity, qty)
	}
	return nil
}

func (w *saleWorld) cartLacks(id string) error {
	_, ok, err := w.line(id)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("product %s still in cart", id)
	}
	return nil
}

func (w *saleWorld) cartEmpty() error {
	v, err := w.h.view()
	if err != nil {
		return err
	}
	if len(v.Cart) != 0 {
		return fmt.Errorf("cart has %d lines", len(v.Cart))
	}
	return nil
}

func (w *saleWorld) cartTotal(want string) error {
	v, err := w.h.view()
	if err != nil {
		return err
	}
	if v.Total != want {
		return fmt.Errorf("total %q, want %q", v.Total, want)
	}
	return nil
}

func (w *saleWorld) saleCompletes(msg string) error {
	if w.last.status != http.StatusOK {
		return fmt.Errorf("checkout status %d: %s", w.last.status, w.last.body)
	}
	var resp struct {
		Outcome checkout.Outcome `json:"outcome"`
	}
	if err := w.last.decode(&resp); err != nil {
		return err
	}
	if resp.Outcome.Message != msg {
		return fmt.Errorf("message %q, want %q", resp.Outcome.Message, msg)
	}
	return nil
}

func (w *saleWorld) billingCleared() error {
	v, err := w.h.view()
	if err != nil {
		return err
	}
	if v.BillTo != "" {
		return fmt.Errorf("bill to still %q", v.BillTo)
	}
	return nil
}

func (w *saleWorld) catalogLoaded(n int) error {
	if got := w.h.backend.Calls(catalogPath); got != n {
		return fmt.Errorf("catalog loaded %d times, want %d", got, n)
	}
	return nil
}

func (w *saleWorld) catalogShowsStock(stock int, id string) error {
	resp, err := w.h.do(http.MethodGet, "/sells/products", nil)
	if err != nil {
		return err
	}
	var body struct {
		Products []console.ProductView `json:"products"`
	}
	if err := resp.decode(&body); err != nil {
		return err
	}
	for _, p := range body.Products {
		if p.ID == id {
			if p.Stock != stock {
				return fmt.Errorf("product %s stock %d, want %d", id, p.Stock, stock)
			}
			return nil
		}
	}
	return fmt.Errorf("product %s not in catalog", id)
}

func (w *saleWorld) backendSales(n int) error {
	if got := len(w.h.backend.Sales()); got != n {
		return fmt.Errorf("backend recorded %d sales, want %d", got, n)
	}
	return nil
}

func (w *saleWorld) saleBilledTo(email string) error {
	sales := w.h.backend.Sales()
	if len(sales) != 1 {
		return fmt.Errorf("backend recorded %d sales, want 1", len(sales))
	}
	if sales[0].BillToEmail != email {
		return fmt.Errorf("billed to %q, want %q", sales[0].BillToEmail, email)
	}
	return nil
}

func (w *saleWorld) searchSettles(query string, n int) error {
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := w.h.do(http.MethodGet, "/sells/search", nil)
		if err != nil {
			return err
		}
		var sv console.SearchView
		if err := resp.decode(&sv); err != nil {
			return err
		}
		if !sv.Searching {
			if sv.Evaluated != query || len(sv.Results) != n {
				return fmt.Errorf("search evaluated %q with %d results, want %q with %d", sv.Evaluated, len(sv.Results), query, n)
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("search never settled")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (w *saleWorld) searchSummary(want string) error {
	resp, err := w.h.do(http.MethodGet, "/sells/search", nil)
	if err != nil {
		return err
	}
	var sv console.SearchView
	if err := resp.decode(&sv); err != nil {
		return err
	}
	if sv.Summary != want {
		return fmt.Errorf("summary %q, want %q", sv.Summary, want)
	}
	return nil
}

func (w *saleWorld) redirectedTo(path string) error {
	if w.last.status != http.StatusUnauthorized {
		return fmt.Errorf("status %d, want 401: %s", w.last.status, w.last.body)
	}
	var body struct {
		Redirect string `json:"redirect"`
	}
	if err := w.last.decode(&body); err != nil {
		return err
	}
	if body.Redirect != path {
		return fmt.Errorf("redirect %q, want %q", body.Redirect, path)
	}
	return nil
}

func (w *saleWorld) workspaceClosed() error {
	if n := w.h.spaces.Len(); n != 0 {
		return fmt.Errorf("%d workspaces still open", n)
	}
	resp, err := w.h.do(http.MethodGet, "/sells/", nil)
	if err != nil {
		return err
	}
	if resp.status != http.StatusUnauthorized {
		return fmt.Errorf("desk still reachable: status %d", resp.status)
	}
	return nil
}

func InitializeSaleScenario(ctx *godog.ScenarioContext) {
	w := &saleWorld{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		w.h = newHarness()
		w.last = response{}
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		w.h.close()
		return ctx, nil
	})

	// Given
	ctx.Step(`^the backend catalog:$`, w.theBackendCatalog)
	ctx.Step(`^I am signed in as employee "([^"]*)"$`, w.signedInAsEmployee)
	ctx.Step(`^the sale screen is open$`, w.saleScreenOpen)
	ctx.Step(`^the backend revokes every session$`, w.backendRevokes)

	// When
	ctx.Step(`^I add product "([^"]*)" (\d+) times$`, w.addProductTimes)
	ctx.Step(`^I add product "([^"]*)"$`, w.addProduct)
	ctx.Step(`^I set the quantity of product "([^"]*)" to (\d+)$`, w.setQuantity)
	ctx.Step(`^I remove product "([^"]*)"$`, w.removeProduct)
	ctx.Step(`^I bill the sale to "([^"]*)"$`, w.billTo)
	ctx.Step(`^I check out$`, w.checkOut)
	ctx.Step(`^I reload the catalog$`, w.reloadCatalog)
	ctx.Step(`^the backend changes the price of product "([^"]*)" to (\d+(?:\.\d+)?)$`, w.backendChangesPrice)
	ctx.Step(`^the backend stock of product "([^"]*)" drops to (\d+)$`, w.backendStockDrops)
	ctx.Step(`^I type "([^"]*)", "([^"]*)" and "([^"]*)" into the search box$`, w.typeQueries)

	// Then
	ctx.Step(`^the request fails with status (\d+) and message "([^"]*)"$`, w.requestFails)
	ctx.Step(`^the response warns "([^"]*)"$`, w.responseWarns)
	ctx.Step(`^the cart holds (\d+) of product "([^"]*)"$`, w.cartHolds)
	ctx.Step(`^the cart does not hold product "([^"]*)"$`, w.cartLacks)
	ctx.Step(`^the cart is empty$`, w.cartEmpty)
	ctx.Step(`^the cart total is "([^"]*)"$`, w.cartTotal)
	ctx.Step(`^the sale completes with message "([^"]*)"$`, w.saleCompletes)
	ctx.Step(`^the billing email is cleared$`, w.billingCleared)
	ctx.Step(`^the catalog was loaded (\d+) times$`, w.catalogLoaded)
	ctx.Step(`^the catalog shows stock (\d+) for product "([^"]*)"$`, w.catalogShowsStock)
	ctx.Step(`^the backend received (\d+) sale requests$`, w.backendSales)
	ctx.Step(`^the backend recorded a sale billed to "([^"]*)"$`, w.saleBilledTo)
	ctx.Step(`^the search settles on "([^"]*)" with (\d+) results?$`, w.searchSettles)
	ctx.Step(`^the search summary reads "([^"]*)"$`, w.searchSummary)
	ctx.Step(`^I am redirected to "([^"]*)"$`, w.redirectedTo)
	ctx.Step(`^my workspace is closed$`, w.workspaceClosed)
}

func TestSaleFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeSaleScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
