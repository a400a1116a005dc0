package console

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"MiniStoreConsole/internal/cart"
	"MiniStoreConsole/internal/checkout"
	"MiniStoreConsole/pkg/kit"
)

func (s *Server) handleDeskView(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, workspaceFrom(r).Sell.View())
}

// handleInitialize loads the catalog once when the sale screen opens.
func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	desk := workspaceFrom(r).Sell
	if desk.Initialized() {
		kit.WriteJSON(w, http.StatusOK, desk.View())
		return
	}
	if err := desk.Initialize(r.Context()); err != nil {
		s.fail(w, r, err, "Failed to load products")
		return
	}
	kit.WriteJSON(w, http.StatusOK, desk.View())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	desk := workspaceFrom(r).Sell
	if err := desk.Reload(r.Context()); err != nil {
		s.fail(w, r, err, "Failed to load products")
		return
	}
	kit.WriteJSON(w, http.StatusOK, desk.View())
}

func (s *Server) handleAllProducts(w http.ResponseWriter, r *http.Request) {
	desk := workspaceFrom(r).Sell
	if !desk.Initialized() {
		if err := desk.Initialize(r.Context()); err != nil {
			s.fail(w, r, err, "Failed to load products")
			return
		}
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"products": desk.Products()})
}

func (s *Server) handleSearchView(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, workspaceFrom(r).Sell.SearchView())
}

type searchReq struct {
	Query string `json:"query"`
}

// handleSearch records a keystroke. The answer shows the pending state; the
// evaluated results arrive on a later GET once the debounce fires.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	desk := workspaceFrom(r).Sell
	desk.Query(req.Query)
	kit.WriteJSON(w, http.StatusAccepted, desk.SearchView())
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	desk := workspaceFrom(r).Sell
	if err := desk.Add(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, cartMessage(err))
		return
	}
	kit.WriteJSON(w, http.StatusOK, desk.View())
}

type quantityReq struct {
	Quantity int `json:"quantity"`
}

// handleCartSet applies a quantity edit. A clamped edit still succeeds and
// carries a warning.
func (s *Server) handleCartSet(w http.ResponseWriter, r *http.Request) {
	var req quantityReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	desk := workspaceFrom(r).Sell
	err := desk.SetQuantity(chi.URLParam(r, "id"), req.Quantity)
	switch {
	case errors.Is(err, cart.ErrStockExceeded):
		v := desk.View()
		v.Warning = "Cannot exceed available stock"
		kit.WriteJSON(w, http.StatusOK, v)
	case err != nil:
		s.fail(w, r, err, cartMessage(err))
	default:
		kit.WriteJSON(w, http.StatusOK, desk.View())
	}
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	desk := workspaceFrom(r).Sell
	desk.Remove(chi.URLParam(r, "id"))
	kit.WriteJSON(w, http.StatusOK, desk.View())
}

type billToReq struct {
	Email string `json:"email"`
}

func (s *Server) handleBillTo(w http.ResponseWriter, r *http.Request) {
	var req billToReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	desk := workspaceFrom(r).Sell
	desk.SetBillTo(req.Email)
	kit.WriteJSON(w, http.StatusOK, desk.View())
}

type checkoutResp struct {
	Outcome     checkout.Outcome `json:"outcome"`
	ReloadError string           `json:"reload_error,omitempty"`
	View        DeskView         `json:"view"`
}

// handleCheckout submits the cart. The sale runs detached from the client
// connection so a dropped request cannot stop reconciliation half way.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	desk := workspaceFrom(r).Sell

	out, err := desk.CheckoutNow(context.WithoutCancel(r.Context()))
	if err != nil {
		msg := ""
		if out.State == checkout.Failed {
			msg = out.Message
		}
		s.fail(w, r, err, msg)
		return
	}

	resp := checkoutResp{Outcome: out, View: desk.View()}
	if out.ReloadErr != nil {
		resp.ReloadError = "Failed to load products"
	}
	kit.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)

	email := ""
	if ws.Session.IsAdmin() {
		email = r.URL.Query().Get("email")
	}

	v, err := Summary(r.Context(), ws.Client, r.URL.Query().Get("date"), email, s.deps.Now())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	kit.WriteJSON(w, http.StatusOK, v)
}

func cartMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnknownProduct):
		return "Product not found"
	case errors.Is(err, cart.ErrOutOfStock):
		return "Product is out of stock"
	case errors.Is(err, cart.ErrStockExceeded):
		return "Cannot add more than available stock"
	case errors.Is(err, cart.ErrLineNotFound):
		return "Product not in cart"
	}
	return ""
}
