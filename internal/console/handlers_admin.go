package console

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/pkg/kit"
)

type productsResp struct {
	Products []ProductView `json:"products"`
	Message  string        `json:"message,omitempty"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := workspaceFrom(r).Admin.Overview(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"products":      productViews(ov.Products),
		"pending_users": ov.PendingUsers,
		"low_stock":     ov.LowStock,
		"out_of_stock":  ov.OutOfStock,
	})
}

func (s *Server) handleAdminProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := workspaceFrom(r).Admin.Products(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err, "Failed to load products")
		return
	}
	kit.WriteJSON(w, http.StatusOK, productsResp{Products: productViews(ps)})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := kit.DecodeJSON(w, r, &form); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	ps, err := workspaceFrom(r).Admin.Create(r.Context(), form)
	if err != nil {
		s.fail(w, r, err, backend.MessageOr(err, ""))
		return
	}
	kit.WriteJSON(w, http.StatusCreated, productsResp{Products: productViews(ps), Message: "Product added"})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := kit.DecodeJSON(w, r, &form); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	ps, err := workspaceFrom(r).Admin.Update(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		s.fail(w, r, err, backend.MessageOr(err, ""))
		return
	}
	kit.WriteJSON(w, http.StatusOK, productsResp{Products: productViews(ps), Message: "Product updated"})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	ps, err := workspaceFrom(r).Admin.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, backend.MessageOr(err, ""))
		return
	}
	kit.WriteJSON(w, http.StatusOK, productsResp{Products: productViews(ps), Message: "Product deleted"})
}

func (s *Server) handleAllUsers(w http.ResponseWriter, r *http.Request) {
	us, err := workspaceFrom(r).Admin.AllUsers(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"users": us})
}

func (s *Server) handlePendingUsers(w http.ResponseWriter, r *http.Request) {
	us, err := workspaceFrom(r).Admin.PendingUsers(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"users": us})
}

type decisionReq struct {
	Email string `json:"email"`
}

func (s *Server) handleDecision(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req decisionReq
		if err := kit.DecodeJSON(w, r, &req); err != nil {
			kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
			return
		}

		admin := workspaceFrom(r).Admin
		decide := admin.Reject
		if approve {
			decide = admin.Approve
		}

		msg, err := decide(r.Context(), req.Email)
		if err != nil {
			s.fail(w, r, err, backend.MessageOr(err, ""))
			return
		}
		kit.WriteJSON(w, http.StatusOK, messageResp{Message: msg})
	}
}
