package console

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/cart"
	"MiniStoreConsole/internal/checkout"
	"MiniStoreConsole/internal/session"
	"MiniStoreConsole/pkg/kit"
)

const (
	CookieName     = "ministore_session"
	signInPath     = "/signin"
	readyTimeout   = 2 * time.Second
	defaultLimit   = 5
	defaultWindow  = time.Minute
	defaultSession = 48 * time.Hour
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	// Backend is the anonymous client used for sign-in, sign-up and readiness.
	Backend *backend.Client
	Spaces  *Registry
	Tokens  *session.TokenMaker

	SessionTTL   time.Duration
	CookieSecure bool

	SignInLimit  int
	SignInWindow time.Duration

	Now func() time.Time
}

type Server struct {
	deps Deps
	log  *zap.Logger
}

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = defaultSession
	}
	if deps.SignInWindow <= 0 {
		deps.SignInLimit, deps.SignInWindow = defaultLimit, defaultWindow
	}

	s := &Server{deps: deps, log: kit.OrNop(httpDeps.Log)}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", s.readyz)

	signInLimiter := kit.NewIPRateLimiter(deps.SignInLimit, deps.SignInWindow)
	r.With(signInLimiter.Middleware).Post("/signin", s.handleSignIn)
	r.Post("/signup/admin", s.handleSignUpAdmin)
	r.Post("/signup/employee", s.handleSignUpEmployee)
	r.Post("/signout", s.handleSignOut)

	r.Group(func(pr chi.Router) {
		pr.Use(s.authenticate)

		pr.Get("/session", s.handleSession)

		pr.Route("/sells", func(sr chi.Router) {
			sr.Get("/", s.handleDeskView)
			sr.Post("/initialize", s.handleInitialize)
			sr.Post("/reload", s.handleReload)
			sr.Get("/products", s.handleAllProducts)
			sr.Get("/search", s.handleSearchView)
			sr.Post("/search", s.handleSearch)
			sr.Post("/cart/{id}", s.handleCartAdd)
			sr.Put("/cart/{id}", s.handleCartSet)
			sr.Delete("/cart/{id}", s.handleCartRemove)
			sr.Put("/billto", s.handleBillTo)
			sr.Post("/checkout", s.handleCheckout)
			sr.Get("/summary", s.handleSummary)
		})

		pr.Route("/admin", func(ar chi.Router) {
			ar.Use(requireAdmin)
			ar.Get("/overview", s.handleOverview)
			ar.Get("/products", s.handleAdminProducts)
			ar.Post("/products", s.handleCreateProduct)
			ar.Put("/products/{id}", s.handleUpdateProduct)
			ar.Delete("/products/{id}", s.handleDeleteProduct)
			ar.Get("/users", s.handleAllUsers)
			ar.Get("/users/pending", s.handlePendingUsers)
			ar.Post("/users/approve", s.handleDecision(true))
			ar.Post("/users/reject", s.handleDecision(false))
			ar.Get("/summary", s.handleSummary)
		})
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(trackSession)
	r.Use(kit.Logging(deps.Log, sessionField))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

// logSlot lets authenticate, deep in the chain, hand the session id back to
// the request logger.
type logSlot struct{ sessionID string }

type logSlotKey struct{}

func trackSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), logSlotKey{}, &logSlot{})))
	})
}

func sessionField(r *http.Request) zap.Field {
	if slot, ok := r.Context().Value(logSlotKey{}).(*logSlot); ok && slot.sessionID != "" {
		return zap.String("session_id", slot.sessionID)
	}
	return zap.Skip()
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.deps.Backend.Ping(ctx); err != nil {
		s.log.Warn("readyz failed: backend", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "backend not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type wsKey struct{}

func workspaceFrom(r *http.Request) *Workspace {
	ws, _ := r.Context().Value(wsKey{}).(*Workspace)
	return ws
}

// authenticate resolves the session cookie to a live workspace.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(CookieName)
		if err != nil || c.Value == "" {
			s.redirectToSignIn(w, r, "not signed in")
			return
		}

		claims, err := s.deps.Tokens.Parse(c.Value)
		if err != nil {
			s.redirectToSignIn(w, r, "invalid session")
			return
		}

		ws, ok := s.deps.Spaces.Get(claims.ID)
		if !ok {
			s.redirectToSignIn(w, r, "session expired")
			return
		}

		if slot, ok := r.Context().Value(logSlotKey{}).(*logSlot); ok {
			slot.sessionID = ws.Session.ID
		}

		ctx := session.WithContext(r.Context(), ws.Session)
		ctx = context.WithValue(ctx, wsKey{}, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r)
		if ws == nil || ws.Admin == nil {
			kit.WriteError(w, r, http.StatusForbidden, "admins only", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type redirectResp struct {
	Error     string `json:"error"`
	Redirect  string `json:"redirect"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) redirectToSignIn(w http.ResponseWriter, r *http.Request, msg string) {
	s.clearCookie(w)
	kit.WriteJSON(w, http.StatusUnauthorized, redirectResp{
		Error:     msg,
		Redirect:  signInPath,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

func (s *Server) setCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.deps.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.deps.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// fail maps err onto a response. An expired backend session also closes the
// operator's workspace. msg overrides the error text when set.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var (
		ve *backend.ValidationError
		re *backend.RejectedError
	)

	switch {
	case errors.Is(err, backend.ErrAuthExpired):
		if ws := workspaceFrom(r); ws != nil {
			s.deps.Spaces.Drop(ws.Session.ID)
		}
		s.redirectToSignIn(w, r, "session expired")
		return

	case errors.As(err, &ve):
		kit.WriteError(w, r, http.StatusBadRequest, or(msg, ve.Message), map[string]any{"field": ve.Field})

	case errors.As(err, &re):
		status := re.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		kit.WriteError(w, r, status, or(msg, backend.MessageOr(err, "request rejected")), map[string]any{"backend_status": re.Status})

	case errors.Is(err, backend.ErrNetwork):
		kit.WriteError(w, r, http.StatusServiceUnavailable, or(msg, "backend unreachable"), nil)

	case errors.Is(err, backend.ErrBadResponse):
		kit.WriteError(w, r, http.StatusBadGateway, or(msg, "bad backend response"), nil)

	case errors.Is(err, checkout.ErrEmptyCart):
		kit.WriteError(w, r, http.StatusBadRequest, or(msg, "Cart is empty"), nil)

	case errors.Is(err, checkout.ErrBusy), errors.Is(err, ErrDecisionPending):
		kit.WriteError(w, r, http.StatusConflict, or(msg, err.Error()), nil)

	case errors.Is(err, cart.ErrOutOfStock), errors.Is(err, cart.ErrStockExceeded):
		kit.WriteError(w, r, http.StatusConflict, or(msg, err.Error()), nil)

	case errors.Is(err, ErrUnknownProduct), errors.Is(err, cart.ErrLineNotFound):
		kit.WriteError(w, r, http.StatusNotFound, or(msg, err.Error()), nil)

	case errors.Is(err, context.Canceled):
		// client went away
		return

	default:
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func or(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
