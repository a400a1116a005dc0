package console

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/session"
	"MiniStoreConsole/pkg/kit"
)

type signInResp struct {
	Message  string       `json:"message"`
	Email    string       `json:"email"`
	Role     session.Role `json:"role"`
	Redirect string       `json:"redirect"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var form SignInForm
	if err := kit.DecodeJSON(w, r, &form); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req, err := form.Request()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	resp, err := s.deps.Backend.SignIn(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, backend.MessageOr(err, "Sign in failed"))
		return
	}
	if resp.Token == "" {
		s.log.Warn("sign-in answer carried no token", zap.String("email", req.Email))
		kit.WriteError(w, r, http.StatusBadGateway, "Sign in failed", nil)
		return
	}

	sess := &session.Session{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Role:         session.ParseRole(resp.Role),
		OrgCode:      req.CompanyCode,
		ExpiresAt:    s.sessionExpiry(resp.Token),
		BackendToken: resp.Token,
	}

	if _, err := s.deps.Spaces.Create(sess); err != nil {
		s.fail(w, r, err, "")
		return
	}

	tok, err := s.deps.Tokens.New(sess)
	if err != nil {
		s.deps.Spaces.Drop(sess.ID)
		s.log.Error("session token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	s.setCookie(w, tok, sess.ExpiresAt)

	kit.WriteJSON(w, http.StatusOK, signInResp{
		Message:  or(resp.Message, "Login successful"),
		Email:    sess.Email,
		Role:     sess.Role,
		Redirect: sess.Role.Home(),
	})
}

// sessionExpiry bounds the console session by the backend token's own expiry.
func (s *Server) sessionExpiry(backendToken string) time.Time {
	exp := s.deps.Now().Add(s.deps.SessionTTL)
	if bexp, ok := session.BackendExpiry(backendToken); ok && bexp.Before(exp) {
		exp = bexp
	}
	return exp
}

type messageResp struct {
	Message string `json:"message"`
}

func (s *Server) handleSignUpAdmin(w http.ResponseWriter, r *http.Request) {
	var form AdminSignUpForm
	if err := kit.DecodeJSON(w, r, &form); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req, err := form.Request()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	msg, err := s.deps.Backend.SignUpAdmin(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, backend.MessageOr(err, "Sign up failed"))
		return
	}
	kit.WriteJSON(w, http.StatusCreated, messageResp{Message: or(msg, "Sign up successful")})
}

func (s *Server) handleSignUpEmployee(w http.ResponseWriter, r *http.Request) {
	var form EmployeeSignUpForm
	if err := kit.DecodeJSON(w, r, &form); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req, err := form.Request()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	msg, err := s.deps.Backend.SignUpEmployee(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, backend.MessageOr(err, "Sign up failed"))
		return
	}
	kit.WriteJSON(w, http.StatusCreated, messageResp{Message: or(msg, "Sign up successful")})
}

// handleSignOut always succeeds; an unknown or stale cookie is simply cleared.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		if claims, err := s.deps.Tokens.Parse(c.Value); err == nil {
			s.deps.Spaces.Drop(claims.ID)
		}
	}
	s.clearCookie(w)
	kit.WriteJSON(w, http.StatusOK, map[string]string{"redirect": signInPath})
}

type sessionResp struct {
	Email     string       `json:"email"`
	Role      session.Role `json:"role"`
	OrgCode   string       `json:"org_code,omitempty"`
	ExpiresAt time.Time    `json:"expires_at"`
	Home      string       `json:"home"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	kit.WriteJSON(w, http.StatusOK, sessionResp{
		Email:     sess.Email,
		Role:      sess.Role,
		OrgCode:   sess.OrgCode,
		ExpiresAt: sess.ExpiresAt,
		Home:      sess.Role.Home(),
	})
}
