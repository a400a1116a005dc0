// Package config loads console settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"MiniStoreConsole/internal/backend"
)

const (
	envPrefix         = "CONSOLE"
	minSessionSecret  = 32
	defaultBackendURL = "http://localhost:5000"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"3000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	SessionSecret string        `envconfig:"SESSION_SECRET"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"48h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`

	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	MetricsToken   string `envconfig:"METRICS_TOKEN"`

	SearchDebounce  time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"300ms"`
	NotificationTTL time.Duration `envconfig:"NOTIFICATION_TTL" default:"4s"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`

	SignInLimit       int           `envconfig:"SIGNIN_LIMIT" default:"5"`
	SignInLimitWindow time.Duration `envconfig:"SIGNIN_LIMIT_WINDOW" default:"1m"`

	Backend Backend `envconfig:"BACKEND"`
}

// Backend holds the REST endpoints of the retail backend. Any endpoint left empty
// is derived from URL.
type Backend struct {
	URL string `envconfig:"URL"`

	Catalog        string `envconfig:"CATALOG"`
	Sell           string `envconfig:"SELL"`
	SalesSummary   string `envconfig:"SALES_SUMMARY"`
	Products       string `envconfig:"PRODUCTS"`
	AllUsers       string `envconfig:"ALL_USERS"`
	PendingUsers   string `envconfig:"PENDING_USERS"`
	ApproveUser    string `envconfig:"APPROVE_USER"`
	RejectUser     string `envconfig:"REJECT_USER"`
	SignIn         string `envconfig:"SIGNIN"`
	SignUpAdmin    string `envconfig:"SIGNUP_ADMIN"`
	SignUpEmployee string `envconfig:"SIGNUP_EMPLOYEE"`
}

var ErrInvalid = errors.New("invalid config")

// Load reads CONSOLE_* variables, fills derived endpoints and validates the result.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	c.Backend = c.Backend.WithDefaults()

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if len(c.SessionSecret) < minSessionSecret {
		return fmt.Errorf("%w: %s_SESSION_SECRET must be at least %d chars", ErrInvalid, envPrefix, minSessionSecret)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: session ttl must be positive", ErrInvalid)
	}
	if c.SearchDebounce < 0 || c.NotificationTTL < 0 || c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalid)
	}

	for name, raw := range c.Backend.endpoints() {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: backend %s endpoint %q is not an absolute url", ErrInvalid, name, raw)
		}
	}
	return nil
}

// WithDefaults derives every empty endpoint from the base URL using the
// backend's conventional route names.
func (b Backend) WithDefaults() Backend {
	if b.URL == "" {
		b.URL = defaultBackendURL
	}
	base := strings.TrimRight(b.URL, "/")

	fill := func(v *string, path string) {
		if *v == "" {
			*v = base + path
		}
	}

	fill(&b.Catalog, "/api/employee/allproducts")
	fill(&b.Sell, "/api/employee/sell")
	fill(&b.SalesSummary, "/api/employee/salessummary")
	fill(&b.Products, "/api/admin/products")
	fill(&b.AllUsers, "/api/admin/allusers")
	fill(&b.PendingUsers, "/api/admin/pendingusers")
	fill(&b.ApproveUser, "/api/admin/approve")
	fill(&b.RejectUser, "/api/admin/reject")
	fill(&b.SignIn, "/api/auth/signin")
	fill(&b.SignUpAdmin, "/api/auth/signup/admin")
	fill(&b.SignUpEmployee, "/api/auth/signup/employee")

	return b
}

// Endpoints converts the settings into the client's endpoint set.
func (b Backend) Endpoints() backend.Endpoints {
	b = b.WithDefaults()
	return backend.Endpoints{
		Base:           strings.TrimRight(b.URL, "/"),
		Catalog:        b.Catalog,
		Sell:           b.Sell,
		SalesSummary:   b.SalesSummary,
		Products:       b.Products,
		AllUsers:       b.AllUsers,
		PendingUsers:   b.PendingUsers,
		ApproveUser:    b.ApproveUser,
		RejectUser:     b.RejectUser,
		SignIn:         b.SignIn,
		SignUpAdmin:    b.SignUpAdmin,
		SignUpEmployee: b.SignUpEmployee,
	}
}

func (b Backend) endpoints() map[string]string {
	return map[string]string{
		"catalog":         b.Catalog,
		"sell":            b.Sell,
		"sales_summary":   b.SalesSummary,
		"products":        b.Products,
		"all_users":       b.AllUsers,
		"pending_users":   b.PendingUsers,
		"approve_user":    b.ApproveUser,
		"reject_user":     b.RejectUser,
		"signin":          b.SignIn,
		"signup_admin":    b.SignUpAdmin,
		"signup_employee": b.SignUpEmployee,
	}
}
