package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Catalog fetches the employee product list.
func (c *Client) Catalog(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, call{method: http.MethodGet, url: c.ep.Catalog, out: &out}); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}

// Sell submits one sale. The backend validates stock again and answers with
// the authoritative total.
func (c *Client) Sell(ctx context.Context, req SaleRequest) (SaleReceipt, error) {
	var resp struct {
		Total float64 `json:"total"`
	}
	if err := c.do(ctx, call{method: http.MethodPost, url: c.ep.Sell, body: req, out: &resp}); err != nil {
		return SaleReceipt{}, err
	}
	return SaleReceipt{TotalCents: ToCents(resp.Total)}, nil
}

// SalesSummary returns per-day totals for date (YYYY-MM-DD), optionally
// narrowed to one employee. A body that is not an array yields no rows.
func (c *Client) SalesSummary(ctx context.Context, date, email string) ([]SummaryRow, error) {
	q := url.Values{}
	q.Set("date", date)
	if email != "" {
		q.Set("email", email)
	}

	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, url: withQuery(c.ep.SalesSummary, q), out: &raw}); err != nil {
		return nil, err
	}

	rows := []SummaryRow{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return rows, nil
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func withQuery(raw string, q url.Values) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw + "?" + q.Encode()
	}
	merged := u.Query()
	for k, vs := range q {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()
	return u.String()
}
