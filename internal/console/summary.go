package console

import (
	"context"
	"strings"
	"time"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/money"
)

const dateLayout = "2006-01-02"

type SummaryClient interface {
	SalesSummary(ctx context.Context, date, email string) ([]backend.SummaryRow, error)
}

type SummaryRowView struct {
	Date         string `json:"date"`
	TotalCents   int64  `json:"total_cents"`
	Total        string `json:"total"`
	Count        int    `json:"count"`
	AverageCents int64  `json:"average_cents"`
}

type SummaryView struct {
	Date         string           `json:"date"`
	Email        string           `json:"email,omitempty"`
	Rows         []SummaryRowView `json:"rows"`
	RevenueCents int64            `json:"revenue_cents"`
	Revenue      string           `json:"revenue"`
	Sales        int              `json:"sales"`
	AverageCents int64            `json:"average_cents"`
	Average      string           `json:"average"`
}

// Summary fetches the sales summary for date, today when empty. email narrows
// it to one employee; the backend ignores it for non-admins.
func Summary(ctx context.Context, c SummaryClient, date, email string, now time.Time) (SummaryView, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = now.Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return SummaryView{}, backend.Invalid("date", "Date must be YYYY-MM-DD")
	}

	email = strings.TrimSpace(email)
	if email != "" {
		var err error
		if email, err = parseEmail(email); err != nil {
			return SummaryView{}, err
		}
	}

	rows, err := c.SalesSummary(ctx, date, email)
	if err != nil {
		return SummaryView{}, err
	}

	v := SummaryView{Date: date, Email: email, Rows: make([]SummaryRowView, 0, len(rows))}
	for _, r := range rows {
		v.Rows = append(v.Rows, SummaryRowView{
			Date:         r.Date,
			TotalCents:   r.TotalAmountCents,
			Total:        money.Format(r.TotalAmountCents),
			Count:        r.Count,
			AverageCents: average(r.TotalAmountCents, r.Count),
		})
		v.RevenueCents += r.TotalAmountCents
		v.Sales += r.Count
	}
	v.AverageCents = average(v.RevenueCents, v.Sales)
	v.Revenue = money.Format(v.RevenueCents)
	v.Average = money.Format(v.AverageCents)
	return v, nil
}

func average(total int64, n int) int64 {
	if n <= 0 {
		return 0
	}
	return total / int64(n)
}
