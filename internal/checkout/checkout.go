// Package checkout turns the cart into one submitted sale and reconciles the
// console afterwards.
package checkout

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"

	"go.uber.org/zap"

	"MiniStoreConsole/internal/backend"
	"MiniStoreConsole/internal/money"
	"MiniStoreConsole/internal/notify"
)

type State string

const (
	Idle       State = "idle"
	Submitting State = "submitting"
	Settled    State = "settled"
	Failed     State = "failed"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrBusy      = errors.New("sale already in progress")
)

const (
	msgEmptyCart  = "Cart is empty"
	msgSaleFailed = "Sale failed"
	msgSaleError  = "Error processing sale"
)

type Cart interface {
	Items() []backend.SaleItem
	Clear()
}

type Seller interface {
	Sell(ctx context.Context, req backend.SaleRequest) (backend.SaleReceipt, error)
}

// Reloader refreshes the catalog after a settled sale.
type Reloader interface {
	Reload(ctx context.Context) error
}

type Outcome struct {
	State      State  `json:"state"`
	TotalCents int64  `json:"total_cents,omitempty"`
	Message    string `json:"message"`

	// ReloadErr is the catalog refresh failure after a settled sale. The sale
	// stands regardless.
	ReloadErr error `json:"-"`
}

type Deps struct {
	Cart     Cart
	Seller   Seller
	Reloader Reloader
	Notifier notify.Notifier
	Log      *zap.Logger

	// Observe is told "settled", "failed" or "rejected_locally" per Submit call.
	Observe func(outcome string)
}

type Orchestrator struct {
	deps Deps

	mu     sync.Mutex
	state  State
	busy   bool
	seq    uint64
	billTo string
}

func New(deps Deps) *Orchestrator {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Orchestrator{deps: deps, state: Idle}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

func (o *Orchestrator) SetBillTo(email string) {
	o.mu.Lock()
	o.billTo = strings.TrimSpace(email)
	o.mu.Unlock()
}

func (o *Orchestrator) BillTo() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.billTo
}

// Submit sends the cart as one sale. Only one submission runs at a time; an
// empty cart or a malformed billing email fails before any request is made.
func (o *Orchestrator) Submit(ctx context.Context) (Outcome, error) {
	req, seq, err := o.begin()
	if err != nil {
		return Outcome{State: o.State(), Message: err.Error()}, err
	}

	receipt, err := o.deps.Seller.Sell(ctx, req)
	if err != nil {
		return o.fail(seq, err), err
	}
	return o.settle(ctx, seq, receipt), nil
}

func (o *Orchestrator) begin() (backend.SaleRequest, uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy {
		return backend.SaleRequest{}, 0, ErrBusy
	}
	items := o.deps.Cart.Items()
	if len(items) == 0 {
		o.notify(notify.Error, msgEmptyCart)
		o.observe("rejected_locally")
		return backend.SaleRequest{}, 0, ErrEmptyCart
	}

	var billTo *string
	if o.billTo != "" {
		addr, err := mail.ParseAddress(o.billTo)
		if err != nil || addr.Address != o.billTo {
			verr := backend.Invalid("billToEmail", "Invalid billing email")
			o.notify(notify.Error, verr.Message)
			o.observe("rejected_locally")
			return backend.SaleRequest{}, 0, verr
		}
		v := o.billTo
		billTo = &v
	}

	o.busy = true
	o.seq++
	o.state = Submitting

	return backend.SaleRequest{Items: items, BillToEmail: billTo}, o.seq, nil
}

func (o *Orchestrator) fail(seq uint64, err error) Outcome {
	msg := msgSaleFailed
	if errors.Is(err, backend.ErrNetwork) {
		msg = msgSaleError
	}
	msg = backend.MessageOr(err, msg)

	o.deps.Log.Warn("sale failed", zap.Error(err))
	o.notify(notify.Error, msg)
	o.observe("failed")

	o.finish(seq)
	return Outcome{State: Failed, Message: msg}
}

// settle runs the success steps in order: notify, clear cart, clear billing
// email, reload catalog. A reload failure does not undo the earlier steps.
func (o *Orchestrator) settle(ctx context.Context, seq uint64, receipt backend.SaleReceipt) Outcome {
	msg := "Sale Complete! Total: " + money.Format(receipt.TotalCents)
	o.notify(notify.Success, msg)

	o.deps.Cart.Clear()

	o.mu.Lock()
	o.billTo = ""
	o.busy = false
	if o.seq == seq {
		o.state = Settled
	}
	o.mu.Unlock()

	o.observe("settled")
	o.deps.Log.Info("sale settled", zap.Int64("total_cents", receipt.TotalCents))

	out := Outcome{State: Settled, TotalCents: receipt.TotalCents, Message: msg}
	if o.deps.Reloader != nil {
		if err := o.deps.Reloader.Reload(ctx); err != nil {
			o.deps.Log.Warn("catalog reload after sale failed", zap.Error(err))
			out.ReloadErr = err
		}
	}

	o.finish(seq)
	return out
}

func (o *Orchestrator) finish(seq uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.seq == seq {
		o.busy = false
		o.state = Idle
	}
}

func (o *Orchestrator) notify(kind notify.Kind, msg string) {
	if o.deps.Notifier != nil {
		o.deps.Notifier.Notify(kind, msg)
	}
}

func (o *Orchestrator) observe(outcome string) {
	if o.deps.Observe != nil {
		o.deps.Observe(outcome)
	}
}
