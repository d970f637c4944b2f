// Package checkout turns a confirmed payment into an order.
//
// The synchronous checkout call and the payment webhook both feed the same
// pipeline: verify the payment with the processor, persist the order with
// its items, record the payment, clear the cart, notify. The provider
// transaction id is unique on both orders and payments, so whichever entry
// point arrives second, or a redelivered webhook, resolves to a no-op, and an
// attempt that crashed halfway is completed by the next one.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/MikeMC777/cafeteria-api/internal/cart"
	"github.com/MikeMC777/cafeteria-api/internal/events"
	"github.com/MikeMC777/cafeteria-api/internal/logging"
	"github.com/MikeMC777/cafeteria-api/internal/metrics"
	"github.com/MikeMC777/cafeteria-api/internal/money"
	"github.com/MikeMC777/cafeteria-api/internal/order"
	"github.com/MikeMC777/cafeteria-api/internal/payment"
	"github.com/MikeMC777/cafeteria-api/internal/payprovider"
)

var (
	ErrInvalidRequest      = errors.New("invalid checkout request")
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	ErrAmountMismatch      = errors.New("order total does not match confirmed amount")
	ErrEmptyCart           = errors.New("cart is empty")
)

// Carts is the slice of the cart service the reconciler needs.
type Carts interface {
	Lines(ctx context.Context, scope cart.Scope, owner string) ([]cart.Line, error)
	Clear(ctx context.Context, scope cart.Scope, owner string) error
}

// Notifier sends the order confirmation with its receipt.
type Notifier interface {
	OrderConfirmed(ctx context.Context, o *order.Order, items []order.Item) error
}

type Reconciler struct {
	gateway  payprovider.Gateway
	orders   order.Repository
	payments payment.Repository
	carts    Carts
	notifier Notifier
	events   events.Publisher
	metrics  *metrics.Metrics
	currency string
}

type Option func(*Reconciler)

func WithNotifier(n Notifier) Option          { return func(r *Reconciler) { r.notifier = n } }
func WithPublisher(p events.Publisher) Option { return func(r *Reconciler) { r.events = p } }
func WithMetrics(m *metrics.Metrics) Option   { return func(r *Reconciler) { r.metrics = m } }

// WithCurrency sets the currency for intents created without one.
func WithCurrency(c string) Option { return func(r *Reconciler) { r.currency = strings.ToLower(c) } }

func NewReconciler(gw payprovider.Gateway, orders order.Repository, payments payment.Repository, carts Carts, opts ...Option) *Reconciler {
	r := &Reconciler{
		gateway:  gw,
		orders:   orders,
		payments: payments,
		carts:    carts,
		events:   events.Noop{},
		currency: "mxn",
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// CreateIntent opens a card payment for amount minor units. The user id and
// shipping address travel as metadata so the webhook can find them.
func (r *Reconciler) CreateIntent(ctx context.Context, userID string, req IntentRequest) (*IntentResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if userID == "" {
		userID = req.UserID
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = r.currency
	}
	meta := map[string]string{"user_id": userID}
	if len(req.ShippingAddress) > 0 {
		// processor metadata values are capped at 500 chars
		if s := string(req.ShippingAddress); len(s) <= 500 {
			meta["shipping_address"] = s
		} else {
			log.Warn().Str("user_id", userID).Msg("[checkout] shipping address too long for intent metadata")
		}
	}
	in, err := r.gateway.CreateIntent(ctx, payprovider.CreateParams{
		Amount:   req.Amount.Int64(),
		Currency: currency,
		Metadata: meta,
	})
	if err != nil {
		return nil, err
	}
	return &IntentResponse{ClientSecret: in.ClientSecret, PaymentIntentID: in.ID}, nil
}

// attempt carries one reconciliation through the pipeline.
type attempt struct {
	entry    string
	userID   string
	intent   *payprovider.Intent
	currency string
	method   string
	address  json.RawMessage
	// lines builds the order items; only called when no order exists yet.
	lines func(ctx context.Context) ([]order.Item, error)

	stage Stage
	log   zerolog.Logger
}

func (a *attempt) advance(s Stage, orderID string) {
	a.stage = s
	a.log.Info().Str("order_id", orderID).Str("stage", s.String()).Msg("[checkout] stage")
}

// Checkout is the synchronous entry point, called by the client right after
// the processor confirmed the payment.
func (r *Reconciler) Checkout(ctx context.Context, userID string, req Request) (*Result, error) {
	pd, od := req.PaymentData, req.OrderData
	txn := strings.TrimSpace(pd.TransactionID)
	switch {
	case userID == "":
		return nil, fmt.Errorf("%w: user is required", ErrInvalidRequest)
	case txn == "":
		return nil, fmt.Errorf("%w: payment_data.transaction_id is required", ErrInvalidRequest)
	case len(od.Items) == 0:
		return nil, fmt.Errorf("%w: order_data.items is empty", ErrInvalidRequest)
	}
	items := make([]order.Item, 0, len(od.Items))
	for i, in := range od.Items {
		if in.ProductID == "" || in.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d needs product_id and quantity >= 1", ErrInvalidRequest, i)
		}
		items = append(items, order.Item{ProductID: in.ProductID, Quantity: in.Quantity, Price: in.Price.Int64()})
	}

	a := &attempt{
		entry:    EntrySync,
		userID:   userID,
		currency: strings.ToLower(pd.Currency),
		method:   pd.Method,
		address:  od.ShippingAddress,
		lines:    func(context.Context) ([]order.Item, error) { return items, nil },
		log:      log.With().Str("entry", EntrySync).Str("txn", txn).Str("user_id", userID).Logger(),
	}
	intent, err := r.verify(ctx, a, txn)
	if err != nil {
		r.metrics.Checkout(EntrySync, OutcomeRejected)
		return nil, err
	}

	// A claimed total that disagrees with the processor is refused before any
	// write; the items are checked against the processor amount further on.
	for _, claimed := range []*int64{minorPtr(pd.Amount), minorPtr(od.Subtotal)} {
		if claimed != nil && *claimed != intent.Amount {
			r.integrityFault(a, "amount_mismatch", "", *claimed)
			return nil, fmt.Errorf("%w: claimed %d, confirmed %d", ErrAmountMismatch, *claimed, intent.Amount)
		}
	}
	return r.complete(ctx, a)
}

func minorPtr(m *money.Minor) *int64 {
	if m == nil {
		return nil
	}
	v := m.Int64()
	return &v
}

// HandleWebhook is the asynchronous entry point. Only an invalid signature
// is rejected outright; an error return otherwise means the processor
// should redeliver. Faults redelivery cannot fix, a missing user or a cart
// that no longer matches the payment, are acknowledged instead.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload []byte, signature string) (*Result, error) {
	ev, err := r.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return nil, err
	}
	r.metrics.Webhook(ev.Type)
	l := log.With().Str("entry", EntryWebhook).Str("event", ev.ID).Str("type", ev.Type).Logger()

	switch ev.Type {
	case payprovider.EventIntentSucceeded:
	case payprovider.EventIntentFailed:
		if ev.Intent != nil {
			l.Warn().Str("txn", ev.Intent.ID).Str("reason", ev.Intent.FailureReason).Msg("[checkout] payment failed")
		}
		return &Result{Outcome: OutcomeIgnored}, nil
	default:
		l.Debug().Msg("[checkout] event ignored")
		return &Result{Outcome: OutcomeIgnored}, nil
	}
	if ev.Intent == nil || ev.Intent.ID == "" {
		l.Error().Msg("[checkout] succeeded event without payment intent")
		return &Result{Outcome: OutcomeIgnored}, nil
	}

	userID := ev.Intent.Metadata["user_id"]
	if userID == "" {
		// nothing to attach the order to; redelivery cannot fix that
		logging.IntegrityFault("missing_metadata").Str("txn", ev.Intent.ID).Msg("[checkout] intent has no user_id")
		r.metrics.IntegrityFault("missing_metadata")
		return &Result{Outcome: OutcomeIgnored}, nil
	}

	a := &attempt{
		entry:    EntryWebhook,
		userID:   userID,
		currency: strings.ToLower(ev.Intent.Currency),
		method:   ev.Intent.Method,
		log:      l.With().Str("txn", ev.Intent.ID).Str("user_id", userID).Logger(),
	}
	if addr := ev.Intent.Metadata["shipping_address"]; addr != "" && json.Valid([]byte(addr)) {
		a.address = json.RawMessage(addr)
	}
	a.lines = func(ctx context.Context) ([]order.Item, error) {
		lines, err := r.carts.Lines(ctx, cart.User, userID)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		if len(lines) == 0 {
			return nil, ErrEmptyCart
		}
		items := make([]order.Item, 0, len(lines))
		for _, cl := range lines {
			items = append(items, order.Item{ProductID: cl.ProductID, ProductName: cl.ProductName, Quantity: cl.Quantity, Price: cl.ProductPrice})
		}
		return items, nil
	}

	if _, err := r.verify(ctx, a, ev.Intent.ID); err != nil {
		r.metrics.Checkout(EntryWebhook, OutcomeRejected)
		return nil, err
	}
	res, err := r.complete(ctx, a)
	if errors.Is(err, ErrAmountMismatch) {
		// The cart changed after payment. The fault is already logged and
		// counted; every redelivery would fail the same way.
		return &Result{Outcome: OutcomeRejected, Total: ev.Intent.Amount, Currency: a.currency}, nil
	}
	return res, err
}

// verify re-fetches the intent; the caller's word that it succeeded is never enough.
func (r *Reconciler) verify(ctx context.Context, a *attempt, txn string) (*payprovider.Intent, error) {
	a.stage = Initiated
	intent, err := r.gateway.GetIntent(ctx, txn)
	if errors.Is(err, payprovider.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s unknown to processor", ErrPaymentNotConfirmed, txn)
	}
	if err != nil {
		return nil, err
	}
	if !intent.Succeeded() {
		return nil, fmt.Errorf("%w: status %s", ErrPaymentNotConfirmed, intent.Status)
	}
	if owner := intent.Metadata["user_id"]; owner != "" && owner != a.userID {
		return nil, fmt.Errorf("%w: payment belongs to another user", ErrPaymentNotConfirmed)
	}
	if a.currency == "" {
		a.currency = intent.Currency
	}
	if a.method == "" {
		a.method = intent.Method
	}
	a.intent = intent
	a.advance(PaymentVerified, "")
	return intent, nil
}

func (r *Reconciler) integrityFault(a *attempt, kind, orderID string, computed int64) {
	logging.IntegrityFault(kind).
		Str("entry", a.entry).
		Str("txn", a.intent.ID).
		Str("order_id", orderID).
		Int64("computed", computed).
		Int64("confirmed", a.intent.Amount).
		Str("currency", a.currency).
		Msg("[checkout] integrity fault")
	r.metrics.IntegrityFault(kind)
}

// checkItems enforces total == confirmed amount == Σ price × quantity.
func (r *Reconciler) checkItems(a *attempt, items []order.Item) error {
	if a.currency != a.intent.Currency {
		r.integrityFault(a, "currency_mismatch", "", 0)
		return fmt.Errorf("%w: currency %s, confirmed %s", ErrAmountMismatch, a.currency, a.intent.Currency)
	}
	if sum := order.SumItems(items); sum != a.intent.Amount {
		r.integrityFault(a, "amount_mismatch", "", sum)
		return fmt.Errorf("%w: items sum %d, confirmed %d", ErrAmountMismatch, sum, a.intent.Amount)
	}
	return nil
}

func (r *Reconciler) complete(ctx context.Context, a *attempt) (*Result, error) {
	txn := a.intent.ID

	// A recorded payment means an earlier attempt finished the core writes.
	if p, err := r.payments.GetByProviderTxn(ctx, txn); err == nil {
		if p.UserID != a.userID {
			return nil, fmt.Errorf("%w: payment belongs to another user", ErrPaymentNotConfirmed)
		}
		return r.duplicate(a, p), nil
	} else if !errors.Is(err, payment.ErrNotFound) {
		return nil, err
	}

	o, items, resumed, err := r.persistOrder(ctx, a)
	if err != nil {
		r.metrics.Checkout(a.entry, "failed")
		return nil, err
	}

	p := &payment.Payment{
		ID:            uuid.NewString(),
		OrderID:       o.ID,
		UserID:        a.userID,
		ProviderTxnID: txn,
		Amount:        a.intent.Amount,
		Currency:      a.intent.Currency,
		Status:        payment.StatusSucceeded,
		Method:        a.method,
	}
	if a.intent.ReceiptURL != "" {
		u := a.intent.ReceiptURL
		p.ReceiptURL = &u
	}
	if err := r.payments.Create(ctx, p); err != nil {
		if errors.Is(err, payment.ErrDuplicate) {
			r.integrityFault(a, "duplicate_payment", o.ID, o.Total)
			existing, gerr := r.payments.GetByProviderTxn(ctx, txn)
			if gerr != nil {
				return nil, gerr
			}
			return r.duplicate(a, existing), nil
		}
		r.metrics.Checkout(a.entry, "failed")
		return nil, fmt.Errorf("record payment: %w", err)
	}
	a.advance(PaymentPersisted, o.ID)

	res := &Result{OrderID: o.ID, PaymentID: p.ID, Total: o.Total, Currency: o.Currency, Outcome: OutcomeCreated}
	if resumed {
		res.Outcome = OutcomeResumed
	}

	// Past this point nothing rolls back the order.
	if err := r.carts.Clear(ctx, cart.User, a.userID); err != nil {
		a.log.Warn().Err(err).Str("order_id", o.ID).Msg("[checkout] cart not cleared")
		res.Warnings = append(res.Warnings, "cart not cleared")
	} else {
		a.advance(CartCleared, o.ID)
	}

	o.Items = items
	if r.notifier != nil {
		if err := r.notifier.OrderConfirmed(ctx, o, items); err != nil {
			a.log.Error().Err(err).Str("order_id", o.ID).Msg("[checkout] confirmation email failed")
			r.metrics.Notification("failed")
			res.Warnings = append(res.Warnings, "confirmation email not sent")
		} else {
			r.metrics.Notification("sent")
		}
	}
	a.advance(NotificationAttempted, o.ID)

	if err := r.events.Publish(ctx, events.Event{
		Type:       events.OrderPlaced,
		OrderID:    o.ID,
		UserID:     a.userID,
		PaymentID:  p.ID,
		Total:      o.Total,
		Currency:   o.Currency,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		a.log.Warn().Err(err).Str("order_id", o.ID).Msg("[checkout] event not published")
	}

	res.Stage = a.stage.String()
	r.metrics.Checkout(a.entry, res.Outcome)
	return res, nil
}

// persistOrder creates the order with its items, or picks up the order an
// interrupted attempt left behind for the same transaction.
func (r *Reconciler) persistOrder(ctx context.Context, a *attempt) (*order.Order, []order.Item, bool, error) {
	txn := a.intent.ID

	o, items, err := r.orders.GetByProviderTxn(ctx, txn)
	switch {
	case err == nil:
		a.log.Info().Str("order_id", o.ID).Msg("[checkout] resuming existing order")
		if o.UserID != a.userID {
			return nil, nil, false, fmt.Errorf("%w: order belongs to another user", ErrPaymentNotConfirmed)
		}
		if o.Total != a.intent.Amount {
			r.integrityFault(a, "amount_mismatch", o.ID, o.Total)
			return nil, nil, false, fmt.Errorf("%w: order total %d, confirmed %d", ErrAmountMismatch, o.Total, a.intent.Amount)
		}
		a.advance(OrderPersisted, o.ID)
		if len(items) == 0 {
			if items, err = r.buildItems(ctx, a, o.ID); err != nil {
				return nil, nil, false, err
			}
			if _, err := r.orders.AddItems(ctx, o.ID, items); err != nil {
				return nil, nil, false, fmt.Errorf("persist order items: %w", err)
			}
			if items, err = r.orders.GetItems(ctx, o.ID); err != nil {
				return nil, nil, false, err
			}
		}
		a.advance(ItemsPersisted, o.ID)
		return o, items, true, nil
	case !errors.Is(err, order.ErrNotFound):
		return nil, nil, false, err
	}

	o = &order.Order{
		ID:              uuid.NewString(),
		UserID:          a.userID,
		ProviderTxnID:   txn,
		Total:           a.intent.Amount,
		Currency:        a.intent.Currency,
		Status:          order.StatusProcessing,
		PaymentMethod:   a.method,
		ShippingAddress: a.address,
	}
	if items, err = r.buildItems(ctx, a, o.ID); err != nil {
		return nil, nil, false, err
	}
	if err := r.orders.Create(ctx, o, items); err != nil {
		if errors.Is(err, order.ErrTxnExists) {
			// lost a race with the other entry point
			a.log.Info().Msg("[checkout] order created concurrently, resuming")
			return r.persistOrder(ctx, a)
		}
		return nil, nil, false, fmt.Errorf("persist order: %w", err)
	}
	a.advance(OrderPersisted, o.ID)
	a.advance(ItemsPersisted, o.ID)
	return o, items, false, nil
}

func (r *Reconciler) buildItems(ctx context.Context, a *attempt, orderID string) ([]order.Item, error) {
	items, err := a.lines(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.checkItems(a, items); err != nil {
		return nil, err
	}
	out := make([]order.Item, len(items))
	for i, it := range items {
		it.ID = uuid.NewString()
		it.OrderID = orderID
		out[i] = it
	}
	return out, nil
}

func (r *Reconciler) duplicate(a *attempt, p *payment.Payment) *Result {
	a.log.Info().Str("order_id", p.OrderID).Str("payment_id", p.ID).Msg("[checkout] payment already recorded")
	r.metrics.Checkout(a.entry, OutcomeDuplicate)
	return &Result{
		OrderID:   p.OrderID,
		PaymentID: p.ID,
		Total:     p.Amount,
		Currency:  p.Currency,
		Outcome:   OutcomeDuplicate,
		Stage:     a.stage.String(),
	}
}
