// Package cancellation reverses a paid order: refund first, then mark.
package cancellation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MikeMC777/cafeteria-api/internal/events"
	"github.com/MikeMC777/cafeteria-api/internal/metrics"
	"github.com/MikeMC777/cafeteria-api/internal/order"
	"github.com/MikeMC777/cafeteria-api/internal/payment"
	"github.com/MikeMC777/cafeteria-api/internal/payprovider"
)

var (
	ErrInvalidRequest = errors.New("invalid cancellation request")
	ErrNotRefundable  = errors.New("payment is not refundable")
)

// Request swagger:model CancelOrderRequest
type Request struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	UserID    string `json:"user_id,omitempty"`
	Reason    string `json:"cancellation_reason"`
}

// Result swagger:model CancelOrderResult
type Result struct {
	OrderID      string `json:"order_id"`
	PaymentID    string `json:"payment_id"`
	RefundID     string `json:"refund_id,omitempty"`
	RefundAmount int64  `json:"refund_amount,omitempty"`
	// AlreadyCanceled is set when nothing had to be done.
	AlreadyCanceled bool `json:"already_canceled"`
}

type Service struct {
	gateway  payprovider.Gateway
	orders   order.Repository
	payments payment.Repository
	events   events.Publisher
	metrics  *metrics.Metrics
}

func NewService(gw payprovider.Gateway, orders order.Repository, payments payment.Repository, pub events.Publisher, m *metrics.Metrics) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Service{gateway: gw, orders: orders, payments: payments, events: pub, metrics: m}
}

// Cancel refunds the full captured amount and marks payment and order
// canceled. The order is never marked when the refund fails, and a second
// call for a canceled payment issues no refund.
func (s *Service) Cancel(ctx context.Context, userID string, req Request) (*Result, error) {
	if userID == "" || req.OrderID == "" || req.PaymentID == "" {
		return nil, fmt.Errorf("%w: order_id, payment_id and user are required", ErrInvalidRequest)
	}
	l := log.With().Str("order_id", req.OrderID).Str("payment_id", req.PaymentID).Str("user_id", userID).Logger()

	// scoped lookup keeps users off each other's orders
	p, err := s.payments.GetScoped(ctx, req.PaymentID, req.OrderID, userID)
	if err != nil {
		return nil, err
	}
	res := &Result{OrderID: req.OrderID, PaymentID: p.ID}

	switch {
	case p.Status == payment.StatusCanceled:
		l.Info().Msg("[cancel] payment already canceled")
		res.AlreadyCanceled = true
		if p.RefundID != nil {
			res.RefundID = *p.RefundID
		}
		if p.RefundAmount != nil {
			res.RefundAmount = *p.RefundAmount
		}
	case p.Status.Refundable():
		o, _, err := s.orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}
		if o.Status.Terminal() && o.Status != order.StatusCanceled {
			return nil, fmt.Errorf("%w: order is %s", ErrNotRefundable, o.Status)
		}
		rf, err := s.gateway.Refund(ctx, p.ProviderTxnID, p.Amount, "refund-"+p.ID)
		if err != nil {
			s.metrics.Refund("failed")
			l.Error().Err(err).Msg("[cancel] refund failed, order left unchanged")
			return nil, err
		}
		s.metrics.Refund("succeeded")
		reason := strings.TrimSpace(req.Reason)
		if err := s.payments.MarkCanceled(ctx, p.ID, reason, *rf); err != nil {
			// money is back with the customer; the retry reuses the refund
			// idempotency key so it will not refund twice
			l.Error().Err(err).Str("refund_id", rf.ID).Msg("[cancel] refunded but payment not updated")
			return nil, err
		}
		res.RefundID, res.RefundAmount = rf.ID, rf.Amount
		l.Info().Str("refund_id", rf.ID).Int64("amount", rf.Amount).Msg("[cancel] refunded")
	default:
		return nil, fmt.Errorf("%w: status %s", ErrNotRefundable, p.Status)
	}

	n, err := s.orders.MarkCanceled(ctx, req.OrderID, userID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		o, _, err := s.orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}
		if o.Status != order.StatusCanceled || o.UserID != userID {
			return nil, order.ErrNotFound
		}
		// canceled concurrently
		return res, nil
	}

	if err := s.events.Publish(ctx, events.Event{
		Type:       events.OrderCanceled,
		OrderID:    req.OrderID,
		UserID:     userID,
		PaymentID:  p.ID,
		Total:      p.Amount,
		Currency:   p.Currency,
		Reason:     req.Reason,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		l.Warn().Err(err).Msg("[cancel] event not published")
	}
	return res, nil
}
