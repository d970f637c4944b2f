// Package paymenttest provides an in-memory payment.Repository for tests.
package paymenttest

import (
	"context"
	"sync"
	"time"

	"github.com/MikeMC777/cafeteria-api/internal/payment"
)

type Repo struct {
	mu       sync.Mutex
	payments map[string]*payment.Payment

	CreateErr error
	// BeforeCreate runs inside Create before the uniqueness check; tests use
	// it to simulate a concurrent writer.
	BeforeCreate func(p *payment.Payment)
}

func New() *Repo { return &Repo{payments: map[string]*payment.Payment{}} }

func (r *Repo) Put(p payment.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.ID] = &p
}

func (r *Repo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

func (r *Repo) Get(id string) *payment.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

func (r *Repo) Create(_ context.Context, p *payment.Payment) error {
	if r.BeforeCreate != nil {
		r.BeforeCreate(p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, cur := range r.payments {
		if cur.ProviderTxnID == p.ProviderTxnID {
			return payment.ErrDuplicate
		}
	}
	cp := *p
	cp.CreatedAt = time.Now().UTC()
	r.payments[p.ID] = &cp
	return nil
}

func (r *Repo) find(match func(*payment.Payment) bool) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, payment.ErrNotFound
}

func (r *Repo) GetByProviderTxn(_ context.Context, txn string) (*payment.Payment, error) {
	return r.find(func(p *payment.Payment) bool { return p.ProviderTxnID == txn })
}

func (r *Repo) GetScoped(_ context.Context, id, orderID, userID string) (*payment.Payment, error) {
	return r.find(func(p *payment.Payment) bool {
		return p.ID == id && p.OrderID == orderID && p.UserID == userID
	})
}

func (r *Repo) GetByOrder(_ context.Context, orderID string) (*payment.Payment, error) {
	return r.find(func(p *payment.Payment) bool { return p.OrderID == orderID })
}

func (r *Repo) MarkCanceled(_ context.Context, id, reason string, rf payment.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return payment.ErrNotFound
	}
	now := time.Now().UTC()
	p.Status = payment.StatusCanceled
	p.CancellationReason = &reason
	p.CanceledAt = &now
	p.RefundID, p.RefundAmount, p.RefundStatus = &rf.ID, &rf.Amount, &rf.Status
	return nil
}
