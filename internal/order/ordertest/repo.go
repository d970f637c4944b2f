// Package ordertest provides an in-memory order.Repository for tests.
package ordertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MikeMC777/cafeteria-api/internal/order"
)

type Repo struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	items  map[string][]order.Item

	// CreateErr and AddItemsErr, when set, fail the matching call.
	CreateErr   error
	AddItemsErr error
	Creates     int

	// MarkCanceledSkip makes MarkCanceled report zero rows without writing.
	MarkCanceledSkip bool
}

func New() *Repo {
	return &Repo{orders: map[string]*order.Order{}, items: map[string][]order.Item{}}
}

// Put seeds an order directly, bypassing the provider transaction check.
func (r *Repo) Put(o order.Order, items []order.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	r.orders[o.ID] = &o
	r.items[o.ID] = append([]order.Item(nil), items...)
}

// Count is the number of stored orders.
func (r *Repo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *Repo) Create(_ context.Context, o *order.Order, items []order.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Creates++
	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, cur := range r.orders {
		if o.ProviderTxnID != "" && cur.ProviderTxnID == o.ProviderTxnID {
			return order.ErrTxnExists
		}
	}
	cp := *o
	now := time.Now().UTC()
	cp.CreatedAt, cp.UpdatedAt = now, now
	r.orders[o.ID] = &cp
	r.items[o.ID] = append([]order.Item(nil), items...)
	return nil
}

func (r *Repo) get(match func(*order.Order) bool) (*order.Order, []order.Item, error) {
	for _, o := range r.orders {
		if match(o) {
			cp := *o
			return &cp, append([]order.Item(nil), r.items[o.ID]...), nil
		}
	}
	return nil, nil, order.ErrNotFound
}

func (r *Repo) GetByID(_ context.Context, id string) (*order.Order, []order.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(func(o *order.Order) bool { return o.ID == id })
}

func (r *Repo) GetByProviderTxn(_ context.Context, txn string) (*order.Order, []order.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(func(o *order.Order) bool { return txn != "" && o.ProviderTxnID == txn })
}

func (r *Repo) AddItems(_ context.Context, orderID string, items []order.Item) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.AddItemsErr != nil {
		return 0, r.AddItemsErr
	}
	if _, ok := r.orders[orderID]; !ok {
		return 0, order.ErrNotFound
	}
	if len(r.items[orderID]) > 0 {
		return 0, nil
	}
	r.items[orderID] = append([]order.Item(nil), items...)
	return len(items), nil
}

func (r *Repo) List(_ context.Context, q order.ListQuery) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []order.Order
	for _, o := range r.orders {
		if (q.UserID == "" || o.UserID == q.UserID) && (q.Status == "" || o.Status == q.Status) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Offset > len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *Repo) UpdateStatus(_ context.Context, id string, from, to order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return order.ErrStale
	}
	o.Status = to
	return nil
}

func (r *Repo) MarkCanceled(_ context.Context, id, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if r.MarkCanceledSkip || !ok || o.UserID != userID || o.Status == order.StatusCanceled {
		return 0, nil
	}
	now := time.Now().UTC()
	o.Status = order.StatusCanceled
	o.CanceledAt = &now
	return 1, nil
}

func (r *Repo) GetItems(_ context.Context, orderID string) ([]order.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]order.Item(nil), r.items[orderID]...), nil
}
