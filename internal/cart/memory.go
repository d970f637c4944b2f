package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps session carts in process. Entries expire after ttl of
// inactivity and the least recently used cart is evicted past capacity;
// it is a cache, lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	carts *expirable.LRU[string, []Line]
}

func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{carts: expirable.NewLRU[string, []Line](capacity, nil, ttl)}
}

func (m *MemoryStore) lines(owner string) []Line {
	ls, _ := m.carts.Get(owner)
	return ls
}

func (m *MemoryStore) put(owner string, ls []Line) {
	if len(ls) == 0 {
		m.carts.Remove(owner)
		return
	}
	m.carts.Add(owner, ls)
}

func (m *MemoryStore) Add(_ context.Context, owner string, l Line) (Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ls := append([]Line(nil), m.lines(owner)...)
	for i := range ls {
		if ls[i].ProductID == l.ProductID {
			ls[i].Quantity += l.Quantity
			ls[i].ProductName, ls[i].ProductImage, ls[i].ProductPrice = l.ProductName, l.ProductImage, l.ProductPrice
			m.put(owner, ls)
			return ls[i], nil
		}
	}
	l.ID = uuid.NewString()
	l.Owner = owner
	l.AddedAt = time.Now().UTC()
	m.put(owner, append(ls, l))
	return l, nil
}

func (m *MemoryStore) List(_ context.Context, owner string) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Line(nil), m.lines(owner)...), nil
}

func (m *MemoryStore) Remove(_ context.Context, owner, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ls := m.lines(owner)
	for i := range ls {
		if ls[i].ID == lineID {
			out := append(append([]Line(nil), ls[:i]...), ls[i+1:]...)
			m.put(owner, out)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) SetQuantity(_ context.Context, owner, lineID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ls := append([]Line(nil), m.lines(owner)...)
	for i := range ls {
		if ls[i].ID == lineID {
			ls[i].Quantity = qty
			m.put(owner, ls)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) Clear(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts.Remove(owner)
	return nil
}

func (m *MemoryStore) ReplaceProducts(_ context.Context, owner string, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ls := append([]Line(nil), m.lines(owner)...)
next:
	for _, in := range lines {
		for i := range ls {
			if ls[i].ProductID == in.ProductID {
				id, added := ls[i].ID, ls[i].AddedAt
				ls[i] = in
				ls[i].ID, ls[i].Owner, ls[i].AddedAt = id, owner, added
				continue next
			}
		}
		in.ID = uuid.NewString()
		in.Owner = owner
		if in.AddedAt.IsZero() {
			in.AddedAt = time.Now().UTC()
		}
		ls = append(ls, in)
	}
	m.put(owner, ls)
	return nil
}
