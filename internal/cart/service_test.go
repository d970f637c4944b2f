package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafeteria-api/internal/product"
)

type stubCatalog map[string]*product.Product

func (s stubCatalog) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := s[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func catalog() stubCatalog {
	return stubCatalog{
		"A": {ID: "A", Name: "Latte", Price: 4000, Available: true},
		"B": {ID: "B", Name: "Bagel", Price: 7000, Available: true},
		"X": {ID: "X", Name: "Mocha", Price: 5500, Available: true},
		"Z": {ID: "Z", Name: "Seasonal", Price: 100, Available: false},
	}
}

func newService(user Store) (*Service, *MemoryStore) {
	session := NewMemoryStore(16, time.Hour)
	if user == nil {
		user = NewMemoryStore(16, time.Hour)
	}
	return NewService(session, user, catalog()), session
}

func TestAddLineMergesQuantity(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	n, err := svc.AddLine(ctx, Session, "s1", "A", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.AddLine(ctx, Session, "s1", "A", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = svc.AddLine(ctx, Session, "s1", "B", 1)
	require.NoError(t, err)
	assert.Equal(t, 6, n, "count is the sum of quantities")

	lines, err := svc.Lines(ctx, Session, "s1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "A", lines[0].ProductID)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "Latte", lines[0].ProductName)
	assert.EqualValues(t, 4000, lines[0].ProductPrice)
}

func TestAddLineValidation(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, Session, "s1", "A", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.AddLine(ctx, Session, " ", "A", 1)
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.AddLine(ctx, Session, "s1", "Z", 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = svc.AddLine(ctx, Session, "s1", "nope", 1)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestRemoveAndSetQuantity(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, User, "u1", "A", 1)
	require.NoError(t, err)
	lines, _ := svc.Lines(ctx, User, "u1")
	id := lines[0].ID

	require.NoError(t, svc.SetQuantity(ctx, User, "u1", id, 4))
	n, _ := svc.Count(ctx, User, "u1")
	assert.Equal(t, 4, n)

	assert.ErrorIs(t, svc.SetQuantity(ctx, User, "u1", id, -1), ErrInvalidQuantity)
	assert.ErrorIs(t, svc.SetQuantity(ctx, User, "u1", "missing", 2), ErrNotFound)
	assert.ErrorIs(t, svc.RemoveLine(ctx, User, "u2", id), ErrNotFound, "other owners cannot remove the line")

	require.NoError(t, svc.RemoveLine(ctx, User, "u1", id))
	assert.ErrorIs(t, svc.RemoveLine(ctx, User, "u1", id), ErrNotFound)
}

func TestTransferSessionWins(t *testing.T) {
	svc, session := newService(nil)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, Session, "s1", "X", 2)
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, User, "u1", "X", 1)
	require.NoError(t, err)

	moved, err := svc.Transfer(ctx, "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	lines, _ := svc.Lines(ctx, User, "u1")
	require.Len(t, lines, 1)
	assert.Equal(t, "X", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)

	left, _ := session.List(ctx, "s1")
	assert.Empty(t, left)
}

type failingStore struct {
	*MemoryStore
	replaceErr, clearErr error
}

func (f *failingStore) ReplaceProducts(ctx context.Context, owner string, lines []Line) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	return f.MemoryStore.ReplaceProducts(ctx, owner, lines)
}

func (f *failingStore) Clear(ctx context.Context, owner string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.MemoryStore.Clear(ctx, owner)
}

func TestTransferCopyFailureKeepsSession(t *testing.T) {
	user := &failingStore{MemoryStore: NewMemoryStore(4, time.Hour), replaceErr: errors.New("db down")}
	svc, session := newService(user)
	ctx := context.Background()

	_, err := svc.AddLine(ctx, Session, "s1", "A", 2)
	require.NoError(t, err)

	_, err = svc.Transfer(ctx, "s1", "u1")
	require.Error(t, err)

	left, _ := session.List(ctx, "s1")
	require.Len(t, left, 1)
	assert.Equal(t, 2, left[0].Quantity)
}

func TestTransferClearFailureIsTolerated(t *testing.T) {
	session := &failingStore{MemoryStore: NewMemoryStore(4, time.Hour), clearErr: errors.New("flaky")}
	user := NewMemoryStore(4, time.Hour)
	svc := NewService(session, user, catalog())
	ctx := context.Background()

	_, err := svc.AddLine(ctx, Session, "s1", "A", 2)
	require.NoError(t, err)

	moved, err := svc.Transfer(ctx, "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	// re-running converges instead of doubling
	_, err = svc.Transfer(ctx, "s1", "u1")
	require.NoError(t, err)
	lines, _ := user.List(ctx, "u1")
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestMemoryStoreExpires(t *testing.T) {
	st := NewMemoryStore(4, 20*time.Millisecond)
	ctx := context.Background()
	_, err := st.Add(ctx, "s1", Line{ProductID: "A", Quantity: 1})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		ls, _ := st.List(ctx, "s1")
		return len(ls) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestNewView(t *testing.T) {
	v := NewView([]Line{{ProductPrice: 4000, Quantity: 1}, {ProductPrice: 7000, Quantity: 2}})
	assert.Equal(t, 3, v.Count)
	assert.EqualValues(t, 18000, v.Total)
	assert.NotNil(t, NewView(nil).Items)
}
