package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeMC777/cafeteria-api/internal/address"
	"github.com/MikeMC777/cafeteria-api/internal/cancellation"
	"github.com/MikeMC777/cafeteria-api/internal/cart"
	"github.com/MikeMC777/cafeteria-api/internal/checkout"
	"github.com/MikeMC777/cafeteria-api/internal/events"
	"github.com/MikeMC777/cafeteria-api/internal/invoice"
	"github.com/MikeMC777/cafeteria-api/internal/metrics"
	"github.com/MikeMC777/cafeteria-api/internal/notify"
	"github.com/MikeMC777/cafeteria-api/internal/order"
	"github.com/MikeMC777/cafeteria-api/internal/order/ordertest"
	"github.com/MikeMC777/cafeteria-api/internal/payment/paymenttest"
	"github.com/MikeMC777/cafeteria-api/internal/payprovider"
	prod "github.com/MikeMC777/cafeteria-api/internal/product"
	"github.com/MikeMC777/cafeteria-api/internal/reservation"
	"github.com/MikeMC777/cafeteria-api/internal/review"
	"github.com/MikeMC777/cafeteria-api/internal/stats"
	"github.com/MikeMC777/cafeteria-api/internal/user"
)

const webhookSecret = "whsec_test"

//
// ===== in-memory repositories =====
//

// stubRepo implements prod.Repository in memory.
type stubRepo struct {
	mu        sync.Mutex
	items     map[string]*prod.Product
	lastQuery prod.Query
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: make(map[string]*prod.Product)}
}

func (s *stubRepo) List(_ context.Context, q prod.Query) ([]prod.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q
	out := make([]prod.Product, 0, len(s.items))
	for _, v := range s.items {
		if q.Q != "" && !containsFold(v.Name, q.Q) && !containsFold(v.Description, q.Q) {
			continue
		}
		if q.Category != "" && v.Category != q.Category {
			continue
		}
		if q.Featured && !v.Featured {
			continue
		}
		out = append(out, *v)
	}
	start := q.Offset
	if start > len(out) {
		return []prod.Product{}, nil
	}
	end := start + q.Limit
	if end > len(out) || q.Limit <= 0 {
		end = len(out)
	}
	return out[start:end], nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*prod.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, prod.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) Create(_ context.Context, p *prod.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.items[p.ID] = &cp
	return nil
}

func (s *stubRepo) Update(_ context.Context, p *prod.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[p.ID]; !ok {
		return prod.ErrNotFound
	}
	cp := *p
	cp.UpdatedAt = time.Now().UTC()
	s.items[p.ID] = &cp
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

type stubUsers struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func (s *stubUsers) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.users {
		if cur.Email == u.Email {
			return user.ErrAlreadyExist
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, user.ErrNotFound
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

type stubAddresses struct {
	mu    sync.Mutex
	items []address.Address
}

func (s *stubAddresses) ListByUser(_ context.Context, userID string) ([]address.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []address.Address
	for _, a := range s.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubAddresses) Get(_ context.Context, id, userID string) (*address.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.ID == id && a.UserID == userID {
			cp := a
			return &cp, nil
		}
	}
	return nil, address.ErrNotFound
}

func (s *stubAddresses) GetDefault(_ context.Context, userID string) (*address.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.UserID == userID && a.IsDefault {
			cp := a
			return &cp, nil
		}
	}
	return nil, address.ErrNotFound
}

func (s *stubAddresses) unsetDefault(userID, keep string) {
	for i := range s.items {
		if s.items[i].UserID == userID && s.items[i].ID != keep {
			s.items[i].IsDefault = false
		}
	}
}

func (s *stubAddresses) Create(_ context.Context, a *address.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.IsDefault {
		s.unsetDefault(a.UserID, a.ID)
	}
	s.items = append(s.items, *a)
	return nil
}

func (s *stubAddresses) Update(_ context.Context, a *address.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == a.ID && s.items[i].UserID == a.UserID {
			if a.IsDefault {
				s.unsetDefault(a.UserID, a.ID)
			}
			s.items[i] = *a
			return nil
		}
	}
	return address.ErrNotFound
}

func (s *stubAddresses) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].UserID == userID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return address.ErrNotFound
}

type stubReviews struct {
	mu    sync.Mutex
	items []review.Review
}

func (s *stubReviews) Create(_ context.Context, r *review.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.CreatedAt, r.UpdatedAt = time.Now(), time.Now()
	s.items = append(s.items, *r)
	return nil
}

func (s *stubReviews) Get(_ context.Context, id string) (*review.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.items {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, review.ErrNotFound
}

func (s *stubReviews) list(match func(review.Review) bool) []review.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []review.Review
	for i := len(s.items) - 1; i >= 0; i-- {
		if match(s.items[i]) {
			out = append(out, s.items[i])
		}
	}
	return out
}

func (s *stubReviews) ListByProduct(_ context.Context, productID string) ([]review.Review, error) {
	return s.list(func(r review.Review) bool { return r.ProductID == productID }), nil
}

func (s *stubReviews) ListByUser(_ context.Context, userID string) ([]review.Review, error) {
	return s.list(func(r review.Review) bool { return r.UserID == userID }), nil
}

func (s *stubReviews) Update(_ context.Context, r *review.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == r.ID {
			s.items[i] = *r
			return nil
		}
	}
	return review.ErrNotFound
}

func (s *stubReviews) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return review.ErrNotFound
}

type stubReservations struct {
	mu    sync.Mutex
	items map[string]reservation.Reservation
}

func (s *stubReservations) Create(_ context.Context, r *reservation.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[r.ID] = *r
	return nil
}

func (s *stubReservations) Get(_ context.Context, id string) (*reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	return &r, nil
}

func (s *stubReservations) List(_ context.Context, q reservation.Query) ([]reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []reservation.Reservation
	for _, r := range s.items {
		if (q.Date == "" || r.VisitDate == q.Date) && (q.Status == "" || r.Status == q.Status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubReservations) Update(_ context.Context, r *reservation.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; !ok {
		return reservation.ErrNotFound
	}
	s.items[r.ID] = *r
	return nil
}

func (s *stubReservations) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return reservation.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type stubStats struct{}

func (stubStats) Summary(context.Context) (stats.Summary, error) {
	return stats.Summary{TotalSales: 11000, TotalOrders: 1}, nil
}
func (stubStats) ByPeriod(context.Context, stats.Period) ([]stats.PeriodSales, error) {
	return []stats.PeriodSales{}, nil
}
func (stubStats) TopProducts(context.Context, int) ([]stats.TopProduct, error) {
	return []stats.TopProduct{}, nil
}
func (stubStats) Customers(context.Context) (stats.Customers, error) { return stats.Customers{}, nil }

type sentMail struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (m *sentMail) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *sentMail) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.msgs)
}

//
// ===== server under test =====
//

type testServer struct {
	router   *gin.Engine
	products *stubRepo
	users    *stubUsers
	orders   *ordertest.Repo
	payments *paymenttest.Repo
	gateway  *payprovider.Fake
	mail     *sentMail
	tokens   *user.Tokens
	bookings *stubReservations
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		products: newStubRepo(),
		users:    &stubUsers{users: map[string]*user.User{}},
		orders:   ordertest.New(),
		payments: paymenttest.New(),
		gateway:  payprovider.NewFake(webhookSecret),
		mail:     &sentMail{},
		tokens:   user.NewTokens("test-secret", time.Hour),
		bookings: &stubReservations{items: map[string]reservation.Reservation{}},
	}
	addrs := &stubAddresses{}
	m := metrics.New(prometheus.NewRegistry())
	carts := cart.NewService(cart.NewMemoryStore(100, time.Hour), cart.NewMemoryStore(100, time.Hour), ts.products)
	invoices := invoice.NewService(ts.orders, ts.payments, ts.users, addrs, ts.mail, "Cafetería")

	ts.router = newRouter(deps{
		products:  ts.products,
		carts:     carts,
		orders:    ts.orders,
		orderSvc:  order.NewService(ts.orders),
		payments:  ts.payments,
		addresses: address.NewService(addrs),
		users:     user.NewService(ts.users, ts.tokens),
		tokens:    ts.tokens,
		stats:     stats.NewService(stubStats{}),
		invoices:  invoices,
		reviews:   review.NewService(&stubReviews{}, ts.products),
		bookings:  reservation.NewService(ts.bookings),
		reconciler: checkout.NewReconciler(ts.gateway, ts.orders, ts.payments, carts,
			checkout.WithNotifier(invoices),
			checkout.WithMetrics(m),
			checkout.WithCurrency("mxn"),
		),
		cancels: cancellation.NewService(ts.gateway, ts.orders, ts.payments, events.Noop{}, m),
		metrics: m,
	})
	return ts
}

// login seeds a user and returns a bearer token for it.
func (ts *testServer) login(t *testing.T, id, role string) string {
	t.Helper()
	u := &user.User{ID: id, Name: "User " + id, Email: id + "@example.com", Role: role}
	if err := ts.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	tok, err := ts.tokens.Issue(u)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (ts *testServer) product(id, name string, price int64) {
	_ = ts.products.Create(context.Background(), &prod.Product{ID: id, Name: name, Price: price, Available: true})
}

func (ts *testServer) do(method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	ts.router.ServeHTTP(w, req)
	return w
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d, expected=%d body=%s", w.Code, status, w.Body.String())
	}
}

func webhookBody(eventID, intentID string) string {
	return fmt.Sprintf(`{"id":%q,"type":"payment_intent.succeeded","payment_intent":%q}`, eventID, intentID)
}
