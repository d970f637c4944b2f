package invoice

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafeteria-api/internal/address"
	"github.com/MikeMC777/cafeteria-api/internal/notify"
	"github.com/MikeMC777/cafeteria-api/internal/order"
	"github.com/MikeMC777/cafeteria-api/internal/order/ordertest"
	"github.com/MikeMC777/cafeteria-api/internal/payment"
	"github.com/MikeMC777/cafeteria-api/internal/payment/paymenttest"
	"github.com/MikeMC777/cafeteria-api/internal/user"
)

type stubUsers map[string]*user.User

func (s stubUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

type stubAddresses map[string]*address.Address

func (s stubAddresses) GetDefault(_ context.Context, userID string) (*address.Address, error) {
	if a, ok := s[userID]; ok {
		return a, nil
	}
	return nil, address.ErrNotFound
}

type recordingMailer struct {
	sent []notify.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func setup(t *testing.T) (*Service, *recordingMailer) {
	t.Helper()
	orders := ordertest.New()
	orders.Put(order.Order{ID: "o1", UserID: "u1", Total: 11000, Currency: "mxn", Status: order.StatusProcessing},
		[]order.Item{
			{ID: "i1", OrderID: "o1", ProductID: "pA", ProductName: "Latte", Quantity: 1, Price: 4000},
			{ID: "i2", OrderID: "o1", ProductID: "pB", ProductName: "Mocha", Quantity: 1, Price: 7000},
		})
	payments := paymenttest.New()
	url := "https://pay.example.com/receipt/1"
	payments.Put(payment.Payment{ID: "p1", OrderID: "o1", UserID: "u1", ProviderTxnID: "pi_1", Amount: 11000, Status: payment.StatusSucceeded, ReceiptURL: &url})
	users := stubUsers{"u1": {ID: "u1", Name: "Ana", Email: "ana@example.com"}}
	addrs := stubAddresses{"u1": {ID: "a1", UserID: "u1", AddressLine1: "Av. Juárez 10", City: "CDMX"}}
	m := &recordingMailer{}
	return NewService(orders, payments, users, addrs, m, "Cafetería"), m
}

func TestDocumentOwnership(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	d, _, err := svc.Document(ctx, "o1", "u1", false)
	require.NoError(t, err)
	assert.Equal(t, "Ana", d.Customer.Name)
	assert.Equal(t, []string{"Av. Juárez 10", "CDMX"}, d.Address)
	assert.Equal(t, "https://pay.example.com/receipt/1", d.ReceiptURL)

	_, _, err = svc.Document(ctx, "o1", "u2", false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.Document(ctx, "o1", "admin", true)
	assert.NoError(t, err)

	_, _, err = svc.Document(ctx, "missing", "u1", false)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestPDF(t *testing.T) {
	svc, _ := setup(t)
	pdf, err := svc.PDF(context.Background(), "o1", "u1", false)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestTicket(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	pdf, err := svc.Ticket(ctx, "o1", "u1", false)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, err = svc.Ticket(ctx, "o1", "u2", false)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Ticket(ctx, "missing", "admin", true)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestTicketWithoutAddressIsPickup(t *testing.T) {
	orders := ordertest.New()
	orders.Put(order.Order{ID: "o2", UserID: "u2", Total: 4000, Currency: "mxn", Status: order.StatusReady},
		[]order.Item{{ID: "i1", OrderID: "o2", ProductID: "pA", ProductName: "Latte", Quantity: 1, Price: 4000}})
	svc := NewService(orders, paymenttest.New(), stubUsers{}, stubAddresses{}, &recordingMailer{}, "Cafetería")

	d, err := svc.ticket(context.Background(), "o2", "u2", false)
	require.NoError(t, err)
	assert.Equal(t, "Ticket de compra", d.Title)
	assert.Equal(t, []string{"Recogida en tienda"}, d.Address)
}

func TestEmailDefaultsToCustomer(t *testing.T) {
	svc, m := setup(t)
	ctx := context.Background()

	to, err := svc.Email(ctx, "o1", "u1", false, "")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", to)

	to, err = svc.Email(ctx, "o1", "u1", false, " otro@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "otro@example.com", to)

	require.Len(t, m.sent, 2)
	assert.Equal(t, "factura-o1.pdf", m.sent[0].Attachments[0].Filename)
	assert.Contains(t, m.sent[0].HTML, "$110.00 MXN")
}

func TestOrderConfirmedUsesShippingAddressAndReportsFailure(t *testing.T) {
	svc, m := setup(t)
	ctx := context.Background()
	o, items, err := svc.orders.GetByID(ctx, "o1")
	require.NoError(t, err)
	o.ShippingAddress = []byte(`{"address_line1":"Calle 5","city":"Puebla"}`)

	d, _, err := svc.document(ctx, o, items, "Recibo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Calle 5", "Puebla"}, d.Address)

	require.NoError(t, svc.OrderConfirmed(ctx, o, items))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "ana@example.com", m.sent[0].To)

	m.err = errors.New("smtp down")
	assert.Error(t, svc.OrderConfirmed(ctx, o, items))

	o.UserID = "ghost"
	assert.ErrorIs(t, svc.OrderConfirmed(ctx, o, items), notify.ErrNoRecipient)
}
