// Package invoice assembles an order with its customer, payment and address
// into receipt documents, and delivers them by email.
package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MikeMC777/cafeteria-api/internal/address"
	"github.com/MikeMC777/cafeteria-api/internal/notify"
	"github.com/MikeMC777/cafeteria-api/internal/order"
	"github.com/MikeMC777/cafeteria-api/internal/payment"
	"github.com/MikeMC777/cafeteria-api/internal/receipt"
	"github.com/MikeMC777/cafeteria-api/internal/user"
)

// ErrForbidden means the caller neither owns the order nor is an admin.
var ErrForbidden = errors.New("order belongs to another user")

const storePickup = "Recogida en tienda"

type Orders interface {
	GetByID(ctx context.Context, id string) (*order.Order, []order.Item, error)
}

type Payments interface {
	GetByOrder(ctx context.Context, orderID string) (*payment.Payment, error)
}

type Users interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Addresses interface {
	GetDefault(ctx context.Context, userID string) (*address.Address, error)
}

type Service struct {
	orders    Orders
	payments  Payments
	users     Users
	addresses Addresses
	mailer    notify.Mailer
	business  string
	now       func() time.Time
}

func NewService(orders Orders, payments Payments, users Users, addresses Addresses, mailer notify.Mailer, business string) *Service {
	return &Service{
		orders:    orders,
		payments:  payments,
		users:     users,
		addresses: addresses,
		mailer:    mailer,
		business:  business,
		now:       time.Now,
	}
}

// Document loads everything printed on the invoice. Missing customer,
// payment or address data leaves those sections blank.
func (s *Service) Document(ctx context.Context, orderID, callerID string, admin bool) (receipt.Document, *user.User, error) {
	o, items, err := s.owned(ctx, orderID, callerID, admin)
	if err != nil {
		return receipt.Document{}, nil, err
	}
	return s.document(ctx, o, items, "Factura")
}

func (s *Service) owned(ctx context.Context, orderID, callerID string, admin bool) (*order.Order, []order.Item, error) {
	o, items, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !admin && o.UserID != callerID {
		return nil, nil, ErrForbidden
	}
	return o, items, nil
}

// Ticket renders the purchase ticket shown at the counter. An order with
// no shipping or default address is a store pickup.
func (s *Service) Ticket(ctx context.Context, orderID, callerID string, admin bool) ([]byte, error) {
	d, err := s.ticket(ctx, orderID, callerID, admin)
	if err != nil {
		return nil, err
	}
	return receipt.Render(d)
}

func (s *Service) ticket(ctx context.Context, orderID, callerID string, admin bool) (receipt.Document, error) {
	o, items, err := s.owned(ctx, orderID, callerID, admin)
	if err != nil {
		return receipt.Document{}, err
	}
	d, _, err := s.document(ctx, o, items, "Ticket de compra")
	if err != nil {
		return receipt.Document{}, err
	}
	if len(d.Address) == 0 {
		d.Address = []string{storePickup}
	}
	return d, nil
}

func (s *Service) document(ctx context.Context, o *order.Order, items []order.Item, title string) (receipt.Document, *user.User, error) {
	d := receipt.Document{
		Title:    title,
		Business: s.business,
		Order:    o,
		Items:    items,
		IssuedAt: s.now(),
	}

	u, err := s.users.GetByID(ctx, o.UserID)
	switch {
	case err == nil:
		d.Customer = receipt.Customer{Name: u.Name, Email: u.Email}
	case errors.Is(err, user.ErrNotFound):
		u = nil
	default:
		return receipt.Document{}, nil, err
	}

	if p, err := s.payments.GetByOrder(ctx, o.ID); err == nil && p.ReceiptURL != nil {
		d.ReceiptURL = *p.ReceiptURL
	} else if err != nil && !errors.Is(err, payment.ErrNotFound) {
		return receipt.Document{}, nil, err
	}

	d.Address = shippingLines(o.ShippingAddress)
	if len(d.Address) == 0 {
		if a, err := s.addresses.GetDefault(ctx, o.UserID); err == nil {
			d.Address = a.Lines()
		} else if !errors.Is(err, address.ErrNotFound) {
			return receipt.Document{}, nil, err
		}
	}
	return d, u, nil
}

// PDF renders the invoice for the order.
func (s *Service) PDF(ctx context.Context, orderID, callerID string, admin bool) ([]byte, error) {
	d, _, err := s.Document(ctx, orderID, callerID, admin)
	if err != nil {
		return nil, err
	}
	return receipt.Render(d)
}

// Email sends the invoice to `to`, or to the customer when empty.
// It returns the address used.
func (s *Service) Email(ctx context.Context, orderID, callerID string, admin bool, to string) (string, error) {
	d, u, err := s.Document(ctx, orderID, callerID, admin)
	if err != nil {
		return "", err
	}
	to = strings.TrimSpace(to)
	if to == "" && u != nil {
		to = u.Email
	}
	if to == "" {
		return "", notify.ErrNoRecipient
	}
	if err := s.send(ctx, d, to, "Factura de tu pedido "+d.Order.ID, notify.Invoice); err != nil {
		return "", err
	}
	return to, nil
}

// OrderConfirmed emails the customer a confirmation with the receipt
// attached. Called after the order and payment are committed.
func (s *Service) OrderConfirmed(ctx context.Context, o *order.Order, items []order.Item) error {
	d, u, err := s.document(ctx, o, items, "Recibo")
	if err != nil {
		return err
	}
	if u == nil || u.Email == "" {
		return fmt.Errorf("order %s: %w", o.ID, notify.ErrNoRecipient)
	}
	return s.send(ctx, d, u.Email, "Confirmación de pedido "+o.ID, notify.OrderConfirmation)
}

func (s *Service) send(ctx context.Context, d receipt.Document, to, subject string, body func(notify.OrderMail) (string, error)) error {
	pdf, err := receipt.Render(d)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	html, err := body(mailData(d))
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	err = s.mailer.Send(ctx, notify.Message{
		To:      to,
		Subject: subject,
		HTML:    html,
		Attachments: []notify.Attachment{{
			Filename:    receipt.Filename(d.Order.ID),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	})
	if err != nil {
		return err
	}
	log.Info().Str("order_id", d.Order.ID).Str("to", to).Msg("[invoice] email sent")
	return nil
}

func mailData(d receipt.Document) notify.OrderMail {
	m := notify.OrderMail{
		Business: d.Business,
		Customer: d.Customer.Name,
		OrderID:  d.Order.ID,
		Total:    d.Order.Total,
		Currency: d.Order.Currency,
	}
	for _, it := range d.Items {
		name := it.ProductName
		if name == "" {
			name = it.ProductID
		}
		m.Items = append(m.Items, notify.Line{Name: name, Quantity: it.Quantity, Price: it.Price, Subtotal: it.Subtotal()})
	}
	return m
}

// shippingLines reads the address captured at checkout, if any.
func shippingLines(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var a address.Address
	if err := json.Unmarshal(raw, &a); err != nil {
		// A plain string is printed as is.
		var s string
		if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return []string{s}
		}
		return nil
	}
	return a.Lines()
}
