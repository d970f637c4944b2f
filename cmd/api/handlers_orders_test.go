package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/MikeMC777/cafeteria-api/internal/cancellation"
	"github.com/MikeMC777/cafeteria-api/internal/checkout"
	"github.com/MikeMC777/cafeteria-api/internal/order"
	"github.com/MikeMC777/cafeteria-api/internal/payment"
	"github.com/MikeMC777/cafeteria-api/internal/payprovider"
	"github.com/MikeMC777/cafeteria-api/internal/user"
)

// placeOrder pays 110.00 for A + B through the synchronous checkout.
func (ts *testServer) placeOrder(t *testing.T, token, userID string) checkout.Result {
	t.Helper()
	in, _ := ts.gateway.CreateIntent(context.Background(), payprovider.CreateParams{
		Amount: 11000, Currency: "mxn", Metadata: map[string]string{"user_id": userID},
	})
	body := `{"payment_data":{"transaction_id":"` + in.ID + `","currency":"mxn"},
		"order_data":{"items":[{"product_id":"A","quantity":1,"price":4000},{"product_id":"B","quantity":1,"price":7000}]}}`
	w := ts.do(http.MethodPost, "/api/stripe/checkout", token, body)
	expect(t, w, http.StatusCreated)
	return decodeResult(t, w.Body.Bytes())
}

func cancelBody(res checkout.Result) string {
	return `{"order_id":"` + res.OrderID + `","payment_id":"` + res.PaymentID + `","cancellation_reason":"cambié de opinión"}`
}

func TestCancelOrder_RefundsOnce(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t, "u1", user.RoleCustomer)
	other := ts.login(t, "u2", user.RoleCustomer)
	res := ts.placeOrder(t, tok, "u1")

	expect(t, ts.do(http.MethodPost, "/api/orders/cancel", other, cancelBody(res)), http.StatusNotFound)

	w := ts.do(http.MethodPost, "/api/orders/cancel", tok, cancelBody(res))
	expect(t, w, http.StatusOK)
	var got cancellation.Result
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.AlreadyCanceled || got.RefundID == "" || got.RefundAmount != 11000 {
		t.Fatalf("unexpected result: %+v", got)
	}

	w = ts.do(http.MethodPost, "/api/orders/cancel", tok, cancelBody(res))
	expect(t, w, http.StatusOK)
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if !got.AlreadyCanceled {
		t.Fatalf("second cancel should be a no-op: %+v", got)
	}
	if ts.gateway.RefundCalls != 1 {
		t.Fatalf("refund calls=%d, expected 1", ts.gateway.RefundCalls)
	}

	o, _, _ := ts.orders.GetByID(context.Background(), res.OrderID)
	if o.Status != order.StatusCanceled {
		t.Fatalf("order status=%s", o.Status)
	}
	if p := ts.payments.Get(res.PaymentID); p.Status != payment.StatusCanceled {
		t.Fatalf("payment status=%s", p.Status)
	}
}

func TestCancelOrder_RefundFailureLeavesOrder(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t, "u1", user.RoleCustomer)
	res := ts.placeOrder(t, tok, "u1")

	ts.gateway.RefundErr = errors.New("processor unavailable")
	w := ts.do(http.MethodPost, "/api/orders/cancel", tok, cancelBody(res))
	expect(t, w, http.StatusInternalServerError)
	if strings.Contains(w.Body.String(), "processor unavailable") {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}

	o, _, _ := ts.orders.GetByID(context.Background(), res.OrderID)
	if o.Status == order.StatusCanceled {
		t.Fatalf("order canceled although the refund failed")
	}
}

func TestCancelOrder_Validation(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t, "u1", user.RoleCustomer)
	expect(t, ts.do(http.MethodPost, "/api/orders/cancel", tok, `{"order_id":"o1"}`), http.StatusBadRequest)
	expect(t, ts.do(http.MethodPost, "/api/orders/cancel", tok, `{"order_id":"o1","payment_id":"p1","user_id":"u2"}`), http.StatusForbidden)
}

func TestOrders_ListGetAndAdminStatus(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t, "u1", user.RoleCustomer)
	other := ts.login(t, "u2", user.RoleCustomer)
	admin := ts.login(t, "admin", user.RoleAdmin)
	res := ts.placeOrder(t, tok, "u1")

	w := ts.do(http.MethodGet, "/api/orders", tok, "")
	expect(t, w, http.StatusOK)
	var list order.ListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Items) != 1 || len(list.Items[0].Items) != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}

	w = ts.do(http.MethodGet, "/api/orders", other, "")
	expect(t, w, http.StatusOK)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Items) != 0 {
		t.Fatalf("u2 sees u1's orders: %+v", list)
	}

	expect(t, ts.do(http.MethodGet, "/api/orders/"+res.OrderID, tok, ""), http.StatusOK)
	expect(t, ts.do(http.MethodGet, "/api/orders/"+res.OrderID, other, ""), http.StatusNotFound)
	expect(t, ts.do(http.MethodGet, "/api/orders/"+res.OrderID, admin, ""), http.StatusOK)
	expect(t, ts.do(http.MethodGet, "/api/orders?status=bogus", tok, ""), http.StatusBadRequest)

	path := "/api/admin/orders/" + res.OrderID + "/status"
	expect(t, ts.do(http.MethodPut, path, tok, `{"status":"preparing"}`), http.StatusForbidden)
	expect(t, ts.do(http.MethodPut, path, admin, `{"status":"preparing"}`), http.StatusOK)
	expect(t, ts.do(http.MethodPut, path, admin, `{"status":"processing"}`), http.StatusConflict)
	expect(t, ts.do(http.MethodPut, path, admin, `{"status":"canceled"}`), http.StatusConflict)
	expect(t, ts.do(http.MethodPut, path, admin, `{"status":"delivered"}`), http.StatusOK)
	expect(t, ts.do(http.MethodPut, path, admin, `{}`), http.StatusBadRequest)

	w = ts.do(http.MethodGet, "/api/admin/orders", admin, "")
	expect(t, w, http.StatusOK)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Items) != 1 || list.Items[0].Status != order.StatusDelivered {
		t.Fatalf("unexpected admin list: %+v", list)
	}
}

func TestInvoices(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t, "u1", user.RoleCustomer)
	other := ts.login(t, "u2", user.RoleCustomer)
	admin := ts.login(t, "admin", user.RoleAdmin)
	res := ts.placeOrder(t, tok, "u1")
	sent := ts.mail.count()

	w := ts.do(http.MethodGet, "/api/invoices/"+res.OrderID, tok, "")
	expect(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content-type=%q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "factura-"+res.OrderID+".pdf") {
		t.Fatalf("content-disposition=%q", w.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("body is not a pdf")
	}
	expect(t, ts.do(http.MethodGet, "/api/invoices/"+res.OrderID, other, ""), http.StatusForbidden)
	expect(t, ts.do(http.MethodGet, "/api/invoices/"+res.OrderID, admin, ""), http.StatusOK)
	expect(t, ts.do(http.MethodGet, "/api/invoices/missing", tok, ""), http.StatusNotFound)

	w = ts.do(http.MethodPost, "/api/invoices/"+res.OrderID+"/email", tok, `{"email":"conta@example.com"}`)
	expect(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "conta@example.com") || ts.mail.count() != sent+1 {
		t.Fatalf("invoice email not sent: %s", w.Body.String())
	}
	expect(t, ts.do(http.MethodPost, "/api/invoices/"+res.OrderID+"/email", tok, ""), http.StatusOK)
	expect(t, ts.do(http.MethodPost, "/api/invoices/"+res.OrderID+"/email", tok, `{"email":`), http.StatusBadRequest)
}

func TestTickets(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t, "u1", user.RoleCustomer)
	other := ts.login(t, "u2", user.RoleCustomer)
	admin := ts.login(t, "admin", user.RoleAdmin)
	res := ts.placeOrder(t, tok, "u1")

	w := ts.do(http.MethodGet, "/api/tickets/"+res.OrderID, tok, "")
	expect(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content-type=%q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "ticket-orden-"+res.OrderID+".pdf") {
		t.Fatalf("content-disposition=%q", w.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("body is not a pdf")
	}
	expect(t, ts.do(http.MethodGet, "/api/tickets/"+res.OrderID, "", ""), http.StatusUnauthorized)
	expect(t, ts.do(http.MethodGet, "/api/tickets/"+res.OrderID, other, ""), http.StatusForbidden)
	expect(t, ts.do(http.MethodGet, "/api/tickets/"+res.OrderID, admin, ""), http.StatusOK)
	expect(t, ts.do(http.MethodGet, "/api/tickets/missing", tok, ""), http.StatusNotFound)
}
