package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/MikeMC777/cafeteria-api/internal/cart"
	"github.com/MikeMC777/cafeteria-api/internal/user"
)

func cartView(t *testing.T, ts *testServer, path, token string) cart.View {
	t.Helper()
	w := ts.do(http.MethodGet, path, token, "")
	expect(t, w, http.StatusOK)
	var v cart.View
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return v
}

func TestSessionCart_MergeUpdateRemove(t *testing.T) {
	ts := newTestServer(t)
	ts.product("X", "Capuccino", 5000)
	ts.product("Y", "Croissant", 3000)

	// no session, no cart
	expect(t, ts.do(http.MethodPost, "/api/cart/temp", "", `{"product_id":"X","quantity":1}`), http.StatusBadRequest)

	expect(t, ts.do(http.MethodPost, "/api/cart/temp", "", `{"session_id":"s1","product_id":"X","quantity":1}`), http.StatusOK)
	w := ts.do(http.MethodPost, "/api/cart/temp", "", `{"session_id":"s1","product_id":"X","quantity":2}`)
	expect(t, w, http.StatusOK)
	var count struct {
		Count int `json:"count"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &count)
	if count.Count != 3 {
		t.Fatalf("count=%d, expected 3", count.Count)
	}

	v := cartView(t, ts, "/api/cart/temp?session_id=s1", "")
	if len(v.Items) != 1 || v.Items[0].Quantity != 3 || v.Total != 15000 {
		t.Fatalf("lines not merged: %+v", v)
	}
	lineID := v.Items[0].ID

	expect(t, ts.do(http.MethodPut, "/api/cart/temp/"+lineID, "", `{"session_id":"s1","quantity":0}`), http.StatusBadRequest)
	expect(t, ts.do(http.MethodPut, "/api/cart/temp/"+lineID, "", `{"session_id":"s1","quantity":1}`), http.StatusOK)
	expect(t, ts.do(http.MethodPut, "/api/cart/temp/nope", "", `{"session_id":"s1","quantity":1}`), http.StatusNotFound)

	// header works as well as the query string
	w = ts.do(http.MethodGet, "/api/cart/temp/count", "", "", "X-Session-ID", "s1")
	expect(t, w, http.StatusOK)
	_ = json.Unmarshal(w.Body.Bytes(), &count)
	if count.Count != 1 {
		t.Fatalf("count=%d, expected 1", count.Count)
	}

	expect(t, ts.do(http.MethodDelete, "/api/cart/temp/"+lineID+"?session_id=s1", "", ""), http.StatusNoContent)
	if v := cartView(t, ts, "/api/cart/temp?session_id=s1", ""); len(v.Items) != 0 {
		t.Fatalf("line not removed: %+v", v)
	}

	// sessions do not see each other
	expect(t, ts.do(http.MethodPost, "/api/cart/temp", "", `{"session_id":"s2","product_id":"Y","quantity":1}`), http.StatusOK)
	if v := cartView(t, ts, "/api/cart/temp?session_id=s1", ""); len(v.Items) != 0 {
		t.Fatalf("s1 sees s2's cart: %+v", v)
	}
	expect(t, ts.do(http.MethodDelete, "/api/cart/temp?session_id=s2", "", ""), http.StatusNoContent)
	if v := cartView(t, ts, "/api/cart/temp?session_id=s2", ""); v.Count != 0 {
		t.Fatalf("s2 not cleared: %+v", v)
	}
}

func TestCart_UnavailableAndUnknownProducts(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t, "u1", user.RoleCustomer)
	admin := ts.login(t, "admin", user.RoleAdmin)
	ts.product("X", "Capuccino", 5000)
	expect(t, ts.do(http.MethodPut, "/api/products/X", admin, `{"available":false}`), http.StatusOK)

	expect(t, ts.do(http.MethodPost, "/api/cart/user", tok, `{"product_id":"X","quantity":1}`), http.StatusBadRequest)
	expect(t, ts.do(http.MethodPost, "/api/cart/user", tok, `{"product_id":"nope","quantity":1}`), http.StatusNotFound)
	expect(t, ts.do(http.MethodPost, "/api/cart/user", "", `{"product_id":"X","quantity":1}`), http.StatusUnauthorized)
}

// Session [X×2] moved into user cart [X×1] leaves the user with X×2 and
// the session cart empty.
func TestTransferCart_SessionWins(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t, "u1", user.RoleCustomer)
	ts.product("X", "Capuccino", 5000)

	expect(t, ts.do(http.MethodPost, "/api/cart/user", tok, `{"product_id":"X","quantity":1}`), http.StatusOK)
	expect(t, ts.do(http.MethodPost, "/api/cart/temp", "", `{"session_id":"s1","product_id":"X","quantity":2}`), http.StatusOK)

	w := ts.do(http.MethodPost, "/api/cart/transfer", tok, `{"session_id":"s1"}`)
	expect(t, w, http.StatusOK)

	v := cartView(t, ts, "/api/cart/user", tok)
	if len(v.Items) != 1 || v.Items[0].ProductID != "X" || v.Items[0].Quantity != 2 {
		t.Fatalf("unexpected user cart: %+v", v)
	}
	if v := cartView(t, ts, "/api/cart/temp?session_id=s1", ""); len(v.Items) != 0 {
		t.Fatalf("session cart not emptied: %+v", v)
	}

	// nothing left to move
	expect(t, ts.do(http.MethodPost, "/api/cart/transfer", tok, `{"session_id":"s1"}`), http.StatusOK)
	expect(t, ts.do(http.MethodPost, "/api/cart/transfer", tok, `{}`), http.StatusBadRequest)
}

func TestTransferCart_BodyHandling(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t, "u1", user.RoleCustomer)
	ts.product("X", "Capuccino", 5000)
	expect(t, ts.do(http.MethodPost, "/api/cart/temp", "", `{"session_id":"s1","product_id":"X","quantity":2}`), http.StatusOK)

	// malformed JSON is refused even when the header names a session
	expect(t, ts.do(http.MethodPost, "/api/cart/transfer", tok, `{"session_id":`, "X-Session-ID", "s1"), http.StatusBadRequest)
	if v := cartView(t, ts, "/api/cart/temp?session_id=s1", ""); len(v.Items) != 1 {
		t.Fatalf("session cart touched by a rejected transfer: %+v", v)
	}

	// an empty body falls back to the header
	w := ts.do(http.MethodPost, "/api/cart/transfer", tok, "", "X-Session-ID", "s1")
	expect(t, w, http.StatusOK)
	var out struct {
		Moved int `json:"moved"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Moved != 1 {
		t.Fatalf("moved=%d, expected 1", out.Moved)
	}
}
