package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	prod "github.com/MikeMC777/cafeteria-api/internal/product"
	"github.com/MikeMC777/cafeteria-api/internal/user"
)

// /api/products → pagination only, no search sent to the repo
func TestListProducts_PaginationOnly_NoSearch(t *testing.T) {
	ts := newTestServer(t)
	for i := 1; i <= 3; i++ {
		ts.product(fmt.Sprintf("%d", i), fmt.Sprintf("Café %d", i), 4000)
	}

	w := ts.do(http.MethodGet, "/api/products?limit=2&offset=1", "", "")
	expect(t, w, http.StatusOK)
	var got prod.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Items) != 2 || got.Limit != 2 || got.Offset != 1 {
		t.Fatalf("unexpected page: %+v", got)
	}
	if ts.products.lastQuery.Q != "" {
		t.Fatalf("list must not search; Q=%q", ts.products.lastQuery.Q)
	}
}

// /api/products/search → requires q (≥2)
func TestSearchProducts_RequiresQAndFilters(t *testing.T) {
	ts := newTestServer(t)
	ts.product("a", "Mocha", 7000)
	ts.product("b", "Latte", 4000)

	expect(t, ts.do(http.MethodGet, "/api/products/search", "", ""), http.StatusBadRequest)
	expect(t, ts.do(http.MethodGet, "/api/products/search?q=m", "", ""), http.StatusBadRequest)

	w := ts.do(http.MethodGet, "/api/products/search?q=mo", "", "")
	expect(t, w, http.StatusOK)
	var got prod.ListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Q != "mo" || len(got.Items) != 1 || got.Items[0].ID != "a" {
		t.Fatalf("unexpected result: q=%q items=%+v", got.Q, got.Items)
	}
}

func TestGetProduct_OK_And_NotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.product("x", "Espresso", 3500)

	w := ts.do(http.MethodGet, "/api/products/x", "", "")
	expect(t, w, http.StatusOK)
	var p prod.Product
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if p.Price != 3500 {
		t.Fatalf("price=%d, expected minor units 3500", p.Price)
	}
	expect(t, ts.do(http.MethodGet, "/api/products/nope", "", ""), http.StatusNotFound)
}

func TestCreateProduct_AdminOnly_And_Validation(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin", user.RoleAdmin)
	customer := ts.login(t, "cust", user.RoleCustomer)

	valid := `{"name":"Latte","description":"Espresso con leche","price":{"amount":"65.00","unit":"major"},"category":"bebidas"}`
	expect(t, ts.do(http.MethodPost, "/api/products", "", valid), http.StatusUnauthorized)
	expect(t, ts.do(http.MethodPost, "/api/products", customer, valid), http.StatusForbidden)

	w := ts.do(http.MethodPost, "/api/products", admin, valid)
	expect(t, w, http.StatusCreated)
	var p prod.Product
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if p.Price != 6500 || !p.Available {
		t.Fatalf("unexpected product: %+v", p)
	}

	// missing price
	expect(t, ts.do(http.MethodPost, "/api/products", admin, `{"name":"x"}`), http.StatusBadRequest)
	// a bare float has no unit
	expect(t, ts.do(http.MethodPost, "/api/products", admin, `{"name":"x","price":65.5}`), http.StatusBadRequest)
}

// PUT keeps fields that are not sent.
func TestUpdateProduct_Partial(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin", user.RoleAdmin)
	ts.product("p", "Mocha", 7000)

	expect(t, ts.do(http.MethodPut, "/api/products/p", admin, `{"name":"Mocha grande"}`), http.StatusOK)
	got, _ := ts.products.GetByID(context.Background(), "p")
	if got.Name != "Mocha grande" || got.Price != 7000 || !got.Available {
		t.Fatalf("partial update not respected: %+v", got)
	}

	expect(t, ts.do(http.MethodPut, "/api/products/p", admin, `{"price":7500,"available":false}`), http.StatusOK)
	got, _ = ts.products.GetByID(context.Background(), "p")
	if got.Price != 7500 || got.Available {
		t.Fatalf("price/available not applied: %+v", got)
	}

	expect(t, ts.do(http.MethodPut, "/api/products/nope", admin, `{"name":"x"}`), http.StatusNotFound)
}

func TestDeleteProduct_OK_And_NotFound(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin", user.RoleAdmin)
	ts.product("del", "X", 100)

	expect(t, ts.do(http.MethodDelete, "/api/products/del", admin, ""), http.StatusNoContent)
	expect(t, ts.do(http.MethodDelete, "/api/products/del", admin, ""), http.StatusNotFound)
}
