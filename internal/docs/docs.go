// Package docs registers the OpenAPI document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "host": "{{.Host}}",
  "basePath": "{{.BasePath}}",
  "schemes": {{ marshal .Schemes }},
  "securityDefinitions": {
    "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
  },
  "paths": {
    "/products": {
      "get": {"tags": ["products"], "summary": "List products", "parameters": [
        {"name": "category", "in": "query", "type": "string"},
        {"name": "featured", "in": "query", "type": "boolean"},
        {"name": "limit", "in": "query", "type": "integer"},
        {"name": "offset", "in": "query", "type": "integer"}
      ], "responses": {"200": {"description": "OK"}}},
      "post": {"tags": ["products"], "summary": "Create product (admin)", "security": [{"Bearer": []}],
        "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProductRequest"}}],
        "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid input"}}}
    },
    "/products/search": {
      "get": {"tags": ["products"], "summary": "Search products", "parameters": [
        {"name": "q", "in": "query", "type": "string", "required": true}
      ], "responses": {"200": {"description": "OK"}, "400": {"description": "q too short"}}}
    },
    "/products/{id}": {
      "get": {"tags": ["products"], "summary": "Get product", "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
      "put": {"tags": ["products"], "summary": "Update product (admin)", "security": [{"Bearer": []}],
        "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
      "delete": {"tags": ["products"], "summary": "Delete product (admin)", "security": [{"Bearer": []}],
        "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
        "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}}
    },
    "/users/register": {
      "post": {"tags": ["users"], "summary": "Register", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
        "responses": {"201": {"description": "Created"}, "409": {"description": "Email taken"}}}
    },
    "/users/login": {
      "post": {"tags": ["users"], "summary": "Login", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
        "responses": {"200": {"description": "Token"}, "401": {"description": "Invalid credentials"}}}
    },
    "/users/me": {
      "get": {"tags": ["users"], "summary": "Current user", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}
    },
    "/cart/temp": {
      "post": {"tags": ["cart"], "summary": "Add to session cart", "responses": {"200": {"description": "Cart count"}}},
      "get": {"tags": ["cart"], "summary": "Session cart", "parameters": [{"name": "session_id", "in": "query", "type": "string", "required": true}],
        "responses": {"200": {"description": "OK"}}},
      "delete": {"tags": ["cart"], "summary": "Clear session cart", "responses": {"204": {"description": "Cleared"}}}
    },
    "/cart/temp/count": {
      "get": {"tags": ["cart"], "summary": "Session cart item count", "responses": {"200": {"description": "OK"}}}
    },
    "/cart/temp/{productId}": {
      "put": {"tags": ["cart"], "summary": "Set session line quantity", "responses": {"200": {"description": "OK"}}},
      "delete": {"tags": ["cart"], "summary": "Remove session line", "responses": {"204": {"description": "Removed"}}}
    },
    "/cart/user": {
      "post": {"tags": ["cart"], "summary": "Add to user cart", "security": [{"Bearer": []}], "responses": {"200": {"description": "Cart count"}}},
      "get": {"tags": ["cart"], "summary": "User cart", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}},
      "delete": {"tags": ["cart"], "summary": "Clear user cart", "security": [{"Bearer": []}], "responses": {"204": {"description": "Cleared"}}}
    },
    "/cart/user/{productId}": {
      "put": {"tags": ["cart"], "summary": "Set user line quantity", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}},
      "delete": {"tags": ["cart"], "summary": "Remove user line", "security": [{"Bearer": []}], "responses": {"204": {"description": "Removed"}}}
    },
    "/cart/transfer": {
      "post": {"tags": ["cart"], "summary": "Move session cart into user cart", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}
    },
    "/stripe/create-payment-intent": {
      "post": {"tags": ["payments"], "summary": "Create payment intent", "security": [{"Bearer": []}],
        "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IntentRequest"}}],
        "responses": {"200": {"description": "client_secret"}}}
    },
    "/stripe/checkout": {
      "post": {"tags": ["payments"], "summary": "Complete checkout for a confirmed payment", "security": [{"Bearer": []}],
        "responses": {"201": {"description": "Order created"}, "200": {"description": "Already processed"}, "402": {"description": "Payment not confirmed"}, "422": {"description": "Amount mismatch"}}}
    },
    "/stripe/webhook": {
      "post": {"tags": ["payments"], "summary": "Payment provider webhook",
        "parameters": [{"name": "Stripe-Signature", "in": "header", "type": "string", "required": true}],
        "responses": {"200": {"description": "Acknowledged, including outcome rejected when the cart no longer matches the payment"}, "400": {"description": "Invalid signature"}, "500": {"description": "Retry later"}}}
    },
    "/orders": {
      "get": {"tags": ["orders"], "summary": "My orders", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}
    },
    "/orders/{id}": {
      "get": {"tags": ["orders"], "summary": "Get order", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
    },
    "/orders/cancel": {
      "post": {"tags": ["orders"], "summary": "Cancel and refund an order", "security": [{"Bearer": []}],
        "responses": {"200": {"description": "Canceled"}, "404": {"description": "Not found"}, "409": {"description": "Not refundable"}}}
    },
    "/admin/orders": {
      "get": {"tags": ["admin"], "summary": "All orders", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}
    },
    "/admin/orders/{id}/status": {
      "put": {"tags": ["admin"], "summary": "Advance order status", "security": [{"Bearer": []}],
        "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}
    },
    "/invoices/{orderId}": {
      "get": {"tags": ["invoices"], "summary": "Invoice PDF", "security": [{"Bearer": []}], "produces": ["application/pdf"], "responses": {"200": {"description": "PDF"}}}
    },
    "/invoices/{orderId}/email": {
      "post": {"tags": ["invoices"], "summary": "Email invoice", "security": [{"Bearer": []}], "responses": {"200": {"description": "Sent"}}}
    },
    "/tickets/{id}": {
      "get": {"tags": ["invoices"], "summary": "Purchase ticket PDF", "security": [{"Bearer": []}], "produces": ["application/pdf"],
        "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
        "responses": {"200": {"description": "PDF"}, "403": {"description": "Another user's order"}, "404": {"description": "Not found"}}}
    },
    "/reviews": {
      "post": {"tags": ["reviews"], "summary": "Review a product", "security": [{"Bearer": []}],
        "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}],
        "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid rating or comment"}, "404": {"description": "Unknown product"}}}
    },
    "/reviews/product/{productId}": {
      "get": {"tags": ["reviews"], "summary": "Reviews and average rating of a product",
        "parameters": [{"name": "productId", "in": "path", "type": "string", "required": true}],
        "responses": {"200": {"description": "OK"}}}
    },
    "/reviews/user/{userId}": {
      "get": {"tags": ["reviews"], "summary": "Reviews written by a user", "security": [{"Bearer": []}],
        "parameters": [{"name": "userId", "in": "path", "type": "string", "required": true}],
        "responses": {"200": {"description": "OK"}, "403": {"description": "Another user"}}}
    },
    "/reviews/{id}": {
      "put": {"tags": ["reviews"], "summary": "Edit review (author or admin)", "security": [{"Bearer": []}],
        "responses": {"200": {"description": "OK"}, "403": {"description": "Not the author"}, "404": {"description": "Not found"}}},
      "delete": {"tags": ["reviews"], "summary": "Delete review (author or admin)", "security": [{"Bearer": []}],
        "responses": {"204": {"description": "Deleted"}, "403": {"description": "Not the author"}, "404": {"description": "Not found"}}}
    },
    "/reservations": {
      "post": {"tags": ["reservations"], "summary": "Book a table",
        "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReservationRequest"}}],
        "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid input"}}},
      "get": {"tags": ["reservations"], "summary": "List reservations (admin)", "security": [{"Bearer": []}],
        "parameters": [
          {"name": "date", "in": "query", "type": "string", "format": "date"},
          {"name": "status", "in": "query", "type": "string", "enum": ["pending", "confirmed", "canceled"]}
        ],
        "responses": {"200": {"description": "OK"}}}
    },
    "/reservations/{id}": {
      "get": {"tags": ["reservations"], "summary": "Get reservation (admin)", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
      "put": {"tags": ["reservations"], "summary": "Update reservation (admin)", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid input"}}},
      "delete": {"tags": ["reservations"], "summary": "Delete reservation (admin)", "security": [{"Bearer": []}], "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}}
    },
    "/addresses": {
      "get": {"tags": ["addresses"], "summary": "My addresses", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}},
      "post": {"tags": ["addresses"], "summary": "Add address", "security": [{"Bearer": []}],
        "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddressRequest"}}],
        "responses": {"201": {"description": "Created"}}}
    },
    "/addresses/{id}": {
      "put": {"tags": ["addresses"], "summary": "Update address", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}},
      "delete": {"tags": ["addresses"], "summary": "Delete address", "security": [{"Bearer": []}], "responses": {"204": {"description": "Deleted"}}}
    },
    "/stats/sales-summary": {
      "get": {"tags": ["stats"], "summary": "Sales summary", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}
    },
    "/stats/sales-by-period": {
      "get": {"tags": ["stats"], "summary": "Sales by period", "security": [{"Bearer": []}],
        "parameters": [{"name": "period", "in": "query", "type": "string", "enum": ["day", "week", "month", "year"]}],
        "responses": {"200": {"description": "OK"}}}
    },
    "/stats/top-products": {
      "get": {"tags": ["stats"], "summary": "Top products", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}
    },
    "/stats/customer-stats": {
      "get": {"tags": ["stats"], "summary": "Customer counts", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}
    }
  },
  "definitions": {
    "Money": {
      "description": "Integer minor units, or {\"amount\": \"40.00\", \"unit\": \"major\"}",
      "type": "integer", "example": 4000
    },
    "CreateProductRequest": {"type": "object", "properties": {
      "name": {"type": "string"}, "description": {"type": "string"}, "price": {"$ref": "#/definitions/Money"},
      "category": {"type": "string"}, "image": {"type": "string"}, "available": {"type": "boolean"}, "featured": {"type": "boolean"}
    }},
    "RegisterRequest": {"type": "object", "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}},
    "LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
    "IntentRequest": {"type": "object", "properties": {"amount": {"$ref": "#/definitions/Money"}, "currency": {"type": "string"}, "shipping_address": {"type": "object"}}},
    "ReviewRequest": {"type": "object", "properties": {
      "product_id": {"type": "string"}, "comment": {"type": "string"}, "rating": {"type": "integer", "minimum": 1, "maximum": 5}
    }},
    "ReservationRequest": {"type": "object", "properties": {
      "full_name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"},
      "visit_date": {"type": "string", "format": "date"}, "visit_time": {"type": "string", "example": "18:30"},
      "party_size": {"type": "integer", "minimum": 1, "maximum": 20}, "notes": {"type": "string"}
    }},
    "AddressRequest": {"type": "object", "properties": {
      "address_line1": {"type": "string"}, "address_line2": {"type": "string"}, "city": {"type": "string"}, "state": {"type": "string"},
      "postal_code": {"type": "string"}, "country": {"type": "string"}, "phone": {"type": "string"}, "is_default": {"type": "boolean"}
    }}
  }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Cafetería API",
	Description:      "Catalog, carts, checkout reconciliation, cancellations, invoices, reviews and reservations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
