package main

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/cafeteria-api/internal/docs"

	"github.com/MikeMC777/cafeteria-api/internal/address"
	"github.com/MikeMC777/cafeteria-api/internal/cancellation"
	"github.com/MikeMC777/cafeteria-api/internal/cart"
	"github.com/MikeMC777/cafeteria-api/internal/checkout"
	"github.com/MikeMC777/cafeteria-api/internal/httpx"
	"github.com/MikeMC777/cafeteria-api/internal/invoice"
	"github.com/MikeMC777/cafeteria-api/internal/metrics"
	"github.com/MikeMC777/cafeteria-api/internal/order"
	"github.com/MikeMC777/cafeteria-api/internal/payment"
	"github.com/MikeMC777/cafeteria-api/internal/product"
	"github.com/MikeMC777/cafeteria-api/internal/reservation"
	"github.com/MikeMC777/cafeteria-api/internal/review"
	"github.com/MikeMC777/cafeteria-api/internal/stats"
	"github.com/MikeMC777/cafeteria-api/internal/user"
)

// deps is everything the handlers need; tests fill it with in-memory fakes.
type deps struct {
	products   product.Repository
	carts      *cart.Service
	orders     order.Repository
	orderSvc   *order.Service
	payments   payment.Repository
	addresses  *address.Service
	users      *user.Service
	tokens     *user.Tokens
	stats      *stats.Service
	invoices   *invoice.Service
	reviews    *review.Service
	bookings   *reservation.Service
	reconciler *checkout.Reconciler
	cancels    *cancellation.Service
	metrics    *metrics.Metrics
	limiter    *httpx.RateLimiter
	health     func(ctx context.Context) error
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())
	if d.metrics != nil {
		r.Use(httpx.Metrics(d.metrics))
	}

	r.GET("/healthz", healthHandler(d.health))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := httpx.Auth(d.tokens)
	admin := httpx.RequireRole(user.RoleAdmin)
	limit := func(c *gin.Context) { c.Next() }
	if d.limiter != nil {
		limit = d.limiter.Limit()
	}

	api := r.Group("/api")

	// products
	api.GET("/products", listOnlyHandler(d.products))
	api.GET("/products/search", searchHandler(d.products))
	api.GET("/products/:id", getProductHandler(d.products))
	api.POST("/products", auth, admin, createProductHandler(d.products))
	api.PUT("/products/:id", auth, admin, updateProductHandler(d.products))
	api.DELETE("/products/:id", auth, admin, deleteProductHandler(d.products))

	// users
	api.POST("/users/register", limit, registerHandler(d.users))
	api.POST("/users/login", limit, loginHandler(d.users))
	api.GET("/users/me", auth, meHandler(d.users))

	// carts
	temp := api.Group("/cart/temp")
	temp.POST("", addToCartHandler(d.carts, cart.Session, sessionOwner))
	temp.GET("", getCartHandler(d.carts, cart.Session, sessionOwner))
	temp.GET("/count", cartCountHandler(d.carts, cart.Session, sessionOwner))
	temp.PUT("/:lineId", setCartQuantityHandler(d.carts, cart.Session, sessionOwner))
	temp.DELETE("/:lineId", removeCartLineHandler(d.carts, cart.Session, sessionOwner))
	temp.DELETE("", clearCartHandler(d.carts, cart.Session, sessionOwner))

	mine := api.Group("/cart/user", auth)
	mine.POST("", addToCartHandler(d.carts, cart.User, userOwner))
	mine.GET("", getCartHandler(d.carts, cart.User, userOwner))
	mine.GET("/count", cartCountHandler(d.carts, cart.User, userOwner))
	mine.PUT("/:lineId", setCartQuantityHandler(d.carts, cart.User, userOwner))
	mine.DELETE("/:lineId", removeCartLineHandler(d.carts, cart.User, userOwner))
	mine.DELETE("", clearCartHandler(d.carts, cart.User, userOwner))
	api.POST("/cart/transfer", auth, transferCartHandler(d.carts))

	// payments
	api.POST("/stripe/create-payment-intent", limit, httpx.OptionalAuth(d.tokens), createIntentHandler(d.reconciler))
	api.POST("/stripe/checkout", limit, auth, checkoutHandler(d.reconciler))
	api.POST("/stripe/webhook", webhookHandler(d.reconciler))

	// orders
	api.GET("/orders", auth, myOrdersHandler(d.orders))
	api.GET("/orders/:id", auth, getOrderHandler(d.orders))
	api.POST("/orders/cancel", limit, auth, cancelOrderHandler(d.cancels))
	api.GET("/admin/orders", auth, admin, adminOrdersHandler(d.orders))
	api.PUT("/admin/orders/:id/status", auth, admin, updateStatusHandler(d.orderSvc))

	// invoices
	api.GET("/invoices/:orderId", auth, invoicePDFHandler(d.invoices))
	api.POST("/invoices/:orderId/email", limit, auth, invoiceEmailHandler(d.invoices))
	api.GET("/tickets/:id", auth, ticketHandler(d.invoices))

	// reviews
	api.GET("/reviews/product/:productId", productReviewsHandler(d.reviews))
	api.GET("/reviews/user/:userId", auth, userReviewsHandler(d.reviews))
	api.POST("/reviews", limit, auth, createReviewHandler(d.reviews))
	api.PUT("/reviews/:id", auth, updateReviewHandler(d.reviews))
	api.DELETE("/reviews/:id", auth, deleteReviewHandler(d.reviews))

	// reservations
	api.POST("/reservations", limit, httpx.OptionalAuth(d.tokens), createReservationHandler(d.bookings))
	rsv := api.Group("/reservations", auth, admin)
	rsv.GET("", listReservationsHandler(d.bookings))
	rsv.GET("/:id", getReservationHandler(d.bookings))
	rsv.PUT("/:id", updateReservationHandler(d.bookings))
	rsv.DELETE("/:id", deleteReservationHandler(d.bookings))

	// addresses
	addr := api.Group("/addresses", auth)
	addr.GET("", listAddressesHandler(d.addresses))
	addr.POST("", addAddressHandler(d.addresses))
	addr.PUT("/:id", updateAddressHandler(d.addresses))
	addr.DELETE("/:id", deleteAddressHandler(d.addresses))

	// stats
	st := api.Group("/stats", auth, admin)
	st.GET("/sales-summary", salesSummaryHandler(d.stats))
	st.GET("/sales-by-period", salesByPeriodHandler(d.stats))
	st.GET("/top-products", topProductsHandler(d.stats))
	st.GET("/customer-stats", customerStatsHandler(d.stats))

	return r
}
