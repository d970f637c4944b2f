package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/MikeMC777/cafeteria-api/internal/address"
	"github.com/MikeMC777/cafeteria-api/internal/cancellation"
	"github.com/MikeMC777/cafeteria-api/internal/cart"
	"github.com/MikeMC777/cafeteria-api/internal/checkout"
	"github.com/MikeMC777/cafeteria-api/internal/config"
	"github.com/MikeMC777/cafeteria-api/internal/db"
	"github.com/MikeMC777/cafeteria-api/internal/events"
	"github.com/MikeMC777/cafeteria-api/internal/httpx"
	"github.com/MikeMC777/cafeteria-api/internal/invoice"
	"github.com/MikeMC777/cafeteria-api/internal/logging"
	"github.com/MikeMC777/cafeteria-api/internal/metrics"
	"github.com/MikeMC777/cafeteria-api/internal/notify"
	"github.com/MikeMC777/cafeteria-api/internal/order"
	"github.com/MikeMC777/cafeteria-api/internal/payment"
	"github.com/MikeMC777/cafeteria-api/internal/payprovider"
	"github.com/MikeMC777/cafeteria-api/internal/product"
	"github.com/MikeMC777/cafeteria-api/internal/reservation"
	"github.com/MikeMC777/cafeteria-api/internal/review"
	"github.com/MikeMC777/cafeteria-api/internal/stats"
	"github.com/MikeMC777/cafeteria-api/internal/user"
)

const businessName = "Cafetería"

func main() {
	cfg := config.Load()
	logging.Setup(cfg.Env)
	httpx.SetDevelopment(cfg.Development())
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("[config] invalid")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("[db] connect")
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("[db] migrate")
	}

	sessionStore, closeSession, err := newSessionStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[cart] session store")
	}
	defer closeSession()

	publisher, err := newPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[events] publisher")
	}
	defer publisher.Close()

	d := wire(cfg, pool, sessionStore, newGateway(cfg), newMailer(cfg), publisher, metrics.New(prometheus.DefaultRegisterer))

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "X-Session-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
	}).Handler(newRouter(d))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("cafeteria-api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func wire(cfg config.Config, pool *pgxpool.Pool, session cart.Store, gw payprovider.Gateway, mailer notify.Mailer, pub events.Publisher, m *metrics.Metrics) deps {
	products := product.NewPGRepo(pool)
	orders := order.NewPGRepo(pool)
	payments := payment.NewPGRepo(pool)
	users := user.NewPGRepo(pool)
	addresses := address.NewPGRepo(pool)
	tokens := user.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	carts := cart.NewService(session, cart.NewPGStore(pool), products)
	invoices := invoice.NewService(orders, payments, users, addresses, mailer, businessName)

	return deps{
		products:  products,
		carts:     carts,
		orders:    orders,
		orderSvc:  order.NewService(orders),
		payments:  payments,
		addresses: address.NewService(addresses),
		users:     user.NewService(users, tokens),
		tokens:    tokens,
		stats:     stats.NewService(stats.NewPGRepo(pool)),
		invoices:  invoices,
		reviews:   review.NewService(review.NewPGRepo(pool), products),
		bookings:  reservation.NewService(reservation.NewPGRepo(pool)),
		reconciler: checkout.NewReconciler(gw, orders, payments, carts,
			checkout.WithNotifier(invoices),
			checkout.WithPublisher(pub),
			checkout.WithMetrics(m),
			checkout.WithCurrency(cfg.DefaultCurrency),
		),
		cancels: cancellation.NewService(gw, orders, payments, pub, m),
		metrics: m,
		limiter: httpx.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		health:  pool.Ping,
	}
}

func newSessionStore(ctx context.Context, cfg config.Config) (cart.Store, func(), error) {
	if cfg.SessionCartBackend != "redis" {
		log.Info().Int("capacity", cfg.SessionCartCapacity).Dur("ttl", cfg.SessionCartTTL).Msg("[cart] in-memory session carts")
		return cart.NewMemoryStore(cfg.SessionCartCapacity, cfg.SessionCartTTL), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	log.Info().Str("addr", opts.Addr).Msg("[cart] redis session carts")
	return cart.NewRedisStore(rdb, cfg.SessionCartTTL), func() { _ = rdb.Close() }, nil
}

func newPublisher(cfg config.Config) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case "kafka":
		return events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "amqp":
		r, err := events.NewRabbit(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return events.Noop{}, nil
	}
}

// newGateway falls back to the in-process fake when no keys are configured,
// which Validate only allows in development.
func newGateway(cfg config.Config) payprovider.Gateway {
	if cfg.StripeSecretKey == "" {
		log.Warn().Msg("[payments] STRIPE_SECRET_KEY not set, using fake gateway")
		return payprovider.NewFake(cfg.StripeWebhookSecret)
	}
	return payprovider.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
}

func newMailer(cfg config.Config) notify.Mailer {
	if cfg.EmailUser == "" || cfg.EmailPassword == "" {
		log.Warn().Msg("[notify] EMAIL_USER/EMAIL_PASSWORD not set, emails are logged only")
		return notify.LogMailer{}
	}
	return notify.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword, cfg.EmailFrom)
}
