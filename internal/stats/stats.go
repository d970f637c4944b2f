// Package stats answers the admin dashboard queries. Canceled orders never
// count as sales.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafeteria-api/internal/order"
)

var ErrInvalidPeriod = errors.New("period must be one of day, week, month, year")

type Period string

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return Month, nil
	case Day, Week, Month, Year:
		return p, nil
	}
	return "", ErrInvalidPeriod
}

// Summary amounts are in minor units.
type Summary struct {
	TotalSales   int64 `json:"total_sales"`
	MonthlySales int64 `json:"monthly_sales"`
	TotalOrders  int64 `json:"total_orders"`
}

type PeriodSales struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	TotalSales  int64     `json:"total_sales"`
	OrderCount  int64     `json:"order_count"`
}

type TopProduct struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Image         string `json:"image,omitempty"`
	TotalQuantity int64  `json:"total_quantity"`
}

type Customers struct {
	TotalCustomers int64 `json:"total_customers"`
	NewCustomers   int64 `json:"new_customers"`
}

type Repository interface {
	Summary(ctx context.Context) (Summary, error)
	ByPeriod(ctx context.Context, p Period) ([]PeriodSales, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
	Customers(ctx context.Context) (Customers, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

var excluded = string(order.StatusCanceled)

func (r *PGRepo) Summary(ctx context.Context) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var s Summary
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total),0),
		       COALESCE(SUM(total) FILTER (WHERE created_at >= date_trunc('month', NOW())),0),
		       COUNT(*)
		FROM orders WHERE status <> $1`, excluded).
		Scan(&s.TotalSales, &s.MonthlySales, &s.TotalOrders)
	return s, err
}

func (r *PGRepo) ByPeriod(ctx context.Context, p Period) ([]PeriodSales, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.Query(ctx, `
		SELECT start, start + ('1 ' || $1::text)::interval, SUM(total), COUNT(*)
		FROM (
			SELECT date_trunc($1::text, created_at) AS start, total
			FROM orders WHERE status <> $2
		) t
		GROUP BY start ORDER BY start`, string(p), excluded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []PeriodSales{}
	for rows.Next() {
		var ps PeriodSales
		if err := rows.Scan(&ps.PeriodStart, &ps.PeriodEnd, &ps.TotalSales, &ps.OrderCount); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (r *PGRepo) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.Query(ctx, `
		SELECT oi.product_id::text, COALESCE(p.name,''), COALESCE(p.image,''), SUM(oi.quantity) AS qty
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.status <> $1
		GROUP BY oi.product_id, p.name, p.image
		ORDER BY qty DESC
		LIMIT $2`, excluded, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []TopProduct{}
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.Image, &tp.TotalQuantity); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

func (r *PGRepo) Customers(ctx context.Context) (Customers, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var c Customers
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= date_trunc('month', NOW()))
		FROM users WHERE role = 'customer'`).Scan(&c.TotalCustomers, &c.NewCustomers)
	return c, err
}

type Service struct{ repo Repository }

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) Summary(ctx context.Context) (Summary, error) { return s.repo.Summary(ctx) }

func (s *Service) ByPeriod(ctx context.Context, period string) ([]PeriodSales, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	return s.repo.ByPeriod(ctx, p)
}

// TopProducts falls back to 5 for a non-positive limit and caps at 50.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}
	out, err := s.repo.TopProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return out, nil
}

func (s *Service) Customers(ctx context.Context) (Customers, error) { return s.repo.Customers(ctx) }
