package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafeteria-api/internal/db"
)

var (
	ErrNotFound = errors.New("payment not found")
	// ErrDuplicate means a payment for the provider transaction already exists.
	ErrDuplicate = errors.New("payment already recorded")
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByProviderTxn(ctx context.Context, txnID string) (*Payment, error)
	// GetScoped returns the payment only when it belongs to both order and user.
	GetScoped(ctx context.Context, id, orderID, userID string) (*Payment, error)
	GetByOrder(ctx context.Context, orderID string) (*Payment, error)
	MarkCanceled(ctx context.Context, id, reason string, r Refund) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const cols = `id, order_id, user_id, stripe_payment_id, amount, currency, status, payment_method,
  receipt_url, cancellation_reason, canceled_at, refund_id, refund_amount, refund_status, created_at`

func scan(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.ProviderTxnID, &p.Amount, &p.Currency, &p.Status,
		&p.Method, &p.ReceiptURL, &p.CancellationReason, &p.CanceledAt, &p.RefundID, &p.RefundAmount,
		&p.RefundStatus, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (id, order_id, user_id, stripe_payment_id, amount, currency, status, payment_method, receipt_url, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
		RETURNING created_at
	`, p.ID, p.OrderID, p.UserID, p.ProviderTxnID, p.Amount, p.Currency, p.Status, p.Method, p.ReceiptURL).
		Scan(&p.CreatedAt)
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) GetByProviderTxn(ctx context.Context, txnID string) (*Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scan(r.db.QueryRow(ctx, `SELECT `+cols+` FROM payments WHERE stripe_payment_id=$1`, txnID))
}

func (r *PGRepo) GetScoped(ctx context.Context, id, orderID, userID string) (*Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scan(r.db.QueryRow(ctx, `
		SELECT `+cols+` FROM payments
		WHERE id::text=$1 AND order_id::text=$2 AND user_id::text=$3
	`, id, orderID, userID))
}

func (r *PGRepo) GetByOrder(ctx context.Context, orderID string) (*Payment, error) {
	if !db.IsUUID(orderID) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scan(r.db.QueryRow(ctx, `
		SELECT `+cols+` FROM payments WHERE order_id=$1 ORDER BY created_at LIMIT 1
	`, orderID))
}

func (r *PGRepo) MarkCanceled(ctx context.Context, id, reason string, rf Refund) error {
	if !db.IsUUID(id) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET status = 'canceled', cancellation_reason = $2, canceled_at = NOW(),
		    refund_id = $3, refund_amount = $4, refund_status = $5
		WHERE id = $1
	`, id, reason, rf.ID, rf.Amount, rf.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
