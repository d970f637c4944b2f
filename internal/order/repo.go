package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafeteria-api/internal/db"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrTxnExists means an order already references the provider transaction.
	ErrTxnExists = errors.New("order already exists for transaction")
	ErrStale     = errors.New("order status changed concurrently")
	// ErrInvalidItem means an item names a product the catalog does not have.
	ErrInvalidItem = errors.New("order item references an unknown product")
)

type ListQuery struct {
	UserID string
	Status Status
	Limit  int
	Offset int
}

type Repository interface {
	// Create writes the order and its items in one transaction.
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, []Item, error)
	GetByProviderTxn(ctx context.Context, txnID string) (*Order, []Item, error)
	// AddItems inserts items for an order that has none yet. It returns the
	// number inserted; zero when items were already present.
	AddItems(ctx context.Context, orderID string, items []Item) (int, error)
	List(ctx context.Context, q ListQuery) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	// MarkCanceled cancels a user's order unless it is already canceled and
	// reports the number of rows changed.
	MarkCanceled(ctx context.Context, id, userID string) (int64, error)
	GetItems(ctx context.Context, orderID string) ([]Item, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderCols = `id, user_id, COALESCE(provider_txn_id,''), total, currency, status,
  payment_method, shipping_address, created_at, updated_at, canceled_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.ProviderTxnID, &o.Total, &o.Currency, &o.Status,
		&o.PaymentMethod, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt, &o.CanceledAt)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func checkItems(items []Item) error {
	for _, it := range items {
		if !db.IsUUID(it.ProductID) {
			return fmt.Errorf("%w: %q", ErrInvalidItem, it.ProductID)
		}
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID string, items []Item) error {
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
      INSERT INTO order_items (id, order_id, product_id, quantity, price)
      VALUES ($1,$2,$3,$4,$5)
    `, it.ID, orderID, it.ProductID, it.Quantity, it.Price); err != nil {
			if db.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: %s", ErrInvalidItem, it.ProductID)
			}
			return err
		}
	}
	return nil
}

func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	if err := checkItems(items); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var addr any
	if len(o.ShippingAddress) > 0 {
		addr = o.ShippingAddress
	}
	tag, err := tx.Exec(ctx, `
    INSERT INTO orders (id, user_id, provider_txn_id, total, currency, status, payment_method, shipping_address, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
    ON CONFLICT (provider_txn_id) DO NOTHING
  `, o.ID, o.UserID, nullable(o.ProviderTxnID), o.Total, o.Currency, o.Status, o.PaymentMethod, addr)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTxnExists
	}
	if err := insertItems(ctx, tx, o.ID, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) get(ctx context.Context, where string, arg string) (*Order, []Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE `+where+`=$1`, arg), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	items, err := r.GetItems(ctx, o.ID)
	if err != nil {
		return nil, nil, err
	}
	return &o, items, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	if !db.IsUUID(id) {
		return nil, nil, ErrNotFound
	}
	return r.get(ctx, "id", id)
}

func (r *PGRepo) GetByProviderTxn(ctx context.Context, txnID string) (*Order, []Item, error) {
	return r.get(ctx, "provider_txn_id", txnID)
}

func (r *PGRepo) AddItems(ctx context.Context, orderID string, items []Item) (int, error) {
	if !db.IsUUID(orderID) {
		return 0, ErrNotFound
	}
	if err := checkItems(items); err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// lock the order row so two resumers cannot both insert
	if _, err := tx.Exec(ctx, `SELECT 1 FROM orders WHERE id=$1 FOR UPDATE`, orderID); err != nil {
		return 0, err
	}
	var n int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM order_items WHERE order_id=$1`, orderID).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	if err := insertItems(ctx, tx, orderID, items); err != nil {
		return 0, err
	}
	return len(items), tx.Commit(ctx)
}

func (r *PGRepo) List(ctx context.Context, q ListQuery) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	rows, err := r.db.Query(ctx, `
    SELECT `+orderCols+`
    FROM orders
    WHERE ($1 = '' OR user_id::text = $1) AND ($2 = '' OR status = $2)
    ORDER BY created_at DESC LIMIT $3 OFFSET $4
  `, q.UserID, string(q.Status), q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	if !db.IsUUID(id) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE orders
    SET status = $3, updated_at = NOW()
    WHERE id = $1 AND status = $2
  `, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStale
	}
	return nil
}

func (r *PGRepo) MarkCanceled(ctx context.Context, id, userID string) (int64, error) {
	if !db.IsUUID(id) || !db.IsUUID(userID) {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE orders
    SET status = 'canceled', canceled_at = NOW(), updated_at = NOW()
    WHERE id = $1 AND user_id = $2 AND status <> 'canceled'
  `, id, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	if !db.IsUUID(orderID) {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT i.id, i.order_id, i.product_id, COALESCE(p.name, ''), i.quantity, i.price
    FROM order_items i
    LEFT JOIN products p ON p.id = i.product_id
    WHERE i.order_id = $1
    ORDER BY i.id
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
