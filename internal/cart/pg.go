package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the persistent, user-keyed cart.
type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

const upsertAdd = `
	INSERT INTO cart (id, user_id, product_id, product_name, product_image, product_price, quantity, added_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
	ON CONFLICT (user_id, product_id) DO UPDATE
	SET quantity = cart.quantity + EXCLUDED.quantity,
	    product_name = EXCLUDED.product_name,
	    product_image = EXCLUDED.product_image,
	    product_price = EXCLUDED.product_price
	RETURNING id, quantity, added_at
`

const upsertReplace = `
	INSERT INTO cart (id, user_id, product_id, product_name, product_image, product_price, quantity, added_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
	ON CONFLICT (user_id, product_id) DO UPDATE
	SET quantity = EXCLUDED.quantity,
	    product_name = EXCLUDED.product_name,
	    product_image = EXCLUDED.product_image,
	    product_price = EXCLUDED.product_price
`

func (s *PGStore) Add(ctx context.Context, owner string, l Line) (Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	l.Owner = owner
	err := s.db.QueryRow(ctx, upsertAdd, uuid.NewString(), owner, l.ProductID, l.ProductName,
		l.ProductImage, l.ProductPrice, l.Quantity).Scan(&l.ID, &l.Quantity, &l.AddedAt)
	return l, err
}

func (s *PGStore) List(ctx context.Context, owner string) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, product_id, product_name, product_image, product_price, quantity, added_at
		FROM cart WHERE user_id = $1
		ORDER BY added_at, id
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.Owner, &l.ProductID, &l.ProductName, &l.ProductImage,
			&l.ProductPrice, &l.Quantity, &l.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PGStore) Remove(ctx context.Context, owner, lineID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM cart WHERE id::text = $1 AND user_id = $2`, lineID, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) SetQuantity(ctx context.Context, owner, lineID string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.db.Exec(ctx, `UPDATE cart SET quantity = $3 WHERE id::text = $1 AND user_id = $2`, lineID, owner, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Clear(ctx context.Context, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `DELETE FROM cart WHERE user_id = $1`, owner)
	return err
}

// ReplaceProducts is all-or-nothing.
func (s *PGStore) ReplaceProducts(ctx context.Context, owner string, lines []Line) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b := &pgx.Batch{}
	for _, l := range lines {
		b.Queue(upsertReplace, uuid.NewString(), owner, l.ProductID, l.ProductName, l.ProductImage, l.ProductPrice, l.Quantity)
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
