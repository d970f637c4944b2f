// Package review stores product reviews written by customers.
package review

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafeteria-api/internal/db"
)

var (
	ErrNotFound     = errors.New("review not found")
	ErrInvalidInput = errors.New("invalid review")
	ErrForbidden    = errors.New("review belongs to another user")
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	Get(ctx context.Context, id string) (*Review, error)
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	ListByUser(ctx context.Context, userID string) ([]Review, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const cols = `id, user_id, product_id, comment, rating, created_at, updated_at`

func scan(row pgx.Row) (*Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.UserID, &r.ProductID, &r.Comment, &r.Rating, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PGRepo) Create(ctx context.Context, r *Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.db.QueryRow(ctx, `
		INSERT INTO reviews (id, user_id, product_id, comment, rating, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		RETURNING created_at, updated_at
	`, r.ID, r.UserID, r.ProductID, r.Comment, r.Rating).Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (p *PGRepo) Get(ctx context.Context, id string) (*Review, error) {
	if !db.IsUUID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scan(p.db.QueryRow(ctx, `SELECT `+cols+` FROM reviews WHERE id=$1`, id))
}

func (p *PGRepo) list(ctx context.Context, column, id string) ([]Review, error) {
	if !db.IsUUID(id) {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := p.db.Query(ctx, `SELECT `+cols+` FROM reviews WHERE `+column+`=$1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Review
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (p *PGRepo) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	return p.list(ctx, "product_id", productID)
}

func (p *PGRepo) ListByUser(ctx context.Context, userID string) ([]Review, error) {
	return p.list(ctx, "user_id", userID)
}

func (p *PGRepo) Update(ctx context.Context, r *Review) error {
	if !db.IsUUID(r.ID) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.db.QueryRow(ctx, `
		UPDATE reviews SET comment=$2, rating=$3, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, r.ID, r.Comment, r.Rating).Scan(&r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (p *PGRepo) Delete(ctx context.Context, id string) error {
	if !db.IsUUID(id) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := p.db.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
