package address

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("address not found")
	ErrInvalidInput = errors.New("address_line1 is required")
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	Get(ctx context.Context, id, userID string) (*Address, error)
	GetDefault(ctx context.Context, userID string) (*Address, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, id, userID string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const cols = `id, user_id, address_line1, address_line2, city, state, postal_code, country, phone, is_default, created_at, updated_at`

func scan(row pgx.Row) (*Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.UserID, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State,
		&a.PostalCode, &a.Country, &a.Phone, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+cols+` FROM user_addresses WHERE user_id=$1 ORDER BY is_default DESC, created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Address
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, id, userID string) (*Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return scan(r.db.QueryRow(ctx, `SELECT `+cols+` FROM user_addresses WHERE id::text=$1 AND user_id=$2`, id, userID))
}

func (r *PGRepo) GetDefault(ctx context.Context, userID string) (*Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return scan(r.db.QueryRow(ctx, `SELECT `+cols+` FROM user_addresses WHERE user_id=$1 AND is_default`, userID))
}

// clearDefault runs inside the caller's transaction so the old default
// and the new one never coexist or vanish together.
func clearDefault(ctx context.Context, tx pgx.Tx, userID, keepID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE user_addresses SET is_default = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_default AND id::text <> $2
	`, userID, keepID)
	return err
}

func (r *PGRepo) Create(ctx context.Context, a *Address) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.UserID, a.ID); err != nil {
			return err
		}
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO user_addresses (id, user_id, address_line1, address_line2, city, state, postal_code, country, phone, is_default, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
		RETURNING created_at, updated_at
	`, a.ID, a.UserID, a.AddressLine1, a.AddressLine2, a.City, a.State, a.PostalCode, a.Country, a.Phone, a.IsDefault).
		Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) Update(ctx context.Context, a *Address) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.UserID, a.ID); err != nil {
			return err
		}
	}
	err = tx.QueryRow(ctx, `
		UPDATE user_addresses
		SET address_line1=$3, address_line2=$4, city=$5, state=$6, postal_code=$7,
		    country=$8, phone=$9, is_default=$10, updated_at=NOW()
		WHERE id::text=$1 AND user_id=$2
		RETURNING created_at, updated_at
	`, a.ID, a.UserID, a.AddressLine1, a.AddressLine2, a.City, a.State, a.PostalCode, a.Country, a.Phone, a.IsDefault).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM user_addresses WHERE id::text=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
