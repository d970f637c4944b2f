// Package reservation books tables at the shop.
package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafeteria-api/internal/db"
)

var (
	ErrNotFound     = errors.New("reservation not found")
	ErrInvalidInput = errors.New("invalid reservation")
)

type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	Get(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, q Query) ([]Reservation, error)
	Update(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const cols = `id, COALESCE(user_id::text, ''), full_name, email, phone,
	to_char(visit_date, 'YYYY-MM-DD'), visit_time, party_size, notes, status, created_at, updated_at`

func scan(row pgx.Row) (*Reservation, error) {
	var r Reservation
	err := row.Scan(&r.ID, &r.UserID, &r.FullName, &r.Email, &r.Phone,
		&r.VisitDate, &r.VisitTime, &r.PartySize, &r.Notes, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (p *PGRepo) Create(ctx context.Context, r *Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.db.QueryRow(ctx, `
		INSERT INTO reservaciones
			(id, user_id, full_name, email, phone, visit_date, visit_time, party_size, notes, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6::date,$7,$8,$9,$10,NOW(),NOW())
		RETURNING created_at, updated_at
	`, r.ID, nullable(r.UserID), r.FullName, r.Email, r.Phone, r.VisitDate, r.VisitTime,
		r.PartySize, r.Notes, r.Status).Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (p *PGRepo) Get(ctx context.Context, id string) (*Reservation, error) {
	if !db.IsUUID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scan(p.db.QueryRow(ctx, `SELECT `+cols+` FROM reservaciones WHERE id=$1`, id))
}

func (p *PGRepo) List(ctx context.Context, q Query) ([]Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := p.db.Query(ctx, `
		SELECT `+cols+` FROM reservaciones
		WHERE ($1 = '' OR visit_date = NULLIF($1, '')::date)
		  AND ($2 = '' OR status = $2)
		ORDER BY visit_date, visit_time, created_at
	`, q.Date, string(q.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Reservation
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (p *PGRepo) Update(ctx context.Context, r *Reservation) error {
	if !db.IsUUID(r.ID) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.db.QueryRow(ctx, `
		UPDATE reservaciones SET
			full_name=$2, email=$3, phone=$4, visit_date=$5::date, visit_time=$6,
			party_size=$7, notes=$8, status=$9, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, r.ID, r.FullName, r.Email, r.Phone, r.VisitDate, r.VisitTime,
		r.PartySize, r.Notes, r.Status).Scan(&r.UpdatedAt)
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

	tag, err := p.db.Exec(ctx, `DELETE FROM reservaciones WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
