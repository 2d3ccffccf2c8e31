package triprepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/sharetrip-app/sharetrip-api/internal/adapters/postgres"
	"github.com/sharetrip-app/sharetrip-api/internal/domain"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/triprepo"
)

// Repo is a Postgres implementation of triprepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(t.ID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}
	creatorID, err := uuid.Parse(string(t.CreatorID))
	if err != nil {
		return fmt.Errorf("invalid creator id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO trips (
			external_id,
			creator_id,
			status,
			title,
			description,
			destination,
			start_date,
			end_date,
			max_participants,
			price_per_person_cents,
			created_at,
			updated_at
		) VALUES (
			$1,
			(SELECT id FROM users WHERE external_id = $2),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`,
		id,
		creatorID,
		string(t.Status),
		t.Title,
		t.Description,
		t.Destination,
		t.StartDate.UTC(),
		t.EndDate.UTC(),
		t.MaxParticipants,
		int64(t.PricePerPerson),
		t.CreatedAt.UTC(),
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == "trips_external_id_unique" {
			return triprepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, t triprepo.Trip) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(t.ID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}

	ct, err := r.pool.Exec(ctx, `
		UPDATE trips
		SET status = $2,
		    title = $3,
		    description = $4,
		    destination = $5,
		    start_date = $6,
		    end_date = $7,
		    max_participants = $8,
		    price_per_person_cents = $9,
		    updated_at = $10
		WHERE external_id = $1
	`,
		id,
		string(t.Status),
		t.Title,
		t.Description,
		t.Destination,
		t.StartDate.UTC(),
		t.EndDate.UTC(),
		t.MaxParticipants,
		int64(t.PricePerPerson),
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return triprepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.TripID) (triprepo.Trip, error) {
	if r.pool == nil {
		return triprepo.Trip{}, errors.New("nil postgres pool")
	}
	tid, err := uuid.Parse(string(id))
	if err != nil {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}
	return scanTrip(r.pool.QueryRow(ctx, selectTrip+` WHERE t.external_id = $1`, tid))
}

func (r *Repo) ListPublished(ctx context.Context) ([]triprepo.Trip, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, selectTrip+`
		WHERE t.status = 'PUBLISHED'
		ORDER BY t.start_date ASC, t.external_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrips(rows)
}

func (r *Repo) ListByCreator(ctx context.Context, creator domain.UserID) ([]triprepo.Trip, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	cid, err := uuid.Parse(string(creator))
	if err != nil {
		return []triprepo.Trip{}, nil
	}
	rows, err := r.pool.Query(ctx, selectTrip+`
		WHERE u.external_id = $1
		ORDER BY t.start_date ASC, t.external_id ASC
	`, cid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrips(rows)
}

func (r *Repo) Delete(ctx context.Context, id domain.TripID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	tid, err := uuid.Parse(string(id))
	if err != nil {
		return triprepo.ErrNotFound
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM trips WHERE external_id = $1`, tid)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return triprepo.ErrNotFound
	}
	return nil
}

const selectTrip = `
	SELECT
		t.external_id,
		u.external_id,
		t.status,
		t.title,
		t.description,
		t.destination,
		t.start_date,
		t.end_date,
		t.max_participants,
		t.price_per_person_cents,
		t.created_at,
		t.updated_at
	FROM trips t
	JOIN users u ON u.id = t.creator_id
`

func scanTrip(row pgx.Row) (triprepo.Trip, error) {
	var (
		externalID      uuid.UUID
		creatorID       uuid.UUID
		status          string
		title           string
		description     string
		destination     string
		startDate       time.Time
		endDate         time.Time
		maxParticipants int
		priceCents      int64
		createdAt       time.Time
		updatedAt       time.Time
	)
	if err := row.Scan(
		&externalID,
		&creatorID,
		&status,
		&title,
		&description,
		&destination,
		&startDate,
		&endDate,
		&maxParticipants,
		&priceCents,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return triprepo.Trip{}, triprepo.ErrNotFound
		}
		return triprepo.Trip{}, err
	}
	return triprepo.Trip{
		ID:              domain.TripID(externalID.String()),
		CreatorID:       domain.UserID(creatorID.String()),
		Status:          triprepo.Status(status),
		Title:           title,
		Description:     description,
		Destination:     destination,
		StartDate:       startDate.UTC(),
		EndDate:         endDate.UTC(),
		MaxParticipants: maxParticipants,
		PricePerPerson:  domain.Cents(priceCents),
		CreatedAt:       createdAt.UTC(),
		UpdatedAt:       updatedAt.UTC(),
	}, nil
}

func collectTrips(rows pgx.Rows) ([]triprepo.Trip, error) {
	out := make([]triprepo.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
