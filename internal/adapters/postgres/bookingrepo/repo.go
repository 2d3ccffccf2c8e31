package bookingrepo

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
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/bookingrepo"
)

// Repo is a Postgres implementation of bookingrepo.Repository.
//
// Every capacity-guarded write takes SELECT ... FOR UPDATE on the trip row
// before reading the confirmed head-count, so two writers against the same
// trip serialize at the database and the check-then-write cannot interleave.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) CreateIfAvailable(ctx context.Context, b bookingrepo.Booking, capacity int) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(b.ID))
	if err != nil {
		return fmt.Errorf("invalid booking id: %w", err)
	}
	tripID, err := uuid.Parse(string(b.TripID))
	if err != nil {
		return bookingrepo.ErrTripNotFound
	}
	userID, err := uuid.Parse(string(b.UserID))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tripRowID, err := lockTripRow(ctx, tx, tripID)
		if err != nil {
			return err
		}
		confirmed, err := confirmedParticipants(ctx, tx, tripRowID)
		if err != nil {
			return err
		}
		if b.Participants > capacity-confirmed {
			return bookingrepo.ErrInsufficientCapacity
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bookings (
				external_id,
				trip_id,
				user_id,
				status,
				participants,
				total_price_cents,
				created_at,
				updated_at
			) VALUES (
				$1,
				$2,
				(SELECT id FROM users WHERE external_id = $3),
				$4, $5, $6, $7, $8
			)
		`,
			id,
			tripRowID,
			userID,
			string(b.Status),
			b.Participants,
			int64(b.TotalPrice),
			b.CreatedAt.UTC(),
			b.UpdatedAt.UTC(),
		)
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
				switch pe.ConstraintName {
				case "bookings_user_trip_unique":
					return bookingrepo.ErrAlreadyBooked
				case "bookings_external_id_unique":
					return bookingrepo.ErrAlreadyExists
				}
			}
			return err
		}
		return nil
	})
}

func (r *Repo) ConfirmIfAvailable(ctx context.Context, id domain.BookingID, capacity int, now time.Time) (bookingrepo.Booking, error) {
	if r.pool == nil {
		return bookingrepo.Booking{}, errors.New("nil postgres pool")
	}
	bid, err := uuid.Parse(string(id))
	if err != nil {
		return bookingrepo.Booking{}, bookingrepo.ErrNotFound
	}

	var out bookingrepo.Booking
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var bookingRowID, tripRowID int64
		if err := tx.QueryRow(ctx, `
			SELECT id, trip_id FROM bookings WHERE external_id = $1
		`, bid).Scan(&bookingRowID, &tripRowID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return bookingrepo.ErrNotFound
			}
			return err
		}

		// Serialization point: every status write on this trip queues here.
		if _, err := lockTripRowByID(ctx, tx, tripRowID); err != nil {
			return err
		}

		var status string
		var participants int
		if err := tx.QueryRow(ctx, `
			SELECT status, participants FROM bookings WHERE id = $1
		`, bookingRowID).Scan(&status, &participants); err != nil {
			return err
		}
		if bookingrepo.Status(status) != bookingrepo.StatusPending {
			return bookingrepo.ErrNotPending
		}

		confirmed, err := confirmedParticipants(ctx, tx, tripRowID)
		if err != nil {
			return err
		}
		if participants > capacity-confirmed {
			return bookingrepo.ErrInsufficientCapacity
		}

		ct, err := tx.Exec(ctx, `
			UPDATE bookings
			SET status = 'CONFIRMED', updated_at = $2
			WHERE id = $1 AND status = 'PENDING'
		`, bookingRowID, now.UTC())
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return bookingrepo.ErrNotPending
		}

		b, err := getBookingTx(ctx, tx, bid)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return bookingrepo.Booking{}, err
	}
	return out, nil
}

func (r *Repo) Cancel(ctx context.Context, id domain.BookingID, now time.Time) (bookingrepo.Booking, error) {
	if r.pool == nil {
		return bookingrepo.Booking{}, errors.New("nil postgres pool")
	}
	bid, err := uuid.Parse(string(id))
	if err != nil {
		return bookingrepo.Booking{}, bookingrepo.ErrNotFound
	}

	var out bookingrepo.Booking
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var bookingRowID, tripRowID int64
		if err := tx.QueryRow(ctx, `
			SELECT id, trip_id FROM bookings WHERE external_id = $1
		`, bid).Scan(&bookingRowID, &tripRowID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return bookingrepo.ErrNotFound
			}
			return err
		}

		if _, err := lockTripRowByID(ctx, tx, tripRowID); err != nil {
			return err
		}

		var status string
		if err := tx.QueryRow(ctx, `
			SELECT status FROM bookings WHERE id = $1
		`, bookingRowID).Scan(&status); err != nil {
			return err
		}
		if bookingrepo.Status(status) == bookingrepo.StatusCancelled {
			return bookingrepo.ErrAlreadyCancelled
		}

		ct, err := tx.Exec(ctx, `
			UPDATE bookings
			SET status = 'CANCELLED', updated_at = $2
			WHERE id = $1 AND status = $3
		`, bookingRowID, now.UTC(), status)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return bookingrepo.ErrAlreadyCancelled
		}

		b, err := getBookingTx(ctx, tx, bid)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return bookingrepo.Booking{}, err
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.BookingID) (bookingrepo.Booking, error) {
	if r.pool == nil {
		return bookingrepo.Booking{}, errors.New("nil postgres pool")
	}
	bid, err := uuid.Parse(string(id))
	if err != nil {
		return bookingrepo.Booking{}, bookingrepo.ErrNotFound
	}
	return scanBooking(r.pool.QueryRow(ctx, selectBooking+` WHERE b.external_id = $1`, bid))
}

func (r *Repo) GetByUserAndTrip(ctx context.Context, user domain.UserID, trip domain.TripID) (bookingrepo.Booking, error) {
	if r.pool == nil {
		return bookingrepo.Booking{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(user))
	if err != nil {
		return bookingrepo.Booking{}, bookingrepo.ErrNotFound
	}
	tid, err := uuid.Parse(string(trip))
	if err != nil {
		return bookingrepo.Booking{}, bookingrepo.ErrNotFound
	}
	return scanBooking(r.pool.QueryRow(ctx, selectBooking+` WHERE u.external_id = $1 AND t.external_id = $2`, uid, tid))
}

func (r *Repo) ListByUser(ctx context.Context, user domain.UserID) ([]bookingrepo.Booking, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(user))
	if err != nil {
		return []bookingrepo.Booking{}, nil
	}
	rows, err := r.pool.Query(ctx, selectBooking+`
		WHERE u.external_id = $1
		ORDER BY b.created_at ASC, b.external_id ASC
	`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *Repo) ListByTrip(ctx context.Context, trip domain.TripID) ([]bookingrepo.Booking, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	tid, err := uuid.Parse(string(trip))
	if err != nil {
		return []bookingrepo.Booking{}, nil
	}
	rows, err := r.pool.Query(ctx, selectBooking+`
		WHERE t.external_id = $1
		ORDER BY b.created_at ASC, b.external_id ASC
	`, tid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *Repo) ConfirmedParticipants(ctx context.Context, trip domain.TripID) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	tid, err := uuid.Parse(string(trip))
	if err != nil {
		return 0, nil
	}
	var n int
	if err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(b.participants), 0)
		FROM bookings b
		JOIN trips t ON t.id = b.trip_id
		WHERE t.external_id = $1 AND b.status = 'CONFIRMED'
	`, tid).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) ConfirmedRevenue(ctx context.Context, trip domain.TripID) (domain.Cents, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	tid, err := uuid.Parse(string(trip))
	if err != nil {
		return 0, nil
	}
	var total int64
	if err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(b.total_price_cents), 0)
		FROM bookings b
		JOIN trips t ON t.id = b.trip_id
		WHERE t.external_id = $1 AND b.status = 'CONFIRMED'
	`, tid).Scan(&total); err != nil {
		return 0, err
	}
	return domain.Cents(total), nil
}

func (r *Repo) DeleteByTrip(ctx context.Context, trip domain.TripID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	tid, err := uuid.Parse(string(trip))
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `
		DELETE FROM bookings
		WHERE trip_id = (SELECT id FROM trips WHERE external_id = $1)
	`, tid)
	return err
}

func (r *Repo) DeleteByUser(ctx context.Context, user domain.UserID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(user))
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `
		DELETE FROM bookings
		WHERE user_id = (SELECT id FROM users WHERE external_id = $1)
	`, uid)
	return err
}

// --- helpers ---

func lockTripRow(ctx context.Context, tx pgx.Tx, tripExternalID uuid.UUID) (int64, error) {
	var id int64
	if err := tx.QueryRow(ctx, `
		SELECT id FROM trips WHERE external_id = $1 FOR UPDATE
	`, tripExternalID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, bookingrepo.ErrTripNotFound
		}
		return 0, err
	}
	return id, nil
}

func lockTripRowByID(ctx context.Context, tx pgx.Tx, tripRowID int64) (int64, error) {
	var id int64
	if err := tx.QueryRow(ctx, `
		SELECT id FROM trips WHERE id = $1 FOR UPDATE
	`, tripRowID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, bookingrepo.ErrTripNotFound
		}
		return 0, err
	}
	return id, nil
}

func confirmedParticipants(ctx context.Context, tx pgx.Tx, tripRowID int64) (int, error) {
	var n int
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(participants), 0)
		FROM bookings
		WHERE trip_id = $1 AND status = 'CONFIRMED'
	`, tripRowID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

const selectBooking = `
	SELECT
		b.external_id,
		t.external_id,
		u.external_id,
		b.status,
		b.participants,
		b.total_price_cents,
		b.created_at,
		b.updated_at
	FROM bookings b
	JOIN trips t ON t.id = b.trip_id
	JOIN users u ON u.id = b.user_id
`

func getBookingTx(ctx context.Context, tx pgx.Tx, externalID uuid.UUID) (bookingrepo.Booking, error) {
	return scanBooking(tx.QueryRow(ctx, selectBooking+` WHERE b.external_id = $1`, externalID))
}

func collectBookings(rows pgx.Rows) ([]bookingrepo.Booking, error) {
	out := make([]bookingrepo.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanBooking(row pgx.Row) (bookingrepo.Booking, error) {
	var (
		externalID uuid.UUID
		tripID     uuid.UUID
		userID     uuid.UUID
		status     string
		parts      int
		totalCents int64
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(
		&externalID,
		&tripID,
		&userID,
		&status,
		&parts,
		&totalCents,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookingrepo.Booking{}, bookingrepo.ErrNotFound
		}
		return bookingrepo.Booking{}, err
	}
	return bookingrepo.Booking{
		ID:           domain.BookingID(externalID.String()),
		TripID:       domain.TripID(tripID.String()),
		UserID:       domain.UserID(userID.String()),
		Status:       bookingrepo.Status(status),
		Participants: parts,
		TotalPrice:   domain.Cents(totalCents),
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    updatedAt.UTC(),
	}, nil
}
