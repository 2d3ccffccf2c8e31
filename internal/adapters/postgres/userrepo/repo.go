package userrepo

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
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/userrepo"
)

// Repo is a Postgres implementation of userrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(u.ID))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (
			external_id,
			subject,
			handle,
			email,
			phone,
			bio,
			date_of_birth,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		id,
		string(u.Subject),
		u.Handle,
		u.Email,
		u.Phone,
		u.Bio,
		u.DateOfBirth,
		u.CreatedAt.UTC(),
		u.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "users_subject_unique":
				return userrepo.ErrSubjectAlreadyBound
			case "users_handle_unique":
				return userrepo.ErrHandleTaken
			case "users_email_unique":
				return userrepo.ErrEmailTaken
			case "users_external_id_unique":
				return userrepo.ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, u userrepo.User) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(u.ID))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	ct, err := r.pool.Exec(ctx, `
		UPDATE users
		SET handle = $2,
		    email = $3,
		    phone = $4,
		    bio = $5,
		    date_of_birth = $6,
		    updated_at = $7
		WHERE external_id = $1
	`,
		id,
		u.Handle,
		u.Email,
		u.Phone,
		u.Bio,
		u.DateOfBirth,
		u.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "users_handle_unique":
				return userrepo.ErrHandleTaken
			case "users_email_unique":
				return userrepo.ErrEmailTaken
			}
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (userrepo.User, error) {
	if r.pool == nil {
		return userrepo.User{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return userrepo.User{}, userrepo.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE external_id = $1`, uid))
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (userrepo.User, error) {
	if r.pool == nil {
		return userrepo.User{}, errors.New("nil postgres pool")
	}
	return scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE subject = $1`, string(subject)))
}

func (r *Repo) Delete(ctx context.Context, id domain.UserID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return userrepo.ErrNotFound
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM users WHERE external_id = $1`, uid)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}
	return nil
}

const selectUser = `
	SELECT
		external_id,
		subject,
		handle,
		email,
		phone,
		bio,
		date_of_birth,
		created_at,
		updated_at
	FROM users
`

func scanUser(row pgx.Row) (userrepo.User, error) {
	var (
		externalID  uuid.UUID
		subject     string
		handle      string
		email       string
		phone       *string
		bio         *string
		dateOfBirth *time.Time
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(
		&externalID,
		&subject,
		&handle,
		&email,
		&phone,
		&bio,
		&dateOfBirth,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userrepo.User{}, userrepo.ErrNotFound
		}
		return userrepo.User{}, err
	}
	if dateOfBirth != nil {
		v := dateOfBirth.UTC()
		dateOfBirth = &v
	}
	return userrepo.User{
		ID:          domain.UserID(externalID.String()),
		Subject:     domain.SubjectID(subject),
		Handle:      handle,
		Email:       email,
		Phone:       phone,
		Bio:         bio,
		DateOfBirth: dateOfBirth,
		CreatedAt:   createdAt.UTC(),
		UpdatedAt:   updatedAt.UTC(),
	}, nil
}
