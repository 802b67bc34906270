package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fixacareer/fixauth"
)

const userColumns = `record_id, user_id, first_name, last_name, email, phone,
	password_hash, education_level, created_at, updated_at`

// UserStore is the PostgreSQL implementation of [fixauth.UserStore].
type UserStore struct {
	db DBTX
}

// NewUserStore returns a store backed by db.
func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

// GetByEmail looks up a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*fixauth.UserRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByID looks up a user by record ID.
func (s *UserStore) GetByID(ctx context.Context, recordID string) (*fixauth.UserRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE record_id = $1`, recordID)
	return scanUser(row)
}

// LastInserted returns the most recently created user, or
// [fixauth.ErrPrincipalNotFound] when the table is empty.
func (s *UserStore) LastInserted(ctx context.Context) (*fixauth.UserRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY created_at DESC, split_part(user_id, '-', 2)::bigint DESC LIMIT 1`)
	return scanUser(row)
}

// Create inserts a new user record and returns it as stored.
func (s *UserStore) Create(ctx context.Context, record *fixauth.UserRecord) (*fixauth.UserRecord, error) {
	now := time.Now().UTC()
	stored := *record
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		stored.RecordID, stored.ID, stored.FirstName, stored.LastName,
		stored.Email, stored.Phone, stored.PasswordHash, stored.EducationLevel,
		stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, storeErr("insert user", err)
	}
	return &stored, nil
}

func scanUser(row *sql.Row) (*fixauth.UserRecord, error) {
	var rec fixauth.UserRecord
	err := row.Scan(&rec.RecordID, &rec.ID, &rec.FirstName, &rec.LastName,
		&rec.Email, &rec.Phone, &rec.PasswordHash, &rec.EducationLevel,
		&rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fixauth.ErrPrincipalNotFound
	}
	if err != nil {
		return nil, storeErr("scan user", err)
	}
	return &rec, nil
}
