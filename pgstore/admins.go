package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fixacareer/fixauth"
)

const adminColumns = `record_id, admin_id, first_name, last_name, gender, email, phone, avatar,
	password_hash, encrypted_seed, second_factor, is_first_login, permissions,
	added_by, last_updated_by, created_at, updated_at`

// AdminStore is the PostgreSQL implementation of [fixauth.AdminStore].
type AdminStore struct {
	db DBTX
}

// NewAdminStore returns a store backed by db.
func NewAdminStore(db DBTX) *AdminStore {
	return &AdminStore{db: db}
}

// GetByEmail looks up an administrator by email. The match is exact; the
// engine normalizes emails before calling.
func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*fixauth.AdminRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = $1`, email)
	return scanAdmin(row)
}

// GetByID looks up an administrator by record ID.
func (s *AdminStore) GetByID(ctx context.Context, recordID string) (*fixauth.AdminRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE record_id = $1`, recordID)
	return scanAdmin(row)
}

// LastInserted returns the most recently created administrator, or
// [fixauth.ErrPrincipalNotFound] when the table is empty.
func (s *AdminStore) LastInserted(ctx context.Context) (*fixauth.AdminRecord, error) {
	row := s.db.QueryRowContext(ctx,
		// tiebreak on the numeric suffix; lexicographic order misplaces
		// ADM-10000 relative to ADM-9999
		`SELECT `+adminColumns+` FROM admins
		 ORDER BY created_at DESC, split_part(admin_id, '-', 2)::bigint DESC LIMIT 1`)
	return scanAdmin(row)
}

// Create inserts a new administrator record and returns it as stored.
func (s *AdminStore) Create(ctx context.Context, record *fixauth.AdminRecord) (*fixauth.AdminRecord, error) {
	perms, err := json.Marshal(permsOrEmpty(record.Permissions))
	if err != nil {
		return nil, fmt.Errorf("encode permissions: %w", err)
	}

	now := time.Now().UTC()
	stored := *record
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admins (`+adminColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		stored.RecordID, stored.ID, stored.FirstName, stored.LastName, stored.Gender,
		stored.Email, stored.Phone, stored.Avatar, stored.PasswordHash, stored.EncryptedSeed,
		string(stored.SecondFactorMethod), stored.IsFirstLogin, perms,
		stored.AddedBy, stored.LastUpdatedBy, stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, storeErr("insert admin", err)
	}
	return &stored, nil
}

// Update applies the non-nil fields of update and returns the refreshed
// record.
func (s *AdminStore) Update(ctx context.Context, recordID string, update fixauth.AdminUpdate) (*fixauth.AdminRecord, error) {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.SecondFactorMethod != nil {
		add("second_factor", string(*update.SecondFactorMethod))
	}
	if update.IsFirstLogin != nil {
		add("is_first_login", *update.IsFirstLogin)
	}
	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}
	if update.Permissions != nil {
		perms, err := json.Marshal(update.Permissions)
		if err != nil {
			return nil, fmt.Errorf("encode permissions: %w", err)
		}
		add("permissions", perms)
	}
	if update.LastUpdatedBy != nil {
		add("last_updated_by", *update.LastUpdatedBy)
	}

	args = append(args, recordID)
	query := fmt.Sprintf(`UPDATE admins SET %s WHERE record_id = $%d`,
		strings.Join(sets, ", "), len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("update admin", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fixauth.ErrPrincipalNotFound
	}
	return s.GetByID(ctx, recordID)
}

func scanAdmin(row *sql.Row) (*fixauth.AdminRecord, error) {
	var (
		rec    fixauth.AdminRecord
		method string
		perms  []byte
	)
	err := row.Scan(&rec.RecordID, &rec.ID, &rec.FirstName, &rec.LastName, &rec.Gender,
		&rec.Email, &rec.Phone, &rec.Avatar, &rec.PasswordHash, &rec.EncryptedSeed,
		&method, &rec.IsFirstLogin, &perms,
		&rec.AddedBy, &rec.LastUpdatedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fixauth.ErrPrincipalNotFound
	}
	if err != nil {
		return nil, storeErr("scan admin", err)
	}
	rec.SecondFactorMethod = fixauth.SecondFactorMethod(method)
	if err := json.Unmarshal(perms, &rec.Permissions); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	return &rec, nil
}

func permsOrEmpty(perms []string) []string {
	if perms == nil {
		return []string{}
	}
	return perms
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, fixauth.ErrStoreUnavailable, err)
}
