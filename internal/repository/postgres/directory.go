package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ledgerbot/internal/domain"
)

var fieldColumns = map[domain.Field]string{
	domain.FieldEmail:       "email",
	domain.FieldLedgerID:    "ledger_id",
	domain.FieldLedgerURL:   "ledger_url",
	domain.FieldDisplayName: "display_name",
	domain.FieldNote:        "note",
}

// DirectoryRepo implements repository.DirectoryRepository on a subscribers table
type DirectoryRepo struct {
	db *sql.DB
}

// NewDirectoryRepo creates a new directory repository
func NewDirectoryRepo(db *sql.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

// FindByPhone returns the subscriber row for a canonical phone
func (r *DirectoryRepo) FindByPhone(ctx context.Context, phone string) (*domain.Subscriber, error) {
	var s domain.Subscriber
	query := `
		SELECT phone, email, authorized, ledger_id, ledger_url, display_name, note
		FROM subscribers
		WHERE phone = $1
	`
	err := r.db.QueryRowContext(ctx, query, phone).Scan(
		&s.Phone, &s.Email, &s.Authorized, &s.LedgerID, &s.LedgerURL, &s.DisplayName, &s.Note,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find subscriber: %w", domain.ErrRemoteStore, err)
	}

	return &s, nil
}

// SetFields updates the given columns of an existing subscriber
func (r *DirectoryRepo) SetFields(ctx context.Context, phone string, fields map[domain.Field]string) error {
	if len(fields) == 0 {
		return nil
	}

	// sorted so the statement text is stable
	keys := make([]string, 0, len(fields))
	for f := range fields {
		if _, ok := fieldColumns[f]; !ok {
			return fmt.Errorf("unknown subscriber field %q", f)
		}
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys)+1)
	for i, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", fieldColumns[domain.Field(k)], i+1))
		args = append(args, fields[domain.Field(k)])
	}
	args = append(args, phone)

	query := fmt.Sprintf(
		"UPDATE subscribers SET %s, updated_at = NOW() WHERE phone = $%d",
		strings.Join(sets, ", "),
		len(args),
	)
	return r.exec(ctx, "update subscriber fields", query, args...)
}

// SetAuthorized flips the authorization flag of an existing subscriber
func (r *DirectoryRepo) SetAuthorized(ctx context.Context, phone string, authorized bool) error {
	query := `UPDATE subscribers SET authorized = $1, updated_at = NOW() WHERE phone = $2`
	return r.exec(ctx, "set authorized", query, authorized, phone)
}

// Append inserts an authorized subscriber or authorizes the existing row
func (r *DirectoryRepo) Append(ctx context.Context, phone string) error {
	query := `
		INSERT INTO subscribers (phone, authorized)
		VALUES ($1, TRUE)
		ON CONFLICT (phone)
		DO UPDATE SET authorized = TRUE, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, phone); err != nil {
		return fmt.Errorf("%w: append subscriber: %w", domain.ErrRemoteStore, err)
	}
	return nil
}

func (r *DirectoryRepo) exec(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrRemoteStore, op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrRemoteStore, op, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
