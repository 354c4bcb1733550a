// Package ledger stores confirmed validation records keyed by passport
// number.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"veripass/internal/claims"
	"veripass/internal/sentinel"
	"veripass/internal/validation/models"
)

// PostgresStore persists validation records in PostgreSQL. A unique index on
// passport_number enforces the one-record-per-passport invariant at the
// storage layer; concurrent duplicate inserts surface as a conflict instead
// of being silently prevented in-process.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Exists fetches the candidate row by passport number and compares the full
// normalized field set under the comparator rules. The key lookup bounds
// cost; the equivalence definition stays the comparator's, not the key's.
func (s *PostgresStore) Exists(ctx context.Context, claim *claims.Record) (bool, error) {
	query := `
		SELECT id, first_name, last_name, birth_date, place_of_birth,
		       country_of_citizenship, gender, passport_number,
		       date_of_issue, date_of_expiry, validated_at
		FROM validation_records
		WHERE passport_number = $1
	`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, claim.PassportNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("find validation record: %w", err)
	}
	return rec.Claim.Matches(claim), nil
}

// Record inserts a confirmed claim.
func (s *PostgresStore) Record(ctx context.Context, rec *models.ValidationRecord) error {
	if rec == nil {
		return fmt.Errorf("validation record is required")
	}
	query := `
		INSERT INTO validation_records (
			id, first_name, last_name, birth_date, place_of_birth,
			country_of_citizenship, gender, passport_number,
			date_of_issue, date_of_expiry, validated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Claim.FirstName,
		rec.Claim.LastName,
		rec.Claim.BirthDate.Time(),
		rec.Claim.PlaceOfBirth,
		rec.Claim.CountryOfCitizenship,
		string(rec.Claim.Gender),
		rec.Claim.PassportNumber,
		rec.Claim.DateOfIssue.Time(),
		rec.Claim.DateOfExpiry.Time(),
		rec.ValidatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("passport number already recorded: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("record validation: %w", err)
	}
	return nil
}

// DeleteByPassportNumber removes the entry for the passport number.
func (s *PostgresStore) DeleteByPassportNumber(ctx context.Context, passportNumber string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM validation_records WHERE passport_number = $1`, passportNumber)
	if err != nil {
		return fmt.Errorf("delete validation record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete validation record rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("validation record not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// ListAll returns all validation records ordered by validation time.
func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.ValidationRecord, error) {
	query := `
		SELECT id, first_name, last_name, birth_date, place_of_birth,
		       country_of_citizenship, gender, passport_number,
		       date_of_issue, date_of_expiry, validated_at
		FROM validation_records
		ORDER BY validated_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list validation records: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var out []*models.ValidationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan validation record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validation records: %w", err)
	}
	return out, nil
}

type recordRow interface {
	Scan(dest ...any) error
}

func scanRecord(row recordRow) (*models.ValidationRecord, error) {
	var rec models.ValidationRecord
	var recID uuid.UUID
	var gender string
	var birthDate, issueDate, expiryDate sqlDate
	if err := row.Scan(
		&recID,
		&rec.Claim.FirstName,
		&rec.Claim.LastName,
		&birthDate,
		&rec.Claim.PlaceOfBirth,
		&rec.Claim.CountryOfCitizenship,
		&gender,
		&rec.Claim.PassportNumber,
		&issueDate,
		&expiryDate,
		&rec.ValidatedAt,
	); err != nil {
		return nil, err
	}
	rec.ID = recID
	rec.Claim.Gender = claims.Gender(gender)
	rec.Claim.BirthDate = birthDate.date()
	rec.Claim.DateOfIssue = issueDate.date()
	rec.Claim.DateOfExpiry = expiryDate.date()
	return &rec, nil
}

// sqlDate scans a DATE column into the calendar-date value type without
// carrying the driver's midnight timestamp around.
type sqlDate struct {
	t time.Time
}

func (d *sqlDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.t = v
		return nil
	case string:
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return fmt.Errorf("scan date: %w", err)
		}
		d.t = t
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (d sqlDate) date() claims.Date {
	return claims.DateOf(d.t)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
