package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"visuplant/internal/waitlist/models"
	"visuplant/pkg/platform/sentinel"
	"visuplant/pkg/requestcontext"
)

// PostgresStore persists waitlist entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed waitlist store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `unit_code, position, buyer_name, buyer_phone, buyer_email, buyer_tax_id, agent_name, created_at, updated_at`

// Join runs the duplicate check and the position-computing insert in one
// transaction. The parent unit row is locked first, which both validates
// the unit exists and serializes concurrent joins per unit.
func (s *PostgresStore) Join(ctx context.Context, entry models.Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin waitlist join tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM units WHERE code = $1 FOR UPDATE`, entry.UnitCode).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("lock unit %s: %w", entry.UnitCode, err)
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM waitlist WHERE unit_code = $1 AND buyer_tax_id = $2)`,
		entry.UnitCode, entry.TaxID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check waitlist duplicate: %w", err)
	}
	if exists {
		return 0, sentinel.ErrDuplicate
	}

	now := requestcontext.Now(ctx)
	var position int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO waitlist (unit_code, position, buyer_name, buyer_phone, buyer_email, buyer_tax_id, agent_name, created_at, updated_at)
		SELECT $1, COALESCE(MAX(position), 0) + 1, $2, $3, $4, $5, $6, $7, $7
		FROM waitlist WHERE unit_code = $1
		RETURNING position`,
		entry.UnitCode, entry.Name, entry.Phone, entry.Email, entry.TaxID,
		entry.AgentName, now).Scan(&position)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, sentinel.ErrDuplicate
		}
		return 0, fmt.Errorf("insert waitlist entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit waitlist join tx: %w", err)
	}
	return position, nil
}

func (s *PostgresStore) ListForUnit(ctx context.Context, unitCode string) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM waitlist WHERE unit_code = $1 ORDER BY position ASC`,
		unitCode)
	if err != nil {
		return nil, fmt.Errorf("list waitlist for unit %s: %w", unitCode, err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (s *PostgresStore) SizeForUnit(ctx context.Context, unitCode string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM waitlist WHERE unit_code = $1`, unitCode).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("waitlist size for unit %s: %w", unitCode, err)
	}
	return count, nil
}

func (s *PostgresStore) FindEntry(ctx context.Context, unitCode, taxID string) (*models.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM waitlist WHERE unit_code = $1 AND buyer_tax_id = $2`,
		unitCode, taxID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find waitlist entry: %w", err)
	}
	return &entry, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM waitlist ORDER BY unit_code, position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all waitlists: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Remove deletes one entry without renumbering the rest of the queue.
// Not part of the service surface: staff follow-up tooling only. The gap
// it leaves is intentional and never healed.
func (s *PostgresStore) Remove(ctx context.Context, unitCode, taxID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM waitlist WHERE unit_code = $1 AND buyer_tax_id = $2`,
		unitCode, taxID)
	if err != nil {
		return fmt.Errorf("remove waitlist entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove waitlist entry: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func collectEntries(rows *sql.Rows) ([]models.Entry, error) {
	var entries []models.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan waitlist entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate waitlist entries: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.Entry, error) {
	var e models.Entry
	err := row.Scan(&e.UnitCode, &e.Position,
		&e.Name, &e.Phone, &e.Email, &e.TaxID,
		&e.AgentName, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
