package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"visuplant/internal/inventory/models"
	"visuplant/pkg/platform/sentinel"
	"visuplant/pkg/requestcontext"
)

// PostgresStore persists units in PostgreSQL. Every transition is one
// conditional UPDATE matching the current status; no row locks.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed unit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const unitColumns = `code, status, buyer_name, buyer_phone, buyer_email, buyer_tax_id, agent_name, created_at, updated_at`

func (s *PostgresStore) List(ctx context.Context) ([]models.Unit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM units ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

func (s *PostgresStore) GetByCode(ctx context.Context, code string) (*models.Unit, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE code = $1`, code)
	unit, err := scanUnit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get unit %s: %w", code, err)
	}
	return &unit, nil
}

func (s *PostgresStore) Reserve(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE units
		SET status = 'negotiating', updated_at = $2
		WHERE code = $1 AND status = 'available'`,
		code, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("reserve unit %s: %w", code, err)
	}
	return s.requireOneRow(ctx, res, code)
}

func (s *PostgresStore) ConfirmSale(ctx context.Context, code string, buyer models.Buyer, agentName string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE units
		SET status = 'reserved',
		    buyer_name = $2,
		    buyer_phone = $3,
		    buyer_email = $4,
		    buyer_tax_id = $5,
		    agent_name = $6,
		    updated_at = $7
		WHERE code = $1 AND status = 'negotiating'`,
		code, buyer.Name, buyer.Phone, buyer.Email, buyer.TaxID, agentName,
		requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("confirm sale of unit %s: %w", code, err)
	}
	return s.requireOneRow(ctx, res, code)
}

func (s *PostgresStore) Release(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE units
		SET status = 'available',
		    buyer_name = '',
		    buyer_phone = '',
		    buyer_email = '',
		    buyer_tax_id = '',
		    agent_name = '',
		    updated_at = $2
		WHERE code = $1 AND status = 'negotiating'`,
		code, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("release unit %s: %w", code, err)
	}
	return s.requireOneRow(ctx, res, code)
}

func (s *PostgresStore) FastTrackSale(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE units
		SET status = 'reserved',
		    buyer_name = '',
		    buyer_phone = '',
		    buyer_email = '',
		    buyer_tax_id = '',
		    agent_name = '',
		    updated_at = $2
		WHERE code = $1 AND status IN ('available', 'negotiating')`,
		code, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("fast-track sale of unit %s: %w", code, err)
	}
	return s.requireOneRow(ctx, res, code)
}

func (s *PostgresStore) RestockAvailable(ctx context.Context, codes []string) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	now := requestcontext.Now(ctx)
	placeholders := make([]string, len(codes))
	args := make([]any, 0, len(codes)+1)
	for i, code := range codes {
		placeholders[i] = fmt.Sprintf("($%d, 'available', $%d, $%d)", i+1, len(codes)+1, len(codes)+1)
		args = append(args, code)
	}
	args = append(args, now)

	// Single statement, so the batch is atomic without an explicit tx.
	query := `
		INSERT INTO units (code, status, created_at, updated_at)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (code) DO UPDATE SET
			status = 'available',
			buyer_name = '',
			buyer_phone = '',
			buyer_email = '',
			buyer_tax_id = '',
			agent_name = '',
			updated_at = EXCLUDED.updated_at`

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("restock units: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("restock units: %w", err)
	}
	return int(affected), nil
}

func (s *PostgresStore) CountActiveByTaxID(ctx context.Context, taxID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM units
		WHERE buyer_tax_id = $1 AND status IN ('negotiating', 'reserved')`,
		taxID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active units for tax id: %w", err)
	}
	return count, nil
}

// requireOneRow classifies a zero-row conditional update: the unit either
// does not exist (not found) or its status moved on (conflict).
func (s *PostgresStore) requireOneRow(ctx context.Context, res sql.Result, code string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for unit %s: %w", code, err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM units WHERE code = $1)`, code).Scan(&exists); err != nil {
		return fmt.Errorf("check unit %s exists: %w", code, err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (models.Unit, error) {
	var u models.Unit
	var status string
	err := row.Scan(&u.Code, &status,
		&u.Buyer.Name, &u.Buyer.Phone, &u.Buyer.Email, &u.Buyer.TaxID,
		&u.AgentName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.Unit{}, err
	}
	parsed, err := models.ParseStatus(status)
	if err != nil {
		return models.Unit{}, err
	}
	u.Status = parsed
	return u, nil
}
