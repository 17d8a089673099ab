package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Underwriter/internal/policy"
)

//go:embed schema.sql
var schemaSQL string

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the registry table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const policyColumns = `version, document, active, created_at`

func (s *PostgresStore) GetPolicy(ctx context.Context, version string) (*PolicyRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+policyColumns+`
		FROM policy_versions WHERE version = $1`, version)
	rec, err := scanPolicy(row)
	if err != nil {
		return nil, fmt.Errorf("get policy %s: %w", version, err)
	}
	return rec, nil
}

func (s *PostgresStore) ActivePolicy(ctx context.Context) (*PolicyRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+policyColumns+`
		FROM policy_versions WHERE active
		ORDER BY created_at DESC LIMIT 1`)
	rec, err := scanPolicy(row)
	if err != nil {
		return nil, fmt.Errorf("active policy: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) ListPolicies(ctx context.Context) ([]*PolicyRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+policyColumns+`
		FROM policy_versions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	var out []*PolicyRecord
	for rows.Next() {
		rec, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("list policies: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SavePolicy upserts a version. With activate set, it becomes the only
// active row in the same transaction.
func (s *PostgresStore) SavePolicy(ctx context.Context, p policy.Policy, activate bool) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("save policy: %w", err)
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if activate {
		if _, err := tx.Exec(ctx, `UPDATE policy_versions SET active = FALSE WHERE active AND version <> $1`, p.Version); err != nil {
			return fmt.Errorf("deactivate policies: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO policy_versions (version, document, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (version) DO UPDATE
		SET document = EXCLUDED.document,
		    active = policy_versions.active OR EXCLUDED.active`,
		p.Version, doc, activate,
	); err != nil {
		return fmt.Errorf("upsert policy %s: %w", p.Version, err)
	}

	return tx.Commit(ctx)
}

func scanPolicy(row pgx.Row) (*PolicyRecord, error) {
	rec := &PolicyRecord{}
	var doc []byte
	if err := row.Scan(&rec.Version, &doc, &rec.Active, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}
	if err := decodePolicy(doc, &rec.Policy); err != nil {
		return nil, err
	}
	rec.Policy.Version = rec.Version
	return rec, nil
}

// decodePolicy overlays the stored document on the defaults, so documents
// written before a field existed keep the default value for it.
func decodePolicy(doc []byte, out *policy.Policy) error {
	p := policy.Default()
	if err := json.Unmarshal(doc, &p); err != nil {
		return fmt.Errorf("decode policy document: %w", err)
	}
	*out = p
	return nil
}
