package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inodb/vibe-covid/internal/edit"
	"github.com/inodb/vibe-covid/internal/match"
	"github.com/inodb/vibe-covid/internal/protein"
)

// Run is one recorded typing run.
type Run struct {
	ID        string
	CreatedAt time.Time
	VCF       FileFingerprint
	Reference string
	Protein   string
	Tolerance float64
	Edits     []edit.Edit
	Mutations []protein.Row
	Hits      []match.Hit
}

// RunSummary is one line of the run listing.
type RunSummary struct {
	ID        string
	CreatedAt time.Time
	VCFPath   string
	Protein   string
	Tolerance float64
	Mutations int
	Matches   string
}

// MutationHit is a run in which a mutation was observed.
type MutationHit struct {
	RunID     string
	CreatedAt time.Time
	VCFPath   string
	Protein   string
	Mutation  string
}

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// WriteRun stores a run with its edits, mutations and matches. A missing ID
// or creation time is filled in; the ID is returned. The runs row is
// inserted last; if any table fails, the rows already written for the run
// are removed.
func (s *Store) WriteRun(ctx context.Context, r *Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	if err := s.writeRunTables(ctx, r); err != nil {
		if derr := s.deleteRun(ctx, r.ID); derr != nil {
			return "", errors.Join(err, derr)
		}
		return "", err
	}
	return r.ID, nil
}

func (s *Store) writeRunTables(ctx context.Context, r *Run) error {
	edits := make([][]driver.Value, len(r.Edits))
	for i, e := range r.Edits {
		edits[i] = []driver.Value{r.ID, e.Position, e.Kind.String(), e.Bases}
	}
	if err := s.appendRows(ctx, "run_edits", edits); err != nil {
		return err
	}

	muts := make([][]driver.Value, len(r.Mutations))
	for i, m := range r.Mutations {
		muts[i] = []driver.Value{r.ID, int32(i), m.Protein, m.Mutation}
	}
	if err := s.appendRows(ctx, "run_mutations", muts); err != nil {
		return err
	}

	hits := make([][]driver.Value, len(r.Hits))
	for i, h := range r.Hits {
		hits[i] = []driver.Value{r.ID, h.Signature.Name, h.Signature.FirstDetected, h.MissingFraction}
	}
	if err := s.appendRows(ctx, "run_matches", hits); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.VCF.Path, r.VCF.Size, r.VCF.ModTime,
		r.Reference, r.Protein, r.Tolerance,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// deleteRun removes every row of a run.
func (s *Store) deleteRun(ctx context.Context, id string) error {
	for _, table := range []string{"run_edits", "run_mutations", "run_matches", "runs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", id); err != nil {
			return fmt.Errorf("delete run from %s: %w", table, err)
		}
	}
	return nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		r.run_id, r.created_at, r.vcf_path, r.protein, r.tolerance,
		(SELECT count(*) FROM run_mutations m WHERE m.run_id = r.run_id),
		COALESCE((SELECT string_agg(x.name, ', ' ORDER BY x.name)
			FROM run_matches x WHERE x.run_id = r.run_id), '')
		FROM runs r
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var n int64
		if err := rows.Scan(&rs.ID, &rs.CreatedAt, &rs.VCFPath, &rs.Protein, &rs.Tolerance, &n, &rs.Matches); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rs.Mutations = int(n)
		out = append(out, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// SearchByMutation returns the runs in which mutation was observed,
// newest first. An empty protein matches any protein.
func (s *Store) SearchByMutation(ctx context.Context, mutation, proteinName string) ([]MutationHit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		r.run_id, r.created_at, r.vcf_path, m.protein, m.mutation
		FROM run_mutations m JOIN runs r ON r.run_id = m.run_id
		WHERE m.mutation = ? AND (? = '' OR m.protein = ?)
		ORDER BY r.created_at DESC, m.ordinal`,
		mutation, proteinName, proteinName)
	if err != nil {
		return nil, fmt.Errorf("query mutation: %w", err)
	}
	defer rows.Close()

	var out []MutationHit
	for rows.Next() {
		var h MutationHit
		if err := rows.Scan(&h.RunID, &h.CreatedAt, &h.VCFPath, &h.Protein, &h.Mutation); err != nil {
			return nil, fmt.Errorf("scan mutation hit: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutation hits: %w", err)
	}
	return out, nil
}

// GetRun loads a stored run with its tables.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	r := &Run{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT
		created_at, vcf_path, vcf_size, vcf_modtime, reference, protein, tolerance
		FROM runs WHERE run_id = ?`, id).Scan(
		&r.CreatedAt, &r.VCF.Path, &r.VCF.Size, &r.VCF.ModTime,
		&r.Reference, &r.Protein, &r.Tolerance,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	if err := s.scanRows(ctx, `SELECT position, kind, bases FROM run_edits
		WHERE run_id = ? ORDER BY position`, id, func(rows *sql.Rows) error {
		var e edit.Edit
		var kind string
		if err := rows.Scan(&e.Position, &kind, &e.Bases); err != nil {
			return err
		}
		k, err := edit.ParseKind(kind)
		if err != nil {
			return err
		}
		e.Kind = k
		r.Edits = append(r.Edits, e)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load edits: %w", err)
	}

	if err := s.scanRows(ctx, `SELECT protein, mutation FROM run_mutations
		WHERE run_id = ? ORDER BY ordinal`, id, func(rows *sql.Rows) error {
		var m protein.Row
		if err := rows.Scan(&m.Protein, &m.Mutation); err != nil {
			return err
		}
		r.Mutations = append(r.Mutations, m)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load mutations: %w", err)
	}

	if err := s.scanRows(ctx, `SELECT name, first_detected, missing_fraction FROM run_matches
		WHERE run_id = ? ORDER BY name`, id, func(rows *sql.Rows) error {
		var h match.Hit
		if err := rows.Scan(&h.Signature.Name, &h.Signature.FirstDetected, &h.MissingFraction); err != nil {
			return err
		}
		r.Hits = append(r.Hits, h)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	return r, nil
}

func (s *Store) scanRows(ctx context.Context, query, id string, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
