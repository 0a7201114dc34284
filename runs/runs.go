// Package runs persists summaries of completed Monte Carlo runs in a
// sqlite database.
package runs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableRuns = "runs"
)

// Run is the summary of a completed Monte Carlo run.
type Run struct {
	// ID identifies the run.
	ID string
	// Model is the Hamiltonian variant.
	Model string
	// Coupling is the transverse field for the Ising model, and the J_z
	// coupling constant for the Heisenberg models.
	Coupling float64
	Nspins   int
	Nsweeps  int
	Seed     int64

	// Energy is the estimated energy per spin.
	Energy float64
	// StdErr is the standard error of Energy.
	StdErr float64
	// AutocorrTime is the estimated autocorrelation time in sweeps.
	AutocorrTime float64
	// Acceptance is the fraction of accepted moves.
	Acceptance float64

	CreatedAt time.Time
}

// Store is a sqlite backed store of run summaries.
type Store struct {
	Path string

	db *sql.DB
}

// Open opens the store at dbPath, creating it if absent.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return &Store{Path: dbPath, db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Insert records a run and returns it with its assigned ID and creation
// time.
func (s *Store) Insert(r Run) (Run, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`INSERT INTO %s (id, model, coupling, nspins, nsweeps, seed, energy, stderr, autocorrtime, acceptance, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, tableRuns)
	args := []any{r.ID, r.Model, r.Coupling, r.Nspins, r.Nsweeps, r.Seed, r.Energy, r.StdErr, r.AutocorrTime, r.Acceptance, r.CreatedAt.Format(time.RFC3339Nano)}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return Run{}, errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}
	return r, nil
}

// List returns all runs in insertion order.
func (s *Store) List() ([]Run, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT id, model, coupling, nspins, nsweeps, seed, energy, stderr, autocorrtime, acceptance, created_at FROM %s ORDER BY created_at`, tableRuns)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	rs := make([]Run, 0)
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Model, &r.Coupling, &r.Nspins, &r.Nsweeps, &r.Seed, &r.Energy, &r.StdErr, &r.AutocorrTime, &r.Acceptance, &createdAt); err != nil {
			return nil, errors.Wrap(err, "")
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, errors.Wrap(err, createdAt)
		}
		rs = append(rs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return rs, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, model TEXT, coupling REAL, nspins INTEGER, nsweeps INTEGER, seed INTEGER, energy REAL, stderr REAL, autocorrtime REAL, acceptance REAL, created_at TEXT) STRICT`, tableRuns)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
