// Package sqlite exports PSA results to a SQLite file. The engine itself
// keeps everything in memory; this sink belongs to the driver layer so
// analysts can query runs after the fact.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cardecon/hfpsa/internal/markov"
	"github.com/cardecon/hfpsa/internal/platform/errors"
	"github.com/cardecon/hfpsa/internal/platform/storage/sqlitemigrate"
	"github.com/cardecon/hfpsa/internal/psa"
	"github.com/cardecon/hfpsa/internal/storage/sqlite/migrations"
)

// Arm labels used in the arm_months table.
const (
	ArmControl      = "control"
	ArmIntervention = "intervention"
)

// Store persists PSA result tables in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite result store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(errors.CodeStoreUnavailable, "storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveResults writes both arm tables in a single transaction.
func (s *Store) SaveResults(ctx context.Context, res *psa.Results) error {
	if s == nil || s.sqlDB == nil {
		return errors.New(errors.CodeStoreUnavailable, "storage is not configured")
	}
	if res == nil || res.Control == nil || res.Intervention == nil {
		return errors.New(errors.CodeStoreUnavailable, "results with both arm tables are required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO arm_months (
    arm, repeat_id, month,
    nyha12, nyha34, hospital, dead,
    qaly_total, cost_total, qaly_disc, cost_disc
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare arm insert: %w", err)
	}
	defer stmt.Close()

	arms := []struct {
		label string
		table *psa.ArmTable
	}{
		{ArmControl, res.Control},
		{ArmIntervention, res.Intervention},
	}
	for _, arm := range arms {
		t := arm.table
		for row := 0; row < t.Len(); row++ {
			if _, err := stmt.ExecContext(ctx,
				arm.label, t.RepeatID[row], t.Month[row],
				t.Counts[markov.NYHA12][row], t.Counts[markov.NYHA34][row],
				t.Counts[markov.Hospital][row], t.Counts[markov.Dead][row],
				t.QALYTotal[row], t.CostTotal[row], t.QALYDisc[row], t.CostDisc[row],
			); err != nil {
				return fmt.Errorf("insert %s row %d: %w", arm.label, row, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit arm tables: %w", err)
	}
	return nil
}

// SaveDeltas writes the per-repeat delta table in a single transaction.
func (s *Store) SaveDeltas(ctx context.Context, deltas []psa.DeltaRecord) error {
	if s == nil || s.sqlDB == nil {
		return errors.New(errors.CodeStoreUnavailable, "storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO deltas (
    repeat_id,
    cost_control, cost_intervention,
    qaly_control, qaly_intervention,
    d_cost, d_qaly, nmb,
    survival_control, survival_intervention,
    months_mild_control, months_severe_control, months_hospital_control,
    months_mild_intervention, months_severe_intervention, months_hospital_intervention
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare delta insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range deltas {
		if _, err := stmt.ExecContext(ctx,
			d.RepeatID,
			d.Control.Cost, d.Intervention.Cost,
			d.Control.QALY, d.Intervention.QALY,
			d.DCost, d.DQALY, d.NMB,
			d.Control.Survival, d.Intervention.Survival,
			d.Control.MonthsMild, d.Control.MonthsSevere, d.Control.MonthsHospital,
			d.Intervention.MonthsMild, d.Intervention.MonthsSevere, d.Intervention.MonthsHospital,
		); err != nil {
			return fmt.Errorf("insert delta repeat %d: %w", d.RepeatID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit deltas: %w", err)
	}
	return nil
}
