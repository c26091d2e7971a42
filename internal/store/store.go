// Package store persists version reports in MySQL and answers "what did
// each instance last report" queries.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/getversions/internal/logger"
	"github.com/dbsmedya/getversions/internal/report"
)

// ErrNotFound is returned when an instance has no stored result.
var ErrNotFound = errors.New("no stored version")

const createReportTableSQL = `
CREATE TABLE IF NOT EXISTS getversions_report (
	id CHAR(36) PRIMARY KEY,
	environment VARCHAR(255) NOT NULL,
	mode VARCHAR(20) NOT NULL,
	run_id VARCHAR(255) NOT NULL DEFAULT '',
	base_version VARCHAR(255) NOT NULL DEFAULT '',
	generated_at DATETIME(3) NOT NULL,
	INDEX idx_env_generated (environment, generated_at)
) ENGINE=InnoDB;
`

const createResultTableSQL = `
CREATE TABLE IF NOT EXISTS getversions_result (
	report_id CHAR(36) NOT NULL,
	instance_id VARCHAR(64) NOT NULL,
	value TEXT,
	object_key VARCHAR(1024) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL,
	PRIMARY KEY (report_id, instance_id),
	INDEX idx_instance (instance_id),
	FOREIGN KEY (report_id) REFERENCES getversions_report(id) ON DELETE CASCADE
) ENGINE=InnoDB;
`

const insertReportSQL = `INSERT INTO getversions_report (id, environment, mode, run_id, base_version, generated_at) VALUES (?, ?, ?, ?, ?, ?)`

const insertResultSQL = `INSERT INTO getversions_result (report_id, instance_id, value, object_key, status) VALUES (?, ?, ?, ?, ?)`

// latestSQL ranks each instance's reported results newest first. Missing
// entries carry no value and never shadow an older report.
const latestSQL = `
SELECT instance_id, value, object_key, status, report_id, generated_at FROM (
	SELECT r.instance_id, r.value, r.object_key, r.status, r.report_id, p.generated_at,
		ROW_NUMBER() OVER (PARTITION BY r.instance_id ORDER BY p.generated_at DESC, p.id DESC) AS rn
	FROM getversions_result r
	JOIN getversions_report p ON p.id = r.report_id
	WHERE p.environment = ? AND r.status <> 'missing'
) ranked
WHERE rn = 1
ORDER BY instance_id
`

// Record is the newest stored result for one instance.
type Record struct {
	InstanceID  string        `json:"instance_id"`
	Value       string        `json:"value"`
	Key         string        `json:"key"`
	Status      report.Status `json:"status"`
	ReportID    string        `json:"report_id"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Store reads and writes reports.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
}

// New creates a Store over db.
func New(db *sql.DB, log *logger.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Store{db: db, logger: log}, nil
}

// InitializeTables creates the report tables if they don't exist.
func (s *Store) InitializeTables(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createReportTableSQL); err != nil {
		return fmt.Errorf("failed to create getversions_report table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createResultTableSQL); err != nil {
		return fmt.Errorf("failed to create getversions_result table: %w", err)
	}
	s.logger.Debug("Report tables initialized")
	return nil
}

// SaveReport writes r and its entries in one transaction, assigning r.ID
// when it is empty.
func (s *Store) SaveReport(ctx context.Context, r *report.Report) (err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, insertReportSQL,
		r.ID, r.Environment, string(r.Mode), r.RunID, r.BaseVersion, r.GeneratedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert report %s: %w", r.ID, err)
	}

	for _, e := range r.Entries {
		if _, err = tx.ExecContext(ctx, insertResultSQL,
			r.ID, e.InstanceID, e.Value, e.Key, string(e.Status),
		); err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", e.InstanceID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report %s: %w", r.ID, err)
	}

	s.logger.WithEnvironment(r.Environment).Infow("Saved report",
		"report_id", r.ID,
		"entries", len(r.Entries),
	)
	return nil
}

// LatestVersions returns the newest stored result per instance in the
// environment, ordered by instance id.
func (s *Store) LatestVersions(ctx context.Context, environment string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, latestSQL, environment)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest versions for %s: %w", environment, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var value sql.NullString
		var status string
		if err := rows.Scan(&rec.InstanceID, &value, &rec.Key, &status, &rec.ReportID, &rec.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan latest version: %w", err)
		}
		rec.Value = value.String
		rec.Status = report.Status(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read latest versions: %w", err)
	}

	return records, nil
}

// LatestVersion returns the newest stored result for one instance.
func (s *Store) LatestVersion(ctx context.Context, environment, instanceID string) (Record, error) {
	records, err := s.LatestVersions(ctx, environment)
	if err != nil {
		return Record{}, err
	}
	for _, rec := range records {
		if rec.InstanceID == instanceID {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s in %s", ErrNotFound, instanceID, environment)
}
