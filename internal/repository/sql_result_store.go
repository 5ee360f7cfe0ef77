package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
	"AraDetector/pkg/logger"
	"AraDetector/pkg/sqldb"
)

// SQLResultStore persists results in Postgres or SQLite. Rows are keyed by (scan_date, instrument).
type SQLResultStore struct {
	db      *sqlx.DB
	driver  string
	timeout time.Duration
	l       *logger.Logger
}

func NewSQLResultStore(db *sqlx.DB, timeout time.Duration, l *logger.Logger) *SQLResultStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if l == nil {
		l = logger.Nop()
	}
	return &SQLResultStore{db: db, driver: db.DriverName(), timeout: timeout, l: l}
}

func (s *SQLResultStore) schema() []string {
	floatType, boolean, jsonType := "DOUBLE PRECISION", "BOOLEAN", "JSONB"
	if s.driver == sqldb.DriverSQLite {
		floatType, boolean, jsonType = "REAL", "INTEGER", "TEXT"
	}
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			scan_date             TEXT NOT NULL,
			instrument            TEXT NOT NULL,
			sector                TEXT NOT NULL DEFAULT '',
			price                 %[2]s,
			price_limit           %[2]s,
			price_limit_pct       %[2]s,
			distance_to_limit_pct %[2]s,
			avg_accum_price       %[2]s,
			dominant_accumulator  TEXT,
			accum_below_price     %[3]s,
			accum_status          TEXT,
			top3_pct              %[2]s,
			total_bid             %[2]s,
			total_offer           %[2]s,
			bid_offer_ratio       %[2]s,
			offer_thin            %[3]s,
			volume_today          %[2]s,
			volume_avg5           %[2]s,
			volume_spike          %[2]s,
			consecutive_up        INTEGER,
			net_foreign           %[2]s,
			net_foreign_positive  %[3]s,
			score                 INTEGER NOT NULL,
			alert_level           TEXT NOT NULL,
			signals               %[4]s,
			degraded_sources      TEXT NOT NULL DEFAULT '',
			scanned_at            TEXT NOT NULL,
			PRIMARY KEY (scan_date, instrument)
		)`, resultsTable, floatType, boolean, jsonType),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_date_score ON %[1]s (scan_date, score DESC)`, resultsTable),
	}
}

func (s *SQLResultStore) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	for _, stmt := range s.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s schema: %w", s.driver, err)
		}
	}
	return nil
}

func upsertStatement() string {
	updates := make([]string, 0, len(resultColumns)-2)
	for _, c := range resultColumns[2:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (scan_date, instrument) DO UPDATE SET %s",
		resultsTable, strings.Join(resultColumns, ", "), placeholders(len(resultColumns)), strings.Join(updates, ", "))
}

// Upsert writes all results in one transaction. Re-scanning a date replaces the earlier rows.
func (s *SQLResultStore) Upsert(ctx context.Context, results []models.ScoreResult) error {
	if len(results) == 0 {
		return nil
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, s.db.Rebind(upsertStatement()))
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		row, err := toRow(r)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, row.args()...); err != nil {
			return fmt.Errorf("upsert %s: %w", r.Instrument, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	s.l.Debug("results upserted",
		logger.String("driver", s.driver),
		logger.Int("rows", len(results)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *SQLResultStore) Query(ctx context.Context, filter domrepo.ResultFilter) ([]models.ScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	q, args := selectResults(resultsTable, filter.Normalize())
	var rows []resultRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		s.l.Error("query results failed", logger.String("driver", s.driver), logger.Error(err))
		return nil, fmt.Errorf("query results: %w", err)
	}
	out := make([]models.ScoreResult, 0, len(rows))
	for _, row := range rows {
		r, err := row.toResult()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *SQLResultStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLResultStore) Close() error {
	return s.db.Close()
}
