package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
	pkgch "AraDetector/pkg/clickhouse"
	applogger "AraDetector/pkg/logger"
)

// CHResultStore implements ResultStore backed by ClickHouse. The table is a ReplacingMergeTree
// keyed by (scan_date, instrument), so a re-scan replaces earlier rows once parts merge;
// reads use FINAL to see the deduplicated view immediately.
type CHResultStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHResultStore(ch *pkgch.Client, l *applogger.Logger) *CHResultStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHResultStore{db: ch.DB(), l: l}
}

var chSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + resultsTable + ` (
		scan_date             String,
		instrument            LowCardinality(String),
		sector                String,
		price                 Float64,
		price_limit           Float64,
		price_limit_pct       Float64,
		distance_to_limit_pct Float64,
		avg_accum_price       Float64,
		dominant_accumulator  String,
		accum_below_price     Bool,
		accum_status          String,
		top3_pct              Float64,
		total_bid             Float64,
		total_offer           Float64,
		bid_offer_ratio       Float64,
		offer_thin            Bool,
		volume_today          Float64,
		volume_avg5           Float64,
		volume_spike          Float64,
		consecutive_up        Int64,
		net_foreign           Float64,
		net_foreign_positive  Bool,
		score                 Int64,
		alert_level           LowCardinality(String),
		signals               String,
		degraded_sources      String,
		scanned_at            String,
		inserted_at           DateTime64(3) DEFAULT now64(3)
	) ENGINE = ReplacingMergeTree(inserted_at)
	ORDER BY (scan_date, instrument)`,
}

func (s *CHResultStore) Init(ctx context.Context) error {
	return pkgch.NewFromDB(s.db).InitSchema(ctx, chSchema)
}

// Upsert inserts results with multi-row VALUES to reduce round-trips.
func (s *CHResultStore) Upsert(ctx context.Context, results []models.ScoreResult) error {
	if len(results) == 0 {
		return nil
	}
	start := time.Now()
	const chunkSize = 500
	rowTpl := "(" + placeholders(len(resultColumns)) + ")"
	for lo := 0; lo < len(results); lo += chunkSize {
		hi := lo + chunkSize
		if hi > len(results) {
			hi = len(results)
		}
		values := make([]string, 0, hi-lo)
		args := make([]interface{}, 0, (hi-lo)*len(resultColumns))
		for _, r := range results[lo:hi] {
			row, err := toRow(r)
			if err != nil {
				return err
			}
			values = append(values, rowTpl)
			args = append(args, row.args()...)
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", resultsTable, strings.Join(resultColumns, ", "), strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse upsert results error",
				applogger.Int("rows", hi-lo),
				applogger.Error(err),
			)
			return fmt.Errorf("insert results: %w", err)
		}
	}
	s.l.Info("clickhouse upsert results ok",
		applogger.Int("rows", len(results)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHResultStore) Query(ctx context.Context, filter domrepo.ResultFilter) ([]models.ScoreResult, error) {
	filter = filter.Normalize()
	q, args := selectResults(resultsTable+" FINAL", filter)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse query results error",
			applogger.String("date", filter.Date),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := make([]models.ScoreResult, 0, filter.Limit)
	for rows.Next() {
		var row resultRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r, err := row.toResult()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHResultStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHResultStore) Close() error {
	return s.db.Close()
}
