// Package traffic reads the pageview time-series backing inventory
// predictions. Rows are keyed by (path, interval, date); listing-page paths
// carry the "-GET_listing" suffix consumed by the inventory aggregator.
package traffic

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/patrickwarner/adinventory/internal/models"
)

// Store wraps a ClickHouse connection over the pageviews table. It
// implements inventory.TrafficStore.
type Store struct {
	DB *sql.DB
}

// InitClickHouse connects to ClickHouse and ensures the pageviews table
// exists.
func InitClickHouse(dsn string, maxOpenConns int) (*Store, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	create := `CREATE TABLE IF NOT EXISTS pageviews (
       path           String,
       interval       String,
       date           Date,
       pageview_count UInt64,
       updated_at     DateTime DEFAULT now()
   ) ENGINE=ReplacingMergeTree(updated_at) ORDER BY (interval, path, date)`
	if _, err := db.ExecContext(context.Background(), create); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &Store{DB: db}, nil
}

// MinPageviewsByPath returns, for every path ending in pathSuffix with at
// least one row in [start, end] at the given interval, the minimum pageview
// count across those rows.
func (s *Store) MinPageviewsByPath(ctx context.Context, interval string, start, end time.Time, pathSuffix string) (map[string]int64, error) {
	query := `SELECT path, min(pageview_count)
		FROM pageviews
		WHERE interval = ? AND date >= ? AND date <= ? AND endsWith(path, ?)
		GROUP BY path`
	rows, err := s.DB.QueryContext(ctx, query, interval, start, end, pathSuffix)
	if err != nil {
		return nil, fmt.Errorf("query min pageviews: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	ret := make(map[string]int64)
	for rows.Next() {
		var path string
		var count uint64
		if err := rows.Scan(&path, &count); err != nil {
			return nil, fmt.Errorf("scan min pageviews: %w", err)
		}
		ret[path] = int64(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate min pageviews: %w", err)
	}
	return ret, nil
}

// LastModified reports the freshness of the daily traffic data: the most
// recent update timestamp across daily rows. Aggregation windows end the day
// before this to avoid partial-day counts.
func (s *Store) LastModified(ctx context.Context) (time.Time, error) {
	var last time.Time
	err := s.DB.QueryRowContext(ctx,
		`SELECT max(updated_at) FROM pageviews WHERE interval = ?`,
		models.TrafficIntervalDay).Scan(&last)
	if err != nil {
		return time.Time{}, fmt.Errorf("query traffic last modified: %w", err)
	}
	return last, nil
}

// RecordPageviews inserts pageview rows. The external traffic pipeline is
// the normal writer; this hook exists for backfills and fixtures.
func (s *Store) RecordPageviews(ctx context.Context, pageviews []models.PageviewRow) error {
	if len(pageviews) == 0 {
		return nil
	}
	stmt := `INSERT INTO pageviews (path, interval, date, pageview_count) VALUES (?, ?, ?, ?)`
	for _, pv := range pageviews {
		if _, err := s.DB.ExecContext(ctx, stmt, pv.Path, pv.Interval, pv.Date, uint64(pv.Pageviews)); err != nil {
			return fmt.Errorf("insert pageview row %s: %w", pv.Path, err)
		}
	}
	return nil
}

// Close terminates the ClickHouse connection.
func (s *Store) Close() {
	if s != nil && s.DB != nil {
		if err := s.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}
