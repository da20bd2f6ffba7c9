package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinventory/internal/models"
)

// Postgres wraps the campaign database connection. It implements
// inventory.CampaignStore.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the necessary tables if they don't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS campaigns (
    id BIGSERIAL PRIMARY KEY,
    site_name TEXT NOT NULL DEFAULT '',
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL,
    ndays INT NOT NULL,
    impressions BIGINT NOT NULL DEFAULT 0,
    transaction_id BIGINT NULL
);

CREATE TABLE IF NOT EXISTS bids (
    transaction_id BIGINT PRIMARY KEY,
    campaign_id BIGINT NOT NULL REFERENCES campaigns(id),
    status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS promotion_weights (
    site_name TEXT NOT NULL,
    date DATE NOT NULL,
    campaign_id BIGINT NOT NULL REFERENCES campaigns(id),
    PRIMARY KEY (site_name, date, campaign_id)
);

-- Inventory queries scan weights by site and date range
CREATE INDEX IF NOT EXISTS idx_promotion_weights_site_date ON promotion_weights (site_name, date);
CREATE INDEX IF NOT EXISTS idx_bids_campaign_id ON bids (campaign_id);
`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	// Register the otelsql wrapper for postgres
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// ensureSchema creates the required tables if they do not exist.
func (p *Postgres) ensureSchema() error {
	if _, err := p.DB.ExecContext(context.Background(), schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// PromotionWeights returns calendar rows for the given site keys with dates
// in [start, end). ignoreCampaignID excludes one campaign's rows; zero means
// no exclusion.
func (p *Postgres) PromotionWeights(ctx context.Context, siteKeys []string, start, end time.Time, ignoreCampaignID int64) ([]models.PromotionWeight, error) {
	query := `SELECT site_name, date, campaign_id FROM promotion_weights
		WHERE site_name = ANY($1) AND date >= $2 AND date < $3`
	args := []interface{}{pq.Array(siteKeys), start, end}
	if ignoreCampaignID != 0 {
		query += ` AND campaign_id <> $4`
		args = append(args, ignoreCampaignID)
	}

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query promotion weights: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var weights []models.PromotionWeight
	for rows.Next() {
		var w models.PromotionWeight
		if err := rows.Scan(&w.SiteName, &w.Date, &w.CampaignID); err != nil {
			return nil, fmt.Errorf("scan promotion weight: %w", err)
		}
		w.Date = models.ToDate(w.Date)
		weights = append(weights, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotion weights: %w", err)
	}
	return weights, nil
}

// CampaignsByID bulk-loads campaign records by id.
func (p *Postgres) CampaignsByID(ctx context.Context, ids []int64) ([]models.Campaign, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := p.DB.QueryContext(ctx,
		`SELECT id, site_name, start_date, end_date, ndays, impressions, transaction_id
		 FROM campaigns WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		var transactionID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.SiteName, &c.StartDate, &c.EndDate, &c.NDays, &c.Impressions, &transactionID); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		if transactionID.Valid {
			id := transactionID.Int64
			c.TransactionID = &id
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return campaigns, nil
}

// BidsByTransactionID bulk-loads bid records by transaction id.
func (p *Postgres) BidsByTransactionID(ctx context.Context, ids []int64) ([]models.Bid, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := p.DB.QueryContext(ctx,
		`SELECT transaction_id, campaign_id, status FROM bids WHERE transaction_id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query bids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var bids []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.TransactionID, &b.CampaignID, &b.Status); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bids: %w", err)
	}
	return bids, nil
}
