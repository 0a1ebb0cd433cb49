package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pricepredictor/internal/model"
	"pricepredictor/internal/pricing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// schemaStatements creates the pgvector extension and the predictions table
func schemaStatements() []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS predictions (
			id              UUID PRIMARY KEY,
			category        TEXT NOT NULL,
			brand_rating    DOUBLE PRECISION NOT NULL,
			seller_rating   DOUBLE PRECISION NOT NULL,
			competition     TEXT NOT NULL DEFAULT '',
			attributes      JSONB NOT NULL DEFAULT '{}',
			source          TEXT NOT NULL,
			predicted_price TEXT NOT NULL,
			price_value     DOUBLE PRECISION,
			confidence      DOUBLE PRECISION NOT NULL,
			is_anomaly      BOOLEAN NOT NULL DEFAULT false,
			anomaly_reason  TEXT NOT NULL DEFAULT '',
			explanation     TEXT NOT NULL DEFAULT '',
			remote_error    TEXT,
			actual_price    DOUBLE PRECISION,
			features        vector(%d) NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, pricing.FeatureDimensions),
		`CREATE INDEX IF NOT EXISTS predictions_created_at_idx ON predictions (created_at DESC)`,
	}
}

// Migrate creates the schema if it does not exist yet
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements() {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

const predictionColumns = `
	id, category, brand_rating, seller_rating, competition, attributes,
	source, predicted_price, price_value, confidence, is_anomaly,
	anomaly_reason, explanation, remote_error, actual_price, features, created_at`

// SavePrediction stores a prediction in the audit log
func (r *PostgresRepository) SavePrediction(ctx context.Context, rec *model.PredictionRecord) error {
	query := `
		INSERT INTO predictions (` + predictionColumns + `)
		VALUES (
			:id, :category, :brand_rating, :seller_rating, :competition, :attributes,
			:source, :predicted_price, :price_value, :confidence, :is_anomaly,
			:anomaly_reason, :explanation, :remote_error, :actual_price, :features, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// GetPrediction retrieves a prediction by ID, nil if it does not exist
func (r *PostgresRepository) GetPrediction(ctx context.Context, id string) (*model.PredictionRecord, error) {
	var rec model.PredictionRecord
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`
	err := r.db.GetContext(ctx, &rec, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return &rec, nil
}

// RecentPredictions returns the latest predictions, newest first
func (r *PostgresRepository) RecentPredictions(ctx context.Context, limit int) ([]model.PredictionRecord, error) {
	records := []model.PredictionRecord{}
	query := `SELECT ` + predictionColumns + ` FROM predictions ORDER BY created_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch recent predictions: %w", err)
	}
	return records, nil
}

// SimilarPredictions returns the predictions whose inputs are closest to
// the given prediction's, by L2 distance over the feature vectors
func (r *PostgresRepository) SimilarPredictions(ctx context.Context, id string, limit int) ([]model.PredictionRecord, error) {
	records := []model.PredictionRecord{}
	query := `
		SELECT
			p.id, p.category, p.brand_rating, p.seller_rating, p.competition, p.attributes,
			p.source, p.predicted_price, p.price_value, p.confidence, p.is_anomaly,
			p.anomaly_reason, p.explanation, p.remote_error, p.actual_price, p.features, p.created_at,
			p.features <-> q.features AS distance
		FROM predictions p
		JOIN predictions q ON q.id = $1
		WHERE p.id <> q.id
		ORDER BY distance, p.created_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &records, query, id, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch similar predictions: %w", err)
	}
	return records, nil
}

// RecordFeedback stores the price the product actually sold for.
// It reports false when the prediction does not exist.
func (r *PostgresRepository) RecordFeedback(ctx context.Context, id string, actualPrice float64) (bool, error) {
	query := `UPDATE predictions SET actual_price = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, actualPrice)
	if err != nil {
		return false, fmt.Errorf("failed to record feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record feedback: %w", err)
	}
	return n > 0, nil
}
