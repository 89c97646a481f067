package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sharpline/sharpline/internal/persistence"
)

// auditRepo implements AuditRepo for PostgreSQL
type auditRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewAuditRepo creates a PostgreSQL audit repository
func NewAuditRepo(db *sqlx.DB, timeout time.Duration) persistence.AuditRepo {
	return &auditRepo{
		db:      db,
		timeout: timeout,
	}
}

// Connect opens a PostgreSQL connection pool for the audit sink
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// SaveClassification upserts one evaluation outcome (unique per id)
func (r *auditRepo) SaveClassification(ctx context.Context, record persistence.ClassificationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reasonsJSON, err := json.Marshal(record.Result.ReasonCodes)
	if err != nil {
		return fmt.Errorf("failed to marshal reason codes: %w", err)
	}

	query := `
		INSERT INTO classification_audit
		(id, created_at, sport, market_type, classification, edge_metric, confidence,
		 compressed_prob, selection_side, selection_line, selection_method,
		 reason_codes, override_applied, key_number_adjusted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING`

	_, err = r.db.ExecContext(ctx, query,
		record.ID, record.CreatedAt,
		record.Result.Sport, string(record.Result.MarketType), string(record.Result.Classification),
		record.Result.EdgeMetric, record.Result.Confidence, record.Result.CompressedProb,
		record.Result.Selection.Side, record.Result.Selection.Line, string(record.Result.Selection.Method),
		reasonsJSON, record.Result.OverrideApplied, record.Result.KeyNumberAdjusted,
	)
	if err != nil {
		return fmt.Errorf("failed to save classification audit: %w", err)
	}
	return nil
}

// SaveParlayAttempt persists one build attempt with full diagnostics
func (r *auditRepo) SaveParlayAttempt(ctx context.Context, record persistence.ParlayAttemptRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	legsJSON, err := json.Marshal(record.Result.Legs)
	if err != nil {
		return fmt.Errorf("failed to marshal selected legs: %w", err)
	}
	detailJSON, err := json.Marshal(record.Result.ReasonDetail)
	if err != nil {
		return fmt.Errorf("failed to marshal reason detail: %w", err)
	}

	query := `
		INSERT INTO parlay_audit
		(id, created_at, profile, legs_requested, seed, status, fallback_step,
		 parlay_weight, reason_code, legs_selected, reason_detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`

	_, err = r.db.ExecContext(ctx, query,
		record.ID, record.CreatedAt,
		record.Request.Profile, record.Request.LegsRequested, record.Request.Seed,
		string(record.Result.Status), record.Result.FallbackStepUsed,
		record.Result.ParlayWeight, string(record.Result.ReasonCode),
		legsJSON, detailJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save parlay audit: %w", err)
	}
	return nil
}
