package persistence

import (
	"context"
	"time"

	"github.com/sharpline/sharpline/internal/domain"
	"github.com/sharpline/sharpline/internal/parlay"
)

// ClassificationRecord is one persisted evaluation outcome
type ClassificationRecord struct {
	ID        string
	CreatedAt time.Time
	Result    domain.ClassificationResult
}

// ParlayAttemptRecord persists every build attempt, success or failure,
// with the full reason detail for downstream audit.
type ParlayAttemptRecord struct {
	ID        string
	CreatedAt time.Time
	Request   parlay.Request
	Result    parlay.Result
}

// AuditRepo is the write-side collaborator interface for audit logging
type AuditRepo interface {
	SaveClassification(ctx context.Context, record ClassificationRecord) error
	SaveParlayAttempt(ctx context.Context, record ParlayAttemptRecord) error
}
