package audit

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/basislabs/basis-edge-go/types"
)

// Entry is one gate decision.
type Entry struct {
	TxID      string
	Payer     string
	Operation types.Operation
	Decision  string
	Reason    string
}

// Recorder writes gate decisions to postgres. Recording is fire-and-forget:
// failures are logged and swallowed, never surfaced to the caller. A nil
// Recorder is a no-op so the service can run without a database.
type Recorder struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRecorder creates a new recorder over the given database.
func NewRecorder(db *sql.DB, logger *zap.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// InitDB creates the audit table.
func (r *Recorder) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS gate_audit (
			id SERIAL PRIMARY KEY,
			tx_id VARCHAR(66) NOT NULL,
			payer VARCHAR(42),
			operation VARCHAR(50),
			decision VARCHAR(50) NOT NULL,
			reason VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gate_audit_tx_id ON gate_audit(tx_id)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// Record inserts one gate decision. Safe to call on a nil recorder.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.db == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO gate_audit (tx_id, payer, operation, decision, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, e.TxID, e.Payer, e.Operation, e.Decision, e.Reason)
	if err != nil && r.logger != nil {
		r.logger.Warn("Failed to record audit entry",
			zap.String("tx_id", e.TxID),
			zap.Error(err))
	}
}
