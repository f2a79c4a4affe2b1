package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/icedfool/rpi-ds-game/internal/retry"
	"github.com/icedfool/rpi-ds-game/pkg/models"
	_ "github.com/lib/pq"
)

// Schema creates the action ledger table when it does not exist
const Schema = `
	CREATE TABLE IF NOT EXISTS game_actions (
		id                 BIGSERIAL PRIMARY KEY,
		event_id           UUID NOT NULL UNIQUE,
		player             TEXT NOT NULL,
		action             TEXT NOT NULL,
		sequence           BIGINT NOT NULL,
		stress_level       INTEGER NOT NULL,
		understanding      INTEGER NOT NULL,
		homework_completed DOUBLE PRECISION NOT NULL,
		lab_points         INTEGER NOT NULL,
		risk_level         INTEGER NOT NULL,
		grade              TEXT NOT NULL,
		occurred_at        TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS game_actions_player_idx ON game_actions (player, id DESC);
	ALTER TABLE game_actions ADD COLUMN IF NOT EXISTS sequence BIGINT NOT NULL DEFAULT 0;
`

// MaxHistoryLimit caps how many rows a history query returns
const MaxHistoryLimit = 200

// Writer records every player event in Postgres. It is an audit trail only;
// games are never rebuilt from it. Run it behind a single session.AsyncObserver
// so rows are inserted in apply order.
type Writer struct {
	db    *sql.DB
	retry *retry.RetryPolicy
}

// Open connects to the ledger database and makes sure the schema exists
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// NewWriter creates a ledger writer; a nil policy writes once
func NewWriter(db *sql.DB, policy *retry.RetryPolicy) *Writer {
	if policy == nil {
		policy = retry.NewRetryPolicy(1, 0)
	}
	return &Writer{
		db:    db,
		retry: policy,
	}
}

// PlayerUpdated appends the event to the ledger; it satisfies session.Observer
func (w *Writer) PlayerUpdated(ctx context.Context, event models.PlayerEvent) error {
	query := `
		INSERT INTO game_actions (
			event_id, player, action, sequence, stress_level, understanding,
			homework_completed, lab_points, risk_level, grade, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (event_id) DO NOTHING
	`

	return w.retry.Execute(ctx, func(ctx context.Context) error {
		_, err := w.db.ExecContext(ctx, query,
			event.EventID,
			event.Player,
			event.Action,
			event.Sequence,
			event.State.StressLevel,
			event.State.Understanding,
			event.State.HomeworkCompleted,
			event.State.LabPoints,
			event.State.RiskLevel,
			event.State.CurrentGrade,
			event.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert action: %w", err)
		}
		return nil
	})
}

// History returns the most recent actions of a player, newest first.
// Rows are written one at a time in apply order, so id order is apply
// order even across restarts, where sequence numbers begin again.
func (w *Writer) History(ctx context.Context, player string, limit int) ([]models.ActionRecord, error) {
	limit = ClampLimit(limit)

	query := `
		SELECT id, event_id, player, action, sequence, stress_level, understanding,
		       homework_completed, lab_points, risk_level, grade, occurred_at
		FROM game_actions
		WHERE player = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := w.db.QueryContext(ctx, query, player, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	records := []models.ActionRecord{}
	for rows.Next() {
		var rec models.ActionRecord
		err := rows.Scan(
			&rec.ID,
			&rec.EventID,
			&rec.Player,
			&rec.Action,
			&rec.Sequence,
			&rec.StressLevel,
			&rec.Understanding,
			&rec.HomeworkCompleted,
			&rec.LabPoints,
			&rec.RiskLevel,
			&rec.Grade,
			&rec.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	return records, nil
}

// Ping checks database connectivity
func (w *Writer) Ping(ctx context.Context) error {
	return w.db.PingContext(ctx)
}

// ClampLimit bounds a requested history size to [1, MaxHistoryLimit],
// defaulting to 50
func ClampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
