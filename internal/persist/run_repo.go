package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sesimgo/sesim/internal/collect"
)

// RunRow is one experiment run's record.
type RunRow struct {
	ID         uuid.UUID
	ModelName  string
	Seed       int64
	RepeatNo   int
	StartedAt  time.Time
	FinishedAt *time.Time
	Ticks      *int
}

// RunRepo reads and writes runs and their samples.
type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// InsertRun records a starting run.
func (r *RunRepo) InsertRun(ctx context.Context, row RunRow) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO runs (id, model_name, seed, repeat_no, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		row.ID, row.ModelName, row.Seed, row.RepeatNo, row.StartedAt)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", row.ID, err)
	}
	return nil
}

// FinishRun stamps a run's end time and tick count.
func (r *RunRepo) FinishRun(ctx context.Context, id uuid.UUID, ticks int) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE runs SET finished_at = now(), ticks = $2 WHERE id = $1`,
		id, ticks)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish run %s: not found", id)
	}
	return nil
}

// GetRun loads one run by id.
func (r *RunRepo) GetRun(ctx context.Context, id uuid.UUID) (*RunRow, error) {
	row := &RunRow{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, model_name, seed, repeat_no, started_at, finished_at, ticks
		FROM runs WHERE id = $1`, id).
		Scan(&row.ID, &row.ModelName, &row.Seed, &row.RepeatNo,
			&row.StartedAt, &row.FinishedAt, &row.Ticks)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return row, nil
}

// SaveModelSamples batch-writes a run's model-level rows.
func (r *RunRepo) SaveModelSamples(ctx context.Context, runID uuid.UUID, rows []collect.ModelRow) error {
	batch := &pgx.Batch{}
	for _, row := range rows {
		vals, err := json.Marshal(row.Values)
		if err != nil {
			return fmt.Errorf("encode model sample tick %d: %w", row.Tick, err)
		}
		batch.Queue(`
			INSERT INTO model_samples (run_id, tick, vals)
			VALUES ($1, $2, $3)`,
			runID, row.Tick, vals)
	}
	return r.sendBatch(ctx, batch, "model samples")
}

// SaveAgentSamples batch-writes a run's agent-level rows.
func (r *RunRepo) SaveAgentSamples(ctx context.Context, runID uuid.UUID, rows []collect.AgentRow) error {
	batch := &pgx.Batch{}
	for _, row := range rows {
		vals, err := json.Marshal(row.Values)
		if err != nil {
			return fmt.Errorf("encode agent sample %s tick %d: %w", row.ID, row.Tick, err)
		}
		batch.Queue(`
			INSERT INTO agent_samples (run_id, tick, agent_id, breed, vals)
			VALUES ($1, $2, $3, $4, $5)`,
			runID, row.Tick, row.ID.String(), row.Breed, vals)
	}
	return r.sendBatch(ctx, batch, "agent samples")
}

// ModelSamples loads a run's model rows ordered by tick.
func (r *RunRepo) ModelSamples(ctx context.Context, runID uuid.UUID) ([]collect.ModelRow, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT tick, vals FROM model_samples
		WHERE run_id = $1 ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("load model samples for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []collect.ModelRow
	for rows.Next() {
		var row collect.ModelRow
		var raw []byte
		if err := rows.Scan(&row.Tick, &raw); err != nil {
			return nil, fmt.Errorf("scan model sample: %w", err)
		}
		if err := json.Unmarshal(raw, &row.Values); err != nil {
			return nil, fmt.Errorf("decode model sample tick %d: %w", row.Tick, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *RunRepo) sendBatch(ctx context.Context, batch *pgx.Batch, what string) error {
	if batch.Len() == 0 {
		return nil
	}
	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save %s: %w", what, err)
		}
	}
	return nil
}
