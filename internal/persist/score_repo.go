package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ScoreRow is the best completion time of one level on one difficulty.
type ScoreRow struct {
	Difficulty string
	LevelID    int
	Best       time.Duration
	RunID      uuid.UUID
	UpdatedAt  time.Time
}

type ScoreRepo struct {
	db *DB
}

func NewScoreRepo(db *DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// Best returns the stored best time, or nil when the level was never completed.
func (r *ScoreRepo) Best(ctx context.Context, difficulty string, levelID int) (*ScoreRow, error) {
	row := &ScoreRow{}
	var bestMS int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT difficulty, level_id, best_ms, run_id, updated_at
		 FROM level_scores WHERE difficulty = $1 AND level_id = $2`,
		difficulty, levelID,
	).Scan(&row.Difficulty, &row.LevelID, &bestMS, &row.RunID, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load score: %w", err)
	}
	row.Best = time.Duration(bestMS) * time.Millisecond
	return row, nil
}

// Record stores d if it beats the current best and reports whether it did.
func (r *ScoreRepo) Record(ctx context.Context, difficulty string, levelID int, d time.Duration, runID uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`INSERT INTO level_scores (difficulty, level_id, best_ms, run_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (difficulty, level_id) DO UPDATE
		 SET best_ms = EXCLUDED.best_ms, run_id = EXCLUDED.run_id, updated_at = now()
		 WHERE level_scores.best_ms > EXCLUDED.best_ms`,
		difficulty, levelID, d.Milliseconds(), runID,
	)
	if err != nil {
		return false, fmt.Errorf("record score: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Completed returns the level ids completed on a difficulty, ascending.
func (r *ScoreRepo) Completed(ctx context.Context, difficulty string) ([]int, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT level_id FROM level_scores WHERE difficulty = $1 ORDER BY level_id`,
		difficulty,
	)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return ids, nil
}
