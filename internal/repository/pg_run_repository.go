package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quest-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ RunRepository = (*pgRunRepository)(nil)

const (
	// ON CONFLICT DO NOTHING: создание идемпотентно по (story_id, owner_id),
	// второй конкурентный вызов просто не вставит строку.
	createRunQuery = `
INSERT INTO story_runs (id, story_id, owner_id, quest_id, current_passage, visited, variables, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (story_id, owner_id) DO NOTHING`

	getRunQuery = `
SELECT id, story_id, owner_id, quest_id, current_passage, visited, variables, status, created_at, updated_at
FROM story_runs
WHERE story_id = $1 AND owner_id = $2`

	// Compare-and-set: переход присваивается только первому писателю,
	// наблюдающему active и ожидаемый текущий пассаж. Это граница блокировки
	// для перехода active -> completed (двойной сабмит терминала не должен
	// повторно запустить побочные эффекты).
	advanceRunQuery = `
UPDATE story_runs
SET current_passage = $3, visited = $4, variables = $5, status = $6, updated_at = $7
WHERE id = $1 AND status = 'active' AND current_passage = $2`

	updateRunVariablesQuery = `
UPDATE story_runs SET variables = $2, updated_at = $3 WHERE id = $1`
)

type pgRunRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgRunRepository создает репозиторий забегов поверх PostgreSQL.
func NewPgRunRepository(db DBTX, logger *zap.Logger) RunRepository {
	return &pgRunRepository{
		db:     db,
		logger: logger.Named("PgRunRepo"),
	}
}

func (r *pgRunRepository) Create(ctx context.Context, run *models.Run) error {
	log := r.logger.With(zap.String("runID", run.ID.String()), zap.String("ownerID", run.OwnerID.String()))

	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	varsJSON, err := json.Marshal(run.Variables)
	if err != nil {
		return fmt.Errorf("failed to marshal run variables: %w", err)
	}

	_, err = r.db.Exec(ctx, createRunQuery,
		run.ID, run.StoryID, run.OwnerID, run.QuestID, run.CurrentPassage,
		pq.Array(run.Visited), varsJSON, string(run.Status), run.CreatedAt, run.UpdatedAt)
	if err != nil {
		log.Error("Failed to create run", zap.Error(err))
		return fmt.Errorf("failed to create run: %w", err)
	}

	log.Debug("Run created (or already existed)")
	return nil
}

func (r *pgRunRepository) GetByStoryAndOwner(ctx context.Context, storyID, ownerID uuid.UUID) (*models.Run, error) {
	run := &models.Run{}
	var visited pq.StringArray
	var varsJSON []byte

	err := r.db.QueryRow(ctx, getRunQuery, storyID, ownerID).Scan(
		&run.ID, &run.StoryID, &run.OwnerID, &run.QuestID, &run.CurrentPassage,
		&visited, &varsJSON, &run.Status, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRunNotFound
		}
		r.logger.Error("Failed to get run",
			zap.String("storyID", storyID.String()), zap.String("ownerID", ownerID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Visited = []string(visited)
	if err := json.Unmarshal(varsJSON, &run.Variables); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run variables: %w", err)
	}
	return run, nil
}

func (r *pgRunRepository) Advance(ctx context.Context, runID uuid.UUID, expectedPassage, newPassage string,
	visited []string, variables map[string]string, status models.RunStatus) (bool, error) {
	log := r.logger.With(zap.String("runID", runID.String()),
		zap.String("from", expectedPassage), zap.String("to", newPassage))

	varsJSON, err := json.Marshal(variables)
	if err != nil {
		return false, fmt.Errorf("failed to marshal run variables: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, advanceRunQuery,
		runID, expectedPassage, newPassage, pq.Array(visited), varsJSON, string(status), time.Now().UTC())
	if err != nil {
		log.Error("Failed to advance run", zap.Error(err))
		return false, fmt.Errorf("failed to advance run: %w", err)
	}

	claimed := cmdTag.RowsAffected() == 1
	if !claimed {
		// Проигравший CAS: забег уже завершен или ушел с ожидаемого пассажа.
		log.Warn("Run advance lost compare-and-set")
	}
	return claimed, nil
}

func (r *pgRunRepository) UpdateVariables(ctx context.Context, runID uuid.UUID, variables map[string]string) error {
	varsJSON, err := json.Marshal(variables)
	if err != nil {
		return fmt.Errorf("failed to marshal run variables: %w", err)
	}
	if _, err := r.db.Exec(ctx, updateRunVariablesQuery, runID, varsJSON, time.Now().UTC()); err != nil {
		r.logger.Error("Failed to update run variables", zap.String("runID", runID.String()), zap.Error(err))
		return fmt.Errorf("failed to update run variables: %w", err)
	}
	return nil
}
