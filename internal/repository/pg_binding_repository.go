package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quest-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ BindingRepository = (*pgBindingRepository)(nil)

const (
	createBindingQuery = `
INSERT INTO story_bindings (id, story_id, scope_type, scope_id, action_type, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	listBindingsByStoryQuery = `
SELECT id, story_id, scope_type, scope_id, action_type, payload, created_at
FROM story_bindings
WHERE story_id = $1
ORDER BY created_at, id`

	listBindingsByScopeQuery = `
SELECT id, story_id, scope_type, scope_id, action_type, payload, created_at
FROM story_bindings
WHERE story_id = $1 AND scope_type = 'passage' AND scope_id = $2
ORDER BY created_at, id`

	deleteBindingQuery = `DELETE FROM story_bindings WHERE id = $1`
)

// bindingRow - плоская форма строки для сканирования (payload как jsonb-байты).
type bindingRow struct {
	ID        uuid.UUID `db:"id"`
	StoryID   uuid.UUID `db:"story_id"`
	ScopeType string    `db:"scope_type"`
	ScopeID   string    `db:"scope_id"`
	Action    string    `db:"action_type"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

func (row bindingRow) toModel() (*models.Binding, error) {
	b := &models.Binding{
		ID:        row.ID,
		StoryID:   row.StoryID,
		ScopeType: models.ScopeType(row.ScopeType),
		ScopeID:   row.ScopeID,
		Action:    models.ActionType(row.Action),
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal(row.Payload, &b.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal binding payload %s: %w", row.ID, err)
	}
	return b, nil
}

type pgBindingRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgBindingRepository создает репозиторий биндингов поверх PostgreSQL.
func NewPgBindingRepository(db DBTX, logger *zap.Logger) BindingRepository {
	return &pgBindingRepository{
		db:     db,
		logger: logger.Named("PgBindingRepo"),
	}
}

func (r *pgBindingRepository) Create(ctx context.Context, b *models.Binding) error {
	log := r.logger.With(zap.String("bindingID", b.ID.String()), zap.String("storyID", b.StoryID.String()))

	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	payloadJSON, err := json.Marshal(b.Payload)
	if err != nil {
		log.Error("Failed to marshal binding payload", zap.Error(err))
		return fmt.Errorf("failed to marshal binding payload: %w", err)
	}

	_, err = r.db.Exec(ctx, createBindingQuery,
		b.ID, b.StoryID, string(b.ScopeType), b.ScopeID, string(b.Action), payloadJSON, b.CreatedAt)
	if err != nil {
		log.Error("Failed to create binding", zap.Error(err))
		return fmt.Errorf("failed to create binding: %w", err)
	}

	log.Debug("Binding created", zap.String("action", string(b.Action)), zap.String("scopeID", b.ScopeID))
	return nil
}

func (r *pgBindingRepository) ListByStory(ctx context.Context, storyID uuid.UUID) ([]*models.Binding, error) {
	return r.list(ctx, listBindingsByStoryQuery, storyID)
}

func (r *pgBindingRepository) ListByScope(ctx context.Context, storyID uuid.UUID, scopeID string) ([]*models.Binding, error) {
	return r.list(ctx, listBindingsByScopeQuery, storyID, scopeID)
}

func (r *pgBindingRepository) list(ctx context.Context, query string, args ...any) ([]*models.Binding, error) {
	var rows []bindingRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list bindings", zap.Error(err))
		return nil, fmt.Errorf("failed to list bindings: %w", err)
	}

	bindings := make([]*models.Binding, 0, len(rows))
	for _, row := range rows {
		b, err := row.toModel()
		if err != nil {
			r.logger.Error("Failed to decode binding row", zap.Error(err))
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func (r *pgBindingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	log := r.logger.With(zap.String("bindingID", id.String()))

	cmdTag, err := r.db.Exec(ctx, deleteBindingQuery, id)
	if err != nil {
		log.Error("Failed to delete binding", zap.Error(err))
		return fmt.Errorf("failed to delete binding: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	log.Info("Binding deleted")
	return nil
}
