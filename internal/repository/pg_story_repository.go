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
var _ StoryRepository = (*pgStoryRepository)(nil)

const (
	createStoryQuery = `
INSERT INTO stories (id, title, raw_document, document, warnings, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	getStoryByIDQuery = `
SELECT id, title, raw_document, document, warnings, created_by, created_at, updated_at
FROM stories
WHERE id = $1`

	updateStoryQuery = `
UPDATE stories
SET title = $2, raw_document = $3, document = $4, warnings = $5, updated_at = $6
WHERE id = $1`

	listStoriesQuery = `
SELECT id, title, jsonb_array_length(document->'passages') AS passage_count, created_at
FROM stories
ORDER BY created_at DESC
LIMIT $1`
)

type pgStoryRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgStoryRepository создает репозиторий историй поверх PostgreSQL.
func NewPgStoryRepository(db DBTX, logger *zap.Logger) StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

func (r *pgStoryRepository) Create(ctx context.Context, s *models.Story) error {
	log := r.logger.With(zap.String("storyID", s.ID.String()))

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	// Скомпилированный снимок храним как jsonb рядом с исходником.
	docJSON, err := json.Marshal(s.Document)
	if err != nil {
		log.Error("Failed to marshal story document", zap.Error(err))
		return fmt.Errorf("failed to marshal story document: %w", err)
	}

	_, err = r.db.Exec(ctx, createStoryQuery,
		s.ID, s.Title, s.RawDocument, docJSON, pq.Array(s.Warnings), s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		log.Error("Failed to create story", zap.Error(err))
		return fmt.Errorf("failed to create story: %w", err)
	}

	log.Debug("Story created")
	return nil
}

func (r *pgStoryRepository) Update(ctx context.Context, s *models.Story) error {
	log := r.logger.With(zap.String("storyID", s.ID.String()))

	s.UpdatedAt = time.Now().UTC()
	docJSON, err := json.Marshal(s.Document)
	if err != nil {
		log.Error("Failed to marshal story document", zap.Error(err))
		return fmt.Errorf("failed to marshal story document: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, updateStoryQuery,
		s.ID, s.Title, s.RawDocument, docJSON, pq.Array(s.Warnings), s.UpdatedAt)
	if err != nil {
		log.Error("Failed to update story", zap.Error(err))
		return fmt.Errorf("failed to update story: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}

	log.Debug("Story updated")
	return nil
}

func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	log := r.logger.With(zap.String("storyID", id.String()))

	s := &models.Story{}
	var docJSON []byte
	var warnings pq.StringArray

	err := r.db.QueryRow(ctx, getStoryByIDQuery, id).Scan(
		&s.ID, &s.Title, &s.RawDocument, &docJSON, &warnings, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStoryNotFound
		}
		log.Error("Failed to get story", zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}

	if err := json.Unmarshal(docJSON, &s.Document); err != nil {
		log.Error("Failed to unmarshal story document", zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal story document: %w", err)
	}
	// Индекс имен не сериализуется - восстанавливаем.
	s.Document.Reindex()
	s.Warnings = []string(warnings)

	return s, nil
}

func (r *pgStoryRepository) List(ctx context.Context, limit int) ([]models.StorySummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, listStoriesQuery, limit)
	if err != nil {
		r.logger.Error("Failed to list stories", zap.Error(err))
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.StorySummary, 0, limit)
	for rows.Next() {
		var s models.StorySummary
		if err := rows.Scan(&s.ID, &s.Title, &s.PassageCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan story summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
