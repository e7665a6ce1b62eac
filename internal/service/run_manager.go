package service

import (
	"context"
	"errors"
	"fmt"

	"quest-server/internal/models"
	"quest-server/internal/repository"
	"quest-server/internal/story"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunManager создает, читает и сохраняет прогресс забегов. Вся мутация
// прогресса идет через ClaimAdvance (compare-and-set в репозитории).
type RunManager interface {
	// GetOrCreate идемпотентен по (storyID, ownerID): существующий забег
	// возвращается без сброса прогресса; created=true только при создании.
	GetOrCreate(ctx context.Context, doc *story.StoryDocument, storyID, ownerID uuid.UUID, questID *uuid.UUID) (run *models.Run, created bool, err error)
	Get(ctx context.Context, storyID, ownerID uuid.UUID) (*models.Run, error)
	// ClaimAdvance пытается присвоить переход текущему писателю. claimed=false
	// означает, что конкурент успел раньше (или забег уже завершен).
	ClaimAdvance(ctx context.Context, run *models.Run, newPassage string,
		visited []string, variables map[string]string, status models.RunStatus) (claimed bool, err error)
	// AppendVariables дописывает переменные, накопленные эффектами биндингов,
	// уже после присвоения перехода.
	AppendVariables(ctx context.Context, run *models.Run, extra map[string]string) error
}

type runManagerImpl struct {
	repo   repository.RunRepository
	logger *zap.Logger
}

func NewRunManager(repo repository.RunRepository, logger *zap.Logger) RunManager {
	return &runManagerImpl{
		repo:   repo,
		logger: logger.Named("RunManager"),
	}
}

func (m *runManagerImpl) GetOrCreate(ctx context.Context, doc *story.StoryDocument, storyID, ownerID uuid.UUID, questID *uuid.UUID) (*models.Run, bool, error) {
	existing, err := m.repo.GetByStoryAndOwner(ctx, storyID, ownerID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrRunNotFound) {
		return nil, false, err
	}

	run := &models.Run{
		ID:             uuid.New(),
		StoryID:        storyID,
		OwnerID:        ownerID,
		QuestID:        questID,
		CurrentPassage: doc.StartPassage,
		Visited:        []string{doc.StartPassage},
		Variables:      map[string]string{},
		Status:         models.RunStatusActive,
	}
	if err := m.repo.Create(ctx, run); err != nil {
		return nil, false, fmt.Errorf("failed to create run: %w", err)
	}

	// Вставка идемпотентна (ON CONFLICT DO NOTHING), поэтому перечитываем:
	// при гонке двух первых визитов оба вызова увидят одну и ту же строку.
	stored, err := m.repo.GetByStoryAndOwner(ctx, storyID, ownerID)
	if err != nil {
		return nil, false, err
	}
	created := stored.ID == run.ID
	if created {
		m.logger.Info("Run created",
			zap.String("runID", run.ID.String()),
			zap.String("storyID", storyID.String()),
			zap.String("ownerID", ownerID.String()))
	}
	return stored, created, nil
}

func (m *runManagerImpl) Get(ctx context.Context, storyID, ownerID uuid.UUID) (*models.Run, error) {
	return m.repo.GetByStoryAndOwner(ctx, storyID, ownerID)
}

func (m *runManagerImpl) ClaimAdvance(ctx context.Context, run *models.Run, newPassage string,
	visited []string, variables map[string]string, status models.RunStatus) (bool, error) {
	return m.repo.Advance(ctx, run.ID, run.CurrentPassage, newPassage, visited, variables, status)
}

func (m *runManagerImpl) AppendVariables(ctx context.Context, run *models.Run, extra map[string]string) error {
	if len(extra) == 0 {
		return nil
	}
	merged := make(map[string]string, len(run.Variables)+len(extra))
	for k, v := range run.Variables {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	if err := m.repo.UpdateVariables(ctx, run.ID, merged); err != nil {
		return err
	}
	run.Variables = merged
	return nil
}
