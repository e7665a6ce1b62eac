package service

import (
	"context"
	"fmt"

	"quest-server/internal/models"
	"quest-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BindingService - реестр биндингов. Валидация словаря действий и формы
// нагрузки выполняется здесь, при создании; движок навигации исполняет
// биндинги уже без проверок.
type BindingService interface {
	Create(ctx context.Context, storyID uuid.UUID, scopeID string, action models.ActionType, payload models.BindingPayload) (*models.Binding, error)
	ListForStory(ctx context.Context, storyID uuid.UUID) ([]*models.Binding, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type bindingServiceImpl struct {
	repo    repository.BindingRepository
	stories StoryService
	logger  *zap.Logger
}

func NewBindingService(repo repository.BindingRepository, stories StoryService, logger *zap.Logger) BindingService {
	return &bindingServiceImpl{
		repo:    repo,
		stories: stories,
		logger:  logger.Named("BindingService"),
	}
}

func (s *bindingServiceImpl) Create(ctx context.Context, storyID uuid.UUID, scopeID string, action models.ActionType, payload models.BindingPayload) (*models.Binding, error) {
	if err := payload.Validate(action); err != nil {
		return nil, err
	}

	// Область действия должна указывать на существующий пассаж истории.
	doc, err := s.stories.GetDocument(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if doc.Passage(scopeID) == nil {
		return nil, fmt.Errorf("%w: story has no passage named %q", models.ErrBadRequest, scopeID)
	}

	b := &models.Binding{
		ID:        uuid.New(),
		StoryID:   storyID,
		ScopeType: models.ScopePassage,
		ScopeID:   scopeID,
		Action:    action,
		Payload:   payload,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("Binding created",
		zap.String("bindingID", b.ID.String()),
		zap.String("storyID", storyID.String()),
		zap.String("scopeID", scopeID),
		zap.String("action", string(action)))
	return b, nil
}

func (s *bindingServiceImpl) ListForStory(ctx context.Context, storyID uuid.UUID) ([]*models.Binding, error) {
	return s.repo.ListByStory(ctx, storyID)
}

func (s *bindingServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
