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

// StoryService - авторская поверхность: импорт сырых документов, компиляция
// структурированной модели и чтение историй.
type StoryService interface {
	Import(ctx context.Context, raw string, createdBy uuid.UUID) (*models.Story, error)
	Reimport(ctx context.Context, id uuid.UUID, raw string) (*models.Story, error)
	CompileAndImport(ctx context.Context, m story.AuthoringModel, createdBy uuid.UUID) (*models.Story, string, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Story, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*story.StoryDocument, error)
	List(ctx context.Context, limit int) ([]models.StorySummary, error)
}

type storyServiceImpl struct {
	repo   repository.StoryRepository
	cache  repository.StoryCache
	logger *zap.Logger
}

// NewStoryService создает сервис историй. cache может быть nil (кэширование
// тогда отключено, все чтения идут в БД).
func NewStoryService(repo repository.StoryRepository, cache repository.StoryCache, logger *zap.Logger) StoryService {
	return &storyServiceImpl{
		repo:   repo,
		cache:  cache,
		logger: logger.Named("StoryService"),
	}
}

// Import декодирует и сохраняет сырой документ. Висячие ссылки не фатальны -
// возвращаются в Story.Warnings для авторской поверхности.
func (s *storyServiceImpl) Import(ctx context.Context, raw string, createdBy uuid.UUID) (*models.Story, error) {
	doc, err := story.Decode(raw)
	if err != nil {
		// Фатальные ошибки декодирования видит только автор/админ.
		s.logger.Warn("Story decode failed", zap.Error(err))
		return nil, err
	}

	title := doc.Name
	if title == "" {
		title = "Untitled story"
	}

	st := &models.Story{
		ID:          uuid.New(),
		Title:       title,
		RawDocument: raw,
		Document:    *doc,
		Warnings:    doc.Warnings,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to store imported story: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, st.ID, &st.Document); err != nil {
			s.logger.Warn("Failed to warm story cache", zap.String("storyID", st.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("Story imported",
		zap.String("storyID", st.ID.String()),
		zap.Int("passages", len(doc.Passages)),
		zap.Int("warnings", len(doc.Warnings)))
	return st, nil
}

// Reimport заменяет документ существующей истории новой версией. Кэш
// инвалидируется до записи новой версии: читатель между Update и Set получит
// промах и свежую строку из БД, но никогда - устаревший документ.
func (s *storyServiceImpl) Reimport(ctx context.Context, id uuid.UUID, raw string) (*models.Story, error) {
	doc, err := story.Decode(raw)
	if err != nil {
		s.logger.Warn("Story decode failed on reimport", zap.String("storyID", id.String()), zap.Error(err))
		return nil, err
	}

	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.Name != "" {
		st.Title = doc.Name
	}
	st.RawDocument = raw
	st.Document = *doc
	st.Warnings = doc.Warnings

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.logger.Warn("Failed to invalidate story cache", zap.String("storyID", id.String()), zap.Error(err))
		}
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to store reimported story: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, id, &st.Document); err != nil {
			s.logger.Warn("Failed to warm story cache", zap.String("storyID", id.String()), zap.Error(err))
		}
	}

	s.logger.Info("Story reimported",
		zap.String("storyID", id.String()),
		zap.Int("passages", len(doc.Passages)),
		zap.Int("warnings", len(doc.Warnings)))
	return st, nil
}

// CompileAndImport компилирует модель авторинга и импортирует полученный
// документ. Возвращает также построчную разметку для ручного редактирования.
func (s *storyServiceImpl) CompileAndImport(ctx context.Context, m story.AuthoringModel, createdBy uuid.UUID) (*models.Story, string, error) {
	result, err := story.Compile(m)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
	}

	st, err := s.Import(ctx, result.Document, createdBy)
	if err != nil {
		// Скомпилированный документ обязан декодироваться; если нет - это баг энкодера.
		s.logger.Error("Compiled document failed to import", zap.Error(err))
		return nil, "", err
	}
	return st, result.MarkupText, nil
}

func (s *storyServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	return s.repo.GetByID(ctx, id)
}

// GetDocument возвращает декодированный документ, предпочитая кэш.
func (s *storyServiceImpl) GetDocument(ctx context.Context, id uuid.UUID) (*story.StoryDocument, error) {
	if s.cache != nil {
		doc, err := s.cache.Get(ctx, id)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			// Отказ кэша не должен ронять чтение - падаем обратно в БД.
			s.logger.Warn("Story cache read failed", zap.String("storyID", id.String()), zap.Error(err))
		}
	}

	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, id, &st.Document); err != nil {
			s.logger.Warn("Failed to refill story cache", zap.String("storyID", id.String()), zap.Error(err))
		}
	}
	return &st.Document, nil
}

func (s *storyServiceImpl) List(ctx context.Context, limit int) ([]models.StorySummary, error) {
	return s.repo.List(ctx, limit)
}
