package mocks

import (
	"context"

	"quest-server/internal/models"
	"quest-server/internal/story"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock StoryRepository
type StoryRepository struct {
	mock.Mock
}

func (m *StoryRepository) Create(ctx context.Context, s *models.Story) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *StoryRepository) Update(ctx context.Context, s *models.Story) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *StoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Story)
	return s, args.Error(1)
}

func (m *StoryRepository) List(ctx context.Context, limit int) ([]models.StorySummary, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]models.StorySummary)
	return list, args.Error(1)
}

// Mock BindingRepository
type BindingRepository struct {
	mock.Mock
}

func (m *BindingRepository) Create(ctx context.Context, b *models.Binding) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BindingRepository) ListByStory(ctx context.Context, storyID uuid.UUID) ([]*models.Binding, error) {
	args := m.Called(ctx, storyID)
	list, _ := args.Get(0).([]*models.Binding)
	return list, args.Error(1)
}

func (m *BindingRepository) ListByScope(ctx context.Context, storyID uuid.UUID, scopeID string) ([]*models.Binding, error) {
	args := m.Called(ctx, storyID, scopeID)
	list, _ := args.Get(0).([]*models.Binding)
	return list, args.Error(1)
}

func (m *BindingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock RunRepository
type RunRepository struct {
	mock.Mock
}

func (m *RunRepository) Create(ctx context.Context, run *models.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *RunRepository) GetByStoryAndOwner(ctx context.Context, storyID, ownerID uuid.UUID) (*models.Run, error) {
	args := m.Called(ctx, storyID, ownerID)
	run, _ := args.Get(0).(*models.Run)
	return run, args.Error(1)
}

func (m *RunRepository) Advance(ctx context.Context, runID uuid.UUID, expectedPassage, newPassage string,
	visited []string, variables map[string]string, status models.RunStatus) (bool, error) {
	args := m.Called(ctx, runID, expectedPassage, newPassage, visited, variables, status)
	return args.Bool(0), args.Error(1)
}

func (m *RunRepository) UpdateVariables(ctx context.Context, runID uuid.UUID, variables map[string]string) error {
	args := m.Called(ctx, runID, variables)
	return args.Error(0)
}

// Mock StoryCache
type StoryCache struct {
	mock.Mock
}

func (m *StoryCache) Get(ctx context.Context, storyID uuid.UUID) (*story.StoryDocument, error) {
	args := m.Called(ctx, storyID)
	doc, _ := args.Get(0).(*story.StoryDocument)
	return doc, args.Error(1)
}

func (m *StoryCache) Set(ctx context.Context, storyID uuid.UUID, doc *story.StoryDocument) error {
	args := m.Called(ctx, storyID, doc)
	return args.Error(0)
}

func (m *StoryCache) Invalidate(ctx context.Context, storyID uuid.UUID) error {
	args := m.Called(ctx, storyID)
	return args.Error(0)
}
