package mocks

import (
	"context"

	"quest-server/internal/models"
	"quest-server/internal/service"
	"quest-server/internal/story"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStoryService - мок service.StoryService.
type MockStoryService struct {
	mock.Mock
}

func (m *MockStoryService) Import(ctx context.Context, raw string, createdBy uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, raw, createdBy)
	st, _ := args.Get(0).(*models.Story)
	return st, args.Error(1)
}

func (m *MockStoryService) Reimport(ctx context.Context, id uuid.UUID, raw string) (*models.Story, error) {
	args := m.Called(ctx, id, raw)
	s, _ := args.Get(0).(*models.Story)
	return s, args.Error(1)
}

func (m *MockStoryService) CompileAndImport(ctx context.Context, authoring story.AuthoringModel, createdBy uuid.UUID) (*models.Story, string, error) {
	args := m.Called(ctx, authoring, createdBy)
	st, _ := args.Get(0).(*models.Story)
	return st, args.String(1), args.Error(2)
}

func (m *MockStoryService) Get(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id)
	st, _ := args.Get(0).(*models.Story)
	return st, args.Error(1)
}

func (m *MockStoryService) GetDocument(ctx context.Context, id uuid.UUID) (*story.StoryDocument, error) {
	args := m.Called(ctx, id)
	doc, _ := args.Get(0).(*story.StoryDocument)
	return doc, args.Error(1)
}

func (m *MockStoryService) List(ctx context.Context, limit int) ([]models.StorySummary, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]models.StorySummary)
	return list, args.Error(1)
}

// MockRunManager - мок service.RunManager.
type MockRunManager struct {
	mock.Mock
}

func (m *MockRunManager) GetOrCreate(ctx context.Context, doc *story.StoryDocument, storyID, ownerID uuid.UUID, questID *uuid.UUID) (*models.Run, bool, error) {
	args := m.Called(ctx, doc, storyID, ownerID, questID)
	run, _ := args.Get(0).(*models.Run)
	return run, args.Bool(1), args.Error(2)
}

func (m *MockRunManager) Get(ctx context.Context, storyID, ownerID uuid.UUID) (*models.Run, error) {
	args := m.Called(ctx, storyID, ownerID)
	run, _ := args.Get(0).(*models.Run)
	return run, args.Error(1)
}

func (m *MockRunManager) ClaimAdvance(ctx context.Context, run *models.Run, newPassage string,
	visited []string, variables map[string]string, status models.RunStatus) (bool, error) {
	args := m.Called(ctx, run, newPassage, visited, variables, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockRunManager) AppendVariables(ctx context.Context, run *models.Run, extra map[string]string) error {
	args := m.Called(ctx, run, extra)
	return args.Error(0)
}

// MockNavigationService - мок service.NavigationService (для хендлеров).
type MockNavigationService struct {
	mock.Mock
}

func (m *MockNavigationService) Start(ctx context.Context, storyID, ownerID uuid.UUID, questID *uuid.UUID) (*models.RunView, error) {
	args := m.Called(ctx, storyID, ownerID, questID)
	view, _ := args.Get(0).(*models.RunView)
	return view, args.Error(1)
}

func (m *MockNavigationService) View(ctx context.Context, storyID, ownerID uuid.UUID) (*models.RunView, error) {
	args := m.Called(ctx, storyID, ownerID)
	view, _ := args.Get(0).(*models.RunView)
	return view, args.Error(1)
}

func (m *MockNavigationService) Advance(ctx context.Context, storyID, ownerID uuid.UUID, target string) (*models.AdvanceResult, error) {
	args := m.Called(ctx, storyID, ownerID, target)
	res, _ := args.Get(0).(*models.AdvanceResult)
	return res, args.Error(1)
}

// MockBindingService - мок service.BindingService (для хендлеров).
type MockBindingService struct {
	mock.Mock
}

func (m *MockBindingService) Create(ctx context.Context, storyID uuid.UUID, scopeID string, action models.ActionType, payload models.BindingPayload) (*models.Binding, error) {
	args := m.Called(ctx, storyID, scopeID, action, payload)
	b, _ := args.Get(0).(*models.Binding)
	return b, args.Error(1)
}

func (m *MockBindingService) ListForStory(ctx context.Context, storyID uuid.UUID) ([]*models.Binding, error) {
	args := m.Called(ctx, storyID)
	list, _ := args.Get(0).([]*models.Binding)
	return list, args.Error(1)
}

func (m *MockBindingService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEffectDispatcher - мок service.EffectDispatcher.
type MockEffectDispatcher struct {
	mock.Mock
}

func (m *MockEffectDispatcher) Apply(ctx context.Context, b *models.Binding, run *models.Run) service.EffectResult {
	args := m.Called(ctx, b, run)
	res, _ := args.Get(0).(service.EffectResult)
	return res
}

func (m *MockEffectDispatcher) CompleteQuest(ctx context.Context, run *models.Run, externalID string) error {
	args := m.Called(ctx, run, externalID)
	return args.Error(0)
}

// MockIdentityAssigner - мок service.IdentityAssigner.
type MockIdentityAssigner struct {
	mock.Mock
}

func (m *MockIdentityAssigner) AssignNation(ctx context.Context, ownerID, nationID uuid.UUID) error {
	args := m.Called(ctx, ownerID, nationID)
	return args.Error(0)
}

func (m *MockIdentityAssigner) AssignArchetype(ctx context.Context, ownerID, playbookID uuid.UUID) error {
	args := m.Called(ctx, ownerID, playbookID)
	return args.Error(0)
}

// MockContentEmitter - мок service.ContentEmitter.
type MockContentEmitter struct {
	mock.Mock
}

func (m *MockContentEmitter) EmitQuest(ctx context.Context, ownerID uuid.UUID, title, description string) (uuid.UUID, error) {
	args := m.Called(ctx, ownerID, title, description)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *MockContentEmitter) EmitBar(ctx context.Context, ownerID uuid.UUID, title, description string) (uuid.UUID, error) {
	args := m.Called(ctx, ownerID, title, description)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

// MockQuestCompleter - мок service.QuestCompleter.
type MockQuestCompleter struct {
	mock.Mock
}

func (m *MockQuestCompleter) CompleteQuest(ctx context.Context, ownerID uuid.UUID, externalID string) error {
	args := m.Called(ctx, ownerID, externalID)
	return args.Error(0)
}
