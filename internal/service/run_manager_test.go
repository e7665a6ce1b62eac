package service_test

import (
	"context"
	"testing"

	"quest-server/internal/models"
	repomocks "quest-server/internal/repository/mocks"
	"quest-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunManagerGetOrCreate_ExistingRunIsNotReset(t *testing.T) {
	repo := new(repomocks.RunRepository)
	m := service.NewRunManager(repo, zap.NewNop())
	doc := testDocument(t)
	storyID, ownerID := uuid.New(), uuid.New()

	existing := &models.Run{
		ID:             uuid.New(),
		StoryID:        storyID,
		OwnerID:        ownerID,
		CurrentPassage: "Forest",
		Visited:        []string{"Start", "Forest"},
		Status:         models.RunStatusActive,
	}
	repo.On("GetByStoryAndOwner", mock.Anything, storyID, ownerID).Return(existing, nil)

	run, created, err := m.GetOrCreate(context.Background(), doc, storyID, ownerID, nil)
	require.NoError(t, err)

	assert.False(t, created)
	// Прогресс существующего забега не тронут.
	assert.Equal(t, "Forest", run.CurrentPassage)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunManagerGetOrCreate_CreatesAtStartPassage(t *testing.T) {
	repo := new(repomocks.RunRepository)
	m := service.NewRunManager(repo, zap.NewNop())
	doc := testDocument(t)
	storyID, ownerID := uuid.New(), uuid.New()
	questID := uuid.New()

	repo.On("GetByStoryAndOwner", mock.Anything, storyID, ownerID).
		Return(nil, models.ErrRunNotFound).Once()

	// "Хранилище": строка, которую увидит перечитывание после вставки.
	stored := &models.Run{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Run")).
		Run(func(args mock.Arguments) { *stored = *args.Get(1).(*models.Run) }).
		Return(nil)
	repo.On("GetByStoryAndOwner", mock.Anything, storyID, ownerID).
		Return(stored, nil).Once()

	run, created, err := m.GetOrCreate(context.Background(), doc, storyID, ownerID, &questID)
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "Start", run.CurrentPassage)
	assert.Equal(t, []string{"Start"}, run.Visited)
	assert.Equal(t, models.RunStatusActive, run.Status)
	require.NotNil(t, run.QuestID)
	assert.Equal(t, questID, *run.QuestID)
}

func TestRunManagerGetOrCreate_LostInsertRace(t *testing.T) {
	repo := new(repomocks.RunRepository)
	m := service.NewRunManager(repo, zap.NewNop())
	doc := testDocument(t)
	storyID, ownerID := uuid.New(), uuid.New()

	// Конкурент вставил первым: наша вставка - no-op (ON CONFLICT DO NOTHING),
	// перечитывание возвращает чужую строку.
	winner := &models.Run{
		ID:             uuid.New(),
		StoryID:        storyID,
		OwnerID:        ownerID,
		CurrentPassage: "Start",
		Status:         models.RunStatusActive,
	}
	repo.On("GetByStoryAndOwner", mock.Anything, storyID, ownerID).
		Return(nil, models.ErrRunNotFound).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Run")).Return(nil)
	repo.On("GetByStoryAndOwner", mock.Anything, storyID, ownerID).Return(winner, nil).Once()

	run, created, err := m.GetOrCreate(context.Background(), doc, storyID, ownerID, nil)
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, winner.ID, run.ID)
}

func TestRunManagerAppendVariables(t *testing.T) {
	repo := new(repomocks.RunRepository)
	m := service.NewRunManager(repo, zap.NewNop())

	run := &models.Run{
		ID:        uuid.New(),
		Variables: map[string]string{"mood": "brave"},
	}

	repo.On("UpdateVariables", mock.Anything, run.ID,
		map[string]string{"mood": "brave", "emitted:x": "y"}).Return(nil)

	err := m.AppendVariables(context.Background(), run, map[string]string{"emitted:x": "y"})
	require.NoError(t, err)
	assert.Equal(t, "y", run.Variables["emitted:x"])

	// Пустая добавка не ходит в репозиторий.
	require.NoError(t, m.AppendVariables(context.Background(), run, nil))
	repo.AssertNumberOfCalls(t, "UpdateVariables", 1)
}
