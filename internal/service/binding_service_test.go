package service_test

import (
	"context"
	"testing"

	"quest-server/internal/models"
	repomocks "quest-server/internal/repository/mocks"
	"quest-server/internal/service"
	servicemocks "quest-server/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBindingFixture() (*repomocks.BindingRepository, *servicemocks.MockStoryService, service.BindingService) {
	repo := new(repomocks.BindingRepository)
	stories := new(servicemocks.MockStoryService)
	svc := service.NewBindingService(repo, stories, zap.NewNop())
	return repo, stories, svc
}

func TestBindingCreate_Valid(t *testing.T) {
	repo, stories, svc := newBindingFixture()
	storyID := uuid.New()
	doc := testDocument(t)

	stories.On("GetDocument", mock.Anything, storyID).Return(doc, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Binding")).Return(nil)

	b, err := svc.Create(context.Background(), storyID, "Forest", models.ActionEmitQuest,
		models.BindingPayload{EmitQuest: &models.EmitContentPayload{Title: "Найти меч"}})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, storyID, b.StoryID)
	assert.Equal(t, models.ScopePassage, b.ScopeType)
	assert.Equal(t, "Forest", b.ScopeID)
	repo.AssertExpectations(t)
}

func TestBindingCreate_UnknownActionRejected(t *testing.T) {
	repo, _, svc := newBindingFixture()

	_, err := svc.Create(context.Background(), uuid.New(), "Forest",
		models.ActionType("GRANT_XP"), models.BindingPayload{})
	assert.ErrorIs(t, err, models.ErrUnknownActionType)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBindingCreate_InvalidPayloadRejected(t *testing.T) {
	repo, _, svc := newBindingFixture()

	// Нагрузка не соответствует типу действия.
	_, err := svc.Create(context.Background(), uuid.New(), "Forest",
		models.ActionSetNation, models.BindingPayload{EmitQuest: &models.EmitContentPayload{Title: "x"}})
	assert.ErrorIs(t, err, models.ErrInvalidPayload)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBindingCreate_UnknownScopePassageRejected(t *testing.T) {
	_, stories, svc := newBindingFixture()
	storyID := uuid.New()
	doc := testDocument(t)

	stories.On("GetDocument", mock.Anything, storyID).Return(doc, nil)

	_, err := svc.Create(context.Background(), storyID, "Ghost", models.ActionEmitBar,
		models.BindingPayload{EmitBar: &models.EmitContentPayload{Title: "Таверна"}})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestBindingDelete_NotFound(t *testing.T) {
	repo, _, svc := newBindingFixture()
	id := uuid.New()

	repo.On("Delete", mock.Anything, id).Return(models.ErrNotFound)

	err := svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
