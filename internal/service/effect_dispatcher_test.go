package service_test

import (
	"context"
	"errors"
	"testing"

	"quest-server/internal/models"
	"quest-server/internal/service"
	servicemocks "quest-server/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type dispatcherFixture struct {
	identity  *servicemocks.MockIdentityAssigner
	content   *servicemocks.MockContentEmitter
	completer *servicemocks.MockQuestCompleter
	d         service.EffectDispatcher
}

func newDispatcherFixture() *dispatcherFixture {
	f := &dispatcherFixture{
		identity:  new(servicemocks.MockIdentityAssigner),
		content:   new(servicemocks.MockContentEmitter),
		completer: new(servicemocks.MockQuestCompleter),
	}
	f.d = service.NewEffectDispatcher(f.identity, f.content, f.completer, zap.NewNop())
	return f
}

func dispatcherRun() *models.Run {
	return &models.Run{ID: uuid.New(), OwnerID: uuid.New(), Status: models.RunStatusActive}
}

func TestDispatcherApply_EmitQuest(t *testing.T) {
	f := newDispatcherFixture()
	run := dispatcherRun()
	contentID := uuid.New()
	b := &models.Binding{
		ID:     uuid.New(),
		Action: models.ActionEmitQuest,
		Payload: models.BindingPayload{
			EmitQuest: &models.EmitContentPayload{Title: "Найти меч", Description: "В лесу"},
		},
	}

	f.content.On("EmitQuest", mock.Anything, run.OwnerID, "Найти меч", "В лесу").Return(contentID, nil)

	res := f.d.Apply(context.Background(), b, run)
	require.True(t, res.OK)
	assert.Equal(t, "Найти меч", res.EmittedTitle)
	assert.Equal(t, contentID, res.ContentID)
}

func TestDispatcherApply_EmitBar(t *testing.T) {
	f := newDispatcherFixture()
	run := dispatcherRun()
	contentID := uuid.New()
	b := &models.Binding{
		ID:     uuid.New(),
		Action: models.ActionEmitBar,
		Payload: models.BindingPayload{
			EmitBar: &models.EmitContentPayload{Title: "Таверна"},
		},
	}

	f.content.On("EmitBar", mock.Anything, run.OwnerID, "Таверна", "").Return(contentID, nil)

	res := f.d.Apply(context.Background(), b, run)
	require.True(t, res.OK)
	assert.Equal(t, "Таверна", res.EmittedTitle)
}

func TestDispatcherApply_SetNationAndArchetype(t *testing.T) {
	f := newDispatcherFixture()
	run := dispatcherRun()
	nationID := uuid.New()
	playbookID := uuid.New()

	f.identity.On("AssignNation", mock.Anything, run.OwnerID, nationID).Return(nil)
	f.identity.On("AssignArchetype", mock.Anything, run.OwnerID, playbookID).Return(nil)

	resNation := f.d.Apply(context.Background(), &models.Binding{
		ID:      uuid.New(),
		Action:  models.ActionSetNation,
		Payload: models.BindingPayload{SetNation: &models.AssignNationPayload{NationID: nationID}},
	}, run)
	require.True(t, resNation.OK)
	// Назначение идентичности ничего не "эмитит".
	assert.Empty(t, resNation.EmittedTitle)

	resArchetype := f.d.Apply(context.Background(), &models.Binding{
		ID:      uuid.New(),
		Action:  models.ActionSetArchetype,
		Payload: models.BindingPayload{SetArchetype: &models.AssignArchetypePayload{PlaybookID: playbookID}},
	}, run)
	require.True(t, resArchetype.OK)
}

func TestDispatcherApply_CollaboratorFailureIsContained(t *testing.T) {
	f := newDispatcherFixture()
	run := dispatcherRun()
	b := &models.Binding{
		ID:      uuid.New(),
		Action:  models.ActionEmitQuest,
		Payload: models.BindingPayload{EmitQuest: &models.EmitContentPayload{Title: "Найти меч"}},
	}

	f.content.On("EmitQuest", mock.Anything, run.OwnerID, "Найти меч", "").
		Return(uuid.Nil, errors.New("game api returned status 503"))

	// Отказ коллаборатора не паникует и не выбрасывается - он в результате.
	res := f.d.Apply(context.Background(), b, run)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "quest emission failed")
}

func TestDispatcherApply_MismatchedStoredPayload(t *testing.T) {
	f := newDispatcherFixture()
	run := dispatcherRun()

	// Действие EMIT_QUEST, но jsonb в строке содержал другой вариант union.
	tests := []models.ActionType{
		models.ActionEmitQuest,
		models.ActionEmitBar,
		models.ActionSetNation,
		models.ActionSetArchetype,
	}
	for _, action := range tests {
		t.Run(string(action), func(t *testing.T) {
			b := &models.Binding{ID: uuid.New(), Action: action, Payload: models.BindingPayload{}}

			res := f.d.Apply(context.Background(), b, run)
			assert.False(t, res.OK)
			assert.Contains(t, res.Error, "does not match action")
		})
	}
	f.content.AssertNotCalled(t, "EmitQuest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.identity.AssertNotCalled(t, "AssignNation", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcherApply_UnknownStoredAction(t *testing.T) {
	f := newDispatcherFixture()
	run := dispatcherRun()
	b := &models.Binding{ID: uuid.New(), Action: models.ActionType("LEGACY_ACTION")}

	res := f.d.Apply(context.Background(), b, run)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "unknown action type")
}

func TestDispatcherCompleteQuest(t *testing.T) {
	f := newDispatcherFixture()
	run := dispatcherRun()

	f.completer.On("CompleteQuest", mock.Anything, run.OwnerID, "q-42").Return(nil).Once()
	require.NoError(t, f.d.CompleteQuest(context.Background(), run, "q-42"))

	f.completer.On("CompleteQuest", mock.Anything, run.OwnerID, "q-broken").
		Return(errors.New("timeout")).Once()
	assert.Error(t, f.d.CompleteQuest(context.Background(), run, "q-broken"))
}
