package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBindingPayloadValidate(t *testing.T) {
	nationID := uuid.New()
	playbookID := uuid.New()

	tests := []struct {
		name    string
		action  ActionType
		payload BindingPayload
		wantErr error
	}{
		{
			name:    "EMIT_QUEST валидный",
			action:  ActionEmitQuest,
			payload: BindingPayload{EmitQuest: &EmitContentPayload{Title: "Найти меч"}},
		},
		{
			name:    "EMIT_QUEST без нагрузки",
			action:  ActionEmitQuest,
			payload: BindingPayload{},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "EMIT_QUEST с пустым title",
			action:  ActionEmitQuest,
			payload: BindingPayload{EmitQuest: &EmitContentPayload{Description: "без заголовка"}},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "EMIT_BAR валидный",
			action:  ActionEmitBar,
			payload: BindingPayload{EmitBar: &EmitContentPayload{Title: "Таверна", Description: "У тракта"}},
		},
		{
			name:    "EMIT_BAR с нагрузкой другого варианта",
			action:  ActionEmitBar,
			payload: BindingPayload{EmitQuest: &EmitContentPayload{Title: "не тот вариант"}},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "SET_NATION валидный",
			action:  ActionSetNation,
			payload: BindingPayload{SetNation: &AssignNationPayload{NationID: nationID}},
		},
		{
			name:    "SET_NATION с нулевым id",
			action:  ActionSetNation,
			payload: BindingPayload{SetNation: &AssignNationPayload{}},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "SET_ARCHETYPE валидный",
			action:  ActionSetArchetype,
			payload: BindingPayload{SetArchetype: &AssignArchetypePayload{PlaybookID: playbookID}},
		},
		{
			name:    "SET_ARCHETYPE без нагрузки",
			action:  ActionSetArchetype,
			payload: BindingPayload{},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "неизвестный тип действия",
			action:  ActionType("GRANT_XP"),
			payload: BindingPayload{},
			wantErr: ErrUnknownActionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate(tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
