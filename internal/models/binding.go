package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionType - фиксированный словарь действий биндингов. Неизвестный тип
// отклоняется при создании биндинга, а не при исполнении.
type ActionType string

const (
	ActionEmitQuest    ActionType = "EMIT_QUEST"
	ActionEmitBar      ActionType = "EMIT_BAR"
	ActionSetNation    ActionType = "SET_NATION"
	ActionSetArchetype ActionType = "SET_ARCHETYPE"
)

// ScopeType - область действия биндинга. Сейчас поддерживается только passage.
type ScopeType string

const ScopePassage ScopeType = "passage"

// EmitContentPayload - полезная нагрузка для EMIT_QUEST / EMIT_BAR.
type EmitContentPayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// AssignNationPayload - полезная нагрузка для SET_NATION.
type AssignNationPayload struct {
	NationID uuid.UUID `json:"nation_id"`
}

// AssignArchetypePayload - полезная нагрузка для SET_ARCHETYPE.
type AssignArchetypePayload struct {
	PlaybookID uuid.UUID `json:"playbook_id"`
}

// BindingPayload - размеченное объединение по ActionType: заполняется ровно
// один вариант, соответствующий типу действия. Свободных записей нет -
// обязательные поля каждого варианта проверяются при конструировании.
type BindingPayload struct {
	EmitQuest    *EmitContentPayload     `json:"emit_quest,omitempty"`
	EmitBar      *EmitContentPayload     `json:"emit_bar,omitempty"`
	SetNation    *AssignNationPayload    `json:"set_nation,omitempty"`
	SetArchetype *AssignArchetypePayload `json:"set_archetype,omitempty"`
}

// Validate проверяет, что нагрузка соответствует типу действия и несет все
// обязательные поля. Проверка исчерпывающая по словарю действий.
func (p BindingPayload) Validate(action ActionType) error {
	switch action {
	case ActionEmitQuest:
		if p.EmitQuest == nil || p.EmitQuest.Title == "" {
			return fmt.Errorf("%w: EMIT_QUEST requires a non-empty title", ErrInvalidPayload)
		}
	case ActionEmitBar:
		if p.EmitBar == nil || p.EmitBar.Title == "" {
			return fmt.Errorf("%w: EMIT_BAR requires a non-empty title", ErrInvalidPayload)
		}
	case ActionSetNation:
		if p.SetNation == nil || p.SetNation.NationID == uuid.Nil {
			return fmt.Errorf("%w: SET_NATION requires a nation id", ErrInvalidPayload)
		}
	case ActionSetArchetype:
		if p.SetArchetype == nil || p.SetArchetype.PlaybookID == uuid.Nil {
			return fmt.Errorf("%w: SET_ARCHETYPE requires a playbook id", ErrInvalidPayload)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownActionType, action)
	}
	return nil
}

// Binding - декларативное правило: при входе забега в пассаж ScopeID выполнить
// действие Action с нагрузкой Payload. Чистые данные; исполняется навигационным
// движком через диспетчер эффектов.
type Binding struct {
	ID        uuid.UUID      `json:"id"`
	StoryID   uuid.UUID      `json:"story_id"`
	ScopeType ScopeType      `json:"scope_type"`
	ScopeID   string         `json:"scope_id"` // имя пассажа
	Action    ActionType     `json:"action_type"`
	Payload   BindingPayload `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}
