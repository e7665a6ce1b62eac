package models

import "github.com/google/uuid"

// ChoiceView - один доступный выбор в текущем пассаже.
type ChoiceView struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// RunView - представление текущего состояния забега для UI-слоя.
type RunView struct {
	RunID     uuid.UUID         `json:"run_id"`
	StoryID   uuid.UUID         `json:"story_id"`
	Passage   string            `json:"passage"`
	Text      string            `json:"text"`
	Tags      []string          `json:"tags,omitempty"`
	Choices   []ChoiceView      `json:"choices"`
	Variables map[string]string `json:"variables,omitempty"`
	Completed bool              `json:"completed"`
}

// AdvanceResult - результат одного перехода, отдаваемый UI-слою.
type AdvanceResult struct {
	// Emitted - заголовки контента, успешно созданного биндингами этого
	// перехода (для плашки "unlocked: ...").
	Emitted []string `json:"emitted"`
	// QuestCompleted - достиг ли забег терминального пассажа.
	QuestCompleted bool `json:"quest_completed"`
	// Redirect - имя пассажа, который UI должен отрисовать следующим.
	Redirect string `json:"redirect,omitempty"`
	// Completed дублирует финализацию забега (включая повторную отправку
	// уже завершенного терминала - AlreadyCompletedNoop).
	Completed bool `json:"completed"`
	// EffectFailures - человекочитаемые описания отказов побочных эффектов.
	// Навигацию они не блокируют, но caller может показать "partially applied".
	EffectFailures []string `json:"effect_failures,omitempty"`
}

// RunUpdate - сообщение для очереди обновлений клиента (socket-слой).
type RunUpdate struct {
	RunID     uuid.UUID `json:"run_id"`
	StoryID   uuid.UUID `json:"story_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Passage   string    `json:"passage"`
	Emitted   []string  `json:"emitted,omitempty"`
	Completed bool      `json:"completed"`
}

// ErrorResponse - стандартная структура ответа об ошибке.
type ErrorResponse struct {
	Error string `json:"error"`
}
