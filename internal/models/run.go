package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus - статус забега.
type RunStatus string

const (
	RunStatusActive    RunStatus = "active"
	RunStatusCompleted RunStatus = "completed"
)

// Run - прогресс одного игрока по одной истории. Создается при первом входе,
// мутируется только навигационным движком, этим ядром никогда не удаляется.
type Run struct {
	ID             uuid.UUID         `json:"id"`
	StoryID        uuid.UUID         `json:"story_id"`
	OwnerID        uuid.UUID         `json:"owner_id"`
	QuestID        *uuid.UUID        `json:"quest_id,omitempty"` // внешний квестовый контекст, опционален
	CurrentPassage string            `json:"current_passage"`    // имя пассажа, серверно-авторитетное
	Visited        []string          `json:"visited"`            // журнал посещений, не множество
	Variables      map[string]string `json:"variables"`
	Status         RunStatus         `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Completed сообщает, финализирован ли забег.
func (r *Run) Completed() bool {
	return r.Status == RunStatusCompleted
}
