package models

import (
	"time"

	"quest-server/internal/story"

	"github.com/google/uuid"
)

// Story - сохраненная история: исходный документ плюс его скомпилированный
// снимок. Снимок неизменяем; переимпорт заменяет его целиком.
type Story struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	RawDocument string              `json:"-"`
	Document    story.StoryDocument `json:"document"`
	Warnings    []string            `json:"warnings,omitempty"`
	CreatedBy   uuid.UUID           `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// StorySummary - краткая карточка истории для списков.
type StorySummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	PassageCount int       `json:"passage_count"`
	CreatedAt    time.Time `json:"created_at"`
}
