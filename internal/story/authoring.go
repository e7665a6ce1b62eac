package story

import (
	"errors"
	"fmt"
)

// Лимиты модели авторинга. Ограничивают размер скомпилированного документа:
// итоговое число пассажей = 1 (Start) + моменты + 8 выходов + 1 (Epilogue).
const (
	MaxMoments          = 20
	MaxOptionsPerMoment = 4
)

var ErrInvalidAuthoringModel = errors.New("invalid authoring model")

// AuthoringOption - один вариант выбора внутри момента.
type AuthoringOption struct {
	Text           string `json:"text" binding:"required"`
	TargetMomentID string `json:"target_moment_id" binding:"required"`
	OutcomeValue   string `json:"outcome_value,omitempty"`
}

// AuthoringMoment - авторская единица, компилируемая в один пассаж.
type AuthoringMoment struct {
	ID      string            `json:"id" binding:"required"`
	Title   string            `json:"title"`
	Text    string            `json:"text" binding:"required"`
	Options []AuthoringOption `json:"options"`
}

// AuthoringModel - ограниченная структурированная модель, единственный вход
// энкодера. Сама по себе не содержит логики обхода графа.
type AuthoringModel struct {
	Title               string            `json:"title" binding:"required"`
	Prologue            string            `json:"prologue"`
	Moments             []AuthoringMoment `json:"moments" binding:"required"`
	Epilogue            string            `json:"epilogue"`
	OutcomeVariableName string            `json:"outcome_variable_name"`
	// ExternalQuestID попадает в маркер [BIND quest_complete=...] эпилога.
	ExternalQuestID string `json:"external_quest_id"`
}

// Validate проверяет лимиты и ссылочную целостность модели до компиляции.
func (m *AuthoringModel) Validate() error {
	if m.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidAuthoringModel)
	}
	if len(m.Moments) == 0 {
		return fmt.Errorf("%w: at least one moment is required", ErrInvalidAuthoringModel)
	}
	if len(m.Moments) > MaxMoments {
		return fmt.Errorf("%w: too many moments (%d > %d)", ErrInvalidAuthoringModel, len(m.Moments), MaxMoments)
	}

	seen := make(map[string]bool, len(m.Moments))
	for _, moment := range m.Moments {
		if moment.ID == "" {
			return fmt.Errorf("%w: moment without id", ErrInvalidAuthoringModel)
		}
		if seen[moment.ID] {
			return fmt.Errorf("%w: duplicate moment id %q", ErrInvalidAuthoringModel, moment.ID)
		}
		seen[moment.ID] = true
		if len(moment.Options) > MaxOptionsPerMoment {
			return fmt.Errorf("%w: moment %q has too many options (%d > %d)",
				ErrInvalidAuthoringModel, moment.ID, len(moment.Options), MaxOptionsPerMoment)
		}
	}

	// Цели опций: либо другой момент, либо один из канонических выходов.
	for _, moment := range m.Moments {
		for _, opt := range moment.Options {
			if opt.Text == "" || opt.TargetMomentID == "" {
				return fmt.Errorf("%w: moment %q has an option without text or target", ErrInvalidAuthoringModel, moment.ID)
			}
			if !seen[opt.TargetMomentID] && !isExitName(opt.TargetMomentID) {
				return fmt.Errorf("%w: moment %q option targets unknown moment %q",
					ErrInvalidAuthoringModel, moment.ID, opt.TargetMomentID)
			}
		}
	}

	return nil
}
