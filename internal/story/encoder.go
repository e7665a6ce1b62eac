package story

import (
	"fmt"
	"html"
	"strings"
)

// Канонические выходы. Каждая скомпилированная история получает полный
// фиксированный набор терминальной поверхности независимо от авторского
// содержимого; порядок является частью контракта вывода.
var ExitLabels = []string{
	"SUCCESS", "FAILURE", "CHAOS", "ORDER", "SHADOW", "LIGHT", "MERCY", "JUSTICE",
}

const (
	startPassageName    = "Start"
	epiloguePassageName = "Epilogue"
	exitNamePrefix      = "exit_"

	// Ключ директивы, по которой диспетчер эффектов завершает внешний квест
	// при достижении терминального пассажа.
	DirectiveQuestComplete = "quest_complete"
)

// ExitPassageName возвращает имя выходного пассажа для канонической метки.
func ExitPassageName(label string) string { return exitNamePrefix + label }

func isExitName(name string) bool {
	label, ok := strings.CutPrefix(name, exitNamePrefix)
	if !ok {
		return false
	}
	for _, l := range ExitLabels {
		if l == label {
			return true
		}
	}
	return false
}

// CompileResult - два артефакта компиляции одной модели авторинга.
type CompileResult struct {
	// MarkupText - построчная сериализация (один блок на пассаж), удобная
	// для ручного редактирования и standalone-проигрывания.
	MarkupText string
	// Document - минимальный контейнерный документ в формате, ожидаемом
	// декодером, так что Decode(Document) восстанавливает эквивалентный граф.
	Document string
}

// compiledPassage - промежуточное представление перед рендером артефактов.
type compiledPassage struct {
	name string
	tags string
	text string // тело вместе с разметкой ссылок
}

// Compile компилирует модель авторинга в синтетический документ.
//
// Структурный контракт: Start (pid 1) -> моменты в порядке ввода -> 8
// канонических выходов в порядке ExitLabels -> Epilogue (последний pid).
// Каждый выход ссылается на Epilogue, Start ссылается на первый момент.
// Маркер [BIND quest_complete=...] добавляется в эпилог энкодером; авторы
// его никогда не пишут руками.
func Compile(m AuthoringModel) (*CompileResult, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	passages := make([]compiledPassage, 0, len(m.Moments)+len(ExitLabels)+2)

	prologue := m.Prologue
	if prologue == "" {
		prologue = m.Title
	}
	passages = append(passages, compiledPassage{
		name: startPassageName,
		text: prologue + "\n\n" + fmt.Sprintf("[[Begin|%s]]", m.Moments[0].ID),
	})

	for _, moment := range m.Moments {
		var b strings.Builder
		if moment.Title != "" {
			b.WriteString(moment.Title)
			b.WriteString("\n\n")
		}
		b.WriteString(moment.Text)
		for _, opt := range moment.Options {
			b.WriteString("\n")
			b.WriteString(fmt.Sprintf("[[%s|%s]]", opt.Text, opt.TargetMomentID))
			if opt.OutcomeValue != "" && m.OutcomeVariableName != "" {
				b.WriteString(fmt.Sprintf("[%s=%s]", m.OutcomeVariableName, opt.OutcomeValue))
			}
		}
		passages = append(passages, compiledPassage{name: moment.ID, tags: "moment", text: b.String()})
	}

	for _, label := range ExitLabels {
		passages = append(passages, compiledPassage{
			name: ExitPassageName(label),
			tags: "exit",
			text: fmt.Sprintf("Outcome: %s.\n[[Continue|%s]]", label, epiloguePassageName),
		})
	}

	epilogue := m.Epilogue
	if epilogue == "" {
		epilogue = "The End."
	}
	if m.ExternalQuestID != "" {
		epilogue += fmt.Sprintf("\n\n[BIND %s=%s]", DirectiveQuestComplete, m.ExternalQuestID)
	}
	passages = append(passages, compiledPassage{name: epiloguePassageName, text: epilogue})

	return &CompileResult{
		MarkupText: renderMarkup(passages),
		Document:   renderDocument(m.Title, passages),
	}, nil
}

// renderMarkup выдает построчную форму: заголовочная строка с именем пассажа,
// затем тело (ссылки уже встроены в текст по одной на строку).
func renderMarkup(passages []compiledPassage) string {
	var b strings.Builder
	for _, p := range passages {
		b.WriteString(":: ")
		b.WriteString(p.name)
		if p.tags != "" {
			b.WriteString(" [" + p.tags + "]")
		}
		b.WriteString("\n")
		b.WriteString(p.text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// renderDocument выдает контейнерную форму. Идентификаторы пассажей
// назначаются по позиции (Start = 1, Epilogue последний) - стабильность этой
// нумерации для одинакового входа входит в контракт вывода.
func renderDocument(title string, passages []compiledPassage) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(`<tw-storydata name="%s" startnode="1" format="quest-1">`, html.EscapeString(title)))
	b.WriteString("\n")
	for i, p := range passages {
		b.WriteString(fmt.Sprintf(`<tw-passagedata pid="%d" name="%s" tags="%s">%s</tw-passagedata>`,
			i+1, html.EscapeString(p.name), html.EscapeString(p.tags), html.EscapeString(p.text)))
		b.WriteString("\n")
	}
	b.WriteString("</tw-storydata>")
	return b.String()
}
