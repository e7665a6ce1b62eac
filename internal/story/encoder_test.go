package story

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalModel() AuthoringModel {
	return AuthoringModel{
		Title: "Испытание",
		Moments: []AuthoringMoment{
			{
				ID:    "m1",
				Title: "T",
				Text:  "Момент первый.",
				Options: []AuthoringOption{
					{Text: "Go", TargetMomentID: "exit_SUCCESS"},
				},
			},
		},
	}
}

func TestCompile_StructuralContract(t *testing.T) {
	result, err := Compile(minimalModel())
	require.NoError(t, err)

	doc, err := Decode(result.Document)
	require.NoError(t, err)

	// Ровно 11 пассажей: Start, m1, 8 выходов, Epilogue - в этом порядке.
	require.Len(t, doc.Passages, 11)
	assert.Equal(t, "Start", doc.Passages[0].Name)
	assert.Equal(t, "m1", doc.Passages[1].Name)
	for i, label := range ExitLabels {
		assert.Equal(t, "exit_"+label, doc.Passages[2+i].Name)
	}
	assert.Equal(t, "Epilogue", doc.Passages[10].Name)

	// Start (pid 1) ссылается на первый момент.
	assert.Equal(t, 1, doc.Passages[0].PID)
	assert.Equal(t, "Start", doc.StartPassage)
	require.NotNil(t, doc.Start().LinkTo("m1"))

	// Каждый выход ссылается на Epilogue; Epilogue терминален.
	for _, label := range ExitLabels {
		exit := doc.Passage(ExitPassageName(label))
		require.NotNil(t, exit, "exit passage %s must exist", label)
		require.NotNil(t, exit.LinkTo("Epilogue"), "exit %s must link to Epilogue", label)
	}
	assert.True(t, doc.Passage("Epilogue").Terminal())
}

func TestCompile_RoundTrip(t *testing.T) {
	m := minimalModel()
	m.Prologue = "Жили-были."
	m.Epilogue = "Конец."

	result, err := Compile(m)
	require.NoError(t, err)

	doc, err := Decode(result.Document)
	require.NoError(t, err)

	// Декодированный граф эквивалентен модели: текст момента и его опция на месте.
	m1 := doc.Passage("m1")
	require.NotNil(t, m1)
	assert.Contains(t, m1.CleanText, "Момент первый.")
	require.Len(t, m1.Links, 1)
	assert.Equal(t, "Go", m1.Links[0].Label)
	assert.Equal(t, "exit_SUCCESS", m1.Links[0].Target)
	assert.Contains(t, doc.Start().CleanText, "Жили-были.")
	assert.Contains(t, doc.Passage("Epilogue").CleanText, "Конец.")
}

func TestCompile_OutcomeSetters(t *testing.T) {
	m := AuthoringModel{
		Title:               "С переменными",
		OutcomeVariableName: "alignment",
		Moments: []AuthoringMoment{
			{
				ID:   "m1",
				Text: "Выбор.",
				Options: []AuthoringOption{
					{Text: "Добро", TargetMomentID: "exit_LIGHT", OutcomeValue: "light"},
					{Text: "Зло", TargetMomentID: "exit_SHADOW"},
				},
			},
		},
	}

	result, err := Compile(m)
	require.NoError(t, err)
	doc, err := Decode(result.Document)
	require.NoError(t, err)

	m1 := doc.Passage("m1")
	require.Len(t, m1.Links, 2)

	// Опция с OutcomeValue получает setter, без - нет.
	require.NotNil(t, m1.Links[0].Setter)
	assert.Equal(t, "alignment", m1.Links[0].Setter.Key)
	assert.Equal(t, "light", m1.Links[0].Setter.Value)
	assert.Nil(t, m1.Links[1].Setter)
}

func TestCompile_QuestCompleteMarkerInjection(t *testing.T) {
	m := minimalModel()
	m.ExternalQuestID = "quest-777"

	result, err := Compile(m)
	require.NoError(t, err)
	doc, err := Decode(result.Document)
	require.NoError(t, err)

	// Маркер добавлен энкодером в эпилог.
	val, ok := doc.Passage("Epilogue").Directive(DirectiveQuestComplete)
	require.True(t, ok)
	assert.Equal(t, "quest-777", val)

	// Без ExternalQuestID маркера нет.
	result2, err := Compile(minimalModel())
	require.NoError(t, err)
	doc2, err := Decode(result2.Document)
	require.NoError(t, err)
	_, ok = doc2.Passage("Epilogue").Directive(DirectiveQuestComplete)
	assert.False(t, ok)
}

func TestCompile_MarkupText(t *testing.T) {
	result, err := Compile(minimalModel())
	require.NoError(t, err)

	// Построчная форма: один блок ":: Имя" на пассаж.
	assert.True(t, strings.HasPrefix(result.MarkupText, ":: Start\n"))
	assert.Contains(t, result.MarkupText, ":: m1 [moment]\n")
	assert.Contains(t, result.MarkupText, ":: exit_SUCCESS [exit]\n")
	assert.Contains(t, result.MarkupText, ":: Epilogue\n")
	assert.Equal(t, 11, strings.Count(result.MarkupText, ":: "))
}

func TestCompile_Deterministic(t *testing.T) {
	m := minimalModel()
	first, err := Compile(m)
	require.NoError(t, err)
	second, err := Compile(m)
	require.NoError(t, err)

	// Одинаковый вход - байтово одинаковые артефакты.
	assert.Equal(t, first.Document, second.Document)
	assert.Equal(t, first.MarkupText, second.MarkupText)
}

func TestValidate_Limits(t *testing.T) {
	t.Run("слишком много моментов", func(t *testing.T) {
		m := AuthoringModel{Title: "t"}
		for i := 0; i < MaxMoments+1; i++ {
			m.Moments = append(m.Moments, AuthoringMoment{ID: string(rune('a' + i)), Text: "x"})
		}
		_, err := Compile(m)
		assert.ErrorIs(t, err, ErrInvalidAuthoringModel)
	})

	t.Run("слишком много опций", func(t *testing.T) {
		moment := AuthoringMoment{ID: "m1", Text: "x"}
		for i := 0; i < MaxOptionsPerMoment+1; i++ {
			moment.Options = append(moment.Options, AuthoringOption{Text: "o", TargetMomentID: "exit_SUCCESS"})
		}
		_, err := Compile(AuthoringModel{Title: "t", Moments: []AuthoringMoment{moment}})
		assert.ErrorIs(t, err, ErrInvalidAuthoringModel)
	})

	t.Run("дубликат id момента", func(t *testing.T) {
		_, err := Compile(AuthoringModel{Title: "t", Moments: []AuthoringMoment{
			{ID: "m1", Text: "x"},
			{ID: "m1", Text: "y"},
		}})
		assert.ErrorIs(t, err, ErrInvalidAuthoringModel)
	})

	t.Run("опция указывает на неизвестный момент", func(t *testing.T) {
		_, err := Compile(AuthoringModel{Title: "t", Moments: []AuthoringMoment{
			{ID: "m1", Text: "x", Options: []AuthoringOption{{Text: "o", TargetMomentID: "ghost"}}},
		}})
		assert.ErrorIs(t, err, ErrInvalidAuthoringModel)
	})

	t.Run("exit как цель опции валиден", func(t *testing.T) {
		_, err := Compile(minimalModel())
		assert.NoError(t, err)
	})
}
