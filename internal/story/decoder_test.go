package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<tw-storydata name="Проба пера" startnode="1" format="quest-1">
<tw-passagedata pid="1" name="Start" tags="">Вы на распутье.
[[Налево|Forest]]
[[Направо|Village]][mood=brave]</tw-passagedata>
<tw-passagedata pid="2" name="Forest" tags="dark outdoors">Темный лес.
[[Вернуться|Start]]
[[Идти дальше|NoSuchPassage]]</tw-passagedata>
<tw-passagedata pid="3" name="Village" tags="">Деревня спит. [BIND quest_complete=q-42]</tw-passagedata>
</tw-storydata>`

func TestDecode_BasicDocument(t *testing.T) {
	doc, err := Decode(sampleDocument)
	require.NoError(t, err)

	assert.Equal(t, "Проба пера", doc.Name)
	assert.Equal(t, "quest-1", doc.Format)
	assert.Equal(t, "Start", doc.StartPassage)
	require.Len(t, doc.Passages, 3)

	// Порядок пассажей совпадает с порядком в документе.
	assert.Equal(t, "Start", doc.Passages[0].Name)
	assert.Equal(t, "Forest", doc.Passages[1].Name)
	assert.Equal(t, "Village", doc.Passages[2].Name)

	start := doc.Start()
	require.NotNil(t, start)
	require.Len(t, start.Links, 2)
	assert.Equal(t, "Налево", start.Links[0].Label)
	assert.Equal(t, "Forest", start.Links[0].Target)
	assert.Nil(t, start.Links[0].Setter)

	// Setter привязан ко второй ссылке.
	require.NotNil(t, start.Links[1].Setter)
	assert.Equal(t, "mood", start.Links[1].Setter.Key)
	assert.Equal(t, "brave", start.Links[1].Setter.Value)

	forest := doc.Passage("Forest")
	require.NotNil(t, forest)
	assert.Equal(t, []string{"dark", "outdoors"}, forest.Tags)
	assert.False(t, forest.Terminal())

	// Терминальный пассаж: нет исходящих ссылок.
	village := doc.Passage("Village")
	require.NotNil(t, village)
	assert.True(t, village.Terminal())
}

func TestDecode_DanglingLinkIsWarningNotError(t *testing.T) {
	doc, err := Decode(sampleDocument)
	require.NoError(t, err)

	require.NotEmpty(t, doc.Warnings)
	assert.Contains(t, doc.Warnings,
		`dangling link: passage "Forest" links to unknown passage "NoSuchPassage"`)

	// Сама ссылка при этом сохранена в графе.
	forest := doc.Passage("Forest")
	require.NotNil(t, forest.LinkTo("NoSuchPassage"))
	assert.Nil(t, doc.Passage("NoSuchPassage"))
}

func TestDecode_BindDirective(t *testing.T) {
	doc, err := Decode(sampleDocument)
	require.NoError(t, err)

	village := doc.Passage("Village")
	require.Len(t, village.Directives, 1)
	assert.Equal(t, "quest_complete", village.Directives[0].Key)
	assert.Equal(t, "q-42", village.Directives[0].Value)

	val, ok := village.Directive("quest_complete")
	assert.True(t, ok)
	assert.Equal(t, "q-42", val)

	// Директива не попадает в отображаемый текст.
	assert.Equal(t, "Деревня спит.", village.CleanText)
}

func TestDecode_CleanTextStripsLinks(t *testing.T) {
	doc, err := Decode(sampleDocument)
	require.NoError(t, err)

	start := doc.Start()
	assert.Equal(t, "Вы на распутье.", start.CleanText)
	assert.Contains(t, start.RawText, "[[Налево|Forest]]")
}

func TestDecode_ShorthandLink(t *testing.T) {
	raw := `<tw-storydata name="s" startnode="1" format="f">
<tw-passagedata pid="1" name="Start" tags="">[[Forest]]</tw-passagedata>
<tw-passagedata pid="2" name="Forest" tags="">end</tw-passagedata>
</tw-storydata>`

	doc, err := Decode(raw)
	require.NoError(t, err)

	start := doc.Start()
	require.Len(t, start.Links, 1)
	// Сокращенная форма: метка совпадает с целью.
	assert.Equal(t, "Forest", start.Links[0].Label)
	assert.Equal(t, "Forest", start.Links[0].Target)
}

func TestDecode_StartFallbackByName(t *testing.T) {
	// startnode отсутствует, но есть пассаж с именем Start.
	raw := `<tw-storydata name="s" format="f">
<tw-passagedata pid="7" name="Elsewhere" tags="">x</tw-passagedata>
<tw-passagedata pid="8" name="Start" tags="">y</tw-passagedata>
</tw-storydata>`

	doc, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "Start", doc.StartPassage)
}

func TestDecode_HTMLEntitiesUnescaped(t *testing.T) {
	raw := `<tw-storydata name="s" startnode="1" format="f">
<tw-passagedata pid="1" name="Start" tags="">Кот &amp; пес &lt;вместе&gt;</tw-passagedata>
</tw-storydata>`

	doc, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "Кот & пес <вместе>", doc.Start().CleanText)
}

func TestDecode_MalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"нет контейнера", `просто текст без разметки`},
		{"нет пассажей", `<tw-storydata name="s" startnode="1" format="f"></tw-storydata>`},
		{
			"неразрешимый старт",
			`<tw-storydata name="s" startnode="99" format="f">
<tw-passagedata pid="1" name="Intro" tags="">x</tw-passagedata>
</tw-storydata>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestDecode_BindDirectiveAfterLinkIsNotSetter(t *testing.T) {
	// Директива, написанная автором вплотную к ссылке, не должна разбираться
	// как setter-блок этой ссылки.
	raw := `<tw-storydata name="s" startnode="1" format="f">
<tw-passagedata pid="1" name="Start" tags="">[[Дальше|End]][BIND quest_complete=q-7]</tw-passagedata>
<tw-passagedata pid="2" name="End" tags="">конец</tw-passagedata>
</tw-storydata>`

	doc, err := Decode(raw)
	require.NoError(t, err)

	start := doc.Start()
	require.Len(t, start.Links, 1)
	assert.Nil(t, start.Links[0].Setter)

	val, ok := start.Directive("quest_complete")
	require.True(t, ok)
	assert.Equal(t, "q-7", val)
	assert.Empty(t, start.CleanText)
}

func TestDecode_DuplicatePassageNamesFirstWins(t *testing.T) {
	raw := `<tw-storydata name="s" startnode="1" format="f">
<tw-passagedata pid="1" name="Start" tags="">первый</tw-passagedata>
<tw-passagedata pid="2" name="Dup" tags="">оригинал</tw-passagedata>
<tw-passagedata pid="3" name="Dup" tags="">дубликат</tw-passagedata>
</tw-storydata>`

	doc, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, doc.Passages, 3)
	assert.Equal(t, "оригинал", doc.Passage("Dup").CleanText)
}
