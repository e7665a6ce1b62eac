package story

// Пакет story содержит скомпилированное представление интерактивной истории:
// граф пассажей (StoryDocument), декодер исходного документа и энкодер
// структурированной модели авторинга. Граф хранится как арена (срез пассажей)
// с индексом по имени, без взаимных указателей между пассажами, поэтому циклы
// в повествовании не требуют специальной обработки.

// Setter описывает мутацию переменной, привязанную к ссылке.
// Применяется к переменным забега в момент перехода по ссылке.
type Setter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Link - именованное направленное ребро между пассажами.
type Link struct {
	Label  string  `json:"label"`
	Target string  `json:"target"` // имя целевого пассажа
	Setter *Setter `json:"setter,omitempty"`
}

// Directive - текстовая директива вида [BIND key=value], встроенная в пассаж.
// Сохраняется в RawText, но исключается из CleanText.
type Directive struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Passage - один узел повествования.
type Passage struct {
	PID        int         `json:"pid"`  // позиционный идентификатор из документа
	Name       string      `json:"name"` // адресуемый ключ для ссылок и биндингов
	RawText    string      `json:"raw_text"`
	CleanText  string      `json:"clean_text"` // текст без разметки, для отображения
	Tags       []string    `json:"tags,omitempty"`
	Links      []Link      `json:"links,omitempty"`
	Directives []Directive `json:"directives,omitempty"`
}

// Terminal сообщает, является ли пассаж терминальным (нет исходящих ссылок).
func (p *Passage) Terminal() bool {
	return len(p.Links) == 0
}

// LinkTo возвращает первую объявленную ссылку на target или nil.
// При дублирующихся целях авторитетна первая по порядку объявления.
func (p *Passage) LinkTo(target string) *Link {
	for i := range p.Links {
		if p.Links[i].Target == target {
			return &p.Links[i]
		}
	}
	return nil
}

// Directive возвращает значение директивы по ключу.
func (p *Passage) Directive(key string) (string, bool) {
	for _, d := range p.Directives {
		if d.Key == key {
			return d.Value, true
		}
	}
	return "", false
}

// StoryDocument - неизменяемый скомпилированный граф пассажей.
// Порядок Passages совпадает с порядком в исходном документе.
type StoryDocument struct {
	Name         string    `json:"name"`
	StartPassage string    `json:"start_passage"` // имя стартового пассажа
	Format       string    `json:"format,omitempty"`
	Passages     []Passage `json:"passages"`
	Warnings     []string  `json:"warnings,omitempty"` // нефатальные проблемы декодирования (висячие ссылки и т.п.)

	index map[string]int // имя пассажа -> позиция в Passages
}

// Reindex перестраивает индекс имен. Вызывается декодером и после
// десериализации документа из хранилища.
func (d *StoryDocument) Reindex() {
	d.index = make(map[string]int, len(d.Passages))
	for i, p := range d.Passages {
		if _, exists := d.index[p.Name]; !exists {
			d.index[p.Name] = i
		}
	}
}

// Passage возвращает пассаж по имени или nil.
func (d *StoryDocument) Passage(name string) *Passage {
	if d.index == nil {
		d.Reindex()
	}
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	return &d.Passages[i]
}

// Start возвращает стартовый пассаж документа.
func (d *StoryDocument) Start() *Passage {
	return d.Passage(d.StartPassage)
}
