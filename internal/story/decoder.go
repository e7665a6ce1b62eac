package story

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedDocument возвращается (обернутой) при фатальных ошибках декодирования.
// Единственные фатальные случаи: отсутствие контейнера, отсутствие пассажей,
// неразрешимый стартовый пассаж. Висячие ссылки фатальными НЕ являются и
// попадают в StoryDocument.Warnings.
var ErrMalformedDocument = fmt.Errorf("malformed story document")

var (
	storyDataRe   = regexp.MustCompile(`(?s)<tw-storydata\b([^>]*)>(.*)</tw-storydata>`)
	passageDataRe = regexp.MustCompile(`(?s)<tw-passagedata\b([^>]*)>(.*?)</tw-passagedata>`)
	attrRe        = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"`)

	// [[label|target]] либо [[target]], с опциональным setter-блоком [key=value]
	// сразу после закрывающих скобок. Ключ сеттера - идентификатор: блок вида
	// [BIND ...] после ссылки остается директивой, а не превращается в сеттер.
	linkRe = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|([^\[\]]+))?\]\](?:\[([A-Za-z_]\w*)\s*=\s*([^\[\]]+)\])?`)

	// [BIND key=value] - директива, читаемая диспетчером эффектов.
	bindRe = regexp.MustCompile(`\[BIND\s+([A-Za-z_]\w*)\s*=\s*([^\]\s]+)\s*\]`)
)

// Decode разбирает сырой гипертекстовый документ в StoryDocument.
// Порядок пассажей в результате совпадает с порядком в документе.
func Decode(raw string) (*StoryDocument, error) {
	m := storyDataRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: container element <tw-storydata> not found", ErrMalformedDocument)
	}

	attrs := parseAttrs(m[1])
	doc := &StoryDocument{
		Name:   attrs["name"],
		Format: attrs["format"], // непрозрачное значение, передаем как есть
	}

	pidToName := make(map[string]string)
	for _, pm := range passageDataRe.FindAllStringSubmatch(m[2], -1) {
		pAttrs := parseAttrs(pm[1])
		name := pAttrs["name"]
		if name == "" {
			// Пассаж без имени не адресуем - пропускаем с предупреждением.
			doc.Warnings = append(doc.Warnings, "passage without name attribute skipped")
			continue
		}
		pid, _ := strconv.Atoi(pAttrs["pid"])
		if pid == 0 {
			pid = len(doc.Passages) + 1
		}

		p := parsePassage(pid, name, pAttrs["tags"], html.UnescapeString(pm[2]))
		doc.Passages = append(doc.Passages, p)
		pidToName[pAttrs["pid"]] = name
	}

	if len(doc.Passages) == 0 {
		return nil, fmt.Errorf("%w: document contains no passages", ErrMalformedDocument)
	}
	doc.Reindex()

	// Старт: атрибут startnode контейнера ссылается на pid; при его отсутствии
	// ищем пассаж с буквальным именем Start.
	if startName, ok := pidToName[attrs["startnode"]]; ok && attrs["startnode"] != "" {
		doc.StartPassage = startName
	} else if doc.Passage("Start") != nil {
		doc.StartPassage = "Start"
	} else {
		return nil, fmt.Errorf("%w: start passage cannot be resolved (startnode=%q)", ErrMalformedDocument, attrs["startnode"])
	}

	// Висячие ссылки - предупреждение для авторской поверхности, не ошибка.
	for _, p := range doc.Passages {
		for _, l := range p.Links {
			if doc.Passage(l.Target) == nil {
				doc.Warnings = append(doc.Warnings,
					fmt.Sprintf("dangling link: passage %q links to unknown passage %q", p.Name, l.Target))
			}
		}
	}

	return doc, nil
}

// parsePassage извлекает ссылки и директивы из тела пассажа.
func parsePassage(pid int, name, tags, body string) Passage {
	p := Passage{
		PID:     pid,
		Name:    name,
		RawText: body,
		Tags:    splitTags(tags),
	}

	for _, lm := range linkRe.FindAllStringSubmatch(body, -1) {
		label := strings.TrimSpace(lm[1])
		target := strings.TrimSpace(lm[2])
		if target == "" {
			// Сокращенная форма [[target]]: метка совпадает с целью.
			target = label
		}
		link := Link{Label: label, Target: target}
		if lm[3] != "" {
			link.Setter = &Setter{Key: strings.TrimSpace(lm[3]), Value: strings.TrimSpace(lm[4])}
		}
		p.Links = append(p.Links, link)
	}

	for _, bm := range bindRe.FindAllStringSubmatch(body, -1) {
		p.Directives = append(p.Directives, Directive{Key: bm[1], Value: bm[2]})
	}

	// CleanText: убираем разметку ссылок и директивы, оставляем голый текст.
	clean := linkRe.ReplaceAllString(body, "")
	clean = bindRe.ReplaceAllString(clean, "")
	p.CleanText = strings.TrimSpace(clean)

	return p
}

func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = html.UnescapeString(m[2])
	}
	return attrs
}

func splitTags(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
