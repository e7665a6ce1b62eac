package service

import (
	"context"
	"fmt"

	"quest-server/internal/messaging"
	"quest-server/internal/models"
	"quest-server/internal/repository"
	"quest-server/internal/story"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NavigationService - машина состояний забега. Хранимый Run.CurrentPassage
// серверно-авторитетен: допустимые цели перевычисляются из документа на каждом
// вызове, целям из клиентского ввода не доверяем.
//
// Частота срабатывания биндингов: один раз на КАЖДЫЙ переход в пассаж области
// действия (повторный вход по другому ребру срабатывает снова). Семантика
// "только первый визит" сознательно не реализована.
type NavigationService interface {
	// Start создает (или возвращает существующий) забег и отдает текущий вид.
	Start(ctx context.Context, storyID, ownerID uuid.UUID, questID *uuid.UUID) (*models.RunView, error)
	// View возвращает текущее состояние забега без мутаций.
	View(ctx context.Context, storyID, ownerID uuid.UUID) (*models.RunView, error)
	// Advance выполняет один переход (шаги 1-6 игрового цикла).
	Advance(ctx context.Context, storyID, ownerID uuid.UUID, target string) (*models.AdvanceResult, error)
}

type navigationServiceImpl struct {
	stories    StoryService
	runs       RunManager
	bindings   repository.BindingRepository
	dispatcher EffectDispatcher
	publisher  messaging.RunUpdatePublisher // может быть nil
	logger     *zap.Logger
}

func NewNavigationService(
	stories StoryService,
	runs RunManager,
	bindings repository.BindingRepository,
	dispatcher EffectDispatcher,
	publisher messaging.RunUpdatePublisher,
	logger *zap.Logger,
) NavigationService {
	return &navigationServiceImpl{
		stories:    stories,
		runs:       runs,
		bindings:   bindings,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger.Named("NavigationService"),
	}
}

func (s *navigationServiceImpl) Start(ctx context.Context, storyID, ownerID uuid.UUID, questID *uuid.UUID) (*models.RunView, error) {
	doc, err := s.stories.GetDocument(ctx, storyID)
	if err != nil {
		return nil, err
	}

	run, _, err := s.runs.GetOrCreate(ctx, doc, storyID, ownerID, questID)
	if err != nil {
		return nil, err
	}
	return buildRunView(doc, run)
}

func (s *navigationServiceImpl) View(ctx context.Context, storyID, ownerID uuid.UUID) (*models.RunView, error) {
	doc, err := s.stories.GetDocument(ctx, storyID)
	if err != nil {
		return nil, err
	}
	run, err := s.runs.Get(ctx, storyID, ownerID)
	if err != nil {
		return nil, err
	}
	return buildRunView(doc, run)
}

// Advance выполняет один переход забега.
//
// Порядок шагов строго последовательный: переменные ссылки применяются до
// исполнения биндингов, завершение вычисляется после обновления журнала
// посещений, а переход присваивается compare-and-set'ом ДО запуска побочных
// эффектов - проигравший CAS конкурент никогда не диспатчит.
func (s *navigationServiceImpl) Advance(ctx context.Context, storyID, ownerID uuid.UUID, target string) (*models.AdvanceResult, error) {
	log := s.logger.With(
		zap.String("storyID", storyID.String()),
		zap.String("ownerID", ownerID.String()),
		zap.String("target", target))

	doc, err := s.stories.GetDocument(ctx, storyID)
	if err != nil {
		return nil, err
	}
	run, err := s.runs.Get(ctx, storyID, ownerID)
	if err != nil {
		return nil, err
	}

	// Повторная отправка уже завершенного забега - определенный no-op
	// (AlreadyCompletedNoop): биндинги не перезапускаются, журнал посещений
	// не растет. Гарантия нужна, потому что эффекты необратимы.
	if run.Completed() {
		log.Debug("Advance on completed run is a no-op")
		return completedNoopResult(run), nil
	}

	// Шаг 1: допустимы только ребра, объявленные текущим пассажем.
	current := doc.Passage(run.CurrentPassage)
	if current == nil {
		log.Error("Run points at unknown passage", zap.String("current", run.CurrentPassage))
		return nil, fmt.Errorf("%w: run is positioned at unknown passage %q", models.ErrInternalServer, run.CurrentPassage)
	}
	link := current.LinkTo(target)
	dest := doc.Passage(target)
	if link == nil || dest == nil {
		// Висячая цель отклоняется тем же путем, что и произвольный прыжок.
		return nil, fmt.Errorf("%w: %q -> %q", models.ErrInvalidTransition, run.CurrentPassage, target)
	}

	// Шаг 2: сеттер выбранной ссылки, last-write-wins по ключу.
	newVars := make(map[string]string, len(run.Variables)+1)
	for k, v := range run.Variables {
		newVars[k] = v
	}
	if link.Setter != nil {
		newVars[link.Setter.Key] = link.Setter.Value
	}

	// Шаг 3: журнал посещений пополняется безусловно - повторные визиты
	// легальны, это лог, а не множество.
	newVisited := append(append([]string{}, run.Visited...), target)

	// Шаг 5 (вычисление): терминальный пассаж финализирует забег.
	newStatus := models.RunStatusActive
	if dest.Terminal() {
		newStatus = models.RunStatusCompleted
	}

	// Присваиваем переход до каких-либо побочных эффектов.
	claimed, err := s.runs.ClaimAdvance(ctx, run, target, newVisited, newVars, newStatus)
	if err != nil {
		return nil, err
	}
	if !claimed {
		latest, readErr := s.runs.Get(ctx, storyID, ownerID)
		if readErr == nil && latest.Completed() {
			// Второй писатель двойного сабмита наблюдает completed.
			return completedNoopResult(latest), nil
		}
		return nil, fmt.Errorf("%w: %q -> %q", models.ErrRunConflict, run.CurrentPassage, target)
	}

	run.CurrentPassage = target
	run.Visited = newVisited
	run.Variables = newVars
	run.Status = newStatus

	// Шаг 4: биндинги пассажа-назначения, в порядке создания, best-effort.
	result := &models.AdvanceResult{
		Emitted:        []string{},
		Redirect:       target,
		QuestCompleted: newStatus == models.RunStatusCompleted,
		Completed:      newStatus == models.RunStatusCompleted,
	}

	passageBindings, err := s.bindings.ListByScope(ctx, storyID, target)
	if err != nil {
		// Недоступность реестра не откатывает уже присвоенный переход.
		log.Error("Failed to load bindings for destination", zap.Error(err))
		result.EffectFailures = append(result.EffectFailures, "bindings could not be loaded")
		passageBindings = nil
	}

	effectVars := make(map[string]string)
	for _, b := range passageBindings {
		res := s.dispatcher.Apply(ctx, b, run)
		if !res.OK {
			result.EffectFailures = append(result.EffectFailures, res.Error)
			continue
		}
		if res.EmittedTitle != "" {
			result.Emitted = append(result.Emitted, res.EmittedTitle)
			// Id созданного контента доступен последующим пассажам через
			// переменные забега.
			effectVars["emitted:"+b.ID.String()] = res.ContentID.String()
		}
	}

	// Маркер [BIND quest_complete=...] в тексте терминального пассажа -
	// второй, текстовый механизм биндингов. Исполняется ровно один раз:
	// сюда попадает только писатель, выигравший CAS active->completed.
	if dest.Terminal() {
		runsCompletedTotal.Inc()
		if externalID, ok := dest.Directive(story.DirectiveQuestComplete); ok {
			if err := s.dispatcher.CompleteQuest(ctx, run, externalID); err != nil {
				result.EffectFailures = append(result.EffectFailures, "external quest completion failed")
			}
		}
	}

	if err := s.runs.AppendVariables(ctx, run, effectVars); err != nil {
		log.Error("Failed to persist effect variables", zap.Error(err))
		result.EffectFailures = append(result.EffectFailures, "effect variables were not persisted")
	}

	s.publishUpdate(ctx, run, result)

	log.Info("Run advanced",
		zap.String("to", target),
		zap.Bool("completed", result.Completed),
		zap.Int("bindingsFired", len(passageBindings)),
		zap.Int("effectFailures", len(result.EffectFailures)))
	return result, nil
}

// publishUpdate отправляет обновление socket-слою. Best-effort: отказ брокера
// не влияет на результат навигации.
func (s *navigationServiceImpl) publishUpdate(ctx context.Context, run *models.Run, result *models.AdvanceResult) {
	if s.publisher == nil {
		return
	}
	update := models.RunUpdate{
		RunID:     run.ID,
		StoryID:   run.StoryID,
		OwnerID:   run.OwnerID,
		Passage:   run.CurrentPassage,
		Emitted:   result.Emitted,
		Completed: result.Completed,
	}
	if err := s.publisher.PublishRunUpdate(ctx, update); err != nil {
		s.logger.Warn("Failed to publish run update",
			zap.String("runID", run.ID.String()), zap.Error(err))
	}
}

func completedNoopResult(run *models.Run) *models.AdvanceResult {
	return &models.AdvanceResult{
		Emitted:        []string{},
		QuestCompleted: true,
		Completed:      true,
		Redirect:       run.CurrentPassage,
	}
}

// buildRunView собирает представление текущего пассажа для UI.
func buildRunView(doc *story.StoryDocument, run *models.Run) (*models.RunView, error) {
	p := doc.Passage(run.CurrentPassage)
	if p == nil {
		return nil, fmt.Errorf("%w: run is positioned at unknown passage %q", models.ErrInternalServer, run.CurrentPassage)
	}

	choices := make([]models.ChoiceView, 0, len(p.Links))
	for _, l := range p.Links {
		// Висячие цели не предлагаем игроку вовсе.
		if doc.Passage(l.Target) == nil {
			continue
		}
		choices = append(choices, models.ChoiceView{Label: l.Label, Target: l.Target})
	}

	return &models.RunView{
		RunID:     run.ID,
		StoryID:   run.StoryID,
		Passage:   p.Name,
		Text:      p.CleanText,
		Tags:      p.Tags,
		Choices:   choices,
		Variables: run.Variables,
		Completed: run.Completed(),
	}, nil
}
