package service

import (
	"context"

	"quest-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Внешние коллабораторы ядра. Реализации живут в окружающем приложении
// (назначение идентичности, создание контента, завершение квестов); ядро
// видит только эти интерфейсы.
type (
	// IdentityAssigner назначает игроку нацию или архетип.
	IdentityAssigner interface {
		AssignNation(ctx context.Context, ownerID, nationID uuid.UUID) error
		AssignArchetype(ctx context.Context, ownerID, playbookID uuid.UUID) error
	}

	// ContentEmitter создает контент (квест, бар) и возвращает его id.
	ContentEmitter interface {
		EmitQuest(ctx context.Context, ownerID uuid.UUID, title, description string) (uuid.UUID, error)
		EmitBar(ctx context.Context, ownerID uuid.UUID, title, description string) (uuid.UUID, error)
	}

	// QuestCompleter завершает внешний квест по его идентификатору.
	QuestCompleter interface {
		CompleteQuest(ctx context.Context, ownerID uuid.UUID, externalID string) error
	}
)

// EffectResult - итог применения одного биндинга. Отказы не выбрасываются за
// эту границу: навигация продолжается, отказ попадает в результат и метрики.
type EffectResult struct {
	Binding      *models.Binding
	OK           bool
	Error        string    // человекочитаемое описание отказа
	EmittedTitle string    // для EMIT_*: заголовок созданного контента
	ContentID    uuid.UUID // для EMIT_*: id созданного контента
}

// EffectDispatcher транслирует сработавший биндинг в вызовы коллабораторов.
type EffectDispatcher interface {
	Apply(ctx context.Context, b *models.Binding, run *models.Run) EffectResult
	CompleteQuest(ctx context.Context, run *models.Run, externalID string) error
}

type effectDispatcherImpl struct {
	identity  IdentityAssigner
	content   ContentEmitter
	completer QuestCompleter
	logger    *zap.Logger
}

func NewEffectDispatcher(identity IdentityAssigner, content ContentEmitter, completer QuestCompleter, logger *zap.Logger) EffectDispatcher {
	return &effectDispatcherImpl{
		identity:  identity,
		content:   content,
		completer: completer,
		logger:    logger.Named("EffectDispatcher"),
	}
}

func (d *effectDispatcherImpl) Apply(ctx context.Context, b *models.Binding, run *models.Run) EffectResult {
	res := EffectResult{Binding: b}
	log := d.logger.With(
		zap.String("bindingID", b.ID.String()),
		zap.String("action", string(b.Action)),
		zap.String("runID", run.ID.String()))

	// Вариант payload валидируется при создании биндинга, но хранимая jsonb
	// могла быть записана до смены словаря. Рассинхрон - отказ, не паника.
	switch b.Action {
	case models.ActionSetNation:
		p := b.Payload.SetNation
		if p == nil {
			return d.fail(log, res, "stored payload does not match action", models.ErrInvalidPayload)
		}
		if err := d.identity.AssignNation(ctx, run.OwnerID, p.NationID); err != nil {
			return d.fail(log, res, "nation assignment failed", err)
		}
		res.OK = true

	case models.ActionSetArchetype:
		p := b.Payload.SetArchetype
		if p == nil {
			return d.fail(log, res, "stored payload does not match action", models.ErrInvalidPayload)
		}
		if err := d.identity.AssignArchetype(ctx, run.OwnerID, p.PlaybookID); err != nil {
			return d.fail(log, res, "archetype assignment failed", err)
		}
		res.OK = true

	case models.ActionEmitQuest:
		p := b.Payload.EmitQuest
		if p == nil {
			return d.fail(log, res, "stored payload does not match action", models.ErrInvalidPayload)
		}
		id, err := d.content.EmitQuest(ctx, run.OwnerID, p.Title, p.Description)
		if err != nil {
			return d.fail(log, res, "quest emission failed", err)
		}
		res.OK = true
		res.EmittedTitle = p.Title
		res.ContentID = id

	case models.ActionEmitBar:
		p := b.Payload.EmitBar
		if p == nil {
			return d.fail(log, res, "stored payload does not match action", models.ErrInvalidPayload)
		}
		id, err := d.content.EmitBar(ctx, run.OwnerID, p.Title, p.Description)
		if err != nil {
			return d.fail(log, res, "bar emission failed", err)
		}
		res.OK = true
		res.EmittedTitle = p.Title
		res.ContentID = id

	default:
		// Неизвестный тип отклоняется при создании биндинга; сюда попасть
		// можно только при рассинхронизации словаря со старыми записями БД.
		return d.fail(log, res, "unknown action type in stored binding", models.ErrUnknownActionType)
	}

	bindingsFiredTotal.WithLabelValues(string(b.Action), "ok").Inc()
	log.Debug("Binding applied")
	return res
}

func (d *effectDispatcherImpl) fail(log *zap.Logger, res EffectResult, msg string, err error) EffectResult {
	// Политика: прогресс повествования никогда не блокируется отказом
	// downstream-эффекта. Логируем, метрируем, отдаем в результат.
	log.Warn("Binding effect failed", zap.String("reason", msg), zap.Error(err))
	bindingsFiredTotal.WithLabelValues(string(res.Binding.Action), "error").Inc()
	res.OK = false
	res.Error = msg + ": " + err.Error()
	return res
}

func (d *effectDispatcherImpl) CompleteQuest(ctx context.Context, run *models.Run, externalID string) error {
	err := d.completer.CompleteQuest(ctx, run.OwnerID, externalID)
	if err != nil {
		questCompletionsTotal.WithLabelValues("error").Inc()
		d.logger.Warn("External quest completion failed",
			zap.String("runID", run.ID.String()),
			zap.String("externalID", externalID),
			zap.Error(err))
		return err
	}
	questCompletionsTotal.WithLabelValues("ok").Inc()
	return nil
}
