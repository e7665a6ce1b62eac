package repository

import (
	"context"

	"quest-server/internal/models"
	"quest-server/internal/story"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX - абстракция над пулом/транзакцией pgx для репозиториев.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StoryRepository хранит импортированные истории вместе со скомпилированным
// снимком документа.
type StoryRepository interface {
	Create(ctx context.Context, s *models.Story) error
	Update(ctx context.Context, s *models.Story) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	List(ctx context.Context, limit int) ([]models.StorySummary, error)
}

// BindingRepository хранит биндинги историй. ListByScope возвращает биндинги
// в порядке создания - этот порядок определяет порядок исполнения.
type BindingRepository interface {
	Create(ctx context.Context, b *models.Binding) error
	ListByStory(ctx context.Context, storyID uuid.UUID) ([]*models.Binding, error)
	ListByScope(ctx context.Context, storyID uuid.UUID, scopeID string) ([]*models.Binding, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RunRepository хранит забеги. Advance - compare-and-set: обновление проходит
// только если забег все еще active и стоит на ожидаемом пассаже; второй
// конкурентный писатель получает claimed=false.
type RunRepository interface {
	Create(ctx context.Context, run *models.Run) error
	GetByStoryAndOwner(ctx context.Context, storyID, ownerID uuid.UUID) (*models.Run, error)
	Advance(ctx context.Context, runID uuid.UUID, expectedPassage, newPassage string,
		visited []string, variables map[string]string, status models.RunStatus) (bool, error)
	UpdateVariables(ctx context.Context, runID uuid.UUID, variables map[string]string) error
}

// StoryCache кэширует декодированные документы горячих историй.
type StoryCache interface {
	Get(ctx context.Context, storyID uuid.UUID) (*story.StoryDocument, error)
	Set(ctx context.Context, storyID uuid.UUID, doc *story.StoryDocument) error
	Invalidate(ctx context.Context, storyID uuid.UUID) error
}
