package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quest-server/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	_ service.IdentityAssigner = (*HTTPGameAPIClient)(nil)
	_ service.ContentEmitter   = (*HTTPGameAPIClient)(nil)
	_ service.QuestCompleter   = (*HTTPGameAPIClient)(nil)
)

// HTTPGameAPIClient - клиент окружающего игрового API. Реализует все три
// интерфейса коллабораторов движка: назначение идентичности, создание
// контента и завершение внешних квестов.
type HTTPGameAPIClient struct {
	baseURL           string // например "http://game-api:8080"
	httpClient        *http.Client
	interServiceToken string
	logger            *zap.Logger
}

func NewHTTPGameAPIClient(baseURL, interServiceToken string, logger *zap.Logger) *HTTPGameAPIClient {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &HTTPGameAPIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		interServiceToken: interServiceToken,
		logger:            logger.Named("HTTPGameAPIClient"),
	}
}

func (c *HTTPGameAPIClient) AssignNation(ctx context.Context, ownerID, nationID uuid.UUID) error {
	body := struct {
		NationID uuid.UUID `json:"nation_id"`
	}{NationID: nationID}
	return c.post(ctx, fmt.Sprintf("/internal/players/%s/nation", ownerID), body, nil)
}

func (c *HTTPGameAPIClient) AssignArchetype(ctx context.Context, ownerID, playbookID uuid.UUID) error {
	body := struct {
		PlaybookID uuid.UUID `json:"playbook_id"`
	}{PlaybookID: playbookID}
	return c.post(ctx, fmt.Sprintf("/internal/players/%s/archetype", ownerID), body, nil)
}

func (c *HTTPGameAPIClient) EmitQuest(ctx context.Context, ownerID uuid.UUID, title, description string) (uuid.UUID, error) {
	return c.emitContent(ctx, ownerID, "/internal/quests", title, description)
}

func (c *HTTPGameAPIClient) EmitBar(ctx context.Context, ownerID uuid.UUID, title, description string) (uuid.UUID, error) {
	return c.emitContent(ctx, ownerID, "/internal/bars", title, description)
}

func (c *HTTPGameAPIClient) CompleteQuest(ctx context.Context, ownerID uuid.UUID, externalID string) error {
	body := struct {
		OwnerID uuid.UUID `json:"owner_id"`
	}{OwnerID: ownerID}
	return c.post(ctx, fmt.Sprintf("/internal/quests/%s/complete", externalID), body, nil)
}

func (c *HTTPGameAPIClient) emitContent(ctx context.Context, ownerID uuid.UUID, path, title, description string) (uuid.UUID, error) {
	body := struct {
		OwnerID     uuid.UUID `json:"owner_id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
	}{OwnerID: ownerID, Title: title, Description: description}

	var response struct {
		ID uuid.UUID `json:"id"`
	}
	if err := c.post(ctx, path, body, &response); err != nil {
		return uuid.Nil, err
	}
	return response.ID, nil
}

// post выполняет POST с JSON-телом; out может быть nil, если тело ответа не нужно.
func (c *HTTPGameAPIClient) post(ctx context.Context, path string, in any, out any) error {
	log := c.logger.With(zap.String("path", path))

	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request for game api: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.interServiceToken != "" {
		req.Header.Set("X-Internal-Service-Token", c.interServiceToken)
	} else {
		log.Warn("Inter-service token is not set for game api client, call might fail")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Failed to execute request to game api", zap.Error(err))
		return fmt.Errorf("failed to execute request to game api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("Game api returned non-OK status", zap.Int("status_code", resp.StatusCode))
		return fmt.Errorf("game api returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Error("Failed to decode game api response", zap.Error(err))
			return fmt.Errorf("failed to decode game api response: %w", err)
		}
	}
	return nil
}
