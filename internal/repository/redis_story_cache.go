package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quest-server/internal/models"
	"quest-server/internal/story"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ StoryCache = (*redisStoryCache)(nil)

const storyCacheKeyPrefix = "story_doc:"

type redisStoryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStoryCache создает Redis-кэш декодированных документов. Документы
// неизменяемы, поэтому TTL - только защита от бесконечного роста ключей;
// переимпорт истории обязан вызывать Invalidate.
func NewRedisStoryCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) StoryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisStoryCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisStoryCache"),
	}
}

func storyCacheKey(storyID uuid.UUID) string {
	return storyCacheKeyPrefix + storyID.String()
}

func (c *redisStoryCache) Get(ctx context.Context, storyID uuid.UUID) (*story.StoryDocument, error) {
	data, err := c.client.Get(ctx, storyCacheKey(storyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		c.logger.Warn("Failed to read story document from cache",
			zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to read story cache: %w", err)
	}

	var doc story.StoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		// Битую запись выкидываем, пусть перечитают из БД.
		c.logger.Warn("Corrupted cache entry, invalidating", zap.String("storyID", storyID.String()), zap.Error(err))
		_ = c.client.Del(ctx, storyCacheKey(storyID)).Err()
		return nil, models.ErrNotFound
	}
	doc.Reindex()
	return &doc, nil
}

func (c *redisStoryCache) Set(ctx context.Context, storyID uuid.UUID, doc *story.StoryDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal story document for cache: %w", err)
	}
	if err := c.client.Set(ctx, storyCacheKey(storyID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache story document",
			zap.String("storyID", storyID.String()), zap.Error(err))
		return fmt.Errorf("failed to cache story document: %w", err)
	}
	return nil
}

func (c *redisStoryCache) Invalidate(ctx context.Context, storyID uuid.UUID) error {
	if err := c.client.Del(ctx, storyCacheKey(storyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate story cache: %w", err)
	}
	return nil
}
