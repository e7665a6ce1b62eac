package handler

import (
	"errors"
	"net/http"

	"quest-server/internal/middleware"
	"quest-server/internal/models"
	"quest-server/internal/service"
	"quest-server/internal/story"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuestHandler - HTTP-слой сервиса. Вся доменная логика живет в сервисах;
// хендлеры только биндят вход, извлекают пользователя и маппят ошибки.
type QuestHandler struct {
	stories    service.StoryService
	bindings   service.BindingService
	navigation service.NavigationService
	jwtSecret  string
	logger     *zap.Logger
}

func NewQuestHandler(
	stories service.StoryService,
	bindings service.BindingService,
	navigation service.NavigationService,
	jwtSecret string,
	logger *zap.Logger,
) *QuestHandler {
	return &QuestHandler{
		stories:    stories,
		bindings:   bindings,
		navigation: navigation,
		jwtSecret:  jwtSecret,
		logger:     logger.Named("QuestHandler"),
	}
}

func (h *QuestHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.healthCheck)

	api := router.Group("/api")
	api.Use(middleware.Auth(h.jwtSecret, h.logger))
	{
		api.GET("/stories", h.listStories)
		api.GET("/stories/:story_id", h.getStory)

		play := api.Group("/stories/:story_id/run")
		{
			play.POST("", h.startRun)
			play.GET("", h.getRun)
			play.POST("/advance", h.advanceRun)
		}
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.Auth(h.jwtSecret, h.logger), middleware.RequireAdmin(h.logger))
	{
		admin.POST("/stories/import", h.importStory)
		admin.POST("/stories/compile", h.compileStory)
		admin.PUT("/stories/:story_id/import", h.reimportStory)
		admin.GET("/stories/:story_id/bindings", h.listBindings)
		admin.POST("/stories/:story_id/bindings", h.createBinding)
		admin.DELETE("/bindings/:binding_id", h.deleteBinding)
	}
}

func (h *QuestHandler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getUserID достает UserID, положенный auth-middleware.
func getUserID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(string(models.UserContextKey))
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := val.(uuid.UUID)
	return userID, ok
}

// parseUUIDParam разбирает path-параметр как UUID.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError маппит доменные ошибки на HTTP-статусы.
func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrStoryNotFound),
		errors.Is(err, models.ErrRunNotFound),
		errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, models.ErrInvalidTransition):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, models.ErrRunConflict):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, models.ErrUnknownActionType),
		errors.Is(err, models.ErrInvalidPayload),
		errors.Is(err, models.ErrBadRequest),
		errors.Is(err, story.ErrMalformedDocument),
		errors.Is(err, story.ErrInvalidAuthoringModel):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, models.ErrTokenInvalid),
		errors.Is(err, models.ErrTokenExpired),
		errors.Is(err, models.ErrTokenMalformed),
		errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Error: "unauthorized"}
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		errResp = models.ErrorResponse{Error: "forbidden"}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: "internal server error"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
