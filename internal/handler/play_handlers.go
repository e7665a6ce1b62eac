package handler

import (
	"net/http"

	"quest-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type startRunRequest struct {
	// QuestID - опциональная привязка забега к внешнему квесту.
	QuestID *uuid.UUID `json:"quest_id"`
}

type advanceRequest struct {
	Target string `json:"target" binding:"required"`
}

// startRun создает забег (или возвращает существующий - вызов идемпотентен).
func (h *QuestHandler) startRun(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "story_id")
	if !ok {
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req startRunRequest
	// Тело опционально.
	_ = c.ShouldBindJSON(&req)

	view, err := h.navigation.Start(c.Request.Context(), storyID, userID, req.QuestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *QuestHandler) getRun(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "story_id")
	if !ok {
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	view, err := h.navigation.View(c.Request.Context(), storyID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// advanceRun выполняет один переход по выбранной ссылке.
func (h *QuestHandler) advanceRun(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "story_id")
	if !ok {
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "target is required"})
		return
	}

	result, err := h.navigation.Advance(c.Request.Context(), storyID, userID, req.Target)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
