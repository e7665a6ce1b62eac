package handler

import (
	"net/http"

	"quest-server/internal/models"

	"github.com/gin-gonic/gin"
)

type createBindingRequest struct {
	ScopeID string                `json:"scope_id" binding:"required"`
	Action  models.ActionType     `json:"action" binding:"required"`
	Payload models.BindingPayload `json:"payload"`
}

func (h *QuestHandler) createBinding(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "story_id")
	if !ok {
		return
	}

	var req createBindingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "scope_id and action are required"})
		return
	}

	b, err := h.bindings.Create(c.Request.Context(), storyID, req.ScopeID, req.Action, req.Payload)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *QuestHandler) listBindings(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "story_id")
	if !ok {
		return
	}

	list, err := h.bindings.ListForStory(c.Request.Context(), storyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bindings": list})
}

func (h *QuestHandler) deleteBinding(c *gin.Context) {
	bindingID, ok := parseUUIDParam(c, "binding_id")
	if !ok {
		return
	}

	if err := h.bindings.Delete(c.Request.Context(), bindingID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
