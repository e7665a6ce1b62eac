package handler

import (
	"net/http"

	"quest-server/internal/models"
	"quest-server/internal/story"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type importStoryRequest struct {
	Document string `json:"document" binding:"required"`
}

type storyResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	StartPassage string   `json:"start_passage"`
	PassageCount int      `json:"passage_count"`
	Warnings     []string `json:"warnings,omitempty"`
	MarkupText   string   `json:"markup_text,omitempty"`
}

// importStory принимает сырой контейнерный документ и сохраняет историю.
func (h *QuestHandler) importStory(c *gin.Context) {
	var req importStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "document is required"})
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	st, err := h.stories.Import(c.Request.Context(), req.Document, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, storyResponse{
		ID:           st.ID.String(),
		Title:        st.Title,
		StartPassage: st.Document.StartPassage,
		PassageCount: len(st.Document.Passages),
		Warnings:     st.Warnings,
	})
}

// reimportStory заменяет документ существующей истории новой версией.
func (h *QuestHandler) reimportStory(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "story_id")
	if !ok {
		return
	}
	var req importStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "document is required"})
		return
	}

	st, err := h.stories.Reimport(c.Request.Context(), storyID, req.Document)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, storyResponse{
		ID:           st.ID.String(),
		Title:        st.Title,
		StartPassage: st.Document.StartPassage,
		PassageCount: len(st.Document.Passages),
		Warnings:     st.Warnings,
	})
}

// compileStory компилирует структурированную модель авторинга в историю.
func (h *QuestHandler) compileStory(c *gin.Context) {
	var m story.AuthoringModel
	if err := c.ShouldBindJSON(&m); err != nil {
		h.logger.Warn("Failed to bind authoring model", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid authoring model"})
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	st, markup, err := h.stories.CompileAndImport(c.Request.Context(), m, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, storyResponse{
		ID:           st.ID.String(),
		Title:        st.Title,
		StartPassage: st.Document.StartPassage,
		PassageCount: len(st.Document.Passages),
		Warnings:     st.Warnings,
		MarkupText:   markup,
	})
}

func (h *QuestHandler) getStory(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "story_id")
	if !ok {
		return
	}

	st, err := h.stories.Get(c.Request.Context(), storyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, storyResponse{
		ID:           st.ID.String(),
		Title:        st.Title,
		StartPassage: st.Document.StartPassage,
		PassageCount: len(st.Document.Passages),
		Warnings:     st.Warnings,
	})
}

func (h *QuestHandler) listStories(c *gin.Context) {
	limit := 50
	list, err := h.stories.List(c.Request.Context(), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": list})
}
