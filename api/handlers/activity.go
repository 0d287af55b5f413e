package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flowcanvas/backend/internal/model"
	"github.com/flowcanvas/backend/internal/repository"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityHandler handles HTTP requests for the workflow activity trail.
type ActivityHandler struct {
	repo *repository.ActivityRepository
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(repo *repository.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{repo: repo}
}

// ActivityResponse represents one activity record in API responses.
type ActivityResponse struct {
	ID         int64  `json:"id"`
	WorkflowID string `json:"workflowId"`
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	Activity   string `json:"activity"`
	Message    string `json:"message,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

func toActivityResponse(rec *model.ActivityRecord) *ActivityResponse {
	return &ActivityResponse{
		ID:         rec.ID,
		WorkflowID: rec.WorkflowID,
		UserID:     rec.UserID,
		Username:   rec.Username,
		Activity:   rec.Activity,
		Message:    rec.Message,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /api/workflows/:id/activity - returns the most recent
// activity records for a workflow, newest first.
func (h *ActivityHandler) List(c *gin.Context) {
	workflowID := c.Param("id")
	if workflowID == "" {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Workflow ID is required")
		return
	}

	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	records, err := h.repo.ListByWorkflow(c.Request.Context(), workflowID, limit)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list activity: "+err.Error())
		return
	}

	responses := make([]*ActivityResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, toActivityResponse(rec))
	}

	c.JSON(http.StatusOK, gin.H{"activities": responses})
}

// RegisterRoutes registers the activity routes on a Gin router group.
func (h *ActivityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/workflows/:id/activity", h.List)
}
