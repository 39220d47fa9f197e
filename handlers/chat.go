package handlers

import (
	"net/http"
	"strings"

	"movebot/models"
	"movebot/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler processes one conversational turn.
func ChatHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		req.Message = strings.TrimSpace(req.Message)
		if req.Message == "" {
			utils.JSONError(c, http.StatusBadRequest, "Message is required", "The message field must not be empty")
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		result, err := bundle.Orchestrator.HandleTurn(c.Request.Context(), req.SessionID, req.Message)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Chat processing failed", err.Error())
			return
		}

		c.JSON(http.StatusOK, models.ChatResponse{
			Response:          result.Reply,
			SessionID:         req.SessionID,
			Cooldown:          result.Cooldown,
			Degraded:          result.Degraded,
			AvailabilityCheck: result.AvailabilityCheck,
			ManagerNotified:   result.ManagerNotified,
		})
	}
}

// WelcomeHandler seeds a session and returns the opening message.
func WelcomeHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("session_id")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		msg, err := bundle.Orchestrator.EnsureWelcome(c.Request.Context(), sessionID)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Session initialization failed", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": msg, "session_id": sessionID})
	}
}

// ResetConversationHandler drops all state for a session.
func ResetConversationHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SessionID string `json:"session_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
			utils.JSONError(c, http.StatusBadRequest, "session_id is required", "")
			return
		}
		if err := bundle.Orchestrator.ResetSession(c.Request.Context(), req.SessionID); err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Reset failed", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "reset", "session_id": req.SessionID})
	}
}

// HealthHandler reports liveness.
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "movebot"})
	}
}
