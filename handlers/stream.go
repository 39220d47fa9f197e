package handlers

import (
	"errors"
	"net/http"

	"movebot/models"
	"movebot/services/speech"
	"movebot/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StreamStartHandler opens a chunked audio stream for a session.
func StreamStartHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SessionID string `json:"session_id"`
			MimeType  string `json:"mime_type"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}
		if err := bundle.Streams.Start(req.SessionID, req.MimeType); err != nil {
			utils.JSONError(c, http.StatusUnsupportedMediaType, "Unsupported audio format", req.MimeType)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "started", "session_id": req.SessionID})
	}
}

// StreamChunkHandler appends a base64 chunk to an open stream.
func StreamChunkHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SessionID string `json:"session_id"`
			Chunk     string `json:"chunk"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" || req.Chunk == "" {
			utils.JSONError(c, http.StatusBadRequest, "session_id and chunk are required", "")
			return
		}
		n, err := bundle.Streams.Append(req.SessionID, req.Chunk)
		if err != nil {
			utils.JSONError(c, http.StatusNotFound, "No open stream for session", req.SessionID)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "buffered", "chunks": n})
	}
}

// StreamFinalizeHandler closes the stream, transcribes the assembled
// audio, and runs the chat turn on the transcript.
func StreamFinalizeHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bundle.Transcriber == nil {
			utils.JSONError(c, http.StatusServiceUnavailable, "Speech service unavailable", "transcription is not configured")
			return
		}
		var req struct {
			SessionID string `json:"session_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
			utils.JSONError(c, http.StatusBadRequest, "session_id is required", "")
			return
		}

		audio, mimeType, err := bundle.Streams.Finalize(req.SessionID)
		if err != nil {
			if errors.Is(err, speech.ErrUnknownStream) {
				utils.JSONError(c, http.StatusNotFound, "No open stream for session", req.SessionID)
				return
			}
			utils.JSONError(c, http.StatusBadRequest, "Could not assemble audio", err.Error())
			return
		}

		transcript, err := bundle.Transcriber.Transcribe(c.Request.Context(), audio, mimeType)
		if err != nil {
			utils.JSONError(c, http.StatusBadGateway, "Transcription failed", err.Error())
			return
		}

		result, err := bundle.Orchestrator.HandleTurn(c.Request.Context(), req.SessionID, transcript)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Chat processing failed", err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"transcript": transcript,
			"chat": models.ChatResponse{
				Response:          result.Reply,
				SessionID:         req.SessionID,
				Cooldown:          result.Cooldown,
				Degraded:          result.Degraded,
				AvailabilityCheck: result.AvailabilityCheck,
				ManagerNotified:   result.ManagerNotified,
			},
		})
	}
}
