package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"movebot/models"
	"movebot/services/speech"
	"movebot/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxAudioBytes caps a single audio upload at 10 MB.
const maxAudioBytes = 10 << 20

// SpeechChatHandler transcribes an audio message and feeds the text
// through the normal chat turn. Accepts either a multipart upload
// ("audio" field) or a JSON body with base64 audio.
func SpeechChatHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bundle.Transcriber == nil {
			utils.JSONError(c, http.StatusServiceUnavailable, "Speech service unavailable", "transcription is not configured")
			return
		}
		audio, mimeType, sessionID, ok := readAudio(c)
		if !ok {
			return
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		transcript, err := bundle.Transcriber.Transcribe(c.Request.Context(), audio, mimeType)
		if err != nil {
			if errors.Is(err, speech.ErrUnsupportedFormat) {
				utils.JSONError(c, http.StatusUnsupportedMediaType, "Unsupported audio format", mimeType)
				return
			}
			utils.JSONError(c, http.StatusBadGateway, "Transcription failed", err.Error())
			return
		}

		result, err := bundle.Orchestrator.HandleTurn(c.Request.Context(), sessionID, transcript)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Chat processing failed", err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"transcript": transcript,
			"chat": models.ChatResponse{
				Response:          result.Reply,
				SessionID:         sessionID,
				Cooldown:          result.Cooldown,
				Degraded:          result.Degraded,
				AvailabilityCheck: result.AvailabilityCheck,
				ManagerNotified:   result.ManagerNotified,
			},
		})
	}
}

// readAudio extracts the audio payload from either request shape. On
// failure it writes the error response and returns ok=false.
func readAudio(c *gin.Context) (audio []byte, mimeType, sessionID string, ok bool) {
	contentType := c.ContentType()

	if strings.HasPrefix(contentType, "multipart/") {
		file, header, err := c.Request.FormFile("audio")
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Missing audio file", "multipart field 'audio' is required")
			return nil, "", "", false
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Could not read audio", err.Error())
			return nil, "", "", false
		}
		if len(data) > maxAudioBytes {
			utils.JSONError(c, http.StatusRequestEntityTooLarge, "Audio too large", "uploads are limited to 10 MB")
			return nil, "", "", false
		}
		return data, header.Header.Get("Content-Type"), c.PostForm("session_id"), true
	}

	var req struct {
		AudioBase64 string `json:"audio_base64"`
		MimeType    string `json:"mime_type"`
		SessionID   string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AudioBase64 == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing audio payload", "provide multipart 'audio' or JSON 'audio_base64'")
		return nil, "", "", false
	}
	data, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid base64 audio", err.Error())
		return nil, "", "", false
	}
	if len(data) > maxAudioBytes {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "Audio too large", "uploads are limited to 10 MB")
		return nil, "", "", false
	}
	return data, req.MimeType, req.SessionID, true
}
