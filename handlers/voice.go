package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// VoiceIncomingHandler answers inbound phone calls with a TwiML greeting
// that points callers at the office line.
func VoiceIncomingHandler(bundle *HandlerBundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		twiml := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Say voice="alice">Thanks for calling U S F Moving Company. For the fastest quote, text or chat with us on our website, or stay on the line and we will connect you.</Say>
  <Dial>%s</Dial>
</Response>`, bundle.CompanyPhone)
		c.Data(http.StatusOK, "application/xml", []byte(twiml))
	}
}
