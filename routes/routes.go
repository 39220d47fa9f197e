package routes

import (
	"time"

	"movebot/config"
	"movebot/handlers"
	"movebot/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires middleware and all endpoints onto the router.
func RegisterRoutes(router *gin.Engine, bundle *handlers.HandlerBundle) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOriginList(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimitMiddleware())

	router.GET("/", handlers.HealthHandler())
	router.GET("/welcome", handlers.WelcomeHandler(bundle))

	router.POST("/chat", handlers.ChatHandler(bundle))
	router.POST("/reset-conversation", handlers.ResetConversationHandler(bundle))

	router.POST("/calculate-distance", handlers.CalculateDistanceHandler(bundle))
	router.POST("/generate-estimate", handlers.GenerateEstimateHandler(bundle))

	router.POST("/submit-booking", handlers.SubmitBookingHandler(bundle))
	router.POST("/request-call", handlers.RequestCallHandler(bundle))

	router.POST("/speech-chat", handlers.SpeechChatHandler(bundle))
	speechStream := router.Group("/speech/stream")
	{
		speechStream.POST("/start", handlers.StreamStartHandler(bundle))
		speechStream.POST("/chunk", handlers.StreamChunkHandler(bundle))
		speechStream.POST("/finalize", handlers.StreamFinalizeHandler(bundle))
	}

	router.POST("/voice/incoming", handlers.VoiceIncomingHandler(bundle))
}
