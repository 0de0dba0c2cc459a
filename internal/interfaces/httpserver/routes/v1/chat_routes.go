package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/pm-assistant/internal/interfaces/httpserver/handlers"
)

func registerChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler) {
	router.POST("/chat", handler.Send)
	router.POST("/chat/confirm", handler.Confirm)
	router.GET("/chat/sessions/:session_id/messages", handler.History)
	router.DELETE("/chat/sessions/:session_id/messages", handler.Clear)
	router.GET("/tools", handler.Tools)
}
