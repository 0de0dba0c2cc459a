package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/pm-assistant/internal/interfaces/httpserver/handlers"
)

// Registrar attaches extra routes under /v1.
type Registrar interface {
	RegisterRouter(router *gin.RouterGroup)
}

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
	extra    []Registrar
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider, extra ...Registrar) *Routes {
	return &Routes{
		handlers: handlerProvider,
		extra:    extra,
	}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1")
	registerChatRoutes(group, r.handlers.Chat)

	for _, registrar := range r.extra {
		if registrar != nil {
			registrar.RegisterRouter(group)
		}
	}
}
