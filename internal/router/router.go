package router

import (
	"paper-analytics/internal/handler"
	"paper-analytics/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(r *gin.Engine, svc *service.Service) {
	hdl := handler.NewHandler(svc)

	api := r.Group("/api")
	{
		api.POST("/sessions", hdl.CreateSession)
		api.GET("/sessions", hdl.ListSessions)
		api.GET("/sessions/:id", hdl.GetSession)
		api.DELETE("/sessions/:id", hdl.DeleteSession)
		api.POST("/sessions/:id/search", hdl.Search)
		api.POST("/sessions/:id/select", hdl.Select)
		api.POST("/sessions/:id/reset", hdl.Reset)
		api.GET("/sessions/:id/ws", hdl.StreamSession)
	}

	r.GET("/healthz", hdl.Healthz)
	r.NoRoute(hdl.NotFound)
}
