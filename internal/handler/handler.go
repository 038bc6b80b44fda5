package handler

import (
	"net/http"
	"time"

	"paper-analytics/internal/service"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

type Handler struct {
	Sessions *service.Sessions
	upgrader websocket.Upgrader
}

func NewHandler(svc *service.Service) Handler {
	return Handler{
		Sessions: svc.Sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}
