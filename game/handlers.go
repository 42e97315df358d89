package game

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Handler struct {
	gateway *Gateway
	log     zerolog.Logger
}

func NewHandler(gateway *Gateway, log zerolog.Logger) *Handler {
	return &Handler{gateway: gateway, log: log}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the server's origin middleware before
	// requests reach this handler.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ConnectHandler upgrades the request and hands the socket to the
// gateway for the lifetime of the connection.
func (h *Handler) ConnectHandler(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}
	h.gateway.HandleConn(NewWebsocketConnection(conn))
}
