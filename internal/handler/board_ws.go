package handler

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"

	"whiteboard-backend/internal/realtime"
)

// BoardWebSocket serves the realtime board endpoint. The upgrade
// middleware has already authenticated the token and stashed the uid
// in Locals.
func BoardWebSocket(hub *realtime.Hub, relay *realtime.Relay, writeTimeout time.Duration) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		uid, _ := conn.Locals("uid").(string)
		if uid == "" {
			conn.Close()
			return
		}

		client := realtime.NewClient(uid, conn, writeTimeout)
		hub.Register(client)
		defer func() {
			hub.Unregister(client)
			conn.Close()
		}()

		ctx := context.Background()
		for {
			msgType, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[BoardWS] Read error for user=%s: %v", uid, err)
				}
				break
			}
			if msgType != websocket.TextMessage {
				continue
			}
			relay.Dispatch(ctx, client, raw)
		}
	}
}
