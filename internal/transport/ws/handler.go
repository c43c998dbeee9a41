package ws

import (
	"context"
	"net/http"

	"github.com/vedran77/pokehire/internal/auth"
	"nhooyr.io/websocket"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param (WebSocket can't send headers).
// originPatterns lists extra allowed Origin hosts; same-origin is always
// allowed.
func ServeWS(hub *Hub, verifier auth.SessionVerifier, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		userID, err := verifier.Verify(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			hub.log.Warn(r.Context(), "ws accept failed", "error", err)
			return
		}

		client := NewClient(hub, conn, userID)
		if !hub.Register(client) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		// The request context ends when this handler returns.
		ctx := context.WithoutCancel(r.Context())
		go client.WritePump(ctx)
		go client.ReadPump(ctx)
	}
}
