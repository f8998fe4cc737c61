package live

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// writeTimeout bounds a single event write to a client.
const writeTimeout = 10 * time.Second

// Serve upgrades the request to a websocket, sends a hello event and then
// streams every event published for the project until the client goes
// away. Client messages are ignored. originPatterns is passed to the
// upgrader; an empty list accepts same-origin requests only.
func Serve(w http.ResponseWriter, r *http.Request, hub *Hub, projectID string, version int, originPatterns []string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		slog.Warn("live: websocket accept failed", "project", projectID, "error", err)
		return
	}
	defer conn.CloseNow()

	events, unsubscribe := hub.Subscribe(projectID)
	defer unsubscribe()

	// CloseRead discards client frames and cancels ctx once the peer closes.
	ctx := conn.CloseRead(r.Context())

	hello := Event{Type: EventHello, ProjectID: projectID, Version: version, At: time.Now().UTC()}
	if err := write(ctx, conn, hello); err != nil {
		return
	}
	slog.Debug("live: client connected", "project", projectID, "subscribers", hub.Subscribers(projectID))

	for {
		select {
		case <-ctx.Done():
			slog.Debug("live: client disconnected", "project", projectID)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := write(ctx, conn, evt); err != nil {
				slog.Debug("live: write failed", "project", projectID, "error", err)
				return
			}
			if evt.Type == EventProjectDeleted {
				conn.Close(websocket.StatusNormalClosure, "project deleted")
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, evt Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, evt)
}
