package httpserver

import (
	"net/http"
	"time"

	"hrc-derby/games/horse_racing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	// A browser repainting at 60fps should never fall this far behind.
	streamBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Same-origin front ends only when served behind a proxy; the API is
	// unauthenticated so there is nothing to protect across origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStream pushes table events as JSON text frames. The first message is
// always a snapshot of the table.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	t := s.table(r)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("table", t.ID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, unsubscribe := t.Subscribe(streamBuffer)
	defer unsubscribe()

	conn.SetReadLimit(1 << 12)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The client never sends anything we act on; reading only detects closes.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	st := t.Snapshot()
	if err := writeEvent(conn, horse_racing.Event{Kind: horse_racing.EventSnapshot, State: &st}); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case <-s.baseCtx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				log.Debug().Err(err).Str("table", t.ID).Msg("stream write failed")
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev horse_racing.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}
