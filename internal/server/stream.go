package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/hackur/holdemd/internal/engine"
)

const (
	streamInterval = 250 * time.Millisecond
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

// viewStream pushes a player's view over a WebSocket connection whenever it
// changes, and accepts action messages on the read side.
type viewStream struct {
	conn   *websocket.Conn
	table  *Table
	player string
	logger *log.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func newViewStream(conn *websocket.Conn, table *Table, player string, logger *log.Logger) *viewStream {
	return &viewStream{
		conn:   conn,
		table:  table,
		player: player,
		logger: logger.WithPrefix("stream"),
		done:   make(chan struct{}),
	}
}

func (vs *viewStream) close() {
	vs.closeOnce.Do(func() {
		close(vs.done)
		_ = vs.conn.Close()
	})
}

// writePump ticks the table and sends the view when it differs from the
// last one sent. Writes and pings own the connection's write side.
func (vs *viewStream) writePump() {
	ticker := time.NewTicker(streamInterval)
	pinger := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		pinger.Stop()
		vs.close()
	}()

	var last string
	for {
		select {
		case <-vs.done:
			return
		case <-pinger.C:
			_ = vs.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := vs.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			if err := vs.table.Orch.Tick(); err != nil {
				vs.logger.Error("tick failed", "table", vs.table.ID, "error", err)
				return
			}
			view := vs.table.Orch.ViewFor(vs.player)
			payload, err := json.Marshal(view)
			if err != nil {
				vs.logger.Error("view encode failed", "error", err)
				return
			}
			if string(payload) == last {
				continue
			}
			last = string(payload)
			_ = vs.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := vs.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

// readPump consumes action messages until the connection drops.
func (vs *viewStream) readPump() {
	defer vs.close()

	_ = vs.conn.SetReadDeadline(time.Now().Add(pongWait))
	vs.conn.SetPongHandler(func(string) error {
		return vs.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req actionRequest
		if err := vs.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				vs.logger.Debug("read failed", "error", err)
			}
			return
		}
		if req.Player == "" {
			req.Player = vs.player
		}
		actionType, err := engine.ParseActionType(req.Action)
		if err != nil {
			vs.logger.Debug("bad action over websocket", "action", req.Action)
			continue
		}
		vs.table.Orch.SubmitAction(req.Player, engine.Action{Type: actionType, Amount: req.Amount})
	}
}
