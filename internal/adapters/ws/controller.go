// Package ws adapts the presence event channel onto gorilla websockets:
// one read/write pump pair per connection, with registry dispatch in
// between.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/collab"
	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/config"
	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// frame is the wire envelope in both directions. Inbound payload fields sit
// beside the type; outbound payloads ride under data.
type frame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type Controller struct {
	reg        *collab.Registry
	limiter    *FrameLimiter
	readLimit  int64
	pingPeriod time.Duration

	mu    sync.RWMutex
	conns map[domain.ConnID]sender
}

func NewController(reg *collab.Registry, cfg *config.Config) *Controller {
	return &Controller{
		reg:        reg,
		limiter:    NewFrameLimiter(cfg.FrameLimit, cfg.FrameWindow),
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
		conns:      make(map[domain.ConnID]sender),
	}
}

// HandleWS upgrades the request and runs the connection until it drops.
// The connection id is minted here and stays stable for the socket's life.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}

	id := domain.ConnID(uuid.NewString())
	conn := newConn(ws)
	ctl.register(id, conn)
	log.Info().Str("module", "ws").Str("conn", string(id)).Msg("connected")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, id, conn)
	go ctl.readPump(ctx, id, conn, cancel)
}

func (ctl *Controller) register(id domain.ConnID, s sender) {
	ctl.mu.Lock()
	ctl.conns[id] = s
	ctl.mu.Unlock()
}

func (ctl *Controller) unregister(id domain.ConnID) {
	ctl.mu.Lock()
	delete(ctl.conns, id)
	ctl.mu.Unlock()
}

func (ctl *Controller) writePump(ctx context.Context, id domain.ConnID, c *Conn) {
	ping := time.NewTicker(ctl.pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			// Unblocks the read pump so disconnect cleanup runs.
			c.Close()
			return
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, id domain.ConnID, c *Conn, cancel context.CancelFunc) {
	defer func() {
		log.Info().Str("module", "ws").Str("conn", string(id)).Msg("disconnected")
		ctl.unregister(id)
		ctl.limiter.Forget(id)
		ctl.deliver(ctl.reg.Dispatch(collab.Disconnect{Conn: id}))
		cancel()
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.readLimit)
	pongWait := ctl.pingPeriod + 10*time.Second
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			if !ctl.limiter.Allow(id) {
				log.Warn().Str("module", "ws").Str("conn", string(id)).Msg("frame limit exceeded")
				continue
			}
			ctl.handleFrame(id, data)
		}
	}
}

// handleFrame dispatches one inbound frame. Malformed or unknown frames
// are logged and dropped, never surfaced to the client.
func (ctl *Controller) handleFrame(id domain.ConnID, data []byte) {
	var env struct {
		Type      string        `json:"type"`
		RoomID    domain.RoomID `json:"roomId"`
		Username  string        `json:"username"`
		Position  int           `json:"position"`
		Selection [2]int        `json:"selection"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("bad frame")
		return
	}

	switch env.Type {
	case "join-room":
		ctl.deliver(ctl.reg.Dispatch(collab.Join{RoomID: env.RoomID, Conn: id, Username: env.Username}))
	case "leave-room":
		ctl.deliver(ctl.reg.Dispatch(collab.Leave{RoomID: env.RoomID, Conn: id}))
	case "cursor-move":
		ctl.deliver(ctl.reg.Dispatch(collab.CursorMove{
			RoomID:    env.RoomID,
			Conn:      id,
			Position:  env.Position,
			Selection: env.Selection,
		}))
	case "ping":
		ctl.sendTo(id, frame{Type: "pong"})
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown frame type")
	}
}

// deliver fans envelopes out to their recipients in order. Each send is
// independent; a full buffer drops that frame for that recipient only.
func (ctl *Controller) deliver(envs []collab.Envelope) {
	for _, env := range envs {
		ctl.sendTo(env.To, frame{Type: env.Event, Data: env.Payload})
	}
}

func (ctl *Controller) sendTo(id domain.ConnID, f frame) {
	ctl.mu.RLock()
	s, ok := ctl.conns[id]
	ctl.mu.RUnlock()
	if !ok {
		return
	}
	b, err := json.Marshal(f)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("marshal frame")
		return
	}
	if err := s.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("conn", string(id)).Str("type", f.Type).Msg("frame dropped")
	}
}
