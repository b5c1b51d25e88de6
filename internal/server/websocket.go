package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gempswccg/swccg-server/internal/config"
	"github.com/gempswccg/swccg-server/internal/game"
)

// WebSocket message types.
const (
	MessageSubscribe = "subscribe"
	MessageCommand   = "command"
	MessageView      = "match_view"
	MessageResult    = "command_result"
	MessageDecision  = "decision_pending"
	MessageEnded     = "match_ended"
	MessageError     = "error"
)

const sendBuffer = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type     string          `json:"type"`
	MatchID  string          `json:"match_id,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// wsCommand is the data of a command frame.
type wsCommand struct {
	Kind     string   `json:"kind"`
	ActionID string   `json:"action_id,omitempty"`
	Seq      int64    `json:"seq,omitempty"`
	Chosen   []string `json:"chosen,omitempty"`
}

// Client is one WebSocket connection subscribed to at most one match seat.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu       sync.RWMutex
	matchID  string
	playerID string
}

func (c *Client) subscription() (matchID, playerID string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matchID, c.playerID
}

func (c *Client) subscribe(matchID, playerID string) {
	c.mu.Lock()
	c.matchID, c.playerID = matchID, playerID
	c.mu.Unlock()
}

// Hub pushes match views to subscribed clients whenever the engine reports a change.
type Hub struct {
	engine       *game.Engine
	logger       *zap.Logger
	writeTimeout time.Duration

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates a hub over the engine.
func NewHub(engine *game.Engine, writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Hub{
		engine:       engine,
		logger:       logger,
		writeTimeout: writeTimeout,
		clients:      make(map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// subscribers returns the clients watching a match.
func (h *Hub) subscribers(matchID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*Client
	for c := range h.clients {
		if id, _ := c.subscription(); id == matchID {
			out = append(out, c)
		}
	}
	return out
}

// deliver queues a frame for a client, dropping it when the client is too slow.
func (h *Hub) deliver(c *Client, msg WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode websocket message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- payload:
	default:
		h.logger.Warn("websocket client too slow, dropping message",
			zap.String("match_id", msg.MatchID),
			zap.String("type", msg.Type),
		)
	}
}

func (h *Hub) deliverData(c *Client, msgType, matchID, playerID string, seq int64, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to encode websocket payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	h.deliver(c, WSMessage{Type: msgType, MatchID: matchID, PlayerID: playerID, Seq: seq, Data: raw})
}

func (h *Hub) deliverError(c *Client, matchID string, err error) {
	h.deliverData(c, MessageError, matchID, "", 0, map[string]string{
		"code":    codeFor(err).String(),
		"message": err.Error(),
	})
}

// pushView sends the client its current view of the match.
func (h *Hub) pushView(c *Client) {
	matchID, playerID := c.subscription()
	v, err := h.engine.CurrentView(matchID, playerID)
	if err != nil {
		h.deliverError(c, matchID, err)
		return
	}
	h.deliverData(c, MessageView, matchID, playerID, v.Seq, viewFrom(v))
}

// Notify is the engine's notification handler.
func (h *Hub) Notify(n game.Notification) {
	for _, c := range h.subscribers(n.MatchID) {
		_, playerID := c.subscription()
		switch n.Type {
		case game.NotificationUpdated:
			h.pushView(c)
		case game.NotificationDecision:
			if playerID == n.PlayerID {
				h.deliverData(c, MessageDecision, n.MatchID, playerID, n.Seq, n.Data)
			}
		case game.NotificationEnded:
			h.deliverData(c, MessageEnded, n.MatchID, playerID, n.Seq, n.Data)
		}
	}
}

func (h *Hub) handleMessage(ctx context.Context, c *Client, msg WSMessage) {
	switch msg.Type {
	case MessageSubscribe:
		if msg.MatchID == "" || msg.PlayerID == "" {
			h.deliverError(c, msg.MatchID, missing("match_id and player_id"))
			return
		}
		c.subscribe(msg.MatchID, msg.PlayerID)
		h.pushView(c)

	case MessageCommand:
		matchID, playerID := c.subscription()
		if matchID == "" {
			h.deliverError(c, msg.MatchID, missing("subscription"))
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			h.deliverError(c, matchID, errors.Join(errBadRequest, err))
			return
		}
		req := commandRequest{MatchID: matchID, Kind: cmd.Kind, PlayerID: playerID, ActionID: cmd.ActionID, Seq: cmd.Seq, Chosen: cmd.Chosen}
		res, err := h.engine.ApplyCommand(ctx, matchID, req.command())
		if err != nil {
			h.deliverError(c, matchID, err)
			return
		}
		h.deliverData(c, MessageResult, matchID, playerID, res.Seq, resultFrom(res))

	default:
		h.deliverError(c, msg.MatchID, missing("known message type"))
	}
}

func (h *Hub) readPump(ctx context.Context, c *Client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.deliverError(c, "", errors.Join(errBadRequest, err))
			continue
		}
		h.handleMessage(ctx, c, msg)
	}
}

func (h *Hub) writePump(c *Client) {
	defer c.conn.Close()

	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// ServeHTTP upgrades the request and runs the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &Client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go h.writePump(c)
	go h.readPump(context.Background(), c)
}

// StartWebSocketServer serves the hub at /ws until ctx is cancelled.
func StartWebSocketServer(ctx context.Context, cfg config.WebSocketConfig, hub *Hub, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting WebSocket server", zap.String("address", cfg.Address))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
