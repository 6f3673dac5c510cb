package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/adapters/audio"
	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/internal/turn"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. A WAV utterance arrives as one binary message.
	maxMessageSize = 8 * 1024 * 1024

	defaultSampleRate = 16000
)

var errClientGone = errors.New("websocket client disconnected")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// TurnRunner runs one turn over a pre-recorded buffer
type TurnRunner interface {
	RunBufferTurn(ctx context.Context, buffer entities.AudioBuffer, options ...turn.TurnOption) turn.Result
}

// HistoryClearer forgets the conversation so far
type HistoryClearer interface {
	ClearHistory()
}

// Gauge tracks connected clients
type Gauge interface {
	Inc()
	Dec()
}

// Options configures a Hub
type Options struct {
	// SampleRate is what incoming WAV audio is resampled to before transcription
	SampleRate int
	// Connections is optional
	Connections Gauge
}

// Hub maintains the set of active clients and fans turn events out to them.
type Hub struct {
	// Registered clients, by connection id.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns
	stopped chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	runner     TurnRunner
	history    HistoryClearer
	sampleRate int
	gauge      Gauge

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(runner TurnRunner, history HistoryClearer, options Options, logger *zap.Logger) *Hub {
	if options.SampleRate <= 0 {
		logger.Info("Using default websocket sample rate", zap.Int("sampleRate", defaultSampleRate))
		options.SampleRate = defaultSampleRate
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		runner:     runner,
		history:    history,
		sampleRate: options.SampleRate,
		gauge:      options.Connections,
		logger:     logger,
	}
}

// Run starts the hub's main loop and disconnects every client when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			if h.gauge != nil {
				h.gauge.Inc()
			}
			h.logger.Info("Client registered", zap.String("clientID", client.clientID), zap.String("connectionID", client.id))

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for _, client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()
			for _, client := range clients {
				h.remove(client)
			}
			h.logger.Info("Hub stopped")
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client.id]
	delete(h.clients, client.id)
	h.mu.Unlock()

	client.close()
	if ok {
		if h.gauge != nil {
			h.gauge.Dec()
		}
		h.logger.Info("Client unregistered", zap.String("clientID", client.clientID), zap.String("connectionID", client.id))
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type originKey struct{}

// OnEvent sends turn events except audio chunks as JSON to the client that
// started the turn. Audio travels to the same client as binary frames.
func (h *Hub) OnEvent(ctx context.Context, event turn.Event) {
	if event.Type == turn.EventAudioChunk {
		return
	}

	client, ok := ctx.Value(originKey{}).(*Client)
	if !ok {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal turn event", zap.Error(err))
		return
	}

	if !client.enqueue(WriteData{Type: websocket.TextMessage, Payload: payload}) {
		client.logger.Debug("Client gone, turn event dropped", zap.String("eventType", string(event.Type)))
	}
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Closed when the client is unregistered
	done      chan struct{}
	closeOnce sync.Once

	// Cancels the turn in flight when the client goes away
	ctx    context.Context
	cancel context.CancelFunc

	id       string
	clientID string

	// Set while a turn started by this client runs
	busy atomic.Bool

	logger *zap.Logger
}

// ServeClient upgrades an authenticated request and starts the client pumps
func ServeClient(hub *Hub, c echo.Context, clientID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan WriteData, 256),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		id:       id,
		clientID: clientID,
		logger:   logger.With(zap.String("clientID", clientID), zap.String("connectionID", id)),
	}

	select {
	case hub.register <- client:
	case <-hub.stopped:
		cancel()
		conn.Close()
		return errors.New("websocket hub is not running")
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.done)
	})
}

// enqueue blocks until the message is queued or the client is gone
func (c *Client) enqueue(data WriteData) bool {
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	}
}

func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}
	c.enqueue(WriteData{Type: websocket.TextMessage, Payload: payload})
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
			c.close()
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processAudio(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// processMessage handles JSON control messages
func (c *Client) processMessage(message []byte) {
	msg, err := ParseClientMessage(message)
	if err != nil {
		c.logger.Warn("Invalid control message", zap.Error(err))
		c.sendJSON(newErrorMessage("invalid_message", err.Error()))
		return
	}

	switch msg.Type {
	case MessageTypePing:
		c.sendJSON(newBase(MessageTypePong, msg.MessageID))
	case MessageTypeClearHistory:
		c.hub.history.ClearHistory()
		c.logger.Info("Conversation history cleared")
		c.sendJSON(newBase(MessageTypeHistory, msg.MessageID))
	}
}

// processAudio runs a turn over one binary WAV utterance
func (c *Client) processAudio(data []byte) {
	if !c.busy.CompareAndSwap(false, true) {
		c.sendJSON(newErrorMessage("turn_in_progress", "a turn started by this connection is still running"))
		return
	}

	buffer, err := audio.DecodeWAV(data)
	if err == nil {
		buffer, err = audio.Resample(buffer, c.hub.sampleRate)
	}
	if err != nil {
		c.busy.Store(false)
		c.logger.Warn("Rejected audio message", zap.Int("size", len(data)), zap.Error(err))
		c.sendJSON(newErrorMessage("invalid_audio", err.Error()))
		return
	}

	c.logger.Info("Received utterance",
		zap.Int("size", len(data)),
		zap.Duration("duration", buffer.Duration()))

	go func() {
		defer c.busy.Store(false)

		ctx := context.WithValue(c.ctx, originKey{}, c)
		result := c.hub.runner.RunBufferTurn(ctx, buffer, turn.WithSink(&clientSink{client: c}))

		message := TurnResultMessage{BaseMessage: newBase(MessageTypeTurnResult, ""), Result: result}
		if result.Err != nil {
			message.Error = result.Err.Error()
		}
		c.sendJSON(message)
	}()
}

// clientSink writes reply audio to the client as binary frames
type clientSink struct {
	client *Client
}

func (s *clientSink) Write(chunk []byte) (int, error) {
	payload := make([]byte, len(chunk))
	copy(payload, chunk)
	if !s.client.enqueue(WriteData{Type: websocket.BinaryMessage, Payload: payload}) {
		return 0, errClientGone
	}
	return len(chunk), nil
}

func (s *clientSink) Close() error {
	return nil
}
