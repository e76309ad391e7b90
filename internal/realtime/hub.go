package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/metrics"
	"github.com/vip7612-maker/monglemongle/internal/middleware"
	"github.com/vip7612-maker/monglemongle/internal/providers/thanks"
)

// Event names exchanged over the socket.
const (
	EventInit            = "init"
	EventSubmit          = "submit"
	EventNewSubmission   = "new_submission"
	EventAIMessageResult = "ai_message_result"
	EventAIMessageError  = "ai_message_error"
	EventSubmitError     = "submit_error"
	EventAdminAction     = "admin_action"
	EventAdminError      = "admin_error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 << 10
	sendBuffer     = 32
)

// Service is the part of the submission service the hub drives.
type Service interface {
	List(ctx context.Context) ([]domain.Submission, error)
	Create(ctx context.Context, in domain.SubmissionInput) (domain.Submission, error)
	Moderate(ctx context.Context, action domain.ModerationAction, id int64) ([]domain.Submission, error)
	Notify(ctx context.Context, sub domain.Submission, locale string) <-chan thanks.Result
}

// Authorizer checks admin credentials carried in an admin_action event.
type Authorizer interface {
	Authorize(passphrase, token string) error
}

type Options struct {
	Service        Service
	Auth           Authorizer
	Logger         infra.Logger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
}

// Hub fans events out to every connected websocket client.
type Hub struct {
	svc      Service
	auth     Authorizer
	logger   infra.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// Envelope is the wire frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type submitError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type adminActionPayload struct {
	Type       domain.ModerationAction `json:"type"`
	ID         int64                   `json:"id"`
	Token      string                  `json:"token,omitempty"`
	Passphrase string                  `json:"passphrase,omitempty"`
}

func NewHub(opts Options) *Hub {
	h := &Hub{
		svc:     opts.Service,
		auth:    opts.Auth,
		logger:  opts.Logger.With().Str("component", "realtime").Logger(),
		metrics: opts.Metrics,
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

// ServeHTTP upgrades the connection and sends the current list as init.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		locale: middleware.DetectLocale(r),
	}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("client connected")

	list, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("init list failed")
		list = []domain.Submission{}
	}
	c.emit(EventInit, list)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.wg.Add(2)
	h.metrics.ClientConnected()
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.metrics.ClientDisconnected()
	}
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends an event to every client. Clients whose queue is full are
// dropped.
func (h *Hub) Broadcast(event string, data any) {
	payload, err := json.Marshal(outbound{Event: event, Data: data})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("encode broadcast")
		return
	}
	h.mu.Lock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		delete(h.clients, c)
		close(c.send)
		h.metrics.ClientDisconnected()
	}
	h.mu.Unlock()
	for _, c := range slow {
		h.logger.Warn().Msg("dropping slow websocket client")
		_ = c.conn.Close()
	}
}

// BroadcastList sends the full current list as init to every client.
func (h *Hub) BroadcastList(ctx context.Context) {
	list, err := h.svc.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("refresh list failed")
		return
	}
	h.Broadcast(EventInit, list)
}

// Close disconnects every client and refuses new ones. It waits for the
// client goroutines to exit.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c.conn)
	}
	h.mu.Unlock()

	deadline := time.Now().Add(writeWait)
	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"), deadline)
		_ = conn.Close()
	}
	h.wg.Wait()
}

func (h *Hub) handle(c *client, env Envelope) {
	ctx := context.Background()
	switch env.Event {
	case EventSubmit:
		h.handleSubmit(ctx, c, env.Data)
	case EventAdminAction:
		h.handleAdminAction(ctx, c, env.Data)
	default:
		h.logger.Debug().Str("event", env.Event).Msg("ignoring unknown event")
	}
}

func (h *Hub) handleSubmit(ctx context.Context, c *client, raw json.RawMessage) {
	var in domain.SubmissionInput
	if err := json.Unmarshal(raw, &in); err != nil {
		c.emit(EventSubmitError, submitError{Error: "invalid submission payload"})
		return
	}
	sub, err := h.svc.Create(ctx, in)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			c.emit(EventSubmitError, submitError{Error: verr.Error(), Fields: verr.Fields})
		case errors.Is(err, domain.ErrStoreUnavailable):
			c.emit(EventSubmitError, submitError{Error: domain.ErrStoreUnavailable.Error()})
		default:
			c.emit(EventSubmitError, submitError{Error: "failed to save submission"})
		}
		return
	}
	h.Broadcast(EventNewSubmission, sub)

	results := h.svc.Notify(ctx, sub, c.locale)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		res, ok := <-results
		if !ok {
			return
		}
		if res.Fallback {
			c.emit(EventAIMessageError, res.Message)
			return
		}
		c.emit(EventAIMessageResult, res.Message)
	}()
}

func (h *Hub) handleAdminAction(ctx context.Context, c *client, raw json.RawMessage) {
	var p adminActionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.emit(EventAdminError, "invalid admin payload")
		return
	}
	if h.auth != nil {
		if err := h.auth.Authorize(p.Passphrase, p.Token); err != nil {
			c.emit(EventAdminError, "unauthorized")
			return
		}
	}
	list, err := h.svc.Moderate(ctx, p.Type, p.ID)
	if err != nil {
		msg := "admin action failed"
		switch {
		case errors.Is(err, domain.ErrUnknownAction):
			msg = "unknown action"
		case errors.Is(err, domain.ErrStoreUnavailable):
			msg = domain.ErrStoreUnavailable.Error()
		}
		c.emit(EventAdminError, msg)
		return
	}
	h.Broadcast(EventInit, list)
}
