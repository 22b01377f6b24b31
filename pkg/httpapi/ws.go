package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/classify"
	"github.com/walteh/bracketlens/pkg/lens"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second
)

// Client message types.
const (
	MessageText   = "text"
	MessageSelect = "select"
	MessageClear  = "clear"
)

// Server message types.
const (
	MessageIntro  = "intro"
	MessageTokens = "tokens"
	MessageResult = "result"
	MessageIdle   = "idle"
	MessageError  = "error"
)

// ClientMessage is sent by the browser: new text, a hovered bracket (by id
// or offset), or loss of focus.
type ClientMessage struct {
	Type   string      `json:"type"`
	Text   string      `json:"text,omitempty"`
	ID     brackets.ID `json:"id,omitempty"`
	Offset *int        `json:"offset,omitempty"`
}

type ServerMessage struct {
	Type    string           `json:"type"`
	Session string           `json:"session,omitempty"`
	Tokens  brackets.Tokens  `json:"tokens,omitempty"`
	Result  *classify.Result `json:"result,omitempty"`
	Message string           `json:"message,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts non-browser clients and pages served from the same host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := h.service.NewSession(ctx)
	ctx = zerolog.Ctx(ctx).With().Str("session", sess.ID().String()).Logger().WithContext(ctx)

	(&wsClient{conn: conn, session: sess}).run(ctx)
}

type wsClient struct {
	conn    *websocket.Conn
	session *lens.Session
	writeMu sync.Mutex
}

func (c *wsClient) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.conn.Close()

	go c.keepAlive(ctx)

	zerolog.Ctx(ctx).Debug().Msg("websocket session started")

	if err := c.send(ServerMessage{
		Type:    MessageIntro,
		Session: c.session.ID().String(),
		Tokens:  c.session.Tokens(),
		Message: c.session.Intro(),
	}); err != nil {
		return
	}

	c.conn.SetReadLimit(maxBodyBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("websocket unexpected close")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := c.send(c.reply(ctx, msg)); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}

func (c *wsClient) reply(ctx context.Context, msg ClientMessage) ServerMessage {
	switch msg.Type {
	case MessageText:
		return ServerMessage{
			Type:    MessageTokens,
			Tokens:  c.session.SetText(ctx, msg.Text),
			Message: c.session.Message(),
		}
	case MessageSelect:
		var (
			res *classify.Result
			ok  bool
		)
		switch {
		case msg.ID != "":
			res, ok = c.session.Select(ctx, msg.ID)
		case msg.Offset != nil:
			res, ok = c.session.SelectOffset(ctx, *msg.Offset)
		default:
			return ServerMessage{Type: MessageError, Message: lens.ErrNoSelection.Error()}
		}
		if !ok {
			return ServerMessage{Type: MessageIdle, Message: lens.IdleMessage}
		}
		return ServerMessage{Type: MessageResult, Result: res, Message: res.Narrative}
	case MessageClear:
		return ServerMessage{Type: MessageIdle, Message: c.session.Clear(ctx)}
	default:
		return ServerMessage{Type: MessageError, Message: "unknown message type " + msg.Type}
	}
}

func (c *wsClient) send(msg ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// keepAlive pings until ctx ends, and closes the connection when the server
// goes away so the read loop returns.
func (c *wsClient) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.writeMu.Lock()
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			c.writeMu.Unlock()
			c.conn.Close()
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
