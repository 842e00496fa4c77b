package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/view"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	opTimeout      = 15 * time.Second
)

// Message types sent to the client.
const (
	msgState  = "state"
	msgNotice = "notice"
	msgAck    = "ack"
)

// Operations accepted from the client.
const (
	opCreate = "create"
	opDelete = "delete"
)

type stateMessage struct {
	Type      string            `json:"type"`
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

type noticeMessage struct {
	Type string `json:"type"`
	view.Notice
}

type ackMessage struct {
	Type string `json:"type"`
	Ref  string `json:"ref,omitempty"`
	OK   bool   `json:"ok"`
}

type liveOp struct {
	Op    string `json:"op"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	ID    string `json:"id,omitempty"`
	Ref   string `json:"ref,omitempty"`
}

// Live serves one mounted view over a WebSocket. The server pushes the whole
// list after every change; the client sends create and delete operations,
// each answered by an ack and, on failure, a notice.
func Live(d deps.Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     sameOriginOr(d.CORSOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromRequest(r)
		if _, err := d.Sessions.Parse(token); err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: domain.MsgLoginRequired})
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied to the client.
			d.Logger.Debug("websocket upgrade failed", logger.Error(err))
			return
		}

		s := &liveSession{
			conn:    conn,
			out:     make(chan any, 32),
			limiter: rate.NewLimiter(rate.Limit(d.RateLimit), max(d.RateBurst, 1)),
			logger:  d.Logger,
		}
		s.serve(r.Context(), d, token)
	}
}

type liveSession struct {
	conn    *websocket.Conn
	out     chan any
	limiter *rate.Limiter
	logger  logger.Logger
	ctx     context.Context
}

func (s *liveSession) serve(parent context.Context, d deps.Deps, token string) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	s.ctx = ctx

	v, err := view.Mount(ctx, view.MountOptions{
		Collection: d.Collection,
		Feed:       d.Feed,
		Session:    d.Sessions.Session(token),
		Notifier:   view.NotifierFunc(func(n view.Notice) { s.send(noticeMessage{Type: msgNotice, Notice: n}) }),
		Logger:     d.Logger,
	})
	if err != nil {
		d.Logger.Warn("failed to mount live view", logger.Error(err))
		s.closeWith(websocket.CloseInternalServerErr, domain.UserMessage(err))
		return
	}
	d.Views.Add(v)
	defer func() {
		d.Views.Remove(v)
		v.Unmount()
	}()

	s.logger = d.Logger.With(logger.String("view_id", v.ID))
	s.logger.Debug("live view connected", logger.String("user_id", v.User.ID))

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, v)
	}()

	s.readLoop(v)
	cancel()
	<-writerDone

	s.logger.Debug("live view disconnected")
}

// send queues a message for the writer. It drops the message once the
// connection is going away.
func (s *liveSession) send(msg any) {
	select {
	case s.out <- msg:
	case <-s.ctx.Done():
	}
}

// writeLoop is the only goroutine writing to the connection. It returns when
// the reader stops or the view is unmounted, closing the connection either way.
func (s *liveSession) writeLoop(ctx context.Context, v *view.View) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	if err := s.write(stateMessage{Type: msgState, Bookmarks: v.Snapshot()}); err != nil {
		return
	}

	for {
		select {
		case <-v.Changed():
			if err := s.write(stateMessage{Type: msgState, Bookmarks: v.Snapshot()}); err != nil {
				return
			}
		case msg := <-s.out:
			if err := s.write(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-v.Done():
			s.closeWith(websocket.CloseGoingAway, "view closed, reconnect")
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *liveSession) write(msg any) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug("websocket write failed", logger.Error(err))
		return err
	}
	return nil
}

func (s *liveSession) closeWith(code int, reason string) {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait))
	_ = s.conn.Close()
}

func (s *liveSession) readLoop(v *view.View) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed unexpectedly", logger.Error(err))
			}
			return
		}

		var op liveOp
		if err := json.Unmarshal(data, &op); err != nil {
			s.logger.Debug("malformed live operation", logger.Error(err))
			s.send(ackMessage{Type: msgAck, OK: false})
			continue
		}

		if !s.limiter.Allow() {
			s.send(noticeMessage{Type: msgNotice, Notice: view.Notice{
				Level: view.LevelInline, Message: "Too many requests, slow down.", Ref: op.Ref,
			}})
			s.send(ackMessage{Type: msgAck, Ref: op.Ref, OK: false})
			continue
		}

		// Each operation runs on its own goroutine so a slow backend never
		// stalls reading or feed delivery.
		go s.dispatch(v, op)
	}
}

// dispatch runs one operation to completion even if the socket drops
// meanwhile, so a submitted delete is not left half done.
func (s *liveSession) dispatch(v *view.View, op liveOp) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), opTimeout)
	defer cancel()

	var err error
	switch op.Op {
	case opCreate:
		err = v.Create(ctx, domain.Draft{Title: op.Title, URL: op.URL}, op.Ref)
	case opDelete:
		err = v.Delete(ctx, op.ID, op.Ref)
	default:
		s.logger.Debug("unknown live operation", logger.String("op", op.Op))
		s.send(ackMessage{Type: msgAck, Ref: op.Ref, OK: false})
		return
	}

	s.send(ackMessage{Type: msgAck, Ref: op.Ref, OK: err == nil})
}

// sameOriginOr accepts requests without an Origin header, from the serving
// host itself and from the listed origins.
func sameOriginOr(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}
