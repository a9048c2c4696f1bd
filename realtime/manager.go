package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/models"
	"go.uber.org/zap"
)

// Messages reported to the originating connection only.
const (
	ErrTextInvalidPayload = "Invalid payload"
	ErrTextUnknownEvent   = "Unknown event"
	ErrTextNotSent        = "Message not sent"
)

// MessageSender persists a message and fans it out to both participants.
type MessageSender interface {
	SendMessage(ctx context.Context, senderID uuid.UUID, event models.SendMessageEvent) (*models.Message, error)
}

// Manager runs the event loop of authenticated sockets.
type Manager struct {
	hub    *Hub
	sender MessageSender
	opts   Options
	logger *zap.SugaredLogger
}

func NewManager(hub *Hub, sender MessageSender, opts Options, logger *zap.SugaredLogger) *Manager {
	return &Manager{hub: hub, sender: sender, opts: opts.withDefaults(), logger: logger}
}

func (m *Manager) Hub() *Hub {
	return m.hub
}

// Serve owns ws until the peer disconnects. userID must already be verified.
func (m *Manager) Serve(ctx context.Context, userID uuid.UUID, ws *websocket.Conn) {
	conn := NewConnection(userID, ws, m.opts)
	m.hub.Attach(conn)
	defer func() {
		m.hub.Detach(conn)
		conn.Close(websocket.CloseNormalClosure, "")
	}()

	_ = conn.SendEvent(models.ConnectedEvent{UserID: userID})

	err := conn.ReadLoop(func(frame []byte) {
		m.handleFrame(ctx, conn, frame)
	})
	if err != nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		m.logger.Infow("socket closed", "userId", userID, "error", err)
	}
}

// Events of one connection are handled in arrival order.
func (m *Manager) handleFrame(ctx context.Context, conn *Connection, frame []byte) {
	var env models.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		m.reply(conn, ErrTextInvalidPayload)
		return
	}

	switch env.Event {
	case models.EventSendMessage:
		event, err := models.DecodeSendMessage(env)
		if err != nil {
			m.reply(conn, ErrTextInvalidPayload)
			return
		}
		if _, err := m.sender.SendMessage(ctx, conn.UserID, event); err != nil {
			if errs.IsKind(err, errs.KindValidation) {
				m.reply(conn, err.Error())
				return
			}
			m.logger.Errorw("send message over socket", "userId", conn.UserID, "error", err)
			m.reply(conn, ErrTextNotSent)
		}
	default:
		m.reply(conn, ErrTextUnknownEvent)
	}
}

func (m *Manager) reply(conn *Connection, message string) {
	_ = conn.SendEvent(models.ErrorEvent{Message: message})
}
