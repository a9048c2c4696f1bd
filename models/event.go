package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Realtime event names.
const (
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventError          = "error"
	EventConnected      = "connected"
)

// Envelope is the frame exchanged on the realtime channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SendMessageEvent is the client request to send a direct message. The request
// endpoint binds the same payload.
type SendMessageEvent struct {
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

// Complete reports whether both fields carry a value.
func (e SendMessageEvent) Complete() bool {
	return strings.TrimSpace(e.ReceiverID) != "" && strings.TrimSpace(e.Text) != ""
}

type ReceiveMessageEvent struct {
	Message Message
}

type ErrorEvent struct {
	Message string `json:"message"`
}

type ConnectedEvent struct {
	UserID uuid.UUID `json:"userId"`
}

// ServerEvent is anything the server pushes to a connection.
type ServerEvent interface {
	EventName() string
	payload() any
}

func (e ReceiveMessageEvent) EventName() string { return EventReceiveMessage }
func (e ReceiveMessageEvent) payload() any      { return e.Message }
func (e ErrorEvent) EventName() string          { return EventError }
func (e ErrorEvent) payload() any               { return e }
func (e ConnectedEvent) EventName() string      { return EventConnected }
func (e ConnectedEvent) payload() any           { return e }

// Encode renders a server event as its envelope frame.
func Encode(e ServerEvent) ([]byte, error) {
	data, err := json.Marshal(e.payload())
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.EventName(), Data: data})
}

// DecodeSendMessage reads the data of a sendMessage frame.
func DecodeSendMessage(env Envelope) (SendMessageEvent, error) {
	var e SendMessageEvent
	if len(env.Data) == 0 {
		return e, nil
	}
	err := json.Unmarshal(env.Data, &e)
	return e, err
}
