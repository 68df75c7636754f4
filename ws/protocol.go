// Package ws is the WebSocket transport: it admits connections,
// speaks the JSON frame protocol, and bridges live connections to the
// relay through the registry.
package ws

import (
	"dm-relay/domain"
	"dm-relay/errors"

	"github.com/go-playground/validator/v10"
)

// Client frame types.
const (
	TypeSend    = "send"
	TypeJoin    = "join"
	TypeHistory = "history"
)

// Server frame types.
const (
	TypeSent     = "sent"
	TypeReceived = "received"
	TypeJoined   = "joined"
	TypeError    = "error"
)

var frameValidator = validator.New(validator.WithRequiredStructEnabled())

// ClientFrame is one command read from a connection. Which fields are
// meaningful depends on Type; the validate tags enforce the per-type
// shape at the boundary so malformed frames never reach the relay.
type ClientFrame struct {
	Type        string        `json:"type" validate:"required,oneof=send join history"`
	ToUserID    domain.UserID `json:"to_user_id,omitempty" validate:"required_if=Type send"`
	OtherUserID domain.UserID `json:"other_user_id,omitempty" validate:"required_unless=Type send"`
	Body        string        `json:"body,omitempty" validate:"required_if=Type send"`
	Limit       int           `json:"limit,omitempty" validate:"omitempty,gte=0"`
}

// Validate checks the frame shape. Any violation is a protocol error,
// reported to the caller and never fatal to the connection.
func (f ClientFrame) Validate() error {
	if err := frameValidator.Struct(f); err != nil {
		return errors.ErrInvalidPayload
	}
	return nil
}

// ServerFrame is one event written to a connection. Only the fields
// belonging to its Type are set; the rest are omitted on the wire.
type ServerFrame struct {
	Type         string                     `json:"type"`
	Message      *domain.MessageView        `json:"message,omitempty"`
	Conversation domain.ConversationAddress `json:"conversation,omitempty"`
	Profile      *domain.Profile            `json:"profile,omitempty"`
	OtherUserID  domain.UserID              `json:"other_user_id,omitempty"`
	Messages     []domain.MessageView       `json:"messages,omitempty"`
	Code         string                     `json:"code,omitempty"`
	Detail       string                     `json:"detail,omitempty"`
}

// sentFrame acknowledges a send to its author with the persisted view.
func sentFrame(view domain.MessageView) ServerFrame {
	return ServerFrame{Type: TypeSent, Message: &view}
}

// receivedFrame pushes a delivery to a recipient connection.
func receivedFrame(view domain.MessageView) ServerFrame {
	return ServerFrame{Type: TypeReceived, Message: &view}
}

func joinedFrame(address domain.ConversationAddress, profile domain.Profile) ServerFrame {
	return ServerFrame{Type: TypeJoined, Conversation: address, Profile: &profile}
}

func historyFrame(otherUserID domain.UserID, views []domain.MessageView) ServerFrame {
	return ServerFrame{Type: TypeHistory, OtherUserID: otherUserID, Messages: views}
}

// errorFrame reports a failed command. The detail is a fixed phrase
// per code so internal error text never leaks onto the wire.
func errorFrame(err error) ServerFrame {
	code := errors.CodeFor(err)
	return ServerFrame{Type: TypeError, Code: code, Detail: detailFor(code)}
}

func detailFor(code string) string {
	switch code {
	case errors.CodeInvalidPayload:
		return "invalid payload"
	case errors.CodeRecipientNotFound:
		return "recipient not found"
	default:
		return "store failure"
	}
}
