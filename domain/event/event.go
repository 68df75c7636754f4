// Package event defines the events fanned out to live connections.
package event

import (
	"dm-relay/domain"
)

// DomainEvent is anything pushed to a connection sink.
type DomainEvent interface {
	Recipient() domain.UserID
}

// MessageDelivered carries a message view to one recipient's
// personal address. Every live connection of that user receives it.
type MessageDelivered struct {
	To   domain.UserID
	View domain.MessageView
}

func (m MessageDelivered) Recipient() domain.UserID {
	return m.To
}
