// This file defines Message records and their outbound view.
// Messages are immutable once persisted; the store assigns id and timestamp.
package domain

import "time"

// Message is one persisted direct message.
type Message struct {
	ID         int64
	FromUserID UserID
	ToUserID   UserID
	Body       string
	CreatedAt  time.Time
}

// MessageView is the outbound representation pushed to connections:
// the persisted fields enriched with both participants' display names.
type MessageView struct {
	ID              int64     `json:"id"`
	FromUserID      UserID    `json:"from_user_id"`
	ToUserID        UserID    `json:"to_user_id"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
	FromDisplayName string    `json:"from_display_name"`
	ToDisplayName   string    `json:"to_display_name"`
}

// NewMessageView enriches a persisted message with display names.
func NewMessageView(m Message, fromName, toName string) MessageView {
	return MessageView{
		ID:              m.ID,
		FromUserID:      m.FromUserID,
		ToUserID:        m.ToUserID,
		Body:            m.Body,
		CreatedAt:       m.CreatedAt,
		FromDisplayName: fromName,
		ToDisplayName:   toName,
	}
}
