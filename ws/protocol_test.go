package ws

import (
	"testing"

	"dm-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestClientFrame_Validate(t *testing.T) {
	tests := []struct {
		description string
		frame       ClientFrame
		wantErr     bool
	}{
		{
			"Should accept a complete send frame",
			ClientFrame{Type: TypeSend, ToUserID: 2, Body: "hello"},
			false,
		},
		{
			"Should accept a join frame",
			ClientFrame{Type: TypeJoin, OtherUserID: 2},
			false,
		},
		{
			"Should accept a history frame with a limit",
			ClientFrame{Type: TypeHistory, OtherUserID: 2, Limit: 10},
			false,
		},
		{
			"Should accept a history frame without a limit",
			ClientFrame{Type: TypeHistory, OtherUserID: 2},
			false,
		},
		{
			"Should reject an empty type",
			ClientFrame{ToUserID: 2, Body: "hello"},
			true,
		},
		{
			"Should reject an unknown type",
			ClientFrame{Type: "shout", ToUserID: 2, Body: "hello"},
			true,
		},
		{
			"Should reject a send frame without a recipient",
			ClientFrame{Type: TypeSend, Body: "hello"},
			true,
		},
		{
			"Should reject a send frame without a body",
			ClientFrame{Type: TypeSend, ToUserID: 2},
			true,
		},
		{
			"Should reject a join frame without the other user",
			ClientFrame{Type: TypeJoin},
			true,
		},
		{
			"Should reject a negative history limit",
			ClientFrame{Type: TypeHistory, OtherUserID: 2, Limit: -1},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			err := tt.frame.Validate()
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidPayload)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestErrorFrame(t *testing.T) {
	req := require.New(t)

	frame := errorFrame(errors.ErrRecipientNotFound)
	req.Equal(TypeError, frame.Type)
	req.Equal(errors.CodeRecipientNotFound, frame.Code)
	req.Equal("recipient not found", frame.Detail)

	frame = errorFrame(errors.ErrSelfConversation)
	req.Equal(errors.CodeInvalidPayload, frame.Code)

	// Unrecognized errors must not leak their text onto the wire
	frame = errorFrame(errors.ErrStore)
	req.Equal(errors.CodeStoreError, frame.Code)
	req.Equal("store failure", frame.Detail)
}
