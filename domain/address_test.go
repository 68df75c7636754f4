package domain

import (
	"testing"

	"dm-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestConversationAddress_Symmetric(t *testing.T) {
	req := require.New(t)

	forward, err := ConversationAddressFor(3, 7)
	req.NoError(err)
	backward, err := ConversationAddressFor(7, 3)
	req.NoError(err)

	req.Equal(forward, backward)
	req.Equal(ConversationAddress("dm:3:7"), forward)
}

func TestConversationAddress_SamePairAlwaysSameAddress(t *testing.T) {
	req := require.New(t)

	first, err := ConversationAddressFor(12, 4)
	req.NoError(err)
	second, err := ConversationAddressFor(12, 4)
	req.NoError(err)

	req.Equal(first, second)
}

func TestConversationAddress_RejectsSelf(t *testing.T) {
	req := require.New(t)

	_, err := ConversationAddressFor(5, 5)
	req.ErrorIs(err, errors.ErrSelfConversation)
}

func TestPersonalAddress_Stable(t *testing.T) {
	req := require.New(t)

	req.Equal(PersonalAddressFor(42), PersonalAddressFor(42))
	req.Equal(PersonalAddress("user:42"), PersonalAddressFor(42))
	req.NotEqual(PersonalAddressFor(1), PersonalAddressFor(2))
}
