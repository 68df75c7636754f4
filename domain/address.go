package domain

import (
	"fmt"

	"dm-relay/errors"
)

// PersonalAddress is the routing target reaching every live connection
// of one user. Delivery always goes through it, regardless of which
// conversation a client is currently viewing.
type PersonalAddress string

// ConversationAddress identifies one unordered pair of users. Clients
// use it for "which thread is active" bookkeeping only.
type ConversationAddress string

// PersonalAddressFor is a pure function of the user id.
func PersonalAddressFor(id UserID) PersonalAddress {
	return PersonalAddress(fmt.Sprintf("user:%d", id))
}

// ConversationAddressFor sorts the pair ascending before combining, so
// the address is identical regardless of argument order. A user cannot
// converse with themself.
func ConversationAddressFor(a, b UserID) (ConversationAddress, error) {
	if a == b {
		return "", errors.ErrSelfConversation
	}
	low, high := SortedPair(a, b)
	return ConversationAddress(fmt.Sprintf("dm:%d:%d", low, high)), nil
}

// SortedPair returns the two ids in ascending order.
func SortedPair(a, b UserID) (UserID, UserID) {
	if b < a {
		return b, a
	}
	return a, b
}
