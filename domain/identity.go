// Package domain contains core concepts of the messaging relay.
// No runtime, network, or UI logic should be added here.
package domain

// UserID identifies a registered user.
type UserID int64

// UserIdentity is the verified identity bound to a live connection.
// It is issued once at admission and never changes for the lifetime
// of the connection.
type UserIdentity struct {
	ID          UserID
	DisplayName string
}

// Profile is the public view of a user, safe to return to other users.
type Profile struct {
	ID          UserID `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}
