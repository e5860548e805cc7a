// Package models defines the core data structures for users, their
// issued tokens, and todos.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessAuth is the access label carried by regular authentication tokens.
const AccessAuth = "auth"

// TokenEntry is one issued token stored on a user record. A token is
// only honored while its entry is still present in the list, so removing
// the entry revokes the token regardless of signature validity.
type TokenEntry struct {
	// Access is the scope label of the token ("auth").
	Access string `bson:"access" json:"access"`
	// Token is the signed token string exactly as issued to the client.
	Token string `bson:"token" json:"token"`
}

// User represents an application user with credentials.
type User struct {
	// ID is the store-assigned identifier of the user.
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	// Email is the unique, lowercased email address.
	Email string `bson:"email" json:"email"`
	// PasswordHash is the bcrypt hash of the password. Never serialized
	// outward.
	PasswordHash string `bson:"password" json:"-"`
	// Tokens is the ordered list of currently valid issued tokens.
	Tokens []TokenEntry `bson:"tokens" json:"-"`
}

// Todo represents a single todo item owned by a user.
type Todo struct {
	// ID is the store-assigned identifier of the todo.
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	// Text is the trimmed, non-empty todo text.
	Text string `bson:"text" json:"text"`
	// Completed reports whether the todo is done.
	Completed bool `bson:"completed" json:"completed"`
	// CompletedAt is the completion time in epoch milliseconds. It is
	// non-nil exactly when Completed is true.
	CompletedAt *int64 `bson:"completedAt" json:"completedAt"`
	// Creator is the id of the owning user. Ownership scoping happens in
	// the store queries; the field is never serialized to clients.
	Creator primitive.ObjectID `bson:"_creator" json:"-"`
}

// TodoPatch is the allow-listed update applied to a todo. Only the text
// and the completion state can change; id and creator are not
// representable here.
type TodoPatch struct {
	// Text replaces the todo text when non-nil.
	Text *string
	// Completed is the new completion state. False clears CompletedAt.
	Completed bool
	// CompletedAt is the completion timestamp to store, nil when
	// Completed is false.
	CompletedAt *int64
}
