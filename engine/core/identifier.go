package core

import "github.com/google/uuid"

// IdentifierAcquireNew returns a unique identifier for a live engine object.
// Identifiers are never reused within a process.
func IdentifierAcquireNew() string {
	return uuid.New().String()
}
