package services

import "github.com/google/uuid"

// newID returns a typed opaque identifier, e.g. "ticket_2f3a...".
func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
