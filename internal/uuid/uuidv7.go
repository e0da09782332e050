// Package uuid generates time-ordered UUIDv7 identifiers. Request IDs use
// v7 so log lines sort chronologically when keyed by ID.
package uuid

import googleuuid "github.com/google/uuid"

// New returns a new UUIDv7 string. Falls back to a random UUIDv4 if the
// system entropy source fails.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
