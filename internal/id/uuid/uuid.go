// Package uuid generates request identifiers.
package uuid

import (
	"strings"

	"github.com/google/uuid"
)

// Generator creates UUID strings.
type Generator struct{}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// NewID returns a time-ordered UUIDv7 string, or a v4 when v7 generation fails.
func (Generator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Resolve keeps a caller-supplied id when it parses as a UUID and mints one otherwise.
func (g Generator) Resolve(incoming string) string {
	if id, err := uuid.Parse(strings.TrimSpace(incoming)); err == nil {
		return id.String()
	}
	return g.NewID()
}
