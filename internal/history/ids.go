package history

import "github.com/google/uuid"

// IDGenerator generates record ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
// It is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
