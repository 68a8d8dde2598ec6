package ids

import "github.com/segmentio/ksuid"

// New returns a time-sortable unique identifier for entities
// (users, rooms, messages, tokens).
func New() string {
	return ksuid.New().String()
}
