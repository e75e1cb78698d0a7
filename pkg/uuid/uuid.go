package uuid

import (
	"github.com/segmentio/ksuid"
)

// NewUUID returns a new k-sortable unique identifier.
func NewUUID() string {
	return ksuid.New().String()
}
