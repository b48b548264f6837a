package forum

import "github.com/google/uuid"

// IDSource allocates identifiers for new topics and messages. The original
// design derived ids from a millisecond timestamp, which collides under load;
// ids here are required to be unique per allocation.
type IDSource interface {
	NewID() string
}

// UUIDSource allocates random UUIDs. Collisions are negligible, so no
// regeneration loop is needed.
type UUIDSource struct{}

func (UUIDSource) NewID() string {
	return uuid.NewString()
}
