package shared

import (
	"time"

	"github.com/google/uuid"
)

// Now is the domain clock, always UTC. Tests swap it to pin dates.
var Now = func() time.Time {
	return time.Now().UTC()
}

// BaseEntity carries identity and audit timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh ID and creation time
func NewBaseEntity() BaseEntity {
	now := Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch marks the entity modified now
func (e *BaseEntity) Touch() {
	e.UpdatedAt = Now()
}
