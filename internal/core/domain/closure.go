package domain

import (
	"fmt"
	"time"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
)

// ClosureMode decides what happens to the open points of a closing entity.
type ClosureMode string

const (
	// ClosureModeClose resolves every open point in place.
	ClosureModeClose ClosureMode = "close"
	// ClosureModeMove re-owns every open point to another open entity.
	ClosureModeMove ClosureMode = "move"
)

// ParseClosureMode validates a closure mode.
func ParseClosureMode(s string) (ClosureMode, error) {
	switch ClosureMode(s) {
	case ClosureModeClose, ClosureModeMove:
		return ClosureMode(s), nil
	}
	return "", fmt.Errorf("%w: unknown closure mode %q", apperrors.ErrValidation, s)
}

// ClosureRequest is one close invocation against a single entity.
type ClosureRequest struct {
	Entity EntityRef
	Mode   ClosureMode
	Target *EntityRef
}

// ClosureResult reports the outcome of a closure and the views callers must refresh.
// Mode and Target are empty when the entity had no open points.
type ClosureResult struct {
	EntityType         EntityType   `json:"entityType"`
	EntityID           string       `json:"entityID"`
	NewStatus          EntityStatus `json:"newStatus"`
	ClosedAt           time.Time    `json:"closedAt"`
	Mode               ClosureMode  `json:"mode,omitempty"`
	AffectedPointCount int          `json:"affectedPointCount"`
	Target             *EntityRef   `json:"target,omitempty"`
	InvalidationKeys   []string     `json:"invalidationKeys"`
}

// List view keys refreshed after every closure.
const (
	CacheKeyPoints    = "points"
	CacheKeyMeetings  = "meetings"
	CacheKeySeries    = "series"
	CacheKeyAttendees = "attendees"
)

// ClosurePreview tells the UI whether a close needs a mode/target choice.
type ClosurePreview struct {
	Entity         Entity `json:"entity"`
	OpenPointCount int    `json:"openPointCount"`
	NeedsDecision  bool   `json:"needsDecision"`
	CanClose       bool   `json:"canClose"`
}
