package domain

import (
	"fmt"
	"time"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
)

// EntityType names the two kinds of schedulable entity that own points.
type EntityType string

const (
	EntityMeeting EntityType = "meeting"
	EntitySeries  EntityType = "series"
)

// ParseEntityType validates an entity type identifier.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityMeeting, EntitySeries:
		return EntityType(s), nil
	}
	return "", fmt.Errorf("%w: unknown entity type %q", apperrors.ErrValidation, s)
}

// EntityRef identifies a meeting or a series.
type EntityRef struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id"`
}

// CacheKey is the invalidation key UI caches use for this entity.
func (r EntityRef) CacheKey() string {
	return string(r.Type) + ":" + r.ID
}

func (r EntityRef) String() string {
	return r.CacheKey()
}

// EntityStatus is the lifecycle status shared by meetings and series.
type EntityStatus string

const (
	StatusScheduled EntityStatus = "scheduled"
	StatusActive    EntityStatus = "active"
	StatusClosed    EntityStatus = "closed"
)

// IsClosed reports whether the status is terminal.
func (s EntityStatus) IsClosed() bool {
	return s == StatusClosed
}

// Meeting is a one-off meeting.
type Meeting struct {
	MeetingID   string       `json:"meetingID"`
	ProjectID   *string      `json:"projectID,omitempty"`
	Title       string       `json:"title"`
	Status      EntityStatus `json:"status"`
	ScheduledAt *time.Time   `json:"scheduledAt,omitempty"`
	ClosedAt    *time.Time   `json:"closedAt,omitempty"`
	AuditFields
}

// MeetingSeries is a recurring meeting. Closure changes only the series row;
// its occurrences are left as they are.
type MeetingSeries struct {
	SeriesID    string              `json:"seriesID"`
	ProjectID   *string             `json:"projectID,omitempty"`
	Title       string              `json:"title"`
	Recurrence  string              `json:"recurrence"`
	Status      EntityStatus        `json:"status"`
	ClosedAt    *time.Time          `json:"closedAt,omitempty"`
	Occurrences []MeetingOccurrence `json:"occurrences,omitempty"`
	AuditFields
}

// MeetingOccurrence is one recurrence instance of a series.
type MeetingOccurrence struct {
	OccurrenceID string    `json:"occurrenceID"`
	SeriesID     string    `json:"seriesID"`
	OccursAt     time.Time `json:"occursAt"`
}

// Entity is the closable view shared by meetings and series.
type Entity struct {
	Ref       EntityRef    `json:"ref"`
	ProjectID *string      `json:"projectID,omitempty"`
	Title     string       `json:"title"`
	Status    EntityStatus `json:"status"`
	ClosedAt  *time.Time   `json:"closedAt,omitempty"`
}

// Entity returns the closable view of the meeting.
func (m Meeting) Entity() Entity {
	return Entity{
		Ref:       EntityRef{Type: EntityMeeting, ID: m.MeetingID},
		ProjectID: m.ProjectID,
		Title:     m.Title,
		Status:    m.Status,
		ClosedAt:  m.ClosedAt,
	}
}

// Entity returns the closable view of the series.
func (s MeetingSeries) Entity() Entity {
	return Entity{
		Ref:       EntityRef{Type: EntitySeries, ID: s.SeriesID},
		ProjectID: s.ProjectID,
		Title:     s.Title,
		Status:    s.Status,
		ClosedAt:  s.ClosedAt,
	}
}

// SameProject reports whether two optional project ids denote the same scope.
// Two entities without a project share the global scope.
func SameProject(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// OpenEntities is the target discovery result, grouped for presentation.
type OpenEntities struct {
	Meetings []Entity `json:"meetings"`
	Series   []Entity `json:"series"`
}
