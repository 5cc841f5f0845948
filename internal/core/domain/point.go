package domain

import (
	"fmt"
	"time"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
)

// PointStatus is the lifecycle status of an action item.
type PointStatus string

const (
	PointNew       PointStatus = "new"
	PointOpen      PointStatus = "open"
	PointOngoing   PointStatus = "ongoing"
	PointClosed    PointStatus = "closed"
	PointPostponed PointStatus = "postponed"
)

// ParsePointStatus validates a stored point status.
func ParsePointStatus(s string) (PointStatus, error) {
	switch PointStatus(s) {
	case PointNew, PointOpen, PointOngoing, PointClosed, PointPostponed:
		return PointStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown point status %q", apperrors.ErrValidation, s)
}

// PointOwner is the single meeting or series a point belongs to.
// The zero value is not a valid owner; build one with MeetingOwner or SeriesOwner.
type PointOwner struct {
	ref EntityRef
}

// MeetingOwner returns an owner pointing at a meeting.
func MeetingOwner(meetingID string) PointOwner {
	return PointOwner{ref: EntityRef{Type: EntityMeeting, ID: meetingID}}
}

// SeriesOwner returns an owner pointing at a series.
func SeriesOwner(seriesID string) PointOwner {
	return PointOwner{ref: EntityRef{Type: EntitySeries, ID: seriesID}}
}

// OwnerOf returns the owner matching an entity reference.
func OwnerOf(ref EntityRef) PointOwner {
	if ref.Type == EntitySeries {
		return SeriesOwner(ref.ID)
	}
	return MeetingOwner(ref.ID)
}

// OwnerFromColumns rebuilds an owner from the two persisted foreign keys.
// Exactly one of them must be set.
func OwnerFromColumns(meetingID, seriesID *string) (PointOwner, error) {
	switch {
	case meetingID != nil && seriesID == nil:
		return MeetingOwner(*meetingID), nil
	case seriesID != nil && meetingID == nil:
		return SeriesOwner(*seriesID), nil
	}
	return PointOwner{}, fmt.Errorf("%w: point must have exactly one owner", apperrors.ErrValidation)
}

// Ref returns the owning entity.
func (o PointOwner) Ref() EntityRef {
	return o.ref
}

// Columns returns the meeting_id / series_id pair to persist. One is always nil.
func (o PointOwner) Columns() (meetingID, seriesID *string) {
	id := o.ref.ID
	if o.ref.Type == EntitySeries {
		return nil, &id
	}
	return &id, nil
}

// Point is an action item raised in a meeting or series.
type Point struct {
	PointID    string      `json:"pointID"`
	Owner      PointOwner  `json:"-"`
	Title      string      `json:"title"`
	Status     PointStatus `json:"status"`
	AssigneeID *string     `json:"assigneeID,omitempty"`
	ClosedAt   *time.Time  `json:"closedAt,omitempty"`
	AuditFields
}

// IsOpen reports whether the point still needs resolution.
func (p Point) IsOpen() bool {
	return p.Status != PointClosed
}
