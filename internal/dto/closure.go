package dto

import (
	"time"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
)

// --- Closure DTOs ---

// EntityRefRequest identifies a meeting or series in a request body.
type EntityRefRequest struct {
	Type string `json:"type" binding:"required,entity_type"`
	ID   string `json:"id" binding:"required"`
}

// CloseEntityRequest is the decision the caller made for the open points.
// Target is required only for mode=move when open points exist.
type CloseEntityRequest struct {
	Mode   string            `json:"mode" binding:"required,closure_mode"`
	Target *EntityRefRequest `json:"target" binding:"omitempty"`
}

// ToClosureRequest converts the body into a domain request for ref.
func (r CloseEntityRequest) ToClosureRequest(ref domain.EntityRef) domain.ClosureRequest {
	req := domain.ClosureRequest{Entity: ref, Mode: domain.ClosureMode(r.Mode)}
	if r.Target != nil {
		req.Target = &domain.EntityRef{Type: domain.EntityType(r.Target.Type), ID: r.Target.ID}
	}
	return req
}

// EntityRefResponse identifies a meeting or series.
type EntityRefResponse struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func toEntityRefResponse(ref domain.EntityRef) EntityRefResponse {
	return EntityRefResponse{Type: string(ref.Type), ID: ref.ID}
}

// ClosureResultResponse is returned after a successful close. InvalidationKeys
// name the cached views that are now stale.
type ClosureResultResponse struct {
	EntityType         string             `json:"entityType"`
	EntityID           string             `json:"entityID"`
	NewStatus          string             `json:"newStatus"`
	ClosedAt           time.Time          `json:"closedAt"`
	Mode               string             `json:"mode,omitempty"`
	AffectedPointCount int                `json:"affectedPointCount"`
	Target             *EntityRefResponse `json:"target,omitempty"`
	InvalidationKeys   []string           `json:"invalidationKeys"`
}

// ToClosureResultResponse converts domain.ClosureResult to DTO.
func ToClosureResultResponse(r *domain.ClosureResult) ClosureResultResponse {
	resp := ClosureResultResponse{
		EntityType:         string(r.EntityType),
		EntityID:           r.EntityID,
		NewStatus:          string(r.NewStatus),
		ClosedAt:           r.ClosedAt,
		Mode:               string(r.Mode),
		AffectedPointCount: r.AffectedPointCount,
		InvalidationKeys:   r.InvalidationKeys,
	}
	if r.Target != nil {
		target := toEntityRefResponse(*r.Target)
		resp.Target = &target
	}
	return resp
}

// EntityResponse defines data returned for a meeting or series.
type EntityResponse struct {
	Type      string     `json:"type"`
	ID        string     `json:"id"`
	ProjectID *string    `json:"projectID,omitempty"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
}

// ToEntityResponse converts domain.Entity to DTO.
func ToEntityResponse(e *domain.Entity) EntityResponse {
	return EntityResponse{
		Type:      string(e.Ref.Type),
		ID:        e.Ref.ID,
		ProjectID: e.ProjectID,
		Title:     e.Title,
		Status:    string(e.Status),
		ClosedAt:  e.ClosedAt,
	}
}

func toEntityResponses(es []domain.Entity) []EntityResponse {
	list := make([]EntityResponse, len(es))
	for i := range es {
		list[i] = ToEntityResponse(&es[i])
	}
	return list
}

// CloseTargetsResponse lists where open points may be moved, grouped by type.
type CloseTargetsResponse struct {
	Meetings []EntityResponse `json:"meetings"`
	Series   []EntityResponse `json:"series"`
}

// ToCloseTargetsResponse converts domain.OpenEntities to DTO.
func ToCloseTargetsResponse(o *domain.OpenEntities) CloseTargetsResponse {
	return CloseTargetsResponse{
		Meetings: toEntityResponses(o.Meetings),
		Series:   toEntityResponses(o.Series),
	}
}

// ClosurePreviewResponse tells the UI whether to ask for a close/move decision.
type ClosurePreviewResponse struct {
	Entity         EntityResponse `json:"entity"`
	OpenPointCount int            `json:"openPointCount"`
	NeedsDecision  bool           `json:"needsDecision"`
	CanClose       bool           `json:"canClose"`
}

// ToClosurePreviewResponse converts domain.ClosurePreview to DTO.
func ToClosurePreviewResponse(p *domain.ClosurePreview) ClosurePreviewResponse {
	return ClosurePreviewResponse{
		Entity:         ToEntityResponse(&p.Entity),
		OpenPointCount: p.OpenPointCount,
		NeedsDecision:  p.NeedsDecision,
		CanClose:       p.CanClose,
	}
}
