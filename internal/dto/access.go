package dto

import (
	"time"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
)

// --- Permission DTOs ---

// PermissionsResponse is the flat snapshot the UI gates controls on. Advisory only.
type PermissionsResponse struct {
	UserID string `json:"userID"`
	domain.Permissions
}

// ToPermissionsResponse converts a domain snapshot to DTO.
func ToPermissionsResponse(userID string, p *domain.Permissions) PermissionsResponse {
	return PermissionsResponse{UserID: userID, Permissions: *p}
}

// ProjectPermissionsResponse lists what the caller may do inside one project.
type ProjectPermissionsResponse struct {
	ProjectID      string   `json:"projectID"`
	CanAccess      bool     `json:"canAccess"`
	Role           *string  `json:"role,omitempty"`
	AllowedActions []string `json:"allowedActions"`
}

// ToProjectPermissionsResponse converts domain.ProjectPermissions to DTO.
func ToProjectPermissionsResponse(p *domain.ProjectPermissions) ProjectPermissionsResponse {
	actions := make([]string, len(p.AllowedActions))
	for i, a := range p.AllowedActions {
		actions[i] = string(a)
	}
	resp := ProjectPermissionsResponse{
		ProjectID:      p.ProjectID,
		CanAccess:      p.CanAccess,
		AllowedActions: actions,
	}
	if p.Role != nil {
		role := string(*p.Role)
		resp.Role = &role
	}
	return resp
}

// CheckPermissionRequest asks whether the caller may perform one action.
type CheckPermissionRequest struct {
	Action    string  `json:"action" binding:"required,permission_action"`
	ProjectID *string `json:"projectID" binding:"omitempty,min=1"`
}

// CheckPermissionResponse is the decision for one action.
type CheckPermissionResponse struct {
	Action    string  `json:"action"`
	ProjectID *string `json:"projectID,omitempty"`
	Allowed   bool    `json:"allowed"`
}

// --- Project Membership DTOs ---

// AssignProjectRoleRequest sets a user's role on a project.
type AssignProjectRoleRequest struct {
	Role string `json:"role" binding:"required,project_role"`
}

// ProjectMemberResponse defines data returned for a project membership.
type ProjectMemberResponse struct {
	ProjectID     string    `json:"projectID"`
	UserID        string    `json:"userID"`
	Role          string    `json:"role"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID
}

// ToProjectMemberResponse converts domain.ProjectMember to DTO.
func ToProjectMemberResponse(m *domain.ProjectMember) ProjectMemberResponse {
	return ProjectMemberResponse{
		ProjectID:     m.ProjectID,
		UserID:        m.UserID,
		Role:          string(m.Role),
		LastUpdatedAt: m.LastUpdatedAt,
		LastUpdatedBy: m.LastUpdatedBy,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}
