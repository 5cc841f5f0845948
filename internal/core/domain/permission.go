package domain

import (
	"fmt"
	"strings"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
)

// PermissionAction is a fine-grained action identifier checked by the authorization engine.
type PermissionAction string

const (
	ActionMeetingsCreate      PermissionAction = "meetings:create"
	ActionMeetingsEdit        PermissionAction = "meetings:edit"
	ActionMeetingsClose       PermissionAction = "meetings:close"
	ActionMeetingsSendMinutes PermissionAction = "meetings:send_minutes"
	ActionPointsCreate        PermissionAction = "points:create"
	ActionPointsEditAny       PermissionAction = "points:edit:any"
	ActionPointsEditAssigned  PermissionAction = "points:edit:assigned"
	ActionPointsAssign        PermissionAction = "points:assign"
	ActionAttachmentsUpload   PermissionAction = "attachments:upload"
	ActionCommentsCreate      PermissionAction = "comments:create"
	ActionAttendanceEdit      PermissionAction = "attendance:edit"
	ActionProjectsViewAll     PermissionAction = "projects:view_all"
	ActionProjectsCreate      PermissionAction = "projects:create"
	ActionProjectsEdit        PermissionAction = "projects:edit"
	ActionUsersManage         PermissionAction = "users:manage"
	ActionKpisViewGlobal      PermissionAction = "kpis:view_global"
	ActionKpisViewProject     PermissionAction = "kpis:view_project"
	ActionKpisViewCompany     PermissionAction = "kpis:view_company"
)

// AllPermissionActions is the closed action catalog. It is versioned together with the role matrix.
var AllPermissionActions = []PermissionAction{
	ActionMeetingsCreate,
	ActionMeetingsEdit,
	ActionMeetingsClose,
	ActionMeetingsSendMinutes,
	ActionPointsCreate,
	ActionPointsEditAny,
	ActionPointsEditAssigned,
	ActionPointsAssign,
	ActionAttachmentsUpload,
	ActionCommentsCreate,
	ActionAttendanceEdit,
	ActionProjectsViewAll,
	ActionProjectsCreate,
	ActionProjectsEdit,
	ActionUsersManage,
	ActionKpisViewGlobal,
	ActionKpisViewProject,
	ActionKpisViewCompany,
}

// ParsePermissionAction converts an identifier into a PermissionAction, rejecting unknown ones.
func ParsePermissionAction(s string) (PermissionAction, error) {
	for _, a := range AllPermissionActions {
		if string(a) == strings.TrimSpace(s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unknown permission action %q", apperrors.ErrValidation, s)
}

// ActionSet is a set of permission actions.
type ActionSet map[PermissionAction]struct{}

// Has reports whether the set contains the action.
func (s ActionSet) Has(a PermissionAction) bool {
	_, ok := s[a]
	return ok
}

// Sorted returns the actions of the set in catalog order.
func (s ActionSet) Sorted() []PermissionAction {
	out := make([]PermissionAction, 0, len(s))
	for _, a := range AllPermissionActions {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// Permissions is the flat, global-scope capability snapshot derived from an actor's global roles.
// It is advisory for UI gating; mutations re-check on the server.
type Permissions struct {
	MatrixVersion int `json:"matrixVersion"`

	CanCreateMeetings      bool `json:"canCreateMeetings"`
	CanEditMeetings        bool `json:"canEditMeetings"`
	CanCloseMeetings       bool `json:"canCloseMeetings"`
	CanSendMinutes         bool `json:"canSendMinutes"`
	CanCreatePoints        bool `json:"canCreatePoints"`
	CanEditAnyPoint        bool `json:"canEditAnyPoint"`
	CanEditAssignedPoints  bool `json:"canEditAssignedPoints"`
	CanAssignPoints        bool `json:"canAssignPoints"`
	CanUploadAttachments   bool `json:"canUploadAttachments"`
	CanComment             bool `json:"canComment"`
	CanEditAttendance      bool `json:"canEditAttendance"`
	CanViewAllProjects     bool `json:"canViewAllProjects"`
	CanCreateProjects      bool `json:"canCreateProjects"`
	CanEditProjects        bool `json:"canEditProjects"`
	CanManageUsers         bool `json:"canManageUsers"`
	CanViewGlobalKpis      bool `json:"canViewGlobalKpis"`
	CanViewProjectKpis     bool `json:"canViewProjectKpis"`
	CanViewCompanyKpis     bool `json:"canViewCompanyKpis"`

	IsBimManager        bool `json:"isBimManager"`
	IsBimProjectManager bool `json:"isBimProjectManager"`
	IsBimCoordinator    bool `json:"isBimCoordinator"`
	IsViewer            bool `json:"isViewer"`
}

// ProjectPermissions lists what an actor may do inside one project.
type ProjectPermissions struct {
	ProjectID      string             `json:"projectID"`
	CanAccess      bool               `json:"canAccess"`
	Role           *ProjectRole       `json:"role,omitempty"`
	AllowedActions []PermissionAction `json:"allowedActions"`
}
