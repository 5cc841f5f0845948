// Package authz decides what an actor may do. Every function here is pure:
// decisions depend only on the actor's loaded roles and the role matrix.
package authz

import (
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
)

// Engine evaluates permission checks against a role matrix.
type Engine struct {
	matrix *Matrix
}

// NewEngine builds an engine over m. A nil matrix selects the embedded one.
func NewEngine(m *Matrix) *Engine {
	if m == nil {
		m = DefaultMatrix()
	}
	return &Engine{matrix: m}
}

// Matrix returns the tables the engine decides with.
func (e *Engine) Matrix() *Matrix {
	return e.matrix
}

// GlobalActionSet is the union of the actions granted by every global role the actor holds.
func (e *Engine) GlobalActionSet(actor *domain.Actor) domain.ActionSet {
	set := make(domain.ActionSet)
	if actor == nil {
		return set
	}
	for _, role := range actor.GlobalRoles {
		for a := range e.matrix.GlobalActions(role) {
			set[a] = struct{}{}
		}
	}
	return set
}

// ResolveGlobalPermissions folds the actor's global roles into a flat snapshot.
// Company and project roles do not contribute.
func (e *Engine) ResolveGlobalPermissions(actor *domain.Actor) domain.Permissions {
	set := e.GlobalActionSet(actor)
	p := domain.Permissions{
		MatrixVersion: e.matrix.Version(),

		CanCreateMeetings:     set.Has(domain.ActionMeetingsCreate),
		CanEditMeetings:       set.Has(domain.ActionMeetingsEdit),
		CanCloseMeetings:      set.Has(domain.ActionMeetingsClose),
		CanSendMinutes:        set.Has(domain.ActionMeetingsSendMinutes),
		CanCreatePoints:       set.Has(domain.ActionPointsCreate),
		CanEditAnyPoint:       set.Has(domain.ActionPointsEditAny),
		CanEditAssignedPoints: set.Has(domain.ActionPointsEditAssigned),
		CanAssignPoints:       set.Has(domain.ActionPointsAssign),
		CanUploadAttachments:  set.Has(domain.ActionAttachmentsUpload),
		CanComment:            set.Has(domain.ActionCommentsCreate),
		CanEditAttendance:     set.Has(domain.ActionAttendanceEdit),
		CanViewAllProjects:    set.Has(domain.ActionProjectsViewAll),
		CanCreateProjects:     set.Has(domain.ActionProjectsCreate),
		CanEditProjects:       set.Has(domain.ActionProjectsEdit),
		CanManageUsers:        set.Has(domain.ActionUsersManage),
		CanViewGlobalKpis:     set.Has(domain.ActionKpisViewGlobal),
		CanViewProjectKpis:    set.Has(domain.ActionKpisViewProject),
		CanViewCompanyKpis:    set.Has(domain.ActionKpisViewCompany),
	}
	if actor != nil {
		p.IsBimManager = actor.HasGlobalRole(domain.GlobalBimManager)
		p.IsBimProjectManager = actor.HasGlobalRole(domain.GlobalBimProjectManager)
		p.IsBimCoordinator = actor.HasGlobalRole(domain.GlobalBimCoordinator)
		p.IsViewer = actor.HasGlobalRole(domain.GlobalViewer)
	}
	return p
}

// HasProjectPermission reports whether the actor may perform action inside projectID.
// BIM managers pass every project check. Otherwise only the actor's role on that
// project counts; global and company roles never grant project actions.
func (e *Engine) HasProjectPermission(actor *domain.Actor, action domain.PermissionAction, projectID *string) bool {
	if actor == nil {
		return false
	}
	if actor.IsBimManager() {
		return true
	}
	if projectID == nil {
		return false
	}
	role, ok := actor.ProjectRole(*projectID)
	if !ok {
		return false
	}
	return e.matrix.ProjectActions(role).Has(action)
}

// HasCompanyPermission reports whether the actor may perform action on resources of companyID.
func (e *Engine) HasCompanyPermission(actor *domain.Actor, action domain.PermissionAction, companyID string) bool {
	if actor == nil {
		return false
	}
	if actor.IsBimManager() {
		return true
	}
	if actor.CompanyID == nil || actor.CompanyRole == nil || *actor.CompanyID != companyID {
		return false
	}
	return e.matrix.CompanyActions(*actor.CompanyRole).Has(action)
}

// CanAccessProject is the visibility gate. A nil project means a global view.
func (e *Engine) CanAccessProject(actor *domain.Actor, projectID *string) bool {
	if projectID == nil {
		return true
	}
	if actor == nil {
		return false
	}
	if actor.IsBimManager() {
		return true
	}
	_, ok := actor.ProjectRole(*projectID)
	return ok
}

// CheckPermission is the server-side decision for one action. With a project it
// is a project check; without one the actor's global roles decide.
func (e *Engine) CheckPermission(actor *domain.Actor, action domain.PermissionAction, projectID *string) bool {
	if projectID != nil {
		return e.HasProjectPermission(actor, action, projectID)
	}
	return e.GlobalActionSet(actor).Has(action)
}

// CanCloseEntity applies the close rule: the global capability, or meetings:close
// on the entity's project.
func (e *Engine) CanCloseEntity(actor *domain.Actor, projectID *string) bool {
	if e.ResolveGlobalPermissions(actor).CanCloseMeetings {
		return true
	}
	return projectID != nil && e.HasProjectPermission(actor, domain.ActionMeetingsClose, projectID)
}

// AllowedProjectActions lists, in catalog order, every action the actor may perform in projectID.
func (e *Engine) AllowedProjectActions(actor *domain.Actor, projectID string) []domain.PermissionAction {
	out := make([]domain.PermissionAction, 0)
	for _, a := range domain.AllPermissionActions {
		if e.HasProjectPermission(actor, a, &projectID) {
			out = append(out, a)
		}
	}
	return out
}
