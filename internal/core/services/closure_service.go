package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/authz"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
	portsrepo "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/repositories"
	portssvc "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/services"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/platform/metrics"
)

// modeNone labels closures that had no open points to resolve.
const modeNone = "none"

// closureService closes meetings and series.
type closureService struct {
	BaseService
	meetingRepo portsrepo.MeetingRepositoryWithTx
	actors      portssvc.ActorProviderSvc
	engine      *authz.Engine
	metrics     *metrics.Metrics
	clock       Clock
}

// ClosureServiceOption configures a closure service.
type ClosureServiceOption func(*closureService)

// WithClosureClock overrides the clock that stamps closed_at.
func WithClosureClock(c Clock) ClosureServiceOption {
	return func(s *closureService) {
		s.clock = c
	}
}

// WithClosureMetrics records closure outcomes on m.
func WithClosureMetrics(m *metrics.Metrics) ClosureServiceOption {
	return func(s *closureService) {
		s.metrics = m
	}
}

// NewClosureService creates a closure service.
func NewClosureService(
	meetingRepo portsrepo.MeetingRepositoryWithTx,
	actors portssvc.ActorProviderSvc,
	engine *authz.Engine,
	opts ...ClosureServiceOption,
) portssvc.ClosureSvcFacade {
	s := &closureService{
		meetingRepo: meetingRepo,
		actors:      actors,
		engine:      engine,
		clock:       systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.ClosureSvcFacade = (*closureService)(nil)

func validateRef(ref domain.EntityRef) error {
	if _, err := domain.ParseEntityType(string(ref.Type)); err != nil {
		return err
	}
	if strings.TrimSpace(ref.ID) == "" {
		return fmt.Errorf("%w: entity id is required", apperrors.ErrValidation)
	}
	return nil
}

func validateClosureRequest(req domain.ClosureRequest) error {
	if err := validateRef(req.Entity); err != nil {
		return err
	}
	if _, err := domain.ParseClosureMode(string(req.Mode)); err != nil {
		return err
	}
	return nil
}

// isDecision reports whether err is an outcome the workflow produced itself
// rather than a store failure.
func isDecision(err error) bool {
	var appErr *apperrors.AppError
	return errors.Is(err, apperrors.ErrForbidden) ||
		errors.Is(err, apperrors.ErrAlreadyClosed) ||
		errors.Is(err, apperrors.ErrInvalidTarget) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.As(err, &appErr)
}

// CloseEntity closes a meeting or series and resolves every point still open on it.
// All writes happen in one transaction; any failure leaves the store untouched.
func (s *closureService) CloseEntity(ctx context.Context, userID string, req domain.ClosureRequest) (*domain.ClosureResult, error) {
	if err := validateClosureRequest(req); err != nil {
		s.metrics.Closure(string(req.Entity.Type), string(req.Mode), metrics.OutcomeError, 0)
		return nil, err
	}

	// Authorization is decided on roles read now, never on a cached snapshot.
	actor, err := s.actors.LoadFreshActor(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			err = fmt.Errorf("%w: unknown user", apperrors.ErrForbidden)
		}
		s.metrics.Closure(string(req.Entity.Type), string(req.Mode), metrics.OutcomeError, 0)
		return nil, err
	}

	var result *domain.ClosureResult
	err = s.meetingRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.ClosureTx) error {
		r, err := s.applyClosure(ctx, tx, actor, req)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		if !isDecision(err) {
			s.LogError(ctx, err, "Closure transaction failed",
				slog.String("entity", req.Entity.String()))
			err = apperrors.NewPersistenceError("failed to close "+string(req.Entity.Type), err)
		}
		s.metrics.Closure(string(req.Entity.Type), string(req.Mode), metrics.OutcomeError, 0)
		return nil, err
	}

	mode := string(result.Mode)
	if mode == "" {
		mode = modeNone
	}
	s.metrics.Closure(string(result.EntityType), mode, metrics.OutcomeSuccess, result.AffectedPointCount)

	attrs := []any{
		slog.String("entity", req.Entity.String()),
		slog.String("mode", mode),
		slog.Int("points_affected", result.AffectedPointCount),
	}
	if result.Target != nil {
		attrs = append(attrs, slog.String("target", result.Target.String()))
	}
	s.LogInfo(ctx, "Entity closed", attrs...)
	return result, nil
}

// applyClosure runs inside the transaction. Store errors are returned wrapped
// as persistence failures; every other return is a decision.
func (s *closureService) applyClosure(ctx context.Context, tx portsrepo.ClosureTx, actor *domain.Actor, req domain.ClosureRequest) (*domain.ClosureResult, error) {
	entity, err := tx.LockEntity(ctx, req.Entity)
	if err != nil {
		return nil, s.storeError(ctx, err, "lock entity", req.Entity)
	}

	if !s.engine.CanCloseEntity(actor, entity.ProjectID) {
		s.LogWarn(ctx, "Closure denied",
			slog.String("user_id", actor.UserID),
			slog.String("entity", req.Entity.String()))
		return nil, fmt.Errorf("%w: you are not allowed to close this %s", apperrors.ErrForbidden, req.Entity.Type)
	}

	if entity.Status.IsClosed() {
		return nil, fmt.Errorf("%w: %s is already closed", apperrors.ErrAlreadyClosed, req.Entity)
	}

	points, err := tx.LockOpenPoints(ctx, req.Entity)
	if err != nil {
		return nil, s.storeError(ctx, err, "lock open points", req.Entity)
	}

	now := s.clock.Now()
	result := &domain.ClosureResult{
		EntityType: req.Entity.Type,
		EntityID:   req.Entity.ID,
		NewStatus:  domain.StatusClosed,
		ClosedAt:   now,
	}

	if len(points) > 0 {
		ids := make([]string, len(points))
		for i, p := range points {
			ids[i] = p.PointID
		}

		switch req.Mode {
		case domain.ClosureModeClose:
			n, err := tx.ClosePoints(ctx, ids, now, actor.UserID)
			if err != nil {
				return nil, s.storeError(ctx, err, "close points", req.Entity)
			}
			if n != len(ids) {
				return nil, apperrors.NewPersistenceError("points changed during closure", fmt.Errorf("closed %d of %d points", n, len(ids)))
			}
		case domain.ClosureModeMove:
			target, err := s.lockTarget(ctx, tx, entity, req.Target)
			if err != nil {
				return nil, err
			}
			n, err := tx.ReassignPoints(ctx, ids, domain.OwnerOf(target.Ref), now, actor.UserID)
			if err != nil {
				return nil, s.storeError(ctx, err, "reassign points", req.Entity)
			}
			if n != len(ids) {
				return nil, apperrors.NewPersistenceError("points changed during closure", fmt.Errorf("moved %d of %d points", n, len(ids)))
			}
			ref := target.Ref
			result.Target = &ref
		}
		result.Mode = req.Mode
		result.AffectedPointCount = len(ids)
	}

	if err := tx.MarkEntityClosed(ctx, req.Entity, now, actor.UserID); err != nil {
		return nil, s.storeError(ctx, err, "mark entity closed", req.Entity)
	}

	result.InvalidationKeys = invalidationKeys(req.Entity, result.Target)
	return result, nil
}

// lockTarget locks and re-validates the move target inside the transaction.
// Whatever target discovery showed earlier is not trusted.
func (s *closureService) lockTarget(ctx context.Context, tx portsrepo.ClosureTx, source *domain.Entity, target *domain.EntityRef) (*domain.Entity, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: choose a meeting or series to move the open points to", apperrors.ErrInvalidTarget)
	}
	if _, err := domain.ParseEntityType(string(target.Type)); err != nil || strings.TrimSpace(target.ID) == "" {
		return nil, fmt.Errorf("%w: target must be a meeting or series id", apperrors.ErrInvalidTarget)
	}
	if *target == source.Ref {
		return nil, fmt.Errorf("%w: points cannot be moved to the entity being closed", apperrors.ErrInvalidTarget)
	}

	entity, err := tx.LockEntity(ctx, *target)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: target %s does not exist", apperrors.ErrNotFound, target)
		}
		return nil, s.storeError(ctx, err, "lock target", *target)
	}
	if entity.Status.IsClosed() {
		return nil, fmt.Errorf("%w: target %s is closed", apperrors.ErrInvalidTarget, target)
	}
	if !domain.SameProject(source.ProjectID, entity.ProjectID) {
		return nil, fmt.Errorf("%w: target %s belongs to a different project", apperrors.ErrInvalidTarget, target)
	}
	return entity, nil
}

func (s *closureService) storeError(ctx context.Context, err error, op string, ref domain.EntityRef) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %s does not exist", apperrors.ErrNotFound, ref)
	}
	s.LogError(ctx, err, "Closure store operation failed",
		slog.String("op", op),
		slog.String("entity", ref.String()))
	return apperrors.NewPersistenceError("failed to "+op, err)
}

func invalidationKeys(source domain.EntityRef, target *domain.EntityRef) []string {
	keys := []string{source.CacheKey()}
	if target != nil {
		keys = append(keys, target.CacheKey())
	}
	return append(keys,
		domain.CacheKeyPoints,
		domain.CacheKeyMeetings,
		domain.CacheKeySeries,
		domain.CacheKeyAttendees,
	)
}

// loadVisible loads an entity for a read-only helper and checks project visibility.
func (s *closureService) loadVisible(ctx context.Context, userID string, ref domain.EntityRef) (*domain.Actor, *domain.Entity, error) {
	if err := validateRef(ref); err != nil {
		return nil, nil, err
	}
	actor, err := s.actors.GetActor(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown user", apperrors.ErrForbidden)
		}
		return nil, nil, err
	}

	entity, err := s.meetingRepo.FindEntity(ctx, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, err
		}
		s.LogError(ctx, err, "Failed to find entity", slog.String("entity", ref.String()))
		return nil, nil, apperrors.NewPersistenceError("failed to load "+string(ref.Type), err)
	}

	if !s.engine.CanAccessProject(actor, entity.ProjectID) {
		s.LogWarn(ctx, "Entity not visible to user",
			slog.String("user_id", userID),
			slog.String("entity", ref.String()))
		return nil, nil, apperrors.ErrForbidden
	}
	return actor, entity, nil
}

// ListCloseTargets lists open meetings and series in the entity's project, excluding it.
func (s *closureService) ListCloseTargets(ctx context.Context, userID string, ref domain.EntityRef) (*domain.OpenEntities, error) {
	_, entity, err := s.loadVisible(ctx, userID, ref)
	if err != nil {
		return nil, err
	}

	open, err := s.meetingRepo.ListOpenEntitiesInProject(ctx, entity.ProjectID, ref)
	if err != nil {
		s.LogError(ctx, err, "Failed to list close targets", slog.String("entity", ref.String()))
		return nil, apperrors.NewPersistenceError("failed to list close targets", err)
	}
	if open.Meetings == nil {
		open.Meetings = []domain.Entity{}
	}
	if open.Series == nil {
		open.Series = []domain.Entity{}
	}

	s.LogDebug(ctx, "Close targets listed",
		slog.String("entity", ref.String()),
		slog.Int("meetings", len(open.Meetings)),
		slog.Int("series", len(open.Series)))
	return open, nil
}

// GetClosurePreview reports the open points a close would affect and whether
// the caller must pick a mode.
func (s *closureService) GetClosurePreview(ctx context.Context, userID string, ref domain.EntityRef) (*domain.ClosurePreview, error) {
	actor, entity, err := s.loadVisible(ctx, userID, ref)
	if err != nil {
		return nil, err
	}

	points, err := s.meetingRepo.FindOpenPoints(ctx, ref)
	if err != nil {
		s.LogError(ctx, err, "Failed to count open points", slog.String("entity", ref.String()))
		return nil, apperrors.NewPersistenceError("failed to load open points", err)
	}

	return &domain.ClosurePreview{
		Entity:         *entity,
		OpenPointCount: len(points),
		NeedsDecision:  len(points) > 0 && !entity.Status.IsClosed(),
		CanClose:       !entity.Status.IsClosed() && s.engine.CanCloseEntity(actor, entity.ProjectID),
	}, nil
}
