package services

import (
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/authz"
	portsrepo "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/repositories"
	portssvc "github.com/Abdulhamidsa/BimCall-sub002/internal/core/ports/services"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/platform/config"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, engine *authz.Engine, m *metrics.Metrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Closure resolves actors through the access service so membership
	// changes and closures share one cache.
	container.Access = NewAccessService(
		repos.RoleRepo,
		engine,
		WithActorCache(cfg.ActorCacheSize, cfg.ActorCacheTTL),
		WithAccessMetrics(m),
	)

	container.Closure = NewClosureService(
		repos.MeetingRepo,
		container.Access,
		engine,
		WithClosureMetrics(m),
	)

	return container
}
