package services

// ServiceContainer holds instances of all the application services.
// Handlers reach the core only through it.
type ServiceContainer struct {
	Access  AccessSvcFacade
	Closure ClosureSvcFacade
}
