package module

import "readnfc/internal/services/cardreader/domain"

// Ports defines card reader module ports exposed via the registry
type Ports struct {
	Query     domain.QueryPort
	Lifecycle domain.LifecyclePort
	Poller    domain.PollerPort
	Discovery domain.DiscoveryPort
	Status    domain.StatusPort
}
