package catalog

import (
	"context"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
)

// Service is the read-only catalog entry a booking is made for.
type Service struct {
	ID              uint    `json:"id"`
	ProviderID      uint    `json:"provider_id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

// ConfigSource yields provider scheduling snapshots. Both the database
// repository and the cache implement it.
type ConfigSource interface {
	ProviderConfig(
		ctx context.Context,
		providerID uint,
	) (availability.ProviderConfig, error)
}

type ServiceCatalog interface {
	GetService(
		ctx context.Context,
		providerID uint,
		serviceID uint,
	) (*Service, error)
}

type ProviderLister interface {
	ListProviderIDs(
		ctx context.Context,
	) ([]uint, error)
}

type Repository interface {
	ConfigSource
	ServiceCatalog
	ProviderLister

	// -------- Providers --------
	SaveProviderConfig(
		ctx context.Context,
		cfg availability.ProviderConfig,
	) error
}
