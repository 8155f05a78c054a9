package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
)

// Catalog implements catalog.Repository over maps.
type Catalog struct {
	mu        sync.Mutex
	providers map[uint]availability.ProviderConfig
	services  map[uint]catalog.Service

	// ConfigErr, when set, fails ProviderConfig for the given provider.
	ConfigErr map[uint]error
}

func NewCatalog() *Catalog {
	return &Catalog{
		providers: map[uint]availability.ProviderConfig{},
		services:  map[uint]catalog.Service{},
		ConfigErr: map[uint]error{},
	}
}

func (m *Catalog) PutProvider(cfg availability.ProviderConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[cfg.ProviderID] = cfg
}

func (m *Catalog) PutService(s catalog.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[s.ID] = s
}

func (m *Catalog) ProviderConfig(ctx context.Context, providerID uint) (availability.ProviderConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ConfigErr[providerID]; err != nil {
		return availability.ProviderConfig{}, err
	}
	cfg, ok := m.providers[providerID]
	if !ok {
		return availability.ProviderConfig{}, httperr.NotFound("provider_not_found")
	}
	return cfg, nil
}

func (m *Catalog) ListProviderIDs(ctx context.Context) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uint, 0, len(m.providers))
	for id := range m.providers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *Catalog) SaveProviderConfig(ctx context.Context, cfg availability.ProviderConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[cfg.ProviderID]; !ok {
		return httperr.NotFound("provider_not_found")
	}
	m.providers[cfg.ProviderID] = cfg
	return nil
}

func (m *Catalog) GetService(ctx context.Context, providerID, serviceID uint) (*catalog.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.services[serviceID]
	if !ok || s.ProviderID != providerID {
		return nil, httperr.NotFound("service_not_found")
	}
	return &s, nil
}
