package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/httperr"
	"github.com/BruksfildServices01/slot-scheduler/internal/models"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

// --------------------------------------------------
// Providers
// --------------------------------------------------

func (r *CatalogGormRepository) ProviderConfig(
	ctx context.Context,
	providerID uint,
) (availability.ProviderConfig, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).
		Preload("WeeklyHours", func(db *gorm.DB) *gorm.DB {
			return db.Order("weekday ASC")
		}).
		First(&p, providerID).Error; err != nil {
		return availability.ProviderConfig{}, httperr.FromDB(err, "provider_not_found")
	}

	return ToProviderConfig(p), nil
}

func (r *CatalogGormRepository) ListProviderIDs(
	ctx context.Context,
) ([]uint, error) {

	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Provider{}).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, httperr.FromDB(err, "provider_not_found")
	}
	return ids, nil
}

// SaveProviderConfig replaces the weekly hours and scheduling settings in
// one transaction.
func (r *CatalogGormRepository) SaveProviderConfig(
	ctx context.Context,
	cfg availability.ProviderConfig,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Provider{}).
			Where("id = ?", cfg.ProviderID).
			Updates(map[string]any{
				"timezone":              cfg.Timezone,
				"slot_interval_minutes": cfg.IntervalMinutes,
				"max_advance_days":      cfg.Horizon(),
				"auto_confirm":          cfg.AutoConfirm,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.NotFound("provider_not_found")
		}

		if err := tx.
			Where("provider_id = ?", cfg.ProviderID).
			Delete(&models.WeeklyHours{}).Error; err != nil {
			return err
		}

		if len(cfg.Weekly) == 0 {
			return nil
		}

		rows := make([]models.WeeklyHours, 0, len(cfg.Weekly))
		for _, h := range cfg.Weekly {
			rows = append(rows, models.WeeklyHours{
				ProviderID: cfg.ProviderID,
				Weekday:    h.Weekday,
				OpenLocal:  h.Open,
				CloseLocal: h.Close,
			})
		}
		return tx.Create(&rows).Error
	})

	return httperr.FromDB(err, "provider_not_found")
}

// --------------------------------------------------
// Services
// --------------------------------------------------

func (r *CatalogGormRepository) GetService(
	ctx context.Context,
	providerID uint,
	serviceID uint,
) (*catalog.Service, error) {

	var s models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ? AND active = ?", serviceID, providerID, true).
		First(&s).Error; err != nil {
		return nil, httperr.FromDB(err, "service_not_found")
	}

	return &catalog.Service{
		ID:              s.ID,
		ProviderID:      s.ProviderID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		Price:           s.Price,
	}, nil
}

// --------------------------------------------------
// Mapping
// --------------------------------------------------

func ToProviderConfig(p models.Provider) availability.ProviderConfig {
	cfg := availability.ProviderConfig{
		ProviderID:      p.ID,
		Timezone:        p.Timezone,
		IntervalMinutes: p.SlotIntervalMinutes,
		MaxAdvanceDays:  p.MaxAdvanceDays,
		AutoConfirm:     p.AutoConfirm,
		Weekly:          make([]availability.DayHours, 0, len(p.WeeklyHours)),
	}
	for _, wh := range p.WeeklyHours {
		cfg.Weekly = append(cfg.Weekly, availability.DayHours{
			Weekday: wh.Weekday,
			Open:    wh.OpenLocal,
			Close:   wh.CloseLocal,
		})
	}
	return cfg
}

// Compile-time check
var _ catalog.Repository = (*CatalogGormRepository)(nil)
