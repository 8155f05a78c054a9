package models

import "time"

type Provider struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	Name                string `gorm:"size:100;not null" json:"name"`
	Timezone            string `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	SlotIntervalMinutes int    `gorm:"not null;default:30" json:"slot_interval_minutes"`
	MaxAdvanceDays      int    `gorm:"not null;default:60" json:"max_advance_days"`
	AutoConfirm         bool   `gorm:"not null;default:false" json:"auto_confirm"`

	WeeklyHours []WeeklyHours `gorm:"foreignKey:ProviderID;constraint:OnDelete:CASCADE;" json:"weekly_hours"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
