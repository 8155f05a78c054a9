package models

import "time"

// WeeklyHours is one weekday entry of a provider's availability. At most one
// row per (provider, weekday).
type WeeklyHours struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProviderID uint `gorm:"not null;uniqueIndex:ux_weekly_hours_provider_weekday" json:"provider_id"`

	Weekday int `gorm:"not null;uniqueIndex:ux_weekly_hours_provider_weekday" json:"weekday"`

	OpenLocal  string `gorm:"size:5;not null" json:"open_local"`
	CloseLocal string `gorm:"size:5;not null" json:"close_local"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WeeklyHours) TableName() string {
	return "provider_weekly_hours"
}
