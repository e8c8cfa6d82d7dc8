package models

import "time"

type Business struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	Slug    string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone   string `gorm:"size:20" json:"phone"`
	Address string `gorm:"size:255" json:"address"`

	// Fallback service duration for queue entries without a service.
	AverageWaitMinutes int `gorm:"default:30" json:"average_wait_minutes"`

	OpenAllDay  bool   `json:"open_all_day"`
	OpeningTime string `gorm:"size:5" json:"opening_time"`
	ClosingTime string `gorm:"size:5" json:"closing_time"`

	Timezone string `gorm:"size:64" json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open24Hours reports whether working-hours checks are bypassed entirely.
// An empty or degenerate opening window counts as always open.
func (b *Business) Open24Hours() bool {
	return b.OpenAllDay || b.OpeningTime == b.ClosingTime
}
