package models

import "time"

// WorkScheduleEntry is the recurring weekly template for one employee and one
// day of week. At most one entry per (employee, weekday) is active.
type WorkScheduleEntry struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	EmployeeID uint `gorm:"uniqueIndex:idx_employee_weekday" json:"employee_id"`

	// 0 = Sunday, matching time.Weekday.
	Weekday int `gorm:"uniqueIndex:idx_employee_weekday" json:"weekday"`

	StartTime  string `gorm:"size:5" json:"start_time"`
	EndTime    string `gorm:"size:5" json:"end_time"`
	LunchStart string `gorm:"size:5" json:"lunch_start"`
	LunchEnd   string `gorm:"size:5" json:"lunch_end"`
	IsWorking  bool   `json:"is_working"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Override repeat frequencies.
const (
	RepeatNone    = "none"
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
	RepeatYearly  = "yearly"
)

// Override effects. A closure subtracts from working time, extra availability
// adds to it.
const (
	EffectClosure = "closure"
	EffectExtra   = "extra_availability"
)

// ScheduleOverride is a dated exception layered over the weekly template.
// EmployeeID nil means the override applies to the whole business.
type ScheduleOverride struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	BusinessID uint  `json:"business_id"`
	EmployeeID *uint `json:"employee_id"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	RepeatFrequency string `gorm:"size:10;default:'none'" json:"repeat_frequency"`

	// Free-form reason: holiday, emergency, extra_shift...
	OverrideType string `gorm:"size:50" json:"override_type"`

	Effect string `gorm:"size:20;default:'closure'" json:"effect"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
