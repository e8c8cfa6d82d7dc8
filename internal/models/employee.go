package models

import "time"

// Employee statuses.
const (
	EmployeeAvailable = "available"
	EmployeeInService = "in_service"
	EmployeeOnBreak   = "on_break"
	EmployeeOff       = "off"
)

type Employee struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	BusinessID uint     `json:"business_id"`
	Business   Business `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// Optional login account for the staff member.
	UserID *uint `json:"user_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"size:100" json:"email"`
	Phone string `gorm:"size:20" json:"phone"`

	Status string `gorm:"size:20;default:'available'" json:"status"`

	Services []Service `gorm:"many2many:employee_services;" json:"services,omitempty"`

	ScheduleEntries []WorkScheduleEntry `gorm:"constraint:OnDelete:CASCADE;" json:"schedule_entries,omitempty"`
	Overrides       []ScheduleOverride  `gorm:"constraint:OnDelete:CASCADE;" json:"overrides,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanPerform reports whether the employee is capable of the given service.
// A zero service id means "any employee will do".
func (e *Employee) CanPerform(serviceID uint) bool {
	if serviceID == 0 {
		return true
	}
	for _, s := range e.Services {
		if s.ID == serviceID {
			return true
		}
	}
	return false
}
