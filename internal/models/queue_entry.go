package models

import "time"

// Queue entry statuses.
const (
	QueueCheckedIn = "checked_in"
	QueueArrived   = "arrived"
	QueueInService = "in_service"
	QueueCompleted = "completed"
	QueueCancelled = "cancelled"
)

type QueueEntry struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BusinessID uint     `json:"business_id"`
	Business   Business `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// Unassigned until matched with a free employee.
	EmployeeID *uint     `json:"employee_id"`
	Employee   *Employee `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"employee,omitempty"`

	ServiceID *uint    `json:"service_id"`
	Service   *Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service,omitempty"`

	UserID *uint `json:"user_id"`

	FullName    string `gorm:"size:100;not null" json:"full_name"`
	PhoneNumber string `gorm:"size:20;not null" json:"phone_number"`

	TicketCode string `gorm:"size:36;uniqueIndex" json:"ticket_code"`

	Status string `gorm:"size:20;default:'checked_in'" json:"status"`

	// 1-based and dense among active entries of a business, 0 once retired.
	PositionInQueue int `json:"position_in_queue"`

	CheckInTime          time.Time  `json:"check_in_time"`
	ServiceStartTime     *time.Time `json:"service_start_time"`
	ServiceEndTime       *time.Time `json:"service_end_time"`
	EstimatedServiceTime *time.Time `json:"estimated_service_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
