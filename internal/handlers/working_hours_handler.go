package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/middleware"
	"github.com/queuelinehq/queueline/internal/models"
)

type WorkingHoursHandler struct {
	db *gorm.DB
}

func NewWorkingHoursHandler(db *gorm.DB) *WorkingHoursHandler {
	return &WorkingHoursHandler{db: db}
}

type WorkingDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	IsWorking  bool   `json:"is_working"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required"`
}

func (h *WorkingHoursHandler) employee(c *gin.Context) (*models.Employee, bool) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)
	id := c.Param("id")

	var employee models.Employee
	if err := h.db.
		Where("id = ? AND business_id = ?", id, businessID).
		First(&employee).Error; err != nil {
		httperr.NotFound(c, "employee_not_found", "Employee not found.")
		return nil, false
	}
	return &employee, true
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	employee, ok := h.employee(c)
	if !ok {
		return
	}

	var entries []models.WorkScheduleEntry
	if err := h.db.
		Where("employee_id = ?", employee.ID).
		Order("weekday ASC").
		Find(&entries).Error; err != nil {
		httperr.Internal(c, "failed_to_get_working_hours", "Could not load the schedule.")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Update replaces the whole weekly template in one shot, keeping the
// one-entry-per-weekday invariant trivially true.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	employee, ok := h.employee(c)
	if !ok {
		return
	}

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	seen := make(map[int]bool, len(req.Days))
	for _, d := range req.Days {
		if seen[d.Weekday] {
			httperr.BadRequest(c, "duplicate_weekday", "Each weekday may appear once.")
			return
		}
		seen[d.Weekday] = true
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("employee_id = ?", employee.ID).
			Delete(&models.WorkScheduleEntry{}).Error; err != nil {
			return err
		}

		var toCreate []models.WorkScheduleEntry
		for _, d := range req.Days {
			toCreate = append(toCreate, models.WorkScheduleEntry{
				EmployeeID: employee.ID,
				Weekday:    d.Weekday,
				IsWorking:  d.IsWorking,
				StartTime:  d.StartTime,
				EndTime:    d.EndTime,
				LunchStart: d.LunchStart,
				LunchEnd:   d.LunchEnd,
			})
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_working_hours", "Could not save the schedule.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
