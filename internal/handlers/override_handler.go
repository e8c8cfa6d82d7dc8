package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/httpresp"
	"github.com/queuelinehq/queueline/internal/middleware"
	"github.com/queuelinehq/queueline/internal/models"
)

// OverrideHandler manages dated schedule exceptions: closures and extra
// availability windows layered over the weekly template.
type OverrideHandler struct {
	db *gorm.DB
}

func NewOverrideHandler(db *gorm.DB) *OverrideHandler {
	return &OverrideHandler{db: db}
}

type CreateOverrideRequest struct {
	EmployeeID *uint `json:"employee_id"`

	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`

	RepeatFrequency string `json:"repeat_frequency"`
	OverrideType    string `json:"override_type"`
	Effect          string `json:"effect"`
}

var repeatFrequencies = map[string]bool{
	models.RepeatNone:    true,
	models.RepeatDaily:   true,
	models.RepeatWeekly:  true,
	models.RepeatMonthly: true,
	models.RepeatYearly:  true,
}

func (h *OverrideHandler) List(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var overrides []models.ScheduleOverride
	if err := h.db.
		Where("business_id = ?", businessID).
		Order("start_date ASC").
		Find(&overrides).Error; err != nil {
		httperr.Internal(c, "failed_to_list_overrides", "Could not list overrides.")
		return
	}

	httpresp.List(c, overrides)
}

func (h *OverrideHandler) Create(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var req CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	if !req.EndDate.After(req.StartDate) {
		httperr.BadRequest(c, "invalid_date_range", "End must come after start.")
		return
	}

	repeat := req.RepeatFrequency
	if repeat == "" {
		repeat = models.RepeatNone
	}
	if !repeatFrequencies[repeat] {
		httperr.BadRequest(c, "unknown_repeat_frequency", "Unknown repeat frequency.")
		return
	}

	effect := req.Effect
	if effect == "" {
		effect = models.EffectClosure
	}
	if effect != models.EffectClosure && effect != models.EffectExtra {
		httperr.BadRequest(c, "unknown_effect", "Effect must be closure or extra_availability.")
		return
	}

	if req.EmployeeID != nil {
		var count int64
		h.db.Model(&models.Employee{}).
			Where("id = ? AND business_id = ?", *req.EmployeeID, businessID).
			Count(&count)
		if count == 0 {
			httperr.NotFound(c, "employee_not_found", "Employee not found.")
			return
		}
	}

	override := models.ScheduleOverride{
		BusinessID:      businessID,
		EmployeeID:      req.EmployeeID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		RepeatFrequency: repeat,
		OverrideType:    req.OverrideType,
		Effect:          effect,
	}

	if err := h.db.Create(&override).Error; err != nil {
		httperr.Internal(c, "failed_to_create_override", "Could not create the override.")
		return
	}

	c.JSON(201, override)
}

func (h *OverrideHandler) Delete(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)
	id := c.Param("id")

	res := h.db.
		Where("id = ? AND business_id = ?", id, businessID).
		Delete(&models.ScheduleOverride{})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_delete_override", "Could not delete the override.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "override_not_found", "Override not found.")
		return
	}

	c.JSON(200, gin.H{"status": "ok"})
}
