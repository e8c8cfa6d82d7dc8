package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/httpresp"
	"github.com/queuelinehq/queueline/internal/middleware"
	"github.com/queuelinehq/queueline/internal/models"
	"github.com/queuelinehq/queueline/internal/timezone"
)

type BusinessHandler struct {
	db *gorm.DB
}

func NewBusinessHandler(db *gorm.DB) *BusinessHandler {
	return &BusinessHandler{db: db}
}

type UpdateBusinessRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`

	AverageWaitMinutes *int    `json:"average_wait_minutes"`
	OpenAllDay         *bool   `json:"open_all_day"`
	OpeningTime        *string `json:"opening_time"`
	ClosingTime        *string `json:"closing_time"`
	Timezone           *string `json:"timezone"`
}

func (h *BusinessHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var business models.Business
	if err := h.db.First(&business, businessID).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	httpresp.OK(c, business)
}

func (h *BusinessHandler) Update(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var business models.Business
	if err := h.db.First(&business, businessID).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return
	}

	var req UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	if req.Name != nil {
		business.Name = *req.Name
	}
	if req.Phone != nil {
		business.Phone = *req.Phone
	}
	if req.Address != nil {
		business.Address = *req.Address
	}
	if req.AverageWaitMinutes != nil {
		if *req.AverageWaitMinutes <= 0 {
			httperr.BadRequest(c, "invalid_average_wait", "Average wait must be positive.")
			return
		}
		business.AverageWaitMinutes = *req.AverageWaitMinutes
	}
	if req.OpenAllDay != nil {
		business.OpenAllDay = *req.OpenAllDay
	}
	if req.OpeningTime != nil {
		business.OpeningTime = *req.OpeningTime
	}
	if req.ClosingTime != nil {
		business.ClosingTime = *req.ClosingTime
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
			return
		}
		business.Timezone = *req.Timezone
	}

	if err := h.db.Save(&business).Error; err != nil {
		httperr.Internal(c, "failed_to_update_business", "Could not save business.")
		return
	}

	httpresp.OK(c, business)
}
