package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/httpresp"
	"github.com/queuelinehq/queueline/internal/middleware"
	"github.com/queuelinehq/queueline/internal/models"
	ucappointment "github.com/queuelinehq/queueline/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	db *gorm.DB

	bookUC   *ucappointment.BookAppointment
	updateUC *ucappointment.UpdateAppointment
	statusUC *ucappointment.UpdateAppointmentStatus
	listUC   *ucappointment.ListAppointments
	slotsUC  *ucappointment.DaySlots
}

func NewAppointmentHandler(
	db *gorm.DB,
	bookUC *ucappointment.BookAppointment,
	updateUC *ucappointment.UpdateAppointment,
	statusUC *ucappointment.UpdateAppointmentStatus,
	listUC *ucappointment.ListAppointments,
	slotsUC *ucappointment.DaySlots,
) *AppointmentHandler {
	return &AppointmentHandler{
		db:       db,
		bookUC:   bookUC,
		updateUC: updateUC,
		statusUC: statusUC,
		listUC:   listUC,
		slotsUC:  slotsUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	EmployeeID uint  `json:"employee_id" binding:"required"`
	ServiceID  *uint `json:"service_id"`

	UserID      *uint  `json:"user_id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`

	Date  string `json:"date" binding:"required"`
	Time  string `json:"time" binding:"required"`
	Notes string `json:"notes"`
}

type UpdateAppointmentRequest struct {
	EmployeeID *uint   `json:"employee_id"`
	ServiceID  *uint   `json:"service_id"`
	Date       *string `json:"date"`
	Time       *string `json:"time"`
	Notes      *string `json:"notes"`
}

func (h *AppointmentHandler) business(c *gin.Context) (*models.Business, bool) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var business models.Business
	if err := h.db.First(&business, businessID).Error; err != nil {
		httperr.NotFound(c, "business_not_found", "Business not found.")
		return nil, false
	}
	return &business, true
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	start, err := parseDateTimeInBusiness(business, req.Date, req.Time)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Invalid date or time.")
		return
	}

	ap, err := h.bookUC.Execute(c.Request.Context(), ucappointment.BookAppointmentInput{
		BusinessID:  business.ID,
		EmployeeID:  req.EmployeeID,
		ServiceID:   req.ServiceID,
		UserID:      req.UserID,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		StartTime:   start,
		Notes:       req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(201, ap)
}

// ======================================================
// UPDATE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}

	appointmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	in := ucappointment.UpdateAppointmentInput{
		BusinessID:    business.ID,
		AppointmentID: uint(appointmentID),
		EmployeeID:    req.EmployeeID,
		ServiceID:     req.ServiceID,
		Notes:         req.Notes,
	}

	if req.Date != nil && req.Time != nil {
		start, err := parseDateTimeInBusiness(business, *req.Date, *req.Time)
		if err != nil {
			httperr.BadRequest(c, "invalid_date_or_time", "Invalid date or time.")
			return
		}
		in.StartTime = &start
	} else if req.Date != nil || req.Time != nil {
		httperr.BadRequest(c, "partial_date_time", "Date and time must be sent together.")
		return
	}

	ap, err := h.updateUC.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// COMPLETE / CANCEL
// ======================================================

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.setStatus(c, models.AppointmentCompleted)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.setStatus(c, models.AppointmentCancelled)
}

func (h *AppointmentHandler) setStatus(c *gin.Context, status string) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	appointmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	ap, err := h.statusUC.Execute(c.Request.Context(), businessID, uint(appointmentID), status)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "A date is required.")
		return
	}

	day, err := parseDateInBusiness(business, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	var employeeID uint
	if v := c.Query("employee_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_employee_id", "Invalid employee id.")
			return
		}
		employeeID = uint(parsed)
	}

	aps, err := h.listUC.ByDay(c.Request.Context(), business.ID, employeeID, day)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(200, aps)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	aps, err := h.listUC.ByMonth(c.Request.Context(), businessID, year, time.Month(month))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"year":         year,
		"month":        month,
		"appointments": aps,
	})
}

// ======================================================
// SLOTS
// ======================================================

func (h *AppointmentHandler) Slots(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "A date is required.")
		return
	}
	day, err := parseDateInBusiness(business, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	employeeID, err := strconv.ParseUint(c.Query("employee_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_employee_id", "Invalid employee id.")
		return
	}

	var serviceID *uint
	if v := c.Query("service_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_service_id", "Invalid service id.")
			return
		}
		id := uint(parsed)
		serviceID = &id
	}

	slots, err := h.slotsUC.Execute(c.Request.Context(), business.ID, uint(employeeID), serviceID, day)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, slots)
}
