package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/httpresp"
	"github.com/queuelinehq/queueline/internal/middleware"
	"github.com/queuelinehq/queueline/internal/models"
)

type EmployeeHandler struct {
	db *gorm.DB
}

func NewEmployeeHandler(db *gorm.DB) *EmployeeHandler {
	return &EmployeeHandler{db: db}
}

type CreateEmployeeRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ServiceIDs []uint `json:"service_ids"`
}

type UpdateEmployeeRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	ServiceIDs *[]uint `json:"service_ids"`
}

type UpdateEmployeeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var employeeStatuses = map[string]bool{
	models.EmployeeAvailable: true,
	models.EmployeeInService: true,
	models.EmployeeOnBreak:   true,
	models.EmployeeOff:       true,
}

func (h *EmployeeHandler) List(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var employees []models.Employee
	if err := h.db.
		Preload("Services").
		Where("business_id = ?", businessID).
		Order("name ASC").
		Find(&employees).Error; err != nil {
		httperr.Internal(c, "failed_to_list_employees", "Could not list employees.")
		return
	}

	httpresp.List(c, employees)
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	employee := models.Employee{
		BusinessID: businessID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Status:     models.EmployeeAvailable,
	}

	if err := h.db.Create(&employee).Error; err != nil {
		httperr.Internal(c, "failed_to_create_employee", "Could not create employee.")
		return
	}

	if len(req.ServiceIDs) > 0 {
		if err := h.linkServices(businessID, &employee, req.ServiceIDs); err != nil {
			httperr.FromError(c, err)
			return
		}
	}

	c.JSON(201, employee)
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)
	id := c.Param("id")

	var employee models.Employee
	if err := h.db.
		Where("id = ? AND business_id = ?", id, businessID).
		First(&employee).Error; err != nil {
		httperr.NotFound(c, "employee_not_found", "Employee not found.")
		return
	}

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	if req.Name != nil {
		employee.Name = *req.Name
	}
	if req.Email != nil {
		employee.Email = *req.Email
	}
	if req.Phone != nil {
		employee.Phone = *req.Phone
	}

	if err := h.db.Save(&employee).Error; err != nil {
		httperr.Internal(c, "failed_to_update_employee", "Could not save employee.")
		return
	}

	if req.ServiceIDs != nil {
		if err := h.linkServices(businessID, &employee, *req.ServiceIDs); err != nil {
			httperr.FromError(c, err)
			return
		}
	}

	httpresp.OK(c, employee)
}

// UpdateStatus changes availability manually: break, off, back to available.
func (h *EmployeeHandler) UpdateStatus(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)
	id := c.Param("id")

	var req UpdateEmployeeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}
	if !employeeStatuses[req.Status] {
		httperr.BadRequest(c, "unknown_status", "Unknown employee status.")
		return
	}

	var employee models.Employee
	if err := h.db.
		Where("id = ? AND business_id = ?", id, businessID).
		First(&employee).Error; err != nil {
		httperr.NotFound(c, "employee_not_found", "Employee not found.")
		return
	}

	employee.Status = req.Status
	if err := h.db.Save(&employee).Error; err != nil {
		httperr.Internal(c, "failed_to_update_employee", "Could not save employee.")
		return
	}

	httpresp.OK(c, employee)
}

// linkServices replaces the employee's capability set. Every id must belong
// to the same business.
func (h *EmployeeHandler) linkServices(businessID uint, employee *models.Employee, serviceIDs []uint) error {
	var services []models.Service
	if len(serviceIDs) > 0 {
		if err := h.db.
			Where("business_id = ? AND id IN ?", businessID, serviceIDs).
			Find(&services).Error; err != nil {
			return err
		}
		if len(services) != len(serviceIDs) {
			return httperr.Validation("unknown_service_id")
		}
	}
	return h.db.Model(employee).Association("Services").Replace(services)
}
