package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domainqueue "github.com/queuelinehq/queueline/internal/domain/queue"
	"github.com/queuelinehq/queueline/internal/httperr"
	"github.com/queuelinehq/queueline/internal/httpresp"
	"github.com/queuelinehq/queueline/internal/middleware"
	ucqueue "github.com/queuelinehq/queueline/internal/usecase/queue"
)

// ======================================================
// HANDLER
// ======================================================

type QueueHandler struct {
	repo domainqueue.Repository

	joinUC    *ucqueue.JoinQueue
	reorderUC *ucqueue.ReorderQueue
	statusUC  *ucqueue.UpdateEntryStatus
	assignUC  *ucqueue.AssignEntry
	waitUC    *ucqueue.EstimatedWait
}

func NewQueueHandler(
	repo domainqueue.Repository,
	joinUC *ucqueue.JoinQueue,
	reorderUC *ucqueue.ReorderQueue,
	statusUC *ucqueue.UpdateEntryStatus,
	assignUC *ucqueue.AssignEntry,
	waitUC *ucqueue.EstimatedWait,
) *QueueHandler {
	return &QueueHandler{
		repo:      repo,
		joinUC:    joinUC,
		reorderUC: reorderUC,
		statusUC:  statusUC,
		assignUC:  assignUC,
		waitUC:    waitUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type JoinQueueRequest struct {
	ServiceID *uint `json:"service_id"`
	UserID    *uint `json:"user_id"`

	FullName    string `json:"full_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type ReorderQueueRequest struct {
	EntryID     uint `json:"entry_id" binding:"required"`
	NewPosition int  `json:"new_position" binding:"required,min=1"`
}

type EntryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AssignEntryRequest struct {
	EmployeeID *uint `json:"employee_id"`
	ServiceID  *uint `json:"service_id"`
}

// ======================================================
// JOIN
// ======================================================

func (h *QueueHandler) Join(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var req JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	entry, err := h.joinUC.Execute(c.Request.Context(), ucqueue.JoinQueueInput{
		BusinessID:  businessID,
		ServiceID:   req.ServiceID,
		UserID:      req.UserID,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(201, entry)
}

// ======================================================
// LIST
// ======================================================

func (h *QueueHandler) List(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	entries, err := h.repo.FindActiveEntries(c.Request.Context(), businessID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, entries)
}

// ======================================================
// REORDER
// ======================================================

func (h *QueueHandler) Reorder(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var req ReorderQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	entries, err := h.reorderUC.Execute(c.Request.Context(), businessID, req.EntryID, req.NewPosition)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, entries)
}

// ======================================================
// STATUS
// ======================================================

func (h *QueueHandler) UpdateStatus(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	entryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid entry id.")
		return
	}

	var req EntryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	entry, err := h.statusUC.Execute(c.Request.Context(), businessID, uint(entryID), req.Status)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, entry)
}

// ======================================================
// ASSIGN
// ======================================================

func (h *QueueHandler) Assign(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	entryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid entry id.")
		return
	}

	var req AssignEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	entry, err := h.assignUC.Execute(c.Request.Context(), ucqueue.AssignEntryInput{
		BusinessID: businessID,
		EntryID:    uint(entryID),
		EmployeeID: req.EmployeeID,
		ServiceID:  req.ServiceID,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, entry)
}

// ======================================================
// ESTIMATED WAIT
// ======================================================

func (h *QueueHandler) EstimatedWait(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uint)

	var serviceID uint
	if v := c.Query("service_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_service_id", "Invalid service id.")
			return
		}
		serviceID = uint(parsed)
	}

	wait, err := h.waitUC.Execute(c.Request.Context(), businessID, serviceID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"estimated_wait_seconds": int64(wait / time.Second),
		"estimated_wait_minutes": int64(wait / time.Minute),
	})
}
