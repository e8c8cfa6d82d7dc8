package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/queuelinehq/queueline/internal/audit"
	"github.com/queuelinehq/queueline/internal/broadcast"
	"github.com/queuelinehq/queueline/internal/config"
	"github.com/queuelinehq/queueline/internal/handlers"
	infraRepo "github.com/queuelinehq/queueline/internal/infra/repository"
	"github.com/queuelinehq/queueline/internal/locks"
	"github.com/queuelinehq/queueline/internal/middleware"
	"github.com/queuelinehq/queueline/internal/scheduler"
	ucAppointment "github.com/queuelinehq/queueline/internal/usecase/appointment"
	ucQueue "github.com/queuelinehq/queueline/internal/usecase/queue"
)

// App holds the long-lived components the entrypoint must manage: the timer
// scheduler needs Rehydrate on boot, the hub and broadcaster need shutdown.
type App struct {
	Hub         *broadcast.Hub
	Broadcaster *broadcast.Broadcaster
	Scheduler   *scheduler.Scheduler
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) *App {

	// ======================================================
	// MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	queueRepo := infraRepo.NewQueueGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	businessLocks := locks.NewKeyed()
	employeeLocks := locks.NewKeyed()

	hub := broadcast.NewHub(rdb)
	projector := broadcast.NewProjector(queueRepo, appointmentRepo)
	bc := broadcast.NewBroadcaster(hub, projector)

	lifecycle := scheduler.New(appointmentRepo, queueRepo, businessLocks, bc)

	// ======================================================
	// USE CASES — QUEUE
	// ======================================================
	joinQueueUC := ucQueue.NewJoinQueue(queueRepo, businessLocks, auditDispatcher, bc)
	reorderQueueUC := ucQueue.NewReorderQueue(queueRepo, businessLocks, auditDispatcher, bc)
	entryStatusUC := ucQueue.NewUpdateEntryStatus(queueRepo, businessLocks, auditDispatcher, bc)
	assignEntryUC := ucQueue.NewAssignEntry(queueRepo, businessLocks, auditDispatcher, bc)
	estimatedWaitUC := ucQueue.NewEstimatedWait(queueRepo, rdb)

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	bookAppointmentUC := ucAppointment.NewBookAppointment(
		appointmentRepo, employeeLocks, lifecycle, auditDispatcher, bc)
	updateAppointmentUC := ucAppointment.NewUpdateAppointment(
		appointmentRepo, businessLocks, employeeLocks, lifecycle, auditDispatcher, bc)
	appointmentStatusUC := ucAppointment.NewUpdateAppointmentStatus(
		appointmentRepo, businessLocks, lifecycle, auditDispatcher, bc)
	listAppointmentsUC := ucAppointment.NewListAppointments(appointmentRepo)
	daySlotsUC := ucAppointment.NewDaySlots(appointmentRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	businessHandler := handlers.NewBusinessHandler(db)
	employeeHandler := handlers.NewEmployeeHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)
	overrideHandler := handlers.NewOverrideHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	queueHandler := handlers.NewQueueHandler(
		queueRepo,
		joinQueueUC,
		reorderQueueUC,
		entryStatusUC,
		assignEntryUC,
		estimatedWaitUC,
	)

	appointmentHandler := handlers.NewAppointmentHandler(
		db,
		bookAppointmentUC,
		updateAppointmentUC,
		appointmentStatusUC,
		listAppointmentsUC,
		daySlotsUC,
	)

	streamHandler := handlers.NewStreamHandler(hub, bc)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/business", businessHandler.Get)
			secured.PATCH("/me/business", businessHandler.Update)

			secured.GET("/me/employees", employeeHandler.List)
			secured.POST("/me/employees", employeeHandler.Create)
			secured.PATCH("/me/employees/:id", employeeHandler.Update)
			secured.PATCH("/me/employees/:id/status", employeeHandler.UpdateStatus)

			secured.GET("/me/employees/:id/working-hours", workingHoursHandler.Get)
			secured.PUT("/me/employees/:id/working-hours", workingHoursHandler.Update)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			secured.GET("/me/overrides", overrideHandler.List)
			secured.POST("/me/overrides", overrideHandler.Create)
			secured.DELETE("/me/overrides/:id", overrideHandler.Delete)

			// ------------------------------
			// QUEUE
			// ------------------------------
			secured.GET("/me/queue", queueHandler.List)
			secured.POST("/me/queue", queueHandler.Join)
			secured.POST("/me/queue/reorder", queueHandler.Reorder)
			secured.PATCH("/me/queue/:id/status", queueHandler.UpdateStatus)
			secured.PATCH("/me/queue/:id/assign", queueHandler.Assign)
			secured.GET("/me/queue/estimated-wait", queueHandler.EstimatedWait)
			secured.GET("/me/queue/stream", streamHandler.Stream)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.GET("/me/appointments/slots", appointmentHandler.Slots)
			secured.PATCH("/me/appointments/:id", appointmentHandler.Update)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}

	return &App{
		Hub:         hub,
		Broadcaster: bc,
		Scheduler:   lifecycle,
	}
}
