package config

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/careline/hms-backend/internal/cache"
	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/handler"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/service"
	"github.com/careline/hms-backend/internal/utils"
	"github.com/careline/hms-backend/logs"
)

// ServerSetup wires the whole application: database, Redis, Kafka,
// repositories, services, handlers and routes. It returns the gin engine
// ready to run.
func ServerSetup() *gin.Engine {
	logger := logs.NewLogger()

	db := InitDatabase()
	redisClient := InitRedis()
	producer := NewKafkaProducer(logger)

	cacheStore := cache.NewRedisStore(redisClient, logger)
	jobStore := cache.NewRedisJobStore(redisClient, logger)

	userRepo := repository.NewUserRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)

	authService := service.NewAuthService(userRepo, doctorRepo, patientRepo, logger)
	appointmentService := service.NewAppointmentService(appointmentRepo, producer, logger)
	adminService := service.NewAdminService(userRepo, doctorRepo, patientRepo, departmentRepo, appointmentRepo, cacheStore, logger)
	doctorService := service.NewDoctorService(doctorRepo, patientRepo, appointmentRepo, availabilityRepo, logger)
	patientService := service.NewPatientService(patientRepo, doctorRepo, departmentRepo, appointmentRepo, availabilityRepo, cacheStore, logger)
	exportService := service.NewExportService(patientRepo, appointmentRepo, jobStore, logger)
	notificationService := service.NewNotificationService(appointmentRepo, doctorRepo, NewGoogleChatNotifier(), NewSMTPMailer(), logger)

	go utils.StartCronScheduler(notificationService)

	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(adminService)
	doctorHandler := handler.NewDoctorHandler(doctorService, appointmentService)
	patientHandler := handler.NewPatientHandler(patientService, appointmentService, exportService)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", handler.Authenticate(), authHandler.Me)
	}

	admin := router.Group("/api/admin", handler.Authenticate(), handler.RequireRole(userRepo, domain.RoleAdmin))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/departments", adminHandler.Departments)
		admin.GET("/doctors", adminHandler.ListDoctors)
		admin.POST("/doctors", adminHandler.CreateDoctor)
		admin.PUT("/doctors/:id", adminHandler.UpdateDoctor)
		admin.DELETE("/doctors/:id", adminHandler.DeactivateDoctor)
		admin.GET("/patients", adminHandler.ListPatients)
		admin.PUT("/patients/:id", adminHandler.UpdatePatient)
		admin.DELETE("/patients/:id", adminHandler.DeactivatePatient)
		admin.GET("/appointments", adminHandler.ListAppointments)
		admin.GET("/search", adminHandler.Search)
	}

	doctor := router.Group("/api/doctor", handler.Authenticate(), handler.RequireRole(userRepo, domain.RoleDoctor))
	{
		doctor.GET("/dashboard", doctorHandler.Dashboard)
		doctor.GET("/appointments", doctorHandler.Appointments)
		doctor.PUT("/appointments/:id/complete", doctorHandler.CompleteAppointment)
		doctor.PUT("/appointments/:id/cancel", doctorHandler.CancelAppointment)
		doctor.GET("/patients", doctorHandler.Patients)
		doctor.GET("/patients/:id/history", doctorHandler.PatientHistory)
		doctor.GET("/availability", doctorHandler.GetAvailability)
		doctor.POST("/availability", doctorHandler.SetAvailability)
	}

	patient := router.Group("/api/patient", handler.Authenticate(), handler.RequireRole(userRepo, domain.RolePatient))
	{
		patient.GET("/dashboard", patientHandler.Dashboard)
		patient.GET("/profile", patientHandler.Profile)
		patient.PUT("/profile", patientHandler.UpdateProfile)
		patient.GET("/doctors", patientHandler.Doctors)
		patient.GET("/departments", patientHandler.Departments)
		patient.POST("/appointments", patientHandler.BookAppointment)
		patient.PUT("/appointments/:id", patientHandler.RescheduleAppointment)
		patient.DELETE("/appointments/:id", patientHandler.CancelAppointment)
		patient.GET("/treatment-history", patientHandler.TreatmentHistory)
		patient.GET("/export-treatments", patientHandler.ExportTreatments)
		patient.POST("/export-treatments/async", patientHandler.ExportTreatmentsAsync)
		patient.GET("/export-treatments/status/:task_id", patientHandler.ExportStatus)
	}

	return router
}
