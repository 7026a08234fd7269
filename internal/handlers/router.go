package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniFlow-2025/enrollment-service/internal/config"
	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
	"github.com/UniFlow-2025/enrollment-service/internal/services"
	"github.com/UniFlow-2025/enrollment-service/internal/utils"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	feedbackHandler   *FeedbackHandler
	courseHandler     *CourseHandler
	instructorHandler *InstructorHandler
	enrollmentHandler *EnrollmentHandler
	studentHandler    *StudentHandler
	dashboardHandler  *DashboardHandler
	sessionAuth       *SessionAuthMiddleware

	serviceManager services.ServiceManager
	cfg            *config.Config
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	repo repositories.Repository,
	cfg *config.Config,
	logger utils.Logger,
) *HandlerManager {
	sessionAuth := NewSessionAuthMiddleware([]byte(cfg.SessionSecret), cfg.SessionName, repo)

	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), sessionAuth, cfg.MediaRoot, logger),
		feedbackHandler:   NewFeedbackHandler(serviceManager.Feedback(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Catalog(), logger),
		instructorHandler: NewInstructorHandler(serviceManager.Catalog(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), serviceManager.Export(), logger),
		studentHandler:    NewStudentHandler(serviceManager.Auth(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), logger),
		sessionAuth:       sessionAuth,
		serviceManager:    serviceManager,
		cfg:               cfg,
	}
}

// SetupRoutes sets up all application routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(hm.sessionAuth.FlashMiddleware())

	// Public routes
	public := router.Group("/")
	public.Use(hm.sessionAuth.OptionalAuthMiddleware())
	{
		public.GET("/", hm.dashboardHandler.Landing)
		public.GET("/about", hm.dashboardHandler.About)
		public.POST("/feedback", hm.feedbackHandler.Submit)
		public.GET("/feedback/success", hm.feedbackHandler.Success)

		public.POST("/register", hm.authHandler.Register)
		public.POST("/login", hm.authHandler.Login)
		public.POST("/logout", hm.authHandler.Logout)

		public.GET("/courses", hm.courseHandler.ListCourses)
		public.GET("/courses/:id", hm.courseHandler.GetCourse)
	}

	// Authenticated routes
	private := router.Group("/")
	private.Use(hm.sessionAuth.AuthMiddleware())
	{
		private.GET("/profile", hm.authHandler.Profile)
		private.POST("/profile/edit", hm.authHandler.UpdateProfile)

		// Enrollment - students enroll themselves, staff enroll on behalf,
		// every role may list its own
		private.POST("/enrollments", hm.sessionAuth.RequireRoleMiddleware(models.RoleStudent), hm.enrollmentHandler.Enroll)
		private.POST("/enrollments/:student_id", hm.sessionAuth.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.enrollmentHandler.EnrollOnBehalf)
		private.GET("/enrollments", hm.enrollmentHandler.ListOwn)

		// Dashboards
		private.GET("/dashboard/student", hm.sessionAuth.RequireRoleMiddleware(models.RoleStudent), hm.dashboardHandler.StudentDashboard)
		private.GET("/dashboard/teacher", hm.sessionAuth.RequireRoleMiddleware(models.RoleTeacher), hm.dashboardHandler.TeacherDashboard)
		private.GET("/dashboard/admin", hm.sessionAuth.RequireRoleMiddleware(models.RoleAdmin), hm.dashboardHandler.AdminDashboard)

		// Course management - ownership is enforced in the service, the route
		// only gates the role
		manage := private.Group("/courses/:id/manage")
		manage.Use(hm.sessionAuth.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
		{
			manage.GET("", hm.enrollmentHandler.ManageCourse)
			manage.POST("/grade", hm.enrollmentHandler.RecordGrade)
			manage.POST("/status", hm.enrollmentHandler.UpdateStatus)
			manage.GET("/export", hm.enrollmentHandler.ExportRoster)
		}

		// Catalog administration
		private.POST("/courses", hm.sessionAuth.RequireRoleMiddleware(models.RoleAdmin), hm.courseHandler.CreateCourse)

		instructors := private.Group("/instructors")
		{
			instructors.GET("", hm.instructorHandler.ListInstructors)
			instructors.GET("/:id", hm.instructorHandler.GetInstructor)
			instructors.POST("", hm.sessionAuth.RequireRoleMiddleware(models.RoleAdmin), hm.instructorHandler.CreateInstructor)
			instructors.POST("/:id/edit", hm.sessionAuth.RequireRoleMiddleware(models.RoleAdmin), hm.instructorHandler.UpdateInstructor)
		}

		// Account administration - listing is for staff, detail allows
		// self-access (checked in the handler), mutations are admin-only
		students := private.Group("/students")
		{
			students.GET("", hm.sessionAuth.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.studentHandler.ListStudents)
			students.GET("/:id", hm.studentHandler.GetStudent)
			students.POST("", hm.sessionAuth.RequireRoleMiddleware(models.RoleAdmin), hm.studentHandler.CreateAccount)
			students.DELETE("/:id", hm.sessionAuth.RequireRoleMiddleware(models.RoleAdmin), hm.studentHandler.DeleteAccount)
			students.POST("/:id/promote", hm.sessionAuth.RequireRoleMiddleware(models.RoleAdmin), hm.studentHandler.PromoteToTeacher)
		}
	}

	// Uploaded avatars are served by the app itself outside production.
	if hm.cfg.IsDevelopment() {
		router.Static("/media", hm.cfg.MediaRoot)
	}

	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "enrollment-service",
		})
	})
}
