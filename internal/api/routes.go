package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/metrics"
	"tidalpower/fitness-studio/internal/service"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth     service.AuthService
	Roster   service.RosterService
	Exercise service.ExerciseService
	Class    service.ClassService
	Booking  service.BookingService
	Template service.TemplateService
	Session  service.SessionService
	Program  service.ProgramService
}

type RouterOptions struct {
	JWTSecret      string
	AllowedOrigins []string
	Metrics        *metrics.Manager
	// Gatherer, when set, is exposed at MetricsPath.
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

// NewRouter builds the gin engine with the standard middleware chain and
// every API route.
func NewRouter(opts RouterOptions, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(), RequestMetrics(opts.Metrics), PanicRecovery(opts.Metrics))
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	if opts.Gatherer != nil {
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	SetupRoutes(router, opts.JWTSecret, svc, opts.Metrics)
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services, mm *metrics.Manager) {
	loc := svc.Class.Location()

	authHandler := NewAuthHandler(svc.Auth)
	rosterHandler := NewRosterHandler(svc.Roster)
	exerciseHandler := NewExerciseHandler(svc.Exercise)
	classHandler := NewClassHandler(svc.Class)
	bookingHandler := NewBookingHandler(svc.Booking, loc, mm)
	templateHandler := NewTemplateHandler(svc.Template)
	sessionHandler := NewSessionHandler(svc.Session, loc, mm)
	programHandler := NewProgramHandler(svc.Program)

	staff := RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", authHandler.Me)

		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerGroup.POST("/clients", rosterHandler.AddClientByEmail)
			trainerGroup.GET("/clients", rosterHandler.GetManagedClients)
		}

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.CreateExercise)
			exerciseGroup.GET("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.GetTrainerExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", RoleMiddleware(domain.RoleTrainer), exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleTrainer), exerciseHandler.DeleteExercise)
			exerciseGroup.POST("/:id/video/upload-url", RoleMiddleware(domain.RoleTrainer), exerciseHandler.RequestVideoUpload)
			exerciseGroup.POST("/:id/video/confirm", RoleMiddleware(domain.RoleTrainer), exerciseHandler.ConfirmVideoUpload)
			exerciseGroup.GET("/:id/video-url", exerciseHandler.GetVideoURL)
			exerciseGroup.GET("/:id/best", sessionHandler.ExerciseBest)
			exerciseGroup.POST("/:id/classify", sessionHandler.ClassifySet)
		}

		classGroup := protected.Group("/classes")
		{
			classGroup.GET("", classHandler.ListClasses)
			classGroup.POST("", staff, classHandler.CreateClass)
			classGroup.GET("/schedule/day", classHandler.DaySchedule)
			classGroup.GET("/schedule/week", classHandler.WeekSchedule)
			classGroup.GET("/schedule/month", classHandler.MonthSchedule)
			classGroup.GET("/:id", classHandler.GetClass)
			classGroup.PUT("/:id", staff, classHandler.UpdateClass)
			classGroup.DELETE("/:id", staff, classHandler.DeactivateClass)
			classGroup.POST("/:id/workout", staff, sessionHandler.AssignWorkout)
		}

		bookingGroup := protected.Group("/bookings")
		{
			bookingGroup.POST("", bookingHandler.BookClass)
			bookingGroup.GET("", bookingHandler.ListBookings)
			bookingGroup.POST("/:id/cancel", bookingHandler.CancelBooking)
		}

		templateGroup := protected.Group("/templates")
		templateGroup.Use(staff)
		{
			templateGroup.POST("", templateHandler.CreateTemplate)
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.GET("/:id", templateHandler.GetTemplate)
		}

		sessionGroup := protected.Group("/workout-sessions")
		{
			sessionGroup.POST("", sessionHandler.StartSession)
			sessionGroup.GET("", staff, sessionHandler.ListSessions)
			sessionGroup.GET("/:id", sessionHandler.GetSession)
			sessionGroup.GET("/:id/matrix", sessionHandler.GetMatrix)
			sessionGroup.POST("/:id/sets", sessionHandler.SubmitSets)
		}

		programGroup := protected.Group("/programs")
		{
			programGroup.POST("", staff, programHandler.CreateProgram)
			programGroup.GET("", staff, programHandler.ListPrograms)
			programGroup.GET("/:id", programHandler.GetProgram)
			programGroup.POST("/:id/assignments", staff, programHandler.AssignProgram)
		}

		assignmentGroup := protected.Group("/program-assignments")
		{
			assignmentGroup.GET("", programHandler.ListAssignments)
			assignmentGroup.POST("/:id/advance", staff, programHandler.AdvanceAssignment)
			assignmentGroup.GET("/:id/timeline", programHandler.GetTimeline)
		}
	}
}
