package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	controller "taskhub/controllers"
	"taskhub/metrics"
	"taskhub/middleware"
	"taskhub/services"
	"taskhub/utils"
)

// Deps is everything the HTTP surface needs
type Deps struct {
	Services      *services.Services
	Hub           *services.Hub
	Users         middleware.UserLookup
	Scanner       controller.ScanTrigger
	AuthRateLimit int
	RateStorage   fiber.Storage
	AccessLog     bool
}

var accessLogFormat = "[${time}] ${status} - ${latency} ${method} ${path}\n"

func SetupAuthRoutes(app *fiber.App, d Deps) {
	authController := controller.NewAuthController(d.Services.Auth, utils.Logger("auth"))
	userController := controller.NewUserController(d.Services.Users, utils.Logger("users"))

	// Public auth endpoints are rate limited per IP
	auth := app.Group("/auth")
	public := auth.Group("", middleware.AuthRateLimiter(d.AuthRateLimit, d.RateStorage))
	public.Post("/signup", authController.Signup)
	public.Post("/login", authController.Login)
	public.Post("/google", authController.GoogleCode)
	public.Get("/google", authController.GoogleOAuth)
	public.Get("/google/callback", authController.GoogleOAuthCallback)

	auth.Get("/me", middleware.Protected(d.Users), authController.Me)

	users := app.Group("/users", middleware.Protected(d.Users))
	users.Get("/:id", userController.Get)
	users.Put("/name/:id", userController.UpdateName)
	users.Put("/password/:id", userController.SetPassword)
}

func SetupAPIRoutes(app *fiber.App, d Deps) {
	teamController := controller.NewTeamController(d.Services.Teams, d.Services.Reports, utils.Logger("teams"))
	projectController := controller.NewProjectController(d.Services.Projects, utils.Logger("projects"))
	taskController := controller.NewTaskController(d.Services.Tasks, utils.Logger("tasks"))
	commentController := controller.NewCommentController(d.Services.Comments, utils.Logger("comments"))
	fileController := controller.NewFileController(d.Services.Files, utils.Logger("files"))
	notificationController := controller.NewNotificationController(d.Services.Notifications, d.Hub, utils.Logger("notifications"))
	adminController := controller.NewAdminController(d.Scanner, utils.Logger("admin"))

	protected := middleware.Protected(d.Users)

	// Team routes
	teams := app.Group("/teams", protected)
	teams.Get("/", teamController.Mine)
	teams.Post("/", teamController.Create)
	teams.Get("/:teamId<int>/members", teamController.Members)
	teams.Post("/:teamId<int>/members", teamController.AddMember)
	teams.Delete("/:teamId<int>/members/:userId<int>", teamController.RemoveMember)
	teams.Post("/:teamId<int>/leave", teamController.Leave)
	teams.Put("/:teamId<int>", teamController.Update)
	teams.Delete("/:teamId<int>", teamController.Delete)
	teams.Get("/:teamUrl/report", teamController.Report)
	teams.Get("/:teamUrl", teamController.GetByURL)

	// Project routes
	projects := app.Group("/projects", protected)
	projects.Get("/", projectController.List)
	projects.Post("/", projectController.Create)
	projects.Post("/:projectId<int>/participants", projectController.AddParticipant)
	projects.Delete("/:projectId<int>/participants/:userId<int>", projectController.RemoveParticipant)
	projects.Delete("/:projectId<int>", projectController.Delete)
	projects.Get("/:projectUrl", projectController.GetByURL)

	// Task routes
	tasks := app.Group("/tasks", protected)
	tasks.Get("/", taskController.List)
	tasks.Post("/", taskController.Create)
	tasks.Get("/:taskId", taskController.Get)
	tasks.Put("/:taskId", taskController.Update)
	tasks.Put("/:taskId/status", taskController.UpdateStatus)
	tasks.Put("/:taskId/assignees", taskController.ReplaceAssignees)
	tasks.Post("/:taskId/assignees/:userId", taskController.AddAssignee)
	tasks.Delete("/:taskId/assignees/:userId", taskController.RemoveAssignee)
	tasks.Delete("/:taskId", taskController.Delete)

	// Comment routes
	comments := app.Group("/comments", protected)
	comments.Post("/task/:taskId", commentController.Create)
	comments.Get("/task/:taskId", commentController.List)
	comments.Delete("/:commentId", commentController.Delete)
	comments.Post("/:commentId/like", commentController.ToggleLike)

	// File routes
	files := app.Group("/files", protected)
	files.Post("/upload", fileController.Upload)
	files.Get("/task/:taskId", fileController.List)
	files.Get("/download/:fileId", fileController.Download)
	files.Delete("/:fileId", fileController.Delete)

	// Notifications
	app.Get("/notifications", protected, notificationController.List)
	app.Get("/ws/notifications", notificationController.UpgradeWS(d.Users), websocket.New(notificationController.Stream))

	app.Post("/admin/deadlines/scan", protected, adminController.TriggerDeadlineScan)
}

func SetupRoutes(app *fiber.App, d Deps) {
	app.Use(metrics.Instrument())
	if d.AccessLog {
		app.Use(logger.New(logger.Config{Format: accessLogFormat}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	SetupAuthRoutes(app, d)
	SetupAPIRoutes(app, d)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
