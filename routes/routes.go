package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	controller "taskboard/controllers"
	"taskboard/events"
	"taskboard/middleware"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	DB *gorm.DB

	// Hub feeds the websocket clients of this instance. Publisher is where
	// handlers send their events; it defaults to Hub.
	Hub       *events.Hub
	Publisher events.Publisher

	InviteSecret string
	InviteTTL    time.Duration

	LoginRateLimit int
	// RateLimitStorage holds the limiter counters; nil keeps them in memory.
	RateLimitStorage fiber.Storage

	CORS      middleware.CORSConfig
	AccessLog bool
}

func (d *Dependencies) defaults() {
	if d.Hub == nil {
		d.Hub = events.NewHub()
	}
	if d.Publisher == nil {
		d.Publisher = d.Hub
	}
	if d.InviteTTL <= 0 {
		d.InviteTTL = 72 * time.Hour
	}
	if d.LoginRateLimit <= 0 {
		d.LoginRateLimit = 10
	}
	if len(d.CORS.AllowedMethods) == 0 {
		origins := d.CORS.AllowedOrigins
		d.CORS = middleware.DefaultCORSConfig()
		d.CORS.AllowedOrigins = origins
	}
}

func componentLogger(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}

func accessLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		Output: logrus.StandardLogger().Writer(),
	})
}

// SetupAuthRoutes mounts registration, login and the session endpoints.
func SetupAuthRoutes(app fiber.Router, deps Dependencies) {
	authController := controller.NewAuthController(deps.DB, componentLogger("auth"), deps.InviteSecret)

	app.Post("/register/", authController.Register)
	app.Post("/login/", middleware.LoginRateLimiter(deps.LoginRateLimit, deps.RateLimitStorage), authController.Login)

	session := app.Group("/me", middleware.Authenticated(deps.DB))
	session.Get("/", authController.GetCurrentUser)
	session.Post("/logout/", authController.Logout)
}

// SetupAPIRoutes mounts the board resources. Every mutation is admin-only and
// rejected before its payload is looked at.
func SetupAPIRoutes(app fiber.Router, deps Dependencies) {
	boardController := controller.NewBoardController(deps.DB, componentLogger("boards"), deps.Publisher)
	columnController := controller.NewColumnController(deps.DB, componentLogger("columns"), deps.Publisher)
	taskController := controller.NewTaskController(deps.DB, componentLogger("tasks"), deps.Publisher)
	subtaskController := controller.NewSubtaskController(deps.DB, componentLogger("subtasks"), deps.Publisher)
	userController := controller.NewUserController(deps.DB, componentLogger("users"), deps.Publisher)
	teamController := controller.NewTeamController(componentLogger("teams"), deps.InviteSecret, deps.InviteTTL)

	auth := middleware.Authenticated(deps.DB)
	admin := middleware.AdminOnly()

	boards := app.Group("/boards", auth)
	boards.Get("/", boardController.GetBoards)
	boards.Post("/", admin, boardController.CreateBoard)
	boards.Patch("/", admin, boardController.UpdateBoard)
	boards.Delete("/", admin, boardController.DeleteBoard)

	columns := app.Group("/columns", auth)
	columns.Get("/", columnController.GetColumns)
	columns.Patch("/", admin, columnController.UpdateColumn)

	tasks := app.Group("/tasks", auth)
	tasks.Get("/", taskController.GetTasks)
	tasks.Post("/", admin, taskController.CreateTask)
	tasks.Patch("/", admin, taskController.UpdateTask)
	tasks.Delete("/", admin, taskController.DeleteTask)

	subtasks := app.Group("/subtasks", auth)
	subtasks.Get("/", subtaskController.GetSubtasks)
	subtasks.Post("/", admin, subtaskController.CreateSubtask)
	subtasks.Patch("/", admin, subtaskController.UpdateSubtask)
	subtasks.Delete("/", admin, subtaskController.DeleteSubtask)

	users := app.Group("/users", auth)
	users.Get("/", userController.GetUsers)
	users.Delete("/", admin, userController.DeleteUser)

	teams := app.Group("/teams", auth)
	teams.Get("/invite/", admin, teamController.GetInvite)
}

// SetupEventRoutes mounts the websocket event stream.
func SetupEventRoutes(app fiber.Router, deps Dependencies) {
	eventController := controller.NewEventController(deps.Hub, componentLogger("events"))

	app.Get("/events/",
		middleware.AuthenticatedUpgrade(deps.DB),
		eventController.RequireUpgrade,
		websocket.New(eventController.Stream),
	)
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	deps.defaults()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "running"})
	})

	SetupAuthRoutes(app, deps)
	SetupAPIRoutes(app, deps)
	SetupEventRoutes(app, deps)
}
