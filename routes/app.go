package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"taskboard/middleware"
	"taskboard/utils"
)

// NewApp builds the Fiber application with the shared middleware stack and
// every route mounted.
func NewApp(deps Dependencies) *fiber.App {
	deps.defaults()

	app := fiber.New(fiber.Config{
		AppName:      "taskboard",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.CORS(deps.CORS))
	if deps.AccessLog {
		app.Use(accessLogger())
	}

	SetupRoutes(app, deps)
	return app
}

// errorHandler answers errors that escape a handler, such as unknown routes
// or a panic caught by recover, in the same shape as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{
			"detail": utils.ErrorDetail{String: fe.Message, Code: utils.CodeInvalid},
		})
	}
	return utils.SendError(c, err)
}
