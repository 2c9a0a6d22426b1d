// handlers/user.go
package handlers

import (
	"write-on-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	app.Get("/users", userService.GetUser)
	app.Post("/users", userService.RegisterUser)
	app.Put("/users", userService.UpdateUser)
}
