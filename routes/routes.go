package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskboard-backend/controllers"
	"taskboard-backend/middlewares"
)

// Register wires all HTTP routes. ResolveIdentity and RateLimit are mounted
// app-wide in main; here only the per-route gates (RequireAuth, Idempotency)
// are attached. Idempotency runs after RequireAuth so records are scoped to a
// resolved caller, and only on the keyed create endpoints.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	auth := api.Group("/auth")
	auth.Post("/register", controllers.Register)
	auth.Post("/login", controllers.Login)
	auth.Post("/refresh", controllers.Refresh)
	auth.Post("/logout", controllers.Logout)
	auth.Get("/me", middlewares.RequireAuth(), controllers.Me)

	// v1: basic shape, everything behind auth
	v1 := api.Group("/v1", middlewares.RequireAuth())
	v1.Post("/tasks", middlewares.Idempotency(), controllers.CreateTask)
	v1.Get("/tasks", controllers.ListTasks)
	v1.Get("/tasks/:id", controllers.GetTask)
	v1.Put("/tasks/:id", controllers.UpdateTask)
	v1.Patch("/tasks/:id/status", controllers.UpdateTaskStatus)
	v1.Delete("/tasks/:id", controllers.DeleteTask)

	// v2: full shape, reads optionally authenticated
	v2 := api.Group("/v2")
	v2.Get("/tasks", controllers.ListTasksV2)
	v2.Get("/tasks/:id", controllers.GetTaskV2)
	v2.Post("/tasks", middlewares.RequireAuth(), middlewares.Idempotency(), controllers.CreateTaskV2)
	v2.Put("/tasks/:id", middlewares.RequireAuth(), controllers.UpdateTaskV2)
	v2.Patch("/tasks/:id/status", middlewares.RequireAuth(), controllers.UpdateTaskStatusV2)
	v2.Delete("/tasks/:id", middlewares.RequireAuth(), controllers.DeleteTaskV2)
	v2.Delete("/users/me", middlewares.RequireAuth(), controllers.DeleteMe)
}
