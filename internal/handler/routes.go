package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-logger/glog"

	"github.com/schoolgate/identity/internal/auth"
	"github.com/schoolgate/identity/internal/store"
)

type nowFunc = func() time.Time

// Dependencies is everything the HTTP surface needs wired in.
type Dependencies struct {
	Store        *store.Manager
	Auther       *auth.Authenticator
	TokenService *auth.TokenService
	Cookies      CookieSettings
	Logger       *glog.BaseLogger
	Now          nowFunc
}

// RegisterRoutes mounts every endpoint on the app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	authenticated := auth.RequireAuth(deps.TokenService, deps.Store.Users())

	authHandler := NewAuthHandler(deps.Auther, deps.Cookies, deps.Logger.GetLogger("http:auth"))
	userHandler := NewUserHandler(deps.Logger.GetLogger("http:users"))
	roleHandler := NewRoleHandler(deps.Store.Roles(), now, deps.Logger.GetLogger("http:roles"))
	guardianHandler := NewGuardianHandler(deps.Store.Guardians(), now, deps.Logger.GetLogger("http:guardians"))
	studentHandler := NewStudentHandler(deps.Store.Students(), deps.Store.Guardians(), now, deps.Logger.GetLogger("http:students"))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := deps.Store.Validate(c.UserContext()); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authGroup := app.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", authHandler.Logout)

	app.Get("/users/me", authenticated, userHandler.Me)

	roles := app.Group("/roles")
	roles.Get("/health", roleHandler.Health)
	roles.Get("/", roleHandler.List)
	roles.Post("/", authenticated, roleHandler.Create)
	roles.Get("/:id", roleHandler.Get)

	guardians := app.Group("/guardians", authenticated)
	guardians.Get("/", guardianHandler.List)
	guardians.Post("/", guardianHandler.Create)
	guardians.Get("/:id", guardianHandler.Get)
	guardians.Patch("/:id", guardianHandler.Update)
	guardians.Delete("/:id", guardianHandler.Delete)

	students := app.Group("/students", authenticated)
	students.Get("/", studentHandler.List)
	students.Post("/", studentHandler.Create)
	students.Get("/:id", studentHandler.Get)
	students.Patch("/:id", studentHandler.Update)
	students.Delete("/:id", studentHandler.Delete)
}
