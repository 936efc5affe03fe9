package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vlasenko/contacts_api/internal/handlers"
	appmw "github.com/vlasenko/contacts_api/internal/middleware"
	"github.com/vlasenko/contacts_api/internal/service"
)

type Deps struct {
	Auth           *service.AuthService
	AuthHandler    *handlers.AuthHandler
	ContactHandler *handlers.ContactHandler
	UserHandler    *handlers.UserHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/refresh_token", d.AuthHandler.Refresh)
	auth.GET("/confirmed_email/:token", d.AuthHandler.ConfirmEmail)
	auth.POST("/request_email", d.AuthHandler.RequestEmail)
	auth.POST("/reset_password", d.AuthHandler.ResetPassword)
	auth.POST("/reset_password_new/:token", d.AuthHandler.ResetPasswordNew)

	requireAuth := appmw.RequireAuth(d.Auth)

	contacts := api.Group("/contacts", requireAuth)
	// Admission control on the hottest read; 10 requests per minute.
	contacts.GET("", d.ContactHandler.List,
		middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10.0/60.0)))
	contacts.POST("", d.ContactHandler.Create)
	contacts.GET("/by_id/:id", d.ContactHandler.GetByID)
	contacts.GET("/by_name/:name", d.ContactHandler.GetByName)
	contacts.GET("/by_lastname/:lastname", d.ContactHandler.GetByLastname)
	contacts.GET("/by_email/:email", d.ContactHandler.GetByEmail)
	contacts.GET("/birthdays_along_week", d.ContactHandler.BirthdaysAlongWeek)
	contacts.GET("/search", d.ContactHandler.Search)
	contacts.PUT("/:id", d.ContactHandler.Update)
	contacts.DELETE("/:id", d.ContactHandler.Delete)

	users := api.Group("/users", requireAuth)
	users.GET("/me", d.UserHandler.Me)
	users.PATCH("/avatar", d.UserHandler.UpdateAvatar)
}
