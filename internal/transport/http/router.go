package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eskro/backend/internal/handlers"
	"github.com/eskro/backend/internal/middleware/auth"
)

// Deps carries everything the route table needs. Handlers are wired once at
// startup; nil optional backends (kafka, elasticsearch) are handled inside
// the handlers themselves.
type Deps struct {
	Guard       *auth.Guard
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	News        *handlers.NewsHandler
	Events      *handlers.EventHandler
	Projects    *handlers.ProjectHandler
	Polls       *handlers.PollHandler
	Banners     *handlers.BannerHandler
	Partners    *handlers.PartnerHandler
	Documents   *handlers.DocumentHandler
	Feedback    *handlers.FeedbackHandler
	Subscribers *handlers.SubscriberHandler
	Contacts    *handlers.ContactsHandler
	Search      *handlers.SearchHandler
}

func Register(e *echo.Echo, d Deps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := e.Group("/api/v1")
	admin := d.Guard.RequireAdmin
	user := d.Guard.RequireUser

	authGroup := api.Group("/auth")
	authGroup.GET("/public-key", d.Auth.PublicKey)
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/confirm-registration", d.Auth.ConfirmRegistration)
	authGroup.POST("/login", d.Auth.Login)
	authGroup.POST("/refresh", d.Auth.Refresh)
	authGroup.POST("/logout", d.Auth.Logout)
	authGroup.POST("/logout-all", d.Auth.LogoutAll)
	authGroup.POST("/send-register-invitation", d.Auth.SendRegisterInvitation, admin)
	authGroup.POST("/change-password", d.Auth.ChangePassword)
	authGroup.POST("/confirm-changing-password", d.Auth.ConfirmChangingPassword)

	users := api.Group("/users")
	users.GET("/me", d.Users.Me, user)
	users.GET("", d.Users.List, admin)
	users.PATCH("", d.Users.Update, user)
	users.POST("/change-password", d.Users.ChangePassword, user)
	users.POST("/:id/activate", d.Users.Activate, admin)
	users.POST("/:id/deactivate", d.Users.Deactivate, admin)
	users.DELETE("/:id", d.Users.Delete, admin)

	news := api.Group("/news")
	news.GET("", d.News.List)
	news.GET("/types", d.News.ListTypes)
	news.POST("/types", d.News.CreateType, admin)
	news.DELETE("/types/:id", d.News.DeleteType, admin)
	news.GET("/:id", d.News.Get)
	news.POST("", d.News.Create, admin)
	news.PATCH("/:id", d.News.Patch, admin)
	news.DELETE("/:id", d.News.Delete, admin)

	events := api.Group("/events")
	events.GET("", d.Events.List)
	events.GET("/:id", d.Events.Get)
	events.POST("", d.Events.Create, admin)
	events.PATCH("/:id", d.Events.Patch, admin)
	events.DELETE("/:id", d.Events.Delete, admin)

	projects := api.Group("/projects")
	projects.GET("", d.Projects.List)
	projects.GET("/:id", d.Projects.Get)
	projects.POST("", d.Projects.Create, admin)
	projects.PATCH("/:id", d.Projects.Patch, admin)
	projects.DELETE("/:id", d.Projects.Delete, admin)

	polls := api.Group("/polls")
	polls.GET("", d.Polls.List)
	polls.GET("/:id", d.Polls.Get)
	polls.POST("", d.Polls.Create, admin)
	polls.PATCH("/:id", d.Polls.Patch, admin)
	polls.DELETE("/:id", d.Polls.Delete, admin)

	banners := api.Group("/banners")
	banners.GET("", d.Banners.List)
	banners.POST("", d.Banners.Create, admin)
	banners.PATCH("/:id", d.Banners.Patch, admin)
	banners.DELETE("/:id", d.Banners.Delete, admin)

	partners := api.Group("/partners")
	partners.GET("", d.Partners.List)
	partners.POST("", d.Partners.Create, admin)
	partners.PATCH("/:id", d.Partners.Patch, admin)
	partners.DELETE("/:id", d.Partners.Delete, admin)

	documents := api.Group("/documents")
	documents.GET("", d.Documents.List)
	documents.POST("", d.Documents.Create, admin)
	documents.PATCH("/:id", d.Documents.Patch, admin)
	documents.DELETE("/:id", d.Documents.Delete, admin)

	feedback := api.Group("/feedback")
	feedback.GET("", d.Feedback.List, admin)
	feedback.POST("", d.Feedback.Create)
	feedback.POST("/:id/response", d.Feedback.Respond, admin)
	feedback.DELETE("/:id", d.Feedback.Delete, admin)

	subscribers := api.Group("/subscribers")
	subscribers.GET("", d.Subscribers.List, admin)
	subscribers.POST("", d.Subscribers.Subscribe)
	subscribers.POST("/confirm", d.Subscribers.Confirm)
	subscribers.DELETE("/:id", d.Subscribers.Delete, admin)

	api.GET("/contacts", d.Contacts.Get)
	api.PUT("/contacts", d.Contacts.Put, admin)

	api.GET("/search", d.Search.Search)
	api.GET("/search/suggestions", d.Search.Suggest)
}
