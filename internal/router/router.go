package router

import (
	"github.com/SimpnicServerTeam/scs-user-federation/internal/handlers"
	"github.com/labstack/echo/v4"
)

// SetupFederationRoutes registers the host-facing federation API. auth runs
// before every route in the group.
func SetupFederationRoutes(e *echo.Echo, h *handlers.FederationHandler, auth ...echo.MiddlewareFunc) {
	api := e.Group("/api/federation", auth...)

	users := api.Group("/users")
	users.GET("", h.SearchUsers)                             // Search by criteria
	users.GET("/by-attribute", h.SearchUsersByAttribute)     // Exact custom attribute match
	users.GET("/by-username/:username", h.GetUserByUsername) // Exact username
	users.GET("/by-email/:email", h.GetUserByEmail)          // Exact email
	users.GET("/:id", h.GetUser)                             // Opaque id

	credentials := api.Group("/credentials")
	credentials.POST("/validate", h.ValidateCredential)
	credentials.GET("/types/:type", h.SupportsCredentialType)
}
