package routes

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/fathimasithara01/caseflow/internal/cache"
	"github.com/fathimasithara01/caseflow/internal/documents"
	"github.com/fathimasithara01/caseflow/internal/google"
	"github.com/fathimasithara01/caseflow/internal/handlers"
	"github.com/fathimasithara01/caseflow/internal/metrics"
	"github.com/fathimasithara01/caseflow/internal/middleware"
	"github.com/fathimasithara01/caseflow/internal/models"
	"github.com/fathimasithara01/caseflow/internal/services"
	"github.com/fathimasithara01/caseflow/internal/upload"
)

// Deps bundles everything route registration needs.
type Deps struct {
	JWTSecret  string
	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Clients    *handlers.ClientHandler
	Cases      *handlers.CaseHandler
	Events     *handlers.EventHandler
	Contacts   *handlers.ContactHandler
	Dashboard  *handlers.DashboardHandler
	Photos     *handlers.PhotoHandler
	Firms      *handlers.FirmHandler
	CaseDocs   *documents.Handlers
	Uploads    *upload.Middleware
	Google     *google.Service
	CacheStore *cache.Store
	Limiter    *middleware.RateLimiter
	MaxBatch   int
}

func Register(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// public
	app.Post("/contacts", d.Contacts.Create)
	app.Post("/auth/register", d.Auth.Register)
	app.Post("/auth/login", d.Auth.Login)

	auth := middleware.JWTAuth(d.JWTSecret)
	admin := middleware.RequireRole(models.RoleAdmin)

	api := app.Group("/", auth)

	api.Get("/contacts", admin, d.Contacts.List)

	users := api.Group("/users")
	users.Get("/", d.Users.List)
	users.Get("/:id", d.Users.Get)
	users.Patch("/:id", d.Users.Update)
	users.Delete("/:id", admin, d.Users.Delete)

	clients := api.Group("/clients")
	clients.Post("/", d.Clients.Create)
	clients.Get("/", d.Clients.List)
	clients.Get("/:id", d.Clients.Get)
	clients.Patch("/:id", d.Clients.Update)
	clients.Delete("/:id", d.Clients.Delete)

	events := api.Group("/events")
	events.Post("/", d.Events.Create)
	events.Get("/", d.Events.List)
	events.Get("/:id", d.Events.Get)
	events.Patch("/:id", d.Events.Update)
	events.Delete("/:id", d.Events.Delete)

	cases := api.Group("/cases")
	cases.Post("/", d.Cases.Create)
	cases.Get("/", d.Cases.List)
	cases.Get("/:id", d.Cases.Get)
	cases.Patch("/:id", d.Cases.Update)
	cases.Delete("/:id", d.Cases.Delete)

	// embedded documents, rate limited on the write path
	uploadLimit := d.Limiter.ByIP()
	cases.Post("/:id/documents", uploadLimit, d.Uploads.Single(), d.CaseDocs.Create)
	cases.Post("/:id/documents/batch", uploadLimit, d.Uploads.Multiple(d.MaxBatch), d.CaseDocs.CreateBatch)
	cases.Get("/:parentId/documents/:documentId", d.CaseDocs.Download)
	cases.Get("/:parentId/documents/:documentId/download", d.CaseDocs.Download)
	cases.Delete("/:parentId/documents/:documentId", d.CaseDocs.Remove)

	api.Post("/photos", uploadLimit, d.Photos.Upload)

	api.Get("/dashboard", cache.MiddlewareKeyed(d.CacheStore, func(c *fiber.Ctx) string {
		firmID, _ := c.Locals("firm_id").(string)
		return services.DashboardKey(firmID)
	}), d.Dashboard.Get)

	api.Post("/google/create-token", d.Google.CreateToken)
	api.Post("/google/create-events", d.Google.CreateEvents)

	api.Delete("/firms/:firmId/storage", admin, d.Firms.PurgeStorage)
}
