package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/wanpass/wanpass/app/controllers"
	"github.com/wanpass/wanpass/app/repository"
	"github.com/wanpass/wanpass/internal/pkg/certificate"
	"github.com/wanpass/wanpass/internal/pkg/classify"
	"github.com/wanpass/wanpass/internal/pkg/env"
	"github.com/wanpass/wanpass/internal/pkg/middleware"
	"github.com/wanpass/wanpass/internal/pkg/profile"
	"github.com/wanpass/wanpass/internal/pkg/storage"
)

// Deps carries everything the handlers need. Built once in main and handed
// in; no package globals.
type Deps struct {
	Repos      *repository.Repositories
	Blob       storage.Blob
	Classifier classify.Classifier
	Profiles   *profile.Service
	Compositor *certificate.Generator
}

// InstallRouter registers all public and admin routes.
func InstallRouter(app *fiber.App, d Deps) {
	authController := controllers.NewAuthController(d.Repos.Admin)
	eventController := controllers.NewEventController(d.Repos.Event)
	adminEvents := controllers.NewAdminEventController(d.Repos.Event, d.Repos.License, d.Blob)
	licenseController := controllers.NewLicenseController(d.Repos.Event, d.Repos.License, d.Blob)
	petController := controllers.NewPetController(d.Classifier, d.Profiles, d.Compositor, d.Blob)

	api := app.Group("/api", limiter.New(limiter.Config{Max: 120}))
	api.Get("/test", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Pet License API is working"})
	})

	api.Get("/events/:code", eventController.HandleGetEventByCode)

	licenses := api.Group("/licenses")
	// static by-event-id routes before the :code wildcard
	licenses.Get("/by-event-id/:id", licenseController.HandleListLicensesByEventID)
	licenses.Get("/by-event-id/:id/paginated", licenseController.HandleListLicensesPaginatedByEventID)
	licenses.Get("/by-event-id/:id/new", licenseController.HandleListNewLicensesByEventID)
	licenses.Post("/:code/save", licenseController.HandleSaveLicense)
	licenses.Get("/:code", licenseController.HandleListLicensesByCode)
	licenses.Get("/:code/paginated", licenseController.HandleListLicensesPaginatedByCode)
	licenses.Get("/:code/new", licenseController.HandleListNewLicensesByCode)

	api.Post("/analyze-pet", petController.HandleAnalyzePet)
	api.Post("/generate-license", petController.HandleGenerateLicense)
	api.Post("/generate-profile", petController.HandleGenerateProfile)

	admin := api.Group("/admin")
	admin.Post("/login", authController.HandleLogin)

	// everything below requires a bearer token
	admin.Use(middleware.RequireAdmin(d.Repos.Admin))
	admin.Get("/me", authController.HandleMe)
	admin.Get("/events", adminEvents.HandleListEvents)
	admin.Post("/events", adminEvents.HandleCreateEvent)
	admin.Get("/events/:id", adminEvents.HandleGetEvent)
	admin.Put("/events/:id", adminEvents.HandleUpdateEvent)
	admin.Delete("/events/:id", adminEvents.HandleDeleteEvent)
	admin.Delete("/licenses/:id", licenseController.HandleDeleteLicense)

	// locally stored blobs are served straight from disk
	if env.GetEnv("STORAGE_DRIVER", "local") == "local" {
		app.Static("/storage", env.GetEnv("STORAGE_PATH", "storage"))
	}
}
