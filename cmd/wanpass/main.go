package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/wanpass/wanpass/app/repository"
	"github.com/wanpass/wanpass/internal/pkg/auth"
	"github.com/wanpass/wanpass/internal/pkg/cache"
	"github.com/wanpass/wanpass/internal/pkg/certificate"
	"github.com/wanpass/wanpass/internal/pkg/classify"
	"github.com/wanpass/wanpass/internal/pkg/database"
	"github.com/wanpass/wanpass/internal/pkg/env"
	"github.com/wanpass/wanpass/internal/pkg/profile"
	"github.com/wanpass/wanpass/internal/pkg/router"
	"github.com/wanpass/wanpass/internal/pkg/storage"
)

func main() {
	app, err := NewApplication()
	if err != nil {
		log.Fatal(err)
	}
	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "4000"))
	log.Fatal(app.Listen(addr))
}

// NewApplication wires the whole service: database, storage, AI clients and
// the Fiber app with all routes installed.
func NewApplication() (*fiber.App, error) {
	env.SetupEnvFile()

	db, err := database.Connect()
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	cache.SetupCache()

	repos := repository.NewFactory(db).GetRepositories()
	if err := auth.EnsureInitialAdmin(repos.Admin); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	blob, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	// NewOpenAI returns a typed nil when no key is configured; only a
	// non-nil client may reach the interface, or the fallback check in the
	// profile service never fires.
	var narrator profile.Generator
	if openai := profile.NewOpenAI(); openai != nil {
		narrator = openai
	} else {
		fiberlog.Warn("[Profile] OPENAI_API_KEY not set, profile generation uses the default persona")
	}

	deps := router.Deps{
		Repos:      repos,
		Blob:       blob,
		Classifier: classify.NewClarifai(),
		Profiles:   profile.NewService(narrator),
		Compositor: certificate.NewGenerator(
			env.GetEnv("LICENSE_TEMPLATE_PATH", "assets/license_template.png"),
			env.GetEnv("LICENSE_FONT_PATH", ""),
		),
	}

	app := fiber.New(fiber.Config{
		AppName:   "wanpass",
		BodyLimit: 25 * 1024 * 1024,
	})
	app.Use(recover.New(), logger.New())

	router.InstallRouter(app, deps)
	return app, nil
}
