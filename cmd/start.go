package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"formulary-manager/core/config"
	"formulary-manager/core/database"
	"formulary-manager/core/loader"
	"formulary-manager/core/logger"
	"formulary-manager/core/middleware/auth"
	"formulary-manager/core/middleware/rayid"
	"formulary-manager/core/storage"

	"formulary-manager/feature/importing"
	"formulary-manager/feature/ingredient"
	"formulary-manager/feature/ingredient/gormstore"
	"formulary-manager/feature/ingredient/memstore"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the formulary manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Pick the Repository
		// MySQL when the database is reachable, otherwise the in-memory
		// fallback so the service still runs (state is lost on restart).
		var repo ingredient.Repository
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Database connection failed, using in-memory repository", zap.Error(err))
			repo = memstore.New()
		} else {
			gs := gormstore.New(db)
			if err := gs.Migrate(); err != nil {
				logg.Fatal("Failed to migrate database schema", zap.Error(err))
			}
			repo = gs
			logg.Info("Connected to formulary database")
		}

		// 4. Initialize Baseline Archive (Optional)
		var archive ingredient.Archive
		if cfg.Storage.Enabled {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			archive = ingredient.NewObjectArchive(client, cfg.Storage.Bucket)
			logg.Info("Baseline archiving enabled", zap.String("bucket", cfg.Storage.Bucket))
		}

		store := ingredient.NewReconcileStore(repo, archive, logg)

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(ingredient.NewFeature(store, logg))
		mgr.Register(importing.NewFeature(store, logg))

		// Middleware Registration
		// RayID must be first so every log line can be traced.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth protects every route.
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
