package main

import (
	"context"
	"fmt"

	"taskboard/cmd/server/handlers"
	authHandlers "taskboard/cmd/server/handlers/auth"
	"taskboard/cmd/server/handlers/httperr"
	notesHandlers "taskboard/cmd/server/handlers/notes"
	profileHandlers "taskboard/cmd/server/handlers/profile"
	tasksHandlers "taskboard/cmd/server/handlers/tasks"
	"taskboard/cmd/server/middlewares"
	"taskboard/internal/clients/mongo"
	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/metrics"
	authServices "taskboard/internal/services/auth"
	notesServices "taskboard/internal/services/notes"
	profileServices "taskboard/internal/services/profile"
	tasksServices "taskboard/internal/services/tasks"
	util "taskboard/internal/utils"
	"taskboard/internal/utils/crypto"

	_ "taskboard/docs" // Load swagger docs

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

const requestLogFormat = "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n"

// Deps are the stores the HTTP layer is built on.
type Deps struct {
	Users authServices.UsersRepo
	Notes notesServices.Repository
	Tasks tasksServices.Repository
	Ping  func(context.Context) error
}

// setupRouter builds the Mongo repositories and the app on top of them.
func setupRouter(ctx context.Context, cfg config.Config) (*fiber.App, error) {
	db := mongo.DB()

	usersRepo, err := mongo.NewUsersRepo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("users repository: %w", err)
	}
	notesRepo, err := mongo.NewNotesRepo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("notes repository: %w", err)
	}
	tasksRepo, err := mongo.NewTasksRepo(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("tasks repository: %w", err)
	}

	return newApp(cfg, Deps{
		Users: usersRepo,
		Notes: notesRepo,
		Tasks: tasksRepo,
		Ping:  mongo.Ping,
	})
}

// newApp configures and returns a Fiber app with all routes
func newApp(cfg config.Config, deps Deps) (*fiber.App, error) {
	v, err := util.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}

	tokens, err := authServices.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	hasher := crypto.NewHasher(cfg.BcryptCost)
	events := metrics.NewAuth()

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.NewHandler(cfg.DevMode),
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: fiber.HeaderXRequestID,
	}))
	app.Use(middlewares.RequestID())

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app, events.Collector())
	}

	// Outside /api so probes are not request-logged
	app.Get("/health", handlers.Health(deps.Ping))
	app.Get("/docs/*", swagger.HandlerDefault)

	var api fiber.Router
	if cfg.RequestLoggingEnabled {
		api = app.Group("/api", fiberlogger.New(fiberlogger.Config{Format: requestLogFormat}))
		logger.L().Info("request logging enabled")
	} else {
		api = app.Group("/api")
		logger.L().Info("request logging disabled")
	}

	gate := middlewares.Auth(tokens, deps.Users, events)

	authSvc := authServices.NewService(deps.Users, hasher, tokens, logger.L())
	authH := authHandlers.NewHandlers(authSvc, v, events)
	authGrp := api.Group("/auth")
	authGrp.Post("/register", authH.Register)
	authGrp.Post("/login", authH.Login)
	authGrp.Get("/me", gate, authH.Me)

	profileH := profileHandlers.NewHandlers(profileServices.NewService(deps.Users, hasher, logger.L()), v)
	profileGrp := api.Group("/profile", gate)
	profileGrp.Get("/", profileH.Get)
	profileGrp.Put("/", profileH.Update)
	profileGrp.Put("/password", profileH.ChangePassword)

	notesH := notesHandlers.NewHandlers(notesServices.NewService(deps.Notes, logger.L()), v)
	notesGrp := api.Group("/notes", gate)
	notesGrp.Get("/", notesH.List)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Get("/:id", notesH.Get)
	notesGrp.Put("/:id", notesH.Update)
	notesGrp.Delete("/:id", notesH.Delete)

	tasksH := tasksHandlers.NewHandlers(tasksServices.NewService(deps.Tasks, logger.L()), v)
	tasksGrp := api.Group("/tasks", gate)
	tasksGrp.Get("/stats/overview", tasksH.Stats)
	tasksGrp.Get("/", tasksH.List)
	tasksGrp.Post("/", tasksH.Create)
	tasksGrp.Get("/:id", tasksH.Get)
	tasksGrp.Put("/:id", tasksH.Update)
	tasksGrp.Delete("/:id", tasksH.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return httperr.Fail(httperr.ErrRouteNotFound)
	})

	return app, nil
}
