// Package server assembles repositories, services and handlers into a Fiber app.
package server

import (
	"context"
	"errors"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/config"
	"urbantales/internal/handlers"
	"urbantales/internal/middleware"
	"urbantales/internal/models"
	"urbantales/internal/repositories"
	"urbantales/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Repositories bundles every store the services need.
type Repositories struct {
	Users         repositories.UserRepository
	Sellers       repositories.SellerRepository
	Products      repositories.ProductRepository
	Orders        repositories.OrderRepository
	Reviews       repositories.ReviewRepository
	Notifications repositories.NotificationRepository
	Carts         repositories.CartRepository
}

// MemoryRepositories keeps documents in process memory and accounts in db.
func MemoryRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         repositories.NewGORMUserRepository(db),
		Sellers:       repositories.NewGORMSellerRepository(db),
		Products:      repositories.NewMemoryProductRepository(),
		Orders:        repositories.NewMemoryOrderRepository(),
		Reviews:       repositories.NewMemoryReviewRepository(),
		Notifications: repositories.NewMemoryNotificationRepository(),
		Carts:         repositories.NewMemoryCartRepository(),
	}
}

// MongoRepositories keeps documents in MongoDB and accounts in db.
func MongoRepositories(store *repositories.MongoStore, db *gorm.DB) Repositories {
	return Repositories{
		Users:         repositories.NewGORMUserRepository(db),
		Sellers:       repositories.NewGORMSellerRepository(db),
		Products:      repositories.NewMongoProductRepository(store),
		Orders:        repositories.NewMongoOrderRepository(store),
		Reviews:       repositories.NewMongoReviewRepository(store),
		Notifications: repositories.NewMongoNotificationRepository(store),
		Carts:         repositories.NewMongoCartRepository(store),
	}
}

// Options configures New.
type Options struct {
	Config *config.Config
	Log    *logrus.Logger
	Repos  Repositories
	// Publisher delivers order events. When nil, events are handled in
	// process by the notification service.
	Publisher services.EventPublisher
	// HealthCheck reports whether the document store is reachable.
	HealthCheck func(ctx context.Context) error
}

// Server is the assembled application.
type Server struct {
	App           *fiber.App
	Auth          *services.AuthService
	Products      *services.ProductService
	Carts         *services.CartService
	Orders        *services.OrderService
	SellerOrders  *services.SellerOrderService
	Reviews       *services.ReviewService
	Notifications *services.NotificationService
}

// New wires services and routes.
func New(opts Options) *Server {
	cfg, log, repos := opts.Config, opts.Log, opts.Repos

	notifications := services.NewNotificationService(repos.Notifications, repos.Products, cfg.NotificationLimit, log)
	publisher := opts.Publisher
	if publisher == nil {
		publisher = services.NewInProcessPublisher(notifications.HandleOrderEvent, log)
	}

	s := &Server{
		Auth:          services.NewAuthService(repos.Users, repos.Sellers, cfg.JWTSecret, cfg.TokenTTL, log),
		Products:      services.NewProductService(repos.Products),
		Carts:         services.NewCartService(repos.Carts, repos.Products),
		Orders:        services.NewOrderService(repos.Orders, repos.Products, repos.Carts, publisher, services.NewPolicy(cfg.ReturnWindowDays), log),
		SellerOrders:  services.NewSellerOrderService(repos.Orders, repos.Products, publisher, log),
		Reviews:       services.NewReviewService(repos.Reviews, repos.Products, repos.Orders, log),
		Notifications: notifications,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(middleware.Metrics())

	app.Get("/health", healthHandler(opts.HealthCheck))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	buyerAuth := middleware.AuthRequired(s.Auth, models.RoleBuyer, log)
	sellerAuth := middleware.AuthRequired(s.Auth, models.RoleSeller, log)

	// Public routes of each handler are registered before its protected
	// groups, since a fiber group middleware applies to the whole prefix.
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(s.Auth, log).RegisterRoutes(apiV1, sellerAuth)
	handlers.NewProductHandler(s.Products, log).RegisterRoutes(apiV1, sellerAuth)
	handlers.NewReviewHandler(s.Reviews, s.Auth, log).RegisterRoutes(apiV1, buyerAuth)
	handlers.NewCartHandler(s.Carts, log).RegisterRoutes(apiV1, buyerAuth)
	handlers.NewOrderHandler(s.Orders, log).RegisterRoutes(apiV1, buyerAuth)
	handlers.NewSellerOrderHandler(s.SellerOrders, log).RegisterRoutes(apiV1, sellerAuth)
	handlers.NewNotificationHandler(s.Notifications, log).RegisterRoutes(apiV1, sellerAuth)

	s.App = app
	return s
}

func healthHandler(check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if check != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				body["status"] = "degraded"
				body["store"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(body)
			}
		}
		return c.JSON(body)
	}
}

// errorHandler renders errors that escape the handlers, such as unknown
// routes, in the same shape as handler errors.
func errorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			kind := apperror.KindDependency
			switch fe.Code {
			case fiber.StatusNotFound:
				kind = apperror.KindNotFound
			case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed, fiber.StatusUnprocessableEntity:
				kind = apperror.KindValidation
			}
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message, "kind": kind})
		}
		log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal error",
			"kind":    apperror.KindDependency,
		})
	}
}
