// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"boletera/internal/holds"
	"boletera/internal/inventory"
	"boletera/internal/notifications"
	"boletera/internal/orders"
	"boletera/internal/payments"
	"boletera/internal/shared/config"
	"boletera/internal/shared/database"
	"boletera/internal/tickets"
	"boletera/pkg/cache"
	"boletera/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	cache    cache.Service
	notifier notifications.Notifier
	logger   *logger.Logger

	holdService holds.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, cacheSvc cache.Service, notifier notifications.Notifier, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		cache:    cacheSvc,
		notifier: notifier,
		logger:   log,
	}
}

// SetupRoutes configures all application routes and wires the service graph.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	pg := r.db.GetPostgreSQL()

	ledgerRepo := inventory.NewRepository(pg)
	ledgerService := inventory.NewService(ledgerRepo, r.cache, r.config, r.logger)

	holdRepo := holds.NewRepository(pg)
	holdService := holds.NewService(holdRepo, ledgerService, pg, r.config, r.logger)
	r.holdService = holdService

	orderRepo := orders.NewRepository(pg)
	orderService := orders.NewService(orderRepo, holdService, ledgerService, pg, r.logger)

	ticketRepo := tickets.NewRepository(pg)
	ticketService := tickets.NewService(ticketRepo, holdService, r.logger)

	paymentRepo := payments.NewRepository(pg)
	providerClient := payments.NewWebpayClient(&r.config.Provider)
	paymentService := payments.NewService(paymentRepo, orderService, holdService, ticketService,
		r.notifier, providerClient, pg, r.config, r.logger)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		inventory.SetupInventoryRoutes(api, inventory.NewController(ledgerService))
		holds.SetupHoldRoutes(api, holds.NewController(holdService), r.config)
		orders.SetupOrderRoutes(api, orders.NewController(orderService))
		tickets.SetupTicketRoutes(api, tickets.NewController(ticketService))
		payments.SetupPaymentRoutes(api, payments.NewController(paymentService), r.config)
	}
}

// HoldService exposes the hold service so main can start the sweeper against
// the same instance the routes use.
func (r *Router) HoldService() holds.Service {
	return r.holdService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "boletera-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "boletera-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}
