package policy

import (
	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/handlers"
	"github.com/diewo77/go-printshop/internal/metrics"
	"github.com/diewo77/go-printshop/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouterConfig holds the configured handlers and the authorization gate.
type RouterConfig struct {
	AuthGate *AuthGate

	AuthHandler      *handlers.AuthHandler
	ClientHandler    *handlers.ClientHandler
	ProductHandler   *handlers.ProductHandler
	MaterialHandler  *handlers.MaterialHandler
	OrderHandler     *handlers.OrderHandler
	DashboardHandler *handlers.DashboardHandler

	Users *services.UserService
}

// NewRouterConfig wires services and handlers over db.
//
//	cfg := policy.NewRouterConfig(db, appCfg, log, m)
//	mux.Handle("DELETE /api/clients/{id}",
//		auth.RequireAuth(cfg.AuthGate.RequirePermission("client", gate.ActionDelete)(
//			http.HandlerFunc(cfg.ClientHandler.Delete))))
func NewRouterConfig(db *gorm.DB, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *RouterConfig {
	loc := cfg.App.Location()

	users := services.NewUserService(db, log)
	clients := services.NewClientService(db, log)
	products := services.NewProductService(db, log)
	inventory := services.NewInventoryService(db, log, m)
	orders := services.NewOrderService(db, log, m)
	dashboard := services.NewDashboardService(db, loc)

	return &RouterConfig{
		AuthGate:         NewAuthGate(DBResolver(db)),
		AuthHandler:      handlers.NewAuthHandler(users, log),
		ClientHandler:    handlers.NewClientHandler(clients, log),
		ProductHandler:   handlers.NewProductHandler(products, log),
		MaterialHandler:  handlers.NewMaterialHandler(inventory, log),
		OrderHandler:     handlers.NewOrderHandler(orders, cfg.Company, loc, log),
		DashboardHandler: handlers.NewDashboardHandler(dashboard, log),
		Users:            users,
	}
}
