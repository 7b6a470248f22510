package routes

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meatshare/orderbook-backend/api/controllers"
	"github.com/meatshare/orderbook-backend/api/middleware"
	"github.com/meatshare/orderbook-backend/internal/catalog"
	"github.com/meatshare/orderbook-backend/internal/export"
	"github.com/meatshare/orderbook-backend/internal/orders"
	"github.com/meatshare/orderbook-backend/internal/settings"
	"github.com/meatshare/orderbook-backend/pkg/auth/session"
	"github.com/meatshare/orderbook-backend/pkg/config"
	"github.com/meatshare/orderbook-backend/pkg/enums"
	"github.com/meatshare/orderbook-backend/pkg/logger"
	"github.com/meatshare/orderbook-backend/pkg/metrics"
)

// SessionManager is the full session lifecycle the router wires: gating,
// login, and logout.
type SessionManager interface {
	session.Checker
	controllers.SessionOpener
	controllers.SessionRevoker
}

type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Templates   *template.Template
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Sessions    SessionManager
	Orders      orders.Service
	Catalog     catalog.Service
	Settings    settings.Service
	PDF         export.Renderer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	tmpl := deps.Templates
	showPIN := cfg.FeatureFlags.RequirePin

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// Public surface.
	r.Get("/", controllers.OrderForm(enums.ChannelRegular, deps.Catalog, showPIN, tmpl, logg))
	r.Post("/submit_order", controllers.SubmitOrder(enums.ChannelRegular, deps.Orders, deps.Catalog, logg))
	r.Get("/qurbani_order", controllers.OrderForm(enums.ChannelSeasonal, deps.Catalog, showPIN, tmpl, logg))
	r.Post("/submit_qurbani_order", controllers.SubmitOrder(enums.ChannelSeasonal, deps.Orders, deps.Catalog, logg))

	r.Get("/dashboard", controllers.Dashboard(enums.ChannelRegular, deps.Orders, deps.Catalog, tmpl, logg))
	r.Get("/qurbani_dashboard", controllers.Dashboard(enums.ChannelSeasonal, deps.Orders, deps.Catalog, tmpl, logg))

	r.Get("/admin_login", controllers.AdminLoginForm(tmpl, logg))
	r.Post("/admin_login", controllers.AdminLogin(cfg.Session, cfg.Admin, deps.Sessions, logg))
	r.Get("/logout", controllers.Logout(cfg.Session, deps.Sessions, logg))

	// Admin surface, session-gated.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Admin(cfg.Session, deps.Sessions, logg))

		r.Post("/dashboard", controllers.SetSharedCost(deps.Settings, logg))
		r.Post("/confirm_order/{id}", controllers.ConfirmOrder(deps.Orders, logg))
		r.Post("/clear_orders", controllers.ClearOrders(enums.ChannelRegular, deps.Orders, logg))
		r.Get("/edit_order/{id}", controllers.EditOrderForm(deps.Orders, deps.Catalog, tmpl, logg))
		r.Post("/edit_order/{id}", controllers.EditOrder(deps.Orders, deps.Catalog, logg))
		r.Post("/update_prices", controllers.UpdatePrices(deps.Catalog, logg))
		r.Get("/export_confirmed_pdf", controllers.ExportConfirmedPDF(enums.ChannelRegular, deps.Orders, deps.PDF, logg))
		r.Post("/delete_order/{id}", controllers.DeleteOrder(deps.Orders, logg))
		r.Post("/update_payment/{id}", controllers.UpdatePayment(deps.Orders, logg))
	})

	return r
}
