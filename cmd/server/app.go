package main

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/i18n"
	"github.com/diewo77/go-printshop/internal/db"
	"github.com/diewo77/go-printshop/internal/metrics"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	log       *zap.Logger
	metrics   *metrics.Metrics
	routerCfg *policy.RouterConfig
}

// NewApp creates the application with all routes configured. m may be nil
// to disable metrics.
func NewApp(conn *gorm.DB, routerCfg *policy.RouterConfig, log *zap.Logger, m *metrics.Metrics) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        conn,
		log:       log,
		metrics:   m,
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := a.withRequestID(a.withRecover(a.withLogging(auth.Middleware(withLanguage(a.mux)))))
	handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("GET /healthz", a.healthz)
	if a.metrics != nil {
		a.mux.Handle("GET /metrics", a.metrics.Handler())
	}

	ah := a.routerCfg.AuthHandler
	a.handle("POST /api/auth/login", http.HandlerFunc(ah.Login))
	a.handle("POST /api/auth/logout", http.HandlerFunc(ah.Logout))

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes
	// ─────────────────────────────────────────────────────────────────────────
	a.handle("GET /api/auth/me", auth.RequireAuth(http.HandlerFunc(ah.Me)))
	a.protect("GET /api/users", policy.ResourceUser, gate.ActionList, ah.ListUsers)
	a.protect("POST /api/users", policy.ResourceUser, gate.ActionCreate, ah.CreateUser)

	ch := a.routerCfg.ClientHandler
	a.protect("GET /api/clients", policy.ResourceClient, gate.ActionList, ch.List)
	a.protect("POST /api/clients", policy.ResourceClient, gate.ActionCreate, ch.Create)
	a.protect("GET /api/clients/{id}", policy.ResourceClient, gate.ActionView, ch.Get)
	a.protect("PUT /api/clients/{id}", policy.ResourceClient, gate.ActionUpdate, ch.Update)
	a.protect("DELETE /api/clients/{id}", policy.ResourceClient, gate.ActionDelete, ch.Delete)

	ph := a.routerCfg.ProductHandler
	a.protect("GET /api/products", policy.ResourceProduct, gate.ActionList, ph.List)
	a.protect("POST /api/products", policy.ResourceProduct, gate.ActionCreate, ph.Create)
	a.protect("GET /api/products/{id}", policy.ResourceProduct, gate.ActionView, ph.Get)
	a.protect("PUT /api/products/{id}", policy.ResourceProduct, gate.ActionUpdate, ph.Update)
	a.protect("DELETE /api/products/{id}", policy.ResourceProduct, gate.ActionDelete, ph.Delete)

	mh := a.routerCfg.MaterialHandler
	a.protect("GET /api/materials", policy.ResourceMaterial, gate.ActionList, mh.List)
	a.protect("POST /api/materials", policy.ResourceMaterial, gate.ActionCreate, mh.Create)
	a.protect("GET /api/materials/{id}", policy.ResourceMaterial, gate.ActionView, mh.Get)
	a.protect("PUT /api/materials/{id}", policy.ResourceMaterial, gate.ActionUpdate, mh.Update)
	a.protect("DELETE /api/materials/{id}", policy.ResourceMaterial, gate.ActionDelete, mh.Delete)
	a.protect("PATCH /api/materials/{id}/stock", policy.ResourceMaterial, gate.ActionAdjust, mh.AdjustStock)
	a.protect("GET /api/stock-movements", policy.ResourceMaterial, gate.ActionList, mh.Movements)

	oh := a.routerCfg.OrderHandler
	a.protect("GET /api/orders", policy.ResourceOrder, gate.ActionList, oh.List)
	a.protect("POST /api/orders", policy.ResourceOrder, gate.ActionCreate, oh.Create)
	a.protect("GET /api/orders/{id}", policy.ResourceOrder, gate.ActionView, oh.Get)
	a.protect("PUT /api/orders/{id}", policy.ResourceOrder, gate.ActionUpdate, oh.Update)
	a.protect("PATCH /api/orders/{id}/status", policy.ResourceOrder, gate.ActionUpdate, oh.UpdateStatus)
	a.protect("DELETE /api/orders/{id}", policy.ResourceOrder, gate.ActionDelete, oh.Delete)
	a.protect("GET /api/orders/{id}/pdf", policy.ResourceOrder, gate.ActionView, oh.PDF)

	dh := a.routerCfg.DashboardHandler
	a.protect("GET /api/dashboard/summary", policy.ResourceReport, gate.ActionView, dh.Summary)
	a.protect("GET /api/dashboard/orders-per-day", policy.ResourceReport, gate.ActionView, dh.OrdersPerDay)
	a.protect("GET /api/dashboard/daily-revenue", policy.ResourceReport, gate.ActionView, dh.DailyRevenue)
	a.protect("GET /api/dashboard/monthly-revenue", policy.ResourceReport, gate.ActionView, dh.MonthlyRevenue)
	a.protect("GET /api/dashboard/monthly-revenue/export", policy.ResourceReport, gate.ActionView, dh.ExportMonthly)
	a.protect("GET /api/dashboard/top-products", policy.ResourceReport, gate.ActionView, dh.TopProducts)
}

// handle registers h under pattern, recording request metrics labelled with
// the pattern.
func (a *App) handle(pattern string, h http.Handler) {
	if a.metrics == nil {
		a.mux.Handle(pattern, h)
		return
	}
	a.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(sw, r)
		a.metrics.ObserveRequest(r.Method, pattern, sw.status, time.Since(start))
	}))
}

// protect registers a route that requires a session and the given permission.
func (a *App) protect(pattern, resource string, action gate.Action, h http.HandlerFunc) {
	a.handle(pattern, auth.RequireAuth(a.routerCfg.AuthGate.RequirePermission(resource, action)(h)))
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(a.db.WithContext(r.Context())); err != nil {
		a.log.Warn("health check failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (a *App) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (a *App) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		a.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", w.Header().Get("X-Request-ID")))
	})
}

func (a *App) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				a.log.Error("panic serving request",
					zap.Any("panic", rec), zap.String("path", r.URL.Path), zap.ByteString("stack", debug.Stack()))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withLanguage picks the response language from ?lang= or Accept-Language.
func withLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if q := r.URL.Query().Get("lang"); q != "" {
			lang = i18n.DetectLanguage(q)
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
