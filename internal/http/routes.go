package httpx

import (
	"log/slog"
	"net/http"

	"github.com/proxymarket/admin-api/internal/ports"
)

// AdminRoles are the role slugs allowed to manage admin accounts.
var AdminRoles = []string{"super_admin", "admin"}

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions SessionManager
	Reports  ReportProvider
	Market   UpstreamProxy
	// Optional: SSO sign-in as an alternative to password login.
	SSO          ports.SSOProvider
	SSOSessions  SSOSessionInstaller
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router with the middleware
// chain applied.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessionHandlers := &SessionHandlers{Sessions: services.Sessions, Logger: logger}
	resourceHandlers := &ResourceHandlers{
		Market:   services.Market,
		Sessions: services.Sessions,
		Logger:   logger,
	}
	reportHandlers := &ReportHandlers{Reports: services.Reports, Sessions: services.Sessions}

	registerSessionRoutes(mux, sessionHandlers, services.Sessions)
	registerResourceRoutes(mux, resourceHandlers, services.Sessions)
	mux.Handle("GET /api/reports/overview",
		RequireAuth(services.Sessions)(http.HandlerFunc(reportHandlers.Overview)))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.SSO != nil && services.SSOSessions != nil {
		ssoHandlers := &SSOHandlers{
			Provider:     services.SSO,
			Sessions:     services.SSOSessions,
			CookieDomain: services.CookieDomain,
			Logger:       logger,
		}
		mux.HandleFunc("GET /auth/sso/login", ssoHandlers.Begin)
		mux.HandleFunc("GET /auth/sso/callback", ssoHandlers.Callback)
	}

	return Recover(logger)(Logging(logger)(Scope()(mux)))
}

func registerSessionRoutes(mux *http.ServeMux, h *SessionHandlers, sessions SessionManager) {
	mux.HandleFunc("GET /api/session", h.Status)
	mux.HandleFunc("POST /api/session/login", h.Login)
	mux.HandleFunc("POST /api/session/logout", h.Logout)
	mux.Handle("PATCH /api/session/profile",
		RequireAuth(sessions)(http.HandlerFunc(h.UpdateProfile)))
}

func registerResourceRoutes(mux *http.ServeMux, h *ResourceHandlers, sessions SessionManager) {
	authed := RequireAuth(sessions)

	registerCRUD(mux, crudRoutes{
		Base:       "/api/shops",
		List:       h.ListShops,
		GetByID:    h.GetShop,
		Create:     h.CreateShop,
		Update:     h.UpdateShop,
		Delete:     h.DeleteShop,
		Middleware: authed,
	})
	registerCRUD(mux, crudRoutes{
		Base:       "/api/couriers",
		List:       h.ListCouriers,
		GetByID:    h.GetCourier,
		Create:     h.CreateCourier,
		Update:     h.UpdateCourier,
		Delete:     h.DeleteCourier,
		Middleware: authed,
	})
	registerCRUD(mux, crudRoutes{
		Base:       "/api/products",
		List:       h.ListProducts,
		GetByID:    h.GetProduct,
		Create:     h.CreateProduct,
		Update:     h.UpdateProduct,
		Delete:     h.DeleteProduct,
		Middleware: authed,
	})

	// Clients have no dashboard-side creation; they register through the
	// storefront.
	mux.Handle("GET /api/clients", authed(http.HandlerFunc(h.ListClients)))
	mux.Handle("GET /api/clients/{id}", authed(http.HandlerFunc(h.GetClient)))
	mux.Handle("PUT /api/clients/{id}", authed(http.HandlerFunc(h.UpdateClient)))
	mux.Handle("DELETE /api/clients/{id}", authed(http.HandlerFunc(h.DeleteClient)))

	// Orders: read plus status transitions only.
	mux.Handle("GET /api/orders", authed(http.HandlerFunc(h.ListOrders)))
	mux.Handle("GET /api/orders/{id}", authed(http.HandlerFunc(h.GetOrder)))
	mux.Handle("PATCH /api/orders/{id}/status", authed(http.HandlerFunc(h.UpdateOrderStatus)))

	mux.Handle("GET /api/banners", authed(http.HandlerFunc(h.ListBanners)))
	mux.Handle("POST /api/banners", authed(http.HandlerFunc(h.CreateBanner)))
	mux.Handle("PUT /api/banners/{id}", authed(http.HandlerFunc(h.UpdateBanner)))
	mux.Handle("DELETE /api/banners/{id}", authed(http.HandlerFunc(h.DeleteBanner)))

	// Admin account management is restricted by role, not just presence of
	// a session.
	adminOnly := RequireRole(sessions, AdminRoles...)
	mux.Handle("GET /api/admins", adminOnly(http.HandlerFunc(h.ListAdmins)))
	mux.Handle("POST /api/admins", adminOnly(http.HandlerFunc(h.CreateAdmin)))
	mux.Handle("PUT /api/admins/{id}", adminOnly(http.HandlerFunc(h.UpdateAdmin)))
	mux.Handle("DELETE /api/admins/{id}", adminOnly(http.HandlerFunc(h.DeleteAdmin)))
}

type crudRoutes struct {
	Base       string
	Create     http.HandlerFunc
	List       http.HandlerFunc
	GetByID    http.HandlerFunc
	Update     http.HandlerFunc
	Delete     http.HandlerFunc
	Middleware func(http.Handler) http.Handler
}

func registerCRUD(mux *http.ServeMux, cfg crudRoutes) {
	if cfg.Base == "" {
		panic("registerCRUD: Base must not be empty")
	}
	if cfg.Create == nil ||
		cfg.List == nil ||
		cfg.GetByID == nil ||
		cfg.Update == nil ||
		cfg.Delete == nil {
		panic("registerCRUD: nil handler for base " + cfg.Base)
	}

	wrap := func(h http.HandlerFunc) http.Handler {
		if cfg.Middleware != nil {
			return cfg.Middleware(h)
		}
		return h
	}
	mux.Handle("POST "+cfg.Base, wrap(cfg.Create))
	mux.Handle("GET "+cfg.Base, wrap(cfg.List))
	mux.Handle("GET "+cfg.Base+"/{id}", wrap(cfg.GetByID))
	mux.Handle("PUT "+cfg.Base+"/{id}", wrap(cfg.Update))
	mux.Handle("DELETE "+cfg.Base+"/{id}", wrap(cfg.Delete))
}
