package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/proxymarket/admin-api/internal/adapters/marketapi"
	"github.com/proxymarket/admin-api/internal/domain/model"
)

var (
	errNoSession = errors.New("Veuillez vous connecter.")
	errForbidden = errors.New("Accès refusé.")
)

// UpstreamProxy is the slice of the marketplace API client the resource
// handlers use. *marketapi.Client satisfies it.
type UpstreamProxy interface {
	List(ctx context.Context, token, path string, query url.Values) (marketapi.ListResult, error)
	Get(ctx context.Context, token, path string) (json.RawMessage, error)
	Create(ctx context.Context, token, path string, body any) (json.RawMessage, error)
	Update(ctx context.Context, token, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, token, path string) error
}

var _ UpstreamProxy = (*marketapi.Client)(nil)

// validator is implemented by every request body the handlers accept.
type validator interface {
	Validate() error
}

// ResourceHandlers proxies the dashboard CRUD screens to the marketplace
// API. Every call reuses the session token for the request's scope; the
// guards have already established there is one.
type ResourceHandlers struct {
	Market   UpstreamProxy
	Sessions SessionManager
	Logger   *slog.Logger
}

// token returns the upstream token for the request's scope. A false answer
// is already written as a 401.
func (h *ResourceHandlers) token(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, ok := h.Sessions.Token(r.Context(), ScopeFromContext(r.Context()))
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errNoSession,
		})
	}
	return token, ok
}

func (h *ResourceHandlers) list(w http.ResponseWriter, r *http.Request, path string) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	result, err := h.Market.List(r.Context(), token, path, ParseListParams(r).Values())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"items": result.Items,
		"total": result.Total,
	})
}

func (h *ResourceHandlers) get(w http.ResponseWriter, r *http.Request, path string) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	data, err := h.Market.Get(r.Context(), token, path)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"item": data})
}

func (h *ResourceHandlers) create(w http.ResponseWriter, r *http.Request, path string, body validator) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	if !DecodeJSON(w, r, body) {
		return
	}
	if err := body.Validate(); err != nil {
		WriteAppError(w, err)
		return
	}

	data, err := h.Market.Create(r.Context(), token, path, body)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"item": data})
}

func (h *ResourceHandlers) update(w http.ResponseWriter, r *http.Request, path string, body validator) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	if !DecodeJSON(w, r, body) {
		return
	}
	if err := body.Validate(); err != nil {
		WriteAppError(w, err)
		return
	}

	data, err := h.Market.Update(r.Context(), token, path, body)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"item": data})
}

func (h *ResourceHandlers) delete(w http.ResponseWriter, r *http.Request, path string) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}

	if err := h.Market.Delete(r.Context(), token, path); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Shops.

func (h *ResourceHandlers) ListShops(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "/admin/shops")
}

func (h *ResourceHandlers) GetShop(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, "/admin/shops/"+r.PathValue("id"))
}

func (h *ResourceHandlers) CreateShop(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, "/admin/shops", &model.ShopRequest{})
}

func (h *ResourceHandlers) UpdateShop(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "/admin/shops/"+r.PathValue("id"), &model.ShopRequest{})
}

func (h *ResourceHandlers) DeleteShop(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "/admin/shops/"+r.PathValue("id"))
}

// Couriers.

func (h *ResourceHandlers) ListCouriers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "/admin/couriers")
}

func (h *ResourceHandlers) GetCourier(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, "/admin/couriers/"+r.PathValue("id"))
}

func (h *ResourceHandlers) CreateCourier(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, "/admin/couriers", &model.CourierRequest{})
}

func (h *ResourceHandlers) UpdateCourier(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "/admin/couriers/"+r.PathValue("id"), &model.CourierRequest{})
}

func (h *ResourceHandlers) DeleteCourier(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "/admin/couriers/"+r.PathValue("id"))
}

// Clients.

func (h *ResourceHandlers) ListClients(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "/admin/clients")
}

func (h *ResourceHandlers) GetClient(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, "/admin/clients/"+r.PathValue("id"))
}

func (h *ResourceHandlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "/admin/clients/"+r.PathValue("id"), &model.ClientRequest{})
}

func (h *ResourceHandlers) DeleteClient(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "/admin/clients/"+r.PathValue("id"))
}

// Products.

func (h *ResourceHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "/admin/products")
}

func (h *ResourceHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, "/admin/products/"+r.PathValue("id"))
}

func (h *ResourceHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, "/admin/products", &model.ProductRequest{})
}

func (h *ResourceHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "/admin/products/"+r.PathValue("id"), &model.ProductRequest{})
}

func (h *ResourceHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "/admin/products/"+r.PathValue("id"))
}

// Orders. Orders are created by the storefront, never from the dashboard;
// the only write is a status transition.

func (h *ResourceHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "/admin/orders")
}

func (h *ResourceHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, "/admin/orders/"+r.PathValue("id"))
}

func (h *ResourceHandlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "/admin/orders/"+r.PathValue("id")+"/status", &model.OrderStatusRequest{})
}

// Banners.

func (h *ResourceHandlers) ListBanners(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "/admin/banners")
}

func (h *ResourceHandlers) CreateBanner(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, "/admin/banners", &model.BannerRequest{})
}

func (h *ResourceHandlers) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "/admin/banners/"+r.PathValue("id"), &model.BannerRequest{})
}

func (h *ResourceHandlers) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "/admin/banners/"+r.PathValue("id"))
}

// Admins.

func (h *ResourceHandlers) ListAdmins(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "/admin/users")
}

func (h *ResourceHandlers) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, "/admin/users", &model.AdminRequest{})
}

func (h *ResourceHandlers) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "/admin/users/"+r.PathValue("id"), &model.AdminRequest{})
}

func (h *ResourceHandlers) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "/admin/users/"+r.PathValue("id"))
}
