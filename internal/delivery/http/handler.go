package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flamexyy/bloemige-storefront/internal/commerce"
	"github.com/flamexyy/bloemige-storefront/internal/entity"
	"github.com/flamexyy/bloemige-storefront/internal/service"
)

// cartCookieMaxAge matches the persisted record's 30-day expiry window.
const cartCookieMaxAge = 30 * 24 * time.Hour

// Catalog is the slice of the commerce backend the handler reads products
// through.
type Catalog interface {
	ProductByHandle(ctx context.Context, handle string) (*entity.Product, error)
	Products(ctx context.Context, first int) ([]entity.Product, error)
}

// Handler exposes the storefront core over HTTP.
type Handler struct {
	catalog    Catalog
	carts      *service.CartService
	favorites  *service.FavoritesService
	checkout   *service.CheckoutService
	orders     *service.OrderService
	cookieName string
	log        *logrus.Logger
}

func NewHandler(
	catalog Catalog,
	carts *service.CartService,
	favorites *service.FavoritesService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
	cookieName string,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		catalog:    catalog,
		carts:      carts,
		favorites:  favorites,
		checkout:   checkout,
		orders:     orders,
		cookieName: cookieName,
		log:        log,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/products", h.handleListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{handle}", h.handleGetProduct).Methods(http.MethodGet)
	r.HandleFunc("/api/cart", h.handleGetCart).Methods(http.MethodGet)
	r.HandleFunc("/api/cart", h.handleClearCart).Methods(http.MethodDelete)
	r.HandleFunc("/api/cart/items", h.handleAddItem).Methods(http.MethodPost)
	r.HandleFunc("/api/cart/items/{variantID}", h.handleUpdateItem).Methods(http.MethodPatch)
	r.HandleFunc("/api/cart/items/{variantID}", h.handleRemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/api/checkout", h.handleCreateCheckout).Methods(http.MethodPost)
	r.HandleFunc("/api/orders", h.handleListOrders).Methods(http.MethodGet)
	r.HandleFunc("/api/favorites", h.handleListFavorites).Methods(http.MethodGet)
	r.HandleFunc("/api/favorites/{handle}", h.handleToggleFavorite).Methods(http.MethodPost)
}

// cartID reads the session's cart id cookie, issuing a fresh one when
// absent. The cookie's lifetime and SameSite=Lax policy mirror the
// persisted cart record contract.
func (h *Handler) cartID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cartCookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context(), 50)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

type productResponse struct {
	Product           *entity.Product   `json:"product"`
	DefaultSelections map[string]string `json:"defaultSelections"`
	SelectedVariant   *entity.Variant   `json:"selectedVariant,omitempty"`
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	product, err := h.catalog.ProductByHandle(r.Context(), handle)
	if err != nil {
		h.respondError(w, err)
		return
	}

	// Seed the initially selected variant from the default selections.
	selections := product.DefaultSelections()
	respondJSON(w, http.StatusOK, productResponse{
		Product:           product,
		DefaultSelections: selections,
		SelectedVariant:   product.ResolveVariant(selections),
	})
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)
	respondJSON(w, http.StatusOK, h.carts.Snapshot(r.Context(), cartID))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)
	respondJSON(w, http.StatusOK, h.carts.Clear(r.Context(), cartID))
}

type addItemRequest struct {
	Handle     string            `json:"handle"`
	Selections map[string]string `json:"selections"`
	Quantity   int               `json:"quantity"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.ProductByHandle(r.Context(), req.Handle)
	if err != nil {
		h.respondError(w, err)
		return
	}

	selections := req.Selections
	if len(selections) == 0 {
		selections = product.DefaultSelections()
	}
	variant := product.ResolveVariant(selections)
	if variant == nil || !variant.AvailableForSale {
		http.Error(w, "variant not available", http.StatusConflict)
		return
	}

	cartID := h.cartID(w, r)
	view := h.carts.Add(r.Context(), cartID, entity.CartItem{
		VariantID:         variant.ID,
		ProductID:         product.ID,
		Handle:            product.Handle,
		Title:             product.Title,
		VariantTitle:      variant.Title,
		Image:             product.FeaturedImage().URL,
		Price:             variant.Price,
		CompareAtPrice:    variant.CompareAtPrice,
		Quantity:          req.Quantity,
		QuantityAvailable: variant.QuantityAvailable,
	})
	respondJSON(w, http.StatusOK, view)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cartID := h.cartID(w, r)
	variantID := mux.Vars(r)["variantID"]
	respondJSON(w, http.StatusOK, h.carts.UpdateQuantity(r.Context(), cartID, variantID, req.Quantity))
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)
	variantID := mux.Vars(r)["variantID"]
	respondJSON(w, http.StatusOK, h.carts.Remove(r.Context(), cartID, variantID))
}

func (h *Handler) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)
	url, err := h.checkout.CreateCheckout(r.Context(), cartID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"checkoutUrl": url})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	session := entity.Session{AccessToken: bearerToken(r)}
	orders, err := h.orders.GetOrders(r.Context(), session)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	id := h.cartID(w, r)
	respondJSON(w, http.StatusOK, map[string][]string{"handles": h.favorites.List(r.Context(), id)})
}

func (h *Handler) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := h.cartID(w, r)
	handle := mux.Vars(r)["handle"]
	favorited := h.favorites.Toggle(r.Context(), id, handle)
	respondJSON(w, http.StatusOK, map[string]bool{"favorited": favorited})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var validationErr *commerce.ValidationError
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Message, http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrNoCheckoutURL):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, commerce.ErrNotAuthenticated):
		http.Error(w, "please log in", http.StatusUnauthorized)
	case errors.Is(err, commerce.ErrProductNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.log.WithError(err).Error("Request failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// EnableCORS is middleware to allow the storefront frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
