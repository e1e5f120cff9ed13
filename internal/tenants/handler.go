package tenants

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/docuvault/docuvault/internal/platform/httpx"
)

// Handler exposes tenant management over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	guard     func(http.Handler) http.Handler
}

// NewHandler builds Handler instance. The guard middleware restricts tenant
// management to platform operators.
func NewHandler(logger *slog.Logger, service *Service, guard func(http.Handler) http.Handler) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		guard:     guard,
	}
}

// MountRoutes registers tenant routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.guard != nil {
			r.Use(h.guard)
		}
		r.Get("/", h.list)
		r.Post("/", h.create)
	})
}

type createTenantRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=120"`
	Subdomain string `json:"subdomain" validate:"required,min=1,max=63"`
}

type tenantResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	IsActive  bool   `json:"is_active"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	tenant, err := h.service.Create(r.Context(), req.Name, req.Subdomain)
	if err != nil {
		if errors.Is(err, ErrInvalidSubdomain) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("create tenant", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(tenant))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list tenants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]tenantResponse, 0, len(all))
	for _, t := range all {
		out = append(out, toResponse(t))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func toResponse(t Tenant) tenantResponse {
	return tenantResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		Subdomain: t.Subdomain,
		IsActive:  t.IsActive,
	}
}
