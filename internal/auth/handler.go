package auth

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/docuvault/docuvault/internal/authz"
	"github.com/docuvault/docuvault/internal/identity"
	"github.com/docuvault/docuvault/internal/platform/httpx"
	"github.com/docuvault/docuvault/internal/shared"
)

// Handler exposes login, logout and the profile endpoint.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	users     UserSource
	store     authz.Store
	backend   *authz.TenantGroupBackend
	sessions  *shared.SessionManager
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, users UserSource, store authz.Store, backend *authz.TenantGroupBackend, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		users:     users,
		store:     store,
		backend:   backend,
		sessions:  sessions,
		validator: validator.New(),
	}
}

// MountRoutes registers authentication routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

// MountProfileRoutes registers the profile endpoint.
func (h *Handler) MountProfileRoutes(r chi.Router) {
	r.Get("/", h.profile)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))

	httpx.JSON(w, http.StatusOK, map[string]any{
		"username": user.Username,
		"is_staff": user.IsStaff,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessions.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

type profileResponse struct {
	Username             string   `json:"username"`
	Email                string   `json:"email"`
	IsStaff              bool     `json:"is_staff"`
	IsPlatformAdmin      bool     `json:"is_platform_admin"`
	UserPermissions      []string `json:"user_permissions"`
	InheritedPermissions []string `json:"inherited_permissions"`
}

// profile returns the authenticated principal's account data plus its direct
// and group-inherited permission identifiers as two separate lists.
func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}

	direct, err := h.store.DirectPermissions(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("profile direct permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	principal := authz.Principal{ID: user.ID, Active: user.IsActive, Superuser: user.IsSuperuser}
	inherited, err := h.backend.GroupPermissions(r.Context(), principal, authz.NewCache())
	if err != nil {
		h.logger.Error("profile inherited permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	platformAdmin, err := h.service.IsPlatformAdmin(r.Context(), user)
	if err != nil {
		h.logger.Error("profile platform admin", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	directOut := append([]string(nil), direct...)
	sort.Strings(directOut)
	inheritedOut := inherited.Slice()
	sort.Strings(inheritedOut)

	httpx.JSON(w, http.StatusOK, profileResponse{
		Username:             user.Username,
		Email:                user.Email,
		IsStaff:              user.IsStaff,
		IsPlatformAdmin:      platformAdmin,
		UserPermissions:      directOut,
		InheritedPermissions: inheritedOut,
	})
}

// RequirePlatformAdmin restricts a route group to platform operators.
func (h *Handler) RequirePlatformAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.sessionUser(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		allowed, err := h.service.IsPlatformAdmin(r.Context(), user)
		if err != nil {
			h.logger.Error("platform admin check", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if !allowed {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginForTest exposes the login handler for tests.
func (h *Handler) LoginForTest(w http.ResponseWriter, r *http.Request) {
	h.login(w, r)
}

// LogoutForTest exposes the logout handler for tests.
func (h *Handler) LogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r)
}

// ProfileForTest exposes the profile handler for tests.
func (h *Handler) ProfileForTest(w http.ResponseWriter, r *http.Request) {
	h.profile(w, r)
}

func (h *Handler) sessionUser(r *http.Request) (identity.User, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return identity.User{}, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return identity.User{}, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return identity.User{}, false
	}
	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		return identity.User{}, false
	}
	// A deactivated account loses its session immediately, matching the
	// permission backend's inactive short-circuit.
	if !user.IsActive {
		return identity.User{}, false
	}
	return user, true
}
