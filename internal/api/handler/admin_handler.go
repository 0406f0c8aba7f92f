package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/core/ports"
)

// AdminHandler serves the admin dashboard and the five configuration
// resources: rules, payment-qr, telegram-bots, webhooks, api-keys. The
// resources share one CRUD shape upstream, so bodies pass through opaquely
// and the platform stays the schema authority.
type AdminHandler struct {
	platform ports.PlatformClient
}

func NewAdminHandler(platform ports.PlatformClient) *AdminHandler {
	return &AdminHandler{platform: platform}
}

// AdminResources is the closed set of admin configuration resources the
// gateway exposes. Routes register one CRUD group per entry.
var AdminResources = []string{
	"rules",
	"payment-qr",
	"telegram-bots",
	"webhooks",
	"api-keys",
}

type dashboardResponse struct {
	TotalClients     int64   `json:"total_clients"`
	ActiveToday      int64   `json:"active_today"`
	PendingApprovals int64   `json:"pending_approvals"`
	DepositVolume    float64 `json:"deposit_volume"`
	WithdrawalVolume float64 `json:"withdrawal_volume"`
}

// Dashboard handles GET /admin.
//
// @Summary      Admin dashboard aggregates
// @Tags         admin
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Router       /admin [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	d, err := h.platform.AdminDashboard(c.Request().Context(), cred)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		TotalClients:     d.TotalClients,
		ActiveToday:      d.ActiveToday,
		PendingApprovals: d.PendingApprovals,
		DepositVolume:    d.DepositVolume,
		WithdrawalVolume: d.WithdrawalVolume,
	})
}

// List handles GET /admin/<resource>.
func (h *AdminHandler) List(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		cred, err := ctxCredential(c)
		if err != nil {
			return err
		}

		out, err := h.platform.AdminList(c.Request().Context(), cred, resource)
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, out)
	}
}

// Get handles GET /admin/<resource>/:id.
func (h *AdminHandler) Get(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		cred, err := ctxCredential(c)
		if err != nil {
			return err
		}

		out, err := h.platform.AdminGet(c.Request().Context(), cred, resource, c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, out)
	}
}

// Create handles POST /admin/<resource>.
func (h *AdminHandler) Create(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		cred, err := ctxCredential(c)
		if err != nil {
			return err
		}

		body, err := rawBody(c)
		if err != nil {
			return err
		}

		out, err := h.platform.AdminCreate(c.Request().Context(), cred, resource, body)
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusCreated, out)
	}
}

// Update handles PUT /admin/<resource>/:id.
func (h *AdminHandler) Update(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		cred, err := ctxCredential(c)
		if err != nil {
			return err
		}

		body, err := rawBody(c)
		if err != nil {
			return err
		}

		out, err := h.platform.AdminUpdate(c.Request().Context(), cred, resource, c.Param("id"), body)
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, out)
	}
}

// Delete handles DELETE /admin/<resource>/:id.
func (h *AdminHandler) Delete(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		cred, err := ctxCredential(c)
		if err != nil {
			return err
		}

		if err := h.platform.AdminDelete(c.Request().Context(), cred, resource, c.Param("id")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// rawBody reads the request body and rejects anything that is not valid JSON
// before it is relayed upstream.
func rawBody(c echo.Context) (json.RawMessage, error) {
	b, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable payload")
	}
	if !json.Valid(b) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return json.RawMessage(b), nil
}
