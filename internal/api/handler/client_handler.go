package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/core/ports"
)

// ClientHandler serves the client-facing views: home, wallet, games,
// referrals, promos, and profile. Every view fetches from the platform API
// and relays the result; nothing is computed here.
type ClientHandler struct {
	platform ports.PlatformClient
}

func NewClientHandler(platform ports.PlatformClient) *ClientHandler {
	return &ClientHandler{platform: platform}
}

// --- Response types ---

type balanceResponse struct {
	Available float64 `json:"available"`
	Pending   float64 `json:"pending"`
	Currency  string  `json:"currency"`
	UpdatedAt string  `json:"updated_at"`
}

type transactionResponse struct {
	OrderID   string  `json:"order_id"`
	Kind      string  `json:"kind"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	Note      string  `json:"note,omitempty"`
	CreatedAt string  `json:"created_at"`
	Detail    string  `json:"_detail"`
}

type homeResponse struct {
	Balance       balanceResponse       `json:"balance"`
	Recent        []transactionResponse `json:"recent_transactions"`
	Announcements []string              `json:"announcements"`
}

type historyResponse struct {
	Items []transactionResponse `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

func mapBalance(b ports.WalletBalance) balanceResponse {
	return balanceResponse{
		Available: b.Available,
		Pending:   b.Pending,
		Currency:  b.Currency,
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}

func mapTransaction(tx ports.Transaction) transactionResponse {
	return transactionResponse{
		OrderID:   tx.OrderID,
		Kind:      tx.Kind,
		Amount:    tx.Amount,
		Status:    tx.Status,
		Note:      tx.Note,
		CreatedAt: tx.CreatedAt.Format(time.RFC3339),
		Detail:    "/client/wallet/transaction/" + tx.OrderID,
	}
}

func mapTransactionList(in []ports.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(in))
	for _, tx := range in {
		out = append(out, mapTransaction(tx))
	}
	return out
}

// Home handles GET /client.
//
// @Summary      Client home aggregate
// @Tags         client
// @Produce      json
// @Success      200  {object}  homeResponse
// @Router       /client [get]
func (h *ClientHandler) Home(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	view, err := h.platform.ClientHome(c.Request().Context(), cred)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, homeResponse{
		Balance:       mapBalance(view.Balance),
		Recent:        mapTransactionList(view.Recent),
		Announcements: view.Announcements,
	})
}

// WalletBalance handles GET /client/wallet.
func (h *ClientHandler) WalletBalance(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	balance, err := h.platform.WalletBalance(c.Request().Context(), cred)
	if err != nil {
		return err
	}

	history, err := h.platform.WalletHistory(c.Request().Context(), cred, pageParam(c), limitParam(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"balance": mapBalance(*balance),
		"history": historyResponse{
			Items: mapTransactionList(history.Items),
			Total: history.Total,
			Page:  history.Page,
			Limit: history.Limit,
		},
	})
}

type depositRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method" validate:"required,oneof=bank_transfer qr_code card"`
	PromoCode string  `json:"promo_code,omitempty"`
}

type depositResponse struct {
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	QRPayload string `json:"qr_payload,omitempty"`
	Detail    string `json:"_detail"`
}

// Deposit handles POST /client/wallet/add.
//
// @Summary      Start a deposit
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        body  body      depositRequest  true  "Deposit details"
// @Success      201   {object}  depositResponse
// @Failure      422   {object}  map[string]string
// @Router       /client/wallet/add [post]
func (h *ClientHandler) Deposit(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	var req depositRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.platform.CreateDeposit(c.Request().Context(), cred, ports.DepositInput{
		Amount:    req.Amount,
		Method:    req.Method,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, depositResponse{
		OrderID:   res.OrderID,
		Status:    res.Status,
		QRPayload: res.QRPayload,
		Detail:    "/client/wallet/transaction/" + res.OrderID,
	})
}

type withdrawRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Destination string  `json:"destination" validate:"required"`
}

// Withdraw handles POST /client/wallet/withdraw.
func (h *ClientHandler) Withdraw(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	var req withdrawRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.platform.CreateWithdrawal(c.Request().Context(), cred, ports.WithdrawInput{
		Amount:      req.Amount,
		Destination: req.Destination,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"order_id": res.OrderID,
		"status":   res.Status,
		"_detail":  "/client/wallet/transaction/" + res.OrderID,
	})
}

// Transaction handles GET /client/wallet/transaction/:orderId.
func (h *ClientHandler) Transaction(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	orderID := c.Param("orderId")
	if orderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order id")
	}

	tx, err := h.platform.TransactionDetail(c.Request().Context(), cred, orderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapTransaction(*tx))
}

// Games handles GET /games and GET /client/games; the catalog is public, the
// client variant simply sits inside the authenticated shell.
func (h *ClientHandler) Games(c echo.Context) error {
	games, err := h.platform.ListGames(c.Request().Context())
	if err != nil {
		return err
	}

	type gameResponse struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Category     string `json:"category"`
		ThumbnailURL string `json:"thumbnail_url,omitempty"`
		Featured     bool   `json:"featured,omitempty"`
	}
	out := make([]gameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, gameResponse{
			ID:           g.ID,
			Name:         g.Name,
			Category:     g.Category,
			ThumbnailURL: g.ThumbnailURL,
			Featured:     g.Featured,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

// Referrals handles GET /client/referrals.
func (h *ClientHandler) Referrals(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	details, err := h.platform.ReferralDetails(c.Request().Context(), cred)
	if err != nil {
		return err
	}

	type tierResponse struct {
		Level int     `json:"level"`
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	}
	tiers := make([]tierResponse, 0, len(details.Tiers))
	for _, t := range details.Tiers {
		tiers = append(tiers, tierResponse{Level: t.Level, Rate: t.Rate, Count: t.Count})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"code":           details.Code,
		"total_referred": details.TotalReferred,
		"earnings":       details.Earnings,
		"tiers":          tiers,
	})
}

type promoRequest struct {
	Code string `json:"code" validate:"required"`
}

// RedeemPromo handles POST /client/promos.
func (h *ClientHandler) RedeemPromo(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	var req promoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.platform.RedeemPromo(c.Request().Context(), cred, req.Code)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"code":         res.Code,
		"bonus_amount": res.BonusAmount,
		"message":      res.Message,
	})
}

// Profile handles GET /client/profile.
func (h *ClientHandler) Profile(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	identity, err := h.platform.Profile(c.Request().Context(), cred)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}

type profileUpdateRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=64"`
}

// UpdateProfile handles PATCH /client/profile.
func (h *ClientHandler) UpdateProfile(c echo.Context) error {
	cred, err := ctxCredential(c)
	if err != nil {
		return err
	}

	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	identity, err := h.platform.UpdateProfile(c.Request().Context(), cred, ports.ProfileUpdate{
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func limitParam(c echo.Context) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 || limit > 100 {
		return 20
	}
	return limit
}
