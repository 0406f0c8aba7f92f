// Package platform is the HTTP client for the upstream platform API, the
// external system that owns all business logic: authentication, the wallet
// ledger, referral commissions, promo rules, and admin configuration. The
// gateway never computes these things, it fetches and relays them.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/playvault/client-gateway/internal/api/metrics"
	"github.com/playvault/client-gateway/internal/core/domain"
	"github.com/playvault/client-gateway/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Client talks to the platform API. Every request runs under the caller's
// context plus a bounded client-side timeout; a timeout or transport failure
// classifies as domain.ErrNetworkUnavailable, which is what drives the retry
// affordance downstream.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient builds a platform client for the given base URL. A default
// timeout is applied when none is provided.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// errorBody is the platform's error envelope. Detail is surfaced verbatim as
// the fallback message; Fields carries per-field validation errors.
type errorBody struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// do executes one JSON request. op is the stable operation name used for
// metrics (request paths carry ids and query strings, so they make poor
// label values). Non-2xx responses come back as *domain.ValidationError
// (422) or *domain.UpstreamError (everything else); transport failures come
// back as domain.ErrNetworkUnavailable.
func (c *Client) do(ctx context.Context, method, path, op string, cred *ports.Credential, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("platform: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("platform: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred != nil {
		// Exactly one auth header, chosen by token kind.
		switch cred.Kind {
		case domain.TokenPortal:
			req.Header.Set("X-Portal-Token", cred.Token)
		default:
			req.Header.Set("Authorization", "Bearer "+cred.Token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(op, "network_error").Inc()
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("upstream unreachable")
		if errors.Is(err, context.Canceled) {
			return err
		}
		return domain.ErrNetworkUnavailable
	}
	defer resp.Body.Close()

	metrics.UpstreamRequests.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)

		if resp.StatusCode == http.StatusUnprocessableEntity && len(eb.Fields) > 0 {
			return &domain.ValidationError{Fields: eb.Fields}
		}
		return &domain.UpstreamError{Status: resp.StatusCode, Detail: eb.Detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("platform: decode response: %w", err)
	}
	return nil
}

// statusOf extracts the upstream HTTP status from err, or 0.
func statusOf(err error) int {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}

// --- Auth ---

type userPayload struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
	ReferralCode string `json:"referral_code"`
}

type authPayload struct {
	User      userPayload `json:"user"`
	Token     string      `json:"token"`
	TokenKind string      `json:"token_kind"`
}

func (p authPayload) result() *ports.AuthResult {
	kind := domain.TokenBearer
	if p.TokenKind == string(domain.TokenPortal) {
		kind = domain.TokenPortal
	}
	identity := domain.Identity{
		Kind:         domain.IdentityKind(p.User.Role),
		ID:           p.User.ID,
		Username:     p.User.Username,
		DisplayName:  p.User.DisplayName,
		ReferralCode: p.User.ReferralCode,
	}
	return &ports.AuthResult{Identity: identity, Token: p.Token, TokenKind: kind}
}

func (c *Client) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	return c.exchange(ctx, "/api/v1/auth/login", "auth_login", map[string]string{
		"username": username,
		"password": password,
	})
}

func (c *Client) ClientLogin(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	return c.exchange(ctx, "/api/v1/auth/client-login", "auth_client_login", map[string]string{
		"username": username,
		"password": password,
	})
}

func (c *Client) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	var out authPayload
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", "auth_signup", nil, map[string]string{
		"username":     in.Username,
		"password":     in.Password,
		"display_name": in.DisplayName,
		"referred_by":  in.ReferredCode,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.result(), nil
}

// ValidateMagicToken exchanges a magic-link token. A rejected or expired
// token (400/401/410) is terminal; only transport failures are retryable.
func (c *Client) ValidateMagicToken(ctx context.Context, token string) (*ports.AuthResult, error) {
	var out authPayload
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/magic-link/validate", "auth_magic_link", nil, map[string]string{
		"token": token,
	}, &out)
	if err != nil {
		switch statusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusGone:
			return nil, domain.ErrTokenInvalidOrExpired
		}
		return nil, err
	}
	return out.result(), nil
}

// exchange posts credentials and maps a 401 to ErrInvalidCredentials.
func (c *Client) exchange(ctx context.Context, path, op string, body map[string]string) (*ports.AuthResult, error) {
	var out authPayload
	if err := c.do(ctx, http.MethodPost, path, op, nil, body, &out); err != nil {
		if statusOf(err) == http.StatusUnauthorized {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return out.result(), nil
}

// --- Client views ---

type balancePayload struct {
	Available float64   `json:"available"`
	Pending   float64   `json:"pending"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p balancePayload) balance() ports.WalletBalance {
	return ports.WalletBalance{
		Available: p.Available,
		Pending:   p.Pending,
		Currency:  p.Currency,
		UpdatedAt: p.UpdatedAt,
	}
}

type transactionPayload struct {
	OrderID   string    `json:"order_id"`
	Kind      string    `json:"kind"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func (p transactionPayload) transaction() ports.Transaction {
	return ports.Transaction{
		OrderID:   p.OrderID,
		Kind:      p.Kind,
		Amount:    p.Amount,
		Status:    p.Status,
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
}

func mapTransactions(in []transactionPayload) []ports.Transaction {
	out := make([]ports.Transaction, 0, len(in))
	for _, tp := range in {
		out = append(out, tp.transaction())
	}
	return out
}

func (c *Client) ClientHome(ctx context.Context, cred ports.Credential) (*ports.ClientHomeView, error) {
	var out struct {
		Balance       balancePayload       `json:"balance"`
		Recent        []transactionPayload `json:"recent_transactions"`
		Announcements []string             `json:"announcements"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/client/home", "client_home", &cred, nil, &out); err != nil {
		return nil, err
	}
	return &ports.ClientHomeView{
		Balance:       out.Balance.balance(),
		Recent:        mapTransactions(out.Recent),
		Announcements: out.Announcements,
	}, nil
}

func (c *Client) WalletBalance(ctx context.Context, cred ports.Credential) (*ports.WalletBalance, error) {
	var out balancePayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/wallet/balance", "wallet_balance", &cred, nil, &out); err != nil {
		return nil, err
	}
	b := out.balance()
	return &b, nil
}

func (c *Client) WalletHistory(ctx context.Context, cred ports.Credential, page, limit int) (*ports.WalletHistory, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out struct {
		Items []transactionPayload `json:"items"`
		Total int64                `json:"total"`
		Page  int                  `json:"page"`
		Limit int                  `json:"limit"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/wallet/transactions?"+q.Encode(), "wallet_history", &cred, nil, &out); err != nil {
		return nil, err
	}
	return &ports.WalletHistory{
		Items: mapTransactions(out.Items),
		Total: out.Total,
		Page:  out.Page,
		Limit: out.Limit,
	}, nil
}

func (c *Client) TransactionDetail(ctx context.Context, cred ports.Credential, orderID string) (*ports.Transaction, error) {
	var out transactionPayload
	path := "/api/v1/wallet/transactions/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, "transaction_detail", &cred, nil, &out); err != nil {
		return nil, err
	}
	tx := out.transaction()
	return &tx, nil
}

func (c *Client) CreateDeposit(ctx context.Context, cred ports.Credential, in ports.DepositInput) (*ports.DepositResult, error) {
	var out struct {
		OrderID   string `json:"order_id"`
		Status    string `json:"status"`
		QRPayload string `json:"qr_payload"`
	}
	body := map[string]any{
		"amount":     in.Amount,
		"method":     in.Method,
		"promo_code": in.PromoCode,
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/wallet/deposits", "create_deposit", &cred, body, &out); err != nil {
		return nil, err
	}
	return &ports.DepositResult{OrderID: out.OrderID, Status: out.Status, QRPayload: out.QRPayload}, nil
}

func (c *Client) CreateWithdrawal(ctx context.Context, cred ports.Credential, in ports.WithdrawInput) (*ports.WithdrawResult, error) {
	var out struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}
	body := map[string]any{
		"amount":      in.Amount,
		"destination": in.Destination,
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/wallet/withdrawals", "create_withdrawal", &cred, body, &out); err != nil {
		return nil, err
	}
	return &ports.WithdrawResult{OrderID: out.OrderID, Status: out.Status}, nil
}

func (c *Client) ReferralDetails(ctx context.Context, cred ports.Credential) (*ports.ReferralDetails, error) {
	var out struct {
		Code          string  `json:"code"`
		TotalReferred int     `json:"total_referred"`
		Earnings      float64 `json:"earnings"`
		Tiers         []struct {
			Level int     `json:"level"`
			Rate  float64 `json:"rate"`
			Count int     `json:"count"`
		} `json:"tiers"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/referrals/me", "referral_details", &cred, nil, &out); err != nil {
		return nil, err
	}

	tiers := make([]ports.ReferralTier, 0, len(out.Tiers))
	for _, t := range out.Tiers {
		tiers = append(tiers, ports.ReferralTier{Level: t.Level, Rate: t.Rate, Count: t.Count})
	}
	return &ports.ReferralDetails{
		Code:          out.Code,
		TotalReferred: out.TotalReferred,
		Earnings:      out.Earnings,
		Tiers:         tiers,
	}, nil
}

func (c *Client) RedeemPromo(ctx context.Context, cred ports.Credential, code string) (*ports.PromoRedemption, error) {
	var out struct {
		Code        string  `json:"code"`
		BonusAmount float64 `json:"bonus_amount"`
		Message     string  `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/promos/redeem", "redeem_promo", &cred, map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	return &ports.PromoRedemption{Code: out.Code, BonusAmount: out.BonusAmount, Message: out.Message}, nil
}

func (c *Client) ListGames(ctx context.Context) ([]ports.Game, error) {
	var out struct {
		Items []struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			Category     string `json:"category"`
			ThumbnailURL string `json:"thumbnail_url"`
			Featured     bool   `json:"featured"`
		} `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/games", "list_games", nil, nil, &out); err != nil {
		return nil, err
	}

	games := make([]ports.Game, 0, len(out.Items))
	for _, g := range out.Items {
		games = append(games, ports.Game{
			ID:           g.ID,
			Name:         g.Name,
			Category:     g.Category,
			ThumbnailURL: g.ThumbnailURL,
			Featured:     g.Featured,
		})
	}
	return games, nil
}

func (c *Client) Profile(ctx context.Context, cred ports.Credential) (*domain.Identity, error) {
	var out userPayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/profile", "profile_get", &cred, nil, &out); err != nil {
		return nil, err
	}
	id := identityOf(out)
	return &id, nil
}

func (c *Client) UpdateProfile(ctx context.Context, cred ports.Credential, in ports.ProfileUpdate) (*domain.Identity, error) {
	var out userPayload
	body := map[string]string{"display_name": in.DisplayName}
	if err := c.do(ctx, http.MethodPatch, "/api/v1/profile", "profile_update", &cred, body, &out); err != nil {
		return nil, err
	}
	id := identityOf(out)
	return &id, nil
}

func identityOf(u userPayload) domain.Identity {
	return domain.Identity{
		Kind:         domain.IdentityKind(u.Role),
		ID:           u.ID,
		Username:     u.Username,
		DisplayName:  u.DisplayName,
		ReferralCode: u.ReferralCode,
	}
}

// --- Admin ---

func (c *Client) AdminDashboard(ctx context.Context, cred ports.Credential) (*ports.AdminDashboard, error) {
	var out struct {
		TotalClients     int64   `json:"total_clients"`
		ActiveToday      int64   `json:"active_today"`
		PendingApprovals int64   `json:"pending_approvals"`
		DepositVolume    float64 `json:"deposit_volume"`
		WithdrawalVolume float64 `json:"withdrawal_volume"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/dashboard", "admin_dashboard", &cred, nil, &out); err != nil {
		return nil, err
	}
	return &ports.AdminDashboard{
		TotalClients:     out.TotalClients,
		ActiveToday:      out.ActiveToday,
		PendingApprovals: out.PendingApprovals,
		DepositVolume:    out.DepositVolume,
		WithdrawalVolume: out.WithdrawalVolume,
	}, nil
}

// Admin configuration resources share one CRUD shape; bodies pass through
// opaquely so the gateway needs no schema knowledge per resource.

func (c *Client) AdminList(ctx context.Context, cred ports.Credential, resource string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, adminPath(resource, ""), "admin_list", &cred, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminGet(ctx context.Context, cred ports.Credential, resource, id string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, adminPath(resource, id), "admin_get", &cred, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminCreate(ctx context.Context, cred ports.Credential, resource string, body json.RawMessage) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, adminPath(resource, ""), "admin_create", &cred, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminUpdate(ctx context.Context, cred ports.Credential, resource, id string, body json.RawMessage) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPut, adminPath(resource, id), "admin_update", &cred, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminDelete(ctx context.Context, cred ports.Credential, resource, id string) error {
	return c.do(ctx, http.MethodDelete, adminPath(resource, id), "admin_delete", &cred, nil, nil)
}

func adminPath(resource, id string) string {
	p := "/api/v1/admin/" + url.PathEscape(resource)
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}
