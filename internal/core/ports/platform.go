package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/playvault/client-gateway/internal/core/domain"
)

// Credential is what an upstream call authenticates with. Exactly one header
// is sent: Authorization: Bearer for TokenBearer, X-Portal-Token for
// TokenPortal.
type Credential struct {
	Token string
	Kind  domain.TokenKind
}

// AuthResult is returned by every upstream credential exchange.
type AuthResult struct {
	Identity  domain.Identity
	Token     string
	TokenKind domain.TokenKind
}

// SignupInput carries a new client registration.
type SignupInput struct {
	Username     string
	Password     string
	DisplayName  string
	ReferredCode string
}

// WalletBalance is the current balance view for a client.
type WalletBalance struct {
	Available float64
	Pending   float64
	Currency  string
	UpdatedAt time.Time
}

// Transaction is a single wallet ledger entry.
type Transaction struct {
	OrderID   string
	Kind      string // "deposit", "withdrawal", "bonus", "adjustment"
	Amount    float64
	Status    string
	Note      string
	CreatedAt time.Time
}

// WalletHistory is a page of wallet transactions.
type WalletHistory struct {
	Items []Transaction
	Total int64
	Page  int
	Limit int
}

// DepositInput starts a deposit (wallet/add).
type DepositInput struct {
	Amount    float64
	Method    string
	PromoCode string
}

// DepositResult is the created deposit order. QRPayload, when present, is the
// payment QR the client renders for manual transfer methods.
type DepositResult struct {
	OrderID   string
	Status    string
	QRPayload string
}

// WithdrawInput starts a withdrawal (wallet/withdraw).
type WithdrawInput struct {
	Amount      float64
	Destination string
}

// WithdrawResult is the created withdrawal order.
type WithdrawResult struct {
	OrderID string
	Status  string
}

// ReferralTier is one commission level of the referral program.
type ReferralTier struct {
	Level int
	Rate  float64
	Count int
}

// ReferralDetails is the referral view for a client.
type ReferralDetails struct {
	Code          string
	TotalReferred int
	Earnings      float64
	Tiers         []ReferralTier
}

// PromoRedemption is the outcome of redeeming a promo code.
type PromoRedemption struct {
	Code        string
	BonusAmount float64
	Message     string
}

// Game is a catalog entry.
type Game struct {
	ID           string
	Name         string
	Category     string
	ThumbnailURL string
	Featured     bool
}

// ProfileUpdate carries the fields a client may change.
type ProfileUpdate struct {
	DisplayName string
}

// ClientHomeView is the aggregate behind the client home screen.
type ClientHomeView struct {
	Balance       WalletBalance
	Recent        []Transaction
	Announcements []string
}

// AdminDashboard is the aggregate behind the admin dashboard.
type AdminDashboard struct {
	TotalClients     int64
	ActiveToday      int64
	PendingApprovals int64
	DepositVolume    float64
	WithdrawalVolume float64
}

// PlatformClient is the upstream platform REST API. All business logic lives
// behind it; the gateway fetches and relays. Admin configuration resources
// (rules, payment-qr, telegram-bots, webhooks, api-keys) share one CRUD shape
// and pass bodies through opaquely.
type PlatformClient interface {
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	ClientLogin(ctx context.Context, username, password string) (*AuthResult, error)
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	ValidateMagicToken(ctx context.Context, token string) (*AuthResult, error)

	ClientHome(ctx context.Context, cred Credential) (*ClientHomeView, error)
	WalletBalance(ctx context.Context, cred Credential) (*WalletBalance, error)
	WalletHistory(ctx context.Context, cred Credential, page, limit int) (*WalletHistory, error)
	TransactionDetail(ctx context.Context, cred Credential, orderID string) (*Transaction, error)
	CreateDeposit(ctx context.Context, cred Credential, in DepositInput) (*DepositResult, error)
	CreateWithdrawal(ctx context.Context, cred Credential, in WithdrawInput) (*WithdrawResult, error)
	ReferralDetails(ctx context.Context, cred Credential) (*ReferralDetails, error)
	RedeemPromo(ctx context.Context, cred Credential, code string) (*PromoRedemption, error)
	ListGames(ctx context.Context) ([]Game, error)
	Profile(ctx context.Context, cred Credential) (*domain.Identity, error)
	UpdateProfile(ctx context.Context, cred Credential, in ProfileUpdate) (*domain.Identity, error)

	AdminDashboard(ctx context.Context, cred Credential) (*AdminDashboard, error)
	AdminList(ctx context.Context, cred Credential, resource string) (json.RawMessage, error)
	AdminGet(ctx context.Context, cred Credential, resource, id string) (json.RawMessage, error)
	AdminCreate(ctx context.Context, cred Credential, resource string, body json.RawMessage) (json.RawMessage, error)
	AdminUpdate(ctx context.Context, cred Credential, resource, id string, body json.RawMessage) (json.RawMessage, error)
	AdminDelete(ctx context.Context, cred Credential, resource, id string) error
}
