// Package routes is the single source of truth for the gateway's URL
// contract: the public, client, and admin path tables, the path builders for
// parameterised routes, and the legacy-path redirect map.
package routes

import (
	"net/url"

	"github.com/playvault/client-gateway/internal/core/domain"
)

// Public paths, reachable without a session.
const (
	Root       = "/"
	Games      = "/games"
	Login      = "/login"
	Register   = "/register"
	AdminLogin = "/admin/login"

	// MagicLinkPattern is the echo route for magic-link landing. The path
	// itself must never be redirected; old links stay valid forever.
	MagicLinkPattern = "/p/:token"
)

// Client paths, behind ClientGuard.
const (
	ClientHome               = "/client"
	ClientWallet             = "/client/wallet"
	ClientWalletAdd          = "/client/wallet/add"
	ClientWalletWithdraw     = "/client/wallet/withdraw"
	ClientTransactionPattern = "/client/wallet/transaction/:orderId"
	ClientGames              = "/client/games"
	ClientReferrals          = "/client/referrals"
	ClientProfile            = "/client/profile"
)

// Admin paths, behind AdminGuard.
const (
	AdminDashboard    = "/admin"
	AdminRules        = "/admin/rules"
	AdminPaymentQR    = "/admin/payment-qr"
	AdminTelegramBots = "/admin/telegram-bots"
	AdminWebhooks     = "/admin/webhooks"
	AdminAPIKeys      = "/admin/api-keys"
)

// Legacy paths, kept alive only for redirect compatibility.
const (
	LegacyPortal      = "/portal"
	LegacyClientLogin = "/client-login"
)

// MagicLink builds the landing path for a magic-link token.
func MagicLink(token string) string {
	return "/p/" + url.PathEscape(token)
}

// ClientTransaction builds the transaction-detail path for an order id.
func ClientTransaction(orderID string) string {
	return "/client/wallet/transaction/" + url.PathEscape(orderID)
}

// LoginWithNext builds the login path carrying the originally requested
// location, so a successful login can forward the user back.
func LoginWithNext(next string) string {
	if next == "" {
		return Login
	}
	return Login + "?next=" + url.QueryEscape(next)
}

// HomeFor resolves the landing path for an identity. This is the one place
// role dispatch happens; guards and the redirect resolver all go through it.
func HomeFor(id domain.Identity) string {
	switch id.Kind {
	case domain.IdentityAdmin:
		return AdminDashboard
	case domain.IdentityClient:
		return ClientHome
	default:
		return Login
	}
}
