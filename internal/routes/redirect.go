package routes

import (
	"strings"

	"github.com/playvault/client-gateway/internal/core/domain"
)

// redirectMap maps deprecated portal paths to their canonical equivalents.
// Paths under /portal with no entry here fall back to client home.
//
// /portal/bonus-tasks and /portal/rewards both land on client home: the
// stable route surface has no rewards view, so the old rewards screen has no
// canonical successor.
var redirectMap = map[string]string{
	LegacyPortal:          ClientHome,
	"/portal/wallet":      ClientWallet,
	"/portal/deposit":     ClientWalletAdd,
	"/portal/withdraw":    ClientWalletWithdraw,
	"/portal/games":       ClientGames,
	"/portal/referrals":   ClientReferrals,
	"/portal/profile":     ClientProfile,
	"/portal/bonus-tasks": ClientHome,
	"/portal/rewards":     ClientHome,
}

// IsLegacy reports whether path is a deprecated path the resolver owns.
// The magic-link prefix /p/ is intentionally not part of this set.
func IsLegacy(path string) bool {
	if path == LegacyClientLogin {
		return true
	}
	return path == LegacyPortal || strings.HasPrefix(path, LegacyPortal+"/")
}

// Resolve maps a legacy path to its redirect target for the given identity.
// ok is false when the path is not a legacy path at all, in which case the
// caller must leave the request to normal routing.
//
// Unauthenticated visitors are sent to login with the original path preserved
// in the next parameter; /client-login goes to login unconditionally.
func Resolve(path string, id domain.Identity) (target string, ok bool) {
	if path == LegacyClientLogin {
		return Login, true
	}
	if path != LegacyPortal && !strings.HasPrefix(path, LegacyPortal+"/") {
		return "", false
	}

	target, found := redirectMap[path]
	if !found {
		target = ClientHome
	}
	if id.IsNone() {
		return LoginWithNext(path), true
	}
	return target, true
}
