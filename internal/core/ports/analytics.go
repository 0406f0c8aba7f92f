package ports

import (
	"context"
	"time"

	"github.com/playvault/client-gateway/internal/core/domain"
)

// PageView is a single navigation event recorded for analytics. Recording is
// best-effort: a failed write is logged and dropped, never surfaced to the
// request that produced it.
type PageView struct {
	ID        string
	SessionID string
	Identity  domain.IdentityKind
	Path      string
	Status    int
	At        time.Time
}

// AnalyticsRecorder persists page views.
type AnalyticsRecorder interface {
	Record(ctx context.Context, pv PageView) error
}
