package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/playvault/client-gateway/internal/core/ports"
)

const analyticsCollection = "page_views"

// AnalyticsRecorder persists page-view events. Writes are best-effort and
// reach this recorder through the analytics dispatcher, never on a request
// path.
type AnalyticsRecorder struct {
	coll *mongo.Collection
}

func NewAnalyticsRecorder(db *mongo.Database) *AnalyticsRecorder {
	return &AnalyticsRecorder{coll: db.Collection(analyticsCollection)}
}

type pageViewDoc struct {
	ID        string `bson:"_id"`
	SessionID string `bson:"session_id,omitempty"`
	Identity  string `bson:"identity"`
	Path      string `bson:"path"`
	Status    int    `bson:"status"`
	At        int64  `bson:"at"`
}

func (r *AnalyticsRecorder) Record(ctx context.Context, pv ports.PageView) error {
	doc := pageViewDoc{
		ID:        pv.ID,
		SessionID: pv.SessionID,
		Identity:  string(pv.Identity),
		Path:      pv.Path,
		Status:    pv.Status,
		At:        pv.At.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert page view: %w", err)
	}
	return nil
}
