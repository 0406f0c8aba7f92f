package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/playvault/client-gateway/internal/api/metrics"
	"github.com/playvault/client-gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes page-view events to a fixed set of workers using
// consistent hashing on the session id, so one session's events are recorded
// in the order they happened.
//
// The pipeline is diagnostic only: enqueue never blocks a request (events are
// dropped when a worker's buffer is full) and a failed write is logged, never
// propagated.
type Dispatcher struct {
	workers  []chan ports.PageView
	recorder ports.AnalyticsRecorder
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.AnalyticsRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.PageView, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PageView, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its session. Full
// buffers drop the event rather than stall the request that produced it.
func (d *Dispatcher) Enqueue(pv ports.PageView) {
	select {
	case d.workers[d.shardIndex(pv.SessionID)] <- pv:
	default:
		metrics.AnalyticsEventsTotal.WithLabelValues("dropped").Inc()
	}
}

// shardIndex maps a session id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PageView) {
	for {
		select {
		case <-ctx.Done():
			return
		case pv, ok := <-ch:
			if !ok {
				return
			}
			if err := d.recorder.Record(ctx, pv); err != nil {
				metrics.AnalyticsEventsTotal.WithLabelValues("failed").Inc()
				d.log.Warn().Err(err).
					Str("path", pv.Path).
					Int("worker_id", id).
					Msg("page view write failed")
				continue
			}
			metrics.AnalyticsEventsTotal.WithLabelValues("recorded").Inc()
		}
	}
}
