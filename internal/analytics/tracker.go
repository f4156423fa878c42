package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/county-risk-map/internal/domain"
	"github.com/couchcryptid/county-risk-map/internal/observability"
)

// Sink delivers batches of events to durable storage.
type Sink interface {
	WriteEvents(ctx context.Context, events []Event) error
	Close() error
}

const (
	defaultBatchSize     = 50
	defaultFlushInterval = 5 * time.Second

	// bufferBatches is the channel capacity in multiples of the batch size.
	bufferBatches = 4

	// shutdownFlushTimeout bounds the final flush on Close.
	shutdownFlushTimeout = 5 * time.Second
)

// Tracker buffers events and flushes them to a Sink from a background loop.
// Tracking never blocks the caller: when the buffer is full the event is
// dropped and counted. Sink failures are logged and counted, never retried.
type Tracker struct {
	sink          Sink
	logger        *slog.Logger
	metrics       *observability.Metrics
	batchSize     int
	flushInterval time.Duration

	events  chan Event
	closed  atomic.Bool
	running atomic.Bool
	done    chan struct{}
	once    sync.Once

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a Tracker. Non-positive batch sizes or intervals use defaults.
func New(sink Sink, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Tracker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Tracker{
		sink:          sink,
		logger:        logger,
		metrics:       metrics,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		events:        make(chan Event, batchSize*bufferBatches),
		done:          make(chan struct{}),
	}
}

// Start launches the flush loop. It returns immediately; call Close to stop.
// Calling Start more than once has no effect.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil || t.closed.Load() {
		return
	}
	ctx, t.cancel = context.WithCancel(ctx)
	t.running.Store(true)
	go t.run(ctx)
}

// Close stops the loop, flushes buffered events and closes the sink.
// Events tracked after Close are dropped.
func (t *Tracker) Close() error {
	var err error
	t.once.Do(func() {
		t.mu.Lock()
		t.closed.Store(true)
		cancel := t.cancel
		t.mu.Unlock()
		if cancel != nil {
			cancel()
			<-t.done
		}
		err = t.sink.Close()
	})
	return err
}

// CheckReadiness reports whether the flush loop is running.
func (t *Tracker) CheckReadiness(_ context.Context) error {
	if !t.running.Load() || t.closed.Load() {
		return errTrackerStopped
	}
	return nil
}

// TrackPageView records a page view.
func (t *Tracker) TrackPageView(page, county string) {
	t.Track(PageView(page, county))
}

// TrackCTAClick records a click on a call to action.
func (t *Tracker) TrackCTAClick(ctaType, county, utmCampaign string) {
	t.Track(CTAClick(ctaType, county, utmCampaign))
}

// TrackSelection records a county selection on the map.
func (t *Tracker) TrackSelection(county string, tier domain.Tier) {
	t.Track(Selection(county, tier))
}

// Track enqueues an event without blocking.
func (t *Tracker) Track(e Event) {
	if t.closed.Load() {
		t.drop(e, "tracker closed")
		return
	}
	select {
	case t.events <- e:
		t.metrics.AnalyticsTracked.WithLabelValues(string(e.Kind)).Inc()
	default:
		t.drop(e, "buffer full")
	}
}

func (t *Tracker) drop(e Event, reason string) {
	t.metrics.AnalyticsDropped.Inc()
	t.logger.Debug("analytics event dropped", "kind", e.Kind, "reason", reason)
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)
	defer t.running.Store(false)

	t.logger.Info("analytics tracker started",
		"batch_size", t.batchSize, "flush_interval", t.flushInterval)
	t.metrics.TrackerRunning.Set(1)
	defer t.metrics.TrackerRunning.Set(0)

	ticker := time.NewTicker(t.flushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, t.batchSize)
	for {
		select {
		case <-ctx.Done():
			batch = t.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownFlushTimeout)
			t.flush(flushCtx, batch)
			cancel()
			t.logger.Info("analytics tracker stopped")
			return
		case e := <-t.events:
			batch = append(batch, e)
			if len(batch) >= t.batchSize {
				t.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			t.flush(ctx, batch)
			batch = batch[:0]
		}
	}
}

// drain moves everything still buffered into batch.
func (t *Tracker) drain(batch []Event) []Event {
	for {
		select {
		case e := <-t.events:
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

func (t *Tracker) flush(ctx context.Context, batch []Event) {
	if len(batch) == 0 {
		return
	}
	t.metrics.AnalyticsBatchSize.Observe(float64(len(batch)))

	// The sink may retain the slice, so hand it a copy.
	out := make([]Event, len(batch))
	copy(out, batch)
	if err := t.sink.WriteEvents(ctx, out); err != nil {
		t.metrics.AnalyticsWriteErrors.Inc()
		t.logger.Error("write analytics batch failed", "error", err, "batch_size", len(out))
	}
}
