package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
	"github.com/kikipackaging/backoffice/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sinkTimeout    = 10 * time.Second
)

// Sink is a named activity destination.
type Sink struct {
	Name string
	ports.ActivitySink
}

// ActivityDispatcher writes audit records off the request path. Records are
// routed to a fixed set of workers by hashing the entity id, so records for
// one entity are written in the order they were produced. A full queue drops
// the record; the mutation it describes has already succeeded.
type ActivityDispatcher struct {
	workers []chan domain.ActivityRecord
	sinks   []Sink
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewActivityDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewActivityDispatcher(numWorkers int, sinks []Sink, log zerolog.Logger) *ActivityDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &ActivityDispatcher{
		workers: make([]chan domain.ActivityRecord, numWorkers),
		sinks:   sinks,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ActivityRecord, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Close has been
// called and their queue is drained.
func (d *ActivityDispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Record enqueues rec without blocking.
func (d *ActivityDispatcher) Record(_ context.Context, rec domain.ActivityRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = domain.NewTimestamp(time.Now())
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(rec, "dispatcher closed")
		return
	}

	idx := d.shardIndex(shardKey(rec))
	select {
	case d.workers[idx] <- rec:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(rec, "queue full")
	}
}

// Close stops accepting records and waits for queued ones to be written, or
// for ctx to end.
func (d *ActivityDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *ActivityDispatcher) drop(rec domain.ActivityRecord, reason string) {
	metrics.ActivityDroppedTotal.Inc()
	d.log.Warn().
		Str("action", string(rec.Action)).
		Str("entity_type", string(rec.EntityType)).
		Str("entity_id", rec.EntityID).
		Str("reason", reason).
		Msg("activity record dropped")
}

func shardKey(rec domain.ActivityRecord) string {
	if rec.EntityID != "" {
		return rec.EntityID
	}
	return string(rec.EntityType)
}

// shardIndex maps a key deterministically to a worker index.
func (d *ActivityDispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *ActivityDispatcher) runWorker(id int, ch <-chan domain.ActivityRecord) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for rec := range ch {
		metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		for _, sink := range d.sinks {
			d.write(id, sink, rec)
		}
	}
}

func (d *ActivityDispatcher) write(id int, sink Sink, rec domain.ActivityRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := sink.Insert(ctx, rec); err != nil {
		metrics.ActivityRecordedTotal.WithLabelValues(sink.Name, "error").Inc()
		d.log.Error().Err(err).
			Str("sink", sink.Name).
			Str("action", string(rec.Action)).
			Str("entity_id", rec.EntityID).
			Int("worker_id", id).
			Msg("activity write failed")
		return
	}
	metrics.ActivityRecordedTotal.WithLabelValues(sink.Name, "ok").Inc()
}

var _ ports.ActivityRecorder = (*ActivityDispatcher)(nil)
