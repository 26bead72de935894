package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/api/metrics"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type listener struct {
	id uint64
	fn func(domain.SessionEvent)
}

// Dispatcher fans session events out to the listeners registered for their
// identity. Events are routed to a fixed set of workers by hashing the user
// id, so listeners of one identity see its events in publish order.
type Dispatcher struct {
	workers []chan domain.SessionEvent
	done    <-chan struct{}
	log     zerolog.Logger

	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]listener
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.SessionEvent, numWorkers),
		log:       log,
		listeners: make(map[string][]listener),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.done = ctx.Done()
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its user id.
// The call is non-blocking up to channelBuffer capacity. Once the workers
// have stopped, events are dropped.
func (d *Dispatcher) Enqueue(ev domain.SessionEvent) {
	idx := d.shardIndex(ev.UserID)
	select {
	case d.workers[idx] <- ev:
	case <-d.done:
		return
	}
	metrics.SessionEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// Subscribe registers fn for events of userID. The returned func removes it
// and may be called more than once.
func (d *Dispatcher) Subscribe(userID string, fn func(domain.SessionEvent)) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners[userID] = append(d.listeners[userID], listener{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(userID, id) })
	}
}

func (d *Dispatcher) remove(userID string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ls := d.listeners[userID]
	for i, l := range ls {
		if l.id == id {
			ls = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(ls) == 0 {
		delete(d.listeners, userID)
		return
	}
	d.listeners[userID] = ls
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			metrics.SessionEventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(id, ev)
		}
	}
}

func (d *Dispatcher) deliver(worker int, ev domain.SessionEvent) {
	d.mu.RLock()
	ls := append([]listener(nil), d.listeners[ev.UserID]...)
	d.mu.RUnlock()

	for _, l := range ls {
		d.invoke(worker, l, ev)
	}
	metrics.SessionEventsDispatchedTotal.WithLabelValues(string(ev.Kind)).Inc()
}

// invoke runs one listener and keeps a panicking listener from taking the
// worker down.
func (d *Dispatcher) invoke(worker int, l listener, ev domain.SessionEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("user_id", ev.UserID).
				Str("kind", string(ev.Kind)).
				Int("worker_id", worker).
				Msg("session listener panicked")
		}
	}()
	l.fn(ev)
}
