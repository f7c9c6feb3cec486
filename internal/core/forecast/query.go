package forecast

import (
	"context"
	"sync"
	"time"

	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
)

// Status is the lifecycle stage of a Query.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StatusIdle
	case "loading":
		*s = StatusLoading
	case "ready":
		*s = StatusReady
	case "failed":
		*s = StatusFailed
	default:
		return errors.NewInvalidConfigError("unknown query status: " + string(text))
	}
	return nil
}

// QueryState is a snapshot of a Query.
type QueryState struct {
	Status    Status         `json:"status"`
	Key       CacheKey       `json:"key,omitempty"`
	Result    ForecastResult `json:"result,omitempty"`
	Err       error          `json:"-"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Observer receives every state transition. Observers run synchronously
// and must not call Update, Refetch or Close on the same Query.
type Observer func(QueryState)

// Query is an observable forecast lookup bound to one configuration at a time.
// Changing the configuration supersedes the previous lookup; late results for
// a superseded key are discarded.
type Query struct {
	coordinator *Coordinator
	fetcher     Fetcher
	clock       ports.Clock
	logger      ports.Logger

	// notifyMu orders transitions with their delivery to observers.
	notifyMu sync.Mutex

	mu         sync.Mutex
	state      QueryState
	cfg        ForecastConfig
	generation uint64
	cancel     context.CancelFunc
	observers  map[int]Observer
	nextID     int
	closed     bool

	wg sync.WaitGroup
}

func NewQuery(coordinator *Coordinator, fetcher Fetcher) *Query {
	return &Query{
		coordinator: coordinator,
		fetcher:     fetcher,
		clock:       coordinator.clock,
		logger:      coordinator.logger,
		state:       QueryState{Status: StatusIdle, UpdatedAt: coordinator.clock.Now()},
		observers:   make(map[int]Observer),
	}
}

// Update points the query at cfg. An invalid cfg is rejected without touching the state.
// A cfg with the same key as a loading or ready lookup is a no-op.
func (q *Query) Update(ctx context.Context, cfg ForecastConfig) error {
	key, err := Normalize(cfg)
	if err != nil {
		return err
	}

	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errors.NewConfigurationError("query is closed", nil)
	}
	if key == q.state.Key && (q.state.Status == StatusLoading || q.state.Status == StatusReady) {
		q.cfg = cfg
		q.mu.Unlock()
		return nil
	}
	snapshot, observers := q.startLocked(ctx, key, cfg, false)
	q.mu.Unlock()

	notify(observers, snapshot)
	return nil
}

// Refetch re-runs the current configuration, bypassing the freshness check.
func (q *Query) Refetch(ctx context.Context) error {
	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errors.NewConfigurationError("query is closed", nil)
	}
	if q.state.Key == "" {
		q.mu.Unlock()
		return errors.NewInvalidConfigError("query has no configuration to refetch")
	}
	snapshot, observers := q.startLocked(ctx, q.state.Key, q.cfg, true)
	q.mu.Unlock()

	notify(observers, snapshot)
	return nil
}

// State returns the current snapshot.
func (q *Query) State() QueryState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Subscribe registers fn and returns a func that removes it.
func (q *Query) Subscribe(fn Observer) func() {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := q.nextID
	q.nextID++
	q.observers[id] = fn

	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.observers, id)
	}
}

// Close drops the pending waiter and all observers, then waits for background work to finish.
func (q *Query) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.generation++
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.observers = make(map[int]Observer)
	q.mu.Unlock()

	q.wg.Wait()
}

// startLocked moves to Loading for key and spawns the resolver. q.mu must be held.
func (q *Query) startLocked(ctx context.Context, key CacheKey, cfg ForecastConfig, force bool) (QueryState, []Observer) {
	if q.cancel != nil {
		q.cancel()
	}

	q.generation++
	gen := q.generation
	q.cfg = cfg

	// the waiter lives until superseded or closed, not until the caller's ctx ends
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q.cancel = cancel

	q.state = QueryState{
		Status:    StatusLoading,
		Key:       key,
		UpdatedAt: q.clock.Now(),
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer cancel()

		var (
			res Resolution
			err error
		)
		if force || cfg.Refresh {
			res, err = q.coordinator.Refresh(runCtx, key, cfg, q.fetcher)
		} else {
			res, err = q.coordinator.ResolveEntry(runCtx, key, cfg, q.fetcher)
		}
		q.settle(gen, key, res, err)
	}()

	return q.state, q.observersLocked()
}

func (q *Query) settle(gen uint64, key CacheKey, res Resolution, err error) {
	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	if q.closed || gen != q.generation {
		q.mu.Unlock()
		q.logger.Debug("Discarding result for superseded query", ports.F("key", key))
		return
	}

	q.cancel = nil
	if err != nil {
		q.state = QueryState{Status: StatusFailed, Key: key, Err: err, UpdatedAt: q.clock.Now()}
	} else {
		q.state = QueryState{Status: StatusReady, Key: key, Result: res.Entry.Value, UpdatedAt: q.clock.Now()}
	}
	snapshot, observers := q.state, q.observersLocked()
	q.mu.Unlock()

	notify(observers, snapshot)
}

func (q *Query) observersLocked() []Observer {
	observers := make([]Observer, 0, len(q.observers))
	for _, fn := range q.observers {
		observers = append(observers, fn)
	}
	return observers
}

func notify(observers []Observer, state QueryState) {
	for _, fn := range observers {
		fn(state)
	}
}
