package forecast

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type logEntry struct {
	level string
	msg   string
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *recordingLogger) Debug(msg string, _ ...ports.Field) { l.log("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...ports.Field)  { l.log("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...ports.Field)  { l.log("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...ports.Field) { l.log("error", msg) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

// memoryMedium is a map-backed ports.CacheProvider that counts writes.
type memoryMedium struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryMedium() *memoryMedium {
	return &memoryMedium{data: make(map[string][]byte)}
}

func (m *memoryMedium) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.NewNotFoundError("cache miss")
	}
	return v, nil
}

func (m *memoryMedium) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memoryMedium) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryMedium) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *memoryMedium) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

func (m *memoryMedium) raw(key CacheKey) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	return v, ok
}

func (m *memoryMedium) put(key CacheKey, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = value
}

// countingFetcher returns payload or err and counts invocations.
type countingFetcher struct {
	calls   atomic.Int32
	payload ForecastResult
	err     error
	// release, when set, blocks every fetch until closed.
	release chan struct{}
}

func (f *countingFetcher) Fetch(ctx context.Context, _ ForecastConfig) (ForecastResult, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

type fixture struct {
	clock       *fakeClock
	medium      *memoryMedium
	logger      *recordingLogger
	store       *CacheStore
	coordinator *Coordinator
}

func newFixture(policy FreshnessPolicy) *fixture {
	clock := newFakeClock()
	medium := newMemoryMedium()
	logger := &recordingLogger{}

	store, err := NewCacheStore(CacheStoreDependencies{
		Medium: medium,
		Clock:  clock,
		Logger: logger,
	})
	if err != nil {
		panic(err)
	}

	coordinator, err := NewCoordinator(CoordinatorDependencies{
		Store:  store,
		Policy: policy,
		Clock:  clock,
		Logger: logger,
	})
	if err != nil {
		panic(err)
	}

	return &fixture{
		clock:       clock,
		medium:      medium,
		logger:      logger,
		store:       store,
		coordinator: coordinator,
	}
}

func berlinCurrent() ForecastConfig {
	return ForecastConfig{Latitude: 52.52, Longitude: 13.405, CurrentWeather: true}
}

func mustKey(cfg ForecastConfig) CacheKey {
	key, err := Normalize(cfg)
	if err != nil {
		panic(err)
	}
	return key
}
