package transport

import (
	"context"
	"sync"

	"codeberg.org/mutker/envstation/internal/telemetry"
)

// Mock is an in-memory transport for tests. Connect and Publish fail with
// the configured errors until cleared; every call is counted.
type Mock struct {
	name string

	mu         sync.Mutex
	connectErr error
	publishErr error
	connects   int
	publishes  []*telemetry.Record
	attempts   int
	closed     bool
}

var _ Client = (*Mock)(nil)

func NewMock(name string) *Mock {
	return &Mock{name: name}
}

func (m *Mock) Name() string {
	return m.name
}

func (m *Mock) Connect(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connects++
	return m.connectErr
}

func (m *Mock) Publish(_ context.Context, rec *telemetry.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.publishErr != nil {
		return m.publishErr
	}
	m.publishes = append(m.publishes, rec)

	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// FailConnect makes subsequent connects fail with err; nil restores success
func (m *Mock) FailConnect(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectErr = err
}

// FailPublish makes subsequent publishes fail with err; nil restores success
func (m *Mock) FailPublish(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishErr = err
}

// ConnectCalls returns how many times Connect ran
func (m *Mock) ConnectCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}

// PublishAttempts returns how many times Publish ran, failed or not
func (m *Mock) PublishAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Published returns the successfully delivered records
func (m *Mock) Published() []*telemetry.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*telemetry.Record, len(m.publishes))
	copy(out, m.publishes)
	return out
}

// Closed reports whether Close was called
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
