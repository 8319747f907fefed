package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	ticks               int
	ticksSkipped        int
	tickDurations       []float64
	notificationsSent   int
	notificationsFailed int
	outbound            map[string]int
	providerErrors      map[string]int
	messagesHandled     map[string]int
	evictions           int
	activeSubscriptions int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		tickDurations:   make([]float64, 0),
		providerErrors:  make(map[string]int),
		outbound:        make(map[string]int),
		messagesHandled: make(map[string]int),
	}
}

func (m *Mock) IncTicks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks++
}

func (m *Mock) IncTicksSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticksSkipped++
}

func (m *Mock) ObserveTickDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickDurations = append(m.tickDurations, duration)
}

func (m *Mock) IncNotificationsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsSent++
}

func (m *Mock) IncNotificationsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsFailed++
}

func (m *Mock) IncOutboundMessages(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbound[result]++
}

func (m *Mock) IncProviderErrors(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providerErrors[endpoint]++
}

func (m *Mock) IncMessagesHandled(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesHandled[action]++
}

func (m *Mock) IncEvictions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictions++
}

func (m *Mock) SetActiveSubscriptions(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeSubscriptions = n
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Ticks returns the number of times IncTicks was called.
func (m *Mock) Ticks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

// TicksSkipped returns the number of times IncTicksSkipped was called.
func (m *Mock) TicksSkipped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticksSkipped
}

// TickDurations returns the recorded tick durations.
func (m *Mock) TickDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.tickDurations...)
}

// NotificationsSent returns the number of times IncNotificationsSent was called.
func (m *Mock) NotificationsSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsSent
}

// NotificationsFailed returns the number of times IncNotificationsFailed was called.
func (m *Mock) NotificationsFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsFailed
}

// OutboundMessages returns the count recorded for result ("sent" or "failed").
func (m *Mock) OutboundMessages(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outbound[result]
}

// ProviderErrors returns the failure count recorded for endpoint.
func (m *Mock) ProviderErrors(endpoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.providerErrors[endpoint]
}

// MessagesHandled returns the count recorded for action.
func (m *Mock) MessagesHandled(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messagesHandled[action]
}

func (m *Mock) Evictions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictions
}

func (m *Mock) ActiveSubscriptions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeSubscriptions
}

func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}
