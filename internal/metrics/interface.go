package metrics

// Results for IncOutboundMessages.
const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncTicks()
	IncTicksSkipped()
	ObserveTickDuration(duration float64)
	IncNotificationsSent()
	IncNotificationsFailed()
	IncOutboundMessages(result string)
	IncProviderErrors(endpoint string)
	IncMessagesHandled(action string)
	IncEvictions()
	SetActiveSubscriptions(n int)
	SetStartupTime(duration float64)
}
