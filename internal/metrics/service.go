package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service holds the Prometheus collectors.
type Service struct {
	Ticks               prometheus.Counter
	TicksSkipped        prometheus.Counter
	TickDuration        prometheus.Histogram
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	OutboundMessages    *prometheus.CounterVec
	ProviderErrors      *prometheus.CounterVec
	MessagesHandled     *prometheus.CounterVec
	Evictions           prometheus.Counter
	ActiveSubscriptions prometheus.Gauge
	StartupTimeSeconds  prometheus.Gauge
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bothltv_ticks_total",
			Help: "The total number of notification ticks that ran.",
		}),
		TicksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bothltv_ticks_skipped_total",
			Help: "The total number of ticks skipped because match listing failed.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bothltv_tick_duration_seconds",
			Help:    "The duration of a notification tick.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bothltv_notifications_sent_total",
			Help: "The total number of live score updates delivered to subscribers.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bothltv_notifications_failed_total",
			Help: "The total number of live score updates that failed to send.",
		}),
		OutboundMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bothltv_outbound_messages_total",
			Help: "The total number of chat messages handed to the transport, by result.",
		}, []string{"result"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bothltv_provider_errors_total",
			Help: "The total number of failed match provider requests.",
		}, []string{"endpoint"}),
		MessagesHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bothltv_messages_handled_total",
			Help: "The total number of inbound messages handled, by resulting action.",
		}, []string{"action"}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bothltv_subscription_evictions_total",
			Help: "The total number of subscriptions removed after their match stopped being live.",
		}),
		ActiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bothltv_active_subscriptions",
			Help: "The number of recipients currently following a match.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bothltv_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Ticks,
		s.TicksSkipped,
		s.TickDuration,
		s.NotificationsSent,
		s.NotificationsFailed,
		s.OutboundMessages,
		s.ProviderErrors,
		s.MessagesHandled,
		s.Evictions,
		s.ActiveSubscriptions,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncTicks() {
	s.Ticks.Inc()
}

func (s *Service) IncTicksSkipped() {
	s.TicksSkipped.Inc()
}

func (s *Service) ObserveTickDuration(duration float64) {
	s.TickDuration.Observe(duration)
}

func (s *Service) IncNotificationsSent() {
	s.NotificationsSent.Inc()
}

func (s *Service) IncNotificationsFailed() {
	s.NotificationsFailed.Inc()
}

func (s *Service) IncOutboundMessages(result string) {
	s.OutboundMessages.WithLabelValues(result).Inc()
}

func (s *Service) IncProviderErrors(endpoint string) {
	s.ProviderErrors.WithLabelValues(endpoint).Inc()
}

func (s *Service) IncMessagesHandled(action string) {
	s.MessagesHandled.WithLabelValues(action).Inc()
}

func (s *Service) IncEvictions() {
	s.Evictions.Inc()
}

func (s *Service) SetActiveSubscriptions(n int) {
	s.ActiveSubscriptions.Set(float64(n))
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
