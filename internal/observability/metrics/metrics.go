package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"service", "result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)

	FriendRequestActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_request_actions_total",
			Help: "Friend request transitions by action (send/accept/reject/cancel).",
		},
		[]string{"service", "action", "result"},
	)

	MessagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Total number of chat messages appended.",
		},
		[]string{"service", "result"},
	)

	RealtimeSubscriptionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "realtime_subscriptions_active",
			Help: "Currently open realtime subscriptions.",
		},
		[]string{"service", "topic_class"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	AuthRegistrationsTotal = AuthRegistrationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	AuthLoginsTotal = AuthLoginsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	FriendRequestActionsTotal = FriendRequestActionsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	MessagesSentTotal = MessagesSentTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	RealtimeSubscriptionsActive = RealtimeSubscriptionsActive.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthRegistrationsTotal,
		AuthLoginsTotal,
		FriendRequestActionsTotal,
		MessagesSentTotal,
		RealtimeSubscriptionsActive,
	)
}
