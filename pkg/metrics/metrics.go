package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 慢查询计数
	DBSlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Number of queries slower than the configured threshold",
		},
		[]string{"statement"},
	)

	DBSlowQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "db_slow_query_duration_seconds",
			Help:    "Duration of slow queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~12s
		},
	)

	// AI 服务调用延迟（毫秒）
	AICallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_call_latency_ms",
			Help:    "AI scoring service call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(50, 2, 10),
		},
		[]string{"endpoint", "status"},
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Access gate decisions: result = open | approved | denied
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_gate_decisions_total",
			Help: "Dealroom visibility decisions by outcome",
		},
		[]string{"result"},
	)

	// Fanout deliveries: transport = backbone | local | sse, result = ok | error | dropped
	FanoutDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_fanout_deliveries_total",
			Help: "Realtime message deliveries by transport and result",
		},
		[]string{"transport", "result"},
	)

	// Live realtime connections: transport = sse | ws
	RealtimeConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "realtime_connections",
			Help: "Currently open realtime connections",
		},
		[]string{"transport"},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementSlowQuery 记录慢查询
func IncrementSlowQuery(statement string, duration time.Duration) {
	DBSlowQueryCount.WithLabelValues(statement).Inc()
	DBSlowQueryDuration.Observe(duration.Seconds())
}

// RecordAICallLatency 记录 AI 调用延迟
func RecordAICallLatency(endpoint, status string, duration time.Duration) {
	AICallLatency.WithLabelValues(endpoint, status).Observe(float64(duration.Milliseconds()))
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func IncrementGateDecision(result string) {
	GateDecisions.WithLabelValues(result).Inc()
}

func IncrementFanout(transport, result string) {
	FanoutDeliveries.WithLabelValues(transport, result).Inc()
}

func ConnectionOpened(transport string) {
	RealtimeConnections.WithLabelValues(transport).Inc()
}

func ConnectionClosed(transport string) {
	RealtimeConnections.WithLabelValues(transport).Dec()
}
