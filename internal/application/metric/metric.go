package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Количество активных WebSocket соединений",
		},
	)

	roomsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_total",
			Help: "Количество комнат в реестре",
		},
	)

	// roomsEvicted - закрытые комнаты по причине
	roomsEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rooms_evicted_total",
			Help: "Количество закрытых комнат",
		},
		[]string{"reason"},
	)

	relayedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayed_messages_total",
			Help: "Количество пересланных сообщений между участниками",
		},
		[]string{"type"},
	)

	droppedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dropped_messages_total",
			Help: "Сообщения, не поставленные в очередь закрытого или переполненного соединения",
		},
	)
)

// RecordHTTPMetrics записывает метрики HTTP запроса
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func SetWSActiveConnections(count int) {
	wsActiveConnections.Set(float64(count))
}

func SetRooms(count int) {
	roomsTotal.Set(float64(count))
}

func IncRoomsEvicted(reason string) {
	roomsEvicted.WithLabelValues(reason).Inc()
}

func IncRelayed(msgType string) {
	relayedMessages.WithLabelValues(msgType).Inc()
}

func IncDropped() {
	droppedMessages.Inc()
}
