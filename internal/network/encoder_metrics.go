package network

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Причины отбрасывания пакета.
const (
	DropStale     = "stale"
	DropFault     = "fault"
	DropTransport = "transport"
)

// EncoderMetrics - Prometheus-метрики исходящего кодирования:
// * <ns>_packets_encoded_total{packet}
// * <ns>_packet_bytes{packet} - histogram размера пакета
// * <ns>_packets_dropped_total{packet,reason}
// * <ns>_inventory_pending_changes - gauge накопителя изменений
type EncoderMetrics struct {
	encoded *prometheus.CounterVec
	bytes   *prometheus.HistogramVec
	dropped *prometheus.CounterVec
	pending prometheus.Gauge
}

// NewEncoderMetrics создаёт метрики и регистрирует их в reg.
func NewEncoderMetrics(namespace string, reg prometheus.Registerer) *EncoderMetrics {
	m := &EncoderMetrics{
		encoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_encoded_total",
			Help:      "Пакетов, закодированных и переданных транспорту.",
		}, []string{"packet"}),
		bytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "packet_bytes",
			Help:      "Размер закодированного пакета в байтах.",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 10),
		}, []string{"packet"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_dropped_total",
			Help:      "Пакетов, не дошедших до транспорта (stale, fault, transport).",
		}, []string{"packet", "reason"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_pending_changes",
			Help:      "Изменений предметов, ожидающих отправки.",
		}),
	}
	reg.MustRegister(m.encoded, m.bytes, m.dropped, m.pending)
	return m
}

func (m *EncoderMetrics) observeEncoded(packet string, size int) {
	m.encoded.WithLabelValues(packet).Inc()
	m.bytes.WithLabelValues(packet).Observe(float64(size))
}

func (m *EncoderMetrics) observeDropped(packet, reason string) {
	m.dropped.WithLabelValues(packet, reason).Inc()
}

// SetPending реализует sync.PendingObserver.
func (m *EncoderMetrics) SetPending(n int) {
	m.pending.Set(float64(n))
}
