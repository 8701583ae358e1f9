package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter публикует Stats шины как метрики Prometheus.
// Значения читаются из шины в момент сбора, отдельный цикл обновления не нужен.
type MetricsExporter struct {
	collectors []prometheus.Collector
}

// NewMetricsExporter создаёт экспортер для bus и регистрирует его в reg.
// Если reg == nil, используется глобальный регистр Prometheus.
func NewMetricsExporter(bus EventBus, reg prometheus.Registerer) (*MetricsExporter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	counter := func(name, help string, read func(Stats) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "battleship",
			Subsystem: "eventbus",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(read(bus.Metrics())) })
	}

	me := &MetricsExporter{collectors: []prometheus.Collector{
		counter("messages_published_total", "Общее число опубликованных сообщений.",
			func(s Stats) uint64 { return s.Published }),
		counter("messages_consumed_total", "Общее число доставленных сообщений подписчикам.",
			func(s Stats) uint64 { return s.Consumed }),
		counter("messages_dropped_total", "Сообщений, отброшенных из-за ошибок или back-pressure.",
			func(s Stats) uint64 { return s.Dropped }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "battleship",
			Subsystem: "eventbus",
			Name:      "messages_inflight",
			Help:      "Количество сообщений в очереди.",
		}, func() float64 { return float64(bus.Metrics().InFlight) }),
	}}

	for _, c := range me.collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return me, nil
}

// Unregister снимает метрики экспортера с регистра
func (m *MetricsExporter) Unregister(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range m.collectors {
		reg.Unregister(c)
	}
}
