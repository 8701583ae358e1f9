// Package metrics содержит Prometheus-метрики игрового сервиса.
package metrics

import (
	"errors"
	"net/http"

	"github.com/annel0/battleship3d/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Результаты размещения
const (
	ResultAccepted    = "accepted"
	ResultOutOfBounds = "out_of_bounds"
	ResultOverlap     = "overlap"
	ResultFleetFull   = "fleet_full"
	ResultInvalid     = "invalid"
)

// Collector агрегирует счётчики размещений и выстрелов
type Collector struct {
	placements *prometheus.CounterVec
	shots      *prometheus.CounterVec
	hits       prometheus.Counter
	sinks      prometheus.Counter
	boards     prometheus.Gauge
}

// NewCollector создаёт метрики и регистрирует их в reg.
// Если reg == nil, используется глобальный регистр Prometheus.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "battleship",
			Name:      "placements_total",
			Help:      "Попытки размещения кораблей по результату.",
		}, []string{"result"}),
		shots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "battleship",
			Name:      "shots_total",
			Help:      "Выстрелы по проекции, из которой сделан клик.",
		}, []string{"projection"}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "battleship",
			Name:      "hits_total",
			Help:      "Попадания, уменьшившие здоровье корабля.",
		}),
		sinks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "battleship",
			Name:      "sinks_total",
			Help:      "Потопленные корабли.",
		}),
		boards: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "battleship",
			Name:      "boards",
			Help:      "Количество полей в реестре сервиса.",
		}),
	}

	for _, col := range []prometheus.Collector{c.placements, c.shots, c.hits, c.sinks, c.boards} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Placement учитывает попытку размещения
func (c *Collector) Placement(result string) {
	if c == nil {
		return
	}
	c.placements.WithLabelValues(result).Inc()
}

// Shot учитывает выстрел и его итог
func (c *Collector) Shot(projection string, hits, sunk int) {
	if c == nil {
		return
	}
	c.shots.WithLabelValues(projection).Inc()
	c.hits.Add(float64(hits))
	c.sinks.Add(float64(sunk))
}

// Boards выставляет размер реестра полей
func (c *Collector) Boards(n int) {
	if c == nil {
		return
	}
	c.boards.Set(float64(n))
}

// Serve запускает HTTP-эндпоинт /metrics для gatherer на addr.
// Метод неблокирующий; возвращает сервер для остановки.
func Serve(addr string, gatherer prometheus.Gatherer) *http.Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return srv
}
