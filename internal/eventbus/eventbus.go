package eventbus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Envelope описывает универсальный контейнер события.
// Все поля фиксированы для версиирования и трассировки.
type Envelope struct {
	ID            string            `msgpack:"id"`             // Глобально уникальный идентификатор (UUID).
	Timestamp     time.Time         `msgpack:"ts"`             // Время создания события (UTC).
	Source        string            `msgpack:"source"`         // Имя сервиса-источника.
	EventType     string            `msgpack:"type"`           // Тип события (ShipPlaced, ShotResolved…).
	Version       int               `msgpack:"version"`        // Схема полезной нагрузки.
	CorrelationID string            `msgpack:"correlation_id"` // Для связывания цепочек (ID поля).
	Priority      int               `msgpack:"priority"`       // 0=Low … 9=Critical (для backpressure).
	Payload       []byte            `msgpack:"payload"`        // Сериализованный msgpack.
	Metadata      map[string]string `msgpack:"metadata"`       // Произвольные метаданные.
}

// NewEnvelope создаёт конверт с новым UUID и текущим временем
func NewEnvelope(source, eventType string, payload []byte) *Envelope {
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Payload:   payload,
		Metadata:  make(map[string]string),
	}
}

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types   []string // Если пусто: все типы.
	Sources []string // Если пусто: все источники.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus определяет абстракцию шины событий.
// Реализации: in-memory (тесты, один процесс) и JetStream.
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}
