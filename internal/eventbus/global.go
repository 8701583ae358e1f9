package eventbus

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed возвращается при публикации в закрытую шину
var ErrClosed = errors.New("eventbus: closed")

var (
	globalMu  sync.RWMutex
	globalBus EventBus
)

// Init устанавливает глобальную шину.
func Init(bus EventBus) {
	globalMu.Lock()
	globalBus = bus
	globalMu.Unlock()
}

// Publish отправляет событие в глобальную шину, если она инициализирована.
func Publish(ctx context.Context, ev *Envelope) error {
	globalMu.RLock()
	bus := globalBus
	globalMu.RUnlock()

	if bus == nil {
		return nil
	}
	return bus.Publish(ctx, ev)
}
