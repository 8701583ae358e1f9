package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
)

// highPriority: события с приоритетом не ниже ждут места в очереди, остальные отбрасываются
const highPriority = 5

// memoryBus доставляет события внутри процесса.
// Каждый подписчик получает события в порядке публикации из собственной очереди.
type memoryBus struct {
	mu     sync.RWMutex
	subs   map[int]*memSub
	nextID int

	queue     chan *Envelope
	inboxSize int
	done      chan struct{}
	closeOnce sync.Once

	published atomic.Uint64
	consumed  atomic.Uint64
	dropped   atomic.Uint64
}

// NewMemoryBus создаёт in-memory шину с очередью на capacity событий.
func NewMemoryBus(capacity int) EventBus {
	mb := newMemoryBus(capacity)
	go mb.fanOut()
	return mb
}

func newMemoryBus(capacity int) *memoryBus {
	if capacity < 1 {
		capacity = 1
	}
	return &memoryBus{
		subs:      make(map[int]*memSub),
		queue:     make(chan *Envelope, capacity),
		inboxSize: capacity,
		done:      make(chan struct{}),
	}
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	// закрытие проверяется отдельно: select с готовыми ветками выбирает случайно
	select {
	case <-mb.done:
		return ErrClosed
	default:
	}

	select {
	case mb.queue <- ev:
		mb.published.Add(1)
		return nil
	default:
	}

	if ev.Priority < highPriority {
		mb.dropped.Add(1)
		return nil
	}

	select {
	case mb.queue <- ev:
		mb.published.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-mb.done:
		return ErrClosed
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	select {
	case <-mb.done:
		return nil, ErrClosed
	default:
	}

	cctx, cancel := context.WithCancel(ctx)
	sub := &memSub{
		bus:     mb,
		filter:  f,
		handler: h,
		ctx:     cctx,
		cancel:  cancel,
		inbox:   make(chan *Envelope, mb.inboxSize),
	}

	mb.mu.Lock()
	sub.id = mb.nextID
	mb.nextID++
	mb.subs[sub.id] = sub
	mb.mu.Unlock()

	go sub.run()
	return sub, nil
}

func (mb *memoryBus) Metrics() Stats {
	return Stats{
		Published: mb.published.Load(),
		Consumed:  mb.consumed.Load(),
		Dropped:   mb.dropped.Load(),
		InFlight:  len(mb.queue),
	}
}

// Close останавливает доставку; события, оставшиеся в очередях, теряются
func (mb *memoryBus) Close() error {
	mb.closeOnce.Do(func() {
		close(mb.done)

		mb.mu.Lock()
		for id, sub := range mb.subs {
			sub.cancel()
			delete(mb.subs, id)
		}
		mb.mu.Unlock()
	})
	return nil
}

// fanOut раскладывает события по очередям подходящих подписчиков.
// Переполненная очередь подписчика не блокирует остальных: событие для него отбрасывается.
func (mb *memoryBus) fanOut() {
	for {
		select {
		case <-mb.done:
			return
		case ev := <-mb.queue:
			mb.mu.RLock()
			for _, sub := range mb.subs {
				if !matchFilter(ev, sub.filter) {
					continue
				}
				select {
				case sub.inbox <- ev:
				default:
					mb.dropped.Add(1)
				}
			}
			mb.mu.RUnlock()
		}
	}
}

func matchFilter(ev *Envelope, f Filter) bool {
	return contains(f.Types, ev.EventType) && contains(f.Sources, ev.Source)
}

// contains: пустой список совпадает с любым значением
func contains(list []string, v string) bool {
	if len(list) == 0 {
		return true
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

type memSub struct {
	bus     *memoryBus
	id      int
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
	inbox   chan *Envelope
}

func (s *memSub) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.inbox:
			s.handler(s.ctx, ev)
			s.bus.consumed.Add(1)
		}
	}
}

func (s *memSub) Unsubscribe() {
	s.cancel()
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
}
