package eventbus

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	nats "github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
)

// SubjectPrefix: префикс subject'ов игровых событий: battleship.<EventType>
const SubjectPrefix = "battleship"

// Subject возвращает subject JetStream для типа события
func Subject(eventType string) string {
	if eventType == "" {
		return SubjectPrefix + ".*"
	}
	return SubjectPrefix + "." + eventType
}

// EncodeEnvelope сериализует конверт для передачи по сети
func EncodeEnvelope(ev *Envelope) ([]byte, error) {
	return msgpack.Marshal(ev)
}

// DecodeEnvelope восстанавливает конверт из сообщения JetStream
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var ev Envelope
	if err := msgpack.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &ev, nil
}

// JetStreamBus реализует EventBus поверх NATS JetStream.
type JetStreamBus struct {
	nc        *nats.Conn
	js        nats.JetStreamContext
	stream    string
	published uint64
	consumed  uint64
	dropped   uint64
}

// NewJetStreamBus подключается к NATS и гарантирует наличие стрима.
// url: nats://127.0.0.1:4222, stream: "BATTLESHIP".
func NewJetStreamBus(url, stream string, retention time.Duration) (*JetStreamBus, error) {
	if stream == "" {
		stream = strings.ToUpper(SubjectPrefix)
	}

	nc, err := nats.Connect(url, nats.Name("battleship3d"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if _, err := js.StreamInfo(stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      stream,
			Subjects:  []string{Subject("")},
			Retention: nats.LimitsPolicy,
			MaxAge:    retention,
			Storage:   nats.FileStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("add stream %s: %w", stream, err)
		}
	}

	return &JetStreamBus{nc: nc, js: js, stream: stream}, nil
}

// Publish сериализует Envelope в msgpack и публикует в subject battleship.<type>.
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := EncodeEnvelope(ev)
	if err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return err
	}
	if _, err := jb.js.Publish(Subject(ev.EventType), data, nats.Context(ctx), nats.MsgId(ev.ID)); err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return fmt.Errorf("publish %s: %w", ev.EventType, err)
	}
	atomic.AddUint64(&jb.published, 1)
	return nil
}

// Subscribe создаёт эфемерного consumer'а и вызывает handler асинхронно.
// Фильтр по источникам применяется на клиенте.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := Subject("")
	if len(f.Types) == 1 {
		subj = Subject(f.Types[0])
	}

	natSub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		defer func() { _ = msg.Ack() }()

		ev, err := DecodeEnvelope(msg.Data)
		if err != nil {
			atomic.AddUint64(&jb.dropped, 1)
			return
		}
		if !matchFilter(ev, f) {
			return
		}
		h(ctx, ev)
		atomic.AddUint64(&jb.consumed, 1)
	}, nats.ManualAck(), nats.DeliverNew(), nats.AckWait(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subj, err)
	}

	return &jetSub{natSub}, nil
}

// jetSub обёртка вокруг *nats.Subscription
type jetSub struct {
	s *nats.Subscription
}

func (j *jetSub) Unsubscribe() {
	_ = j.s.Unsubscribe()
}

// Metrics возвращает текущие счётчики.
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&jb.published),
		Consumed:  atomic.LoadUint64(&jb.consumed),
		Dropped:   atomic.LoadUint64(&jb.dropped),
	}
}

// Close дожидается доставки и закрывает соединение
func (jb *JetStreamBus) Close() error {
	return jb.nc.Drain()
}
