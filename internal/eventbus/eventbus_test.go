package eventbus

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []*Envelope
}

func (r *recorder) handle(_ context.Context, ev *Envelope) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.EventType)
	}
	return out
}

func TestMemoryBus_FilterByType(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var all, shots recorder
	_, err := bus.Subscribe(context.Background(), Filter{}, all.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{Types: []string{"ShotResolved"}}, shots.handle)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, NewEnvelope("test", "ShipPlaced", nil)))
	require.NoError(t, bus.Publish(ctx, NewEnvelope("test", "ShotResolved", []byte{1})))

	assert.Eventually(t, func() bool { return len(all.types()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return len(shots.types()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"ShotResolved"}, shots.types())

	stats := bus.Metrics()
	assert.Equal(t, uint64(2), stats.Published)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	var rec recorder
	sub, err := bus.Subscribe(context.Background(), Filter{Sources: []string{"game"}}, rec.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), NewEnvelope("game", "ShipSunk", nil)))
	assert.Never(t, func() bool { return len(rec.types()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestMemoryBus_DropsLowPriorityWhenFull(t *testing.T) {
	// fanOut не запущен: очередь не освобождается
	mb := newMemoryBus(1)
	ctx := context.Background()
	require.NoError(t, mb.Publish(ctx, NewEnvelope("game", "ShotResolved", nil)))
	require.NoError(t, mb.Publish(ctx, NewEnvelope("game", "ShotResolved", nil)))

	stats := mb.Metrics()
	assert.Equal(t, uint64(1), stats.Published)
	assert.Equal(t, uint64(1), stats.Dropped)
	assert.Equal(t, 1, stats.InFlight)

	high := NewEnvelope("game", "ShipSunk", nil)
	high.Priority = 9
	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, mb.Publish(cctx, high), context.DeadlineExceeded)
}

func TestMemoryBus_PublishAfterClose(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())
	assert.ErrorIs(t, bus.Publish(context.Background(), NewEnvelope("game", "ShipPlaced", nil)), ErrClosed)
	assert.NoError(t, bus.Close())
}

func TestMemoryBus_PublishAfterCloseWithFreeQueue(t *testing.T) {
	bus := newMemoryBus(64)
	require.NoError(t, bus.Close())

	for i := 0; i < 200; i++ {
		ev := NewEnvelope("game", "ShotFired", nil)
		if i%2 == 0 {
			ev.Priority = highPriority
		}
		require.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)
	}
	assert.Zero(t, bus.Metrics().Published)
	assert.Zero(t, bus.Metrics().InFlight)
}

func TestGlobalPublish(t *testing.T) {
	Init(nil)
	assert.NoError(t, Publish(context.Background(), NewEnvelope("game", "ShipPlaced", nil)))

	bus := NewMemoryBus(4)
	defer bus.Close()
	Init(bus)
	defer Init(nil)

	var rec recorder
	_, err := bus.Subscribe(context.Background(), Filter{}, rec.handle)
	require.NoError(t, err)
	require.NoError(t, Publish(context.Background(), NewEnvelope("game", "ShipPlaced", nil)))
	assert.Eventually(t, func() bool { return len(rec.types()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestEnvelopeCodec(t *testing.T) {
	ev := NewEnvelope("game", "ShotResolved", []byte{0x81, 0xa1, 0x61, 0x01})
	ev.CorrelationID = "board-1"

	data, err := EncodeEnvelope(ev)
	require.NoError(t, err)
	decoded, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, ev.Payload, decoded.Payload)
	assert.True(t, ev.Timestamp.Equal(decoded.Timestamp))

	_, err = DecodeEnvelope([]byte{0xc1})
	assert.Error(t, err)

	assert.Equal(t, "battleship.*", Subject(""))
	assert.Equal(t, "battleship.ShipSunk", Subject("ShipSunk"))
}

func TestMetricsExporter(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()
	reg := prometheus.NewRegistry()

	exp, err := NewMetricsExporter(bus, reg)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), NewEnvelope("game", "ShipPlaced", nil)))

	expected := `
# HELP battleship_eventbus_messages_published_total Общее число опубликованных сообщений.
# TYPE battleship_eventbus_messages_published_total counter
battleship_eventbus_messages_published_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "battleship_eventbus_messages_published_total"))

	_, err = NewMetricsExporter(bus, reg)
	assert.Error(t, err, "повторная регистрация")

	exp.Unregister(reg)
	_, err = NewMetricsExporter(bus, reg)
	assert.NoError(t, err)
}

func TestStartLoggingListener(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	sub, err := StartLoggingListener(bus)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), NewEnvelope("game", "ShipPlaced", []byte{0x80})))
	assert.Eventually(t, func() bool { return bus.Metrics().Consumed == 1 }, time.Second, 5*time.Millisecond)
}

func TestMemoryBus_PreservesOrder(t *testing.T) {
	bus := NewMemoryBus(32)
	defer bus.Close()

	var rec recorder
	_, err := bus.Subscribe(context.Background(), Filter{}, rec.handle)
	require.NoError(t, err)

	want := []string{"ShipPlaced", "ShotResolved", "ShipSunk", "ShotResolved"}
	for _, typ := range want {
		require.NoError(t, bus.Publish(context.Background(), NewEnvelope("game", typ, nil)))
	}
	assert.Eventually(t, func() bool { return len(rec.types()) == len(want) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, rec.types())
}
