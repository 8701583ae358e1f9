package game

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/annel0/battleship3d/internal/board"
	"github.com/annel0/battleship3d/internal/eventbus"
	"github.com/annel0/battleship3d/internal/fleet"
	"github.com/annel0/battleship3d/internal/geometry"
	"github.com/annel0/battleship3d/internal/metrics"
	"github.com/annel0/battleship3d/internal/storage"
	"github.com/annel0/battleship3d/internal/vec"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	svc   *Service
	reg   *prometheus.Registry
	repo  *storage.MemoryBoardRepo
	mu    sync.Mutex
	event []*eventbus.Envelope
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	bus := eventbus.NewMemoryBus(64)
	t.Cleanup(func() { _ = bus.Close() })

	reg := prometheus.NewRegistry()
	col, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	h := &harness{reg: reg, repo: storage.NewMemoryBoardRepo()}
	_, err = bus.Subscribe(context.Background(), eventbus.Filter{Sources: []string{Source}}, func(_ context.Context, ev *eventbus.Envelope) {
		h.mu.Lock()
		h.event = append(h.event, ev)
		h.mu.Unlock()
	})
	require.NoError(t, err)

	h.svc = NewService(Options{Bus: bus, Metrics: col, Repo: h.repo})
	return h
}

// waitEvent ждёт событие типа eventType и возвращает его
func (h *harness) waitEvent(t *testing.T, eventType string, count int) []*eventbus.Envelope {
	t.Helper()
	var found []*eventbus.Envelope
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		found = found[:0]
		for _, ev := range h.event {
			if ev.EventType == eventType {
				found = append(found, ev)
			}
		}
		return len(found) >= count
	}, time.Second, 5*time.Millisecond, "событие %s", eventType)
	return found
}

func (h *harness) board(t *testing.T, dims vec.Vec3) (uuid.UUID, *board.Owner) {
	t.Helper()
	owner := board.NewOwner("player", 0)
	id, err := h.svc.CreateBoard(context.Background(), owner, dims)
	require.NoError(t, err)
	return id, owner
}

func TestService_PlaceAndReject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id, owner := h.board(t, vec.Vec3{X: 4, Y: 4, Z: 4})

	pid, err := h.svc.Place(ctx, id, owner.ID, vec.Vec3{X: 0, Y: 1, Z: 0}, 3, geometry.Horizontal)
	require.NoError(t, err)

	placed := h.waitEvent(t, EventShipPlaced, 1)
	var payload ShipPlacedPayload
	require.NoError(t, DecodePayload(placed[0], &payload))
	assert.Equal(t, ShipPlacedPayload{BoardID: id, Placement: pid, Origin: vec.Vec3{X: 0, Y: 1, Z: 0}, Size: 3, Orientation: geometry.Horizontal}, payload)
	assert.Equal(t, id.String(), placed[0].CorrelationID)

	_, err = h.svc.Place(ctx, id, owner.ID, vec.Vec3{X: 1, Y: 1, Z: 2}, 2, geometry.Vertical)
	assert.ErrorIs(t, err, board.ErrOverlap)

	rejected := h.waitEvent(t, EventPlacementRejected, 1)
	var rej PlacementRejectedPayload
	require.NoError(t, DecodePayload(rejected[0], &rej))
	assert.Equal(t, metrics.ResultOverlap, rej.Result)

	expected := `
# HELP battleship_placements_total Попытки размещения кораблей по результату.
# TYPE battleship_placements_total counter
battleship_placements_total{result="accepted"} 1
battleship_placements_total{result="overlap"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(h.reg, strings.NewReader(expected), "battleship_placements_total"))
}

func TestService_UnknownBoard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	missing := uuid.New()

	_, err := h.svc.Place(ctx, missing, uuid.New(), vec.Vec3{}, 1, geometry.Horizontal)
	assert.ErrorIs(t, err, ErrBoardNotFound)
	_, err = h.svc.Fire(ctx, missing, "XZ", 0, 0, false)
	assert.ErrorIs(t, err, ErrBoardNotFound)
	_, err = h.svc.Cell(ctx, missing, geometry.Top, 0, 0)
	assert.ErrorIs(t, err, ErrBoardNotFound)
	_, err = h.svc.Deploy(ctx, missing, uuid.New(), []int{1}, 1)
	assert.ErrorIs(t, err, ErrBoardNotFound)
	assert.ErrorIs(t, h.svc.Save(ctx, missing), ErrBoardNotFound)
	assert.ErrorIs(t, h.svc.Load(ctx, missing), storage.ErrNotFound)

	_, err = h.svc.CreateBoard(ctx, nil, vec.Vec3{X: 1, Y: 1, Z: 1})
	assert.ErrorIs(t, err, board.ErrInvalidArgument)
}

func TestService_FireAndSink(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id, owner := h.board(t, vec.Vec3{X: 4, Y: 4, Z: 4})

	pid, err := h.svc.Place(ctx, id, owner.ID, vec.Vec3{X: 0, Y: 1, Z: 1}, 2, geometry.Horizontal)
	require.NoError(t, err)

	res, err := h.svc.Fire(ctx, id, "XZ", 0, 0, true)
	require.NoError(t, err)
	assert.True(t, res.Hit())

	res, err = h.svc.Fire(ctx, id, "XZ", 1, 0, true)
	require.NoError(t, err)
	assert.Equal(t, []board.PlacementID{pid}, res.Sunk())

	_, err = h.svc.Fire(ctx, id, "XZ", 9, 0, true)
	assert.ErrorIs(t, err, board.ErrInvalidArgument)

	shots := h.waitEvent(t, EventShotResolved, 2)
	var shot ShotResolvedPayload
	require.NoError(t, DecodePayload(shots[0], &shot))
	assert.Equal(t, "XZ", shot.Tag)
	require.Len(t, shot.Hits, 1)
	assert.Equal(t, board.ShipHit{ID: pid, Hit: true}, shot.Hits[0])

	sunk := h.waitEvent(t, EventShipSunk, 1)
	var sp ShipSunkPayload
	require.NoError(t, DecodePayload(sunk[0], &sp))
	assert.Equal(t, ShipSunkPayload{BoardID: id, Placement: pid, Remaining: 0, Defeated: true}, sp)
	assert.Equal(t, 9, sunk[0].Priority)

	state, err := h.svc.Cell(ctx, id, geometry.Top, 1, 1)
	require.NoError(t, err)
	assert.True(t, state.Occupied)
	assert.True(t, state.Hit)

	expected := `
# HELP battleship_hits_total Попадания, уменьшившие здоровье корабля.
# TYPE battleship_hits_total counter
battleship_hits_total 2
# HELP battleship_sinks_total Потопленные корабли.
# TYPE battleship_sinks_total counter
battleship_sinks_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(h.reg, strings.NewReader(expected), "battleship_hits_total", "battleship_sinks_total"))
}

func TestService_Deploy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id, owner := h.board(t, vec.Vec3{X: 6, Y: 6, Z: 6})

	ids, err := h.svc.Deploy(ctx, id, owner.ID, []int{2, 3, 4}, 11)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	h.waitEvent(t, EventShipPlaced, 3)

	small, smallOwner := h.board(t, vec.Vec3{X: 1, Y: 1, Z: 1})
	ids, err = h.svc.Deploy(ctx, small, smallOwner.ID, []int{1, 1}, 11)
	assert.ErrorIs(t, err, fleet.ErrNoRoom)
	assert.Len(t, ids, 1)
	h.waitEvent(t, EventPlacementRejected, 1)
}

func TestService_SaveLoad(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id, owner := h.board(t, vec.Vec3{X: 4, Y: 4, Z: 4})

	_, err := h.svc.Place(ctx, id, owner.ID, vec.Vec3{X: 2, Y: 0, Z: 0}, 3, geometry.Vertical)
	require.NoError(t, err)
	_, err = h.svc.Fire(ctx, id, "XY", 0, 0, false)
	require.NoError(t, err)

	require.NoError(t, h.svc.Save(ctx, id))
	before, _ := h.svc.Board(id)
	snap := before.Snapshot()

	// Изменения после сохранения теряются при загрузке
	_, err = h.svc.Fire(ctx, id, "XZ", 2, 0, true)
	require.NoError(t, err)

	require.NoError(t, h.svc.Load(ctx, id))
	after, ok := h.svc.Board(id)
	require.True(t, ok)
	assert.NotSame(t, before, after)
	assert.Equal(t, snap, after.Snapshot())

	ids, err := h.repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, ids)
}

func TestService_GlobalBusFallback(t *testing.T) {
	bus := eventbus.NewMemoryBus(8)
	defer bus.Close()
	eventbus.Init(bus)
	defer eventbus.Init(nil)

	var mu sync.Mutex
	var got []string
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		got = append(got, ev.EventType)
		mu.Unlock()
	})
	require.NoError(t, err)

	svc := NewService(Options{})
	owner := board.NewOwner("solo", 0)
	id, err := svc.CreateBoard(context.Background(), owner, vec.Vec3{X: 2, Y: 2, Z: 2})
	require.NoError(t, err)
	_, err = svc.Place(context.Background(), id, owner.ID, vec.Vec3{}, 1, geometry.Horizontal)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == EventShipPlaced
	}, time.Second, 5*time.Millisecond)
}
