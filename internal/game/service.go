// Package game связывает поля, расстановку флота, события, метрики и хранилище.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/battleship3d/internal/board"
	"github.com/annel0/battleship3d/internal/eventbus"
	"github.com/annel0/battleship3d/internal/fleet"
	"github.com/annel0/battleship3d/internal/geometry"
	"github.com/annel0/battleship3d/internal/logging"
	"github.com/annel0/battleship3d/internal/metrics"
	"github.com/annel0/battleship3d/internal/observability"
	"github.com/annel0/battleship3d/internal/storage"
	"github.com/annel0/battleship3d/internal/vec"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrBoardNotFound возвращается для неизвестного идентификатора поля
var ErrBoardNotFound = errors.New("game: board not found")

// Options задаёт зависимости сервиса; любое поле может быть nil
type Options struct {
	Bus     eventbus.EventBus  // nil: глобальная шина
	Metrics *metrics.Collector // nil: без метрик
	Repo    storage.BoardRepo  // nil: хранилище в памяти
	Tracer  trace.Tracer       // nil: tracer глобального провайдера
}

// Service: реестр полей с событиями, метриками и трассировкой
type Service struct {
	mu      sync.RWMutex
	boards  map[uuid.UUID]*board.Board
	bus     eventbus.EventBus
	metrics *metrics.Collector
	repo    storage.BoardRepo
	tracer  trace.Tracer
	logger  *logging.Logger
}

// NewService создаёт сервис
func NewService(opts Options) *Service {
	if opts.Repo == nil {
		opts.Repo = storage.NewMemoryBoardRepo()
	}
	if opts.Tracer == nil {
		opts.Tracer = observability.Tracer("battleship3d/game")
	}
	return &Service{
		boards:  make(map[uuid.UUID]*board.Board),
		bus:     opts.Bus,
		metrics: opts.Metrics,
		repo:    opts.Repo,
		tracer:  opts.Tracer,
		logger:  logging.GetGameLogger(),
	}
}

func (s *Service) start(ctx context.Context, name string, boardID uuid.UUID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "game."+name, trace.WithAttributes(attribute.String("board.id", boardID.String())))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *Service) register(b *board.Board) {
	s.mu.Lock()
	s.boards[b.ID()] = b
	n := len(s.boards)
	s.mu.Unlock()
	s.metrics.Boards(n)
}

func (s *Service) lookup(id uuid.UUID) (*board.Board, error) {
	b, ok := s.Board(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}
	return b, nil
}

// CreateBoard создаёт пустое поле и регистрирует его
func (s *Service) CreateBoard(ctx context.Context, owner *board.Owner, dims vec.Vec3) (uuid.UUID, error) {
	_, span := s.tracer.Start(ctx, "game.CreateBoard")
	defer span.End()

	b, err := board.NewBoard(owner, dims)
	if err != nil {
		return uuid.Nil, fail(span, err)
	}
	s.register(b)
	span.SetAttributes(attribute.String("board.id", b.ID().String()))
	s.logger.Info("🆕 Поле %s %v создано для %s", b.ID(), dims, owner.Name)
	return b.ID(), nil
}

// Board возвращает зарегистрированное поле
func (s *Service) Board(id uuid.UUID) (*board.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[id]
	return b, ok
}

// Place размещает корабль на поле boardID
func (s *Service) Place(ctx context.Context, boardID, owner uuid.UUID, origin vec.Vec3, size int, o geometry.Orientation) (board.PlacementID, error) {
	ctx, span := s.start(ctx, "Place", boardID)
	defer span.End()

	b, err := s.lookup(boardID)
	if err != nil {
		return board.NoPlacement, fail(span, err)
	}

	id, err := b.Place(owner, origin, size, o)
	if err != nil {
		result := placementResult(err)
		s.metrics.Placement(result)
		s.publish(ctx, EventPlacementRejected, boardID, 0, PlacementRejectedPayload{
			BoardID: boardID, Origin: origin, Size: size, Orientation: o, Result: result, Error: err.Error(),
		})
		s.logger.Debug("🚫 Размещение %v size=%d %v отклонено: %v", origin, size, o, err)
		return board.NoPlacement, fail(span, err)
	}

	s.placed(ctx, b, id)
	return id, nil
}

func (s *Service) placed(ctx context.Context, b *board.Board, id board.PlacementID) {
	ship, _ := b.Ship(id)
	s.metrics.Placement(metrics.ResultAccepted)
	s.publish(ctx, EventShipPlaced, b.ID(), 0, ShipPlacedPayload{
		BoardID: b.ID(), Placement: id, Origin: ship.Origin(), Size: ship.Size(), Orientation: ship.Orientation(),
	})
	s.logger.Debug("🚢 Корабль %d размещён на %s: %v size=%d %v", id, b.ID(), ship.Origin(), ship.Size(), ship.Orientation())
}

func placementResult(err error) string {
	switch {
	case errors.Is(err, board.ErrOutOfBounds):
		return metrics.ResultOutOfBounds
	case errors.Is(err, board.ErrOverlap):
		return metrics.ResultOverlap
	case errors.Is(err, board.ErrFleetFull):
		return metrics.ResultFleetFull
	default:
		return metrics.ResultInvalid
	}
}

// Deploy расставляет флот размеров sizes по шуму Перлина с сидом seed
func (s *Service) Deploy(ctx context.Context, boardID, owner uuid.UUID, sizes []int, seed int64) ([]board.PlacementID, error) {
	ctx, span := s.start(ctx, "Deploy", boardID)
	defer span.End()
	span.SetAttributes(attribute.Int64("fleet.seed", seed), attribute.IntSlice("fleet.sizes", sizes))

	b, err := s.lookup(boardID)
	if err != nil {
		return nil, fail(span, err)
	}

	ids, err := fleet.NewDeployer(seed).Deploy(b, owner, sizes)
	for _, id := range ids {
		s.placed(ctx, b, id)
	}
	if err != nil {
		result := placementResult(err)
		if errors.Is(err, fleet.ErrNoRoom) {
			result = metrics.ResultOverlap
		}
		s.metrics.Placement(result)
		s.publish(ctx, EventPlacementRejected, boardID, 0, PlacementRejectedPayload{
			BoardID: boardID, Result: result, Error: err.Error(),
		})
		return ids, fail(span, err)
	}

	s.logger.Info("⚓ Флот из %d кораблей развёрнут на %s (seed=%d)", len(ids), boardID, seed)
	return ids, nil
}

// Fire выполняет выстрел кликом (a, b) по проекции tag
func (s *Service) Fire(ctx context.Context, boardID uuid.UUID, tag string, a, c int, vertical bool) (board.ShotResult, error) {
	ctx, span := s.start(ctx, "Fire", boardID)
	defer span.End()
	span.SetAttributes(
		attribute.String("shot.tag", tag),
		attribute.Int("shot.a", a),
		attribute.Int("shot.b", c),
		attribute.Bool("shot.vertical", vertical),
	)

	b, err := s.lookup(boardID)
	if err != nil {
		return board.ShotResult{}, fail(span, err)
	}

	res, err := b.ResolveShot(tag, a, c, vertical)
	if err != nil {
		return board.ShotResult{}, fail(span, err)
	}

	hits := 0
	for _, h := range res.Hits {
		if h.Hit {
			hits++
		}
	}
	sunk := res.Sunk()
	s.metrics.Shot(tag, hits, len(sunk))
	span.SetAttributes(attribute.Int("shot.hits", hits), attribute.Int("shot.sunk", len(sunk)))

	s.publish(ctx, EventShotResolved, boardID, 0, ShotResolvedPayload{
		BoardID: boardID, Tag: tag, A: a, B: c, Vertical: vertical, Hits: res.Hits,
	})

	remaining := b.Remaining()
	for _, id := range sunk {
		s.publish(ctx, EventShipSunk, boardID, 9, ShipSunkPayload{
			BoardID: boardID, Placement: id, Remaining: remaining, Defeated: b.Defeated(),
		})
		s.logger.Info("💥 Корабль %d на %s потоплен, осталось %d", id, boardID, remaining)
	}
	return res, nil
}

// Cell возвращает состояние ячейки проекции p
func (s *Service) Cell(ctx context.Context, boardID uuid.UUID, p geometry.Projection, col, row int) (board.CellState, error) {
	_, span := s.start(ctx, "Cell", boardID)
	defer span.End()

	b, err := s.lookup(boardID)
	if err != nil {
		return board.CellState{}, fail(span, err)
	}
	state, err := b.QueryCell(p, col, row)
	if err != nil {
		return board.CellState{}, fail(span, err)
	}
	return state, nil
}

// Save сохраняет снимок поля в хранилище
func (s *Service) Save(ctx context.Context, boardID uuid.UUID) error {
	ctx, span := s.start(ctx, "Save", boardID)
	defer span.End()

	b, err := s.lookup(boardID)
	if err != nil {
		return fail(span, err)
	}
	if err := s.repo.Save(ctx, b.Snapshot()); err != nil {
		return fail(span, fmt.Errorf("save board %s: %w", boardID, err))
	}
	s.logger.Debug("💾 Поле %s сохранено", boardID)
	return nil
}

// Load восстанавливает поле из хранилища, заменяя зарегистрированное
func (s *Service) Load(ctx context.Context, boardID uuid.UUID) error {
	ctx, span := s.start(ctx, "Load", boardID)
	defer span.End()

	snap, ok, err := s.repo.Load(ctx, boardID)
	if err != nil {
		return fail(span, fmt.Errorf("load board %s: %w", boardID, err))
	}
	if !ok {
		return fail(span, fmt.Errorf("%w: %s", storage.ErrNotFound, boardID))
	}

	b, err := board.Restore(snap)
	if err != nil {
		return fail(span, err)
	}
	s.register(b)
	s.logger.Debug("📂 Поле %s загружено (%d кораблей)", boardID, len(snap.Ships))
	return nil
}
