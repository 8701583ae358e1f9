package board

import (
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/battleship3d/internal/geometry"
	"github.com/annel0/battleship3d/internal/vec"
	"github.com/google/uuid"
)

// cell хранит ссылку на корабль по индексу: slot = PlacementID+1, 0: пусто
type cell struct {
	slot int
	hit  bool
}

// grid: двумерная сетка проекции, индексируется [строка][столбец]
type grid [][]cell

func newGrid(extent vec.Vec2) grid {
	g := make(grid, extent.Y)
	for row := range g {
		g[row] = make([]cell, extent.X)
	}
	return g
}

func (g grid) at(c vec.Vec2) *cell {
	return &g[c.Y][c.X]
}

// CellState: состояние ячейки проекции для отрисовки
type CellState struct {
	Occupied  bool
	Placement PlacementID
	Hit       bool
}

// Board хранит три взаимно согласованные проекции поля (Top, Front, Side)
// и таблицу размещённых кораблей. Здоровье корабля хранится только в таблице,
// ячейки всех проекций ссылаются на него по индексу.
type Board struct {
	mu    sync.RWMutex
	id    uuid.UUID
	owner Owner
	dims  vec.Vec3
	grids [geometry.ProjectionCount]grid
	ships []Ship
}

// NewBoard создаёт пустое поле размером dims для владельца owner
func NewBoard(owner *Owner, dims vec.Vec3) (*Board, error) {
	return newBoard(uuid.New(), owner, dims)
}

func newBoard(id uuid.UUID, owner *Owner, dims vec.Vec3) (*Board, error) {
	if owner == nil || owner.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: board must have an owner", ErrInvalidArgument)
	}
	if !dims.Positive() {
		return nil, fmt.Errorf("%w: board dimensions %v, each must be >= 1", ErrInvalidArgument, dims)
	}
	if owner.MaxShips < 0 {
		return nil, fmt.Errorf("%w: max ships %d", ErrInvalidArgument, owner.MaxShips)
	}

	b := &Board{
		id:    id,
		owner: *owner,
		dims:  dims,
	}
	for _, p := range geometry.Projections {
		b.grids[p] = newGrid(geometry.Extent(p, dims))
	}
	return b, nil
}

// ID возвращает идентификатор поля
func (b *Board) ID() uuid.UUID {
	return b.id
}

// Owner возвращает копию владельца поля
func (b *Board) Owner() Owner {
	return b.owner
}

// Dimensions возвращает размеры кубоида
func (b *Board) Dimensions() vec.Vec3 {
	return b.dims
}

// Place размещает корабль. Проверка и запись: две разные фазы:
// ни одна ячейка не записывается, пока не проверены все три проекции.
func (b *Board) Place(owner uuid.UUID, origin vec.Vec3, size int, o geometry.Orientation) (PlacementID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if owner != b.owner.ID {
		return NoPlacement, fmt.Errorf("%w: owner %s does not own board %s", ErrInvalidArgument, owner, b.id)
	}
	if b.owner.MaxShips > 0 && len(b.ships) >= b.owner.MaxShips {
		return NoPlacement, fmt.Errorf("%w: %d ships", ErrFleetFull, b.owner.MaxShips)
	}

	ship, err := newShip(PlacementID(len(b.ships)), owner, origin, size, o)
	if err != nil {
		return NoPlacement, err
	}

	fp := ship.Footprint()
	if err := b.check(fp); err != nil {
		return NoPlacement, err
	}

	b.commit(ship.id, fp)
	b.ships = append(b.ships, *ship)
	return ship.id, nil
}

// check проверяет все ячейки всех следов и ничего не изменяет
func (b *Board) check(fp geometry.Footprint) error {
	var conflicts []Conflict
	outOfBounds := false

	for _, p := range geometry.Projections {
		extent := geometry.Extent(p, b.dims)
		for _, c := range fp.In(p) {
			if !c.Within(extent) {
				outOfBounds = true
				conflicts = append(conflicts, Conflict{Projection: p, Cell: c, Reason: ReasonOutOfBounds, With: NoPlacement})
				continue
			}
			if slot := b.grids[p].at(c).slot; slot != 0 {
				conflicts = append(conflicts, Conflict{Projection: p, Cell: c, Reason: ReasonOverlap, With: PlacementID(slot - 1)})
			}
		}
	}

	if len(conflicts) == 0 {
		return nil
	}

	reason := ReasonOverlap
	if outOfBounds {
		reason = ReasonOutOfBounds
	}
	return &PlacementError{Reason: reason, Conflicts: conflicts}
}

// commit записывает корабль во все ячейки всех следов; вызывается только после check
func (b *Board) commit(id PlacementID, fp geometry.Footprint) {
	for _, p := range geometry.Projections {
		for _, c := range fp.In(p) {
			b.grids[p].at(c).slot = int(id) + 1
		}
	}
}

// QueryCell возвращает состояние ячейки проекции
func (b *Board) QueryCell(p geometry.Projection, col, row int) (CellState, error) {
	if !p.Valid() {
		return CellState{}, fmt.Errorf("%w: projection %d", ErrInvalidArgument, p)
	}
	c := vec.Vec2{X: col, Y: row}
	if !c.Within(geometry.Extent(p, b.dims)) {
		return CellState{}, fmt.Errorf("%w: cell %v outside %v grid", ErrInvalidArgument, c, p)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	cl := b.grids[p].at(c)
	if cl.slot == 0 {
		return CellState{Placement: NoPlacement}, nil
	}
	return CellState{Occupied: true, Placement: PlacementID(cl.slot - 1), Hit: cl.hit}, nil
}

// Ship возвращает копию корабля по идентификатору
func (b *Board) Ship(id PlacementID) (Ship, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if id < 0 || int(id) >= len(b.ships) {
		return Ship{}, false
	}
	return b.ships[id], true
}

// Ships возвращает копии всех кораблей в порядке размещения
func (b *Board) Ships() []Ship {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ships := make([]Ship, len(b.ships))
	copy(ships, b.ships)
	return ships
}

// ApplyHit засчитывает одно попадание кораблю id в обход луча
func (b *Board) ApplyHit(id PlacementID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id < 0 || int(id) >= len(b.ships) {
		return false, fmt.Errorf("%w: unknown placement %d", ErrInvalidArgument, id)
	}
	return b.ships[id].ApplyHit()
}

// Remaining возвращает количество неуничтоженных кораблей
func (b *Board) Remaining() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	alive := 0
	for i := range b.ships {
		if !b.ships[i].Sunk() {
			alive++
		}
	}
	return alive
}

// Defeated возвращает true, если на поле есть корабли и все они уничтожены
func (b *Board) Defeated() bool {
	b.mu.RLock()
	n := len(b.ships)
	b.mu.RUnlock()

	return n > 0 && b.Remaining() == 0
}

// ShipHit: результат выстрела для одного задетого корабля
type ShipHit struct {
	ID   PlacementID
	Hit  bool // здоровье уменьшено этим выстрелом; false для уже потопленного
	Sunk bool
}

// ShotResult: итог выстрела по полю
type ShotResult struct {
	Shot Shot
	Hits []ShipHit // по возрастанию ID
}

// Hit возвращает true, если выстрел нанёс урон хотя бы одному кораблю
func (r ShotResult) Hit() bool {
	for _, h := range r.Hits {
		if h.Hit {
			return true
		}
	}
	return false
}

// Sunk возвращает корабли, потопленные именно этим выстрелом
func (r ShotResult) Sunk() []PlacementID {
	var sunk []PlacementID
	for _, h := range r.Hits {
		if h.Hit && h.Sunk {
			sunk = append(sunk, h.ID)
		}
	}
	return sunk
}

// ResolveShot восстанавливает луч по клику на проекции tag и применяет его к полю
func (b *Board) ResolveShot(tag string, a, c int, vertical bool) (ShotResult, error) {
	shot, err := Cast(tag, a, c, vertical, b.dims)
	if err != nil {
		return ShotResult{}, err
	}

	click := vec.Vec2{X: a, Y: c}
	if !click.Within(geometry.Extent(shot.Tag, b.dims)) {
		return ShotResult{}, fmt.Errorf("%w: click %v outside %v grid", ErrInvalidArgument, click, shot.Tag)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	hits, err := b.resolveFootprint(shot.Footprint)
	if err != nil {
		return ShotResult{}, err
	}
	return ShotResult{Shot: shot, Hits: hits}, nil
}

// resolveFootprint отмечает попадания во всех проекциях и списывает
// ровно одну единицу здоровья с каждого задетого живого корабля,
// даже если его ячейки уже были отмечены раньше.
func (b *Board) resolveFootprint(fp geometry.Footprint) ([]ShipHit, error) {
	struck := make(map[PlacementID]bool)

	for _, p := range geometry.Projections {
		extent := geometry.Extent(p, b.dims)
		for _, c := range fp.In(p) {
			if !c.Within(extent) {
				continue
			}
			cl := b.grids[p].at(c)
			if cl.slot == 0 {
				continue
			}
			struck[PlacementID(cl.slot-1)] = true
			cl.hit = true
		}
	}

	ids := make([]PlacementID, 0, len(struck))
	for id := range struck {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	hits := make([]ShipHit, 0, len(ids))
	for _, id := range ids {
		ship := &b.ships[id]
		hit := ShipHit{ID: id}
		if !ship.Sunk() {
			if _, err := ship.ApplyHit(); err != nil {
				return nil, err
			}
			hit.Hit = true
		}
		hit.Sunk = ship.Sunk()
		hits = append(hits, hit)
	}
	return hits, nil
}
