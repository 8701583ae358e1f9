package board

import (
	"fmt"

	"github.com/annel0/battleship3d/internal/geometry"
	"github.com/annel0/battleship3d/internal/vec"
	"github.com/google/uuid"
)

// PlacementID: идентификатор корабля в пределах поля (индекс в таблице кораблей)
type PlacementID int

// NoPlacement возвращается вместе с ошибкой размещения
const NoPlacement PlacementID = -1

// Ship: линейный объект в кубоиде. Создаётся только через Board.Place:
// конструктор не экспортируется, поэтому обойти проверки поля нельзя.
type Ship struct {
	id          PlacementID
	owner       uuid.UUID
	origin      vec.Vec3
	size        int
	orientation geometry.Orientation
	health      int
}

func newShip(id PlacementID, owner uuid.UUID, origin vec.Vec3, size int, o geometry.Orientation) (*Ship, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: ship size %d, must be >= 1", ErrInvalidArgument, size)
	}
	if o != geometry.Horizontal && o != geometry.Vertical {
		return nil, fmt.Errorf("%w: orientation %d", ErrInvalidArgument, o)
	}
	return &Ship{
		id:          id,
		owner:       owner,
		origin:      origin,
		size:        size,
		orientation: o,
		health:      size,
	}, nil
}

func (s *Ship) ID() PlacementID                   { return s.id }
func (s *Ship) Owner() uuid.UUID                  { return s.owner }
func (s *Ship) Origin() vec.Vec3                  { return s.origin }
func (s *Ship) Size() int                         { return s.size }
func (s *Ship) Orientation() geometry.Orientation { return s.orientation }
func (s *Ship) Health() int                       { return s.health }

// Sunk возвращает true, если здоровье корабля исчерпано
func (s *Ship) Sunk() bool {
	return s.health == 0
}

// OccupiedCells возвращает ячейки корабля в проекции p
func (s *Ship) OccupiedCells(p geometry.Projection) []vec.Vec2 {
	ind, dep := geometry.Project(p, s.origin)
	return geometry.Cells(p, s.orientation, ind, dep, s.size)
}

// Footprint возвращает следы корабля во всех проекциях
func (s *Ship) Footprint() geometry.Footprint {
	return geometry.FootprintOf(s.origin, s.size, s.orientation)
}

// ApplyHit уменьшает здоровье на единицу и сообщает, уничтожен ли корабль
func (s *Ship) ApplyHit() (bool, error) {
	if s.health == 0 {
		return true, fmt.Errorf("%w: ship %d already destroyed", ErrInvalidState, s.id)
	}
	s.health--
	return s.health == 0, nil
}
