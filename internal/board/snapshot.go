package board

import (
	"fmt"
	"sort"

	"github.com/annel0/battleship3d/internal/geometry"
	"github.com/annel0/battleship3d/internal/vec"
	"github.com/google/uuid"
)

// ShipRecord: сериализуемое состояние корабля
type ShipRecord struct {
	ID          PlacementID          `msgpack:"id"`
	Origin      vec.Vec3             `msgpack:"origin"`
	Size        int                  `msgpack:"size"`
	Orientation geometry.Orientation `msgpack:"orientation"`
	Health      int                  `msgpack:"health"`
}

// Snapshot: полное состояние поля для сохранения и передачи.
// Hits хранит отмеченные попаданиями ячейки каждой проекции.
type Snapshot struct {
	BoardID uuid.UUID          `msgpack:"board_id"`
	Owner   Owner              `msgpack:"owner"`
	Dims    vec.Vec3           `msgpack:"dims"`
	Ships   []ShipRecord       `msgpack:"ships"`
	Hits    geometry.Footprint `msgpack:"hits"`
}

// Snapshot снимает копию состояния поля
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Snapshot{
		BoardID: b.id,
		Owner:   b.owner,
		Dims:    b.dims,
		Ships:   make([]ShipRecord, 0, len(b.ships)),
	}
	for i := range b.ships {
		ship := &b.ships[i]
		s.Ships = append(s.Ships, ShipRecord{
			ID:          ship.id,
			Origin:      ship.origin,
			Size:        ship.size,
			Orientation: ship.orientation,
			Health:      ship.health,
		})
	}

	for _, p := range geometry.Projections {
		var hits []vec.Vec2
		for row, cells := range b.grids[p] {
			for col, cl := range cells {
				if cl.hit {
					hits = append(hits, vec.Vec2{X: col, Y: row})
				}
			}
		}
		switch p {
		case geometry.Top:
			s.Hits.Top = hits
		case geometry.Front:
			s.Hits.Front = hits
		case geometry.Side:
			s.Hits.Side = hits
		}
	}
	return s
}

// Restore восстанавливает поле из снимка, повторяя размещения через Place,
// так что восстановленное поле проходит те же проверки, что и исходное.
func Restore(s Snapshot) (*Board, error) {
	owner := s.Owner
	// лимит уже был проверен при исходном размещении
	owner.MaxShips = 0

	b, err := newBoard(s.BoardID, &owner, s.Dims)
	if err != nil {
		return nil, err
	}

	records := make([]ShipRecord, len(s.Ships))
	copy(records, s.Ships)
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	for i, rec := range records {
		if rec.ID != PlacementID(i) {
			return nil, fmt.Errorf("%w: snapshot ship ids are not sequential at %d", ErrInvalidArgument, rec.ID)
		}
		if rec.Health < 0 || rec.Health > rec.Size {
			return nil, fmt.Errorf("%w: ship %d health %d of %d", ErrInvalidArgument, rec.ID, rec.Health, rec.Size)
		}
		if _, err := b.Place(owner.ID, rec.Origin, rec.Size, rec.Orientation); err != nil {
			return nil, fmt.Errorf("restore ship %d: %w", rec.ID, err)
		}
		b.ships[i].health = rec.Health
	}

	for _, p := range geometry.Projections {
		extent := geometry.Extent(p, b.dims)
		for _, c := range s.Hits.In(p) {
			if !c.Within(extent) {
				return nil, fmt.Errorf("%w: hit %v outside %v grid", ErrInvalidArgument, c, p)
			}
			cl := b.grids[p].at(c)
			if cl.slot == 0 {
				return nil, fmt.Errorf("%w: hit %v on empty %v cell", ErrInvalidArgument, c, p)
			}
			cl.hit = true
		}
	}

	// Каждый выстрел по живому кораблю и отмечает ячейки, и списывает здоровье
	for i := range b.ships {
		ship := &b.ships[i]
		damaged := ship.health < ship.size
		if hit := b.anyHit(ship.Footprint()); hit != damaged {
			return nil, fmt.Errorf("%w: ship %d health %d of %d, hit cells: %v",
				ErrInvalidArgument, ship.id, ship.health, ship.size, hit)
		}
	}

	b.owner.MaxShips = s.Owner.MaxShips
	return b, nil
}

// anyHit проверяет, отмечена ли хотя бы одна ячейка следа
func (b *Board) anyHit(fp geometry.Footprint) bool {
	for _, p := range geometry.Projections {
		for _, c := range fp.In(p) {
			if b.grids[p].at(c).hit {
				return true
			}
		}
	}
	return false
}
