// Package fleet расставляет флот на поле по шуму Перлина.
package fleet

import (
	"errors"
	"fmt"
	"sort"

	"github.com/annel0/battleship3d/internal/board"
	"github.com/annel0/battleship3d/internal/geometry"
	"github.com/annel0/battleship3d/internal/vec"
	"github.com/aquilax/go-perlin"
	"github.com/google/uuid"
)

// ErrNoRoom возвращается, когда корабль некуда поставить
var ErrNoRoom = errors.New("fleet: no room for ship")

const (
	alpha = 2.0  // Сглаживание шума
	beta  = 2.0  // Частота шума
	n     = 3    // Количество октав
	scale = 0.37 // Шаг по решётке; целые координаты дают нулевой шум
)

// Deployer детерминированно выбирает позиции кораблей для заданного сида
type Deployer struct {
	noise *perlin.Perlin
}

// NewDeployer создаёт расстановщик с генератором шума для seed
func NewDeployer(seed int64) *Deployer {
	return &Deployer{noise: perlin.NewPerlin(alpha, beta, n, seed)}
}

type candidate struct {
	origin vec.Vec3
	o      geometry.Orientation
	score  float64
}

// Deploy ставит корабли размеров sizes на поле b от имени owner, начиная с самых больших.
// Для каждого корабля перебирает все позиции внутри кубоида в порядке убывания шума
// и размещает его через Board.Place. Уже поставленные корабли при ошибке остаются на поле.
func (d *Deployer) Deploy(b *board.Board, owner uuid.UUID, sizes []int) ([]board.PlacementID, error) {
	ordered := append([]int(nil), sizes...)
	for _, size := range ordered {
		if size < 1 {
			return nil, fmt.Errorf("%w: ship size %d", board.ErrInvalidArgument, size)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i] > ordered[j] })

	ids := make([]board.PlacementID, 0, len(ordered))
	for _, size := range ordered {
		id, err := d.place(b, owner, size)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (d *Deployer) place(b *board.Board, owner uuid.UUID, size int) (board.PlacementID, error) {
	for _, c := range d.candidates(b.Dimensions(), size) {
		id, err := b.Place(owner, c.origin, size, c.o)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, board.ErrOverlap) {
			return board.NoPlacement, err
		}
	}
	return board.NoPlacement, fmt.Errorf("%w: size %d on %v board", ErrNoRoom, size, b.Dimensions())
}

// candidates перечисляет позиции, при которых корабль целиком внутри кубоида,
// по убыванию значения шума
func (d *Deployer) candidates(dims vec.Vec3, size int) []candidate {
	var out []candidate
	for _, o := range []geometry.Orientation{geometry.Horizontal, geometry.Vertical} {
		maxX, maxZ := dims.X, dims.Z
		if o == geometry.Horizontal {
			maxX -= size - 1
		} else {
			maxZ -= size - 1
		}
		for x := 0; x < maxX; x++ {
			for y := 0; y < dims.Y; y++ {
				for z := 0; z < maxZ; z++ {
					score := d.noise.Noise3D(
						float64(x)*scale+float64(o),
						float64(y)*scale+float64(size)*scale,
						float64(z)*scale,
					)
					out = append(out, candidate{origin: vec.Vec3{X: x, Y: y, Z: z}, o: o, score: score})
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}
