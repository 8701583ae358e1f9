package geometry

import "github.com/annel0/battleship3d/internal/vec"

// Footprint хранит следы объекта во всех трёх проекциях
type Footprint struct {
	Top   []vec.Vec2
	Front []vec.Vec2
	Side  []vec.Vec2
}

// FootprintOf вычисляет следы линейного объекта с началом origin
func FootprintOf(origin vec.Vec3, size int, o Orientation) Footprint {
	var fp Footprint
	for _, p := range Projections {
		ind, dep := Project(p, origin)
		fp.set(p, Cells(p, o, ind, dep, size))
	}
	return fp
}

// In возвращает след в указанной проекции
func (fp Footprint) In(p Projection) []vec.Vec2 {
	switch p {
	case Top:
		return fp.Top
	case Front:
		return fp.Front
	case Side:
		return fp.Side
	default:
		return nil
	}
}

// Len возвращает количество ячеек следа в проекции
func (fp Footprint) Len(p Projection) int {
	return len(fp.In(p))
}

func (fp *Footprint) set(p Projection, cells []vec.Vec2) {
	switch p {
	case Top:
		fp.Top = cells
	case Front:
		fp.Front = cells
	case Side:
		fp.Side = cells
	}
}
