package geometry

import (
	"fmt"

	"github.com/annel0/battleship3d/internal/vec"
)

// Orientation: направление линейного объекта.
// Vertical означает «вертикален на виде сверху», то есть тянется вдоль Z;
// Horizontal тянется вдоль X. Вдоль Y объекты не располагаются.
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

// OrientationOf переводит флаг is_vertical в Orientation
func OrientationOf(vertical bool) Orientation {
	if vertical {
		return Vertical
	}
	return Horizontal
}

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// RunAxis возвращает ось, вдоль которой тянется объект
func (o Orientation) RunAxis() Axis {
	if o == Vertical {
		return AxisZ
	}
	return AxisX
}

// step: направление приращения в пределах одной проекции
type step uint8

const (
	stepNone step = iota // объект виден как точка
	stepCol              // растёт первая ось проекции
	stepRow              // растёт вторая ось проекции
)

// stepFor: единственная таблица правил выбора оси:
//
//	              Vertical (Z)   Horizontal (X)
//	TOP   (X,Z)   строка (Z)     столбец (X)
//	FRONT (X,Y)   точка          столбец (X)
//	SIDE  (Z,Y)   столбец (Z)    точка
//
// FRONT и SIDE асимметричны намеренно: проекция растёт только если
// ось хода объекта входит в её пару осей.
func stepFor(p Projection, o Orientation) step {
	switch {
	case p == Top && o == Vertical:
		return stepRow
	case p == Top && o == Horizontal:
		return stepCol
	case p == Front && o == Vertical:
		return stepNone
	case p == Front && o == Horizontal:
		return stepCol
	case p == Side && o == Vertical:
		return stepCol
	case p == Side && o == Horizontal:
		return stepNone
	default:
		panic(fmt.Sprintf("geometry: invalid pair %v/%v", p, o))
	}
}

// Cells возвращает упорядоченные ячейки, занимаемые линейным объектом в проекции p.
// Первый элемент: начало (ind, dep), далее size-1 шагов по оси хода.
// Границы поля не проверяются: это ответственность Board.
func Cells(p Projection, o Orientation, ind, dep, size int) []vec.Vec2 {
	origin := vec.Vec2{X: ind, Y: dep}

	var delta vec.Vec2
	switch stepFor(p, o) {
	case stepNone:
		return []vec.Vec2{origin}
	case stepCol:
		delta = vec.Vec2{X: 1}
	case stepRow:
		delta = vec.Vec2{Y: 1}
	}

	if size < 1 {
		size = 1
	}
	cells := make([]vec.Vec2, 0, size)
	cell := origin
	cells = append(cells, cell)
	for i := 1; i < size; i++ {
		cell = cell.Add(delta)
		cells = append(cells, cell)
	}
	return cells
}
