package geometry

import (
	"errors"
	"fmt"

	"github.com/annel0/battleship3d/internal/vec"
)

// ErrUnknownTag возвращается, если тег проекции не распознан
var ErrUnknownTag = errors.New("unknown projection tag")

// Axis: пространственная ось кубоида
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// Projection определяет одну из трёх ортогональных 2D проекций поля.
//
// Top:   вид сверху, оси (X, Z);
// Front: вид спереди, оси (X, Y);
// Side:  вид сбоку, оси (Z, Y).
type Projection uint8

const (
	Top Projection = iota
	Front
	Side

	ProjectionCount // всегда последний: количество проекций
)

// Projections перечисляет все проекции в каноническом порядке
var Projections = [ProjectionCount]Projection{Top, Front, Side}

func (p Projection) String() string {
	switch p {
	case Top:
		return "TOP"
	case Front:
		return "FRONT"
	case Side:
		return "SIDE"
	default:
		return fmt.Sprintf("Projection(%d)", uint8(p))
	}
}

// Valid проверяет, что значение: одна из трёх проекций
func (p Projection) Valid() bool {
	return p < ProjectionCount
}

// Axes возвращает пару осей проекции: (столбцы, строки)
func (p Projection) Axes() (Axis, Axis) {
	switch p {
	case Top:
		return AxisX, AxisZ
	case Front:
		return AxisX, AxisY
	case Side:
		return AxisZ, AxisY
	default:
		panic(fmt.Sprintf("geometry: invalid projection %d", uint8(p)))
	}
}

// Tag возвращает тег проекции в формате клика: "XZ", "XY" или "ZY"
func (p Projection) Tag() string {
	a, b := p.Axes()
	return a.String() + b.String()
}

// ParseTag разбирает тег клика ("XZ", "XY", "ZY") в проекцию
func ParseTag(tag string) (Projection, error) {
	switch tag {
	case "XZ":
		return Top, nil
	case "XY":
		return Front, nil
	case "ZY":
		return Side, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
}

// Project возвращает координаты точки в проекции: (независимая, зависимая)
func Project(p Projection, point vec.Vec3) (int, int) {
	a, b := p.Axes()
	return component(point, a), component(point, b)
}

// Extent возвращает размер сетки проекции: X = число столбцов, Y = число строк
func Extent(p Projection, dims vec.Vec3) vec.Vec2 {
	cols, rows := Project(p, dims)
	return vec.Vec2{X: cols, Y: rows}
}

func component(v vec.Vec3, a Axis) int {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}
