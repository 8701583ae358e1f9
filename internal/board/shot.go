package board

import (
	"fmt"

	"github.com/annel0/battleship3d/internal/geometry"
	"github.com/annel0/battleship3d/internal/vec"
)

// Shot: луч, восстановленный по клику на одной из проекций.
// На поле не сохраняется: используется только для проверки попаданий.
type Shot struct {
	Tag         geometry.Projection // проекция, на которой был клик
	Origin      vec.Vec3
	Orientation geometry.Orientation
	Size        int
	Footprint   geometry.Footprint
}

// Cast строит луч по клику (a, c) на проекции tag.
// Недостающая ось заполняется крайним значением грани, в которую стреляют:
//
//	XZ (сверху):  y = Y-1, ориентация от вызывающего, длина Z или X;
//	XY (спереди): z = 0, всегда горизонтальный, длина X;
//	ZY (сбоку):   x = X-1, всегда вертикальный, длина Z (a это z, c это y).
//
// Лучи вдоль Y не поддерживаются.
func Cast(tag string, a, c int, vertical bool, dims vec.Vec3) (Shot, error) {
	p, err := geometry.ParseTag(tag)
	if err != nil {
		return Shot{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	shot := Shot{Tag: p}
	switch p {
	case geometry.Top:
		shot.Origin = vec.Vec3{X: a, Y: dims.Y - 1, Z: c}
		shot.Orientation = geometry.OrientationOf(vertical)
		if vertical {
			shot.Size = dims.Z
		} else {
			shot.Size = dims.X
		}
	case geometry.Front:
		shot.Origin = vec.Vec3{X: a, Y: c, Z: 0}
		shot.Orientation = geometry.Horizontal
		shot.Size = dims.X
	case geometry.Side:
		shot.Origin = vec.Vec3{X: dims.X - 1, Y: c, Z: a}
		shot.Orientation = geometry.Vertical
		shot.Size = dims.Z
	}

	shot.Footprint = geometry.FootprintOf(shot.Origin, shot.Size, shot.Orientation)
	return shot, nil
}
