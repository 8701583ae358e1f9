package vec

import "fmt"

// Vec2 представляет ячейку двумерной проекции.
// X: столбец (первая ось проекции), Y: строка (вторая ось).
type Vec2 struct {
	X, Y int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Within проверяет, что ячейка лежит в прямоугольнике [0,extent.X) x [0,extent.Y)
func (v Vec2) Within(extent Vec2) bool {
	return v.X >= 0 && v.Y >= 0 && v.X < extent.X && v.Y < extent.Y
}

func (v Vec2) String() string {
	return fmt.Sprintf("[%d,%d]", v.X, v.Y)
}
