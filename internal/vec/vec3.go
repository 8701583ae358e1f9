package vec

import "fmt"

// Vec3 представляет трехмерный вектор с целочисленными координатами
type Vec3 struct {
	X int
	Y int
	Z int
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Positive возвращает true, если все компоненты >= 1 (допустимые размеры поля)
func (v Vec3) Positive() bool {
	return v.X >= 1 && v.Y >= 1 && v.Z >= 1
}

// Volume возвращает количество ячеек в кубоиде с такими размерами
func (v Vec3) Volume() int {
	return v.X * v.Y * v.Z
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}
