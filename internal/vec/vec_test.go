package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2Within(t *testing.T) {
	extent := Vec2{X: 4, Y: 3}

	assert.True(t, Vec2{X: 0, Y: 0}.Within(extent))
	assert.True(t, Vec2{X: 3, Y: 2}.Within(extent))
	assert.False(t, Vec2{X: 4, Y: 0}.Within(extent), "столбец за пределами")
	assert.False(t, Vec2{X: 0, Y: 3}.Within(extent), "строка за пределами")
	assert.False(t, Vec2{X: -1, Y: 0}.Within(extent), "отрицательный столбец")
}

func TestVec3(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}

	assert.True(t, a.Equals(Vec3{X: 1, Y: 2, Z: 3}))
	assert.Equal(t, Vec3{X: 2, Y: 4, Z: 6}, a.Add(a))
	assert.True(t, a.Positive())
	assert.False(t, Vec3{X: 1, Y: 0, Z: 1}.Positive())
	assert.Equal(t, 6, a.Volume())
	assert.Equal(t, "(1,2,3)", a.String())
}
