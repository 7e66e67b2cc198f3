package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "z")
}

func TestArithmetic(t *testing.T) {
	a := New(1, 2, 3)
	b := New(4, -5, 6)

	assert.Equal(t, New(5, -3, 9), a.Add(b))
	assert.Equal(t, New(-3, 7, -3), a.Sub(b))
	assert.Equal(t, New(2, 4, 6), a.Mul(2))
	assert.Equal(t, 12.0, a.Dot(b))
	assert.Equal(t, New(27, 6, -13), a.Cross(b))
}

func TestLengthAndNormalize(t *testing.T) {
	v := New(3, 4, 0)
	assert.Equal(t, 5.0, v.Length())
	assert.Equal(t, 25.0, v.LengthSq())
	assertVec(t, New(0.6, 0.8, 0), v.Normalize())

	assert.Equal(t, Vec3{}, Vec3{}.Normalize(), "zero vector normalizes to zero")
}

func TestDistanceAndHorizontal(t *testing.T) {
	assert.Equal(t, 5.0, New(0, 0, 0).Distance(New(3, 0, 4)))
	assert.Equal(t, 5.0, New(3, 100, 4).Horizontal())
}

func TestLerp(t *testing.T) {
	a := New(0, 0, 0)
	b := New(10, 20, 30)
	assertVec(t, New(1, 2, 3), a.Lerp(b, 0.1))
	assertVec(t, b, a.Lerp(b, 1))
}

func TestRotateAxis(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec3
		axis  Vec3
		angle float64
		want  Vec3
	}{
		{"x about z by 90", UnitX, UnitZ, math.Pi / 2, UnitY},
		{"x about y by 90", UnitX, UnitY, math.Pi / 2, New(0, 0, -1)},
		{"y about z by -90", UnitY, UnitZ, -math.Pi / 2, UnitX},
		{"parallel axis is unchanged", UnitY, UnitY, 1.3, UnitY},
		{"zero axis is unchanged", UnitX, Vec3{}, 1, UnitX},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVec(t, tt.want, tt.v.RotateAxis(tt.axis, tt.angle))
		})
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, New(1, 2, 3).IsFinite())
	assert.False(t, New(math.NaN(), 0, 0).IsFinite())
	assert.False(t, New(0, math.Inf(1), 0).IsFinite())
}

func TestRotateToward(t *testing.T) {
	tests := []struct {
		name string
		from Vec3
		to   Vec3
		max  float64
		want Vec3
	}{
		{"within limit snaps", UnitX, New(1, 0, 0.1), 0.5, New(1, 0, 0.1).Normalize()},
		{"limited turn", UnitX, UnitZ, math.Pi / 4, New(1, 0, 1).Normalize()},
		{"zero from takes target", Vec3{}, New(0, 3, 0), 0.1, UnitY},
		{"zero target keeps heading", New(2, 0, 0), Vec3{}, 0.1, UnitX},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVec(t, tt.want, tt.from.RotateToward(tt.to, tt.max))
		})
	}

	t.Run("opposite directions still turn", func(t *testing.T) {
		got := UnitX.RotateToward(New(-1, 0, 0), 0.1)
		assert.InDelta(t, 0.1, got.AngleTo(UnitX), 1e-9)
	})
}
