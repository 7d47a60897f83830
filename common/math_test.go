package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesRoundTripAliases(t *testing.T) {
	src := []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}}
	b := SliceToBytes(src)
	require.Len(t, b, 24)

	view := BytesToSlice[mgl32.Vec3](b)
	require.Len(t, view, 2)
	view[1][2] = 9
	assert.Equal(t, float32(9), src[1][2])

	assert.Nil(t, BytesToSlice[mgl32.Vec3](b[:5]))
	assert.Nil(t, SliceToBytes[float32](nil))
}

func TestPerspectiveDepthRanges(t *testing.T) {
	near, far := float32(1), float32(1000)
	wg := Perspective(mgl32.DegToRad(45), 1.5, near, far)
	gl := PerspectiveGL(mgl32.DegToRad(45), 1.5, near, far)

	depth := func(m mgl32.Mat4, z float32) float32 {
		p := m.Mul4x1(mgl32.Vec4{0, 0, -z, 1})
		return p[2] / p[3]
	}
	assert.InDelta(t, 0, depth(wg, near), 1e-5)
	assert.InDelta(t, 1, depth(wg, far), 1e-4)
	assert.InDelta(t, -1, depth(gl, near), 1e-5)
	assert.InDelta(t, 1, depth(gl, far), 1e-4)
	assert.InDelta(t, gl[0], wg[0], 1e-6)
	assert.InDelta(t, gl[5], wg[5], 1e-6)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(-4, 1, 3))
	assert.Equal(t, 3, Clamp(7, 1, 3))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}
