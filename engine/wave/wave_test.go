package wave

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeightAtOriginIsZero(t *testing.T) {
	w := Wave{Amplitude: 0.25, Wavenumber: 2 * math32.Pi, AngularFrequency: 0.25 * math32.Pi}
	assert.Equal(t, float32(0), w.Height(0, 0, 0))
}

func TestHeightIsDeterministic(t *testing.T) {
	s := Default()
	for _, p := range [][3]float32{{0.3, -0.7, 1.25}, {-1, -1, 0}, {0.999, 0.001, 42}} {
		a := s.Height(p[0], p[1], p[2])
		b := s.Height(p[0], p[1], p[2])
		assert.Equal(t, math.Float32bits(a), math.Float32bits(b))
	}
}

func TestHeightBoundedByAmplitude(t *testing.T) {
	w := Default()[0]
	for x := float32(-3); x <= 3; x += 0.173 {
		for z := float32(-3); z <= 3; z += 0.211 {
			for _, tm := range []float32{0, 0.5, 7.3} {
				assert.LessOrEqual(t, math32.Abs(w.Height(x, z, tm)), w.Amplitude)
			}
		}
	}
}

func TestSetHeightSumsWaves(t *testing.T) {
	s := Default()
	require.Len(t, s, 2)
	x, z, tm := float32(0.4), float32(-0.2), float32(1.5)
	assert.InDelta(t, s[0].Height(x, z, tm)+s[1].Height(x, z, tm), s.Height(x, z, tm), 1e-7)
	assert.LessOrEqual(t, math32.Abs(s.Height(x, z, tm)), s.MaxAmplitude())
}

func TestDominant(t *testing.T) {
	s := Default()
	d := s.Dominant()
	require.Len(t, d, 1)
	assert.Equal(t, s[0], d[0])
	assert.Empty(t, Set{}.Dominant())
}

func TestLegacySlope(t *testing.T) {
	w := Wave{Amplitude: 0.5, Wavenumber: 2, AngularFrequency: 1}
	// phase at origin, t=0 is zero so cos is one
	assert.Equal(t, float32(1), w.LegacySlope(0, 0, 0))
}

func TestSlopeMatchesFiniteDifference(t *testing.T) {
	s := Default()
	const h = 1e-3
	for _, p := range [][3]float32{{0.3, 0.2, 0.5}, {-0.6, 0.45, 2}, {0.1, -0.9, 0}} {
		x, z, tm := p[0], p[1], p[2]
		dx, dz := s.Slope(x, z, tm)
		fdx := (s.Height(x+h, z, tm) - s.Height(x-h, z, tm)) / (2 * h)
		fdz := (s.Height(x, z+h, tm) - s.Height(x, z-h, tm)) / (2 * h)
		assert.InDelta(t, fdx, dx, 1e-2)
		assert.InDelta(t, fdz, dz, 1e-2)
	}
}
