// Package wave models the sinusoidal displacement functions used to animate a grid surface.
// A Wave is radial in the XZ plane: its phase grows with the squared distance from the origin,
// so a single wave already produces concentric ripples.
package wave

import (
	"github.com/chewxy/math32"
)

// Wave is a sinusoidal displacement parameterized by amplitude, spatial wavenumber and
// angular frequency.
type Wave struct {
	// Amplitude is the peak displacement along Y.
	Amplitude float32 `toml:"amplitude"`

	// Wavenumber (k) scales the squared X and Z coordinates inside the phase.
	Wavenumber float32 `toml:"wavenumber"`

	// AngularFrequency (w) scales time inside the phase.
	AngularFrequency float32 `toml:"angular_frequency"`
}

// Phase returns the wave angle k*x² + k*z² + w*t at the given point and time.
//
// Parameters:
//   - x, z: the point in the grid plane
//   - t: time in seconds
//
// Returns:
//   - float32: the phase angle in radians
func (w Wave) Phase(x, z, t float32) float32 {
	return w.Wavenumber*x*x + w.Wavenumber*z*z + w.AngularFrequency*t
}

// Height returns A*sin(phase) at the given point and time.
//
// Parameters:
//   - x, z: the point in the grid plane
//   - t: time in seconds
//
// Returns:
//   - float32: the displacement along Y
func (w Wave) Height(x, z, t float32) float32 {
	return w.Amplitude * math32.Sin(w.Phase(x, z, t))
}

// LegacySlope returns k*A*cos(phase), the slope term of the legacy normal.
// It is not the derivative of Height; see Slope for the true partials.
//
// Parameters:
//   - x, z: the point in the grid plane
//   - t: time in seconds
//
// Returns:
//   - float32: k*A*cos(phase)
func (w Wave) LegacySlope(x, z, t float32) float32 {
	return w.Wavenumber * w.Amplitude * math32.Cos(w.Phase(x, z, t))
}

// Slope returns the analytic partial derivatives of Height with respect to x and z.
//
// Parameters:
//   - x, z: the point in the grid plane
//   - t: time in seconds
//
// Returns:
//   - dydx: ∂height/∂x = 2kx*A*cos(phase)
//   - dydz: ∂height/∂z = 2kz*A*cos(phase)
func (w Wave) Slope(x, z, t float32) (dydx, dydz float32) {
	c := w.Amplitude * math32.Cos(w.Phase(x, z, t))
	return 2 * w.Wavenumber * x * c, 2 * w.Wavenumber * z * c
}

// Set is an ordered collection of waves summed to displace a point.
// The first entry is the dominant wave.
type Set []Wave

// Default returns the stock two-wave set.
// Callers that want the single dominant wave should use Default().Dominant().
//
// Returns:
//   - Set: {0.25, 2π, 0.25π} followed by {0.25, π, 0.5π}
func Default() Set {
	return Set{
		{Amplitude: 0.25, Wavenumber: 2 * math32.Pi, AngularFrequency: 0.25 * math32.Pi},
		{Amplitude: 0.25, Wavenumber: 1 * math32.Pi, AngularFrequency: 0.5 * math32.Pi},
	}
}

// Dominant returns a set holding only the first wave, or an empty set if s is empty.
func (s Set) Dominant() Set {
	if len(s) == 0 {
		return Set{}
	}
	return Set{s[0]}
}

// Height sums the heights of every wave in the set.
func (s Set) Height(x, z, t float32) float32 {
	var y float32
	for _, w := range s {
		y += w.Height(x, z, t)
	}
	return y
}

// LegacySlope sums LegacySlope over every wave in the set.
func (s Set) LegacySlope(x, z, t float32) float32 {
	var d float32
	for _, w := range s {
		d += w.LegacySlope(x, z, t)
	}
	return d
}

// Slope sums the partial derivatives of every wave in the set.
func (s Set) Slope(x, z, t float32) (dydx, dydz float32) {
	for _, w := range s {
		dx, dz := w.Slope(x, z, t)
		dydx += dx
		dydz += dz
	}
	return dydx, dydz
}

// MaxAmplitude returns the sum of absolute amplitudes, an upper bound on |Height|.
func (s Set) MaxAmplitude() float32 {
	var a float32
	for _, w := range s {
		a += math32.Abs(w.Amplitude)
	}
	return a
}
