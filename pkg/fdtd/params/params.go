// Package params derives the fully-computed discretization parameters a
// simulation runs with from a handful of physical inputs. Derivation is
// pure and deterministic: identical inputs always yield byte-equal Params.
package params

import (
	"errors"
	"fmt"
	"math"

	"github.com/gekko3d/fdtd-core/pkg/fdtd/physics"
)

// Oversampling is the fixed factor relating the minimum wavelength of
// interest to the spatial step dx. Not a free tuning knob.
const Oversampling = 16

// ErrInvalidParameter is the sentinel wrapped by every derivation failure.
var ErrInvalidParameter = errors.New("invalid parameter")

// Params is the complete set of derived discretization parameters for one
// simulation. It is held by value and owned by the Engine; nothing holds a
// back-reference to it.
type Params struct {
	Width, Height, Depth float64 // room extents, metres
	MaxFrequency         float64 // Hz, upper bound of interest
	AirDampening         float64 // per-step multiplicative loss factor, (0,1]

	MinWavelength float64 // c / MaxFrequency
	Dx            float64 // spatial step
	Dt            float64 // time step
	Lambda        float64 // Courant number, c*dt/dx == 1/sqrt(3)
	LambdaSquared float64

	W, H, D int // grid dimensions, cells
	N       int // total cell count, W*H*D

	// Compact-stencil coefficients (spec.md SS3). a, b default to 0, which
	// yields the standard second-order 7-point Laplacian (d2 == d3 == 0).
	A, B float64
	D1    float64
	D2    float64
	D3    float64
	D4    float64
}

// Derive computes Params from the room extents, a maximum frequency of
// interest, an optional per-step damping factor, and the compact-scheme
// tunables a and b. airDampening of 0 is treated as "unset" and defaults to
// 1.0 (no loss); pass 1.0 explicitly for the same effect.
//
// Derive fails with ErrInvalidParameter when any input is non-positive,
// when maxFrequency is below the frequency corresponding to one cell per
// half-wavelength in the smallest room dimension, or when the derived dx
// exceeds any room dimension.
func Derive(width, height, depth, maxFrequency, airDampening, a, b float64) (Params, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return Params{}, fmt.Errorf("%w: room extents must be positive, got (%g,%g,%g)", ErrInvalidParameter, width, height, depth)
	}
	if maxFrequency <= 0 {
		return Params{}, fmt.Errorf("%w: max_frequency must be positive, got %g", ErrInvalidParameter, maxFrequency)
	}
	if airDampening == 0 {
		airDampening = 1.0
	}
	if airDampening <= 0 || airDampening > 1 {
		return Params{}, fmt.Errorf("%w: air_dampening must be in (0,1], got %g", ErrInvalidParameter, airDampening)
	}

	smallestDim := math.Min(width, math.Min(height, depth))
	minFreqForOneCellPerHalfWavelength := physics.SpeedOfSound / (2 * smallestDim)
	if maxFrequency < minFreqForOneCellPerHalfWavelength {
		return Params{}, fmt.Errorf("%w: max_frequency %g Hz is below the %g Hz needed for one cell per half-wavelength in the smallest room dimension %g m",
			ErrInvalidParameter, maxFrequency, minFreqForOneCellPerHalfWavelength, smallestDim)
	}

	minWavelength := physics.SpeedOfSound / maxFrequency
	dx := minWavelength / Oversampling
	if dx > smallestDim {
		return Params{}, fmt.Errorf("%w: derived dx %g m exceeds the smallest room dimension %g m", ErrInvalidParameter, dx, smallestDim)
	}

	dt := dx / (physics.SpeedOfSound * math.Sqrt(3))
	lambda := physics.SpeedOfSound * dt / dx
	lambdaSq := lambda * lambda

	w := int(math.Floor(width/dx)) + 1
	h := int(math.Floor(height/dx)) + 1
	d := int(math.Floor(depth/dx)) + 1

	p := Params{
		Width: width, Height: height, Depth: depth,
		MaxFrequency: maxFrequency,
		AirDampening: airDampening,
		MinWavelength: minWavelength,
		Dx:            dx,
		Dt:            dt,
		Lambda:        lambda,
		LambdaSquared: lambdaSq,
		W: w, H: h, D: d,
		N: w * h * d,
		A: a, B: b,
	}
	p.D1 = lambdaSq * (1 - 4*a + 4*b)
	p.D2 = lambdaSq * (a - 2*b)
	p.D3 = lambdaSq * b
	p.D4 = 2 * (1 - 3*lambdaSq + 6*lambdaSq*a - 4*b*lambdaSq)
	return p, nil
}

// Scale converts a length in metres to a cell count, for geometry authoring
// in physical units: scale(meters) = floor(meters/dx).
func (p Params) Scale(meters float64) int {
	return int(math.Floor(meters / p.Dx))
}

// Index linearizes a (w,h,d) cell coordinate into the row-major order every
// host array and every compute kernel agrees on: i = w + h*W + d*W*H.
func (p Params) Index(w, h, d int) int {
	return w + h*p.W + d*p.W*p.H
}

// InBounds reports whether (w,h,d) is within [0,W)x[0,H)x[0,D).
func (p Params) InBounds(w, h, d int) bool {
	return w >= 0 && w < p.W && h >= 0 && h < p.H && d >= 0 && d < p.D
}
