// Package source models the point excitations injected into the pressure
// field each step: single Gaussian-modulated pulses or continuous/gated
// sinusoids. Injection is additive and runs on the host, after the
// stencil step, so it superposes cleanly with the propagated field instead
// of clobbering reflected energy already sitting at the source cell.
package source

import (
	"math"

	"github.com/gekko3d/fdtd-core/pkg/fdtd/grid"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/params"
)

// DefaultSigma is the standard deviation, in seconds, of the Gaussian
// envelope used by single-pulse sources when Sigma is left at zero.
const DefaultSigma = 0.0015

// Source is a point excitation at a fixed grid cell.
//
// Pulses == 1 selects a Gaussian-modulated cosine pulse. Pulses == 0
// selects an unbounded sinusoid. Pulses > 1 selects a sinusoid gated to
// that many cycles.
type Source struct {
	Position    [3]int
	Frequency   float64 // Hz, > 0
	Pulses      int     // 0 = unbounded, 1 = Gaussian pulse, >1 = gated burst
	InvertPhase bool
	StartAt     float64 // seconds

	// Sigma is the Gaussian envelope standard deviation, in seconds, used
	// only when Pulses == 1. Zero means "use DefaultSigma".
	Sigma float64
}

func (s Source) sigma() float64 {
	if s.Sigma == 0 {
		return DefaultSigma
	}
	return s.Sigma
}

// Signal evaluates the source's contribution at time t, without position
// information. Continuous and gated sinusoids (Pulses != 1) return 0 outside
// their active window, the same window Active reports. Used directly by
// Inject and exposed for testing and for external inspection (e.g.
// plotting a source's waveform).
func (s Source) Signal(t float64) float64 {
	dt := t - s.StartAt
	if s.Pulses == 1 {
		sigma := s.sigma()
		variance := sigma * sigma
		envelope := math.Exp(-(dt*dt)/(2*variance)) / math.Sqrt(2*math.Pi*variance)
		return math.Cos(2*math.Pi*s.Frequency*dt) * envelope
	}

	active := t >= s.StartAt && (s.Pulses == 0 || t <= s.StartAt+float64(s.Pulses)/s.Frequency)
	if !active {
		return 0
	}
	sign := 1.0
	if s.InvertPhase {
		sign = -1.0
	}
	return math.Sin(2*math.Pi*s.Frequency*dt) * sign
}

// Active reports whether the source contributes a nonzero signal at time
// t. Gaussian-pulse sources (Pulses==1) are always considered active: the
// envelope merely decays towards (never exactly reaching) zero away from
// StartAt.
func (s Source) Active(t float64) bool {
	if s.Pulses == 1 {
		return true
	}
	return t >= s.StartAt && (s.Pulses == 0 || t <= s.StartAt+float64(s.Pulses)/s.Frequency)
}

// Inject additively applies every source's signal at time t to g.Pressure.
// Must run on the host after the stencil step for the step's time t, per
// the engine's fixed per-step ordering.
func Inject(g *grid.Grid, p params.Params, sources []Source, t float64) {
	for _, s := range sources {
		i := p.Index(s.Position[0], s.Position[1], s.Position[2])
		g.Pressure[i] += s.Signal(t)
	}
}

// IsSourcePosition reports whether any source in sources sits at (w,h,d).
func IsSourcePosition(sources []Source, w, h, d int) bool {
	for _, s := range sources {
		if s.Position[0] == w && s.Position[1] == h && s.Position[2] == d {
			return true
		}
	}
	return false
}
