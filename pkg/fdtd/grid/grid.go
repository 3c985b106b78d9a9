// Package grid holds the host-side dense 3-D field arrays a simulation
// step reads and writes, plus the neighbour-count precomputation the
// stencil kernels and external visualizers rely on.
//
// Every array is a flat []T of length W*H*D addressed through
// params.Params.Index, matching the row-major linearization the compute
// kernels use (spec SS4.4.d): i = w + h*W + d*W*H.
package grid

import "github.com/gekko3d/fdtd-core/pkg/fdtd/params"

// WallFlag is the geometry bitmask bit marking a cell as solid. A cell
// with Geometry[i]&WallFlag != 0 is solid; all other bits are reserved.
const WallFlag uint8 = 1

// Grid owns the dense field arrays for one simulation. Geometry may be
// painted by external code using bitwise-OR of WallFlag any time before
// stepping begins (or between steps, followed by CalculateNeighbours);
// the engine never mutates Geometry itself.
type Grid struct {
	Params params.Params

	Pressure         []float64
	PressurePrevious []float64

	// Velocity fields. Allocated only for the split scheme; nil otherwise.
	VelocityX []float64
	VelocityY []float64
	VelocityZ []float64

	Geometry   []uint8
	Neighbours []uint8
	Analysis   []float64 // nil unless analysis is enabled at construction
}

// Options controls which optional arrays New allocates.
type Options struct {
	WithVelocity bool // split scheme needs Vx,Vy,Vz
	WithAnalysis bool
}

// New allocates all arrays at the shape p.W x p.H x p.D, zero-initialized.
func New(p params.Params, opts Options) *Grid {
	g := &Grid{
		Params:           p,
		Pressure:         make([]float64, p.N),
		PressurePrevious: make([]float64, p.N),
		Geometry:         make([]uint8, p.N),
		Neighbours:       make([]uint8, p.N),
	}
	if opts.WithVelocity {
		g.VelocityX = make([]float64, p.N)
		g.VelocityY = make([]float64, p.N)
		g.VelocityZ = make([]float64, p.N)
	}
	if opts.WithAnalysis {
		g.Analysis = make([]float64, p.N)
	}
	return g
}

// IsSolid reports whether the cell at (w,h,d) is marked solid.
func (g *Grid) IsSolid(w, h, d int) bool {
	return g.Geometry[g.Params.Index(w, h, d)]&WallFlag != 0
}

// faceOffsets are the 6 face-adjacent neighbour offsets used by
// CalculateNeighbours; they are the same 6 cells the compact kernel sums
// for its Sigma6 term.
var faceOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// CalculateNeighbours recomputes Neighbours from the current Geometry. For
// an air cell c, Neighbours(c) is the count of the 6 face-adjacent
// in-bounds air cells; solid cells get 0. Must be called exactly once
// after geometry is finalized and again after any geometry mutation,
// before the next step.
func (g *Grid) CalculateNeighbours() {
	p := g.Params
	for d := 0; d < p.D; d++ {
		for h := 0; h < p.H; h++ {
			for w := 0; w < p.W; w++ {
				i := p.Index(w, h, d)
				if g.Geometry[i]&WallFlag != 0 {
					g.Neighbours[i] = 0
					continue
				}
				var count uint8
				for _, off := range faceOffsets {
					nw, nh, nd := w+off[0], h+off[1], d+off[2]
					if !p.InBounds(nw, nh, nd) {
						continue
					}
					ni := p.Index(nw, nh, nd)
					if g.Geometry[ni]&WallFlag == 0 {
						count++
					}
				}
				g.Neighbours[i] = count
			}
		}
	}
}
