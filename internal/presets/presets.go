// Package presets builds named starting scenes: a fully-derived Params
// plus a painted geometry mask and a source list ready to hand to an
// engine. Geometry is painted with plain index writes over a flat byte
// slice, the same way original_source/src/scene.rs paints its ndarray
// geometry with direct [w,h,d] indexing.
package presets

import (
	"fmt"

	"github.com/gekko3d/fdtd-core/pkg/fdtd/grid"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/params"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/source"
)

// Scene is a fully-derived starting point for an Engine: parameters, a
// painted geometry mask (caller copies it into Engine.Geometry()), and the
// sources to register before the first Step.
type Scene struct {
	Params   params.Params
	Geometry []uint8
	Sources  []source.Source
}

// EmptyCube is a bare 1m cube with a single centered continuous source,
// useful as a smoke-test scene.
func EmptyCube(maxFrequency float64) (Scene, error) {
	p, err := params.Derive(1, 1, 1, maxFrequency, 1.0, 0, 0)
	if err != nil {
		return Scene{}, fmt.Errorf("EmptyCube: %w", err)
	}
	return Scene{
		Params:   p,
		Geometry: make([]uint8, p.N),
		Sources: []source.Source{
			{Position: [3]int{p.W / 2, p.H / 2, p.D / 2}, Frequency: 200, Pulses: 0},
		},
	}, nil
}

// OpenTube is a long narrow room driven from one end, for studying
// resonance and dispersion along its axis.
func OpenTube(length, maxFrequency float64) (Scene, error) {
	p, err := params.Derive(length, 0.2, 0.2, maxFrequency, 1.0, 0, 0)
	if err != nil {
		return Scene{}, fmt.Errorf("OpenTube: %w", err)
	}
	return Scene{
		Params:   p,
		Geometry: make([]uint8, p.N),
		Sources: []source.Source{
			{Position: [3]int{1, p.H / 2, p.D / 2}, Frequency: maxFrequency / 10, Pulses: 0},
		},
	}, nil
}

// LivingRoom is a direct port of original_source's living_room scene: a
// 7.1x2.5x4.1m room with a chimney alcove carved out of one corner and two
// 600Hz single-pulse sources flanking it.
func LivingRoom(maxFrequency float64) (Scene, error) {
	p, err := params.Derive(7.1, 2.5, 4.1, maxFrequency, 1.0, 0, 0)
	if err != nil {
		return Scene{}, fmt.Errorf("LivingRoom: %w", err)
	}

	geometry := make([]uint8, p.N)
	chimneyW := p.Scale(1.1)
	chimneyD := p.D - p.Scale(0.3)
	chimneyX := p.W - chimneyW - p.Scale(2.1)

	for d := 0; d < p.D; d++ {
		for h := 0; h < p.H; h++ {
			for w := 0; w < p.W; w++ {
				if w > chimneyX && w < chimneyX+chimneyW && d > chimneyD {
					geometry[p.Index(w, h, d)] |= grid.WallFlag
				}
			}
		}
	}

	sources := []source.Source{
		{
			Position:  [3]int{chimneyX + chimneyW + p.Scale(0.4), p.H / 2, chimneyD - p.Scale(0.1)},
			Frequency: 600,
			Pulses:    1,
		},
		{
			Position:  [3]int{chimneyX / 2, p.H / 2, p.D - p.Scale(0.1)},
			Frequency: 600,
			Pulses:    1,
		},
	}

	return Scene{Params: p, Geometry: geometry, Sources: sources}, nil
}

// ConcertHallRiser is a larger hall with a raised rear platform, modeled as
// a solid block of wall cells 0.6m high spanning the rear third of the
// floor, one source at the stage and one at the riser.
func ConcertHallRiser(maxFrequency float64) (Scene, error) {
	p, err := params.Derive(20, 8, 15, maxFrequency, 1.0, 0, 0)
	if err != nil {
		return Scene{}, fmt.Errorf("ConcertHallRiser: %w", err)
	}

	geometry := make([]uint8, p.N)
	riserStartD := p.D - p.D/3
	riserHeight := p.Scale(0.6)

	for d := riserStartD; d < p.D; d++ {
		for h := 0; h < riserHeight; h++ {
			for w := 0; w < p.W; w++ {
				geometry[p.Index(w, h, d)] |= grid.WallFlag
			}
		}
	}

	sources := []source.Source{
		{Position: [3]int{p.W / 2, p.H / 2, p.Scale(1.0)}, Frequency: 440, Pulses: 0},
		{Position: [3]int{p.W / 2, riserHeight + 1, riserStartD + (p.D-riserStartD)/2}, Frequency: 440, Pulses: 0, InvertPhase: true},
	}

	return Scene{Params: p, Geometry: geometry, Sources: sources}, nil
}
