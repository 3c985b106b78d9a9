// Package engine drives one simulation's lifecycle: parameter derivation,
// device and grid allocation, the fixed per-step upload/dispatch/download/
// inject sequence, and state-machine enforcement of when geometry, sources,
// and stepping are each allowed.
package engine

import (
	"context"
	"fmt"

	"github.com/gekko3d/fdtd-core/internal/applog"
	"github.com/gekko3d/fdtd-core/internal/gpu"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/grid"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/params"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/source"
)

type lifecycleState int

const (
	stateUninitialized lifecycleState = iota
	stateConfigured
	stateReady
	stateRunning
	stateStopped
)

// Options controls optional engine behavior not implied by the scheme.
type Options struct {
	// WithAnalysis enables the analysis kernel, run after the pressure
	// update every step.
	WithAnalysis bool

	// Logger receives diagnostics only (device failures, readback errors);
	// the engine's behavior never depends on whether one is set. A nil
	// Logger is replaced with a no-op one.
	Logger applog.Logger
}

// Engine owns one simulation's grid, device resources, and run state. Not
// safe for concurrent use; callers must serialize access, per the
// concurrency model.
type Engine struct {
	state  lifecycleState
	params params.Params
	scheme Scheme
	opts   Options

	grid    *grid.Grid
	sources []source.Source

	neighboursReady bool
	geometryDirty   bool
	pressureNext    []float64 // compact scheme scratch, downloaded before rotation

	device   *gpu.Device
	fields   *gpu.FieldSet
	split    *gpu.SplitPipelines
	compact  *gpu.CompactPipelines
	analysis *gpu.AnalysisPipeline
	logger   applog.Logger

	time      float64
	iteration int64
}

// New derives nothing itself — p must already be the output of
// params.Derive — and takes the engine straight from Uninitialized through
// Configured to Ready: it allocates the host grid, opens the compute
// device, allocates device field buffers, and compiles and binds the
// scheme's kernels. Geometry and sources may be mutated once New returns.
func New(ctx context.Context, p params.Params, scheme Scheme, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.NewNopLogger()
	}

	withVelocity := scheme.Kind == Split
	g := grid.New(p, grid.Options{WithVelocity: withVelocity, WithAnalysis: opts.WithAnalysis})

	device, err := gpu.Open(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceInitFailed, err)
	}

	fieldNames := []string{"pressure", "geometry"}
	switch scheme.Kind {
	case Split:
		fieldNames = append(fieldNames, "velocity_x", "velocity_y", "velocity_z")
	case Compact:
		fieldNames = append(fieldNames, "pressure_previous", "pressure_next")
	}
	if opts.WithAnalysis {
		fieldNames = append(fieldNames, "analysis")
	}

	fields, err := gpu.NewFieldSet(device, p.N, fieldNames...)
	if err != nil {
		device.Close()
		return nil, fmt.Errorf("%w: %v", ErrDeviceInitFailed, err)
	}

	e := &Engine{
		state:  stateConfigured,
		params: p,
		scheme: scheme,
		opts:   opts,
		grid:   g,
		device: device,
		fields: fields,
		logger: logger,
	}

	switch scheme.Kind {
	case Split:
		e.split, err = gpu.NewSplitPipelines(device, fields, p)
	case Compact:
		e.compact, err = gpu.NewCompactPipelines(device, fields, p)
		e.pressureNext = make([]float64, p.N)
	}
	if err != nil {
		fields.Release()
		device.Close()
		return nil, fmt.Errorf("%w: %v", ErrDeviceInitFailed, err)
	}

	if opts.WithAnalysis {
		analysisPressureField := "pressure"
		if scheme.Kind == Compact {
			analysisPressureField = "pressure_next"
		}
		e.analysis, err = gpu.NewAnalysisPipeline(device, fields, p, analysisPressureField)
		if err != nil {
			fields.Release()
			device.Close()
			return nil, fmt.Errorf("%w: %v", ErrDeviceInitFailed, err)
		}
	}

	fields.UploadU8("geometry", g.Geometry)
	e.state = stateReady
	return e, nil
}

// Geometry returns the mutable geometry array for painting WallFlag bits
// before stepping begins, or between steps (followed by
// CalculateNeighbours before the next Step).
func (e *Engine) Geometry() []byte {
	e.geometryDirty = true
	return e.grid.Geometry
}

// AddSource registers a source, active from its StartAt onward. Only valid
// in the Configured or Ready states, matching the lifecycle rule that
// sources may be mutated only before stepping begins.
func (e *Engine) AddSource(s source.Source) error {
	if e.state != stateConfigured && e.state != stateReady {
		return fmt.Errorf("%w: AddSource called in state %v", ErrWrongState, e.state)
	}
	e.sources = append(e.sources, s)
	return nil
}

// CalculateNeighbours recomputes the neighbour-count field from the
// current geometry. Must be called at least once before the first Step if
// any geometry cell is solid, and again after any geometry mutation.
func (e *Engine) CalculateNeighbours() {
	e.grid.CalculateNeighbours()
	e.neighboursReady = true
}

// Step runs one simulation step: upload host-dirty arrays, dispatch the
// scheme's kernels in their fixed order, download result fields, inject
// sources on the host pressure array, then advance time and iteration.
func (e *Engine) Step() error {
	if e.state != stateReady && e.state != stateRunning {
		return fmt.Errorf("%w: Step called in state %v", ErrWrongState, e.state)
	}
	if !e.neighboursReady && e.hasSolidGeometry() {
		return ErrUninitializedNeighbours
	}
	e.state = stateRunning

	if e.geometryDirty {
		e.fields.UploadU8("geometry", e.grid.Geometry)
		e.geometryDirty = false
	}

	switch e.scheme.Kind {
	case Split:
		if err := e.stepSplit(); err != nil {
			return err
		}
	case Compact:
		if err := e.stepCompact(); err != nil {
			return err
		}
	}

	source.Inject(e.grid, e.params, e.sources, e.time)

	e.time += e.params.Dt
	e.iteration++
	return nil
}

func (e *Engine) stepSplit() error {
	e.fields.Upload("pressure", e.grid.Pressure)
	e.fields.Upload("velocity_x", e.grid.VelocityX)
	e.fields.Upload("velocity_y", e.grid.VelocityY)
	e.fields.Upload("velocity_z", e.grid.VelocityZ)

	encoder, err := e.device.Raw().CreateCommandEncoder(nil)
	if err != nil {
		e.logger.Errorf("create command encoder: %v", err)
		return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}

	e.split.Dispatch(encoder)
	if e.analysis != nil {
		e.analysis.Dispatch(encoder)
	}

	names := []string{"pressure", "velocity_x", "velocity_y", "velocity_z"}
	outs := [][]float64{e.grid.Pressure, e.grid.VelocityX, e.grid.VelocityY, e.grid.VelocityZ}
	if e.analysis != nil {
		names = append(names, "analysis")
		outs = append(outs, e.grid.Analysis)
	}
	for _, n := range names {
		e.fields.Download(encoder, n)
	}
	if err := e.fields.Finish(encoder, names, outs); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}
	return nil
}

func (e *Engine) stepCompact() error {
	e.fields.Upload("pressure", e.grid.Pressure)
	e.fields.Upload("pressure_previous", e.grid.PressurePrevious)

	encoder, err := e.device.Raw().CreateCommandEncoder(nil)
	if err != nil {
		e.logger.Errorf("create command encoder: %v", err)
		return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}

	e.compact.Dispatch(encoder)
	if e.analysis != nil {
		e.analysis.Dispatch(encoder)
	}

	names := []string{"pressure_next"}
	outs := [][]float64{e.pressureNext}
	if e.analysis != nil {
		names = append(names, "analysis")
		outs = append(outs, e.grid.Analysis)
	}
	for _, n := range names {
		e.fields.Download(encoder, n)
	}
	if err := e.fields.Finish(encoder, names, outs); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceFailure, err)
	}

	// Rotate: pressure_next becomes the new pressure, the pre-step
	// pressure becomes pressure_previous.
	copy(e.grid.PressurePrevious, e.grid.Pressure)
	copy(e.grid.Pressure, e.pressureNext)
	return nil
}

func (e *Engine) hasSolidGeometry() bool {
	for _, v := range e.grid.Geometry {
		if v != 0 {
			return true
		}
	}
	return false
}

// Pressure returns a read-only view of the pressure field, valid between
// steps.
func (e *Engine) Pressure() []float64 { return e.grid.Pressure }

// Analysis returns a read-only view of the analysis field, valid between
// steps. Nil if analysis was not enabled.
func (e *Engine) Analysis() []float64 { return e.grid.Analysis }

// Neighbours returns a read-only view of the neighbour-count field.
func (e *Engine) Neighbours() []byte { return e.grid.Neighbours }

// Time returns the current simulated time in seconds.
func (e *Engine) Time() float64 { return e.time }

// Iteration returns the number of completed steps.
func (e *Engine) Iteration() int64 { return e.iteration }

// IsSourcePosition reports whether any registered source sits at (w,h,d).
func (e *Engine) IsSourcePosition(w, h, d int) bool {
	return source.IsSourcePosition(e.sources, w, h, d)
}

// Params returns the engine's derived parameters.
func (e *Engine) Params() params.Params { return e.params }

// Close releases device resources. The engine must not be used afterward.
func (e *Engine) Close() {
	if e.state == stateStopped {
		return
	}
	e.fields.Release()
	e.device.Close()
	e.state = stateStopped
}
