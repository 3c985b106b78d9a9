package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/fdtd-core/internal/shaders"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/params"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/physics"
)

const workgroupSize = 64

func workgroupCount(n int) uint32 {
	return uint32((n + workgroupSize - 1) / workgroupSize)
}

func compilePipeline(d *Device, label, source, entryPoint string) (*wgpu.ComputePipeline, error) {
	mod, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", label, err)
	}
	defer mod.Release()

	pipeline, err := d.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: label,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     mod,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline %s: %w", label, err)
	}
	return pipeline, nil
}

func uniformBuffer(d *Device, label string, data []byte) (*wgpu.Buffer, error) {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(data)),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform buffer %s: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }
func putF32(b []byte, off int, v float64) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(float32(v)))
}

// SplitPipelines wires the split velocity/pressure scheme's two kernels,
// each with its bind group created once at construction and reused for
// every step (spec's "kernel argument bindings are created once" rule).
type SplitPipelines struct {
	device          *Device
	velocity        *wgpu.ComputePipeline
	pressure        *wgpu.ComputePipeline
	velocityBG      *wgpu.BindGroup
	pressureBG      *wgpu.BindGroup
	n               int
}

// NewSplitPipelines compiles velocity_step and pressure_step and binds
// them against fs's pressure/velocity/geometry buffers and a dims uniform
// computed once from p.
func NewSplitPipelines(d *Device, fs *FieldSet, p params.Params) (*SplitPipelines, error) {
	velocityPipeline, err := compilePipeline(d, "velocity_step", shaders.VelocityStepWGSL, "velocity_step")
	if err != nil {
		return nil, err
	}
	pressurePipeline, err := compilePipeline(d, "pressure_step", shaders.PressureStepWGSL, "pressure_step")
	if err != nil {
		return nil, err
	}

	kappaParam := -physics.BulkModulus * p.Dt / p.Dx
	velocityDims := make([]byte, 16)
	putU32(velocityDims, 0, uint32(p.W))
	putU32(velocityDims, 4, uint32(p.H))
	putU32(velocityDims, 8, uint32(p.D))
	putF32(velocityDims, 12, kappaParam)
	velocityDimsBuf, err := uniformBuffer(d, "velocity_step dims", velocityDims)
	if err != nil {
		return nil, err
	}

	rhoParam := -(1 / physics.Density) * p.Dt / p.Dx
	pressureDims := make([]byte, 20)
	putU32(pressureDims, 0, uint32(p.W))
	putU32(pressureDims, 4, uint32(p.H))
	putU32(pressureDims, 8, uint32(p.D))
	putF32(pressureDims, 12, rhoParam)
	putF32(pressureDims, 16, p.AirDampening)
	pressureDimsBuf, err := uniformBuffer(d, "pressure_step dims", pressureDims)
	if err != nil {
		return nil, err
	}

	velocityBG, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: velocityPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: fs.Buffer("pressure"), Size: wgpu.WholeSize},
			{Binding: 1, Buffer: fs.Buffer("velocity_x"), Size: wgpu.WholeSize},
			{Binding: 2, Buffer: fs.Buffer("velocity_y"), Size: wgpu.WholeSize},
			{Binding: 3, Buffer: fs.Buffer("velocity_z"), Size: wgpu.WholeSize},
			{Binding: 4, Buffer: fs.Buffer("geometry"), Size: wgpu.WholeSize},
			{Binding: 5, Buffer: velocityDimsBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("velocity_step bind group: %w", err)
	}

	pressureBG, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pressurePipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: fs.Buffer("pressure"), Size: wgpu.WholeSize},
			{Binding: 1, Buffer: fs.Buffer("velocity_x"), Size: wgpu.WholeSize},
			{Binding: 2, Buffer: fs.Buffer("velocity_y"), Size: wgpu.WholeSize},
			{Binding: 3, Buffer: fs.Buffer("velocity_z"), Size: wgpu.WholeSize},
			{Binding: 4, Buffer: fs.Buffer("geometry"), Size: wgpu.WholeSize},
			{Binding: 5, Buffer: pressureDimsBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pressure_step bind group: %w", err)
	}

	return &SplitPipelines{
		device:     d,
		velocity:   velocityPipeline,
		pressure:   pressurePipeline,
		velocityBG: velocityBG,
		pressureBG: pressureBG,
		n:          p.N,
	}, nil
}

// Dispatch enqueues velocity_step then pressure_step, in that fixed order,
// on encoder.
func (sp *SplitPipelines) Dispatch(encoder *wgpu.CommandEncoder) {
	count := workgroupCount(sp.n)

	velPass := encoder.BeginComputePass(nil)
	velPass.SetPipeline(sp.velocity)
	velPass.SetBindGroup(0, sp.velocityBG, nil)
	velPass.DispatchWorkgroups(count, 1, 1)
	velPass.End()

	presPass := encoder.BeginComputePass(nil)
	presPass.SetPipeline(sp.pressure)
	presPass.SetBindGroup(0, sp.pressureBG, nil)
	presPass.DispatchWorkgroups(count, 1, 1)
	presPass.End()
}

// CompactPipelines wires the single-field compact scheme's one kernel.
type CompactPipelines struct {
	device *Device
	pipeline *wgpu.ComputePipeline
	bindGroup *wgpu.BindGroup
	n      int
}

// NewCompactPipelines compiles compact_step and binds it against fs's
// pressure/pressure_previous/pressure_next/geometry buffers.
func NewCompactPipelines(d *Device, fs *FieldSet, p params.Params) (*CompactPipelines, error) {
	pipeline, err := compilePipeline(d, "compact_step", shaders.CompactStepWGSL, "compact_step")
	if err != nil {
		return nil, err
	}

	dims := make([]byte, 32)
	putU32(dims, 0, uint32(p.W))
	putU32(dims, 4, uint32(p.H))
	putU32(dims, 8, uint32(p.D))
	putF32(dims, 12, p.D1)
	putF32(dims, 16, p.D2)
	putF32(dims, 20, p.D3)
	putF32(dims, 24, p.D4)
	dimsBuf, err := uniformBuffer(d, "compact_step dims", dims)
	if err != nil {
		return nil, err
	}

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: fs.Buffer("pressure"), Size: wgpu.WholeSize},
			{Binding: 1, Buffer: fs.Buffer("pressure_previous"), Size: wgpu.WholeSize},
			{Binding: 2, Buffer: fs.Buffer("pressure_next"), Size: wgpu.WholeSize},
			{Binding: 3, Buffer: fs.Buffer("geometry"), Size: wgpu.WholeSize},
			{Binding: 4, Buffer: dimsBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compact_step bind group: %w", err)
	}

	return &CompactPipelines{device: d, pipeline: pipeline, bindGroup: bg, n: p.N}, nil
}

// Dispatch enqueues compact_step on encoder.
func (cp *CompactPipelines) Dispatch(encoder *wgpu.CommandEncoder) {
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(cp.pipeline)
	pass.SetBindGroup(0, cp.bindGroup, nil)
	pass.DispatchWorkgroups(workgroupCount(cp.n), 1, 1)
	pass.End()
}

// AnalysisPipeline wires the optional, scheme-independent analysis kernel.
type AnalysisPipeline struct {
	device    *Device
	pipeline  *wgpu.ComputePipeline
	bindGroup *wgpu.BindGroup
	n         int
}

// NewAnalysisPipeline compiles analysis_step and binds it against fs's
// geometry/analysis buffers and the named pressure buffer holding the
// post-step field: "pressure" for the Split scheme (pressure_step writes
// pressure in place), "pressure_next" for the Compact scheme (compact_step
// never touches pressure itself, only pressure_next, until the host-side
// rotation after this kernel runs).
func NewAnalysisPipeline(d *Device, fs *FieldSet, p params.Params, pressureField string) (*AnalysisPipeline, error) {
	pipeline, err := compilePipeline(d, "analysis_step", shaders.AnalysisStepWGSL, "analysis_step")
	if err != nil {
		return nil, err
	}

	dims := make([]byte, 16)
	putU32(dims, 0, uint32(p.W))
	putU32(dims, 4, uint32(p.H))
	putU32(dims, 8, uint32(p.D))
	putF32(dims, 12, p.Dt)
	dimsBuf, err := uniformBuffer(d, "analysis_step dims", dims)
	if err != nil {
		return nil, err
	}

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: fs.Buffer(pressureField), Size: wgpu.WholeSize},
			{Binding: 1, Buffer: fs.Buffer("geometry"), Size: wgpu.WholeSize},
			{Binding: 2, Buffer: fs.Buffer("analysis"), Size: wgpu.WholeSize},
			{Binding: 3, Buffer: dimsBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("analysis_step bind group: %w", err)
	}

	return &AnalysisPipeline{device: d, pipeline: pipeline, bindGroup: bg, n: p.N}, nil
}

// Dispatch enqueues analysis_step on encoder. Must be recorded after the
// step's pressure update, per the fixed ordering.
func (ap *AnalysisPipeline) Dispatch(encoder *wgpu.CommandEncoder) {
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(ap.pipeline)
	pass.SetBindGroup(0, ap.bindGroup, nil)
	pass.DispatchWorkgroups(workgroupCount(ap.n), 1, 1)
	pass.End()
}
