// Command fdtd-viewer opens a window and runs the simulation live,
// rasterizing the mid-height pressure slice as a red/blue image normalized
// by peak |P|. Grounded on original_source/src/main.rs's non-headless
// branch (axis choice, normalization, and colour mapping) and on the
// teacher's voxelrt/rt/app/app.go window/surface/device setup and
// WriteTexture/GetCurrentTexture/Present render loop.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/fdtd-core/internal/applog"
	"github.com/gekko3d/fdtd-core/internal/config"
	"github.com/gekko3d/fdtd-core/internal/shaders"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/engine"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/params"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/source"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := applog.NewDefaultLogger("fdtd-viewer", false)

	p, err := params.Derive(cfg.RoomWidth, cfg.RoomHeight, cfg.RoomDepth, cfg.MaxFrequency, cfg.AirDampening, 0, 0)
	if err != nil {
		return fmt.Errorf("derive parameters: %w", err)
	}

	e, err := engine.New(context.Background(), p, engine.NewSplitScheme(), engine.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer e.Close()

	if err := e.AddSource(source.Source{
		Position:  [3]int{p.W / 2, p.H / 2, p.D / 2},
		Frequency: 200,
		Pulses:    0,
	}); err != nil {
		return fmt.Errorf("add source: %w", err)
	}

	v, err := newViewer(cfg.WindowSize, cfg.WindowSize, p)
	if err != nil {
		return fmt.Errorf("create viewer: %w", err)
	}
	defer v.Close()

	logger.Infof("Starting simulation!")
	for !v.window.ShouldClose() {
		glfw.PollEvents()
		for i := 0; i < cfg.IterationsPerStep; i++ {
			if err := e.Step(); err != nil {
				return fmt.Errorf("step: %w", err)
			}
		}
		v.renderSlice(e.Pressure(), p)
	}
	return nil
}

// viewer owns the GLFW window, the WebGPU surface, and the fullscreen blit
// pipeline that displays a CPU-built RGBA slice texture each frame.
type viewer struct {
	window  *glfw.Window
	device  *wgpu.Device
	queue   *wgpu.Queue
	surface *wgpu.Surface

	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup
	texture   *wgpu.Texture

	width, height uint32
	pixels        []byte
}

func newViewer(width, height int, p params.Params) (*viewer, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, "FDTD Viewer", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "fdtd-viewer device"})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	sliceW, sliceH := uint32(p.W), uint32(p.D)
	texture, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "pressure slice",
		Size:          wgpu.Extent3D{Width: sliceW, Height: sliceH, DepthOrArrayLayers: 1},
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create slice texture: %w", err)
	}
	textureView, err := texture.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("create slice texture view: %w", err)
	}
	sampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		MagFilter: wgpu.FilterModeNearest,
		MinFilter: wgpu.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}

	shaderMod, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "blit",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.BlitWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("compile blit shader: %w", err)
	}
	defer shaderMod.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "blit pipeline",
		Vertex: wgpu.VertexState{
			Module:     shaderMod,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderMod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: surfaceConfig.Format, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("create blit pipeline: %w", err)
	}

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Sampler: sampler},
			{Binding: 1, TextureView: textureView},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create blit bind group: %w", err)
	}

	return &viewer{
		window: win, device: device, queue: queue, surface: surface,
		pipeline: pipeline, bindGroup: bindGroup, texture: texture,
		width: sliceW, height: sliceH,
		pixels: make([]byte, sliceW*sliceH*4),
	}, nil
}

// renderSlice rasterizes the mid-height pressure slice, red for positive
// pressure and blue for negative, normalized by the slice's peak |P|, and
// blits it to the swapchain.
func (v *viewer) renderSlice(pressure []float64, p params.Params) {
	h := p.H / 2
	peak := 1e-12
	for d := 0; d < p.D; d++ {
		for w := 0; w < p.W; w++ {
			if m := math.Abs(pressure[p.Index(w, h, d)]); m > peak {
				peak = m
			}
		}
	}

	for d := 0; d < p.D; d++ {
		for w := 0; w < p.W; w++ {
			value := pressure[p.Index(w, h, d)] / peak
			r := byte(0)
			b := byte(0)
			if value > 0 {
				r = byte(math.Min(value, 1.0) * 255)
			} else {
				b = byte(math.Min(-value, 1.0) * 255)
			}
			i := (d*p.W + w) * 4
			v.pixels[i+0] = r
			v.pixels[i+1] = 0
			v.pixels[i+2] = b
			v.pixels[i+3] = 255
		}
	}

	v.queue.WriteTexture(
		v.texture.AsImageCopy(),
		v.pixels,
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: v.width * 4, RowsPerImage: v.height},
		&wgpu.Extent3D{Width: v.width, Height: v.height, DepthOrArrayLayers: 1},
	)

	nextTexture, err := v.surface.GetCurrentTexture()
	if err != nil {
		fmt.Fprintf(os.Stderr, "GetCurrentTexture failed: %v\n", err)
		return
	}
	defer nextTexture.Release()
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CreateView failed: %v\n", err)
		return
	}
	defer view.Release()

	encoder, err := v.device.CreateCommandEncoder(nil)
	if err != nil {
		return
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 1, G: 1, B: 1, A: 1},
			},
		},
	})
	pass.SetPipeline(v.pipeline)
	pass.SetBindGroup(0, v.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return
	}
	v.queue.Submit(cmd)
	v.surface.Present()
	v.device.Poll(false, nil)
}

// Close releases window and device resources.
func (v *viewer) Close() {
	v.texture.Release()
	v.device.Release()
	v.window.Destroy()
	glfw.Terminate()
}
