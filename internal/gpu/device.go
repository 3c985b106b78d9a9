// Package gpu owns the compute device connection, device-resident field
// buffers, and stencil-kernel pipelines the engine drives each step.
//
// There is no surface and no swapchain here — the core engine never
// renders; that half of the teacher's createGpuState is dropped, the
// adapter/device/queue acquisition half is kept.
package gpu

import (
	"context"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/fdtd-core/internal/applog"
)

// Device is a headless WebGPU connection: instance, adapter, device, and
// command queue, with no attached surface.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	logger   applog.Logger
}

// Open acquires a compute-capable adapter and device. It prefers a
// high-performance (discrete) adapter, matching the teacher's viewer
// preference, though there is no surface to be compatible with here.
// logger is used for DeviceFailure diagnostics only; a nil logger is
// replaced with a no-op one, so device behavior never depends on whether
// logging is wired up.
func Open(ctx context.Context, logger applog.Logger) (*Device, error) {
	if logger == nil {
		logger = applog.NewNopLogger()
	}
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		logger.Errorf("request adapter: %v", err)
		return nil, fmt.Errorf("request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "fdtd compute device",
		RequiredFeatures: nil,
		RequiredLimits:   nil,
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		logger.Errorf("request device: %v", err)
		return nil, fmt.Errorf("request device: %w", err)
	}

	return &Device{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
		logger:   logger,
	}, nil
}

// Logger returns the device's diagnostics logger, for use by packages in
// this module that report DeviceFailure conditions. (FieldSet.Finish, in
// this package, reads the same logger directly for its MapAsync readback
// failures.)
func (d *Device) Logger() applog.Logger { return d.logger }

// Raw exposes the underlying *wgpu.Device for packages in this module that
// build pipelines and bind groups directly against it.
func (d *Device) Raw() *wgpu.Device { return d.device }

// Queue exposes the device's command queue.
func (d *Device) Queue() *wgpu.Queue { return d.queue }

// Poll drives the event loop forward; required after MapAsync before a
// mapping callback can fire.
func (d *Device) Poll() {
	d.device.Poll(false, nil)
}

// Close releases the device, adapter, and instance, in that order.
func (d *Device) Close() {
	if d.device != nil {
		d.device.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
}
