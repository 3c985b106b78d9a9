package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
)

// FieldSet owns one device-resident storage buffer per named field, plus a
// MapRead staging buffer reused for readback. Buffers are sized once at
// construction from the grid's cell count and never resized afterwards —
// unlike the teacher's ensureBuffer, a simulation's N is fixed for its
// entire run, so there is no growth case to handle.
type FieldSet struct {
	device *Device

	buffers map[string]*wgpu.Buffer
	staging map[string]*wgpu.Buffer
	byteLen uint64
}

// NewFieldSet allocates one read_write storage buffer per name, each sized
// for n float32 cells, and a same-sized MapRead staging buffer for
// readback.
func NewFieldSet(d *Device, n int, names ...string) (*FieldSet, error) {
	fs := &FieldSet{
		device:  d,
		buffers: make(map[string]*wgpu.Buffer, len(names)),
		staging: make(map[string]*wgpu.Buffer, len(names)),
		byteLen: uint64(n) * 4,
	}
	for _, name := range names {
		buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            name,
			Size:             fs.byteLen,
			Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return nil, fmt.Errorf("create buffer %s: %w", name, err)
		}
		stage, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name + "-staging",
			Size:  fs.byteLen,
			Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		})
		if err != nil {
			return nil, fmt.Errorf("create staging buffer %s: %w", name, err)
		}
		fs.buffers[name] = buf
		fs.staging[name] = stage
	}
	return fs, nil
}

// Buffer returns the named device storage buffer, for bind group wiring.
func (fs *FieldSet) Buffer(name string) *wgpu.Buffer {
	return fs.buffers[name]
}

// Upload converts host float64 cells to float32 and writes them to the
// named device buffer. WebGPU has no portable double-precision storage
// type, so every device-resident field is carried at float32; host arrays
// stay float64 throughout (params, grid, source).
func (fs *FieldSet) Upload(name string, values []float64) {
	bytes := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(bytes[i*4:], math.Float32bits(float32(v)))
	}
	fs.device.queue.WriteBuffer(fs.buffers[name], 0, bytes)
}

// UploadU8 writes a geometry-style byte mask, one u32 per cell (WGSL has no
// native u8 storage type), zero-extended.
func (fs *FieldSet) UploadU8(name string, values []uint8) {
	bytes := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(bytes[i*4:], uint32(v))
	}
	fs.device.queue.WriteBuffer(fs.buffers[name], 0, bytes)
}

// Download records a copy of the named device buffer into its staging
// buffer. The actual host-visible mapping and widening back to float64
// happens in Finish, once every queued Download for the step has been
// recorded.
func (fs *FieldSet) Download(encoder *wgpu.CommandEncoder, name string) {
	encoder.CopyBufferToBuffer(fs.buffers[name], 0, fs.staging[name], 0, fs.byteLen)
}

// Finish submits encoder and performs the synchronous MapAsync/Poll/
// GetMappedRange/Unmap readback for every field named in names, into the
// matching slice in outs (same order). Call after all Download calls for
// a step have been recorded against encoder.
func (fs *FieldSet) Finish(encoder *wgpu.CommandEncoder, names []string, outs [][]float64) error {
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish command encoder: %w", err)
	}
	fs.device.queue.Submit(cmd)

	for idx, name := range names {
		stage := fs.staging[name]
		mapped := false
		var mapErr error
		stage.MapAsync(wgpu.MapModeRead, 0, fs.byteLen, func(status wgpu.BufferMapAsyncStatus) {
			if status == wgpu.BufferMapAsyncStatusSuccess {
				mapped = true
			} else {
				mapErr = fmt.Errorf("map %s: status %d", name, status)
			}
		})
		for !mapped && mapErr == nil {
			fs.device.Poll()
		}
		if mapErr != nil {
			fs.device.logger.Errorf("readback failure: %v", mapErr)
			return mapErr
		}

		data := stage.GetMappedRange(0, uint(fs.byteLen))
		dst := outs[idx]
		for i := range dst {
			bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
			dst[i] = float64(math.Float32frombits(bits))
		}
		stage.Unmap()
	}
	return nil
}

// Release frees every storage and staging buffer.
func (fs *FieldSet) Release() {
	for _, b := range fs.buffers {
		b.Release()
	}
	for _, b := range fs.staging {
		b.Release()
	}
}
