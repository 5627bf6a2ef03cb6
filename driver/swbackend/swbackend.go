// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package swbackend is an in-memory driver.Backend implementation with
// no dependency on a real GPU, grounded on
// github.com/gogpu/wgpu/hal/software's real-byte-backed Buffer/Texture
// and github.com/gogpu/wgpu/hal/noop's placeholder Resource pattern for
// everything a property test does not need to inspect. It exists purely
// as ambient test tooling (SPEC_FULL.md §8): P1-P5 and P7 run against
// it so the translation layer can be exercised in CI without a Vulkan
// loader or a WebGPU implementation installed.
//
// swbackend does not rasterize: render/compute pass recording and
// dispatch are accepted and validated but produce no pixels. P6 and the
// render-to-offscreen/multi-frame-in-flight scenarios are written
// against driver/vk and driver/wgpu directly for that reason.
package swbackend

import (
	"sync"

	"github.com/kestrelgpu/gfx/driver"
)

// ID is the BackendID swbackend registers itself under. It is chosen
// well above driver.BackendVulkan/BackendWebGPU so it never collides
// with a real backend's identity.
const ID driver.BackendID = 1 << 16

func init() {
	driver.RegisterBackend(ID, New)
}

// New constructs a fresh swBackend. Exported so a test can register a
// second instance under a different BackendID if it needs isolation
// from other tests' state — swBackend itself carries no package-level
// mutable state beyond what driver.RegisterBackend retains.
func New() driver.Backend { return &swBackend{} }

type swBackend struct{}

type swInstance struct {
	debugCb driver.DebugCallback
}

func (b *swBackend) CreateInstance(*driver.InstanceDescriptor) (driver.Native, error) {
	return &swInstance{}, nil
}

func (b *swBackend) DestroyInstance(driver.Native) {}

func (b *swBackend) SetDebugCallback(n driver.Native, cb driver.DebugCallback) {
	n.(*swInstance).debugCb = cb
}

type swAdapter struct {
	info driver.AdapterInfo
}

func (b *swBackend) RequestAdapter(driver.Native, *driver.AdapterOptions) (driver.Native, driver.AdapterInfo, error) {
	info := driver.AdapterInfo{
		Name:       "swbackend",
		Vendor:     "kestrelgpu",
		Type:       driver.AdapterCPU,
		BackendID:  ID,
		DriverInfo: "in-memory, no rasterization",
	}
	return &swAdapter{info: info}, info, nil
}

func (b *swBackend) EnumerateAdapters(n driver.Native) []driver.Native {
	native, _, _ := b.RequestAdapter(n, nil)
	return []driver.Native{native}
}

func (b *swBackend) AdapterInfo(n driver.Native) driver.AdapterInfo { return n.(*swAdapter).info }

// swLimits is generous enough that no property test trips a limit the
// way it might against a real, more constrained adapter.
var swLimits = driver.Limits{
	MaxTextureDimension1D:           16384,
	MaxTextureDimension2D:           16384,
	MaxTextureDimension3D:           2048,
	MaxTextureArrayLayers:           2048,
	MaxBindGroups:                   8,
	MaxBindingsPerBindGroup:         64,
	MaxVertexBuffers:                16,
	MaxVertexAttributes:             32,
	MaxColorAttachments:             8,
	MinUniformBufferOffsetAlignment: 256,
	MinStorageBufferOffsetAlignment: 256,
	MaxBufferSize:                   1 << 30,
	MaxComputeWorkgroupSizeX:        1024,
	MaxComputeWorkgroupSizeY:        1024,
	MaxComputeWorkgroupSizeZ:        64,
}

func (b *swBackend) AdapterLimits(driver.Native) driver.Limits { return swLimits }

type swDevice struct {
	queue *swQueue
}

func (b *swBackend) CreateDevice(driver.Native, *driver.DeviceDescriptor) (driver.Native, error) {
	d := &swDevice{}
	d.queue = &swQueue{dev: d}
	return d, nil
}

func (b *swBackend) DestroyAdapter(driver.Native) {}

func (b *swBackend) DeviceQueue(n driver.Native) driver.Native { return n.(*swDevice).queue }
func (b *swBackend) DeviceLimits(driver.Native) driver.Limits  { return swLimits }
func (b *swBackend) DeviceWaitIdle(driver.Native) error        { return nil }
func (b *swBackend) DestroyDevice(driver.Native)                {}

type swQueue struct {
	dev *swDevice
	mu  sync.Mutex
}

// QueueSubmit runs every recorded op of every encoder in order, then
// signals signalFence if one was supplied — there is no asynchrony to
// model in-memory, so the fence is already signaled by the time Submit
// returns.
func (b *swBackend) QueueSubmit(qn driver.Native, encoders []driver.Native, wait, signal []driver.Native, signalFence driver.Native) error {
	q := qn.(*swQueue)
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, en := range encoders {
		enc := en.(*swCommandEncoder)
		for _, op := range enc.ops {
			op()
		}
	}
	for _, sn := range signal {
		sn.(*swSemaphore).value.Add(1)
	}
	if signalFence != nil {
		signalFence.(*swFence).signaled.Store(true)
	}
	return nil
}

func (b *swBackend) QueueWriteBuffer(qn driver.Native, bufN driver.Native, offset int64, data []byte) error {
	buf := bufN.(*swBuffer)
	buf.mu.Lock()
	defer buf.mu.Unlock()
	if offset < 0 || offset+int64(len(data)) > int64(len(buf.data)) {
		return driverErrf(driver.InvalidArgument, "swbackend: write exceeds buffer bounds")
	}
	copy(buf.data[offset:], data)
	return nil
}

func (b *swBackend) QueueWaitIdle(driver.Native) error { return nil }

func driverErrf(r driver.Result, msg string) error { return &swError{result: r, message: msg} }

type swError struct {
	result  driver.Result
	message string
}

func (e *swError) Error() string { return e.message }
func (e *swError) Unwrap() error { return e.result }
