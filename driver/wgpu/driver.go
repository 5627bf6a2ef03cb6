// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wgpu

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	wgputypes "github.com/gogpu/wgpu/types"
	"github.com/kestrelgpu/gfx/driver"
)

// defaultWaitTimeout bounds the synchronous wait every QueueSubmit
// performs after hal.Queue.Submit, mirroring github.com/gogpu/wgpu's own
// Queue.Submit (queue.go), which always blocks on Device.Wait before
// returning.
const defaultWaitTimeout = 30 * time.Second

var variantMu sync.Mutex
var variant = gputypes.BackendEmpty

// UseBackend pins the hal.Backend variant CreateInstance resolves
// against (e.g. gputypes.BackendVulkan once a real hal backend package
// is linked in via its own init()-registration convention, mirroring
// hal/software's and hal/noop's "//go:build software"/"noop" build-tag
// registration). Call before driver.LoadBackend(driver.BackendWebGPU);
// the zero value, gputypes.BackendEmpty, resolves to whichever no-op/
// software backend is linked in, which is sufficient for every
// property/unit test this module ships.
func UseBackend(v gputypes.Backend) {
	variantMu.Lock()
	defer variantMu.Unlock()
	variant = v
}

func currentVariant() gputypes.Backend {
	variantMu.Lock()
	defer variantMu.Unlock()
	return variant
}

func init() {
	driver.RegisterBackend(driver.BackendWebGPU, func() driver.Backend { return &wgpuBackend{} })
}

// wgpuBackend implements driver.Backend against github.com/gogpu/wgpu's
// hal layer, grounded on the teacher's single stateless Driver value
// (there is no per-backend mutable state beyond the hal.Backend/
// hal.Instance handles the caller already owns) generalized to the hal
// interface set instead of Vulkan's proc-table/driver.go.
type wgpuBackend struct{}

type nativeInstance struct {
	backend hal.Backend
	inst    hal.Instance
}

func (b *wgpuBackend) CreateInstance(desc *driver.InstanceDescriptor) (driver.Native, error) {
	hb, ok := hal.GetBackend(currentVariant())
	if !ok {
		var err error
		hb, err = hal.SelectBestBackend()
		if err != nil {
			return nil, errf(driver.BackendNotLoaded, "webgpu: no hal.Backend registered (link a hal/* implementation package): %v", err)
		}
	}
	inst, err := hb.CreateInstance(&hal.InstanceDescriptor{Backends: gputypes.BackendsPrimary})
	if err != nil {
		return nil, errf(driver.Unknown, "webgpu: creating instance: %v", err)
	}
	return &nativeInstance{backend: hb, inst: inst}, nil
}

func (b *wgpuBackend) DestroyInstance(n driver.Native) {
	n.(*nativeInstance).inst.Destroy()
}

func (b *wgpuBackend) SetDebugCallback(n driver.Native, cb driver.DebugCallback) {
	// The hal layer has no debug-message channel of its own (validation is
	// delegated to whichever concrete backend is linked in); callers that
	// need diagnostics rely on Go errors returned from individual calls.
	_ = n
	_ = cb
}

type nativeAdapter struct {
	instN *nativeInstance
	inst  hal.ExposedAdapter
}

func adapterTypeFromGPU(t gputypes.DeviceType) driver.AdapterType {
	switch t {
	case gputypes.DeviceTypeIntegratedGPU:
		return driver.AdapterIntegratedGPU
	case gputypes.DeviceTypeDiscreteGPU:
		return driver.AdapterDiscreteGPU
	case gputypes.DeviceTypeVirtualGPU:
		return driver.AdapterVirtualGPU
	case gputypes.DeviceTypeCPU:
		return driver.AdapterCPU
	default:
		return driver.AdapterUnknown
	}
}

func toAdapterInfo(info gputypes.AdapterInfo) driver.AdapterInfo {
	return driver.AdapterInfo{
		Name:       info.Name,
		Vendor:     info.Vendor,
		Type:       adapterTypeFromGPU(info.DeviceType),
		BackendID:  driver.BackendWebGPU,
		DriverInfo: info.DriverInfo,
	}
}

func (b *wgpuBackend) RequestAdapter(n driver.Native, opts *driver.AdapterOptions) (driver.Native, driver.AdapterInfo, error) {
	ni := n.(*nativeInstance)
	var surfaceHint hal.Surface
	if opts.CompatibleSurface != nil {
		surfaceHint = opts.CompatibleSurface.Native().(*nativeSurface).surf
	}
	exposed := ni.inst.EnumerateAdapters(surfaceHint)
	if len(exposed) == 0 {
		return nil, driver.AdapterInfo{}, errf(driver.NotFound, "webgpu: no adapters exposed by hal.Instance")
	}
	chosen := exposed[0]
	if opts.PreferLowPower {
		for _, a := range exposed {
			if a.Info.DeviceType == gputypes.DeviceTypeIntegratedGPU || a.Info.DeviceType == gputypes.DeviceTypeCPU {
				chosen = a
				break
			}
		}
	} else if opts.PreferHighPerf {
		for _, a := range exposed {
			if a.Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
				chosen = a
				break
			}
		}
	}
	return &nativeAdapter{instN: ni, inst: chosen}, toAdapterInfo(chosen.Info), nil
}

func (b *wgpuBackend) EnumerateAdapters(n driver.Native) []driver.Native {
	ni := n.(*nativeInstance)
	exposed := ni.inst.EnumerateAdapters(nil)
	out := make([]driver.Native, len(exposed))
	for i, a := range exposed {
		out[i] = &nativeAdapter{instN: ni, inst: a}
	}
	return out
}

func (b *wgpuBackend) AdapterInfo(n driver.Native) driver.AdapterInfo {
	return toAdapterInfo(n.(*nativeAdapter).inst.Info)
}

func toLimits(l gputypes.Limits) driver.Limits {
	return driver.Limits{
		MaxTextureDimension1D:           l.MaxTextureDimension1D,
		MaxTextureDimension2D:           l.MaxTextureDimension2D,
		MaxTextureDimension3D:           l.MaxTextureDimension3D,
		MaxTextureArrayLayers:           l.MaxTextureArrayLayers,
		MaxBindGroups:                   l.MaxBindGroups,
		MaxBindingsPerBindGroup:         l.MaxBindingsPerBindGroup,
		MaxVertexBuffers:                l.MaxVertexBuffers,
		MaxVertexAttributes:             l.MaxVertexAttributes,
		MaxColorAttachments:             l.MaxColorAttachments,
		MinUniformBufferOffsetAlignment: int64(l.MinUniformBufferOffsetAlignment),
		MinStorageBufferOffsetAlignment: int64(l.MinStorageBufferOffsetAlignment),
		MaxBufferSize:                   int64(l.MaxBufferSize),
		MaxComputeWorkgroupSizeX:        l.MaxComputeWorkgroupSizeX,
		MaxComputeWorkgroupSizeY:        l.MaxComputeWorkgroupSizeY,
		MaxComputeWorkgroupSizeZ:        l.MaxComputeWorkgroupSizeZ,
	}
}

func (b *wgpuBackend) AdapterLimits(n driver.Native) driver.Limits {
	return toLimits(n.(*nativeAdapter).inst.Capabilities.Limits)
}

func (b *wgpuBackend) DestroyAdapter(n driver.Native) {
	n.(*nativeAdapter).inst.Adapter.Destroy()
}

// nativeDevice bundles the opened hal.Device/hal.Queue pair together
// with a per-device scratch fence used internally to implement
// QueueWaitIdle/DeviceWaitIdle, the same fence-plus-atomic-counter
// "future" github.com/gogpu/wgpu's own Queue (queue.go) keeps per
// instance.
type nativeDevice struct {
	adapter    *nativeAdapter
	dev        hal.Device
	queue      hal.Queue
	waitFence  hal.Fence
	fenceValue atomic.Uint64
}

// limitsToLocal converts gputypes.Limits, the type hal.Capabilities carries,
// into github.com/gogpu/wgpu/types.Limits, the type hal.Adapter.Open
// actually takes — the two packages describe the same WebGPU limit set
// under different import paths (hal/descriptor.go imports gputypes directly
// while hal/api.go's Adapter.Open still takes the module's own local types
// package), so a field-by-field copy bridges them.
func limitsToLocal(l gputypes.Limits) wgputypes.Limits {
	return wgputypes.Limits{
		MaxTextureDimension1D:                     l.MaxTextureDimension1D,
		MaxTextureDimension2D:                     l.MaxTextureDimension2D,
		MaxTextureDimension3D:                     l.MaxTextureDimension3D,
		MaxTextureArrayLayers:                     l.MaxTextureArrayLayers,
		MaxBindGroups:                             l.MaxBindGroups,
		MaxBindGroupsPlusVertexBuffers:            l.MaxBindGroupsPlusVertexBuffers,
		MaxBindingsPerBindGroup:                   l.MaxBindingsPerBindGroup,
		MaxDynamicUniformBuffersPerPipelineLayout: l.MaxDynamicUniformBuffersPerPipelineLayout,
		MaxDynamicStorageBuffersPerPipelineLayout: l.MaxDynamicStorageBuffersPerPipelineLayout,
		MaxSampledTexturesPerShaderStage:          l.MaxSampledTexturesPerShaderStage,
		MaxSamplersPerShaderStage:                 l.MaxSamplersPerShaderStage,
		MaxStorageBuffersPerShaderStage:           l.MaxStorageBuffersPerShaderStage,
		MaxStorageTexturesPerShaderStage:          l.MaxStorageTexturesPerShaderStage,
		MaxUniformBuffersPerShaderStage:           l.MaxUniformBuffersPerShaderStage,
		MaxUniformBufferBindingSize:               l.MaxUniformBufferBindingSize,
		MaxStorageBufferBindingSize:               l.MaxStorageBufferBindingSize,
		MinUniformBufferOffsetAlignment:           l.MinUniformBufferOffsetAlignment,
		MinStorageBufferOffsetAlignment:           l.MinStorageBufferOffsetAlignment,
		MaxVertexBuffers:                          l.MaxVertexBuffers,
		MaxBufferSize:                             l.MaxBufferSize,
		MaxVertexAttributes:                       l.MaxVertexAttributes,
		MaxVertexBufferArrayStride:                l.MaxVertexBufferArrayStride,
		MaxInterStageShaderVariables:              l.MaxInterStageShaderVariables,
		MaxColorAttachments:                       l.MaxColorAttachments,
		MaxColorAttachmentBytesPerSample:          l.MaxColorAttachmentBytesPerSample,
		MaxComputeWorkgroupStorageSize:            l.MaxComputeWorkgroupStorageSize,
		MaxComputeInvocationsPerWorkgroup:         l.MaxComputeInvocationsPerWorkgroup,
		MaxComputeWorkgroupSizeX:                 l.MaxComputeWorkgroupSizeX,
		MaxComputeWorkgroupSizeY:                 l.MaxComputeWorkgroupSizeY,
		MaxComputeWorkgroupSizeZ:                 l.MaxComputeWorkgroupSizeZ,
		MaxComputeWorkgroupsPerDimension:          l.MaxComputeWorkgroupsPerDimension,
		MaxPushConstantSize:                       l.MaxPushConstantSize,
		MaxNonSamplerBindings:                     l.MaxNonSamplerBindings,
	}
}

func (b *wgpuBackend) CreateDevice(n driver.Native, desc *driver.DeviceDescriptor) (driver.Native, error) {
	na := n.(*nativeAdapter)
	opened, err := na.inst.Adapter.Open(0, limitsToLocal(na.inst.Capabilities.Limits))
	if err != nil {
		return nil, errf(driver.Unknown, "webgpu: opening device: %v", err)
	}
	fence, err := opened.Device.CreateFence()
	if err != nil {
		return nil, errf(driver.Unknown, "webgpu: creating device wait fence: %v", err)
	}
	return &nativeDevice{adapter: na, dev: opened.Device, queue: opened.Queue, waitFence: fence}, nil
}

type nativeQueue struct {
	dev *nativeDevice
}

func (b *wgpuBackend) DeviceQueue(n driver.Native) driver.Native {
	return &nativeQueue{dev: n.(*nativeDevice)}
}

func (b *wgpuBackend) DeviceLimits(n driver.Native) driver.Limits {
	// hal.Device does not re-expose Limits; the adapter-negotiated set is
	// the effective one since CreateDevice always requests the adapter's
	// full capability set.
	return toLimits(n.(*nativeDevice).adapter.inst.Capabilities.Limits)
}

func (nd *nativeDevice) waitForValue(v uint64, timeout time.Duration) error {
	if v == 0 {
		return nil
	}
	ok, err := nd.dev.Wait(nd.waitFence, v, timeout)
	if err != nil {
		return errf(driver.DeviceLost, "webgpu: device wait failed: %v", err)
	}
	if !ok {
		return errf(driver.Timeout, "webgpu: device wait timed out")
	}
	return nil
}

func (b *wgpuBackend) DeviceWaitIdle(n driver.Native) error {
	nd := n.(*nativeDevice)
	return nd.waitForValue(nd.fenceValue.Load(), defaultWaitTimeout)
}

func (b *wgpuBackend) DestroyDevice(n driver.Native) {
	nd := n.(*nativeDevice)
	nd.dev.DestroyFence(nd.waitFence)
	nd.dev.Destroy()
}

func (b *wgpuBackend) QueueSubmit(n driver.Native, encoders []driver.Native, wait, signal []driver.Native, signalFence driver.Native) error {
	nq := n.(*nativeQueue)
	bufs := make([]hal.CommandBuffer, len(encoders))
	for i, e := range encoders {
		bufs[i] = e.(*nativeCommandEncoder).buf
	}
	// wait/signal semaphores are a documented no-op on this backend: WGPU
	// orders all queue operations by submission order already (see
	// Semaphore's doc comment in driver/sync.go), so only argument shape is
	// relevant here, not their native handles.
	for _, s := range wait {
		if s == nil {
			return errf(driver.InvalidArgument, "webgpu: nil wait semaphore")
		}
	}
	for _, s := range signal {
		if s == nil {
			return errf(driver.InvalidArgument, "webgpu: nil signal semaphore")
		}
	}

	v := nq.dev.fenceValue.Add(1)
	if err := nq.dev.queue.Submit(bufs, nq.dev.waitFence, v); err != nil {
		return errf(driver.Unknown, "webgpu: queue submit: %v", err)
	}
	if err := nq.dev.waitForValue(v, defaultWaitTimeout); err != nil {
		return err
	}
	for _, s := range signal {
		s.(*nativeSemaphore).value.Store(v)
	}
	if signalFence != nil {
		signalFence.(*nativeFence).signaled.Store(true)
	}
	return nil
}

func (b *wgpuBackend) QueueWriteBuffer(n driver.Native, bufN driver.Native, offset int64, data []byte) error {
	nq := n.(*nativeQueue)
	nq.dev.queue.WriteBuffer(bufN.(*nativeBuffer).buf, uint64(offset), data)
	return nil
}

func (b *wgpuBackend) QueueWaitIdle(n driver.Native) error {
	nq := n.(*nativeQueue)
	return nq.dev.waitForValue(nq.dev.fenceValue.Load(), defaultWaitTimeout)
}

func errf(r driver.Result, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), r)
}
