// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// InstanceDescriptor configures a new Instance (spec.md §4.1, §6).
// Extensions names InstanceExtension* constants. driver/vk enables the
// matching Vulkan instance extensions, and instance creation fails if one
// is unavailable; driver/wgpu ignores the list. Instance.HasExtension
// reports only which names were listed here.
type InstanceDescriptor struct {
	AppName     string
	Extensions  []string
	DebugLabel  string
}

// Instance is the root handle of a loaded backend: the entry point for
// adapter enumeration, grounded on the teacher's driver.Driver.Open plus
// github.com/gogpu/wgpu's CreateInstance/core.Hub.
type Instance struct {
	h       Handle
	backend Backend
	native  Native
	ext     map[string]bool
}

// NewInstance loads the backend named by id (if not already loaded) and
// creates a new Instance from desc.
func NewInstance(id BackendID, desc *InstanceDescriptor) (*Instance, error) {
	if err := LoadBackend(id); err != nil {
		return nil, err
	}
	b, ok := getBackend(id)
	if !ok {
		return nil, errf(BackendNotLoaded, "backend %v not loaded", id)
	}
	native, err := b.CreateInstance(desc)
	if err != nil {
		UnloadBackend(id)
		return nil, err
	}
	ext := make(map[string]bool, len(desc.Extensions))
	for _, e := range desc.Extensions {
		ext[e] = true
	}
	return &Instance{
		h:       reg.wrap(KindInstance, id),
		backend: b,
		native:  native,
		ext:     ext,
	}, nil
}

// Handle returns i's opaque Handle.
func (i *Instance) Handle() Handle { return i.h }

// HasExtension reports whether ext was listed in the InstanceDescriptor
// at instance-creation time; it does not query the backend.
func (i *Instance) HasExtension(ext string) bool { return i.ext[ext] }

// SetDebugCallback hands cb to the backend instance; passing nil clears
// it. Neither driver/vk nor driver/wgpu ever invokes the callback.
func (i *Instance) SetDebugCallback(cb DebugCallback) {
	i.backend.SetDebugCallback(i.native, cb)
}

// RequestAdapter asks the backend for an adapter matching opts. On
// WebGPU-class backends this may involve negotiating with the host; on
// Vulkan-class backends it enumerates physical devices and scores them,
// per spec.md §4.1.
func (i *Instance) RequestAdapter(opts *AdapterOptions) (*Adapter, error) {
	if opts == nil {
		opts = &AdapterOptions{}
	}
	native, info, err := i.backend.RequestAdapter(i.native, opts)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		h:       reg.wrap(KindAdapter, mustBackendID(i.h)),
		inst:    i,
		backend: i.backend,
		native:  native,
		info:    info,
	}, nil
}

// EnumerateAdapters lists every adapter the backend can see, without
// the single-best-match scoring RequestAdapter applies.
func (i *Instance) EnumerateAdapters() []*Adapter {
	natives := i.backend.EnumerateAdapters(i.native)
	out := make([]*Adapter, len(natives))
	for n, native := range natives {
		out[n] = &Adapter{
			h:       reg.wrap(KindAdapter, mustBackendID(i.h)),
			inst:    i,
			backend: i.backend,
			native:  native,
			info:    i.backend.AdapterInfo(native),
		}
	}
	return out
}

// Destroy releases i and decrements its backend's reference count. It is
// safe to call Destroy more than once (P1: subsequent calls are no-ops).
func (i *Instance) Destroy() {
	if !reg.isLive(i.h) {
		return
	}
	id := mustBackendID(i.h)
	i.backend.DestroyInstance(i.native)
	reg.unwrap(i.h)
	UnloadBackend(id)
}

func mustBackendID(h Handle) BackendID {
	id, _ := reg.lookupBackendID(h)
	return id
}

// AdapterOptions narrows RequestAdapter's search, mirroring WebGPU's
// RequestAdapterOptions and the teacher's implicit physical-device
// scoring knobs.
type AdapterOptions struct {
	PreferLowPower     bool
	PreferHighPerf     bool
	CompatibleSurface  *Surface
}

// AdapterType classifies the underlying physical/virtual device.
type AdapterType int

const (
	AdapterUnknown AdapterType = iota
	AdapterIntegratedGPU
	AdapterDiscreteGPU
	AdapterVirtualGPU
	AdapterCPU
)

// AdapterInfo reports static, read-only information about an Adapter.
type AdapterInfo struct {
	Name       string
	Vendor     string
	Type       AdapterType
	BackendID  BackendID
	DriverInfo string
}

// Limits describes device-dependent numeric limits (spec.md §6), one
// field per resource-sizing constraint the translation layer consults
// (e.g. AlignUp/MinUniformAlignment callers read MinUniformBufferOffsetAlignment).
type Limits struct {
	MaxTextureDimension1D           uint32
	MaxTextureDimension2D           uint32
	MaxTextureDimension3D           uint32
	MaxTextureArrayLayers           uint32
	MaxBindGroups                   uint32
	MaxBindingsPerBindGroup         uint32
	MaxVertexBuffers                uint32
	MaxVertexAttributes             uint32
	MaxColorAttachments             uint32
	MinUniformBufferOffsetAlignment int64
	MinStorageBufferOffsetAlignment int64
	MaxBufferSize                   int64
	MaxComputeWorkgroupSizeX        uint32
	MaxComputeWorkgroupSizeY        uint32
	MaxComputeWorkgroupSizeZ        uint32
}

// Adapter represents a physical or virtual GPU from which a Device may
// be opened, grounded on the teacher's driver.Driver plus
// github.com/gogpu/wgpu's Adapter (instance.go).
type Adapter struct {
	h       Handle
	inst    *Instance
	backend Backend
	native  Native
	info    AdapterInfo
}

// Handle returns a's opaque Handle.
func (a *Adapter) Handle() Handle { return a.h }

// Info reports a's static information.
func (a *Adapter) Info() AdapterInfo { return a.info }

// Limits reports a's numeric limits.
func (a *Adapter) Limits() Limits { return a.backend.AdapterLimits(a.native) }

// DeviceDescriptor configures a new logical Device, naming the device
// extensions the application requires (spec.md §6's DEVICE_EXTENSION_*
// constants).
type DeviceDescriptor struct {
	Extensions []string
	Label      string
}

// RequestDevice opens a logical Device on a, the moral equivalent of the
// teacher's driver.Driver.Open but scoped to a single already-selected
// Adapter rather than opening the whole backend.
func (a *Adapter) RequestDevice(desc *DeviceDescriptor) (*Device, error) {
	if desc == nil {
		desc = &DeviceDescriptor{}
	}
	native, err := a.backend.CreateDevice(a.native, desc)
	if err != nil {
		return nil, err
	}
	id := mustBackendID(a.h)
	ext := make(map[string]bool, len(desc.Extensions))
	for _, e := range desc.Extensions {
		ext[e] = true
	}
	d := &Device{
		h:         reg.wrap(KindDevice, id),
		adapter:   a,
		backend:   a.backend,
		native:    native,
		ext:       ext,
		errScopes: &errorScopeManager{},
	}
	qn := a.backend.DeviceQueue(native)
	d.queue = &Queue{
		h:       reg.wrap(KindQueue, id),
		device:  d,
		backend: a.backend,
		native:  qn,
	}
	return d, nil
}

// Destroy releases a.
func (a *Adapter) Destroy() {
	if !reg.isLive(a.h) {
		return
	}
	a.backend.DestroyAdapter(a.native)
	reg.unwrap(a.h)
}

// Device is an opened logical device: the owner of every resource, pass,
// pipeline and encoder created beneath it (spec.md §5's single-threaded-
// per-Device submission model).
type Device struct {
	h         Handle
	adapter   *Adapter
	backend   Backend
	native    Native
	queue     *Queue
	ext       map[string]bool
	errScopes *errorScopeManager
}

// Handle returns d's opaque Handle.
func (d *Device) Handle() Handle { return d.h }

// HasExtension reports whether ext was listed in the DeviceDescriptor
// at device-creation time; it does not query the backend.
func (d *Device) HasExtension(ext string) bool { return d.ext[ext] }

// Queue returns d's single command-submission queue.
func (d *Device) Queue() *Queue { return d.queue }

// Limits reports d's effective numeric limits (may differ from the
// adapter's if the application requested a restricted subset).
func (d *Device) Limits() Limits { return d.backend.DeviceLimits(d.native) }

// WaitIdle blocks until every operation previously submitted to d's
// queue has completed. On the implicit backend this polls the
// queue-work-done future; on the explicit backend it is vkDeviceWaitIdle.
func (d *Device) WaitIdle() error {
	err := d.backend.DeviceWaitIdle(d.native)
	d.errScopes.report(err)
	return err
}

// Destroy releases d and its Queue. Destroying a Device while child
// resources are still live is a programming error the caller must avoid
// (I2); this package does not scan for leaked children before tearing
// down the native device, matching the teacher's own Driver.Close
// contract.
func (d *Device) Destroy() {
	if !reg.isLive(d.h) {
		return
	}
	reg.unwrap(d.queue.h)
	d.backend.DestroyDevice(d.native)
	reg.unwrap(d.h)
}

// Queue is a Device's single point of command submission (spec.md §5:
// "commands reach the GPU through exactly one queue per Device").
type Queue struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
}

// Handle returns q's opaque Handle.
func (q *Queue) Handle() Handle { return q.h }

// Submit enqueues the command buffers recorded by encs for execution,
// waiting on wait semaphores before starting and signaling signal
// semaphores (and, if non-nil, fence) on completion — spec.md §4.2.4's
// unified submission shape, satisfied natively on the explicit backend
// and emulated via a queue-work-done future on the implicit one.
func (q *Queue) Submit(encs []*CommandEncoder, wait, signal []*Semaphore, fence *Fence) error {
	nativeEncs := make([]Native, len(encs))
	for n, e := range encs {
		if e.state != encoderFinished {
			err := errf(InvalidArgument, "Queue.Submit: encoder %d is not finished", n)
			q.device.errScopes.report(err)
			return err
		}
		nativeEncs[n] = e.native
	}
	nativeWait := make([]Native, len(wait))
	for n, s := range wait {
		nativeWait[n] = s.native
	}
	nativeSignal := make([]Native, len(signal))
	for n, s := range signal {
		nativeSignal[n] = s.native
	}
	var nativeFence Native
	if fence != nil {
		nativeFence = fence.native
	}
	err := q.backend.QueueSubmit(q.native, nativeEncs, nativeWait, nativeSignal, nativeFence)
	q.device.errScopes.report(err)
	return err
}

// WriteBuffer uploads data into buf at offset without an explicit
// staging buffer or encoder, mirroring WebGPU's queue.writeBuffer; on
// the explicit backend this is satisfied via an internal staging ring.
func (q *Queue) WriteBuffer(buf *Buffer, offset int64, data []byte) error {
	err := q.backend.QueueWriteBuffer(q.native, buf.native, offset, data)
	q.device.errScopes.report(err)
	return err
}

// WaitIdle blocks until every operation submitted to q has completed.
func (q *Queue) WaitIdle() error {
	err := q.backend.QueueWaitIdle(q.native)
	q.device.errScopes.report(err)
	return err
}
