// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package driver defines a backend-agnostic GPU programming model over
// two driver families: an explicit, synchronization-heavy family
// (Vulkan-class, package driver/vk) and an implicit, queue-order family
// (WebGPU-class, package driver/wgpu). Every public entity is reached
// through an opaque Handle-backed wrapper type (Instance, Device,
// Buffer, ...); behavior is dispatched through the single Backend trait
// a driver package registers with RegisterBackend.
//
// This mirrors the teacher package's own doc comment ("defines a set of
// interfaces encompassing common GPU functionality... designed to allow
// platform-specific APIs to be implemented in a mostly straightforward
// manner") generalized to a flat, single-trait shape so that one
// implementation can serve both driver families — the shape
// github.com/gogpu/gogpu's gpu.Backend interface and
// original_source/gfx/src/GfxBackend.h's GfxBackendAPI function table
// already take.
package driver

// BackendID identifies a registered driver implementation.
type BackendID int

// Backend identities known to this module. A third-party package may
// define further values as long as it registers a Backend for them
// before LoadBackend is called.
const (
	BackendVulkan BackendID = iota
	BackendWebGPU
)

func (id BackendID) String() string {
	switch id {
	case BackendVulkan:
		return "vulkan"
	case BackendWebGPU:
		return "webgpu"
	default:
		return "unknown backend"
	}
}

// Native is an opaque, backend-owned representation of a live resource.
// Public wrapper types (Buffer, Texture, CommandEncoder, ...) carry a
// Native value obtained from the Backend that created them and pass it
// back unchanged on every subsequent call — the same opaque-uintptr
// convention github.com/gogpu/gogpu's gpu.Backend uses, adapted to `any`
// since Go backends return their own concrete resource types rather than
// raw integers.
type Native any

// Backend is the single polymorphic operation table every driver
// implementation provides in full (spec.md §4.1), grounded directly on
// github.com/gogpu/gogpu's gpu.Backend interface (gpu/backend.go) and
// original_source/gfx/src/GfxBackend.h's GfxBackendAPI function table.
// No backend is permitted to silently no-op a method the public API
// promises to support; the implicit backend's documented no-ops (binary
// semaphores, pipeline barriers) issue no native command.
//
// Method groups mirror spec.md's component table: instance/adapter/
// device/queue lifecycle, one resource-creation method per entity type,
// command recording, synchronization, submission, and presentation.
type Backend interface {
	CreateInstance(desc *InstanceDescriptor) (Native, error)
	DestroyInstance(inst Native)
	SetDebugCallback(inst Native, cb DebugCallback)
	RequestAdapter(inst Native, opts *AdapterOptions) (Native, AdapterInfo, error)
	EnumerateAdapters(inst Native) []Native

	AdapterInfo(adapter Native) AdapterInfo
	AdapterLimits(adapter Native) Limits
	CreateDevice(adapter Native, desc *DeviceDescriptor) (Native, error)
	DestroyAdapter(adapter Native)

	DeviceQueue(device Native) Native
	DeviceLimits(device Native) Limits
	DeviceWaitIdle(device Native) error
	DestroyDevice(device Native)

	NewSurface(device Native, handle PlatformWindowHandle) (Native, error)
	DestroySurface(surface Native)
	SurfaceFormats(surface Native) []PixelFmt
	SurfacePresentModes(surface Native) []PresentMode

	NewSwapchain(device Native, surface Native, req SwapchainRequest) (Native, SwapchainInfo, error)
	DestroySwapchain(swapchain Native)
	SwapchainViews(swapchain Native) []Native
	AcquireNext(swapchain Native, timeoutNs uint64, signalSem Native) (int, Result)
	Present(swapchain Native, index int, waitSem Native) Result
	RecreateSwapchain(swapchain Native, req SwapchainRequest) (SwapchainInfo, error)

	NewBuffer(device Native, desc *BufferDescriptor) (Native, error)
	BufferBytes(buf Native) []byte
	BufferCap(buf Native) int64
	DestroyBuffer(buf Native)

	NewTexture(device Native, desc *TextureDescriptor) (Native, error)
	TextureNewView(tex Native, desc *TextureViewDescriptor) (Native, error)
	TextureLayout(tex Native) Layout
	DestroyTexture(tex Native)
	DestroyTextureView(view Native)

	NewSampler(device Native, desc *SamplingDescriptor) (Native, error)
	DestroySampler(splr Native)

	NewShader(device Native, desc *ShaderDescriptor) (Native, error)
	DestroyShader(shader Native)

	NewBindGroupLayout(device Native, entries []BindGroupLayoutEntry) (Native, error)
	DestroyBindGroupLayout(layout Native)
	NewBindGroup(device Native, desc *BindGroupDescriptor) (Native, error)
	DestroyBindGroup(group Native)

	NewRenderPass(device Native, desc *RenderPassDescriptor) (Native, error)
	DestroyRenderPass(pass Native)
	NewFramebuffer(pass Native, desc *FramebufferDescriptor) (Native, error)
	DestroyFramebuffer(fb Native)

	NewRenderPipeline(device Native, state *GraphState) (Native, error)
	DestroyRenderPipeline(pl Native)
	NewComputePipeline(device Native, state *CompState) (Native, error)
	DestroyComputePipeline(pl Native)

	NewQuerySet(device Native, desc *QuerySetDescriptor) (Native, error)
	ResolveQuerySet(set Native, first, count int) ([]uint64, error)
	DestroyQuerySet(set Native)

	NewFence(device Native, signaled bool) (Native, error)
	FenceWait(fence Native, timeoutNs uint64) Result
	FenceReset(fence Native) error
	FenceStatus(fence Native) Result
	DestroyFence(fence Native)

	NewSemaphore(device Native, typ SemaphoreType) (Native, error)
	SemaphoreSignal(sem Native, value uint64) error
	SemaphoreWait(sem Native, value uint64, timeoutNs uint64) Result
	SemaphoreValue(sem Native) uint64
	DestroySemaphore(sem Native)

	NewCommandEncoder(device Native) (Native, error)
	EncoderBegin(enc Native) error
	EncoderEnd(enc Native) error
	EncoderReset(enc Native) error
	DestroyCommandEncoder(enc Native)

	BeginRenderPass(enc Native, pass Native, fb Native, clear []ClearValue) (Native, error)
	EndRenderPass(pass Native)
	BeginComputePass(enc Native) (Native, error)
	EndComputePass(pass Native)

	SetPipeline(passOrEnc Native, pl Native)
	SetViewport(pass Native, vp []Viewport)
	SetScissor(pass Native, s []Scissor)
	SetVertexBuffer(pass Native, slot int, buf Native, off int64)
	SetIndexBuffer(pass Native, buf Native, format IndexFmt, off int64)
	SetBindGroup(passOrEnc Native, index int, group Native, dynOffsets []uint32)
	Draw(pass Native, vertCount, instCount, baseVert, baseInst int)
	DrawIndexed(pass Native, idxCount, instCount, baseIdx, vertOff, baseInst int)
	Dispatch(pass Native, x, y, z int)

	CopyBufferToBuffer(enc Native, p *BufferCopy)
	CopyBufferToTexture(enc Native, p *BufImgCopy)
	CopyTextureToBuffer(enc Native, p *BufImgCopy)
	CopyTextureToTexture(enc Native, p *ImageCopy)
	Barrier(enc Native, b []Barrier)
	Transition(enc Native, t []Transition)

	QueueSubmit(queue Native, encoders []Native, wait, signal []Native, signalFence Native) error
	QueueWriteBuffer(queue Native, buf Native, offset int64, data []byte) error
	QueueWaitIdle(queue Native) error
}

// RegisterBackend installs factory under id. Backend packages call this
// from an init() function — the same convention the teacher's
// driver.Register(&Driver{}) established, generalized from "one Driver
// per name" to "one Backend per BackendID".
func RegisterBackend(id BackendID, factory func() Backend) {
	reg.factoryMu.Lock()
	defer reg.factoryMu.Unlock()
	reg.factories[id] = factory
}

// LoadBackend activates the backend registered under id, creating it on
// first use and incrementing a reference count on subsequent calls
// (spec.md §4.1 state machine: Absent -> Loaded(1) -> Loaded(n+1) -> ...
// -> Absent). It is idempotent in the sense required by P1: a balanced
// sequence of LoadBackend/UnloadBackend calls returns the registry to
// its pre-call state.
func LoadBackend(id BackendID) error {
	reg.factoryMu.Lock()
	factory, ok := reg.factories[id]
	reg.factoryMu.Unlock()
	if !ok {
		return errf(BackendNotLoaded, "backend %v is not registered", id)
	}

	reg.backendMu.Lock()
	defer reg.backendMu.Unlock()
	if s, ok := reg.backends[id]; ok {
		s.refs++
		return nil
	}
	reg.backends[id] = &backendSlot{impl: factory(), refs: 1}
	return nil
}

// UnloadBackend decrements id's reference count, tearing it down once it
// reaches zero. Unloading a backend that was never loaded is a no-op.
func UnloadBackend(id BackendID) {
	reg.backendMu.Lock()
	defer reg.backendMu.Unlock()
	s, ok := reg.backends[id]
	if !ok {
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(reg.backends, id)
	}
}

// IsBackendLoaded reports whether id currently has a positive reference
// count.
func IsBackendLoaded(id BackendID) bool {
	reg.backendMu.RLock()
	defer reg.backendMu.RUnlock()
	_, ok := reg.backends[id]
	return ok
}

func getBackend(id BackendID) (Backend, bool) {
	reg.backendMu.RLock()
	defer reg.backendMu.RUnlock()
	s, ok := reg.backends[id]
	if !ok {
		return nil, false
	}
	return s.impl, true
}

// DebugCallback is the signature of the diagnostic-message sink passed to
// Instance.SetDebugCallback. driver/vk stores it but creates no debug
// messenger and never calls it; driver/wgpu ignores it. No backend
// recovers panics or routes errors through it.
type DebugCallback func(severity DebugSeverity, message string)

// DebugSeverity classifies a DebugCallback message.
type DebugSeverity int

const (
	DebugInfo DebugSeverity = iota
	DebugWarning
	DebugError
)

// Instance and device extension strings, spec.md §6.
const (
	InstanceExtensionSurface         = "INSTANCE_EXTENSION_SURFACE"
	InstanceExtensionDebug           = "INSTANCE_EXTENSION_DEBUG"
	DeviceExtensionSwapchain         = "DEVICE_EXTENSION_SWAPCHAIN"
	DeviceExtensionTimelineSemaphore = "DEVICE_EXTENSION_TIMELINE_SEMAPHORE"
)
