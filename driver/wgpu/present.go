// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wgpu

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"
	"github.com/kestrelgpu/gfx/driver"
)

// nativeSurface wraps a hal.Surface together with the instance it was
// created from, grounded on the teacher's nativeSurface (driver/vk/
// present.go) generalized from VkSurfaceKHR to the platform-agnostic
// hal.Instance.CreateSurface(displayHandle, windowHandle uintptr) call.
type nativeSurface struct {
	instN *nativeInstance
	surf  hal.Surface
}

func (b *wgpuBackend) NewSurface(n driver.Native, handle driver.PlatformWindowHandle) (driver.Native, error) {
	nd := n.(*nativeDevice)
	display, window, err := platformHandles(handle)
	if err != nil {
		return nil, err
	}
	surf, err := nd.adapter.instN.inst.CreateSurface(display, window)
	if err != nil {
		return nil, errf(driver.FeatureNotSupported, "webgpu: creating surface: %v", err)
	}
	return &nativeSurface{instN: nd.adapter.instN, surf: surf}, nil
}

func (b *wgpuBackend) DestroySurface(n driver.Native) {
	n.(*nativeSurface).surf.Destroy()
}

func (b *wgpuBackend) SurfaceFormats(n driver.Native) []driver.PixelFmt {
	ns := n.(*nativeSurface)
	caps := ns.instN.adapterCaps(ns.surf)
	if caps == nil {
		return nil
	}
	out := make([]driver.PixelFmt, 0, len(caps.Formats))
	for _, f := range caps.Formats {
		out = append(out, pixelFmtFromGPU(f))
	}
	return out
}

func (b *wgpuBackend) SurfacePresentModes(n driver.Native) []driver.PresentMode {
	ns := n.(*nativeSurface)
	caps := ns.instN.adapterCaps(ns.surf)
	if caps == nil {
		return nil
	}
	out := make([]driver.PresentMode, 0, len(caps.PresentModes))
	for _, m := range caps.PresentModes {
		out = append(out, presentModeFromGPU(m))
	}
	return out
}

// nativeSwapchain emulates a fixed-size, index-addressable Vulkan-style
// swapchain on top of hal.Surface, which instead hands out one
// AcquiredSurfaceTexture at a time. A ring of FramesInFlight view slots is
// kept; AcquireNext reacquires from the surface and stores the fresh view
// into the next slot, cycling slot indices the same way the teacher's
// VkSwapchainKHR image indices cycle, so callers that built one
// Framebuffer per Views() slot keep working unmodified.
type nativeSwapchain struct {
	mu      sync.Mutex
	dev     *nativeDevice
	surf    *nativeSurface
	info    driver.SwapchainInfo
	views   []*nativeTextureView
	pending []hal.SurfaceTexture
	next    atomic.Uint32
}

func (b *wgpuBackend) NewSwapchain(devN, surfN driver.Native, req driver.SwapchainRequest) (driver.Native, driver.SwapchainInfo, error) {
	nd := devN.(*nativeDevice)
	ns := surfN.(*nativeSurface)
	return buildSwapchain(nd, ns, req)
}

func buildSwapchain(nd *nativeDevice, ns *nativeSurface, req driver.SwapchainRequest) (driver.Native, driver.SwapchainInfo, error) {
	cfg := &hal.SurfaceConfiguration{
		Width:       req.Width,
		Height:      req.Height,
		Format:      pixelFmtToGPU(req.Format),
		Usage:       textureUsageToGPU(req.Usage),
		PresentMode: presentModeToGPU(req.PresentMode),
		AlphaMode:   hal.CompositeAlphaModeOpaque,
	}
	if err := ns.surf.Configure(nd.dev, cfg); err != nil {
		return nil, driver.SwapchainInfo{}, errf(driver.Unknown, "webgpu: configuring surface: %v", err)
	}
	info := driver.SwapchainInfo{
		Format:         req.Format,
		Width:          req.Width,
		Height:         req.Height,
		PresentMode:    req.PresentMode,
		FramesInFlight: req.FramesInFlight,
	}
	nsc := &nativeSwapchain{
		dev:     nd,
		surf:    ns,
		info:    info,
		views:   make([]*nativeTextureView, req.FramesInFlight),
		pending: make([]hal.SurfaceTexture, req.FramesInFlight),
	}
	return nsc, info, nil
}

func (b *wgpuBackend) DestroySwapchain(n driver.Native) {
	nsc := n.(*nativeSwapchain)
	nsc.mu.Lock()
	defer nsc.mu.Unlock()
	for i, v := range nsc.views {
		if v != nil {
			nsc.dev.dev.DestroyTextureView(v.view)
		}
		if nsc.pending[i] != nil {
			nsc.surf.surf.DiscardTexture(nsc.pending[i])
		}
	}
	nsc.surf.surf.Unconfigure(nsc.dev.dev)
}

func (b *wgpuBackend) SwapchainViews(n driver.Native) []driver.Native {
	nsc := n.(*nativeSwapchain)
	nsc.mu.Lock()
	defer nsc.mu.Unlock()
	out := make([]driver.Native, len(nsc.views))
	for i, v := range nsc.views {
		out[i] = v
	}
	return out
}

func (b *wgpuBackend) AcquireNext(n driver.Native, timeoutNs uint64, signalSem driver.Native) (int, driver.Result) {
	nsc := n.(*nativeSwapchain)
	acq, err := nsc.surf.surf.AcquireTexture(nsc.dev.waitFence)
	if err != nil {
		switch err {
		case hal.ErrSurfaceOutdated:
			return 0, driver.OutOfDate
		case hal.ErrSurfaceLost:
			return 0, driver.OutOfDate
		case hal.ErrTimeout:
			return 0, driver.Timeout
		default:
			return 0, driver.Unknown
		}
	}
	view, verr := nsc.dev.dev.CreateTextureView(acq.Texture, &hal.TextureViewDescriptor{})
	if verr != nil {
		nsc.surf.surf.DiscardTexture(acq.Texture)
		return 0, driver.Unknown
	}

	idx := int(nsc.next.Add(1)-1) % len(nsc.views)
	nsc.mu.Lock()
	if nsc.views[idx] != nil {
		nsc.dev.dev.DestroyTextureView(nsc.views[idx].view)
	}
	if nsc.pending[idx] != nil {
		nsc.surf.surf.DiscardTexture(nsc.pending[idx])
	}
	nsc.views[idx] = &nativeTextureView{dev: nsc.dev, view: view}
	nsc.pending[idx] = acq.Texture
	nsc.mu.Unlock()

	if signalSem != nil {
		signalSem.(*nativeSemaphore).value.Store(nsc.next.Load())
	}
	if acq.Suboptimal {
		return idx, driver.Success
	}
	return idx, driver.Success
}

func (b *wgpuBackend) Present(n driver.Native, index int, waitSem driver.Native) driver.Result {
	nsc := n.(*nativeSwapchain)
	nsc.mu.Lock()
	tex := nsc.pending[index]
	nsc.pending[index] = nil
	nsc.mu.Unlock()
	if tex == nil {
		return driver.InvalidArgument
	}
	if err := nsc.dev.queue.Present(nsc.surf.surf, tex); err != nil {
		return driver.Unknown
	}
	return driver.Success
}

func (b *wgpuBackend) RecreateSwapchain(n driver.Native, req driver.SwapchainRequest) (driver.SwapchainInfo, error) {
	nsc := n.(*nativeSwapchain)
	nsc.mu.Lock()
	defer nsc.mu.Unlock()
	cfg := &hal.SurfaceConfiguration{
		Width:       req.Width,
		Height:      req.Height,
		Format:      pixelFmtToGPU(req.Format),
		Usage:       textureUsageToGPU(req.Usage),
		PresentMode: presentModeToGPU(req.PresentMode),
		AlphaMode:   hal.CompositeAlphaModeOpaque,
	}
	if err := nsc.surf.surf.Configure(nsc.dev.dev, cfg); err != nil {
		return driver.SwapchainInfo{}, errf(driver.Unknown, "webgpu: reconfiguring surface: %v", err)
	}
	for i, v := range nsc.views {
		if v != nil {
			nsc.dev.dev.DestroyTextureView(v.view)
			nsc.views[i] = nil
		}
		if nsc.pending[i] != nil {
			nsc.surf.surf.DiscardTexture(nsc.pending[i])
			nsc.pending[i] = nil
		}
	}
	if len(nsc.views) != req.FramesInFlight {
		nsc.views = make([]*nativeTextureView, req.FramesInFlight)
		nsc.pending = make([]hal.SurfaceTexture, req.FramesInFlight)
	}
	nsc.info = driver.SwapchainInfo{
		Format:         req.Format,
		Width:          req.Width,
		Height:         req.Height,
		PresentMode:    req.PresentMode,
		FramesInFlight: req.FramesInFlight,
	}
	return nsc.info, nil
}

// adapterCaps fetches SurfaceCapabilities for ni's adapter against surf.
// Surface format/present-mode queries hang off Adapter, not Instance, in
// hal (hal/api.go's Adapter.SurfaceCapabilities) — this is only reachable
// once an adapter has been requested through this instance, mirroring the
// teacher's own ordering (NewSurface always follows RequestAdapter).
func (ni *nativeInstance) adapterCaps(surf hal.Surface) *hal.SurfaceCapabilities {
	exposed := ni.inst.EnumerateAdapters(surf)
	if len(exposed) == 0 {
		return nil
	}
	return exposed[0].Adapter.SurfaceCapabilities(surf)
}
