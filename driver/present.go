// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"errors"

	"github.com/kestrelgpu/gfx/wsi"
)

// ErrCannotPresent means that the device does not support presentation
// at all (no surface/swapchain capability), mirroring the teacher's
// driver.ErrCannotPresent.
var ErrCannotPresent = errors.New("presentation not supported")

// ErrWindow represents an error related to a specific window, mirroring
// the teacher's driver.ErrWindow.
var ErrWindow = errors.New("window-related error")

// PlatformWindowHandleKind tags which native windowing system a
// PlatformWindowHandle carries, generalizing the teacher's wsi.Platform
// enum (Android/Wayland/Win32/XCB) with the two additional targets
// spec.md §6 names that the teacher's wsi package never needed
// (Cocoa, Canvas) — both of which driver/vk rejects with
// FeatureNotSupported, since no Vulkan WSI extension on this module's
// supported platforms covers them directly without MoltenVK/emscripten
// glue this module does not vendor.
type PlatformWindowHandleKind int

const (
	PlatformXCB PlatformWindowHandleKind = iota
	PlatformWayland
	PlatformWin32
	PlatformCocoa
	PlatformCanvas
)

// PlatformWindowHandle is a tagged union identifying the native window
// (or browser canvas) a Surface is created against. Window carries the
// wsi.Window for the XCB/Wayland/Win32 cases; NativeHandle and
// NativeDisplay hold raw, platform-specific pointers/identifiers (as
// opaque uintptr values, e.g. a Cocoa NSView*) and CanvasSelector names
// an HTML canvas, since wsi.Window has no Cocoa/Canvas implementation in
// this module. driver/vk and driver/wgpu create surfaces only for
// PlatformXCB, from Window; neither reads NativeHandle, NativeDisplay or
// CanvasSelector.
type PlatformWindowHandle struct {
	Kind           PlatformWindowHandleKind
	Window         wsi.Window
	NativeHandle   uintptr
	NativeDisplay  uintptr
	CanvasSelector string
}

// PresentMode selects a Swapchain's frame-pacing policy.
type PresentMode int

const (
	PresentFIFO PresentMode = iota
	PresentMailbox
	PresentImmediate
)

// SwapchainRequest configures a new or recreated Swapchain.
type SwapchainRequest struct {
	Format      PixelFmt
	Usage       TextureUsage
	PresentMode PresentMode
	Width       uint32
	Height      uint32
	// FramesInFlight is clamped to [2,4] per spec.md §6's
	// MAX_FRAMES_IN_FLIGHT bound.
	FramesInFlight int
}

func clampFramesInFlight(n int) int {
	switch {
	case n < 2:
		return 2
	case n > 4:
		return 4
	default:
		return n
	}
}

// SwapchainInfo reports the effective configuration a Swapchain was
// created (or recreated) with, which may differ from the
// SwapchainRequest the caller supplied (e.g. a clamped FramesInFlight,
// or a PresentMode substitution when the requested one is unsupported).
type SwapchainInfo struct {
	Format         PixelFmt
	Width, Height  uint32
	PresentMode    PresentMode
	FramesInFlight int
}

// Surface is a drawable target bound to a native window, the object
// Swapchains are created against. Grounded on the teacher's
// driver.Presenter.NewSwapchain(win wsi.Window, ...) generalized to a
// first-class Surface value so a Device can query supported formats and
// present modes before committing to a Swapchain.
type Surface struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
}

// NewSurface creates a Surface on d targeting handle. Returns a
// FeatureNotSupported error if d's backend has no
// presentation support for handle.Kind (e.g. driver/vk with
// PlatformCocoa or PlatformCanvas).
func (d *Device) NewSurface(handle PlatformWindowHandle) (*Surface, error) {
	native, err := d.backend.NewSurface(d.native, handle)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &Surface{
		h:       reg.wrap(KindSurface, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
	}, nil
}

// Handle returns s's opaque Handle.
func (s *Surface) Handle() Handle { return s.h }

// SupportedFormats lists the PixelFmts s can present.
func (s *Surface) SupportedFormats() []PixelFmt { return s.backend.SurfaceFormats(s.native) }

// SupportedPresentModes lists the PresentModes s supports.
func (s *Surface) SupportedPresentModes() []PresentMode {
	return s.backend.SurfacePresentModes(s.native)
}

// NewSwapchain creates a Swapchain presenting to s, per req.
func (s *Surface) NewSwapchain(req SwapchainRequest) (*Swapchain, error) {
	req.FramesInFlight = clampFramesInFlight(req.FramesInFlight)
	native, info, err := s.backend.NewSwapchain(s.device.native, s.native, req)
	if err != nil {
		s.device.errScopes.report(err)
		return nil, err
	}
	return &Swapchain{
		h:       reg.wrap(KindSwapchain, mustBackendID(s.h)),
		surface: s,
		backend: s.backend,
		native:  native,
		info:    info,
	}, nil
}

// Destroy releases s. Any Swapchain created against s must be destroyed
// first (I2).
func (s *Surface) Destroy() {
	if !reg.isLive(s.h) {
		return
	}
	s.backend.DestroySurface(s.native)
	reg.unwrap(s.h)
}

// Swapchain is an n-buffered presentation target, grounded on the
// teacher's driver.Swapchain interface (present.go) generalized from
// "only one Next/Present pair per Commit" to the explicit
// Acquire-semaphore/Present-semaphore shape both backend families
// natively expose.
type Swapchain struct {
	h       Handle
	surface *Surface
	backend Backend
	native  Native
	info    SwapchainInfo
}

// Handle returns sc's opaque Handle.
func (sc *Swapchain) Handle() Handle { return sc.h }

// Info reports sc's effective configuration.
func (sc *Swapchain) Info() SwapchainInfo { return sc.info }

// Views returns the TextureViews comprising sc, one per frame-in-flight
// slot. The returned slice is stable until the next Recreate.
func (sc *Swapchain) Views() []*TextureView {
	natives := sc.backend.SwapchainViews(sc.native)
	out := make([]*TextureView, len(natives))
	for i, n := range natives {
		out[i] = &TextureView{
			h:       reg.wrap(KindTextureView, mustBackendID(sc.h)),
			backend: sc.backend,
			native:  n,
		}
	}
	return out
}

// AcquireNext returns the index of the next writable image, signaling
// signalSem once it is safe to write. A Result of OutOfDate indicates
// the surface has changed (resize) and Recreate should be called before
// presenting.
func (sc *Swapchain) AcquireNext(timeoutNs uint64, signalSem *Semaphore) (int, Result) {
	var native Native
	if signalSem != nil {
		native = signalSem.native
	}
	return sc.backend.AcquireNext(sc.native, timeoutNs, native)
}

// Present presents the image at index, after waiting on waitSem.
func (sc *Swapchain) Present(index int, waitSem *Semaphore) Result {
	var native Native
	if waitSem != nil {
		native = waitSem.native
	}
	return sc.backend.Present(sc.native, index, native)
}

// Recreate rebuilds sc in response to a resize or an OutOfDate result
// from AcquireNext/Present (P6). Every Framebuffer built over sc's old
// Views must be destroyed and rebuilt against the new Views after this
// call returns.
func (sc *Swapchain) Recreate(req SwapchainRequest) error {
	req.FramesInFlight = clampFramesInFlight(req.FramesInFlight)
	info, err := sc.backend.RecreateSwapchain(sc.native, req)
	if err != nil {
		sc.surface.device.errScopes.report(err)
		return err
	}
	sc.info = info
	return nil
}

// Destroy releases sc.
func (sc *Swapchain) Destroy() {
	if !reg.isLive(sc.h) {
		return
	}
	sc.backend.DestroySwapchain(sc.native)
	reg.unwrap(sc.h)
}
