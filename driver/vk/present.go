// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <vulkan/vulkan.h>
import "C"

import (
	"sync"
	"unsafe"

	"github.com/kestrelgpu/gfx/driver"
)

// nativeSurface wraps a VkSurfaceKHR together with the physical device
// it was queried against, grounded on the teacher's
// Driver.initPresent/checkSupport (present.go) generalized from a
// single implicit surface to an explicit, independently queryable one.
type nativeSurface struct {
	instN *nativeInstance
	pdev  C.VkPhysicalDevice
	surf  C.VkSurfaceKHR
}

func (b *vkBackend) NewSurface(n driver.Native, handle driver.PlatformWindowHandle) (driver.Native, error) {
	nd := n.(*nativeDevice)
	surf, err := createPlatformSurface(nd.adapter.instN, handle)
	if err != nil {
		return nil, err
	}
	var supported C.VkBool32
	checkResult(C.vkGetPhysicalDeviceSurfaceSupportKHR(nd.adapter.pdev, C.uint32_t(nd.adapter.qfam), surf, &supported))
	if supported == C.VK_FALSE {
		C.vkDestroySurfaceKHR(nd.adapter.instN.inst, surf, nil)
		return nil, errf(driver.FeatureNotSupported, "vulkan: queue family cannot present to this surface")
	}
	return &nativeSurface{instN: nd.adapter.instN, pdev: nd.adapter.pdev, surf: surf}, nil
}

func (b *vkBackend) DestroySurface(n driver.Native) {
	ns := n.(*nativeSurface)
	C.vkDestroySurfaceKHR(ns.instN.inst, ns.surf, nil)
}

func (b *vkBackend) SurfaceFormats(n driver.Native) []driver.PixelFmt {
	ns := n.(*nativeSurface)
	var count C.uint32_t
	C.vkGetPhysicalDeviceSurfaceFormatsKHR(ns.pdev, ns.surf, &count, nil)
	if count == 0 {
		return nil
	}
	vkFormats := make([]C.VkSurfaceFormatKHR, count)
	C.vkGetPhysicalDeviceSurfaceFormatsKHR(ns.pdev, ns.surf, &count, &vkFormats[0])
	var out []driver.PixelFmt
	for _, f := range vkFormats {
		if pf, ok := pixelFmtFromVk(f.format); ok {
			out = append(out, pf)
		}
	}
	return out
}

func (b *vkBackend) SurfacePresentModes(n driver.Native) []driver.PresentMode {
	ns := n.(*nativeSurface)
	var count C.uint32_t
	C.vkGetPhysicalDeviceSurfacePresentModesKHR(ns.pdev, ns.surf, &count, nil)
	if count == 0 {
		return nil
	}
	modes := make([]C.VkPresentModeKHR, count)
	C.vkGetPhysicalDeviceSurfacePresentModesKHR(ns.pdev, ns.surf, &count, &modes[0])
	var out []driver.PresentMode
	for _, m := range modes {
		switch m {
		case C.VK_PRESENT_MODE_FIFO_KHR:
			out = append(out, driver.PresentFIFO)
		case C.VK_PRESENT_MODE_MAILBOX_KHR:
			out = append(out, driver.PresentMailbox)
		case C.VK_PRESENT_MODE_IMMEDIATE_KHR:
			out = append(out, driver.PresentImmediate)
		}
	}
	return out
}

func presentModeToVk(m driver.PresentMode) C.VkPresentModeKHR {
	switch m {
	case driver.PresentMailbox:
		return C.VK_PRESENT_MODE_MAILBOX_KHR
	case driver.PresentImmediate:
		return C.VK_PRESENT_MODE_IMMEDIATE_KHR
	default:
		return C.VK_PRESENT_MODE_FIFO_KHR
	}
}

// nativeSwapchain is the Native value backing a driver.Swapchain,
// grounded on the teacher's swapchain struct (present.go) but holding
// its own per-image VkImageViews since SPEC_FULL.md's Swapchain.Views
// exposes TextureViews directly rather than requiring callers to build
// a Framebuffer first.
type nativeSwapchain struct {
	mu     sync.Mutex
	dev    *nativeDevice
	surf   *nativeSurface
	sc     C.VkSwapchainKHR
	format C.VkFormat
	views  []*nativeTextureView
}

func (b *vkBackend) NewSwapchain(devN, surfN driver.Native, req driver.SwapchainRequest) (driver.Native, driver.SwapchainInfo, error) {
	nd := devN.(*nativeDevice)
	ns := surfN.(*nativeSurface)
	return buildSwapchain(nd, ns, req, nil)
}

func buildSwapchain(nd *nativeDevice, ns *nativeSurface, req driver.SwapchainRequest, old *nativeSwapchain) (driver.Native, driver.SwapchainInfo, error) {
	var caps C.VkSurfaceCapabilitiesKHR
	if err := checkResult(C.vkGetPhysicalDeviceSurfaceCapabilitiesKHR(ns.pdev, ns.surf, &caps)); err != nil {
		return nil, driver.SwapchainInfo{}, err
	}

	format := pixelFmtToVk(req.Format)
	extent := C.VkExtent2D{width: C.uint32_t(req.Width), height: C.uint32_t(req.Height)}
	if caps.currentExtent.width != 0xFFFFFFFF {
		extent = caps.currentExtent
	}

	minImages := caps.minImageCount + 1
	if caps.maxImageCount > 0 && minImages > caps.maxImageCount {
		minImages = caps.maxImageCount
	}
	if uint32(minImages) < uint32(req.FramesInFlight) {
		minImages = C.uint32_t(req.FramesInFlight)
	}

	var oldSc C.VkSwapchainKHR
	if old != nil {
		oldSc = old.sc
	}

	info := C.VkSwapchainCreateInfoKHR{
		sType:            C.VK_STRUCTURE_TYPE_SWAPCHAIN_CREATE_INFO_KHR,
		surface:          ns.surf,
		minImageCount:    minImages,
		imageFormat:      format,
		imageColorSpace:  C.VK_COLOR_SPACE_SRGB_NONLINEAR_KHR,
		imageExtent:      extent,
		imageArrayLayers: 1,
		imageUsage:       textureUsageFlags(req.Usage) | C.VK_IMAGE_USAGE_COLOR_ATTACHMENT_BIT,
		imageSharingMode: C.VK_SHARING_MODE_EXCLUSIVE,
		preTransform:     caps.currentTransform,
		compositeAlpha:   C.VK_COMPOSITE_ALPHA_OPAQUE_BIT_KHR,
		presentMode:      presentModeToVk(req.PresentMode),
		clipped:          C.VK_TRUE,
		oldSwapchain:     oldSc,
	}
	var sc C.VkSwapchainKHR
	if err := checkResult(C.vkCreateSwapchainKHR(nd.dev, &info, nil, &sc)); err != nil {
		return nil, driver.SwapchainInfo{}, err
	}
	if old != nil {
		destroySwapchainViews(old)
		C.vkDestroySwapchainKHR(nd.dev, old.sc, nil)
	}

	var count C.uint32_t
	C.vkGetSwapchainImagesKHR(nd.dev, sc, &count, nil)
	images := make([]C.VkImage, count)
	if count > 0 {
		C.vkGetSwapchainImagesKHR(nd.dev, sc, &count, &images[0])
	}

	views := make([]*nativeTextureView, count)
	for i, img := range images {
		viewInfo := C.VkImageViewCreateInfo{
			sType:    C.VK_STRUCTURE_TYPE_IMAGE_VIEW_CREATE_INFO,
			image:    img,
			viewType: C.VK_IMAGE_VIEW_TYPE_2D,
			format:   format,
		}
		viewInfo.subresourceRange = C.VkImageSubresourceRange{
			aspectMask: C.VK_IMAGE_ASPECT_COLOR_BIT,
			levelCount: 1,
			layerCount: 1,
		}
		var view C.VkImageView
		if err := checkResult(C.vkCreateImageView(nd.dev, &viewInfo, nil, &view)); err != nil {
			return nil, driver.SwapchainInfo{}, err
		}
		views[i] = &nativeTextureView{dev: nd.dev, view: view}
	}

	nsc := &nativeSwapchain{
		dev:    nd,
		surf:   ns,
		sc:     sc,
		format: format,
		views:  views,
	}
	fmtOut, _ := pixelFmtFromVk(format)
	return nsc, driver.SwapchainInfo{
		Format:         fmtOut,
		Width:          uint32(extent.width),
		Height:         uint32(extent.height),
		PresentMode:    req.PresentMode,
		FramesInFlight: len(views),
	}, nil
}

func destroySwapchainViews(nsc *nativeSwapchain) {
	for _, v := range nsc.views {
		C.vkDestroyImageView(nsc.dev.dev, v.view, nil)
	}
}

func (b *vkBackend) DestroySwapchain(n driver.Native) {
	nsc := n.(*nativeSwapchain)
	destroySwapchainViews(nsc)
	C.vkDestroySwapchainKHR(nsc.dev.dev, nsc.sc, nil)
}

func (b *vkBackend) SwapchainViews(n driver.Native) []driver.Native {
	nsc := n.(*nativeSwapchain)
	out := make([]driver.Native, len(nsc.views))
	for i, v := range nsc.views {
		out[i] = v
	}
	return out
}

func (b *vkBackend) AcquireNext(n driver.Native, timeoutNs uint64, signalSem driver.Native) (int, driver.Result) {
	nsc := n.(*nativeSwapchain)
	var sem C.VkSemaphore
	if signalSem != nil {
		sem = signalSem.(*nativeSemaphore).sem
	}
	var idx C.uint32_t
	res := C.vkAcquireNextImageKHR(nsc.dev.dev, nsc.sc, C.uint64_t(timeoutNs), sem, nil, &idx)
	switch res {
	case C.VK_SUCCESS, C.VK_SUBOPTIMAL_KHR:
		return int(idx), driver.Success
	case C.VK_TIMEOUT:
		return 0, driver.Timeout
	case C.VK_ERROR_OUT_OF_DATE_KHR:
		return 0, driver.OutOfDate
	default:
		return 0, driver.Unknown
	}
}

func (b *vkBackend) Present(n driver.Native, index int, waitSem driver.Native) driver.Result {
	nsc := n.(*nativeSwapchain)
	var sem C.VkSemaphore
	var semCount C.uint32_t
	var pSem *C.VkSemaphore
	if waitSem != nil {
		sem = waitSem.(*nativeSemaphore).sem
		semCount = 1
		pSem = &sem
	}
	idx := C.uint32_t(index)
	info := C.VkPresentInfoKHR{
		sType:              C.VK_STRUCTURE_TYPE_PRESENT_INFO_KHR,
		waitSemaphoreCount: semCount,
		pWaitSemaphores:    pSem,
		swapchainCount:     1,
		pSwapchains:        &nsc.sc,
		pImageIndices:      &idx,
	}
	nsc.dev.queMu.Lock()
	res := C.vkQueuePresentKHR(nsc.dev.que, &info)
	nsc.dev.queMu.Unlock()
	switch res {
	case C.VK_SUCCESS:
		return driver.Success
	case C.VK_SUBOPTIMAL_KHR, C.VK_ERROR_OUT_OF_DATE_KHR:
		return driver.OutOfDate
	default:
		return driver.Unknown
	}
}

func (b *vkBackend) RecreateSwapchain(n driver.Native, req driver.SwapchainRequest) (driver.SwapchainInfo, error) {
	nsc := n.(*nativeSwapchain)
	nsc.mu.Lock()
	defer nsc.mu.Unlock()
	rebuilt, info, err := buildSwapchain(nsc.dev, nsc.surf, req, nsc)
	if err != nil {
		return driver.SwapchainInfo{}, err
	}
	newNsc := rebuilt.(*nativeSwapchain)
	nsc.sc = newNsc.sc
	nsc.format = newNsc.format
	nsc.views = newNsc.views
	return info, nil
}

func pixelFmtFromVk(f C.VkFormat) (driver.PixelFmt, bool) {
	switch f {
	case C.VK_FORMAT_R8G8B8A8_UNORM:
		return driver.R8G8B8A8Unorm, true
	case C.VK_FORMAT_B8G8R8A8_UNORM:
		return driver.B8G8R8A8Unorm, true
	case C.VK_FORMAT_R8G8B8A8_SRGB:
		return driver.R8G8B8A8Srgb, true
	case C.VK_FORMAT_B8G8R8A8_SRGB:
		return driver.B8G8R8A8Srgb, true
	default:
		return 0, false
	}
}

// cStringPlain marshals a single Go string to a C string the caller
// must free, used by the platform-specific surface constructors in
// present_xcb.go / present_other.go.
func cStringPlain(s string) (*C.char, func()) {
	p := C.CString(s)
	return p, func() { C.free(unsafe.Pointer(p)) }
}
