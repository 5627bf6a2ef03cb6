// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build linux

package vk

// #include <vulkan/vulkan.h>
// #include <vulkan/vulkan_xcb.h>
import "C"

import (
	"unsafe"

	"github.com/kestrelgpu/gfx/driver"
	"github.com/kestrelgpu/gfx/wsi"
)

// platformSurfaceExtension is the WSI extension CreateInstance enables
// alongside VK_KHR_surface, grounded on the teacher's choice of XCB as
// the primary Linux windowing backend (wsi.initXCB).
const platformSurfaceExtension = "VK_KHR_xcb_surface"

// createPlatformSurface builds a VkSurfaceKHR for handle, grounded on
// the teacher's Driver.newSwapchain window setup (present.go). Only
// PlatformXCB is backed by a real Vulkan WSI path here: Wayland/Win32
// support would need VK_KHR_wayland_surface/VK_KHR_win32_surface and
// the matching wsi native-handle accessors, which this tree's wsi
// package doesn't expose outside of the XCB path (see DESIGN.md);
// Cocoa/Canvas have no Vulkan WSI extension at all without MoltenVK or
// emscripten glue this module does not vendor.
func createPlatformSurface(in *nativeInstance, handle driver.PlatformWindowHandle) (C.VkSurfaceKHR, error) {
	if handle.Kind != driver.PlatformXCB {
		return nil, errf(driver.FeatureNotSupported, "vulkan: platform window kind %d not supported by this build", handle.Kind)
	}
	conn, ok := wsi.XCBHandle()
	if !ok {
		return nil, errf(driver.FeatureNotSupported, "vulkan: XCB platform not active")
	}
	winID, ok := wsi.XCBWindowID(handle.Window)
	if !ok {
		return nil, errf(driver.FeatureNotSupported, "vulkan: window was not created by the XCB platform")
	}
	info := C.VkXcbSurfaceCreateInfoKHR{
		sType:      C.VK_STRUCTURE_TYPE_XCB_SURFACE_CREATE_INFO_KHR,
		connection: (*C.xcb_connection_t)(unsafe.Pointer(conn)),
		window:     C.xcb_window_t(winID),
	}
	var surf C.VkSurfaceKHR
	if err := checkResult(C.vkCreateXcbSurfaceKHR(in.inst, &info, nil, &surf)); err != nil {
		return nil, err
	}
	return surf, nil
}
