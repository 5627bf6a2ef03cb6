// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build linux

package wgpu

import (
	"github.com/kestrelgpu/gfx/driver"
	"github.com/kestrelgpu/gfx/wsi"
)

// platformHandles resolves handle to the raw (display, window) uintptr
// pair hal.Instance.CreateSurface expects, grounded on the teacher's
// createPlatformSurface (driver/vk/present_xcb.go): only PlatformXCB has a
// real windowing path wired on this build, via the same wsi.XCBHandle/
// wsi.XCBWindowID accessors.
func platformHandles(handle driver.PlatformWindowHandle) (display, window uintptr, err error) {
	if handle.Kind != driver.PlatformXCB {
		return 0, 0, errf(driver.FeatureNotSupported, "webgpu: platform window kind %d not supported by this build", handle.Kind)
	}
	conn, ok := wsi.XCBHandle()
	if !ok {
		return 0, 0, errf(driver.FeatureNotSupported, "webgpu: XCB platform not active")
	}
	winID, ok := wsi.XCBWindowID(handle.Window)
	if !ok {
		return 0, 0, errf(driver.FeatureNotSupported, "webgpu: window was not created by the XCB platform")
	}
	return conn, uintptr(winID), nil
}
