// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build !linux

package wgpu

import (
	"github.com/kestrelgpu/gfx/driver"
)

// platformHandles has no real windowing path wired on this build target
// (see present_linux.go); NewSurface reports FeatureNotSupported.
func platformHandles(handle driver.PlatformWindowHandle) (display, window uintptr, err error) {
	return 0, 0, errf(driver.FeatureNotSupported, "webgpu: presentation not implemented on this platform")
}
