// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build !linux

package vk

// #include <vulkan/vulkan.h>
import "C"

import (
	"github.com/kestrelgpu/gfx/driver"
)

// platformSurfaceExtension has no real Vulkan WSI counterpart wired on
// this build target (see present_xcb.go); CreateInstance still adds
// VK_KHR_surface itself, so leaving this empty just skips the
// platform-specific half of InstanceExtensionSurface here.
const platformSurfaceExtension = ""

func createPlatformSurface(in *nativeInstance, handle driver.PlatformWindowHandle) (C.VkSurfaceKHR, error) {
	return nil, errf(driver.FeatureNotSupported, "vulkan: presentation not implemented on this platform")
}
