// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package swbackend

import "github.com/kestrelgpu/gfx/driver"

// swbackend has no real window system to present to; none of the
// property tests or end-to-end scenarios it is used for touch
// presentation (that is what driver/vk and driver/wgpu are exercised
// against instead), so every Surface/Swapchain method here simply
// reports FeatureNotSupported the same way driver/vk does for a
// PlatformWindowHandleKind it cannot satisfy.
func (b *swBackend) NewSurface(driver.Native, driver.PlatformWindowHandle) (driver.Native, error) {
	return nil, driverErrf(driver.FeatureNotSupported, "swbackend: presentation is not supported")
}
func (b *swBackend) DestroySurface(driver.Native) {}

func (b *swBackend) SurfaceFormats(driver.Native) []driver.PixelFmt           { return nil }
func (b *swBackend) SurfacePresentModes(driver.Native) []driver.PresentMode   { return nil }

func (b *swBackend) NewSwapchain(driver.Native, driver.Native, driver.SwapchainRequest) (driver.Native, driver.SwapchainInfo, error) {
	return nil, driver.SwapchainInfo{}, driverErrf(driver.FeatureNotSupported, "swbackend: presentation is not supported")
}
func (b *swBackend) DestroySwapchain(driver.Native)        {}
func (b *swBackend) SwapchainViews(driver.Native) []driver.Native { return nil }

func (b *swBackend) AcquireNext(driver.Native, uint64, driver.Native) (int, driver.Result) {
	return 0, driver.FeatureNotSupported
}

func (b *swBackend) Present(driver.Native, int, driver.Native) driver.Result {
	return driver.FeatureNotSupported
}

func (b *swBackend) RecreateSwapchain(driver.Native, driver.SwapchainRequest) (driver.SwapchainInfo, error) {
	return driver.SwapchainInfo{}, driverErrf(driver.FeatureNotSupported, "swbackend: presentation is not supported")
}
