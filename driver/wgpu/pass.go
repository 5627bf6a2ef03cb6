// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wgpu

import (
	"github.com/kestrelgpu/gfx/driver"
)

// nativeRenderPass keeps the attachment-format/load-store layout on the Go
// side only: hal has no persistent render-pass object of its own (unlike
// VkRenderPass), so BeginRenderPass rebuilds a fresh hal.RenderPassDescriptor
// from this bookkeeping plus the Framebuffer's concrete views every time,
// the same split driver/pass.go documents for the implicit backend.
type nativeRenderPass struct {
	dev  *nativeDevice
	desc driver.RenderPassDescriptor
}

func (b *wgpuBackend) NewRenderPass(n driver.Native, desc *driver.RenderPassDescriptor) (driver.Native, error) {
	return &nativeRenderPass{dev: n.(*nativeDevice), desc: *desc}, nil
}

func (b *wgpuBackend) DestroyRenderPass(n driver.Native) {
	_ = n.(*nativeRenderPass)
}

type nativeFramebuffer struct {
	pass *nativeRenderPass
	desc driver.FramebufferDescriptor
}

func (b *wgpuBackend) NewFramebuffer(n driver.Native, desc *driver.FramebufferDescriptor) (driver.Native, error) {
	np := n.(*nativeRenderPass)
	return &nativeFramebuffer{pass: np, desc: *desc}, nil
}

func (b *wgpuBackend) DestroyFramebuffer(n driver.Native) {
	_ = n.(*nativeFramebuffer)
}
