// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package swbackend

import "github.com/kestrelgpu/gfx/driver"

type swRenderPass struct {
	desc driver.RenderPassDescriptor
}

func (b *swBackend) NewRenderPass(n driver.Native, desc *driver.RenderPassDescriptor) (driver.Native, error) {
	return &swRenderPass{desc: *desc}, nil
}
func (b *swBackend) DestroyRenderPass(driver.Native) {}

type swFramebuffer struct{}

func (b *swBackend) NewFramebuffer(n driver.Native, desc *driver.FramebufferDescriptor) (driver.Native, error) {
	return &swFramebuffer{}, nil
}
func (b *swBackend) DestroyFramebuffer(driver.Native) {}
