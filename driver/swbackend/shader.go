// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package swbackend

import "github.com/kestrelgpu/gfx/driver"

// swbackend never lowers or validates shader IR: it exists to exercise
// resource/command bookkeeping, not shader translation (driver/vk and
// driver/wgpu already own github.com/gogpu/naga's Parse/LowerWithSource
// path). A shader descriptor is accepted unconditionally, mirroring
// hal/noop's CreateShaderModule placeholder.
type swShader struct{}

func (b *swBackend) NewShader(driver.Native, *driver.ShaderDescriptor) (driver.Native, error) {
	return &swShader{}, nil
}
func (b *swBackend) DestroyShader(driver.Native) {}

type swBindGroupLayout struct {
	entries []driver.BindGroupLayoutEntry
}

func (b *swBackend) NewBindGroupLayout(n driver.Native, entries []driver.BindGroupLayoutEntry) (driver.Native, error) {
	return &swBindGroupLayout{entries: append([]driver.BindGroupLayoutEntry(nil), entries...)}, nil
}
func (b *swBackend) DestroyBindGroupLayout(driver.Native) {}

type swBindGroup struct {
	desc driver.BindGroupDescriptor
}

func (b *swBackend) NewBindGroup(n driver.Native, desc *driver.BindGroupDescriptor) (driver.Native, error) {
	return &swBindGroup{desc: *desc}, nil
}
func (b *swBackend) DestroyBindGroup(driver.Native) {}
