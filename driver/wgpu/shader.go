// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wgpu

import (
	"reflect"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/kestrelgpu/gfx/driver"
)

type nativeShader struct {
	dev *nativeDevice
	mod hal.ShaderModule
}

// toWGSL returns desc.Source as WGSL text, translating through naga when
// the caller supplied SPIR-V — the mirror image of driver/vk.toSPIRV,
// since hal.ShaderSource (hal/descriptor.go) accepts either
// representation but every concrete hal backend this module has seen
// compiles from WGSL.
func toWGSL(desc *driver.ShaderDescriptor) (string, error) {
	if desc.SourceKind == driver.ShaderSourceWGSL {
		return string(desc.Source), nil
	}
	module, err := naga.Parse(naga.LanguageSPIRV, desc.Source)
	if err != nil {
		return "", errf(driver.InvalidArgument, "webgpu: parsing SPIR-V shader %q: %v", desc.Label, err)
	}
	wgsl, err := naga.LowerWithSource(module, naga.TargetWGSL, desc.EntryPoint)
	if err != nil {
		return "", errf(driver.InvalidArgument, "webgpu: lowering shader %q to WGSL: %v", desc.Label, err)
	}
	return string(wgsl), nil
}

func (b *wgpuBackend) NewShader(n driver.Native, desc *driver.ShaderDescriptor) (driver.Native, error) {
	nd := n.(*nativeDevice)
	wgsl, err := toWGSL(desc)
	if err != nil {
		return nil, err
	}
	mod, err := nd.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{WGSL: wgsl},
	})
	if err != nil {
		return nil, errf(driver.InvalidArgument, "webgpu: creating shader module %q: %v", desc.Label, err)
	}
	return &nativeShader{dev: nd, mod: mod}, nil
}

func (b *wgpuBackend) DestroyShader(n driver.Native) {
	ns := n.(*nativeShader)
	ns.dev.dev.DestroyShaderModule(ns.mod)
}

type nativeBindGroupLayout struct {
	dev     *nativeDevice
	layout  hal.BindGroupLayout
	entries []driver.BindGroupLayoutEntry
}

// bindGroupLayoutEntryToGPU builds the gputypes union entry (Buffer xor
// Sampler xor Texture xor Storage), grounded on
// github.com/gogpu/wgpu/types.BindGroupLayoutEntry (types/binding.go),
// the sibling of gputypes' own (unvendored) type with matching field
// names confirmed via hal/dx12's usage of it.
func bindGroupLayoutEntryToGPU(e driver.BindGroupLayoutEntry) gputypes.BindGroupLayoutEntry {
	out := gputypes.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: shaderStagesToGPU(e.Visibility),
	}
	switch e.Type {
	case driver.BindingUniformBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, HasDynamicOffset: e.HasDynamicOffset}
	case driver.BindingStorageBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage, HasDynamicOffset: e.HasDynamicOffset}
	case driver.BindingReadOnlyStorageBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage, HasDynamicOffset: e.HasDynamicOffset}
	case driver.BindingSampler:
		out.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	case driver.BindingComparisonSampler:
		out.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeComparison}
	case driver.BindingSampledTexture:
		out.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: viewDimensionToGPU(e.ViewDimension),
		}
	case driver.BindingStorageTexture:
		out.StorageTexture = &gputypes.StorageTextureBindingLayout{
			Access:        gputypes.StorageTextureAccessWriteOnly,
			ViewDimension: viewDimensionToGPU(e.ViewDimension),
		}
	}
	return out
}

func (b *wgpuBackend) NewBindGroupLayout(n driver.Native, entries []driver.BindGroupLayoutEntry) (driver.Native, error) {
	nd := n.(*nativeDevice)
	gpuEntries := make([]gputypes.BindGroupLayoutEntry, len(entries))
	for i, e := range entries {
		gpuEntries[i] = bindGroupLayoutEntryToGPU(e)
	}
	layout, err := nd.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{Entries: gpuEntries})
	if err != nil {
		return nil, errf(driver.InvalidArgument, "webgpu: creating bind group layout: %v", err)
	}
	return &nativeBindGroupLayout{
		dev:     nd,
		layout:  layout,
		entries: append([]driver.BindGroupLayoutEntry(nil), entries...),
	}, nil
}

func (b *wgpuBackend) DestroyBindGroupLayout(n driver.Native) {
	nl := n.(*nativeBindGroupLayout)
	nl.dev.dev.DestroyBindGroupLayout(nl.layout)
}

type nativeBindGroup struct {
	dev   *nativeDevice
	group hal.BindGroup
}

// resourceHandle recovers a uintptr-comparable identity from a hal
// resource interface wrapping a pointer-typed concrete backend value,
// the same encode-the-pointer-as-a-handle trick hal/dx12's own
// BindGroupEntry construction performs (device.go, via
// unsafe.Pointer(res.Buffer)) — generalized here with reflect since this
// package, unlike a single concrete hal backend, never knows the
// resource's concrete type.
func resourceHandle(v any) uintptr {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr || rv.Kind() == reflect.UnsafePointer {
		return rv.Pointer()
	}
	return 0
}

func (b *wgpuBackend) NewBindGroup(n driver.Native, desc *driver.BindGroupDescriptor) (driver.Native, error) {
	nd := n.(*nativeDevice)
	layout := desc.Layout.Native().(*nativeBindGroupLayout).layout

	gpuEntries := make([]gputypes.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		switch {
		case e.Buffer != nil:
			nb := e.Buffer.Native().(*nativeBuffer)
			size := e.BufferSize
			if size == 0 {
				size = nb.size - e.BufferOffset
			}
			gpuEntries[i] = gputypes.BindGroupEntry{
				Binding: e.Binding,
				Resource: gputypes.BufferBinding{
					Buffer: resourceHandle(nb.buf),
					Offset: uint64(e.BufferOffset),
					Size:   uint64(size),
				},
			}
		case e.Sampler != nil:
			ns := e.Sampler.Native().(*nativeSampler)
			gpuEntries[i] = gputypes.BindGroupEntry{
				Binding:  e.Binding,
				Resource: gputypes.SamplerBinding{Sampler: resourceHandle(ns.spl)},
			}
		case e.TextureView != nil:
			nv := e.TextureView.Native().(*nativeTextureView)
			gpuEntries[i] = gputypes.BindGroupEntry{
				Binding:  e.Binding,
				Resource: gputypes.TextureViewBinding{TextureView: resourceHandle(nv.view)},
			}
		}
	}

	group, err := nd.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: gpuEntries,
	})
	if err != nil {
		return nil, errf(driver.InvalidArgument, "webgpu: creating bind group: %v", err)
	}
	return &nativeBindGroup{dev: nd, group: group}, nil
}

func (b *wgpuBackend) DestroyBindGroup(n driver.Native) {
	ng := n.(*nativeBindGroup)
	ng.dev.dev.DestroyBindGroup(ng.group)
}
