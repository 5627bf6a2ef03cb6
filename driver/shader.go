// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// ShaderSourceKind selects the representation a ShaderDescriptor's code
// is given in. Both are lowered to the backend's native IR through
// github.com/gogpu/naga (SPIR-V on the explicit backend, WGSL on the
// implicit one) per SPEC_FULL.md's translation-layer section.
type ShaderSourceKind int

const (
	ShaderSourceWGSL ShaderSourceKind = iota
	ShaderSourceSPIRV
)

// ShaderDescriptor configures a new Shader module.
type ShaderDescriptor struct {
	Source     []byte
	SourceKind ShaderSourceKind
	EntryPoint string
	Label      string
}

// Shader is a compiled (or, for the explicit backend, translated)
// shader module ready to be referenced by a GraphState or CompState.
type Shader struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
}

// NewShader compiles/translates desc.Source into a Shader usable by d.
// When desc.SourceKind doesn't match the backend's native IR, the code
// is first run through naga.Parse/naga.LowerWithSource (SPEC_FULL.md
// §"translation layer"); that step happens inside the backend
// implementation, not in this package.
func (d *Device) NewShader(desc *ShaderDescriptor) (*Shader, error) {
	native, err := d.backend.NewShader(d.native, desc)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &Shader{
		h:       reg.wrap(KindShader, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
	}, nil
}

// Handle returns s's opaque Handle.
func (s *Shader) Handle() Handle { return s.h }

// Native exposes s's backend-owned resource; see Buffer.Native.
func (s *Shader) Native() Native { return s.native }

// Destroy releases s.
func (s *Shader) Destroy() {
	if !reg.isLive(s.h) {
		return
	}
	s.backend.DestroyShader(s.native)
	reg.unwrap(s.h)
}

// BindingType classifies what kind of resource a BindGroupLayoutEntry
// expects at that binding index, mirroring WebGPU's
// GPUBindGroupLayoutEntry union and the teacher's driver.DescType.
type BindingType int

const (
	BindingUniformBuffer BindingType = iota
	BindingStorageBuffer
	BindingReadOnlyStorageBuffer
	BindingSampler
	BindingComparisonSampler
	BindingSampledTexture
	BindingStorageTexture
)

// BindGroupLayoutEntry describes one binding slot within a
// BindGroupLayout.
type BindGroupLayoutEntry struct {
	Binding       uint32
	Visibility    ShaderStage
	Type          BindingType
	HasDynamicOffset bool
	ViewDimension TextureDimension
}

// BindGroupLayout is a reusable, device-validated description of a
// shader's resource-binding interface (spec.md §4.2's "descriptor set
// layout" equivalent).
type BindGroupLayout struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
	entries []BindGroupLayoutEntry
}

// NewBindGroupLayout creates a BindGroupLayout on d from entries.
func (d *Device) NewBindGroupLayout(entries []BindGroupLayoutEntry) (*BindGroupLayout, error) {
	native, err := d.backend.NewBindGroupLayout(d.native, entries)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &BindGroupLayout{
		h:       reg.wrap(KindBindGroupLayout, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
		entries: append([]BindGroupLayoutEntry(nil), entries...),
	}, nil
}

// Handle returns l's opaque Handle.
func (l *BindGroupLayout) Handle() Handle { return l.h }

// Native exposes l's backend-owned resource; see Buffer.Native.
func (l *BindGroupLayout) Native() Native { return l.native }

// Entries returns the layout entries l was created from.
func (l *BindGroupLayout) Entries() []BindGroupLayoutEntry { return l.entries }

// Destroy releases l. Any BindGroup created from l must be destroyed
// first (I2).
func (l *BindGroupLayout) Destroy() {
	if !reg.isLive(l.h) {
		return
	}
	l.backend.DestroyBindGroupLayout(l.native)
	reg.unwrap(l.h)
}

// BindGroupEntry binds one concrete resource to a binding slot declared
// by the group's BindGroupLayout.
type BindGroupEntry struct {
	Binding uint32
	Buffer  *Buffer
	BufferOffset int64
	BufferSize   int64
	Sampler *Sampler
	TextureView *TextureView
}

// BindGroupDescriptor configures a new BindGroup.
type BindGroupDescriptor struct {
	Layout  *BindGroupLayout
	Entries []BindGroupEntry
	Label   string
}

// BindGroup is a concrete set of resource bindings matching a
// BindGroupLayout, the unit RenderPassEncoder.SetBindGroup and
// ComputePassEncoder.SetBindGroup consume.
type BindGroup struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
}

// NewBindGroup creates a BindGroup on d.
func (d *Device) NewBindGroup(desc *BindGroupDescriptor) (*BindGroup, error) {
	native, err := d.backend.NewBindGroup(d.native, desc)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &BindGroup{
		h:       reg.wrap(KindBindGroup, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
	}, nil
}

// Handle returns g's opaque Handle.
func (g *BindGroup) Handle() Handle { return g.h }

// Destroy releases g.
func (g *BindGroup) Destroy() {
	if !reg.isLive(g.h) {
		return
	}
	g.backend.DestroyBindGroup(g.native)
	reg.unwrap(g.h)
}
