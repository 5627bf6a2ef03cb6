// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// BufferDescriptor configures a new Buffer, grounded on the teacher's
// driver.BufferDescriptor (core.go) generalized with the WebGPU-style
// MappedAtCreation flag github.com/gogpu/wgpu's buffer creation path
// exposes.
type BufferDescriptor struct {
	Size            int64
	Usage           BufferUsage
	MappedAtCreation bool
	Label           string
}

// Buffer is a linear region of device-visible memory.
type Buffer struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
	size    int64
	usage   BufferUsage
}

// NewBuffer allocates a Buffer on d.
func (d *Device) NewBuffer(desc *BufferDescriptor) (*Buffer, error) {
	native, err := d.backend.NewBuffer(d.native, desc)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &Buffer{
		h:       reg.wrap(KindBuffer, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
		size:    desc.Size,
		usage:   desc.Usage,
	}, nil
}

// Handle returns b's opaque Handle.
func (b *Buffer) Handle() Handle { return b.h }

// Native exposes b's backend-owned resource, for use by other Backend
// implementations (e.g. driver/vk.NewBindGroup) that receive b nested
// inside a descriptor rather than dereferenced by a driver package
// wrapper method.
func (b *Buffer) Native() Native { return b.native }

// Size reports b's byte length.
func (b *Buffer) Size() int64 { return b.size }

// Usage reports the usage mask b was created with.
func (b *Buffer) Usage() BufferUsage { return b.usage }

// MappedRange returns a direct []byte view over b's memory, valid only
// if b was created with MappedAtCreation (or has since been mapped by a
// backend-specific call outside this package's minimal surface) — per
// spec.md §6's "host-visible buffers may be read/written directly".
func (b *Buffer) MappedRange() []byte { return b.backend.BufferBytes(b.native) }

// Destroy releases b.
func (b *Buffer) Destroy() {
	if !reg.isLive(b.h) {
		return
	}
	b.backend.DestroyBuffer(b.native)
	reg.unwrap(b.h)
}

// TextureDimension selects a Texture's addressing shape.
type TextureDimension int

const (
	Texture1D TextureDimension = iota
	Texture2D
	Texture3D
)

// TextureDescriptor configures a new Texture, grounded on the teacher's
// driver.ImageDescriptor (core.go) renamed to match spec.md's "Texture"
// terminology.
type TextureDescriptor struct {
	Dimension    TextureDimension
	Format       PixelFmt
	Width        uint32
	Height       uint32
	DepthOrArrayLayers uint32
	MipLevels    uint32
	SampleCount  uint32
	Usage        TextureUsage
	Label        string
}

// Texture is a (possibly multi-dimensional, possibly multisampled,
// possibly mipmapped) image resource.
type Texture struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
	desc    TextureDescriptor
}

// NewTexture allocates a Texture on d. Newly-created textures start in
// LayoutUndefined (I6); the caller must Transition before first use.
func (d *Device) NewTexture(desc *TextureDescriptor) (*Texture, error) {
	native, err := d.backend.NewTexture(d.native, desc)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &Texture{
		h:       reg.wrap(KindTexture, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
		desc:    *desc,
	}, nil
}

// Handle returns t's opaque Handle.
func (t *Texture) Handle() Handle { return t.h }

// Descriptor returns the TextureDescriptor t was created from.
func (t *Texture) Descriptor() TextureDescriptor { return t.desc }

// Native exposes t's backend-owned resource; see Buffer.Native.
func (t *Texture) Native() Native { return t.native }

// Layout reports t's current layout, as tracked by the owning backend
// (native on the explicit backend, emulated bookkeeping on the implicit
// one — both paths exist purely to satisfy I6).
func (t *Texture) Layout() Layout { return t.backend.TextureLayout(t.native) }

// TextureViewDescriptor configures a TextureView over a sub-range of a
// Texture's mip levels and array layers.
type TextureViewDescriptor struct {
	Format         PixelFmt
	BaseMipLevel   uint32
	MipLevelCount  uint32
	BaseArrayLayer uint32
	ArrayLayerCount uint32
	Aspect         TextureAspect
	Label          string
}

// TextureAspect selects which aspect(s) of a depth/stencil format a
// TextureView exposes (P5: depth-only vs. stencil-only views must not
// alias).
type TextureAspect int

const (
	AspectAll TextureAspect = iota
	AspectDepthOnly
	AspectStencilOnly
)

// TextureView is a typed, range-bound view over a Texture, the unit
// bound to render-pass attachments and shader resource bindings.
type TextureView struct {
	h       Handle
	texture *Texture
	backend Backend
	native  Native
	desc    TextureViewDescriptor
}

// NewView creates a TextureView over a sub-range of t. desc.MipLevelCount
// and ArrayLayerCount of zero mean "remainder from Base*", mirroring
// WebGPU's GPUTextureViewDescriptor default-expansion rule.
func (t *Texture) NewView(desc *TextureViewDescriptor) (*TextureView, error) {
	if desc.MipLevelCount == 0 && desc.BaseMipLevel < t.desc.MipLevels {
		desc.MipLevelCount = t.desc.MipLevels - desc.BaseMipLevel
	}
	if desc.ArrayLayerCount == 0 && desc.BaseArrayLayer < t.desc.DepthOrArrayLayers {
		desc.ArrayLayerCount = t.desc.DepthOrArrayLayers - desc.BaseArrayLayer
	}
	if uint64(desc.BaseMipLevel)+uint64(desc.MipLevelCount) > uint64(t.desc.MipLevels) ||
		uint64(desc.BaseArrayLayer)+uint64(desc.ArrayLayerCount) > uint64(t.desc.DepthOrArrayLayers) {
		err := errf(InvalidArgument, "texture view range exceeds texture extent")
		t.device.errScopes.report(err)
		return nil, err
	}
	native, err := t.backend.TextureNewView(t.native, desc)
	if err != nil {
		t.device.errScopes.report(err)
		return nil, err
	}
	return &TextureView{
		h:       reg.wrap(KindTextureView, mustBackendID(t.h)),
		texture: t,
		backend: t.backend,
		native:  native,
		desc:    *desc,
	}, nil
}

// Handle returns v's opaque Handle.
func (v *TextureView) Handle() Handle { return v.h }

// Native exposes v's backend-owned resource; see Buffer.Native.
func (v *TextureView) Native() Native { return v.native }

// Destroy releases v.
func (v *TextureView) Destroy() {
	if !reg.isLive(v.h) {
		return
	}
	v.backend.DestroyTextureView(v.native)
	reg.unwrap(v.h)
}

// Destroy releases t. Any TextureView created over t must be destroyed
// first (I2); this package does not enforce the ordering itself.
func (t *Texture) Destroy() {
	if !reg.isLive(t.h) {
		return
	}
	t.backend.DestroyTexture(t.native)
	reg.unwrap(t.h)
}

// FilterMode selects nearest- or linear-neighbor sampling.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// AddressMode selects a Sampler's out-of-[0,1] coordinate behavior.
type AddressMode int

const (
	AddressClampToEdge AddressMode = iota
	AddressRepeat
	AddressMirrorRepeat
)

// CompareFunc selects comparison-sampler behavior (shadow maps).
type CompareFunc int

const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// SamplingDescriptor configures a new Sampler.
type SamplingDescriptor struct {
	MinFilter    FilterMode
	MagFilter    FilterMode
	MipFilter    FilterMode
	AddressU     AddressMode
	AddressV     AddressMode
	AddressW     AddressMode
	LODMinClamp  float32
	LODMaxClamp  float32
	MaxAnisotropy uint32
	Compare      *CompareFunc
	Label        string
}

// Sampler configures how a shader reads a TextureView.
type Sampler struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
}

// NewSampler creates a Sampler on d.
func (d *Device) NewSampler(desc *SamplingDescriptor) (*Sampler, error) {
	native, err := d.backend.NewSampler(d.native, desc)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &Sampler{
		h:       reg.wrap(KindSampler, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
	}, nil
}

// Handle returns s's opaque Handle.
func (s *Sampler) Handle() Handle { return s.h }

// Native exposes s's backend-owned resource; see Buffer.Native.
func (s *Sampler) Native() Native { return s.native }

// Destroy releases s.
func (s *Sampler) Destroy() {
	if !reg.isLive(s.h) {
		return
	}
	s.backend.DestroySampler(s.native)
	reg.unwrap(s.h)
}
