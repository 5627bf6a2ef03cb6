// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// LoadOp selects how an attachment's previous contents are treated at
// the start of a render pass.
type LoadOp int

const (
	LoadLoad LoadOp = iota
	LoadClear
	LoadDontCare
)

// StoreOp selects whether an attachment's contents are preserved past
// the end of a render pass.
type StoreOp int

const (
	StoreStore StoreOp = iota
	StoreDiscard
)

// ClearValue is the color or depth/stencil value used when an
// attachment's LoadOp is LoadClear.
type ClearValue struct {
	Color        [4]float32
	Depth        float32
	Stencil      uint32
}

// AttachmentDescriptor describes one color or depth/stencil attachment
// slot within a RenderPassDescriptor, grounded on the teacher's
// driver.ColorTarget/DSTarget (core.go) collapsed to a single shape —
// the format is fixed at pass-creation time; the concrete TextureView is
// supplied later, per attachment index, by FramebufferDescriptor.
type AttachmentDescriptor struct {
	Format      PixelFmt
	SampleCount uint32
	Load        LoadOp
	Store       StoreOp
	StencilLoad LoadOp
	StencilStore StoreOp
}

// RenderPassDescriptor describes a RenderPass's attachment layout,
// independent of the concrete views used in any one Framebuffer — the
// same "render pass is a compatibility class, framebuffer binds actual
// images" split Vulkan uses and spec.md §4.2.2 calls out explicitly.
type RenderPassDescriptor struct {
	ColorAttachments []AttachmentDescriptor
	DepthStencil     *AttachmentDescriptor
	Label            string
}

// RenderPass groups a fixed set of attachment formats/load-store ops
// that one or more Framebuffers can be bound against. On the implicit
// backend this value exists purely so application code can share one
// RenderPassDescriptor.Load/Store configuration across several
// Framebuffers; WGPU itself has no persistent render-pass object
// (see DESIGN.md, open question 3).
type RenderPass struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
	desc    RenderPassDescriptor
}

// NewRenderPass creates a RenderPass on d.
func (d *Device) NewRenderPass(desc *RenderPassDescriptor) (*RenderPass, error) {
	native, err := d.backend.NewRenderPass(d.native, desc)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &RenderPass{
		h:       reg.wrap(KindRenderPass, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
		desc:    *desc,
	}, nil
}

// Handle returns p's opaque Handle.
func (p *RenderPass) Handle() Handle { return p.h }

// Descriptor returns the RenderPassDescriptor p was created from.
func (p *RenderPass) Descriptor() RenderPassDescriptor { return p.desc }

// Destroy releases p. On the explicit backend a RenderPass is
// size-independent and is not recreated on surface resize (DESIGN.md
// open-question decision); only a resize of the attachment formats
// themselves requires a new RenderPass.
func (p *RenderPass) Destroy() {
	if !reg.isLive(p.h) {
		return
	}
	p.backend.DestroyRenderPass(p.native)
	reg.unwrap(p.h)
}

// FramebufferDescriptor binds concrete TextureViews to a RenderPass's
// attachment slots, in the same order as the pass's
// ColorAttachments/DepthStencil.
type FramebufferDescriptor struct {
	ColorViews  []*TextureView
	DepthStencilView *TextureView
	Width       uint32
	Height      uint32
	Label       string
}

// Framebuffer is a RenderPass bound to concrete attachment images. A
// Framebuffer must be recreated whenever the surface resizes (P6), since
// its TextureViews reference a specific swapchain image's extent.
type Framebuffer struct {
	h       Handle
	pass    *RenderPass
	backend Backend
	native  Native
}

// NewFramebuffer creates a Framebuffer binding desc's views to p.
func (p *RenderPass) NewFramebuffer(desc *FramebufferDescriptor) (*Framebuffer, error) {
	if len(desc.ColorViews) != len(p.desc.ColorAttachments) {
		err := errf(InvalidArgument, "framebuffer color view count %d does not match render pass attachment count %d",
			len(desc.ColorViews), len(p.desc.ColorAttachments))
		p.device.errScopes.report(err)
		return nil, err
	}
	if (desc.DepthStencilView != nil) != (p.desc.DepthStencil != nil) {
		err := errf(InvalidArgument, "framebuffer depth/stencil view presence does not match render pass")
		p.device.errScopes.report(err)
		return nil, err
	}
	native, err := p.backend.NewFramebuffer(p.native, desc)
	if err != nil {
		p.device.errScopes.report(err)
		return nil, err
	}
	return &Framebuffer{
		h:       reg.wrap(KindFramebuffer, mustBackendID(p.h)),
		pass:    p,
		backend: p.backend,
		native:  native,
	}, nil
}

// Handle returns f's opaque Handle.
func (f *Framebuffer) Handle() Handle { return f.h }

// Destroy releases f.
func (f *Framebuffer) Destroy() {
	if !reg.isLive(f.h) {
		return
	}
	f.backend.DestroyFramebuffer(f.native)
	reg.unwrap(f.h)
}
