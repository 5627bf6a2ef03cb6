// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// BufferCopy describes a buffer-to-buffer copy region.
type BufferCopy struct {
	Src, Dst       *Buffer
	SrcOffset, DstOffset int64
	Size           int64
}

// TextureCopyLocation pins a copy endpoint to a specific mip level and
// array-layer range of a Texture.
type TextureCopyLocation struct {
	Texture  *Texture
	MipLevel uint32
	ArrayLayer uint32
	Origin   [3]uint32
}

// ImageCopy describes a texture-to-texture copy region, grounded on the
// teacher's driver.ImageCopy (core.go).
type ImageCopy struct {
	Src, Dst TextureCopyLocation
	Extent   [3]uint32
}

// BufImgCopy describes a buffer<->texture copy region (either direction,
// selected by which Backend method is invoked), grounded on the
// teacher's driver.BufImgCopy (core.go).
type BufImgCopy struct {
	Buffer       *Buffer
	BufferOffset int64
	BytesPerRow  uint32
	RowsPerImage uint32
	Texture      TextureCopyLocation
	Extent       [3]uint32
}

// Barrier describes an explicit pipeline barrier: a synchronization
// point between pipeline stages guarding a set of memory accesses
// (spec.md §4.2.1). The implicit backend records nothing for it — WGPU
// infers all such ordering from command-submission order. A Barrier
// carries no layout; the I6 layout check is done by
// CommandEncoder.Transition.
type Barrier struct {
	SrcStage  PipelineStage
	DstStage  PipelineStage
	SrcAccess AccessFlags
	DstAccess AccessFlags
}

// Transition describes an explicit texture layout transition
// accompanying a Barrier, grounded on the teacher's driver.Transition
// (core.go). OldLayout must match the texture's currently-tracked
// layout or the call fails with InvalidArgument (I6).
type Transition struct {
	Texture   *Texture
	OldLayout Layout
	NewLayout Layout
	BaseMipLevel   uint32
	MipLevelCount  uint32
	BaseArrayLayer uint32
	ArrayLayerCount uint32
}

// encoderState tracks a CommandEncoder's position in the Reset ->
// Recording -> Finished cycle spec.md §4.2.5 requires for encoder reuse
// across frames (I5).
type encoderState int

const (
	encoderReset encoderState = iota
	encoderRecording
	encoderFinished
)

// CommandEncoder records a sequence of GPU commands for later
// submission via Queue.Submit, grounded on the teacher's
// driver.CmdBuffer (core.go) split into a record-time encoder (this
// type) versus the opaque, submit-ready buffer it produces on End. Per
// I5, e moves Reset -> Recording on Begin, Recording -> Finished on
// End, and Finished (or Recording) -> Reset on Reset; Queue.Submit
// rejects any encoder not in the Finished state.
type CommandEncoder struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
	state   encoderState
}

// NewCommandEncoder creates a CommandEncoder on d and immediately begins
// it, so it is ready to record without a separate Begin call. Reusing e
// for a later frame requires Reset followed by Begin.
func (d *Device) NewCommandEncoder() (*CommandEncoder, error) {
	native, err := d.backend.NewCommandEncoder(d.native)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	e := &CommandEncoder{
		h:       reg.wrap(KindCommandEncoder, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
		state:   encoderReset,
	}
	if err := e.Begin(); err != nil {
		return nil, err
	}
	return e, nil
}

// Handle returns e's opaque Handle.
func (e *CommandEncoder) Handle() Handle { return e.h }

// Begin transitions e from Reset to Recording, the only state Begin may
// be called from (I5); calling it while Recording or Finished returns
// InvalidArgument.
func (e *CommandEncoder) Begin() error {
	if e.state != encoderReset {
		err := errf(InvalidArgument, "CommandEncoder.Begin: encoder is not in the reset state")
		e.device.errScopes.report(err)
		return err
	}
	if err := e.backend.EncoderBegin(e.native); err != nil {
		e.device.errScopes.report(err)
		return err
	}
	e.state = encoderRecording
	return nil
}

// Reset discards any recorded (or finished-but-unsubmitted) commands
// and returns e to the Reset state, ready for a fresh Begin. Reset is
// valid from Recording or Finished; calling it while already Reset
// returns InvalidArgument.
func (e *CommandEncoder) Reset() error {
	if e.state == encoderReset {
		err := errf(InvalidArgument, "CommandEncoder.Reset: encoder is already reset")
		e.device.errScopes.report(err)
		return err
	}
	if err := e.backend.EncoderReset(e.native); err != nil {
		e.device.errScopes.report(err)
		return err
	}
	e.state = encoderReset
	return nil
}

// BeginRenderPass starts recording render commands into pass, bound to
// fb, clearing attachments per clear where their LoadOp is LoadClear.
// len(clear) must equal the framebuffer's total attachment count
// (color attachments, then depth/stencil if present).
func (e *CommandEncoder) BeginRenderPass(pass *RenderPass, fb *Framebuffer, clear []ClearValue) (*RenderPassEncoder, error) {
	if e.state != encoderRecording {
		err := errf(InvalidArgument, "CommandEncoder.BeginRenderPass: encoder is not recording")
		e.device.errScopes.report(err)
		return nil, err
	}
	native, err := e.backend.BeginRenderPass(e.native, pass.native, fb.native, clear)
	if err != nil {
		e.device.errScopes.report(err)
		return nil, err
	}
	return &RenderPassEncoder{
		h:       reg.wrap(KindRenderPassEncoder, mustBackendID(e.h)),
		enc:     e,
		backend: e.backend,
		native:  native,
	}, nil
}

// BeginComputePass starts recording compute commands.
func (e *CommandEncoder) BeginComputePass() (*ComputePassEncoder, error) {
	if e.state != encoderRecording {
		err := errf(InvalidArgument, "CommandEncoder.BeginComputePass: encoder is not recording")
		e.device.errScopes.report(err)
		return nil, err
	}
	native, err := e.backend.BeginComputePass(e.native)
	if err != nil {
		e.device.errScopes.report(err)
		return nil, err
	}
	return &ComputePassEncoder{
		h:       reg.wrap(KindComputePassEncoder, mustBackendID(e.h)),
		enc:     e,
		backend: e.backend,
		native:  native,
	}, nil
}

// CopyBufferToBuffer records a buffer-to-buffer copy.
func (e *CommandEncoder) CopyBufferToBuffer(c *BufferCopy) { e.backend.CopyBufferToBuffer(e.native, c) }

// CopyBufferToTexture records a buffer-to-texture copy.
func (e *CommandEncoder) CopyBufferToTexture(c *BufImgCopy) {
	e.backend.CopyBufferToTexture(e.native, c)
}

// CopyTextureToBuffer records a texture-to-buffer copy.
func (e *CommandEncoder) CopyTextureToBuffer(c *BufImgCopy) {
	e.backend.CopyTextureToBuffer(e.native, c)
}

// CopyTextureToTexture records a texture-to-texture copy.
func (e *CommandEncoder) CopyTextureToTexture(c *ImageCopy) {
	e.backend.CopyTextureToTexture(e.native, c)
}

// Barrier records explicit pipeline barriers (spec.md §4.2.1). On the
// implicit backend this records nothing.
func (e *CommandEncoder) Barrier(b []Barrier) { e.backend.Barrier(e.native, b) }

// Transition records explicit texture layout transitions accompanying a
// Barrier. Each Transition's OldLayout is validated against the
// texture's currently-tracked layout (I6) before being applied.
func (e *CommandEncoder) Transition(t []Transition) error {
	if e.state != encoderRecording {
		err := errf(InvalidArgument, "CommandEncoder.Transition: encoder is not recording")
		e.device.errScopes.report(err)
		return err
	}
	for i := range t {
		if cur := t[i].Texture.Layout(); cur != t[i].OldLayout {
			err := errf(InvalidArgument, "transition[%d]: texture layout is %v, not claimed old layout %v", i, cur, t[i].OldLayout)
			e.device.errScopes.report(err)
			return err
		}
	}
	e.backend.Transition(e.native, t)
	return nil
}

// End finishes recording, producing a command buffer ready for
// Queue.Submit. Valid only from Recording (I5); calling it while Reset
// or already Finished returns InvalidArgument.
func (e *CommandEncoder) End() error {
	if e.state != encoderRecording {
		err := errf(InvalidArgument, "CommandEncoder.End: encoder is not recording")
		e.device.errScopes.report(err)
		return err
	}
	if err := e.backend.EncoderEnd(e.native); err != nil {
		e.device.errScopes.report(err)
		return err
	}
	e.state = encoderFinished
	return nil
}

// Destroy releases e without submitting it.
func (e *CommandEncoder) Destroy() {
	if !reg.isLive(e.h) {
		return
	}
	e.backend.DestroyCommandEncoder(e.native)
	reg.unwrap(e.h)
}

// RenderPassEncoder records commands within one BeginRenderPass/End
// scope.
type RenderPassEncoder struct {
	h       Handle
	enc     *CommandEncoder
	backend Backend
	native  Native
}

// Handle returns p's opaque Handle.
func (p *RenderPassEncoder) Handle() Handle { return p.h }

// SetPipeline binds pl for subsequent draw calls.
func (p *RenderPassEncoder) SetPipeline(pl *RenderPipeline) { p.backend.SetPipeline(p.native, pl.native) }

// SetViewport sets one or more viewports (index implied by slice order).
func (p *RenderPassEncoder) SetViewport(vp []Viewport) { p.backend.SetViewport(p.native, vp) }

// SetScissor sets one or more scissor rectangles.
func (p *RenderPassEncoder) SetScissor(s []Scissor) { p.backend.SetScissor(p.native, s) }

// SetVertexBuffer binds buf at slot, starting at byte offset off.
func (p *RenderPassEncoder) SetVertexBuffer(slot int, buf *Buffer, off int64) {
	p.backend.SetVertexBuffer(p.native, slot, buf.native, off)
}

// SetIndexBuffer binds buf as the index buffer, starting at byte offset
// off, in format.
func (p *RenderPassEncoder) SetIndexBuffer(buf *Buffer, format IndexFmt, off int64) {
	p.backend.SetIndexBuffer(p.native, buf.native, format, off)
}

// SetBindGroup binds group at index, supplying dynOffsets for any
// dynamic-offset bindings the group's layout declares; every offset
// must already satisfy MinUniformAlignment (P4); neither this method nor
// any backend checks them.
func (p *RenderPassEncoder) SetBindGroup(index int, group *BindGroup, dynOffsets []uint32) {
	p.backend.SetBindGroup(p.native, index, group.native, dynOffsets)
}

// Draw records a non-indexed draw call.
func (p *RenderPassEncoder) Draw(vertCount, instCount, baseVert, baseInst int) {
	p.backend.Draw(p.native, vertCount, instCount, baseVert, baseInst)
}

// DrawIndexed records an indexed draw call.
func (p *RenderPassEncoder) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	p.backend.DrawIndexed(p.native, idxCount, instCount, baseIdx, vertOff, baseInst)
}

// End finishes the render pass.
func (p *RenderPassEncoder) End() {
	p.backend.EndRenderPass(p.native)
	reg.unwrap(p.h)
}

// ComputePassEncoder records commands within one BeginComputePass/End
// scope.
type ComputePassEncoder struct {
	h       Handle
	enc     *CommandEncoder
	backend Backend
	native  Native
}

// Handle returns p's opaque Handle.
func (p *ComputePassEncoder) Handle() Handle { return p.h }

// SetPipeline binds pl for subsequent dispatches.
func (p *ComputePassEncoder) SetPipeline(pl *ComputePipeline) { p.backend.SetPipeline(p.native, pl.native) }

// SetBindGroup binds group at index.
func (p *ComputePassEncoder) SetBindGroup(index int, group *BindGroup, dynOffsets []uint32) {
	p.backend.SetBindGroup(p.native, index, group.native, dynOffsets)
}

// Dispatch records a compute dispatch of x*y*z workgroups.
func (p *ComputePassEncoder) Dispatch(x, y, z int) { p.backend.Dispatch(p.native, x, y, z) }

// End finishes the compute pass.
func (p *ComputePassEncoder) End() {
	p.backend.EndComputePass(p.native)
	reg.unwrap(p.h)
}
