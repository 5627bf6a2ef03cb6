// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// Topology selects how vertices are assembled into primitives, grounded
// on the teacher's driver.Topology (core.go).
type Topology int

const (
	TopologyPointList Topology = iota
	TopologyLineList
	TopologyLineStrip
	TopologyTriangleList
	TopologyTriangleStrip
)

// CullMode selects which primitive winding is discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// FrontFace selects which vertex winding counts as front-facing.
type FrontFace int

const (
	FrontCCW FrontFace = iota
	FrontCW
)

// VertexFormat describes the in-memory layout of one vertex attribute.
type VertexFormat int

const (
	VertexFloat32 VertexFormat = iota
	VertexFloat32x2
	VertexFloat32x3
	VertexFloat32x4
	VertexUint32
	VertexSint32
	VertexUnorm8x4
)

// VertexAttribute binds one shader input location to a byte offset
// within a vertex-buffer element.
type VertexAttribute struct {
	Format        VertexFormat
	Offset        int64
	ShaderLocation uint32
}

// VertexStepMode selects whether a vertex buffer advances per-vertex or
// per-instance.
type VertexStepMode int

const (
	StepVertex VertexStepMode = iota
	StepInstance
)

// VertexBufferLayout describes the stride and attribute set of one
// vertex-buffer binding slot.
type VertexBufferLayout struct {
	Stride     int64
	StepMode   VertexStepMode
	Attributes []VertexAttribute
}

// BlendFactor selects a blend-equation operand.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
)

// BlendOp selects a blend-equation combine operation.
type BlendOp int

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

// BlendComponent configures one channel (color or alpha) of a blend
// state.
type BlendComponent struct {
	SrcFactor BlendFactor
	DstFactor BlendFactor
	Op        BlendOp
}

// ColorTargetState configures one fragment-output's format, optional
// blend state and write mask.
type ColorTargetState struct {
	Format    PixelFmt
	Blend     *struct{ Color, Alpha BlendComponent }
	WriteMask ColorWriteMask
}

// DepthStencilState configures depth testing and stencil operations for
// a GraphState.
type DepthStencilState struct {
	Format            PixelFmt
	DepthWriteEnabled bool
	DepthCompare      CompareFunc
}

// GraphState fully describes a render (graphics) pipeline, grounded on
// the teacher's driver.GraphState (core.go) with vertex/fragment shader
// references replaced by the generalized Shader type.
type GraphState struct {
	VertexShader     *Shader
	VertexEntryPoint string
	FragmentShader   *Shader
	FragmentEntryPoint string
	VertexBuffers    []VertexBufferLayout
	BindGroupLayouts []*BindGroupLayout
	Topology         Topology
	CullMode         CullMode
	FrontFace        FrontFace
	ColorTargets     []ColorTargetState
	DepthStencil     *DepthStencilState
	SampleCount      uint32
	Label            string
}

// RenderPipeline is a fully-linked, validated graphics pipeline ready to
// be bound within a RenderPassEncoder.
type RenderPipeline struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
}

// NewRenderPipeline compiles state into a RenderPipeline on d.
func (d *Device) NewRenderPipeline(state *GraphState) (*RenderPipeline, error) {
	native, err := d.backend.NewRenderPipeline(d.native, state)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &RenderPipeline{
		h:       reg.wrap(KindRenderPipeline, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
	}, nil
}

// Handle returns p's opaque Handle.
func (p *RenderPipeline) Handle() Handle { return p.h }

// Destroy releases p.
func (p *RenderPipeline) Destroy() {
	if !reg.isLive(p.h) {
		return
	}
	p.backend.DestroyRenderPipeline(p.native)
	reg.unwrap(p.h)
}

// CompState fully describes a compute pipeline, grounded on the
// teacher's driver.CompState (core.go).
type CompState struct {
	Shader           *Shader
	EntryPoint       string
	BindGroupLayouts []*BindGroupLayout
	Label            string
}

// ComputePipeline is a fully-linked, validated compute pipeline ready to
// be bound within a ComputePassEncoder.
type ComputePipeline struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
}

// NewComputePipeline compiles state into a ComputePipeline on d.
func (d *Device) NewComputePipeline(state *CompState) (*ComputePipeline, error) {
	native, err := d.backend.NewComputePipeline(d.native, state)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &ComputePipeline{
		h:       reg.wrap(KindComputePipeline, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
	}, nil
}

// Handle returns p's opaque Handle.
func (p *ComputePipeline) Handle() Handle { return p.h }

// Destroy releases p.
func (p *ComputePipeline) Destroy() {
	if !reg.isLive(p.h) {
		return
	}
	p.backend.DestroyComputePipeline(p.native)
	reg.unwrap(p.h)
}

// Viewport describes a render pass's viewport transform.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// Scissor describes a render pass's scissor rectangle, in integer
// framebuffer coordinates.
type Scissor struct {
	X, Y, Width, Height int32
}

// IndexFmt selects the element width of an index buffer.
type IndexFmt int

const (
	IndexUint16 IndexFmt = iota
	IndexUint32
)
