// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/kestrelgpu/gfx/driver"
)

// pipelineLayoutFor builds a hal.PipelineLayout from the BindGroupLayouts
// a GraphState/CompState carries directly, since this package's public
// API (unlike hal's own) has no standalone PipelineLayout wrapper type —
// grounded on the teacher's own driver/vk.pipelineLayoutFor which does
// the same one-layout-per-pipeline construction against
// VkPipelineLayoutCreateInfo.
func pipelineLayoutFor(nd *nativeDevice, layouts []*driver.BindGroupLayout) (hal.PipelineLayout, error) {
	halLayouts := make([]hal.BindGroupLayout, len(layouts))
	for i, l := range layouts {
		halLayouts[i] = l.Native().(*nativeBindGroupLayout).layout
	}
	return nd.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{BindGroupLayouts: halLayouts})
}

func vertexBufferLayoutToGPU(l driver.VertexBufferLayout) gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = gputypes.VertexAttribute{
			Format:         vertexFormatToGPU(a.Format),
			Offset:         uint64(a.Offset),
			ShaderLocation: a.ShaderLocation,
		}
	}
	stepMode := gputypes.VertexStepModeVertex
	if l.StepMode == driver.VertexStepInstance {
		stepMode = gputypes.VertexStepModeInstance
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(l.Stride),
		StepMode:    stepMode,
		Attributes:  attrs,
	}
}

func blendComponentToGPU(c driver.BlendComponent) gputypes.BlendComponent {
	return gputypes.BlendComponent{
		SrcFactor: blendFactorToGPU(c.SrcFactor),
		DstFactor: blendFactorToGPU(c.DstFactor),
		Operation: blendOpToGPU(c.Op),
	}
}

func colorTargetStateToGPU(c driver.ColorTargetState) gputypes.ColorTargetState {
	out := gputypes.ColorTargetState{
		Format:    pixelFmtToGPU(c.Format),
		WriteMask: colorWriteMaskToGPU(c.WriteMask),
	}
	if c.Blend != nil {
		out.Blend = &gputypes.BlendState{
			Color: blendComponentToGPU(c.Blend.Color),
			Alpha: blendComponentToGPU(c.Blend.Alpha),
		}
	}
	return out
}

func depthStencilStateToHAL(d *driver.DepthStencilState) *hal.DepthStencilState {
	if d == nil {
		return nil
	}
	return &hal.DepthStencilState{
		Format:            pixelFmtToGPU(d.Format),
		DepthWriteEnabled: d.DepthWriteEnabled,
		DepthCompare:      compareFuncToGPU(d.DepthCompare),
		StencilFront:      hal.StencilFaceState{Compare: gputypes.CompareFunctionAlways, FailOp: hal.StencilOperationKeep, DepthFailOp: hal.StencilOperationKeep, PassOp: hal.StencilOperationKeep},
		StencilBack:       hal.StencilFaceState{Compare: gputypes.CompareFunctionAlways, FailOp: hal.StencilOperationKeep, DepthFailOp: hal.StencilOperationKeep, PassOp: hal.StencilOperationKeep},
	}
}

type nativeRenderPipeline struct {
	dev    *nativeDevice
	pl     hal.RenderPipeline
	layout hal.PipelineLayout
}

func (b *wgpuBackend) NewRenderPipeline(n driver.Native, state *driver.GraphState) (driver.Native, error) {
	nd := n.(*nativeDevice)
	layout, err := pipelineLayoutFor(nd, state.BindGroupLayouts)
	if err != nil {
		return nil, errf(driver.InvalidArgument, "webgpu: creating pipeline layout: %v", err)
	}

	targets := make([]gputypes.ColorTargetState, len(state.ColorTargets))
	for i, t := range state.ColorTargets {
		targets[i] = colorTargetStateToGPU(t)
	}
	buffers := make([]gputypes.VertexBufferLayout, len(state.VertexBuffers))
	for i, vb := range state.VertexBuffers {
		buffers[i] = vertexBufferLayoutToGPU(vb)
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  state.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     state.VertexShader.Native().(*nativeShader).mod,
			EntryPoint: state.VertexEntryPoint,
			Buffers:    buffers,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  topologyToGPU(state.Topology),
			CullMode:  cullModeToGPU(state.CullMode),
			FrontFace: frontFaceToGPU(state.FrontFace),
		},
		DepthStencil: depthStencilStateToHAL(state.DepthStencil),
		Multisample:  gputypes.MultisampleState{Count: maxu32(state.SampleCount, 1)},
	}
	if state.FragmentShader != nil {
		desc.Fragment = &hal.FragmentState{
			Module:     state.FragmentShader.Native().(*nativeShader).mod,
			EntryPoint: state.FragmentEntryPoint,
			Targets:    targets,
		}
	}

	pl, err := nd.dev.CreateRenderPipeline(desc)
	if err != nil {
		nd.dev.DestroyPipelineLayout(layout)
		return nil, errf(driver.InvalidArgument, "webgpu: creating render pipeline %q: %v", state.Label, err)
	}
	return &nativeRenderPipeline{dev: nd, pl: pl, layout: layout}, nil
}

func maxu32(v, min uint32) uint32 {
	if v < min {
		return min
	}
	return v
}

func (b *wgpuBackend) DestroyRenderPipeline(n driver.Native) {
	np := n.(*nativeRenderPipeline)
	np.dev.dev.DestroyRenderPipeline(np.pl)
	np.dev.dev.DestroyPipelineLayout(np.layout)
}

type nativeComputePipeline struct {
	dev    *nativeDevice
	pl     hal.ComputePipeline
	layout hal.PipelineLayout
}

func (b *wgpuBackend) NewComputePipeline(n driver.Native, state *driver.CompState) (driver.Native, error) {
	nd := n.(*nativeDevice)
	layout, err := pipelineLayoutFor(nd, state.BindGroupLayouts)
	if err != nil {
		return nil, errf(driver.InvalidArgument, "webgpu: creating pipeline layout: %v", err)
	}
	pl, err := nd.dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  state.Label,
		Layout: layout,
		Compute: hal.ComputeState{
			Module:     state.Shader.Native().(*nativeShader).mod,
			EntryPoint: state.EntryPoint,
		},
	})
	if err != nil {
		nd.dev.DestroyPipelineLayout(layout)
		return nil, errf(driver.InvalidArgument, "webgpu: creating compute pipeline %q: %v", state.Label, err)
	}
	return &nativeComputePipeline{dev: nd, pl: pl, layout: layout}, nil
}

func (b *wgpuBackend) DestroyComputePipeline(n driver.Native) {
	np := n.(*nativeComputePipeline)
	np.dev.dev.DestroyComputePipeline(np.pl)
	np.dev.dev.DestroyPipelineLayout(np.layout)
}
