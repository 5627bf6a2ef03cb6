// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <vulkan/vulkan.h>
import "C"

import (
	"unsafe"

	"github.com/kestrelgpu/gfx/driver"
)

type nativeRenderPipeline struct {
	dev    C.VkDevice
	layout C.VkPipelineLayout
	pl     C.VkPipeline
}

func topologyToVk(t driver.Topology) C.VkPrimitiveTopology {
	switch t {
	case driver.TopologyPointList:
		return C.VK_PRIMITIVE_TOPOLOGY_POINT_LIST
	case driver.TopologyLineList:
		return C.VK_PRIMITIVE_TOPOLOGY_LINE_LIST
	case driver.TopologyLineStrip:
		return C.VK_PRIMITIVE_TOPOLOGY_LINE_STRIP
	case driver.TopologyTriangleStrip:
		return C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_STRIP
	default:
		return C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_LIST
	}
}

func cullModeToVk(c driver.CullMode) C.VkCullModeFlags {
	switch c {
	case driver.CullFront:
		return C.VK_CULL_MODE_FRONT_BIT
	case driver.CullBack:
		return C.VK_CULL_MODE_BACK_BIT
	default:
		return C.VK_CULL_MODE_NONE
	}
}

func frontFaceToVk(f driver.FrontFace) C.VkFrontFace {
	if f == driver.FrontCW {
		return C.VK_FRONT_FACE_CLOCKWISE
	}
	return C.VK_FRONT_FACE_COUNTER_CLOCKWISE
}

func vertexFormatToVk(f driver.VertexFormat) C.VkFormat {
	switch f {
	case driver.VertexFloat32:
		return C.VK_FORMAT_R32_SFLOAT
	case driver.VertexFloat32x2:
		return C.VK_FORMAT_R32G32_SFLOAT
	case driver.VertexFloat32x3:
		return C.VK_FORMAT_R32G32B32_SFLOAT
	case driver.VertexFloat32x4:
		return C.VK_FORMAT_R32G32B32A32_SFLOAT
	case driver.VertexUint32:
		return C.VK_FORMAT_R32_UINT
	case driver.VertexSint32:
		return C.VK_FORMAT_R32_SINT
	case driver.VertexUnorm8x4:
		return C.VK_FORMAT_R8G8B8A8_UNORM
	default:
		return C.VK_FORMAT_UNDEFINED
	}
}

func blendFactorToVk(f driver.BlendFactor) C.VkBlendFactor {
	switch f {
	case driver.BlendOne:
		return C.VK_BLEND_FACTOR_ONE
	case driver.BlendSrcAlpha:
		return C.VK_BLEND_FACTOR_SRC_ALPHA
	case driver.BlendOneMinusSrcAlpha:
		return C.VK_BLEND_FACTOR_ONE_MINUS_SRC_ALPHA
	case driver.BlendDstAlpha:
		return C.VK_BLEND_FACTOR_DST_ALPHA
	case driver.BlendOneMinusDstAlpha:
		return C.VK_BLEND_FACTOR_ONE_MINUS_DST_ALPHA
	case driver.BlendSrcColor:
		return C.VK_BLEND_FACTOR_SRC_COLOR
	case driver.BlendOneMinusSrcColor:
		return C.VK_BLEND_FACTOR_ONE_MINUS_SRC_COLOR
	case driver.BlendDstColor:
		return C.VK_BLEND_FACTOR_DST_COLOR
	case driver.BlendOneMinusDstColor:
		return C.VK_BLEND_FACTOR_ONE_MINUS_DST_COLOR
	default:
		return C.VK_BLEND_FACTOR_ZERO
	}
}

func blendOpToVk(o driver.BlendOp) C.VkBlendOp {
	switch o {
	case driver.BlendOpSubtract:
		return C.VK_BLEND_OP_SUBTRACT
	case driver.BlendOpReverseSubtract:
		return C.VK_BLEND_OP_REVERSE_SUBTRACT
	case driver.BlendOpMin:
		return C.VK_BLEND_OP_MIN
	case driver.BlendOpMax:
		return C.VK_BLEND_OP_MAX
	default:
		return C.VK_BLEND_OP_ADD
	}
}

// pipelineLayoutFor builds a VkPipelineLayout from the BindGroupLayouts
// a GraphState/CompState references, one VkDescriptorSetLayout per
// slot in declaration order (spec.md §4.2's "descriptor set index ==
// bind group index" convention).
func pipelineLayoutFor(dev C.VkDevice, layouts []*driver.BindGroupLayout) (C.VkPipelineLayout, error) {
	sets := make([]C.VkDescriptorSetLayout, len(layouts))
	for i, l := range layouts {
		sets[i] = l.Native().(*nativeBindGroupLayout).layout
	}
	info := C.VkPipelineLayoutCreateInfo{
		sType:          C.VK_STRUCTURE_TYPE_PIPELINE_LAYOUT_CREATE_INFO,
		setLayoutCount: C.uint32_t(len(sets)),
	}
	if len(sets) > 0 {
		info.pSetLayouts = &sets[0]
	}
	var layout C.VkPipelineLayout
	if err := checkResult(C.vkCreatePipelineLayout(dev, &info, nil, &layout)); err != nil {
		return nil, err
	}
	return layout, nil
}

func (b *vkBackend) NewRenderPipeline(n driver.Native, state *driver.GraphState) (driver.Native, error) {
	nd := n.(*nativeDevice)

	layout, err := pipelineLayoutFor(nd.dev, state.BindGroupLayouts)
	if err != nil {
		return nil, err
	}

	entryVS := C.CString(state.VertexEntryPoint)
	defer C.free(unsafe.Pointer(entryVS))
	entryFS := C.CString(state.FragmentEntryPoint)
	defer C.free(unsafe.Pointer(entryFS))

	stages := []C.VkPipelineShaderStageCreateInfo{
		{
			sType:  C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO,
			stage:  C.VK_SHADER_STAGE_VERTEX_BIT,
			module: state.VertexShader.Native().(*nativeShader).module,
			pName:  entryVS,
		},
		{
			sType:  C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO,
			stage:  C.VK_SHADER_STAGE_FRAGMENT_BIT,
			module: state.FragmentShader.Native().(*nativeShader).module,
			pName:  entryFS,
		},
	}

	var bindings []C.VkVertexInputBindingDescription
	var attrs []C.VkVertexInputAttributeDescription
	for slot, vb := range state.VertexBuffers {
		rate := C.VkVertexInputRate(C.VK_VERTEX_INPUT_RATE_VERTEX)
		if vb.StepMode == driver.StepInstance {
			rate = C.VK_VERTEX_INPUT_RATE_INSTANCE
		}
		bindings = append(bindings, C.VkVertexInputBindingDescription{
			binding:   C.uint32_t(slot),
			stride:    C.uint32_t(vb.Stride),
			inputRate: rate,
		})
		for _, a := range vb.Attributes {
			attrs = append(attrs, C.VkVertexInputAttributeDescription{
				location: C.uint32_t(a.ShaderLocation),
				binding:  C.uint32_t(slot),
				format:   vertexFormatToVk(a.Format),
				offset:   C.uint32_t(a.Offset),
			})
		}
	}
	vertexInput := C.VkPipelineVertexInputStateCreateInfo{sType: C.VK_STRUCTURE_TYPE_PIPELINE_VERTEX_INPUT_STATE_CREATE_INFO}
	if len(bindings) > 0 {
		vertexInput.vertexBindingDescriptionCount = C.uint32_t(len(bindings))
		vertexInput.pVertexBindingDescriptions = &bindings[0]
	}
	if len(attrs) > 0 {
		vertexInput.vertexAttributeDescriptionCount = C.uint32_t(len(attrs))
		vertexInput.pVertexAttributeDescriptions = &attrs[0]
	}

	assembly := C.VkPipelineInputAssemblyStateCreateInfo{
		sType:    C.VK_STRUCTURE_TYPE_PIPELINE_INPUT_ASSEMBLY_STATE_CREATE_INFO,
		topology: topologyToVk(state.Topology),
	}

	viewportState := C.VkPipelineViewportStateCreateInfo{
		sType:         C.VK_STRUCTURE_TYPE_PIPELINE_VIEWPORT_STATE_CREATE_INFO,
		viewportCount: 1,
		scissorCount:  1,
	}

	raster := C.VkPipelineRasterizationStateCreateInfo{
		sType:      C.VK_STRUCTURE_TYPE_PIPELINE_RASTERIZATION_STATE_CREATE_INFO,
		cullMode:   cullModeToVk(state.CullMode),
		frontFace:  frontFaceToVk(state.FrontFace),
		lineWidth:  1,
	}

	multisample := C.VkPipelineMultisampleStateCreateInfo{
		sType:                C.VK_STRUCTURE_TYPE_PIPELINE_MULTISAMPLE_STATE_CREATE_INFO,
		rasterizationSamples: sampleCountFlagBits(orOne(state.SampleCount)),
	}

	blendAttachments := make([]C.VkPipelineColorBlendAttachmentState, len(state.ColorTargets))
	for i, ct := range state.ColorTargets {
		att := C.VkPipelineColorBlendAttachmentState{
			colorWriteMask: C.VkColorComponentFlags(ct.WriteMask),
		}
		if ct.Blend != nil {
			att.blendEnable = C.VK_TRUE
			att.srcColorBlendFactor = blendFactorToVk(ct.Blend.Color.SrcFactor)
			att.dstColorBlendFactor = blendFactorToVk(ct.Blend.Color.DstFactor)
			att.colorBlendOp = blendOpToVk(ct.Blend.Color.Op)
			att.srcAlphaBlendFactor = blendFactorToVk(ct.Blend.Alpha.SrcFactor)
			att.dstAlphaBlendFactor = blendFactorToVk(ct.Blend.Alpha.DstFactor)
			att.alphaBlendOp = blendOpToVk(ct.Blend.Alpha.Op)
		}
		blendAttachments[i] = att
	}
	colorBlend := C.VkPipelineColorBlendStateCreateInfo{sType: C.VK_STRUCTURE_TYPE_PIPELINE_COLOR_BLEND_STATE_CREATE_INFO}
	if len(blendAttachments) > 0 {
		colorBlend.attachmentCount = C.uint32_t(len(blendAttachments))
		colorBlend.pAttachments = &blendAttachments[0]
	}

	var depthStencil C.VkPipelineDepthStencilStateCreateInfo
	depthStencil.sType = C.VK_STRUCTURE_TYPE_PIPELINE_DEPTH_STENCIL_STATE_CREATE_INFO
	if ds := state.DepthStencil; ds != nil {
		if ds.DepthWriteEnabled {
			depthStencil.depthWriteEnable = C.VK_TRUE
		}
		depthStencil.depthTestEnable = C.VK_TRUE
		depthStencil.depthCompareOp = compareOp(ds.DepthCompare)
	}

	dynStates := []C.VkDynamicState{C.VK_DYNAMIC_STATE_VIEWPORT, C.VK_DYNAMIC_STATE_SCISSOR}
	dyn := C.VkPipelineDynamicStateCreateInfo{
		sType:             C.VK_STRUCTURE_TYPE_PIPELINE_DYNAMIC_STATE_CREATE_INFO,
		dynamicStateCount: C.uint32_t(len(dynStates)),
		pDynamicStates:    &dynStates[0],
	}

	info := C.VkGraphicsPipelineCreateInfo{
		sType:               C.VK_STRUCTURE_TYPE_GRAPHICS_PIPELINE_CREATE_INFO,
		stageCount:          C.uint32_t(len(stages)),
		pStages:             &stages[0],
		pVertexInputState:   &vertexInput,
		pInputAssemblyState: &assembly,
		pViewportState:      &viewportState,
		pRasterizationState: &raster,
		pMultisampleState:   &multisample,
		pDepthStencilState:  &depthStencil,
		pColorBlendState:    &colorBlend,
		pDynamicState:       &dyn,
		layout:              layout,
	}

	var pl C.VkPipeline
	if err := checkResult(C.vkCreateGraphicsPipelines(nd.dev, nil, 1, &info, nil, &pl)); err != nil {
		C.vkDestroyPipelineLayout(nd.dev, layout, nil)
		return nil, err
	}
	return &nativeRenderPipeline{dev: nd.dev, layout: layout, pl: pl}, nil
}

func (b *vkBackend) DestroyRenderPipeline(n driver.Native) {
	np := n.(*nativeRenderPipeline)
	C.vkDestroyPipeline(np.dev, np.pl, nil)
	C.vkDestroyPipelineLayout(np.dev, np.layout, nil)
}

type nativeComputePipeline struct {
	dev    C.VkDevice
	layout C.VkPipelineLayout
	pl     C.VkPipeline
}

func (b *vkBackend) NewComputePipeline(n driver.Native, state *driver.CompState) (driver.Native, error) {
	nd := n.(*nativeDevice)

	layout, err := pipelineLayoutFor(nd.dev, state.BindGroupLayouts)
	if err != nil {
		return nil, err
	}

	entry := C.CString(state.EntryPoint)
	defer C.free(unsafe.Pointer(entry))

	info := C.VkComputePipelineCreateInfo{
		sType: C.VK_STRUCTURE_TYPE_COMPUTE_PIPELINE_CREATE_INFO,
		stage: C.VkPipelineShaderStageCreateInfo{
			sType:  C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO,
			stage:  C.VK_SHADER_STAGE_COMPUTE_BIT,
			module: state.Shader.Native().(*nativeShader).module,
			pName:  entry,
		},
		layout: layout,
	}

	var pl C.VkPipeline
	if err := checkResult(C.vkCreateComputePipelines(nd.dev, nil, 1, &info, nil, &pl)); err != nil {
		C.vkDestroyPipelineLayout(nd.dev, layout, nil)
		return nil, err
	}
	return &nativeComputePipeline{dev: nd.dev, layout: layout, pl: pl}, nil
}

func (b *vkBackend) DestroyComputePipeline(n driver.Native) {
	np := n.(*nativeComputePipeline)
	C.vkDestroyPipeline(np.dev, np.pl, nil)
	C.vkDestroyPipelineLayout(np.dev, np.layout, nil)
}
