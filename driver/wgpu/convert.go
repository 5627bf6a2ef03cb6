// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package wgpu implements driver.Backend over github.com/gogpu/wgpu's hal
// layer (hal.Backend/hal.Instance/hal.Device/hal.Queue), the queue-order,
// no-explicit-barrier family of driver families spec.md §4 calls out
// alongside the explicit, Vulkan-class family package driver/vk
// implements. A concrete hal.Backend (hal/noop, hal/software, or a real
// GPU backend) must be linked in separately, via that package's own
// init()-registration convention; this package only ever talks to
// whichever variant the embedding application selects with UseBackend.
package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/kestrelgpu/gfx/driver"
)

func pixelFmtToGPU(f driver.PixelFmt) gputypes.TextureFormat {
	switch f {
	case driver.R8Unorm:
		return gputypes.TextureFormatR8Unorm
	case driver.R8G8Unorm:
		return gputypes.TextureFormatRG8Unorm
	case driver.R8G8B8A8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case driver.R8G8B8A8Srgb:
		return gputypes.TextureFormatRGBA8UnormSrgb
	case driver.B8G8R8A8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	case driver.B8G8R8A8Srgb:
		return gputypes.TextureFormatBGRA8UnormSrgb
	case driver.R16Float:
		return gputypes.TextureFormatR16Float
	case driver.R16G16Float:
		return gputypes.TextureFormatRG16Float
	case driver.R16G16B16A16Float:
		return gputypes.TextureFormatRGBA16Float
	case driver.R32Float:
		return gputypes.TextureFormatR32Float
	case driver.R32G32Float:
		return gputypes.TextureFormatRG32Float
	case driver.R32G32B32A32Float:
		return gputypes.TextureFormatRGBA32Float
	case driver.Depth16Unorm:
		return gputypes.TextureFormatDepth16Unorm
	case driver.Depth24Plus:
		return gputypes.TextureFormatDepth24Plus
	case driver.Depth32Float:
		return gputypes.TextureFormatDepth32Float
	case driver.Depth24PlusStencil8:
		return gputypes.TextureFormatDepth24PlusStencil8
	case driver.Depth32FloatStencil8:
		return gputypes.TextureFormatDepth32FloatStencil8
	case driver.Stencil8:
		return gputypes.TextureFormatStencil8
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

func pixelFmtFromGPU(f gputypes.TextureFormat) driver.PixelFmt {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return driver.R8Unorm
	case gputypes.TextureFormatRG8Unorm:
		return driver.R8G8Unorm
	case gputypes.TextureFormatRGBA8Unorm:
		return driver.R8G8B8A8Unorm
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return driver.R8G8B8A8Srgb
	case gputypes.TextureFormatBGRA8Unorm:
		return driver.B8G8R8A8Unorm
	case gputypes.TextureFormatBGRA8UnormSrgb:
		return driver.B8G8R8A8Srgb
	case gputypes.TextureFormatR16Float:
		return driver.R16Float
	case gputypes.TextureFormatRG16Float:
		return driver.R16G16Float
	case gputypes.TextureFormatRGBA16Float:
		return driver.R16G16B16A16Float
	case gputypes.TextureFormatR32Float:
		return driver.R32Float
	case gputypes.TextureFormatRG32Float:
		return driver.R32G32Float
	case gputypes.TextureFormatRGBA32Float:
		return driver.R32G32B32A32Float
	case gputypes.TextureFormatDepth16Unorm:
		return driver.Depth16Unorm
	case gputypes.TextureFormatDepth24Plus:
		return driver.Depth24Plus
	case gputypes.TextureFormatDepth32Float:
		return driver.Depth32Float
	case gputypes.TextureFormatDepth24PlusStencil8:
		return driver.Depth24PlusStencil8
	case gputypes.TextureFormatDepth32FloatStencil8:
		return driver.Depth32FloatStencil8
	case gputypes.TextureFormatStencil8:
		return driver.Stencil8
	default:
		return driver.R8G8B8A8Unorm
	}
}

func bufferUsageToGPU(u driver.BufferUsage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if u&driver.UsageVertex != 0 {
		out |= gputypes.BufferUsageVertex
	}
	if u&driver.UsageIndex != 0 {
		out |= gputypes.BufferUsageIndex
	}
	if u&driver.UsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if u&driver.UsageStorage != 0 {
		out |= gputypes.BufferUsageStorage
	}
	if u&driver.UsageIndirect != 0 {
		out |= gputypes.BufferUsageIndirect
	}
	if u&driver.UsageCopySrc != 0 {
		out |= gputypes.BufferUsageCopySrc
	}
	if u&driver.UsageCopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	if u&driver.UsageMapRead != 0 {
		out |= gputypes.BufferUsageMapRead
	}
	if u&driver.UsageMapWrite != 0 {
		out |= gputypes.BufferUsageMapWrite
	}
	return out
}

func textureUsageToGPU(u driver.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&driver.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&driver.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&driver.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&driver.TextureUsageStorageBinding != 0 {
		out |= gputypes.TextureUsageStorageBinding
	}
	if u&driver.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

func shaderStagesToGPU(s driver.ShaderStage) gputypes.ShaderStages {
	var out gputypes.ShaderStages
	if s&driver.StageVertex != 0 {
		out |= gputypes.ShaderStageVertex
	}
	if s&driver.StageFragment != 0 {
		out |= gputypes.ShaderStageFragment
	}
	if s&driver.StageCompute != 0 {
		out |= gputypes.ShaderStageCompute
	}
	return out
}

func addressModeToGPU(a driver.AddressMode) gputypes.AddressMode {
	switch a {
	case driver.AddressRepeat:
		return gputypes.AddressModeRepeat
	case driver.AddressMirrorRepeat:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

func filterModeToGPU(f driver.FilterMode) gputypes.FilterMode {
	if f == driver.FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func compareFuncToGPU(c driver.CompareFunc) gputypes.CompareFunction {
	switch c {
	case driver.CompareNever:
		return gputypes.CompareFunctionNever
	case driver.CompareLess:
		return gputypes.CompareFunctionLess
	case driver.CompareEqual:
		return gputypes.CompareFunctionEqual
	case driver.CompareLessEqual:
		return gputypes.CompareFunctionLessEqual
	case driver.CompareGreater:
		return gputypes.CompareFunctionGreater
	case driver.CompareNotEqual:
		return gputypes.CompareFunctionNotEqual
	case driver.CompareGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	default:
		return gputypes.CompareFunctionAlways
	}
}

func topologyToGPU(t driver.Topology) gputypes.PrimitiveTopology {
	switch t {
	case driver.TopologyPointList:
		return gputypes.PrimitiveTopologyPointList
	case driver.TopologyLineList:
		return gputypes.PrimitiveTopologyLineList
	case driver.TopologyLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case driver.TopologyTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

func cullModeToGPU(c driver.CullMode) gputypes.CullMode {
	switch c {
	case driver.CullFront:
		return gputypes.CullModeFront
	case driver.CullBack:
		return gputypes.CullModeBack
	default:
		return gputypes.CullModeNone
	}
}

func frontFaceToGPU(f driver.FrontFace) gputypes.FrontFace {
	if f == driver.FrontCW {
		return gputypes.FrontFaceCW
	}
	return gputypes.FrontFaceCCW
}

func vertexFormatToGPU(f driver.VertexFormat) gputypes.VertexFormat {
	switch f {
	case driver.VertexFloat32x2:
		return gputypes.VertexFormatFloat32x2
	case driver.VertexFloat32x3:
		return gputypes.VertexFormatFloat32x3
	case driver.VertexFloat32x4:
		return gputypes.VertexFormatFloat32x4
	case driver.VertexUint32:
		return gputypes.VertexFormatUint32
	case driver.VertexSint32:
		return gputypes.VertexFormatSint32
	case driver.VertexUnorm8x4:
		return gputypes.VertexFormatUnorm8x4
	default:
		return gputypes.VertexFormatFloat32
	}
}

func indexFmtToGPU(f driver.IndexFmt) gputypes.IndexFormat {
	if f == driver.IndexUint32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

func blendFactorToGPU(f driver.BlendFactor) gputypes.BlendFactor {
	switch f {
	case driver.BlendOne:
		return gputypes.BlendFactorOne
	case driver.BlendSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case driver.BlendOneMinusSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case driver.BlendDstAlpha:
		return gputypes.BlendFactorDstAlpha
	case driver.BlendOneMinusDstAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	case driver.BlendSrcColor:
		return gputypes.BlendFactorSrc
	case driver.BlendOneMinusSrcColor:
		return gputypes.BlendFactorOneMinusSrc
	case driver.BlendDstColor:
		return gputypes.BlendFactorDst
	case driver.BlendOneMinusDstColor:
		return gputypes.BlendFactorOneMinusDst
	default:
		return gputypes.BlendFactorZero
	}
}

func blendOpToGPU(o driver.BlendOp) gputypes.BlendOperation {
	switch o {
	case driver.BlendOpSubtract:
		return gputypes.BlendOperationSubtract
	case driver.BlendOpReverseSubtract:
		return gputypes.BlendOperationReverseSubtract
	case driver.BlendOpMin:
		return gputypes.BlendOperationMin
	case driver.BlendOpMax:
		return gputypes.BlendOperationMax
	default:
		return gputypes.BlendOperationAdd
	}
}

func colorWriteMaskToGPU(m driver.ColorWriteMask) gputypes.ColorWriteMask {
	var out gputypes.ColorWriteMask
	if m&driver.WriteRed != 0 {
		out |= gputypes.ColorWriteMaskRed
	}
	if m&driver.WriteGreen != 0 {
		out |= gputypes.ColorWriteMaskGreen
	}
	if m&driver.WriteBlue != 0 {
		out |= gputypes.ColorWriteMaskBlue
	}
	if m&driver.WriteAlpha != 0 {
		out |= gputypes.ColorWriteMaskAlpha
	}
	return out
}

func loadOpToGPU(o driver.LoadOp) gputypes.LoadOp {
	switch o {
	case driver.LoadClear:
		return gputypes.LoadOpClear
	default:
		return gputypes.LoadOpLoad
	}
}

func storeOpToGPU(o driver.StoreOp) gputypes.StoreOp {
	if o == driver.StoreDiscard {
		return gputypes.StoreOpDiscard
	}
	return gputypes.StoreOpStore
}

func clearColorToGPU(c [4]float32) gputypes.Color {
	return gputypes.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}

func presentModeToGPU(m driver.PresentMode) gputypes.PresentMode {
	switch m {
	case driver.PresentMailbox:
		return gputypes.PresentModeMailbox
	case driver.PresentImmediate:
		return gputypes.PresentModeImmediate
	default:
		return gputypes.PresentModeFifo
	}
}

func presentModeFromGPU(m gputypes.PresentMode) driver.PresentMode {
	switch m {
	case gputypes.PresentModeMailbox:
		return driver.PresentMailbox
	case gputypes.PresentModeImmediate:
		return driver.PresentImmediate
	default:
		return driver.PresentFIFO
	}
}
