// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// PixelFmt describes the format of a pixel. It is a closed set covering
// unorm/sRGB color, floating-point color and depth/stencil formats, per
// spec.md §6. Unlike the teacher's driver.PixelFmt (which reserved a
// high bit for internal/backend-private formats), every value here is a
// format an application may request directly.
type PixelFmt int

// Color formats, 8-bit unorm/sRGB channels.
const (
	R8Unorm PixelFmt = iota
	R8G8Unorm
	R8G8B8A8Unorm
	R8G8B8A8Srgb
	B8G8R8A8Unorm
	B8G8R8A8Srgb
)

// Color formats, floating-point channels.
const (
	R16Float PixelFmt = iota + 100
	R16G16Float
	R16G16B16A16Float
	R32Float
	R32G32Float
	R32G32B32A32Float
)

// Depth/stencil formats.
const (
	Depth16Unorm PixelFmt = iota + 200
	Depth24Plus
	Depth32Float
	Depth24PlusStencil8
	Depth32FloatStencil8
	Stencil8
)

// FormatHasStencil returns true iff fmt is one of the three
// depth/stencil formats that carry a stencil aspect (P5).
func FormatHasStencil(fmt PixelFmt) bool {
	switch fmt {
	case Depth24PlusStencil8, Depth32FloatStencil8, Stencil8:
		return true
	default:
		return false
	}
}

// FormatHasDepth returns true for formats with a depth aspect. This is
// not named explicitly in spec.md but is needed alongside
// FormatHasStencil wherever a depth/stencil attachment's load/store ops
// must be split per aspect (§4.2.2); grounded in the same "small
// format-classifier helper" spec.md calls out as the single source of
// truth for stencil-aware attachment handling.
func FormatHasDepth(fmt PixelFmt) bool {
	switch fmt {
	case Depth16Unorm, Depth24Plus, Depth32Float, Depth24PlusStencil8, Depth32FloatStencil8:
		return true
	default:
		return false
	}
}

// BufferUsage is a bitmask of valid uses for a Buffer.
type BufferUsage uint32

// Buffer usage flags. The zero value of every mask type in this file is
// its None value (spec.md §6).
const UsageNone BufferUsage = 0

const (
	UsageVertex BufferUsage = 1 << iota
	UsageIndex
	UsageUniform
	UsageStorage
	UsageIndirect
	UsageCopySrc
	UsageCopyDst
	UsageMapRead
	UsageMapWrite
)

// TextureUsage is a bitmask of valid uses for a Texture.
type TextureUsage uint32

const TextureUsageNone TextureUsage = 0

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

// ShaderStage is a bitmask of programmable pipeline stages.
type ShaderStage uint32

const StageNone ShaderStage = 0

const (
	StageVertex ShaderStage = 1 << iota
	StageFragment
	StageCompute
)

// ColorWriteMask selects which color channels a color-target state
// writes.
type ColorWriteMask uint32

const WriteNone ColorWriteMask = 0

const (
	WriteRed ColorWriteMask = 1 << iota
	WriteGreen
	WriteBlue
	WriteAlpha
	WriteAll = WriteRed | WriteGreen | WriteBlue | WriteAlpha
)

// PipelineStage is a bitmask of synchronization scopes used by Barrier
// (§4.2.1); it plays the role of VkPipelineStageFlags/hazard stage sets.
type PipelineStage uint32

const StageSyncNone PipelineStage = 0

const (
	StageVertexInput PipelineStage = 1 << iota
	StageVertexShading
	StageFragmentShading
	StageComputeShading
	StageColorOutput
	StageDSOutput
	StageCopy
	StageAll
)

// AccessFlags is a bitmask of memory access scopes used by Barrier.
type AccessFlags uint32

const AccessNone AccessFlags = 0

const (
	AccessColorRead AccessFlags = 1 << iota
	AccessColorWrite
	AccessDSRead
	AccessDSWrite
	AccessShaderRead
	AccessShaderWrite
	AccessCopyRead
	AccessCopyWrite
	AccessAny = AccessColorRead | AccessColorWrite | AccessDSRead |
		AccessDSWrite | AccessShaderRead | AccessShaderWrite | AccessCopyRead | AccessCopyWrite
)

// Layout is the type of an explicit-backend texture layout (§3, §4.2.1).
// The implicit backend tracks the same values purely for I6 validation;
// it never emits a native transition for them.
type Layout int

const (
	LayoutUndefined Layout = iota
	LayoutCommon
	LayoutColorAttachment
	LayoutDSAttachment
	LayoutDSReadOnly
	LayoutResolveSrc
	LayoutResolveDst
	LayoutCopySrc
	LayoutCopyDst
	LayoutShaderReadOnly
	LayoutPresentSrc
)

// accessForLayout is the helper table spec.md §4.2.1 requires: every
// supported layout maps to its canonical access set. Only the explicit
// backend uses it (through AccessFlagsForLayout), to populate a
// VkImageMemoryBarrier's access masks; driver/wgpu and driver/swbackend
// do not consult it.
var accessForLayout = map[Layout]AccessFlags{
	LayoutUndefined:       AccessNone,
	LayoutCommon:          AccessAny,
	LayoutColorAttachment: AccessColorWrite,
	LayoutDSAttachment:    AccessDSWrite,
	LayoutDSReadOnly:      AccessDSRead,
	LayoutResolveSrc:      AccessColorRead,
	LayoutResolveDst:      AccessColorWrite,
	LayoutCopySrc:         AccessCopyRead,
	LayoutCopyDst:         AccessCopyWrite,
	LayoutShaderReadOnly:  AccessShaderRead,
	LayoutPresentSrc:      AccessNone,
}

// AccessFlagsForLayout returns the canonical access set for layout, per
// the helper table in spec.md §4.2.1. It is exported because it is one
// of the few backend-specific helpers spec.md's Backend trait promises
// (alongside the per-backend Backend implementations that call it
// internally), and because property/unit tests exercise it directly.
func AccessFlagsForLayout(layout Layout) AccessFlags {
	return accessForLayout[layout]
}
