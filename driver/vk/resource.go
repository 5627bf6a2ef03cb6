// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <vulkan/vulkan.h>
import "C"

import (
	"unsafe"

	"github.com/kestrelgpu/gfx/driver"
)

type nativeBuffer struct {
	dev    *nativeDevice
	buf    C.VkBuffer
	mem    C.VkDeviceMemory
	size   int64
	usage  driver.BufferUsage
	mapped unsafe.Pointer
}

func bufferUsageFlags(u driver.BufferUsage) C.VkBufferUsageFlags {
	var f C.VkBufferUsageFlags
	if u&driver.UsageVertex != 0 {
		f |= C.VK_BUFFER_USAGE_VERTEX_BUFFER_BIT
	}
	if u&driver.UsageIndex != 0 {
		f |= C.VK_BUFFER_USAGE_INDEX_BUFFER_BIT
	}
	if u&driver.UsageUniform != 0 {
		f |= C.VK_BUFFER_USAGE_UNIFORM_BUFFER_BIT
	}
	if u&driver.UsageStorage != 0 {
		f |= C.VK_BUFFER_USAGE_STORAGE_BUFFER_BIT
	}
	if u&driver.UsageIndirect != 0 {
		f |= C.VK_BUFFER_USAGE_INDIRECT_BUFFER_BIT
	}
	if u&driver.UsageCopySrc != 0 {
		f |= C.VK_BUFFER_USAGE_TRANSFER_SRC_BIT
	}
	if u&driver.UsageCopyDst != 0 {
		f |= C.VK_BUFFER_USAGE_TRANSFER_DST_BIT
	}
	return f
}

func (b *vkBackend) NewBuffer(n driver.Native, desc *driver.BufferDescriptor) (driver.Native, error) {
	nd := n.(*nativeDevice)
	info := C.VkBufferCreateInfo{
		sType: C.VK_STRUCTURE_TYPE_BUFFER_CREATE_INFO,
		size:  C.VkDeviceSize(desc.Size),
		usage: bufferUsageFlags(desc.Usage),
	}
	var buf C.VkBuffer
	if err := checkResult(C.vkCreateBuffer(nd.dev, &info, nil, &buf)); err != nil {
		return nil, err
	}
	var req C.VkMemoryRequirements
	C.vkGetBufferMemoryRequirements(nd.dev, buf, &req)

	hostVisible := desc.MappedAtCreation || desc.Usage&(driver.UsageMapRead|driver.UsageMapWrite) != 0
	prop := C.VkMemoryPropertyFlags(C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT)
	if hostVisible {
		prop = C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT | C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT
	}
	idx := selectMemoryType(&nd.mprop, uint32(req.memoryTypeBits), prop)
	if idx < 0 {
		C.vkDestroyBuffer(nd.dev, buf, nil)
		return nil, errf(driver.OutOfMemory, "vulkan: no suitable memory type for buffer")
	}
	allocInfo := C.VkMemoryAllocateInfo{
		sType:           C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO,
		allocationSize:  req.size,
		memoryTypeIndex: C.uint32_t(idx),
	}
	var mem C.VkDeviceMemory
	if err := checkResult(C.vkAllocateMemory(nd.dev, &allocInfo, nil, &mem)); err != nil {
		C.vkDestroyBuffer(nd.dev, buf, nil)
		return nil, err
	}
	if err := checkResult(C.vkBindBufferMemory(nd.dev, buf, mem, 0)); err != nil {
		C.vkFreeMemory(nd.dev, mem, nil)
		C.vkDestroyBuffer(nd.dev, buf, nil)
		return nil, err
	}

	nb := &nativeBuffer{dev: nd, buf: buf, mem: mem, size: desc.Size, usage: desc.Usage}
	if hostVisible {
		var p unsafe.Pointer
		if err := checkResult(C.vkMapMemory(nd.dev, mem, 0, C.VK_WHOLE_SIZE, 0, &p)); err != nil {
			return nil, err
		}
		nb.mapped = p
	}
	return nb, nil
}

func (b *vkBackend) BufferBytes(n driver.Native) []byte {
	nb := n.(*nativeBuffer)
	if nb.mapped == nil {
		return nil
	}
	return unsafe.Slice((*byte)(nb.mapped), nb.size)
}

func (b *vkBackend) BufferCap(n driver.Native) int64 { return n.(*nativeBuffer).size }

func (b *vkBackend) DestroyBuffer(n driver.Native) {
	nb := n.(*nativeBuffer)
	if nb.mapped != nil {
		C.vkUnmapMemory(nb.dev.dev, nb.mem)
	}
	C.vkDestroyBuffer(nb.dev.dev, nb.buf, nil)
	C.vkFreeMemory(nb.dev.dev, nb.mem, nil)
}

// stagedWrite uploads data into dst (a device-local buffer) through a
// transient host-visible staging buffer and a one-shot command buffer,
// waited on synchronously, grounded on the teacher's Driver.writeBuffer
// staging path (buffer.go).
func stagedWrite(nd *nativeDevice, dst *nativeBuffer, offset int64, data []byte) error {
	stageInfo := C.VkBufferCreateInfo{
		sType: C.VK_STRUCTURE_TYPE_BUFFER_CREATE_INFO,
		size:  C.VkDeviceSize(len(data)),
		usage: C.VK_BUFFER_USAGE_TRANSFER_SRC_BIT,
	}
	var stageBuf C.VkBuffer
	if err := checkResult(C.vkCreateBuffer(nd.dev, &stageInfo, nil, &stageBuf)); err != nil {
		return err
	}
	defer C.vkDestroyBuffer(nd.dev, stageBuf, nil)

	var req C.VkMemoryRequirements
	C.vkGetBufferMemoryRequirements(nd.dev, stageBuf, &req)
	idx := selectMemoryType(&nd.mprop, uint32(req.memoryTypeBits),
		C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT|C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT)
	if idx < 0 {
		return errf(driver.OutOfMemory, "vulkan: no suitable staging memory type")
	}
	allocInfo := C.VkMemoryAllocateInfo{
		sType:           C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO,
		allocationSize:  req.size,
		memoryTypeIndex: C.uint32_t(idx),
	}
	var stageMem C.VkDeviceMemory
	if err := checkResult(C.vkAllocateMemory(nd.dev, &allocInfo, nil, &stageMem)); err != nil {
		return err
	}
	defer C.vkFreeMemory(nd.dev, stageMem, nil)
	if err := checkResult(C.vkBindBufferMemory(nd.dev, stageBuf, stageMem, 0)); err != nil {
		return err
	}

	var p unsafe.Pointer
	if err := checkResult(C.vkMapMemory(nd.dev, stageMem, 0, C.VK_WHOLE_SIZE, 0, &p)); err != nil {
		return err
	}
	copy(unsafe.Slice((*byte)(p), len(data)), data)
	C.vkUnmapMemory(nd.dev, stageMem)

	poolInfo := C.VkCommandPoolCreateInfo{
		sType:            C.VK_STRUCTURE_TYPE_COMMAND_POOL_CREATE_INFO,
		flags:            C.VK_COMMAND_POOL_CREATE_TRANSIENT_BIT,
		queueFamilyIndex: C.uint32_t(nd.adapter.qfam),
	}
	var pool C.VkCommandPool
	if err := checkResult(C.vkCreateCommandPool(nd.dev, &poolInfo, nil, &pool)); err != nil {
		return err
	}
	defer C.vkDestroyCommandPool(nd.dev, pool, nil)

	allocCmd := C.VkCommandBufferAllocateInfo{
		sType:              C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_ALLOCATE_INFO,
		commandPool:        pool,
		level:              C.VK_COMMAND_BUFFER_LEVEL_PRIMARY,
		commandBufferCount: 1,
	}
	var cmd C.VkCommandBuffer
	if err := checkResult(C.vkAllocateCommandBuffers(nd.dev, &allocCmd, &cmd)); err != nil {
		return err
	}

	beginInfo := C.VkCommandBufferBeginInfo{
		sType: C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO,
		flags: C.VK_COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT,
	}
	if err := checkResult(C.vkBeginCommandBuffer(cmd, &beginInfo)); err != nil {
		return err
	}
	region := C.VkBufferCopy{
		srcOffset: 0,
		dstOffset: C.VkDeviceSize(offset),
		size:      C.VkDeviceSize(len(data)),
	}
	C.vkCmdCopyBuffer(cmd, stageBuf, dst.buf, 1, &region)
	if err := checkResult(C.vkEndCommandBuffer(cmd)); err != nil {
		return err
	}

	submit := C.VkSubmitInfo{
		sType:              C.VK_STRUCTURE_TYPE_SUBMIT_INFO,
		commandBufferCount: 1,
		pCommandBuffers:    &cmd,
	}
	nd.queMu.Lock()
	err := checkResult(C.vkQueueSubmit(nd.que, 1, &submit, nil))
	if err == nil {
		err = checkResult(C.vkQueueWaitIdle(nd.que))
	}
	nd.queMu.Unlock()
	return err
}

type nativeTexture struct {
	dev    *nativeDevice
	img    C.VkImage
	mem    C.VkDeviceMemory
	desc   driver.TextureDescriptor
	layout driver.Layout
}

func pixelFmtToVk(f driver.PixelFmt) C.VkFormat {
	switch f {
	case driver.R8Unorm:
		return C.VK_FORMAT_R8_UNORM
	case driver.R8G8Unorm:
		return C.VK_FORMAT_R8G8_UNORM
	case driver.R8G8B8A8Unorm:
		return C.VK_FORMAT_R8G8B8A8_UNORM
	case driver.R8G8B8A8Srgb:
		return C.VK_FORMAT_R8G8B8A8_SRGB
	case driver.B8G8R8A8Unorm:
		return C.VK_FORMAT_B8G8R8A8_UNORM
	case driver.B8G8R8A8Srgb:
		return C.VK_FORMAT_B8G8R8A8_SRGB
	case driver.R16Float:
		return C.VK_FORMAT_R16_SFLOAT
	case driver.R16G16Float:
		return C.VK_FORMAT_R16G16_SFLOAT
	case driver.R16G16B16A16Float:
		return C.VK_FORMAT_R16G16B16A16_SFLOAT
	case driver.R32Float:
		return C.VK_FORMAT_R32_SFLOAT
	case driver.R32G32Float:
		return C.VK_FORMAT_R32G32_SFLOAT
	case driver.R32G32B32A32Float:
		return C.VK_FORMAT_R32G32B32A32_SFLOAT
	case driver.Depth16Unorm:
		return C.VK_FORMAT_D16_UNORM
	case driver.Depth24Plus:
		return C.VK_FORMAT_X8_D24_UNORM_PACK32
	case driver.Depth32Float:
		return C.VK_FORMAT_D32_SFLOAT
	case driver.Depth24PlusStencil8:
		return C.VK_FORMAT_D24_UNORM_S8_UINT
	case driver.Depth32FloatStencil8:
		return C.VK_FORMAT_D32_SFLOAT_S8_UINT
	case driver.Stencil8:
		return C.VK_FORMAT_S8_UINT
	default:
		return C.VK_FORMAT_UNDEFINED
	}
}

func imageTypeForDimension(d driver.TextureDimension) C.VkImageType {
	switch d {
	case driver.Texture1D:
		return C.VK_IMAGE_TYPE_1D
	case driver.Texture3D:
		return C.VK_IMAGE_TYPE_3D
	default:
		return C.VK_IMAGE_TYPE_2D
	}
}

func textureUsageFlags(u driver.TextureUsage) C.VkImageUsageFlags {
	var f C.VkImageUsageFlags
	if u&driver.TextureUsageCopySrc != 0 {
		f |= C.VK_IMAGE_USAGE_TRANSFER_SRC_BIT
	}
	if u&driver.TextureUsageCopyDst != 0 {
		f |= C.VK_IMAGE_USAGE_TRANSFER_DST_BIT
	}
	if u&driver.TextureUsageTextureBinding != 0 {
		f |= C.VK_IMAGE_USAGE_SAMPLED_BIT
	}
	if u&driver.TextureUsageStorageBinding != 0 {
		f |= C.VK_IMAGE_USAGE_STORAGE_BIT
	}
	if u&driver.TextureUsageRenderAttachment != 0 {
		f |= C.VK_IMAGE_USAGE_COLOR_ATTACHMENT_BIT | C.VK_IMAGE_USAGE_DEPTH_STENCIL_ATTACHMENT_BIT
	}
	return f
}

func (b *vkBackend) NewTexture(n driver.Native, desc *driver.TextureDescriptor) (driver.Native, error) {
	nd := n.(*nativeDevice)
	depth := C.uint32_t(1)
	layers := C.uint32_t(1)
	if desc.Dimension == driver.Texture3D {
		depth = C.uint32_t(desc.DepthOrArrayLayers)
	} else {
		layers = C.uint32_t(desc.DepthOrArrayLayers)
		if layers == 0 {
			layers = 1
		}
	}
	mips := desc.MipLevels
	if mips == 0 {
		mips = 1
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	info := C.VkImageCreateInfo{
		sType:     C.VK_STRUCTURE_TYPE_IMAGE_CREATE_INFO,
		imageType: imageTypeForDimension(desc.Dimension),
		format:    pixelFmtToVk(desc.Format),
		extent: C.VkExtent3D{
			width:  C.uint32_t(desc.Width),
			height: C.uint32_t(desc.Height),
			depth:  depth,
		},
		mipLevels:     C.uint32_t(mips),
		arrayLayers:   layers,
		samples:       sampleCountFlagBits(samples),
		tiling:        C.VK_IMAGE_TILING_OPTIMAL,
		usage:         textureUsageFlags(desc.Usage),
		sharingMode:   C.VK_SHARING_MODE_EXCLUSIVE,
		initialLayout: C.VK_IMAGE_LAYOUT_UNDEFINED,
	}
	var img C.VkImage
	if err := checkResult(C.vkCreateImage(nd.dev, &info, nil, &img)); err != nil {
		return nil, err
	}
	var req C.VkMemoryRequirements
	C.vkGetImageMemoryRequirements(nd.dev, img, &req)
	idx := selectMemoryType(&nd.mprop, uint32(req.memoryTypeBits), C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT)
	if idx < 0 {
		C.vkDestroyImage(nd.dev, img, nil)
		return nil, errf(driver.OutOfMemory, "vulkan: no suitable memory type for texture")
	}
	allocInfo := C.VkMemoryAllocateInfo{
		sType:           C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO,
		allocationSize:  req.size,
		memoryTypeIndex: C.uint32_t(idx),
	}
	var mem C.VkDeviceMemory
	if err := checkResult(C.vkAllocateMemory(nd.dev, &allocInfo, nil, &mem)); err != nil {
		C.vkDestroyImage(nd.dev, img, nil)
		return nil, err
	}
	if err := checkResult(C.vkBindImageMemory(nd.dev, img, mem, 0)); err != nil {
		C.vkFreeMemory(nd.dev, mem, nil)
		C.vkDestroyImage(nd.dev, img, nil)
		return nil, err
	}
	return &nativeTexture{dev: nd, img: img, mem: mem, desc: *desc, layout: driver.LayoutUndefined}, nil
}

func sampleCountFlagBits(n uint32) C.VkSampleCountFlagBits {
	switch n {
	case 2:
		return C.VK_SAMPLE_COUNT_2_BIT
	case 4:
		return C.VK_SAMPLE_COUNT_4_BIT
	case 8:
		return C.VK_SAMPLE_COUNT_8_BIT
	case 16:
		return C.VK_SAMPLE_COUNT_16_BIT
	default:
		return C.VK_SAMPLE_COUNT_1_BIT
	}
}

func (b *vkBackend) TextureLayout(n driver.Native) driver.Layout { return n.(*nativeTexture).layout }

func (b *vkBackend) DestroyTexture(n driver.Native) {
	nt := n.(*nativeTexture)
	C.vkDestroyImage(nt.dev.dev, nt.img, nil)
	C.vkFreeMemory(nt.dev.dev, nt.mem, nil)
}

type nativeTextureView struct {
	dev  *nativeDevice
	view C.VkImageView
}

func aspectFlags(a driver.TextureAspect, fmt driver.PixelFmt) C.VkImageAspectFlags {
	switch a {
	case driver.AspectDepthOnly:
		return C.VK_IMAGE_ASPECT_DEPTH_BIT
	case driver.AspectStencilOnly:
		return C.VK_IMAGE_ASPECT_STENCIL_BIT
	default:
		if driver.FormatHasDepth(fmt) || driver.FormatHasStencil(fmt) {
			var f C.VkImageAspectFlags
			if driver.FormatHasDepth(fmt) {
				f |= C.VK_IMAGE_ASPECT_DEPTH_BIT
			}
			if driver.FormatHasStencil(fmt) {
				f |= C.VK_IMAGE_ASPECT_STENCIL_BIT
			}
			return f
		}
		return C.VK_IMAGE_ASPECT_COLOR_BIT
	}
}

func viewTypeForDimension(d driver.TextureDimension) C.VkImageViewType {
	switch d {
	case driver.Texture1D:
		return C.VK_IMAGE_VIEW_TYPE_1D
	case driver.Texture3D:
		return C.VK_IMAGE_VIEW_TYPE_3D
	default:
		return C.VK_IMAGE_VIEW_TYPE_2D
	}
}

func (b *vkBackend) TextureNewView(n driver.Native, desc *driver.TextureViewDescriptor) (driver.Native, error) {
	nt := n.(*nativeTexture)
	info := C.VkImageViewCreateInfo{
		sType:    C.VK_STRUCTURE_TYPE_IMAGE_VIEW_CREATE_INFO,
		image:    nt.img,
		viewType: viewTypeForDimension(nt.desc.Dimension),
		format:   pixelFmtToVk(desc.Format),
		subresourceRange: C.VkImageSubresourceRange{
			aspectMask:     aspectFlags(desc.Aspect, desc.Format),
			baseMipLevel:   C.uint32_t(desc.BaseMipLevel),
			levelCount:     C.uint32_t(desc.MipLevelCount),
			baseArrayLayer: C.uint32_t(desc.BaseArrayLayer),
			layerCount:     C.uint32_t(desc.ArrayLayerCount),
		},
	}
	var view C.VkImageView
	if err := checkResult(C.vkCreateImageView(nt.dev.dev, &info, nil, &view)); err != nil {
		return nil, err
	}
	return &nativeTextureView{dev: nt.dev, view: view}, nil
}

func (b *vkBackend) DestroyTextureView(n driver.Native) {
	ntv := n.(*nativeTextureView)
	C.vkDestroyImageView(ntv.dev.dev, ntv.view, nil)
}

type nativeSampler struct {
	dev C.VkDevice
	spl C.VkSampler
}

func filterMode(f driver.FilterMode) C.VkFilter {
	if f == driver.FilterLinear {
		return C.VK_FILTER_LINEAR
	}
	return C.VK_FILTER_NEAREST
}

func mipmapMode(f driver.FilterMode) C.VkSamplerMipmapMode {
	if f == driver.FilterLinear {
		return C.VK_SAMPLER_MIPMAP_MODE_LINEAR
	}
	return C.VK_SAMPLER_MIPMAP_MODE_NEAREST
}

func addressMode(a driver.AddressMode) C.VkSamplerAddressMode {
	switch a {
	case driver.AddressRepeat:
		return C.VK_SAMPLER_ADDRESS_MODE_REPEAT
	case driver.AddressMirrorRepeat:
		return C.VK_SAMPLER_ADDRESS_MODE_MIRRORED_REPEAT
	default:
		return C.VK_SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE
	}
}

func compareOp(c driver.CompareFunc) C.VkCompareOp {
	switch c {
	case driver.CompareLess:
		return C.VK_COMPARE_OP_LESS
	case driver.CompareEqual:
		return C.VK_COMPARE_OP_EQUAL
	case driver.CompareLessEqual:
		return C.VK_COMPARE_OP_LESS_OR_EQUAL
	case driver.CompareGreater:
		return C.VK_COMPARE_OP_GREATER
	case driver.CompareNotEqual:
		return C.VK_COMPARE_OP_NOT_EQUAL
	case driver.CompareGreaterEqual:
		return C.VK_COMPARE_OP_GREATER_OR_EQUAL
	case driver.CompareAlways:
		return C.VK_COMPARE_OP_ALWAYS
	default:
		return C.VK_COMPARE_OP_NEVER
	}
}

func (b *vkBackend) NewSampler(n driver.Native, desc *driver.SamplingDescriptor) (driver.Native, error) {
	nd := n.(*nativeDevice)
	info := C.VkSamplerCreateInfo{
		sType:        C.VK_STRUCTURE_TYPE_SAMPLER_CREATE_INFO,
		magFilter:    filterMode(desc.MagFilter),
		minFilter:    filterMode(desc.MinFilter),
		mipmapMode:   mipmapMode(desc.MipFilter),
		addressModeU: addressMode(desc.AddressU),
		addressModeV: addressMode(desc.AddressV),
		addressModeW: addressMode(desc.AddressW),
		minLod:       C.float(desc.LODMinClamp),
		maxLod:       C.float(desc.LODMaxClamp),
	}
	if desc.MaxAnisotropy > 1 {
		info.anisotropyEnable = C.VK_TRUE
		info.maxAnisotropy = C.float(desc.MaxAnisotropy)
	}
	if desc.Compare != nil {
		info.compareEnable = C.VK_TRUE
		info.compareOp = compareOp(*desc.Compare)
	}
	var spl C.VkSampler
	if err := checkResult(C.vkCreateSampler(nd.dev, &info, nil, &spl)); err != nil {
		return nil, err
	}
	return &nativeSampler{dev: nd.dev, spl: spl}, nil
}

func (b *vkBackend) DestroySampler(n driver.Native) {
	ns := n.(*nativeSampler)
	C.vkDestroySampler(ns.dev, ns.spl, nil)
}
