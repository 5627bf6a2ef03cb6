// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <vulkan/vulkan.h>
import "C"

import (
	"unsafe"

	"github.com/kestrelgpu/gfx/driver"
)

type nativeCommandEncoder struct {
	dev  *nativeDevice
	pool C.VkCommandPool
	buf  C.VkCommandBuffer
}

func (b *vkBackend) NewCommandEncoder(n driver.Native) (driver.Native, error) {
	nd := n.(*nativeDevice)
	poolInfo := C.VkCommandPoolCreateInfo{
		sType:            C.VK_STRUCTURE_TYPE_COMMAND_POOL_CREATE_INFO,
		flags:            C.VK_COMMAND_POOL_CREATE_TRANSIENT_BIT | C.VK_COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT,
		queueFamilyIndex: C.uint32_t(nd.adapter.qfam),
	}
	var pool C.VkCommandPool
	if err := checkResult(C.vkCreateCommandPool(nd.dev, &poolInfo, nil, &pool)); err != nil {
		return nil, err
	}
	allocInfo := C.VkCommandBufferAllocateInfo{
		sType:              C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_ALLOCATE_INFO,
		commandPool:        pool,
		level:              C.VK_COMMAND_BUFFER_LEVEL_PRIMARY,
		commandBufferCount: 1,
	}
	var buf C.VkCommandBuffer
	if err := checkResult(C.vkAllocateCommandBuffers(nd.dev, &allocInfo, &buf)); err != nil {
		C.vkDestroyCommandPool(nd.dev, pool, nil)
		return nil, err
	}
	return &nativeCommandEncoder{dev: nd, pool: pool, buf: buf}, nil
}

func (b *vkBackend) EncoderBegin(n driver.Native) error {
	ne := n.(*nativeCommandEncoder)
	info := C.VkCommandBufferBeginInfo{
		sType: C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO,
		flags: C.VK_COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT,
	}
	return checkResult(C.vkBeginCommandBuffer(ne.buf, &info))
}

func (b *vkBackend) EncoderEnd(n driver.Native) error {
	return checkResult(C.vkEndCommandBuffer(n.(*nativeCommandEncoder).buf))
}

func (b *vkBackend) EncoderReset(n driver.Native) error {
	return checkResult(C.vkResetCommandBuffer(n.(*nativeCommandEncoder).buf, 0))
}

func (b *vkBackend) DestroyCommandEncoder(n driver.Native) {
	ne := n.(*nativeCommandEncoder)
	C.vkDestroyCommandPool(ne.dev.dev, ne.pool, nil)
}

// boundEncoder is the Native value returned by BeginRenderPass and
// BeginComputePass: the recording command buffer plus enough state
// (bind point, last-bound pipeline layout) to satisfy
// vkCmdBindDescriptorSets, which — unlike the rest of this package's
// per-call Vulkan mapping — needs context from a prior call.
type boundEncoder struct {
	buf       C.VkCommandBuffer
	bindPoint C.VkPipelineBindPoint
	layout    C.VkPipelineLayout
}

func (b *vkBackend) BeginRenderPass(enc, pass, fb driver.Native, clear []driver.ClearValue) (driver.Native, error) {
	ne := enc.(*nativeCommandEncoder)
	np := pass.(*nativeRenderPass)
	nf := fb.(*nativeFramebuffer)

	values := make([]C.VkClearValue, len(clear))
	for i, c := range clear {
		// union access: a color clear and a depth/stencil clear alias the
		// same 16 bytes, so only one write per element is meaningful.
		if driver.FormatHasDepth(attachmentFormat(np, i)) || driver.FormatHasStencil(attachmentFormat(np, i)) {
			setDepthStencilClear(&values[i], c.Depth, c.Stencil)
		} else {
			setColorClear(&values[i], c.Color)
		}
	}

	info := C.VkRenderPassBeginInfo{
		sType:           C.VK_STRUCTURE_TYPE_RENDER_PASS_BEGIN_INFO,
		renderPass:      np.pass,
		framebuffer:     nf.fb,
		clearValueCount: C.uint32_t(len(values)),
	}
	if len(values) > 0 {
		info.pClearValues = &values[0]
	}
	C.vkCmdBeginRenderPass(ne.buf, &info, C.VK_SUBPASS_CONTENTS_INLINE)
	return &boundEncoder{buf: ne.buf, bindPoint: C.VK_PIPELINE_BIND_POINT_GRAPHICS}, nil
}

func attachmentFormat(np *nativeRenderPass, i int) driver.PixelFmt {
	if i < len(np.desc.ColorAttachments) {
		return np.desc.ColorAttachments[i].Format
	}
	if np.desc.DepthStencil != nil {
		return np.desc.DepthStencil.Format
	}
	return driver.R8Unorm
}

func setColorClear(v *C.VkClearValue, c [4]float32) {
	p := (*[4]C.float)(unsafe.Pointer(&v.color))
	p[0], p[1], p[2], p[3] = C.float(c[0]), C.float(c[1]), C.float(c[2]), C.float(c[3])
}

func setDepthStencilClear(v *C.VkClearValue, depth float32, stencil uint32) {
	p := (*C.VkClearDepthStencilValue)(unsafe.Pointer(&v.color))
	p.depth = C.float(depth)
	p.stencil = C.uint32_t(stencil)
}

func (b *vkBackend) EndRenderPass(n driver.Native) {
	C.vkCmdEndRenderPass(n.(*boundEncoder).buf)
}

// BeginComputePass/EndComputePass have no Vulkan object of their own —
// compute dispatches simply don't require a VkRenderPass scope — so
// this just threads the encoder's command buffer through, grounded on
// the same "pass encoder is a thin view over the buffer" shape
// RenderPassEncoder uses.
func (b *vkBackend) BeginComputePass(n driver.Native) (driver.Native, error) {
	return &boundEncoder{buf: n.(*nativeCommandEncoder).buf, bindPoint: C.VK_PIPELINE_BIND_POINT_COMPUTE}, nil
}

func (b *vkBackend) EndComputePass(driver.Native) {}

func cmdBufOf(n driver.Native) C.VkCommandBuffer {
	if enc, ok := n.(*boundEncoder); ok {
		return enc.buf
	}
	return nil
}

func (b *vkBackend) SetPipeline(n, pl driver.Native) {
	enc, ok := n.(*boundEncoder)
	if !ok {
		return
	}
	switch p := pl.(type) {
	case *nativeRenderPipeline:
		C.vkCmdBindPipeline(enc.buf, C.VK_PIPELINE_BIND_POINT_GRAPHICS, p.pl)
		enc.layout = p.layout
	case *nativeComputePipeline:
		C.vkCmdBindPipeline(enc.buf, C.VK_PIPELINE_BIND_POINT_COMPUTE, p.pl)
		enc.layout = p.layout
	}
}

func (b *vkBackend) SetViewport(n driver.Native, vps []driver.Viewport) {
	buf := cmdBufOf(n)
	cvs := make([]C.VkViewport, len(vps))
	for i, v := range vps {
		cvs[i] = C.VkViewport{
			x: C.float(v.X), y: C.float(v.Y),
			width: C.float(v.Width), height: C.float(v.Height),
			minDepth: C.float(v.MinDepth), maxDepth: C.float(v.MaxDepth),
		}
	}
	if len(cvs) > 0 {
		C.vkCmdSetViewport(buf, 0, C.uint32_t(len(cvs)), &cvs[0])
	}
}

func (b *vkBackend) SetScissor(n driver.Native, ss []driver.Scissor) {
	buf := cmdBufOf(n)
	cs := make([]C.VkRect2D, len(ss))
	for i, s := range ss {
		cs[i] = C.VkRect2D{
			offset: C.VkOffset2D{x: C.int32_t(s.X), y: C.int32_t(s.Y)},
			extent: C.VkExtent2D{width: C.uint32_t(s.Width), height: C.uint32_t(s.Height)},
		}
	}
	if len(cs) > 0 {
		C.vkCmdSetScissor(buf, 0, C.uint32_t(len(cs)), &cs[0])
	}
}

func (b *vkBackend) SetVertexBuffer(n driver.Native, slot int, buf driver.Native, off int64) {
	nb := buf.(*nativeBuffer)
	vkbuf := nb.buf
	offset := C.VkDeviceSize(off)
	C.vkCmdBindVertexBuffers(cmdBufOf(n), C.uint32_t(slot), 1, &vkbuf, &offset)
}

func (b *vkBackend) SetIndexBuffer(n driver.Native, buf driver.Native, format driver.IndexFmt, off int64) {
	nb := buf.(*nativeBuffer)
	idxType := C.VkIndexType(C.VK_INDEX_TYPE_UINT16)
	if format == driver.IndexUint32 {
		idxType = C.VK_INDEX_TYPE_UINT32
	}
	C.vkCmdBindIndexBuffer(cmdBufOf(n), nb.buf, C.VkDeviceSize(off), idxType)
}

// SetBindGroup binds one descriptor set at index. vkCmdBindDescriptorSets
// needs the currently-bound pipeline's VkPipelineLayout, so the encoder
// tracks the layout of the last SetPipeline call.
func (b *vkBackend) SetBindGroup(n driver.Native, index int, group driver.Native, dynOffsets []uint32) {
	enc, ok := n.(*boundEncoder)
	if !ok {
		return
	}
	ng := group.(*nativeBindGroup)
	var offs *C.uint32_t
	if len(dynOffsets) > 0 {
		offs = (*C.uint32_t)(unsafe.Pointer(&dynOffsets[0]))
	}
	C.vkCmdBindDescriptorSets(enc.buf, enc.bindPoint, enc.layout,
		C.uint32_t(index), 1, &ng.set, C.uint32_t(len(dynOffsets)), offs)
}

func (b *vkBackend) Draw(n driver.Native, vertCount, instCount, baseVert, baseInst int) {
	C.vkCmdDraw(cmdBufOf(n), C.uint32_t(vertCount), C.uint32_t(instCount), C.uint32_t(baseVert), C.uint32_t(baseInst))
}

func (b *vkBackend) DrawIndexed(n driver.Native, idxCount, instCount, baseIdx, vertOff, baseInst int) {
	C.vkCmdDrawIndexed(cmdBufOf(n), C.uint32_t(idxCount), C.uint32_t(instCount), C.uint32_t(baseIdx), C.int32_t(vertOff), C.uint32_t(baseInst))
}

func (b *vkBackend) Dispatch(n driver.Native, x, y, z int) {
	C.vkCmdDispatch(cmdBufOf(n), C.uint32_t(x), C.uint32_t(y), C.uint32_t(z))
}

func (b *vkBackend) CopyBufferToBuffer(n driver.Native, c *driver.BufferCopy) {
	ne := n.(*nativeCommandEncoder)
	region := C.VkBufferCopy{
		srcOffset: C.VkDeviceSize(c.SrcOffset),
		dstOffset: C.VkDeviceSize(c.DstOffset),
		size:      C.VkDeviceSize(c.Size),
	}
	C.vkCmdCopyBuffer(ne.buf, c.Src.Native().(*nativeBuffer).buf, c.Dst.Native().(*nativeBuffer).buf, 1, &region)
}

func copyLocSubresource(l driver.TextureCopyLocation) C.VkImageSubresourceLayers {
	t := l.Texture
	return C.VkImageSubresourceLayers{
		aspectMask:     aspectFlags(driver.AspectAll, t.Descriptor().Format),
		mipLevel:       C.uint32_t(l.MipLevel),
		baseArrayLayer: C.uint32_t(l.ArrayLayer),
		layerCount:     1,
	}
}

func (b *vkBackend) CopyBufferToTexture(n driver.Native, c *driver.BufImgCopy) {
	ne := n.(*nativeCommandEncoder)
	region := C.VkBufferImageCopy{
		bufferOffset:      C.VkDeviceSize(c.BufferOffset),
		bufferRowLength:   C.uint32_t(c.BytesPerRow),
		bufferImageHeight: C.uint32_t(c.RowsPerImage),
		imageSubresource:  copyLocSubresource(c.Texture),
		imageOffset: C.VkOffset3D{
			x: C.int32_t(c.Texture.Origin[0]), y: C.int32_t(c.Texture.Origin[1]), z: C.int32_t(c.Texture.Origin[2]),
		},
		imageExtent: C.VkExtent3D{width: C.uint32_t(c.Extent[0]), height: C.uint32_t(c.Extent[1]), depth: C.uint32_t(c.Extent[2])},
	}
	C.vkCmdCopyBufferToImage(ne.buf, c.Buffer.Native().(*nativeBuffer).buf, c.Texture.Texture.Native().(*nativeTexture).img,
		C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, 1, &region)
}

func (b *vkBackend) CopyTextureToBuffer(n driver.Native, c *driver.BufImgCopy) {
	ne := n.(*nativeCommandEncoder)
	region := C.VkBufferImageCopy{
		bufferOffset:      C.VkDeviceSize(c.BufferOffset),
		bufferRowLength:   C.uint32_t(c.BytesPerRow),
		bufferImageHeight: C.uint32_t(c.RowsPerImage),
		imageSubresource:  copyLocSubresource(c.Texture),
		imageOffset: C.VkOffset3D{
			x: C.int32_t(c.Texture.Origin[0]), y: C.int32_t(c.Texture.Origin[1]), z: C.int32_t(c.Texture.Origin[2]),
		},
		imageExtent: C.VkExtent3D{width: C.uint32_t(c.Extent[0]), height: C.uint32_t(c.Extent[1]), depth: C.uint32_t(c.Extent[2])},
	}
	C.vkCmdCopyImageToBuffer(ne.buf, c.Texture.Texture.Native().(*nativeTexture).img,
		C.VK_IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL, c.Buffer.Native().(*nativeBuffer).buf, 1, &region)
}

func (b *vkBackend) CopyTextureToTexture(n driver.Native, c *driver.ImageCopy) {
	ne := n.(*nativeCommandEncoder)
	region := C.VkImageCopy{
		srcSubresource: copyLocSubresource(c.Src),
		srcOffset:      C.VkOffset3D{x: C.int32_t(c.Src.Origin[0]), y: C.int32_t(c.Src.Origin[1]), z: C.int32_t(c.Src.Origin[2])},
		dstSubresource: copyLocSubresource(c.Dst),
		dstOffset:      C.VkOffset3D{x: C.int32_t(c.Dst.Origin[0]), y: C.int32_t(c.Dst.Origin[1]), z: C.int32_t(c.Dst.Origin[2])},
		extent:         C.VkExtent3D{width: C.uint32_t(c.Extent[0]), height: C.uint32_t(c.Extent[1]), depth: C.uint32_t(c.Extent[2])},
	}
	C.vkCmdCopyImage(ne.buf, c.Src.Texture.Native().(*nativeTexture).img, C.VK_IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL,
		c.Dst.Texture.Native().(*nativeTexture).img, C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, 1, &region)
}

func pipelineStageFlags(s driver.PipelineStage) C.VkPipelineStageFlags {
	var f C.VkPipelineStageFlags
	if s&driver.StageVertexInput != 0 {
		f |= C.VK_PIPELINE_STAGE_VERTEX_INPUT_BIT
	}
	if s&driver.StageVertexShading != 0 {
		f |= C.VK_PIPELINE_STAGE_VERTEX_SHADER_BIT
	}
	if s&driver.StageFragmentShading != 0 {
		f |= C.VK_PIPELINE_STAGE_FRAGMENT_SHADER_BIT
	}
	if s&driver.StageComputeShading != 0 {
		f |= C.VK_PIPELINE_STAGE_COMPUTE_SHADER_BIT
	}
	if s&driver.StageColorOutput != 0 {
		f |= C.VK_PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT_BIT
	}
	if s&driver.StageDSOutput != 0 {
		f |= C.VK_PIPELINE_STAGE_EARLY_FRAGMENT_TESTS_BIT | C.VK_PIPELINE_STAGE_LATE_FRAGMENT_TESTS_BIT
	}
	if s&driver.StageCopy != 0 {
		f |= C.VK_PIPELINE_STAGE_TRANSFER_BIT
	}
	if s&driver.StageAll != 0 || f == 0 {
		f |= C.VK_PIPELINE_STAGE_ALL_COMMANDS_BIT
	}
	return f
}

func accessFlagsToVk(a driver.AccessFlags) C.VkAccessFlags {
	var f C.VkAccessFlags
	if a&driver.AccessColorRead != 0 {
		f |= C.VK_ACCESS_COLOR_ATTACHMENT_READ_BIT
	}
	if a&driver.AccessColorWrite != 0 {
		f |= C.VK_ACCESS_COLOR_ATTACHMENT_WRITE_BIT
	}
	if a&driver.AccessDSRead != 0 {
		f |= C.VK_ACCESS_DEPTH_STENCIL_ATTACHMENT_READ_BIT
	}
	if a&driver.AccessDSWrite != 0 {
		f |= C.VK_ACCESS_DEPTH_STENCIL_ATTACHMENT_WRITE_BIT
	}
	if a&driver.AccessShaderRead != 0 {
		f |= C.VK_ACCESS_SHADER_READ_BIT
	}
	if a&driver.AccessShaderWrite != 0 {
		f |= C.VK_ACCESS_SHADER_WRITE_BIT
	}
	if a&driver.AccessCopyRead != 0 {
		f |= C.VK_ACCESS_TRANSFER_READ_BIT
	}
	if a&driver.AccessCopyWrite != 0 {
		f |= C.VK_ACCESS_TRANSFER_WRITE_BIT
	}
	return f
}

func (b *vkBackend) Barrier(n driver.Native, bs []driver.Barrier) {
	ne := n.(*nativeCommandEncoder)
	for _, br := range bs {
		mem := C.VkMemoryBarrier{
			sType:         C.VK_STRUCTURE_TYPE_MEMORY_BARRIER,
			srcAccessMask: accessFlagsToVk(br.SrcAccess),
			dstAccessMask: accessFlagsToVk(br.DstAccess),
		}
		C.vkCmdPipelineBarrier(ne.buf, pipelineStageFlags(br.SrcStage), pipelineStageFlags(br.DstStage),
			0, 1, &mem, 0, nil, 0, nil)
	}
}

func layoutToVk(l driver.Layout) C.VkImageLayout {
	switch l {
	case driver.LayoutColorAttachment:
		return C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
	case driver.LayoutDSAttachment:
		return C.VK_IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL
	case driver.LayoutDSReadOnly:
		return C.VK_IMAGE_LAYOUT_DEPTH_STENCIL_READ_ONLY_OPTIMAL
	case driver.LayoutResolveSrc, driver.LayoutCopySrc:
		return C.VK_IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL
	case driver.LayoutResolveDst, driver.LayoutCopyDst:
		return C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL
	case driver.LayoutShaderReadOnly:
		return C.VK_IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL
	case driver.LayoutPresentSrc:
		return C.VK_IMAGE_LAYOUT_PRESENT_SRC_KHR
	case driver.LayoutCommon:
		return C.VK_IMAGE_LAYOUT_GENERAL
	default:
		return C.VK_IMAGE_LAYOUT_UNDEFINED
	}
}

func (b *vkBackend) Transition(n driver.Native, ts []driver.Transition) {
	ne := n.(*nativeCommandEncoder)
	for _, t := range ts {
		nt := t.Texture.Native().(*nativeTexture)
		barrier := C.VkImageMemoryBarrier{
			sType:               C.VK_STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER,
			srcAccessMask:       accessFlagsToVk(driver.AccessFlagsForLayout(t.OldLayout)),
			dstAccessMask:       accessFlagsToVk(driver.AccessFlagsForLayout(t.NewLayout)),
			oldLayout:           layoutToVk(t.OldLayout),
			newLayout:           layoutToVk(t.NewLayout),
			srcQueueFamilyIndex: C.VK_QUEUE_FAMILY_IGNORED,
			dstQueueFamilyIndex: C.VK_QUEUE_FAMILY_IGNORED,
			image:               nt.img,
			subresourceRange: C.VkImageSubresourceRange{
				aspectMask:     aspectFlags(driver.AspectAll, t.Texture.Descriptor().Format),
				baseMipLevel:   C.uint32_t(t.BaseMipLevel),
				levelCount:     C.uint32_t(t.MipLevelCount),
				baseArrayLayer: C.uint32_t(t.BaseArrayLayer),
				layerCount:     C.uint32_t(t.ArrayLayerCount),
			},
		}
		C.vkCmdPipelineBarrier(ne.buf,
			C.VK_PIPELINE_STAGE_ALL_COMMANDS_BIT, C.VK_PIPELINE_STAGE_ALL_COMMANDS_BIT,
			0, 0, nil, 0, nil, 1, &barrier)
		nt.layout = t.NewLayout
	}
}
