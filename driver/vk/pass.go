// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <vulkan/vulkan.h>
import "C"

import (
	"github.com/kestrelgpu/gfx/driver"
)

type nativeRenderPass struct {
	dev  C.VkDevice
	pass C.VkRenderPass
	desc driver.RenderPassDescriptor
}

func loadOp(l driver.LoadOp) C.VkAttachmentLoadOp {
	switch l {
	case driver.LoadClear:
		return C.VK_ATTACHMENT_LOAD_OP_CLEAR
	case driver.LoadDontCare:
		return C.VK_ATTACHMENT_LOAD_OP_DONT_CARE
	default:
		return C.VK_ATTACHMENT_LOAD_OP_LOAD
	}
}

func storeOp(s driver.StoreOp) C.VkAttachmentStoreOp {
	if s == driver.StoreDiscard {
		return C.VK_ATTACHMENT_STORE_OP_DONT_CARE
	}
	return C.VK_ATTACHMENT_STORE_OP_STORE
}

// NewRenderPass builds a VkRenderPass from desc, grounded on the
// teacher's pass.go (pre-rewrite) render-pass-description assembly.
// As documented on driver.RenderPass, this object is independent of
// any concrete Framebuffer's size and is not recreated on resize.
func (b *vkBackend) NewRenderPass(n driver.Native, desc *driver.RenderPassDescriptor) (driver.Native, error) {
	nd := n.(*nativeDevice)

	nAttach := len(desc.ColorAttachments)
	if desc.DepthStencil != nil {
		nAttach++
	}
	attachments := make([]C.VkAttachmentDescription, 0, nAttach)
	colorRefs := make([]C.VkAttachmentReference, 0, len(desc.ColorAttachments))
	for i, c := range desc.ColorAttachments {
		attachments = append(attachments, C.VkAttachmentDescription{
			format:        pixelFmtToVk(c.Format),
			samples:       sampleCountFlagBits(orOne(c.SampleCount)),
			loadOp:        loadOp(c.Load),
			storeOp:       storeOp(c.Store),
			initialLayout: C.VK_IMAGE_LAYOUT_UNDEFINED,
			finalLayout:   C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL,
		})
		colorRefs = append(colorRefs, C.VkAttachmentReference{
			attachment: C.uint32_t(i),
			layout:     C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL,
		})
	}
	var dsRef *C.VkAttachmentReference
	if ds := desc.DepthStencil; ds != nil {
		idx := C.uint32_t(len(attachments))
		attachments = append(attachments, C.VkAttachmentDescription{
			format:         pixelFmtToVk(ds.Format),
			samples:        sampleCountFlagBits(orOne(ds.SampleCount)),
			loadOp:         loadOp(ds.Load),
			storeOp:        storeOp(ds.Store),
			stencilLoadOp:  loadOp(ds.StencilLoad),
			stencilStoreOp: storeOp(ds.StencilStore),
			initialLayout:  C.VK_IMAGE_LAYOUT_UNDEFINED,
			finalLayout:    C.VK_IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL,
		})
		r := C.VkAttachmentReference{attachment: idx, layout: C.VK_IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL}
		dsRef = &r
	}

	subpass := C.VkSubpassDescription{
		pipelineBindPoint:    C.VK_PIPELINE_BIND_POINT_GRAPHICS,
		colorAttachmentCount: C.uint32_t(len(colorRefs)),
		pDepthStencilAttachment: dsRef,
	}
	if len(colorRefs) > 0 {
		subpass.pColorAttachments = &colorRefs[0]
	}

	info := C.VkRenderPassCreateInfo{
		sType:           C.VK_STRUCTURE_TYPE_RENDER_PASS_CREATE_INFO,
		attachmentCount: C.uint32_t(len(attachments)),
		subpassCount:    1,
		pSubpasses:      &subpass,
	}
	if len(attachments) > 0 {
		info.pAttachments = &attachments[0]
	}

	var pass C.VkRenderPass
	if err := checkResult(C.vkCreateRenderPass(nd.dev, &info, nil, &pass)); err != nil {
		return nil, err
	}
	return &nativeRenderPass{dev: nd.dev, pass: pass, desc: *desc}, nil
}

func orOne(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	return n
}

func (b *vkBackend) DestroyRenderPass(n driver.Native) {
	np := n.(*nativeRenderPass)
	C.vkDestroyRenderPass(np.dev, np.pass, nil)
}

type nativeFramebuffer struct {
	dev C.VkDevice
	fb  C.VkFramebuffer
}

func (b *vkBackend) NewFramebuffer(n driver.Native, desc *driver.FramebufferDescriptor) (driver.Native, error) {
	np := n.(*nativeRenderPass)

	views := make([]C.VkImageView, 0, len(desc.ColorViews)+1)
	for _, v := range desc.ColorViews {
		views = append(views, v.Native().(*nativeTextureView).view)
	}
	if desc.DepthStencilView != nil {
		views = append(views, desc.DepthStencilView.Native().(*nativeTextureView).view)
	}

	info := C.VkFramebufferCreateInfo{
		sType:           C.VK_STRUCTURE_TYPE_FRAMEBUFFER_CREATE_INFO,
		renderPass:      np.pass,
		attachmentCount: C.uint32_t(len(views)),
		width:           C.uint32_t(desc.Width),
		height:          C.uint32_t(desc.Height),
		layers:          1,
	}
	if len(views) > 0 {
		info.pAttachments = &views[0]
	}

	var fb C.VkFramebuffer
	if err := checkResult(C.vkCreateFramebuffer(np.dev, &info, nil, &fb)); err != nil {
		return nil, err
	}
	return &nativeFramebuffer{dev: np.dev, fb: fb}, nil
}

func (b *vkBackend) DestroyFramebuffer(n driver.Native) {
	nf := n.(*nativeFramebuffer)
	C.vkDestroyFramebuffer(nf.dev, nf.fb, nil)
}
