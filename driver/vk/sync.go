// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <vulkan/vulkan.h>
import "C"

import (
	"unsafe"

	"github.com/kestrelgpu/gfx/driver"
)

type nativeFence struct {
	dev   C.VkDevice
	fence C.VkFence
}

func (b *vkBackend) NewFence(n driver.Native, signaled bool) (driver.Native, error) {
	nd := n.(*nativeDevice)
	var flags C.VkFenceCreateFlags
	if signaled {
		flags = C.VK_FENCE_CREATE_SIGNALED_BIT
	}
	info := C.VkFenceCreateInfo{sType: C.VK_STRUCTURE_TYPE_FENCE_CREATE_INFO, flags: flags}
	var f C.VkFence
	if err := checkResult(C.vkCreateFence(nd.dev, &info, nil, &f)); err != nil {
		return nil, err
	}
	return &nativeFence{dev: nd.dev, fence: f}, nil
}

func (b *vkBackend) FenceWait(n driver.Native, timeoutNs uint64) driver.Result {
	nf := n.(*nativeFence)
	res := C.vkWaitForFences(nf.dev, 1, &nf.fence, C.VK_TRUE, C.uint64_t(timeoutNs))
	switch res {
	case C.VK_SUCCESS:
		return driver.Success
	case C.VK_TIMEOUT:
		return driver.Timeout
	default:
		return driver.Unknown
	}
}

func (b *vkBackend) FenceReset(n driver.Native) error {
	nf := n.(*nativeFence)
	return checkResult(C.vkResetFences(nf.dev, 1, &nf.fence))
}

func (b *vkBackend) FenceStatus(n driver.Native) driver.Result {
	nf := n.(*nativeFence)
	res := C.vkGetFenceStatus(nf.dev, nf.fence)
	if res == C.VK_SUCCESS {
		return driver.Success
	}
	return driver.NotReady
}

func (b *vkBackend) DestroyFence(n driver.Native) {
	nf := n.(*nativeFence)
	C.vkDestroyFence(nf.dev, nf.fence, nil)
}

type nativeSemaphore struct {
	dev C.VkDevice
	sem C.VkSemaphore
	typ driver.SemaphoreType
}

func (b *vkBackend) NewSemaphore(n driver.Native, typ driver.SemaphoreType) (driver.Native, error) {
	nd := n.(*nativeDevice)
	info := C.VkSemaphoreCreateInfo{sType: C.VK_STRUCTURE_TYPE_SEMAPHORE_CREATE_INFO}
	var typeInfo C.VkSemaphoreTypeCreateInfo
	if typ == driver.SemaphoreTimeline {
		typeInfo = C.VkSemaphoreTypeCreateInfo{
			sType:         C.VK_STRUCTURE_TYPE_SEMAPHORE_TYPE_CREATE_INFO,
			semaphoreType: C.VK_SEMAPHORE_TYPE_TIMELINE,
		}
		info.pNext = unsafe.Pointer(&typeInfo)
	}
	var sem C.VkSemaphore
	if err := checkResult(C.vkCreateSemaphore(nd.dev, &info, nil, &sem)); err != nil {
		return nil, err
	}
	return &nativeSemaphore{dev: nd.dev, sem: sem, typ: typ}, nil
}

func (b *vkBackend) SemaphoreSignal(n driver.Native, value uint64) error {
	ns := n.(*nativeSemaphore)
	info := C.VkSemaphoreSignalInfo{
		sType:     C.VK_STRUCTURE_TYPE_SEMAPHORE_SIGNAL_INFO,
		semaphore: ns.sem,
		value:     C.uint64_t(value),
	}
	return checkResult(C.vkSignalSemaphore(ns.dev, &info))
}

func (b *vkBackend) SemaphoreWait(n driver.Native, value uint64, timeoutNs uint64) driver.Result {
	ns := n.(*nativeSemaphore)
	waitInfo := C.VkSemaphoreWaitInfo{
		sType:          C.VK_STRUCTURE_TYPE_SEMAPHORE_WAIT_INFO,
		semaphoreCount: 1,
		pSemaphores:    &ns.sem,
		pValues:        (*C.uint64_t)(unsafe.Pointer(&value)),
	}
	res := C.vkWaitSemaphores(ns.dev, &waitInfo, C.uint64_t(timeoutNs))
	switch res {
	case C.VK_SUCCESS:
		return driver.Success
	case C.VK_TIMEOUT:
		return driver.Timeout
	default:
		return driver.Unknown
	}
}

func (b *vkBackend) SemaphoreValue(n driver.Native) uint64 {
	ns := n.(*nativeSemaphore)
	var v C.uint64_t
	C.vkGetSemaphoreCounterValue(ns.dev, ns.sem, &v)
	return uint64(v)
}

func (b *vkBackend) DestroySemaphore(n driver.Native) {
	ns := n.(*nativeSemaphore)
	C.vkDestroySemaphore(ns.dev, ns.sem, nil)
}
