// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <vulkan/vulkan.h>
import "C"

import (
	"unsafe"

	"github.com/kestrelgpu/gfx/driver"
)

type nativeQuerySet struct {
	dev   C.VkDevice
	pool  C.VkQueryPool
	count uint32
}

func (b *vkBackend) NewQuerySet(n driver.Native, desc *driver.QuerySetDescriptor) (driver.Native, error) {
	nd := n.(*nativeDevice)
	qtype := C.VkQueryType(C.VK_QUERY_TYPE_OCCLUSION)
	if desc.Type == driver.QueryTimestamp {
		qtype = C.VK_QUERY_TYPE_TIMESTAMP
	}
	info := C.VkQueryPoolCreateInfo{
		sType:      C.VK_STRUCTURE_TYPE_QUERY_POOL_CREATE_INFO,
		queryType:  qtype,
		queryCount: C.uint32_t(desc.Count),
	}
	var pool C.VkQueryPool
	if err := checkResult(C.vkCreateQueryPool(nd.dev, &info, nil, &pool)); err != nil {
		return nil, err
	}
	return &nativeQuerySet{dev: nd.dev, pool: pool, count: desc.Count}, nil
}

func (b *vkBackend) ResolveQuerySet(n driver.Native, first, count int) ([]uint64, error) {
	nq := n.(*nativeQuerySet)
	results := make([]uint64, count)
	err := checkResult(C.vkGetQueryPoolResults(
		nq.dev, nq.pool, C.uint32_t(first), C.uint32_t(count),
		C.size_t(count)*8, unsafe.Pointer(&results[0]), 8,
		C.VK_QUERY_RESULT_64_BIT|C.VK_QUERY_RESULT_WAIT_BIT))
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (b *vkBackend) DestroyQuerySet(n driver.Native) {
	nq := n.(*nativeQuerySet)
	C.vkDestroyQueryPool(nq.dev, nq.pool, nil)
}
