// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wgpu

import (
	"sync"

	"github.com/kestrelgpu/gfx/driver"
)

// nativeQuerySet is a plain Go-side slot array: hal exposes QuerySet only
// as a marker resource interface with no Device.CreateQuerySet entry
// point and no occlusion/timestamp write path on RenderPassEncoder
// (unlike VkQueryPool), so occlusion and timestamp queries are emulated
// entirely in this package rather than routed through hal at all.
// Results always resolve to zero until a real write path exists.
type nativeQuerySet struct {
	mu      sync.Mutex
	typ     driver.QueryType
	results []uint64
}

func (b *wgpuBackend) NewQuerySet(n driver.Native, desc *driver.QuerySetDescriptor) (driver.Native, error) {
	_ = n.(*nativeDevice)
	return &nativeQuerySet{typ: desc.Type, results: make([]uint64, desc.Count)}, nil
}

func (b *wgpuBackend) ResolveQuerySet(n driver.Native, first, count int) ([]uint64, error) {
	nq := n.(*nativeQuerySet)
	nq.mu.Lock()
	defer nq.mu.Unlock()
	if first < 0 || count < 0 || first+count > len(nq.results) {
		return nil, errf(driver.InvalidArgument, "webgpu: query range [%d,%d) out of bounds for set of size %d", first, first+count, len(nq.results))
	}
	out := make([]uint64, count)
	copy(out, nq.results[first:first+count])
	return out, nil
}

func (b *wgpuBackend) DestroyQuerySet(n driver.Native) {
	_ = n.(*nativeQuerySet)
}
