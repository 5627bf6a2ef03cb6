// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package swbackend

import "github.com/kestrelgpu/gfx/driver"

// swQuerySet stores zeroed results: swbackend never dispatches anything
// that would populate an occlusion/timestamp query for real, but the
// slot array still lets ResolveQuerySet exercise its range contract the
// same way a real backend's would.
type swQuerySet struct {
	results []uint64
}

func (b *swBackend) NewQuerySet(n driver.Native, desc *driver.QuerySetDescriptor) (driver.Native, error) {
	return &swQuerySet{results: make([]uint64, desc.Count)}, nil
}

func (b *swBackend) ResolveQuerySet(n driver.Native, first, count int) ([]uint64, error) {
	q := n.(*swQuerySet)
	out := make([]uint64, count)
	copy(out, q.results[first:first+count])
	return out, nil
}

func (b *swBackend) DestroyQuerySet(driver.Native) {}
