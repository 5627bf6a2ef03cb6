// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// QueryType selects what a QuerySet measures.
type QueryType int

const (
	QueryOcclusion QueryType = iota
	QueryTimestamp
)

// QuerySetDescriptor configures a new QuerySet.
type QuerySetDescriptor struct {
	Type  QueryType
	Count uint32
	Label string
}

// QuerySet is a fixed-size array of GPU-writable query slots, a
// supplemented feature recovered from original_source/gfx (the
// distilled spec.md omits query readback; SPEC_FULL.md §"supplemented
// features" restores it) and grounded on github.com/gogpu/wgpu's
// QuerySet.Resolve (core/query or hal layer).
type QuerySet struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
	count   uint32
}

// NewQuerySet creates a QuerySet on d.
func (d *Device) NewQuerySet(desc *QuerySetDescriptor) (*QuerySet, error) {
	native, err := d.backend.NewQuerySet(d.native, desc)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &QuerySet{
		h:       reg.wrap(KindQuerySet, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
		count:   desc.Count,
	}, nil
}

// Handle returns q's opaque Handle.
func (q *QuerySet) Handle() Handle { return q.h }

// Resolve reads back count raw 64-bit query results starting at first,
// blocking until the queries have completed.
func (q *QuerySet) Resolve(first, count int) ([]uint64, error) {
	if first < 0 || count < 0 || first+count > int(q.count) {
		err := errf(InvalidArgument, "query range [%d,%d) exceeds query set size %d", first, first+count, q.count)
		q.device.errScopes.report(err)
		return nil, err
	}
	res, err := q.backend.ResolveQuerySet(q.native, first, count)
	q.device.errScopes.report(err)
	return res, err
}

// Destroy releases q.
func (q *QuerySet) Destroy() {
	if !reg.isLive(q.h) {
		return
	}
	q.backend.DestroyQuerySet(q.native)
	reg.unwrap(q.h)
}
