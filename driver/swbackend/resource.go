// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package swbackend

import (
	"sync"

	"github.com/kestrelgpu/gfx/driver"
)

// swBuffer stores real bytes, grounded on hal/software's Buffer —
// unlike hal/noop's placeholder, P7's write/copy/readback round-trip
// needs actual memory to round-trip through.
type swBuffer struct {
	mu    sync.Mutex
	data  []byte
	usage driver.BufferUsage
}

func (b *swBackend) NewBuffer(n driver.Native, desc *driver.BufferDescriptor) (driver.Native, error) {
	return &swBuffer{data: make([]byte, desc.Size), usage: desc.Usage}, nil
}

func (b *swBackend) BufferBytes(n driver.Native) []byte { return n.(*swBuffer).data }
func (b *swBackend) BufferCap(n driver.Native) int64    { return int64(len(n.(*swBuffer).data)) }
func (b *swBackend) DestroyBuffer(driver.Native)        {}

// swTexture only tracks shape and the I6 layout-transition bookkeeping
// every backend must maintain; it stores no pixel data since swbackend
// never rasterizes into one (render-to-offscreen runs against
// driver/vk and driver/wgpu instead).
type swTexture struct {
	desc   driver.TextureDescriptor
	layout driver.Layout
}

func (b *swBackend) NewTexture(n driver.Native, desc *driver.TextureDescriptor) (driver.Native, error) {
	return &swTexture{desc: *desc, layout: driver.LayoutUndefined}, nil
}

func (b *swBackend) TextureLayout(n driver.Native) driver.Layout { return n.(*swTexture).layout }
func (b *swBackend) DestroyTexture(driver.Native)                {}

type swTextureView struct {
	texture *swTexture
	desc    driver.TextureViewDescriptor
}

// TextureNewView has no range validation of its own: driver.Texture.NewView
// (driver/resource.go) already rejects out-of-range mip/layer counts
// before ever calling this method (P3), so by the time swbackend sees a
// request it is known in-range.
func (b *swBackend) TextureNewView(n driver.Native, desc *driver.TextureViewDescriptor) (driver.Native, error) {
	return &swTextureView{texture: n.(*swTexture), desc: *desc}, nil
}

func (b *swBackend) DestroyTextureView(driver.Native) {}

func (b *swBackend) NewSampler(driver.Native, *driver.SamplingDescriptor) (driver.Native, error) {
	return &struct{}{}, nil
}
func (b *swBackend) DestroySampler(driver.Native) {}
