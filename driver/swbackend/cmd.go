// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package swbackend

import "github.com/kestrelgpu/gfx/driver"

// swCommandEncoder defers every copy to a recorded closure, run in
// order by QueueSubmit — the same "record now, execute at submit"
// contract driver/vk and driver/wgpu honor, just without a real command
// buffer backing it. Begin/End/Reset are accepted unconditionally:
// CommandEncoder's Reset/Recording/Finished state machine (I5) is
// enforced one layer up, in driver/cmd.go, before any of these are
// ever called.
type swCommandEncoder struct {
	ops []func()
}

func (b *swBackend) NewCommandEncoder(driver.Native) (driver.Native, error) {
	return &swCommandEncoder{}, nil
}

func (b *swBackend) EncoderBegin(driver.Native) error { return nil }
func (b *swBackend) EncoderEnd(driver.Native) error   { return nil }

func (b *swBackend) EncoderReset(n driver.Native) error {
	n.(*swCommandEncoder).ops = nil
	return nil
}

func (b *swBackend) DestroyCommandEncoder(driver.Native) {}

type swPassEncoder struct{}

func (b *swBackend) BeginRenderPass(enc driver.Native, pass driver.Native, fb driver.Native, clear []driver.ClearValue) (driver.Native, error) {
	return &swPassEncoder{}, nil
}
func (b *swBackend) EndRenderPass(driver.Native) {}

func (b *swBackend) BeginComputePass(enc driver.Native) (driver.Native, error) {
	return &swPassEncoder{}, nil
}
func (b *swBackend) EndComputePass(driver.Native) {}

func (b *swBackend) SetPipeline(driver.Native, driver.Native)                     {}
func (b *swBackend) SetViewport(driver.Native, []driver.Viewport)                 {}
func (b *swBackend) SetScissor(driver.Native, []driver.Scissor)                   {}
func (b *swBackend) SetVertexBuffer(driver.Native, int, driver.Native, int64)     {}
func (b *swBackend) SetIndexBuffer(driver.Native, driver.Native, driver.IndexFmt, int64) {}
func (b *swBackend) SetBindGroup(driver.Native, int, driver.Native, []uint32)     {}
func (b *swBackend) Draw(driver.Native, int, int, int, int)                      {}
func (b *swBackend) DrawIndexed(driver.Native, int, int, int, int, int)          {}
func (b *swBackend) Dispatch(driver.Native, int, int, int)                       {}

func (b *swBackend) CopyBufferToBuffer(en driver.Native, c *driver.BufferCopy) {
	enc := en.(*swCommandEncoder)
	src, dst := c.Src, c.Dst
	srcOff, dstOff, size := c.SrcOffset, c.DstOffset, c.Size
	enc.ops = append(enc.ops, func() {
		srcN := src.Native().(*swBuffer)
		dstN := dst.Native().(*swBuffer)
		srcN.mu.Lock()
		data := make([]byte, size)
		copy(data, srcN.data[srcOff:srcOff+size])
		srcN.mu.Unlock()
		dstN.mu.Lock()
		copy(dstN.data[dstOff:], data)
		dstN.mu.Unlock()
	})
}

// CopyBufferToTexture/CopyTextureToBuffer are accepted but produce no
// pixel movement: swbackend never backs a texture with real storage
// (see resource.go's swTexture) since the scenarios that read rendered
// pixels back run against driver/vk and driver/wgpu instead.
func (b *swBackend) CopyBufferToTexture(driver.Native, *driver.BufImgCopy) {}
func (b *swBackend) CopyTextureToBuffer(driver.Native, *driver.BufImgCopy) {}
func (b *swBackend) CopyTextureToTexture(driver.Native, *driver.ImageCopy) {}

func (b *swBackend) Barrier(driver.Native, []driver.Barrier) {}

func (b *swBackend) Transition(en driver.Native, t []driver.Transition) {
	for i := range t {
		t[i].Texture.Native().(*swTexture).layout = t[i].NewLayout
	}
}
