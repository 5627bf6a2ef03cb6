// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package swbackend

import "github.com/kestrelgpu/gfx/driver"

type swRenderPipeline struct{}

func (b *swBackend) NewRenderPipeline(driver.Native, *driver.GraphState) (driver.Native, error) {
	return &swRenderPipeline{}, nil
}
func (b *swBackend) DestroyRenderPipeline(driver.Native) {}

type swComputePipeline struct{}

func (b *swBackend) NewComputePipeline(driver.Native, *driver.CompState) (driver.Native, error) {
	return &swComputePipeline{}, nil
}
func (b *swBackend) DestroyComputePipeline(driver.Native) {}
