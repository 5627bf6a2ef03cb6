// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import "testing"

func TestFormatHasStencil(t *testing.T) {
	stencil := map[PixelFmt]bool{
		R8Unorm:             false,
		R8G8B8A8Unorm:       false,
		Depth16Unorm:        false,
		Depth24Plus:         false,
		Depth32Float:        false,
		Depth24PlusStencil8: true,
		Depth32FloatStencil8: true,
		Stencil8:            true,
	}
	for f, want := range stencil {
		if got := FormatHasStencil(f); got != want {
			t.Errorf("FormatHasStencil(%v) = %v, want %v", f, got, want)
		}
	}
}

func TestFormatHasDepth(t *testing.T) {
	depth := map[PixelFmt]bool{
		R8Unorm:             false,
		Stencil8:            false,
		Depth16Unorm:        true,
		Depth24Plus:         true,
		Depth32Float:        true,
		Depth24PlusStencil8: true,
		Depth32FloatStencil8: true,
	}
	for f, want := range depth {
		if got := FormatHasDepth(f); got != want {
			t.Errorf("FormatHasDepth(%v) = %v, want %v", f, got, want)
		}
	}
}

func TestBufferUsageFlagsDistinctBits(t *testing.T) {
	flags := []BufferUsage{
		UsageVertex, UsageIndex, UsageUniform, UsageStorage, UsageIndirect,
		UsageCopySrc, UsageCopyDst, UsageMapRead, UsageMapWrite,
	}
	var seen BufferUsage
	for _, f := range flags {
		if seen&f != 0 {
			t.Fatalf("flag %v overlaps a previously seen flag (seen=%b)", f, seen)
		}
		seen |= f
	}
}

func TestAccessFlagsForLayout(t *testing.T) {
	if got := AccessFlagsForLayout(LayoutColorAttachment); got != AccessColorWrite {
		t.Errorf("AccessFlagsForLayout(LayoutColorAttachment) = %v, want AccessColorWrite", got)
	}
	if got := AccessFlagsForLayout(LayoutUndefined); got != AccessNone {
		t.Errorf("AccessFlagsForLayout(LayoutUndefined) = %v, want AccessNone", got)
	}
	if got := AccessFlagsForLayout(LayoutPresentSrc); got != AccessNone {
		t.Errorf("AccessFlagsForLayout(LayoutPresentSrc) = %v, want AccessNone", got)
	}
}

func TestWriteAllMask(t *testing.T) {
	want := WriteRed | WriteGreen | WriteBlue | WriteAlpha
	if WriteAll != want {
		t.Errorf("WriteAll = %b, want %b", WriteAll, want)
	}
}
