// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import "testing"

func TestAlignUp(t *testing.T) {
	cases := []struct {
		value, alignment, want int64
	}{
		{0, 256, 0},
		{1, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{100, 4, 100},
		{101, 4, 104},
		{10, 0, 10},
		{10, -1, 10},
	}
	for _, c := range cases {
		if got := AlignUp(c.value, c.alignment); got != c.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", c.value, c.alignment, got, c.want)
		}
	}
}

func TestAlignUpProperties(t *testing.T) {
	alignments := []int64{1, 2, 4, 8, 16, 64, 256}
	for _, a := range alignments {
		for v := int64(0); v < 1024; v++ {
			got := AlignUp(v, a)
			if got < v {
				t.Fatalf("AlignUp(%d, %d) = %d < value", v, a, got)
			}
			if got%a != 0 {
				t.Fatalf("AlignUp(%d, %d) = %d not a multiple of alignment", v, a, got)
			}
			if got-v >= a {
				t.Fatalf("AlignUp(%d, %d) = %d overshoots by a full alignment", v, a, got)
			}
		}
	}
}

func TestMinUniformAlignment(t *testing.T) {
	if got := MinUniformAlignment(64); got != 256 {
		t.Errorf("MinUniformAlignment(64) = %d, want 256", got)
	}
	if got := MinUniformAlignment(512); got != 512 {
		t.Errorf("MinUniformAlignment(512) = %d, want 512", got)
	}
	if got := MinUniformAlignment(256); got != 256 {
		t.Errorf("MinUniformAlignment(256) = %d, want 256", got)
	}
}
