// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// AlignUp rounds value up to the next multiple of alignment, per
// spec.md §4.2.3. alignment must be a positive power of two; callers
// that pass a dynamic-uniform-buffer alignment should first combine it
// with the device minimum via MinUniformAlignment.
//
// AlignUp(x, a) >= x, AlignUp(x, a) mod a == 0, and
// AlignUp(x, a) - x < a for all non-negative x (P4).
func AlignUp(value, alignment int64) int64 {
	if alignment <= 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// MinUniformAlignment returns the effective alignment that dynamic
// uniform-buffer offsets and bind-group entries must respect: the
// larger of 256 bytes and the device-reported minimum, per spec.md
// §4.2.3 ("max(256, device.minUniformBufferOffsetAlignment)").
func MinUniformAlignment(deviceMin int64) int64 {
	if deviceMin > 256 {
		return deviceMin
	}
	return 256
}
