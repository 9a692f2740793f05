package astc

import "math"

// vfloat4 is a small RGBA float vector. The codec is written against scalar
// math with a fixed accumulation order so results are reproducible across
// platforms.
type vfloat4 [4]float32

func (v vfloat4) add(o vfloat4) vfloat4 {
	return vfloat4{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]}
}

func (v vfloat4) sub(o vfloat4) vfloat4 {
	return vfloat4{v[0] - o[0], v[1] - o[1], v[2] - o[2], v[3] - o[3]}
}

func (v vfloat4) mul(o vfloat4) vfloat4 {
	return vfloat4{v[0] * o[0], v[1] * o[1], v[2] * o[2], v[3] * o[3]}
}

func (v vfloat4) scale(s float32) vfloat4 {
	return vfloat4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

func (v vfloat4) dot(o vfloat4) float32 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] + v[3]*o[3]
}

func (v vfloat4) dot3(o vfloat4) float32 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v vfloat4) hsum() float32 {
	return v[0] + v[1] + v[2] + v[3]
}

func (v vfloat4) normalizeSafe(fallback vfloat4) vfloat4 {
	len2 := v.dot(v)
	if len2 <= 0 {
		return fallback
	}
	inv := float32(1.0 / math.Sqrt(float64(len2)))
	return v.scale(inv)
}

func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float32) float32 {
	return clampF32(v, 0, 1)
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sqrtF32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// flt2intRTN rounds to nearest and converts to int, matching the upstream
// astc::flt2int_rtn() (including its truncation behavior for negative v).
func flt2intRTN(v float32) int {
	return int(v + 0.5)
}
