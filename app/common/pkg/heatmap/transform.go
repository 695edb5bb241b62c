// Package heatmap 生成按州聚合的热力图数据，并对颜色强度做对比度增强。
package heatmap

import "math"

// Transform 按灵敏度重新分布取值以拉开颜色对比。
// 结果仍落在原始 [min, max] 区间内，最小值与最大值保持不变，顺序不变。
// 小于等于 0 的值视为无数据，原样返回且不参与 min/max 计算。
func Transform(values []float64, sensitivity float64) []float64 {
	out := append([]float64(nil), values...)
	if sensitivity <= 0 {
		sensitivity = 1
	}

	lo, hi, ok := bounds(values)
	if !ok || lo == hi {
		return out
	}

	f := curve(sensitivity)
	f0, f1 := f(0), f(1)
	span := f1 - f0
	for i, v := range values {
		switch {
		case v <= 0:
			continue
		case v == lo:
			out[i] = lo
		case v == hi:
			out[i] = hi
		default:
			n := (v - lo) / (hi - lo)
			e := n
			if span > 0 {
				e = clamp01((f(n) - f0) / span)
			}
			out[i] = math.Min(hi, lo+e*(hi-lo))
		}
	}
	return out
}

func bounds(values []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v <= 0 {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}

// curve 返回 [0,1] 上单调不减的增强函数
func curve(s float64) func(float64) float64 {
	k := 1 / math.Max(s, 0.001)
	switch {
	case s <= 0.01:
		steps := math.Ceil(100 / s)
		return func(n float64) float64 {
			step := math.Floor(n*steps) / (steps - 1)
			sig := 1 / (1 + math.Exp(-n*k*10))
			return clamp01(math.Pow(math.Max(step, sig), 0.1))
		}
	case s <= 0.05:
		steps := math.Ceil(50 / s)
		return func(n float64) float64 {
			step := math.Floor(n*steps) / (steps - 1)
			return clamp01(math.Max(step, math.Tanh(n*k*5)))
		}
	case s <= 0.3:
		b := math.Round(1 / s)
		smooth := s <= 0.15
		return func(n float64) float64 {
			idx := math.Min(math.Floor(n*b), b)
			e := idx / (b - 1)
			if smooth {
				e += (n*b - idx) * 0.8 / b
			}
			return math.Min(1, e)
		}
	case s <= 0.6:
		return func(n float64) float64 {
			return 1 - math.Exp(-n*2/s)
		}
	default:
		return func(n float64) float64 {
			return math.Pow(n, s)
		}
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
