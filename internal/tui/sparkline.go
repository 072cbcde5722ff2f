package tui

import "strings"

var bars = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as one block character each, scaled to the
// largest value. Missing values render as spaces. When width is positive
// and smaller than len(values), consecutive values are averaged into width
// buckets.
func Sparkline(values []*float64, width int) string {
	if width > 0 && len(values) > width {
		values = resample(values, width)
	}
	peak := 0.0
	for _, v := range values {
		if v != nil && *v > peak {
			peak = *v
		}
	}
	var b strings.Builder
	for _, v := range values {
		switch {
		case v == nil:
			b.WriteRune(' ')
		case peak <= 0 || *v <= 0:
			b.WriteRune(bars[0])
		default:
			idx := int(*v / peak * float64(len(bars)-1))
			b.WriteRune(bars[min(idx, len(bars)-1)])
		}
	}
	return b.String()
}

func resample(values []*float64, width int) []*float64 {
	out := make([]*float64, width)
	for i := range out {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		sum, n := 0.0, 0
		for _, v := range values[lo:hi] {
			if v != nil {
				sum += *v
				n++
			}
		}
		if n > 0 {
			avg := sum / float64(n)
			out[i] = &avg
		}
	}
	return out
}
