package evaluation

// DurationS converts a [t0, t1] nanosecond window to seconds. Windows that
// are empty or reversed yield 0.
func DurationS(t0, t1 uint64) float64 {
	if t1 <= t0 {
		return 0
	}
	return float64(t1-t0) / 1e9
}

// GoodputMbps is bytes*8/1e6 over durs seconds; 0 when no time elapsed.
func GoodputMbps(bytes uint64, durs float64) float64 {
	if durs <= 0 {
		return 0
	}
	return float64(bytes) * 8 / 1e6 / durs
}
