package viewport

func percent(a, b int) int {
	if b == 0 {
		return 100
	}
	return a * 100 / b
}

func clampValMinMax(v, minimum, maximum int) int {
	return max(minimum, min(maximum, v))
}
