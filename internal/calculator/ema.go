package calculator

// EWM computes the adjusted exponentially weighted mean of values with
// smoothing factor alpha = 2/(span+1). Each output is the weighted average of
// all observations so far with weights (1-alpha)^k, so early outputs differ
// from the plain one-step recursion. A span below 1 is treated as 1.
func EWM(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	if span < 1 {
		span = 1
	}
	alpha := 2.0 / (float64(span) + 1.0)
	decay := 1.0 - alpha

	weighted := values[0]
	oldWeight := 1.0
	out[0] = weighted
	for i := 1; i < len(values); i++ {
		cur := values[i]
		oldWeight *= decay
		// Constant runs stay exact.
		if weighted != cur {
			weighted = oldWeight*weighted + cur
			weighted /= oldWeight + 1.0
		}
		oldWeight += 1.0
		out[i] = weighted
	}
	return out
}
