package classify

// Compress shrinks a raw simulated win probability toward 0.5 by the
// sport's compression factor, damping simulation noise in proportion to
// the sport's market efficiency. Pure: compress(0.5) == 0.5 for any factor.
// Factor range is validated at config load, not here.
func Compress(compressionFactor, rawProb float64) float64 {
	return 0.5 + (rawProb-0.5)*compressionFactor
}
