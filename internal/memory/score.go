package memory

import "time"

// RecencyWeight maps an age in hours to (0,1]: 1.0 at age zero, 0.5 at one
// day, decaying smoothly toward zero. Negative ages (clock skew) are
// treated as zero so the weight never exceeds 1.0 or becomes undefined.
func RecencyWeight(ageHours float64) float64 {
	if ageHours < 0 {
		ageHours = 0
	}
	return 1.0 / (1.0 + ageHours/24.0)
}

// CompositeScore is the system's single eviction law: importance-weighted
// entries with recent timestamps score highest. Every importance-based
// pruning decision in the engine goes through this function so eviction
// behaviour stays predictable.
func CompositeScore(weight float64, age time.Duration) float64 {
	return 0.6*weight + 0.4*RecencyWeight(age.Hours())
}
