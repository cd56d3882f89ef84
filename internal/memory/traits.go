package memory

// Trait baselines are fixed per persona, not derived from data. Unknown
// persona keys fall back to a neutral default so a new persona always has
// a well-defined starting vector.
var traitBaselines = map[string]TraitVector{
	"jarvis": {
		TraitEnthusiasm:        0.4,
		TraitWarmth:            0.6,
		TraitHumor:             0.3,
		TraitFormality:         0.8,
		TraitDetailOrientation: 0.8,
		TraitCuriosity:         0.5,
	},
	"alexa": {
		TraitEnthusiasm:        0.7,
		TraitWarmth:            0.8,
		TraitHumor:             0.6,
		TraitFormality:         0.3,
		TraitDetailOrientation: 0.5,
		TraitCuriosity:         0.7,
	},
}

var defaultBaseline = TraitVector{
	TraitEnthusiasm:        0.5,
	TraitWarmth:            0.5,
	TraitHumor:             0.5,
	TraitFormality:         0.5,
	TraitDetailOrientation: 0.5,
	TraitCuriosity:         0.5,
}

// BaselineTraits returns the starting trait vector for a persona key.
// The returned vector is a copy; callers may mutate it freely.
func BaselineTraits(personaKey string) TraitVector {
	if base, ok := traitBaselines[personaKey]; ok {
		return base.Clone()
	}
	return defaultBaseline.Clone()
}

// blendWeight is the share of the proposed value admitted per update.
// Keeping it below 1.0 is the stability invariant: repeated identical
// proposals converge toward the target without ever overshooting it.
const blendWeight = 0.3

// blendTrait applies the convex update law to a single trait value.
func blendTrait(old, proposed float64) float64 {
	v := (1-blendWeight)*old + blendWeight*clamp01(proposed)
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
