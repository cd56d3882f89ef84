package memory

import (
	"context"
	"fmt"
	"log"
)

// DefaultEvolutionPeriod is the number of wake-to-sleep cycles between
// personality evolutions.
const DefaultEvolutionPeriod = 7

// ProposalSource produces an introspective trait-adjustment proposal for a
// persona from a snapshot of its accumulated memory. The producer is the
// external conversational model; the engine treats it as a black box that
// may fail or return garbage.
type ProposalSource interface {
	ProposeTraitAdjustments(ctx context.Context, snap Snapshot) (TraitVector, error)
}

// Scheduler decides, per cycle exit, whether a persona evolves. It owns no
// persona state of its own: the cycle counter lives in the aggregate so it
// survives restarts.
type Scheduler struct {
	period int
	source ProposalSource
}

// NewScheduler creates a Scheduler. A period below 1 falls back to the
// default; a nil source disables evolution but still counts cycles.
func NewScheduler(period int, source ProposalSource) *Scheduler {
	if period < 1 {
		period = DefaultEvolutionPeriod
	}
	return &Scheduler{period: period, source: source}
}

// OnCycleExit advances the persona's cycle counter and, every period-th
// cycle, applies an externally proposed trait adjustment. A malformed or
// unavailable proposal skips evolution for this cycle only: the counter
// has already advanced and the trait vector is untouched.
func (s *Scheduler) OnCycleExit(ctx context.Context, pm *PersonaMemory) bool {
	cycle := pm.incrementCycleExits()
	if cycle%s.period != 0 {
		return false
	}
	if s.source == nil {
		return false
	}

	deltas, err := s.source.ProposeTraitAdjustments(ctx, pm.Snapshot())
	if err != nil {
		log.Printf("[evolution] %s: proposal unavailable, skipping cycle %d: %v", pm.Key(), cycle, err)
		return false
	}

	deltas = sanitizeProposal(deltas)
	if len(deltas) == 0 {
		log.Printf("[evolution] %s: proposal malformed or empty, skipping cycle %d", pm.Key(), cycle)
		return false
	}

	pm.AdjustTraits(deltas)
	n := pm.incrementEvolution()

	// The persona remembers its own growth.
	pm.AddImportantMemory(
		fmt.Sprintf("Personality evolution #%d: adjusted %d traits after %d shared sessions", n, len(deltas), cycle),
		pm.tuning.EvolutionMemoryWeight,
	)
	return true
}

// sanitizeProposal keeps only known traits with clamped values. An
// entirely unrecognised payload sanitises to nil.
func sanitizeProposal(deltas TraitVector) TraitVector {
	var out TraitVector
	for trait, v := range deltas {
		if !ValidTrait(trait) {
			continue
		}
		if out == nil {
			out = make(TraitVector)
		}
		out[trait] = clamp01(v)
	}
	return out
}
