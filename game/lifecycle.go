package game

import (
	"strings"

	"github.com/pthm-cable/wildlife/lineage"
	"github.com/pthm-cable/wildlife/telemetry"
	"github.com/pthm-cable/wildlife/traits"
)

// finishLife records the generation that just ended.
func (s *Simulation) finishLife() {
	sub := s.subject
	rec := telemetry.GenerationRecord{
		Generation: sub.Generation,
		Species:    sub.Species,
		StartTurn:  s.lifeStart,
		EndTurn:    s.world.Time.Turn,
		AgeTurns:   sub.AgeTurns,
		DeathCause: string(sub.DeathCause),
		Litters:    sub.Litters,
		Offspring:  sub.Offspring,
		Flags:      strings.Join(traits.FlagNames(sub.EffectiveLineage().Flags), ";"),
		PeakWeight: sub.PeakWeightKg,

		EstimatedSurvivors: sub.EstimatedSurvivors,
	}
	s.lives = append(s.lives, rec)
	s.logger.Info("died",
		"cause", string(sub.DeathCause),
		"life", rec,
		"brood", s.brood.Len(),
	)
	if err := s.output.WriteGeneration(rec); err != nil {
		s.logger.Error("failed to write generation", "error", err)
	}
}

// Succeed continues the line with the strongest surviving offspring.
// The subject must be dead.
func (s *Simulation) Succeed() error {
	if s.subject.Alive {
		return ErrSubjectAlive
	}
	heir, ok := s.brood.Strongest()
	if !ok {
		return ErrNoHeir
	}
	s.brood.Remove(heir.Entity)

	sp := s.species
	age := max(0, s.world.Time.Turn-heir.BornTurn)
	base := lineage.ApplyLineageBiases(sp.Derived.BaseStats, heir.Traits)

	next := s.newSubject(heir.Traits.Generation, age, sp.Weight.StartKg, base, heir.Traits)
	next.BornTurn = heir.BornTurn

	// The heir lives wherever the species is this season.
	region := s.region(sp.RegionFor(s.world.Time.Season()))
	s.world.RegionID = region.ID
	s.world.Shelter = region.Shelter
	s.world.Season = s.world.Time.Season()

	s.subject = next
	s.lifeStart = s.world.Time.Turn
	s.detector.Reset()

	s.logger.Info("succession",
		"generation", next.Generation,
		"age_turns", age,
		"lineage", heir.Traits,
		"score", Score(heir.Traits),
		"remaining_brood", s.brood.Len(),
	)
	return nil
}
