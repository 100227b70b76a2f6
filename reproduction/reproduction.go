// Package reproduction implements the breeding state machines: repeated
// pregnancies for iteroparous species and a single spawn for semelparous ones.
package reproduction

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/lineage"
	"github.com/pthm-cable/wildlife/stats"
	"github.com/pthm-cable/wildlife/traits"
)

var (
	ErrWrongStrategy     = errors.New("action not available for this reproductive strategy")
	ErrAlreadyPregnant   = errors.New("already pregnant")
	ErrAlreadyMated      = errors.New("already mated this season")
	ErrNotBreedingSeason = errors.New("not breeding season")
	ErrImmature          = errors.New("too young to breed")
	ErrAlreadySpawned    = errors.New("already spawned")
)

// State is the reproductive state of a subject. It is either Iteroparous or
// Semelparous, never both.
type State interface {
	isReproduction()
}

// Iteroparous is the state of a repeat breeder.
type Iteroparous struct {
	Pregnancy       *Pregnancy // Nil when not pregnant; replaced, never mutated
	MatedThisSeason bool
	LactationLeft   int
	Litters         int
}

// Semelparous is the state of a one-shot breeder.
type Semelparous struct {
	Spawned            bool
	EggCount           int
	SurvivalRate       float64
	EstimatedSurvivors int
}

func (Iteroparous) isReproduction() {}
func (Semelparous) isReproduction() {}

// Pregnancy records a litter in gestation.
type Pregnancy struct {
	ConceptionTurn int
	TurnsRemaining int
	OffspringCount int
	Lineages       []lineage.Traits // One per offspring
}

// Parent is the view of the breeding subject the engine needs.
type Parent struct {
	Stats    stats.Block // Effective values
	WeightKg float64
	AgeTurns int
	Lineage  lineage.Traits
}

// Birth is the outcome of a completed gestation.
type Birth struct {
	Turn           int
	Count          int
	SurvivalChance float64
	Survivors      []lineage.Traits
}

// SpawnResult is the outcome of a spawn.
type SpawnResult struct {
	Eggs               int
	SurvivalRate       float64
	EstimatedSurvivors int
	Offspring          []lineage.Traits // Tracked heirs, at most MaxOffspring
	Fatal              bool
}

// NewState returns the initial state for the species' strategy.
func NewState(sp *config.SpeciesConfig) State {
	if sp.Derived.Semelparous {
		return Semelparous{}
	}
	return Iteroparous{}
}

// Pregnant reports whether a pregnancy is in progress.
func Pregnant(s State) bool {
	it, ok := s.(Iteroparous)
	return ok && it.Pregnancy != nil
}

// Lactating reports whether the subject is nursing.
func Lactating(s State) bool {
	it, ok := s.(Iteroparous)
	return ok && it.LactationLeft > 0
}

// Spawned reports whether a semelparous subject has spawned.
func Spawned(s State) bool {
	sm, ok := s.(Semelparous)
	return ok && sm.Spawned
}

// ResetSeason clears the per-season mated flag.
func ResetSeason(s State) State {
	if it, ok := s.(Iteroparous); ok {
		it.MatedThisSeason = false
		return it
	}
	return s
}

// Conceive starts a pregnancy if the subject is mature, in season and has
// not yet mated this season.
func Conceive(s State, p Parent, t components.Time, sp *config.SpeciesConfig, lc config.LineageConfig, rng *rand.Rand) (State, error) {
	it, ok := s.(Iteroparous)
	if !ok {
		return s, ErrWrongStrategy
	}
	if it.MatedThisSeason {
		return s, ErrAlreadyMated
	}
	if !sp.BreedsIn(t.Season()) {
		return s, ErrNotBreedingSeason
	}
	if p.AgeTurns < sp.Reproduction.MatureTurns {
		return s, ErrImmature
	}
	return StartPregnancy(s, p, t, sp, lc, rng)
}

// StartPregnancy starts a pregnancy without the seasonal and maturity gates.
// Event content uses it to force a conception.
func StartPregnancy(s State, p Parent, t components.Time, sp *config.SpeciesConfig, lc config.LineageConfig, rng *rand.Rand) (State, error) {
	it, ok := s.(Iteroparous)
	if !ok {
		return s, ErrWrongStrategy
	}
	if it.Pregnancy != nil {
		return s, ErrAlreadyPregnant
	}

	n := OffspringCount(p, sp)
	lineages := make([]lineage.Traits, n)
	for i := range lineages {
		lineages[i] = lineage.ComputeInheritedTraits(p.Stats, p.Lineage, sp.Derived.BaseStats, lc, rng)
	}

	it.Pregnancy = &Pregnancy{
		ConceptionTurn: t.Turn,
		TurnsRemaining: max(1, sp.Reproduction.GestationTurns),
		OffspringCount: n,
		Lineages:       lineages,
	}
	it.MatedThisSeason = true
	return it, nil
}

// OffspringCount derives litter size from weight ratio and health. One
// offspring is added per breakpoint the score reaches.
func OffspringCount(p Parent, sp *config.SpeciesConfig) int {
	rc := sp.Reproduction
	score := weightRatio(p.WeightKg, sp) * (0.5 + p.Stats[stats.Health]/200)
	n := 1
	for _, b := range rc.OffspringBreakpoints {
		if score >= b {
			n++
		}
	}
	lo, hi := max(1, rc.MinOffspring), max(1, rc.MaxOffspring)
	return min(max(n, lo), hi)
}

// SurvivalChance returns the per-offspring survival probability of a birth at t.
func SurvivalChance(p Parent, t components.Time, sp *config.SpeciesConfig) float64 {
	rc := sp.Reproduction
	chance := rc.BaseSurvival + rc.HealthSurvival*(p.Stats[stats.Health]-50)
	if t.Season() == components.Winter {
		chance -= rc.WinterPenalty
	}
	if p.AgeTurns < rc.YoungMotherTurns {
		chance -= rc.YouthPenalty
	}
	return clamp(chance, rc.MinSurvival, rc.MaxSurvival)
}

// Tick advances gestation and lactation by one turn. A birth is returned
// on the turn gestation completes.
func Tick(s State, p Parent, t components.Time, sp *config.SpeciesConfig, rng *rand.Rand) (State, *Birth) {
	it, ok := s.(Iteroparous)
	if !ok {
		return s, nil
	}
	if it.LactationLeft > 0 {
		it.LactationLeft--
	}
	if it.Pregnancy == nil {
		return it, nil
	}

	preg := *it.Pregnancy
	preg.TurnsRemaining--
	if preg.TurnsRemaining > 0 {
		it.Pregnancy = &preg
		return it, nil
	}

	chance := SurvivalChance(p, t, sp)
	birth := &Birth{Turn: t.Turn, Count: preg.OffspringCount, SurvivalChance: chance}
	for i := 0; i < preg.OffspringCount; i++ {
		if rng.Float64() < chance && i < len(preg.Lineages) {
			birth.Survivors = append(birth.Survivors, preg.Lineages[i])
		}
	}

	it.Pregnancy = nil
	it.MatedThisSeason = false
	it.Litters++
	if len(birth.Survivors) > 0 {
		it.LactationLeft = sp.Reproduction.LactationTurns
	}
	return it, birth
}

// Spawn performs the one-shot semelparous reproduction. It cannot be repeated.
func Spawn(s State, p Parent, nest traits.NestFlag, sp *config.SpeciesConfig, lc config.LineageConfig, rng *rand.Rand) (State, SpawnResult, error) {
	sm, ok := s.(Semelparous)
	if !ok {
		return s, SpawnResult{}, ErrWrongStrategy
	}
	if sm.Spawned {
		return s, SpawnResult{}, ErrAlreadySpawned
	}

	sc := sp.Spawning
	eggs := sc.BaseEggs + p.Stats[stats.Health]/100*sc.HealthEggBonus + weightRatio(p.WeightKg, sp)*sc.WeightEggBonus
	rate := (sc.BaseSurvival + p.Stats[stats.Wisdom]/100*sc.WisdomSurvival) * nest.SurvivalMultiplier()
	if sc.MaxSurvivalRate > 0 {
		rate = min(rate, sc.MaxSurvivalRate)
	}
	rate = max(rate, 0)

	res := SpawnResult{
		Eggs:         int(math.Round(max(eggs, 0))),
		SurvivalRate: rate,
		Fatal:        sc.DiesAfterSpawn,
	}
	res.EstimatedSurvivors = int(math.Floor(float64(res.Eggs) * rate))

	tracked := min(res.EstimatedSurvivors, max(1, sp.Reproduction.MaxOffspring))
	for i := 0; i < tracked; i++ {
		res.Offspring = append(res.Offspring, lineage.ComputeInheritedTraits(p.Stats, p.Lineage, sp.Derived.BaseStats, lc, rng))
	}

	sm = Semelparous{
		Spawned:            true,
		EggCount:           res.Eggs,
		SurvivalRate:       rate,
		EstimatedSurvivors: res.EstimatedSurvivors,
	}
	return sm, res, nil
}

func weightRatio(weightKg float64, sp *config.SpeciesConfig) float64 {
	if sp.Weight.HealthyKg <= 0 {
		return 1
	}
	return weightKg / sp.Weight.HealthyKg
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return v
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
