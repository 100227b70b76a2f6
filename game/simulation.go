// Package game runs the turn loop: it sequences weather, physiology and
// reproduction for one subject and is the only code that commits their results.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/lineage"
	"github.com/pthm-cable/wildlife/physiology"
	"github.com/pthm-cable/wildlife/reproduction"
	"github.com/pthm-cable/wildlife/stats"
	"github.com/pthm-cable/wildlife/telemetry"
	"github.com/pthm-cable/wildlife/traits"
	"github.com/pthm-cable/wildlife/weather"
)

var (
	ErrSubjectDead    = errors.New("subject is dead")
	ErrSubjectAlive   = errors.New("subject is still alive")
	ErrUnknownSpecies = errors.New("unknown species")
	ErrUnknownRegion  = errors.New("unknown region")
	ErrNoHeir         = errors.New("no surviving offspring")
)

// Source ids for modifiers the orchestrator manages.
const (
	SourceAgePhase = "age_phase"
	SourceEvent    = "event"
)

// Shelter levels that decide nest quality.
const (
	shelteredNest = 0.6
	exposedNest   = 0.3
)

// Options configures a simulation.
type Options struct {
	Seed    uint64
	Species string
	Region  string       // Starting region; empty uses the species' region for the first season
	Logger  *slog.Logger // Nil uses slog.Default()
	Archive *telemetry.Archive
	Output  *telemetry.OutputManager
}

// TurnResult reports what a call to Step did.
type TurnResult struct {
	Record       telemetry.TurnRecord
	WeightChange float64
	Modifiers    []stats.Modifier // Added this turn by physiology and weather
	Narratives   []physiology.Narrative
	DeathCause   components.DeathCause
	Births       int
	Spawn        *reproduction.SpawnResult
	Skipped      bool // The subject was already dead
}

// Simulation owns one subject's run.
type Simulation struct {
	cfg     *config.Config
	species *config.SpeciesConfig
	model   *weather.Model
	rng     *rand.Rand
	seed    uint64
	logger  *slog.Logger

	subject Subject
	world   World
	brood   *Brood

	history   []telemetry.TurnRecord
	lives     []telemetry.GenerationRecord
	bookmarks []telemetry.Bookmark

	output    *telemetry.OutputManager
	archive   *telemetry.Archive
	perf      *telemetry.PerfCollector
	detector  *telemetry.BookmarkDetector
	origin    string // Region the run started in
	lifeStart int
	unlogged  int // Births since the last recorded snapshot
}

// New creates a simulation with a founder of the requested species.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	sp, ok := cfg.SpeciesByName(opts.Species)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpecies, opts.Species)
	}
	model, err := weather.NewModel(cfg.Weather)
	if err != nil {
		return nil, fmt.Errorf("compile weather: %w", err)
	}

	start := components.Time{}
	regionID := opts.Region
	if regionID == "" {
		regionID = sp.RegionFor(start.Season())
	}
	region, ok := cfg.Region(regionID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, regionID)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Simulation{
		cfg:      cfg,
		species:  sp,
		model:    model,
		rng:      NewRNG(opts.Seed),
		seed:     opts.Seed,
		logger:   logger,
		brood:    NewBrood(),
		output:   opts.Output,
		archive:  opts.Archive,
		perf:     telemetry.NewPerfCollector(52),
		detector: telemetry.NewBookmarkDetector(12),
		origin:   region.ID,
	}

	s.world = World{
		Time:     start,
		Season:   start.Season(),
		RegionID: region.ID,
		Shelter:  region.Shelter,
	}
	s.world.Weather = model.Generate(region, start.Season(), start.Month, s.rng, 0)
	s.world.AmbientC = model.AmbientTemperature(region, start.Month, 0, s.world.Weather)

	s.subject = s.newSubject(1, sp.StartAgeTurns, sp.Weight.StartKg, sp.Derived.BaseStats, lineage.Founder())
	s.lifeStart = start.Turn

	s.logger.Info("simulation started",
		"seed", opts.Seed,
		"subject", s.subject,
		"region", region.ID,
		"weather", s.world.Weather.Type.String(),
	)
	return s, nil
}

// newSubject builds a living subject with age-phase modifiers applied.
func (s *Simulation) newSubject(generation, ageTurns int, weightKg float64, base stats.Block, lt lineage.Traits) Subject {
	sp := s.species
	sub := Subject{
		Species:      sp.Name,
		Generation:   generation,
		Sex:          components.Female,
		BornTurn:     s.world.Time.Turn - ageTurns,
		AgeTurns:     ageTurns,
		WeightKg:     weightKg,
		Ledger:       stats.New(base),
		Physiology:   physiology.NewState(weightKg, sp),
		Reproduction: reproduction.NewState(sp),
		Lineage:      lt,
		Effort:       components.EffortNormal,
		Alive:        true,
		PeakWeightKg: weightKg,
	}
	phase := sp.PhaseAt(ageTurns)
	sub.Phase = phase.Phase
	sub.Ledger = withPhase(sub.Ledger, phase)
	return sub
}

// Step runs one turn. Once the subject has died it does nothing.
func (s *Simulation) Step() TurnResult {
	if !s.subject.Alive {
		return TurnResult{Record: s.lastRecord(), Skipped: true}
	}
	res := s.advance()
	s.record(&res)
	return res
}

// FastForward runs up to n turns and records only the last one. It stops
// early if the subject dies.
func (s *Simulation) FastForward(n int) TurnResult {
	if !s.subject.Alive || n <= 0 {
		return TurnResult{Record: s.lastRecord(), Skipped: true}
	}
	var res TurnResult
	for i := 0; i < n && s.subject.Alive; i++ {
		res = s.advance()
	}
	s.record(&res)
	return res
}

// advance runs the turn pipeline and commits the result without recording it.
func (s *Simulation) advance() TurnResult {
	sp := s.species
	sub := s.subject.clone()
	world := s.world
	var res TurnResult

	s.perf.StartTurn()

	s.perf.StartPhase(telemetry.PhaseDecay)
	sub = decay(sub)

	s.perf.StartPhase(telemetry.PhaseWeather)
	region := s.region(world.RegionID)
	world = s.advanceWeather(world, region)

	s.perf.StartPhase(telemetry.PhasePhysiology)
	phys := physiology.Tick(physiology.Subject{
		Physiology: sub.Physiology,
		WeightKg:   sub.WeightKg,
		AgeTurns:   sub.AgeTurns,
		Phase:      sub.Phase,
		Stats:      sub.Stats(),
		Body:       sub.Body,
		Effort:     sub.Effort,
		Gestating:  reproduction.Pregnant(sub.Reproduction),
		Lactating:  reproduction.Lactating(sub.Reproduction),
	}, world.Time, world.Weather, physiology.Environment{
		Region:        region,
		AmbientC:      world.AmbientC,
		TerrainForage: region.TerrainForage,
		Shelter:       world.Shelter,
		TimeScale:     s.cfg.Time.Acceleration,
		DaysPerTurn:   s.cfg.Time.DaysPerTurn,
	}, sp)
	sub.Physiology = phys.State
	sub.WeightKg += phys.WeightChange
	sub.Ledger = sub.Ledger.AddAll(phys.Modifiers)
	res.WeightChange = phys.WeightChange
	res.Modifiers = append(res.Modifiers, phys.Modifiers...)
	res.Narratives = phys.Narratives
	if phys.Dead() {
		sub = kill(sub, phys.DeathCause)
	}

	if sub.Alive {
		s.perf.StartPhase(telemetry.PhaseReproduction)
		sub, world = s.reproduce(sub, world, &res)
	}

	if sub.Alive {
		s.perf.StartPhase(telemetry.PhaseSeasonal)
		sub, world = s.seasonal(sub, world, &res)
	}

	s.perf.StartPhase(telemetry.PhaseAging)
	if sub.Alive {
		sub = s.age(sub)
	}
	current := world.Time
	world.Time = world.Time.Advance(s.cfg.Time.TurnsPerMonth)

	s.commit(sub, world)
	s.perf.EndTurn()

	res.DeathCause = sub.DeathCause
	res.Record = s.snapshot(current, phys)
	s.unlogged += res.Births
	return res
}

// decay expires timed modifiers and heals wounds.
func decay(sub Subject) Subject {
	sub.Ledger = sub.Ledger.Tick()
	sub.Body = sub.Body.TickWounds()
	return sub
}

// advanceWeather moves the weather on by one turn in the subject's region.
func (s *Simulation) advanceWeather(world World, region *config.RegionConfig) World {
	t := world.Time
	world.Weather = s.model.Tick(world.Weather, region, t.Season(), t.Month, s.rng, world.TemperatureOffsetC)
	world.AmbientC = s.model.AmbientTemperature(region, t.Month, world.TemperatureOffsetC, world.Weather)
	return world
}

// reproduce advances gestation and lets the subject breed when eligible.
func (s *Simulation) reproduce(sub Subject, world World, res *TurnResult) (Subject, World) {
	sp := s.species
	t := world.Time
	parent := parentOf(sub)

	if sp.Derived.Semelparous {
		if reproduction.Spawned(sub.Reproduction) || !sp.BreedsIn(t.Season()) ||
			sub.AgeTurns < sp.Spawning.MinSpawnTurns || world.RegionID != sp.RegionFor(t.Season()) {
			return sub, world
		}
		next, spawn, err := reproduction.Spawn(sub.Reproduction, parent, nestFor(world.Shelter), sp, s.cfg.Lineage, s.rng)
		if err != nil {
			s.logger.Warn("spawn failed", "error", err)
			return sub, world
		}
		sub.Reproduction = next
		sub = s.registerSpawn(sub, t.Turn, spawn)
		res.Spawn = &spawn
		res.Births += len(spawn.Offspring)
		return sub, world
	}

	next, birth := reproduction.Tick(sub.Reproduction, parent, t, sp, s.rng)
	sub.Reproduction = next
	if birth != nil {
		sub = s.registerBirth(sub, birth)
		res.Births += len(birth.Survivors)
	}

	if s.canMate(sub, t) {
		chance := sub.Stats()[stats.Fecundity] / 100 * s.model.EventMultiplier(weather.Mating, world.Weather)
		if s.rng.Float64() < chance {
			next, err := reproduction.Conceive(sub.Reproduction, parentOf(sub), t, sp, s.cfg.Lineage, s.rng)
			if err == nil {
				sub.Reproduction = next
				s.logger.Info("conceived", "turn", t.Turn, "generation", sub.Generation)
			}
		}
	}
	return sub, world
}

// canMate reports whether an iteroparous subject is eligible to conceive this turn.
func (s *Simulation) canMate(sub Subject, t components.Time) bool {
	it, ok := sub.Reproduction.(reproduction.Iteroparous)
	if !ok {
		return false
	}
	return it.Pregnancy == nil && !it.MatedThisSeason && it.LactationLeft == 0 &&
		s.species.BreedsIn(t.Season()) && sub.AgeTurns >= s.species.Reproduction.MatureTurns
}

// registerBirth adds surviving offspring to the brood.
func (s *Simulation) registerBirth(sub Subject, birth *reproduction.Birth) Subject {
	for _, t := range birth.Survivors {
		s.brood.Add(birth.Turn, sub.Generation, t)
	}
	sub.Litters++
	sub.Offspring += len(birth.Survivors)
	sub.EstimatedSurvivors += len(birth.Survivors)
	if len(birth.Survivors) >= s.cfg.Lineage.ProlificSurvivors && s.cfg.Lineage.ProlificSurvivors > 0 {
		sub.EarnedFlags = sub.EarnedFlags.Add(traits.Prolific)
	}
	s.logger.Info("birth",
		"turn", birth.Turn,
		"generation", sub.Generation,
		"offspring", birth.Count,
		"survivors", len(birth.Survivors),
		"survival_chance", birth.SurvivalChance,
	)
	return sub
}

// registerSpawn adds tracked fry to the brood and applies a fatal spawn.
func (s *Simulation) registerSpawn(sub Subject, turn int, spawn reproduction.SpawnResult) Subject {
	for _, t := range spawn.Offspring {
		s.brood.Add(turn, sub.Generation, t)
	}
	sub.Litters++
	sub.Offspring += len(spawn.Offspring)
	sub.EstimatedSurvivors += spawn.EstimatedSurvivors
	s.logger.Info("spawned",
		"turn", turn,
		"generation", sub.Generation,
		"eggs", spawn.Eggs,
		"survival_rate", spawn.SurvivalRate,
		"estimated_survivors", spawn.EstimatedSurvivors,
	)
	if spawn.Fatal {
		sub = kill(sub, components.Senescence)
	}
	return sub
}

// seasonal applies weather costs, the seasonal weight trend and season changes.
func (s *Simulation) seasonal(sub Subject, world World, res *TurnResult) (Subject, World) {
	sp := s.species
	season := world.Time.Season()

	pen := s.model.Penalty(world.Weather)
	sub.Ledger = sub.Ledger.AddAll(pen.Modifiers)
	res.Modifiers = append(res.Modifiers, pen.Modifiers...)
	delta := pen.WeightChange + sp.Derived.SeasonalWeightKg[season]
	sub.WeightKg = min(sub.WeightKg+delta, sp.Weight.MaxKg)
	res.WeightChange += delta

	if season != world.Season {
		sub.Reproduction = reproduction.ResetSeason(sub.Reproduction)
		if id := sp.RegionFor(season); id != world.RegionID {
			region := s.region(id)
			s.logger.Info("migrated", "turn", world.Time.Turn, "from", world.RegionID, "to", id, "season", season.String())
			world.RegionID = id
			world.Shelter = region.Shelter
			sub.EarnedFlags = sub.EarnedFlags.Add(traits.Migrant)
		}
		world.Season = season
	}

	if sub.WeightKg <= sp.Weight.StarvationDeathKg {
		sub = kill(sub, components.Starvation)
	}
	return sub, world
}

// age advances the subject's age and swaps age-phase modifiers on a transition.
func (s *Simulation) age(sub Subject) Subject {
	sub.AgeTurns++
	phase := s.species.PhaseAt(sub.AgeTurns)
	if phase.Phase != sub.Phase {
		s.logger.Info("age phase", "from", sub.Phase.String(), "to", phase.Phase.String(), "age_turns", sub.AgeTurns)
		sub.Phase = phase.Phase
		sub.Ledger = withPhase(sub.Ledger, phase)
	}
	return sub
}

// withPhase replaces the age-phase modifiers in l.
func withPhase(l stats.Ledger, phase config.ResolvedPhase) stats.Ledger {
	l = l.RemoveBySource(SourceAgePhase)
	label := "Age: " + phase.Phase.String()
	for _, m := range phase.Modifiers {
		l = l.Add(stats.Permanent(stats.SourceAgePhase, SourceAgePhase, label, m.Stat, m.Amount))
	}
	return l
}

// commit installs the turn's values. Non-finite state would break replay.
func (s *Simulation) commit(sub Subject, world World) {
	if math.IsNaN(sub.WeightKg) || math.IsInf(sub.WeightKg, 0) {
		panic(fmt.Sprintf("game: non-finite weight at turn %d", world.Time.Turn))
	}
	if dev := sub.Physiology.CoreTempDeviation; math.IsNaN(dev) || math.IsInf(dev, 0) {
		panic(fmt.Sprintf("game: non-finite core temperature at turn %d", world.Time.Turn))
	}
	sub.PeakWeightKg = max(sub.PeakWeightKg, sub.WeightKg)
	wasAlive := s.subject.Alive
	s.subject = sub
	s.world = world
	if wasAlive && !sub.Alive {
		s.finishLife()
	}
}

// kill marks the subject dead. The first cause wins.
func kill(sub Subject, cause components.DeathCause) Subject {
	if !sub.Alive {
		return sub
	}
	sub.Alive = false
	sub.DeathCause = cause
	return sub
}

func parentOf(sub Subject) reproduction.Parent {
	return reproduction.Parent{
		Stats:    sub.Stats(),
		WeightKg: sub.WeightKg,
		AgeTurns: sub.AgeTurns,
		Lineage:  sub.EffectiveLineage(),
	}
}

// nestFor grades a spawning site by shelter.
func nestFor(shelter float64) traits.NestFlag {
	var nest traits.NestFlag
	switch {
	case shelter >= shelteredNest:
		nest = nest.Add(traits.NestSheltered)
	case shelter <= exposedNest:
		nest = nest.Add(traits.NestExposed)
	}
	return nest
}

// region returns the configured region. Ids are validated at load time.
func (s *Simulation) region(id string) *config.RegionConfig {
	r, ok := s.cfg.Region(id)
	if !ok {
		panic(fmt.Sprintf("game: region %q vanished from config", id))
	}
	return r
}

// Subject returns a copy of the current subject.
func (s *Simulation) Subject() Subject {
	return s.subject.clone()
}

// World returns the current world state.
func (s *Simulation) World() World {
	return s.world
}

// Alive reports whether the subject is alive.
func (s *Simulation) Alive() bool {
	return s.subject.Alive
}

// Species returns the species configuration of the run.
func (s *Simulation) Species() *config.SpeciesConfig {
	return s.species
}

// Brood returns the registry of surviving offspring.
func (s *Simulation) Brood() *Brood {
	return s.brood
}

// EventMultiplier returns the current weather's multiplier for an event category.
func (s *Simulation) EventMultiplier(c weather.Category) float64 {
	return s.model.EventMultiplier(c, s.world.Weather)
}

// PerfStats returns turn timing statistics.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	return s.perf.Stats()
}
