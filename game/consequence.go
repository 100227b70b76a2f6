package game

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/reproduction"
	"github.com/pthm-cable/wildlife/stats"
	"github.com/pthm-cable/wildlife/traits"
)

// ErrInvalidConsequence is returned for consequences that cannot be applied
// as given.
var ErrInvalidConsequence = errors.New("invalid consequence")

// Consequence is an effect injected by event content. The set of variants
// is closed.
type Consequence interface {
	apply(s *Simulation, sub Subject, world World) (Subject, World, error)
	kind() string
}

// AddModifier adds a stat modifier.
type AddModifier struct {
	Modifier stats.Modifier
}

// RemoveSource removes every modifier carrying a source id.
type RemoveSource struct {
	SourceID string
}

// AddCalories queues bonus calories for the next physiology tick.
type AddCalories struct {
	Kcal float64
}

// StartPregnancy forces a conception outside the breeding season.
type StartPregnancy struct{}

// ForceSpawn makes a semelparous subject spawn now.
type ForceSpawn struct {
	Nest traits.NestFlag
}

// Kill ends the subject's life.
type Kill struct {
	Cause components.DeathCause
}

// AddParasite adds an infestation.
type AddParasite struct {
	Parasite components.Parasite
}

// CureParasite removes an infestation by id together with every modifier
// tagged with that id.
type CureParasite struct {
	ID string
}

// AddWound adds a wound.
type AddWound struct {
	Wound components.Wound
}

// SetEffort changes the foraging behavior.
type SetEffort struct {
	Effort components.Effort
}

// SetShelter overrides the shelter level until the next migration.
type SetShelter struct {
	Shelter float64
}

// Apply commits a consequence. It fails without changing anything if the
// subject is dead or the consequence is invalid.
func (s *Simulation) Apply(c Consequence) error {
	if !s.subject.Alive {
		return ErrSubjectDead
	}
	sub, world, err := c.apply(s, s.subject.clone(), s.world)
	if err != nil {
		return fmt.Errorf("apply %s: %w", c.kind(), err)
	}
	s.commit(sub, world)
	s.logger.Info("consequence applied", "kind", c.kind(), "turn", world.Time.Turn, "subject", sub)
	return nil
}

func (c AddModifier) kind() string { return "add_modifier" }

func (c AddModifier) apply(_ *Simulation, sub Subject, w World) (Subject, World, error) {
	m := c.Modifier
	if int(m.Stat) >= stats.NumKeys {
		return sub, w, fmt.Errorf("%w: unknown stat %d", ErrInvalidConsequence, m.Stat)
	}
	if math.IsNaN(m.Amount) || math.IsInf(m.Amount, 0) {
		return sub, w, fmt.Errorf("%w: non-finite amount", ErrInvalidConsequence)
	}
	if m.Timed && m.Remaining <= 0 {
		return sub, w, fmt.Errorf("%w: timed modifier without duration", ErrInvalidConsequence)
	}
	if m.SourceID == "" {
		m.SourceID = SourceEvent
	}
	sub.Ledger = sub.Ledger.Add(m)
	return sub, w, nil
}

func (c RemoveSource) kind() string { return "remove_source" }

func (c RemoveSource) apply(_ *Simulation, sub Subject, w World) (Subject, World, error) {
	sub.Ledger = sub.Ledger.RemoveBySource(c.SourceID)
	return sub, w, nil
}

func (c AddCalories) kind() string { return "add_calories" }

func (c AddCalories) apply(_ *Simulation, sub Subject, w World) (Subject, World, error) {
	if c.Kcal < 0 || math.IsNaN(c.Kcal) || math.IsInf(c.Kcal, 0) {
		return sub, w, fmt.Errorf("%w: calories %v", ErrInvalidConsequence, c.Kcal)
	}
	sub.Physiology = sub.Physiology.WithBonus(c.Kcal)
	return sub, w, nil
}

func (c StartPregnancy) kind() string { return "start_pregnancy" }

func (c StartPregnancy) apply(s *Simulation, sub Subject, w World) (Subject, World, error) {
	next, err := reproduction.StartPregnancy(sub.Reproduction, parentOf(sub), w.Time, s.species, s.cfg.Lineage, s.rng)
	if err != nil {
		return sub, w, err
	}
	sub.Reproduction = next
	return sub, w, nil
}

func (c ForceSpawn) kind() string { return "force_spawn" }

func (c ForceSpawn) apply(s *Simulation, sub Subject, w World) (Subject, World, error) {
	next, spawn, err := reproduction.Spawn(sub.Reproduction, parentOf(sub), c.Nest, s.species, s.cfg.Lineage, s.rng)
	if err != nil {
		return sub, w, err
	}
	sub.Reproduction = next
	sub = s.registerSpawn(sub, w.Time.Turn, spawn)
	s.unlogged += len(spawn.Offspring)
	return sub, w, nil
}

func (c Kill) kind() string { return "kill" }

func (c Kill) apply(_ *Simulation, sub Subject, w World) (Subject, World, error) {
	if c.Cause == "" {
		return sub, w, fmt.Errorf("%w: empty death cause", ErrInvalidConsequence)
	}
	return kill(sub, c.Cause), w, nil
}

func (c AddParasite) kind() string { return "add_parasite" }

func (c AddParasite) apply(_ *Simulation, sub Subject, w World) (Subject, World, error) {
	p := c.Parasite
	if p.Stage < 1 {
		p.Stage = 1
	}
	sub.Body.Parasites = append(sub.Body.Parasites, p)
	return sub, w, nil
}

func (c CureParasite) kind() string { return "cure_parasite" }

func (c CureParasite) apply(_ *Simulation, sub Subject, w World) (Subject, World, error) {
	i := slices.IndexFunc(sub.Body.Parasites, func(p components.Parasite) bool { return p.ID == c.ID })
	if i < 0 {
		return sub, w, fmt.Errorf("%w: no parasite %q", ErrInvalidConsequence, c.ID)
	}
	sub.Body.Parasites = slices.Delete(sub.Body.Parasites, i, i+1)
	sub.Ledger = sub.Ledger.RemoveBySource(c.ID)
	return sub, w, nil
}

func (c AddWound) kind() string { return "add_wound" }

func (c AddWound) apply(_ *Simulation, sub Subject, w World) (Subject, World, error) {
	sub.Body.Wounds = append(sub.Body.Wounds, c.Wound)
	return sub, w, nil
}

func (c SetEffort) kind() string { return "set_effort" }

func (c SetEffort) apply(_ *Simulation, sub Subject, w World) (Subject, World, error) {
	if c.Effort > components.EffortIntense {
		return sub, w, fmt.Errorf("%w: effort %d", ErrInvalidConsequence, c.Effort)
	}
	sub.Effort = c.Effort
	return sub, w, nil
}

func (c SetShelter) kind() string { return "set_shelter" }

func (c SetShelter) apply(_ *Simulation, sub Subject, w World) (Subject, World, error) {
	if math.IsNaN(c.Shelter) {
		return sub, w, fmt.Errorf("%w: shelter is NaN", ErrInvalidConsequence)
	}
	w.Shelter = min(max(c.Shelter, 0), 1)
	return sub, w, nil
}
