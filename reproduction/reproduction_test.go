package reproduction

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/lineage"
	"github.com/pthm-cable/wildlife/stats"
	"github.com/pthm-cable/wildlife/traits"
)

func species(t *testing.T, name string) (*config.SpeciesConfig, config.LineageConfig) {
	t.Helper()
	cfg := config.MustLoadDefaults()
	sp, ok := cfg.SpeciesByName(name)
	if !ok {
		t.Fatalf("%s missing", name)
	}
	return sp, cfg.Lineage
}

func parent(sp *config.SpeciesConfig) Parent {
	return Parent{
		Stats:    sp.Derived.BaseStats,
		WeightKg: sp.Weight.HealthyKg,
		AgeTurns: 100,
		Lineage:  lineage.Founder(),
	}
}

// winterTime is a turn inside the fox breeding season.
var winterTime = components.Time{Turn: 40, Month: 0}

func TestPregnancyEndsInBirthWithinClamp(t *testing.T) {
	sp, lc := species(t, "red_fox")
	rng := rand.New(rand.NewPCG(1, 2))

	for _, hea := range []float64{0, 50, 100} {
		for _, w := range []float64{3.5, 6, 9} {
			p := parent(sp)
			p.Stats[stats.Health] = hea
			p.WeightKg = w

			s, err := Conceive(NewState(sp), p, winterTime, sp, lc, rng)
			if err != nil {
				t.Fatalf("Conceive: %v", err)
			}
			if !Pregnant(s) {
				t.Fatal("not pregnant after conception")
			}

			var birth *Birth
			for i := 0; i < sp.Reproduction.GestationTurns; i++ {
				if birth != nil {
					t.Fatalf("birth before gestation completed (turn %d)", i)
				}
				s, birth = Tick(s, p, winterTime, sp, rng)
			}
			if birth == nil {
				t.Fatal("no birth after gestation")
			}
			if birth.Count < sp.Reproduction.MinOffspring || birth.Count > sp.Reproduction.MaxOffspring {
				t.Errorf("count %d outside [%d, %d]", birth.Count, sp.Reproduction.MinOffspring, sp.Reproduction.MaxOffspring)
			}
			if len(birth.Survivors) > birth.Count {
				t.Errorf("%d survivors from %d offspring", len(birth.Survivors), birth.Count)
			}
			if Pregnant(s) {
				t.Error("pregnancy record not cleared")
			}
			if s.(Iteroparous).MatedThisSeason {
				t.Error("mated flag not cleared")
			}
		}
	}
}

func TestOffspringCountBreakpoints(t *testing.T) {
	sp, _ := species(t, "red_fox")
	p := parent(sp)

	p.Stats[stats.Health] = 50
	p.WeightKg = sp.Weight.HealthyKg
	if got := OffspringCount(p, sp); got != 1 {
		t.Errorf("average parent: %d offspring, want 1", got)
	}

	p.Stats[stats.Health] = 100
	p.WeightKg = sp.Weight.HealthyKg * 1.2
	if got := OffspringCount(p, sp); got != 3 {
		t.Errorf("prime parent: %d offspring, want 3", got)
	}
}

func TestConceiveGates(t *testing.T) {
	sp, lc := species(t, "red_fox")
	rng := rand.New(rand.NewPCG(3, 4))
	p := parent(sp)

	summer := components.Time{Month: 6}
	if _, err := Conceive(NewState(sp), p, summer, sp, lc, rng); !errors.Is(err, ErrNotBreedingSeason) {
		t.Errorf("summer conception: %v", err)
	}

	young := p
	young.AgeTurns = 5
	if _, err := Conceive(NewState(sp), young, winterTime, sp, lc, rng); !errors.Is(err, ErrImmature) {
		t.Errorf("immature conception: %v", err)
	}

	s, err := Conceive(NewState(sp), p, winterTime, sp, lc, rng)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Conceive(s, p, winterTime, sp, lc, rng); !errors.Is(err, ErrAlreadyMated) {
		t.Errorf("second conception: %v", err)
	}
	if _, err := StartPregnancy(s, p, winterTime, sp, lc, rng); !errors.Is(err, ErrAlreadyPregnant) {
		t.Errorf("forced conception while pregnant: %v", err)
	}

	// Forced conception ignores the season.
	if _, err := StartPregnancy(NewState(sp), p, summer, sp, lc, rng); err != nil {
		t.Errorf("forced summer conception: %v", err)
	}
}

func TestPregnancyIsNotShared(t *testing.T) {
	sp, lc := species(t, "red_fox")
	rng := rand.New(rand.NewPCG(5, 6))
	p := parent(sp)

	before, err := Conceive(NewState(sp), p, winterTime, sp, lc, rng)
	if err != nil {
		t.Fatal(err)
	}
	after, _ := Tick(before, p, winterTime, sp, rng)

	left := before.(Iteroparous).Pregnancy.TurnsRemaining
	if left != sp.Reproduction.GestationTurns {
		t.Errorf("tick mutated prior state: %d turns left", left)
	}
	if after.(Iteroparous).Pregnancy.TurnsRemaining != left-1 {
		t.Error("tick did not advance gestation")
	}
}

func TestSurvivalChanceClamped(t *testing.T) {
	fox, _ := species(t, "red_fox")
	local := *fox
	local.Reproduction.MinSurvival = 0.2
	sp := &local
	rc := sp.Reproduction
	p := parent(sp)

	p.Stats[stats.Health] = 0
	p.AgeTurns = 0
	if got := SurvivalChance(p, winterTime, sp); got != rc.MinSurvival {
		t.Errorf("worst case survival = %v, want %v", got, rc.MinSurvival)
	}

	p.Stats[stats.Health] = 100
	p.AgeTurns = 500
	summer := components.Time{Month: 6}
	if got := SurvivalChance(p, summer, sp); got > rc.MaxSurvival {
		t.Errorf("best case survival = %v above %v", got, rc.MaxSurvival)
	}

	p.Stats[stats.Health] = 50
	spring := components.Time{Month: 3}
	if SurvivalChance(p, winterTime, sp) >= SurvivalChance(p, spring, sp) {
		t.Error("winter birth not penalized")
	}
}

func TestSpawnIsIrreversible(t *testing.T) {
	sp, lc := species(t, "chinook_salmon")
	rng := rand.New(rand.NewPCG(7, 8))
	p := parent(sp)

	s, res, err := Spawn(NewState(sp), p, 0, sp, lc, rng)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if !Spawned(s) {
		t.Fatal("spawned flag not set")
	}
	if res.Eggs <= 0 || res.EstimatedSurvivors < 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if !res.Fatal {
		t.Error("salmon spawn should be fatal")
	}

	again, _, err := Spawn(s, p, 0, sp, lc, rng)
	if !errors.Is(err, ErrAlreadySpawned) {
		t.Errorf("second spawn: %v", err)
	}
	if again.(Semelparous) != s.(Semelparous) {
		t.Error("failed spawn changed state")
	}
}

func TestSpawnFormula(t *testing.T) {
	sp, lc := species(t, "chinook_salmon")
	p := parent(sp)
	p.Stats[stats.Health] = 100
	p.Stats[stats.Wisdom] = 50
	p.WeightKg = sp.Weight.HealthyKg

	_, plain, _ := Spawn(NewState(sp), p, 0, sp, lc, rand.New(rand.NewPCG(1, 1)))
	wantEggs := int(sp.Spawning.BaseEggs + sp.Spawning.HealthEggBonus + sp.Spawning.WeightEggBonus)
	if plain.Eggs != wantEggs {
		t.Errorf("eggs = %d, want %d", plain.Eggs, wantEggs)
	}
	wantRate := sp.Spawning.BaseSurvival + 0.5*sp.Spawning.WisdomSurvival
	if plain.SurvivalRate != wantRate {
		t.Errorf("rate = %v, want %v", plain.SurvivalRate, wantRate)
	}

	_, good, _ := Spawn(NewState(sp), p, traits.NestSheltered, sp, lc, rand.New(rand.NewPCG(1, 1)))
	_, poor, _ := Spawn(NewState(sp), p, traits.NestExposed, sp, lc, rand.New(rand.NewPCG(1, 1)))
	if good.SurvivalRate != wantRate*1.5 {
		t.Errorf("sheltered rate = %v, want %v", good.SurvivalRate, wantRate*1.5)
	}
	if poor.SurvivalRate != wantRate*0.5 {
		t.Errorf("exposed rate = %v, want %v", poor.SurvivalRate, wantRate*0.5)
	}
	if good.EstimatedSurvivors <= poor.EstimatedSurvivors {
		t.Error("nest quality did not change survivors")
	}
}

func TestStrategyMismatch(t *testing.T) {
	fox, lc := species(t, "red_fox")
	salmon, _ := species(t, "chinook_salmon")
	rng := rand.New(rand.NewPCG(9, 9))

	if _, _, err := Spawn(NewState(fox), parent(fox), 0, fox, lc, rng); !errors.Is(err, ErrWrongStrategy) {
		t.Errorf("fox spawn: %v", err)
	}
	if _, err := StartPregnancy(NewState(salmon), parent(salmon), winterTime, salmon, lc, rng); !errors.Is(err, ErrWrongStrategy) {
		t.Errorf("salmon pregnancy: %v", err)
	}
}
