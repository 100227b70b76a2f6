package game

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/lineage"
	"github.com/pthm-cable/wildlife/reproduction"
	"github.com/pthm-cable/wildlife/traits"
)

func newSim(t *testing.T, species string, seed uint64) *Simulation {
	t.Helper()
	s, err := New(config.MustLoadDefaults(), Options{
		Seed:    seed,
		Species: species,
		Logger:  NewLogger(io.Discard, slog.LevelError),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewRejectsUnknownNames(t *testing.T) {
	cfg := config.MustLoadDefaults()
	quiet := NewLogger(io.Discard, slog.LevelError)

	if _, err := New(cfg, Options{Species: "dodo", Logger: quiet}); !errors.Is(err, ErrUnknownSpecies) {
		t.Errorf("unknown species: %v", err)
	}
	if _, err := New(cfg, Options{Species: "red_fox", Region: "atlantis", Logger: quiet}); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("unknown region: %v", err)
	}
}

func TestNewStartsInSeasonalRegion(t *testing.T) {
	s := newSim(t, "chinook_salmon", 1)
	if got := s.World().RegionID; got != "coastal_shelf" {
		t.Errorf("salmon starts in %q, want coastal_shelf", got)
	}
	sub := s.Subject()
	if !sub.Alive || sub.Generation != 1 {
		t.Errorf("unexpected founder: %+v", sub)
	}
	if !sub.Lineage.Flags.Has(traits.Founder) {
		t.Error("founder flag missing")
	}
}

func TestSameSeedSameHistory(t *testing.T) {
	a := newSim(t, "red_fox", 42)
	b := newSim(t, "red_fox", 42)
	for i := 0; i < 30; i++ {
		a.Step()
		b.Step()
	}
	if !reflect.DeepEqual(a.History(), b.History()) {
		t.Fatal("identical seeds diverged")
	}

	c := newSim(t, "red_fox", 43)
	for i := 0; i < 30; i++ {
		c.Step()
	}
	if reflect.DeepEqual(a.History(), c.History()) {
		t.Error("different seeds produced identical histories")
	}
}

func TestStepRecordsOneSnapshot(t *testing.T) {
	s := newSim(t, "red_fox", 3)
	for i := 0; i < 5; i++ {
		res := s.Step()
		if res.Skipped {
			t.Fatalf("turn %d skipped", i)
		}
		if res.Record.Turn != i {
			t.Errorf("record turn = %d, want %d", res.Record.Turn, i)
		}
	}
	if got := len(s.History()); got != 5 {
		t.Errorf("history length = %d, want 5", got)
	}
	if got := s.World().Time.Turn; got != 5 {
		t.Errorf("clock = %d, want 5", got)
	}
}

func TestFastForwardRecordsFinalTurnOnly(t *testing.T) {
	s := newSim(t, "red_fox", 4)
	res := s.FastForward(12)
	if res.Skipped {
		t.Fatal("fast-forward skipped")
	}
	h := s.History()
	if len(h) != 1 {
		t.Fatalf("history length = %d, want 1", len(h))
	}
	if h[0].Turn != 11 {
		t.Errorf("recorded turn %d, want 11", h[0].Turn)
	}
	if got := s.World().Time.Turn; got != 12 {
		t.Errorf("clock = %d, want 12", got)
	}
	if got := s.Subject().AgeTurns; got != s.Species().StartAgeTurns+12 {
		t.Errorf("age = %d after 12 turns", got)
	}
}

func TestFastForwardMatchesSteps(t *testing.T) {
	a := newSim(t, "red_fox", 9)
	b := newSim(t, "red_fox", 9)
	a.FastForward(10)
	for i := 0; i < 10; i++ {
		b.Step()
	}
	last := b.History()[9]
	last.Births = a.History()[0].Births
	if !reflect.DeepEqual(a.History()[0], last) {
		t.Error("fast-forward ended in a different state than stepping")
	}
	if !reflect.DeepEqual(a.World(), b.World()) {
		t.Error("world state differs")
	}
}

func TestDeadSubjectIsInert(t *testing.T) {
	s := newSim(t, "red_fox", 5)
	s.Step()
	if err := s.Apply(Kill{Cause: "Predation"}); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	if s.Alive() {
		t.Fatal("subject survived Kill")
	}

	before := s.World()
	res := s.Step()
	if !res.Skipped {
		t.Error("step on a dead subject was not skipped")
	}
	if !s.FastForward(5).Skipped {
		t.Error("fast-forward on a dead subject was not skipped")
	}
	if !reflect.DeepEqual(before, s.World()) {
		t.Error("world advanced after death")
	}
	if got := len(s.History()); got != 1 {
		t.Errorf("history grew to %d after death", got)
	}
	if err := s.Apply(AddCalories{Kcal: 100}); !errors.Is(err, ErrSubjectDead) {
		t.Errorf("apply after death: %v", err)
	}

	lives := s.Lives()
	if len(lives) != 1 || lives[0].DeathCause != "Predation" {
		t.Errorf("unexpected lives: %+v", lives)
	}
}

func TestSeasonChangeMigrates(t *testing.T) {
	s := newSim(t, "chinook_salmon", 6)
	sub := s.Subject()
	world := s.World()
	world.Time = components.Time{Turn: 32, Month: 8}
	world.Season = components.Summer

	var res TurnResult
	sub, world = s.seasonal(sub, world, &res)
	if world.RegionID != "river_valley" {
		t.Fatalf("region = %q, want river_valley", world.RegionID)
	}
	if world.Season != components.Autumn {
		t.Errorf("season = %v, want autumn", world.Season)
	}
	river, _ := s.cfg.Region("river_valley")
	if world.Shelter != river.Shelter {
		t.Errorf("shelter = %v, want %v", world.Shelter, river.Shelter)
	}
	if !sub.EarnedFlags.Has(traits.Migrant) {
		t.Error("migrant flag not earned")
	}
	if sub.Lineage.Flags.Has(traits.Migrant) {
		t.Error("migration rewrote the birth lineage record")
	}
	if !parentOf(sub).Lineage.Flags.Has(traits.Migrant) {
		t.Error("earned flag missing from the parent passed to inheritance")
	}

	world.Shelter = 0.7
	s.reproduce(sub, world, &res)
	if res.Spawn == nil || len(res.Spawn.Offspring) == 0 {
		t.Fatal("migrated salmon did not spawn")
	}
	for i, heir := range res.Spawn.Offspring {
		if !heir.Flags.Has(traits.Migrant) {
			t.Errorf("offspring %d did not inherit the migrant flag", i)
		}
	}
}

func TestProlificBirthEarnsFlag(t *testing.T) {
	s := newSim(t, "red_fox", 12)
	n := s.cfg.Lineage.ProlificSurvivors
	birth := &reproduction.Birth{Turn: 40, Count: n, SurvivalChance: 1, Survivors: make([]lineage.Traits, n)}

	sub := s.registerBirth(s.Subject(), birth)
	if !sub.EarnedFlags.Has(traits.Prolific) {
		t.Fatal("prolific flag not earned")
	}
	if sub.Lineage.Flags.Has(traits.Prolific) {
		t.Error("birth rewrote the lineage record")
	}
	if !sub.EffectiveLineage().Flags.Has(traits.Prolific) {
		t.Error("effective lineage lacks the earned flag")
	}
	if sub.Offspring != n || sub.EstimatedSurvivors != n {
		t.Errorf("offspring=%d estimated=%d, want %d", sub.Offspring, sub.EstimatedSurvivors, n)
	}
}

func TestSalmonSpawnsInBreedingRegion(t *testing.T) {
	s := newSim(t, "chinook_salmon", 7)
	sub := s.Subject()
	world := s.World()
	world.Time = components.Time{Turn: 33, Month: 8}

	var res TurnResult
	sub, _ = s.reproduce(sub, world, &res)
	if res.Spawn != nil {
		t.Fatal("spawned outside the breeding region")
	}

	world.RegionID = "river_valley"
	world.Shelter = 0.7
	sub, _ = s.reproduce(sub, world, &res)
	if res.Spawn == nil {
		t.Fatal("no spawn in the breeding region")
	}
	if !reproduction.Spawned(sub.Reproduction) {
		t.Error("spawned flag not set")
	}
	if sub.Alive || sub.DeathCause != components.Senescence {
		t.Errorf("spawn should be fatal, got alive=%v cause=%q", sub.Alive, sub.DeathCause)
	}
	if s.Brood().Len() != len(res.Spawn.Offspring) || res.Births != len(res.Spawn.Offspring) {
		t.Errorf("brood %d, births %d, offspring %d", s.Brood().Len(), res.Births, len(res.Spawn.Offspring))
	}
	if sub.EstimatedSurvivors != res.Spawn.EstimatedSurvivors {
		t.Errorf("estimated survivors = %d, want %d", sub.EstimatedSurvivors, res.Spawn.EstimatedSurvivors)
	}
	if res.Spawn.EstimatedSurvivors <= len(res.Spawn.Offspring) {
		t.Fatalf("estimate %d does not exceed the %d tracked heirs", res.Spawn.EstimatedSurvivors, len(res.Spawn.Offspring))
	}

	s.subject = sub
	s.finishLife()
	life := s.Lives()[0]
	if life.EstimatedSurvivors != res.Spawn.EstimatedSurvivors || life.Offspring != len(res.Spawn.Offspring) {
		t.Errorf("generation record offspring=%d estimated=%d, want %d and %d",
			life.Offspring, life.EstimatedSurvivors, len(res.Spawn.Offspring), res.Spawn.EstimatedSurvivors)
	}
}

func TestNestQuality(t *testing.T) {
	if !nestFor(0.7).Has(traits.NestSheltered) {
		t.Error("0.7 shelter is not a sheltered nest")
	}
	if !nestFor(0.2).Has(traits.NestExposed) {
		t.Error("0.2 shelter is not an exposed nest")
	}
	if nestFor(0.5) != 0 {
		t.Error("0.5 shelter should be an ordinary nest")
	}
}

func TestSuccession(t *testing.T) {
	s := newSim(t, "chinook_salmon", 8)
	if err := s.Succeed(); !errors.Is(err, ErrSubjectAlive) {
		t.Errorf("succeed while alive: %v", err)
	}

	if err := s.Apply(ForceSpawn{Nest: traits.NestSheltered}); err != nil {
		t.Fatalf("ForceSpawn: %v", err)
	}
	if s.Alive() {
		t.Fatal("salmon survived spawning")
	}
	brood := s.Brood().Len()
	if brood == 0 {
		t.Fatal("spawn produced no tracked offspring")
	}

	if err := s.Succeed(); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	sub := s.Subject()
	if !sub.Alive || sub.Generation != 2 {
		t.Errorf("heir: alive=%v generation=%d", sub.Alive, sub.Generation)
	}
	if sub.Lineage.Flags.Has(traits.Founder) {
		t.Error("heir inherited the founder flag")
	}
	if got := s.Brood().Len(); got != brood-1 {
		t.Errorf("brood = %d, want %d", got, brood-1)
	}
	if got := len(s.Lives()); got != 1 {
		t.Errorf("lives = %d, want 1", got)
	}

	res := s.Step()
	if res.Skipped || res.Record.Generation != 2 {
		t.Errorf("heir did not take a turn: %+v", res.Record)
	}
}

func TestSuccessionWithoutHeir(t *testing.T) {
	s := newSim(t, "red_fox", 10)
	if err := s.Apply(Kill{Cause: components.Starvation}); err != nil {
		t.Fatal(err)
	}
	if err := s.Succeed(); !errors.Is(err, ErrNoHeir) {
		t.Errorf("succeed with empty brood: %v", err)
	}
}

func TestSnapshotCarriesState(t *testing.T) {
	s := newSim(t, "red_fox", 11)
	s.Step()
	s.Step()

	snap := s.Snapshot()
	if snap.Seed != 11 || snap.Species != "red_fox" {
		t.Errorf("unexpected header: %+v", snap)
	}
	if snap.Current.Turn != 1 {
		t.Errorf("current turn = %d, want 1", snap.Current.Turn)
	}
	if len(snap.Modifiers) != s.Subject().Ledger.Len() {
		t.Errorf("%d modifiers, ledger has %d", len(snap.Modifiers), s.Subject().Ledger.Len())
	}
	if snap.Lineage.Generation != 1 || len(snap.Lineage.Flags) == 0 {
		t.Errorf("unexpected lineage: %+v", snap.Lineage)
	}
}

func TestHistoryLimit(t *testing.T) {
	cfg := config.MustLoadDefaults()
	cfg.Telemetry.HistoryLimit = 3
	s, err := New(cfg, Options{Species: "red_fox", Logger: NewLogger(io.Discard, slog.LevelError)})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		s.Step()
	}
	h := s.History()
	if len(h) != 3 {
		t.Fatalf("history length = %d, want 3", len(h))
	}
	if h[0].Turn != 3 || h[2].Turn != 5 {
		t.Errorf("kept turns %d..%d, want 3..5", h[0].Turn, h[2].Turn)
	}
}
