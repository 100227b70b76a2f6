package components

import "testing"

func TestTimeAdvanceRollsMonthAndYear(t *testing.T) {
	tm := Time{Month: 11, WeekOfMonth: 3}
	tm = tm.Advance(4)
	if tm.Month != 0 || tm.Year != 1 || tm.WeekOfMonth != 0 || tm.Turn != 1 {
		t.Errorf("unexpected rollover: %+v", tm)
	}
}

func TestSeasonForMonth(t *testing.T) {
	want := map[int]Season{0: Winter, 2: Spring, 5: Summer, 8: Autumn, 11: Winter, -1: Winter}
	for m, s := range want {
		if got := SeasonForMonth(m); got != s {
			t.Errorf("month %d: got %s, want %s", m, got, s)
		}
	}
}

func TestBodyCapabilityDefaultsToFull(t *testing.T) {
	var b Body
	if got := b.Capability(Locomotion); got != FullCapability {
		t.Errorf("missing capability = %v, want %v", got, FullCapability)
	}
	b.Capabilities = map[Capability]float64{Digestion: 40}
	if got := b.Capability(Digestion); got != 40 {
		t.Errorf("digestion = %v, want 40", got)
	}
}

func TestTickWoundsHealsAndKeepsChronic(t *testing.T) {
	b := Body{Wounds: []Wound{
		{ID: "a", Severity: Minor, TurnsLeft: 1},
		{ID: "b", Severity: Severe, TurnsLeft: 3},
		{ID: "c", Severity: Moderate, TurnsLeft: 0},
	}}
	out := b.TickWounds()

	if len(out.Wounds) != 2 {
		t.Fatalf("expected 2 wounds, got %d", len(out.Wounds))
	}
	if out.Wounds[0].ID != "b" || out.Wounds[0].TurnsLeft != 2 {
		t.Errorf("wound b not advanced: %+v", out.Wounds[0])
	}
	if out.Wounds[1].ID != "c" {
		t.Errorf("chronic wound dropped: %+v", out.Wounds)
	}
	if len(b.Wounds) != 3 || b.Wounds[1].TurnsLeft != 3 {
		t.Error("original body mutated")
	}
}

func TestAverageIntegumentDamage(t *testing.T) {
	b := Body{Integument: []float64{0, 50, 100, 150}}
	if got := b.AverageIntegumentDamage(); got != 62.5 {
		t.Errorf("average damage = %v, want 62.5", got)
	}
}
