package stats

import (
	"errors"
	"testing"
)

func baseBlock(v float64) Block {
	var b Block
	for i := range b {
		b[i] = v
	}
	return b
}

func TestTimedModifierExpiresAfterDuration(t *testing.T) {
	for d := 1; d <= 6; d++ {
		l := New(baseBlock(50)).Add(Timed(SourceEvent, "ev", "test", Health, 10, d))

		for i := 0; i < d-1; i++ {
			l = l.Tick()
			if l.Len() != 1 {
				t.Fatalf("duration %d: modifier removed early after %d ticks", d, i+1)
			}
		}
		l = l.Tick()
		if l.Len() != 0 {
			t.Errorf("duration %d: modifier still present after %d ticks", d, d)
		}
	}
}

func TestPermanentModifierSurvivesTicks(t *testing.T) {
	l := New(baseBlock(50)).Add(Permanent(SourceAgePhase, "phase", "adult", Vigor, 5))
	for i := 0; i < 1000; i++ {
		l = l.Tick()
	}
	if l.Len() != 1 {
		t.Fatalf("permanent modifier lost, len=%d", l.Len())
	}
	if got := l.Effective(Vigor); got != 55 {
		t.Errorf("effective vigor = %v, want 55", got)
	}
}

func TestEffectiveAlwaysClamped(t *testing.T) {
	l := New(baseBlock(90)).
		Add(Permanent(SourceEvent, "a", "a", Health, 500)).
		Add(Permanent(SourceEvent, "b", "b", Stress, -500))
	l = l.WithBase(Trauma, 250).WithBase(Wisdom, -40)

	for _, k := range AllKeys {
		v := l.Effective(k)
		if v < MinValue || v > MaxValue {
			t.Errorf("%s effective %v out of range", k, v)
		}
		if Clamp(v) != v {
			t.Errorf("%s: clamp not idempotent for %v", k, v)
		}
	}
	if l.Effective(Health) != 100 || l.Effective(Stress) != 0 {
		t.Errorf("expected saturation, got HEA=%v STR=%v", l.Effective(Health), l.Effective(Stress))
	}
}

func TestRemovingModifierUnclamps(t *testing.T) {
	l := New(baseBlock(80)).
		Add(Permanent(SourceEvent, "boost", "boost", Health, 40))
	if l.Effective(Health) != 100 {
		t.Fatalf("expected saturated health, got %v", l.Effective(Health))
	}
	l = l.RemoveBySource("boost")
	if l.Effective(Health) != 80 {
		t.Errorf("expected base 80 after removal, got %v", l.Effective(Health))
	}
}

func TestRemoveBySourceIsExact(t *testing.T) {
	l := New(baseBlock(50)).
		Add(Permanent(SourceParasite, "tick-1", "ticks", Health, -5)).
		Add(Timed(SourceParasite, "tick-1", "ticks", Immune, 8, 3)).
		Add(Permanent(SourceParasite, "worm-2", "worms", Health, -3)).
		Add(Timed(SourceWeather, "weather", "rain", Climate, 2, 1))

	before := l.Modifiers()
	out := l.RemoveBySource("tick-1")

	if out.HasSource("tick-1") {
		t.Fatal("tick-1 modifiers remain")
	}
	var kept []Modifier
	for _, m := range before {
		if m.SourceID != "tick-1" {
			kept = append(kept, m)
		}
	}
	got := out.Modifiers()
	if len(got) != len(kept) {
		t.Fatalf("kept %d modifiers, want %d", len(got), len(kept))
	}
	for i := range kept {
		if got[i] != kept[i] {
			t.Errorf("modifier %d changed: got %+v want %+v", i, got[i], kept[i])
		}
	}
}

func TestTransformsDoNotMutateReceiver(t *testing.T) {
	l := New(baseBlock(50)).Add(Timed(SourceEvent, "e", "e", Novelty, 10, 2))
	_ = l.Tick()
	_ = l.RemoveBySource("e")
	_ = l.Add(Permanent(SourceEvent, "x", "x", Novelty, 1))

	if l.Len() != 1 {
		t.Fatalf("receiver length changed to %d", l.Len())
	}
	if m := l.Modifiers()[0]; m.Remaining != 2 {
		t.Errorf("receiver modifier duration changed to %d", m.Remaining)
	}
}

func TestAddAssignsDeterministicIDs(t *testing.T) {
	a := New(baseBlock(50)).Add(Permanent(SourceEvent, "e", "e", Health, 1))
	b := New(baseBlock(50)).Add(Permanent(SourceEvent, "e", "e", Health, 1))
	if a.Modifiers()[0].ID != b.Modifiers()[0].ID {
		t.Error("ids differ across identical ledgers")
	}

	c := a.Add(Permanent(SourceEvent, "e", "e", Health, 1))
	mods := c.Modifiers()
	if mods[0].ID == mods[1].ID {
		t.Error("two modifiers share an id")
	}
}

func TestTimedModifierWithoutDurationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero-duration timed modifier")
		}
	}()
	New(baseBlock(50)).Add(Timed(SourceEvent, "bad", "bad", Health, 1, 0))
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"HEA", Health},
		{"wisdom", Wisdom},
		{" Stress ", Stress},
		{"fecund", Fecundity},
		{"helth", Health},
		{"novelyt", Novelty},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.in)
		if err != nil {
			t.Errorf("ParseKey(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseKey("banana"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
}
