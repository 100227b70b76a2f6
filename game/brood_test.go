package game

import (
	"testing"

	"github.com/pthm-cable/wildlife/lineage"
	"github.com/pthm-cable/wildlife/stats"
	"github.com/pthm-cable/wildlife/traits"
)

func offspring(gen int, biases map[stats.Key]float64, flags traits.LineageFlag) lineage.Traits {
	return lineage.NewTraits(gen, stats.Block{}, biases, flags)
}

func TestBroodStrongest(t *testing.T) {
	b := NewBrood()
	if _, ok := b.Strongest(); ok {
		t.Fatal("empty brood returned an heir")
	}

	b.Add(10, 1, offspring(2, map[stats.Key]float64{stats.Health: 1}, 0))
	strong := b.Add(10, 1, offspring(2, map[stats.Key]float64{stats.Health: 2, stats.Wisdom: 1}, 0))
	b.Add(10, 1, offspring(2, map[stats.Key]float64{stats.Health: 4, stats.Stress: 2}, 0))

	best, ok := b.Strongest()
	if !ok || best.Entity != strong {
		t.Errorf("strongest = %+v", best)
	}

	b.Remove(strong)
	if b.Len() != 2 {
		t.Errorf("len = %d after remove, want 2", b.Len())
	}
	b.Remove(strong)
	if b.Len() != 2 {
		t.Errorf("double remove changed len to %d", b.Len())
	}
}

func TestBroodTiesGoToEarliest(t *testing.T) {
	b := NewBrood()
	first := b.Add(5, 1, offspring(2, nil, traits.Migrant))
	b.Add(6, 1, offspring(2, nil, traits.Robust))

	best, _ := b.Strongest()
	if best.Entity != first {
		t.Errorf("tie resolved to seq %d, want the first", best.Seq)
	}

	members := b.Members()
	if len(members) != 2 || members[0].BornTurn != 5 || members[1].BornTurn != 6 {
		t.Errorf("members out of order: %+v", members)
	}
}

func TestScore(t *testing.T) {
	plain := offspring(2, map[stats.Key]float64{stats.Vigor: 1}, 0)
	stressed := offspring(2, map[stats.Key]float64{stats.Vigor: 1, stats.Stress: 1}, 0)
	flagged := offspring(2, map[stats.Key]float64{stats.Vigor: 1}, traits.Robust|traits.Sage)

	if Score(stressed) >= Score(plain) {
		t.Error("adverse bias did not lower the score")
	}
	if got, want := Score(flagged), Score(plain)+0.2; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("flagged score = %v, want %v", got, want)
	}
}

func TestNewRNG(t *testing.T) {
	a, b := NewRNG(1), NewRNG(1)
	for i := 0; i < 10; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatal("same seed produced different streams")
		}
	}
	if NewRNG(1).Uint64() == NewRNG(2).Uint64() {
		t.Error("adjacent seeds share a first draw")
	}
}
