package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := []float64{4000, 0.6}
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestDenormalizeClamps(t *testing.T) {
	pv := NewParamVector()
	got := pv.Denormalize([]float64{-1, 2})
	if got[0] != pv.Specs[0].Min || got[1] != pv.Specs[1].Max {
		t.Errorf("unclamped values: %v", got)
	}
}

func TestApplyWritesSpecies(t *testing.T) {
	cfg := config.MustLoadDefaults()
	pv := NewParamVector()
	if err := pv.Apply(cfg, "red_fox", []float64{1234, 0.42}); err != nil {
		t.Fatal(err)
	}
	sp, _ := cfg.SpeciesByName("red_fox")
	if got := pv.Extract(sp); got[0] != 1234 || got[1] != 0.42 {
		t.Errorf("extracted %v", got)
	}
	if err := pv.Apply(cfg, "dodo", []float64{1, 1}); err == nil {
		t.Error("unknown species accepted")
	}
}

func TestScorePenalizesDeath(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), "", "red_fox", 100, []uint64{1})
	balanced := fe.score(summaryOf(0, 100))
	dead := fe.score(summaryOf(0, 10))
	starving := fe.score(summaryOf(-2000, 100))
	if balanced != 0 {
		t.Errorf("balanced full run scored %v", balanced)
	}
	if dead <= balanced || starving <= balanced {
		t.Errorf("scores: balanced %v dead %v starving %v", balanced, dead, starving)
	}
}

func TestEvaluateRunsDefaults(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), "", "red_fox", 8, []uint64{1, 2})
	sp, _ := config.MustLoadDefaults().SpeciesByName("red_fox")
	obj := fe.Evaluate(fe.params.Extract(sp))
	if math.IsNaN(obj) || math.IsInf(obj, 0) || obj < 0 {
		t.Errorf("objective = %v", obj)
	}
	if fe.LastSummary().Turns == 0 {
		t.Error("no turns summarized")
	}
}

func summaryOf(meanBalance float64, aliveTurns int) telemetry.Summary {
	var s telemetry.Summary
	s.AvgBalance.Mean = meanBalance
	s.AliveTurns = aliveTurns
	return s
}
