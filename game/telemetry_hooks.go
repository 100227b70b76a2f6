package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/lineage"
	"github.com/pthm-cable/wildlife/physiology"
	"github.com/pthm-cable/wildlife/reproduction"
	"github.com/pthm-cable/wildlife/stats"
	"github.com/pthm-cable/wildlife/telemetry"
	"github.com/pthm-cable/wildlife/traits"
)

// snapshot builds the turn record for the committed state. t is the time
// of the turn that was simulated.
func (s *Simulation) snapshot(t components.Time, phys physiology.Result) telemetry.TurnRecord {
	sub := s.subject
	w := s.world
	rec := telemetry.TurnRecord{
		Turn:             t.Turn,
		Year:             t.Year,
		Month:            t.Month,
		Week:             t.WeekOfMonth,
		Season:           t.Season().String(),
		Generation:       sub.Generation,
		Region:           w.RegionID,
		Weather:          w.Weather.Type.String(),
		WeatherIntensity: w.Weather.Intensity,
		AmbientC:         w.AmbientC,
		WeightKg:         sub.WeightKg,
		BodyCondition:    sub.Physiology.BodyCondition,
		CoreDeviation:    sub.Physiology.CoreTempDeviation,
		ImmuneCapacity:   sub.Physiology.ImmuneCapacity,
		ImmuneLoad:       sub.Physiology.ImmuneLoad,
		Intake:           phys.Intake,
		Expenditure:      phys.Expenditure.Total(),
		Balance:          phys.Balance,
		AvgBalance:       sub.Physiology.AvgCaloricBalance,
		Pregnant:         reproduction.Pregnant(sub.Reproduction),
		Alive:            sub.Alive,
		DeathCause:       string(sub.DeathCause),
	}
	rec.SetStats(sub.Stats())
	if len(phys.Narratives) > 0 {
		names := make([]string, len(phys.Narratives))
		for i, n := range phys.Narratives {
			names[i] = string(n.Trigger)
		}
		rec.Narratives = strings.Join(names, ";")
	}
	return rec
}

// record appends a turn to the history and forwards it to the outputs.
func (s *Simulation) record(res *TurnResult) {
	s.perf.StartPhase(telemetry.PhaseTelemetry)
	res.Record.Births = s.unlogged
	s.unlogged = 0

	s.history = append(s.history, res.Record)
	if limit := s.cfg.Telemetry.HistoryLimit; limit > 0 && len(s.history) > limit {
		s.history = slices.Delete(s.history, 0, len(s.history)-limit)
	}

	s.logTurn(res.Record)
	if err := s.output.WriteTurn(res.Record); err != nil {
		s.logger.Error("failed to write turn", "error", err)
	}

	for _, bm := range s.detector.Check(res.Record) {
		s.bookmarks = append(s.bookmarks, bm)
		s.logger.Info("bookmark", "type", string(bm.Type), "turn", bm.Turn, "description", bm.Description)
		if err := s.output.WriteBookmark(bm); err != nil {
			s.logger.Error("failed to write bookmark", "error", err)
		}
	}
}

// lastRecord returns the newest history entry, or the zero record.
func (s *Simulation) lastRecord() telemetry.TurnRecord {
	if len(s.history) == 0 {
		return telemetry.TurnRecord{}
	}
	return s.history[len(s.history)-1]
}

// History returns a copy of the recorded turns, oldest first.
func (s *Simulation) History() []telemetry.TurnRecord {
	return slices.Clone(s.history)
}

// Lives returns the records of finished generations.
func (s *Simulation) Lives() []telemetry.GenerationRecord {
	return slices.Clone(s.lives)
}

// Bookmarks returns the notable turns flagged so far.
func (s *Simulation) Bookmarks() []telemetry.Bookmark {
	return slices.Clone(s.bookmarks)
}

// Summary reduces the recorded history.
func (s *Simulation) Summary() telemetry.Summary {
	return telemetry.Summarize(s.history)
}

// Snapshot captures the current state for export.
func (s *Simulation) Snapshot() *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		Seed:      s.seed,
		Species:   s.species.Name,
		Region:    s.world.RegionID,
		AgeTurns:  s.subject.AgeTurns,
		Current:   s.lastRecord(),
		Lineage:   lineageState(s.subject.EffectiveLineage()),
		Lives:     s.Lives(),
		Bookmarks: s.Bookmarks(),
	}
	for _, m := range s.subject.Ledger.Modifiers() {
		ms := telemetry.ModifierState{
			ID:       m.ID.String(),
			Source:   m.Source,
			Kind:     m.Kind.String(),
			SourceID: m.SourceID,
			Stat:     m.Stat.Code(),
			Amount:   m.Amount,
		}
		if m.Timed {
			ms.Remaining = m.Remaining
		}
		snap.Modifiers = append(snap.Modifiers, ms)
	}
	for _, m := range s.brood.Members() {
		snap.Brood = append(snap.Brood, telemetry.OffspringState{BornTurn: m.BornTurn, Lineage: lineageState(m.Traits)})
	}
	return snap
}

func lineageState(t lineage.Traits) telemetry.LineageState {
	ls := telemetry.LineageState{Generation: t.Generation, Flags: traits.FlagNames(t.Flags)}
	for _, k := range stats.AllKeys {
		if b := t.Bias(k); b != 0 {
			if ls.Biases == nil {
				ls.Biases = make(map[string]float64)
			}
			ls.Biases[k.Code()] = b
		}
	}
	return ls
}

// Save writes the snapshot to the output directory and the run to the archive.
func (s *Simulation) Save() error {
	if _, err := s.output.WriteSnapshot(s.Snapshot()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	info := telemetry.RunInfo{
		Seed:    s.seed,
		Species: s.species.Name,
		Region:  s.origin,
		Turns:   len(s.history),
		Summary: s.Summary(),
	}
	if err := s.archive.SaveRun(info, s.history, s.lives); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	s.logPerf()
	return nil
}
