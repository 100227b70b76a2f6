package game

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pthm-cable/wildlife/telemetry"
)

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", name, err)
	}
	return lvl, nil
}

// NewLogger returns a JSON logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// logTurn writes every turn at debug level and a periodic summary at info.
func (s *Simulation) logTurn(rec telemetry.TurnRecord) {
	s.logger.Debug("turn", "record", rec)

	every := s.cfg.Telemetry.LogEvery
	if every <= 0 || rec.Turn%every != 0 {
		return
	}
	s.logger.Info("status",
		"turn", rec.Turn,
		"season", rec.Season,
		"generation", rec.Generation,
		"weight_kg", rec.WeightKg,
		"bcs", rec.BodyCondition,
		"avg_balance", rec.AvgBalance,
		"weather", rec.Weather,
		"brood", s.brood.Len(),
	)
}

// logPerf writes turn timing statistics.
func (s *Simulation) logPerf() {
	st := s.perf.Stats()
	if st.TurnsPerSecond == 0 {
		return
	}
	s.logger.Info("perf", "stats", st)
}
