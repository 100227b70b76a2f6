package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series is the distribution of one recorded quantity.
type Series struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Summary aggregates a run's turn history.
type Summary struct {
	Turns       int    `json:"turns"`
	AliveTurns  int    `json:"alive_turns"`
	Generations int    `json:"generations"`
	Births      int    `json:"births"`
	DeathCause  string `json:"death_cause,omitempty"` // Of the last recorded subject

	WeightKg      Series `json:"weight_kg"`
	Balance       Series `json:"balance"`
	AvgBalance    Series `json:"avg_balance"`
	CoreDeviation Series `json:"core_deviation"`
	AmbientC      Series `json:"ambient_c"`
	Health        Series `json:"hea"`
	Stress        Series `json:"str"`
}

// Summarize reduces a turn history. An empty history yields the zero Summary.
func Summarize(records []TurnRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	n := len(records)
	weight := make([]float64, n)
	balance := make([]float64, n)
	avg := make([]float64, n)
	core := make([]float64, n)
	ambient := make([]float64, n)
	health := make([]float64, n)
	stress := make([]float64, n)

	s := Summary{Turns: n}
	gens := make(map[int]struct{})
	for i, r := range records {
		weight[i] = r.WeightKg
		balance[i] = r.Balance
		avg[i] = r.AvgBalance
		core[i] = r.CoreDeviation
		ambient[i] = r.AmbientC
		health[i] = r.Health
		stress[i] = r.Stress

		if r.Alive {
			s.AliveTurns++
		}
		s.Births += r.Births
		gens[r.Generation] = struct{}{}
	}
	s.Generations = len(gens)
	s.DeathCause = records[n-1].DeathCause

	s.WeightKg = series(weight)
	s.Balance = series(balance)
	s.AvgBalance = series(avg)
	s.CoreDeviation = series(core)
	s.AmbientC = series(ambient)
	s.Health = series(health)
	s.Stress = series(stress)
	return s
}

func series(x []float64) Series {
	mean, std := stat.MeanStdDev(x, nil)
	if len(x) < 2 {
		std = 0
	}
	return Series{Mean: mean, Std: std, Min: floats.Min(x), Max: floats.Max(x)}
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("turns", s.Turns),
		slog.Int("alive_turns", s.AliveTurns),
		slog.Int("generations", s.Generations),
		slog.Int("births", s.Births),
		slog.Float64("weight_mean", s.WeightKg.Mean),
		slog.Float64("weight_min", s.WeightKg.Min),
		slog.Float64("weight_max", s.WeightKg.Max),
		slog.Float64("balance_mean", s.Balance.Mean),
		slog.Float64("balance_std", s.Balance.Std),
		slog.Float64("core_min", s.CoreDeviation.Min),
		slog.Float64("core_max", s.CoreDeviation.Max),
		slog.Float64("hea_mean", s.Health.Mean),
		slog.Float64("str_mean", s.Stress.Mean),
	}
	if s.DeathCause != "" {
		attrs = append(attrs, slog.String("death_cause", s.DeathCause))
	}
	return slog.GroupValue(attrs...)
}
