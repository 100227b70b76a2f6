package telemetry

import (
	"log/slog"
	"strings"

	"github.com/pthm-cable/wildlife/stats"
)

// TurnRecord is the observable state of the subject at the end of a turn.
type TurnRecord struct {
	Turn       int    `csv:"turn" json:"turn"`
	Year       int    `csv:"year" json:"year"`
	Month      int    `csv:"month" json:"month"`
	Week       int    `csv:"week" json:"week"`
	Season     string `csv:"season" json:"season"`
	Generation int    `csv:"generation" json:"generation"`
	Region     string `csv:"region" json:"region"`

	// Environment
	Weather          string  `csv:"weather" json:"weather"`
	WeatherIntensity float64 `csv:"weather_intensity" json:"weather_intensity"`
	AmbientC         float64 `csv:"ambient_c" json:"ambient_c"`

	// Body
	WeightKg       float64 `csv:"weight_kg" json:"weight_kg"`
	BodyCondition  int     `csv:"bcs" json:"bcs"`
	CoreDeviation  float64 `csv:"core_deviation" json:"core_deviation"`
	ImmuneCapacity float64 `csv:"immune_capacity" json:"immune_capacity"`
	ImmuneLoad     float64 `csv:"immune_load" json:"immune_load"`

	// Energy, kcal per turn
	Intake      float64 `csv:"intake" json:"intake"`
	Expenditure float64 `csv:"expenditure" json:"expenditure"`
	Balance     float64 `csv:"balance" json:"balance"`
	AvgBalance  float64 `csv:"avg_balance" json:"avg_balance"`

	// Effective statistics
	Health    float64 `csv:"hea" json:"hea"`
	Climate   float64 `csv:"cli" json:"cli"`
	Immune    float64 `csv:"imm" json:"imm"`
	Wisdom    float64 `csv:"wis" json:"wis"`
	Stress    float64 `csv:"str" json:"str"`
	Trauma    float64 `csv:"tra" json:"tra"`
	Novelty   float64 `csv:"nov" json:"nov"`
	Vigor     float64 `csv:"vig" json:"vig"`
	Fecundity float64 `csv:"fec" json:"fec"`

	Pregnant   bool   `csv:"pregnant" json:"pregnant"`
	Births     int    `csv:"births" json:"births"` // Surviving offspring born this turn
	Alive      bool   `csv:"alive" json:"alive"`
	DeathCause string `csv:"death_cause" json:"death_cause,omitempty"`
	Narratives string `csv:"narratives" json:"narratives,omitempty"` // Trigger names joined by ";"
}

// SetStats copies an effective stat block into the record.
func (r *TurnRecord) SetStats(b stats.Block) {
	r.Health = b[stats.Health]
	r.Climate = b[stats.Climate]
	r.Immune = b[stats.Immune]
	r.Wisdom = b[stats.Wisdom]
	r.Stress = b[stats.Stress]
	r.Trauma = b[stats.Trauma]
	r.Novelty = b[stats.Novelty]
	r.Vigor = b[stats.Vigor]
	r.Fecundity = b[stats.Fecundity]
}

// Stats returns the recorded effective stat block.
func (r TurnRecord) Stats() stats.Block {
	var b stats.Block
	b[stats.Health] = r.Health
	b[stats.Climate] = r.Climate
	b[stats.Immune] = r.Immune
	b[stats.Wisdom] = r.Wisdom
	b[stats.Stress] = r.Stress
	b[stats.Trauma] = r.Trauma
	b[stats.Novelty] = r.Novelty
	b[stats.Vigor] = r.Vigor
	b[stats.Fecundity] = r.Fecundity
	return b
}

// NarrativeList splits the joined narrative triggers.
func (r TurnRecord) NarrativeList() []string {
	if r.Narratives == "" {
		return nil
	}
	return strings.Split(r.Narratives, ";")
}

// LogValue implements slog.LogValuer for structured logging.
func (r TurnRecord) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("turn", r.Turn),
		slog.String("season", r.Season),
		slog.Int("generation", r.Generation),
		slog.String("region", r.Region),
		slog.String("weather", r.Weather),
		slog.Float64("ambient_c", r.AmbientC),
		slog.Float64("weight_kg", r.WeightKg),
		slog.Int("bcs", r.BodyCondition),
		slog.Float64("core_deviation", r.CoreDeviation),
		slog.Float64("balance", r.Balance),
		slog.Float64("avg_balance", r.AvgBalance),
		slog.Float64("hea", r.Health),
		slog.Float64("str", r.Stress),
		slog.Bool("alive", r.Alive),
	}
	if r.DeathCause != "" {
		attrs = append(attrs, slog.String("death_cause", r.DeathCause))
	}
	if r.Narratives != "" {
		attrs = append(attrs, slog.String("narratives", r.Narratives))
	}
	return slog.GroupValue(attrs...)
}

// GenerationRecord summarizes one finished life.
type GenerationRecord struct {
	Generation int     `csv:"generation" json:"generation"`
	Species    string  `csv:"species" json:"species"`
	StartTurn  int     `csv:"start_turn" json:"start_turn"`
	EndTurn    int     `csv:"end_turn" json:"end_turn"`
	AgeTurns   int     `csv:"age_turns" json:"age_turns"`
	DeathCause string  `csv:"death_cause" json:"death_cause"`
	Litters    int     `csv:"litters" json:"litters"`
	Offspring  int     `csv:"offspring" json:"offspring"` // Offspring tracked in the brood
	Flags      string  `csv:"flags" json:"flags"`
	PeakWeight float64 `csv:"peak_weight_kg" json:"peak_weight_kg"`

	// Fitness proxy: live-birth survivors plus the estimated survivors of
	// every spawn, uncapped by max_offspring.
	EstimatedSurvivors int `csv:"estimated_survivors" json:"estimated_survivors"`
}

// LogValue implements slog.LogValuer for structured logging.
func (g GenerationRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", g.Generation),
		slog.String("species", g.Species),
		slog.Int("start_turn", g.StartTurn),
		slog.Int("end_turn", g.EndTurn),
		slog.Int("age_turns", g.AgeTurns),
		slog.String("death_cause", g.DeathCause),
		slog.Int("litters", g.Litters),
		slog.Int("offspring", g.Offspring),
		slog.Int("estimated_survivors", g.EstimatedSurvivors),
		slog.String("flags", g.Flags),
		slog.Float64("peak_weight_kg", g.PeakWeight),
	)
}
