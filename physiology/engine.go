package physiology

import (
	"math"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/stats"
	"github.com/pthm-cable/wildlife/weather"
)

// Expenditure breaks down the calories spent in one turn.
type Expenditure struct {
	Basal        float64
	Activity     float64
	Thermo       float64
	Immune       float64
	Reproduction float64
	Growth       float64
}

// Total returns the sum of all components.
func (e Expenditure) Total() float64 {
	return e.Basal + e.Activity + e.Thermo + e.Immune + e.Reproduction + e.Growth
}

// Result is the outcome of one physiology tick.
type Result struct {
	State        State
	WeightChange float64 // kg
	Intake       float64 // kcal
	Expenditure  Expenditure
	Balance      float64 // Intake minus total expenditure
	Modifiers    []stats.Modifier
	DeathCause   components.DeathCause // Empty while alive
	Narratives   []Narrative
}

// Dead reports whether the tick was fatal.
func (r Result) Dead() bool {
	return r.DeathCause != ""
}

// Tick computes one turn of physiology. It never fails: missing inputs
// fall back to neutral values and outputs are clamped where meaningful.
func Tick(subject Subject, t components.Time, w weather.State, env Environment, sp *config.SpeciesConfig) Result {
	env = env.withDefaults()
	prev := subject.Physiology
	weightKg := subject.WeightKg
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) || weightKg <= 0 {
		weightKg = sp.Weight.StartKg
	}
	effort := subject.Effort.Factor()

	// Intake
	locomotion := subject.Body.Capability(components.Locomotion) / components.FullCapability
	digestion := subject.Body.Capability(components.Digestion) / components.FullCapability
	forage := env.abundance(t.Month, sp) * env.TerrainForage
	intake := (forage*effort*locomotion*digestion*sp.Metabolism.ForageBaseKcal + max(0, prev.PendingBonusKcal)) * env.TimeScale

	// Immune load is independent of this turn's energy budget, so it is
	// known before expenditure.
	load := immuneLoad(subject.Body, sp)

	// Expenditure
	basal := BasalRate(weightKg, env.DaysPerTurn, sp)
	exp := Expenditure{
		Basal:    basal,
		Activity: basal * sp.Metabolism.ActivityFraction * effort,
		Thermo:   thermoCost(basal, env.AmbientC, w.WindSpeed, subject.Body, env.Shelter, sp),
		Immune:   basal * sp.Immune.CostPerLoad * load,
	}
	if subject.Gestating {
		exp.Reproduction += basal * sp.Metabolism.GestationFraction
	}
	if subject.Lactating {
		exp.Reproduction += basal * sp.Metabolism.LactationFraction
	}
	if subject.Phase == components.Juvenile {
		exp.Growth = basal * sp.Metabolism.GrowthFraction
	}

	// Weight
	balance := intake - exp.Total()
	alpha := clamp(sp.Metabolism.BalanceSmoothing, 0, 1)
	avg := alpha*balance + (1-alpha)*prev.AvgCaloricBalance
	delta := weightDelta(balance, weightKg, sp)
	newWeight := weightKg + delta

	// Core temperature
	coreDev := coreDeviation(prev.CoreTempDeviation, exp.Thermo, basal, env.AmbientC, sp)

	// Immune capacity
	bcs := BodyConditionScore(newWeight, sp)
	capacity := sp.Immune.Baseline
	capacity -= sp.Immune.ConditionPenalty * float64(max(0, 3-bcs))
	capacity -= sp.Immune.StressPenalty * max(0, subject.Stats[stats.Stress]-sp.Immune.StressThreshold)
	if subject.Phase == components.Elder {
		capacity -= sp.Immune.ElderPenalty
	}
	if avg < 0 {
		capacity -= sp.Immune.NegativeTrendPenalty
	}
	capacity = clamp(capacity, 0, 100)

	next := State{
		CaloricReserve:    reserve(newWeight, sp),
		AvgCaloricBalance: avg,
		NegativeBalance:   balance < 0,
		ThermoCost:        exp.Thermo,
		CoreTempDeviation: coreDev,
		BodyCondition:     bcs,
		ImmuneCapacity:    capacity,
		ImmuneLoad:        load,
		Immunocompromised: load > capacity,
	}

	res := Result{
		State:        next,
		WeightChange: delta,
		Intake:       intake,
		Expenditure:  exp,
		Balance:      balance,
		Modifiers:    derivedModifiers(next, balance, basal, sp),
	}

	switch {
	case coreDev <= HypothermiaThreshold:
		res.DeathCause = components.Hypothermia
	case coreDev >= HeatStrokeThreshold:
		res.DeathCause = components.HeatStroke
	case newWeight <= sp.Weight.StarvationDeathKg:
		res.DeathCause = components.Starvation
	}

	res.Narratives = narratives(next, balance, basal)
	return res
}

// BasalRate returns basal kcal per turn from Kleiber's law.
func BasalRate(weightKg, daysPerTurn float64, sp *config.SpeciesConfig) float64 {
	return sp.Metabolism.KleiberCoefficient * math.Pow(weightKg, sp.Metabolism.KleiberExponent) * daysPerTurn
}

func thermoCost(basal, ambientC, windSpeed float64, body components.Body, shelter float64, sp *config.SpeciesConfig) float64 {
	th := sp.Thermal
	switch {
	case ambientC < th.LowerCriticalC:
		deficit := th.LowerCriticalC - ambientC
		insulation := 1 + body.AverageIntegumentDamage()/100
		cover := 1 - shelter*th.ShelterReduction
		wind := 1.0
		if windSpeed > th.WindThreshold {
			wind += (windSpeed - th.WindThreshold) * th.WindFactor
		}
		return max(0, basal*th.ColdCostPerDegree*deficit*insulation*cover*wind)
	case ambientC > th.UpperCriticalC:
		return basal * th.HeatCostPerDegree * (ambientC - th.UpperCriticalC)
	default:
		return 0
	}
}

func weightDelta(balance, weightKg float64, sp *config.SpeciesConfig) float64 {
	m := sp.Metabolism
	switch {
	case balance > 0 && m.KcalPerKgGain > 0:
		gain := min(balance/m.KcalPerKgGain, m.MaxGainKg)
		return gain * saturation(weightKg, sp)
	case balance < 0 && m.KcalPerKgLoss > 0:
		return -min(-balance/m.KcalPerKgLoss, m.MaxLossKg)
	default:
		return 0
	}
}

// saturation attenuates gain quadratically between healthy and max weight.
func saturation(weightKg float64, sp *config.SpeciesConfig) float64 {
	healthy, maxKg := sp.Weight.HealthyKg, sp.Weight.MaxKg
	if weightKg <= healthy {
		return 1
	}
	if maxKg <= healthy {
		return 0
	}
	x := (weightKg - healthy) / (maxKg - healthy)
	return clamp(1-x*x, 0, 1)
}

func coreDeviation(prev, thermo, basal, ambientC float64, sp *config.SpeciesConfig) float64 {
	th := sp.Thermal
	ratio := 0.0
	if basal > 0 {
		ratio = thermo / basal
	}
	if ratio > 0.5 {
		drift := min(th.CoreDriftRate*(ratio-0.5), th.MaxCoreDrift)
		if ambientC > th.UpperCriticalC {
			return prev + drift
		}
		return prev - drift
	}
	return prev * (1 - clamp(th.CoreRelaxRate, 0, 1))
}

func immuneLoad(body components.Body, sp *config.SpeciesConfig) float64 {
	var load float64
	for _, p := range body.Parasites {
		load += float64(max(1, p.Stage)) * sp.Immune.LoadPerParasiteStage
	}
	for _, w := range body.Wounds {
		if w.Infected {
			load += w.Severity.Weight() * sp.Immune.LoadPerInfectedWound
		}
	}
	return max(0, load)
}

// derivedModifiers re-derives the single-turn stat effects of this tick.
func derivedModifiers(s State, balance, basal float64, sp *config.SpeciesConfig) []stats.Modifier {
	st := sp.Stress
	var mods []stats.Modifier
	add := func(label string, k stats.Key, amount float64) {
		if amount == 0 || math.IsNaN(amount) {
			return
		}
		mods = append(mods, stats.Timed(stats.SourcePhysiology, SourceID, label, k, amount, 1))
	}

	if balance < 0 && basal > 0 {
		add("Caloric deficit", stats.Stress, min(st.DeficitCap, -balance/basal*st.DeficitScale))
	}
	add("Core temperature", stats.Climate, min(st.ClimateCap, math.Abs(s.CoreTempDeviation)*st.ClimatePerDegree))
	if overload := s.ImmuneLoad - s.ImmuneCapacity; overload > 0 {
		add("Immune overload", stats.Immune, min(st.ImmuneCap, overload*st.ImmunePerOverload))
	}
	if s.BodyCondition < 3 {
		add("Poor condition", stats.Health, -float64(3-s.BodyCondition)*st.HealthPerPoint)
	}
	return mods
}
