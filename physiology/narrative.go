package physiology

// Trigger identifies a condition worth narrating.
type Trigger string

const (
	TriggerStarving          Trigger = "starving"
	TriggerEmaciated         Trigger = "emaciated"
	TriggerCold              Trigger = "cold"
	TriggerOverheating       Trigger = "overheating"
	TriggerImmunocompromised Trigger = "immunocompromised"
	TriggerThriving          Trigger = "thriving"
)

// Narrative is a presentation fragment. The core does not interpret it.
type Narrative struct {
	Trigger Trigger
	Text    string
}

// Core deviation at which cold or heat becomes noticeable.
const thermalNarrativeDeviation = 2.0

func narratives(s State, balance, basal float64) []Narrative {
	var out []Narrative
	if s.NegativeBalance && s.AvgCaloricBalance < -0.25*basal {
		out = append(out, Narrative{TriggerStarving, "Hunger gnaws. The body is burning its reserves."})
	}
	if s.BodyCondition <= 1 {
		out = append(out, Narrative{TriggerEmaciated, "Ribs and hips show sharply beneath the coat."})
	}
	if s.CoreTempDeviation <= -thermalNarrativeDeviation {
		out = append(out, Narrative{TriggerCold, "Shivering will not stop. The cold is winning."})
	}
	if s.CoreTempDeviation >= thermalNarrativeDeviation {
		out = append(out, Narrative{TriggerOverheating, "Panting hard, unable to shed the heat."})
	}
	if s.Immunocompromised {
		out = append(out, Narrative{TriggerImmunocompromised, "Sickness is taking hold faster than the body can fight it."})
	}
	if s.BodyCondition >= 4 && balance > 0 {
		out = append(out, Narrative{TriggerThriving, "Sleek and well fed."})
	}
	return out
}

// Has reports whether any narrative carries the trigger.
func Has(ns []Narrative, trig Trigger) bool {
	for _, n := range ns {
		if n.Trigger == trig {
			return true
		}
	}
	return false
}
