package components

// DeathCause names why a subject died. The set is open: narrative content
// may supply its own causes alongside the ones the core produces.
type DeathCause string

const (
	Starvation  DeathCause = "Starvation"
	Hypothermia DeathCause = "Hypothermia"
	HeatStroke  DeathCause = "Heat stroke"
	Senescence  DeathCause = "Senescence"
)
