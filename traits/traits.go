// Package traits defines bit-flag sets carried by lineages and nests.
package traits

// LineageFlag marks a heritable characteristic carried forward through generations.
type LineageFlag uint32

const (
	Founder   LineageFlag = 1 << iota // First generation of a run
	Robust                            // A parent finished with high health
	Sage                              // A parent finished with high wisdom
	Hardened                          // A parent carried heavy trauma
	Migrant                           // The line has followed a seasonal migration
	Prolific                          // A parent raised a large surviving litter
)

// NestFlag describes the quality of a spawning site.
type NestFlag uint8

const (
	NestSheltered NestFlag = 1 << iota // Good cover, survival x1.5
	NestExposed                        // Poor cover, survival x0.5
	NestDisturbed                      // Disturbed during spawning
)

// Has checks if a flag set contains a flag.
func (f LineageFlag) Has(other LineageFlag) bool {
	return f&other != 0
}

// Add adds a flag to the set.
func (f LineageFlag) Add(other LineageFlag) LineageFlag {
	return f | other
}

// Remove removes a flag from the set.
func (f LineageFlag) Remove(other LineageFlag) LineageFlag {
	return f &^ other
}

// Inheritable strips flags that describe only the current individual.
func (f LineageFlag) Inheritable() LineageFlag {
	return f.Remove(Founder)
}

// Has checks if a nest flag set contains a flag.
func (n NestFlag) Has(other NestFlag) bool {
	return n&other != 0
}

// Add adds a flag to the nest set.
func (n NestFlag) Add(other NestFlag) NestFlag {
	return n | other
}

// SurvivalMultiplier returns the nest-quality multiplier applied to egg survival.
// Sheltered and exposed cancel out when both are present.
func (n NestFlag) SurvivalMultiplier() float64 {
	m := 1.0
	if n.Has(NestSheltered) {
		m *= 1.5
	}
	if n.Has(NestExposed) {
		m *= 0.5
	}
	return m
}

// FlagNames returns human-readable names for lineage flags.
func FlagNames(f LineageFlag) []string {
	var names []string
	if f.Has(Founder) {
		names = append(names, "Founder")
	}
	if f.Has(Robust) {
		names = append(names, "Robust")
	}
	if f.Has(Sage) {
		names = append(names, "Sage")
	}
	if f.Has(Hardened) {
		names = append(names, "Hardened")
	}
	if f.Has(Migrant) {
		names = append(names, "Migrant")
	}
	if f.Has(Prolific) {
		names = append(names, "Prolific")
	}
	return names
}

// NestNames returns human-readable names for nest flags.
func NestNames(n NestFlag) []string {
	var names []string
	if n.Has(NestSheltered) {
		names = append(names, "Sheltered")
	}
	if n.Has(NestExposed) {
		names = append(names, "Exposed")
	}
	if n.Has(NestDisturbed) {
		names = append(names, "Disturbed")
	}
	return names
}
