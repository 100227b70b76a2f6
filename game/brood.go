package game

import (
	"cmp"
	"math/bits"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wildlife/lineage"
	"github.com/pthm-cable/wildlife/stats"
)

// Offspring is the ECS component holding an offspring's birth record.
type Offspring struct {
	Seq      uint64 // Insertion order, used to break ties
	BornTurn int
	Parent   int // Generation of the parent
}

// Heritage is the ECS component holding an offspring's inherited traits.
type Heritage struct {
	Traits lineage.Traits
}

// Member is a read-only view of one brood entry.
type Member struct {
	Entity   ecs.Entity
	Seq      uint64
	BornTurn int
	Traits   lineage.Traits
}

// Brood tracks surviving offspring that can continue the line.
type Brood struct {
	world  *ecs.World
	mapper *ecs.Map2[Offspring, Heritage]
	filter *ecs.Filter2[Offspring, Heritage]
	count  int
	seq    uint64
}

// NewBrood creates an empty brood.
func NewBrood() *Brood {
	world := ecs.NewWorld()
	return &Brood{
		world:  world,
		mapper: ecs.NewMap2[Offspring, Heritage](world),
		filter: ecs.NewFilter2[Offspring, Heritage](world),
	}
}

// Add registers an offspring born at turn from a parent of the given generation.
func (b *Brood) Add(bornTurn, parentGeneration int, t lineage.Traits) ecs.Entity {
	b.seq++
	b.count++
	return b.mapper.NewEntity(
		&Offspring{Seq: b.seq, BornTurn: bornTurn, Parent: parentGeneration},
		&Heritage{Traits: t},
	)
}

// Len returns the number of offspring.
func (b *Brood) Len() int {
	return b.count
}

// Members returns every offspring in insertion order.
func (b *Brood) Members() []Member {
	members := make([]Member, 0, b.count)
	query := b.filter.Query()
	for query.Next() {
		off, her := query.Get()
		members = append(members, Member{
			Entity:   query.Entity(),
			Seq:      off.Seq,
			BornTurn: off.BornTurn,
			Traits:   her.Traits,
		})
	}
	slices.SortFunc(members, func(a, b Member) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return members
}

// Strongest returns the offspring with the highest lineage score.
// Ties go to the earliest born.
func (b *Brood) Strongest() (Member, bool) {
	members := b.Members()
	if len(members) == 0 {
		return Member{}, false
	}
	best := members[0]
	bestScore := Score(best.Traits)
	for _, m := range members[1:] {
		if s := Score(m.Traits); s > bestScore {
			best, bestScore = m, s
		}
	}
	return best, true
}

// Remove deletes an offspring from the brood.
func (b *Brood) Remove(e ecs.Entity) {
	if !b.world.Alive(e) {
		return
	}
	b.world.RemoveEntity(e)
	b.count--
}

// Score ranks inherited traits: beneficial biases add, adverse ones subtract.
func Score(t lineage.Traits) float64 {
	var score float64
	for _, k := range stats.AllKeys {
		if k.Adverse() {
			score -= t.Bias(k)
		} else {
			score += t.Bias(k)
		}
	}
	return score + 0.1*float64(bits.OnesCount32(uint32(t.Flags)))
}
