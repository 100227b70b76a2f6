package game

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
)

// NewRNG returns the run's random source. Both PCG words are derived from
// the seed so nearby seeds do not produce correlated streams.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(saltedWord(seed, "wildlife:hi"), saltedWord(seed, "wildlife:lo")))
}

func saltedWord(seed uint64, salt string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(salt))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	h.Write(buf[:])
	return h.Sum64()
}
