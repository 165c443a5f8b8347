package literal

import (
	"hash/fnv"
	"math/rand"

	"recomp/internal/shape"
)

// MakeFake manufactures a plausible literal of the given shape. The
// generator is deterministic: the random source is seeded from the shape
// string, so the same shape always yields the same literal. Replaying a
// snapshot twice with fake data therefore produces identical output.
func MakeFake(s shape.Shape) *Literal {
	h := fnv.New64a()
	h.Write([]byte(s.String()))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	l := New(s)
	n := s.NumElements()
	for i := 0; i < n; i++ {
		switch s.Type {
		case shape.Pred:
			l.SetElement(i, float64(rng.Intn(2)))
		case shape.S32, shape.S64:
			// Small magnitudes keep sums and products in range for any
			// plausible replayed computation.
			l.SetElement(i, float64(rng.Intn(201)-100))
		default:
			l.SetElement(i, rng.Float64()*2-1)
		}
	}
	return l
}
