package xdr

import "math/rand"

// Generator produces randomized XDR values for round-trip property tests
// ("marshal then unmarshal reproduces the original value"). It is
// grounded on xdrpp/autocheck.h's generator: each recursive descent into
// a nested container halves the remaining size allowance, so a deeply
// recursive optional/union type still terminates instead of growing
// without bound.
type Generator struct {
	rng  *rand.Rand
	size int
}

// NewGenerator creates a Generator seeded from seed with an initial size
// budget. A larger size produces larger vectors/strings and permits
// deeper recursion before Shrink bottoms out at zero.
func NewGenerator(seed int64, size int) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), size: size}
}

// Shrink returns a child Generator with half the remaining size budget,
// called before generating into a nested container so unbounded
// recursion (an optional pointing to itself, a union whose arm can
// contain the same union) terminates.
func (g *Generator) Shrink() *Generator {
	next := g.size / 2
	return &Generator{rng: g.rng, size: next}
}

// Done reports whether the size budget has been exhausted, i.e. whether
// a recursive generator should stop producing "present" optionals and
// non-empty containers.
func (g *Generator) Done() bool {
	return g.size <= 0
}

// Uint32 returns a random uint32 in [0, max], or across the full uint32
// range if max is 0xFFFFFFFF.
func (g *Generator) Uint32(max uint32) uint32 {
	if max == 0 {
		return 0
	}
	return uint32(g.rng.Int63n(int64(max) + 1))
}

// Int32 returns a random int32.
func (g *Generator) Int32() int32 {
	return int32(g.rng.Uint32())
}

// Bool returns false once the size budget is exhausted (terminating
// optionals), and otherwise true or false with equal probability.
func (g *Generator) Bool() bool {
	if g.size <= 0 {
		return false
	}
	return g.rng.Intn(2) == 1
}

// Bytes returns a random byte slice of length in [0, maxLen], capped by
// the remaining size budget so shrunk generators produce short slices.
func (g *Generator) Bytes(maxLen uint32) []byte {
	n := g.boundedLen(maxLen)
	b := make([]byte, n)
	g.rng.Read(b)
	return b
}

// String returns a random printable-ASCII string of length in
// [0, maxLen], capped by the remaining size budget.
func (g *Generator) String(maxLen uint32) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	n := g.boundedLen(maxLen)
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[g.rng.Intn(len(alphabet))]
	}
	return string(b)
}

func (g *Generator) boundedLen(maxLen uint32) uint32 {
	budget := uint32(g.size)
	if budget > maxLen {
		budget = maxLen
	}
	if budget == 0 {
		return 0
	}
	return uint32(g.rng.Int63n(int64(budget) + 1))
}
