package xdr

// Bound stands in for the non-type template parameter (the constant N in
// xdrpp's xdr::xvector<T, N>, xdr::xstring<N>, xdr::opaque_array<N>) that
// Go generics have no syntax for. A bound is carried as a zero-size marker
// type implementing this interface instead of as a const generic
// parameter, so [XVector[B, T]] and friends stay regular generic types.
//
// The code generator (internal/codegen) emits one marker type per distinct
// bound literal that appears in an IDL file; Unbounded is the marker used
// when an IDL declaration has no "<N>" at all (an unbounded vector/string).
type Bound interface {
	N() uint32
}

// Unbounded is the marker for vectors and strings declared without an
// explicit bound, i.e. bounded only by the implicit XDR maximum of
// 0xFFFFFFFF.
type Unbounded struct{}

// N returns the implicit XDR maximum length.
func (Unbounded) N() uint32 { return 0xFFFFFFFF }

// boundOf returns the element/byte bound carried by a zero-size Bound
// marker type, without requiring the caller to hold an instance of it.
func boundOf[B Bound]() uint32 {
	var b B
	return b.N()
}

// Bound4, Bound8, ... are marker types for small literal bounds that recur
// across IDL files and hand-written protocol code (fixed-size hashes,
// small identifiers). The code generator emits additional markers
// on demand for bounds that don't already have one here; these exist so
// common cases don't require generation at all.
type (
	Bound4    struct{}
	Bound8    struct{}
	Bound16   struct{}
	Bound32   struct{}
	Bound64   struct{}
	Bound128  struct{}
	Bound256  struct{}
	Bound1024 struct{}
)

func (Bound4) N() uint32    { return 4 }
func (Bound8) N() uint32    { return 8 }
func (Bound16) N() uint32   { return 16 }
func (Bound32) N() uint32   { return 32 }
func (Bound64) N() uint32   { return 64 }
func (Bound128) N() uint32  { return 128 }
func (Bound256) N() uint32  { return 256 }
func (Bound1024) N() uint32 { return 1024 }
