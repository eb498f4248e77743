package xdr

import "io"

// DefaultMaxDepth bounds how deeply nested a Marshal/Unmarshal call tree
// may recurse before ErrDepthExceeded is raised. Recursive IDL types
// (a struct containing an optional pointer to itself, for instance) would
// otherwise let a malicious peer drive unbounded stack growth by nesting
// "present" pointers arbitrarily deep.
const DefaultMaxDepth = 64

// Marshaler is implemented by every generated (or hand-written) XDR type.
// Encoder.Value dispatches to it the way xdrpp's archive(ar, val, name)
// dispatches to a type's xdr_traits<T>::save specialization — the
// difference is this dispatch is an ordinary Go interface call, resolved
// at run time by the concrete type the caller passes in, rather than
// template instantiation.
type Marshaler interface {
	XdrMarshal(e *Encoder) error
}

// Encoder marshals a tree of XDR values onto an underlying io.Writer,
// tracking recursion depth across nested Value calls.
type Encoder struct {
	w        io.Writer
	depth    int
	maxDepth int
}

// NewEncoder creates an Encoder writing to w with the default depth limit.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth overrides the encoder's recursion limit and returns it for
// chaining.
func (e *Encoder) WithMaxDepth(n int) *Encoder {
	e.maxDepth = n
	return e
}

// Writer exposes the underlying io.Writer for generated code that calls
// the package-level Put* helpers directly.
func (e *Encoder) Writer() io.Writer { return e.w }

func (e *Encoder) Uint32(v uint32) error   { return PutUint32(e.w, v) }
func (e *Encoder) Int32(v int32) error     { return PutInt32(e.w, v) }
func (e *Encoder) Uint64(v uint64) error   { return PutUint64(e.w, v) }
func (e *Encoder) Int64(v int64) error     { return PutInt64(e.w, v) }
func (e *Encoder) Bool(v bool) error       { return PutBool(e.w, v) }
func (e *Encoder) Float32(v float32) error { return PutFloat32(e.w, v) }
func (e *Encoder) Float64(v float64) error { return PutFloat64(e.w, v) }
func (e *Encoder) Opaque(b []byte) error   { return PutOpaque(e.w, b) }
func (e *Encoder) String(s string) error   { return PutString(e.w, s) }

// FixedOpaque writes exactly len(b) raw bytes plus padding, with no
// length prefix — used for types whose IDL bound is fixed, not variable.
func (e *Encoder) FixedOpaque(b []byte) error { return PutFixedOpaque(e.w, b) }

// Value marshals a nested Marshaler, pushing and popping the recursion
// depth counter around the call so an over-deep tree of optional/union
// values is rejected rather than overflowing the Go stack.
func (e *Encoder) Value(name string, v Marshaler) error {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.maxDepth {
		return NewDepthExceededError(name, e.maxDepth)
	}
	return v.XdrMarshal(e)
}

// byteCounter is an io.Writer that only counts bytes written, backing
// Size's dry-run marshal.
type byteCounter struct{ n uint32 }

func (c *byteCounter) Write(p []byte) (int, error) {
	c.n += uint32(len(p))
	return len(p), nil
}

// Size returns the encoded length of v in bytes by marshaling it against
// a counting writer instead of a real one — a size archive implemented
// as a degenerate encoder rather than a fifth hand-written traversal.
func Size(v Marshaler) (uint32, error) {
	c := &byteCounter{}
	e := NewEncoder(c)
	if err := e.Value("", v); err != nil {
		return 0, err
	}
	return c.n, nil
}
