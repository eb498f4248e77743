package xdr

import "io"

// Unmarshaler is implemented by every generated (or hand-written) XDR
// type; see Marshaler's doc comment for the dispatch convention.
type Unmarshaler interface {
	XdrUnmarshal(d *Decoder) error
}

// Decoder unmarshals a tree of XDR values from an underlying io.Reader,
// tracking recursion depth across nested Value calls the same way
// Encoder does.
type Decoder struct {
	r        io.Reader
	depth    int
	maxDepth int
}

// NewDecoder creates a Decoder reading from r with the default depth limit.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth overrides the decoder's recursion limit and returns it for
// chaining.
func (d *Decoder) WithMaxDepth(n int) *Decoder {
	d.maxDepth = n
	return d
}

// Reader exposes the underlying io.Reader for generated code that calls
// the package-level Get* helpers directly.
func (d *Decoder) Reader() io.Reader { return d.r }

func (d *Decoder) Uint32() (uint32, error)   { return GetUint32(d.r) }
func (d *Decoder) Int32() (int32, error)     { return GetInt32(d.r) }
func (d *Decoder) Uint64() (uint64, error)   { return GetUint64(d.r) }
func (d *Decoder) Int64() (int64, error)     { return GetInt64(d.r) }
func (d *Decoder) Bool() (bool, error)       { return GetBool(d.r) }
func (d *Decoder) Float32() (float32, error) { return GetFloat32(d.r) }
func (d *Decoder) Float64() (float64, error) { return GetFloat64(d.r) }

// Opaque reads variable-length opaque data bounded by maxLen bytes.
func (d *Decoder) Opaque(maxLen uint32) ([]byte, error) { return GetOpaque(d.r, maxLen) }

// String reads a variable-length string bounded by maxLen bytes.
func (d *Decoder) String(maxLen uint32) (string, error) { return GetString(d.r, maxLen) }

// FixedOpaque reads exactly n raw bytes plus padding, with no length
// prefix to validate against.
func (d *Decoder) FixedOpaque(n uint32) ([]byte, error) { return GetFixedOpaque(d.r, n) }

// Value unmarshals into a nested Unmarshaler, pushing and popping the
// recursion depth counter the same way Encoder.Value does.
func (d *Decoder) Value(name string, v Unmarshaler) error {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > d.maxDepth {
		return NewDepthExceededError(name, d.maxDepth)
	}
	return v.XdrUnmarshal(d)
}

// Unmarshal is a convenience wrapper that builds a Decoder for r and
// unmarshals a single value from it.
func Unmarshal(r io.Reader, v Unmarshaler) error {
	return NewDecoder(r).Value("", v)
}

// Marshal is a convenience wrapper that builds an Encoder for w and
// marshals a single value to it.
func Marshal(w io.Writer, v Marshaler) error {
	return NewEncoder(w).Value("", v)
}
