package xdr

import "io"

// FixedOpaque is fixed-length opaque data (RFC 4506 §4.9): exactly B.N()
// raw bytes, padded to a 4-byte boundary, no length prefix.
type FixedOpaque[B Bound] struct {
	Data []byte
}

// Marshal writes the raw bytes plus padding. Data must be exactly B.N()
// bytes; a mismatched length is an invariant violation, not a wire fault,
// since a fixed opaque's length is fixed by its type.
func (o FixedOpaque[B]) Marshal(w io.Writer) error {
	n := boundOf[B]()
	if uint32(len(o.Data)) != n {
		return NewInvariantFailedError("opaque", "fixed opaque length does not match declared bound")
	}
	return PutFixedOpaque(w, o.Data)
}

// Unmarshal reads exactly B.N() bytes plus padding.
func (o *FixedOpaque[B]) Unmarshal(r io.Reader) error {
	data, err := GetFixedOpaque(r, boundOf[B]())
	if err != nil {
		return err
	}
	o.Data = data
	return nil
}

// VarOpaque is variable-length opaque data (RFC 4506 §4.10): a uint32
// length (<= B.N()), the bytes, and padding.
type VarOpaque[B Bound] struct {
	Data []byte
}

// Marshal writes the length-prefixed, padded byte string, rejecting
// payloads longer than the declared bound with ErrOverflow.
func (o VarOpaque[B]) Marshal(w io.Writer) error {
	bound := boundOf[B]()
	if uint32(len(o.Data)) > bound {
		return NewOverflowError("opaque", uint32(len(o.Data)), bound)
	}
	return PutOpaque(w, o.Data)
}

// Unmarshal reads a length-prefixed, padded byte string bounded by B.N().
func (o *VarOpaque[B]) Unmarshal(r io.Reader) error {
	data, err := GetOpaque(r, boundOf[B]())
	if err != nil {
		return err
	}
	o.Data = data
	return nil
}
