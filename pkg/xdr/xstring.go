package xdr

import "io"

// XString is an XDR string (RFC 4506 §4.11): the same length-prefixed,
// padded encoding as variable-length opaque data, bounded to at most B.N()
// bytes and interpreted as text rather than binary.
type XString[B Bound] struct {
	Value string
}

// Validator is an optional hook a generated type can set to enforce an
// invariant (e.g. "must be valid UTF-8", "must not contain NUL") beyond
// the plain length bound. It is invoked on both the marshal and the
// unmarshal path (see DESIGN.md's Open Question decision), so a peer
// cannot construct a wire value on the wire that the invariant forbids.
type Validator func(string) error

// Marshal writes the length-prefixed, padded string, rejecting strings
// longer than the declared bound with ErrOverflow and, if validate is
// non-nil, invariant violations with ErrInvariantFailed.
func (s XString[B]) Marshal(w io.Writer, validate Validator) error {
	bound := boundOf[B]()
	if uint32(len(s.Value)) > bound {
		return NewOverflowError("string", uint32(len(s.Value)), bound)
	}
	if validate != nil {
		if err := validate(s.Value); err != nil {
			return NewInvariantFailedError("string", err.Error())
		}
	}
	return PutString(w, s.Value)
}

// Unmarshal reads a length-prefixed, padded string bounded by B.N() bytes,
// applying validate (if non-nil) to the decoded value before returning it.
func (s *XString[B]) Unmarshal(r io.Reader, validate Validator) error {
	value, err := GetString(r, boundOf[B]())
	if err != nil {
		return err
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return NewInvariantFailedError("string", err.Error())
		}
	}
	s.Value = value
	return nil
}
