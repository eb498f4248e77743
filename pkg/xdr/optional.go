package xdr

import "io"

// Optional is an XDR "pointer" (RFC 4506 §4.19): a discriminating boolean
// followed by the pointee if true. It models xdrpp's xdr::pointer<T>,
// which is how the IDL's "T *" optional-value declarations are
// represented — never a real pointer into attacker-controlled memory,
// just a presence flag plus an inline value.
type Optional[T any] struct {
	Value *T
}

// Marshal writes FALSE and nothing else when Value is nil, or TRUE
// followed by the pointee otherwise.
func (o Optional[T]) Marshal(w io.Writer, put PutFn[T]) error {
	if o.Value == nil {
		return PutBool(w, false)
	}
	if err := PutBool(w, true); err != nil {
		return err
	}
	return put(w, *o.Value)
}

// Unmarshal reads the presence boolean and, if true, the pointee.
func (o *Optional[T]) Unmarshal(r io.Reader, get GetFn[T]) error {
	present, err := GetBool(r)
	if err != nil {
		return err
	}
	if !present {
		o.Value = nil
		return nil
	}
	v, err := get(r)
	if err != nil {
		return err
	}
	o.Value = &v
	return nil
}
