package xdr

import "io"

// PutFn encodes a single value of type T to the wire. Generated code
// supplies one per IDL-declared type; callers of the core containers pass
// the primitive Put* functions directly (PutUint32, PutString, ...).
type PutFn[T any] func(io.Writer, T) error

// GetFn decodes a single value of type T from the wire.
type GetFn[T any] func(io.Reader) (T, error)

// XArray is a fixed-length XDR array (RFC 4506 §4.12): exactly B.N()
// elements, none of them individually length-prefixed. B carries the
// element count the same way xdrpp's xdr::xarray<T, N> carries it as a
// non-type template parameter — Go has no such parameter, so it is
// carried by the phantom Bound marker instead.
type XArray[B Bound, T any] struct {
	Items []T
}

// NewXArray creates an XArray already sized to its fixed bound, with
// zero-valued elements.
func NewXArray[B Bound, T any]() XArray[B, T] {
	return XArray[B, T]{Items: make([]T, boundOf[B]())}
}

// Marshal writes exactly B.N() elements. It is an invariant violation
// (ErrInvariantFailed) for Items to have a different length, since a
// fixed array's length is part of its type, not its value.
func (a XArray[B, T]) Marshal(w io.Writer, put PutFn[T]) error {
	n := boundOf[B]()
	if uint32(len(a.Items)) != n {
		return NewInvariantFailedError("array", "fixed array length does not match declared bound")
	}
	for i := range a.Items {
		if err := put(w, a.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

// Unmarshal reads exactly B.N() elements into a.Items, replacing any
// existing contents.
func (a *XArray[B, T]) Unmarshal(r io.Reader, get GetFn[T]) error {
	n := boundOf[B]()
	items := make([]T, n)
	for i := range items {
		v, err := get(r)
		if err != nil {
			return err
		}
		items[i] = v
	}
	a.Items = items
	return nil
}

// XVector is a variable-length XDR array (RFC 4506 §4.13): a uint32
// element count followed by that many elements, with count <= B.N().
type XVector[B Bound, T any] struct {
	Items []T
}

// Marshal writes the element count followed by each element, rejecting
// Items longer than the declared bound with ErrOverflow.
func (v XVector[B, T]) Marshal(w io.Writer, put PutFn[T]) error {
	bound := boundOf[B]()
	if uint32(len(v.Items)) > bound {
		return NewOverflowError("vector", uint32(len(v.Items)), bound)
	}
	if err := PutUint32(w, uint32(len(v.Items))); err != nil {
		return err
	}
	for i := range v.Items {
		if err := put(w, v.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

// Unmarshal reads the element count (rejecting counts above the declared
// bound with ErrOverflow) and then that many elements.
func (v *XVector[B, T]) Unmarshal(r io.Reader, get GetFn[T]) error {
	bound := boundOf[B]()
	count, err := GetUint32(r)
	if err != nil {
		return err
	}
	if count > bound {
		return NewOverflowError("vector", count, bound)
	}
	items := make([]T, count)
	for i := range items {
		val, err := get(r)
		if err != nil {
			return err
		}
		items[i] = val
	}
	v.Items = items
	return nil
}
