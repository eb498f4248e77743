package xdr

// Clear resets *v to its zero value in place, grounded on xdrpp's
// clear_archive. It replaces the old value rather than overwriting it:
// byte buffers the old value referenced keep their contents (ClearBytes
// zeroes a single buffer in place).
func Clear[T any](v *T) {
	var zero T
	*v = zero
}

// ClearBytes zeroes the contents of b in place without changing its
// length or capacity, for opaque buffers that should be scrubbed rather
// than just dropped.
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Clear resets a FixedOpaque's data to a zeroed buffer of the declared
// length rather than an empty one, since a fixed-length field's length
// is part of its type.
func (o *FixedOpaque[B]) Clear() {
	o.Data = make([]byte, boundOf[B]())
}

// Clear resets a VarOpaque to an empty buffer.
func (o *VarOpaque[B]) Clear() {
	o.Data = nil
}

// Clear resets an XString to the empty string.
func (s *XString[B]) Clear() {
	s.Value = ""
}

// Clear resets an XVector to an empty slice.
func (v *XVector[B, T]) Clear() {
	v.Items = nil
}

// Clear resets an XArray to a freshly zeroed slice of its fixed length.
func (a *XArray[B, T]) Clear() {
	a.Items = make([]T, boundOf[B]())
}

// Clear resets an Optional to the not-present state.
func (o *Optional[T]) Clear() {
	o.Value = nil
}
