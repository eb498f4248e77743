package xdr

import (
	"bytes"
	"reflect"
)

// Compare produces a total order over two XDR value trees of identical
// type, returning -1, 0, or 1 the way bytes.Compare does. This extends
// the distilled spec's equality-only requirement with ordering, grounded
// on xdrpp/compare.h's operator< (every generated type additionally gets
// operator==, which is exactly what strict-weak-ordering plus Compare==0
// already gives): structs compare lexicographically field by field, and
// unions compare by discriminant first and then by the active arm, so a
// changed discriminant always dominates a changed arm value.
func Compare(a, b any) int {
	return compareValues(reflect.ValueOf(a), reflect.ValueOf(b))
}

// Equal reports whether two XDR value trees are structurally identical.
func Equal(a, b any) bool {
	return Compare(a, b) == 0
}

func compareValues(a, b reflect.Value) int {
	if !a.IsValid() && !b.IsValid() {
		return 0
	}
	if !a.IsValid() {
		return -1
	}
	if !b.IsValid() {
		return 1
	}
	switch a.Kind() {
	case reflect.Ptr, reflect.Interface:
		aNil, bNil := a.IsNil(), b.IsNil()
		if aNil && bNil {
			return 0
		}
		if aNil {
			return -1
		}
		if bNil {
			return 1
		}
		return compareValues(a.Elem(), b.Elem())
	case reflect.Struct:
		// A union's discriminant and arm live in Union[D]'s unexported
		// fields, so the generic exported-field walk below would skip
		// both and report any two unions as equal. ComparableUnion
		// (promoted from the embedded Union[D]) lets the discriminant
		// win any tiebreak ahead of the arm, same as declaration order
		// would for an ordinary struct.
		if a.CanInterface() {
			if cu, ok := a.Interface().(ComparableUnion); ok {
				cub, ok := b.Interface().(ComparableUnion)
				if !ok {
					return 1
				}
				if c := compareValues(reflect.ValueOf(cu.UnionDiscriminant()), reflect.ValueOf(cub.UnionDiscriminant())); c != 0 {
					return c
				}
				return compareValues(reflect.ValueOf(cu.UnionArm()), reflect.ValueOf(cub.UnionArm()))
			}
		}
		for i := 0; i < a.NumField(); i++ {
			if !a.Type().Field(i).IsExported() {
				continue
			}
			if c := compareValues(a.Field(i), b.Field(i)); c != 0 {
				return c
			}
		}
		return 0
	case reflect.Slice, reflect.Array:
		if bv, ok := toByteSlice(a); ok {
			if ob, ok2 := toByteSlice(b); ok2 {
				return bytes.Compare(bv, ob)
			}
		}
		n := a.Len()
		if b.Len() < n {
			n = b.Len()
		}
		for i := 0; i < n; i++ {
			if c := compareValues(a.Index(i), b.Index(i)); c != 0 {
				return c
			}
		}
		return compareInt(a.Len(), b.Len())
	case reflect.String:
		return compareString(a.String(), b.String())
	case reflect.Bool:
		return compareBool(a.Bool(), b.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return compareInt64(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return compareUint64(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return compareFloat64(a.Float(), b.Float())
	default:
		return 0
	}
}

func toByteSlice(v reflect.Value) ([]byte, bool) {
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
		return v.Bytes(), true
	}
	return nil, false
}

func compareInt(a, b int) int { return compareInt64(int64(a), int64(b)) }

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
