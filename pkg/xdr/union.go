package xdr

// Union carries the at-most-one-active-arm storage for an XDR
// discriminated union (RFC 4506 §4.16). D is the discriminant's Go type
// (an enum int32, a bool, ...); the active arm is stored as `any` because
// different discriminant values select different arm types within the
// same union — generated code narrows it back with Arm.
//
// This mirrors xdrpp's union.h: the discriminant and the arm are changed
// together (SetArm), so the union can never be observed with a
// discriminant that doesn't match its stored arm.
type Union[D comparable] struct {
	disc D
	arm  any
}

// NewUnion creates a union with the given initial discriminant and a nil
// arm. Generated constructors call SetArm immediately afterward to
// populate the matching arm.
func NewUnion[D comparable](disc D) Union[D] {
	return Union[D]{disc: disc}
}

// Discriminant returns the union's current discriminant.
func (u *Union[D]) Discriminant() D {
	return u.disc
}

// ComparableUnion is implemented by Union[D] (and, through embedding, by
// every generated union wrapper) so that generic reflection over a value
// tree — Compare/Equal in compare.go, Sprint in print.go — can special-case
// a union's discriminant and active arm instead of walking its fields
// directly. disc/arm are unexported so a union can never be observed with
// a discriminant that doesn't match its stored arm; without this escape
// hatch, reflection's own unexported-field skip would make every union
// compare equal and print as an empty struct.
type ComparableUnion interface {
	UnionDiscriminant() any
	UnionArm() any
}

// UnionDiscriminant returns the current discriminant boxed as any, for
// ComparableUnion.
func (u Union[D]) UnionDiscriminant() any { return u.disc }

// UnionArm returns the active arm boxed as any, for ComparableUnion.
func (u Union[D]) UnionArm() any { return u.arm }

// SetArm atomically replaces both the discriminant and the active arm.
// Generated arm-setter methods (e.g. "SetData(v []byte)") call this so a
// union's discriminant and arm are never observed out of sync.
func SetArm[D comparable, T any](u *Union[D], disc D, value T) {
	u.disc = disc
	u.arm = value
}

// Arm type-asserts the active arm to T, after checking that the union's
// discriminant is one of validDiscs (the set of case labels the IDL
// union maps to this arm, per RFC 4506 §4.16's multiple-case-labels
// allowance). Accessing an arm whose discriminant does not match the
// union's current discriminant is a programmer error (ErrWrongUnion), not
// a decode fault: the caller switched on the wrong arm.
func Arm[T any, D comparable](u *Union[D], validDiscs ...D) (T, error) {
	var zero T
	matched := false
	for _, d := range validDiscs {
		if u.disc == d {
			matched = true
			break
		}
	}
	if !matched {
		return zero, NewWrongUnionError("union", 0, 0)
	}
	v, ok := u.arm.(T)
	if !ok {
		return zero, NewWrongUnionError("union", 0, 0)
	}
	return v, nil
}
