package xdr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddingMath(t *testing.T) {
	cases := map[uint32]uint32{0: 0, 1: 3, 2: 2, 3: 1, 4: 0, 5: 3, 8: 0}
	for in, want := range cases {
		assert.Equal(t, want, Padding(in), "length %d", in)
	}
}

func TestPrimitiveRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PutUint32(&buf, 42))
	require.NoError(t, PutBool(&buf, true))
	require.NoError(t, PutString(&buf, "abc"))

	v, err := GetUint32(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)

	b, err := GetBool(&buf)
	require.NoError(t, err)
	assert.True(t, b)

	s, err := GetString(&buf, 1024)
	require.NoError(t, err)
	assert.Equal(t, "abc", s)
}

func TestStringEncodingPadsToFourBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PutString(&buf, "abc"))
	// 4 (length) + 3 (data) + 1 (pad) = 8
	assert.Equal(t, 8, buf.Len())
}

func TestVarOpaqueRejectsOverBound(t *testing.T) {
	o := VarOpaque[Bound4]{Data: []byte{1, 2, 3, 4, 5}}
	var buf bytes.Buffer
	err := o.Marshal(&buf)
	require.Error(t, err)
	assert.True(t, IsOverflowError(err))
}

func TestVarOpaqueRoundTrip(t *testing.T) {
	o := VarOpaque[Bound64]{Data: []byte("hello")}
	var buf bytes.Buffer
	require.NoError(t, o.Marshal(&buf))

	var decoded VarOpaque[Bound64]
	require.NoError(t, decoded.Unmarshal(&buf))
	assert.Equal(t, o.Data, decoded.Data)
}

func TestFixedOpaqueRejectsWrongLength(t *testing.T) {
	o := FixedOpaque[Bound8]{Data: []byte{1, 2, 3}}
	var buf bytes.Buffer
	err := o.Marshal(&buf)
	require.Error(t, err)
	assert.True(t, IsInvariantFailedError(err))
}

func TestXVectorBoundEnforced(t *testing.T) {
	v := XVector[Bound4, uint32]{Items: []uint32{1, 2, 3, 4, 5}}
	var buf bytes.Buffer
	err := v.Marshal(&buf, PutUint32)
	require.Error(t, err)
	assert.True(t, IsOverflowError(err))
}

func TestXVectorRoundTrip(t *testing.T) {
	v := XVector[Bound64, uint32]{Items: []uint32{1, 2, 3}}
	var buf bytes.Buffer
	require.NoError(t, v.Marshal(&buf, PutUint32))

	var decoded XVector[Bound64, uint32]
	require.NoError(t, decoded.Unmarshal(&buf, GetUint32))
	assert.Equal(t, v.Items, decoded.Items)
}

func TestXArrayRequiresExactLength(t *testing.T) {
	a := XArray[Bound4, uint32]{Items: []uint32{1, 2, 3}}
	var buf bytes.Buffer
	err := a.Marshal(&buf, PutUint32)
	require.Error(t, err)
	assert.True(t, IsInvariantFailedError(err))
}

func TestOptionalRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	v := uint32(7)
	opt := Optional[uint32]{Value: &v}
	require.NoError(t, opt.Marshal(&buf, PutUint32))

	var decoded Optional[uint32]
	require.NoError(t, decoded.Unmarshal(&buf, GetUint32))
	require.NotNil(t, decoded.Value)
	assert.Equal(t, uint32(7), *decoded.Value)
}

func TestOptionalAbsentRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	opt := Optional[uint32]{Value: nil}
	require.NoError(t, opt.Marshal(&buf, PutUint32))
	assert.Equal(t, 4, buf.Len()) // just the FALSE discriminant

	var decoded Optional[uint32]
	require.NoError(t, decoded.Unmarshal(&buf, GetUint32))
	assert.Nil(t, decoded.Value)
}

type testUnionDisc int32

const (
	discA testUnionDisc = 0
	discB testUnionDisc = 1
)

type testUnion struct {
	Union[testUnionDisc]
}

func newTestUnionA(v uint32) *testUnion {
	u := &testUnion{Union: NewUnion(discA)}
	SetArm(&u.Union, discA, v)
	return u
}

func newTestUnionB(v string) *testUnion {
	u := &testUnion{Union: NewUnion(discB)}
	SetArm(&u.Union, discB, v)
	return u
}

func TestUnionArmAccessRejectsWrongDiscriminant(t *testing.T) {
	u := newTestUnionA(5)
	_, err := Arm[string](&u.Union, discB)
	require.Error(t, err)
	assert.True(t, IsWrongUnionError(err))
}

func TestUnionArmAccessSucceeds(t *testing.T) {
	u := newTestUnionB("hi")
	v, err := Arm[string](&u.Union, discB)
	require.NoError(t, err)
	assert.Equal(t, "hi", v)
}

func TestCompareUnionsByDiscriminantThenArm(t *testing.T) {
	a := newTestUnionA(5)
	aSame := newTestUnionA(5)
	aDiffArm := newTestUnionA(9)
	b := newTestUnionB("hi")

	assert.True(t, Equal(a, aSame), "two unions with the same discriminant and arm must compare equal")
	assert.NotEqual(t, 0, Compare(a, aDiffArm), "same discriminant, different arm value must not compare equal")
	assert.NotEqual(t, 0, Compare(a, b), "different discriminant must not compare equal regardless of arm")
}

func TestSprintUnionPrintsDiscriminantAndArm(t *testing.T) {
	u := newTestUnionB("hi")
	out := Sprint(u)
	assert.Contains(t, out, "disc")
	assert.Contains(t, out, "1")
	assert.Contains(t, out, "arm")
	assert.Contains(t, out, "hi")
}

func TestCompareStructLexicographic(t *testing.T) {
	type pair struct {
		A uint32
		B string
	}
	assert.Equal(t, -1, Compare(pair{1, "z"}, pair{2, "a"}))
	assert.Equal(t, 0, Compare(pair{1, "a"}, pair{1, "a"}))
	assert.Equal(t, 1, Compare(pair{1, "b"}, pair{1, "a"}))
}

type sizedOpaque struct{ VarOpaque[Bound64] }

func (o sizedOpaque) XdrMarshal(e *Encoder) error { return o.VarOpaque.Marshal(e.Writer()) }

func TestSizeMatchesMarshaledLength(t *testing.T) {
	o := sizedOpaque{VarOpaque[Bound64]{Data: []byte("hello world")}}
	n, err := Size(o)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, o.VarOpaque.Marshal(&buf))
	assert.Equal(t, uint32(buf.Len()), n)
}

func TestGeneratorShrinks(t *testing.T) {
	g := NewGenerator(1, 8)
	child := g.Shrink()
	assert.Equal(t, 4, child.size)
	assert.False(t, g.Done())

	grandchild := child.Shrink().Shrink().Shrink()
	assert.True(t, grandchild.Done())
}
