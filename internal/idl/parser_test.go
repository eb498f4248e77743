package idl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIDL = `
const MAXNAME = 256;

struct greeting {
	string name<MAXNAME>;
	unsigned int count;
};

enum color {
	RED = 0,
	GREEN = 1,
	BLUE = 2
};

union result switch (unsigned int status) {
case 0:
	greeting ok;
default:
	void;
};

program GREETER_PROG {
	version GREETER_VERS {
		result SAY_HELLO(greeting) = 1;
	} = 1;
} = 0x20000001;
`

func TestParseSampleFile(t *testing.T) {
	f, err := Parse(sampleIDL)
	require.NoError(t, err)
	require.Len(t, f.Symbols, 5)

	assert.Equal(t, SymConst, f.Symbols[0].Type)
	assert.Equal(t, "MAXNAME", f.Symbols[0].Const.ID)
	assert.Equal(t, "256", f.Symbols[0].Const.Val)

	st := f.Symbols[1].Struct
	require.NotNil(t, st)
	assert.Equal(t, "greeting", st.ID)
	require.Len(t, st.Decls, 2)
	assert.Equal(t, Vec, st.Decls[0].Qual)
	assert.Equal(t, "MAXNAME", st.Decls[0].Bound)
	assert.Equal(t, "string", st.Decls[0].Type)
	assert.Equal(t, "unsigned int", st.Decls[1].Type)

	en := f.Symbols[2].Enum
	require.NotNil(t, en)
	require.Len(t, en.Tags, 3)
	assert.Equal(t, "BLUE", en.Tags[2].ID)
	assert.Equal(t, "2", en.Tags[2].Val)

	un := f.Symbols[3].Union
	require.NotNil(t, un)
	assert.Equal(t, "unsigned int", un.TagType)
	require.Len(t, un.Cases, 2)
	assert.Equal(t, "0", un.Cases[0].SwitchVal)
	assert.True(t, un.Cases[1].IsDefault)

	prog := f.Symbols[4].Program
	require.NotNil(t, prog)
	assert.Equal(t, uint32(0x20000001), prog.Val)
	require.Len(t, prog.Vers, 1)
	assert.Equal(t, uint32(1), prog.Vers[0].Val)
	require.Len(t, prog.Vers[0].Procs, 1)
	assert.Equal(t, uint32(1), prog.Vers[0].Procs[0].Val)
	assert.Equal(t, "result", prog.Vers[0].Procs[0].Res)
	assert.Equal(t, "greeting", prog.Vers[0].Procs[0].Arg)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("struct { }")
	require.Error(t, err)
}

func TestParseFixedArrayAndPointer(t *testing.T) {
	src := `
struct withfixed {
	opaque digest[16];
	int *maybe;
};
`
	f, err := Parse(src)
	require.NoError(t, err)
	st := f.Symbols[0].Struct
	assert.Equal(t, Array, st.Decls[0].Qual)
	assert.Equal(t, "16", st.Decls[0].Bound)
	assert.Equal(t, Ptr, st.Decls[1].Qual)
}

func TestParseRejectsDuplicateIdentifier(t *testing.T) {
	src := `
struct widget {
	int n;
};

struct widget {
	int m;
};
`
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate identifier "widget"`)
}

func TestParseRejectsDuplicateProcInVersion(t *testing.T) {
	src := `
program P {
	version V {
		void PING(void) = 1;
		void PING(void) = 2;
	} = 1;
} = 1;
`
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate procedure identifier "PING"`)
}

func TestParseRejectsOverlappingUnionCaseLabels(t *testing.T) {
	src := `
union result switch (unsigned int status) {
case 0:
	int ok;
case 0:
	int also_ok;
default:
	void;
};
`
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case value 0 is used by more than one case label")
}

// TestParseBoolKeyedUnionResolvesCaseLabels exercises RFC 4506 §4.4: bool
// is an enum with TRUE=1 and FALSE=0, so "case TRUE:"/"case FALSE:" must
// resolve to those numbers rather than surviving as bare identifiers that
// generated code could never reference.
func TestParseBoolKeyedUnionResolvesCaseLabels(t *testing.T) {
	src := `
union flagged switch (bool present) {
case TRUE:
	int value;
case FALSE:
	void;
};
`
	f, err := Parse(src)
	require.NoError(t, err)
	un := f.Symbols[0].Union
	require.Len(t, un.Cases, 2)
	assert.Equal(t, "1", un.Cases[0].SwitchVal)
	assert.Equal(t, "0", un.Cases[1].SwitchVal)
}

func TestParseAccumulatesMultipleTopLevelErrors(t *testing.T) {
	src := `
struct { int n; };

enum { A, B };
`
	_, err := Parse(src)
	require.Error(t, err)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.GreaterOrEqual(t, len(errs), 2, "expected both malformed declarations to be reported, not just the first")
}
