package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdrpp/goxdr/internal/idl"
)

const doublerIDL = `
program doubler {
	version doubler {
		unsigned int double(unsigned int) = 1;
	} = 1;
} = 0x20000001;
`

func TestGenerateProgramEmitsDispatchAndClientSurface(t *testing.T) {
	f, err := idl.Parse(doublerIDL)
	require.NoError(t, err)

	out, err := Generate(f, Options{Package: "doubler"})
	require.NoError(t, err)

	assert.Contains(t, out, "package doubler")
	assert.Contains(t, out, `"github.com/xdrpp/goxdr/pkg/rpc"`)

	assert.Contains(t, out, "const DoublerProg uint32 = 536870913")
	assert.Contains(t, out, "const DoublerVers uint32 = 1")
	assert.Contains(t, out, "const DoubleProc uint32 = 1")

	// A bare "unsigned int" argument/result gets a wrapper type, shared
	// between argument and result rather than emitted twice.
	assert.Contains(t, out, "type Uint32 struct {\n\tValue uint32\n}")
	assert.Equal(t, 1, strings.Count(out, "type Uint32 struct"))

	assert.Contains(t, out, "type DoublerServer interface {")
	assert.Contains(t, out, "Double(arg Uint32) (Uint32, error)")

	assert.Contains(t, out, "func RegisterDoubler(reg *rpc.ProgramRegistry, impl DoublerServer) {")
	assert.Contains(t, out, `reg.Register(DoublerProg, DoublerVers, DoubleProc, "double", func(body io.Reader, clientAddr string) (xdr.Marshaler, error) {`)
	assert.Contains(t, out, "res, err := impl.Double(arg)")

	assert.Contains(t, out, "func CallDouble(c *rpc.Client, arg Uint32) (Uint32, error) {")
	assert.Contains(t, out, "c.Call(DoubleProc, &arg, &res)")
}

func TestGeneratePlainFileOmitsRPCImport(t *testing.T) {
	src := `
struct greeting {
	string name<256>;
};
`
	f, err := idl.Parse(src)
	require.NoError(t, err)

	out, err := Generate(f, Options{Package: "greet"})
	require.NoError(t, err)

	assert.Contains(t, out, "type Greeting struct {")
	assert.NotContains(t, out, "pkg/rpc")
}

func TestGenerateMultiArgProcedureSynthesizesArgsStruct(t *testing.T) {
	src := `
program calc {
	version calc {
		unsigned int add(unsigned int, unsigned int) = 1;
	} = 1;
} = 1;
`
	f, err := idl.Parse(src)
	require.NoError(t, err)

	out, err := Generate(f, Options{Package: "calc"})
	require.NoError(t, err)

	assert.Contains(t, out, "type AddArgs struct {")
	assert.Contains(t, out, "Arg1 uint32")
	assert.Contains(t, out, "Arg2 uint32")
	assert.Contains(t, out, "Add(arg AddArgs) (Uint32, error)")
}
