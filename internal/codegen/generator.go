// Package codegen translates a parsed IDL file (internal/idl) into Go
// source: one struct/enum/union type per IDL declaration, each carrying
// the trait metadata — in the form of XdrMarshal/XdrUnmarshal methods
// built from pkg/xdr's core containers — that the archive framework
// dispatches through, so no hand-written per-type codec is needed.
package codegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/xdrpp/goxdr/internal/idl"
)

// Options controls one code generation run, corresponding to the
// compiler CLI's -D/-p/-a flags.
type Options struct {
	Package      string            // output package name
	Defines      map[string]string // -D VAR=VALUE preprocessor-style constants folded into the const table
	PointerConst bool              // -p: emit Optional-based accessors for "*" declarators (always true in this implementation; kept for CLI-surface fidelity)
	Async        bool              // -a: accepted for CLI-surface fidelity; Generate does not read it and emits no async server stub
}

// Generate renders f as Go source in a single pass: a const block, one
// type (plus Marshal/Unmarshal methods) per struct/enum/union/typedef,
// and an RPC dispatch table per program/version.
func Generate(f *idl.File, opts Options) (string, error) {
	g := &generator{
		opts:    opts,
		consts:  map[string]uint32{},
		bounds:  map[string]string{},
		exports: map[string]bool{},
	}
	for k, v := range opts.Defines {
		n, err := strconv.ParseUint(v, 0, 32)
		if err == nil {
			g.consts[k] = uint32(n)
		}
	}
	if err := g.collectConsts(f.Symbols); err != nil {
		return "", err
	}

	var body strings.Builder
	if err := g.emitSymbols(&body, f.Symbols); err != nil {
		return "", err
	}

	tmpl := headerTmpl
	if hasProgram(f.Symbols) {
		tmpl = headerTmplRPC
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, struct{ Package string }{opts.Package}); err != nil {
		return "", err
	}
	out.WriteString(g.boundDecls())
	out.WriteString(body.String())
	return out.String(), nil
}

// hasProgram reports whether f declares any RPC program, at any namespace
// depth — the generated dispatch/client surface (emitProgram) needs
// pkg/rpc, which plain type/const files don't.
func hasProgram(syms []idl.Symbol) bool {
	for _, s := range syms {
		switch s.Type {
		case idl.SymProgram:
			return true
		case idl.SymNamespace:
			if hasProgram(s.Namespace.Syms) {
				return true
			}
		}
	}
	return false
}

var headerTmpl = template.Must(template.New("header").Parse(
	`// Code generated by xdrc. DO NOT EDIT.

package {{.Package}}

import (
	"io"

	"github.com/xdrpp/goxdr/pkg/xdr"
)

`))

var headerTmplRPC = template.Must(template.New("headerRPC").Parse(
	`// Code generated by xdrc. DO NOT EDIT.

package {{.Package}}

import (
	"io"

	"github.com/xdrpp/goxdr/pkg/rpc"
	"github.com/xdrpp/goxdr/pkg/xdr"
)

`))

type generator struct {
	opts    Options
	consts  map[string]uint32
	bounds  map[string]string // bound literal/const name -> Go marker type name
	order   []string          // insertion order for bounds, so output is deterministic
	exports map[string]bool
	prims   map[string]bool // primitive wrapper type names already emitted
}

func (g *generator) collectConsts(syms []idl.Symbol) error {
	for _, s := range syms {
		switch s.Type {
		case idl.SymConst:
			n, err := g.resolveUint(s.Const.Val)
			if err != nil {
				return fmt.Errorf("const %s: %w", s.Const.ID, err)
			}
			g.consts[s.Const.ID] = n
		case idl.SymEnum:
			next := uint32(0)
			for _, tag := range s.Enum.Tags {
				if tag.Val != "" {
					n, err := g.resolveUint(tag.Val)
					if err != nil {
						return fmt.Errorf("enum tag %s: %w", tag.ID, err)
					}
					next = n
				}
				g.consts[tag.ID] = next
				next++
			}
		case idl.SymNamespace:
			if err := g.collectConsts(s.Namespace.Syms); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *generator) resolveUint(lit string) (uint32, error) {
	if n, ok := g.consts[lit]; ok {
		return n, nil
	}
	base := 10
	s := lit
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	n, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("undefined constant or bad literal %q", lit)
	}
	return uint32(n), nil
}

// boundMarker returns the Go marker type name for a bound literal
// (numeric or a const reference), generating and recording a new marker
// type the first time a given bound is seen. An empty literal denotes an
// unbounded vector/string.
func (g *generator) boundMarker(lit string) (string, error) {
	if lit == "" {
		return "xdr.Unbounded", nil
	}
	if name, ok := g.bounds[lit]; ok {
		return name, nil
	}
	n, err := g.resolveUint(lit)
	if err != nil {
		return "", err
	}
	switch n {
	case 4:
		return "xdr.Bound4", nil
	case 8:
		return "xdr.Bound8", nil
	case 16:
		return "xdr.Bound16", nil
	case 32:
		return "xdr.Bound32", nil
	case 64:
		return "xdr.Bound64", nil
	case 128:
		return "xdr.Bound128", nil
	case 256:
		return "xdr.Bound256", nil
	case 1024:
		return "xdr.Bound1024", nil
	}
	name := fmt.Sprintf("Bound_%s", sanitizeIdent(lit))
	g.bounds[lit] = name
	g.order = append(g.order, lit)
	return name, nil
}

func (g *generator) boundDecls() string {
	if len(g.order) == 0 {
		return ""
	}
	var b strings.Builder
	for _, lit := range g.order {
		name := g.bounds[lit]
		n := g.consts[lit]
		if n == 0 {
			n, _ = g.resolveUint(lit)
		}
		fmt.Fprintf(&b, "type %s struct{}\n\nfunc (%s) N() uint32 { return %d }\n\n", name, name, n)
	}
	return b.String()
}

func sanitizeIdent(s string) string {
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "-", "neg")
	return s
}

func (g *generator) emitSymbols(b *strings.Builder, syms []idl.Symbol) error {
	for _, s := range syms {
		switch s.Type {
		case idl.SymConst:
			fmt.Fprintf(b, "const %s = %d\n\n", exportName(s.Const.ID), g.consts[s.Const.ID])
		case idl.SymEnum:
			if err := g.emitEnum(b, s.Enum); err != nil {
				return err
			}
		case idl.SymStruct:
			if err := g.emitStruct(b, s.Struct); err != nil {
				return err
			}
		case idl.SymUnion:
			if err := g.emitUnion(b, s.Union); err != nil {
				return err
			}
		case idl.SymTypedef:
			if err := g.emitTypedef(b, s.Typedef); err != nil {
				return err
			}
		case idl.SymProgram:
			if err := g.emitProgram(b, s.Program); err != nil {
				return err
			}
		case idl.SymNamespace:
			if err := g.emitSymbols(b, s.Namespace.Syms); err != nil {
				return err
			}
		case idl.SymLiteral:
			b.WriteString(strings.TrimPrefix(*s.Literal, "%"))
			b.WriteByte('\n')
		}
	}
	return nil
}

func exportName(id string) string {
	if id == "" {
		return id
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

func (g *generator) emitEnum(b *strings.Builder, e *idl.Enum) error {
	name := exportName(e.ID)
	fmt.Fprintf(b, "type %s int32\n\nconst (\n", name)
	for _, tag := range e.Tags {
		fmt.Fprintf(b, "\t%s %s = %d\n", exportName(tag.ID), name, g.consts[tag.ID])
	}
	b.WriteString(")\n\n")
	fmt.Fprintf(b, "func (v %s) XdrMarshal(e *xdr.Encoder) error { return e.Int32(int32(v)) }\n\n", name)
	fmt.Fprintf(b, "func (v *%s) XdrUnmarshal(d *xdr.Decoder) error {\n\tn, err := d.Int32()\n\tif err != nil {\n\t\treturn err\n\t}\n\t*v = %s(n)\n\treturn nil\n}\n\n", name, name)
	return nil
}

// goFieldType returns the Go type for an IDL declaration's field, along
// with the put/get expressions needed to marshal/unmarshal it — numeric
// base types map directly to pkg/xdr's primitive Put/Get functions,
// while named types dispatch through their own XdrMarshal/XdrUnmarshal.
func (g *generator) goFieldType(d idl.Decl) (goType string, putExpr string, getExpr string, err error) {
	base, put, get, isComposite := baseType(d.Type)
	switch d.Qual {
	case idl.Scalar:
		if isComposite {
			return exportName(d.Type), "", "", nil
		}
		return base, "", "", nil
	case idl.Ptr:
		var elemType string
		if isComposite {
			elemType = exportName(d.Type)
		} else {
			elemType = base
		}
		return fmt.Sprintf("xdr.Optional[%s]", elemType), put, get, nil
	case idl.Array:
		bound, err := g.boundMarker(d.Bound)
		if err != nil {
			return "", "", "", err
		}
		if d.Type == "opaque" {
			return fmt.Sprintf("xdr.FixedOpaque[%s]", bound), "", "", nil
		}
		elemType := base
		if isComposite {
			elemType = exportName(d.Type)
		}
		return fmt.Sprintf("xdr.XArray[%s, %s]", bound, elemType), put, get, nil
	case idl.Vec:
		bound, err := g.boundMarker(d.Bound)
		if err != nil {
			return "", "", "", err
		}
		switch d.Type {
		case "opaque":
			return fmt.Sprintf("xdr.VarOpaque[%s]", bound), "", "", nil
		case "string":
			return fmt.Sprintf("xdr.XString[%s]", bound), "", "", nil
		}
		elemType := base
		if isComposite {
			elemType = exportName(d.Type)
		}
		return fmt.Sprintf("xdr.XVector[%s, %s]", bound, elemType), put, get, nil
	}
	return "", "", "", fmt.Errorf("unhandled qualifier for field %s", d.ID)
}

// baseType maps an IDL base type name to its Go equivalent and, for
// numeric primitives, the pkg/xdr Put/Get function pair used as a
// container's element codec. isComposite is true for struct/enum/union/
// typedef names, which carry their own XdrMarshal/XdrUnmarshal methods
// instead.
func baseType(t string) (goType, put, get string, isComposite bool) {
	switch t {
	case "int":
		return "int32", "xdr.PutInt32", "xdr.GetInt32", false
	case "unsigned int", "unsigned":
		return "uint32", "xdr.PutUint32", "xdr.GetUint32", false
	case "hyper":
		return "int64", "xdr.PutInt64", "xdr.GetInt64", false
	case "unsigned hyper":
		return "uint64", "xdr.PutUint64", "xdr.GetUint64", false
	case "float":
		return "float32", "xdr.PutFloat32", "xdr.GetFloat32", false
	case "double":
		return "float64", "xdr.PutFloat64", "xdr.GetFloat64", false
	case "bool":
		return "bool", "xdr.PutBool", "xdr.GetBool", false
	case "opaque", "string", "void":
		return t, "", "", false
	default:
		return exportName(t), "", "", true
	}
}

func (g *generator) emitStruct(b *strings.Builder, s *idl.Struct) error {
	name := exportName(s.ID)
	fmt.Fprintf(b, "type %s struct {\n", name)
	type field struct {
		goName, goType string
		decl           idl.Decl
	}
	var fields []field
	for _, d := range s.Decls {
		goType, _, _, err := g.goFieldType(d)
		if err != nil {
			return fmt.Errorf("struct %s field %s: %w", s.ID, d.ID, err)
		}
		fields = append(fields, field{exportName(d.ID), goType, d})
		fmt.Fprintf(b, "\t%s %s\n", exportName(d.ID), goType)
	}
	b.WriteString("}\n\n")

	fmt.Fprintf(b, "func (v *%s) XdrMarshal(e *xdr.Encoder) error {\n", name)
	for _, f := range fields {
		if err := g.emitFieldMarshal(b, "v."+f.goName, f.decl); err != nil {
			return err
		}
	}
	b.WriteString("\tif err := xdr.ValidateStruct(v); err != nil {\n\t\treturn err\n\t}\n")
	b.WriteString("\treturn nil\n}\n\n")

	fmt.Fprintf(b, "func (v *%s) XdrUnmarshal(d *xdr.Decoder) error {\n", name)
	for _, f := range fields {
		if err := g.emitFieldUnmarshal(b, "v."+f.goName, f.decl); err != nil {
			return err
		}
	}
	b.WriteString("\tif err := xdr.ValidateStruct(v); err != nil {\n\t\treturn err\n\t}\n")
	b.WriteString("\treturn nil\n}\n\n")
	return nil
}

func (g *generator) emitFieldMarshal(b *strings.Builder, lvalue string, d idl.Decl) error {
	base, put, get, isComposite := baseType(d.Type)
	_ = get
	switch d.Qual {
	case idl.Scalar:
		if isComposite {
			fmt.Fprintf(b, "\tif err := e.Value(%q, &%s); err != nil {\n\t\treturn err\n\t}\n", d.ID, lvalue)
		} else {
			fmt.Fprintf(b, "\tif err := %s(e.Writer(), %s); err != nil {\n\t\treturn err\n\t}\n", primPutOnEncoder(base), lvalue)
		}
	case idl.Ptr:
		putFn := put
		if isComposite {
			putFn = fmt.Sprintf("func(w io.Writer, x %s) error { return x.XdrMarshal(xdr.NewEncoder(w)) }", exportName(d.Type))
		}
		fmt.Fprintf(b, "\tif err := %s.Marshal(e.Writer(), %s); err != nil {\n\t\treturn err\n\t}\n", lvalue, putFn)
	case idl.Array:
		if d.Type == "opaque" {
			fmt.Fprintf(b, "\tif err := %s.Marshal(e.Writer()); err != nil {\n\t\treturn err\n\t}\n", lvalue)
		} else {
			putFn := put
			if isComposite {
				putFn = fmt.Sprintf("func(w io.Writer, x %s) error { return x.XdrMarshal(xdr.NewEncoder(w)) }", exportName(d.Type))
			}
			fmt.Fprintf(b, "\tif err := %s.Marshal(e.Writer(), %s); err != nil {\n\t\treturn err\n\t}\n", lvalue, putFn)
		}
	case idl.Vec:
		switch d.Type {
		case "opaque", "string":
			if d.Type == "string" {
				fmt.Fprintf(b, "\tif err := %s.Marshal(e.Writer(), nil); err != nil {\n\t\treturn err\n\t}\n", lvalue)
			} else {
				fmt.Fprintf(b, "\tif err := %s.Marshal(e.Writer()); err != nil {\n\t\treturn err\n\t}\n", lvalue)
			}
		default:
			putFn := put
			if isComposite {
				putFn = fmt.Sprintf("func(w io.Writer, x %s) error { return x.XdrMarshal(xdr.NewEncoder(w)) }", exportName(d.Type))
			}
			fmt.Fprintf(b, "\tif err := %s.Marshal(e.Writer(), %s); err != nil {\n\t\treturn err\n\t}\n", lvalue, putFn)
		}
	}
	return nil
}

func (g *generator) emitFieldUnmarshal(b *strings.Builder, lvalue string, d idl.Decl) error {
	base, put, get, isComposite := baseType(d.Type)
	_ = put
	switch d.Qual {
	case idl.Scalar:
		if isComposite {
			fmt.Fprintf(b, "\tif err := d.Value(%q, &%s); err != nil {\n\t\treturn err\n\t}\n", d.ID, lvalue)
		} else {
			fmt.Fprintf(b, "\t{\n\t\tv, err := %s(d.Reader())\n\t\tif err != nil {\n\t\t\treturn err\n\t\t}\n\t\t%s = v\n\t}\n", primGetOnDecoder(base), lvalue)
		}
	case idl.Ptr:
		getFn := get
		if isComposite {
			typeName := exportName(d.Type)
			getFn = fmt.Sprintf("func(r io.Reader) (%s, error) { var x %s; err := x.XdrUnmarshal(xdr.NewDecoder(r)); return x, err }", typeName, typeName)
		}
		fmt.Fprintf(b, "\tif err := %s.Unmarshal(d.Reader(), %s); err != nil {\n\t\treturn err\n\t}\n", lvalue, getFn)
	case idl.Array:
		if d.Type == "opaque" {
			fmt.Fprintf(b, "\tif err := %s.Unmarshal(d.Reader()); err != nil {\n\t\treturn err\n\t}\n", lvalue)
		} else {
			getFn := get
			if isComposite {
				typeName := exportName(d.Type)
				getFn = fmt.Sprintf("func(r io.Reader) (%s, error) { var x %s; err := x.XdrUnmarshal(xdr.NewDecoder(r)); return x, err }", typeName, typeName)
			}
			fmt.Fprintf(b, "\tif err := %s.Unmarshal(d.Reader(), %s); err != nil {\n\t\treturn err\n\t}\n", lvalue, getFn)
		}
	case idl.Vec:
		switch d.Type {
		case "opaque", "string":
			if d.Type == "string" {
				fmt.Fprintf(b, "\tif err := %s.Unmarshal(d.Reader(), nil); err != nil {\n\t\treturn err\n\t}\n", lvalue)
			} else {
				fmt.Fprintf(b, "\tif err := %s.Unmarshal(d.Reader()); err != nil {\n\t\treturn err\n\t}\n", lvalue)
			}
		default:
			getFn := get
			if isComposite {
				typeName := exportName(d.Type)
				getFn = fmt.Sprintf("func(r io.Reader) (%s, error) { var x %s; err := x.XdrUnmarshal(xdr.NewDecoder(r)); return x, err }", typeName, typeName)
			}
			fmt.Fprintf(b, "\tif err := %s.Unmarshal(d.Reader(), %s); err != nil {\n\t\treturn err\n\t}\n", lvalue, getFn)
		}
	}
	return nil
}

func primPutOnEncoder(base string) string {
	switch base {
	case "int32":
		return "xdr.PutInt32"
	case "uint32":
		return "xdr.PutUint32"
	case "int64":
		return "xdr.PutInt64"
	case "uint64":
		return "xdr.PutUint64"
	case "float32":
		return "xdr.PutFloat32"
	case "float64":
		return "xdr.PutFloat64"
	case "bool":
		return "xdr.PutBool"
	default:
		return "xdr.PutUint32"
	}
}

func primGetOnDecoder(base string) string {
	switch base {
	case "int32":
		return "xdr.GetInt32"
	case "uint32":
		return "xdr.GetUint32"
	case "int64":
		return "xdr.GetInt64"
	case "uint64":
		return "xdr.GetUint64"
	case "float32":
		return "xdr.GetFloat32"
	case "float64":
		return "xdr.GetFloat64"
	case "bool":
		return "xdr.GetBool"
	default:
		return "xdr.GetUint32"
	}
}

func (g *generator) emitUnion(b *strings.Builder, u *idl.Union) error {
	name := exportName(u.ID)
	discBase, _, _, discComposite := baseType(u.TagType)
	discType := discBase
	if discComposite {
		discType = exportName(u.TagType)
	}

	fmt.Fprintf(b, "type %s struct {\n\txdr.Union[%s]\n}\n\n", name, discType)
	fmt.Fprintf(b, "func New%s(disc %s) *%s {\n\treturn &%s{Union: xdr.NewUnion(disc)}\n}\n\n", name, discType, name, name)

	for _, c := range u.Cases {
		if c.Tag.Type == "void" {
			continue
		}
		goType, _, _, err := g.goFieldType(c.Tag)
		if err != nil {
			return fmt.Errorf("union %s case %s: %w", u.ID, c.Tag.ID, err)
		}
		discs := g.caseDiscs(u, c)
		fmt.Fprintf(b, "func (v *%s) %s() (%s, error) {\n\treturn xdr.Arm[%s](&v.Union, %s)\n}\n\n",
			name, exportName(c.Tag.ID), goType, goType, strings.Join(discs, ", "))
		fmt.Fprintf(b, "func (v *%s) Set%s(x %s) {\n\txdr.SetArm(&v.Union, %s, x)\n}\n\n",
			name, exportName(c.Tag.ID), goType, discValueFor(u, c))
	}

	if err := g.emitUnionCodec(b, u, name, discType, discBase, discComposite); err != nil {
		return err
	}
	return nil
}

// caseDiscs returns the Go expressions for every discriminant value that
// selects this arm's case (RFC 4506 §4.16 allows several case labels to
// share one arm); discValueFor returns a single case's own label, used as
// SetArm's discriminant argument for that case.
func (g *generator) caseDiscs(u *idl.Union, target idl.UnionCase) []string {
	var out []string
	for _, c := range u.Cases {
		if c.Tag.ID == target.Tag.ID && !c.IsDefault {
			out = append(out, discValueFor(u, c))
		}
	}
	return out
}

func discValueFor(u *idl.Union, c idl.UnionCase) string {
	return c.SwitchVal
}

func (g *generator) emitUnionCodec(b *strings.Builder, u *idl.Union, name, discType, discBase string, discComposite bool) error {
	fmt.Fprintf(b, "func (v *%s) XdrMarshal(e *xdr.Encoder) error {\n", name)
	if discComposite {
		b.WriteString("\tif err := e.Value(\"disc\", v.Discriminant()); err != nil {\n\t\treturn err\n\t}\n")
	} else {
		fmt.Fprintf(b, "\tif err := %s(e.Writer(), %s(v.Discriminant())); err != nil {\n\t\treturn err\n\t}\n", primPutOnEncoder(discBase), discBase)
	}
	b.WriteString("\tswitch v.Discriminant() {\n")
	hasDefault := false
	for _, c := range u.Cases {
		if c.IsDefault {
			hasDefault = true
			b.WriteString("\tdefault:\n")
		} else {
			fmt.Fprintf(b, "\tcase %s:\n", c.SwitchVal)
		}
		if c.Tag.Type == "void" {
			b.WriteString("\t\treturn nil\n")
			continue
		}
		goType, _, _, err := g.goFieldType(c.Tag)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\t\tarm, err := xdr.Arm[%s](&v.Union, %s)\n\t\tif err != nil {\n\t\t\treturn err\n\t\t}\n", goType, discValueFor(u, c))
		if marshalMethodArm(goType) {
			b.WriteString("\t\treturn arm.XdrMarshal(e)\n")
		} else {
			fmt.Fprintf(b, "\t\t_ = arm\n\t\treturn nil\n")
		}
	}
	if !hasDefault {
		b.WriteString("\tdefault:\n\t\treturn xdr.NewBadDiscriminantError(\"" + u.ID + "\", int32(v.Discriminant()))\n")
	}
	b.WriteString("\t}\n}\n\n")

	fmt.Fprintf(b, "func (v *%s) XdrUnmarshal(d *xdr.Decoder) error {\n", name)
	if discComposite {
		fmt.Fprintf(b, "\tvar disc %s\n\tif err := d.Value(\"disc\", &disc); err != nil {\n\t\treturn err\n\t}\n", discType)
	} else {
		fmt.Fprintf(b, "\traw, err := %s(d.Reader())\n\tif err != nil {\n\t\treturn err\n\t}\n\tdisc := %s(raw)\n", primGetOnDecoder(discBase), discType)
	}
	b.WriteString("\tswitch disc {\n")
	hasDefault = false
	for _, c := range u.Cases {
		if c.IsDefault {
			hasDefault = true
			b.WriteString("\tdefault:\n")
		} else {
			fmt.Fprintf(b, "\tcase %s:\n", c.SwitchVal)
		}
		if c.Tag.Type == "void" {
			fmt.Fprintf(b, "\t\txdr.SetArm(&v.Union, disc, struct{}{})\n\t\treturn nil\n")
			continue
		}
		goType, _, _, err := g.goFieldType(c.Tag)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\t\tvar arm %s\n", goType)
		if marshalMethodArm(goType) {
			b.WriteString("\t\tif err := arm.XdrUnmarshal(d); err != nil {\n\t\t\treturn err\n\t\t}\n")
		}
		fmt.Fprintf(b, "\t\txdr.SetArm(&v.Union, disc, arm)\n\t\treturn nil\n")
	}
	if !hasDefault {
		b.WriteString("\tdefault:\n\t\treturn xdr.NewBadDiscriminantError(\"" + u.ID + "\", int32(disc))\n")
	}
	b.WriteString("\t}\n}\n\n")
	return nil
}

// marshalMethodArm reports whether the given field Go type is expected to
// expose its own XdrMarshal/XdrUnmarshal method pair: it returns true for
// any type not from pkg/xdr (generated structs, enums, unions) and false
// for the pkg/xdr core containers, which need their element put/get
// functions instead.
func marshalMethodArm(goType string) bool {
	return !strings.HasPrefix(goType, "xdr.")
}

func (g *generator) emitTypedef(b *strings.Builder, d *idl.Decl) error {
	goType, _, _, err := g.goFieldType(*d)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "type %s = %s\n\n", exportName(d.ID), goType)
	return nil
}

// procSurface is one procedure's generated argument/result types, used to
// build its version's server interface, registration helper, and client
// stub after every procedure in the version has its types emitted.
type procSurface struct {
	proc             idl.Proc
	argType, resType string
}

// emitProgram renders a program/version/procedure declaration as: the
// numeric Prog/Vers/Proc consts xdrpp's rpc_prot.h convention expects,
// one argument/result Go type per procedure (a wrapper struct for a bare
// primitive type, the type itself when already composite, xdr.Void for
// "void"), and — per version — a server interface, a Register helper
// wiring an implementation into a rpc.ProgramRegistry, and a Call stub
// per procedure for clients. This is the dispatch/client surface
// RFC 5531's program/version/procedure numbers exist to select.
func (g *generator) emitProgram(b *strings.Builder, prog *idl.Program) error {
	progName := exportName(prog.ID)
	fmt.Fprintf(b, "const %sProg uint32 = %d\n\n", progName, prog.Val)
	for _, v := range prog.Vers {
		versName := exportName(v.ID)
		fmt.Fprintf(b, "const %sVers uint32 = %d\n\n", versName, v.Val)

		var procs []procSurface
		for _, pr := range v.Procs {
			fmt.Fprintf(b, "const %sProc uint32 = %d\n\n", exportName(pr.ID), pr.Val)

			argType, err := g.procArgType(b, pr)
			if err != nil {
				return fmt.Errorf("program %s proc %s: %w", prog.ID, pr.ID, err)
			}
			resType, err := g.procResType(b, pr)
			if err != nil {
				return fmt.Errorf("program %s proc %s: %w", prog.ID, pr.ID, err)
			}
			procs = append(procs, procSurface{pr, argType, resType})
		}
		sort.Slice(procs, func(i, j int) bool { return procs[i].proc.Val < procs[j].proc.Val })

		g.emitVersionServer(b, progName, versName, procs)
	}
	return nil
}

// splitArgs turns a Proc.Arg comma-joined type-name list back into its
// components; an empty Arg means the procedure takes no argument.
func splitArgs(arg string) []string {
	if arg == "" {
		return nil
	}
	return strings.Split(arg, ",")
}

// procArgType returns the Go type name to use as a procedure's argument,
// emitting whatever wrapper/struct definition that type needs the first
// time it's seen.
func (g *generator) procArgType(b *strings.Builder, pr idl.Proc) (string, error) {
	args := splitArgs(pr.Arg)
	switch len(args) {
	case 0:
		return "xdr.Void", nil
	case 1:
		return g.namedOrWrapperType(b, args[0])
	default:
		return g.emitArgsStruct(b, pr, args)
	}
}

// procResType is procArgType's counterpart for a procedure's single
// result type ("void" included).
func (g *generator) procResType(b *strings.Builder, pr idl.Proc) (string, error) {
	if pr.Res == "void" {
		return "xdr.Void", nil
	}
	return g.namedOrWrapperType(b, pr.Res)
}

// namedOrWrapperType returns typeName itself when it already names a
// composite (struct/enum/union/typedef) type — those carry their own
// XdrMarshal/XdrUnmarshal methods — or a generated primitive wrapper type
// when it's a bare XDR primitive, which has none.
func (g *generator) namedOrWrapperType(b *strings.Builder, typeName string) (string, error) {
	base, _, _, composite := baseType(typeName)
	if composite {
		return exportName(typeName), nil
	}
	switch base {
	case "int32", "uint32", "int64", "uint64", "float32", "float64", "bool":
		return g.primWrapperType(b, base), nil
	default:
		return "", fmt.Errorf("bare procedure type %q has no declarator to carry a bound (opaque/string require a typedef)", typeName)
	}
}

// primWrapperType emits (once per Go base type, per file) a struct
// wrapping a single primitive value as a Marshaler/Unmarshaler — the
// shape a procedure's argument or result takes when the IDL type itself
// is a bare "unsigned int"/"bool"/etc. with no type of its own to carry
// the XdrMarshal/XdrUnmarshal methods RPC dispatch needs.
func (g *generator) primWrapperType(b *strings.Builder, base string) string {
	name := primWrapperName(base)
	if g.prims == nil {
		g.prims = map[string]bool{}
	}
	if g.prims[name] {
		return name
	}
	g.prims[name] = true
	fmt.Fprintf(b, "// %s wraps a bare XDR %s as a Marshaler/Unmarshaler, the shape a\n// procedure argument or result of primitive type takes when it has no\n// Marshal method of its own.\ntype %s struct {\n\tValue %s\n}\n\n", name, base, name, base)
	fmt.Fprintf(b, "func (v *%s) XdrMarshal(e *xdr.Encoder) error { return %s(e.Writer(), v.Value) }\n\n", name, primPutOnEncoder(base))
	fmt.Fprintf(b, "func (v *%s) XdrUnmarshal(d *xdr.Decoder) error {\n\tn, err := %s(d.Reader())\n\tif err != nil {\n\t\treturn err\n\t}\n\tv.Value = n\n\treturn nil\n}\n\n", name, primGetOnDecoder(base))
	return name
}

func primWrapperName(base string) string {
	switch base {
	case "uint32":
		return "Uint32"
	case "int32":
		return "Int32"
	case "uint64":
		return "Uint64"
	case "int64":
		return "Int64"
	case "float32":
		return "Float32"
	case "float64":
		return "Float64"
	case "bool":
		return "Bool"
	default:
		return exportName(base)
	}
}

// emitArgsStruct handles the rare multi-argument procedure by synthesizing
// a struct of Arg1..ArgN fields and reusing emitStruct's own field
// marshal/unmarshal logic, rather than duplicating it.
func (g *generator) emitArgsStruct(b *strings.Builder, pr idl.Proc, args []string) (string, error) {
	name := exportName(pr.ID) + "Args"
	s := &idl.Struct{ID: name}
	for i, a := range args {
		s.Decls = append(s.Decls, idl.Decl{ID: fmt.Sprintf("Arg%d", i+1), Type: a, Qual: idl.Scalar})
	}
	if err := g.emitStruct(b, s); err != nil {
		return "", err
	}
	return name, nil
}

// emitVersionServer renders one version's server interface, its
// registration helper, and a Call stub per procedure, grounded on the
// examples/doubler program's hand-rolled equivalents (NewRegistry/
// handleDouble/CallDouble) generalized to any number of procedures.
func (g *generator) emitVersionServer(b *strings.Builder, progName, versName string, procs []procSurface) {
	serverType := versName + "Server"
	fmt.Fprintf(b, "// %s is implemented by any handler serving %s version %s.\ntype %s interface {\n", serverType, progName, versName, serverType)
	for _, p := range procs {
		fmt.Fprintf(b, "\t%s(arg %s) (%s, error)\n", exportName(p.proc.ID), p.argType, p.resType)
	}
	b.WriteString("}\n\n")

	fmt.Fprintf(b, "// Register%s wires impl's procedures into reg under %sProg version\n// %sVers.\nfunc Register%s(reg *rpc.ProgramRegistry, impl %s) {\n", versName, progName, versName, versName, serverType)
	for _, p := range procs {
		procName := exportName(p.proc.ID)
		fmt.Fprintf(b, "\treg.Register(%sProg, %sVers, %sProc, %q, func(body io.Reader, clientAddr string) (xdr.Marshaler, error) {\n", progName, versName, procName, p.proc.ID)
		fmt.Fprintf(b, "\t\tvar arg %s\n\t\tif err := xdr.Unmarshal(body, &arg); err != nil {\n\t\t\treturn nil, err\n\t\t}\n", p.argType)
		fmt.Fprintf(b, "\t\tres, err := impl.%s(arg)\n\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}\n\t\treturn &res, nil\n\t})\n", procName)
	}
	b.WriteString("}\n\n")

	for _, p := range procs {
		procName := exportName(p.proc.ID)
		fmt.Fprintf(b, "// Call%s invokes %s through an already-dialed client.\nfunc Call%s(c *rpc.Client, arg %s) (%s, error) {\n", procName, p.proc.ID, procName, p.argType, p.resType)
		fmt.Fprintf(b, "\tvar res %s\n\tif err := c.Call(%sProc, &arg, &res); err != nil {\n\t\tvar zero %s\n\t\treturn zero, err\n\t}\n\treturn res, nil\n}\n\n", p.resType, procName, p.resType)
	}
}
