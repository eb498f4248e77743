// Package idl implements the front end of the XDR/RPC interface
// compiler: a lexer, a recursive-descent parser, and the abstract syntax
// tree they build, covering the RFC 4506 type grammar and the RFC 5531
// program/version/procedure grammar.
package idl

// Qualifier distinguishes the four declaration shapes RFC 4506's type
// grammar allows for a struct/union member or typedef target: a plain
// scalar, a pointer (optional value), a fixed-length array, or a
// variable-length vector.
type Qualifier int

const (
	Scalar Qualifier = iota
	Ptr
	Array
	Vec
)

func (q Qualifier) String() string {
	switch q {
	case Scalar:
		return "scalar"
	case Ptr:
		return "pointer"
	case Array:
		return "array"
	case Vec:
		return "vector"
	default:
		return "unknown"
	}
}

// Decl is a single declaration: "type id" possibly qualified by "*", or
// by a "[bound]"/"<bound>" suffix. Bound is the literal text of the
// bound expression (a constant name or number, or empty for an
// unbounded vector/string) rather than a resolved integer, since bounds
// may reference a const declared earlier in the file.
type Decl struct {
	ID    string
	Type  string
	Qual  Qualifier
	Bound string
	Line  int
}

// Const is a top-level "const" declaration, or one arm of an enum's tag
// list (which reuses the same id/value shape).
type Const struct {
	ID  string
	Val string
}

// Struct is a "struct id { decl; decl; ... }" declaration.
type Struct struct {
	ID    string
	Decls []Decl
}

// Enum is an "enum id { tag = val, ... }" declaration.
type Enum struct {
	ID   string
	Tags []Const
}

// UnionCase is one "case swval: decl;" arm of a union, or the "default:
// decl;" arm when IsDefault is true and SwitchVal is empty.
type UnionCase struct {
	Tag       Decl
	SwitchVal string
	IsDefault bool
}

// Union is a "union id switch (decl) { case ...; ... }" declaration.
type Union struct {
	ID      string
	TagType string
	TagID   string
	Cases   []UnionCase
}

// Proc is one "res id (arg) = val;" procedure declaration within a
// version block.
type Proc struct {
	ID  string
	Val uint32
	Arg string
	Res string
}

// Version is a "version id { proc; ... } = val;" block within a program.
type Version struct {
	ID    string
	Val   uint32
	Procs []Proc
}

// Program is a "program id { version ... } = val;" top-level declaration.
type Program struct {
	ID   string
	Val  uint32
	Vers []Version
}

// Namespace is a "namespace id { ... }" block, used to scope a group of
// declarations the way xdrpp's rpc_namespace does.
type Namespace struct {
	ID    string
	Syms  []Symbol
}

// SymType identifies which field of Symbol is populated.
type SymType int

const (
	SymConst SymType = iota
	SymStruct
	SymUnion
	SymEnum
	SymTypedef
	SymProgram
	SymLiteral
	SymNamespace
)

// Symbol is a tagged union over every kind of top-level declaration the
// grammar accepts, mirroring xdrc_internal.h's rpc_sym. Only the field
// matching Type is meaningful; this is the Go analogue of rpc_sym's C++
// union-of-union_entry<T> storage; Go has no anonymous-union memory
// reuse, so Symbol simply carries one pointer-valued field per
// alternative and leaves the rest nil; constructs that need to know the
// live field's discriminant check Type the way the union.h-grounded
// runtime Union type does (see pkg/xdr/union.go).
type Symbol struct {
	Type      SymType
	Const     *Const
	Struct    *Struct
	Union     *Union
	Enum      *Enum
	Typedef   *Decl
	Program   *Program
	Literal   *string
	Namespace *Namespace
}

// File is the root of a parsed IDL source file: the flat top-level
// symbol list (namespaces nest further Symbols within themselves).
type File struct {
	Symbols []Symbol
}
