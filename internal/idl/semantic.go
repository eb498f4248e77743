package idl

import (
	"fmt"
	"strconv"
	"strings"
)

// Errors accumulates every problem found while parsing and validating one
// file, instead of surfacing only the first — a union that shares a case
// label with another, or an identifier declared twice, shouldn't hide
// whatever else is wrong with the rest of the file.
type Errors []error

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Validate checks the semantic rules the grammar itself doesn't enforce:
// every type/const/program name is declared at most once, every program's
// version names and each version's procedure names are unique within
// their parent, and a union's non-default case labels resolve to pairwise
// distinct discriminant values (RFC 4506 §4.16 requires the case labels
// to partition the discriminant's domain, which a duplicate label always
// violates). It returns an Errors accumulating every violation found,
// or nil if the file is semantically sound.
func Validate(f *File) error {
	v := &validator{
		ids:    map[string]bool{},
		consts: collectConstValues(f.Symbols),
	}
	v.walkSymbols(f.Symbols)
	if len(v.errs) == 0 {
		return nil
	}
	return Errors(v.errs)
}

type validator struct {
	ids    map[string]bool
	consts map[string]uint32
	errs   []error
}

func (v *validator) declareGlobal(id string) {
	if id == "" {
		return
	}
	if v.ids[id] {
		v.errs = append(v.errs, fmt.Errorf("duplicate identifier %q", id))
		return
	}
	v.ids[id] = true
}

func (v *validator) walkSymbols(syms []Symbol) {
	for _, s := range syms {
		switch s.Type {
		case SymConst:
			v.declareGlobal(s.Const.ID)
		case SymStruct:
			v.declareGlobal(s.Struct.ID)
		case SymEnum:
			v.declareGlobal(s.Enum.ID)
			for _, tag := range s.Enum.Tags {
				v.declareGlobal(tag.ID)
			}
		case SymUnion:
			v.declareGlobal(s.Union.ID)
			v.checkUnionCases(s.Union)
		case SymTypedef:
			v.declareGlobal(s.Typedef.ID)
		case SymProgram:
			v.declareGlobal(s.Program.ID)
			v.checkProgram(s.Program)
		case SymNamespace:
			v.walkSymbols(s.Namespace.Syms)
		}
	}
}

func (v *validator) checkProgram(p *Program) {
	versIDs := map[string]bool{}
	for _, ver := range p.Vers {
		if versIDs[ver.ID] {
			v.errs = append(v.errs, fmt.Errorf("program %s: duplicate version identifier %q", p.ID, ver.ID))
		}
		versIDs[ver.ID] = true

		procIDs := map[string]bool{}
		for _, pr := range ver.Procs {
			if procIDs[pr.ID] {
				v.errs = append(v.errs, fmt.Errorf("version %s: duplicate procedure identifier %q", ver.ID, pr.ID))
			}
			procIDs[pr.ID] = true
		}
	}
}

// checkUnionCases verifies that no two non-default case labels resolve to
// the same discriminant value. Boolean-keyed unions are covered the same
// way as any other: the parser already rewrites TRUE/FALSE to 1/0, so
// "case TRUE:" and "case FALSE:" land here as ordinary resolved literals.
func (v *validator) checkUnionCases(u *Union) {
	seen := map[uint32]bool{}
	for _, c := range u.Cases {
		if c.IsDefault {
			continue
		}
		n, err := resolveConstLiteral(c.SwitchVal, v.consts)
		if err != nil {
			v.errs = append(v.errs, fmt.Errorf("union %s: case %s: %w", u.ID, c.SwitchVal, err))
			continue
		}
		if seen[n] {
			v.errs = append(v.errs, fmt.Errorf("union %s: case value %d is used by more than one case label", u.ID, n))
			continue
		}
		seen[n] = true
	}
}

// collectConstValues resolves every const and enum tag in the file to its
// numeric value, in declaration order, mirroring codegen's own constant
// table so semantic checks see the same values code generation will.
func collectConstValues(syms []Symbol) map[string]uint32 {
	consts := map[string]uint32{}
	var walk func([]Symbol)
	walk = func(syms []Symbol) {
		for _, s := range syms {
			switch s.Type {
			case SymConst:
				if n, err := resolveConstLiteral(s.Const.Val, consts); err == nil {
					consts[s.Const.ID] = n
				}
			case SymEnum:
				next := uint32(0)
				for _, tag := range s.Enum.Tags {
					if tag.Val != "" {
						if n, err := resolveConstLiteral(tag.Val, consts); err == nil {
							next = n
						}
					}
					consts[tag.ID] = next
					next++
				}
			case SymNamespace:
				walk(s.Namespace.Syms)
			}
		}
	}
	walk(syms)
	return consts
}

func resolveConstLiteral(lit string, consts map[string]uint32) (uint32, error) {
	if n, ok := consts[lit]; ok {
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
