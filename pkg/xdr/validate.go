package xdr

import "github.com/go-playground/validator/v10"

// structValidator is the shared go-playground/validator instance used to
// back the InvariantFailed hook for generated struct types that carry
// `validate:"..."` tags (bounded numeric ranges, required fields, enum
// membership) beyond what the core container types already enforce.
var structValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs struct-tag validation against v, translating any
// failure into an InvariantFailed CodecError so callers handle it the
// same way as a container bound violation. Per the Open Question
// decision recorded in DESIGN.md, generated Marshal and Unmarshal methods
// both call ValidateStruct, so the invariant holds symmetrically rather
// than only guarding values this process produced itself.
func ValidateStruct(v any) error {
	if err := structValidator.Struct(v); err != nil {
		return NewInvariantFailedError("struct", err.Error())
	}
	return nil
}
