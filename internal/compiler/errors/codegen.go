package errors

import (
	"fmt"
	"strings"

	"github.com/easyprops/easyprops/internal/compiler/ast"
)

// Code generation error codes (GEN600-699)
const (
	// ErrInvalidFieldNaming indicates an annotated field without the `_` prefix
	ErrInvalidFieldNaming ErrorCode = "GEN601"
	// ErrAmbiguousAnnotation indicates a field carrying more than one marker
	ErrAmbiguousAnnotation ErrorCode = "GEN602"
	// ErrDuplicateProperty indicates two fields deriving the same property name
	ErrDuplicateProperty ErrorCode = "GEN603"
	// ErrDuplicateOutput indicates two classes mapping to the same output file
	ErrDuplicateOutput ErrorCode = "GEN604"
	// ErrClassNotPartial indicates an annotated class missing the partial modifier
	ErrClassNotPartial ErrorCode = "GEN605"
	// ErrInternalConsistency indicates classifier/synthesizer disagreement
	ErrInternalConsistency ErrorCode = "GEN690"
)

// NewInvalidFieldNaming creates a GEN601 error
func NewInvalidFieldNaming(loc ast.SourceLocation, field string) *CompilerError {
	suggested := "_" + strings.TrimLeft(field, "_")
	if suggested == "_" {
		suggested = "_value"
	}
	return newError(
		ErrInvalidFieldNaming,
		"invalid_field_naming",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Field '%s' must start with '_' followed by a name", field),
		loc,
	).WithSuggestion(fmt.Sprintf("Rename the field to '%s'", suggested)).
		WithExamples("[SimpleStyledProperty] private int _direction;")
}

// NewAmbiguousAnnotation creates a GEN602 error
func NewAmbiguousAnnotation(loc ast.SourceLocation, field string, markers []string) *CompilerError {
	return newError(
		ErrAmbiguousAnnotation,
		"ambiguous_annotation",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Field '%s' has more than one property marker: %s", field, strings.Join(markers, ", ")),
		loc,
	).WithSuggestion("Keep exactly one of SimpleStyledProperty or SimpleAttachedProperty")
}

// NewDuplicateProperty creates a GEN603 error
func NewDuplicateProperty(loc ast.SourceLocation, property, first, second string) *CompilerError {
	return newError(
		ErrDuplicateProperty,
		"duplicate_property",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Fields '%s' and '%s' both generate property '%s'", first, second, property),
		loc,
	).WithSuggestion("Rename one of the fields so the derived property names differ")
}

// NewDuplicateOutput creates a GEN604 error
func NewDuplicateOutput(loc ast.SourceLocation, key, first, second string) *CompilerError {
	return newError(
		ErrDuplicateOutput,
		"duplicate_output",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Classes '%s' and '%s' both generate '%s'", first, second, key),
		loc,
	).WithSuggestion("Classes with the same name in different namespaces cannot both use property markers")
}

// NewClassNotPartial creates a GEN605 warning. The generated partial class
// will not compile against a non-partial declaration.
func NewClassNotPartial(loc ast.SourceLocation, class string) *CompilerError {
	return newError(
		ErrClassNotPartial,
		"class_not_partial",
		CategoryCodeGen,
		SeverityWarning,
		fmt.Sprintf("Class '%s' uses property markers but is not declared partial", class),
		loc,
	).WithSuggestion(fmt.Sprintf("Declare it as 'public partial class %s'", class)).
		WithClass(class)
}

// NewEnclosingTypeNotPartial creates a GEN605 warning for a non-partial
// type enclosing an annotated class. keyword is the declaration keyword
// (class, struct, record, interface).
func NewEnclosingTypeNotPartial(loc ast.SourceLocation, keyword, name, class string) *CompilerError {
	return newError(
		ErrClassNotPartial,
		"class_not_partial",
		CategoryCodeGen,
		SeverityWarning,
		fmt.Sprintf("%s '%s' encloses '%s', which uses property markers, but is not declared partial", keyword, name, class),
		loc,
	).WithSuggestion(fmt.Sprintf("Declare it as 'partial %s %s'", keyword, name)).
		WithClass(class)
}

// NewInternalConsistency creates a GEN690 error
func NewInternalConsistency(loc ast.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrInternalConsistency,
		"internal_consistency",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Internal consistency error: %s", reason),
		loc,
	).WithSuggestion("This is likely a generator bug - please report it")
}
