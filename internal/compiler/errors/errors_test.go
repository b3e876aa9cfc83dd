package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyprops/easyprops/internal/compiler/ast"
)

func TestErrorCodeUniqueness(t *testing.T) {
	codes := []ErrorCode{
		ErrSyntax,
		ErrInvalidFieldNaming, ErrAmbiguousAnnotation, ErrDuplicateProperty,
		ErrDuplicateOutput, ErrClassNotPartial, ErrInternalConsistency,
	}

	seen := make(map[ErrorCode]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code %s", code)
		}
		seen[code] = true
	}
}

func TestCompilerError_IsMatchesCode(t *testing.T) {
	loc := ast.SourceLocation{File: "Foo.cs", Line: 7, Column: 3}
	err := NewInvalidFieldNaming(loc, "direction")

	assert.True(t, stderrors.Is(err, ErrInvalidFieldNaming))
	assert.False(t, stderrors.Is(err, ErrInternalConsistency))

	wrapped := fmt.Errorf("class Foo: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrInvalidFieldNaming))

	var ce *CompilerError
	require.True(t, stderrors.As(wrapped, &ce))
	assert.Equal(t, "Foo.cs", ce.File)
	assert.Equal(t, SeverityError, ce.Severity)
}

func TestErrorList_IsSearchesAllErrors(t *testing.T) {
	list := ErrorList{
		NewSyntaxError(ast.SourceLocation{Line: 1, Column: 1}, "{"),
		NewDuplicateProperty(ast.SourceLocation{Line: 4, Column: 2}, "Direction", "_direction", "_Direction"),
	}

	assert.True(t, stderrors.Is(list, ErrDuplicateProperty))
	assert.True(t, stderrors.Is(list, ErrSyntax))
	assert.False(t, stderrors.Is(list, ErrDuplicateOutput))
	assert.True(t, list.HasErrors())

	errs, warnings, info := list.ErrorCount()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warnings)
	assert.Equal(t, 0, info)
}

func TestErrorList_WarningsOnlyHasNoErrors(t *testing.T) {
	list := ErrorList{NewSyntaxError(ast.SourceLocation{Line: 2, Column: 5}, "")}
	assert.False(t, list.HasErrors())
	assert.Equal(t, "no errors", ErrorList{}.Error())
}

func TestFormatCompact(t *testing.T) {
	err := NewInvalidFieldNaming(ast.SourceLocation{File: "Views/Arrow.cs", Line: 12, Column: 21}, "direction")

	got := FormatCompact(err)
	assert.Equal(t, "Views/Arrow.cs:12:21: error: Field 'direction' must start with '_' followed by a name [GEN601]", got)
	assert.Equal(t, got, err.Error())
}

func TestFormatError_IncludesSuggestionAndClass(t *testing.T) {
	err := NewInvalidFieldNaming(ast.SourceLocation{File: "Arrow.cs", Line: 3, Column: 9}, "direction").
		WithClass("ArrowButton")

	out := err.Format()
	assert.Contains(t, out, "Code Generation Error in Arrow.cs")
	assert.Contains(t, out, "Line 3, Column 9:")
	assert.Contains(t, out, "No code was generated for class 'ArrowButton'")
	assert.Contains(t, out, "Rename the field to '_direction'")
	assert.Contains(t, out, "[SimpleStyledProperty] private int _direction;")
}

func TestFormatErrorList_Summary(t *testing.T) {
	list := ErrorList{
		NewInternalConsistency(ast.SourceLocation{Line: 1, Column: 1}, "unknown kind"),
		NewDuplicateOutput(ast.SourceLocation{Line: 9, Column: 1}, "Foo.AvaloniaEasyProperties.cs", "A.Foo", "B.Foo"),
	}

	out := list.Error()
	assert.True(t, strings.HasPrefix(out, "Generation failed with 2 error(s), 0 warning(s), 0 info"))
	assert.Contains(t, out, strings.Repeat("-", 80))
}

func TestFormatErrorList_WarningsOnly(t *testing.T) {
	list := ErrorList{NewSyntaxError(ast.SourceLocation{Line: 3, Column: 1}, "}")}
	assert.True(t, strings.HasPrefix(FormatErrorList(list), "Generation succeeded with 0 error(s), 1 warning(s), 0 info"))
}

func TestErrorList_ToJSON(t *testing.T) {
	list := ErrorList{
		NewAmbiguousAnnotation(ast.SourceLocation{File: "A.cs", Line: 2, Column: 4}, "_x",
			[]string{"SimpleStyledProperty", "SimpleAttachedProperty"}),
	}

	out, err := list.ToJSON()
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "GEN602", decoded[0]["code"])
	assert.Equal(t, "codegen", decoded[0]["category"])
	assert.Equal(t, "A.cs", decoded[0]["file"])
}

func TestInvalidFieldNaming_SuggestionForBareUnderscore(t *testing.T) {
	err := NewInvalidFieldNaming(ast.SourceLocation{}, "_")
	assert.Equal(t, "Rename the field to '_value'", err.Suggestion)
}

func TestClassNotPartial_IsWarning(t *testing.T) {
	err := NewClassNotPartial(ast.SourceLocation{File: "Foo.cs", Line: 3, Column: 14}, "Foo")

	assert.Equal(t, SeverityWarning, err.Severity)
	assert.Equal(t, "Foo", err.Class)
	assert.Equal(t, "Declare it as 'public partial class Foo'", err.Suggestion)
	assert.False(t, ErrorList{err}.HasErrors())
}

func TestEnclosingTypeNotPartial(t *testing.T) {
	err := NewEnclosingTypeNotPartial(ast.SourceLocation{File: "Holder.cs", Line: 1, Column: 15}, "struct", "Holder", "Inner")

	assert.Equal(t, ErrClassNotPartial, err.Code)
	assert.Equal(t, SeverityWarning, err.Severity)
	assert.Equal(t, "Inner", err.Class)
	assert.Contains(t, err.Message, "struct 'Holder' encloses 'Inner'")
	assert.Equal(t, "Declare it as 'partial struct Holder'", err.Suggestion)
}
