package errors

import (
	"fmt"

	"github.com/easyprops/easyprops/internal/compiler/ast"
)

// Syntax error codes (SYN001-099)
const (
	// ErrSyntax indicates the front end recovered from a syntax error
	ErrSyntax ErrorCode = "SYN001"
)

// NewSyntaxError creates a SYN001 error
func NewSyntaxError(loc ast.SourceLocation, snippet string) *CompilerError {
	message := "Syntax error"
	if snippet != "" {
		message = fmt.Sprintf("Syntax error near '%s'", snippet)
	}
	return newError(
		ErrSyntax,
		"syntax_error",
		CategorySyntax,
		SeverityWarning,
		message,
		loc,
	).WithSuggestion("Declarations after this point may be incomplete until the syntax error is fixed")
}
