package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *CompilerError) string {
	var b strings.Builder

	// Severity icon
	icon := severityIcon(e.Severity)

	file := e.File
	if file == "" {
		file = "<source>"
	}

	// Error header
	fmt.Fprintf(&b, "%s %s in %s\n", icon, categoryDisplayName(e.Category), file)
	// Location
	fmt.Fprintf(&b, "Line %d, Column %d:\n", e.Location.Line, e.Location.Column)
	fmt.Fprintf(&b, "  %s\n", e.Message)

	// Aborted class (errors only; warnings still generate)
	if e.Class != "" && e.Severity == SeverityError {
		fmt.Fprintf(&b, "  No code was generated for class '%s'\n", e.Class)
	}

	// Suggestion (if provided)
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}

	// Examples (if provided)
	if len(e.Examples) > 0 {
		b.WriteString("\nQuick Fixes:\n")
		for i, example := range e.Examples {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, example)
		}
	}

	// Documentation link
	if e.Documentation != "" {
		fmt.Fprintf(&b, "\nLearn more: %s\n", e.Documentation)
	}

	return b.String()
}

// FormatErrorList returns a formatted string of all errors
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder

	// Summary header
	errCount, warnCount, infoCount := errors.ErrorCount()
	outcome := "failed"
	if errCount == 0 {
		outcome = "succeeded"
	}
	fmt.Fprintf(&b, "Generation %s with %d error(s), %d warning(s), %d info\n\n",
		outcome, errCount, warnCount, infoCount)

	// Format each error
	for i, err := range errors {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
		}
		b.WriteString(err.Format())
	}

	return b.String()
}

// FormatCompact returns a compact one-line error format understood by
// editors and MSBuild-style problem matchers
func FormatCompact(e *CompilerError) string {
	file := e.File
	if file == "" {
		file = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]",
		file, e.Location.Line, e.Location.Column,
		e.Severity, e.Message, e.Code)
}

// severityIcon returns the emoji/icon for a severity level
func severityIcon(severity ErrorSeverity) string {
	switch severity {
	case SeverityError:
		return "❌"
	case SeverityWarning:
		return "⚠️ "
	case SeverityInfo:
		return "ℹ️ "
	default:
		return "❓"
	}
}

// categoryDisplayName returns a human-readable category name
func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategorySyntax:
		return "Syntax Error"
	case CategoryCodeGen:
		return "Code Generation Error"
	default:
		return "Generator Error"
	}
}
