// Package codegen synthesizes C# partial classes declaring Avalonia properties
// for classified fields. Output depends only on its input, so generating the
// same ClassUnit twice yields byte-identical text.
package codegen

import (
	"bytes"
	"fmt"

	"github.com/easyprops/easyprops/internal/compiler/ast"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
)

const (
	// DefaultFileSuffix is appended to the class name to form the output file name
	DefaultFileSuffix = "AvaloniaEasyProperties.cs"
	// DefaultAttachedOwner is the host type for attached properties
	DefaultAttachedOwner = "TemplatedControl"

	warningKillerName = "warningKiller"
	selfAssignWarning = "CS1717"
)

// DefaultUsings are emitted at the top of every generated file. They cover
// the types property declarations commonly use (IBrush, Bitmap, ICommand).
var DefaultUsings = []string{
	"System",
	"Avalonia",
	"Avalonia.Media",
	"Avalonia.Media.Imaging",
	"Avalonia.Controls.Primitives",
	"System.Windows.Input",
}

// Options configures code synthesis
type Options struct {
	// FileSuffix forms TargetFileKey as "<Class>.<FileSuffix>"
	FileSuffix string
	// AttachedOwner is the THost argument of RegisterAttached
	AttachedOwner string
	// Usings are appended after DefaultUsings
	Usings []string
	// SuppressUnusedWarning emits a never-called method reading every
	// annotated field so the compiler does not flag them as unused
	SuppressUnusedWarning bool
}

// DefaultOptions returns the options matching the stock marker attributes
func DefaultOptions() Options {
	return Options{
		FileSuffix:            DefaultFileSuffix,
		AttachedOwner:         DefaultAttachedOwner,
		SuppressUnusedWarning: true,
	}
}

// Synthesizer transforms ClassUnits into generated C# source.
// It holds no mutable state and is safe for concurrent use.
type Synthesizer struct {
	opts   Options
	usings []string
}

// NewSynthesizer creates a synthesizer, filling empty options with defaults
func NewSynthesizer(opts Options) *Synthesizer {
	if opts.FileSuffix == "" {
		opts.FileSuffix = DefaultFileSuffix
	}
	if opts.AttachedOwner == "" {
		opts.AttachedOwner = DefaultAttachedOwner
	}
	return &Synthesizer{
		opts:   opts,
		usings: mergeUsings(DefaultUsings, opts.Usings),
	}
}

// FileKey returns the output file name for a class. Nested classes use
// their dotted path (Outer.Inner); type parameters are not part of it.
func (s *Synthesizer) FileKey(className string) string {
	return fmt.Sprintf("%s.%s", className, s.opts.FileSuffix)
}

// Synthesize generates the partial class for unit
func (s *Synthesizer) Synthesize(unit *ast.ClassUnit) (*ast.GeneratedUnit, error) {
	if unit == nil || len(unit.Fields) == 0 {
		loc := ast.SourceLocation{}
		name := ""
		if unit != nil {
			loc, name = unit.Loc, unit.ClassName
		}
		return nil, cerrors.NewInternalConsistency(loc, "synthesis requested for a class without annotated fields").
			WithClass(name)
	}

	if err := checkDuplicates(unit); err != nil {
		return nil, err
	}

	w := newCodeWriter()
	s.writeHeader(w)

	if unit.Namespace != "" {
		w.writeLine("namespace %s", unit.Namespace)
		w.writeLine("{")
		w.indent++
	}

	// Enclosing types are re-opened with their own keyword
	for _, outer := range unit.Outer {
		w.writeLine("%s", outer.Declaration())
		w.writeLine("{")
		w.indent++
	}

	w.writeLine("public partial class %s", unit.OwnerType())
	w.writeLine("{")
	w.indent++

	for i, field := range unit.Fields {
		if i > 0 {
			w.writeLine("")
		}
		if err := s.writeProperty(w, unit, field); err != nil {
			return nil, err
		}
	}

	if s.opts.SuppressUnusedWarning {
		w.writeLine("")
		writeWarningKiller(w, unit.Fields)
	}

	w.indent--
	w.writeLine("}")

	for range unit.Outer {
		w.indent--
		w.writeLine("}")
	}

	if unit.Namespace != "" {
		w.indent--
		w.writeLine("}")
	}

	return &ast.GeneratedUnit{
		TargetFileKey: s.FileKey(unit.QualifiedClassName()),
		ClassName:     unit.ClassName,
		Namespace:     unit.Namespace,
		SourceText:    w.String(),
	}, nil
}

// writeHeader writes the auto-generated marker and using directives
func (s *Synthesizer) writeHeader(w *codeWriter) {
	w.writeLine("// <auto-generated>")
	w.writeLine("//     This code was generated by easyprops.")
	w.writeLine("//     Changes to this file will be lost when the code is regenerated.")
	w.writeLine("// </auto-generated>")
	for _, using := range s.usings {
		w.writeLine("using %s;", using)
	}
	w.writeLine("")
}

// writeWarningKiller assigns every annotated field to itself inside a method
// nobody calls. The backing fields are otherwise never read.
func writeWarningKiller(w *codeWriter, fields []ast.AnnotatedField) {
	w.writeRaw("#pragma warning disable %s", selfAssignWarning)
	w.writeLine("private void %s ()", warningKillerName)
	w.writeLine("{")
	w.indent++
	for _, field := range fields {
		w.writeLine("%s = %s;", field.Name, field.Name)
	}
	w.indent--
	w.writeLine("}")
	w.writeRaw("#pragma warning restore %s", selfAssignWarning)
}

// checkDuplicates rejects two fields deriving the same property name
func checkDuplicates(unit *ast.ClassUnit) error {
	seen := make(map[string]string, len(unit.Fields))
	for _, field := range unit.Fields {
		if first, ok := seen[field.PropertyName]; ok {
			return cerrors.NewDuplicateProperty(field.Loc, field.PropertyName, first, field.Name).
				WithClass(unit.ClassName)
		}
		seen[field.PropertyName] = field.Name
	}
	return nil
}

// mergeUsings appends extra to base, dropping blanks and duplicates while
// keeping first-seen order
func mergeUsings(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	merged := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, using := range list {
			if using == "" || seen[using] {
				continue
			}
			seen[using] = true
			merged = append(merged, using)
		}
	}
	return merged
}

// codeWriter accumulates indented C# source
type codeWriter struct {
	buf    *bytes.Buffer
	indent int
}

func newCodeWriter() *codeWriter {
	return &codeWriter{buf: &bytes.Buffer{}}
}

// writeLine writes a formatted line with proper indentation
func (w *codeWriter) writeLine(format string, args ...interface{}) {
	if format == "" {
		w.buf.WriteString("\n")
		return
	}

	for i := 0; i < w.indent; i++ {
		w.buf.WriteString("\t")
	}

	if len(args) > 0 {
		fmt.Fprintf(w.buf, format, args...)
	} else {
		w.buf.WriteString(format)
	}
	w.buf.WriteString("\n")
}

// writeRaw writes a line without indentation (preprocessor directives)
func (w *codeWriter) writeRaw(format string, args ...interface{}) {
	fmt.Fprintf(w.buf, format, args...)
	w.buf.WriteString("\n")
}

func (w *codeWriter) String() string {
	return w.buf.String()
}
