package codegen

import (
	"fmt"

	"github.com/easyprops/easyprops/internal/compiler/ast"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
)

// writeProperty emits the descriptor and accessor pair for one field
func (s *Synthesizer) writeProperty(w *codeWriter, unit *ast.ClassUnit, field ast.AnnotatedField) error {
	switch field.Kind {
	case ast.KindStyled:
		w.writeLine("public static readonly StyledProperty<%s> %s = AvaloniaProperty.Register<%s, %s> (nameof (%s));",
			field.DeclaredType, field.DescriptorName(), unit.OwnerType(), field.DeclaredType, field.PropertyName)
	case ast.KindAttached:
		w.writeLine("public static readonly AttachedProperty<%s> %s = AvaloniaProperty.RegisterAttached<%s, %s, %s> (nameof (%s));",
			field.DeclaredType, field.DescriptorName(), unit.OwnerType(), s.opts.AttachedOwner, field.DeclaredType, field.PropertyName)
	default:
		return cerrors.NewInternalConsistency(field.Loc,
			fmt.Sprintf("unknown annotation kind %d for field '%s'", int(field.Kind), field.Name)).
			WithClass(unit.ClassName)
	}

	w.writeLine("")
	writeAccessors(w, field)
	return nil
}

// writeAccessors emits the public property routing through the descriptor
func writeAccessors(w *codeWriter, field ast.AnnotatedField) {
	w.writeLine("public %s %s", field.DeclaredType, field.PropertyName)
	w.writeLine("{")
	w.indent++
	w.writeLine("get => GetValue (%s);", field.DescriptorName())
	w.writeLine("set => SetValue (%s, value);", field.DescriptorName())
	w.indent--
	w.writeLine("}")
}
