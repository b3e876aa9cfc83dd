// Package classify selects the fields of a class that carry a property marker
// and derives the public property name for each of them.
package classify

import (
	"strings"

	"go.uber.org/zap"

	"github.com/easyprops/easyprops/internal/compiler/ast"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
	utilstrings "github.com/easyprops/easyprops/internal/util/strings"
)

const (
	// DefaultMarkerNamespace is the namespace declaring the marker attributes
	DefaultMarkerNamespace = "AvaloniaEasyProperties"
	// StyledMarker is the simple name of the styled property attribute
	StyledMarker = "SimpleStyledProperty"
	// AttachedMarker is the simple name of the attached property attribute
	AttachedMarker = "SimpleAttachedProperty"

	fieldPrefix     = "_"
	attributeSuffix = "Attribute"
	globalAlias     = "global::"
)

var markerKinds = map[string]ast.AnnotationKind{
	StyledMarker:   ast.KindStyled,
	AttachedMarker: ast.KindAttached,
}

// Classifier turns class declarations into ClassUnits
type Classifier struct {
	markerNamespace string
	logger          *zap.Logger
}

// New creates a classifier. An empty markerNamespace selects the default.
func New(markerNamespace string, logger *zap.Logger) *Classifier {
	if markerNamespace == "" {
		markerNamespace = DefaultMarkerNamespace
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		markerNamespace: markerNamespace,
		logger:          logger,
	}
}

// Classify returns the annotated fields of class in declaration order.
// The first invalid field aborts classification of the whole class.
func (c *Classifier) Classify(class *ast.ClassDecl) ([]ast.AnnotatedField, error) {
	var fields []ast.AnnotatedField

	for _, field := range class.Fields {
		var (
			kinds   []ast.AnnotationKind
			markers []string
		)
		for _, annotation := range field.Annotations {
			if kind, ok := c.resolve(annotation.Name, class); ok {
				kinds = append(kinds, kind)
				markers = append(markers, annotation.Name)
			}
		}

		if len(kinds) == 0 {
			continue
		}
		if len(kinds) > 1 {
			return nil, cerrors.NewAmbiguousAnnotation(field.Loc, field.Name, markers).WithClass(class.Name)
		}

		property, ok := PropertyName(field.Name)
		if !ok {
			return nil, cerrors.NewInvalidFieldNaming(field.Loc, field.Name).WithClass(class.Name)
		}

		fields = append(fields, ast.AnnotatedField{
			Name:         field.Name,
			PropertyName: property,
			DeclaredType: field.Type,
			Kind:         kinds[0],
			Loc:          field.Loc,
		})
	}

	return fields, nil
}

// Unit classifies class and wraps the result. ok is false when the class has
// no annotated fields and must not produce output.
func (c *Classifier) Unit(class *ast.ClassDecl) (unit *ast.ClassUnit, ok bool, err error) {
	fields, err := c.Classify(class)
	if err != nil {
		return nil, false, err
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	return &ast.ClassUnit{
		ClassName:      class.Name,
		TypeParameters: class.TypeParameters,
		Namespace:      class.NamespaceName(),
		Outer:          class.Outer,
		Fields:         fields,
		Loc:            class.Loc,
	}, true, nil
}

// PropertyName derives the public property name from a field name:
// the leading underscore is removed and the next rune upper-cased.
func PropertyName(field string) (string, bool) {
	rest, found := strings.CutPrefix(field, fieldPrefix)
	if !found || rest == "" {
		return "", false
	}
	return utilstrings.UpperFirst(rest), true
}

// resolve maps an attribute name to a marker kind. Qualified names must name
// the marker namespace; simple names resolve through the file's usings or
// the class namespace, and otherwise fall back to simple-name matching unless
// the file declares a type of the same name elsewhere.
func (c *Classifier) resolve(name string, class *ast.ClassDecl) (ast.AnnotationKind, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(name), globalAlias)

	qualifier, simple := "", name
	if i := strings.LastIndex(name, "."); i >= 0 {
		qualifier, simple = name[:i], name[i+1:]
	}

	kind, ok := markerKinds[simple]
	if !ok {
		simple = strings.TrimSuffix(simple, attributeSuffix)
		kind, ok = markerKinds[simple]
	}
	if !ok {
		return 0, false
	}

	if qualifier != "" {
		return kind, qualifier == c.markerNamespace
	}

	if c.importsMarkers(class) {
		return kind, true
	}

	if local, shadowed := c.shadowedBy(simple, class); shadowed {
		c.logger.Debug("attribute shadowed by local type",
			zap.String("class", class.Name),
			zap.String("attribute", name),
			zap.String("type", local))
		return 0, false
	}

	return kind, true
}

// shadowedBy reports a class declared in the same file, outside the marker
// namespace, whose simple name collides with the marker
func (c *Classifier) shadowedBy(simple string, class *ast.ClassDecl) (string, bool) {
	for _, local := range class.LocalTypes {
		ns, name := "", local
		if i := strings.LastIndex(local, "."); i >= 0 {
			ns, name = local[:i], local[i+1:]
		}
		if ns == c.markerNamespace {
			continue
		}
		if name == simple || name == simple+attributeSuffix {
			return local, true
		}
	}
	return "", false
}

func (c *Classifier) importsMarkers(class *ast.ClassDecl) bool {
	for _, using := range class.Usings {
		if using == c.markerNamespace {
			return true
		}
	}
	ns := class.NamespaceName()
	return ns == c.markerNamespace || strings.HasPrefix(ns, c.markerNamespace+".")
}
