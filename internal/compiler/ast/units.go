package ast

import "strings"

// AnnotationKind is the closed set of property shapes easyprops generates
type AnnotationKind int

const (
	// KindStyled maps to AvaloniaProperty.Register<TOwner, TValue>
	KindStyled AnnotationKind = iota + 1
	// KindAttached maps to AvaloniaProperty.RegisterAttached<TOwner, THost, TValue>
	KindAttached
)

// String returns the marker-independent name of the kind
func (k AnnotationKind) String() string {
	switch k {
	case KindStyled:
		return "Styled"
	case KindAttached:
		return "Attached"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON output
func (k AnnotationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// AnnotatedField is a field that carries exactly one recognized marker
type AnnotatedField struct {
	Name         string         `json:"field"`
	PropertyName string         `json:"property"`
	DeclaredType string         `json:"type"`
	Kind         AnnotationKind `json:"kind"`
	Loc          SourceLocation `json:"-"`
}

// DescriptorName is the name of the static property descriptor
func (f AnnotatedField) DescriptorName() string {
	return f.PropertyName + "Property"
}

// ClassUnit is the classified view of one class. It is never empty.
type ClassUnit struct {
	ClassName      string           `json:"class"`
	TypeParameters string           `json:"type_parameters,omitempty"`
	Namespace      string           `json:"namespace,omitempty"` // "" means the global namespace
	Outer          []EnclosingType  `json:"outer,omitempty"`     // Enclosing types, outermost first
	Fields         []AnnotatedField `json:"fields"`
	Loc            SourceLocation   `json:"-"`
}

// QualifiedClassName returns Outer.ClassName without the namespace or
// type parameters
func (u *ClassUnit) QualifiedClassName() string {
	if len(u.Outer) == 0 {
		return u.ClassName
	}
	names := make([]string, 0, len(u.Outer)+1)
	for _, outer := range u.Outer {
		names = append(names, outer.Name)
	}
	return strings.Join(append(names, u.ClassName), ".")
}

// OwnerType is the class as a type argument (Box<T> for generic classes)
func (u *ClassUnit) OwnerType() string {
	return u.ClassName + u.TypeParameters
}

// FullName returns the namespace-qualified class name
func (u *ClassUnit) FullName() string {
	if u.Namespace == "" {
		return u.QualifiedClassName()
	}
	return u.Namespace + "." + u.QualifiedClassName()
}

// GeneratedUnit is the synthesized source for one class
type GeneratedUnit struct {
	TargetFileKey string
	ClassName     string
	Namespace     string
	SourceText    string
}
