// Package ast defines the declaration model shared by the easyprops front end,
// classifier and code synthesizer. It represents C# files, namespaces, classes,
// fields and attributes only as far as property generation needs them.
package ast

import "fmt"

// SourceLocation tracks the position of a declaration in source code
type SourceLocation struct {
	File   string `json:"file,omitempty"` // Source file path (may be empty)
	Line   int    `json:"line"`           // Line number (1-indexed)
	Column int    `json:"column"`         // Column number (1-indexed)
}

// String renders the location as file:line:column
func (l SourceLocation) String() string {
	file := l.File
	if file == "" {
		file = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}

// Node is the base interface for all declaration nodes
type Node interface {
	Location() SourceLocation
	node()
}

// File is the root node for one parsed C# source file
type File struct {
	Path    string
	Usings  []string // Namespaces imported with `using X;`
	Classes []*ClassDecl
}

func (f *File) node() {}

// Location returns the location of the first class, or the file start
func (f *File) Location() SourceLocation {
	if len(f.Classes) > 0 {
		return f.Classes[0].Loc
	}
	return SourceLocation{File: f.Path, Line: 1, Column: 1}
}

// NamespaceScope is an enclosing namespace that can report its name.
// A nil NamespaceScope means the global namespace.
type NamespaceScope interface {
	Node
	NamespaceName() string
}

// BlockNamespace is `namespace A.B { ... }`, possibly nested inside another
// block namespace.
type BlockNamespace struct {
	Name   string
	Parent *BlockNamespace
	Loc    SourceLocation
}

func (n *BlockNamespace) node() {}

// Location returns the source location of the namespace declaration
func (n *BlockNamespace) Location() SourceLocation {
	return n.Loc
}

// NamespaceName joins the names of all enclosing block namespaces
func (n *BlockNamespace) NamespaceName() string {
	if n.Parent == nil {
		return n.Name
	}
	return n.Parent.NamespaceName() + "." + n.Name
}

// FileScopedNamespace is `namespace A.B;`
type FileScopedNamespace struct {
	Name string
	Loc  SourceLocation
}

func (n *FileScopedNamespace) node() {}

// Location returns the source location of the namespace declaration
func (n *FileScopedNamespace) Location() SourceLocation {
	return n.Loc
}

// NamespaceName returns the declared name
func (n *FileScopedNamespace) NamespaceName() string {
	return n.Name
}

// EnclosingType is a type declaration that contains a nested class
type EnclosingType struct {
	Keyword        string         `json:"kind"` // class, struct, record, record struct or interface
	Name           string         `json:"name"`
	TypeParameters string         `json:"type_parameters,omitempty"` // "<T>" as written, "" when not generic
	Partial        bool           `json:"partial"`
	Loc            SourceLocation `json:"-"`
}

// Declaration renders the header re-opening the type in generated code
func (t EnclosingType) Declaration() string {
	return "partial " + t.Keyword + " " + t.Name + t.TypeParameters
}

// ClassDecl represents a class declaration as delivered by the front end
type ClassDecl struct {
	Name           string
	TypeParameters string         // "<T>" as written, "" when not generic
	Namespace      NamespaceScope // nil for the global namespace
	Partial        bool
	Outer          []EnclosingType // Enclosing types, outermost first
	Fields         []*FieldDecl
	Usings         []string // Usings of the containing file
	Loc            SourceLocation

	// LocalTypes lists the fully-qualified names of the classes declared
	// in the same file
	LocalTypes []string
}

func (c *ClassDecl) node() {}

// Location returns the source location of the class declaration
func (c *ClassDecl) Location() SourceLocation {
	return c.Loc
}

// QualifiedName returns Namespace.Outer.Name
func (c *ClassDecl) QualifiedName() string {
	name := c.Name
	for i := len(c.Outer) - 1; i >= 0; i-- {
		name = c.Outer[i].Name + "." + name
	}
	if ns := c.NamespaceName(); ns != "" {
		name = ns + "." + name
	}
	return name
}

// NamespaceName returns the enclosing namespace name, or "" when global
func (c *ClassDecl) NamespaceName() string {
	if c.Namespace == nil {
		return ""
	}
	return c.Namespace.NamespaceName()
}

// FieldDecl represents a single field declarator with its attributes
type FieldDecl struct {
	Name        string
	Type        string // Declared type, verbatim
	Annotations []*Annotation
	Loc         SourceLocation
}

func (f *FieldDecl) node() {}

// Location returns the source location of the field declarator
func (f *FieldDecl) Location() SourceLocation {
	return f.Loc
}

// Annotation is an attribute applied to a field, as written in source
type Annotation struct {
	Name string // e.g. "SimpleStyledProperty" or "AvaloniaEasyProperties.SimpleStyledProperty"
	Loc  SourceLocation
}

func (a *Annotation) node() {}

// Location returns the source location of the attribute
func (a *Annotation) Location() SourceLocation {
	return a.Loc
}
