// Package parser reads C# source into the declaration model used by the
// generator. It uses the tree-sitter C# grammar and extracts only namespaces,
// using directives, classes, fields and field attributes.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"go.uber.org/zap"

	"github.com/easyprops/easyprops/internal/compiler/ast"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
)

// maxSyntaxDiagnostics caps syntax warnings reported per file
const maxSyntaxDiagnostics = 10

// Tree-sitter node types of the C# grammar
const (
	nodeCompilationUnit     = "compilation_unit"
	nodeNamespace           = "namespace_declaration"
	nodeFileScopedNamespace = "file_scoped_namespace_declaration"
	nodeDeclarationList     = "declaration_list"
	nodeClass               = "class_declaration"
	nodeStruct              = "struct_declaration"
	nodeRecord              = "record_declaration"
	nodeRecordStruct        = "record_struct_declaration"
	nodeInterface           = "interface_declaration"
	nodeTypeParameters      = "type_parameter_list"
	nodeField               = "field_declaration"
	nodeVariableDeclaration = "variable_declaration"
	nodeVariableDeclarator  = "variable_declarator"
	nodeAttributeList       = "attribute_list"
	nodeAttribute           = "attribute"
	nodeUsing               = "using_directive"
	nodeModifier            = "modifier"
	nodeError               = "ERROR"
)

var nameNodeTypes = []string{"identifier", "qualified_name", "alias_qualified_name", "generic_name"}

// Parser extracts class declarations from C# files. It is safe for
// concurrent use; each call allocates its own tree-sitter parser.
type Parser struct {
	logger *zap.Logger
}

// New creates a C# parser
func New(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// ParseFile parses src and returns its declarations. Recoverable syntax
// errors are returned as warnings alongside a best-effort file.
func (p *Parser) ParseFile(ctx context.Context, path string, src []byte) (*ast.File, cerrors.ErrorList, error) {
	start := time.Now()

	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(csharp.GetLanguage())

	tree, err := sp.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	w := &walker{path: path, src: src}
	root := tree.RootNode()
	w.collect(root, nil)

	file := &ast.File{
		Path:    path,
		Usings:  w.usings,
		Classes: w.classes,
	}
	localTypes := make([]string, 0, len(w.classes))
	for _, class := range w.classes {
		localTypes = append(localTypes, class.QualifiedName())
	}
	for _, class := range w.classes {
		class.Usings = w.usings
		class.LocalTypes = localTypes
	}

	var diags cerrors.ErrorList
	if root.HasError() {
		diags = w.syntaxErrors(root)
	}

	p.logger.Debug("parsed file",
		zap.String("file", filepath.Base(path)),
		zap.Int("classes", len(file.Classes)),
		zap.Int("syntax_errors", len(diags)),
		zap.Duration("elapsed", time.Since(start)))

	return file, diags, nil
}

// walker accumulates declarations for one file
type walker struct {
	path    string
	src     []byte
	usings  []string
	classes []*ast.ClassDecl
}

// typeKeywords maps declarations that may contain classes to the keyword
// re-opening them
var typeKeywords = map[string]string{
	nodeClass:        "class",
	nodeStruct:       "struct",
	nodeRecord:       "record",
	nodeRecordStruct: "record struct",
	nodeInterface:    "interface",
}

// collect walks container nodes in source order. outer holds the types
// enclosing node.
func (w *walker) collect(node *sitter.Node, outer []ast.EnclosingType) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case nodeUsing:
			if ns, ok := w.usingNamespace(child); ok {
				w.usings = append(w.usings, ns)
			}

		case nodeNamespace:
			body := child.ChildByFieldName("body")
			if body == nil {
				body = child
			}
			w.collect(body, outer)

		case nodeFileScopedNamespace, nodeDeclarationList, nodeError:
			w.collect(child, outer)

		case nodeClass, nodeStruct, nodeRecord, nodeRecordStruct, nodeInterface:
			w.typeDecl(child, outer)
		}
	}
}

// typeDecl records a class declaration and recurses into nested types.
// Structs, records and interfaces produce no ClassDecl themselves but may
// hold classes.
func (w *walker) typeDecl(node *sitter.Node, outer []ast.EnclosingType) {
	nameNode := childByFieldOrType(node, "name", "identifier")
	if nameNode == nil {
		return
	}

	name := w.text(nameNode)
	typeParams := w.typeParameters(node)
	partial := w.hasModifier(node, "partial")

	var decl *ast.ClassDecl
	if node.Type() == nodeClass {
		decl = &ast.ClassDecl{
			Name:           name,
			TypeParameters: typeParams,
			Namespace:      w.namespaceOf(node),
			Partial:        partial,
			Outer:          outer,
			Loc:            w.location(nameNode),
		}
		w.classes = append(w.classes, decl)
	}

	body := childByFieldOrType(node, "body", nodeDeclarationList)
	if body == nil {
		return
	}

	// fresh slice so siblings never share a backing array
	nested := append(append([]ast.EnclosingType(nil), outer...), ast.EnclosingType{
		Keyword:        w.typeKeyword(node),
		Name:           name,
		TypeParameters: typeParams,
		Partial:        partial,
		Loc:            w.location(nameNode),
	})
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case nodeField:
			if decl != nil {
				decl.Fields = append(decl.Fields, w.fields(member)...)
			}
		case nodeClass, nodeStruct, nodeRecord, nodeRecordStruct, nodeInterface:
			w.typeDecl(member, nested)
		}
	}
}

// typeKeyword returns the declaration keyword of a type node. Grammar
// versions without record_struct_declaration mark `record struct` with an
// anonymous struct token.
func (w *walker) typeKeyword(node *sitter.Node) string {
	keyword := typeKeywords[node.Type()]
	if node.Type() == nodeRecord {
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); !child.IsNamed() && child.Type() == "struct" {
				return "record struct"
			}
		}
	}
	return keyword
}

// typeParameters returns the type parameter list with whitespace collapsed
func (w *walker) typeParameters(node *sitter.Node) string {
	list := childByFieldOrType(node, "type_parameters", nodeTypeParameters)
	if list == nil {
		return ""
	}
	return strings.Join(strings.Fields(w.text(list)), " ")
}

// fields returns one FieldDecl per declarator of a field declaration
func (w *walker) fields(node *sitter.Node) []*ast.FieldDecl {
	var annotations []*ast.Annotation
	var declaration *sitter.Node

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case nodeAttributeList:
			annotations = append(annotations, w.attributes(child)...)
		case nodeVariableDeclaration:
			declaration = child
		}
	}
	if declaration == nil {
		return nil
	}

	typeNode := declaration.ChildByFieldName("type")
	if typeNode == nil && declaration.NamedChildCount() > 0 {
		typeNode = declaration.NamedChild(0)
	}
	if typeNode == nil {
		return nil
	}
	typ := w.text(typeNode)

	var fields []*ast.FieldDecl
	for i := 0; i < int(declaration.NamedChildCount()); i++ {
		declarator := declaration.NamedChild(i)
		if declarator.Type() != nodeVariableDeclarator {
			continue
		}
		nameNode := childByFieldOrType(declarator, "name", "identifier")
		if nameNode == nil {
			continue
		}
		fields = append(fields, &ast.FieldDecl{
			Name:        w.text(nameNode),
			Type:        typ,
			Annotations: annotations,
			Loc:         w.location(nameNode),
		})
	}
	return fields
}

// attributes returns the attribute names of one [ ... ] list
func (w *walker) attributes(list *sitter.Node) []*ast.Annotation {
	var annotations []*ast.Annotation
	for i := 0; i < int(list.NamedChildCount()); i++ {
		attr := list.NamedChild(i)
		if attr.Type() != nodeAttribute {
			continue
		}
		nameNode := childByFieldOrType(attr, "name", nameNodeTypes...)
		if nameNode == nil {
			continue
		}
		annotations = append(annotations, &ast.Annotation{
			Name: w.text(nameNode),
			Loc:  w.location(nameNode),
		})
	}
	return annotations
}

// usingNamespace extracts X from `using X;`. Aliases and `using static`
// import no namespace and are skipped.
func (w *walker) usingNamespace(node *sitter.Node) (string, bool) {
	text := w.text(node)
	if strings.Contains(text, "=") {
		return "", false
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "static" {
			return "", false
		}
	}

	var name *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if isNameNode(child) {
			name = child
		}
	}
	if name == nil {
		return "", false
	}
	return strings.TrimPrefix(w.text(name), "global::"), true
}

func (w *walker) hasModifier(node *sitter.Node, modifier string) bool {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == nodeModifier && w.text(child) == modifier {
			return true
		}
	}
	return false
}

// syntaxErrors reports ERROR and MISSING nodes as warnings
func (w *walker) syntaxErrors(root *sitter.Node) cerrors.ErrorList {
	var diags cerrors.ErrorList
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if len(diags) >= maxSyntaxDiagnostics {
			return
		}
		if n.Type() == nodeError || n.IsMissing() {
			snippet := strings.TrimSpace(w.text(n))
			if len(snippet) > 40 {
				snippet = snippet[:40] + "..."
			}
			if n.IsMissing() {
				snippet = n.Type()
			}
			diags = append(diags, cerrors.NewSyntaxError(w.location(n), snippet))
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
	return diags
}

func (w *walker) text(n *sitter.Node) string {
	return n.Content(w.src)
}

func (w *walker) location(n *sitter.Node) ast.SourceLocation {
	point := n.StartPoint()
	return ast.SourceLocation{
		File:   w.path,
		Line:   int(point.Row) + 1,
		Column: int(point.Column) + 1,
	}
}

// childByFieldOrType returns the named field, falling back to the first named
// child of one of the given types for grammar versions without field names
func childByFieldOrType(node *sitter.Node, field string, types ...string) *sitter.Node {
	if child := node.ChildByFieldName(field); child != nil {
		return child
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		for _, typ := range types {
			if child.Type() == typ {
				return child
			}
		}
	}
	return nil
}

func isNameNode(n *sitter.Node) bool {
	for _, typ := range nameNodeTypes {
		if n.Type() == typ {
			return true
		}
	}
	return false
}
