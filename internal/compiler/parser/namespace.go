package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/easyprops/easyprops/internal/compiler/ast"
)

// namespaceOf walks the ancestors of node to find its enclosing namespace.
// Block namespaces nest (`namespace A { namespace B { } }` is A.B). A
// file-scoped namespace is either an ancestor or, depending on the grammar
// version, an earlier sibling at compilation-unit level. Nil means global.
func (w *walker) namespaceOf(node *sitter.Node) ast.NamespaceScope {
	var blocks []*sitter.Node // innermost first

	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Type() {
		case nodeNamespace:
			blocks = append(blocks, parent)
		case nodeFileScopedNamespace:
			return w.fileScoped(parent)
		case nodeCompilationUnit:
			if len(blocks) == 0 {
				if fs := precedingFileScoped(parent, node); fs != nil {
					return w.fileScoped(fs)
				}
			}
		}
	}

	if len(blocks) == 0 {
		return nil
	}

	var scope *ast.BlockNamespace
	for i := len(blocks) - 1; i >= 0; i-- {
		scope = &ast.BlockNamespace{
			Name:   w.namespaceName(blocks[i]),
			Parent: scope,
			Loc:    w.location(blocks[i]),
		}
	}
	return scope
}

func (w *walker) fileScoped(node *sitter.Node) *ast.FileScopedNamespace {
	return &ast.FileScopedNamespace{
		Name: w.namespaceName(node),
		Loc:  w.location(node),
	}
}

func (w *walker) namespaceName(node *sitter.Node) string {
	name := childByFieldOrType(node, "name", nameNodeTypes...)
	if name == nil {
		return ""
	}
	return w.text(name)
}

// precedingFileScoped finds a `namespace X;` declared before node at the top
// level of the compilation unit
func precedingFileScoped(unit, node *sitter.Node) *sitter.Node {
	for i := 0; i < int(unit.NamedChildCount()); i++ {
		child := unit.NamedChild(i)
		if child.StartByte() >= node.StartByte() {
			break
		}
		if child.Type() == nodeFileScopedNamespace {
			return child
		}
	}
	return nil
}
