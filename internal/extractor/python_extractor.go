package extractor

import (
	"context"
	"errors"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"codegraph/internal/graph"
)

// ErrSyntax is returned for files the grammar could not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// PythonExtractor implements LanguageExtractor for Python.
type PythonExtractor struct{}

func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{}
}

func (p *PythonExtractor) Language() string {
	return LanguagePython
}

func (p *PythonExtractor) Extensions() []string {
	return []string{".py"}
}

func (p *PythonExtractor) ExtractFile(ctx context.Context, file *SourceFile, emit *Emitter) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return ErrSyntax
	}

	w := &pyWalker{fileWalker: newFileWalker(LanguagePython, file, emit)}
	w.walk(root, w.modID)
	w.finish()
	return nil
}

type pyWalker struct {
	*fileWalker
}

// walk visits n with ctxID as the innermost enclosing function, method or
// module.
func (w *pyWalker) walk(n *sitter.Node, ctxID string) {
	switch n.Type() {
	case "function_definition":
		w.function(n, graph.KindFunction, "", ctxID)
		return
	case "class_definition":
		w.class(n, ctxID)
		return
	case "assignment":
		w.assignment(n, ctxID)
		return
	case "import_statement":
		w.importNames(n)
		return
	case "import_from_statement":
		w.importFrom(n)
		return
	case "call":
		w.call(pyCalleeName(w.fileWalker, n), ctxID)
	}
	w.walkChildren(n, ctxID)
}

func (w *pyWalker) walkChildren(n *sitter.Node, ctxID string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i), ctxID)
	}
}

func (w *pyWalker) function(n *sitter.Node, kind graph.Kind, parentID, ctxID string) {
	name := n.ChildByFieldName("name")
	if name == nil {
		w.walkChildren(n, ctxID)
		return
	}
	sym := w.declare(kind, w.text(name), n, parentID)

	// Defaults and annotations run in the enclosing scope.
	if params := n.ChildByFieldName("parameters"); params != nil {
		w.walk(params, ctxID)
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		w.walk(ret, ctxID)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		w.walk(body, sym.ID)
	}
}

func (w *pyWalker) class(n *sitter.Node, ctxID string) {
	name := n.ChildByFieldName("name")
	if name == nil {
		w.walkChildren(n, ctxID)
		return
	}
	klass := w.declare(graph.KindClass, w.text(name), n, "")

	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		w.walk(supers, ctxID)
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if def := unwrapDecorated(stmt, "function_definition"); def != nil {
			w.decorators(stmt, ctxID)
			w.function(def, graph.KindMethod, klass.ID, ctxID)
			continue
		}
		w.walk(stmt, ctxID)
	}
}

// unwrapDecorated returns n, or the definition inside a decorated_definition,
// when it has the wanted type.
func unwrapDecorated(n *sitter.Node, want string) *sitter.Node {
	if n.Type() == "decorated_definition" {
		n = n.ChildByFieldName("definition")
		if n == nil {
			return nil
		}
	}
	if n.Type() != want {
		return nil
	}
	return n
}

func (w *pyWalker) decorators(n *sitter.Node, ctxID string) {
	if n.Type() != "decorated_definition" {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "decorator" {
			w.walk(c, ctxID)
		}
	}
}

// assignment declares a variable for the first target when it is a plain
// name. Annotated assignments and chained targets after the first are not
// declarations.
func (w *pyWalker) assignment(n *sitter.Node, ctxID string) {
	left := n.ChildByFieldName("left")
	if left != nil && left.Type() == "identifier" && n.ChildByFieldName("type") == nil {
		w.declare(graph.KindVariable, w.text(left), left, "")
	}

	right := n.ChildByFieldName("right")
	for right != nil && right.Type() == "assignment" {
		right = right.ChildByFieldName("right")
	}
	if right != nil {
		w.walk(right, ctxID)
	}
}

func (w *pyWalker) importNames(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "dotted_name":
			w.importExternal(w.text(c))
		case "aliased_import":
			if name := c.ChildByFieldName("name"); name != nil {
				w.importExternal(w.text(name))
			}
		}
	}
}

// importFrom records `from m import x` as an import of m. Relative imports
// keep their level as trailing dots: `from ..pkg import x` becomes "pkg..".
func (w *pyWalker) importFrom(n *sitter.Node) {
	mod := n.ChildByFieldName("module_name")
	if mod == nil {
		return
	}
	if mod.Type() != "relative_import" {
		w.importExternal(w.text(mod))
		return
	}

	var name string
	level := 0
	for i := 0; i < int(mod.NamedChildCount()); i++ {
		c := mod.NamedChild(i)
		switch c.Type() {
		case "import_prefix":
			level = strings.Count(w.text(c), ".")
		case "dotted_name":
			name = w.text(c)
		}
	}
	w.importExternal(name + strings.Repeat(".", level))
}

func pyCalleeName(w *fileWalker, call *sitter.Node) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return w.text(fn)
	case "attribute":
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			return w.text(attr)
		}
	}
	return ""
}
