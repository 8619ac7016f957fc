package extractor

import (
	"context"
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"codegraph/internal/graph"
)

// TypeScriptExtractor implements LanguageExtractor for .ts and .tsx files.
type TypeScriptExtractor struct{}

func NewTypeScriptExtractor() *TypeScriptExtractor {
	return &TypeScriptExtractor{}
}

func (t *TypeScriptExtractor) Language() string {
	return LanguageTypeScript
}

func (t *TypeScriptExtractor) Extensions() []string {
	return []string{".ts", ".tsx"}
}

func (t *TypeScriptExtractor) grammar(rel string) *sitter.Language {
	if strings.HasSuffix(rel, ".tsx") {
		return tsx.GetLanguage()
	}
	return typescript.GetLanguage()
}

func (t *TypeScriptExtractor) ExtractFile(ctx context.Context, file *SourceFile, emit *Emitter) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(t.grammar(file.Rel))

	tree, err := parser.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return ErrSyntax
	}

	w := &tsWalker{fileWalker: newFileWalker(LanguageTypeScript, file, emit), project: file.Project}
	w.walk(root, w.modID)
	w.finish()
	return nil
}

type tsWalker struct {
	*fileWalker
	project map[string]bool
}

func (w *tsWalker) walk(n *sitter.Node, ctxID string) {
	switch n.Type() {
	case "function_declaration", "generator_function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			sym := w.declare(graph.KindFunction, w.text(name), n, "")
			w.walkChildren(n, sym.ID)
			return
		}
	case "class_declaration", "abstract_class_declaration":
		w.class(n, ctxID)
		return
	case "variable_declarator":
		w.declarator(n, ctxID)
		return
	case "import_statement":
		w.importFrom(n)
		return
	case "export_statement":
		// export { a } from './a'
		if n.ChildByFieldName("source") != nil {
			w.importFrom(n)
		}
	case "call_expression":
		w.call(tsCalleeName(w.fileWalker, n), ctxID)
	}
	w.walkChildren(n, ctxID)
}

func (w *tsWalker) walkChildren(n *sitter.Node, ctxID string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i), ctxID)
	}
}

func (w *tsWalker) class(n *sitter.Node, ctxID string) {
	name := n.ChildByFieldName("name")
	if name == nil {
		w.walkChildren(n, ctxID)
		return
	}
	klass := w.declare(graph.KindClass, w.text(name), n, "")

	body := n.ChildByFieldName("body")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); body == nil || c.StartByte() != body.StartByte() {
			w.walk(c, ctxID)
		}
	}
	if body == nil {
		return
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition":
			if mname := member.ChildByFieldName("name"); mname != nil {
				m := w.declare(graph.KindMethod, w.text(mname), member, klass.ID)
				w.walkChildren(member, m.ID)
				continue
			}
		case "public_field_definition":
			// handler = () => { ... }
			mname, value := member.ChildByFieldName("name"), member.ChildByFieldName("value")
			if mname != nil && value != nil && isFunctionValue(value) {
				m := w.declare(graph.KindMethod, w.text(mname), member, klass.ID)
				w.walk(value, m.ID)
				continue
			}
		}
		w.walk(member, ctxID)
	}
}

// declarator handles one binding of a const/let/var declaration. A binding
// whose initializer is a function literal is recorded as a function.
func (w *tsWalker) declarator(n *sitter.Node, ctxID string) {
	name := n.ChildByFieldName("name")
	value := n.ChildByFieldName("value")
	if name == nil || name.Type() != "identifier" {
		w.walkChildren(n, ctxID)
		return
	}

	kind := graph.KindVariable
	if value != nil && isFunctionValue(value) {
		kind = graph.KindFunction
	}
	sym := w.declare(kind, w.text(name), n, "")

	if value == nil {
		return
	}
	if kind == graph.KindFunction {
		w.walk(value, sym.ID)
		return
	}
	w.walk(value, ctxID)
}

func isFunctionValue(n *sitter.Node) bool {
	switch n.Type() {
	case "arrow_function", "function", "function_expression", "generator_function":
		return true
	}
	return false
}

// importFrom links the file to the module named by the statement's source.
// Relative specifiers that land on a scanned file become edges to that file's
// module; anything else is an external pseudo-module.
func (w *tsWalker) importFrom(n *sitter.Node) {
	src := n.ChildByFieldName("source")
	if src == nil {
		return
	}
	spec := strings.Trim(w.text(src), "\"'`")
	if spec == "" {
		return
	}

	if target, ok := w.resolveRelative(spec); ok {
		w.emit.Edge(w.modID, graph.EdgeImport, ModuleID(LanguageTypeScript, target))
		return
	}
	w.importExternal(spec)
}

func (w *tsWalker) resolveRelative(spec string) (string, bool) {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return "", false
	}
	base := path.Join(path.Dir(w.file), spec)
	if strings.HasPrefix(base, "../") {
		return "", false
	}
	return resolveProjectFile(base, w.project)
}

// resolveProjectFile applies the usual TypeScript lookup order to an
// extensionless or .js-suffixed module path.
func resolveProjectFile(base string, project map[string]bool) (string, bool) {
	stem := base
	for _, ext := range []string{".js", ".jsx", ".mjs"} {
		stem = strings.TrimSuffix(stem, ext)
	}
	candidates := []string{
		base,
		stem + ".ts",
		stem + ".tsx",
		stem + "/index.ts",
		stem + "/index.tsx",
	}
	for _, c := range candidates {
		if project[c] {
			return c, true
		}
	}
	return "", false
}

func tsCalleeName(w *fileWalker, call *sitter.Node) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return w.text(fn)
	case "member_expression":
		if prop := fn.ChildByFieldName("property"); prop != nil {
			return w.text(prop)
		}
	}
	return ""
}
