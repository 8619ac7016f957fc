package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/graph"
)

const (
	LanguagePython     = "python"
	LanguageTypeScript = "typescript"
)

// rangeOf converts tree-sitter's 0-based points to a 1-based range. The end
// column stays exclusive, matching Python's end_col_offset.
func rangeOf(n *sitter.Node) graph.Range {
	start, end := n.StartPoint(), n.EndPoint()
	return graph.Range{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
	}
}

var unitRange = graph.Range{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}

func moduleSymbol(language, file string) graph.Symbol {
	return graph.Symbol{
		ID:       ModuleID(language, file),
		Kind:     graph.KindModule,
		Name:     file,
		File:     file,
		Range:    unitRange,
		Language: language,
	}
}

func externalModuleSymbol(language, spec string) graph.Symbol {
	return graph.Symbol{
		ID:       ExternalModuleID(spec),
		Kind:     graph.KindModule,
		Name:     spec,
		File:     spec,
		Range:    unitRange,
		Language: language,
	}
}

// fileWalker carries the per-file state shared by both language walkers.
type fileWalker struct {
	lang  string
	file  string
	src   []byte
	emit  *Emitter
	modID string
	names map[string][]graph.Symbol
}

func newFileWalker(lang string, file *SourceFile, emit *Emitter) *fileWalker {
	mod := moduleSymbol(lang, file.Rel)
	emit.Symbol(mod)
	return &fileWalker{
		lang:  lang,
		file:  file.Rel,
		src:   file.Content,
		emit:  emit,
		modID: mod.ID,
		names: make(map[string][]graph.Symbol),
	}
}

func (w *fileWalker) text(n *sitter.Node) string {
	return n.Content(w.src)
}

// declare emits a symbol for a declaration whose identity position is pos.
// Methods hang off their class through member_of; everything else is
// defined by the file's module.
func (w *fileWalker) declare(kind graph.Kind, name string, pos *sitter.Node, parentID string) graph.Symbol {
	r := rangeOf(pos)
	sym := graph.Symbol{
		ID:       SymbolID(kind, name, w.file, r.StartLine, r.StartCol),
		Kind:     kind,
		Name:     name,
		File:     w.file,
		Range:    r,
		Language: w.lang,
		ParentID: parentID,
	}
	w.emit.Symbol(sym)

	switch kind {
	case graph.KindMethod:
		w.emit.Edge(parentID, graph.EdgeMemberOf, sym.ID)
	case graph.KindFunction, graph.KindClass, graph.KindVariable, graph.KindModule:
		w.emit.Edge(w.modID, graph.EdgeDefines, sym.ID)
	}

	switch kind {
	case graph.KindFunction, graph.KindMethod, graph.KindVariable:
		w.names[name] = append(w.names[name], sym)
	case graph.KindClass, graph.KindModule:
	}
	return sym
}

// importExternal emits the pseudo-module for an import specifier that does
// not map to a scanned file, plus the import edge to it.
func (w *fileWalker) importExternal(spec string) {
	mod := externalModuleSymbol(w.lang, spec)
	w.emit.Symbol(mod)
	w.emit.Edge(w.modID, graph.EdgeImport, mod.ID)
}

func (w *fileWalker) call(name, contextID string) {
	if name == "" {
		return
	}
	w.emit.Call(name, w.file, contextID)
}

func (w *fileWalker) finish() {
	w.emit.NameIndex(w.file, w.names)
}
