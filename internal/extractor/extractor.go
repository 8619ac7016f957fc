package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"codegraph/internal/crawler"
)

// LanguageExtractor is implemented by each language-specific walker.
type LanguageExtractor interface {
	// Language returns the tag stored on every emitted symbol.
	Language() string
	// Extensions lists the file extensions the walker handles.
	Extensions() []string
	// ExtractFile parses one file and writes its records to emit.
	ExtractFile(ctx context.Context, file *SourceFile, emit *Emitter) error
}

// SourceFile is one file handed to a LanguageExtractor.
type SourceFile struct {
	Rel     string
	Content []byte
	// Project holds the relative paths of every file of this language in
	// the scan, for resolving relative imports.
	Project map[string]bool
}

// Extractor orchestrates the extraction of one language over a source tree.
type Extractor struct {
	langExtractor LanguageExtractor
	logger        *slog.Logger
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case LanguagePython:
		langExt = NewPythonExtractor()
	case LanguageTypeScript:
		langExt = NewTypeScriptExtractor()
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{langExtractor: langExt, logger: slog.Default()}, nil
}

// Language returns the language tag of the wrapped walker.
func (e *Extractor) Language() string {
	return e.langExtractor.Language()
}

// Run scans root and writes NDJSON records for every file to w.
// Files that cannot be read or parsed are logged and skipped; a write
// failure or a cancelled context aborts the run.
func (e *Extractor) Run(ctx context.Context, root string, w io.Writer) error {
	files, err := crawler.NewCrawler(root).Collect(root, e.langExtractor.Extensions())
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	project := make(map[string]bool, len(files))
	for _, f := range files {
		project[f.Rel] = true
	}

	emit := NewEmitter(w)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		content, err := os.ReadFile(f.Path)
		if err != nil {
			e.logger.Warn("skipping unreadable file", slog.String("file", f.Rel), slog.Any("error", err))
			continue
		}

		src := &SourceFile{Rel: f.Rel, Content: content, Project: project}
		if err := e.langExtractor.ExtractFile(ctx, src, emit); err != nil {
			e.logger.Warn("skipping unparsable file",
				slog.String("language", e.langExtractor.Language()),
				slog.String("file", f.Rel),
				slog.Any("error", err))
		}
		if err := emit.Err(); err != nil {
			return err
		}
	}

	e.logger.Debug("extraction finished",
		slog.String("language", e.langExtractor.Language()),
		slog.Int("files", len(files)),
		slog.Int("records", emit.Count()))
	return nil
}
