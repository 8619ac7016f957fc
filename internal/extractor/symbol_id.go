package extractor

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"codegraph/internal/graph"
)

// idLength is the number of hex characters kept from the digest.
const idLength = 16

// HashID derives a stable identifier from an ordered list of identity fields.
// Each field is rendered with its default string form (nil becomes "") and
// the concatenation is hashed with SHA-1. The scheme matches the standalone
// Python extractor, so ids agree no matter which runtime produced them.
func HashID(parts ...any) string {
	h := sha1.New()
	for _, p := range parts {
		if p == nil {
			continue
		}
		fmt.Fprint(h, p)
	}
	return hex.EncodeToString(h.Sum(nil))[:idLength]
}

// SymbolID identifies a declaration by kind, name, file and start position.
func SymbolID(kind graph.Kind, name, file string, line, col int) string {
	return HashID(string(kind), name, file, line, col)
}

// ModuleID identifies the per-file module symbol of a source file.
func ModuleID(language, file string) string {
	return HashID(string(graph.KindModule), language, file, 1, 1)
}

// ExternalModuleID identifies the pseudo-module of an unresolved import specifier.
func ExternalModuleID(spec string) string {
	return HashID(string(graph.KindModule), spec, spec, 1, 1)
}
