package extractor

import "codegraph/internal/graph"

// RecordType tags one line of extractor output.
type RecordType string

const (
	RecordSymbol    RecordType = "symbol"
	RecordEdge      RecordType = "edge"
	RecordCall      RecordType = "call"
	RecordNameIndex RecordType = "name_index"
)

// Record is the wire form of a single NDJSON line. Which fields are set
// depends on Type.
type Record struct {
	Type RecordType `json:"type"`

	Symbol *graph.Symbol `json:"symbol,omitempty"`
	Edge   *graph.Edge   `json:"edge,omitempty"`

	// call
	CalleeName string `json:"calleeName,omitempty"`
	File       string `json:"file,omitempty"`
	ModID      string `json:"modId,omitempty"`

	// name_index (File is shared with call)
	Index map[string][]graph.Symbol `json:"index,omitempty"`
}

// CallRef is an unresolved call: the callee's textual name, the file the call
// was seen in and the id of the calling context.
type CallRef struct {
	CalleeName string `json:"calleeName"`
	File       string `json:"file"`
	ModID      string `json:"modId"`
}

// Output is everything one extractor produced in a run.
type Output struct {
	Source  string
	Symbols []graph.Symbol
	Edges   []graph.Edge
	Calls   []CallRef

	Records int // well-formed records read
	Skipped int // malformed lines dropped
}

// NewOutput creates an empty output for the named source.
func NewOutput(source string) *Output {
	return &Output{
		Source:  source,
		Symbols: []graph.Symbol{},
		Edges:   []graph.Edge{},
		Calls:   []CallRef{},
	}
}

// Add appends a decoded record to the matching list.
func (o *Output) Add(rec Record) {
	o.Records++
	switch rec.Type {
	case RecordSymbol:
		o.Symbols = append(o.Symbols, *rec.Symbol)
	case RecordEdge:
		o.Edges = append(o.Edges, *rec.Edge)
	case RecordCall:
		o.Calls = append(o.Calls, CallRef{CalleeName: rec.CalleeName, File: rec.File, ModID: rec.ModID})
	case RecordNameIndex:
		// Per-file name tables are advisory; the merge builds its own.
	}
}
