package graph

// Kind is the closed set of declaration kinds a Symbol can carry.
type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindVariable Kind = "variable"
	KindModule   Kind = "module"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFunction, KindClass, KindMethod, KindVariable, KindModule:
		return true
	}
	return false
}

// EdgeType is the closed set of relations between two symbols.
type EdgeType string

const (
	EdgeDefines  EdgeType = "defines"   // module -> declared symbol
	EdgeCall     EdgeType = "call"      // calling context -> best-guess callee
	EdgeImport   EdgeType = "import"    // importing module -> imported module
	EdgeMemberOf EdgeType = "member_of" // class -> declared method
)

func (t EdgeType) Valid() bool {
	switch t {
	case EdgeDefines, EdgeCall, EdgeImport, EdgeMemberOf:
		return true
	}
	return false
}

// IsReference reports whether the edge type counts as a reference between
// symbols (call and import). Structural edges do not.
func (t EdgeType) IsReference() bool {
	switch t {
	case EdgeCall, EdgeImport:
		return true
	case EdgeDefines, EdgeMemberOf:
		return false
	}
	return false
}

// Range is a 1-based inclusive source span.
type Range struct {
	StartLine int `json:"startLine"`
	StartCol  int `json:"startCol"`
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
}

// Symbol is a named declaration site.
//
// For per-file module symbols Name is the normalized relative path; for
// external modules both Name and File hold the raw import specifier.
type Symbol struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Name     string `json:"name"`
	File     string `json:"file"`
	Range    Range  `json:"range"`
	Language string `json:"language"`
	ParentID string `json:"parentId,omitempty"`
}

// Edge is a directed, typed relation between two symbol ids.
type Edge struct {
	Src  string   `json:"src"`
	Type EdgeType `json:"type"`
	Dst  string   `json:"dst"`
}

// EdgeKey is the dedup identity of an edge.
type EdgeKey struct {
	Src  string
	Type EdgeType
	Dst  string
}

func (e Edge) Key() EdgeKey {
	return EdgeKey{Src: e.Src, Type: e.Type, Dst: e.Dst}
}
