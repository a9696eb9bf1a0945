package facts

// Fact is one thing known about the layout tree: a layout file, a view, a
// data field, an event handler or a script handler declaration.
type Fact struct {
	Kind      string         `json:"kind"`                // e.g. "layout", "view", "data", "handler"
	Name      string         `json:"name"`                // Canonical name
	File      string         `json:"file,omitempty"`      // Layout file relative to the layouts root
	Line      int            `json:"line,omitempty"`      // Line number (script handlers)
	Props     map[string]any `json:"props,omitempty"`     // Kind-specific properties
	Relations []Relation     `json:"relations,omitempty"` // Edges to other facts
}

// HasRelation reports whether f has at least one relation of kind.
func (f Fact) HasRelation(kind string) bool {
	for _, r := range f.Relations {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

// Relation represents a directed edge between two facts.
type Relation struct {
	Kind   string `json:"kind"`   // e.g. "includes", "declares", "handles"
	Target string `json:"target"` // Target fact name
}

// Fact kind constants.
const (
	KindLayout  = "layout"
	KindView    = "view"
	KindData    = "data"
	KindHandler = "handler"
	KindScript  = "script_handler"
)

// Relation kind constants.
const (
	RelIncludes = "includes" // layout -> fragment layout
	RelDeclares = "declares" // layout -> view, data field or handler
	RelHandles  = "handles"  // view -> handler
	RelBinds    = "binds"    // view -> data field referenced by "@{...}"
	RelShares   = "shares"   // layout -> fragment data fed through shared_data
)

// Insight is a diagnostic produced from the fact store.
type Insight struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"` // 0.0 - 1.0
	Evidence    []Evidence `json:"evidence"`
	Actions     []string   `json:"suggested_actions,omitempty"`
}

// Evidence links an insight back to concrete facts and files.
type Evidence struct {
	File   string `json:"file,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Fact   string `json:"fact,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Artifact is a generated output file.
type Artifact struct {
	Name      string `json:"name"`      // path relative to the project source root
	Content   []byte `json:"-"`         // Raw content
	Type      string `json:"type"`      // e.g. "binding", "swiftui"
	Generator string `json:"generator"` // generator that produced it
	Layout    string `json:"layout"`    // layout key it was generated from
}

// Snapshot holds the complete result of a build run.
type Snapshot struct {
	Meta      SnapshotMeta `json:"meta"`
	Facts     []Fact       `json:"facts"`
	Insights  []Insight    `json:"insights"`
	Artifacts []Artifact   `json:"artifacts"`
}

// SnapshotMeta contains metadata about a build run.
type SnapshotMeta struct {
	Root         string         `json:"root"`
	GeneratedAt  string         `json:"generated_at"`
	Duration     string         `json:"duration"`
	Generators   []string       `json:"generators"`
	Diagnostics  []string       `json:"diagnostics"`
	Layouts      int            `json:"layouts"`
	Generated    []string       `json:"generated,omitempty"`
	Skipped      int            `json:"skipped"`
	Failed       []FileFailure  `json:"failed,omitempty"`
	Removed      []string       `json:"removed,omitempty"`
	Writes       int            `json:"writes"`
	FactCount    int            `json:"fact_count"`
	InsightCount int            `json:"insight_count"`
	Counts       map[string]int `json:"counts,omitempty"`
}

// FileFailure records one layout whose generation failed.
type FileFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// OK reports whether every layout in the run generated successfully.
func (m SnapshotMeta) OK() bool {
	return len(m.Failed) == 0
}
