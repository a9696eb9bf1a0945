package facts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// Store holds the facts of the current build. Facts are replaced a layout
// file at a time when that file is regenerated. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	facts  []Fact
	byKind map[string][]int
	byFile map[string][]int
	byName map[string][]int
	graph  *Graph
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.facts = nil
	s.byKind = make(map[string][]int)
	s.byFile = make(map[string][]int)
	s.byName = make(map[string][]int)
	s.graph = nil
}

func (s *Store) index(f Fact) {
	i := len(s.facts)
	s.facts = append(s.facts, f)
	s.byKind[f.Kind] = append(s.byKind[f.Kind], i)
	if f.File != "" {
		s.byFile[f.File] = append(s.byFile[f.File], i)
	}
	if f.Name != "" {
		s.byName[f.Name] = append(s.byName[f.Name], i)
	}
}

// Add appends facts.
func (s *Store) Add(ff ...Fact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range ff {
		s.index(f)
	}
}

// ReplaceFile drops the facts recorded for file and adds ff in their place.
// The graph must be rebuilt afterwards.
func (s *Store) ReplaceFile(file string, ff ...Fact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.facts
	s.reset()
	for _, f := range old {
		if f.File != file {
			s.index(f)
		}
	}
	for _, f := range ff {
		s.index(f)
	}
}

// Clear removes every fact and the graph.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Count returns the number of facts.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}

// All returns a copy of every fact in insertion order.
func (s *Store) All() []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Fact(nil), s.facts...)
}

// Files returns the distinct files facts were recorded for, sorted.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byFile))
	for f := range s.byFile {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (s *Store) ByKind(kind string) []Fact { return s.lookup(s.byKind, kind) }
func (s *Store) ByFile(file string) []Fact { return s.lookup(s.byFile, file) }
func (s *Store) ByName(name string) []Fact { return s.lookup(s.byName, name) }

// Layouts returns every layout fact.
func (s *Store) Layouts() []Fact {
	return s.ByKind(KindLayout)
}

// ByRelation returns the facts carrying at least one relation of kind.
func (s *Store) ByRelation(kind string) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Fact
	for _, f := range s.facts {
		if f.HasRelation(kind) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Store) lookup(idx map[string][]int, key string) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Fact, 0, len(idx[key]))
	for _, i := range idx[key] {
		out = append(out, s.facts[i])
	}
	return out
}

// Filter selects facts for Find. Empty fields match everything; set fields
// must all match.
type Filter struct {
	Kind       string
	File       string // exact layout or script file
	FilePrefix string // e.g. "common/"
	Name       string // substring of the fact name
	Relation   string // fact has a relation of this kind
	Prop       string // fact has this property
	PropValue  string // and it formats to this value
	Offset     int
	Limit      int // default 100, at most 500
}

// Match reports whether f passes the filter, ignoring paging.
func (q Filter) Match(f Fact) bool {
	switch {
	case q.Kind != "" && f.Kind != q.Kind:
		return false
	case q.File != "" && f.File != q.File:
		return false
	case q.FilePrefix != "" && !strings.HasPrefix(f.File, q.FilePrefix):
		return false
	case q.Name != "" && !strings.Contains(f.Name, q.Name):
		return false
	case q.Relation != "" && !f.HasRelation(q.Relation):
		return false
	}
	if q.Prop != "" {
		v, ok := f.Props[q.Prop]
		if !ok {
			return false
		}
		if q.PropValue != "" && fmt.Sprint(v) != q.PropValue {
			return false
		}
	}
	return true
}

// Find returns one page of the facts matching q, plus the number of
// matches before paging.
func (s *Store) Find(q Filter) ([]Fact, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := s.facts
	if q.Kind != "" {
		candidates = make([]Fact, 0, len(s.byKind[q.Kind]))
		for _, i := range s.byKind[q.Kind] {
			candidates = append(candidates, s.facts[i])
		}
	}

	var matched []Fact
	for _, f := range candidates {
		if q.Match(f) {
			matched = append(matched, f)
		}
	}
	total := len(matched)
	if q.Offset >= total {
		return nil, total
	}
	matched = matched[max(q.Offset, 0):]
	if limit := clamp(q.Limit, 100, 500); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total
}

// BuildGraph indexes the relations of the current facts. Call it once all
// facts of a build are in.
func (s *Store) BuildGraph() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = NewGraph(s.facts)
}

// Graph returns the relation graph, or nil before BuildGraph.
func (s *Store) Graph() *Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// WriteJSONL writes one fact per line.
func (s *Store) WriteJSONL(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enc := json.NewEncoder(w)
	for _, f := range s.facts {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encoding fact %q: %w", f.Name, err)
		}
	}
	return nil
}

// WriteJSONLFile writes the facts to path.
func (s *Store) WriteJSONLFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := s.WriteJSONL(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSONL adds the facts read from r. Facts decoded before a malformed
// line stay in the store.
func (s *Store) ReadJSONL(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var f Fact
		if err := json.Unmarshal(sc.Bytes(), &f); err != nil {
			return fmt.Errorf("decoding fact on line %d: %w", line, err)
		}
		s.Add(f)
	}
	return sc.Err()
}

// ReadJSONLFile adds the facts stored at path.
func (s *Store) ReadJSONLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return s.ReadJSONL(f)
}
