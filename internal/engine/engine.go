package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dejo1307/sjui/internal/analyzer"
	"github.com/dejo1307/sjui/internal/cache"
	"github.com/dejo1307/sjui/internal/config"
	"github.com/dejo1307/sjui/internal/converters"
	"github.com/dejo1307/sjui/internal/diagnostics"
	"github.com/dejo1307/sjui/internal/diagnostics/cycles"
	"github.com/dejo1307/sjui/internal/diagnostics/usage"
	"github.com/dejo1307/sjui/internal/facts"
	"github.com/dejo1307/sjui/internal/generators"
	"github.com/dejo1307/sjui/internal/generators/binding"
	"github.com/dejo1307/sjui/internal/generators/swiftuigen"
	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
	"github.com/dejo1307/sjui/internal/project"
	"github.com/dejo1307/sjui/internal/scripts"
	"github.com/dejo1307/sjui/internal/summary"
)

// Report file names written to the cache directory after each build.
const (
	FactsFile    = "facts.jsonl"
	InsightsFile = "insights.json"
	MetaFile     = "snapshot.meta.json"
)

// Engine orchestrates the build pipeline.
type Engine struct {
	mu sync.Mutex

	cfg         *config.Config
	root        string
	generators  *generators.Registry
	diagnostics *diagnostics.Registry
	summary     *summary.Renderer
	mutator     project.Mutator
	store       *facts.Store
	snapshot    *facts.Snapshot
	reports     []facts.Artifact
}

// BuildOptions controls a build run.
type BuildOptions struct {
	// Force ignores the build cache and regenerates every layout.
	Force bool
}

// New creates an Engine for the project at root. Generators and
// diagnostics must be registered after creation, or RegisterDefaults used.
func New(cfg *config.Config, root string) (*Engine, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	e := &Engine{
		cfg:         cfg,
		root:        abs,
		generators:  generators.NewRegistry(),
		diagnostics: diagnostics.NewRegistry(),
		store:       facts.NewStore(),
	}
	if cfg.Project.Manifest != "" {
		e.mutator = project.NewManifestMutator(filepath.Join(abs, cfg.Project.Manifest), cfg.ProjectName)
	}
	return e, nil
}

// RegisterDefaults registers the generators selected by the configured mode,
// the built-in diagnostics and the build summary.
func (e *Engine) RegisterDefaults() {
	colors := mapping.NewColorResolver(e.cfg.Colors)
	if e.cfg.GeneratesUIKit() {
		e.RegisterGenerator(binding.New(binding.Options{
			Dir:           e.cfg.Bindings,
			BaseClass:     e.cfg.Binding.BaseClass,
			Imports:       e.cfg.Binding.Imports,
			CustomModules: e.cfg.CustomModules(),
			Colors:        colors,
			Converters:    converters.Default(),
		}))
	}
	if e.cfg.GeneratesSwiftUI() {
		e.RegisterGenerator(swiftuigen.New(swiftuigen.Options{
			Dir:           e.cfg.Views,
			Custom:        e.cfg.CustomViews(),
			CustomModules: e.cfg.CustomModules(),
			Colors:        colors,
		}))
	}
	e.RegisterDiagnostic(cycles.New())
	e.RegisterDiagnostic(usage.NewUndeclaredHandlers())
	e.RegisterDiagnostic(usage.NewUnusedData())
	e.summary = summary.New(0)
}

// RegisterGenerator adds a generator to the engine.
func (e *Engine) RegisterGenerator(g generators.Generator) {
	e.generators.Register(g)
}

// RegisterDiagnostic adds a diagnostic to the engine.
func (e *Engine) RegisterDiagnostic(d diagnostics.Diagnostic) {
	e.diagnostics.Register(d)
}

// SetMutator replaces the project mutator. Nil disables project updates.
func (e *Engine) SetMutator(m project.Mutator) {
	e.mutator = m
}

// Mutator returns the project mutator, or nil.
func (e *Engine) Mutator() project.Mutator {
	return e.mutator
}

// Store returns the fact store.
func (e *Engine) Store() *facts.Store {
	return e.store
}

// Snapshot returns the last build snapshot, or nil.
func (e *Engine) Snapshot() *facts.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// Config returns the engine config.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Root returns the absolute project root.
func (e *Engine) Root() string {
	return e.root
}

// SourceRoot returns the directory generated file names are relative to.
func (e *Engine) SourceRoot() string {
	return filepath.Join(e.root, e.cfg.Source)
}

// LayoutsDir returns the absolute layouts directory.
func (e *Engine) LayoutsDir() string {
	return e.cfg.Path(e.root, e.cfg.Layouts)
}

// CacheDir returns the absolute build cache directory.
func (e *Engine) CacheDir() string {
	return filepath.Join(e.root, e.cfg.Cache.Dir)
}

// Analyzer returns an analyzer configured for the project.
func (e *Engine) Analyzer() *analyzer.Analyzer {
	return analyzer.New(analyzer.Options{
		Root:   e.LayoutsDir(),
		Styles: layout.NewStyles(e.cfg.Path(e.root, e.cfg.Styles)),
		Custom: e.cfg.CustomClasses(),
	})
}

// LayoutPath resolves a layout name ("home", "common/header", "home.json")
// or a path relative to the layouts directory to a file.
func (e *Engine) LayoutPath(name string) (string, error) {
	dir := e.LayoutsDir()
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	if strings.HasSuffix(name, ".json") {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	name = strings.TrimSuffix(name, ".json")
	base := path.Base(name)
	sub := path.Dir(name)
	for _, cand := range []string{base + ".json", "_" + base + ".json"} {
		p := filepath.Join(dir, filepath.FromSlash(sub), cand)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("layout %q not found in %s", name, dir)
}

// Build runs the full pipeline: walk -> analyze -> generate -> diagnose ->
// report. Layouts the cache considers fresh are skipped; a failing layout
// is logged and recorded in the snapshot without stopping the batch.
func (e *Engine) Build(ctx context.Context, opts BuildOptions) (*facts.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	layoutsDir := e.LayoutsDir()

	files, err := e.walkLayouts(layoutsDir)
	if err != nil {
		return nil, fmt.Errorf("walking layouts: %w", err)
	}
	log.Printf("[engine] found %d layouts in %s", len(files), layoutsDir)

	bc := cache.New(e.CacheDir(), layoutsDir)
	if opts.Force {
		e.store.Clear()
	} else {
		bc.Load()
		e.loadPreviousFacts()
	}

	w := generators.NewWriter(e.SourceRoot())
	an := e.Analyzer()
	meta := facts.SnapshotMeta{
		Root:        e.root,
		Generators:  e.generators.Names(),
		Diagnostics: e.diagnostics.Names(),
		Layouts:     len(files),
	}

	var artifacts []facts.Artifact
	current := make(map[string]bool, len(files))
	for _, rel := range files {
		current[rel] = true
	}
	owners := e.outputOwners(current)
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := filepath.Join(layoutsDir, filepath.FromSlash(rel))
		if !opts.Force && !bc.NeedsUpdate(p) && len(e.store.ByFile(rel)) > 0 {
			meta.Skipped++
			continue
		}

		arts, err := e.buildLayout(ctx, an, w, p, rel, bc, owners)
		if err != nil {
			log.Printf("[engine] %s: %v", rel, err)
			meta.Failed = append(meta.Failed, facts.FileFailure{File: rel, Error: err.Error()})
			continue
		}
		meta.Generated = append(meta.Generated, rel)
		artifacts = append(artifacts, arts...)
	}
	log.Printf("[engine] regenerated %d layouts, %d up to date, %d failed",
		len(meta.Generated), meta.Skipped, len(meta.Failed))

	meta.Removed = e.removeDeleted(ctx, w, bc, current)
	e.addToProject(ctx, artifacts)

	if err := e.indexScripts(ctx); err != nil {
		log.Printf("[engine] indexing scripts: %v", err)
	}
	e.store.BuildGraph()

	insights := e.diagnostics.Run(ctx, e.store)
	log.Printf("[engine] produced %d insights using %d diagnostics", len(insights), len(e.diagnostics.All()))

	if err := bc.Save(start); err != nil {
		log.Printf("[engine] saving build cache: %v", err)
	}

	meta.Writes = w.Writes()
	meta.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	meta.Duration = time.Since(start).String()
	meta.FactCount = e.store.Count()
	meta.InsightCount = len(insights)
	meta.Counts = e.countKinds()

	snapshot := &facts.Snapshot{
		Meta:      meta,
		Facts:     e.store.All(),
		Insights:  insights,
		Artifacts: artifacts,
	}

	e.reports = nil
	if e.summary != nil {
		reports, err := e.summary.Render(ctx, snapshot)
		if err != nil {
			log.Printf("[engine] summary error: %v", err)
		}
		e.reports = reports
	}

	e.snapshot = snapshot
	if e.reportsStale(opts.Force) {
		if err := e.writeReports(); err != nil {
			log.Printf("[engine] writing reports: %v", err)
		}
	}
	log.Printf("[engine] build finished in %s (%d files written)", meta.Duration, meta.Writes)
	return snapshot, nil
}

// buildLayout analyzes one layout and writes every generator's output in a
// single transaction, so a failure leaves no half-written files behind.
// owners maps generated paths to the layout that produced them; a layout
// may not overwrite another layout's output.
func (e *Engine) buildLayout(ctx context.Context, an *analyzer.Analyzer, w *generators.Writer, p, rel string, bc *cache.Manager, owners map[string]string) ([]facts.Artifact, error) {
	res, err := an.Analyze(p)
	if err != nil {
		e.store.ReplaceFile(rel)
		return nil, err
	}

	var arts []facts.Artifact
	err = w.Transaction(rel, func(w *generators.Writer) error {
		for _, g := range e.generators.All() {
			out, err := g.Generate(ctx, res)
			if err != nil {
				return &generators.GenerationError{File: rel, Generator: g.Name(), Err: err}
			}
			for _, a := range out {
				if owner, ok := owners[a.Name]; ok && owner != rel {
					return &generators.GenerationError{File: rel, Generator: g.Name(),
						Err: fmt.Errorf("%s is already generated from %s", a.Name, owner)}
				}
				if _, err := w.Write(a.Name, a.Content); err != nil {
					return &generators.GenerationError{File: a.Name, Generator: g.Name(), Err: err}
				}
			}
			arts = append(arts, out...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ff := res.Facts()
	outputs := make([]string, 0, len(arts))
	for _, a := range arts {
		outputs = append(outputs, a.Name)
	}
	ff[0].Props["outputs"] = outputs
	for _, out := range outputs {
		owners[out] = rel
	}
	e.store.ReplaceFile(rel, ff...)
	bc.Record(res.IncludingFiles)
	return arts, nil
}

// removeDeleted deletes the generated files of layouts that no longer exist
// and drops them from the project, the store and the cache.
func (e *Engine) removeDeleted(ctx context.Context, w *generators.Writer, bc *cache.Manager, current map[string]bool) []string {
	owned := e.outputOwners(current)
	var removed []string
	for _, f := range e.store.Layouts() {
		if current[f.File] {
			continue
		}
		var outs []string
		for _, out := range outputsOf(f) {
			if _, ok := owned[out]; !ok {
				outs = append(outs, out)
			}
		}
		for _, out := range outs {
			if _, err := w.Remove(out); err != nil {
				log.Printf("[engine] removing %s: %v", out, err)
			}
		}
		w.Commit()
		if e.mutator != nil && len(outs) > 0 {
			if err := e.mutator.RemoveFiles(ctx, outs); err != nil {
				log.Printf("[engine] updating project: %v", err)
			}
		}
		e.store.ReplaceFile(f.File)
		bc.Forget(f.File)
		removed = append(removed, f.File)
		log.Printf("[engine] %s was deleted, removed %d generated files", f.File, len(outs))
	}
	sort.Strings(removed)
	return removed
}

func (e *Engine) addToProject(ctx context.Context, artifacts []facts.Artifact) {
	if e.mutator == nil || len(artifacts) == 0 {
		return
	}
	groups := make(map[string][]string)
	for _, a := range artifacts {
		group := path.Dir(a.Name)
		if a.Type == "binding" && e.cfg.Project.Group != "" {
			group = e.cfg.Project.Group
		}
		groups[group] = append(groups[group], a.Name)
	}
	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)
	for _, g := range names {
		if err := e.mutator.AddFiles(ctx, g, groups[g]); err != nil {
			log.Printf("[engine] updating project: %v", err)
		}
	}
}

// indexScripts reparses every script and replaces its facts.
func (e *Engine) indexScripts(ctx context.Context) error {
	for _, f := range e.store.Files() {
		if scripts.IsScript(f) {
			e.store.ReplaceFile(f)
		}
	}
	src := e.SourceRoot()
	files, err := scripts.Files(src, filepath.Join(src, e.cfg.Scripts))
	if err != nil {
		return err
	}
	ff, err := scripts.Index(ctx, src, files)
	if err != nil {
		return err
	}
	byFile := make(map[string][]facts.Fact)
	for _, f := range ff {
		byFile[f.File] = append(byFile[f.File], f)
	}
	for _, file := range files {
		if ff := byFile[file]; len(ff) > 0 {
			e.store.ReplaceFile(file, ff...)
		}
	}
	if len(files) > 0 {
		log.Printf("[engine] indexed %d script handlers in %d scripts", len(ff), len(files))
	}
	return nil
}

// outputOwners maps every generated path to the existing layout it was
// generated from.
func (e *Engine) outputOwners(current map[string]bool) map[string]string {
	owners := make(map[string]string)
	for _, f := range e.store.Layouts() {
		if !current[f.File] {
			continue
		}
		for _, out := range outputsOf(f) {
			owners[out] = f.File
		}
	}
	return owners
}

func outputsOf(f facts.Fact) []string {
	switch v := f.Props["outputs"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (e *Engine) countKinds() map[string]int {
	counts := make(map[string]int)
	for _, f := range e.store.All() {
		counts[f.Kind]++
	}
	return counts
}

// LoadPrevious restores facts from the last build so queries work before
// the first Build call. It returns the number of facts loaded.
func (e *Engine) LoadPrevious() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadPreviousFacts()
	if e.store.Count() > 0 {
		e.store.BuildGraph()
	}
	return e.store.Count()
}

// loadPreviousFacts restores the store from the last build's facts.jsonl
// when nothing is loaded yet. Facts of fresh layouts are kept from there.
func (e *Engine) loadPreviousFacts() {
	if e.store.Count() > 0 {
		return
	}
	p := filepath.Join(e.CacheDir(), FactsFile)
	if err := e.store.ReadJSONLFile(p); err != nil {
		e.store.Clear()
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[engine] ignoring previous facts: %v", err)
		}
		return
	}
	log.Printf("[engine] reloaded %d facts from %s", e.store.Count(), p)
}

// walkLayouts collects the layout files below dir, relative to it.
func (e *Engine) walkLayouts(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relRoot, err := filepath.Rel(e.root, p)
		if err != nil {
			return err
		}
		if e.isIgnored(relRoot, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != ".json" {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(files)
	return files, err
}

// isIgnored checks whether a path matches any ignore pattern.
func (e *Engine) isIgnored(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range e.cfg.Ignore {
		if strings.HasSuffix(pattern, "/**") {
			dirPrefix := strings.TrimSuffix(pattern, "/**")
			if relPath == dirPrefix || strings.HasPrefix(relPath, dirPrefix+"/") {
				return true
			}
		}

		matched, err := filepath.Match(pattern, relPath)
		if err == nil && matched {
			return true
		}

		// Patterns like **/*.bak match the file name at any depth.
		if strings.HasPrefix(pattern, "**/") {
			subPattern := strings.TrimPrefix(pattern, "**/")
			matched, err = filepath.Match(subPattern, filepath.Base(relPath))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(subPattern, relPath)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

// reportsStale reports whether the reports in the cache directory need
// rewriting. After a build that regenerated and removed nothing they are
// kept unless the facts or insights differ from the stored ones.
func (e *Engine) reportsStale(force bool) bool {
	meta := e.snapshot.Meta
	if force || len(meta.Generated) > 0 || len(meta.Removed) > 0 {
		return true
	}
	var buf bytes.Buffer
	if err := e.store.WriteJSONL(&buf); err != nil {
		return true
	}
	insights, err := json.MarshalIndent(e.snapshot.Insights, "", "  ")
	if err != nil {
		return true
	}
	for name, want := range map[string][]byte{FactsFile: buf.Bytes(), InsightsFile: insights} {
		got, err := os.ReadFile(filepath.Join(e.CacheDir(), name))
		if err != nil || !bytes.Equal(got, want) {
			return true
		}
	}
	for _, a := range e.reports {
		if _, err := os.Stat(filepath.Join(e.CacheDir(), a.Name)); err != nil {
			return true
		}
	}
	return false
}

// writeReports writes facts.jsonl, insights.json, snapshot.meta.json and the
// summary to the cache directory.
func (e *Engine) writeReports() error {
	outDir := e.CacheDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	for _, a := range e.reports {
		if err := os.WriteFile(filepath.Join(outDir, a.Name), a.Content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", a.Name, err)
		}
	}

	if err := e.store.WriteJSONLFile(filepath.Join(outDir, FactsFile)); err != nil {
		return fmt.Errorf("writing %s: %w", FactsFile, err)
	}

	insightsJSON, err := json.MarshalIndent(e.snapshot.Insights, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling insights: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, InsightsFile), insightsJSON, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", InsightsFile, err)
	}

	metaJSON, err := json.MarshalIndent(e.snapshot.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, MetaFile), metaJSON, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", MetaFile, err)
	}
	return nil
}

// GetArtifact returns a generated file or report by name.
func (e *Engine) GetArtifact(name string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return nil, fmt.Errorf("no build has run")
	}

	switch name {
	case FactsFile:
		var buf bytes.Buffer
		if err := e.store.WriteJSONL(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case InsightsFile:
		return json.MarshalIndent(e.snapshot.Insights, "", "  ")
	case MetaFile:
		return json.MarshalIndent(e.snapshot.Meta, "", "  ")
	}
	for _, a := range e.reports {
		if a.Name == name {
			return a.Content, nil
		}
	}
	for _, a := range e.snapshot.Artifacts {
		if a.Name == name {
			return a.Content, nil
		}
	}
	return nil, fmt.Errorf("artifact %q not found", name)
}
