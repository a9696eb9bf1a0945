// Package scaffold creates starting files for new layouts and components:
// a screen layout with its controller, a partial fragment, a custom
// component, or a collection adapter with its cell layout.
package scaffold

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/dejo1307/sjui/internal/config"
	"github.com/dejo1307/sjui/internal/generators"
	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/project"
)

// Scaffold kinds.
const (
	KindView      = "view"
	KindPartial   = "partial"
	KindConverter = "converter"
	KindAdapter   = "adapter"
)

// Kinds lists the supported scaffold kinds.
func Kinds() []string {
	return []string{KindView, KindPartial, KindConverter, KindAdapter}
}

// ErrExists is returned when a file to create is already present.
var ErrExists = errors.New("file already exists")

var validName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Result lists what a scaffold created.
type Result struct {
	Files []string // relative to the source root
	Notes []string // follow-up instructions for the user
}

// Scaffolder writes scaffolds into a project.
type Scaffolder struct {
	cfg     *config.Config
	root    string
	mutator project.Mutator

	// Force overwrites existing files.
	Force bool
}

// New creates a Scaffolder for the project at root. mutator may be nil.
func New(cfg *config.Config, root string, mutator project.Mutator) *Scaffolder {
	return &Scaffolder{cfg: cfg, root: root, mutator: mutator}
}

type params struct {
	ID          string // layout base name
	Title       string
	Type        string // Swift type prefix
	Binding     string
	Layout      string // layout key
	View        string
	CellBinding string
	CellLayout  string
}

type file struct {
	rel  string
	tmpl *template.Template
}

// Generate creates the scaffold of the given kind. name may carry a
// directory, e.g. "settings/profile".
func (s *Scaffolder) Generate(ctx context.Context, kind, name string) (*Result, error) {
	dir, base, err := splitName(name)
	if err != nil {
		return nil, err
	}
	p := params{
		ID:      base,
		Title:   layout.PascalCase(base),
		Type:    layout.PascalCase(base),
		Binding: layout.BindingClassName(base),
		Layout:  path.Join(dir, base),
		View:    layout.ViewStructName(base),
	}

	layouts := s.cfg.Layouts
	views := s.cfg.Views
	var files []file
	res := &Result{}

	switch kind {
	case KindView:
		files = append(files, file{path.Join(layouts, dir, base+".json"), viewLayout})
		if s.cfg.GeneratesUIKit() {
			files = append(files, file{path.Join(views, dir, p.Type+"ViewController.swift"), viewController})
		}
		if s.cfg.GeneratesSwiftUI() {
			files = append(files, file{path.Join(views, dir, p.Type+"Screen.swift"), swiftUIScreen})
		}
		res.Notes = append(res.Notes, "Run `sjui build` to generate the binding and view for "+p.Layout+".")
	case KindPartial:
		files = append(files, file{path.Join(layouts, dir, "_"+base+".json"), partialLayout})
		res.Notes = append(res.Notes, fmt.Sprintf("Include it with {\"include\": %q}.", p.Layout))
	case KindConverter:
		files = append(files, file{path.Join(views, "Custom", p.Type+".swift"), customComponent})
		var snippet bytes.Buffer
		if err := converterSnippet.Execute(&snippet, p); err != nil {
			return nil, err
		}
		res.Notes = append(res.Notes, "Register the component in sjui.config.yaml:\n"+snippet.String())
	case KindAdapter:
		p.CellLayout = path.Join(dir, base+"_cell")
		p.CellBinding = layout.BindingClassName(base + "_cell")
		files = append(files,
			file{path.Join(layouts, dir, base+"_cell.json"), adapterCellLayout},
			file{path.Join(views, dir, p.Type+"Adapter.swift"), adapter},
		)
		res.Notes = append(res.Notes, "Run `sjui build` to generate "+p.CellBinding+".")
	default:
		return nil, fmt.Errorf("unknown scaffold kind %q (want one of %s)", kind, strings.Join(Kinds(), ", "))
	}

	srcRoot := filepath.Join(s.root, s.cfg.Source)
	if !s.Force {
		for _, f := range files {
			if _, err := os.Stat(filepath.Join(srcRoot, filepath.FromSlash(f.rel))); err == nil {
				return nil, fmt.Errorf("%s: %w (use --force to overwrite)", f.rel, ErrExists)
			}
		}
	}

	w := generators.NewWriter(srcRoot)
	err = w.Transaction(p.Layout, func(w *generators.Writer) error {
		for _, f := range files {
			var buf bytes.Buffer
			if err := f.tmpl.Execute(&buf, p); err != nil {
				return fmt.Errorf("rendering %s: %w", f.rel, err)
			}
			if _, err := w.Write(f.rel, buf.Bytes()); err != nil {
				return err
			}
			res.Files = append(res.Files, f.rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[scaffold] created %s %s (%d files)", kind, p.Layout, len(res.Files))

	s.addSwiftFiles(ctx, res.Files)
	return res, nil
}

// addSwiftFiles adds created Swift sources to the host project, grouped by
// directory. Layout JSON is bundled as a resource and left alone.
func (s *Scaffolder) addSwiftFiles(ctx context.Context, files []string) {
	if s.mutator == nil {
		return
	}
	groups := make(map[string][]string)
	var order []string
	for _, f := range files {
		if path.Ext(f) != ".swift" {
			continue
		}
		g := path.Dir(f)
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], f)
	}
	for _, g := range order {
		if err := s.mutator.AddFiles(ctx, g, groups[g]); err != nil {
			log.Printf("[scaffold] adding %s to project: %v", g, err)
		}
	}
}

func splitName(name string) (dir, base string, err error) {
	clean := path.Clean("/" + filepath.ToSlash(strings.TrimSpace(name)))
	clean = strings.TrimPrefix(clean, "/")
	clean = strings.TrimSuffix(clean, ".json")
	dir, base = path.Split(clean)
	dir = strings.TrimSuffix(dir, "/")
	base = strings.TrimPrefix(base, "_")
	if !validName.MatchString(base) {
		return "", "", fmt.Errorf("invalid name %q: use letters, digits, '_' or '-'", name)
	}
	return dir, base, nil
}
