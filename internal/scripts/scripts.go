// Package scripts indexes the handler functions declared in the project's
// hot-reload scripts so that layout event handlers can be checked against
// them.
package scripts

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/dejo1307/sjui/internal/facts"
)

// Handler is one function a script declares.
type Handler struct {
	Name     string `json:"name"`
	Class    string `json:"class,omitempty"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Exported bool   `json:"exported"`
	Kind     string `json:"kind"` // function, arrow or method
}

// Function kinds.
const (
	KindFunction = "function"
	KindArrow    = "arrow"
	KindMethod   = "method"
)

// IsScript reports whether path has a script extension.
func IsScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".js", ".mjs":
		return true
	}
	return false
}

// Files lists the script files under dir, relative to root and sorted. A
// missing directory yields no files.
func Files(root, dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != dir && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsScript(path) || strings.HasSuffix(path, ".d.ts") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Index parses files (relative to root) and returns one script_handler fact
// per declared function. Unreadable files are logged and skipped.
func Index(ctx context.Context, root string, files []string) ([]facts.Fact, error) {
	var all []facts.Fact
	for _, rel := range files {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}
		src, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			log.Printf("[scripts] error reading %s: %v", rel, err)
			continue
		}
		all = append(all, Facts(rel, Parse(src, rel))...)
	}
	return all, nil
}

// Facts converts the handlers of one script into facts.
func Facts(rel string, handlers []Handler) []facts.Fact {
	key := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
	lang := "typescript"
	if ext := strings.ToLower(filepath.Ext(rel)); ext == ".js" || ext == ".mjs" {
		lang = "javascript"
	}
	out := make([]facts.Fact, 0, len(handlers))
	for _, h := range handlers {
		name := key + "." + h.Name
		if h.Class != "" {
			name = key + "." + h.Class + "." + h.Name
		}
		props := map[string]any{
			"function": h.Name,
			"exported": h.Exported,
			"kind":     h.Kind,
			"language": lang,
		}
		if h.Class != "" {
			props["class"] = h.Class
		}
		out = append(out, facts.Fact{Kind: facts.KindScript, Name: name, File: h.File, Line: h.Line, Props: props})
	}
	return out
}

// Parse returns the top-level functions, function-valued constants and class
// methods declared in src. JavaScript is parsed with the TypeScript grammar.
func Parse(src []byte, rel string) []Handler {
	lang := typescript.LanguageTypescript()
	if strings.HasSuffix(rel, ".tsx") {
		lang = typescript.LanguageTSX()
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitter.NewLanguage(lang)); err != nil {
		log.Printf("[scripts] %s: %v", rel, err)
		return nil
	}

	tree := parser.Parse(src, nil)
	defer tree.Close()

	root := tree.RootNode()
	var out []Handler
	for i := range root.ChildCount() {
		out = append(out, declarations(root.Child(i), src, rel, false)...)
	}
	return out
}

func declarations(node *sitter.Node, src []byte, rel string, exported bool) []Handler {
	line := int(node.StartPosition().Row) + 1

	switch node.Kind() {
	case "export_statement":
		for _, kind := range []string{"function_declaration", "class_declaration", "lexical_declaration", "variable_declaration"} {
			if decl := findChildByKind(node, kind); decl != nil {
				return declarations(decl, src, rel, true)
			}
		}

	case "function_declaration":
		if name := findChildByKind(node, "identifier"); name != nil {
			return []Handler{{Name: nodeText(name, src), File: rel, Line: line, Exported: exported, Kind: KindFunction}}
		}

	case "lexical_declaration", "variable_declaration":
		var out []Handler
		for j := range node.ChildCount() {
			decl := node.Child(j)
			if decl.Kind() != "variable_declarator" {
				continue
			}
			name := findChildByKind(decl, "identifier")
			if name == nil {
				continue
			}
			kind := ""
			switch {
			case findChildByKind(decl, "arrow_function") != nil:
				kind = KindArrow
			case findChildByKind(decl, "function_expression") != nil, findChildByKind(decl, "function") != nil:
				kind = KindFunction
			}
			if kind == "" {
				continue
			}
			out = append(out, Handler{Name: nodeText(name, src), File: rel, Line: int(decl.StartPosition().Row) + 1, Exported: exported, Kind: kind})
		}
		return out

	case "class_declaration":
		name := findChildByKind(node, "type_identifier")
		if name == nil {
			name = findChildByKind(node, "identifier")
		}
		body := findChildByKind(node, "class_body")
		if name == nil || body == nil {
			return nil
		}
		class := nodeText(name, src)
		var out []Handler
		for j := range body.ChildCount() {
			member := body.Child(j)
			if member.Kind() != "method_definition" {
				continue
			}
			m := findChildByKind(member, "property_identifier")
			if m == nil {
				continue
			}
			method := nodeText(m, src)
			if method == "constructor" || private(member, src) {
				continue
			}
			out = append(out, Handler{
				Name:     method,
				Class:    class,
				File:     rel,
				Line:     int(member.StartPosition().Row) + 1,
				Exported: exported,
				Kind:     KindMethod,
			})
		}
		return out
	}
	return nil
}

func private(member *sitter.Node, src []byte) bool {
	for k := range member.ChildCount() {
		c := member.Child(k)
		if c.Kind() == "accessibility_modifier" && nodeText(c, src) == "private" {
			return true
		}
	}
	return false
}

func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	for i := range node.ChildCount() {
		child := node.Child(i)
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

func nodeText(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}
