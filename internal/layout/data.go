package layout

import (
	"fmt"
	"strings"
)

// DataField is a bindable property declared in a layout's "data" section.
type DataField struct {
	Name         string
	Class        string
	DefaultValue any
	HasDefault   bool
	Optional     bool
	Modifier     string
}

// IsOptional reports whether the generated property is optional. Fields
// without a default value are always optional.
func (d DataField) IsOptional() bool {
	return d.Optional || !d.HasDefault
}

// Raw converts the field back into its JSON declaration.
func (d DataField) Raw() map[string]any {
	m := map[string]any{"name": d.Name, "class": d.Class}
	if d.HasDefault {
		m["defaultValue"] = d.DefaultValue
	}
	if d.Optional {
		m["optional"] = true
	}
	if d.Modifier != "" {
		m["modifier"] = d.Modifier
	}
	return m
}

// ParseDataFields parses a "data" value: an array of declarations, each
// either a bare name (class String) or an object.
func ParseDataFields(v any) ([]DataField, error) {
	var entries []any
	switch t := v.(type) {
	case []any:
		entries = t
	case map[string]any, string:
		entries = []any{t}
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("data must be an array, got %T", v)
	}

	var fields []DataField
	for i, e := range entries {
		switch t := e.(type) {
		case string:
			if t == "" {
				return nil, fmt.Errorf("data[%d]: empty name", i)
			}
			fields = append(fields, DataField{Name: t, Class: "String"})
		case map[string]any:
			f, err := parseDataObject(t)
			if err != nil {
				return nil, fmt.Errorf("data[%d]: %w", i, err)
			}
			fields = append(fields, f)
		default:
			return nil, fmt.Errorf("data[%d]: unsupported declaration %T", i, e)
		}
	}
	return fields, nil
}

func parseDataObject(m map[string]any) (DataField, error) {
	name, _ := m["name"].(string)
	if name == "" {
		return DataField{}, fmt.Errorf("missing name")
	}
	f := DataField{Name: name, Class: "String"}
	if c, ok := m["class"].(string); ok && c != "" {
		f.Class = strings.TrimSpace(c)
	}
	if dv, ok := m["defaultValue"]; ok && dv != nil {
		f.DefaultValue = dv
		f.HasDefault = true
	}
	switch o := m["optional"].(type) {
	case bool:
		f.Optional = o
	case string:
		f.Optional = strings.EqualFold(o, "true")
	}
	if mod, ok := m["modifier"].(string); ok {
		f.Modifier = mod
	}
	if strings.HasSuffix(f.Class, "?") {
		f.Class = strings.TrimSuffix(f.Class, "?")
		f.Optional = true
	}
	return f, nil
}

// mergeData appends fields whose names are not yet present. Earlier
// declarations win.
func mergeData(existing, add []DataField) []DataField {
	seen := make(map[string]bool, len(existing))
	for _, f := range existing {
		seen[f.Name] = true
	}
	for _, f := range add {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		existing = append(existing, f)
	}
	return existing
}

// MergeData is the exported form of the first-wins merge.
func MergeData(existing, add []DataField) []DataField {
	return mergeData(existing, add)
}
