package analyzer

import (
	"sort"

	"github.com/dejo1307/sjui/internal/facts"
	"github.com/dejo1307/sjui/internal/layout"
)

// Facts converts the analysis result into facts for the store. Every fact
// carries the layout's relative path as File so that the store can replace
// them when the layout is regenerated.
func (r *Result) Facts() []facts.Fact {
	key := LayoutKey(r.Rel)
	file := r.Rel

	layoutFact := facts.Fact{
		Kind: facts.KindLayout,
		Name: key,
		File: file,
		Props: map[string]any{
			"partial":       layout.IsPartialFile(r.Rel),
			"binding_class": layout.BindingClassName(r.Name),
			"view_struct":   layout.ViewStructName(r.Name),
			"views":         len(r.WeakVars),
			"data_fields":   len(r.DataSets),
		},
	}
	if len(r.UnknownTypes) > 0 {
		layoutFact.Props["unknown_types"] = r.UnknownTypes
	}

	var out []facts.Fact
	seenInclude := make(map[string]bool)
	for _, e := range r.Edges {
		if e.From != r.Rel {
			continue
		}
		target := LayoutKey(e.To)
		if seenInclude[target] {
			continue
		}
		seenInclude[target] = true
		layoutFact.Relations = append(layoutFact.Relations, facts.Relation{Kind: facts.RelIncludes, Target: target})
	}

	for _, d := range r.DataSets {
		name := key + "." + d.Name
		layoutFact.Relations = append(layoutFact.Relations, facts.Relation{Kind: facts.RelDeclares, Target: name})
		props := map[string]any{"class": d.Class, "optional": d.IsOptional()}
		if d.HasDefault {
			props["default"] = d.DefaultValue
		}
		out = append(out, facts.Fact{Kind: facts.KindData, Name: name, File: file, Props: props})
	}

	views := make(map[string]int)
	for _, v := range r.WeakVars {
		name := key + "#" + v.ID
		layoutFact.Relations = append(layoutFact.Relations, facts.Relation{Kind: facts.RelDeclares, Target: name})
		views[v.ID] = len(out)
		out = append(out, facts.Fact{
			Kind:  facts.KindView,
			Name:  name,
			File:  file,
			Props: map[string]any{"id": v.ID, "type": v.Type, "class": v.Class, "var": v.Name},
		})
	}

	types := make([]string, 0, len(r.Assignments))
	for typ := range r.Assignments {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		for _, a := range r.Assignments[typ] {
			idx, ok := views[a.ViewID]
			if !ok || !a.Bound() {
				continue
			}
			for _, ident := range layout.ExprIdents(a.Expr) {
				rel := facts.Relation{Kind: facts.RelBinds, Target: key + "." + ident}
				if !hasRelation(out[idx].Relations, rel) {
					out[idx].Relations = append(out[idx].Relations, rel)
				}
			}
		}
	}

	for _, h := range r.EventHandlers {
		name := key + "." + h.Handler + "()"
		if idx, ok := views[h.ViewID]; ok {
			rel := facts.Relation{Kind: facts.RelHandles, Target: name}
			if !hasRelation(out[idx].Relations, rel) {
				out[idx].Relations = append(out[idx].Relations, rel)
			}
		}
		if !containsFact(out, name) {
			out = append(out, facts.Fact{
				Kind:  facts.KindHandler,
				Name:  name,
				File:  file,
				Props: map[string]any{"handler": h.Handler, "event": h.Event, "view": h.ViewID},
			})
			layoutFact.Relations = append(layoutFact.Relations, facts.Relation{Kind: facts.RelDeclares, Target: name})
		}
	}

	for _, pb := range r.PartialBindings {
		target := LayoutKey(pb.Rel)
		for _, k := range pb.SharedKeys() {
			rel := facts.Relation{Kind: facts.RelShares, Target: target + "." + k}
			if !hasRelation(layoutFact.Relations, rel) {
				layoutFact.Relations = append(layoutFact.Relations, rel)
			}
		}
	}

	return append([]facts.Fact{layoutFact}, out...)
}

func hasRelation(rels []facts.Relation, rel facts.Relation) bool {
	for _, r := range rels {
		if r == rel {
			return true
		}
	}
	return false
}

func containsFact(ff []facts.Fact, name string) bool {
	for _, f := range ff {
		if f.Name == name {
			return true
		}
	}
	return false
}
