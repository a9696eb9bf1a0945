// Package constraints solves relative positioning: children of a relative
// container placed against the parent's edges or against each other by id.
package constraints

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// ErrCycle is returned when views are positioned relative to each other in a
// loop.
var ErrCycle = errors.New("relative positioning cycle")

// Size is a width and height in points.
type Size struct {
	W, H float64
}

// Rect is a solved frame relative to the parent's origin.
type Rect struct {
	X, Y, W, H float64
}

// Insets are edge distances: top, left, bottom, right.
type Insets [4]float64

// Rules are the positioning attributes of one view. View references hold
// sibling ids.
type Rules struct {
	AlignTop, AlignBottom, AlignLeft, AlignRight bool
	CenterHorizontal, CenterVertical             bool

	Above   string // alignTopOfView: bottom edge meets the view's top
	Below   string // alignBottomOfView
	LeftOf  string // alignLeftOfView
	RightOf string // alignRightOfView

	AlignTopView, AlignBottomView       string
	AlignLeftView, AlignRightView       string
	CenterVerticalView, CenterHorizView string
}

func (r Rules) refs() []string {
	var out []string
	for _, id := range []string{
		r.Above, r.Below, r.LeftOf, r.RightOf,
		r.AlignTopView, r.AlignBottomView, r.AlignLeftView, r.AlignRightView,
		r.CenterVerticalView, r.CenterHorizView,
	} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Item is one child to place.
type Item struct {
	ID      string
	Size    Size
	FillW   bool // width is matchParent
	FillH   bool // height is matchParent
	Margins Insets
	Rules   Rules
}

// Solve places items inside a parent of the given size and padding. Items
// referencing each other are solved in dependency order; references to ids
// that are not siblings are ignored. The result is keyed by item ID, with
// anonymous items keyed by their index ("#0", "#1", ...).
func Solve(parent Size, padding Insets, items []Item) (map[string]Rect, error) {
	keys := make([]string, len(items))
	byKey := make(map[string]int, len(items))
	for i, it := range items {
		k := it.ID
		if k == "" {
			k = fmt.Sprintf("#%d", i)
		}
		keys[i] = k
		byKey[k] = i
	}

	order, err := order(items, keys, byKey)
	if err != nil {
		return nil, err
	}

	inner := Rect{
		X: padding[1],
		Y: padding[0],
		W: parent.W - padding[1] - padding[3],
		H: parent.H - padding[0] - padding[2],
	}
	out := make(map[string]Rect, len(items))
	for _, i := range order {
		it := items[i]
		out[keys[i]] = place(inner, it, func(id string) (Rect, Insets, bool) {
			j, ok := byKey[id]
			if !ok {
				return Rect{}, Insets{}, false
			}
			r, ok := out[keys[j]]
			return r, items[j].Margins, ok
		})
	}
	return out, nil
}

// order returns item indices so that every item follows the items it
// references. Ties keep declaration order.
func order(items []Item, keys []string, byKey map[string]int) ([]int, error) {
	indeg := make([]int, len(items))
	dependents := make([][]int, len(items))
	for i, it := range items {
		seen := make(map[int]bool)
		for _, ref := range it.Rules.refs() {
			j, ok := byKey[ref]
			if !ok || j == i || seen[j] {
				continue
			}
			seen[j] = true
			indeg[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready, out []int
	for i := range items {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}
	for len(ready) > 0 {
		sort.Ints(ready)
		i := ready[0]
		ready = ready[1:]
		out = append(out, i)
		for _, d := range dependents[i] {
			indeg[d]--
			if indeg[d] == 0 {
				ready = append(ready, d)
			}
		}
	}
	if len(out) != len(items) {
		var stuck []string
		for i := range items {
			if indeg[i] > 0 {
				stuck = append(stuck, keys[i])
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(stuck, ", "))
	}
	return out, nil
}

type lookupFunc func(id string) (Rect, Insets, bool)

func place(p Rect, it Item, lookup lookupFunc) Rect {
	m := it.Margins
	r := Rect{W: it.Size.W, H: it.Size.H}
	if it.FillW {
		r.W = p.W - m[1] - m[3]
	}
	if it.FillH {
		r.H = p.H - m[0] - m[2]
	}
	r.X, r.W = horizontal(p, it, r.W, lookup)
	r.Y, r.H = vertical(p, it, r.H, lookup)
	return r
}

func horizontal(p Rect, it Item, w float64, lookup lookupFunc) (float64, float64) {
	m, rl := it.Margins, it.Rules
	left, hasLeft := 0.0, false
	right, hasRight := 0.0, false

	if rl.AlignLeft {
		left, hasLeft = p.X+m[1], true
	}
	if rl.AlignRight {
		right, hasRight = p.X+p.W-m[3], true
	}
	if t, tm, ok := lookup(rl.RightOf); ok {
		left, hasLeft = t.X+t.W+tm[3]+m[1], true
	}
	if t, tm, ok := lookup(rl.LeftOf); ok {
		right, hasRight = t.X-tm[1]-m[3], true
	}
	if t, _, ok := lookup(rl.AlignLeftView); ok {
		left, hasLeft = t.X+m[1], true
	}
	if t, _, ok := lookup(rl.AlignRightView); ok {
		right, hasRight = t.X+t.W-m[3], true
	}

	switch {
	case hasLeft && hasRight:
		if !it.FillW && w > 0 && w < right-left {
			return left, w
		}
		return left, right - left
	case hasLeft:
		return left, w
	case hasRight:
		return right - w, w
	}
	if t, _, ok := lookup(rl.CenterHorizView); ok {
		return t.X + (t.W-w)/2, w
	}
	if rl.CenterHorizontal {
		return p.X + (p.W-w)/2, w
	}
	return p.X + m[1], w
}

func vertical(p Rect, it Item, h float64, lookup lookupFunc) (float64, float64) {
	m, rl := it.Margins, it.Rules
	top, hasTop := 0.0, false
	bottom, hasBottom := 0.0, false

	if rl.AlignTop {
		top, hasTop = p.Y+m[0], true
	}
	if rl.AlignBottom {
		bottom, hasBottom = p.Y+p.H-m[2], true
	}
	if t, tm, ok := lookup(rl.Below); ok {
		top, hasTop = t.Y+t.H+tm[2]+m[0], true
	}
	if t, tm, ok := lookup(rl.Above); ok {
		bottom, hasBottom = t.Y-tm[0]-m[2], true
	}
	if t, _, ok := lookup(rl.AlignTopView); ok {
		top, hasTop = t.Y+m[0], true
	}
	if t, _, ok := lookup(rl.AlignBottomView); ok {
		bottom, hasBottom = t.Y+t.H-m[2], true
	}

	switch {
	case hasTop && hasBottom:
		if !it.FillH && h > 0 && h < bottom-top {
			return top, h
		}
		return top, bottom - top
	case hasTop:
		return top, h
	case hasBottom:
		return bottom - h, h
	}
	if t, _, ok := lookup(rl.CenterVerticalView); ok {
		return t.Y + (t.H-h)/2, h
	}
	if rl.CenterVertical {
		return p.Y + (p.H-h)/2, h
	}
	return p.Y + m[0], h
}

// IsRelative reports whether a container lays its children out relatively:
// an explicit "orientation" makes it a stack, otherwise any child carrying a
// positioning rule makes it relative.
func IsRelative(n *layout.Node) bool {
	if _, ok := n.Attrs["orientation"]; ok {
		return false
	}
	for _, c := range n.Children {
		if HasRules(c) {
			return true
		}
	}
	return false
}

// HasRules reports whether a node carries any positioning attribute.
func HasRules(n *layout.Node) bool {
	for key := range ruleKeys {
		if _, ok := n.Attrs[key]; ok {
			return true
		}
	}
	return false
}

var ruleKeys = map[string]bool{
	"alignTop": true, "alignBottom": true, "alignLeft": true, "alignRight": true,
	"centerHorizontal": true, "centerVertical": true, "centerInParent": true,
	"alignTopOfView": true, "alignBottomOfView": true, "alignLeftOfView": true, "alignRightOfView": true,
	"alignTopView": true, "alignBottomView": true, "alignLeftView": true, "alignRightView": true,
	"alignCenterVerticalView": true, "alignCenterHorizontalView": true,
}

// IsRuleKey reports whether key is a relative positioning attribute.
func IsRuleKey(key string) bool {
	return ruleKeys[key]
}

// RulesFromNode reads positioning attributes.
func RulesFromNode(n *layout.Node) Rules {
	flag := func(k string) bool {
		b, _ := mapping.Bool(n.Attrs[k])
		return b
	}
	r := Rules{
		AlignTop:           flag("alignTop"),
		AlignBottom:        flag("alignBottom"),
		AlignLeft:          flag("alignLeft"),
		AlignRight:         flag("alignRight"),
		CenterHorizontal:   flag("centerHorizontal"),
		CenterVertical:     flag("centerVertical"),
		Above:              n.String("alignTopOfView"),
		Below:              n.String("alignBottomOfView"),
		LeftOf:             n.String("alignLeftOfView"),
		RightOf:            n.String("alignRightOfView"),
		AlignTopView:       n.String("alignTopView"),
		AlignBottomView:    n.String("alignBottomView"),
		AlignLeftView:      n.String("alignLeftView"),
		AlignRightView:     n.String("alignRightView"),
		CenterVerticalView: n.String("alignCenterVerticalView"),
		CenterHorizView:    n.String("alignCenterHorizontalView"),
	}
	if flag("centerInParent") {
		r.CenterHorizontal = true
		r.CenterVertical = true
	}
	return r
}

// Margins reads "margins" and the per-edge margin attributes, which win.
func Margins(n *layout.Node) Insets {
	var in Insets
	if v, ok := n.Attrs["margins"]; ok {
		if m, ok := mapping.Insets(v); ok {
			in = m
		}
	}
	for i, k := range []string{"topMargin", "leftMargin", "bottomMargin", "rightMargin"} {
		if f, ok := mapping.Number(n.Attrs[k]); ok {
			in[i] = f
		}
	}
	return in
}

// Paddings reads "paddings" and the per-edge padding attributes.
func Paddings(n *layout.Node) Insets {
	var in Insets
	for _, k := range []string{"paddings", "padding"} {
		if v, ok := n.Attrs[k]; ok {
			if m, ok := mapping.Insets(v); ok {
				in = m
			}
		}
	}
	for i, k := range []string{"paddingTop", "paddingLeft", "paddingBottom", "paddingRight"} {
		if f, ok := mapping.Number(n.Attrs[k]); ok {
			in[i] = f
		}
	}
	return in
}

// Estimator guesses the intrinsic size of a view whose width or height is
// wrapContent or absent.
type Estimator func(n *layout.Node) Size

// EstimateSize is the default Estimator: text-bearing views are sized from
// their text and font size, controls get their platform default height.
func EstimateSize(n *layout.Node) Size {
	font := float64(mapping.DefaultFontSize)
	if f, ok := mapping.Number(n.Attrs["fontSize"]); ok {
		font = f
	}
	text := n.String("text")
	switch n.Type {
	case "Label", "Text", "IconLabel":
		return Size{W: float64(len([]rune(text))) * font * 0.6, H: font * 1.2}
	case "Button", "TextField", "SelectBox", "Segment":
		w := float64(len([]rune(text)))*font*0.6 + 16
		if w < 44 {
			w = 44
		}
		return Size{W: w, H: 44}
	case "Switch", "Check", "Radio":
		return Size{W: 51, H: 31}
	case "Indicator":
		return Size{W: 20, H: 20}
	}
	return Size{}
}

// ItemFromNode builds a solver item, resolving sizes against the parent and
// falling back to est for wrapContent.
func ItemFromNode(n *layout.Node, est Estimator) Item {
	if est == nil {
		est = EstimateSize
	}
	it := Item{ID: n.ID, Margins: Margins(n), Rules: RulesFromNode(n)}
	guess := est(n)
	it.Size.W, it.FillW = dimension(n.Attrs["width"], guess.W)
	it.Size.H, it.FillH = dimension(n.Attrs["height"], guess.H)
	return it
}

func dimension(v any, guess float64) (float64, bool) {
	switch v {
	case mapping.MatchParent:
		return 0, true
	case mapping.WrapContent, nil:
		return guess, false
	}
	if f, ok := mapping.Number(v); ok {
		return f, false
	}
	return guess, false
}

// SolveNode solves the children of a relative container of the given size.
func SolveNode(n *layout.Node, size Size, est Estimator) (map[string]Rect, error) {
	items := make([]Item, len(n.Children))
	for i, c := range n.Children {
		items[i] = ItemFromNode(c, est)
	}
	return Solve(size, Paddings(n), items)
}

// Key returns the result key Solve uses for the i-th child.
func Key(n *layout.Node, i int) string {
	if n.ID != "" {
		return n.ID
	}
	return fmt.Sprintf("#%d", i)
}
