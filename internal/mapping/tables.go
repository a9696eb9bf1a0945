// Package mapping holds the static tables that translate layout JSON into
// native UIKit and SwiftUI names: component types to view classes, JSON
// attribute keys to view properties, and the enumerated values (alignment,
// content mode, keyboard type, ...) attributes may take.
package mapping

import "sort"

// Component describes how a layout "type" maps onto native views.
type Component struct {
	Type    string // layout JSON type
	UIKit   string // UIKit view class
	SwiftUI string // SwiftUI view the generated code builds
	Suffix  string // appended to generated property names, e.g. "Label"
	Module  string // import required by the UIKit class
}

var components = map[string]Component{
	"View":         {Type: "View", UIKit: "SJUIView", SwiftUI: "VStack", Suffix: "View", Module: "SwiftJsonUI"},
	"SafeAreaView": {Type: "SafeAreaView", UIKit: "SJUIView", SwiftUI: "VStack", Suffix: "View", Module: "SwiftJsonUI"},
	"GradientView": {Type: "GradientView", UIKit: "GradientView", SwiftUI: "LinearGradient", Suffix: "View", Module: "SwiftJsonUI"},
	"Blur":         {Type: "Blur", UIKit: "SJUIVisualEffectView", SwiftUI: "VisualEffectView", Suffix: "BlurView", Module: "SwiftJsonUI"},
	"Label":        {Type: "Label", UIKit: "SJUILabel", SwiftUI: "Text", Suffix: "Label", Module: "SwiftJsonUI"},
	"Text":         {Type: "Text", UIKit: "SJUILabel", SwiftUI: "Text", Suffix: "Label", Module: "SwiftJsonUI"},
	"IconLabel":    {Type: "IconLabel", UIKit: "IconLabel", SwiftUI: "Label", Suffix: "IconLabel", Module: "SwiftJsonUI"},
	"Button":       {Type: "Button", UIKit: "SJUIButton", SwiftUI: "Button", Suffix: "Button", Module: "SwiftJsonUI"},
	"Image":        {Type: "Image", UIKit: "SJUIImageView", SwiftUI: "Image", Suffix: "ImageView", Module: "SwiftJsonUI"},
	"CircleImage":  {Type: "CircleImage", UIKit: "CircleImageView", SwiftUI: "Image", Suffix: "ImageView", Module: "SwiftJsonUI"},
	"NetworkImage": {Type: "NetworkImage", UIKit: "NetworkImageView", SwiftUI: "AsyncImage", Suffix: "ImageView", Module: "SwiftJsonUI"},
	"TextField":    {Type: "TextField", UIKit: "SJUITextField", SwiftUI: "TextField", Suffix: "TextField", Module: "SwiftJsonUI"},
	"TextView":     {Type: "TextView", UIKit: "SJUITextView", SwiftUI: "TextEditor", Suffix: "TextView", Module: "SwiftJsonUI"},
	"Switch":       {Type: "Switch", UIKit: "SJUISwitch", SwiftUI: "Toggle", Suffix: "Switch", Module: "SwiftJsonUI"},
	"Check":        {Type: "Check", UIKit: "SJUICheckBox", SwiftUI: "Toggle", Suffix: "CheckBox", Module: "SwiftJsonUI"},
	"Radio":        {Type: "Radio", UIKit: "SJUIRadioButton", SwiftUI: "Button", Suffix: "RadioButton", Module: "SwiftJsonUI"},
	"Segment":      {Type: "Segment", UIKit: "SJUISegmentedControl", SwiftUI: "Picker", Suffix: "Segment", Module: "SwiftJsonUI"},
	"Slider":       {Type: "Slider", UIKit: "UISlider", SwiftUI: "Slider", Suffix: "Slider", Module: "UIKit"},
	"Progress":     {Type: "Progress", UIKit: "UIProgressView", SwiftUI: "ProgressView", Suffix: "Progress", Module: "UIKit"},
	"Indicator":    {Type: "Indicator", UIKit: "UIActivityIndicatorView", SwiftUI: "ProgressView", Suffix: "Indicator", Module: "UIKit"},
	"SelectBox":    {Type: "SelectBox", UIKit: "SJUISelectBox", SwiftUI: "Picker", Suffix: "SelectBox", Module: "SwiftJsonUI"},
	"Collection":   {Type: "Collection", UIKit: "SJUICollectionView", SwiftUI: "LazyVGrid", Suffix: "CollectionView", Module: "SwiftJsonUI"},
	"Table":        {Type: "Table", UIKit: "SJUITableView", SwiftUI: "List", Suffix: "TableView", Module: "SwiftJsonUI"},
	"Scroll":       {Type: "Scroll", UIKit: "SJUIScrollView", SwiftUI: "ScrollView", Suffix: "ScrollView", Module: "SwiftJsonUI"},
	"ScrollView":   {Type: "ScrollView", UIKit: "SJUIScrollView", SwiftUI: "ScrollView", Suffix: "ScrollView", Module: "SwiftJsonUI"},
	"Web":          {Type: "Web", UIKit: "WKWebView", SwiftUI: "WebView", Suffix: "WebView", Module: "WebKit"},
}

// Placeholder is used for component types no table knows about.
var Placeholder = Component{Type: "", UIKit: "UIView", SwiftUI: "EmptyView", Suffix: "View", Module: "UIKit"}

// LookupComponent returns the mapping for a component type.
func LookupComponent(typ string) (Component, bool) {
	c, ok := components[typ]
	return c, ok
}

// ComponentTypes returns all known component types, sorted.
func ComponentTypes() []string {
	out := make([]string, 0, len(components))
	for k := range components {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UIKitProperties maps JSON attribute keys to UIKit property paths for
// attributes whose value passes through without conversion beyond the value
// kind noted in the converter.
var UIKitProperties = map[string]string{
	"text":                 "text",
	"hint":                 "placeholder",
	"placeholder":          "placeholder",
	"alpha":                "alpha",
	"opacity":              "alpha",
	"tag":                  "tag",
	"enabled":              "isEnabled",
	"userInteraction":      "isUserInteractionEnabled",
	"clipToBounds":         "clipsToBounds",
	"lines":                "numberOfLines",
	"secure":               "isSecureTextEntry",
	"editable":             "isEditable",
	"selectable":           "isSelectable",
	"scrollEnabled":        "isScrollEnabled",
	"paging":               "isPagingEnabled",
	"bounces":              "bounces",
	"value":                "value",
	"minimum":              "minimumValue",
	"maximum":              "maximumValue",
	"progress":             "progress",
	"selectedIndex":        "selectedIndex",
	"selectedSegmentIndex": "selectedSegmentIndex",
	"checked":              "isChecked",
	"isOn":                 "isOn",
	"url":                  "url",
	"cornerRadius":         "layer.cornerRadius",
	"borderWidth":          "layer.borderWidth",
}

// SwiftUIModifiers maps JSON attribute keys to SwiftUI modifier names for
// plain pass-through modifiers.
var SwiftUIModifiers = map[string]string{
	"alpha":        "opacity",
	"opacity":      "opacity",
	"cornerRadius": "cornerRadius",
	"lines":        "lineLimit",
	"disabled":     "disabled",
	"tag":          "tag",
	"clipToBounds": "clipped",
}

// Size sentinels.
const (
	MatchParent = "matchParent"
	WrapContent = "wrapContent"
)

// TextAlignments maps textAlign values.
var TextAlignments = map[string]TextAlignment{
	"left":    {UIKit: ".left", SwiftUI: ".leading"},
	"center":  {UIKit: ".center", SwiftUI: ".center"},
	"right":   {UIKit: ".right", SwiftUI: ".trailing"},
	"justify": {UIKit: ".justified", SwiftUI: ".leading"},
	"natural": {UIKit: ".natural", SwiftUI: ".leading"},
}

// TextAlignment pairs the UIKit and SwiftUI spellings of an alignment.
type TextAlignment struct {
	UIKit   string
	SwiftUI string
}

// ContentModes maps image contentMode values.
var ContentModes = map[string]ContentMode{
	"AspectFill":  {UIKit: ".scaleAspectFill", SwiftUI: ".fill"},
	"AspectFit":   {UIKit: ".scaleAspectFit", SwiftUI: ".fit"},
	"Center":      {UIKit: ".center", SwiftUI: ".fit"},
	"ScaleToFill": {UIKit: ".scaleToFill", SwiftUI: ".fill"},
}

// ContentMode pairs the UIKit and SwiftUI spellings of a content mode.
type ContentMode struct {
	UIKit   string
	SwiftUI string
}

// KeyboardTypes maps TextField "input" values to UIKeyboardType cases.
var KeyboardTypes = map[string]string{
	"email":    ".emailAddress",
	"password": ".default",
	"number":   ".numberPad",
	"decimal":  ".decimalPad",
	"phone":    ".phonePad",
	"url":      ".URL",
	"ascii":    ".asciiCapable",
	"default":  ".default",
}

// ReturnKeyTypes maps TextField "returnKeyType" values.
var ReturnKeyTypes = map[string]string{
	"Done":   ".done",
	"Next":   ".next",
	"Search": ".search",
	"Send":   ".send",
	"Go":     ".go",
	"Return": ".default",
}

// FontWeights maps fontWeight / font values to UIFont.Weight and
// Font.Weight cases, which share spelling.
var FontWeights = map[string]string{
	"ultraLight": ".ultraLight",
	"thin":       ".thin",
	"light":      ".light",
	"regular":    ".regular",
	"normal":     ".regular",
	"medium":     ".medium",
	"semibold":   ".semibold",
	"bold":       ".bold",
	"heavy":      ".heavy",
	"black":      ".black",
}

// Visibility maps visibility values to (hidden, collapsed).
var Visibility = map[string][2]bool{
	"visible":   {false, false},
	"invisible": {true, false},
	"gone":      {true, true},
}

// Gravities maps relative gravity values used by "gravity" attributes.
var Gravities = map[string]string{
	"top":              ".top",
	"bottom":           ".bottom",
	"left":             ".left",
	"right":            ".right",
	"centerVertical":   ".centerVertical",
	"centerHorizontal": ".centerHorizontal",
	"center":           ".center",
}

// Event attribute keys recognized as handler references.
var EventKeys = []string{
	"onClick", "onLongPress", "onAppear", "onDisappear", "onChange",
	"onSubmit", "onValueChange", "onTextChange", "onSelect", "onPan",
	"onPinch", "onBeginEditing", "onEndEditing",
}

// IsEventKey reports whether key names an event handler attribute.
func IsEventKey(key string) bool {
	for _, k := range EventKeys {
		if k == key {
			return true
		}
	}
	return false
}
