package model

import "strings"

// Theme is a named bundle of presentation attributes for the graph editor.
// Switching themes never touches case data.
type Theme struct {
	Name                  string `json:"name"`
	BgClass               string `json:"bgClass"`
	NodeBgClass           string `json:"nodeBgClass"`
	NodeBorderClass       string `json:"nodeBorderClass"`
	TextClass             string `json:"textClass"`
	SidebarBgClass        string `json:"sidebarBgClass"`
	SidebarSectionBgClass string `json:"sidebarSectionBgClass"`
	ButtonClass           string `json:"buttonClass"`
	InputClass            string `json:"inputClass"`
	InputLabelClass       string `json:"inputLabelClass"`
	AccentColor           string `json:"accentColor"` // minimap, controls, fallback edge color
}

// Themes are the built-in editor themes; the first is the default.
var Themes = []Theme{
	{
		Name:                  "Professional Light",
		BgClass:               "bg-slate-100",
		NodeBgClass:           "bg-white",
		NodeBorderClass:       "border-blue-500",
		TextClass:             "text-slate-800",
		SidebarBgClass:        "bg-white",
		SidebarSectionBgClass: "bg-slate-50",
		ButtonClass:           "bg-blue-600 hover:bg-blue-700 text-white",
		InputClass:            "bg-slate-50 border-slate-300 focus:border-blue-500 focus:ring-blue-500 text-slate-900",
		InputLabelClass:       "text-slate-700",
		AccentColor:           "#3b82f6",
	},
	{
		Name:                  "Forensic Dark",
		BgClass:               "bg-slate-800",
		NodeBgClass:           "bg-slate-700",
		NodeBorderClass:       "border-teal-400",
		TextClass:             "text-slate-100",
		SidebarBgClass:        "bg-slate-900",
		SidebarSectionBgClass: "bg-slate-800",
		ButtonClass:           "bg-teal-500 hover:bg-teal-600 text-white",
		InputClass:            "bg-slate-700 border-slate-600 text-white focus:border-teal-400 focus:ring-teal-400",
		InputLabelClass:       "text-slate-300",
		AccentColor:           "#2dd4bf",
	},
}

// DefaultTheme returns the first built-in theme
func DefaultTheme() Theme {
	return Themes[0]
}

// LookupTheme finds a built-in theme by name, ignoring case
func LookupTheme(name string) (Theme, bool) {
	for _, t := range Themes {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Theme{}, false
}
