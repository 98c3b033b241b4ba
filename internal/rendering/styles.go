package rendering

import (
	"fmt"
	"html/template"
	"strings"
)

// Font is a selectable typeface.
type Font struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Stack string `json:"stack"`
}

// Fonts lists the typefaces offered in the editor.
var Fonts = []Font{
	{Key: "poppins", Name: "Poppins", Stack: "'Poppins', sans-serif"},
	{Key: "roboto", Name: "Roboto", Stack: "'Roboto', sans-serif"},
	{Key: "open-sans", Name: "Open Sans", Stack: "'Open Sans', sans-serif"},
	{Key: "montserrat", Name: "Montserrat", Stack: "'Montserrat', sans-serif"},
	{Key: "raleway", Name: "Raleway", Stack: "'Raleway', sans-serif"},
}

// DefaultFont is used when a style names no known font.
var DefaultFont = Fonts[0]

// ColorScheme is a named palette.
type ColorScheme struct {
	Key        string `json:"key"`
	Title      string `json:"title"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	Background string `json:"background"`
}

// ColorSchemes lists the palettes offered in the editor.
var ColorSchemes = []ColorScheme{
	{Key: "lavender", Title: "Lavender", Primary: "#7B68EE", Secondary: "#9370DB", Accent: "#E6E6FA", Text: "#424242", Background: "#FFFFFF"},
	{Key: "blue", Title: "Blue", Primary: "#1976d2", Secondary: "#0d47a1", Accent: "#bbdefb", Text: "#263238", Background: "#FFFFFF"},
	{Key: "teal", Title: "Teal", Primary: "#009688", Secondary: "#00796b", Accent: "#b2dfdb", Text: "#263238", Background: "#FFFFFF"},
	{Key: "charcoal", Title: "Charcoal", Primary: "#455a64", Secondary: "#263238", Accent: "#cfd8dc", Text: "#263238", Background: "#FFFFFF"},
	{Key: "burgundy", Title: "Burgundy", Primary: "#9c27b0", Secondary: "#7b1fa2", Accent: "#e1bee7", Text: "#263238", Background: "#FFFFFF"},
	{Key: "forest", Title: "Forest", Primary: "#2e7d32", Secondary: "#1b5e20", Accent: "#c8e6c9", Text: "#263238", Background: "#FFFFFF"},
	{Key: "midnight", Title: "Midnight", Primary: "#303f9f", Secondary: "#1a237e", Accent: "#c5cae9", Text: "#263238", Background: "#FFFFFF"},
	{Key: "coral", Title: "Coral", Primary: "#e57373", Secondary: "#c62828", Accent: "#ffcdd2", Text: "#263238", Background: "#FFFFFF"},
}

// schemeAliases maps stored colorScheme values that predate the palette keys.
var schemeAliases = map[string]string{
	"purple": "lavender",
}

// Style selects the typeface and palette for a render.
type Style struct {
	FontFamily  string `json:"fontFamily"`
	ColorScheme string `json:"colorScheme"`
}

// LookupFont resolves a font by key, display name, or CSS stack.
func LookupFont(name string) (Font, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range Fonts {
		if n == f.Key || n == strings.ToLower(f.Name) || n == strings.ToLower(f.Stack) {
			return f, true
		}
	}
	return Font{}, false
}

// LookupColorScheme resolves a palette by key or title.
func LookupColorScheme(name string) (ColorScheme, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := schemeAliases[n]; ok {
		n = alias
	}
	for _, s := range ColorSchemes {
		if n == s.Key || n == strings.ToLower(s.Title) {
			return s, true
		}
	}
	return ColorScheme{}, false
}

// resolve fills unknown values with the defaults.
func (s Style) resolve() (Font, ColorScheme) {
	font, ok := LookupFont(s.FontFamily)
	if !ok {
		font = DefaultFont
	}
	scheme, ok := LookupColorScheme(s.ColorScheme)
	if !ok {
		scheme = ColorSchemes[0]
	}
	return font, scheme
}

// themeCSS builds the custom properties every template reads. Inputs come from
// the fixed tables above, never from user data.
func themeCSS(font Font, scheme ColorScheme) template.CSS {
	return template.CSS(fmt.Sprintf(
		":root{--font:%s;--primary:%s;--secondary:%s;--accent:%s;--text:%s;--background:%s;}",
		font.Stack, scheme.Primary, scheme.Secondary, scheme.Accent, scheme.Text, scheme.Background,
	))
}
