package render

import (
	"github.com/charmbracelet/glamour"
)

// Markdown theme names accepted in the config
const (
	ThemeDark       = "dark"
	ThemeLight      = "light"
	ThemeTokyoNight = "tokyonight"
	ThemeCatppuccin = "catppuccin"
	ThemeDracula    = "dracula"
	ThemeNoTTY      = "notty"
	ThemeASCII      = "ascii"
)

// glamourStyles maps theme names to glamour standard styles
var glamourStyles = map[string]string{
	ThemeDark:       "dark",
	ThemeLight:      "light",
	ThemeTokyoNight: "tokyo-night",
	ThemeCatppuccin: "dark",
	ThemeDracula:    "dracula",
	ThemeNoTTY:      "notty",
	ThemeASCII:      "ascii",
}

// IsBuiltinStyle reports whether style is a named theme rather than a file path
func IsBuiltinStyle(style string) bool {
	_, ok := glamourStyles[style]
	return ok
}

// styleOption picks a standard style for theme names and treats anything
// else as a path to a JSON style file
func styleOption(style string) glamour.TermRendererOption {
	if name, ok := glamourStyles[style]; ok {
		return glamour.WithStandardStyle(name)
	}
	if style == "" {
		return glamour.WithStandardStyle("dark")
	}
	return glamour.WithStylePath(style)
}

// ThemeInfo describes a theme for display
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes lists the markdown themes
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: ThemeCatppuccin, Description: "Catppuccin, rendered with the dark palette"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
		{Name: ThemeNoTTY, Description: "Plain text (no styling)"},
		{Name: ThemeASCII, Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the theme names
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
