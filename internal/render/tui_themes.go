package render

import (
	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme of the chat widget
type TUITheme struct {
	Name        string
	Description string

	// MarkdownStyle is the glamour theme paired with this palette
	MarkdownStyle string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Primary   lipgloss.Color // user bubbles, launcher
	Secondary lipgloss.Color // assistant accents
	Accent    lipgloss.Color
	Warning   lipgloss.Color // character counter
	Error     lipgloss.Color // failed replies

	OnPrimary lipgloss.Color // text drawn on Primary
	Text      lipgloss.Color
	TextDim   lipgloss.Color
	TextMute  lipgloss.Color
}

// Built-in TUI themes
var (
	TokyoNightTheme = TUITheme{
		Name:          "tokyonight",
		Description:   "Tokyo Night - Dark theme with blue accents",
		MarkdownStyle: ThemeTokyoNight,

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		OnPrimary: lipgloss.Color("#1a1b26"),
		Text:      lipgloss.Color("#c0caf5"),
		TextDim:   lipgloss.Color("#565f89"),
		TextMute:  lipgloss.Color("#3b4261"),
	}

	CatppuccinMochaTheme = TUITheme{
		Name:          "catppuccin",
		Description:   "Catppuccin Mocha - Warm dark theme with pastel colors",
		MarkdownStyle: ThemeCatppuccin,

		Background: lipgloss.Color("#1e1e2e"),
		Surface:    lipgloss.Color("#313244"),
		Border:     lipgloss.Color("#45475a"),

		Primary:   lipgloss.Color("#89b4fa"), // Blue
		Secondary: lipgloss.Color("#a6e3a1"), // Green
		Accent:    lipgloss.Color("#cba6f7"), // Mauve
		Warning:   lipgloss.Color("#f9e2af"), // Yellow
		Error:     lipgloss.Color("#f38ba8"), // Red

		OnPrimary: lipgloss.Color("#1e1e2e"),
		Text:      lipgloss.Color("#cdd6f4"),
		TextDim:   lipgloss.Color("#6c7086"),
		TextMute:  lipgloss.Color("#45475a"),
	}

	// LightTheme mirrors the web widget palette: blue user bubbles on white
	LightTheme = TUITheme{
		Name:          "light",
		Description:   "Light - Blue and gray bubbles for bright terminals",
		MarkdownStyle: ThemeLight,

		Background: lipgloss.Color("#ffffff"),
		Surface:    lipgloss.Color("#f3f4f6"),
		Border:     lipgloss.Color("#d1d5db"),

		Primary:   lipgloss.Color("#3b82f6"),
		Secondary: lipgloss.Color("#16a34a"),
		Accent:    lipgloss.Color("#8b5cf6"),
		Warning:   lipgloss.Color("#ea580c"),
		Error:     lipgloss.Color("#dc2626"),

		OnPrimary: lipgloss.Color("#ffffff"),
		Text:      lipgloss.Color("#1f2937"),
		TextDim:   lipgloss.Color("#6b7280"),
		TextMute:  lipgloss.Color("#9ca3af"),
	}
)

var currentTUITheme = TokyoNightTheme

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	return currentTUITheme
}

// SetTUITheme sets the active TUI theme by name
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if ok {
		currentTUITheme = theme
	}
	return ok
}

// GetTUIThemeByName returns a TUI theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, theme := range AvailableTUIThemes() {
		if theme.Name == name {
			return theme, true
		}
	}
	return TUITheme{}, false
}

// AvailableTUIThemes returns a list of all available TUI themes
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{
		TokyoNightTheme,
		CatppuccinMochaTheme,
		LightTheme,
	}
}

// TUIThemeNames returns just the theme names for selection
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
