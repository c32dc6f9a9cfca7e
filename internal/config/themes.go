package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ThemeConfig holds the light and dark theme names
type ThemeConfig struct {
	Light string
	Dark  string
}

var themesPattern = regexp.MustCompile(`themes:\s*([a-zA-Z0-9-]+)\s+--default\s*,\s*([a-zA-Z0-9-]+)\s+--prefersdark`)

// GetThemes returns the theme configuration by parsing css/input.css under
// root. Expected format: themes: themeName --default, themeName --prefersdark;
// Falls back to garden (light) and dim (dark) if parsing fails.
func GetThemes(root string) ThemeConfig {
	if content, err := os.ReadFile(filepath.Join(root, "css", "input.css")); err == nil {
		if themes := parseThemesFromCSS(string(content)); themes != nil {
			return *themes
		}
	}

	return ThemeConfig{
		Light: "garden",
		Dark:  "dim",
	}
}

func parseThemesFromCSS(content string) *ThemeConfig {
	matches := themesPattern.FindStringSubmatch(content)
	if len(matches) == 3 {
		return &ThemeConfig{
			Light: strings.TrimSpace(matches[1]),
			Dark:  strings.TrimSpace(matches[2]),
		}
	}

	return nil
}
