package tui

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLoadThemeFromConfigMissingFileUsesDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	theme, err := loadThemeFromConfig()
	if err != nil {
		t.Fatalf("loadThemeFromConfig() error = %v", err)
	}
	if theme.Name != "default" {
		t.Fatalf("theme name = %q, want default", theme.Name)
	}
	if theme.HeaderBg != "62" {
		t.Fatalf("header_bg = %q, want 62", theme.HeaderBg)
	}
}

func TestLoadThemeFromConfigMergesOverrides(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	configPath := filepath.Join(configDir, "docmerge", themeConfigFileName)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatal(err)
	}

	config := `{
  "default": "warm",
  "themes": {
    "warm": {
      "header_bg": "94",
      "dim_foreground_muted": "123"
    }
  }
}`
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	theme, err := loadThemeFromConfig()
	if err != nil {
		t.Fatalf("loadThemeFromConfig() error = %v", err)
	}
	if theme.Name != "warm" {
		t.Fatalf("theme name = %q, want warm", theme.Name)
	}
	if theme.HeaderBg != "94" {
		t.Fatalf("header_bg = %q, want 94", theme.HeaderBg)
	}
	if theme.HeaderFg != "230" {
		t.Fatalf("header_fg = %q, want 230", theme.HeaderFg)
	}
	if theme.DimForegroundMuted != "123" {
		t.Fatalf("dim_foreground_muted = %q, want 123", theme.DimForegroundMuted)
	}
}

func TestLoadThemeFromConfigMissingThemeReturnsError(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	configPath := filepath.Join(configDir, "docmerge", themeConfigFileName)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatal(err)
	}

	config := `{
  "default": "missing",
  "themes": {
    "warm": {
      "header_bg": "94"
    }
  }
}`
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loadThemeFromConfig()
	if err == nil {
		t.Fatal("loadThemeFromConfig() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("error = %q, want missing theme error", err.Error())
	}
}

func TestLoadThemeFromConfigInvalidJSONReturnsError(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	configPath := filepath.Join(configDir, "docmerge", themeConfigFileName)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(configPath, []byte("{bad"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loadThemeFromConfig()
	if err == nil {
		t.Fatal("loadThemeFromConfig() error = nil, want error")
	}
}

func TestApplyThemeUpdatesHighlightColors(t *testing.T) {
	resetThemeForTest()
	t.Cleanup(resetThemeForTest)

	theme := defaultTheme()
	theme.DimForegroundMuted = "103"
	theme.HeadHighlightBg = "104"
	theme.BaseHighlightFg = "105"

	applyTheme(theme)

	if dimForegroundMuted != lipgloss.Color("103") {
		t.Fatalf("dimForegroundMuted = %q, want 103", dimForegroundMuted)
	}
	if got := headHighlightStyle.GetBackground(); got != lipgloss.Color("104") {
		t.Fatalf("head highlight background = %v, want 104", got)
	}
	if got := baseHighlightStyle.GetForeground(); got != lipgloss.Color("105") {
		t.Fatalf("base highlight foreground = %v, want 105", got)
	}
}

func TestLoadThemeFromConfigThemeNamesIgnoreCase(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	configPath := filepath.Join(configDir, "docmerge", themeConfigFileName)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatal(err)
	}

	config := `{
  "default": "Review",
  "themes": {
    "REVIEW": {
      "head_highlight_bg": "30"
    }
  }
}`
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	theme, err := loadThemeFromConfig()
	if err != nil {
		t.Fatalf("loadThemeFromConfig() error = %v", err)
	}
	if theme.Name != "review" {
		t.Fatalf("theme name = %q, want review", theme.Name)
	}
	if theme.HeadHighlightBg != "30" {
		t.Fatalf("head_highlight_bg = %q, want 30", theme.HeadHighlightBg)
	}
	if theme.BaseHighlightBg != "52" {
		t.Fatalf("base_highlight_bg = %q, want default 52", theme.BaseHighlightBg)
	}
}

func TestEnsureThemeLoadedAppliesConfigOnce(t *testing.T) {
	resetThemeForTest()
	t.Cleanup(resetThemeForTest)

	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	configPath := filepath.Join(configDir, "docmerge", themeConfigFileName)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatal(err)
	}

	config := `{
  "default": "first",
  "themes": {
    "first": {
      "toast_bg": "111"
    }
  }
}`
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ensureThemeLoaded(); err != nil {
		t.Fatalf("ensureThemeLoaded() error = %v", err)
	}
	if got := toastStyle.GetBackground(); got != lipgloss.Color("111") {
		t.Fatalf("toast background = %v, want 111", got)
	}

	config = `{
  "default": "second",
  "themes": {
    "second": {
      "toast_bg": "222"
    }
  }
}`
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ensureThemeLoaded(); err != nil {
		t.Fatalf("ensureThemeLoaded() error = %v", err)
	}
	if got := toastStyle.GetBackground(); got != lipgloss.Color("111") {
		t.Fatalf("toast background = %v, want 111", got)
	}
}

func TestEnsureThemeLoadedReturnsError(t *testing.T) {
	resetThemeForTest()
	t.Cleanup(resetThemeForTest)

	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	configPath := filepath.Join(configDir, "docmerge", themeConfigFileName)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(configPath, []byte("{bad"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ensureThemeLoaded(); err == nil {
		t.Fatal("ensureThemeLoaded() error = nil, want error")
	}
}

func resetThemeForTest() {
	themeOnce = sync.Once{}
	themeErr = nil
	applyTheme(defaultTheme())
}
