package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
)

const themeConfigFileName = "themes.json"

// Theme holds 256-color codes for every styled element. themes.json maps
// case-insensitive theme names to Theme objects and names one as "default".
type Theme struct {
	Name string `mapstructure:"-"`

	TitleFg                string `mapstructure:"title_fg"`
	PaneBorder             string `mapstructure:"pane_border"`
	SidePaneBorder         string `mapstructure:"side_pane_border"`
	SelectedSideBorder     string `mapstructure:"selected_side_border"`
	HeaderBg               string `mapstructure:"header_bg"`
	HeaderFg               string `mapstructure:"header_fg"`
	FooterBg               string `mapstructure:"footer_bg"`
	FooterFg               string `mapstructure:"footer_fg"`
	LineNumberFg           string `mapstructure:"line_number"`
	HeadHighlightBg        string `mapstructure:"head_highlight_bg"`
	HeadHighlightFg        string `mapstructure:"head_highlight_fg"`
	BaseHighlightBg        string `mapstructure:"base_highlight_bg"`
	BaseHighlightFg        string `mapstructure:"base_highlight_fg"`
	ResultFg               string `mapstructure:"result_fg"`
	ModifiedBg             string `mapstructure:"modified_bg"`
	ModifiedFg             string `mapstructure:"modified_fg"`
	AddedBg                string `mapstructure:"added_bg"`
	AddedFg                string `mapstructure:"added_fg"`
	RemovedBg              string `mapstructure:"removed_bg"`
	RemovedFg              string `mapstructure:"removed_fg"`
	ConflictedBg           string `mapstructure:"conflicted_bg"`
	ConflictedFg           string `mapstructure:"conflicted_fg"`
	InsertMarkerFg         string `mapstructure:"insert_marker_fg"`
	SelectedHunkMarkerFg   string `mapstructure:"selected_hunk_marker_fg"`
	SelectedHunkMarkerBg   string `mapstructure:"selected_hunk_marker_bg"`
	StatusResolvedFg       string `mapstructure:"status_resolved_fg"`
	StatusUnresolvedFg     string `mapstructure:"status_unresolved_fg"`
	ResultResolvedFg       string `mapstructure:"result_resolved_marker_fg"`
	ResultResolvedBorder   string `mapstructure:"result_resolved_border"`
	ResultUnresolvedBorder string `mapstructure:"result_unresolved_border"`
	ToastBg                string `mapstructure:"toast_bg"`
	ToastFg                string `mapstructure:"toast_fg"`
	SelectorResolvedFg     string `mapstructure:"selector_resolved_fg"`
	SelectorUnresolvedFg   string `mapstructure:"selector_unresolved_fg"`
	DimForegroundMuted     string `mapstructure:"dim_foreground_muted"`
}

var (
	themeOnce sync.Once
	themeErr  error
)

func init() {
	applyTheme(defaultTheme())
}

func ensureThemeLoaded() error {
	themeOnce.Do(func() {
		theme, err := loadThemeFromConfig()
		if err != nil {
			themeErr = err
			return
		}
		applyTheme(theme)
	})
	return themeErr
}

// loadThemeFromConfig reads themes.json and decodes the selected theme over
// the built-in default, so a theme only lists the colors it changes.
func loadThemeFromConfig() (Theme, error) {
	theme := defaultTheme()
	configPath, err := themeConfigPath()
	if err != nil {
		return theme, nil
	}

	if _, err := os.Stat(configPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return theme, nil
		}
		return Theme{}, fmt.Errorf("read theme config: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return Theme{}, fmt.Errorf("parse theme config: %w", err)
	}

	name := strings.ToLower(strings.TrimSpace(v.GetString("default")))
	if name == "" {
		name = "default"
	}
	key := "themes." + name
	if !v.IsSet(key) {
		return Theme{}, fmt.Errorf("theme %q not found in %s", name, configPath)
	}
	if err := v.UnmarshalKey(key, &theme); err != nil {
		return Theme{}, fmt.Errorf("decode theme %q: %w", name, err)
	}
	theme.Name = name
	return theme, nil
}

func themeConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "docmerge", themeConfigFileName), nil
}

func defaultTheme() Theme {
	return Theme{
		Name:                   "default",
		TitleFg:                "170",
		PaneBorder:             "63",
		SidePaneBorder:         "255",
		SelectedSideBorder:     "33",
		HeaderBg:               "62",
		HeaderFg:               "230",
		FooterBg:               "236",
		FooterFg:               "243",
		LineNumberFg:           "241",
		HeadHighlightBg:        "24",
		HeadHighlightFg:        "230",
		BaseHighlightBg:        "52",
		BaseHighlightFg:        "230",
		ResultFg:               "231",
		ModifiedBg:             "24",
		ModifiedFg:             "231",
		AddedBg:                "28",
		AddedFg:                "231",
		RemovedBg:              "237",
		RemovedFg:              "250",
		ConflictedBg:           "131",
		ConflictedFg:           "231",
		InsertMarkerFg:         "196",
		SelectedHunkMarkerFg:   "226",
		SelectedHunkMarkerBg:   "88",
		StatusResolvedFg:       "42",
		StatusUnresolvedFg:     "196",
		ResultResolvedFg:       "42",
		ResultResolvedBorder:   "42",
		ResultUnresolvedBorder: "196",
		ToastBg:                "22",
		ToastFg:                "230",
		SelectorResolvedFg:     "42",
		SelectorUnresolvedFg:   "196",
		DimForegroundMuted:     "244",
	}
}

func applyTheme(theme Theme) {
	titleStyle = foreground(theme.TitleFg).Bold(true).Padding(0, 1)

	paneStyle = bordered(theme.PaneBorder)
	headPaneStyle = bordered(theme.SidePaneBorder)
	basePaneStyle = bordered(theme.SidePaneBorder)
	selectedSidePaneStyle = bordered(theme.SelectedSideBorder)
	resultResolvedPaneStyle = bordered(theme.ResultResolvedBorder)
	resultUnresolvedPaneStyle = bordered(theme.ResultUnresolvedBorder)

	headerStyle = colored(theme.HeaderBg, theme.HeaderFg).Bold(true).Padding(0, 2)
	resultTitleStyle = headerStyle
	footerStyle = colored(theme.FooterBg, theme.FooterFg).Padding(0, 2)
	lineNumberStyle = foreground(theme.LineNumberFg)

	headHighlightStyle = colored(theme.HeadHighlightBg, theme.HeadHighlightFg)
	baseHighlightStyle = colored(theme.BaseHighlightBg, theme.BaseHighlightFg)
	resultLineStyle = foreground(theme.ResultFg)

	modifiedLineStyle = colored(theme.ModifiedBg, theme.ModifiedFg)
	addedLineStyle = colored(theme.AddedBg, theme.AddedFg)
	removedLineStyle = colored(theme.RemovedBg, theme.RemovedFg)
	conflictedLineStyle = colored(theme.ConflictedBg, theme.ConflictedFg)

	insertMarkerStyle = foreground(theme.InsertMarkerFg).Bold(true)
	selectedHunkMarkerStyle = colored(theme.SelectedHunkMarkerBg, theme.SelectedHunkMarkerFg).Bold(true)
	statusResolvedStyle = foreground(theme.StatusResolvedFg).Bold(true)
	statusUnresolvedStyle = foreground(theme.StatusUnresolvedFg).Bold(true)
	resultResolvedMarkerStyle = foreground(theme.ResultResolvedFg).Bold(true)

	toastStyle = colored(theme.ToastBg, theme.ToastFg).Padding(0, 1)
	toastLineStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 2)

	resolvedLabelStyle = foreground(theme.SelectorResolvedFg)
	unresolvedLabelStyle = foreground(theme.SelectorUnresolvedFg)

	dimForegroundMuted = lipgloss.Color(theme.DimForegroundMuted)
}

func foreground(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func colored(bg, fg string) lipgloss.Style {
	return lipgloss.NewStyle().Background(lipgloss.Color(bg)).Foreground(lipgloss.Color(fg))
}

func bordered(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, 1)
}
