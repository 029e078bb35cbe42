package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/hyperhive/hivegraph/pkg/catalog"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Terminal Detection
// =============================================================================

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printer writes status lines to w. Styling is only applied on a terminal,
// so piped output stays plain text.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) printer {
	return printer{w: w, color: isTerminal(w)}
}

func (p printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p printer) line(s string) { fmt.Fprintln(p.w, s) }

// =============================================================================
// Status Output
// =============================================================================

func (p printer) success(format string, args ...any) {
	p.line(p.style(styleIconSuccess, iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func (p printer) errorf(format string, args ...any) {
	p.line(p.style(styleIconError, iconError) + " " + fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	p.line(p.style(styleIconWarning, iconWarning) + " " + p.style(StyleWarning, fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(p.style(styleIconInfo, iconInfo) + " " + fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line.
func (p printer) detail(format string, args ...any) {
	p.line("  " + p.style(StyleDim, fmt.Sprintf(format, args...)))
}

func (p printer) file(path string) {
	p.line("  " + p.style(StyleDim, iconArrow) + " " + p.style(StyleValue, path))
}

func (p printer) keyValue(key, value string) {
	if p.color {
		p.line(styleKey.Render(key) + " " + StyleValue.Render(value))
		return
	}
	p.line(fmt.Sprintf("%-12s %s", key, value))
}

func (p printer) title(s string) { p.line(p.style(StyleTitle, s)) }

func (p printer) nextStep(description, cmd string) {
	p.line(p.style(StyleDim, description+":") + " " + p.style(styleCommand, cmd))
}

func (p printer) newline() { fmt.Fprintln(p.w) }

// stats prints a one-line summary such as "20 features · 41 edges · cached".
func (p printer) stats(features, edges int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d features", features),
		fmt.Sprintf("%d edges", edges),
	}
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(p.style(StyleDim, " · "))
		}
		b.WriteString(p.style(StyleDim, part))
	}
	b.WriteString(p.style(StyleDim, " · "))
	b.WriteString(p.style(statusStyle, status))
	p.line(b.String())
}

// =============================================================================
// Feature Output
// =============================================================================

// layerStyle colors text with the layer's color.
func layerStyle(l catalog.Layer) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(l.Info().Color))
}

// featureLine renders "id  Name  [layer]" for list output.
func (p printer) featureLine(f catalog.Feature) {
	id := fmt.Sprintf("%-20s", f.ID)
	p.line("  " + p.style(StyleHighlight, id) + " " + f.Name + " " + p.style(layerStyle(f.Layer), "["+string(f.Layer)+"]"))
}

func (p printer) features(fs []catalog.Feature) {
	for _, f := range fs {
		p.featureLine(f)
	}
}
