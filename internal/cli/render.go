// Package cli renders shopper output for the terminal.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	ColorBorder = lipgloss.Color("#282726")
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorMuted  = lipgloss.Color("#6F6E69")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorOrange = lipgloss.Color("#DA702C")
	ColorRed    = lipgloss.Color("#D14D41")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	okStyle = lipgloss.NewStyle().
		Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)
)

// Table is a bordered text table. The first column is left aligned, the rest
// are right aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (t Table) widths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	return widths
}

func border(b *strings.Builder, widths []int, left, middle, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(middle))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

func RenderTable(t Table) string {
	if len(t.Headers) == 0 {
		return ""
	}
	widths := t.widths()
	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}
	border(&b, widths, "╭", "┬", "╮")
	b.WriteString(dimStyle.Render("│"))
	for i, h := range t.Headers {
		b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
		b.WriteString(dimStyle.Render("│"))
	}
	b.WriteString("\n")
	border(&b, widths, "├", "┼", "┤")
	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		for i, w := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := strings.Repeat(" ", w-lipgloss.Width(cell))
			if i == 0 {
				b.WriteString(valueStyle.Render(" " + cell + pad + " "))
			} else {
				b.WriteString(valueStyle.Render(" " + pad + cell + " "))
			}
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}
	border(&b, widths, "╰", "┴", "╯")
	return b.String()
}

// Money renders an amount with two decimals, keeping the sign.
func Money(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

// Quantity renders whole numbers without decimals and weights with up to
// three.
func Quantity(value float64) string {
	return decimal.NewFromFloat(value).Round(3).String()
}

func Muted(text string) string {
	return mutedStyle.Render(text)
}

func OK(text string) string {
	return okStyle.Render(text)
}

func Warn(text string) string {
	return warnStyle.Render(text)
}

func Error(text string) string {
	return errorStyle.Render(text)
}
