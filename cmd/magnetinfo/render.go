package main

import (
	"errors"
	"fmt"
	"strings"

	"magnetinfo/internal/core/bytesize"
	"magnetinfo/internal/services/resolver/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	primaryColor = lipgloss.Color("#8BE9FD")
	mutedColor   = lipgloss.Color("#6272A4")
	dangerColor  = lipgloss.Color("#FF5555")
	fgColor      = lipgloss.Color("#F8F8F2")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)
)

// renderMetadata draws a summary panel followed by the file table
func renderMetadata(md domain.ResolvedMetadata) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(md.Name))
	b.WriteString("\n")
	for _, kv := range [][2]string{
		{"Info hash", md.SessionKey},
		{"Size", md.FormattedSize},
		{"Peers", fmt.Sprintf("%d", md.PeerCount)},
		{"Files", fmt.Sprintf("%d", len(md.Files))},
	} {
		b.WriteString(labelStyle.Render(kv[0]))
		b.WriteString(valueStyle.Render(kv[1]))
		b.WriteString("\n")
	}
	summary := panelStyle.Render(strings.TrimRight(b.String(), "\n"))
	if len(md.Files) == 0 {
		return summary
	}
	return lipgloss.JoinVertical(lipgloss.Left, summary, renderFiles(md.Files))
}

func renderFiles(files []domain.File) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(mutedColor)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	t.Headers("PATH", "SIZE")
	for _, f := range files {
		t.Row(f.Path, bytesize.Format(f.SizeBytes))
	}
	return t.Render()
}

// renderError prints resolution failures by kind, anything else verbatim
func renderError(err error) string {
	var re *domain.ResolutionError
	if errors.As(err, &re) {
		return errorStyle.Render(re.Kind.String()) + " " + re.Message
	}
	return errorStyle.Render("error") + " " + err.Error()
}
