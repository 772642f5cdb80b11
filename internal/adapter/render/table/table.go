// Package table renders the variable catalog of an assembled dataset.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go.ngs.io/ocean-grid/internal/domain"
)

// Output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
)

var headers = []string{"Name", "Description", "Units"}

// Renderer writes catalog entries to w as a terminal table or as CSV.
type Renderer struct {
	w      io.Writer
	format string
	title  string

	header lipgloss.Style
	cell   lipgloss.Style
	muted  lipgloss.Style
}

// NewRenderer creates a renderer for the given format.
func NewRenderer(w io.Writer, format string) (*Renderer, error) {
	switch format {
	case FormatTable, FormatCSV:
	default:
		return nil, fmt.Errorf("unknown table format %q: %w", format, domain.ErrInvalidArgument)
	}
	return &Renderer{
		w:      w,
		format: format,
		title:  "Variables",
		header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		cell:   lipgloss.NewStyle().Padding(0, 1),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}, nil
}

// RenderTable writes one row per entry.
func (r *Renderer) RenderTable(entries []domain.CatalogEntry) error {
	if r.format == FormatCSV {
		return r.writeCSV(entries)
	}
	_, err := io.WriteString(r.w, r.view(entries))
	return err
}

func (r *Renderer) writeCSV(entries []domain.CatalogEntry) error {
	cw := csv.NewWriter(r.w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Name, e.Description, e.Units}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (r *Renderer) view(entries []domain.CatalogEntry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Name, e.Description, e.Units}
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	// Widths include the cell padding.
	total := len(headers) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	var sb strings.Builder
	sb.WriteString(r.header.Render(r.title))
	sb.WriteString("\n")
	r.writeRow(&sb, r.header, widths, headers)
	sb.WriteString(r.muted.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")
	for _, row := range rows {
		r.writeRow(&sb, r.cell, widths, row)
	}
	return sb.String()
}

func (r *Renderer) writeRow(sb *strings.Builder, style lipgloss.Style, widths []int, cells []string) {
	for i, c := range cells {
		sb.WriteString(style.Width(widths[i]).Render(c))
		if i < len(cells)-1 {
			sb.WriteString(r.muted.Render("|"))
		}
	}
	sb.WriteString("\n")
}
