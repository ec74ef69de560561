// Package recap renders the per-resource results of a run for the terminal.
package recap

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/imamik/dkimctl/internal/provisioning"
	"github.com/imamik/dkimctl/internal/resource"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorYellow = lipgloss.Color("#eab308")
	colorRed    = lipgloss.Color("#ef4444")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	dim    lipgloss.Style
	status map[resource.Status]lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			title:  plain,
			header: plain,
			dim:    plain,
			status: map[resource.Status]lipgloss.Style{},
		}
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(colorWhite),
		header: lipgloss.NewStyle().Bold(true).Foreground(colorBlue),
		dim:    lipgloss.NewStyle().Foreground(colorDim),
		status: map[resource.Status]lipgloss.Style{
			resource.StatusOK:      lipgloss.NewStyle().Foreground(colorGreen),
			resource.StatusChanged: lipgloss.NewStyle().Foreground(colorYellow),
			resource.StatusSkipped: lipgloss.NewStyle().Foreground(colorBlue),
			resource.StatusFailed:  lipgloss.NewStyle().Bold(true).Foreground(colorRed),
		},
	}
}

func (s styles) statusStyle(status resource.Status) lipgloss.Style {
	if st, ok := s.status[status]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// Options controls rendering.
type Options struct {
	// Color enables ANSI styling.
	Color bool
	// Check marks the recap as a dry run.
	Check bool
	// Verbose lists resources that were already in the desired state.
	Verbose bool
}

// ColorEnabled reports whether f is a terminal that can take colour.
func ColorEnabled(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render formats results as a table followed by the status counts.
func Render(hostName string, results *provisioning.Results, opts Options) string {
	st := newStyles(opts.Color)
	var b strings.Builder

	title := "dkimctl recap: " + hostName
	if opts.Check {
		title += " (check mode)"
	}
	b.WriteString("\n")
	b.WriteString(st.title.Render("  " + title))
	b.WriteString("\n")
	b.WriteString(st.dim.Render("  " + strings.Repeat("═", 30)))
	b.WriteString("\n\n")

	rows := visible(results.All(), opts.Verbose)
	if len(rows) > 0 {
		phaseWidth, resourceWidth := len("PHASE"), len("RESOURCE")
		for _, r := range rows {
			phaseWidth = max(phaseWidth, len(r.Phase))
			resourceWidth = max(resourceWidth, len(label(r)))
		}

		b.WriteString(st.header.Render(fmt.Sprintf("  %-*s  %-*s  %s", phaseWidth, "PHASE", resourceWidth, "RESOURCE", "STATUS")))
		b.WriteString("\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "  %-*s  %-*s  %s", phaseWidth, r.Phase, resourceWidth, label(r), st.statusStyle(r.Status).Render(string(r.Status)))
			if detail := detail(r); detail != "" {
				b.WriteString(st.dim.Render("  " + detail))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	recap := results.Recap()
	fmt.Fprintf(&b, "  %s : %s %s %s %s\n",
		hostName,
		st.statusStyle(resource.StatusOK).Render(fmt.Sprintf("ok=%d", recap.OK)),
		st.statusStyle(resource.StatusChanged).Render(fmt.Sprintf("changed=%d", recap.Changed)),
		st.statusStyle(resource.StatusSkipped).Render(fmt.Sprintf("skipped=%d", recap.Skipped)),
		st.statusStyle(resource.StatusFailed).Render(fmt.Sprintf("failed=%d", recap.Failed)),
	)
	return b.String()
}

func visible(results []provisioning.Result, verbose bool) []provisioning.Result {
	if verbose {
		return results
	}
	var out []provisioning.Result
	for _, r := range results {
		if r.Status != resource.StatusOK {
			out = append(out, r)
		}
	}
	return out
}

func label(r provisioning.Result) string {
	return r.Kind + " " + r.Resource
}

func detail(r provisioning.Result) string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Message
}
