package runner

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title lipgloss.Style
	cpu   lipgloss.Style
	video lipgloss.Style
	mem   lipgloss.Style
	err   lipgloss.Style
}

// ANSI Color reference
// 1	Red
// 3	Yellow
// 4	Blue
// 5	Magenta
// 6	Cyan
// 7	White

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			title: plain,
			cpu:   plain,
			video: plain,
			mem:   plain,
			err:   plain,
		}
	}

	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(3)),
		cpu:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(4)),
		video: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		mem:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(5)),
		err:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
	}
}
