package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// announce reports whether a countdown second is worth printing. The first
// warning second is always printed by the caller.
func announce(secondsLeft int) bool {
	return secondsLeft <= 5 || secondsLeft%10 == 0
}

func renderWarning(secondsLeft int) string {
	unit := "seconds"
	if secondsLeft == 1 {
		unit = "second"
	}
	return warningStyle.Render(fmt.Sprintf(
		"Your session will expire in %d %s due to inactivity.\nType 'continue' to stay logged in.",
		secondsLeft, unit))
}

func renderAlert(msg string) string {
	return alertStyle.Render(msg)
}

func renderNotice(msg string) string {
	return noticeStyle.Render(msg)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func joinLines(lines []string) string {
	return strings.Join(lines, "; ")
}
