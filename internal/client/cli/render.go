package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

var (
	colorError   = lipgloss.Color("9")
	colorSuccess = lipgloss.Color("10")
	colorMuted   = lipgloss.Color("8")

	headerStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// applyColorProfile honors NO_COLOR and CLICOLOR for plain command output.
func applyColorProfile() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

func (a *App) printErr(msg string) {
	fmt.Fprintln(a.out, errorStyle.Render(msg))
}

func (a *App) printOK(msg string) {
	fmt.Fprintln(a.out, successStyle.Render(msg))
}

func (a *App) printMuted(msg string) {
	fmt.Fprintln(a.out, mutedStyle.Render(msg))
}

// printTable renders rows under headers. An empty table prints the muted
// placeholder, if any, instead.
func (a *App) printTable(empty string, headers []string, rows [][]string) {
	if len(rows) == 0 {
		if empty != "" {
			a.printMuted(empty)
		}
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
	fmt.Fprintln(a.out, t.String())
}
