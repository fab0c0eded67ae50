package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const brandColor = lipgloss.Color("#00ADD8")

// Styles
var (
	subjectStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#bbbbbb"))

	brandStyle = lipgloss.NewStyle().
			Foreground(brandColor).
			Bold(true)

	wordmarkStyle = lipgloss.NewStyle().
			Bold(true)

	selectStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandColor).
			Padding(0, 1).
			Width(36)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbbbbb"))

	selectedOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")).
				Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Background(brandColor).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ef4444"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#ef4444")).
			Padding(1, 3)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(brandColor).
			Padding(0, 1)
)

// View renders the header
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch {
	case m.alert != "":
		body = m.viewAlert()
	case m.dialogOpen:
		body = m.viewDialog()
	default:
		body = m.viewHeader()
	}

	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, body)
	}
	return body
}

func (m *Model) viewHeader() string {
	state := m.header.Snapshot()
	selected := m.Selected()

	var lines []string
	if subject := m.header.Subject(); subject != "" {
		lines = append(lines, subjectStyle.Render(subject))
	}
	lines = append(lines, brandStyle.Render("Mod")+wordmarkStyle.Render("ex"), "")

	var options []string
	for _, name := range state.Files {
		if name == selected {
			options = append(options, selectedOptionStyle.Render("▸ "+name))
		} else {
			options = append(options, optionStyle.Render("  "+name))
		}
	}
	if len(options) == 0 {
		options = append(options, optionStyle.Render("  (sin archivos)"))
	}
	dropdown := selectStyle.Render(strings.Join(options, "\n"))
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, dropdown, " ", buttonStyle.Render("+")))

	if state.Error != "" {
		lines = append(lines, errorStyle.Render(state.Error))
	}

	switch {
	case m.uploading != "":
		lines = append(lines, statusStyle.Render("Subiendo "+m.uploading+"…"))
	case m.status != "":
		lines = append(lines, statusStyle.Render(m.status))
	}

	lines = append(lines, "", helpStyle.Render("↑/↓ elegir • + subir archivo • r recargar • q salir"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) viewDialog() string {
	title := "Selecciona un archivo"
	if accept := m.header.Accept(); len(accept) > 0 {
		title += " (" + strings.Join(accept, ", ") + ")"
	}

	parts := []string{brandStyle.Render(title), m.files.CurrentDirectory, "", m.files.View()}
	if m.status != "" {
		parts = append(parts, errorStyle.Render(m.status))
	}
	parts = append(parts, helpStyle.Render("enter seleccionar • esc cancelar"))
	return dialogStyle.Render(strings.Join(parts, "\n"))
}

func (m *Model) viewAlert() string {
	return modalStyle.Render(errorStyle.Render(m.alert) + "\n\n" + helpStyle.Render("enter aceptar"))
}
