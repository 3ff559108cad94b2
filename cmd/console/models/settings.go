package models

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/VoidMesh/randint/cmd/console/components"
	"github.com/VoidMesh/randint/internal/plugin"
	"github.com/VoidMesh/randint/internal/settings"
)

type fieldInfo struct {
	label       string
	description string
}

var fieldInfos = map[string]fieldInfo{
	settings.FieldSeed:  {"Seed", "Leave empty for a random one. (Default: secret)"},
	settings.FieldLow:   {"Low range value", "Set the low point of the random range. (Default: 1)"},
	settings.FieldHigh:  {"High range value", "Set the high point of the random range. (Default: 100)"},
	settings.FieldSpace: {"Space after number", "Insert a space after each generated number."},
}

// SettingsModel is the settings form
type SettingsModel struct {
	plugin *plugin.Plugin

	current  settings.Settings
	cursor   int
	editing  bool
	input    string
	display  map[string]string
	message  string
	errorMsg string
	width    int
	height   int
}

type settingsSavedMsg struct {
	settings settings.Settings
	result   settings.FieldResult
	err      error
}

func NewSettingsModel(p *plugin.Plugin) SettingsModel {
	return SettingsModel{
		plugin:  p,
		display: make(map[string]string),
	}
}

func (m SettingsModel) Init() tea.Cmd {
	current := m.plugin.Settings()
	return func() tea.Msg {
		return settingsSavedMsg{settings: current}
	}
}

// Editing reports whether a field is taking text input
func (m SettingsModel) Editing() bool {
	return m.editing
}

func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.current = msg.settings
		if msg.result.Field != "" {
			m.display[msg.result.Field] = msg.result.Display
			m.message = "Saved " + fieldInfos[msg.result.Field].label
			if msg.result.Recovered != nil {
				m.message += " (input not understood: " + msg.result.Recovered.Error() + ")"
			}
		}

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}

	return m, nil
}

func (m SettingsModel) handleKey(key string) (SettingsModel, tea.Cmd) {
	field := settings.Fields[m.cursor]

	if m.editing {
		switch key {
		case "enter":
			m.editing = false
			return m, m.applyCmd(field, m.input)
		case "esc":
			m.editing = false
			m.input = ""
		case "backspace":
			if m.input != "" {
				_, size := utf8.DecodeLastRuneInString(m.input)
				m.input = m.input[:len(m.input)-size]
			}
		case "space":
			m.input += " "
		default:
			if utf8.RuneCountInString(key) == 1 {
				m.input += key
			}
		}
		return m, nil
	}

	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(settings.Fields)-1 {
			m.cursor++
		}
	case "enter", "space", " ":
		if field == settings.FieldSpace {
			return m, m.applyCmd(field, strconv.FormatBool(!m.current.SpaceAfterNumber))
		}
		m.editing = true
		m.input = m.fieldText(field)
	}

	return m, nil
}

// fieldText is what a field shows: the text last entered when there is one,
// otherwise the stored value.
func (m SettingsModel) fieldText(field string) string {
	if text, ok := m.display[field]; ok {
		return text
	}
	return settings.FieldValue(m.current, field)
}

func (m SettingsModel) View() string {
	var s strings.Builder

	s.WriteString(components.TitleStyle.Render("Random Number Generator Settings") + "\n\n")

	if m.errorMsg != "" {
		s.WriteString(components.ErrorStyle.Render("Error: "+m.errorMsg) + "\n\n")
	}

	for i, field := range settings.Fields {
		info := fieldInfos[field]

		label := components.LabelStyle.Render(info.label)
		if i == m.cursor {
			label = components.SelectedMenuItemStyle.Render(info.label)
		}

		var value string
		switch {
		case field == settings.FieldSpace:
			value = components.OnOff(m.current.SpaceAfterNumber)
		case m.editing && i == m.cursor:
			value = components.FocusedInputStyle.Render(m.input + "_")
		default:
			value = components.InputStyle.Render(m.fieldText(field))
		}

		row := lipgloss.JoinHorizontal(lipgloss.Center, label, " ", value)
		s.WriteString(row + "\n" + components.DescriptionStyle.Render(info.description) + "\n\n")
	}

	if m.message != "" {
		s.WriteString(components.SuccessStyle.Render(m.message) + "\n\n")
	}

	help := "↑/↓ select • enter edit • esc back"
	if m.editing {
		help = "type a value • enter save • esc cancel"
	}
	s.WriteString(components.StatusBarStyle.Width(m.width).Render(help))

	return s.String()
}

// SetSize updates the settings view size
func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m SettingsModel) applyCmd(field, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		updated, result, err := m.plugin.UpdateField(ctx, field, text)
		return settingsSavedMsg{settings: updated, result: result, err: err}
	}
}
