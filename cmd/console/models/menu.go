package models

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/VoidMesh/randint/cmd/console/components"
	"github.com/VoidMesh/randint/internal/plugin"
)

// MenuModel handles the main menu view
type MenuModel struct {
	choices []MenuChoice
	cursor  int
	width   int
	height  int
}

// MenuChoice represents a menu option
type MenuChoice struct {
	Title       string
	Description string
	View        ViewType
}

// NewMenuModel creates a new menu model
func NewMenuModel() MenuModel {
	return MenuModel{
		choices: []MenuChoice{
			{
				Title:       "Notes",
				Description: "Open a note and insert random integers",
				View:        NotesView,
			},
			{
				Title:       "Settings",
				Description: "Seed, range and trailing space",
				View:        SettingsView,
			},
		},
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := keyMsg.String(); key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.choices) - 1
		}

	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}

	case "enter", "space", " ":
		return m, switchView(m.choices[m.cursor].View)

	case "1", "2":
		choice := int(key[0] - '1')
		if choice < len(m.choices) {
			m.cursor = choice
			return m, switchView(m.choices[choice].View)
		}
	}

	return m, nil
}

func (m MenuModel) View() string {
	var s strings.Builder

	s.WriteString(components.TitleStyle.Render("Random Number Generator") + "\n\n")

	menuStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(components.PrimaryColor).
		Padding(1, 2).
		Width(60)

	items := make([]string, 0, len(m.choices))
	for i, choice := range m.choices {
		itemStyle := components.MenuItemStyle
		if i == m.cursor {
			itemStyle = components.SelectedMenuItemStyle
		}
		items = append(items, itemStyle.Render(fmt.Sprintf("%d. %-10s %s", i+1, choice.Title, choice.Description)))
	}
	s.WriteString(menuStyle.Render(strings.Join(items, "\n")) + "\n\n")

	s.WriteString(components.HelpStyle.Render("Use ↑/↓ or j/k to navigate • Enter or number to select • ? for help • q to quit"))
	s.WriteString("\n\n" + components.StatusBarStyle.Render("randint console v"+plugin.Version))

	content := s.String()
	if m.width > 0 {
		if contentWidth := lipgloss.Width(content); contentWidth < m.width {
			content = lipgloss.NewStyle().PaddingLeft((m.width - contentWidth) / 2).Render(content)
		}
	}
	return content
}

// SetSize updates the menu size
func (m *MenuModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func switchView(view ViewType) tea.Cmd {
	return func() tea.Msg {
		return SwitchViewMsg{View: view}
	}
}
